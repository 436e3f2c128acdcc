package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/mdnspanel/internal/app"
	"github.com/MrSnakeDoc/mdnspanel/internal/transport/natsbus"
)

func newServeCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP control panel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := app.New(context.Background(), e.cfg, e.log)
			if err != nil {
				return err
			}
			return a.Run()
		},
	}
}

func newBackendCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "backend",
		Short: "Serve the reference backend over NATS",
		Long: "Serve the reference backend over NATS.\n\n" +
			"Commands are answered on <prefix>.cmd.<name> in the queue group " + natsbus.QueueGroup + ".",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.RunBackend(e.cfg, e.log)
		},
	}
}
