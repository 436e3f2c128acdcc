package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/mdnspanel/internal/app"
	"github.com/MrSnakeDoc/mdnspanel/internal/config"
	"github.com/MrSnakeDoc/mdnspanel/internal/logger"
)

// env holds what every subcommand shares once the root has run.
type env struct {
	cfg     *config.Config
	log     logger.Logger
	jsonOut bool
}

func newRootCmd() *cobra.Command {
	e := &env{}

	root := &cobra.Command{
		Use:           "mdnspanel",
		Short:         "Control panel for an mDNS service manager",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			e.cfg = config.Load()
			e.log = logger.New(e.cfg.LogLevel, e.cfg.PrettyLog)
		},
	}
	root.PersistentFlags().BoolVar(&e.jsonOut, "json", false, "print machine-readable JSON")

	root.AddCommand(
		newServeCmd(e),
		newBackendCmd(e),
		newServicesCmd(e),
		newExportCmd(e),
		newImportCmd(e),
		newLogsCmd(e),
		newVersionCmd(e),
	)
	return root
}

// withClient dials the backend for one command and always closes it.
func (e *env) withClient(cmd *cobra.Command, fn func(ctx context.Context, c *app.Client) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), e.commandTimeout())
	defer cancel()

	c, err := app.Dial(ctx, e.cfg, e.log)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(ctx, c)
}

func (e *env) commandTimeout() time.Duration {
	if e.cfg.CallTimeout <= 0 {
		return 30 * time.Second
	}
	return 4 * e.cfg.CallTimeout
}
