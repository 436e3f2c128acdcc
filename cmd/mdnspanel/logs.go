package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/mdnspanel/internal/app"
	"github.com/MrSnakeDoc/mdnspanel/internal/domain"
)

func newLogsCmd(e *env) *cobra.Command {
	var (
		level    string
		clearLog bool
	)
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show or clear the backend event log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := e.withClient(cmd, func(ctx context.Context, c *app.Client) error {
				if clearLog {
					return c.EventLog.Clear(ctx)
				}
				if err := c.EventLog.SetLevelFilter(level); err != nil {
					return err
				}
				entries := c.EventLog.Entries()
				if e.jsonOut {
					return printJSON(cmd.OutOrStdout(), entries)
				}
				return printLogs(cmd.OutOrStdout(), entries)
			}); err != nil {
				return err
			}
			if clearLog {
				e.log.Info("event log cleared")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&level, "level", "l", string(domain.FilterAll), "all, info, warn or error")
	cmd.Flags().BoolVar(&clearLog, "clear", false, "clear the log instead of printing it")
	return cmd
}
