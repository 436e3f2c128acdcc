package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/mdnspanel/internal/app"
	"github.com/MrSnakeDoc/mdnspanel/internal/document"
)

func newExportCmd(e *env) *cobra.Command {
	var (
		format string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the configuration document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := document.ParseFormat(format)
			if err != nil {
				return err
			}
			return e.withClient(cmd, func(ctx context.Context, c *app.Client) error {
				serialized, err := c.Registry.ExportAll(ctx)
				if err != nil {
					return err
				}
				doc, err := document.Parse([]byte(serialized))
				if err != nil {
					return fmt.Errorf("backend exported an unreadable document: %w", err)
				}
				if out != "" {
					if err := document.NewLoader(out).Save(doc, f); err != nil {
						return err
					}
					e.log.Infof("configuration written to %s", out)
					return nil
				}
				body, err := document.Encode(doc, f)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(body))
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "json or yaml")
	cmd.Flags().StringVarP(&out, "output", "o", "", "write to file instead of stdout")
	return cmd
}

func newImportCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|->",
		Short: "Replace the configuration with a JSON or YAML document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			return e.withClient(cmd, func(ctx context.Context, c *app.Client) error {
				if err := c.Registry.ImportAll(ctx, string(data)); err != nil {
					return err
				}
				return e.showServices(cmd, c)
			})
		},
	}
}

// readInput reads path, or stdin for "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
