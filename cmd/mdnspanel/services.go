package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/mdnspanel/internal/app"
	"github.com/MrSnakeDoc/mdnspanel/internal/domain"
)

func newServicesCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "services",
		Aliases: []string{"svc"},
		Short:   "List and manage advertised services",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withClient(cmd, func(_ context.Context, c *app.Client) error {
				return e.showServices(cmd, c)
			})
		},
	}

	cmd.AddCommand(
		newServiceSpecCmd(e, "add", "Add a service", cobra.NoArgs,
			func(ctx context.Context, c *app.Client, _ []string, spec domain.ServiceSpec) error {
				return c.Registry.Add(ctx, spec)
			}),
		newServiceSpecCmd(e, "update <id>", "Replace a service's declaration", cobra.ExactArgs(1),
			func(ctx context.Context, c *app.Client, args []string, spec domain.ServiceSpec) error {
				return c.Registry.Update(ctx, args[0], spec)
			}),
		newServiceIDCmd(e, "rm <id>", "Delete a service", func(c *app.Client) func(context.Context, string) error {
			return c.Registry.Remove
		}),
		newServiceIDCmd(e, "toggle <id>", "Flip a service between enabled and disabled", func(c *app.Client) func(context.Context, string) error {
			return c.Registry.Toggle
		}),
		newServiceBulkCmd(e, "start-all", "Enable and start every service", func(c *app.Client) func(context.Context) error {
			return c.Registry.StartAll
		}),
		newServiceBulkCmd(e, "stop-all", "Disable and stop every service", func(c *app.Client) func(context.Context) error {
			return c.Registry.StopAll
		}),
	)
	return cmd
}

func (e *env) showServices(cmd *cobra.Command, c *app.Client) error {
	if e.jsonOut {
		return printJSON(cmd.OutOrStdout(), c.Registry.Services())
	}
	return printServices(cmd.OutOrStdout(), c.Registry.Services())
}

func newServiceSpecCmd(
	e *env,
	use, short string,
	args cobra.PositionalArgs,
	run func(ctx context.Context, c *app.Client, args []string, spec domain.ServiceSpec) error,
) *cobra.Command {
	var (
		name     string
		typ      string
		port     int
		txt      []string
		disabled bool
	)
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, positional []string) error {
			attrs, err := parseTXT(txt)
			if err != nil {
				return err
			}
			spec := domain.ServiceSpec{
				Name:        name,
				ServiceType: typ,
				Port:        port,
				Attributes:  attrs,
				Enabled:     !disabled,
			}
			return e.withClient(cmd, func(ctx context.Context, c *app.Client) error {
				if err := run(ctx, c, positional, spec); err != nil {
					return err
				}
				return e.showServices(cmd, c)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "instance name")
	cmd.Flags().StringVar(&typ, "type", "", "service type, e.g. _http._tcp")
	cmd.Flags().IntVar(&port, "port", 0, "port, 1-65535")
	cmd.Flags().StringArrayVar(&txt, "txt", nil, "TXT attribute key=value (repeatable)")
	cmd.Flags().BoolVar(&disabled, "disabled", false, "declare the service disabled")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("port")
	return cmd
}

func newServiceIDCmd(e *env, use, short string, op func(c *app.Client) func(context.Context, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withClient(cmd, func(ctx context.Context, c *app.Client) error {
				if err := op(c)(ctx, args[0]); err != nil {
					return err
				}
				return e.showServices(cmd, c)
			})
		},
	}
}

func newServiceBulkCmd(e *env, use, short string, op func(c *app.Client) func(context.Context) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withClient(cmd, func(ctx context.Context, c *app.Client) error {
				if err := op(c)(ctx); err != nil {
					return err
				}
				return e.showServices(cmd, c)
			})
		},
	}
}
