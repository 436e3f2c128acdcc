package app

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/mdnspanel/internal/config"
	"github.com/MrSnakeDoc/mdnspanel/internal/eventlog"
	"github.com/MrSnakeDoc/mdnspanel/internal/logger"
	"github.com/MrSnakeDoc/mdnspanel/internal/netif"
	"github.com/MrSnakeDoc/mdnspanel/internal/registry"
)

// Client is a started synchronization layer without the HTTP surface, used
// by one-shot CLI commands.
type Client struct {
	Registry   *registry.Synchronizer
	EventLog   *eventlog.Buffer
	Interfaces *netif.Cache

	release func()
}

// Dial connects to the backend and loads the service list and log history.
func Dial(ctx context.Context, cfg *config.Config, log logger.Logger) (*Client, error) {
	tr, release, err := dialTransport(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	c := &Client{
		Registry:   registry.New(tr, logger.Named(log, "registry")),
		EventLog:   eventlog.New(tr, logger.Named(log, "eventlog"), eventlog.WithRetention(cfg.LogRetention)),
		Interfaces: netif.New(tr),
		release:    release,
	}
	if err := c.Registry.Start(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("start registry: %w", err)
	}
	if err := c.EventLog.Start(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("start event log: %w", err)
	}
	return c, nil
}

// Close releases subscriptions, then the transport.
func (c *Client) Close() {
	c.EventLog.Close()
	c.Registry.Close()
	c.release()
}
