package app

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/mdnspanel/internal/backend"
	"github.com/MrSnakeDoc/mdnspanel/internal/config"
	"github.com/MrSnakeDoc/mdnspanel/internal/logger"
	"github.com/MrSnakeDoc/mdnspanel/internal/transport"
	"github.com/MrSnakeDoc/mdnspanel/internal/transport/memory"
	"github.com/MrSnakeDoc/mdnspanel/internal/transport/natsbus"
)

// openStore returns the Badger store when a path is configured, else memory.
func openStore(cfg *config.Config) (backend.Store, error) {
	if cfg.DBPath == "" {
		return backend.NewMemoryStore(), nil
	}
	s, err := backend.NewBadgerStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open backend store %s: %w", cfg.DBPath, err)
	}
	return s, nil
}

// dialTransport connects to the configured backend. With the memory
// transport the backend runs in-process on a memory bus. The returned func
// releases everything dialTransport opened.
func dialTransport(ctx context.Context, cfg *config.Config, log logger.Logger) (transport.Transport, func(), error) {
	switch cfg.Transport {
	case config.TransportNATS:
		log.Infof("Connecting to NATS at %s", cfg.Redacted().NATSURL)
		nc, err := natsbus.Dial(natsbus.ConnectOptions{URL: cfg.NATSURL, Name: "mdnspanel"}, log)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to nats: %w", err)
		}
		client := natsbus.NewClient(nc, cfg.NATSPrefix, cfg.CallTimeout, log)
		return client, client.Close, nil

	default:
		store, err := openStore(cfg)
		if err != nil {
			return nil, nil, err
		}
		bus := memory.New()
		be, err := backend.New(ctx, logger.Named(log, "backend"),
			backend.WithStore(store),
			backend.WithEmitter(bus),
			backend.WithMaxLogEntries(cfg.BackendLogEntries),
		)
		if err != nil {
			_ = store.Close()
			return nil, nil, err
		}
		bus.Attach(be)
		log.Info("in-process backend attached to memory transport",
			logger.String("db_path", cfg.DBPath))
		return bus, func() {
			if err := be.Close(); err != nil {
				log.Warn("failed to close backend", logger.Error(err))
			}
		}, nil
	}
}
