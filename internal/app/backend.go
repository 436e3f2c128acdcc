package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MrSnakeDoc/mdnspanel/internal/backend"
	"github.com/MrSnakeDoc/mdnspanel/internal/config"
	"github.com/MrSnakeDoc/mdnspanel/internal/logger"
	"github.com/MrSnakeDoc/mdnspanel/internal/transport/natsbus"
	"github.com/MrSnakeDoc/mdnspanel/internal/version"
)

// RunBackend serves the reference backend over NATS until interrupted.
func RunBackend(cfg *config.Config, log logger.Logger) error {
	if cfg.NATSURL == "" {
		return fmt.Errorf("backend requires MDNSPANEL_NATS_URL")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Infof("🚀 Starting mdnspanel backend %s", version.String())

	nc, err := natsbus.Dial(natsbus.ConnectOptions{URL: cfg.NATSURL, Name: "mdnspanel-backend"}, log)
	if err != nil {
		return fmt.Errorf("connect to nats: %w", err)
	}
	defer nc.Close()

	store, err := openStore(cfg)
	if err != nil {
		return err
	}

	responder := natsbus.NewResponder(nc, cfg.NATSPrefix, cfg.CallTimeout, log)
	be, err := backend.New(ctx, log,
		backend.WithStore(store),
		backend.WithEmitter(responder),
		backend.WithMaxLogEntries(cfg.BackendLogEntries),
	)
	if err != nil {
		_ = store.Close()
		return err
	}

	if err := responder.Serve(be); err != nil {
		_ = be.Close()
		return fmt.Errorf("serve commands: %w", err)
	}
	log.Info("backend serving commands",
		logger.String("prefix", cfg.NATSPrefix),
		logger.String("hostname", be.HostName()))

	<-ctx.Done()
	log.Info("⏳ Shutting down backend...")

	if err := responder.Close(); err != nil {
		log.Warn("failed to stop responder", logger.Error(err))
	}
	if err := be.Close(); err != nil {
		log.Warn("failed to close backend", logger.Error(err))
	}
	if err := nc.Flush(); err != nil {
		log.Warn("failed to flush nats connection", logger.Error(err))
	}

	log.Info("✅ mdnspanel backend stopped cleanly")
	return nil
}
