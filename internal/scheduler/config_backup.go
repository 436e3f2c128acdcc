package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/mdnspanel/internal/logger"
	redisstore "github.com/MrSnakeDoc/mdnspanel/internal/store/redis"
)

// Exporter produces the serialized configuration document.
type Exporter interface {
	ExportAll(ctx context.Context) (string, error)
}

// BackupSaver stores serialized configuration documents.
type BackupSaver interface {
	SaveBackup(ctx context.Context, serialized string, at time.Time) (redisstore.Backup, error)
	LatestBackup(ctx context.Context) (redisstore.Backup, error)
}

// ConfigBackup periodically snapshots the exported configuration
type ConfigBackup struct {
	exporter Exporter
	store    BackupSaver
	logger   logger.Logger
	interval time.Duration
	now      func() time.Time
	stopCh   chan struct{}

	last string
}

// NewConfigBackup creates a backup job
func NewConfigBackup(
	exporter Exporter,
	store BackupSaver,
	log logger.Logger,
	interval time.Duration,
) *ConfigBackup {
	return &ConfigBackup{
		exporter: exporter,
		store:    store,
		logger:   log,
		interval: interval,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

// Start takes a first backup, then one per interval until Stop or ctx is done.
// An export identical to the newest stored backup is not written again.
func (cb *ConfigBackup) Start(ctx context.Context) error {
	latest, err := cb.store.LatestBackup(ctx)
	switch {
	case err == nil:
		cb.last = latest.Serialized
	case errors.Is(err, redisstore.ErrNoBackup):
	default:
		cb.logger.Warn("failed to load latest backup", logger.Error(err))
	}

	if _, err := cb.Backup(ctx); err != nil {
		cb.logger.Warn("initial configuration backup failed",
			logger.Error(err))
	}

	if cb.interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(cb.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := cb.Backup(ctx); err != nil {
					cb.logger.Error("configuration backup failed",
						logger.Error(err))
				}
			case <-cb.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the backup job
func (cb *ConfigBackup) Stop() {
	close(cb.stopCh)
}

// Backup exports and stores the configuration. It reports false when the
// export matches the previous backup and nothing was written.
// Backup is not safe for concurrent use.
func (cb *ConfigBackup) Backup(ctx context.Context) (bool, error) {
	serialized, err := cb.exporter.ExportAll(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to export configuration: %w", err)
	}

	if serialized == cb.last {
		cb.logger.Debug("configuration unchanged, backup skipped")
		return false, nil
	}

	b, err := cb.store.SaveBackup(ctx, serialized, cb.now())
	if err != nil {
		return false, err
	}
	cb.last = serialized

	cb.logger.Info("configuration backed up",
		logger.String("backup_id", b.ID),
		logger.Int("bytes", len(serialized)))
	return true, nil
}
