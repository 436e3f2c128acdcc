package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/mdnspanel/internal/logger"
	redisstore "github.com/MrSnakeDoc/mdnspanel/internal/store/redis"
)

const (
	// DefaultBackupRetention is the age after which backups are deleted
	DefaultBackupRetention = 7 * 24 * time.Hour // 7 days
)

// BackupPruner lists and deletes stored backups.
type BackupPruner interface {
	ListBackups(ctx context.Context) ([]redisstore.Backup, error)
	BackupsOlderThan(ctx context.Context, cutoff time.Time) ([]string, error)
	DeleteBackup(ctx context.Context, id string) error
}

// BackupCollector handles cleanup of old configuration backups
type BackupCollector struct {
	store     BackupPruner
	logger    logger.Logger
	interval  time.Duration
	retention time.Duration
	now       func() time.Time
	stopCh    chan struct{}
}

// NewBackupCollector creates a new garbage collector
func NewBackupCollector(
	store BackupPruner,
	log logger.Logger,
	interval time.Duration,
	retention time.Duration,
) *BackupCollector {
	if retention == 0 {
		retention = DefaultBackupRetention
	}

	return &BackupCollector{
		store:     store,
		logger:    log,
		interval:  interval,
		retention: retention,
		now:       time.Now,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the periodic garbage collection process
func (gc *BackupCollector) Start(ctx context.Context) error {
	// Run immediately on start
	if _, err := gc.Collect(ctx); err != nil {
		gc.logger.Warn("initial backup collection failed",
			logger.Error(err))
	}

	if gc.interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(gc.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := gc.Collect(ctx); err != nil {
					gc.logger.Error("backup collection failed",
						logger.Error(err))
				}
			case <-gc.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the garbage collector
func (gc *BackupCollector) Stop() {
	close(gc.stopCh)
}

// Collect removes backups older than the retention and returns how many were
// deleted. The newest backup is always kept, however old.
func (gc *BackupCollector) Collect(ctx context.Context) (int, error) {
	all, err := gc.store.ListBackups(ctx)
	if err != nil {
		return 0, err
	}
	if len(all) == 0 {
		gc.logger.Debug("no backups to collect")
		return 0, nil
	}
	newest := all[0].ID

	ids, err := gc.store.BackupsOlderThan(ctx, gc.now().Add(-gc.retention))
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, id := range ids {
		if id == newest {
			continue
		}
		// Best effort: one failure does not stop the sweep.
		if err := gc.store.DeleteBackup(ctx, id); err != nil {
			gc.logger.Warn("failed to delete backup",
				logger.String("backup_id", id),
				logger.Error(err))
			continue
		}
		deleted++
	}

	if deleted > 0 {
		gc.logger.Info("backup collection completed",
			logger.Int("backups_deleted", deleted))
	} else {
		gc.logger.Debug("no backups to collect")
	}

	return deleted, nil
}
