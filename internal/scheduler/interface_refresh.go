package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/mdnspanel/internal/domain"
	"github.com/MrSnakeDoc/mdnspanel/internal/logger"
)

// Refresher is the network interface cache.
type Refresher interface {
	Refresh(ctx context.Context) error
	Interfaces() []domain.NetworkInterface
}

// InterfaceRefresher loads the network interface cache at startup and,
// when an interval is set, keeps it fresh.
type InterfaceRefresher struct {
	cache    Refresher
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
}

// NewInterfaceRefresher creates a refresher. A non-positive interval means
// the initial refresh only; later refreshes are explicit.
func NewInterfaceRefresher(
	cache Refresher,
	log logger.Logger,
	interval time.Duration,
) *InterfaceRefresher {
	return &InterfaceRefresher{
		cache:    cache,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start refreshes once, then every interval until Stop or ctx is done.
// A failed initial refresh is logged; the cache keeps its empty snapshot.
func (r *InterfaceRefresher) Start(ctx context.Context) error {
	if err := r.Refresh(ctx); err != nil {
		r.logger.Warn("initial interface refresh failed",
			logger.Error(err))
	}

	if r.interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(r.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := r.Refresh(ctx); err != nil {
					r.logger.Error("failed to refresh interfaces",
						logger.Error(err))
				}
			case <-r.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

// Stop stops the refresher
func (r *InterfaceRefresher) Stop() {
	close(r.stopCh)
}

// Refresh runs one refresh.
func (r *InterfaceRefresher) Refresh(ctx context.Context) error {
	if err := r.cache.Refresh(ctx); err != nil {
		return err
	}
	r.logger.Debug("network interfaces refreshed",
		logger.Int("count", len(r.cache.Interfaces())))
	return nil
}
