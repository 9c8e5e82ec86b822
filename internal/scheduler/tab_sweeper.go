// Package scheduler runs the periodic background jobs of the daemon.
package scheduler

import (
	"context"
	"time"

	"github.com/pagemark/pagemark/internal/logger"
)

// DefaultSweepInterval is how often stale tab attachments are checked.
const DefaultSweepInterval = time.Minute

// TabRegistry is the part of the browser bridge the sweeper drives.
type TabRegistry interface {
	Sweep(ctx context.Context) error
}

// TabSweeper periodically drops DevTools attachments whose tabs were closed.
type TabSweeper struct {
	registry TabRegistry
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
}

// NewTabSweeper creates a sweeper. A zero interval falls back to the default.
func NewTabSweeper(registry TabRegistry, log logger.Logger, interval time.Duration) *TabSweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &TabSweeper{
		registry: registry,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic sweep. The first sweep runs immediately.
func (s *TabSweeper) Start(ctx context.Context) error {
	if err := s.registry.Sweep(ctx); err != nil {
		s.logger.Warn("initial tab sweep failed", logger.Error(err))
	}

	ticker := time.NewTicker(s.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := s.registry.Sweep(ctx); err != nil {
					s.logger.Error("tab sweep failed", logger.Error(err))
				}
			case <-s.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop halts the periodic sweep.
func (s *TabSweeper) Stop() {
	close(s.stopCh)
}
