package ratelimit

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper periodically drops idle windows so the store does not grow with
// every address that ever submitted a form.
type Sweeper struct {
	store    *InMemoryStore
	interval time.Duration
	logger   *slog.Logger
}

func NewSweeper(store *InMemoryStore, interval time.Duration, logger *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = DefaultConfig().SweepInterval
	}
	return &Sweeper{store: store, interval: interval, logger: logger}
}

// Start sweeps on every tick until ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := s.store.Sweep(); removed > 0 {
				s.logger.DebugContext(ctx, "rate limit windows swept",
					"removed", removed,
					"remaining", s.store.Len(),
				)
			}
		case <-ctx.Done():
			return nil
		}
	}
}
