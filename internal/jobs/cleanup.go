// Package jobs holds the periodic maintenance loops run alongside the server.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"avatarium/internal/lib/sl"
)

type TokenCleaner interface {
	DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error)
}

// Cleanup periodically removes expired refresh-token records. The storage
// TTL still acts as a backstop if this loop falls behind.
type Cleanup struct {
	logger   *slog.Logger
	store    TokenCleaner
	interval time.Duration
}

func NewCleanup(logger *slog.Logger, store TokenCleaner, interval time.Duration) *Cleanup {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Cleanup{
		logger:   logger,
		store:    store,
		interval: interval,
	}
}

// Run blocks until ctx is cancelled, cleaning up once per interval. A
// failed cycle is logged and retried on the next tick; it never stops the
// loop or crashes the process.
func (c *Cleanup) Run(ctx context.Context) {
	const op = "jobs.Cleanup"
	log := c.logger.With(slog.String("op", op))
	log.Info("cleanup job started", slog.Duration("interval", c.interval))

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("cleanup job stopped")
			return
		case <-ticker.C:
			c.runOnce(ctx, log)
		}
	}
}

func (c *Cleanup) runOnce(ctx context.Context, log *slog.Logger) {
	count, err := c.store.DeleteExpiredTokens(ctx, time.Now())
	if err != nil {
		log.Error("failed to clean up expired tokens", sl.Err(err))
		return
	}

	log.Info("cleaned up expired tokens", slog.Int64("count", count))
}
