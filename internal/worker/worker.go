// Package worker runs periodic housekeeping in the background. Currently a
// single job: purging stale anonymous carts so the table does not grow
// without bound.
package worker

import (
	"context"
	"log/slog"
	"time"
)

// CleanupStore is the persistence surface the worker needs.
type CleanupStore interface {
	// DeleteStaleCarts removes unconverted carts not touched since the cutoff
	// and returns how many were removed.
	DeleteStaleCarts(ctx context.Context, cutoff time.Time) (int64, error)
}

// Config holds worker timing parameters.
type Config struct {
	// Interval is how often the cleanup pass runs.
	Interval time.Duration

	// CartMaxAge is how long an untouched, unconverted cart survives.
	CartMaxAge time.Duration
}

// DefaultConfig returns sensible cleanup timings: hourly passes, carts kept
// for seven days.
func DefaultConfig() Config {
	return Config{
		Interval:   time.Hour,
		CartMaxAge: 7 * 24 * time.Hour,
	}
}

// Worker drives the cleanup loop.
type Worker struct {
	config Config
	store  CleanupStore
	logger *slog.Logger
}

// New creates a cleanup worker.
func New(config Config, store CleanupStore, logger *slog.Logger) *Worker {
	if config.Interval <= 0 {
		config.Interval = DefaultConfig().Interval
	}
	if config.CartMaxAge <= 0 {
		config.CartMaxAge = DefaultConfig().CartMaxAge
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{config: config, store: store, logger: logger}
}

// Run executes cleanup passes until the context is cancelled. It runs one
// pass immediately so a restart loop cannot starve cleanup forever.
func (w *Worker) Run(ctx context.Context) {
	w.pass(ctx)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("cleanup worker stopped")
			return
		case <-ticker.C:
			w.pass(ctx)
		}
	}
}

func (w *Worker) pass(ctx context.Context) {
	cutoff := time.Now().Add(-w.config.CartMaxAge)

	removed, err := w.store.DeleteStaleCarts(ctx, cutoff)
	if err != nil {
		w.logger.Error("cart cleanup failed", "error", err)
		return
	}
	if removed > 0 {
		w.logger.Info("purged stale carts", "count", removed, "cutoff", cutoff)
	}
}
