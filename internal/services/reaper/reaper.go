package reaper

import (
	"context"
	"log/slog"
	"time"

	"github.com/mcoot/boardbank/internal/dependencies/clock"
)

// DefaultInterval is how often the reaper sweeps
const DefaultInterval = time.Hour

// Evictor removes games that have been idle too long
type Evictor interface {
	EvictIdle(ctx context.Context) (int, error)
}

// Reaper periodically evicts idle games
type Reaper struct {
	evictor  Evictor
	clock    clock.Clock
	interval time.Duration
	logger   *slog.Logger
}

// New creates a new Reaper
func New(evictor Evictor, clock clock.Clock, interval time.Duration, logger *slog.Logger) *Reaper {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Reaper{
		evictor:  evictor,
		clock:    clock,
		interval: interval,
		logger:   logger.With(slog.String("component", "reaper")),
	}
}

// Run sweeps every interval until ctx is cancelled
func (r *Reaper) Run(ctx context.Context) {
	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reaper started", slog.Duration("interval", r.interval))
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reaper stopped")
			return
		case <-ticker.C():
			r.Sweep(ctx)
		}
	}
}

// Sweep runs a single eviction pass and returns how many games were removed
func (r *Reaper) Sweep(ctx context.Context) int {
	evicted, err := r.evictor.EvictIdle(ctx)
	if err != nil {
		r.logger.Error("sweep failed",
			slog.Int("evicted", evicted),
			slog.String("error", err.Error()),
		)
		return evicted
	}
	if evicted > 0 {
		r.logger.Info("sweep complete", slog.Int("evicted", evicted))
	}
	return evicted
}
