package sched

import (
	"context"
	"time"

	"class-access/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// PoolStatsWorker periodically publishes database pool statistics.
type PoolStatsWorker struct {
	interval time.Duration
	sample   func() metrics.PoolSnapshot
	log      *zerolog.Logger
}

func NewPoolStatsWorker(interval time.Duration, sample func() metrics.PoolSnapshot, logger *zerolog.Logger) *PoolStatsWorker {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	wLog := logger.With().Str("component", "PoolStatsWorker").Logger()
	return &PoolStatsWorker{
		interval: interval,
		sample:   sample,
		log:      &wLog,
	}
}

// Run samples once immediately and then on every tick until ctx is done.
func (w *PoolStatsWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting pool stats worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.publish()
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping pool stats worker")
			return ctx.Err()
		case <-ticker.C:
			w.publish()
		}
	}
}

func (w *PoolStatsWorker) publish() {
	s := w.sample()
	metrics.SetDBPoolStats(s)
	if s.Max > 0 && s.Acquired == s.Max {
		w.log.Warn().Int32("max", s.Max).Int64("empty_acquire", s.EmptyAcquireCount).Msg("db pool saturated")
	}
}
