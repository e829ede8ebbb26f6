// Package schedule runs periodic maintenance jobs.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/kaiunlab/kaiun/internal/store"
)

// StatsSource reports advice-cache size and age range.
type StatsSource interface {
	AdviceCacheStats(ctx context.Context) (store.CacheStats, error)
}

// CacheReporter periodically logs advice-cache growth. The cache is
// append-only with no TTL or eviction, so row count only ever goes up;
// this job keeps that visible in the logs.
type CacheReporter struct {
	stats  StatsSource
	spec   string
	cron   *cron.Cron
	logger *slog.Logger
}

// NewCacheReporter creates a reporter with the given cron spec
// (standard 5-field syntax).
func NewCacheReporter(log *slog.Logger, stats StatsSource, spec string) *CacheReporter {
	if log == nil {
		log = slog.Default()
	}
	if spec == "" {
		spec = "0 * * * *"
	}
	return &CacheReporter{
		stats:  stats,
		spec:   spec,
		logger: log.With(slog.String("service", "cache_reporter")),
	}
}

// Start schedules the report job.
func (r *CacheReporter) Start() error {
	r.cron = cron.New()
	if _, err := r.cron.AddFunc(r.spec, r.report); err != nil {
		return fmt.Errorf("schedule cache report: %w", err)
	}
	r.cron.Start()
	return nil
}

// Stop cancels the schedule and waits for a running job to finish.
func (r *CacheReporter) Stop(ctx context.Context) error {
	if r.cron == nil {
		return nil
	}
	select {
	case <-r.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *CacheReporter) report() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stats, err := r.stats.AdviceCacheStats(ctx)
	if err != nil {
		r.logger.Warn("cache stats failed", slog.Any("error", err))
		return
	}
	r.logger.Info("advice cache growth",
		slog.Int64("rows", stats.Rows),
		slog.Time("oldest", stats.Oldest),
		slog.Time("newest", stats.Newest),
	)
}
