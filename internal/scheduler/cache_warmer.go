package scheduler

import (
	"context"
	"time"

	"github.com/data-tales/data-sources/internal/domain"
	"github.com/data-tales/data-sources/internal/logger"
)

// Querier is satisfied by *query.Service.
type Querier interface {
	Query(ctx context.Context, key string, refresh bool) (*domain.Result, error)
}

// CacheWarmer refreshes every registry key periodically and on manual trigger.
type CacheWarmer struct {
	querier       Querier
	keys          []string
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewCacheWarmer creates a warmer. interval <= 0 disables the periodic
// refresh; the manual trigger still works.
func NewCacheWarmer(
	querier Querier,
	keys []string,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *CacheWarmer {
	return &CacheWarmer{
		querier:       querier,
		keys:          keys,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start runs the warm loop in the background. With a periodic interval the
// first refresh happens immediately.
func (cw *CacheWarmer) Start(ctx context.Context) {
	go func() {
		var tick <-chan time.Time
		if cw.interval > 0 {
			ticker := time.NewTicker(cw.interval)
			defer ticker.Stop()
			tick = ticker.C
			cw.Warm(ctx)
		}

		for {
			select {
			case <-tick:
				cw.Warm(ctx)
			case <-cw.manualTrigger:
				cw.logger.Info("manual cache refresh triggered")
				cw.Warm(ctx)
			case <-cw.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the warmer
func (cw *CacheWarmer) Stop() {
	close(cw.stopCh)
}

// Warm refreshes each key in turn. Failures are logged and leave the
// previous entry in place.
func (cw *CacheWarmer) Warm(ctx context.Context) (refreshed, failed int) {
	start := time.Now()
	for _, key := range cw.keys {
		if ctx.Err() != nil {
			break
		}
		if _, err := cw.querier.Query(ctx, key, true); err != nil {
			failed++
			cw.logger.Warn("cache refresh failed",
				logger.String("service", key),
				logger.Error(err))
			continue
		}
		refreshed++
	}

	cw.logger.Info("cache refresh finished",
		logger.Int("refreshed", refreshed),
		logger.Int("failed", failed),
		logger.Duration("elapsed", time.Since(start)))
	return refreshed, failed
}
