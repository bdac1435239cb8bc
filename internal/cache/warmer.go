package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Warmer refreshes a set of datasets on a cron schedule so that request
// paths rarely pay the cost of a cold or expired entry.
type Warmer struct {
	cron    *cron.Cron
	cache   *Cache
	loaders map[string]Loader
	timeout time.Duration
	logger  *slog.Logger
}

// NewWarmer creates a warmer over the given dataset loaders. timeout bounds
// each warm-up fetch.
func NewWarmer(c *Cache, loaders map[string]Loader, timeout time.Duration, logger *slog.Logger) *Warmer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Warmer{
		cron:    cron.New(),
		cache:   c,
		loaders: loaders,
		timeout: timeout,
		logger:  logger,
	}
}

// Start registers the warm-up job under the given cron spec and starts the
// scheduler.
func (w *Warmer) Start(spec string) error {
	_, err := w.cron.AddFunc(spec, w.warm)
	if err != nil {
		return err
	}
	w.cron.Start()
	w.logger.Info("cache warmer started", "schedule", spec)
	return nil
}

// Stop gracefully stops the scheduler.
func (w *Warmer) Stop() {
	w.cron.Stop()
	w.logger.Info("cache warmer stopped")
}

func (w *Warmer) warm() {
	for key, loader := range w.loaders {
		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		if _, err := w.cache.Get(ctx, key, loader); err != nil {
			w.logger.Warn("warm-up fetch failed", "dataset", key, "error", err)
		}
		cancel()
	}
}
