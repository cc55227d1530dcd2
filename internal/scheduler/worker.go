package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultInterval = 6 * time.Hour

// Worker periodically pulls fresh quotes and rewrites every tenant's
// expanded conversions. Manual conversions survive a refresh only until the
// next expansion overwrites the pair.
type Worker struct {
	refresher RateRefresher
	logger    *zap.Logger
	interval  time.Duration
	done      chan struct{}
	stopOnce  sync.Once

	mu          sync.Mutex
	lastRefresh time.Time
	lastErr     error
}

// NewWorker creates a new rate refresh worker
func NewWorker(refresher RateRefresher, logger *zap.Logger, interval time.Duration) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Worker{
		refresher: refresher,
		logger:    logger,
		interval:  interval,
		done:      make(chan struct{}),
	}
}

// Start runs one refresh immediately and then one per interval until ctx is
// cancelled or Stop is called. It blocks.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Starting rate refresh worker", zap.Duration("interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Rate refresh worker stopped (context cancelled)")
			return
		case <-w.done:
			w.logger.Info("Rate refresh worker stopped")
			return
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

// Stop signals the worker to exit. Safe to call more than once.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
	})
}

// LastRefresh reports when the last successful refresh finished and the
// error of the most recent attempt, if it failed.
func (w *Worker) LastRefresh() (time.Time, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastRefresh, w.lastErr
}

func (w *Worker) refresh(ctx context.Context) {
	started := time.Now()
	refreshed, err := w.refresher.RefreshAll(ctx)

	w.mu.Lock()
	w.lastErr = err
	if err == nil {
		w.lastRefresh = time.Now()
	}
	w.mu.Unlock()

	if err != nil {
		w.logger.Error("Rate refresh failed",
			zap.Int("refreshed", refreshed),
			zap.Duration("elapsed", time.Since(started)),
			zap.Error(err),
		)
		return
	}

	w.logger.Info("Rates refreshed",
		zap.Int("tenants", refreshed),
		zap.Duration("elapsed", time.Since(started)),
	)
}
