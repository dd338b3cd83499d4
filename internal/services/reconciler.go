package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Reconciler periodically repairs the maintenance log from the boards.
type Reconciler struct {
	log      *LogService
	interval time.Duration
	logger   *zap.Logger

	stop chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// NewReconciler starts the loop when interval is positive; otherwise the
// returned Reconciler is idle and Shutdown returns immediately.
func NewReconciler(log *LogService, interval time.Duration, logger *zap.Logger) *Reconciler {
	r := &Reconciler{
		log:      log,
		interval: interval,
		logger:   logger,
		stop:     make(chan struct{}),
	}

	if interval > 0 {
		r.wg.Add(1)
		go r.loop()
	}

	return r
}

func (r *Reconciler) loop() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("log reconciler started", zap.Duration("interval", r.interval))

	for {
		select {
		case <-ticker.C:
			r.RunOnce(context.Background())
		case <-r.stop:
			return
		}
	}
}

func (r *Reconciler) RunOnce(ctx context.Context) {
	if _, err := r.log.Reconcile(ctx); err != nil {
		r.logger.Warn("log reconcile failed", zap.Error(err))
	}
}

func (r *Reconciler) Shutdown(ctx context.Context) {
	r.once.Do(func() { close(r.stop) })

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("log reconciler stopped")
	case <-ctx.Done():
		r.logger.Warn("log reconciler shutdown timed out")
	}
}
