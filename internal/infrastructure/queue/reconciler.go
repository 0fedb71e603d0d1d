package queue

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/obralink/marketplace/internal/api/metrics"
	"github.com/obralink/marketplace/internal/core/ports"
)

// ReconcileLoop runs a Reconciler on a fixed interval until ctx is cancelled.
type ReconcileLoop struct {
	reconciler ports.Reconciler
	interval   time.Duration
	log        zerolog.Logger
	done       chan struct{}
}

func NewReconcileLoop(r ports.Reconciler, interval time.Duration, log zerolog.Logger) *ReconcileLoop {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &ReconcileLoop{reconciler: r, interval: interval, log: log, done: make(chan struct{})}
}

// Start launches the loop in its own goroutine.
func (l *ReconcileLoop) Start(ctx context.Context) {
	go l.run(ctx)
}

// Wait blocks until the loop has returned after ctx cancellation.
func (l *ReconcileLoop) Wait() {
	<-l.done
}

func (l *ReconcileLoop) run(ctx context.Context) {
	defer close(l.done)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.log.Info().Dur("interval", l.interval).Msg("reconciler started")
	for {
		select {
		case <-ctx.Done():
			l.log.Info().Msg("reconciler stopped")
			return
		case <-ticker.C:
			l.tick(ctx)
		}
	}
}

func (l *ReconcileLoop) tick(ctx context.Context) {
	n, err := l.reconciler.Reconcile(ctx)
	if err != nil {
		l.log.Error().Err(err).Msg("reconcile pass failed")
		return
	}
	if n > 0 {
		metrics.AcceptancesReconciledTotal.Add(float64(n))
		l.log.Info().Int("completed", n).Msg("reconcile pass finished")
	}
}
