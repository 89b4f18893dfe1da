package stream

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"tradedesk/internal/engine"
)

// Reconciler periodically recomputes every account's unrealized PnL, equity
// and display prices against the shared price table and records a balance
// snapshot per account. It runs on its own timer, independent of the price
// simulator; each pass is one atomic engine transition.
type Reconciler struct {
	interval time.Duration
	engine   *engine.Engine
	log      zerolog.Logger

	mu      sync.Mutex
	started bool
	done    chan struct{}
}

// NewReconciler creates a stopped reconciler. A non-positive interval
// defaults to two seconds.
func NewReconciler(interval time.Duration, eng *engine.Engine, logger zerolog.Logger) *Reconciler {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Reconciler{
		interval: interval,
		engine:   eng,
		log:      logger,
	}
}

// Start begins the reconciliation loop.
func (r *Reconciler) Start(ctx context.Context) {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return
	}
	r.started = true
	r.done = make(chan struct{})
	done := r.done
	r.mu.Unlock()

	go r.loop(ctx, done)
	r.log.Info().Dur("interval", r.interval).Msg("account reconciler started")
}

// Stop halts the reconciliation loop.
func (r *Reconciler) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.started {
		return
	}
	close(r.done)
	r.started = false
}

// IsRunning reports whether the loop is active.
func (r *Reconciler) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.started
}

func (r *Reconciler) loop(ctx context.Context, done chan struct{}) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case <-ticker.C:
			snaps := r.engine.Reconcile()
			r.log.Debug().Int("accounts", len(snaps)).Msg("accounts reconciled")
		}
	}
}
