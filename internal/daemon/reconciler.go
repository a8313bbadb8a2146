package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/1broseidon/tagtile/internal/platform"
	"github.com/1broseidon/tagtile/internal/wm"
)

// WindowLister returns the window IDs the windowing system still knows.
type WindowLister func() ([]platform.WindowID, error)

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically compares the managed windows with the windows the
// backend reports and posts a disappearance for every window that vanished
// without an event.
type Reconciler struct {
	interval    time.Duration
	loop        *Loop
	listWindows WindowLister
	logger      *slog.Logger
}

// NewReconciler creates a reconciler posting to loop.
func NewReconciler(cfg ReconcilerConfig, loop *Loop, listWindows WindowLister) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		interval:    interval,
		loop:        loop,
		listWindows: listWindows,
		logger:      logger,
	}
}

// WindowListerFromBackend adapts a backend to a WindowLister.
func WindowListerFromBackend(b platform.Backend) WindowLister {
	return b.Windows
}

// Run starts the reconciliation loop. Blocks until ctx is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			r.reconcile(ctx)
		}
	}
}

// ReconcileNow performs a single pass immediately and returns the number of
// stale windows it found.
func (r *Reconciler) ReconcileNow(ctx context.Context) int {
	return r.reconcile(ctx)
}

func (r *Reconciler) reconcile(ctx context.Context) int {
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	var managed []platform.WindowID
	if err := r.loop.Do(ctx, func(m *wm.Manager) error {
		managed = m.ClientIDs()
		return nil
	}); err != nil {
		r.logger.Debug("reconciler: loop unavailable", "error", err)
		return 0
	}
	if len(managed) == 0 {
		return 0
	}

	actual, err := r.listWindows()
	if err != nil {
		r.logger.Error("reconciler: failed to list windows", "error", err)
		return 0
	}
	alive := make(map[platform.WindowID]bool, len(actual))
	for _, id := range actual {
		alive[id] = true
	}

	stale := 0
	for _, id := range managed {
		if alive[id] {
			continue
		}
		r.logger.Info("reconciler: stale window detected", "window", id)
		r.loop.Post(platform.WindowDisappeared{ID: id})
		stale++
	}
	return stale
}
