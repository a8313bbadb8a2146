// Package daemon runs the window manager: the event loop that owns the
// Manager, the config watcher and the periodic reconciler.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/1broseidon/tagtile/internal/platform"
	"github.com/1broseidon/tagtile/internal/wm"
)

// ErrStopped is returned when work is posted to a loop that has exited.
var ErrStopped = errors.New("event loop stopped")

type call struct {
	fn   func(*wm.Manager) error
	done chan error
}

// Loop serializes every access to a Manager on one goroutine. Backends,
// IPC handlers and timers never touch the Manager directly; they Post
// events or run closures through Do.
type Loop struct {
	mgr    *wm.Manager
	logger *slog.Logger
	events chan platform.Event
	calls  chan call
	done   chan struct{}
}

// NewLoop creates a loop for mgr. Run must be called to start it.
func NewLoop(mgr *wm.Manager, logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		mgr:    mgr,
		logger: logger,
		events: make(chan platform.Event, 256),
		calls:  make(chan call),
		done:   make(chan struct{}),
	}
}

// Post queues an event. It blocks while the queue is full and drops the
// event once the loop has stopped.
func (l *Loop) Post(ev platform.Event) {
	select {
	case l.events <- ev:
	case <-l.done:
	}
}

// Do runs fn on the loop goroutine and waits for its result.
func (l *Loop) Do(ctx context.Context, fn func(*wm.Manager) error) error {
	c := call{fn: fn, done: make(chan error, 1)}
	select {
	case l.calls <- c:
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-c.done:
		return err
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} { return l.done }

// Run processes events until ctx is cancelled or the quit action runs.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)
	l.logger.Info("event loop started")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("event loop stopped", "reason", ctx.Err())
			return nil
		case ev := <-l.events:
			l.handle(ev)
		case c := <-l.calls:
			c.done <- l.invoke(c.fn)
		}
		if l.mgr.Done() {
			l.logger.Info("event loop stopped", "reason", "quit")
			return nil
		}
	}
}

func (l *Loop) handle(ev platform.Event) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("event handler panic recovered", "event", fmt.Sprintf("%T", ev), "error", r)
		}
	}()
	l.mgr.Handle(ev)
}

func (l *Loop) invoke(fn func(*wm.Manager) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("loop call panic recovered", "error", r)
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(l.mgr)
}
