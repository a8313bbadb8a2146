//go:build unix

package spawn

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/1broseidon/tagtile/internal/platform"
)

func newTestLauncher() (*Launcher, chan platform.Event) {
	events := make(chan platform.Event, 4)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewLauncher(func(ev platform.Event) { events <- ev }, logger), events
}

func TestSpawnMissingBinary(t *testing.T) {
	l, events := newTestLauncher()
	if err := l.Spawn([]string{"/nonexistent/tagtile-test-binary"}, 't'); err == nil {
		t.Fatal("expected start error for missing binary")
	}
	select {
	case ev := <-events:
		t.Fatalf("start failures are returned, not posted; got %#v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSpawnEmptyCommand(t *testing.T) {
	l, _ := newTestLauncher()
	if err := l.Spawn(nil, 0); err == nil {
		t.Fatal("expected error for empty command")
	}
}

func TestScratchpadExitFailurePosted(t *testing.T) {
	l, events := newTestLauncher()
	if err := l.Spawn([]string{"/bin/sh", "-c", "exit 3"}, 't'); err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	select {
	case ev := <-events:
		failed, ok := ev.(platform.SpawnFailed)
		if !ok {
			t.Fatalf("expected SpawnFailed, got %T", ev)
		}
		if failed.ScratchKey != 't' || failed.Err == nil {
			t.Fatalf("unexpected event %+v", failed)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no SpawnFailed after scratchpad command exited")
	}
}

func TestPlainSpawnFailureNotPosted(t *testing.T) {
	l, events := newTestLauncher()
	if err := l.Spawn([]string{"/bin/sh", "-c", "exit 1"}, 0); err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	select {
	case ev := <-events:
		t.Fatalf("unexpected event %#v", ev)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestScratchpadCleanExitPosted(t *testing.T) {
	l, events := newTestLauncher()
	if err := l.Spawn([]string{"true"}, 't'); err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	select {
	case ev := <-events:
		failed, ok := ev.(platform.SpawnFailed)
		if !ok {
			t.Fatalf("expected SpawnFailed, got %T", ev)
		}
		if failed.ScratchKey != 't' || !errors.Is(failed.Err, ErrExitedWithoutWindow) {
			t.Fatalf("unexpected event %+v", failed)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no SpawnFailed after scratchpad command exited cleanly")
	}
}
