package scratch

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var termArgv = []string{"ghostty", "--class=ghostty.term"}

func TestToggle_SingleSpawnInFlight(t *testing.T) {
	p := New()

	out, err := p.Toggle('t', termArgv)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if out.Step != StepSpawn {
		t.Fatalf("expected spawn, got %v", out.Step)
	}
	if diff := cmp.Diff(termArgv, out.Argv); diff != "" {
		t.Fatalf("argv mismatch (-want +got):\n%s", diff)
	}

	out, err = p.Toggle('t', termArgv)
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if out.Step != StepNone {
		t.Fatalf("expected no-op while spawning, got %v", out.Step)
	}
}

func TestToggle_ShowHideCycle(t *testing.T) {
	p := New()
	if _, err := p.Toggle('t', termArgv); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !p.Attach('t', 42) {
		t.Fatalf("expected attach to succeed")
	}
	if !p.Visible('t') {
		t.Fatalf("expected pad shown after arrival")
	}

	out, _ := p.Toggle('t', nil)
	if out.Step != StepHide || out.Window != 42 {
		t.Fatalf("expected hide of 42, got %+v", out)
	}
	out, _ = p.Toggle('t', nil)
	if out.Step != StepShow || out.Window != 42 {
		t.Fatalf("expected show of 42, got %+v", out)
	}
}

func TestAttach_RejectsSecondWindow(t *testing.T) {
	p := New()
	p.Attach('n', 1)
	if p.Attach('n', 2) {
		t.Fatalf("expected second window for same key to be rejected")
	}
	if !p.Owner('n', 1) || p.Owner('n', 2) {
		t.Fatalf("expected window 1 to keep ownership")
	}
}

func TestDetach_ReturnsToUnspawned(t *testing.T) {
	p := New()
	p.Toggle('b', []string{"btop"})
	p.Attach('b', 7)

	key, ok := p.Detach(7)
	if !ok || key != 'b' {
		t.Fatalf("expected pad b detached, got %q %v", key, ok)
	}
	out, _ := p.Toggle('b', nil)
	if out.Step != StepSpawn {
		t.Fatalf("expected respawn after window vanished, got %v", out.Step)
	}
}

func TestSpawnFailed_ResetsOnlyInFlight(t *testing.T) {
	p := New()
	p.Toggle('s', []string{"signal-desktop"})
	if !p.SpawnFailed('s') {
		t.Fatalf("expected reset of in-flight spawn")
	}
	if pad, _ := p.Get('s'); pad.State != Unspawned {
		t.Fatalf("expected unspawned, got %v", pad.State)
	}

	p.Attach('i', 3)
	if p.SpawnFailed('i') {
		t.Fatalf("expected live pad to ignore a late failure")
	}
}

func TestToggle_NoCommand(t *testing.T) {
	_, err := New().Toggle('x', nil)
	if !errors.Is(err, ErrNoCommand) {
		t.Fatalf("expected ErrNoCommand, got %v", err)
	}
}
