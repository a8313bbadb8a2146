package tui

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/1broseidon/tagtile/internal/config"
)

func TestGeneralTabEditCapturesKeys(t *testing.T) {
	m := newTestModel(t, &fakeDaemon{})
	m, _ = step(t, m, key("3"))
	if m.activeTab != TabGeneral {
		t.Fatalf("activeTab = %v, want %v", m.activeTab, TabGeneral)
	}
	m, _ = step(t, m, key("e"))
	if !m.generalTab.Capturing() || m.generalTab.form == nil {
		t.Fatalf("form not open after 'e'")
	}

	// "q" belongs to the focused input, not the quit binding.
	m, _ = step(t, m, key("q"))
	if !m.generalTab.Capturing() {
		t.Fatalf("'q' closed the form")
	}

	m, _ = step(t, m, key("esc"))
	if m.generalTab.Capturing() || m.generalTab.form != nil {
		t.Fatalf("esc did not cancel editing")
	}
}

func TestGeneralTabSaveWritesAndReloads(t *testing.T) {
	d := &fakeDaemon{}
	m := newTestModel(t, d)
	m, _ = step(t, m, key("3"))
	m, _ = step(t, m, key("e"))

	f := m.generalTab.fields
	f.BorderPx = "7"
	f.MFact = "0.6"
	f.SmartBorders = !f.SmartBorders
	if err := m.generalTab.finishEditing(); err != nil {
		t.Fatalf("finishEditing: %v", err)
	}
	if m.generalTab.phase != generalConfirm {
		t.Fatalf("phase = %v, want confirm", m.generalTab.phase)
	}
	if !strings.Contains(m.generalTab.diff, "border_px") {
		t.Fatalf("diff does not mention border_px:\n%s", m.generalTab.diff)
	}
	want := m.generalTab.pending

	m, cmd := step(t, m, key("enter"))
	if cmd == nil {
		t.Fatalf("enter returned no command")
	}
	msg := cmd()
	res, ok := msg.(resultMsg)
	if !ok || res.what != "save" || res.err != nil {
		t.Fatalf("save result = %#v", msg)
	}
	m, _ = step(t, m, res)

	if d.reloads != 1 {
		t.Fatalf("reloads = %d, want 1", d.reloads)
	}
	if m.flash != "save: ok" {
		t.Fatalf("flash = %q", m.flash)
	}
	loaded, err := config.LoadFromPath(m.generalTab.path)
	if err != nil {
		t.Fatalf("load saved config: %v", err)
	}
	if diff := cmp.Diff(want, loaded.Config.General()); diff != "" {
		t.Fatalf("saved settings mismatch (-want +got):\n%s", diff)
	}
	if got := m.generalTab.cfg.BorderPx; got != 7 {
		t.Fatalf("tab not reloaded, border_px = %d", got)
	}
}

func TestGeneralTabUnchangedIsNotSaved(t *testing.T) {
	m := newTestModel(t, &fakeDaemon{})
	m, _ = step(t, m, key("3"))
	m, _ = step(t, m, key("e"))

	err := m.generalTab.finishEditing()
	if !errors.Is(err, errNoChanges) {
		t.Fatalf("finishEditing = %v, want %v", err, errNoChanges)
	}
	if m.generalTab.phase != generalEditing {
		t.Fatalf("phase = %v, want editing", m.generalTab.phase)
	}
}

func TestGeneralTabRejectsBadNumbers(t *testing.T) {
	if err := nonNegativeInt("-1"); err == nil {
		t.Fatalf("nonNegativeInt(-1) accepted")
	}
	if err := nonNegativeInt("3"); err != nil {
		t.Fatalf("nonNegativeInt(3): %v", err)
	}
	for _, s := range []string{"0", "1", "x", "1.5"} {
		if err := fraction(s); err == nil {
			t.Fatalf("fraction(%q) accepted", s)
		}
	}
	if err := fraction("0.55"); err != nil {
		t.Fatalf("fraction(0.55): %v", err)
	}
}
