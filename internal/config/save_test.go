package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/1broseidon/tagtile/internal/tiling"
)

func TestSaveGeneral_KeepsOtherKeys(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "rules.yaml", "rules:\n  - id: mpv\n    tags: [2]\n")
	path := writeConfig(t, dir, "config.yaml", strings.Join([]string{
		"include: rules.yaml",
		"tags: [a, b, c]",
		"border_px: 3",
		"",
	}, "\n"))

	want := General{
		BorderPx:     2,
		SloppyFocus:  false,
		SmartBorders: true,
		MFact:        0.6,
		NMaster:      2,
		Bar:          tiling.Bar{Show: true, Top: true, Height: 24},
	}
	if err := SaveGeneral(path, want); err != nil {
		t.Fatalf("SaveGeneral: %v", err)
	}

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(want, res.Config.General()); diff != "" {
		t.Fatalf("general mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, res.Config.Tags); diff != "" {
		t.Fatalf("tags mismatch (-want +got):\n%s", diff)
	}
	if len(res.Config.Rules) != 1 || res.Config.Rules[0].ID != "mpv" {
		t.Fatalf("expected the included rule to survive, got %v", res.Config.Rules)
	}
	if len(res.Files) != 2 {
		t.Fatalf("expected include to be kept, loaded %v", res.Files)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected no temp files left, got %d entries", len(entries))
	}
}

func TestSaveGeneral_CreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tagtile", "config.yaml")
	g := DefaultConfig().General()
	g.BorderPx = 4
	if err := SaveGeneral(path, g); err != nil {
		t.Fatalf("SaveGeneral: %v", err)
	}
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.BorderPx != 4 {
		t.Fatalf("expected border_px 4, got %d", res.Config.BorderPx)
	}
}

func TestSaveGeneral_InvalidLeavesFileUntouched(t *testing.T) {
	original := "border_px: 3\n"
	path := writeConfig(t, t.TempDir(), "config.yaml", original)

	g := DefaultConfig().General()
	g.MFact = 1.5
	if err := SaveGeneral(path, g); err == nil || !strings.Contains(err.Error(), "default_mfact") {
		t.Fatalf("expected default_mfact error, got %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != original {
		t.Fatalf("file changed after failed save:\n%s", data)
	}
}

func TestWithGeneral(t *testing.T) {
	cfg := DefaultConfig()
	g := cfg.General()
	g.NMaster = 3
	next := cfg.WithGeneral(g)
	if next.DefaultNMaster != 3 || cfg.DefaultNMaster == 3 {
		t.Fatalf("WithGeneral should copy: got %d, original %d", next.DefaultNMaster, cfg.DefaultNMaster)
	}
}
