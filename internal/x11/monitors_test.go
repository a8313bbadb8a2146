package x11

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDiffOutputs(t *testing.T) {
	prev := []Output{
		{Name: "eDP-1", Width: 1920, Height: 1080},
		{Name: "HDMI-1", X: 1920, Width: 2560, Height: 1440},
	}
	curr := []Output{
		{Name: "eDP-1", Width: 1920, Height: 1200},
		{Name: "DP-2", X: 1920, Width: 3840, Height: 2160},
	}

	added, removed, changed := DiffOutputs(prev, curr)
	if diff := cmp.Diff([]Output{{Name: "DP-2", X: 1920, Width: 3840, Height: 2160}}, added); diff != "" {
		t.Fatalf("added mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Output{{Name: "HDMI-1", X: 1920, Width: 2560, Height: 1440}}, removed); diff != "" {
		t.Fatalf("removed mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Output{{Name: "eDP-1", Width: 1920, Height: 1200}}, changed); diff != "" {
		t.Fatalf("changed mismatch (-want +got):\n%s", diff)
	}
}

func TestDiffOutputsUnchanged(t *testing.T) {
	outs := []Output{{Name: "eDP-1", Width: 1920, Height: 1080}}
	added, removed, changed := DiffOutputs(outs, outs)
	if len(added)+len(removed)+len(changed) != 0 {
		t.Fatalf("expected no differences, got %v %v %v", added, removed, changed)
	}
}
