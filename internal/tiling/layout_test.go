package tiling

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTile_MasterAndTwoStackWindows(t *testing.T) {
	work := Rect{X: 0, Y: 0, Width: 1000, Height: 800}
	got := Tile(work, Params{MFact: 0.55, NMaster: 1}, 3)
	want := []Rect{
		{X: 0, Y: 0, Width: 550, Height: 800},
		{X: 550, Y: 0, Width: 450, Height: 400},
		{X: 550, Y: 400, Width: 450, Height: 400},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("tile mismatch (-want +got):\n%s", diff)
	}

	// Content areas after a 1px border.
	if c := got[0].Inset(1); c != (Rect{X: 1, Y: 1, Width: 548, Height: 798}) {
		t.Fatalf("expected master content 548x798+1+1, got %s", c)
	}
}

func TestTile_RemainderGoesToLastWindow(t *testing.T) {
	work := Rect{X: 10, Y: 20, Width: 300, Height: 100}
	got := Tile(work, Params{MFact: 0.5, NMaster: 1}, 4)
	if len(got) != 4 {
		t.Fatalf("expected 4 rects, got %d", len(got))
	}
	// Stack of 3 in 100px: 33, 33, 34.
	heights := []int{got[1].Height, got[2].Height, got[3].Height}
	if diff := cmp.Diff([]int{33, 33, 34}, heights); diff != "" {
		t.Fatalf("stack heights (-want +got):\n%s", diff)
	}
	if got[3].Bottom() != work.Bottom() {
		t.Fatalf("expected last window to reach %d, got %d", work.Bottom(), got[3].Bottom())
	}
}

func TestTile_AllMasterUsesFullWidth(t *testing.T) {
	work := Rect{Width: 1000, Height: 800}
	got := Tile(work, Params{MFact: 0.55, NMaster: 2}, 2)
	for i, r := range got {
		if r.Width != 1000 {
			t.Fatalf("window %d: expected full width, got %d", i, r.Width)
		}
	}
	if got[0].Height != 400 || got[1].Y != 400 {
		t.Fatalf("expected two 400px rows, got %v", got)
	}
}

func TestTile_ZeroMasterStacksFullWidth(t *testing.T) {
	work := Rect{Width: 1000, Height: 900}
	got := Tile(work, Params{MFact: 0.55, NMaster: 0}, 3)
	for i, r := range got {
		if r.X != 0 || r.Width != 1000 {
			t.Fatalf("window %d: expected full-width stack slot, got %s", i, r)
		}
	}
}

func TestTile_ColumnWidthsSumToWorkWidth(t *testing.T) {
	for _, width := range []int{999, 1000, 1366, 2561} {
		for _, mfact := range []float64{0.1, 0.33, 0.55, 0.9} {
			work := Rect{X: 7, Width: width, Height: 600}
			got := Tile(work, Params{MFact: mfact, NMaster: 1}, 3)
			if sum := got[0].Width + got[1].Width; sum != width {
				t.Fatalf("width=%d mfact=%v: columns sum to %d", width, mfact, sum)
			}
		}
	}
}

func TestArrange_Deterministic(t *testing.T) {
	work := Rect{X: 0, Y: 32, Width: 1920, Height: 1048}
	p := Params{MFact: 0.55, NMaster: 2}
	for _, kind := range []Kind{KindTile, KindMonocle, KindGrid} {
		a := Arrange(kind, work, p, 7)
		b := Arrange(kind, work, p, 7)
		if diff := cmp.Diff(a, b); diff != "" {
			t.Fatalf("%s not deterministic:\n%s", kind, diff)
		}
	}
}

func TestMonocle_EveryWindowGetsWorkArea(t *testing.T) {
	work := Rect{X: 1920, Y: 0, Width: 2560, Height: 1408}
	for i, r := range Monocle(work, 4) {
		if r != work {
			t.Fatalf("window %d: expected %s, got %s", i, work, r)
		}
	}
}

func TestArrange_FloatingPlacesNothing(t *testing.T) {
	if got := Arrange(KindFloating, Rect{Width: 10, Height: 10}, Params{}, 3); got != nil {
		t.Fatalf("expected no rects, got %v", got)
	}
}

func TestGrid_LastRowStretches(t *testing.T) {
	work := Rect{Width: 300, Height: 200}
	got := Grid(work, 5)
	// 3 cols x 2 rows; last row holds 2 windows of 150px.
	if len(got) != 5 {
		t.Fatalf("expected 5 rects, got %d", len(got))
	}
	if got[3].Width != 150 || got[4].Width != 150 {
		t.Fatalf("expected stretched last row, got %s and %s", got[3], got[4])
	}
	if got[4].Right() != 300 || got[4].Bottom() != 200 {
		t.Fatalf("expected last cell to reach corner, got %s", got[4])
	}
}

func TestWorkArea_ReservesBar(t *testing.T) {
	mon := Rect{X: 0, Y: 0, Width: 1000, Height: 832}
	if got := WorkArea(mon, Bar{Show: true, Top: false, Height: 32}); got != (Rect{Width: 1000, Height: 800}) {
		t.Fatalf("bottom bar: got %s", got)
	}
	if got := WorkArea(mon, Bar{Show: true, Top: true, Height: 32}); got != (Rect{Y: 32, Width: 1000, Height: 800}) {
		t.Fatalf("top bar: got %s", got)
	}
	if got := WorkArea(mon, Bar{Show: false, Height: 32}); got != mon {
		t.Fatalf("hidden bar: got %s", got)
	}
}

func TestWorkArea_ClampsToMinimumSize(t *testing.T) {
	got := WorkArea(Rect{Width: 10, Height: 10}, Bar{Show: true, Height: 50})
	if got.Width != 10 || got.Height != 1 {
		t.Fatalf("expected 10x1, got %dx%d", got.Width, got.Height)
	}
}

func TestClampMFact(t *testing.T) {
	if got := ClampMFact(0.95); got != MaxMFact {
		t.Fatalf("expected %v, got %v", MaxMFact, got)
	}
	if got := ClampMFact(0.05); got != MinMFact {
		t.Fatalf("expected %v, got %v", MinMFact, got)
	}
	if got := ClampNMaster(-1); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestLogicalSize_ScaleAndRotation(t *testing.T) {
	w, h := LogicalSize(3840, 2160, 2, TransformNormal)
	if w != 1920 || h != 1080 {
		t.Fatalf("expected 1920x1080, got %dx%d", w, h)
	}
	w, h = LogicalSize(1920, 1080, 1, Transform90)
	if w != 1080 || h != 1920 {
		t.Fatalf("expected rotated 1080x1920, got %dx%d", w, h)
	}
}

func TestCentered(t *testing.T) {
	got := Centered(Rect{X: 100, Width: 1000, Height: 800}, 0, 0)
	if got != (Rect{X: 350, Y: 200, Width: 500, Height: 400}) {
		t.Fatalf("got %s", got)
	}
}
