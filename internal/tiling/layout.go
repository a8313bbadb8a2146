package tiling

import (
	"fmt"
	"math"
	"strings"
)

// Rect represents a window position and size
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Inset shrinks r by n pixels on every side, never below 1x1.
func (r Rect) Inset(n int) Rect {
	out := Rect{X: r.X + n, Y: r.Y + n, Width: r.Width - 2*n, Height: r.Height - 2*n}
	if out.Width < 1 {
		out.Width = 1
	}
	if out.Height < 1 {
		out.Height = 1
	}
	return out
}

// Contains reports whether the point (x, y) lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

func (r Rect) Right() int { return r.X + r.Width }
func (r Rect) Bottom() int { return r.Y + r.Height }
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }
func (r Rect) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y)
}

// Kind identifies an arrange strategy.
type Kind string

const (
	KindTile     Kind = "tile"
	KindMonocle  Kind = "monocle"
	KindGrid     Kind = "grid"
	KindFloating Kind = "floating"
)

// ParseKind accepts the strategy names used in configuration.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindTile, KindMonocle, KindGrid, KindFloating:
		return k, nil
	}
	return "", fmt.Errorf("unknown arrange strategy %q (want tile, monocle, grid or floating)", s)
}

// Layout pairs a bar symbol with an arrange strategy. Layouts carry no
// per-window state; master fraction and count live on the monitor.
type Layout struct {
	Symbol string
	Kind   Kind
}

// Arranges reports whether the layout positions windows at all. Floating
// layouts leave every window at its stored geometry.
func (l Layout) Arranges() bool { return l.Kind != KindFloating && l.Kind != "" }

// Params are the per-monitor inputs to an arrange pass.
type Params struct {
	MFact   float64
	NMaster int
}

const (
	MinMFact = 0.1
	MaxMFact = 0.9
)

// ClampMFact keeps the master fraction inside [MinMFact, MaxMFact].
func ClampMFact(f float64) float64 {
	return math.Max(MinMFact, math.Min(MaxMFact, f))
}

// ClampNMaster keeps the master count non-negative.
func ClampNMaster(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// Arrange returns one outer rectangle per tiled window, in window order.
// The result depends only on its arguments.
func Arrange(kind Kind, work Rect, p Params, n int) []Rect {
	if n <= 0 {
		return nil
	}
	switch kind {
	case KindTile:
		return Tile(work, p, n)
	case KindMonocle:
		return Monocle(work, n)
	case KindGrid:
		return Grid(work, n)
	}
	return nil
}

// Tile splits the work area into a master column holding the first
// min(NMaster, n) windows and a stack column holding the rest.
func Tile(work Rect, p Params, n int) []Rect {
	if n <= 0 {
		return nil
	}
	m := p.NMaster
	if m > n {
		m = n
	}
	if m < 0 {
		m = 0
	}

	masterWidth := work.Width
	switch {
	case m == 0:
		masterWidth = 0
	case n > m:
		masterWidth = int(math.Round(float64(work.Width) * p.MFact))
	}

	out := make([]Rect, 0, n)
	master := Rect{X: work.X, Y: work.Y, Width: masterWidth, Height: work.Height}
	stack := Rect{X: work.X + masterWidth, Y: work.Y, Width: work.Width - masterWidth, Height: work.Height}
	out = append(out, column(master, m)...)
	out = append(out, column(stack, n-m)...)
	return out
}

// column stacks count windows top-to-bottom with equal heights; the last one
// absorbs the integer remainder.
func column(area Rect, count int) []Rect {
	if count <= 0 {
		return nil
	}
	h := area.Height / count
	out := make([]Rect, count)
	y := area.Y
	for i := 0; i < count; i++ {
		height := h
		if i == count-1 {
			height = area.Bottom() - y
		}
		out[i] = Rect{X: area.X, Y: y, Width: area.Width, Height: height}
		y += height
	}
	return out
}

// Monocle gives every window the full work area.
func Monocle(work Rect, n int) []Rect {
	if n <= 0 {
		return nil
	}
	out := make([]Rect, n)
	for i := range out {
		out[i] = work
	}
	return out
}

// CalculateGrid determines the grid dimensions for the given number of windows
func CalculateGrid(numWindows int) (rows, cols int) {
	if numWindows <= 0 {
		return 0, 0
	}
	cols = int(math.Ceil(math.Sqrt(float64(numWindows))))
	rows = int(math.Ceil(float64(numWindows) / float64(cols)))
	return rows, cols
}

// Grid arranges windows in a near-square grid. Windows on a short last row
// expand to fill the width. The last row and column absorb the remainders.
func Grid(work Rect, n int) []Rect {
	if n <= 0 {
		return nil
	}
	rows, cols := CalculateGrid(n)
	out := make([]Rect, 0, n)
	y := work.Y
	rowHeight := work.Height / rows
	for row := 0; row < rows; row++ {
		height := rowHeight
		if row == rows-1 {
			height = work.Bottom() - y
		}
		inRow := cols
		if remaining := n - row*cols; remaining < cols {
			inRow = remaining
		}
		cellWidth := work.Width / inRow
		x := work.X
		for col := 0; col < inRow; col++ {
			width := cellWidth
			if col == inRow-1 {
				width = work.Right() - x
			}
			out = append(out, Rect{X: x, Y: y, Width: width, Height: height})
			x += width
		}
		y += height
	}
	return out
}

// Bar describes the strip reserved for a status bar on each monitor.
type Bar struct {
	Show   bool
	Top    bool
	Height int
}

// WorkArea removes the bar reservation from a monitor's geometry,
// returning the bounds available to windows.
func WorkArea(monitor Rect, bar Bar) Rect {
	adjusted := monitor
	if bar.Show && bar.Height > 0 {
		adjusted.Height -= bar.Height
		if bar.Top {
			adjusted.Y += bar.Height
		}
	}

	if adjusted.Width < 1 {
		adjusted.Width = 1
	}
	if adjusted.Height < 1 {
		adjusted.Height = 1
	}
	return adjusted
}

// Centered returns a width x height rectangle centered in area. Unknown
// sizes default to half of the area.
func Centered(area Rect, width, height int) Rect {
	if width <= 0 {
		width = area.Width / 2
	}
	if height <= 0 {
		height = area.Height / 2
	}
	if width > area.Width {
		width = area.Width
	}
	if height > area.Height {
		height = area.Height
	}
	return Rect{
		X:      area.X + (area.Width-width)/2,
		Y:      area.Y + (area.Height-height)/2,
		Width:  width,
		Height: height,
	}
}
