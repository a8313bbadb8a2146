package wm

import (
	"fmt"

	"github.com/1broseidon/tagtile/internal/bindings"
	"github.com/1broseidon/tagtile/internal/platform"
	"github.com/1broseidon/tagtile/internal/tiling"
)

type grabKind int

const (
	grabMove grabKind = iota
	grabResize
	grabMaster
)

// grab is an interactive move or resize in progress.
type grab struct {
	client *Client
	kind   grabKind
	startX int
	startY int
	start  tiling.Rect
}

func (m *Manager) buttonPress(e platform.ButtonPressed) bool {
	m.pointer.X, m.pointer.Y = e.X, e.Y

	var target *Client
	if e.Click == bindings.ClickClient && e.Window != 0 {
		if c := m.Client(e.Window); c != nil && m.Visible(c) {
			target = c
			if c != m.sel {
				m.focus(c)
			}
		}
	}

	action, ok := m.table.Button(e.Click, e.Mods, e.Button, e.Tag)
	if !ok {
		return false
	}
	if mr, isGrab := action.(bindings.MoveResize); isGrab {
		if target == nil {
			target = m.sel
		}
		m.beginGrab(target, mr.Mode)
		return true
	}
	m.run(action)
	return true
}

// BarClick resolves a click reported by an external status bar. The bar
// draws the tag, layout symbol, title and status regions, so only those
// contexts are accepted. monitor selects the bar's monitor first; empty
// means the selected one. tag is the clicked tag index for tag-bar clicks.
func (m *Manager) BarClick(monitor string, click bindings.Click, mods bindings.Mods, button bindings.Button, tag int) (bool, error) {
	switch click {
	case bindings.ClickTagBar, bindings.ClickLtSymbol, bindings.ClickTitle, bindings.ClickStatus:
	default:
		return false, fmt.Errorf("click context %q is not a bar region", click)
	}
	if click == bindings.ClickTagBar {
		if n := m.cfg.TagSpace().Len(); tag < 0 || tag >= n {
			return false, fmt.Errorf("tag %d out of range 1..%d", tag+1, n)
		}
	}
	mon := m.selmon
	if monitor != "" {
		if mon = m.Monitor(monitor); mon == nil {
			return false, fmt.Errorf("unknown monitor %q", monitor)
		}
	}
	if mon != nil && mon != m.selmon {
		m.selmon = mon
		m.focus(nil)
	}
	return m.buttonPress(platform.ButtonPressed{
		Click:  click,
		Mods:   mods,
		Button: button,
		Tag:    tag,
		X:      m.pointer.X,
		Y:      m.pointer.Y,
	}), nil
}

func (m *Manager) buttonRelease(e platform.ButtonReleased) {
	m.pointer.X, m.pointer.Y = e.X, e.Y
	g := m.grab
	if g == nil {
		return
	}
	m.grab = nil
	c := g.client
	if g.kind != grabMove || c.Mon == nil {
		return
	}
	// A window dropped on another output moves there.
	if mon := m.monitorAt(e.X, e.Y); mon != nil && mon != c.Mon {
		from := c.Mon
		c.Mon = mon
		if !c.Tags.Sticky() {
			c.Tags = mon.Tags()
		}
		m.arrange(from)
		m.arrange(mon)
		m.focus(c)
	}
}

// beginGrab starts moving or resizing c with the pointer. A tiled window
// in a Tile layout being resized drags the master boundary instead; any
// other tiled window becomes floating first.
func (m *Manager) beginGrab(c *Client, mode bindings.GrabMode) {
	if c == nil || c.Fullscreen || c.Mon == nil || !m.Visible(c) {
		return
	}
	g := &grab{client: c, startX: m.pointer.X, startY: m.pointer.Y}
	layout := m.layout(c.Mon)

	switch {
	case mode == bindings.GrabResize && !c.Floating && layout.Kind == tiling.KindTile:
		g.kind = grabMaster
	default:
		if mode == bindings.GrabMove {
			g.kind = grabMove
		} else {
			g.kind = grabResize
		}
		if !c.Floating && layout.Arranges() {
			c.Floating = true
			c.Float = c.Geom
			m.arrange(c.Mon)
		}
	}
	g.start = c.Float
	m.grab = g
}

func (m *Manager) pointerMotion(x, y int) {
	m.pointer.X, m.pointer.Y = x, y
	if g := m.grab; g != nil {
		m.grabMotion(g, x, y)
		return
	}
	if !m.cfg.SloppyFocus {
		return
	}
	if mon := m.monitorAt(x, y); mon != nil && mon != m.selmon {
		m.selmon = mon
		m.focus(nil)
	}
	if c := m.clientAt(x, y); c != nil && c != m.sel {
		m.focus(c)
	}
}

func (m *Manager) grabMotion(g *grab, x, y int) {
	c := g.client
	dx, dy := x-g.startX, y-g.startY
	switch g.kind {
	case grabMove:
		c.Float.X = g.start.X + dx
		c.Float.Y = g.start.Y + dy
		m.place(c, c.Float, c.Border)
	case grabResize:
		c.Float.Width = max(1, g.start.Width+dx)
		c.Float.Height = max(1, g.start.Height+dy)
		m.place(c, c.Float, c.Border)
	case grabMaster:
		work := c.Mon.Work
		if work.Width <= 0 {
			return
		}
		c.Mon.MFact = tiling.ClampMFact(float64(x-work.X) / float64(work.Width))
		m.arrange(c.Mon)
	}
}
