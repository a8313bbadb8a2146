package wm

import (
	"github.com/1broseidon/tagtile/internal/tiling"
)

// layout returns the current layout of mon.
func (m *Manager) layout(mon *Monitor) tiling.Layout {
	i := mon.LayoutIndex()
	if i < 0 || i >= len(m.cfg.Layouts) {
		return tiling.Layout{Kind: tiling.KindFloating}
	}
	return m.cfg.Layouts[i]
}

func (m *Manager) arrangeAll() {
	for _, mon := range m.mons {
		m.arrange(mon)
	}
	m.emitStatus()
}

// arrange recomputes every window of mon: hidden windows are hidden first,
// visible ones placed, then newly visible ones shown.
func (m *Manager) arrange(mon *Monitor) {
	if mon == nil {
		return
	}
	var appear []*Client
	for _, c := range m.clients {
		if c.Mon != mon {
			continue
		}
		visible := m.Visible(c)
		switch {
		case visible && !c.shown:
			appear = append(appear, c)
		case !visible && c.shown:
			m.setShown(c, false)
		}
	}

	layout := m.layout(mon)
	tiled := m.tiled(mon)
	if layout.Arranges() {
		rects := tiling.Arrange(layout.Kind, mon.Work, tiling.Params{MFact: mon.MFact, NMaster: mon.NMaster}, len(tiled))
		border := m.cfg.BorderPx
		if m.cfg.SmartBorders && (len(tiled) == 1 || layout.Kind == tiling.KindMonocle) {
			border = 0
		}
		for i, c := range tiled {
			m.place(c, rects[i], border)
		}
	} else {
		for _, c := range tiled {
			m.place(c, c.Float, m.cfg.BorderPx)
		}
	}

	for _, c := range m.clients {
		if c.Mon != mon || !m.Visible(c) {
			continue
		}
		switch {
		case c.Fullscreen:
			m.place(c, mon.Geom, 0)
		case c.Floating:
			m.place(c, c.Float, m.cfg.BorderPx)
		}
	}

	for _, c := range appear {
		m.setShown(c, true)
	}
	m.emitStatus()
}

func (m *Manager) place(c *Client, r tiling.Rect, border int) {
	c.Geom = r
	c.Border = border
	if err := m.backend.Place(c.ID, r, border); err != nil {
		m.logger.Warn("place failed", "window", c.ID, "rect", r.String(), "error", err)
	}
}

func (m *Manager) setShown(c *Client, shown bool) {
	c.shown = shown
	var err error
	if shown {
		err = m.backend.Show(c.ID)
	} else {
		err = m.backend.Hide(c.ID)
	}
	if err != nil {
		m.logger.Warn("visibility change failed", "window", c.ID, "shown", shown, "error", err)
	}
}
