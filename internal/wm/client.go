package wm

import (
	"github.com/1broseidon/tagtile/internal/platform"
	"github.com/1broseidon/tagtile/internal/tags"
	"github.com/1broseidon/tagtile/internal/tiling"
)

// manage inserts a new window at the head of the client list, the master
// position, after applying the first matching rule.
func (m *Manager) manage(w platform.Window) {
	if w.ID == 0 || m.Client(w.ID) != nil {
		return
	}
	d := m.matcher.Match(w.AppID, w.Title)

	c := &Client{
		ID:         w.ID,
		AppID:      w.AppID,
		Title:      w.Title,
		Floating:   d.Floating || w.Dialog,
		Fullscreen: w.Fullscreen,
		Terminal:   d.Terminal,
		Geom:       w.Bounds,
	}
	if d.ScratchKey != 0 {
		if m.pads.Attach(d.ScratchKey, w.ID) {
			c.ScratchKey = d.ScratchKey
		} else {
			m.logger.Debug("scratchpad already has a window", "key", string(d.ScratchKey), "window", w.ID)
		}
	}

	mon := m.selmon
	if d.Monitor >= 0 && d.Monitor < len(m.mons) {
		mon = m.mons[d.Monitor]
	}
	c.Mon = mon

	switch {
	case d.Tags.Sticky():
		c.Tags = d.Tags
	case !d.Tags.Within(m.space.Len()).IsZero():
		c.Tags = d.Tags.Within(m.space.Len())
	case mon != nil:
		c.Tags = mon.Tags()
	default:
		c.Tags = tags.Bit(0)
	}

	if mon != nil {
		c.Float = initialFloat(w.Bounds, mon)
	} else {
		c.Float = w.Bounds
	}

	m.clients = append([]*Client{c}, m.clients...)
	m.fstack = append([]*Client{c}, m.fstack...)
	m.logger.Debug("window managed", "window", c.ID, "app_id", c.AppID, "rule", d.Rule, "tags", c.Tags.String())

	if mon == nil {
		return
	}
	m.arrange(mon)
	m.focus(nil)
}

// initialFloat keeps an explicit position that lies on the monitor and
// otherwise centers the window in the work area, at half the work area when
// the size is unknown.
func initialFloat(bounds tiling.Rect, mon *Monitor) tiling.Rect {
	if !bounds.Empty() && (bounds.X != 0 || bounds.Y != 0) && mon.Geom.Contains(bounds.X, bounds.Y) {
		return bounds
	}
	w, h := bounds.Width, bounds.Height
	if w <= 0 || h <= 0 {
		w, h = mon.Work.Width/2, mon.Work.Height/2
	}
	return tiling.Centered(mon.Work, w, h)
}

func (m *Manager) unmanage(id platform.WindowID) {
	c := m.Client(id)
	if c == nil {
		return
	}
	m.clients = removeClient(m.clients, c)
	m.fstack = removeClient(m.fstack, c)
	if c.ScratchKey != 0 {
		m.pads.Detach(c.ID)
	}
	if m.grab != nil && m.grab.client == c {
		m.grab = nil
	}
	m.logger.Debug("window unmanaged", "window", id)
	if c.Mon != nil {
		m.arrange(c.Mon)
	}
	m.focus(nil)
}

func removeClient(list []*Client, c *Client) []*Client {
	for i, x := range list {
		if x == c {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	return list
}

// focusTop returns the most recently focused visible client on mon.
func (m *Manager) focusTop(mon *Monitor) *Client {
	if mon == nil {
		return nil
	}
	for _, c := range m.fstack {
		if c.Mon == mon && m.Visible(c) {
			return c
		}
	}
	return nil
}

// focus gives input focus to c, or to the top of the selected monitor when
// c is nil or not visible.
func (m *Manager) focus(c *Client) {
	if c == nil || !m.Visible(c) {
		c = m.focusTop(m.selmon)
	}
	if c != nil {
		m.selmon = c.Mon
		m.fstack = append([]*Client{c}, removeClient(m.fstack, c)...)
		c.Urgent = false
	}
	prev := m.sel
	m.sel = c
	if prev != c {
		var id platform.WindowID
		if c != nil {
			id = c.ID
		}
		if err := m.backend.Focus(id); err != nil {
			m.logger.Warn("focus failed", "window", id, "error", err)
		}
	}
	m.emitStatus()
}

// tiled returns the visible, non-floating, non-fullscreen clients of mon in
// tiling order.
func (m *Manager) tiled(mon *Monitor) []*Client {
	var out []*Client
	for _, c := range m.clients {
		if c.Mon == mon && !c.Floating && !c.Fullscreen && m.Visible(c) {
			out = append(out, c)
		}
	}
	return out
}

// visibleOn returns the visible clients of mon in tiling order.
func (m *Manager) visibleOn(mon *Monitor) []*Client {
	var out []*Client
	for _, c := range m.clients {
		if c.Mon == mon && m.Visible(c) {
			out = append(out, c)
		}
	}
	return out
}

// clientAt returns the topmost visible client under the point. Floating and
// fullscreen clients are above tiled ones; within a group the most recently
// focused wins.
func (m *Manager) clientAt(x, y int) *Client {
	var tiled *Client
	for _, c := range m.fstack {
		if !m.Visible(c) || !c.Geom.Contains(x, y) {
			continue
		}
		if c.Floating || c.Fullscreen {
			return c
		}
		if tiled == nil {
			tiled = c
		}
	}
	return tiled
}

func (m *Manager) setFullscreen(c *Client, on bool) {
	if c.Fullscreen == on {
		return
	}
	c.Fullscreen = on
	if c.Mon != nil {
		m.arrange(c.Mon)
	}
	m.emitStatus()
}
