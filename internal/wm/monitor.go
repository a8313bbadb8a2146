package wm

import (
	"sort"

	"github.com/1broseidon/tagtile/internal/bindings"
	"github.com/1broseidon/tagtile/internal/platform"
	"github.com/1broseidon/tagtile/internal/tags"
	"github.com/1broseidon/tagtile/internal/tiling"
)

// Monitor looks up an attached monitor by output name.
func (m *Manager) Monitor(name string) *Monitor {
	for _, mon := range m.mons {
		if mon.Name == name {
			return mon
		}
	}
	return nil
}

// attachMonitor applies the first matching monitor rule to a new output and
// adopts any pooled windows. Re-attaching a known name updates its size.
func (m *Manager) attachMonitor(out platform.Output) {
	rule := m.cfg.MonitorRuleFor(out.Name)
	width, height := outputSize(out, rule.Scale, rule.Transform)

	if mon := m.Monitor(out.Name); mon != nil {
		mon.Geom.Width, mon.Geom.Height = width, height
		if out.Positioned && rule.AutoPosition() {
			mon.Geom.X, mon.Geom.Y = out.X, out.Y
		}
		mon.updateWork(m.cfg.Bar)
		m.sortMonitors()
		m.arrange(mon)
		m.focus(nil)
		return
	}

	x, y := rule.X, rule.Y
	switch {
	case rule.AutoPosition() && out.Positioned:
		x, y = out.X, out.Y
	case rule.AutoPosition():
		x, y = 0, 0
		for _, mon := range m.mons {
			if r := mon.Geom.Right(); r > x {
				x = r
			}
		}
	}

	mon := &Monitor{
		Name:      out.Name,
		Geom:      tiling.Rect{X: x, Y: y, Width: width, Height: height},
		MFact:     rule.MFact,
		NMaster:   rule.NMaster,
		Scale:     rule.Scale,
		Transform: rule.Transform,
		ShowBar:   m.cfg.Bar.Show,
		tagset:    [2]tags.Mask{tags.Bit(0), tags.Bit(0)},
	}
	mon.lt[0] = rule.Layout
	if len(m.cfg.Layouts) > 1 && rule.Layout != 1 {
		mon.lt[1] = 1
	}
	mon.updateWork(m.cfg.Bar)

	m.mons = append(m.mons, mon)
	m.sortMonitors()
	if m.selmon == nil {
		m.selmon = mon
	}
	m.logger.Info("monitor attached", "name", mon.Name, "geometry", mon.Geom.String(), "scale", mon.Scale, "transform", string(mon.Transform))

	for _, c := range m.clients {
		if c.Mon != nil {
			continue
		}
		c.Mon = mon
		if !overlaps(c.Float, mon.Geom) {
			c.Float = initialFloat(tiling.Rect{Width: c.Float.Width, Height: c.Float.Height}, mon)
		}
	}
	m.arrange(mon)
	m.focus(nil)
}

// outputSize returns the layout size of out. A positioned output already
// reports its rotated size in the server's pixel space, so scale and
// transform only apply to outputs the manager lays out itself.
func outputSize(out platform.Output, scale float64, t tiling.Transform) (int, int) {
	if out.Positioned {
		return out.Width, out.Height
	}
	return tiling.LogicalSize(out.Width, out.Height, scale, t)
}

// detachMonitor hands the windows of a removed output to the next monitor
// in order, or to the pool when it was the last one.
func (m *Manager) detachMonitor(name string) {
	idx := -1
	for i, mon := range m.mons {
		if mon.Name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	gone := m.mons[idx]
	m.mons = append(m.mons[:idx:idx], m.mons[idx+1:]...)
	m.logger.Info("monitor detached", "name", name, "remaining", len(m.mons))

	if m.grab != nil && m.grab.client.Mon == gone {
		m.grab = nil
	}

	if len(m.mons) == 0 {
		for _, c := range m.clients {
			if c.Mon != gone {
				continue
			}
			if c.shown {
				m.setShown(c, false)
			}
			c.Mon = nil
		}
		m.selmon = nil
		m.focus(nil)
		return
	}

	target := m.mons[idx%len(m.mons)]
	for _, c := range m.clients {
		if c.Mon == gone {
			m.moveToMonitor(c, target, c.Tags)
		}
	}
	if m.selmon == gone {
		m.selmon = target
	}
	m.arrange(target)
	m.focus(nil)
}

func (m *Manager) sortMonitors() {
	sort.SliceStable(m.mons, func(i, j int) bool {
		a, b := m.mons[i].Geom, m.mons[j].Geom
		if a.X != b.X {
			return a.X < b.X
		}
		return a.Y < b.Y
	})
}

// dirToMonitor returns the monitor before (Left) or after (Right) the
// selected one, wrapping at the ends.
func (m *Manager) dirToMonitor(dir bindings.Direction) *Monitor {
	n := len(m.mons)
	if n == 0 {
		return nil
	}
	cur := 0
	for i, mon := range m.mons {
		if mon == m.selmon {
			cur = i
			break
		}
	}
	return m.mons[((cur+int(dir))%n+n)%n]
}

// monitorAt returns the monitor whose geometry contains the point.
func (m *Manager) monitorAt(x, y int) *Monitor {
	for _, mon := range m.mons {
		if mon.Geom.Contains(x, y) {
			return mon
		}
	}
	return nil
}

// moveToMonitor reassigns c, translating its floating geometry so it keeps
// its offset within the work area.
func (m *Manager) moveToMonitor(c *Client, mon *Monitor, newTags tags.Mask) {
	old := c.Mon
	if old == mon {
		return
	}
	if old != nil {
		c.Float.X += mon.Work.X - old.Work.X
		c.Float.Y += mon.Work.Y - old.Work.Y
	}
	if !overlaps(c.Float, mon.Work) {
		c.Float = tiling.Centered(mon.Work, c.Float.Width, c.Float.Height)
	}
	c.Mon = mon
	if !newTags.IsZero() {
		c.Tags = newTags
	}
}

func overlaps(a, b tiling.Rect) bool {
	return !a.Empty() && !b.Empty() &&
		a.X < b.Right() && b.X < a.Right() &&
		a.Y < b.Bottom() && b.Y < a.Bottom()
}
