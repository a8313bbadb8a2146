package wm

import (
	"fmt"

	"github.com/1broseidon/tagtile/internal/bindings"
	"github.com/1broseidon/tagtile/internal/scratch"
	"github.com/1broseidon/tagtile/internal/tags"
	"github.com/1broseidon/tagtile/internal/tiling"
)

// Dispatch runs an action against the selected monitor and window. Attempts
// to break an invariant, such as leaving a monitor without tags, are ignored
// and return nil; errors report failures of external collaborators.
func (m *Manager) Dispatch(a bindings.Action) error {
	switch v := a.(type) {
	case bindings.Spawn:
		return m.spawn(v.Argv, 0)
	case bindings.ToggleScratch:
		return m.toggleScratch(v.Key, v.Argv)
	case bindings.FocusStack:
		m.focusStack(v.Delta)
	case bindings.MoveStack:
		m.moveStack(v.Delta)
	case bindings.IncNMaster:
		m.incNMaster(v.Delta)
	case bindings.SetMFact:
		m.setMFact(v)
	case bindings.Zoom:
		m.zoom()
	case bindings.View:
		m.view(v.Tags)
	case bindings.ViewPrev:
		m.viewPrev()
	case bindings.ToggleView:
		m.toggleView(v.Tags)
	case bindings.Tag:
		m.tag(v.Tags)
	case bindings.ToggleTag:
		m.toggleTag(v.Tags)
	case bindings.KillClient:
		return m.killClient()
	case bindings.SetLayout:
		return m.setLayout(v.Index)
	case bindings.ToggleFloating:
		m.toggleFloating()
	case bindings.ToggleFullscreen:
		if m.sel != nil {
			m.setFullscreen(m.sel, !m.sel.Fullscreen)
		}
	case bindings.FocusMon:
		m.focusMon(v.Dir)
	case bindings.TagMon:
		m.tagMon(v.Dir)
	case bindings.ToggleBar:
		m.toggleBar()
	case bindings.MoveResize:
		m.beginGrab(m.sel, v.Mode)
	case bindings.ChVT:
		if err := m.backend.ChangeVT(v.VT); err != nil {
			m.reportError(fmt.Errorf("chvt %d: %w", v.VT, err))
			return err
		}
	case bindings.Quit:
		m.logger.Info("quit requested")
		m.quit = true
	case nil:
		return fmt.Errorf("no action")
	default:
		return fmt.Errorf("unsupported action %s", a.Kind())
	}
	return nil
}

func (m *Manager) spawn(argv []string, key rune) error {
	if len(argv) == 0 {
		return fmt.Errorf("spawn: empty command")
	}
	if m.launcher == nil {
		return fmt.Errorf("spawn %v: no launcher", argv)
	}
	if err := m.launcher.Spawn(argv, key); err != nil {
		if key != 0 {
			m.pads.SpawnFailed(key)
		}
		m.logger.Warn("spawn failed", "argv", argv, "error", err)
		m.reportError(fmt.Errorf("spawn %v: %w", argv, err))
		m.emitStatus()
		return err
	}
	m.logger.Debug("spawned", "argv", argv, "scratch", string(key))
	return nil
}

func (m *Manager) toggleScratch(key rune, argv []string) error {
	if len(argv) == 0 {
		argv = m.cfg.ScratchCommand(key)
	}
	out, err := m.pads.Toggle(key, argv)
	if err != nil {
		m.reportError(err)
		return err
	}
	switch out.Step {
	case scratch.StepSpawn:
		return m.spawn(out.Argv, key)
	case scratch.StepShow:
		c := m.Client(out.Window)
		if c == nil || c.Mon == nil {
			return nil
		}
		m.arrange(c.Mon)
		m.focus(c)
	case scratch.StepHide:
		c := m.Client(out.Window)
		if c == nil || c.Mon == nil {
			return nil
		}
		m.arrange(c.Mon)
		m.focus(nil)
	}
	return nil
}

// focusStack moves focus by delta among the visible clients of the selected
// monitor, wrapping at the ends.
func (m *Manager) focusStack(delta int) {
	if m.sel == nil || m.sel.Fullscreen || delta == 0 {
		return
	}
	vis := m.visibleOn(m.selmon)
	i := indexOf(vis, m.sel)
	if i < 0 || len(vis) < 2 {
		return
	}
	n := len(vis)
	m.focus(vis[((i+delta)%n+n)%n])
}

// moveStack swaps the selected tiled client with its neighbour delta steps
// away among the tiled clients, wrapping at the ends.
func (m *Manager) moveStack(delta int) {
	if m.sel == nil || delta == 0 {
		return
	}
	tiled := m.tiled(m.selmon)
	i := indexOf(tiled, m.sel)
	if i < 0 || len(tiled) < 2 {
		return
	}
	n := len(tiled)
	other := tiled[((i+delta)%n+n)%n]
	a, b := indexOf(m.clients, m.sel), indexOf(m.clients, other)
	m.clients[a], m.clients[b] = m.clients[b], m.clients[a]
	m.arrange(m.selmon)
}

func indexOf(list []*Client, c *Client) int {
	for i, x := range list {
		if x == c {
			return i
		}
	}
	return -1
}

func (m *Manager) incNMaster(delta int) {
	if m.selmon == nil {
		return
	}
	m.selmon.NMaster = tiling.ClampNMaster(m.selmon.NMaster + delta)
	m.arrange(m.selmon)
}

func (m *Manager) setMFact(v bindings.SetMFact) {
	if m.selmon == nil || !m.layout(m.selmon).Arranges() {
		return
	}
	f := m.selmon.MFact + v.Delta
	if v.Absolute {
		f = v.Delta
	}
	m.selmon.MFact = tiling.ClampMFact(f)
	m.arrange(m.selmon)
}

// zoom promotes the selected tiled client to master. When it already is the
// master, the next tiled client is promoted instead.
func (m *Manager) zoom() {
	if m.sel == nil || !m.layout(m.selmon).Arranges() {
		return
	}
	tiled := m.tiled(m.selmon)
	i := indexOf(tiled, m.sel)
	if i < 0 {
		return
	}
	c := m.sel
	if i == 0 {
		if len(tiled) < 2 {
			return
		}
		c = tiled[1]
	}
	m.clients = append([]*Client{c}, removeClient(m.clients, c)...)
	m.focus(c)
	m.arrange(m.selmon)
}

func (m *Manager) view(mask tags.Mask) {
	mon := m.selmon
	if mon == nil {
		return
	}
	mask = mask.Within(m.space.Len())
	if mask.IsZero() || mask == mon.Tags() {
		return
	}
	mon.seltags ^= 1
	mon.tagset[mon.seltags] = mask
	m.focus(nil)
	m.arrange(mon)
}

func (m *Manager) viewPrev() {
	mon := m.selmon
	if mon == nil {
		return
	}
	mon.seltags ^= 1
	m.focus(nil)
	m.arrange(mon)
}

func (m *Manager) toggleView(mask tags.Mask) {
	mon := m.selmon
	if mon == nil {
		return
	}
	next, ok := mon.Tags().Toggled(mask, m.space.Len())
	if !ok {
		m.logger.Debug("toggleview rejected: no tag would remain", "mask", mask.String())
		return
	}
	mon.tagset[mon.seltags] = next
	m.focus(nil)
	m.arrange(mon)
}

func (m *Manager) tag(mask tags.Mask) {
	c := m.sel
	if c == nil {
		return
	}
	if !mask.Sticky() {
		mask = mask.Within(m.space.Len())
		if mask.IsZero() {
			return
		}
	}
	c.Tags = mask
	m.focus(nil)
	m.arrange(m.selmon)
}

func (m *Manager) toggleTag(mask tags.Mask) {
	c := m.sel
	if c == nil {
		return
	}
	next, ok := c.Tags.Toggled(mask, m.space.Len())
	if !ok {
		m.logger.Debug("toggletag rejected: window would lose its last tag", "window", c.ID)
		return
	}
	c.Tags = next
	m.focus(nil)
	m.arrange(m.selmon)
}

func (m *Manager) killClient() error {
	if m.sel == nil {
		return nil
	}
	if err := m.backend.Close(m.sel.ID); err != nil {
		m.logger.Warn("close failed", "window", m.sel.ID, "error", err)
		return err
	}
	return nil
}

// setLayout selects layout index; -1 or the current index swaps back to the
// previous layout.
func (m *Manager) setLayout(index int) error {
	mon := m.selmon
	if mon == nil {
		return nil
	}
	if index >= len(m.cfg.Layouts) {
		return fmt.Errorf("layout %d out of range (have %d)", index, len(m.cfg.Layouts))
	}
	if index < 0 || index != mon.LayoutIndex() {
		mon.sellt ^= 1
	}
	if index >= 0 {
		mon.lt[mon.sellt] = index
	}
	m.arrange(mon)
	return nil
}

func (m *Manager) toggleFloating() {
	c := m.sel
	if c == nil || c.Fullscreen {
		return
	}
	c.Floating = !c.Floating
	if c.Floating && !c.Geom.Empty() && c.Mon != nil && m.layout(c.Mon).Arranges() {
		c.Float = c.Geom
	}
	m.arrange(c.Mon)
}

func (m *Manager) focusMon(dir bindings.Direction) {
	if len(m.mons) < 2 {
		return
	}
	target := m.dirToMonitor(dir)
	if target == m.selmon {
		return
	}
	m.selmon = target
	m.focus(nil)
}

// tagMon sends the selected window to the neighbouring monitor, where it
// takes that monitor's active tags.
func (m *Manager) tagMon(dir bindings.Direction) {
	c := m.sel
	if c == nil || len(m.mons) < 2 {
		return
	}
	target := m.dirToMonitor(dir)
	if target == c.Mon {
		return
	}
	from := c.Mon
	newTags := target.Tags()
	if c.Tags.Sticky() {
		newTags = c.Tags
	}
	m.moveToMonitor(c, target, newTags)
	m.arrange(from)
	m.arrange(target)
	m.focus(nil)
}

func (m *Manager) toggleBar() {
	mon := m.selmon
	if mon == nil {
		return
	}
	mon.ShowBar = !mon.ShowBar
	mon.updateWork(m.cfg.Bar)
	m.arrange(mon)
}
