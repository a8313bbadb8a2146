package wm

import (
	"github.com/1broseidon/tagtile/internal/tags"
	"github.com/1broseidon/tagtile/internal/tiling"
)

// MonitorStatus is what a status bar shows for one monitor.
type MonitorStatus struct {
	Output     string    `json:"output"`
	Selected   bool      `json:"selected"`
	Title      string    `json:"title"`
	AppID      string    `json:"app_id"`
	Fullscreen bool      `json:"fullscreen"`
	Floating   bool      `json:"floating"`
	Occupied   tags.Mask `json:"occupied"`
	Active     tags.Mask `json:"active"`
	Focused    tags.Mask `json:"focused"`
	Urgent     tags.Mask `json:"urgent"`
	Layout     string    `json:"layout"`
}

// Status computes the status of every monitor. Sticky windows do not mark
// tags as occupied.
func (m *Manager) Status() []MonitorStatus {
	out := make([]MonitorStatus, 0, len(m.mons))
	n := m.space.Len()
	for _, mon := range m.mons {
		st := MonitorStatus{
			Output:   mon.Name,
			Selected: mon == m.selmon,
			Active:   mon.Tags().Within(n),
			Layout:   m.layout(mon).Symbol,
		}
		for _, c := range m.clients {
			if c.Mon != mon {
				continue
			}
			if !c.Tags.Sticky() {
				st.Occupied |= c.Tags.Within(n)
			}
			if c.Urgent {
				st.Urgent |= c.Tags.Within(n)
			}
		}
		if top := m.focusTop(mon); top != nil {
			st.Title = top.Title
			st.AppID = top.AppID
			st.Fullscreen = top.Fullscreen
			st.Floating = top.Floating
			st.Focused = top.Tags.Within(n)
		}
		out = append(out, st)
	}
	return out
}

func (m *Manager) emitStatus() {
	if m.status != nil {
		m.status.Update(m.Status())
	}
}

// ClientInfo is a serializable view of a client.
type ClientInfo struct {
	ID         uint32      `json:"id"`
	AppID      string      `json:"app_id"`
	Title      string      `json:"title"`
	Monitor    string      `json:"monitor,omitempty"`
	Tags       string      `json:"tags"`
	TagMask    uint32      `json:"tag_mask"`
	Floating   bool        `json:"floating"`
	Fullscreen bool        `json:"fullscreen"`
	Urgent     bool        `json:"urgent"`
	Terminal   bool        `json:"terminal"`
	Scratch    string      `json:"scratch,omitempty"`
	Focused    bool        `json:"focused"`
	Visible    bool        `json:"visible"`
	Geometry   tiling.Rect `json:"geometry"`
}

// MonitorInfo is a serializable view of a monitor.
type MonitorInfo struct {
	Name      string      `json:"name"`
	Geometry  tiling.Rect `json:"geometry"`
	WorkArea  tiling.Rect `json:"work_area"`
	Tags      string      `json:"tags"`
	TagMask   uint32      `json:"tag_mask"`
	Layout    string      `json:"layout"`
	MFact     float64     `json:"mfact"`
	NMaster   int         `json:"nmaster"`
	Scale     float64     `json:"scale"`
	Transform string      `json:"transform"`
	Selected  bool        `json:"selected"`
	Clients   int         `json:"clients"`
}

// ClientInfos snapshots every client in tiling order.
func (m *Manager) ClientInfos() []ClientInfo {
	out := make([]ClientInfo, 0, len(m.clients))
	for _, c := range m.clients {
		info := ClientInfo{
			ID:         uint32(c.ID),
			AppID:      c.AppID,
			Title:      c.Title,
			Tags:       m.space.Format(c.Tags),
			TagMask:    c.Tags.Uint32(),
			Floating:   c.Floating,
			Fullscreen: c.Fullscreen,
			Urgent:     c.Urgent,
			Terminal:   c.Terminal,
			Focused:    c == m.sel,
			Visible:    m.Visible(c),
			Geometry:   c.Geom,
		}
		if c.Mon != nil {
			info.Monitor = c.Mon.Name
		}
		if c.ScratchKey != 0 {
			info.Scratch = string(c.ScratchKey)
		}
		out = append(out, info)
	}
	return out
}

// MonitorInfos snapshots every monitor in (x, y) order.
func (m *Manager) MonitorInfos() []MonitorInfo {
	out := make([]MonitorInfo, 0, len(m.mons))
	for _, mon := range m.mons {
		count := 0
		for _, c := range m.clients {
			if c.Mon == mon {
				count++
			}
		}
		out = append(out, MonitorInfo{
			Name:      mon.Name,
			Geometry:  mon.Geom,
			WorkArea:  mon.Work,
			Tags:      m.space.Format(mon.Tags()),
			TagMask:   mon.Tags().Uint32(),
			Layout:    m.layout(mon).Symbol,
			MFact:     mon.MFact,
			NMaster:   mon.NMaster,
			Scale:     mon.Scale,
			Transform: string(mon.Transform),
			Selected:  mon == m.selmon,
			Clients:   count,
		})
	}
	return out
}
