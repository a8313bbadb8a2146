package palette

import (
	"fmt"

	"github.com/1broseidon/tagtile/internal/config"
	"github.com/1broseidon/tagtile/internal/ipc"
	"github.com/1broseidon/tagtile/internal/tags"
)

// Entries builds the root menu from a daemon snapshot and the loaded
// config: window switcher, tags, layouts and scratchpads.
func Entries(st *ipc.StatusData, clients *ipc.ClientsData, cfg *config.Config) []MenuItem {
	var active, urgent tags.Mask
	layout := ""
	for _, m := range st.Monitors {
		if m.Selected {
			active, urgent, layout = m.Active, m.Urgent, m.Layout
		}
	}

	var windows []MenuItem
	for _, c := range clients.Clients {
		m := tags.Mask(c.TagMask)
		if m.IsZero() || m.Sticky() {
			continue
		}
		windows = append(windows, MenuItem{Item: Item{
			Label:  fmt.Sprintf("[%s] %s  %s", c.Tags, c.AppID, c.Title),
			Action: fmt.Sprintf("view %d", m.Lowest()+1),
			Active: c.Focused,
			Urgent: c.Urgent,
		}})
	}

	viewItems := make([]MenuItem, 0, len(st.Tags))
	tagItems := make([]MenuItem, 0, len(st.Tags))
	for i, label := range st.Tags {
		viewItems = append(viewItems, MenuItem{Item: Item{
			Label:  "view " + label,
			Action: fmt.Sprintf("view %d", i+1),
			Active: active.Has(i),
			Urgent: urgent.Has(i),
		}})
		tagItems = append(tagItems, MenuItem{Item: Item{
			Label:  "move window to " + label,
			Action: fmt.Sprintf("tag %d", i+1),
		}})
	}

	var layouts, pads []MenuItem
	if cfg != nil {
		for i, l := range cfg.Layouts {
			layouts = append(layouts, MenuItem{Item: Item{
				Label:  l.Symbol,
				Action: fmt.Sprintf("setlayout %d", i),
				Active: l.Symbol == layout,
			}})
		}
		for _, p := range cfg.Scratchpads {
			pads = append(pads, MenuItem{Item: Item{
				Label:  fmt.Sprintf("scratchpad %c", p.Key),
				Action: fmt.Sprintf("togglescratch %c", p.Key),
			}})
		}
	}

	root := []MenuItem{
		{Item: Item{Label: "Windows"}, Submenu: windows},
		{Item: Item{Label: "View tag"}, Submenu: viewItems},
		{Item: Item{Label: "Tag window"}, Submenu: tagItems},
		{Item: Item{Label: "Layout"}, Submenu: layouts},
		{Item: Item{Label: "Scratchpads"}, Submenu: pads},
		{Item: Item{Label: "Toggle floating", Action: "togglefloating"}},
		{Item: Item{Label: "Toggle fullscreen", Action: "togglefullscreen"}},
		{Item: Item{Label: "Close window", Action: "killclient"}},
	}
	// Empty groups have nothing to pick.
	out := root[:0]
	for _, it := range root {
		if it.Action == "" && !it.IsParent() {
			continue
		}
		out = append(out, it)
	}
	return out
}
