package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/tagtile/internal/wm"
)

type tagState int

const (
	tagEmpty tagState = iota
	tagOccupied
	tagActive
	tagUrgent
)

// stateOf classifies tag i the way a bar colors it. Urgency wins over
// everything else.
func stateOf(i int, st wm.MonitorStatus) tagState {
	switch {
	case st.Urgent.Has(i):
		return tagUrgent
	case st.Active.Has(i):
		return tagActive
	case st.Occupied.Has(i):
		return tagOccupied
	}
	return tagEmpty
}

var tagStyles = map[tagState]lipgloss.Style{
	tagEmpty:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1),
	tagOccupied: lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Bold(true).Padding(0, 1),
	tagActive:   lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62")).Bold(true).Padding(0, 1),
	tagUrgent:   lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("203")).Bold(true).Padding(0, 1),
}

// renderTagRow draws one cell per tag label. Tags holding the focused
// window carry a marker.
func renderTagRow(labels []string, st wm.MonitorStatus) string {
	cells := make([]string, 0, len(labels))
	for i, label := range labels {
		if st.Focused.Has(i) {
			label += "•"
		}
		cells = append(cells, tagStyles[stateOf(i, st)].Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

var (
	monitorBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)

	selectedBoxStyle = monitorBoxStyle.
				BorderForeground(lipgloss.Color("62"))

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// renderMonitors renders one box per monitor, selected monitor highlighted.
func renderMonitors(data *monitorView, width int) string {
	if data == nil || len(data.status) == 0 {
		return dimStyle.Render("no monitors")
	}
	boxes := make([]string, 0, len(data.status))
	for _, st := range data.status {
		header := st.Output
		if st.Selected {
			header += " (selected)"
		}
		header = lipgloss.NewStyle().Bold(true).Render(header) + "  " + st.Layout

		title := dimStyle.Render("no focused window")
		if st.Title != "" || st.AppID != "" {
			var flags []string
			if st.Floating {
				flags = append(flags, "floating")
			}
			if st.Fullscreen {
				flags = append(flags, "fullscreen")
			}
			title = fmt.Sprintf("%s  %s", st.Title, dimStyle.Render(st.AppID))
			if len(flags) > 0 {
				title += "  [" + strings.Join(flags, ",") + "]"
			}
		}

		style := monitorBoxStyle
		if st.Selected {
			style = selectedBoxStyle
		}
		if width > 4 {
			style = style.Width(width - 4)
		}
		boxes = append(boxes, style.Render(lipgloss.JoinVertical(lipgloss.Left,
			header,
			renderTagRow(data.tags, st),
			title,
		)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, boxes...)
}

// monitorView is the slice of a status poll the monitors tab draws.
type monitorView struct {
	tags   []string
	status []wm.MonitorStatus
}
