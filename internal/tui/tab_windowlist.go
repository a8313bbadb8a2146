package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/tagtile/internal/tags"
	"github.com/1broseidon/tagtile/internal/wm"
)

// windowItem is a list item representing a managed window.
type windowItem struct {
	info wm.ClientInfo
}

func (i windowItem) Title() string {
	mark := " "
	if i.info.Focused {
		mark = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●")
	}
	title := i.info.Title
	if title == "" {
		title = "(untitled)"
	}
	return mark + " " + title
}

func (i windowItem) Description() string {
	parts := []string{
		i.info.AppID,
		i.info.Monitor,
		"tags " + i.info.Tags,
	}
	if i.info.Floating {
		parts = append(parts, "floating")
	}
	if i.info.Fullscreen {
		parts = append(parts, "fullscreen")
	}
	if i.info.Urgent {
		parts = append(parts, "urgent")
	}
	if i.info.Scratch != "" {
		parts = append(parts, "scratchpad "+i.info.Scratch)
	}
	if !i.info.Visible {
		parts = append(parts, "hidden")
	}
	return strings.Join(parts, " | ")
}

func (i windowItem) FilterValue() string { return i.info.AppID + " " + i.info.Title }

// viewAction returns the action that brings the window's first tag into
// view, or "" for sticky windows.
func (i windowItem) viewAction() string {
	m := tags.Mask(i.info.TagMask)
	if m.IsZero() || m.Sticky() {
		return ""
	}
	return fmt.Sprintf("view %d", m.Lowest()+1)
}

// WindowsTab lists the managed windows in tiling order.
type WindowsTab struct {
	list   list.Model
	width  int
	height int
}

// NewWindowsTab creates an empty windows tab.
func NewWindowsTab() WindowsTab {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("15")).
		BorderForeground(lipgloss.Color("62"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color("250")).
		BorderForeground(lipgloss.Color("62"))

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Windows"
	l.Styles.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("62")).
		Padding(0, 1)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.KeyMap.Quit.SetEnabled(false)
	return WindowsTab{list: l}
}

// SetWindows replaces the list contents, keeping the cursor in range.
func (t *WindowsTab) SetWindows(clients []wm.ClientInfo) tea.Cmd {
	items := make([]list.Item, 0, len(clients))
	for _, c := range clients {
		items = append(items, windowItem{info: c})
	}
	return t.list.SetItems(items)
}

// Filtering reports whether the list's filter input has the keyboard.
func (t WindowsTab) Filtering() bool {
	return t.list.FilterState() == list.Filtering
}

// Selected returns the highlighted window.
func (t WindowsTab) Selected() (windowItem, bool) {
	item, ok := t.list.SelectedItem().(windowItem)
	return item, ok
}

// Update handles messages for the windows tab.
func (t WindowsTab) Update(msg tea.Msg) (WindowsTab, tea.Cmd) {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		t.width = msg.Width
		t.height = msg.Height
		t.list.SetSize(t.width, t.height)
		return t, nil
	}
	var cmd tea.Cmd
	t.list, cmd = t.list.Update(msg)
	return t, cmd
}

// View renders the windows tab.
func (t WindowsTab) View() string {
	return t.list.View()
}
