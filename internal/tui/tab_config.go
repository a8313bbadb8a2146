package tui

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/tagtile/internal/config"
)

// ConfigTab shows the effective configuration as YAML, with the files it
// was read from.
type ConfigTab struct {
	path     string
	viewport viewport.Model
	body     string
}

// NewConfigTab loads the config at path, or the default location.
func NewConfigTab(path string) ConfigTab {
	t := ConfigTab{path: path, viewport: viewport.New(0, 0)}
	t.Load()
	return t
}

// Load re-reads the config from disk. A broken file is shown as its error.
func (t *ConfigTab) Load() {
	var (
		res *config.LoadResult
		err error
	)
	if t.path == "" {
		res, err = config.LoadWithSources()
	} else {
		res, err = config.LoadFromPath(t.path)
	}
	if err != nil {
		t.body = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Render(err.Error())
		t.viewport.SetContent(t.body)
		return
	}

	header := "built-in defaults"
	if len(res.Files) > 0 {
		header = "loaded from:"
		for _, f := range res.Files {
			header += "\n  " + f
		}
	}
	out, err := config.Render(res.Config)
	if err != nil {
		t.body = err.Error()
	} else {
		t.body = dimStyle.Render(header) + "\n\n" + string(out)
	}
	t.viewport.SetContent(t.body)
}

// Update handles messages for the config tab.
func (t ConfigTab) Update(msg tea.Msg) (ConfigTab, tea.Cmd) {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		t.viewport.Width = msg.Width
		t.viewport.Height = msg.Height
		t.viewport.SetContent(t.body)
		return t, nil
	}
	var cmd tea.Cmd
	t.viewport, cmd = t.viewport.Update(msg)
	return t, cmd
}

// View renders the config tab.
func (t ConfigTab) View() string {
	return t.viewport.View()
}
