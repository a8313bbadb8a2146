package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/tagtile/internal/ipc"
)

const pollInterval = time.Second

// snapshotMsg carries one poll of the daemon.
type snapshotMsg struct {
	status  *ipc.StatusData
	clients *ipc.ClientsData
	err     error
}

// resultMsg reports the outcome of a dispatch or reload.
type resultMsg struct {
	what string
	err  error
}

type tickMsg time.Time

// model is the root bubbletea model for the TUI.
type model struct {
	daemon Daemon

	activeTab Tab

	monitors   monitorView
	windowsTab WindowsTab
	generalTab GeneralTab
	configTab  ConfigTab

	// Action prompt, opened with ':'
	prompting bool
	prompt    textinput.Model

	connected   bool
	clientCount int
	uptime      time.Duration
	flash       string

	width  int
	height int
}

func newModel(daemon Daemon, configPath string) model {
	ti := textinput.New()
	ti.Prompt = ": "
	ti.Placeholder = "view 2, setlayout 1, spawn foot"
	ti.CharLimit = 256

	var reload func() error
	if daemon != nil {
		reload = daemon.Reload
	}
	return model{
		daemon:     daemon,
		activeTab:  TabMonitors,
		windowsTab: NewWindowsTab(),
		generalTab: NewGeneralTab(configPath, reload),
		configTab:  NewConfigTab(configPath),
		prompt:     ti,
	}
}

func (m model) poll() tea.Cmd {
	d := m.daemon
	return func() tea.Msg {
		st, err := d.Status()
		if err != nil {
			return snapshotMsg{err: err}
		}
		cl, err := d.Clients()
		return snapshotMsg{status: st, clients: cl, err: err}
	}
}

func (m model) run(action string) tea.Cmd {
	d := m.daemon
	return func() tea.Msg {
		return resultMsg{what: action, err: d.Dispatch(action)}
	}
}

func (m model) reload() tea.Cmd {
	d := m.daemon
	return func() tea.Msg {
		return resultMsg{what: "reload", err: d.Reload()}
	}
}

func tick() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tea.Batch(m.poll(), tick())
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return m, tea.Batch(m.poll(), tick())

	case snapshotMsg:
		if msg.err != nil {
			m.connected = false
			return m, nil
		}
		m.connected = true
		m.monitors = monitorView{tags: msg.status.Tags, status: msg.status.Monitors}
		m.clientCount = msg.status.ClientCount
		m.uptime = time.Duration(msg.status.UptimeSeconds) * time.Second
		var cmd tea.Cmd
		if msg.clients != nil {
			cmd = m.windowsTab.SetWindows(msg.clients.Clients)
		}
		return m, cmd

	case resultMsg:
		if msg.err != nil {
			m.flash = msg.what + ": " + msg.err.Error()
			return m, nil
		}
		m.flash = msg.what + ": ok"
		if msg.what == "reload" || msg.what == "save" {
			m.configTab.Load()
			m.generalTab.Load()
		}
		return m, m.poll()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		subMsg := tea.WindowSizeMsg{Width: m.width, Height: m.contentHeight()}
		m.windowsTab, _ = m.windowsTab.Update(subMsg)
		m.generalTab, _ = m.generalTab.Update(subMsg)
		m.configTab, _ = m.configTab.Update(subMsg)
		return m, nil
	}

	if m.prompting {
		return m.updatePrompt(msg)
	}

	// The windows filter owns the keyboard while it is open.
	if m.activeTab == TabWindows && m.windowsTab.Filtering() {
		if km, ok := msg.(tea.KeyMsg); ok && km.String() == "ctrl+c" {
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.windowsTab, cmd = m.windowsTab.Update(msg)
		return m, cmd
	}

	// So does the settings form, including its internal messages.
	if m.activeTab == TabGeneral && m.generalTab.Capturing() {
		if km, ok := msg.(tea.KeyMsg); ok && km.String() == "ctrl+c" {
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.generalTab, cmd = m.generalTab.Update(msg)
		return m, cmd
	}

	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
			return m, nil
		case "1":
			m.activeTab = TabMonitors
			return m, nil
		case "2":
			m.activeTab = TabWindows
			return m, nil
		case "3":
			m.activeTab = TabGeneral
			return m, nil
		case "4":
			m.activeTab = TabConfig
			return m, nil
		case ":":
			m.prompting = true
			m.prompt.Reset()
			return m, m.prompt.Focus()
		case "r":
			return m, m.reload()
		case "enter":
			if m.activeTab == TabWindows {
				if item, ok := m.windowsTab.Selected(); ok {
					if action := item.viewAction(); action != "" {
						return m, m.run(action)
					}
				}
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	switch m.activeTab {
	case TabWindows:
		m.windowsTab, cmd = m.windowsTab.Update(msg)
	case TabGeneral:
		m.generalTab, cmd = m.generalTab.Update(msg)
	case TabConfig:
		m.configTab, cmd = m.configTab.Update(msg)
	}
	return m, cmd
}

func (m model) updatePrompt(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			m.prompting = false
			m.prompt.Blur()
			return m, nil
		case "enter":
			action := m.prompt.Value()
			m.prompting = false
			m.prompt.Blur()
			if action == "" {
				return m, nil
			}
			return m, m.run(action)
		}
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

// contentHeight returns the height available for tab content.
func (m model) contentHeight() int {
	// status bar (1) + tab bar (2 with margin) + help bar (1)
	h := m.height - 4
	if h < 1 {
		h = 1
	}
	return h
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.connected, m.clientCount, m.uptime, m.flash, m.width)
	tabBar := renderTabBar(m.activeTab, m.width)

	bottom := renderHelpBar(m.prompting, m.width)
	if m.prompting {
		bottom = lipgloss.JoinVertical(lipgloss.Left, m.prompt.View(), bottom)
	}

	var content string
	switch m.activeTab {
	case TabMonitors:
		content = renderMonitors(&m.monitors, m.width)
	case TabWindows:
		content = m.windowsTab.View()
	case TabGeneral:
		content = m.generalTab.View()
	case TabConfig:
		content = m.configTab.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		statusBar,
		tabBar,
		content,
		bottom,
	)
}
