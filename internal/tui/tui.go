// Package tui is an interactive dashboard for a running tagtile daemon: the
// per-monitor tag state, the managed windows and the loaded configuration.
package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/tagtile/internal/ipc"
)

// Daemon is the subset of the IPC client the dashboard polls.
type Daemon interface {
	Status() (*ipc.StatusData, error)
	Clients() (*ipc.ClientsData, error)
	Dispatch(action string) error
	Reload() error
}

// Run starts the dashboard and blocks until the user quits. configPath may
// be empty to use the default config location.
func Run(daemon Daemon, configPath string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}

	p := tea.NewProgram(newModel(daemon, configPath), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
