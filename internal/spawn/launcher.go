//go:build unix

// Package spawn starts external commands for the window manager without
// waiting for them.
package spawn

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"syscall"

	"github.com/1broseidon/tagtile/internal/platform"
)

// ErrExitedWithoutWindow is reported when a scratchpad command exits cleanly.
var ErrExitedWithoutWindow = errors.New("command exited")

// Launcher starts commands in their own session so they outlive the window
// manager. A scratchpad command that exits is reported back as
// platform.SpawnFailed, which returns a pad still waiting for its window to
// the unspawned state.
type Launcher struct {
	post   func(platform.Event)
	logger *slog.Logger
	env    []string
}

// NewLauncher creates a launcher reporting scratchpad failures to post.
// env is appended to the inherited environment.
func NewLauncher(post func(platform.Event), logger *slog.Logger, env ...string) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	if post == nil {
		post = func(platform.Event) {}
	}
	return &Launcher{post: post, logger: logger, env: env}
}

// Spawn starts argv. It returns once the process is running; a failure to
// start is returned directly and is not posted.
func (l *Launcher) Spawn(argv []string, scratchKey rune) error {
	if len(argv) == 0 {
		return errors.New("empty command")
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if len(l.env) > 0 {
		cmd.Env = append(os.Environ(), l.env...)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %q: %w", argv[0], err)
	}
	l.logger.Debug("process started", "argv", argv, "pid", cmd.Process.Pid)

	// Reap the child. Any scratchpad exit is posted: a command that hands
	// off to a running instance exits 0 without ever mapping a window, and
	// the manager ignores the event once the pad has a window.
	go func() {
		err := cmd.Wait()
		l.logger.Debug("process exited", "argv", argv, "error", err)
		if scratchKey == 0 {
			return
		}
		if err == nil {
			err = ErrExitedWithoutWindow
		}
		l.post(platform.SpawnFailed{Argv: argv, ScratchKey: scratchKey, Err: err})
	}()
	return nil
}
