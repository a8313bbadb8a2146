//go:build linux

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/1broseidon/tagtile/internal/config"
	"github.com/1broseidon/tagtile/internal/daemon"
	"github.com/1broseidon/tagtile/internal/hotkeys"
	"github.com/1broseidon/tagtile/internal/ipc"
	"github.com/1broseidon/tagtile/internal/platform"
	"github.com/1broseidon/tagtile/internal/spawn"
	"github.com/1broseidon/tagtile/internal/status"
	"github.com/1broseidon/tagtile/internal/wm"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the window manager",
	Long: `Take over the X display and manage its windows.

Status lines are written to stdout, or to the stdin of the --startup
command when one is given.`,
	Args: cobra.NoArgs,
	RunE: runDaemon,
}

func init() {
	runCmd.Flags().StringP("startup", "s", "", "Shell command to start with the status lines on its stdin")
	runCmd.Flags().Duration("reconcile-interval", 10*time.Second, "How often to drop windows that vanished without an event")
	rootCmd.AddCommand(runCmd)
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	cfgPath, err := configPath(cmd)
	if err != nil {
		return err
	}
	res, err := config.LoadFromPath(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(cmd, res.Config.LogLevel)
	for _, w := range res.Config.Warnings() {
		logger.Warn("config warning", "warning", w)
	}
	logger.Info("configuration loaded", "path", cfgPath, "files", len(res.Files), "tags", len(res.Config.Tags))

	backend, err := platform.NewLinuxBackendFromDisplay(logger)
	if err != nil {
		return fmt.Errorf("connect to display: %w", err)
	}
	defer backend.Disconnect()

	var statusOut io.Writer = os.Stdout
	startup, _ := cmd.Flags().GetString("startup")
	var child *exec.Cmd
	if startup != "" {
		child, statusOut, err = startStartupCommand(startup, logger)
		if err != nil {
			return err
		}
	}

	// The launcher reports through the loop, which needs the manager first.
	var loop *daemon.Loop
	post := func(ev platform.Event) { loop.Post(ev) }

	mgr, err := wm.New(wm.Options{
		Config:   res.Config,
		Backend:  backend,
		Launcher: spawn.NewLauncher(post, logger),
		Status: status.Fanout{
			status.NewWriter(statusOut, logger),
			status.NewDesktops(backend, logger),
		},
		Logger: logger,
	})
	if err != nil {
		return err
	}
	loop = daemon.NewLoop(mgr, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	backend.SetBindings(res.Config.Table())
	if err := backend.Start(loop.Post); err != nil {
		return fmt.Errorf("start backend: %w", err)
	}
	go func() {
		backend.EventLoop()
		logger.Info("X event loop exited")
		cancel()
	}()

	keys, err := hotkeys.NewHandler(backend, loop.Post, logger)
	if err != nil {
		return err
	}
	publish := func(cfg *config.Config) {
		table := cfg.Table()
		backend.SetBindings(table)
		if err := keys.Apply(table); err != nil {
			logger.Warn("some key bindings are unavailable", "error", err)
		}
		if err := backend.SetDesktopNames(cfg.Tags); err != nil {
			logger.Debug("failed to publish desktop names", "error", err)
		}
	}
	publish(res.Config)

	reloader := daemon.NewReloader(cfgPath, loop, logger)
	reloader.OnApply(publish)

	interval, _ := cmd.Flags().GetDuration("reconcile-interval")
	reconciler := daemon.NewReconciler(daemon.ReconcilerConfig{
		Interval: interval,
		Logger:   logger,
	}, loop, daemon.WindowListerFromBackend(backend))
	go reconciler.Run(ctx)

	reloadRequests := make(chan string, 1)
	watched := res.Files
	if len(watched) == 0 {
		watched = []string{cfgPath}
	}
	go func() {
		if err := daemon.WatchConfig(ctx, watched, reloadRequests, logger); err != nil {
			logger.Warn("config watcher stopped", "error", err)
		}
	}()

	socket, err := socketPath(cmd)
	if err != nil {
		return err
	}
	srv := ipc.NewServer(socket, loop, reloader, logger)
	if err := srv.Start(); err != nil {
		logger.Warn("control socket unavailable", "error", err)
	} else {
		defer srv.Stop()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	logger.Info("tagtile started", "socket", socket)
	for {
		select {
		case <-loop.Done():
			logger.Info("shutting down")
			backend.Stop()
			stopStartupCommand(child, statusOut, logger)
			return nil
		case reason := <-reloadRequests:
			if err := reloader.Reload(ctx, reason); err != nil {
				logger.Error("config reload failed, keeping running config", "error", err)
			}
		case sig := <-sigCh:
			if sig == syscall.SIGHUP {
				if err := reloader.Reload(ctx, "SIGHUP"); err != nil {
					logger.Error("config reload failed, keeping running config", "error", err)
				}
				continue
			}
			logger.Info("received signal", "signal", sig.String())
			cancel()
		}
	}
}

// startStartupCommand runs command through the shell with a pipe on its
// stdin and returns that pipe as the status stream.
func startStartupCommand(command string, logger *slog.Logger) (*exec.Cmd, io.Writer, error) {
	child := exec.Command("/bin/sh", "-c", command)
	child.Stdout = os.Stdout
	child.Stderr = os.Stderr
	stdin, err := child.StdinPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("startup command: %w", err)
	}
	if err := child.Start(); err != nil {
		return nil, nil, fmt.Errorf("startup command: %w", err)
	}
	logger.Info("startup command running", "command", command, "pid", child.Process.Pid)
	return child, stdin, nil
}

func stopStartupCommand(child *exec.Cmd, stdin io.Writer, logger *slog.Logger) {
	if child == nil {
		return
	}
	if c, ok := stdin.(io.Closer); ok {
		c.Close()
	}
	_ = child.Process.Signal(syscall.SIGTERM)
	if err := child.Wait(); err != nil {
		logger.Debug("startup command exited", "error", err)
	}
}
