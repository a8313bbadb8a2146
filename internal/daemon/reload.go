package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/1broseidon/tagtile/internal/config"
	"github.com/1broseidon/tagtile/internal/wm"
)

// Reloader loads the configuration file and swaps it into the Manager on
// the loop goroutine. A config that fails to load or validate leaves the
// running one in place.
type Reloader struct {
	path   string
	loop   *Loop
	logger *slog.Logger

	mu      sync.Mutex
	files   []string
	onApply []func(*config.Config)
}

func NewReloader(path string, loop *Loop, logger *slog.Logger) *Reloader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reloader{path: path, loop: loop, logger: logger}
}

// Files returns the files read by the last successful load.
func (r *Reloader) Files() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.files...)
}

// OnApply registers fn to run after each successful reload, off the loop
// goroutine. Hooks republish config-derived state such as key grabs.
func (r *Reloader) OnApply(fn func(*config.Config)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onApply = append(r.onApply, fn)
}

// Reload reads the config file and applies it.
func (r *Reloader) Reload(ctx context.Context, reason string) error {
	r.logger.Info("reloading config", "reason", reason, "path", r.path)
	res, err := config.LoadFromPath(r.path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var diff string
	err = r.loop.Do(ctx, func(m *wm.Manager) error {
		prev := m.Config()
		if err := m.Reload(res.Config); err != nil {
			return err
		}
		d, derr := config.Diff(prev, res.Config)
		if derr != nil {
			r.logger.Debug("config diff unavailable", "error", derr)
		}
		diff = d
		return nil
	})
	if err != nil {
		return fmt.Errorf("apply config: %w", err)
	}

	r.mu.Lock()
	r.files = res.Files
	hooks := append(([]func(*config.Config))(nil), r.onApply...)
	r.mu.Unlock()
	for _, fn := range hooks {
		fn(res.Config)
	}

	if diff == "" {
		r.logger.Info("config reloaded, no changes")
	} else {
		r.logger.Info("config reloaded", "diff", diff)
	}
	for _, w := range res.Config.Warnings() {
		r.logger.Warn("config warning", "warning", w)
	}
	return nil
}

const debounceWindow = 250 * time.Millisecond

// WatchConfig watches the directories holding files and sends a request on
// reloadRequests after a burst of writes to any of them settles. It returns
// when ctx is cancelled.
func WatchConfig(ctx context.Context, files []string, reloadRequests chan<- string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch config: %w", err)
	}
	defer watcher.Close()

	targets := make(map[string]bool, len(files))
	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return fmt.Errorf("resolve config path: %w", err)
		}
		abs = filepath.Clean(abs)
		targets[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			logger.Warn("unable to watch config dir", "dir", dir, "error", err)
		}
	}

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !targets[filepath.Clean(event.Name)] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounceWindow)
				timerCh = timer.C
			} else {
				if !timer.Stop() {
					<-timerCh
				}
				timer.Reset(debounceWindow)
			}
		case <-timerCh:
			timer = nil
			timerCh = nil
			select {
			case reloadRequests <- "config file updated":
			default:
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config watcher error", "error", err)
		}
	}
}
