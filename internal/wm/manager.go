// Package wm holds the window-arrangement core: the client list, monitors,
// focus, tags and every action bound to keys and buttons. A Manager is not
// safe for concurrent use; the daemon event loop owns it.
package wm

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/1broseidon/tagtile/internal/bindings"
	"github.com/1broseidon/tagtile/internal/config"
	"github.com/1broseidon/tagtile/internal/platform"
	"github.com/1broseidon/tagtile/internal/rules"
	"github.com/1broseidon/tagtile/internal/scratch"
	"github.com/1broseidon/tagtile/internal/tags"
	"github.com/1broseidon/tagtile/internal/tiling"
)

// Launcher starts external commands without waiting for them. scratchKey is
// non-zero when the launch comes from a scratchpad toggle.
type Launcher interface {
	Spawn(argv []string, scratchKey rune) error
}

// StatusSink receives the per-monitor status after every change and any
// user-visible error.
type StatusSink interface {
	Update(status []MonitorStatus)
	Error(err error)
}

// Client is a managed window.
type Client struct {
	ID         platform.WindowID
	AppID      string
	Title      string
	Tags       tags.Mask
	Floating   bool
	Fullscreen bool
	Urgent     bool
	Terminal   bool
	ScratchKey rune
	// Mon is nil while the client sits in the detached pool.
	Mon *Monitor
	// Geom is the last rectangle sent to the backend, Border its border.
	Geom   tiling.Rect
	Border int
	// Float is the stored floating geometry.
	Float tiling.Rect

	shown bool
}

// Monitor is an attached output.
type Monitor struct {
	Name      string
	Geom      tiling.Rect
	Work      tiling.Rect
	MFact     float64
	NMaster   int
	Scale     float64
	Transform tiling.Transform
	ShowBar   bool

	tagset  [2]tags.Mask
	seltags int
	lt      [2]int
	sellt   int
}

// Tags returns the active tag mask.
func (m *Monitor) Tags() tags.Mask { return m.tagset[m.seltags] }

// PrevTags returns the tag mask of the previous view.
func (m *Monitor) PrevTags() tags.Mask { return m.tagset[m.seltags^1] }

// LayoutIndex returns the index of the current layout.
func (m *Monitor) LayoutIndex() int { return m.lt[m.sellt] }

// Options configures a Manager. Launcher, Status and Logger are optional.
type Options struct {
	Config   *config.Config
	Backend  platform.Backend
	Launcher Launcher
	Status   StatusSink
	Logger   *slog.Logger
}

// Manager is the window manager state. Every exported method must be called
// from the goroutine that owns it.
type Manager struct {
	cfg      *config.Config
	space    tags.Space
	matcher  *rules.Matcher
	table    *bindings.Table
	backend  platform.Backend
	launcher Launcher
	status   StatusSink
	logger   *slog.Logger

	pads    *scratch.Pads
	mons    []*Monitor
	selmon  *Monitor
	clients []*Client // tiling order, master first
	fstack  []*Client // focus order, most recent first
	sel     *Client

	grab    *grab
	pointer struct{ X, Y int }
	quit    bool
}

// ErrNoBackend is returned by New when no backend is supplied.
var ErrNoBackend = errors.New("wm: backend is required")

func New(opts Options) (*Manager, error) {
	if opts.Backend == nil {
		return nil, ErrNoBackend
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("wm: invalid config: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		backend:  opts.Backend,
		launcher: opts.Launcher,
		status:   opts.Status,
		logger:   logger,
		pads:     scratch.New(),
	}
	m.setConfig(cfg)
	return m, nil
}

func (m *Manager) setConfig(cfg *config.Config) {
	m.cfg = cfg
	m.space = cfg.TagSpace()
	m.matcher = cfg.Matcher()
	m.table = cfg.Table()
}

// Config returns the configuration in effect.
func (m *Manager) Config() *config.Config { return m.cfg }

// Bindings returns the dispatch table in effect.
func (m *Manager) Bindings() *bindings.Table { return m.table }

// Done reports whether the quit action ran.
func (m *Manager) Done() bool { return m.quit }

// Monitors returns the attached monitors in (x, y) order.
func (m *Manager) Monitors() []*Monitor {
	return append([]*Monitor(nil), m.mons...)
}

// SelectedMonitor returns the focused monitor, nil when none is attached.
func (m *Manager) SelectedMonitor() *Monitor { return m.selmon }

// Selected returns the focused client, if any.
func (m *Manager) Selected() *Client { return m.sel }

// Clients returns every managed client in tiling order.
func (m *Manager) Clients() []*Client {
	return append([]*Client(nil), m.clients...)
}

// Pool returns the clients waiting for a monitor, in client order.
func (m *Manager) Pool() []*Client {
	var out []*Client
	for _, c := range m.clients {
		if c.Mon == nil {
			out = append(out, c)
		}
	}
	return out
}

// Client looks up a managed window.
func (m *Manager) Client(id platform.WindowID) *Client {
	for _, c := range m.clients {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// ClientIDs lists the managed window ids.
func (m *Manager) ClientIDs() []platform.WindowID {
	out := make([]platform.WindowID, len(m.clients))
	for i, c := range m.clients {
		out[i] = c.ID
	}
	return out
}

// Scratchpads returns the scratchpad entries seen so far.
func (m *Manager) Scratchpads() []scratch.Pad { return m.pads.List() }

// Visible reports whether c is shown on its monitor. A scratch window is
// visible exactly when its pad is shown; other windows when their tags
// intersect the monitor's active tags.
func (m *Manager) Visible(c *Client) bool {
	if c == nil || c.Mon == nil {
		return false
	}
	if c.ScratchKey != 0 && m.pads.Owner(c.ScratchKey, c.ID) {
		return m.pads.Visible(c.ScratchKey)
	}
	return c.Tags.Intersects(c.Mon.Tags())
}

// Handle applies one inbound event. For key and button presses it reports
// whether a binding consumed the event; other events always report true.
func (m *Manager) Handle(ev platform.Event) bool {
	switch e := ev.(type) {
	case platform.WindowAppeared:
		m.manage(e.Window)
	case platform.WindowDisappeared:
		m.unmanage(e.ID)
	case platform.TitleChanged:
		if c := m.Client(e.ID); c != nil {
			c.Title = e.Title
			m.emitStatus()
		}
	case platform.UrgencyChanged:
		if c := m.Client(e.ID); c != nil && c != m.sel {
			c.Urgent = e.Urgent
			m.emitStatus()
		}
	case platform.FullscreenRequested:
		if c := m.Client(e.ID); c != nil {
			m.setFullscreen(c, e.Fullscreen)
		}
	case platform.KeyPressed:
		action, ok := m.table.Key(e.Mods, e.Key)
		if !ok {
			return false
		}
		m.run(action)
	case platform.ButtonPressed:
		return m.buttonPress(e)
	case platform.ButtonReleased:
		m.buttonRelease(e)
	case platform.PointerMoved:
		m.pointerMotion(e.X, e.Y)
	case platform.MonitorAttached:
		m.attachMonitor(e.Output)
	case platform.MonitorDetached:
		m.detachMonitor(e.Name)
	case platform.SpawnFailed:
		m.spawnFailed(e)
	default:
		m.logger.Warn("unhandled event", "type", fmt.Sprintf("%T", ev))
	}
	return true
}

// run dispatches an action from a binding; errors are already reported.
func (m *Manager) run(a bindings.Action) {
	if err := m.Dispatch(a); err != nil {
		m.logger.Debug("action failed", "action", a.String(), "error", err)
	}
}

func (m *Manager) spawnFailed(e platform.SpawnFailed) {
	if e.ScratchKey != 0 && !m.pads.SpawnFailed(e.ScratchKey) {
		return
	}
	m.logger.Warn("spawn failed", "argv", e.Argv, "scratch", string(e.ScratchKey), "error", e.Err)
	m.reportError(e)
	m.emitStatus()
}

func (m *Manager) reportError(err error) {
	if m.status != nil {
		m.status.Error(err)
	}
}

// Reload replaces the configuration. Monitor state survives; indices and
// masks that no longer fit the new tables are clamped.
func (m *Manager) Reload(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	m.setConfig(cfg)

	all := m.space.All()
	for _, mon := range m.mons {
		for i := range mon.tagset {
			mon.tagset[i] = mon.tagset[i].Within(m.space.Len())
			if mon.tagset[i].IsZero() {
				mon.tagset[i] = tags.Bit(0)
			}
		}
		for i := range mon.lt {
			if mon.lt[i] >= len(cfg.Layouts) {
				mon.lt[i] = 0
			}
		}
		mon.updateWork(cfg.Bar)
	}
	for _, c := range m.clients {
		if c.Tags.Sticky() {
			continue
		}
		c.Tags &= all
		if c.Tags.IsZero() {
			if c.Mon != nil {
				c.Tags = c.Mon.Tags()
			} else {
				c.Tags = tags.Bit(0)
			}
		}
	}
	m.arrangeAll()
	m.focus(nil)
	return nil
}

func (mon *Monitor) updateWork(bar tiling.Bar) {
	bar.Show = mon.ShowBar
	mon.Work = tiling.WorkArea(mon.Geom, bar)
}
