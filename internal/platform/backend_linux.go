//go:build linux

package platform

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/mousebind"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/tagtile/internal/bindings"
	"github.com/1broseidon/tagtile/internal/tiling"
	"github.com/1broseidon/tagtile/internal/x11"
)

// ErrVTUnsupported is returned by ChangeVT: under X11 the server owns VT
// switching.
var ErrVTUnsupported = errors.New("virtual terminal switching is handled by the X server")

// LinuxBackend manages top-level X11 windows. Commands arrive from the
// event loop goroutine; X events arrive on the xevent goroutine and are
// translated into Events passed to the sink given to Start.
type LinuxBackend struct {
	conn   *x11.Connection
	logger *slog.Logger
	post   func(Event)

	mu      sync.Mutex
	windows map[xproto.Window]*xwin
	order   []xproto.Window
	focused xproto.Window
	table   *bindings.Table
	outputs []x11.Output
}

// xwin is the backend's view of a managed window. rect is the last outer
// rectangle placed; hidden windows sit left of the screen at the same y.
type xwin struct {
	rect       tiling.Rect
	border     int
	hidden     bool
	fullscreen bool
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection, logger *slog.Logger) *LinuxBackend {
	if logger == nil {
		logger = slog.Default()
	}
	return &LinuxBackend{
		conn:    conn,
		logger:  logger,
		post:    func(Event) {},
		windows: make(map[xproto.Window]*xwin),
	}
}

// NewLinuxBackendFromDisplay creates a new Linux backend by opening a fresh X11 connection.
func NewLinuxBackendFromDisplay(logger *slog.Logger) (*LinuxBackend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return NewLinuxBackend(conn, logger), nil
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil { return b.conn.XUtil }

// RootWindow returns the X11 root window ID.
func (b *LinuxBackend) RootWindow() xproto.Window { return b.conn.Root }

// Start takes over the root window, announces EWMH support and reports the
// current outputs and windows to post. The event loop must already be
// consuming events.
func (b *LinuxBackend) Start(post func(Event)) error {
	b.post = post
	if err := b.conn.BecomeWM(); err != nil {
		return err
	}
	if err := b.conn.AnnounceEWMH("tagtile"); err != nil {
		b.logger.Warn("ewmh setup incomplete", "error", err)
	}

	xu, root := b.conn.XUtil, b.conn.Root
	xevent.MapRequestFun(b.onMapRequest).Connect(xu, root)
	xevent.ConfigureRequestFun(b.onConfigureRequest).Connect(xu, root)
	xevent.UnmapNotifyFun(func(_ *xgbutil.XUtil, ev xevent.UnmapNotifyEvent) {
		b.forget(ev.Window)
	}).Connect(xu, root)
	xevent.DestroyNotifyFun(func(_ *xgbutil.XUtil, ev xevent.DestroyNotifyEvent) {
		b.forget(ev.Window)
	}).Connect(xu, root)
	xevent.MotionNotifyFun(func(_ *xgbutil.XUtil, ev xevent.MotionNotifyEvent) {
		b.post(PointerMoved{X: int(ev.RootX), Y: int(ev.RootY)})
	}).Connect(xu, root)
	xevent.ButtonPressFun(b.onRootButton).Connect(xu, root)
	xevent.ButtonReleaseFun(func(_ *xgbutil.XUtil, ev xevent.ButtonReleaseEvent) {
		mousebind.UngrabPointer(xu)
		b.post(ButtonReleased{Button: bindings.Button(ev.Detail), X: int(ev.RootX), Y: int(ev.RootY)})
	}).Connect(xu, root)

	if err := b.conn.WatchOutputs(b.RefreshOutputs); err != nil {
		b.logger.Warn("output hotplug unavailable", "error", err)
	}
	b.RefreshOutputs()

	wins, err := b.conn.TopLevel()
	if err != nil {
		return err
	}
	for _, win := range wins {
		if b.conn.Viewable(win) {
			b.manage(win)
		}
	}
	return nil
}

// EventLoop runs the X11 event loop until Stop.
func (b *LinuxBackend) EventLoop() { b.conn.EventLoop() }

// Stop ends EventLoop.
func (b *LinuxBackend) Stop() { b.conn.Quit() }

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() { b.conn.Close() }

// SetBindings installs the table used to decide whether a click on a
// client is consumed or replayed to the application.
func (b *LinuxBackend) SetBindings(t *bindings.Table) {
	b.mu.Lock()
	b.table = t
	b.mu.Unlock()
}

// SetDesktopNames publishes the tag labels as EWMH desktops.
func (b *LinuxBackend) SetDesktopNames(names []string) error {
	return b.conn.SetDesktopNames(names)
}

// SetCurrentDesktop publishes the first active tag of the selected monitor.
func (b *LinuxBackend) SetCurrentDesktop(desktop int) error {
	return b.conn.SetCurrentDesktop(desktop)
}

// RefreshOutputs re-reads the RandR outputs and posts the differences.
func (b *LinuxBackend) RefreshOutputs() {
	outs, err := b.conn.Outputs()
	if err != nil {
		b.logger.Warn("failed to read outputs", "error", err)
	}
	if len(outs) == 0 {
		geom := xwindow.RootGeometry(b.conn.XUtil)
		outs = []x11.Output{{Name: "screen", Width: geom.Width(), Height: geom.Height()}}
	}

	b.mu.Lock()
	prev := b.outputs
	b.outputs = outs
	b.mu.Unlock()

	added, removed, changed := x11.DiffOutputs(prev, outs)
	for _, o := range removed {
		b.post(MonitorDetached{Name: o.Name})
	}
	for _, o := range append(added, changed...) {
		b.post(MonitorAttached{Output: Output{
			Name:       o.Name,
			Width:      o.Width,
			Height:     o.Height,
			X:          o.X,
			Y:          o.Y,
			Positioned: true,
		}})
	}
}

// Place moves and resizes a window. Hidden windows keep their offscreen x.
func (b *LinuxBackend) Place(id WindowID, r tiling.Rect, border int) error {
	win := xproto.Window(id)
	b.mu.Lock()
	w, ok := b.windows[win]
	x := r.X
	if ok {
		w.rect, w.border = r, border
		if w.hidden {
			x = offscreenX(r)
		}
	}
	b.mu.Unlock()
	if !ok {
		return fmt.Errorf("place %d: window is not managed", id)
	}
	return b.conn.Configure(win, x, r.Y, r.Width-2*border, r.Height-2*border, border)
}

// Show moves a window back to its placed rectangle.
func (b *LinuxBackend) Show(id WindowID) error {
	return b.setHidden(id, false)
}

// Hide moves a window offscreen. Windows stay mapped so applications keep
// rendering and never see a withdraw.
func (b *LinuxBackend) Hide(id WindowID) error {
	return b.setHidden(id, true)
}

func (b *LinuxBackend) setHidden(id WindowID, hidden bool) error {
	win := xproto.Window(id)
	b.mu.Lock()
	w, ok := b.windows[win]
	var r tiling.Rect
	if ok {
		w.hidden = hidden
		r = w.rect
	}
	b.mu.Unlock()
	if !ok {
		return fmt.Errorf("window %d is not managed", id)
	}
	x := r.X
	if hidden {
		x = offscreenX(r)
	}
	b.conn.Move(win, x, r.Y)
	return nil
}

// Focus gives input focus to a window, raises it and recolours the
// borders. Zero returns focus to the root window.
func (b *LinuxBackend) Focus(id WindowID) error {
	win := xproto.Window(id)
	b.mu.Lock()
	prev := b.focused
	_, managed := b.windows[prev]
	b.focused = win
	b.mu.Unlock()

	if prev != 0 && prev != win && managed {
		b.conn.SetBorderColor(prev, x11.BorderNormal)
	}
	if win != 0 {
		b.conn.SetBorderColor(win, x11.BorderFocused)
		b.conn.Raise(win)
	}
	return b.conn.Focus(win)
}

// Close requests graceful window close via WM_DELETE_WINDOW.
func (b *LinuxBackend) Close(id WindowID) error {
	return b.conn.Delete(xproto.Window(id))
}

// ChangeVT always fails under X11.
func (b *LinuxBackend) ChangeVT(vt int) error {
	return fmt.Errorf("change to vt %d: %w", vt, ErrVTUnsupported)
}

// Windows lists the top-level windows the server still knows.
func (b *LinuxBackend) Windows() ([]WindowID, error) {
	wins, err := b.conn.TopLevel()
	if err != nil {
		return nil, err
	}
	out := make([]WindowID, len(wins))
	for i, w := range wins {
		out[i] = WindowID(w)
	}
	return out, nil
}

func (b *LinuxBackend) onMapRequest(_ *xgbutil.XUtil, ev xevent.MapRequestEvent) {
	b.mu.Lock()
	_, known := b.windows[ev.Window]
	b.mu.Unlock()
	if known || !b.conn.Manageable(ev.Window) {
		b.conn.Map(ev.Window)
		return
	}
	b.manage(ev.Window)
}

// manage adopts a window, maps it offscreen and reports it. The manager
// decides where it goes and whether it is shown.
func (b *LinuxBackend) manage(win xproto.Window) {
	if !b.conn.Manageable(win) {
		return
	}
	attrs := b.conn.Describe(win)
	bounds := tiling.Rect{X: attrs.X, Y: attrs.Y, Width: attrs.Width, Height: attrs.Height}

	b.mu.Lock()
	if _, ok := b.windows[win]; ok {
		b.mu.Unlock()
		return
	}
	b.windows[win] = &xwin{rect: bounds, hidden: true, fullscreen: attrs.Fullscreen}
	b.order = append(b.order, win)
	list := append([]xproto.Window(nil), b.order...)
	b.mu.Unlock()

	if err := b.conn.Adopt(win); err != nil {
		b.logger.Warn("failed to adopt window", "window", win, "error", err)
	}
	b.conn.SetBorderColor(win, x11.BorderNormal)
	b.connectClient(win)
	b.conn.Move(win, offscreenX(bounds), bounds.Y)
	b.conn.Map(win)
	if err := b.conn.SetClientList(list); err != nil {
		b.logger.Debug("failed to publish client list", "error", err)
	}

	b.logger.Debug("window mapped", "window", win, "app_id", attrs.AppID, "title", attrs.Title)
	b.post(WindowAppeared{Window: Window{
		ID:         WindowID(win),
		AppID:      attrs.AppID,
		Title:      attrs.Title,
		Bounds:     bounds,
		Fullscreen: attrs.Fullscreen,
		Dialog:     attrs.Dialog,
	}})
	if attrs.Urgent {
		b.post(UrgencyChanged{ID: WindowID(win), Urgent: true})
	}
}

// connectClient registers the per-window callbacks and a synchronous grab
// on every button so clicks can focus the window before reaching it.
func (b *LinuxBackend) connectClient(win xproto.Window) {
	xu := b.conn.XUtil
	xevent.PropertyNotifyFun(b.onProperty).Connect(xu, win)
	xevent.ClientMessageFun(b.onClientMessage).Connect(xu, win)
	xevent.EnterNotifyFun(func(_ *xgbutil.XUtil, ev xevent.EnterNotifyEvent) {
		if ev.Mode != xproto.NotifyModeNormal || ev.Detail == xproto.NotifyDetailInferior {
			return
		}
		b.post(PointerMoved{X: int(ev.RootX), Y: int(ev.RootY)})
	}).Connect(xu, win)
	xevent.ButtonPressFun(b.onClientButton).Connect(xu, win)

	xproto.GrabButton(xu.Conn(), false, win,
		xproto.EventMaskButtonPress|xproto.EventMaskButtonRelease,
		xproto.GrabModeSync, xproto.GrabModeAsync, 0, 0,
		xproto.ButtonIndexAny, xproto.ModMaskAny)
}

func (b *LinuxBackend) forget(win xproto.Window) {
	b.mu.Lock()
	if _, ok := b.windows[win]; !ok {
		b.mu.Unlock()
		return
	}
	delete(b.windows, win)
	for i, w := range b.order {
		if w == win {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	if b.focused == win {
		b.focused = 0
	}
	list := append([]xproto.Window(nil), b.order...)
	b.mu.Unlock()

	xevent.Detach(b.conn.XUtil, win)
	if err := b.conn.SetClientList(list); err != nil {
		b.logger.Debug("failed to publish client list", "error", err)
	}
	b.post(WindowDisappeared{ID: WindowID(win)})
}

func (b *LinuxBackend) onConfigureRequest(_ *xgbutil.XUtil, ev xevent.ConfigureRequestEvent) {
	b.mu.Lock()
	w, ok := b.windows[ev.Window]
	var snapshot xwin
	if ok {
		snapshot = *w
	}
	b.mu.Unlock()
	if !ok {
		b.conn.ForwardConfigure(*ev.ConfigureRequestEvent)
		return
	}
	r := snapshot.rect
	x := r.X
	if snapshot.hidden {
		x = offscreenX(r)
	}
	bw := snapshot.border
	b.conn.SendConfigureNotify(ev.Window, x, r.Y, r.Width-2*bw, r.Height-2*bw, bw)
}

func (b *LinuxBackend) onProperty(xu *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
	name, err := xprop.AtomName(xu, ev.Atom)
	if err != nil {
		return
	}
	id := WindowID(ev.Window)
	switch name {
	case "WM_NAME", "_NET_WM_NAME":
		b.post(TitleChanged{ID: id, Title: b.conn.Title(ev.Window)})
	case "WM_HINTS":
		b.post(UrgencyChanged{ID: id, Urgent: b.conn.Urgent(ev.Window)})
	}
}

const (
	netWMStateRemove = 0
	netWMStateAdd    = 1
	netWMStateToggle = 2
)

func (b *LinuxBackend) onClientMessage(xu *xgbutil.XUtil, ev xevent.ClientMessageEvent) {
	name, err := xprop.AtomName(xu, ev.Type)
	if err != nil {
		return
	}
	id := WindowID(ev.Window)
	switch name {
	case "_NET_WM_STATE":
		fs, err := xprop.Atm(xu, "_NET_WM_STATE_FULLSCREEN")
		if err != nil {
			return
		}
		data := ev.Data.Data32
		if xproto.Atom(data[1]) != fs && xproto.Atom(data[2]) != fs {
			return
		}
		b.mu.Lock()
		w, ok := b.windows[ev.Window]
		var on bool
		if ok {
			switch data[0] {
			case netWMStateRemove:
				on = false
			case netWMStateAdd:
				on = true
			case netWMStateToggle:
				on = !w.fullscreen
			}
			w.fullscreen = on
		}
		b.mu.Unlock()
		if !ok {
			return
		}
		if err := b.conn.SetFullscreenState(ev.Window, on); err != nil {
			b.logger.Debug("failed to publish fullscreen state", "window", ev.Window, "error", err)
		}
		b.post(FullscreenRequested{ID: id, Fullscreen: on})
	case "_NET_ACTIVE_WINDOW":
		b.mu.Lock()
		focused := b.focused == ev.Window
		b.mu.Unlock()
		if !focused {
			b.conn.SetBorderColor(ev.Window, x11.BorderUrgent)
			b.post(UrgencyChanged{ID: id, Urgent: true})
		}
	}
}

// onClientButton handles the synchronous grab on a managed window. A click
// that a binding consumes keeps the pointer grabbed on the root window
// until release; any other click is replayed to the application.
func (b *LinuxBackend) onClientButton(xu *xgbutil.XUtil, ev xevent.ButtonPressEvent) {
	mods, button := pointerState(ev.State, ev.Detail)
	if b.consumes(bindings.ClickClient, mods, button) {
		xproto.AllowEvents(xu.Conn(), xproto.AllowAsyncPointer, ev.Time)
		if _, err := mousebind.GrabPointer(xu, b.conn.Root, 0, 0); err != nil {
			b.logger.Debug("pointer grab failed", "error", err)
		}
	} else {
		xevent.ReplayPointer(xu)
	}
	b.post(ButtonPressed{
		Click:  bindings.ClickClient,
		Mods:   mods,
		Button: button,
		Window: WindowID(ev.Event),
		X:      int(ev.RootX),
		Y:      int(ev.RootY),
	})
}

func (b *LinuxBackend) onRootButton(xu *xgbutil.XUtil, ev xevent.ButtonPressEvent) {
	mods, button := pointerState(ev.State, ev.Detail)
	click := bindings.ClickRoot
	var target WindowID
	b.mu.Lock()
	if _, ok := b.windows[ev.Child]; ok {
		click, target = bindings.ClickClient, WindowID(ev.Child)
	}
	b.mu.Unlock()
	if b.consumes(click, mods, button) {
		if _, err := mousebind.GrabPointer(xu, b.conn.Root, 0, 0); err != nil {
			b.logger.Debug("pointer grab failed", "error", err)
		}
	}
	b.post(ButtonPressed{
		Click:  click,
		Mods:   mods,
		Button: button,
		Window: target,
		X:      int(ev.RootX),
		Y:      int(ev.RootY),
	})
}

func (b *LinuxBackend) consumes(click bindings.Click, mods bindings.Mods, button bindings.Button) bool {
	b.mu.Lock()
	t := b.table
	b.mu.Unlock()
	_, ok := t.Button(click, mods, button, 0)
	return ok
}

// pointerState strips ignored modifiers and the pressed button's own mask.
// The core protocol modifier bits line up with bindings.Mods.
func pointerState(state uint16, detail xproto.Button) (bindings.Mods, bindings.Button) {
	mods, button := mousebind.DeduceButtonInfo(state, detail)
	return bindings.Mods(mods & 0xff), bindings.Button(button)
}

// offscreenX parks a window twice its width left of the origin.
func offscreenX(r tiling.Rect) int {
	return -2 * max(r.Width, 1)
}
