package x11

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xprop"
)

// clientEventMask is selected on every managed window.
const clientEventMask = xproto.EventMaskEnterWindow |
	xproto.EventMaskPropertyChange |
	xproto.EventMaskStructureNotify

// Border colours: normal, focused and urgent.
const (
	BorderNormal  uint32 = 0x000000
	BorderFocused uint32 = 0xffffff
	BorderUrgent  uint32 = 0xf38ba8
)

// Attributes is what a new top-level window tells us about itself.
type Attributes struct {
	AppID      string
	Title      string
	X, Y       int
	Width      int
	Height     int
	Dialog     bool
	Fullscreen bool
	Urgent     bool
}

// Manageable reports whether a window should be managed: it must not be
// override-redirect and must not be a dock, desktop or notification.
func (c *Connection) Manageable(win xproto.Window) bool {
	attrs, err := xproto.GetWindowAttributes(c.XUtil.Conn(), win).Reply()
	if err != nil || attrs.OverrideRedirect {
		return false
	}
	return c.IsNormalWindow(win)
}

// Viewable reports whether a window is currently mapped.
func (c *Connection) Viewable(win xproto.Window) bool {
	attrs, err := xproto.GetWindowAttributes(c.XUtil.Conn(), win).Reply()
	return err == nil && attrs.MapState == xproto.MapStateViewable
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(win xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, win)
	if err != nil {
		return true
	}
	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_DESKTOP",
			"_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_SPLASH",
			"_NET_WM_WINDOW_TYPE_NOTIFICATION":
			return false
		}
	}
	return true
}

// Describe reads the identity and initial state of a window.
func (c *Connection) Describe(win xproto.Window) Attributes {
	a := Attributes{
		AppID:  c.AppID(win),
		Title:  c.Title(win),
		Dialog: c.isDialog(win),
		Urgent: c.Urgent(win),
	}
	if geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(win)).Reply(); err == nil {
		a.X, a.Y = int(geom.X), int(geom.Y)
		a.Width, a.Height = int(geom.Width), int(geom.Height)
	}
	if states, err := ewmh.WmStateGet(c.XUtil, win); err == nil {
		for _, s := range states {
			if s == "_NET_WM_STATE_FULLSCREEN" {
				a.Fullscreen = true
			}
		}
	}
	return a
}

func (c *Connection) isDialog(win xproto.Window) bool {
	if parent, err := icccm.WmTransientForGet(c.XUtil, win); err == nil && parent != 0 {
		return true
	}
	types, err := ewmh.WmWindowTypeGet(c.XUtil, win)
	if err != nil {
		return false
	}
	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_DIALOG" {
			return true
		}
	}
	return false
}

// AppID returns the WM_CLASS class name.
func (c *Connection) AppID(win xproto.Window) string {
	wmClass, err := icccm.WmClassGet(c.XUtil, win)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(wmClass.Class)
}

// Title prefers _NET_WM_NAME and falls back to WM_NAME.
func (c *Connection) Title(win xproto.Window) string {
	if title, err := ewmh.WmNameGet(c.XUtil, win); err == nil {
		if title = strings.TrimSpace(title); title != "" {
			return title
		}
	}
	if title, err := icccm.WmNameGet(c.XUtil, win); err == nil {
		return strings.TrimSpace(title)
	}
	return ""
}

// Urgent reports the urgency flag of WM_HINTS.
func (c *Connection) Urgent(win xproto.Window) bool {
	hints, err := icccm.WmHintsGet(c.XUtil, win)
	if err != nil {
		return false
	}
	return hints.Flags&icccm.HintUrgency != 0
}

// Adopt selects the client event mask and marks the window as normal in
// WM_STATE.
func (c *Connection) Adopt(win xproto.Window) error {
	err := xproto.ChangeWindowAttributesChecked(c.XUtil.Conn(), win,
		xproto.CwEventMask, []uint32{clientEventMask}).Check()
	if err != nil {
		return fmt.Errorf("select client events on %d: %w", win, err)
	}
	return icccm.WmStateSet(c.XUtil, win, &icccm.WmState{State: icccm.StateNormal})
}

// Map maps a window.
func (c *Connection) Map(win xproto.Window) {
	xproto.MapWindow(c.XUtil.Conn(), win)
}

// Configure sets the position, inner size and border width of a window.
func (c *Connection) Configure(win xproto.Window, x, y, width, height, border int) error {
	mask := uint16(xproto.ConfigWindowX | xproto.ConfigWindowY |
		xproto.ConfigWindowWidth | xproto.ConfigWindowHeight |
		xproto.ConfigWindowBorderWidth)
	values := []uint32{
		uint32(int32(x)), uint32(int32(y)),
		uint32(max(1, width)), uint32(max(1, height)),
		uint32(max(0, border)),
	}
	return xproto.ConfigureWindowChecked(c.XUtil.Conn(), win, mask, values).Check()
}

// Move changes only the position of a window.
func (c *Connection) Move(win xproto.Window, x, y int) {
	xproto.ConfigureWindow(c.XUtil.Conn(), win,
		xproto.ConfigWindowX|xproto.ConfigWindowY,
		[]uint32{uint32(int32(x)), uint32(int32(y))})
}

// SendConfigureNotify tells a client its current geometry without changing
// it. Managed windows asking to reconfigure themselves get this instead.
func (c *Connection) SendConfigureNotify(win xproto.Window, x, y, width, height, border int) {
	ev := xproto.ConfigureNotifyEvent{
		Event:            win,
		Window:           win,
		AboveSibling:     0,
		X:                int16(x),
		Y:                int16(y),
		Width:            uint16(max(1, width)),
		Height:           uint16(max(1, height)),
		BorderWidth:      uint16(max(0, border)),
		OverrideRedirect: false,
	}
	xproto.SendEvent(c.XUtil.Conn(), false, win,
		xproto.EventMaskStructureNotify, string(ev.Bytes()))
}

// ForwardConfigure honours a ConfigureRequest from an unmanaged window.
func (c *Connection) ForwardConfigure(ev xproto.ConfigureRequestEvent) {
	var values []uint32
	mask := ev.ValueMask
	if mask&xproto.ConfigWindowX != 0 {
		values = append(values, uint32(int32(ev.X)))
	}
	if mask&xproto.ConfigWindowY != 0 {
		values = append(values, uint32(int32(ev.Y)))
	}
	if mask&xproto.ConfigWindowWidth != 0 {
		values = append(values, uint32(ev.Width))
	}
	if mask&xproto.ConfigWindowHeight != 0 {
		values = append(values, uint32(ev.Height))
	}
	if mask&xproto.ConfigWindowBorderWidth != 0 {
		values = append(values, uint32(ev.BorderWidth))
	}
	if mask&xproto.ConfigWindowSibling != 0 {
		values = append(values, uint32(ev.Sibling))
	}
	if mask&xproto.ConfigWindowStackMode != 0 {
		values = append(values, uint32(ev.StackMode))
	}
	xproto.ConfigureWindow(c.XUtil.Conn(), ev.Window, mask, values)
}

// SetBorderColor sets the border pixel of a window.
func (c *Connection) SetBorderColor(win xproto.Window, pixel uint32) {
	xproto.ChangeWindowAttributes(c.XUtil.Conn(), win, xproto.CwBorderPixel, []uint32{pixel})
}

// Raise stacks a window above its siblings.
func (c *Connection) Raise(win xproto.Window) {
	xproto.ConfigureWindow(c.XUtil.Conn(), win, xproto.ConfigWindowStackMode,
		[]uint32{xproto.StackModeAbove})
}

// Focus gives input focus to win and publishes it as the active window.
// A zero window returns focus to the root.
func (c *Connection) Focus(win xproto.Window) error {
	target := win
	if target == 0 {
		target = c.Root
	}
	err := xproto.SetInputFocusChecked(c.XUtil.Conn(), xproto.InputFocusPointerRoot,
		target, xproto.TimeCurrentTime).Check()
	if err != nil {
		return fmt.Errorf("set input focus to %d: %w", target, err)
	}
	return ewmh.ActiveWindowSet(c.XUtil, win)
}

// SetFullscreenState publishes the fullscreen state in _NET_WM_STATE.
func (c *Connection) SetFullscreenState(win xproto.Window, on bool) error {
	if on {
		return ewmh.WmStateSet(c.XUtil, win, []string{"_NET_WM_STATE_FULLSCREEN"})
	}
	return ewmh.WmStateSet(c.XUtil, win, []string{})
}

// SetClientList publishes the managed windows in _NET_CLIENT_LIST.
func (c *Connection) SetClientList(wins []xproto.Window) error {
	return ewmh.ClientListSet(c.XUtil, wins)
}

// Delete asks a window to close via WM_DELETE_WINDOW, and kills its client
// when the protocol is not supported.
func (c *Connection) Delete(win xproto.Window) error {
	protocols, _ := icccm.WmProtocolsGet(c.XUtil, win)
	supported := false
	for _, p := range protocols {
		if p == "WM_DELETE_WINDOW" {
			supported = true
			break
		}
	}
	if !supported {
		return xproto.KillClientChecked(c.XUtil.Conn(), uint32(win)).Check()
	}

	deleteAtom, err := xprop.Atm(c.XUtil, "WM_DELETE_WINDOW")
	if err != nil {
		return err
	}
	protocolsAtom, err := xprop.Atm(c.XUtil, "WM_PROTOCOLS")
	if err != nil {
		return err
	}

	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   protocolsAtom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{uint32(deleteAtom), 0, 0, 0, 0}),
	}

	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		win,
		xproto.EventMaskNoEvent,
		string(ev.Bytes()),
	).Check()
}

// TopLevel lists the children of the root window.
func (c *Connection) TopLevel() ([]xproto.Window, error) {
	tree, err := xproto.QueryTree(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("query tree: %w", err)
	}
	return tree.Children, nil
}
