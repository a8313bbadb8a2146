package platform

import "github.com/1broseidon/tagtile/internal/tiling"

// WindowID is a platform-neutral window identifier. Zero means no window.
type WindowID uint32

// Output describes a physical display as reported by the windowing system.
// Width and Height are in device pixels. Positioned is set when the
// windowing system already placed the output at X,Y in the global layout;
// its size is then final and monitor rules do not scale or rotate it, while
// a monitor rule with explicit coordinates still wins.
type Output struct {
	Name       string
	Width      int
	Height     int
	X, Y       int
	Positioned bool
}

// Window contains the identity a backend reports for a new top-level window.
type Window struct {
	ID         WindowID
	AppID      string
	Title      string
	Bounds     tiling.Rect
	Fullscreen bool
	// Dialog is set for transient or dialog windows, which always float.
	Dialog bool
}

// Backend abstracts the window-system commands the window manager issues.
// Errors are reported per call; the manager logs them and keeps going.
type Backend interface {
	// Place moves and resizes a window. r is the outer rectangle including
	// a border of the given width.
	Place(id WindowID, r tiling.Rect, border int) error
	Show(id WindowID) error
	Hide(id WindowID) error
	// Focus gives input focus to id and raises it, or clears focus when id
	// is zero.
	Focus(id WindowID) error
	Close(id WindowID) error
	ChangeVT(vt int) error
	// Windows lists the windows the backend still considers alive.
	Windows() ([]WindowID, error)
}
