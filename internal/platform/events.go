package platform

import (
	"fmt"

	"github.com/1broseidon/tagtile/internal/bindings"
)

// Event is an inbound notification for the window manager. All events are
// consumed on the event loop goroutine.
type Event interface {
	event()
}

type WindowAppeared struct{ Window Window }

type WindowDisappeared struct{ ID WindowID }

type TitleChanged struct {
	ID    WindowID
	Title string
}

type UrgencyChanged struct {
	ID     WindowID
	Urgent bool
}

type FullscreenRequested struct {
	ID         WindowID
	Fullscreen bool
}

type KeyPressed struct {
	Mods bindings.Mods
	Key  string
}

// ButtonPressed carries the click context. Tag is the tag index for
// tag-bar clicks. Window is the client under the pointer, if any.
type ButtonPressed struct {
	Click  bindings.Click
	Mods   bindings.Mods
	Button bindings.Button
	Tag    int
	Window WindowID
	X, Y   int
}

type ButtonReleased struct {
	Button bindings.Button
	X, Y   int
}

type PointerMoved struct{ X, Y int }

type MonitorAttached struct{ Output Output }

type MonitorDetached struct{ Name string }

// SpawnFailed reports that a launched command could not run. ScratchKey is
// set when the launch came from a scratchpad toggle.
type SpawnFailed struct {
	Argv       []string
	ScratchKey rune
	Err        error
}

func (WindowAppeared) event() {}
func (WindowDisappeared) event() {}
func (TitleChanged) event() {}
func (UrgencyChanged) event() {}
func (FullscreenRequested) event() {}
func (KeyPressed) event() {}
func (ButtonPressed) event() {}
func (ButtonReleased) event() {}
func (PointerMoved) event() {}
func (MonitorAttached) event() {}
func (MonitorDetached) event() {}
func (SpawnFailed) event() {}

func (e SpawnFailed) Error() string {
	return fmt.Sprintf("spawn %v: %v", e.Argv, e.Err)
}
