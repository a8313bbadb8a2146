// Package scratch tracks named scratchpad windows: utility windows spawned on
// first use and afterwards toggled between shown and hidden.
package scratch

import (
	"errors"
	"fmt"
	"sort"

	"github.com/1broseidon/tagtile/internal/platform"
)

// State is the lifecycle position of a scratchpad.
type State int

const (
	Unspawned State = iota
	Spawning
	Hidden
	Shown
)

func (s State) String() string {
	switch s {
	case Unspawned:
		return "unspawned"
	case Spawning:
		return "spawning"
	case Hidden:
		return "hidden"
	case Shown:
		return "shown"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ErrNoCommand is returned when an unspawned pad has nothing to launch.
var ErrNoCommand = errors.New("scratchpad has no spawn command")

// Pad is one scratchpad entry.
type Pad struct {
	Key    rune
	Argv   []string
	Window platform.WindowID
	State  State
}

// Step tells the caller what a toggle requires.
type Step int

const (
	StepNone Step = iota
	StepSpawn
	StepShow
	StepHide
)

// Outcome of Toggle. Argv is set for StepSpawn, Window for show/hide.
type Outcome struct {
	Step   Step
	Argv   []string
	Window platform.WindowID
}

// Pads holds every scratchpad by key. Pads are created lazily.
type Pads struct {
	pads map[rune]*Pad
}

func New() *Pads {
	return &Pads{pads: make(map[rune]*Pad)}
}

func (p *Pads) pad(key rune) *Pad {
	pad, ok := p.pads[key]
	if !ok {
		pad = &Pad{Key: key}
		p.pads[key] = pad
	}
	return pad
}

// Toggle advances the pad for key. argv replaces the stored command when
// non-empty. A toggle while a spawn is in flight does nothing.
func (p *Pads) Toggle(key rune, argv []string) (Outcome, error) {
	pad := p.pad(key)
	if len(argv) > 0 {
		pad.Argv = append([]string(nil), argv...)
	}

	switch pad.State {
	case Unspawned:
		if len(pad.Argv) == 0 {
			return Outcome{}, fmt.Errorf("%w: %q", ErrNoCommand, key)
		}
		pad.State = Spawning
		return Outcome{Step: StepSpawn, Argv: append([]string(nil), pad.Argv...)}, nil
	case Spawning:
		return Outcome{Step: StepNone}, nil
	case Hidden:
		pad.State = Shown
		return Outcome{Step: StepShow, Window: pad.Window}, nil
	case Shown:
		pad.State = Hidden
		return Outcome{Step: StepHide, Window: pad.Window}, nil
	}
	return Outcome{}, fmt.Errorf("scratchpad %q in unknown state %v", key, pad.State)
}

// Attach associates a newly appeared window with key and shows it. It
// reports false when the key already owns a live window.
func (p *Pads) Attach(key rune, id platform.WindowID) bool {
	pad := p.pad(key)
	if pad.State == Hidden || pad.State == Shown {
		return false
	}
	pad.Window = id
	pad.State = Shown
	return true
}

// Detach forgets the window if it belongs to a pad. The pad returns to
// Unspawned so the next toggle spawns again.
func (p *Pads) Detach(id platform.WindowID) (rune, bool) {
	for key, pad := range p.pads {
		if pad.Window == id && (pad.State == Hidden || pad.State == Shown) {
			pad.Window = 0
			pad.State = Unspawned
			return key, true
		}
	}
	return 0, false
}

// SpawnFailed returns a pad with a spawn in flight to Unspawned.
func (p *Pads) SpawnFailed(key rune) bool {
	pad, ok := p.pads[key]
	if !ok || pad.State != Spawning {
		return false
	}
	pad.State = Unspawned
	return true
}

// Visible reports whether the window of key is currently shown.
func (p *Pads) Visible(key rune) bool {
	pad, ok := p.pads[key]
	return ok && pad.State == Shown
}

// Owner reports whether id is the live window of key.
func (p *Pads) Owner(key rune, id platform.WindowID) bool {
	pad, ok := p.pads[key]
	return ok && pad.Window == id && (pad.State == Hidden || pad.State == Shown)
}

func (p *Pads) Get(key rune) (Pad, bool) {
	pad, ok := p.pads[key]
	if !ok {
		return Pad{}, false
	}
	return *pad, true
}

// List returns every pad ordered by key.
func (p *Pads) List() []Pad {
	out := make([]Pad, 0, len(p.pads))
	for _, pad := range p.pads {
		out = append(out, *pad)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
