package bindings

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/1broseidon/tagtile/internal/tags"
)

// Kind names an action. The names double as the command words accepted by
// ParseAction.
type Kind string

const (
	KindSpawn            Kind = "spawn"
	KindToggleScratch    Kind = "togglescratch"
	KindFocusStack       Kind = "focusstack"
	KindMoveStack        Kind = "movestack"
	KindIncNMaster       Kind = "incnmaster"
	KindSetMFact         Kind = "setmfact"
	KindZoom             Kind = "zoom"
	KindView             Kind = "view"
	KindViewPrev         Kind = "viewprev"
	KindToggleView       Kind = "toggleview"
	KindTag              Kind = "tag"
	KindToggleTag        Kind = "toggletag"
	KindKillClient       Kind = "killclient"
	KindSetLayout        Kind = "setlayout"
	KindToggleFloating   Kind = "togglefloating"
	KindToggleFullscreen Kind = "togglefullscreen"
	KindFocusMon         Kind = "focusmon"
	KindTagMon           Kind = "tagmon"
	KindToggleBar        Kind = "togglebar"
	KindMoveResize       Kind = "moveresize"
	KindChVT             Kind = "chvt"
	KindQuit             Kind = "quit"
)

// Action is a bound operation with its typed argument. The concrete types
// below are the only implementations.
type Action interface {
	Kind() Kind
	String() string
	action()
}

// Direction selects a neighbouring monitor.
type Direction int

const (
	Left  Direction = -1
	Right Direction = 1
)

func (d Direction) String() string {
	if d == Left {
		return "left"
	}
	return "right"
}

// GrabMode is the pointer operation started by MoveResize.
type GrabMode int

const (
	GrabMove GrabMode = iota + 1
	GrabResize
)

func (g GrabMode) String() string {
	if g == GrabResize {
		return "resize"
	}
	return "move"
}

type (
	Spawn         struct{ Argv []string }
	ToggleScratch struct {
		Key  rune
		Argv []string
	}
	FocusStack struct{ Delta int }
	MoveStack  struct{ Delta int }
	IncNMaster struct{ Delta int }
	// SetMFact adds Delta to the master fraction, or sets it when Absolute.
	SetMFact struct {
		Delta    float64
		Absolute bool
	}
	Zoom       struct{}
	View       struct{ Tags tags.Mask }
	ViewPrev   struct{}
	ToggleView struct{ Tags tags.Mask }
	Tag        struct{ Tags tags.Mask }
	ToggleTag  struct{ Tags tags.Mask }
	KillClient struct{}
	// SetLayout selects layout Index; -1 swaps back to the previous layout.
	SetLayout        struct{ Index int }
	ToggleFloating   struct{}
	ToggleFullscreen struct{}
	FocusMon         struct{ Dir Direction }
	TagMon           struct{ Dir Direction }
	ToggleBar        struct{}
	MoveResize       struct{ Mode GrabMode }
	ChVT             struct{ VT int }
	Quit             struct{}
)

func (Spawn) Kind() Kind { return KindSpawn }
func (ToggleScratch) Kind() Kind { return KindToggleScratch }
func (FocusStack) Kind() Kind { return KindFocusStack }
func (MoveStack) Kind() Kind { return KindMoveStack }
func (IncNMaster) Kind() Kind { return KindIncNMaster }
func (SetMFact) Kind() Kind { return KindSetMFact }
func (Zoom) Kind() Kind { return KindZoom }
func (View) Kind() Kind { return KindView }
func (ViewPrev) Kind() Kind { return KindViewPrev }
func (ToggleView) Kind() Kind { return KindToggleView }
func (Tag) Kind() Kind { return KindTag }
func (ToggleTag) Kind() Kind { return KindToggleTag }
func (KillClient) Kind() Kind { return KindKillClient }
func (SetLayout) Kind() Kind { return KindSetLayout }
func (ToggleFloating) Kind() Kind { return KindToggleFloating }
func (ToggleFullscreen) Kind() Kind { return KindToggleFullscreen }
func (FocusMon) Kind() Kind { return KindFocusMon }
func (TagMon) Kind() Kind { return KindTagMon }
func (ToggleBar) Kind() Kind { return KindToggleBar }
func (MoveResize) Kind() Kind { return KindMoveResize }
func (ChVT) Kind() Kind { return KindChVT }
func (Quit) Kind() Kind { return KindQuit }

func (Spawn) action() {}
func (ToggleScratch) action() {}
func (FocusStack) action() {}
func (MoveStack) action() {}
func (IncNMaster) action() {}
func (SetMFact) action() {}
func (Zoom) action() {}
func (View) action() {}
func (ViewPrev) action() {}
func (ToggleView) action() {}
func (Tag) action() {}
func (ToggleTag) action() {}
func (KillClient) action() {}
func (SetLayout) action() {}
func (ToggleFloating) action() {}
func (ToggleFullscreen) action() {}
func (FocusMon) action() {}
func (TagMon) action() {}
func (ToggleBar) action() {}
func (MoveResize) action() {}
func (ChVT) action() {}
func (Quit) action() {}

func (a Spawn) String() string { return "spawn " + strings.Join(a.Argv, " ") }
func (a ToggleScratch) String() string {
	return strings.TrimSpace(fmt.Sprintf("togglescratch %c %s", a.Key, strings.Join(a.Argv, " ")))
}
func (a FocusStack) String() string { return fmt.Sprintf("focusstack %+d", a.Delta) }
func (a MoveStack) String() string { return fmt.Sprintf("movestack %+d", a.Delta) }
func (a IncNMaster) String() string { return fmt.Sprintf("incnmaster %+d", a.Delta) }
func (a SetMFact) String() string {
	if a.Absolute {
		return fmt.Sprintf("setmfact %g", a.Delta+1)
	}
	return fmt.Sprintf("setmfact %+g", a.Delta)
}
func (Zoom) String() string { return "zoom" }
func (a View) String() string { return "view " + formatMask(a.Tags) }
func (ViewPrev) String() string { return "viewprev" }
func (a ToggleView) String() string { return "toggleview " + formatMask(a.Tags) }
func (a Tag) String() string { return "tag " + formatMask(a.Tags) }
func (a ToggleTag) String() string { return "toggletag " + formatMask(a.Tags) }
func (KillClient) String() string { return "killclient" }
func (a SetLayout) String() string {
	if a.Index < 0 {
		return "setlayout prev"
	}
	return fmt.Sprintf("setlayout %d", a.Index)
}
func (ToggleFloating) String() string { return "togglefloating" }
func (ToggleFullscreen) String() string { return "togglefullscreen" }
func (a FocusMon) String() string { return "focusmon " + a.Dir.String() }
func (a TagMon) String() string { return "tagmon " + a.Dir.String() }
func (ToggleBar) String() string { return "togglebar" }
func (a MoveResize) String() string { return "moveresize " + a.Mode.String() }
func (a ChVT) String() string { return fmt.Sprintf("chvt %d", a.VT) }
func (Quit) String() string { return "quit" }

func formatMask(m tags.Mask) string {
	switch {
	case m.Sticky():
		return "all"
	case m.IsZero():
		return "0"
	}
	idx := m.Indices(tags.MaxTags)
	parts := make([]string, len(idx))
	for i, n := range idx {
		parts[i] = strconv.Itoa(n + 1)
	}
	return strings.Join(parts, ",")
}

// ErrUnknownAction is returned by ParseAction for an unrecognised word.
var ErrUnknownAction = errors.New("unknown action")

// ParseAction parses the textual form of an action, e.g. "view 4",
// "setmfact -0.05", "focusmon left" or "spawn foot --server".
func ParseAction(text string) (Action, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty action")
	}
	kind := Kind(strings.ToLower(fields[0]))
	args := fields[1:]

	switch kind {
	case KindSpawn:
		if len(args) == 0 {
			return nil, fmt.Errorf("spawn: command is required")
		}
		return Spawn{Argv: args}, nil
	case KindToggleScratch:
		if len(args) == 0 {
			return nil, fmt.Errorf("togglescratch: key is required")
		}
		key, err := parseKey(args[0])
		if err != nil {
			return nil, fmt.Errorf("togglescratch: %w", err)
		}
		var argv []string
		if len(args) > 1 {
			argv = args[1:]
		}
		return ToggleScratch{Key: key, Argv: argv}, nil
	case KindFocusStack, KindMoveStack, KindIncNMaster:
		n, err := intArg(kind, args)
		if err != nil {
			return nil, err
		}
		switch kind {
		case KindFocusStack:
			return FocusStack{Delta: n}, nil
		case KindMoveStack:
			return MoveStack{Delta: n}, nil
		}
		return IncNMaster{Delta: n}, nil
	case KindSetMFact:
		if len(args) != 1 {
			return nil, fmt.Errorf("setmfact: expected one argument")
		}
		f, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return nil, fmt.Errorf("setmfact: %w", err)
		}
		// Values of 1.0 and above set the fraction to f-1.0.
		if f >= 1.0 {
			return SetMFact{Delta: f - 1.0, Absolute: true}, nil
		}
		return SetMFact{Delta: f}, nil
	case KindView, KindToggleView, KindTag, KindToggleTag:
		arg := ""
		if len(args) > 0 {
			arg = strings.Join(args, "")
		}
		m, err := tags.ParseMask(arg)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", kind, err)
		}
		switch kind {
		case KindView:
			return View{Tags: m}, nil
		case KindToggleView:
			return ToggleView{Tags: m}, nil
		case KindTag:
			return Tag{Tags: m}, nil
		}
		return ToggleTag{Tags: m}, nil
	case KindSetLayout:
		if len(args) == 0 || args[0] == "prev" {
			return SetLayout{Index: -1}, nil
		}
		i, err := strconv.Atoi(args[0])
		if err != nil || i < 0 {
			return nil, fmt.Errorf("setlayout: invalid layout index %q", args[0])
		}
		return SetLayout{Index: i}, nil
	case KindFocusMon, KindTagMon:
		if len(args) != 1 {
			return nil, fmt.Errorf("%s: expected left or right", kind)
		}
		dir, err := ParseDirection(args[0])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", kind, err)
		}
		if kind == KindFocusMon {
			return FocusMon{Dir: dir}, nil
		}
		return TagMon{Dir: dir}, nil
	case KindMoveResize:
		if len(args) != 1 {
			return nil, fmt.Errorf("moveresize: expected move or resize")
		}
		switch args[0] {
		case "move":
			return MoveResize{Mode: GrabMove}, nil
		case "resize":
			return MoveResize{Mode: GrabResize}, nil
		}
		return nil, fmt.Errorf("moveresize: expected move or resize, got %q", args[0])
	case KindChVT:
		n, err := intArg(kind, args)
		if err != nil {
			return nil, err
		}
		if n < 1 {
			return nil, fmt.Errorf("chvt: terminal must be >= 1")
		}
		return ChVT{VT: n}, nil
	case KindZoom, KindViewPrev, KindKillClient, KindToggleFloating,
		KindToggleFullscreen, KindToggleBar, KindQuit:
		if len(args) != 0 {
			return nil, fmt.Errorf("%s takes no arguments", kind)
		}
		return noArg(kind), nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownAction, fields[0])
}

func noArg(kind Kind) Action {
	switch kind {
	case KindZoom:
		return Zoom{}
	case KindViewPrev:
		return ViewPrev{}
	case KindKillClient:
		return KillClient{}
	case KindToggleFloating:
		return ToggleFloating{}
	case KindToggleFullscreen:
		return ToggleFullscreen{}
	case KindToggleBar:
		return ToggleBar{}
	}
	return Quit{}
}

func intArg(kind Kind, args []string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("%s: expected one integer argument", kind)
	}
	n, err := strconv.Atoi(strings.TrimPrefix(args[0], "+"))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", kind, err)
	}
	return n, nil
}

func parseKey(s string) (rune, error) {
	r := []rune(s)
	if len(r) != 1 {
		return 0, fmt.Errorf("scratch key must be a single character, got %q", s)
	}
	return r[0], nil
}

// ParseDirection accepts left/right and their -1/+1 spellings.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "left", "-1", "prev":
		return Left, nil
	case "right", "+1", "1", "next":
		return Right, nil
	}
	return 0, fmt.Errorf("invalid direction %q", s)
}

// WithClickedTag fills an empty tag argument with the clicked tag, the way
// tag-bar bindings are written.
func WithClickedTag(a Action, tag int) Action {
	bit := tags.Bit(tag)
	switch v := a.(type) {
	case View:
		if v.Tags.IsZero() {
			v.Tags = bit
		}
		return v
	case ToggleView:
		if v.Tags.IsZero() {
			v.Tags = bit
		}
		return v
	case Tag:
		if v.Tags.IsZero() {
			v.Tags = bit
		}
		return v
	case ToggleTag:
		if v.Tags.IsZero() {
			v.Tags = bit
		}
		return v
	}
	return a
}
