// Package bindings holds the input dispatch table: which key chord or
// pointer button, in which click context, triggers which action.
package bindings

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Mods is a modifier set.
type Mods uint8

const (
	ModShift Mods = 1 << iota
	ModCaps
	ModCtrl
	ModAlt
	ModMod2
	ModMod3
	ModLogo
	ModMod5
)

var modNames = []struct {
	mod  Mods
	name string
}{
	{ModLogo, "logo"},
	{ModCtrl, "ctrl"},
	{ModAlt, "alt"},
	{ModShift, "shift"},
	{ModCaps, "caps"},
	{ModMod2, "mod2"},
	{ModMod3, "mod3"},
	{ModMod5, "mod5"},
}

// Clean drops Caps Lock, which never takes part in matching.
func (m Mods) Clean() Mods { return m &^ ModCaps }

func (m Mods) String() string {
	if m == 0 {
		return "none"
	}
	var parts []string
	for _, mn := range modNames {
		if m&mn.mod != 0 {
			parts = append(parts, mn.name)
		}
	}
	return strings.Join(parts, "+")
}

// ParseMod parses a single modifier name. "mod" stands for modkey.
func ParseMod(name string, modkey Mods) (Mods, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "mod":
		if modkey == 0 {
			return 0, fmt.Errorf("modifier %q used but no modkey is set", name)
		}
		return modkey, nil
	case "shift":
		return ModShift, nil
	case "caps", "lock":
		return ModCaps, nil
	case "ctrl", "control":
		return ModCtrl, nil
	case "alt", "mod1":
		return ModAlt, nil
	case "mod2":
		return ModMod2, nil
	case "mod3":
		return ModMod3, nil
	case "logo", "super", "mod4":
		return ModLogo, nil
	case "mod5":
		return ModMod5, nil
	case "none", "":
		return 0, nil
	}
	return 0, fmt.Errorf("unknown modifier %q", name)
}

// ParseMods combines a list of modifier names.
func ParseMods(names []string, modkey Mods) (Mods, error) {
	var out Mods
	for _, n := range names {
		m, err := ParseMod(n, modkey)
		if err != nil {
			return 0, err
		}
		out |= m
	}
	return out, nil
}

// Button is a pointer button number.
type Button uint8

const (
	ButtonLeft   Button = 1
	ButtonMiddle Button = 2
	ButtonRight  Button = 3
)

func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonMiddle:
		return "middle"
	case ButtonRight:
		return "right"
	}
	return strconv.Itoa(int(b))
}

func ParseButton(s string) (Button, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left":
		return ButtonLeft, nil
	case "middle":
		return ButtonMiddle, nil
	case "right":
		return ButtonRight, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 9 {
		return 0, fmt.Errorf("invalid button %q", s)
	}
	return Button(n), nil
}

// Click is the screen region a pointer button was pressed in.
type Click string

const (
	ClickLtSymbol Click = "ltsymbol"
	ClickTitle    Click = "title"
	ClickStatus   Click = "status"
	ClickClient   Click = "client"
	ClickTagBar   Click = "tagbar"
	ClickRoot     Click = "root"
)

func ParseClick(s string) (Click, error) {
	switch c := Click(strings.ToLower(strings.TrimSpace(s))); c {
	case ClickLtSymbol, ClickTitle, ClickStatus, ClickClient, ClickTagBar, ClickRoot:
		return c, nil
	}
	return "", fmt.Errorf("unknown click context %q", s)
}

// KeyBinding maps a chord to an action.
type KeyBinding struct {
	Mods   Mods
	Key    string
	Action Action
}

func (k KeyBinding) Chord() string {
	if k.Mods == 0 {
		return k.Key
	}
	return k.Mods.String() + "+" + k.Key
}

// ButtonBinding maps a pointer button in a click context to an action.
type ButtonBinding struct {
	Click  Click
	Mods   Mods
	Button Button
	Action Action
}

// Table is the dispatch table. Lookups scan in declaration order and the
// first exact match wins.
type Table struct {
	keys    []KeyBinding
	buttons []ButtonBinding
}

func NewTable(keys []KeyBinding, buttons []ButtonBinding) *Table {
	t := &Table{
		keys:    make([]KeyBinding, len(keys)),
		buttons: make([]ButtonBinding, len(buttons)),
	}
	copy(t.keys, keys)
	copy(t.buttons, buttons)
	return t
}

// Key resolves a key press. ok is false when the chord is unbound and the
// event should pass through.
func (t *Table) Key(mods Mods, key string) (Action, bool) {
	if t == nil {
		return nil, false
	}
	mods = mods.Clean()
	for _, k := range t.keys {
		if k.Mods.Clean() == mods && k.Key == key {
			return k.Action, true
		}
	}
	return nil, false
}

// Button resolves a button press in the given click context. Tag-bar
// bindings with an empty tag argument receive tag.
func (t *Table) Button(click Click, mods Mods, button Button, tag int) (Action, bool) {
	if t == nil {
		return nil, false
	}
	mods = mods.Clean()
	for _, b := range t.buttons {
		if b.Click == click && b.Mods.Clean() == mods && b.Button == button {
			if click == ClickTagBar {
				return WithClickedTag(b.Action, tag), true
			}
			return b.Action, true
		}
	}
	return nil, false
}

func (t *Table) Keys() []KeyBinding {
	out := make([]KeyBinding, len(t.keys))
	copy(out, t.keys)
	return out
}

func (t *Table) Buttons() []ButtonBinding {
	out := make([]ButtonBinding, len(t.buttons))
	copy(out, t.buttons)
	return out
}

// Shadowed lists bindings that are never reached because an earlier binding
// uses the same chord.
func (t *Table) Shadowed() []string {
	var out []string
	seen := make(map[string]int)
	for i, k := range t.keys {
		id := k.Mods.Clean().String() + "+" + k.Key
		if first, ok := seen[id]; ok {
			out = append(out, fmt.Sprintf("key %s: %q is shadowed by %q", k.Chord(), k.Action, t.keys[first].Action))
			continue
		}
		seen[id] = i
	}
	seenButtons := make(map[string]int)
	for i, b := range t.buttons {
		id := fmt.Sprintf("%s/%s/%s", b.Click, b.Mods.Clean(), b.Button)
		if first, ok := seenButtons[id]; ok {
			out = append(out, fmt.Sprintf("button %s: %q is shadowed by %q", id, b.Action, t.buttons[first].Action))
			continue
		}
		seenButtons[id] = i
	}
	sort.Strings(out)
	return out
}
