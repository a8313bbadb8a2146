package bindings

import (
	"fmt"

	"github.com/1broseidon/tagtile/internal/tags"
)

// TagKeys returns the four bindings for one tag: mod+key views it,
// mod+ctrl+key toggles its visibility, mod+shift+shiftedKey moves the
// focused window to it and mod+ctrl+shift+shiftedKey toggles the window's
// membership.
func TagKeys(mod Mods, key, shiftedKey string, tag int) []KeyBinding {
	m := tags.Bit(tag)
	return []KeyBinding{
		{Mods: mod, Key: key, Action: View{Tags: m}},
		{Mods: mod | ModCtrl, Key: key, Action: ToggleView{Tags: m}},
		{Mods: mod | ModShift, Key: shiftedKey, Action: Tag{Tags: m}},
		{Mods: mod | ModCtrl | ModShift, Key: shiftedKey, Action: ToggleTag{Tags: m}},
	}
}

// TagKeyTable expands TagKeys for consecutive tags starting at 0. keys and
// shifted must have the same length.
func TagKeyTable(mod Mods, keys, shifted []string) ([]KeyBinding, error) {
	if len(keys) != len(shifted) {
		return nil, fmt.Errorf("%d keys but %d shifted keys", len(keys), len(shifted))
	}
	if len(keys) > tags.MaxTags {
		return nil, fmt.Errorf("%d tag keys exceed the %d tag limit", len(keys), tags.MaxTags)
	}
	out := make([]KeyBinding, 0, 4*len(keys))
	for i := range keys {
		out = append(out, TagKeys(mod, keys[i], shifted[i], i)...)
	}
	return out, nil
}

// VTKeys returns ctrl+alt+XF86Switch_VT_n bindings for terminals 1..n.
func VTKeys(n int) []KeyBinding {
	out := make([]KeyBinding, 0, n)
	for vt := 1; vt <= n; vt++ {
		out = append(out, KeyBinding{
			Mods:   ModCtrl | ModAlt,
			Key:    fmt.Sprintf("XF86Switch_VT_%d", vt),
			Action: ChVT{VT: vt},
		})
	}
	return out
}

// DefaultShiftedDigits are the US-layout shifted symbols of 1..9.
var DefaultShiftedDigits = []string{
	"exclam", "at", "numbersign", "dollar", "percent",
	"asciicircum", "ampersand", "asterisk", "parenleft",
}
