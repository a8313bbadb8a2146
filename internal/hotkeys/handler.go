// Package hotkeys grabs the key chords of a dispatch table on the X11 root
// window and reports presses as platform events.
package hotkeys

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/1broseidon/tagtile/internal/bindings"
	"github.com/1broseidon/tagtile/internal/platform"
)

// x11Accessor is an optional interface for backends that expose X11 internals.
type x11Accessor interface {
	XUtil() *xgbutil.XUtil
	RootWindow() xproto.Window
}

// ErrNoX11 is returned when the backend does not expose an X connection.
var ErrNoX11 = errors.New("hotkeys: backend has no X11 connection")

// Handler owns the key grabs for one dispatch table at a time.
type Handler struct {
	xu     *xgbutil.XUtil
	root   xproto.Window
	post   func(platform.Event)
	logger *slog.Logger

	mu      sync.Mutex
	grabbed int
}

var ignoreModsOnce sync.Once

// NewHandler creates a handler posting KeyPressed events through post.
func NewHandler(backend platform.Backend, post func(platform.Event), logger *slog.Logger) (*Handler, error) {
	accessor, ok := backend.(x11Accessor)
	if !ok {
		return nil, ErrNoX11
	}
	if logger == nil {
		logger = slog.Default()
	}
	xu := accessor.XUtil()

	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})

	return &Handler{
		xu:     xu,
		root:   accessor.RootWindow(),
		post:   post,
		logger: logger,
	}, nil
}

// Apply releases every previous grab and grabs the key bindings of t.
// Chords whose key does not exist on the current keymap are skipped and
// reported together; the rest stay grabbed.
func (h *Handler) Apply(t *bindings.Table) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	keybind.Detach(h.xu, h.root)
	xproto.UngrabKey(h.xu.Conn(), xproto.GrabAny, h.root, xproto.ModMaskAny)
	h.grabbed = 0

	var failed []string
	for _, k := range uniqueChords(t.Keys()) {
		k := k
		seq := KeySequence(k.Mods, k.Key)
		err := keybind.KeyPressFun(func(*xgbutil.XUtil, xevent.KeyPressEvent) {
			h.post(platform.KeyPressed{Mods: k.Mods, Key: k.Key})
		}).Connect(h.xu, h.root, seq, true)
		if err != nil {
			h.logger.Debug("key grab failed", "chord", k.Chord(), "error", err)
			failed = append(failed, k.Chord())
			continue
		}
		h.grabbed++
	}
	h.logger.Info("key bindings grabbed", "count", h.grabbed, "skipped", len(failed))
	if len(failed) > 0 {
		return fmt.Errorf("hotkeys: could not grab %s", strings.Join(failed, ", "))
	}
	return nil
}

// Grabbed returns the number of chords currently grabbed.
func (h *Handler) Grabbed() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.grabbed
}

// uniqueChords keeps the first binding of every grab sequence. keybind runs
// every callback connected to a chord, so a repeated chord would post one
// press per binding; the manager resolves the action from the table anyway.
func uniqueChords(keys []bindings.KeyBinding) []bindings.KeyBinding {
	seen := make(map[string]struct{}, len(keys))
	out := make([]bindings.KeyBinding, 0, len(keys))
	for _, k := range keys {
		seq := KeySequence(k.Mods, k.Key)
		if _, dup := seen[seq]; dup {
			continue
		}
		seen[seq] = struct{}{}
		out = append(out, k)
	}
	return out
}

// KeySequence formats a chord in keybind's "Mod4-shift-Return" syntax.
// Caps Lock is never part of a grab.
func KeySequence(mods bindings.Mods, key string) string {
	var parts []string
	for _, m := range []struct {
		mod  bindings.Mods
		name string
	}{
		{bindings.ModShift, "shift"},
		{bindings.ModCtrl, "control"},
		{bindings.ModAlt, "mod1"},
		{bindings.ModMod2, "mod2"},
		{bindings.ModMod3, "mod3"},
		{bindings.ModLogo, "mod4"},
		{bindings.ModMod5, "mod5"},
	} {
		if mods&m.mod != 0 {
			parts = append(parts, m.name)
		}
	}
	return strings.Join(append(parts, key), "-")
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
