package config

import (
	"fmt"
	"strings"

	"github.com/1broseidon/tagtile/internal/bindings"
	"github.com/1broseidon/tagtile/internal/rules"
	"github.com/1broseidon/tagtile/internal/tags"
	"github.com/1broseidon/tagtile/internal/tiling"
)

// MonitorRule configures a monitor when it is attached. An empty Name is
// the default rule and matches every output.
type MonitorRule struct {
	Name      string
	MFact     float64
	NMaster   int
	Scale     float64
	Layout    int
	Transform tiling.Transform
	X         int
	Y         int
}

// AutoPosition reports whether the rule leaves placement to the manager.
func (r MonitorRule) AutoPosition() bool { return r.X == -1 && r.Y == -1 }

// Scratchpad is a named utility window launched on first toggle.
type Scratchpad struct {
	Key     rune
	Command []string
}

// Config is the effective configuration after defaults, includes and user
// overrides have been applied.
type Config struct {
	LogLevel       string
	Tags           []string
	BorderPx       int
	SloppyFocus    bool
	SmartBorders   bool
	DefaultMFact   float64
	DefaultNMaster int
	ModKey         bindings.Mods
	Bar            tiling.Bar
	Layouts        []tiling.Layout
	Rules          []rules.Rule
	MonitorRules   []MonitorRule
	Scratchpads    []Scratchpad
	Keys           []bindings.KeyBinding
	Buttons        []bindings.ButtonBinding
}

const (
	termClass = "ghostty"
)

var (
	termCmd = []string{termClass}
	menuCmd = []string{
		"bemenu-run", "--binding", "vim", "-i", "-b", "-p", "",
		"--fn", "JBMono Nerd Font 10", "-H", "32", "--hp", "8",
		"--fb", "#000000", "--ff", "#ffffff", "--nb", "#000000", "--nf", "#ffffff",
		"--tb", "#89b4fa", "--hb", "#11111b", "--tf", "#000000", "--hf", "#89b4fa",
		"--ab", "#000000",
	}
	scratchWindow = []string{"--window-height=40", "--window-width=190"}
)

func shellCmd(cmd string) []string { return []string{"/bin/sh", "-c", cmd} }

func scratchTerm(class, title string, extra ...string) []string {
	argv := []string{termClass, "--class=" + class, "--title=" + title}
	argv = append(argv, scratchWindow...)
	return append(argv, extra...)
}

// DefaultScratchpads are the scratchpads shipped with the default config.
func DefaultScratchpads() []Scratchpad {
	return []Scratchpad{
		{Key: 't', Command: scratchTerm("ghostty.term", "Terminal")},
		{Key: 'n', Command: scratchTerm("ghostty.notes", "Notes", "-e",
			"tmux attach-session -t Notes || tmux new-session -s Notes -c ~/Documents/Notes/Contents/", "nvim")},
		{Key: 'b', Command: append([]string{termClass, "--command='btop'", "--class=ghostty.btop", "--title=Btop"}, scratchWindow...)},
		{Key: 's', Command: []string{"signal-desktop"}},
		{Key: 'i', Command: scratchTerm("ghostty.irc", "IRC", "-e",
			"tmux attach-session -t IRC || tmux new-session -s IRC", "weechat")},
	}
}

// DefaultRules places specific scratchpad classes before the generic
// terminal rule so first-match-wins keeps them reachable.
func DefaultRules() []rules.Rule {
	return []rules.Rule{
		{ID: "zen-beta", Tags: tags.Bit(0), Monitor: -1},
		{ID: "vesktop", Tags: tags.Bit(2), Monitor: -1},
		{ID: "mpv", Tags: tags.Bit(3), Monitor: -1},
		{ID: "ghostty.term", Floating: true, Monitor: -1, ScratchKey: 't'},
		{ID: "ghostty.notes", Floating: true, Monitor: -1, ScratchKey: 'n'},
		{ID: "ghostty.btop", Floating: true, Monitor: -1, ScratchKey: 'b'},
		{ID: "ghostty.irc", Floating: true, Monitor: -1, ScratchKey: 'i'},
		{ID: "signal", Floating: true, Monitor: -1, ScratchKey: 's'},
		{ID: "ghostty", Terminal: true, Monitor: -1},
	}
}

func DefaultLayouts() []tiling.Layout {
	return []tiling.Layout{
		{Symbol: "  ", Kind: tiling.KindTile},
		{Symbol: "  ", Kind: tiling.KindFloating},
		{Symbol: "   ", Kind: tiling.KindMonocle},
	}
}

// DefaultKeys returns the default key table for modkey.
func DefaultKeys(mod bindings.Mods) []bindings.KeyBinding {
	keys := defaultCommandKeys(mod)
	tagKeys, _ := bindings.TagKeyTable(mod, defaultTagKeys(), bindings.DefaultShiftedDigits)
	keys = append(keys, tagKeys...)
	return append(keys, bindings.VTKeys(defaultVTKeys)...)
}

const defaultVTKeys = 12

// defaultCommandKeys is the default table without the generated tag and
// virtual terminal bindings.
func defaultCommandKeys(mod bindings.Mods) []bindings.KeyBinding {
	shift := mod | bindings.ModShift
	return []bindings.KeyBinding{
		{Mods: mod, Key: "r", Action: bindings.Spawn{Argv: menuCmd}},
		{Mods: mod, Key: "Return", Action: bindings.Spawn{Argv: termCmd}},
		{Mods: mod, Key: "t", Action: bindings.ToggleScratch{Key: 't'}},
		{Mods: mod, Key: "n", Action: bindings.ToggleScratch{Key: 'n'}},
		{Mods: mod, Key: "b", Action: bindings.ToggleScratch{Key: 'b'}},
		{Mods: mod, Key: "s", Action: bindings.ToggleScratch{Key: 's'}},
		{Mods: mod, Key: "i", Action: bindings.ToggleScratch{Key: 'i'}},
		{Key: "XF86AudioRaiseVolume", Action: bindings.Spawn{Argv: []string{"wpctl", "set-volume", "@DEFAULT_AUDIO_SINK@", "5%+"}}},
		{Key: "XF86AudioLowerVolume", Action: bindings.Spawn{Argv: []string{"wpctl", "set-volume", "@DEFAULT_AUDIO_SINK@", "5%-"}}},
		{Key: "XF86MonBrightnessUp", Action: bindings.Spawn{Argv: []string{"brightnessctl", "set", "5%+"}}},
		{Key: "XF86MonBrightnessDown", Action: bindings.Spawn{Argv: []string{"brightnessctl", "set", "5%-"}}},
		{Mods: mod, Key: "p", Action: bindings.Spawn{Argv: shellCmd(`grim -g "$(slurp)" - | swappy -f -`)}},
		{Mods: shift, Key: "Escape", Action: bindings.Spawn{Argv: shellCmd("~/.local/scripts/powermenu")}},
		{Mods: shift, Key: "J", Action: bindings.MoveStack{Delta: 1}},
		{Mods: shift, Key: "K", Action: bindings.MoveStack{Delta: -1}},
		{Mods: shift, Key: "b", Action: bindings.ToggleBar{}},
		{Mods: mod, Key: "j", Action: bindings.FocusStack{Delta: 1}},
		{Mods: mod, Key: "k", Action: bindings.FocusStack{Delta: -1}},
		{Mods: mod, Key: "i", Action: bindings.IncNMaster{Delta: 1}},
		{Mods: mod, Key: "d", Action: bindings.IncNMaster{Delta: -1}},
		{Mods: mod, Key: "h", Action: bindings.SetMFact{Delta: -0.05}},
		{Mods: mod, Key: "l", Action: bindings.SetMFact{Delta: 0.05}},
		{Mods: mod, Key: "Return", Action: bindings.Zoom{}},
		{Mods: mod, Key: "Tab", Action: bindings.ViewPrev{}},
		{Mods: mod, Key: "q", Action: bindings.KillClient{}},
		{Mods: shift, Key: "T", Action: bindings.SetLayout{Index: 0}},
		{Mods: shift, Key: "E", Action: bindings.SetLayout{Index: 1}},
		{Mods: shift, Key: "M", Action: bindings.SetLayout{Index: 2}},
		{Mods: shift, Key: "space", Action: bindings.ToggleFloating{}},
		{Mods: shift, Key: "F", Action: bindings.ToggleFullscreen{}},
		{Mods: mod, Key: "0", Action: bindings.View{Tags: tags.All}},
		{Mods: shift, Key: "parenright", Action: bindings.Tag{Tags: tags.All}},
		{Mods: mod, Key: "comma", Action: bindings.FocusMon{Dir: bindings.Left}},
		{Mods: mod, Key: "period", Action: bindings.FocusMon{Dir: bindings.Right}},
		{Mods: shift, Key: "less", Action: bindings.TagMon{Dir: bindings.Left}},
		{Mods: shift, Key: "greater", Action: bindings.TagMon{Dir: bindings.Right}},
		{Mods: shift, Key: "Q", Action: bindings.Quit{}},
		{Mods: bindings.ModCtrl | bindings.ModAlt, Key: "Terminate_Server", Action: bindings.Quit{}},
	}
}

func defaultTagKeys() []string {
	return []string{"1", "2", "3", "4", "5", "6", "7", "8", "9"}
}

// DefaultButtons returns the default pointer bindings for modkey.
func DefaultButtons(mod bindings.Mods) []bindings.ButtonBinding {
	return []bindings.ButtonBinding{
		{Click: bindings.ClickLtSymbol, Button: bindings.ButtonLeft, Action: bindings.SetLayout{Index: 0}},
		{Click: bindings.ClickLtSymbol, Button: bindings.ButtonRight, Action: bindings.SetLayout{Index: 2}},
		{Click: bindings.ClickTitle, Button: bindings.ButtonMiddle, Action: bindings.Zoom{}},
		{Click: bindings.ClickStatus, Button: bindings.ButtonMiddle, Action: bindings.Spawn{Argv: termCmd}},
		{Click: bindings.ClickClient, Mods: mod, Button: bindings.ButtonLeft, Action: bindings.MoveResize{Mode: bindings.GrabMove}},
		{Click: bindings.ClickClient, Mods: mod, Button: bindings.ButtonMiddle, Action: bindings.ToggleFloating{}},
		{Click: bindings.ClickClient, Mods: mod, Button: bindings.ButtonRight, Action: bindings.MoveResize{Mode: bindings.GrabResize}},
		{Click: bindings.ClickTagBar, Button: bindings.ButtonLeft, Action: bindings.View{}},
		{Click: bindings.ClickTagBar, Button: bindings.ButtonRight, Action: bindings.ToggleView{}},
		{Click: bindings.ClickTagBar, Mods: mod, Button: bindings.ButtonLeft, Action: bindings.Tag{}},
		{Click: bindings.ClickTagBar, Mods: mod, Button: bindings.ButtonRight, Action: bindings.ToggleTag{}},
	}
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	mod := bindings.ModLogo
	cfg := &Config{
		LogLevel:       "info",
		Tags:           []string{"1", "2", "3", "4", "5", "6", "7", "8", "9"},
		BorderPx:       1,
		SloppyFocus:    true,
		SmartBorders:   true,
		DefaultMFact:   0.55,
		DefaultNMaster: 1,
		ModKey:         mod,
		Bar:            tiling.Bar{Show: true, Top: false, Height: 32},
		Layouts:        DefaultLayouts(),
		Rules:          DefaultRules(),
		MonitorRules: []MonitorRule{
			{Name: "", MFact: 0.55, NMaster: 1, Scale: 1, Layout: 0, Transform: tiling.TransformNormal, X: -1, Y: -1},
		},
		Scratchpads: DefaultScratchpads(),
		Keys:        DefaultKeys(mod),
		Buttons:     DefaultButtons(mod),
	}
	cfg.Keys = resolveScratchKeys(cfg.Keys, cfg.Scratchpads)
	return cfg
}

// resolveScratchKeys fills the command of togglescratch bindings that only
// name a key.
func resolveScratchKeys(keys []bindings.KeyBinding, pads []Scratchpad) []bindings.KeyBinding {
	out := make([]bindings.KeyBinding, len(keys))
	for i, k := range keys {
		out[i] = k
		out[i].Action = resolveScratchAction(k.Action, pads)
	}
	return out
}

func resolveScratchButtons(buttons []bindings.ButtonBinding, pads []Scratchpad) []bindings.ButtonBinding {
	out := make([]bindings.ButtonBinding, len(buttons))
	for i, b := range buttons {
		out[i] = b
		out[i].Action = resolveScratchAction(b.Action, pads)
	}
	return out
}

func resolveScratchAction(a bindings.Action, pads []Scratchpad) bindings.Action {
	ts, ok := a.(bindings.ToggleScratch)
	if !ok || len(ts.Argv) > 0 {
		return a
	}
	if cmd := scratchCommand(pads, ts.Key); cmd != nil {
		ts.Argv = cmd
		return ts
	}
	return a
}

func scratchCommand(pads []Scratchpad, key rune) []string {
	for _, p := range pads {
		if p.Key == key {
			return append([]string(nil), p.Command...)
		}
	}
	return nil
}

// ScratchCommand returns the configured command for a scratchpad key.
func (c *Config) ScratchCommand(key rune) []string {
	return scratchCommand(c.Scratchpads, key)
}

// TagSpace returns the configured tags.
func (c *Config) TagSpace() tags.Space {
	s, err := tags.NewSpace(c.Tags)
	if err != nil {
		// Validate rejects such configs; fall back to one tag.
		s, _ = tags.NewSpace([]string{"1"})
	}
	return s
}

func (c *Config) Matcher() *rules.Matcher { return rules.NewMatcher(c.Rules) }

func (c *Config) Table() *bindings.Table { return bindings.NewTable(c.Keys, c.Buttons) }

// MonitorRuleFor returns the first rule whose name is contained in the
// output name. The default rule guarantees a match in a valid config.
func (c *Config) MonitorRuleFor(output string) MonitorRule {
	for _, r := range c.MonitorRules {
		if r.Name == "" || strings.Contains(output, r.Name) {
			return r
		}
	}
	return MonitorRule{MFact: c.DefaultMFact, NMaster: c.DefaultNMaster, Scale: 1, Transform: tiling.TransformNormal, X: -1, Y: -1}
}

// Warnings lists configuration smells that do not prevent startup.
func (c *Config) Warnings() []string {
	var out []string
	for _, s := range c.Matcher().Shadowed() {
		out = append(out, fmt.Sprintf("rules: %s (%s shadows %s)", s, c.Rules[s.By], c.Rules[s.Rule]))
	}
	out = append(out, c.Table().Shadowed()...)
	return out
}

func (c *Config) Validate() error {
	if _, err := tags.NewSpace(c.Tags); err != nil {
		return &ValidationError{Path: "tags", Err: err}
	}
	switch c.LogLevel {
	case "debug", "info", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	if c.BorderPx < 0 {
		return &ValidationError{Path: "border_px", Err: fmt.Errorf("border_px must be >= 0")}
	}
	if c.Bar.Height < 0 {
		return &ValidationError{Path: "bar.height", Err: fmt.Errorf("bar height must be >= 0")}
	}
	if c.DefaultMFact <= 0 || c.DefaultMFact >= 1 {
		return &ValidationError{Path: "default_mfact", Err: fmt.Errorf("default_mfact must be in (0, 1)")}
	}
	if c.DefaultNMaster < 0 {
		return &ValidationError{Path: "default_nmaster", Err: fmt.Errorf("default_nmaster must be >= 0")}
	}

	if len(c.Layouts) == 0 {
		return &ValidationError{Path: "layouts", Err: fmt.Errorf("layouts must not be empty")}
	}
	for i, l := range c.Layouts {
		if _, err := tiling.ParseKind(string(l.Kind)); err != nil {
			return &ValidationError{Path: fmt.Sprintf("layouts.%d", i), Err: err}
		}
	}

	for i, r := range c.Rules {
		if r.ID == "" && r.Title == "" {
			return &ValidationError{Path: fmt.Sprintf("rules.%d", i), Err: fmt.Errorf("rule needs an id or title matcher")}
		}
		if r.Monitor < -1 {
			return &ValidationError{Path: fmt.Sprintf("rules.%d.monitor", i), Err: fmt.Errorf("monitor must be -1 or an index")}
		}
		if r.Tags.Within(len(c.Tags)) != r.Tags && !r.Tags.Sticky() {
			return &ValidationError{Path: fmt.Sprintf("rules.%d.tags", i), Err: fmt.Errorf("tags exceed the %d configured tags", len(c.Tags))}
		}
	}

	hasDefault := false
	for i, r := range c.MonitorRules {
		if r.Name == "" {
			hasDefault = true
		}
		path := fmt.Sprintf("monitor_rules.%d", i)
		if r.MFact <= 0 || r.MFact >= 1 {
			return &ValidationError{Path: path + ".mfact", Err: fmt.Errorf("mfact must be in (0, 1)")}
		}
		if r.NMaster < 0 {
			return &ValidationError{Path: path + ".nmaster", Err: fmt.Errorf("nmaster must be >= 0")}
		}
		if r.Scale <= 0 {
			return &ValidationError{Path: path + ".scale", Err: fmt.Errorf("scale must be > 0")}
		}
		if r.Layout < 0 || r.Layout >= len(c.Layouts) {
			return &ValidationError{Path: path + ".layout", Err: fmt.Errorf("layout index %d out of range (have %d layouts)", r.Layout, len(c.Layouts))}
		}
		if _, err := tiling.ParseTransform(string(r.Transform)); err != nil {
			return &ValidationError{Path: path + ".transform", Err: err}
		}
		if (r.X < 0 || r.Y < 0) && !r.AutoPosition() {
			return &ValidationError{Path: path, Err: fmt.Errorf("position must be non-negative or (-1, -1) for automatic placement")}
		}
	}
	if !hasDefault {
		return &ValidationError{Path: "monitor_rules", Err: fmt.Errorf("a default monitor rule (empty name) is required")}
	}

	seen := make(map[rune]bool)
	for i, p := range c.Scratchpads {
		if p.Key == 0 {
			return &ValidationError{Path: fmt.Sprintf("scratchpads.%d.key", i), Err: fmt.Errorf("key is required")}
		}
		if seen[p.Key] {
			return &ValidationError{Path: fmt.Sprintf("scratchpads.%d.key", i), Err: fmt.Errorf("duplicate scratchpad key %q", p.Key)}
		}
		seen[p.Key] = true
		if len(p.Command) == 0 {
			return &ValidationError{Path: fmt.Sprintf("scratchpads.%d.command", i), Err: fmt.Errorf("command must not be empty")}
		}
	}

	for i, k := range c.Keys {
		if err := c.validateAction(k.Action); err != nil {
			return &ValidationError{Path: fmt.Sprintf("keys.%d", i), Err: err}
		}
	}
	for i, b := range c.Buttons {
		if err := c.validateAction(b.Action); err != nil {
			return &ValidationError{Path: fmt.Sprintf("buttons.%d", i), Err: err}
		}
	}
	return nil
}

func (c *Config) validateAction(a bindings.Action) error {
	switch v := a.(type) {
	case nil:
		return fmt.Errorf("action is required")
	case bindings.Spawn:
		if len(v.Argv) == 0 {
			return fmt.Errorf("spawn command must not be empty")
		}
	case bindings.ToggleScratch:
		if len(v.Argv) == 0 {
			return fmt.Errorf("togglescratch %q has no command and no scratchpad entry", v.Key)
		}
	case bindings.SetLayout:
		if v.Index >= len(c.Layouts) {
			return fmt.Errorf("layout index %d out of range (have %d layouts)", v.Index, len(c.Layouts))
		}
	}
	return nil
}
