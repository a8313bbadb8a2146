package config

import (
	"fmt"
	"strings"

	"github.com/1broseidon/tagtile/internal/bindings"
	"github.com/1broseidon/tagtile/internal/rules"
	"github.com/1broseidon/tagtile/internal/tags"
	"github.com/1broseidon/tagtile/internal/tiling"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// BuildEffectiveConfig applies raw on top of DefaultConfig. Structural
// problems (unknown actions, bad modifier names) are reported here; range
// checks are left to Validate.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.LogLevel != nil {
		cfg.LogLevel = *raw.LogLevel
	}
	if raw.Tags != nil {
		cfg.Tags = append([]string(nil), raw.Tags...)
	}
	if raw.BorderPx != nil {
		cfg.BorderPx = *raw.BorderPx
	}
	if raw.SloppyFocus != nil {
		cfg.SloppyFocus = *raw.SloppyFocus
	}
	if raw.SmartBorders != nil {
		cfg.SmartBorders = *raw.SmartBorders
	}
	if raw.DefaultMFact != nil {
		cfg.DefaultMFact = *raw.DefaultMFact
	}
	if raw.DefaultNMaster != nil {
		cfg.DefaultNMaster = *raw.DefaultNMaster
	}
	if raw.ModKey != nil {
		mod, err := bindings.ParseMod(*raw.ModKey, bindings.ModLogo)
		if err != nil {
			return nil, &ValidationError{Path: "modkey", Err: err}
		}
		cfg.ModKey = mod
	}
	if raw.Bar != nil {
		if raw.Bar.Show != nil {
			cfg.Bar.Show = *raw.Bar.Show
		}
		if raw.Bar.Top != nil {
			cfg.Bar.Top = *raw.Bar.Top
		}
		if raw.Bar.Height != nil {
			cfg.Bar.Height = *raw.Bar.Height
		}
	}

	if raw.Layouts != nil {
		layouts, err := buildLayouts(raw.Layouts)
		if err != nil {
			return nil, err
		}
		cfg.Layouts = layouts
	}
	if raw.Rules != nil {
		rs, err := buildRules(raw.Rules)
		if err != nil {
			return nil, err
		}
		cfg.Rules = rs
	}
	if raw.MonitorRules != nil {
		mrs, err := buildMonitorRules(raw.MonitorRules, cfg)
		if err != nil {
			return nil, err
		}
		cfg.MonitorRules = mrs
	}
	if raw.Scratchpads != nil {
		pads, err := buildScratchpads(raw.Scratchpads)
		if err != nil {
			return nil, err
		}
		cfg.Scratchpads = pads
	}

	keys, err := buildKeys(raw, cfg.ModKey)
	if err != nil {
		return nil, err
	}
	cfg.Keys = resolveScratchKeys(keys, cfg.Scratchpads)

	buttons := DefaultButtons(cfg.ModKey)
	if raw.Buttons != nil {
		buttons, err = buildButtons(raw.Buttons, cfg.ModKey)
		if err != nil {
			return nil, err
		}
	}
	cfg.Buttons = resolveScratchButtons(buttons, cfg.Scratchpads)

	return cfg, nil
}

func buildLayouts(raw []RawLayout) ([]tiling.Layout, error) {
	out := make([]tiling.Layout, 0, len(raw))
	for i, l := range raw {
		kind, err := tiling.ParseKind(l.Arrange)
		if err != nil {
			return nil, &ValidationError{Path: fmt.Sprintf("layouts.%d.arrange", i), Err: err}
		}
		out = append(out, tiling.Layout{Symbol: l.Symbol, Kind: kind})
	}
	return out, nil
}

func buildRules(raw []RawRule) ([]rules.Rule, error) {
	out := make([]rules.Rule, 0, len(raw))
	for i, r := range raw {
		path := fmt.Sprintf("rules.%d", i)
		mask, err := tags.FromNumbers(r.Tags)
		if err != nil {
			return nil, &ValidationError{Path: path + ".tags", Err: err}
		}
		rule := rules.Rule{
			ID:       r.ID,
			Title:    r.Title,
			Tags:     mask,
			Floating: r.Floating,
			Terminal: r.Terminal,
			Monitor:  derefInt(r.Monitor, -1),
		}
		if r.Scratch != "" {
			key, err := singleRune(r.Scratch)
			if err != nil {
				return nil, &ValidationError{Path: path + ".scratch", Err: err}
			}
			rule.ScratchKey = key
		}
		out = append(out, rule)
	}
	return out, nil
}

func buildMonitorRules(raw []RawMonitorRule, cfg *Config) ([]MonitorRule, error) {
	out := make([]MonitorRule, 0, len(raw))
	for i, r := range raw {
		t, err := tiling.ParseTransform(r.Transform)
		if err != nil {
			return nil, &ValidationError{Path: fmt.Sprintf("monitor_rules.%d.transform", i), Err: err}
		}
		out = append(out, MonitorRule{
			Name:      r.Name,
			MFact:     derefFloat(r.MFact, cfg.DefaultMFact),
			NMaster:   derefInt(r.NMaster, cfg.DefaultNMaster),
			Scale:     derefFloat(r.Scale, 1),
			Layout:    derefInt(r.Layout, 0),
			Transform: t,
			X:         derefInt(r.X, -1),
			Y:         derefInt(r.Y, -1),
		})
	}
	return out, nil
}

func buildScratchpads(raw []RawScratchpad) ([]Scratchpad, error) {
	out := make([]Scratchpad, 0, len(raw))
	for i, p := range raw {
		key, err := singleRune(p.Key)
		if err != nil {
			return nil, &ValidationError{Path: fmt.Sprintf("scratchpads.%d.key", i), Err: err}
		}
		out = append(out, Scratchpad{Key: key, Command: append([]string(nil), p.Command...)})
	}
	return out, nil
}

// buildKeys assembles the key table: the user's keys (or the defaults),
// then the generated tag bindings, then the virtual terminal bindings.
func buildKeys(raw RawConfig, mod bindings.Mods) ([]bindings.KeyBinding, error) {
	var keys []bindings.KeyBinding
	if raw.Keys == nil {
		keys = defaultCommandKeys(mod)
	} else {
		keys = make([]bindings.KeyBinding, 0, len(raw.Keys))
		for i, k := range raw.Keys {
			path := fmt.Sprintf("keys.%d", i)
			mods, err := bindings.ParseMods(k.Mod, mod)
			if err != nil {
				return nil, &ValidationError{Path: path + ".mod", Err: err}
			}
			if strings.TrimSpace(k.Key) == "" {
				return nil, &ValidationError{Path: path + ".key", Err: fmt.Errorf("key is required")}
			}
			action, err := buildAction(k.Action, k.Command, k.Shell)
			if err != nil {
				return nil, &ValidationError{Path: path + ".action", Err: err}
			}
			keys = append(keys, bindings.KeyBinding{Mods: mods, Key: k.Key, Action: action})
		}
	}

	tagMod, tagKeys, shifted := mod, defaultTagKeys(), bindings.DefaultShiftedDigits
	if raw.TagKeys != nil {
		if raw.TagKeys.Mod != nil {
			m, err := bindings.ParseMods(raw.TagKeys.Mod, mod)
			if err != nil {
				return nil, &ValidationError{Path: "tag_keys.mod", Err: err}
			}
			tagMod = m
		}
		if raw.TagKeys.Keys != nil {
			tagKeys = raw.TagKeys.Keys
			shifted = raw.TagKeys.ShiftedKeys
			if shifted == nil {
				shifted = tagKeys
			}
		}
	}
	generated, err := bindings.TagKeyTable(tagMod, tagKeys, shifted)
	if err != nil {
		return nil, &ValidationError{Path: "tag_keys", Err: err}
	}
	keys = append(keys, generated...)

	vt := derefInt(raw.VTKeys, defaultVTKeys)
	if vt < 0 {
		return nil, &ValidationError{Path: "vt_keys", Err: fmt.Errorf("vt_keys must be >= 0")}
	}
	return append(keys, bindings.VTKeys(vt)...), nil
}

func buildButtons(raw []RawButton, mod bindings.Mods) ([]bindings.ButtonBinding, error) {
	out := make([]bindings.ButtonBinding, 0, len(raw))
	for i, b := range raw {
		path := fmt.Sprintf("buttons.%d", i)
		click, err := bindings.ParseClick(b.Click)
		if err != nil {
			return nil, &ValidationError{Path: path + ".click", Err: err}
		}
		mods, err := bindings.ParseMods(b.Mod, mod)
		if err != nil {
			return nil, &ValidationError{Path: path + ".mod", Err: err}
		}
		button, err := bindings.ParseButton(b.Button)
		if err != nil {
			return nil, &ValidationError{Path: path + ".button", Err: err}
		}
		action, err := buildAction(b.Action, b.Command, b.Shell)
		if err != nil {
			return nil, &ValidationError{Path: path + ".action", Err: err}
		}
		out = append(out, bindings.ButtonBinding{Click: click, Mods: mods, Button: button, Action: action})
	}
	return out, nil
}

// buildAction parses an action, letting an explicit command or shell line
// supply the argument vector of spawn and togglescratch.
func buildAction(text string, command []string, shell string) (bindings.Action, error) {
	argv := command
	if shell != "" {
		if len(command) > 0 {
			return nil, fmt.Errorf("command and shell are mutually exclusive")
		}
		argv = shellCmd(shell)
	}

	word := strings.ToLower(strings.TrimSpace(text))
	if len(argv) > 0 && word == string(bindings.KindSpawn) {
		return bindings.Spawn{Argv: append([]string(nil), argv...)}, nil
	}

	action, err := bindings.ParseAction(text)
	if err != nil {
		return nil, err
	}
	if len(argv) == 0 {
		return action, nil
	}
	ts, ok := action.(bindings.ToggleScratch)
	if !ok {
		return nil, fmt.Errorf("%s does not take a command", action.Kind())
	}
	ts.Argv = append([]string(nil), argv...)
	return ts, nil
}

func singleRune(s string) (rune, error) {
	r := []rune(s)
	if len(r) != 1 {
		return 0, fmt.Errorf("expected a single character, got %q", s)
	}
	return r[0], nil
}

func derefInt(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func derefFloat(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}
