package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/tagtile/internal/bindings"
	"github.com/1broseidon/tagtile/internal/rules"
	"github.com/1broseidon/tagtile/internal/tags"
)

// Render serializes cfg as a self-contained YAML document. Loading the
// result yields an equivalent Config: generated tag and terminal bindings
// are written out as plain keys and their generators are disabled.
func Render(cfg *Config) ([]byte, error) {
	raw := ToRaw(cfg)
	out, err := yaml.Marshal(&raw)
	if err != nil {
		return nil, fmt.Errorf("render config: %w", err)
	}
	return out, nil
}

// ToRaw converts an effective config back to its file form.
func ToRaw(cfg *Config) RawConfig {
	logLevel := cfg.LogLevel
	border := cfg.BorderPx
	sloppy := cfg.SloppyFocus
	smart := cfg.SmartBorders
	mfact := cfg.DefaultMFact
	nmaster := cfg.DefaultNMaster
	modkey := cfg.ModKey.String()
	show, top, height := cfg.Bar.Show, cfg.Bar.Top, cfg.Bar.Height
	noVT := 0

	raw := RawConfig{
		LogLevel:       &logLevel,
		Tags:           append([]string(nil), cfg.Tags...),
		BorderPx:       &border,
		SloppyFocus:    &sloppy,
		SmartBorders:   &smart,
		DefaultMFact:   &mfact,
		DefaultNMaster: &nmaster,
		ModKey:         &modkey,
		Bar:            &RawBar{Show: &show, Top: &top, Height: &height},
		TagKeys:        &RawTagKeys{Keys: []string{}, ShiftedKeys: []string{}},
		VTKeys:         &noVT,
	}

	for _, l := range cfg.Layouts {
		raw.Layouts = append(raw.Layouts, RawLayout{Symbol: l.Symbol, Arrange: string(l.Kind)})
	}
	for _, r := range cfg.Rules {
		raw.Rules = append(raw.Rules, rawRule(r))
	}
	for _, r := range cfg.MonitorRules {
		raw.MonitorRules = append(raw.MonitorRules, RawMonitorRule{
			Name:      r.Name,
			MFact:     &r.MFact,
			NMaster:   &r.NMaster,
			Scale:     &r.Scale,
			Layout:    &r.Layout,
			Transform: string(r.Transform),
			X:         &r.X,
			Y:         &r.Y,
		})
	}
	for _, p := range cfg.Scratchpads {
		raw.Scratchpads = append(raw.Scratchpads, RawScratchpad{Key: string(p.Key), Command: p.Command})
	}
	for _, k := range cfg.Keys {
		action, command := rawAction(k.Action)
		raw.Keys = append(raw.Keys, RawKey{Mod: modNames(k.Mods), Key: k.Key, Action: action, Command: command})
	}
	for _, b := range cfg.Buttons {
		action, command := rawAction(b.Action)
		raw.Buttons = append(raw.Buttons, RawButton{
			Click:   string(b.Click),
			Mod:     modNames(b.Mods),
			Button:  b.Button.String(),
			Action:  action,
			Command: command,
		})
	}
	return raw
}

func rawRule(r rules.Rule) RawRule {
	monitor := r.Monitor
	out := RawRule{
		ID:       r.ID,
		Title:    r.Title,
		Floating: r.Floating,
		Terminal: r.Terminal,
		Monitor:  &monitor,
	}
	for _, i := range r.Tags.Indices(tags.MaxTags) {
		out.Tags = append(out.Tags, i+1)
	}
	if r.ScratchKey != 0 {
		out.Scratch = string(r.ScratchKey)
	}
	return out
}

// rawAction splits an action into its textual form and an explicit argument
// vector, so arguments containing spaces survive a round trip.
func rawAction(a bindings.Action) (string, []string) {
	switch v := a.(type) {
	case bindings.Spawn:
		return string(bindings.KindSpawn), v.Argv
	case bindings.ToggleScratch:
		return fmt.Sprintf("%s %c", bindings.KindToggleScratch, v.Key), v.Argv
	case nil:
		return "", nil
	}
	return a.String(), nil
}

func modNames(m bindings.Mods) []string {
	if m == 0 {
		return nil
	}
	return strings.Split(m.String(), "+")
}
