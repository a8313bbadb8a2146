package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

// RawConfig mirrors the YAML file. Pointer and nil-able fields distinguish
// "not set" from zero values so includes merge field by field. Lists
// replace the earlier value as a whole.
type RawConfig struct {
	Include        IncludeList      `yaml:"include,omitempty"`
	LogLevel       *string          `yaml:"log_level,omitempty"`
	Tags           []string         `yaml:"tags,omitempty"`
	BorderPx       *int             `yaml:"border_px,omitempty"`
	SloppyFocus    *bool            `yaml:"sloppy_focus,omitempty"`
	SmartBorders   *bool            `yaml:"smart_borders,omitempty"`
	DefaultMFact   *float64         `yaml:"default_mfact,omitempty"`
	DefaultNMaster *int             `yaml:"default_nmaster,omitempty"`
	ModKey         *string          `yaml:"modkey,omitempty"`
	Bar            *RawBar          `yaml:"bar,omitempty"`
	Layouts        []RawLayout      `yaml:"layouts,omitempty"`
	Rules          []RawRule        `yaml:"rules,omitempty"`
	MonitorRules   []RawMonitorRule `yaml:"monitor_rules,omitempty"`
	Scratchpads    []RawScratchpad  `yaml:"scratchpads,omitempty"`
	Keys           []RawKey         `yaml:"keys,omitempty"`
	TagKeys        *RawTagKeys      `yaml:"tag_keys,omitempty"`
	VTKeys         *int             `yaml:"vt_keys,omitempty"`
	Buttons        []RawButton      `yaml:"buttons,omitempty"`
}

type RawBar struct {
	Show   *bool `yaml:"show,omitempty"`
	Top    *bool `yaml:"top,omitempty"`
	Height *int  `yaml:"height,omitempty"`
}

type RawLayout struct {
	Symbol  string `yaml:"symbol,omitempty"`
	Arrange string `yaml:"arrange,omitempty"`
}

type RawRule struct {
	ID       string `yaml:"id,omitempty"`
	Title    string `yaml:"title,omitempty"`
	Tags     []int  `yaml:"tags,omitempty"`
	Floating bool   `yaml:"floating,omitempty"`
	Terminal bool   `yaml:"terminal,omitempty"`
	Monitor  *int   `yaml:"monitor,omitempty"`
	Scratch  string `yaml:"scratch,omitempty"`
}

type RawMonitorRule struct {
	Name      string   `yaml:"name,omitempty"`
	MFact     *float64 `yaml:"mfact,omitempty"`
	NMaster   *int     `yaml:"nmaster,omitempty"`
	Scale     *float64 `yaml:"scale,omitempty"`
	Layout    *int     `yaml:"layout,omitempty"`
	Transform string   `yaml:"transform,omitempty"`
	X         *int     `yaml:"x,omitempty"`
	Y         *int     `yaml:"y,omitempty"`
}

type RawScratchpad struct {
	Key     string   `yaml:"key,omitempty"`
	Command []string `yaml:"command,omitempty"`
}

// RawKey is one key binding. Action is the textual action; Command, when
// set, supplies the argument vector of spawn and togglescratch actions so
// arguments may contain spaces. Shell runs a command through /bin/sh -c.
type RawKey struct {
	Mod     []string `yaml:"mod,omitempty"`
	Key     string   `yaml:"key,omitempty"`
	Action  string   `yaml:"action,omitempty"`
	Command []string `yaml:"command,omitempty"`
	Shell   string   `yaml:"shell,omitempty"`
}

type RawButton struct {
	Click   string   `yaml:"click,omitempty"`
	Mod     []string `yaml:"mod,omitempty"`
	Button  string   `yaml:"button,omitempty"`
	Action  string   `yaml:"action,omitempty"`
	Command []string `yaml:"command,omitempty"`
	Shell   string   `yaml:"shell,omitempty"`
}

// RawTagKeys generates view/toggleview/tag/toggletag bindings per tag.
type RawTagKeys struct {
	Mod         []string `yaml:"mod,omitempty"`
	Keys        []string `yaml:"keys"`
	ShiftedKeys []string `yaml:"shifted_keys"`
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	if overlay.LogLevel != nil {
		out.LogLevel = overlay.LogLevel
	}
	if overlay.Tags != nil {
		out.Tags = overlay.Tags
	}
	if overlay.BorderPx != nil {
		out.BorderPx = overlay.BorderPx
	}
	if overlay.SloppyFocus != nil {
		out.SloppyFocus = overlay.SloppyFocus
	}
	if overlay.SmartBorders != nil {
		out.SmartBorders = overlay.SmartBorders
	}
	if overlay.DefaultMFact != nil {
		out.DefaultMFact = overlay.DefaultMFact
	}
	if overlay.DefaultNMaster != nil {
		out.DefaultNMaster = overlay.DefaultNMaster
	}
	if overlay.ModKey != nil {
		out.ModKey = overlay.ModKey
	}
	if overlay.Bar != nil {
		out.Bar = mergeRawBar(out.Bar, overlay.Bar)
	}
	if overlay.Layouts != nil {
		out.Layouts = overlay.Layouts
	}
	if overlay.Rules != nil {
		out.Rules = overlay.Rules
	}
	if overlay.MonitorRules != nil {
		out.MonitorRules = overlay.MonitorRules
	}
	if overlay.Scratchpads != nil {
		out.Scratchpads = overlay.Scratchpads
	}
	if overlay.Keys != nil {
		out.Keys = overlay.Keys
	}
	if overlay.TagKeys != nil {
		out.TagKeys = overlay.TagKeys
	}
	if overlay.VTKeys != nil {
		out.VTKeys = overlay.VTKeys
	}
	if overlay.Buttons != nil {
		out.Buttons = overlay.Buttons
	}

	return out
}

func mergeRawBar(base *RawBar, overlay *RawBar) *RawBar {
	if base == nil {
		cp := *overlay
		return &cp
	}
	out := *base
	if overlay.Show != nil {
		out.Show = overlay.Show
	}
	if overlay.Top != nil {
		out.Top = overlay.Top
	}
	if overlay.Height != nil {
		out.Height = overlay.Height
	}
	return &out
}
