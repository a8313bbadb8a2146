package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/tagtile/internal/tiling"
)

// General holds the scalar settings that can be edited without touching the
// rule, layout or binding tables.
type General struct {
	BorderPx     int
	SloppyFocus  bool
	SmartBorders bool
	MFact        float64
	NMaster      int
	Bar          tiling.Bar
}

// General returns the current general settings.
func (c *Config) General() General {
	return General{
		BorderPx:     c.BorderPx,
		SloppyFocus:  c.SloppyFocus,
		SmartBorders: c.SmartBorders,
		MFact:        c.DefaultMFact,
		NMaster:      c.DefaultNMaster,
		Bar:          c.Bar,
	}
}

// WithGeneral returns a copy of c with g applied. The tables are shared.
func (c *Config) WithGeneral(g General) *Config {
	out := *c
	out.BorderPx = g.BorderPx
	out.SloppyFocus = g.SloppyFocus
	out.SmartBorders = g.SmartBorders
	out.DefaultMFact = g.MFact
	out.DefaultNMaster = g.NMaster
	out.Bar = g.Bar
	return &out
}

// SaveGeneral writes g into the top-level config file at path. Every other
// key of that file, includes and tables alike, is kept. The new file is
// loaded with its includes before it replaces the old one, so an invalid
// result leaves path untouched.
func SaveGeneral(path string, g General) error {
	var raw RawConfig
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return fmt.Errorf("read %s: %w", path, err)
	default:
		if err := decodeStrictYAML(data, &raw); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}

	border, sloppy, smart := g.BorderPx, g.SloppyFocus, g.SmartBorders
	mfact, nmaster := g.MFact, g.NMaster
	show, top, height := g.Bar.Show, g.Bar.Top, g.Bar.Height
	raw.BorderPx = &border
	raw.SloppyFocus = &sloppy
	raw.SmartBorders = &smart
	raw.DefaultMFact = &mfact
	raw.DefaultNMaster = &nmaster
	raw.Bar = &RawBar{Show: &show, Top: &top, Height: &height}

	out, err := yaml.Marshal(&raw)
	if err != nil {
		return fmt.Errorf("render config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	// Same directory, so relative includes resolve as they will after the
	// rename.
	tmp, err := os.CreateTemp(dir, ".tagtile-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(out); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}
	if _, err := LoadFromPath(tmpPath); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
