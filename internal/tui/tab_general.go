package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/tagtile/internal/config"
	"github.com/1broseidon/tagtile/internal/tiling"
)

var errNoChanges = errors.New("no changes to save")

type generalPhase int

const (
	generalDisplay generalPhase = iota
	generalEditing
	generalConfirm // showing the diff, awaiting enter
)

// GeneralTab shows the general settings and edits them with a huh form.
// Saving rewrites the top-level config file and reloads the daemon.
type GeneralTab struct {
	path    string
	cfg     *config.Config
	loadErr error
	reload  func() error

	width  int
	height int

	phase   generalPhase
	form    *huh.Form
	pending config.General
	diff    string

	// The tab is copied on every update; the form binds to this pointer.
	fields *generalFields
}

// generalFields holds the form-bound values, strings for numeric inputs.
type generalFields struct {
	BorderPx     string
	MFact        string
	NMaster      string
	BarHeight    string
	SloppyFocus  bool
	SmartBorders bool
	BarShow      bool
	BarTop       bool
}

// NewGeneralTab loads the config at path, or the default location. reload
// is called after a successful save.
func NewGeneralTab(path string, reload func() error) GeneralTab {
	g := GeneralTab{path: path, reload: reload}
	if g.path == "" {
		g.path, g.loadErr = config.DefaultConfigPath()
	}
	g.Load()
	return g
}

// Load re-reads the config from disk.
func (g *GeneralTab) Load() {
	if g.path == "" {
		return
	}
	res, err := config.LoadFromPath(g.path)
	if err != nil {
		g.cfg, g.loadErr = nil, err
		return
	}
	g.cfg, g.loadErr = res.Config, nil
}

// Capturing reports whether the tab owns the keyboard.
func (g GeneralTab) Capturing() bool {
	return g.phase != generalDisplay
}

// Update handles messages for the general tab.
func (g GeneralTab) Update(msg tea.Msg) (GeneralTab, tea.Cmd) {
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		g.width, g.height = ws.Width, ws.Height
	}
	switch g.phase {
	case generalEditing:
		return g.updateEditing(msg)
	case generalConfirm:
		return g.updateConfirm(msg)
	}
	if km, ok := msg.(tea.KeyMsg); ok && km.String() == "e" && g.cfg != nil {
		g.startEditing()
		return g, g.form.Init()
	}
	return g, nil
}

func (g GeneralTab) updateEditing(msg tea.Msg) (GeneralTab, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && km.String() == "esc" {
		g.phase, g.form = generalDisplay, nil
		return g, nil
	}

	form, cmd := g.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		g.form = f
	}
	switch g.form.State {
	case huh.StateCompleted:
		g.form = nil
		if err := g.finishEditing(); err != nil {
			g.phase = generalDisplay
			return g, func() tea.Msg { return resultMsg{what: "save", err: err} }
		}
		return g, nil
	case huh.StateAborted:
		g.phase, g.form = generalDisplay, nil
		return g, nil
	}
	return g, cmd
}

func (g GeneralTab) updateConfirm(msg tea.Msg) (GeneralTab, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return g, nil
	}
	switch km.String() {
	case "esc", "n":
		g.phase = generalDisplay
		return g, nil
	case "enter", "y":
		g.phase = generalDisplay
		return g, saveGeneral(g.path, g.pending, g.reload)
	}
	return g, nil
}

// saveGeneral writes the settings and asks the daemon to pick them up. A
// daemon that is not running is not an error; the file is still saved.
func saveGeneral(path string, settings config.General, reload func() error) tea.Cmd {
	return func() tea.Msg {
		if err := config.SaveGeneral(path, settings); err != nil {
			return resultMsg{what: "save", err: err}
		}
		if reload != nil {
			if err := reload(); err != nil {
				return resultMsg{what: "save", err: fmt.Errorf("saved, reload failed: %w", err)}
			}
		}
		return resultMsg{what: "save"}
	}
}

func (g *GeneralTab) startEditing() {
	cur := g.cfg.General()
	f := &generalFields{
		BorderPx:     strconv.Itoa(cur.BorderPx),
		MFact:        strconv.FormatFloat(cur.MFact, 'f', -1, 64),
		NMaster:      strconv.Itoa(cur.NMaster),
		BarHeight:    strconv.Itoa(cur.Bar.Height),
		SloppyFocus:  cur.SloppyFocus,
		SmartBorders: cur.SmartBorders,
		BarShow:      cur.Bar.Show,
		BarTop:       cur.Bar.Top,
	}
	g.fields = f

	w := g.width - 4
	if w < 40 {
		w = 40
	}

	g.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("border_px").
				Title("Border Width").
				Description("Window border in pixels").
				Validate(nonNegativeInt).
				Value(&f.BorderPx),
			huh.NewInput().
				Key("default_mfact").
				Title("Master Fraction").
				Description("Share of the width given to the master column, 0 < f < 1").
				Validate(fraction).
				Value(&f.MFact),
			huh.NewInput().
				Key("default_nmaster").
				Title("Master Count").
				Description("Windows in the master column").
				Validate(nonNegativeInt).
				Value(&f.NMaster),
			huh.NewConfirm().
				Key("sloppy_focus").
				Title("Focus Follows Mouse").
				Value(&f.SloppyFocus),
			huh.NewConfirm().
				Key("smart_borders").
				Title("Smart Borders").
				Description("Hide the border of a lone or monocle window").
				Value(&f.SmartBorders),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Key("bar_show").
				Title("Reserve Bar Space").
				Value(&f.BarShow),
			huh.NewConfirm().
				Key("bar_top").
				Title("Bar At Top").
				Value(&f.BarTop),
			huh.NewInput().
				Key("bar_height").
				Title("Bar Height").
				Validate(nonNegativeInt).
				Value(&f.BarHeight),
		),
	).WithWidth(w).WithShowHelp(true).WithShowErrors(true)

	g.phase = generalEditing
}

// finishEditing turns the form values into pending settings and prepares
// the diff shown before saving.
func (g *GeneralTab) finishEditing() error {
	settings, err := g.formSettings()
	if err != nil {
		return err
	}
	diff, err := config.Diff(g.cfg, g.cfg.WithGeneral(settings))
	if err != nil {
		return err
	}
	if diff == "" {
		return errNoChanges
	}
	g.pending, g.diff = settings, diff
	g.phase = generalConfirm
	return nil
}

func (g *GeneralTab) formSettings() (config.General, error) {
	f := g.fields
	if f == nil {
		return config.General{}, errors.New("no settings edited")
	}
	border, err := strconv.Atoi(strings.TrimSpace(f.BorderPx))
	if err != nil {
		return config.General{}, fmt.Errorf("border width: %w", err)
	}
	mfact, err := strconv.ParseFloat(strings.TrimSpace(f.MFact), 64)
	if err != nil {
		return config.General{}, fmt.Errorf("master fraction: %w", err)
	}
	nmaster, err := strconv.Atoi(strings.TrimSpace(f.NMaster))
	if err != nil {
		return config.General{}, fmt.Errorf("master count: %w", err)
	}
	height, err := strconv.Atoi(strings.TrimSpace(f.BarHeight))
	if err != nil {
		return config.General{}, fmt.Errorf("bar height: %w", err)
	}
	return config.General{
		BorderPx:     border,
		SloppyFocus:  f.SloppyFocus,
		SmartBorders: f.SmartBorders,
		MFact:        mfact,
		NMaster:      nmaster,
		Bar:          tiling.Bar{Show: f.BarShow, Top: f.BarTop, Height: height},
	}, nil
}

func nonNegativeInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return errors.New("must be a whole number")
	}
	if n < 0 {
		return errors.New("must be >= 0")
	}
	return nil
}

func fraction(s string) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f <= 0 || f >= 1 {
		return errors.New("must be between 0 and 1")
	}
	return nil
}

// View renders the general tab.
func (g GeneralTab) View() string {
	style := lipgloss.NewStyle().Width(g.width).Height(g.height).Padding(1, 2)
	switch g.phase {
	case generalEditing:
		header := lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Bold(true).Render("Editing General Settings") +
			dimStyle.Render("  (esc to cancel)")
		return style.Render(header + "\n\n" + g.form.View())
	case generalConfirm:
		return style.Render(g.viewConfirm())
	}
	return style.Render(g.viewDisplay())
}

func (g GeneralTab) viewDisplay() string {
	if g.cfg == nil {
		msg := "No config loaded"
		if g.loadErr != nil {
			msg = g.loadErr.Error()
		}
		return lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Render(msg)
	}

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("250")).
		Width(22).
		Align(lipgloss.Right).
		PaddingRight(2)
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
	row := func(label, value string) string {
		return labelStyle.Render(label) + valueStyle.Render(value)
	}

	s := g.cfg.General()
	bar := "hidden"
	if s.Bar.Show {
		pos := "bottom"
		if s.Bar.Top {
			pos = "top"
		}
		bar = fmt.Sprintf("%s, %dpx", pos, s.Bar.Height)
	}
	lines := []string{
		row("Config File", g.path),
		"",
		row("Border Width", strconv.Itoa(s.BorderPx)),
		row("Master Fraction", strconv.FormatFloat(s.MFact, 'f', -1, 64)),
		row("Master Count", strconv.Itoa(s.NMaster)),
		row("Focus Follows Mouse", strconv.FormatBool(s.SloppyFocus)),
		row("Smart Borders", strconv.FormatBool(s.SmartBorders)),
		row("Bar", bar),
		"",
		dimStyle.Render("  Press 'e' to edit settings"),
	}
	return strings.Join(lines, "\n")
}

func (g GeneralTab) viewConfirm() string {
	addStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	rmStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	var lines []string
	for _, l := range strings.Split(g.diff, "\n") {
		t := strings.TrimSpace(l)
		switch {
		case strings.HasPrefix(t, "+"):
			lines = append(lines, addStyle.Render(t))
		case strings.HasPrefix(t, "-"):
			lines = append(lines, rmStyle.Render(t))
		}
	}
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Render("Save Config - Pending Changes")
	footer := dimStyle.Render("enter: save and reload  esc: cancel")
	return title + "\n\n" + strings.Join(lines, "\n") + "\n\n" + footer
}
