// Package palette shows a list of window manager actions in an external
// dmenu-style picker and reports the chosen one.
package palette

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrCancelled is returned when the user closes the picker without a choice.
var ErrCancelled = errors.New("palette cancelled")

// Item is a single selectable entry in a palette menu.
type Item struct {
	Label  string // Display text
	Action string // Action text passed to dispatch on selection
	Active bool   // Highlighted as current
	Urgent bool   // Highlighted as urgent
}

// Backend shows items to the user and returns the selected one.
type Backend interface {
	Show(prompt string, items []Item) (Item, error)
}

// runFunc runs a picker command with input on stdin and returns stdout.
type runFunc func(name string, args []string, input string) (string, error)

type kind int

const (
	kindRofi kind = iota
	kindBemenu
	kindDmenu
)

var kindNames = map[string]kind{
	"rofi":   kindRofi,
	"bemenu": kindBemenu,
	"dmenu":  kindDmenu,
}

// pickerOrder is the auto-detection priority.
var pickerOrder = []string{"rofi", "bemenu", "dmenu"}

// DetectBackend returns the first available picker found in PATH.
func DetectBackend() (string, error) {
	for _, name := range pickerOrder {
		if _, err := exec.LookPath(name); err == nil {
			return name, nil
		}
	}
	return "", fmt.Errorf("no palette backend found in PATH (looked for: %s)", strings.Join(pickerOrder, ", "))
}

// NewBackend creates a backend by name. Supported names: auto, rofi,
// bemenu, dmenu.
func NewBackend(name string) (Backend, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "auto" {
		detected, err := DetectBackend()
		if err != nil {
			return nil, err
		}
		name = detected
	}
	k, ok := kindNames[name]
	if !ok {
		return nil, fmt.Errorf("unknown palette backend %q", name)
	}
	if _, err := exec.LookPath(name); err != nil {
		return nil, fmt.Errorf("palette backend %q not found in PATH", name)
	}
	return &picker{command: name, kind: k, run: runCommand}, nil
}

type picker struct {
	command string
	kind    kind
	run     runFunc
}

func (p *picker) Show(prompt string, items []Item) (Item, error) {
	if len(items) == 0 {
		return Item{}, fmt.Errorf("palette: no items to show")
	}
	labels := uniqueLabels(items)
	out, err := p.run(p.command, p.args(prompt, items), strings.Join(labels, "\n"))
	selection := strings.TrimSpace(out)
	if err != nil {
		if selection == "" && isCancelExit(err) {
			return Item{}, ErrCancelled
		}
		return Item{}, err
	}
	if selection == "" {
		return Item{}, ErrCancelled
	}
	for i, l := range labels {
		if l == selection {
			return items[i], nil
		}
	}
	return Item{}, fmt.Errorf("palette: unknown selection %q", selection)
}

func (p *picker) args(prompt string, items []Item) []string {
	var args []string
	switch p.kind {
	case kindRofi:
		args = []string{"-dmenu", "-i", "-no-custom"}
		if prompt != "" {
			args = append(args, "-p", prompt)
		}
		var active, urgent []string
		for i, it := range items {
			if it.Active {
				active = append(active, fmt.Sprint(i))
			}
			if it.Urgent {
				urgent = append(urgent, fmt.Sprint(i))
			}
		}
		if len(active) > 0 {
			args = append(args, "-a", strings.Join(active, ","))
		}
		if len(urgent) > 0 {
			args = append(args, "-u", strings.Join(urgent, ","))
		}
	case kindBemenu:
		args = []string{"-i", "-l", "15"}
		if prompt != "" {
			args = append(args, "-p", prompt)
		}
	case kindDmenu:
		args = []string{"-i", "-l", "15"}
		if prompt != "" {
			args = append(args, "-p", prompt)
		}
	}
	return args
}

// uniqueLabels sanitizes labels and numbers duplicates, since selections
// are matched by text.
func uniqueLabels(items []Item) []string {
	seen := make(map[string]int, len(items))
	out := make([]string, len(items))
	for i, it := range items {
		l := sanitizeLabel(it.Label)
		if n := seen[l]; n > 0 {
			out[i] = fmt.Sprintf("%s (%d)", l, n+1)
		} else {
			out[i] = l
		}
		seen[l]++
	}
	return out
}

func sanitizeLabel(label string) string {
	label = strings.ReplaceAll(label, "\r", " ")
	label = strings.ReplaceAll(label, "\n", " ")
	return strings.TrimSpace(label)
}

func runCommand(name string, args []string, input string) (string, error) {
	cmd := exec.Command(name, args...)
	cmd.Stdin = strings.NewReader(input)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil && !isCancelExit(err) {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return string(out), fmt.Errorf("%s failed: %s", name, msg)
		}
		return string(out), fmt.Errorf("%s failed: %w", name, err)
	}
	return string(out), err
}

func isCancelExit(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	// Pickers use 1 for "no selection" and 130 for Ctrl+C.
	switch exitErr.ExitCode() {
	case 1, 130:
		return true
	default:
		return false
	}
}
