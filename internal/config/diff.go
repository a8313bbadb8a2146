package config

import (
	"strings"

	"github.com/google/go-cmp/cmp"
)

// Diff returns a line diff between the rendered forms of two configs, or
// "" when they are equivalent.
func Diff(previous, current *Config) (string, error) {
	prev, err := Render(previous)
	if err != nil {
		return "", err
	}
	curr, err := Render(current)
	if err != nil {
		return "", err
	}
	return DiffSerialized(prev, curr), nil
}

// DiffSerialized returns a unified diff between two serialized configuration payloads.
func DiffSerialized(previous, current []byte) string {
	prevLines := splitLines(previous)
	currLines := splitLines(current)
	if diff := cmp.Diff(prevLines, currLines); diff != "" {
		return diff
	}
	return ""
}

func splitLines(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return []string{""}
	}
	return strings.Split(text, "\n")
}
