package palette

import (
	"errors"
	"fmt"
)

// MenuItem represents an item in the menu hierarchy.
type MenuItem struct {
	Item
	Submenu []MenuItem // Child items (empty for leaf items)
}

// IsParent returns true if this item has a submenu.
func (m MenuItem) IsParent() bool {
	return len(m.Submenu) > 0
}

const backLabel = "← back"

// Menu handles hierarchical menu navigation using a palette backend.
type Menu struct {
	backend Backend
	root    []MenuItem
	prompt  string
}

// NewMenu creates a new hierarchical menu with the given backend and root items.
func NewMenu(backend Backend, prompt string, items []MenuItem) *Menu {
	return &Menu{backend: backend, root: items, prompt: prompt}
}

// Show walks the menu until a leaf is chosen and returns its action.
// Cancelling a submenu returns to its parent; cancelling the root returns
// ErrCancelled.
func (m *Menu) Show() (string, error) {
	return m.showLevel(m.root, m.prompt, false)
}

func (m *Menu) showLevel(items []MenuItem, prompt string, nested bool) (string, error) {
	if len(items) == 0 {
		return "", fmt.Errorf("menu: no items to show")
	}
	for {
		shown := make([]Item, 0, len(items)+1)
		if nested {
			shown = append(shown, Item{Label: backLabel})
		}
		for _, it := range items {
			item := it.Item
			if it.IsParent() {
				item.Label += " →"
			}
			shown = append(shown, item)
		}

		choice, err := m.backend.Show(prompt, shown)
		if err != nil {
			return "", err
		}
		idx := indexOf(shown, choice)
		if nested {
			if idx == 0 {
				return "", ErrCancelled
			}
			idx--
		}
		if idx < 0 || idx >= len(items) {
			continue
		}
		picked := items[idx]
		if !picked.IsParent() {
			return picked.Action, nil
		}
		action, err := m.showLevel(picked.Submenu, picked.Label, true)
		if errors.Is(err, ErrCancelled) {
			continue
		}
		return action, err
	}
}

func indexOf(items []Item, it Item) int {
	for i := range items {
		if items[i] == it {
			return i
		}
	}
	return -1
}
