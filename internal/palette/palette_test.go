package palette

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/1broseidon/tagtile/internal/config"
	"github.com/1broseidon/tagtile/internal/ipc"
	"github.com/1broseidon/tagtile/internal/tags"
	"github.com/1broseidon/tagtile/internal/wm"
)

func TestPickerMatchesSelectionByLabel(t *testing.T) {
	var gotArgs []string
	var gotInput string
	p := &picker{command: "rofi", kind: kindRofi, run: func(_ string, args []string, input string) (string, error) {
		gotArgs, gotInput = args, input
		return "foot (2)\n", nil
	}}
	items := []Item{
		{Label: "foot", Action: "view 1", Active: true},
		{Label: "foot", Action: "view 2", Urgent: true},
	}
	got, err := p.Show("tagtile", items)
	if err != nil {
		t.Fatalf("Show: %v", err)
	}
	if got.Action != "view 2" {
		t.Fatalf("selected %+v, want the second entry", got)
	}
	if gotInput != "foot\nfoot (2)" {
		t.Fatalf("input = %q", gotInput)
	}
	want := []string{"-dmenu", "-i", "-no-custom", "-p", "tagtile", "-a", "0", "-u", "1"}
	if diff := cmp.Diff(want, gotArgs); diff != "" {
		t.Fatalf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestPickerEmptySelectionIsCancel(t *testing.T) {
	p := &picker{command: "dmenu", kind: kindDmenu, run: func(string, []string, string) (string, error) {
		return "", nil
	}}
	if _, err := p.Show("", []Item{{Label: "a"}}); !errors.Is(err, ErrCancelled) {
		t.Fatalf("err = %v, want ErrCancelled", err)
	}
}

func TestNewBackendRejectsUnknownName(t *testing.T) {
	if _, err := NewBackend("fuzzel"); err == nil || !strings.Contains(err.Error(), "unknown") {
		t.Fatalf("expected unknown backend error, got %v", err)
	}
}

// scripted answers each Show call with the item whose label has the next
// prefix.
type scripted struct {
	picks   []string
	prompts []string
}

func (s *scripted) Show(prompt string, items []Item) (Item, error) {
	s.prompts = append(s.prompts, prompt)
	if len(s.picks) == 0 {
		return Item{}, ErrCancelled
	}
	pick := s.picks[0]
	s.picks = s.picks[1:]
	for _, it := range items {
		if strings.HasPrefix(it.Label, pick) {
			return it, nil
		}
	}
	return Item{}, errors.New("no such item " + pick)
}

func TestMenuNavigatesSubmenus(t *testing.T) {
	items := []MenuItem{
		{Item: Item{Label: "Layout"}, Submenu: []MenuItem{
			{Item: Item{Label: "[]=", Action: "setlayout 0"}},
			{Item: Item{Label: "[M]", Action: "setlayout 2"}},
		}},
		{Item: Item{Label: "Close window", Action: "killclient"}},
	}

	s := &scripted{picks: []string{"Layout", backLabel, "Layout", "[M]"}}
	action, err := NewMenu(s, "tagtile", items).Show()
	if err != nil {
		t.Fatalf("Show: %v", err)
	}
	if action != "setlayout 2" {
		t.Fatalf("action = %q", action)
	}
	if diff := cmp.Diff([]string{"tagtile", "Layout", "tagtile", "Layout"}, s.prompts); diff != "" {
		t.Fatalf("prompts mismatch (-want +got):\n%s", diff)
	}

	if _, err := NewMenu(&scripted{}, "tagtile", items).Show(); !errors.Is(err, ErrCancelled) {
		t.Fatalf("cancel at root = %v, want ErrCancelled", err)
	}
}

func TestEntries(t *testing.T) {
	cfg := config.DefaultConfig()
	st := &ipc.StatusData{
		Tags: []string{"1", "2", "3"},
		Monitors: []wm.MonitorStatus{
			{Output: "eDP-1", Selected: true, Active: tags.Bit(1), Layout: cfg.Layouts[0].Symbol},
		},
	}
	clients := &ipc.ClientsData{Clients: []wm.ClientInfo{
		{AppID: "foot", Title: "shell", Tags: "3", TagMask: uint32(tags.Bit(2)), Focused: true},
		{AppID: "bar", Tags: "*", TagMask: uint32(tags.All)},
	}}
	root := Entries(st, clients, cfg)

	byLabel := map[string]MenuItem{}
	for _, it := range root {
		byLabel[it.Label] = it
	}
	windows := byLabel["Windows"]
	if len(windows.Submenu) != 1 || windows.Submenu[0].Action != "view 3" || !windows.Submenu[0].Active {
		t.Fatalf("unexpected window entries %+v", windows.Submenu)
	}
	view := byLabel["View tag"]
	if len(view.Submenu) != 3 || !view.Submenu[1].Active || view.Submenu[0].Active {
		t.Fatalf("unexpected view entries %+v", view.Submenu)
	}
	layouts := byLabel["Layout"]
	if len(layouts.Submenu) == 0 || layouts.Submenu[0].Action != "setlayout 0" || !layouts.Submenu[0].Active {
		t.Fatalf("unexpected layout entries %+v", layouts.Submenu)
	}
	if _, ok := byLabel["Close window"]; !ok {
		t.Fatal("missing close entry")
	}
}

func TestEntriesDropsEmptyGroups(t *testing.T) {
	root := Entries(&ipc.StatusData{}, &ipc.ClientsData{}, nil)
	for _, it := range root {
		if it.Action == "" && len(it.Submenu) == 0 {
			t.Fatalf("empty group %q kept", it.Label)
		}
	}
}
