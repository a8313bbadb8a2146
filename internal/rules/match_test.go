package rules

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/1broseidon/tagtile/internal/tags"
)

func sampleRules() []Rule {
	return []Rule{
		{ID: "zen-beta", Tags: tags.Bit(0), Monitor: -1},
		{ID: "mpv", Tags: tags.Bit(3), Monitor: -1},
		{ID: "ghostty.term", Floating: true, Monitor: -1, ScratchKey: 't'},
		{ID: "ghostty", Terminal: true, Monitor: -1},
		{Title: "Picture-in-Picture", Floating: true, Monitor: 1},
	}
}

func TestMatch_FirstRuleWins(t *testing.T) {
	m := NewMatcher(sampleRules())

	got := m.Match("ghostty.term", "")
	want := Directive{Rule: 2, Floating: true, Monitor: -1, ScratchKey: 't'}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("directive mismatch (-want +got):\n%s", diff)
	}

	got = m.Match("com.mitchellh.ghostty", "zsh")
	if got.Rule != 3 || !got.Terminal {
		t.Fatalf("expected terminal rule 3, got %+v", got)
	}
}

func TestMatch_MpvTag(t *testing.T) {
	got := NewMatcher(sampleRules()).Match("mpv", "video.mkv - mpv")
	if got.Tags != tags.Mask(8) {
		t.Fatalf("expected tags 8, got %s", got.Tags)
	}
}

func TestMatch_TitleFallback(t *testing.T) {
	got := NewMatcher(sampleRules()).Match("firefox", "Picture-in-Picture")
	if got.Rule != 4 || !got.Floating || got.Monitor != 1 {
		t.Fatalf("expected title rule, got %+v", got)
	}
}

func TestMatch_DefaultsWhenUnmatched(t *testing.T) {
	got := NewMatcher(sampleRules()).Match("org.gnome.Nautilus", "Files")
	if diff := cmp.Diff(Default(), got); diff != "" {
		t.Fatalf("expected defaults (-want +got):\n%s", diff)
	}
	if got.Matched() {
		t.Fatalf("expected unmatched directive")
	}
}

func TestMatch_BothMatchersMustHold(t *testing.T) {
	m := NewMatcher([]Rule{{ID: "firefox", Title: "Private", Floating: true, Monitor: -1}})
	if m.Match("firefox", "Mozilla Firefox").Matched() {
		t.Fatalf("expected title mismatch to reject rule")
	}
	if !m.Match("firefox", "Private Browsing").Matched() {
		t.Fatalf("expected rule to match")
	}
}

func TestShadowed_ReportsUnreachableRules(t *testing.T) {
	m := NewMatcher([]Rule{
		{ID: "ghostty", Terminal: true},
		{ID: "ghostty.term", ScratchKey: 't'},
		{ID: "mpv"},
	})
	want := []Shadow{{Rule: 1, By: 0}}
	if diff := cmp.Diff(want, m.Shadowed()); diff != "" {
		t.Fatalf("shadowed mismatch (-want +got):\n%s", diff)
	}
	if len(NewMatcher(sampleRules()).Shadowed()) != 0 {
		t.Fatalf("expected sample rules to be fully reachable")
	}
}
