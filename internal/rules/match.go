// Package rules maps a new window's identity to its initial placement.
package rules

import (
	"fmt"
	"strings"

	"github.com/1broseidon/tagtile/internal/tags"
)

// Rule is a static placement directive. ID and Title are substring
// matchers; an empty matcher is not consulted.
type Rule struct {
	ID         string
	Title      string
	Tags       tags.Mask
	Floating   bool
	Terminal   bool
	Monitor    int
	ScratchKey rune
}

// Directive is the outcome of matching a window. Tags == 0 means the window
// inherits the active tags of its monitor and Monitor == -1 means the
// selected monitor.
type Directive struct {
	Rule       int
	Tags       tags.Mask
	Floating   bool
	Terminal   bool
	Monitor    int
	ScratchKey rune
}

// Default is the directive for a window no rule matches.
func Default() Directive {
	return Directive{Rule: -1, Monitor: -1}
}

// Matched reports whether a rule produced the directive.
func (d Directive) Matched() bool { return d.Rule >= 0 }

func (r Rule) matches(appID, title string) bool {
	if r.ID == "" && r.Title == "" {
		return false
	}
	if r.ID != "" && !strings.Contains(appID, r.ID) {
		return false
	}
	if r.Title != "" && !strings.Contains(title, r.Title) {
		return false
	}
	return true
}

func (r Rule) String() string {
	switch {
	case r.ID != "" && r.Title != "":
		return fmt.Sprintf("id=%q title=%q", r.ID, r.Title)
	case r.Title != "":
		return fmt.Sprintf("title=%q", r.Title)
	default:
		return fmt.Sprintf("id=%q", r.ID)
	}
}

// Matcher evaluates rules in declaration order.
type Matcher struct {
	rules []Rule
}

func NewMatcher(rules []Rule) *Matcher {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return &Matcher{rules: out}
}

// Match returns the directive of the first rule matching the window, or
// Default when none does.
func (m *Matcher) Match(appID, title string) Directive {
	if m == nil {
		return Default()
	}
	for i, r := range m.rules {
		if !r.matches(appID, title) {
			continue
		}
		return Directive{
			Rule:       i,
			Tags:       r.Tags,
			Floating:   r.Floating,
			Terminal:   r.Terminal,
			Monitor:    r.Monitor,
			ScratchKey: r.ScratchKey,
		}
	}
	return Default()
}

func (m *Matcher) Len() int {
	if m == nil {
		return 0
	}
	return len(m.rules)
}

// Shadow describes a rule that can never match because an earlier rule
// matches every window it would.
type Shadow struct {
	Rule int
	By   int
}

func (s Shadow) String() string {
	return fmt.Sprintf("rule %d is unreachable, rule %d matches first", s.Rule, s.By)
}

// Shadowed lists unreachable rules. Rule a covers rule b when each matcher
// a sets is a substring of b's corresponding matcher.
func (m *Matcher) Shadowed() []Shadow {
	if m == nil {
		return nil
	}
	var out []Shadow
	for j := range m.rules {
		for i := 0; i < j; i++ {
			if covers(m.rules[i], m.rules[j]) {
				out = append(out, Shadow{Rule: j, By: i})
				break
			}
		}
	}
	return out
}

func covers(a, b Rule) bool {
	if a.ID == "" && a.Title == "" {
		return false
	}
	if a.ID != "" && (b.ID == "" || !strings.Contains(b.ID, a.ID)) {
		return false
	}
	if a.Title != "" && (b.Title == "" || !strings.Contains(b.Title, a.Title)) {
		return false
	}
	return true
}
