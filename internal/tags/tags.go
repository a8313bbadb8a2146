// Package tags implements the tag bitset used to decide window visibility.
//
// A window carries a Mask of the tags it belongs to and every monitor carries
// the Mask of tags it currently displays. A window is visible on a monitor
// when the two masks intersect.
package tags

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

// MaxTags is the largest number of tags a Space may hold. The top bit of a
// Mask is never a real tag so that All stays distinguishable.
const MaxTags = 31

// Mask is a fixed-width tag bitset. Bit i set means tag i.
type Mask uint32

// All is the sticky marker: a window tagged with All is visible under every
// active mask.
const All Mask = ^Mask(0)

// Bit returns the mask holding only tag i.
func Bit(i int) Mask {
	if i < 0 || i >= MaxTags {
		return 0
	}
	return 1 << uint(i)
}

// Full returns the mask with the first n tags set.
func Full(n int) Mask {
	if n <= 0 {
		return 0
	}
	if n >= MaxTags {
		n = MaxTags
	}
	return Mask(1)<<uint(n) - 1
}

func (m Mask) Union(o Mask) Mask { return m | o }
func (m Mask) Toggle(o Mask) Mask { return m ^ o }
func (m Mask) Intersects(o Mask) bool { return m&o != 0 }
func (m Mask) Disjoint(o Mask) bool { return m&o == 0 }
func (m Mask) IsZero() bool { return m == 0 }
func (m Mask) Sticky() bool { return m == All }
func (m Mask) Has(i int) bool { return m&Bit(i) != 0 }
func (m Mask) Within(n int) Mask { return m & Full(n) }
func (m Mask) Count() int { return bits.OnesCount32(uint32(m)) }
func (m Mask) Equal(o Mask) bool { return m == o }
func (m Mask) Without(o Mask) Mask { return m &^ o }
func (m Mask) String() string { return fmt.Sprintf("%#x", uint32(m)) }
func (m Mask) Uint32() uint32 { return uint32(m) }
func (m Mask) Lowest() int { return bits.TrailingZeros32(uint32(m)) }
func (m Mask) Indices(n int) []int { return indices(m.Within(n)) }
func (m Mask) Expand(n int) Mask { return expand(m, n) }

// Toggled XORs o into m, limited to n tags. It reports false instead of
// returning an empty mask, which callers treat as a rejected mutation.
func (m Mask) Toggled(o Mask, n int) (Mask, bool) {
	next := m.Expand(n).Toggle(o).Within(n)
	if next.IsZero() {
		return m, false
	}
	return next, true
}

func expand(m Mask, n int) Mask {
	if m.Sticky() {
		return Full(n)
	}
	return m
}

func indices(m Mask) []int {
	var out []int
	for m != 0 {
		i := bits.TrailingZeros32(uint32(m))
		out = append(out, i)
		m &^= 1 << uint(i)
	}
	return out
}

// Space is the configured set of tags and their labels.
type Space struct {
	labels []string
}

// NewSpace validates the tag labels. A configuration with no tags or more
// than MaxTags tags cannot be represented.
func NewSpace(labels []string) (Space, error) {
	if len(labels) == 0 {
		return Space{}, fmt.Errorf("at least one tag is required")
	}
	if len(labels) > MaxTags {
		return Space{}, fmt.Errorf("%d tags configured, at most %d are supported", len(labels), MaxTags)
	}
	out := make([]string, len(labels))
	copy(out, labels)
	return Space{labels: out}, nil
}

func (s Space) Len() int { return len(s.labels) }

// All returns the mask of every configured tag.
func (s Space) All() Mask { return Full(len(s.labels)) }

// Label returns the display label of tag i.
func (s Space) Label(i int) string {
	if i < 0 || i >= len(s.labels) {
		return ""
	}
	return s.labels[i]
}

func (s Space) Labels() []string {
	out := make([]string, len(s.labels))
	copy(out, s.labels)
	return out
}

// Clamp limits m to the configured tags, keeping the sticky marker.
func (s Space) Clamp(m Mask) Mask {
	if m.Sticky() {
		return m
	}
	return m.Within(len(s.labels))
}

// Format renders a mask as the labels it contains, e.g. "1,4".
func (s Space) Format(m Mask) string {
	if m.Sticky() {
		return "*"
	}
	idx := m.Indices(len(s.labels))
	parts := make([]string, 0, len(idx))
	for _, i := range idx {
		parts = append(parts, s.labels[i])
	}
	return strings.Join(parts, ",")
}

// ParseMask parses a tag argument as written in bindings and on the command
// line: "all" or "*" for All, "0" or "" for the empty mask, otherwise a
// comma-separated list of 1-based tag numbers.
func ParseMask(s string) (Mask, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "all", "*", "~0":
		return All, nil
	case "", "0":
		return 0, nil
	}
	var m Mask
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return 0, fmt.Errorf("invalid tag %q", part)
		}
		if n < 1 || n > MaxTags {
			return 0, fmt.Errorf("tag %d out of range 1..%d", n, MaxTags)
		}
		m |= Bit(n - 1)
	}
	return m, nil
}

// FromNumbers builds a mask from 1-based tag numbers.
func FromNumbers(nums []int) (Mask, error) {
	var m Mask
	for _, n := range nums {
		if n < 1 || n > MaxTags {
			return 0, fmt.Errorf("tag %d out of range 1..%d", n, MaxTags)
		}
		m |= Bit(n - 1)
	}
	return m, nil
}
