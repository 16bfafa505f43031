// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package citation

import (
	"regexp"
	"sort"
	"strings"
)

// =============================================================================
// CITED SET
// =============================================================================

// Set holds 0-based citation list positions. The zero value is not usable;
// create sets with NewSet.
type Set map[int]struct{}

// NewSet returns a set containing the given positions.
func NewSet(positions ...int) Set {
	s := make(Set, len(positions))
	for _, p := range positions {
		s[p] = struct{}{}
	}
	return s
}

// Add inserts a position.
func (s Set) Add(position int) { s[position] = struct{}{} }

// Has reports whether position is in the set.
func (s Set) Has(position int) bool {
	_, ok := s[position]
	return ok
}

// Len returns the number of positions in the set.
func (s Set) Len() int { return len(s) }

// Sorted returns the positions in ascending order.
func (s Set) Sorted() []int {
	out := make([]int, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Ints(out)
	return out
}

// Equal reports whether both sets hold the same positions.
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for p := range s {
		if !other.Has(p) {
			return false
		}
	}
	return true
}

// markNumbers adds position n-1 for every n within [1, count].
func (s Set) markNumbers(numbers []int, count int) {
	for _, n := range numbers {
		if n >= 1 && n <= count {
			s.Add(n - 1)
		}
	}
}

// =============================================================================
// DISCOVERY STRATEGIES
// =============================================================================

// Source names reported by FirstMatch.
const (
	SourceDOM  = "dom"
	SourceText = "text"
	SourceNone = "none"
)

// Strategy is one way of discovering which citations a message references.
type Strategy struct {
	Name     string
	Discover func(count int) Set
}

// FirstMatch runs the strategies in order and returns the first non-empty
// result along with the strategy's name. When every strategy comes up empty
// it returns an empty set and SourceNone.
func FirstMatch(count int, strategies ...Strategy) (Set, string) {
	for _, st := range strategies {
		if st.Discover == nil {
			continue
		}
		if found := st.Discover(count); found.Len() > 0 {
			return found, st.Name
		}
	}
	return NewSet(), SourceNone
}

// FromHrefs marks every citation referenced by the given link targets.
// Hrefs that do not parse and numbers outside [1, count] are ignored.
func FromHrefs(hrefs []string, count int) Set {
	found := NewSet()
	for _, href := range hrefs {
		if numbers, ok := ParseHref(href); ok {
			found.markNumbers(numbers, count)
		}
	}
	return found
}

// textHref matches a citation link target written inline in markdown, as
// produced by Rewrite: "(#cite-3)" or "(#cite-group-1-2)".
var textHref = regexp.MustCompile(`\((#cite-(?:group-)?[0-9]+(?:-[0-9]+)*)\)`)

// FromText marks every citation referenced by raw markers in text. Text that
// has already been partly rewritten also contributes its link targets, so
// grouped links count even though their labels are no longer markers.
func FromText(text string, count int) Set {
	found := NewSet()
	if text == "" || count <= 0 {
		return found
	}
	found.markNumbers(MarkerNumbers(text), count)
	if strings.Contains(text, HrefPrefix) {
		for _, m := range textHref.FindAllStringSubmatch(text, -1) {
			if numbers, ok := ParseHref(m[1]); ok {
				found.markNumbers(numbers, count)
			}
		}
	}
	return found
}

// =============================================================================
// DISPLAY SELECTION
// =============================================================================

// Select returns the records to display. With showAll every record is
// returned; otherwise only records whose 0-based position is in cited.
func Select(records []Record, cited Set, showAll bool) []Record {
	if showAll {
		return records
	}
	out := make([]Record, 0, cited.Len())
	for i, r := range records {
		if cited.Has(i) {
			out = append(out, r)
		}
	}
	return out
}
