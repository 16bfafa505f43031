// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package citation

import (
	"regexp"
	"strconv"
	"strings"
)

// =============================================================================
// MARKER GRAMMAR
// =============================================================================

// markerToken is the single grammar for a citation marker: "[" ASCII digits "]".
// The rewriter and the raw-text fallback scanner are both built from it so
// the two can never disagree about what counts as a marker.
const markerToken = `\[[0-9]+\]`

var (
	// markerRun matches a maximal run of adjacent markers.
	markerRun = regexp.MustCompile(`(?:` + markerToken + `)+`)

	// markerNumber captures the digits of a single marker.
	markerNumber = regexp.MustCompile(`\[([0-9]+)\]`)
)

// convertedSuffix follows a marker that an earlier pass already rewrote.
const convertedSuffix = "(" + HrefPrefix

// =============================================================================
// REWRITE
// =============================================================================

// Rewrite converts raw citation markers into citation links.
//
//	"Text [7] here"    -> "Text [7](#cite-7) here"
//	"[1][2][3]"        -> "[1,2,3](#cite-group-1-2-3)"
//	"[1](#cite-1) [2]" -> "[1](#cite-1) [2](#cite-2)"
//
// A run whose last marker is already followed by "(#cite-" gives that marker
// up and the rest of the run is rewritten on its own, so Rewrite(Rewrite(s))
// == Rewrite(s) for every s. That makes it safe to call on the cumulative
// text of a stream after every chunk. Malformed input ("[1", "[abc]") is left
// as is. When s contains no marker the input string is returned unchanged.
func Rewrite(s string) string {
	if strings.IndexByte(s, '[') < 0 {
		return s
	}
	runs := markerRun.FindAllStringIndex(s, -1)
	if len(runs) == 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + len(runs)*16)
	last := 0
	changed := false

	for _, run := range runs {
		start, end := run[0], run[1]
		if strings.HasPrefix(s[end:], convertedSuffix) {
			// The final marker is the label of an existing link.
			end = strings.LastIndexByte(s[start:end], '[') + start
			if end == start {
				continue
			}
		}
		b.WriteString(s[last:start])
		writeLink(&b, s[start:end])
		last = end
		changed = true
	}

	if !changed {
		return s
	}
	b.WriteString(s[last:])
	return b.String()
}

// writeLink writes the link for a run of markers such as "[1][2]".
// Digits are copied verbatim, so leading zeros and very long numbers survive.
func writeLink(b *strings.Builder, run string) {
	digits := splitRun(run)
	if len(digits) == 1 {
		b.WriteByte('[')
		b.WriteString(digits[0])
		b.WriteString("](")
		b.WriteString(HrefPrefix)
		b.WriteString(digits[0])
		b.WriteByte(')')
		return
	}
	b.WriteByte('[')
	b.WriteString(strings.Join(digits, ","))
	b.WriteString("](")
	b.WriteString(GroupHrefPrefix)
	b.WriteString(strings.Join(digits, "-"))
	b.WriteByte(')')
}

// splitRun returns the digit strings of each marker in a run.
func splitRun(run string) []string {
	// run is "[d+]" repeated, so splitting on "][" after trimming the outer
	// brackets yields the digit strings directly.
	return strings.Split(run[1:len(run)-1], "][")
}

// =============================================================================
// RAW MARKER SCANNING
// =============================================================================

// MarkerNumbers returns the numbers of every marker in s, in order of
// appearance, with repeats. Markers too large for an int are skipped.
func MarkerNumbers(s string) []int {
	if strings.IndexByte(s, '[') < 0 {
		return nil
	}
	matches := markerNumber.FindAllStringSubmatch(s, -1)
	numbers := make([]int, 0, len(matches))
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		numbers = append(numbers, n)
	}
	return numbers
}
