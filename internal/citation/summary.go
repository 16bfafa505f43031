// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package citation

import (
	"fmt"
	"regexp"

	"golang.org/x/text/unicode/norm"
)

// Summary returns the citations panel header text.
//
//	Summary(3, 5) -> "3 cited (of 5)"
//	Summary(5, 5) -> "5 sources"
//	Summary(1, 1) -> "1 source"
func Summary(cited, total int) string {
	if cited != total {
		return fmt.Sprintf("%d cited (of %d)", cited, total)
	}
	if total == 1 {
		return "1 source"
	}
	return fmt.Sprintf("%d sources", total)
}

// escapedMarker matches a markdown-escaped marker such as \[12\].
var escapedMarker = regexp.MustCompile(`\\\[([0-9]+)\\\]`)

// Unescape is the normalization step that runs before Rewrite. Some models
// escape their markers as \[1\]; those become plain [1]. The result is in
// Unicode NFC. Other escapes are left alone.
func Unescape(s string) string {
	if escapedMarker.MatchString(s) {
		s = escapedMarker.ReplaceAllString(s, "[$1]")
	}
	if norm.NFC.IsNormalString(s) {
		return s
	}
	return norm.NFC.String(s)
}
