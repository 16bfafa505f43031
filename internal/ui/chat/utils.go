// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strconv"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/jeranaias/citelink/internal/citation"
)

// =============================================================================
// CLIPBOARD UTILITIES
// =============================================================================

// clipboardWrite is swapped out by tests.
var clipboardWrite = clipboard.WriteAll

// copyToClipboard copies the given text to the system clipboard.
func copyToClipboard(text string) error {
	return clipboardWrite(text)
}

// =============================================================================
// CITATION LABELS
// =============================================================================

// linkLabel renders the numbers of a citation link as "[2]" or "[1,3]".
func linkLabel(numbers []int) string {
	parts := make([]string, len(numbers))
	for i, n := range numbers {
		parts[i] = strconv.Itoa(n)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// recordURL returns the URL of citation n, or "" when n is out of range.
func recordURL(records []citation.Record, n int) string {
	if n < 1 || n > len(records) {
		return ""
	}
	return records[n-1].URL
}
