// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package citation

import (
	"strconv"
	"strings"
)

// Link target prefixes. Every citation href starts with HrefPrefix.
const (
	HrefPrefix      = "#cite-"
	GroupHrefPrefix = "#cite-group-"
)

// Href returns the link target for one or more citation numbers.
// A single number yields "#cite-n"; several yield "#cite-group-n1-n2-...".
func Href(numbers ...int) string {
	if len(numbers) == 1 {
		return HrefPrefix + strconv.Itoa(numbers[0])
	}
	var b strings.Builder
	b.WriteString(GroupHrefPrefix)
	for i, n := range numbers {
		if i > 0 {
			b.WriteByte('-')
		}
		b.WriteString(strconv.Itoa(n))
	}
	return b.String()
}

// Label returns the visible link text for citation numbers: "n1,n2,...".
func Label(numbers ...int) string {
	parts := make([]string, len(numbers))
	for i, n := range numbers {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

// ParseHref extracts the citation numbers from a link target.
// Both "#cite-7" and "#cite-group-1-2-3" are accepted. Any other shape,
// including empty or non-numeric segments, reports false.
func ParseHref(href string) ([]int, bool) {
	var body string
	switch {
	case strings.HasPrefix(href, GroupHrefPrefix):
		body = href[len(GroupHrefPrefix):]
	case strings.HasPrefix(href, HrefPrefix):
		body = href[len(HrefPrefix):]
		if !isDigits(body) {
			return nil, false
		}
	default:
		return nil, false
	}

	parts := strings.Split(body, "-")
	numbers := make([]int, 0, len(parts))
	for _, p := range parts {
		if !isDigits(p) {
			return nil, false
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, false
		}
		numbers = append(numbers, n)
	}
	return numbers, true
}

// CardID returns the element id of the citation card for number n in the
// given message: "cite-{messageID}-{n}".
func CardID(messageID string, n int) string {
	return "cite-" + messageID + "-" + strconv.Itoa(n)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
