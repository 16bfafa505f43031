// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package citation

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// =============================================================================
// RECORD TYPE
// =============================================================================

// Record is one external source associated with a message.
//
// Index is the 1-based position in the message's citation list. It is the
// number that appears in bracket markers and link targets. Callers assign it;
// nothing in this package renumbers a list.
type Record struct {
	URL   string `json:"url" toml:"url"`
	Title string `json:"title" toml:"title"`
	Index int    `json:"index" toml:"index"`

	// Display-only metadata, passed through untouched.
	SiteName      string     `json:"site_name,omitempty" toml:"site_name"`
	Snippet       string     `json:"snippet,omitempty" toml:"snippet"`
	Author        string     `json:"author,omitempty" toml:"author"`
	PublishedDate *time.Time `json:"published_date,omitempty" toml:"published_date"`
	Image         string     `json:"image,omitempty" toml:"image"`
}

// Domain returns the record's host without a leading "www.".
// Returns "" when the URL cannot be parsed or has no host.
func (r Record) Domain() string {
	parsed, err := url.Parse(strings.TrimSpace(r.URL))
	if err != nil || parsed.Host == "" {
		return ""
	}
	host := strings.ToLower(parsed.Hostname())
	return strings.TrimPrefix(host, "www.")
}

// DisplayTitle returns the best available label for the record: the title,
// then the site name, then the domain, then the raw URL.
func (r Record) DisplayTitle() string {
	if t := strings.TrimSpace(r.Title); t != "" {
		return t
	}
	if s := strings.TrimSpace(r.SiteName); s != "" {
		return s
	}
	if d := r.Domain(); d != "" {
		return d
	}
	return r.URL
}

// =============================================================================
// LIST VALIDATION
// =============================================================================

// ListError describes a citation list whose indices are not dense, 1-based
// and unique.
type ListError struct {
	Position int // 0-based position in the list
	Index    int // offending Index value
	Want     int // expected Index value
}

func (e *ListError) Error() string {
	return fmt.Sprintf("citation at position %d has index %d, want %d", e.Position, e.Index, e.Want)
}

// ValidateList checks that records[i].Index == i+1 for every record and that
// every record has a URL. The tracker does not require a valid list; this is
// for callers that load lists from files.
func ValidateList(records []Record) error {
	for i, r := range records {
		if r.Index != i+1 {
			return &ListError{Position: i, Index: r.Index, Want: i + 1}
		}
		if strings.TrimSpace(r.URL) == "" {
			return fmt.Errorf("citation %d: url is required", r.Index)
		}
	}
	return nil
}
