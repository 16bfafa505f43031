// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render turns message markdown into HTML for the message DOM and
// into styled text for the terminal.
package render

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/jeranaias/citelink/internal/citation"
	"github.com/jeranaias/citelink/internal/metrics"
)

// The goldmark instance is configured once and shared. Conversion keeps its
// state per call. Raw HTML in messages is dropped (goldmark's default).
var (
	markdownInstance goldmark.Markdown
	markdownOnce     sync.Once
)

func getMarkdown() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdownInstance = goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		)
	})
	return markdownInstance
}

// HTML converts markdown to an HTML fragment.
func HTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := getMarkdown().Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return buf.String(), nil
}

// Rendered is the output of Pipeline.
type Rendered struct {
	// Markdown is the normalized text with citation markers rewritten.
	Markdown string
	// HTML is Markdown converted for the message DOM.
	HTML string
}

// Pipeline normalizes raw message text, rewrites citation markers into
// links and renders the result to HTML. It is safe to run on every
// cumulative prefix of a streaming message.
func Pipeline(raw string) (Rendered, error) {
	normalized := citation.Unescape(raw)
	md := citation.Rewrite(normalized)
	if md != normalized {
		metrics.Rewrites.Inc()
	}
	out, err := HTML(md)
	if err != nil {
		return Rendered{}, err
	}
	return Rendered{Markdown: md, HTML: out}, nil
}
