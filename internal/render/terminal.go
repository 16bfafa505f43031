// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// Terminal styles accepted by Terminal. Any glamour standard style name
// also works.
const (
	StyleAuto  = "auto"
	StyleDark  = "dark"
	StyleLight = "light"
	StyleNoTTY = "notty"
)

type rendererKey struct {
	style string
	width int
}

var (
	renderersMu sync.Mutex
	renderers   = map[rendererKey]*glamour.TermRenderer{}
)

func termRenderer(style string, width int) (*glamour.TermRenderer, error) {
	if style == "" {
		style = StyleAuto
	}
	key := rendererKey{style: style, width: width}

	renderersMu.Lock()
	defer renderersMu.Unlock()
	if r, ok := renderers[key]; ok {
		return r, nil
	}

	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == StyleAuto {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("create %s renderer: %w", style, err)
	}
	renderers[key] = r
	return r, nil
}

// citationLink matches a rewritten citation link: [1,2](#cite-group-1-2).
var citationLink = regexp.MustCompile(`\[([0-9]+(?:,[0-9]+)*)\]\(#cite-(?:group-)?[0-9]+(?:-[0-9]+)*\)`)

// DisplayCitations replaces citation links with their bracketed label so
// terminal output shows [1,2] rather than a link and its target.
func DisplayCitations(markdown string) string {
	if !strings.Contains(markdown, "(#cite-") {
		return markdown
	}
	return citationLink.ReplaceAllString(markdown, `\[$1\]`)
}

// Terminal renders markdown for display at the given width.
func Terminal(markdown string, width int, style string) (string, error) {
	if width <= 0 {
		width = 80
	}
	r, err := termRenderer(style, width)
	if err != nil {
		return "", err
	}
	out, err := r.Render(DisplayCitations(markdown))
	if err != nil {
		return "", fmt.Errorf("render terminal: %w", err)
	}
	return out, nil
}
