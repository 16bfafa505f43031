// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/citelink/internal/ui/styles"
	"github.com/jeranaias/citelink/internal/util"
)

// Header is the title bar.
type Header struct {
	Title    string
	Subtitle string // Prompt or transcript name
	Width    int
	theme    *styles.Theme
}

// NewHeader creates a header with the default title.
func NewHeader(theme *styles.Theme) *Header {
	return &Header{
		Title: "citelink",
		Width: 80,
		theme: theme,
	}
}

// SetWidth sets the header width.
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// View renders the header on one line, truncating the subtitle to fit.
func (h *Header) View() string {
	title := h.theme.HeaderTitle.Render(h.Title)
	line := title
	if h.Subtitle != "" {
		room := h.Width - lipgloss.Width(title) - 5
		if room > 3 {
			sub := strings.ReplaceAll(h.Subtitle, "\n", " ")
			line += lipgloss.NewStyle().Foreground(styles.TextSecondary).Render(" | " + util.TruncateWidth(sub, room))
		}
	}
	return h.theme.Header.Width(h.Width).Render(line)
}
