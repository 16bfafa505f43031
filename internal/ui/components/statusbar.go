// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/citelink/internal/ui/styles"
)

// =============================================================================
// STATUS TYPES
// =============================================================================

// Status is the application state shown in the status bar.
type Status int

const (
	StatusReady Status = iota
	StatusStreaming
	StatusError
)

// String returns the status label.
func (s Status) String() string {
	switch s {
	case StatusStreaming:
		return "Streaming"
	case StatusError:
		return "Error"
	default:
		return "Ready"
	}
}

// Icon returns the ASCII shape paired with the status color.
func (s Status) Icon() string {
	switch s {
	case StatusStreaming:
		return styles.StatusIndicators.Active
	case StatusError:
		return styles.StatusIndicators.Error
	default:
		return styles.StatusIndicators.Success
	}
}

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// StatusBar is the bottom bar: status, focused citation link and key hints.
type StatusBar struct {
	Status Status
	Width  int

	// Focus is the label of the keyboard-focused citation link, such as
	// "[2]" or "[1,3]". Empty when no link is focused.
	Focus string

	// Position is the focused link's place among all links, e.g. "2/7".
	Position string

	// Message overrides the shortcuts with a transient note or error.
	Message string

	// Spinner is shown while streaming.
	Spinner string

	theme *styles.Theme
}

// NewStatusBar creates a new StatusBar.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Status: StatusReady,
		Width:  80,
		theme:  theme,
	}
}

// SetWidth updates the status bar width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// View renders the status bar on one line.
func (s *StatusBar) View() string {
	left := s.renderStatus()
	if s.Status == StatusStreaming && s.Spinner != "" {
		left = s.Spinner
	}
	if s.Focus != "" {
		focus := s.theme.CitationLinkFocused.Render(s.Focus)
		if s.Position != "" {
			focus += s.theme.ShortcutDesc.Render(" " + s.Position)
		}
		left += "  " + focus
	}

	right := s.renderShortcuts()
	if s.Message != "" {
		right = s.theme.ShortcutDesc.Render(s.Message)
	}

	gap := s.Width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		// Narrow: drop the right side.
		return s.theme.StatusBar.Width(s.Width).Render(left)
	}
	return s.theme.StatusBar.Width(s.Width).Render(left + strings.Repeat(" ", gap) + right)
}

func (s *StatusBar) renderStatus() string {
	var color lipgloss.AdaptiveColor
	switch s.Status {
	case StatusStreaming:
		color = styles.Purple
	case StatusError:
		color = styles.Rose
	default:
		color = styles.Emerald
	}
	return lipgloss.NewStyle().Foreground(color).Bold(true).Render(s.Status.Icon() + " " + s.Status.String())
}

// renderShortcuts renders keyboard shortcut hints.
func (s *StatusBar) renderShortcuts() string {
	pair := func(key, desc string) string {
		return s.theme.ShortcutKey.Render(key) + s.theme.ShortcutDesc.Render(" "+desc)
	}
	return strings.Join([]string{
		pair("tab", "link"),
		pair("enter", "open"),
		pair("c", "sources"),
		pair("r", "replay"),
		pair("q", "quit"),
	}, "  ")
}
