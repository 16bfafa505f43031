// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the styled components for the application.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// HEADER AND STATUS
	// ==========================================================================

	Header       lipgloss.Style
	HeaderTitle  lipgloss.Style
	StatusBar    lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style

	// ==========================================================================
	// MESSAGES
	// ==========================================================================

	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	SystemBubble    lipgloss.Style
	MessageMeta     lipgloss.Style

	// ==========================================================================
	// CITATIONS
	// ==========================================================================

	// CitationLink is an inline [n] link; CitationLinkFocused is the link the
	// keyboard cursor is on.
	CitationLink        lipgloss.Style
	CitationLinkFocused lipgloss.Style

	CitationPanel       lipgloss.Style
	CitationHeader      lipgloss.Style
	CitationToggle      lipgloss.Style
	CitationCard        lipgloss.Style
	CitationCardActive  lipgloss.Style
	CitationNumber      lipgloss.Style
	CitationTitle       lipgloss.Style
	CitationDomain      lipgloss.Style
	CitationSnippet     lipgloss.Style

	// ==========================================================================
	// SPINNER
	// ==========================================================================

	Spinner      lipgloss.Style
	ThinkingText lipgloss.Style
}

// Theme modes accepted by NewTheme.
const (
	ThemeAuto  = "auto"
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// NewTheme creates a theme for the given mode ("auto", "dark" or "light").
func NewTheme(mode string) *Theme {
	colorProfile := termenv.ColorProfile()

	var isDark bool
	switch strings.ToLower(mode) {
	case ThemeDark:
		isDark = true
	case ThemeLight:
		isDark = false
	default:
		isDark = termenv.HasDarkBackground()
	}
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{
		IsDark:       isDark,
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan).
		Background(SurfaceDim).
		Padding(0, 1)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Message bubbles
	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(UserBubbleBorder).
		Padding(0, 1).
		MarginLeft(4)

	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(AssistantBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(AssistantBubbleBorder).
		Padding(0, 1)

	t.SystemBubble = lipgloss.NewStyle().
		Foreground(SystemBubbleFg).
		Italic(true).
		Padding(0, 1)

	t.MessageMeta = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	// Citations
	// ACCESSIBILITY: Underline and bold give cues beyond color.
	t.CitationLink = lipgloss.NewStyle().
		Foreground(LinkColor).
		Underline(true)

	t.CitationLinkFocused = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(FocusRing).
		Bold(true)

	t.CitationPanel = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay).
		PaddingLeft(1)

	t.CitationHeader = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Bold(true)

	t.CitationToggle = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.CitationCard = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(Overlay).
		PaddingLeft(1)

	t.CitationCardActive = t.CitationCard.Copy().
		BorderStyle(lipgloss.ThickBorder()).
		BorderForeground(Amber).
		Background(AmberDeep)

	t.CitationNumber = lipgloss.NewStyle().
		Foreground(Purple).
		Bold(true)

	t.CitationTitle = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.CitationDomain = lipgloss.NewStyle().
		Foreground(Emerald)

	t.CitationSnippet = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.Spinner = lipgloss.NewStyle().
		Foreground(Purple)

	t.ThinkingText = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// ContentWidth returns the usable width inside message bubbles.
func (t *Theme) ContentWidth() int {
	w := t.Width - 8
	if w < 20 {
		return 20
	}
	return w
}

// GlamourStyle returns the render style name matching the theme.
func (t *Theme) GlamourStyle() string {
	if t.ColorProfile == termenv.Ascii {
		return "notty"
	}
	if t.IsDark {
		return "dark"
	}
	return "light"
}
