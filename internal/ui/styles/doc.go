// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the color palette and Lip Gloss styles for the
citelink TUI.

All colors are lipgloss.AdaptiveColor values, so the same palette works on
light and dark terminals. NewTheme detects the background through termenv
unless the configured theme forces one.

# Citation styles

	CitationLink        - inline [n] links in assistant text
	CitationLinkFocused - the link under the keyboard cursor
	CitationCard        - one source card in the citations panel
	CitationCardActive  - the card a click just activated

Status text pairs color with an ASCII shape from StatusIndicators.
*/
package styles
