// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/citelink/internal/ui/styles"
)

// =============================================================================
// CHAT VIEWPORT COMPONENT - Scrollable chat area with anchors
// =============================================================================

// ChatViewport is the scrollable conversation area. It knows where named
// anchors (citation cards) sit in its content and can bring them into view.
type ChatViewport struct {
	viewport   viewport.Model
	width      int
	height     int
	ready      bool
	autoScroll bool // Follow new content while at the bottom
	theme      *styles.Theme

	lines   int
	anchors map[string]LineSpan
}

// NewChatViewport creates a new ChatViewport.
func NewChatViewport(theme *styles.Theme) *ChatViewport {
	vp := viewport.New(80, 19)
	vp.Style = lipgloss.NewStyle()

	return &ChatViewport{
		viewport:   vp,
		width:      80,
		height:     20,
		autoScroll: true,
		theme:      theme,
		anchors:    make(map[string]LineSpan),
	}
}

// SetSize updates the viewport dimensions. One line is reserved for the
// scroll indicator.
func (cv *ChatViewport) SetSize(width, height int) {
	cv.width = width
	cv.height = height
	cv.viewport.Width = width
	cv.viewport.Height = maxInt0(1, height-1)
	cv.ready = true
	cv.clamp()
}

// SetContent replaces the rendered conversation and its anchor table.
// Anchor spans are absolute line numbers in content.
func (cv *ChatViewport) SetContent(content string, anchors map[string]LineSpan) {
	cv.viewport.SetContent(content)
	cv.lines = strings.Count(content, "\n") + 1
	if anchors == nil {
		anchors = make(map[string]LineSpan)
	}
	cv.anchors = anchors

	if cv.autoScroll {
		cv.viewport.GotoBottom()
	} else {
		cv.clamp()
	}
}

func (cv *ChatViewport) maxOffset() int {
	return maxInt0(0, cv.lines-cv.viewport.Height)
}

func (cv *ChatViewport) clamp() {
	if cv.viewport.YOffset > cv.maxOffset() {
		cv.viewport.SetYOffset(cv.maxOffset())
	}
}

// =============================================================================
// ANCHORS
// =============================================================================

// Anchor returns the span of a named anchor.
func (cv *ChatViewport) Anchor(id string) (LineSpan, bool) {
	span, ok := cv.anchors[id]
	return span, ok
}

// FullyVisible reports whether every line of the anchor is on screen.
// Unknown anchors are never visible.
func (cv *ChatViewport) FullyVisible(id string) bool {
	span, ok := cv.anchors[id]
	if !ok {
		return false
	}
	top := cv.viewport.YOffset
	bottom := top + cv.viewport.Height
	return span.Start >= top && span.End <= bottom
}

// ScrollIntoView moves the view the least distance that shows the anchor,
// preferring its first line when it is taller than the view.
func (cv *ChatViewport) ScrollIntoView(id string) {
	span, ok := cv.anchors[id]
	if !ok {
		return
	}
	offset := cv.viewport.YOffset
	switch {
	case span.Start < offset || span.End-span.Start > cv.viewport.Height:
		offset = span.Start
	case span.End > offset+cv.viewport.Height:
		offset = span.End - cv.viewport.Height
	}
	cv.viewport.SetYOffset(offset)
	cv.autoScroll = cv.viewport.AtBottom()
}

// =============================================================================
// SCROLLING
// =============================================================================

// YOffset returns the first visible line.
func (cv *ChatViewport) YOffset() int {
	return cv.viewport.YOffset
}

// ScrollToBottom scrolls to the bottom and resumes following new content.
func (cv *ChatViewport) ScrollToBottom() {
	cv.viewport.GotoBottom()
	cv.autoScroll = true
}

// ScrollToTop scrolls to the top of the viewport.
func (cv *ChatViewport) ScrollToTop() {
	cv.viewport.GotoTop()
	cv.autoScroll = false
}

// ScrollUp scrolls up by the specified number of lines.
func (cv *ChatViewport) ScrollUp(lines int) {
	cv.autoScroll = false // User took control
	cv.viewport.SetYOffset(maxInt0(0, cv.viewport.YOffset-lines))
}

// ScrollDown scrolls down by the specified number of lines.
func (cv *ChatViewport) ScrollDown(lines int) {
	cv.viewport.SetYOffset(minInt(cv.maxOffset(), cv.viewport.YOffset+lines))
	if cv.viewport.AtBottom() {
		cv.autoScroll = true
	}
}

// AtTop returns true if the viewport is at the top.
func (cv *ChatViewport) AtTop() bool {
	return cv.viewport.AtTop()
}

// AtBottom returns true if the viewport is at the bottom.
func (cv *ChatViewport) AtBottom() bool {
	return cv.viewport.AtBottom()
}

// Following reports whether new content scrolls the view.
func (cv *ChatViewport) Following() bool {
	return cv.autoScroll
}

// Update handles scrolling keys and the mouse wheel.
func (cv *ChatViewport) Update(msg tea.Msg) (*ChatViewport, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			cv.ScrollUp(1)
			return cv, nil
		case "down", "j":
			cv.ScrollDown(1)
			return cv, nil
		case "pgup":
			cv.ScrollUp(cv.viewport.Height)
			return cv, nil
		case "pgdown", "pgdn":
			cv.ScrollDown(cv.viewport.Height)
			return cv, nil
		case "home", "g":
			cv.ScrollToTop()
			return cv, nil
		case "end", "G":
			cv.ScrollToBottom()
			return cv, nil
		}

	case tea.MouseMsg:
		switch msg.Type {
		case tea.MouseWheelUp:
			cv.ScrollUp(3)
			return cv, nil
		case tea.MouseWheelDown:
			cv.ScrollDown(3)
			return cv, nil
		}
	}
	return cv, nil
}

// View renders the viewport and its scroll indicator line.
func (cv *ChatViewport) View() string {
	if !cv.ready {
		return ""
	}
	return cv.viewport.View() + "\n" + cv.renderIndicator()
}

// renderIndicator renders the "more below" line, or a blank line at the
// bottom so the layout does not jump.
func (cv *ChatViewport) renderIndicator() string {
	style := lipgloss.NewStyle().
		Width(cv.width).
		Align(lipgloss.Center)
	if cv.AtBottom() {
		return style.Render("")
	}

	arrow := lipgloss.NewStyle().Foreground(styles.Cyan).Render("v")
	pos := lipgloss.NewStyle().
		Foreground(styles.Purple).
		Bold(true).
		Render(fmt.Sprintf(" [%d/%d] ", cv.viewport.YOffset+1, cv.maxOffset()+1))
	text := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true).
		Render("scroll down for more")

	return style.Render(arrow + pos + text + " " + arrow)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func maxInt0(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
