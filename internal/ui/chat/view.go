// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/jeranaias/citelink/internal/model"
	"github.com/jeranaias/citelink/internal/render"
	"github.com/jeranaias/citelink/internal/ui/components"
	"github.com/jeranaias/citelink/internal/ui/styles"
)

// =============================================================================
// MAIN VIEW
// =============================================================================

// renderChat stacks the header, the conversation, the status bar and the
// optional help.
func (m *Model) renderChat() string {
	m.status.Spinner = m.spinner.View()

	parts := []string{
		m.header.View(),
		m.viewport.View(),
		m.status.View(),
	}
	if m.showHelp {
		parts = append(parts, m.help.View(m.keys))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// =============================================================================
// LAYOUT
// =============================================================================

// relayout renders every message with its citations panel into the
// viewport and records where each card landed. Cards are mirrored into the
// document so the card ids the trackers scroll to exist there too.
func (m *Model) relayout() {
	m.dirty = false

	if m.conversation.IsEmpty() {
		m.viewport.SetContent(m.renderEmptyState(), nil)
		m.collectLinks()
		return
	}

	var (
		blocks  []string
		anchors = make(map[string]components.LineSpan)
		line    int
	)
	for _, msg := range m.conversation.Messages() {
		block := m.renderMessage(msg, line, anchors)
		blocks = append(blocks, block)
		// One blank separator line between messages.
		line += heightOf(block) + 1
	}

	m.viewport.SetContent(strings.Join(blocks, "\n\n"), anchors)
	m.collectLinks()
}

// renderMessage renders one message starting at line and adds its card
// anchors.
func (m *Model) renderMessage(msg *model.Message, line int, anchors map[string]components.LineSpan) string {
	bubble := components.NewMessageBubble(msg, m.theme)
	bubble.Width = m.theme.ContentWidth()

	v := m.views[msg.ID]
	if msg.Role != model.RoleAssistant || v == nil {
		return bubble.View()
	}

	bubble.Body = m.body(v)
	block := bubble.View()

	if _, err := components.MirrorCards(m.doc, v.tracker); err != nil {
		m.logger.Debug("Citation mirror skipped", zap.String("message_id", msg.ID), zap.Error(err))
	}

	pv := m.panel.Render(v.tracker)
	if pv.Content == "" {
		return block
	}
	offset := line + heightOf(block)
	for id, span := range pv.Cards {
		anchors[id] = span.Shift(offset)
	}
	return block + "\n" + pv.Content
}

// body returns the terminal rendering of an assistant message, cached per
// width and style.
func (m *Model) body(v *messageView) string {
	k := bodyKey{width: m.wrapWidth(), style: m.theme.GlamourStyle()}
	if v.body != "" && v.bodyKey == k {
		return v.body
	}
	if v.rendered.Markdown == "" {
		return ""
	}
	out, err := render.Terminal(v.rendered.Markdown, k.width, k.style)
	if err != nil {
		m.logger.Debug("Terminal render failed", zap.Error(err))
		out = render.DisplayCitations(v.rendered.Markdown)
	}
	v.body = out
	v.bodyKey = k
	return out
}

// wrapWidth is the markdown wrap width: the configured word wrap, bounded
// by the space inside a bubble.
func (m *Model) wrapWidth() int {
	w := m.theme.ContentWidth() - 4
	if ww := m.cfg.UI.WordWrap; ww > 0 && ww < w {
		w = ww
	}
	return maxInt(20, w)
}

// renderEmptyState is shown before the first replay.
func (m *Model) renderEmptyState() string {
	title := m.theme.HeaderTitle.Render("citelink")
	hint := lipgloss.NewStyle().Foreground(styles.TextMuted)

	lines := []string{title, ""}
	if m.transcript != nil {
		lines = append(lines, hint.Render("Press r to replay the transcript."))
	} else {
		lines = append(lines, hint.Render("No transcript loaded. Start with --transcript FILE."))
	}
	lines = append(lines, hint.Render("Press ? for keys."))

	return lipgloss.NewStyle().
		Width(maxInt(20, m.width)).
		Align(lipgloss.Center).
		PaddingTop(2).
		Render(strings.Join(lines, "\n"))
}

// =============================================================================
// HELPERS
// =============================================================================

func heightOf(s string) int {
	if s == "" {
		return 0
	}
	return lipgloss.Height(s)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
