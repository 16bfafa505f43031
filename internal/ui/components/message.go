// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/citelink/internal/model"
	"github.com/jeranaias/citelink/internal/ui/styles"
)

// =============================================================================
// MESSAGE BUBBLE COMPONENT
// =============================================================================

// MessageBubble renders one message. Body is the already formatted content
// for assistant messages; other roles render their raw text.
type MessageBubble struct {
	Message       *model.Message
	Body          string
	Width         int
	ShowTimestamp bool
	ShowStats     bool
	theme         *styles.Theme
}

// NewMessageBubble creates a new MessageBubble.
func NewMessageBubble(msg *model.Message, theme *styles.Theme) *MessageBubble {
	return &MessageBubble{
		Message:       msg,
		Width:         80,
		ShowTimestamp: true,
		ShowStats:     true,
		theme:         theme,
	}
}

// View renders the message bubble.
func (b *MessageBubble) View() string {
	switch b.Message.Role {
	case model.RoleUser:
		return b.renderUserBubble()
	case model.RoleAssistant:
		return b.renderAssistantBubble()
	default:
		return b.renderSystemBubble()
	}
}

func (b *MessageBubble) renderUserBubble() string {
	content := b.Message.Text()
	if content == "" {
		content = "..."
	}
	bubble := b.theme.UserBubble.
		Width(maxInt0(20, b.Width-8)).
		Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, b.header("you"), bubble)
}

func (b *MessageBubble) renderAssistantBubble() string {
	body := strings.TrimRight(b.Body, "\n")
	if b.Message.Streaming {
		body += b.renderStreamingCursor()
	}
	if strings.TrimSpace(body) == "" {
		body = "..."
	}

	bubble := b.theme.AssistantBubble.
		Width(maxInt0(20, b.Width-2)).
		Render(body)

	result := lipgloss.JoinVertical(lipgloss.Left, b.header("assistant"), bubble)
	if b.ShowStats && !b.Message.Streaming {
		if stats := b.Message.StatsLine(); stats != "" {
			result = lipgloss.JoinVertical(lipgloss.Left, result, b.theme.MessageMeta.PaddingLeft(2).Render(stats))
		}
	}
	return result
}

func (b *MessageBubble) renderSystemBubble() string {
	return b.theme.SystemBubble.
		Width(b.Width).
		Render(styles.StatusIndicators.Info + " " + b.Message.Text())
}

// header renders the role label with an optional timestamp.
func (b *MessageBubble) header(role string) string {
	parts := []string{b.theme.MessageMeta.Render(role)}
	if b.ShowTimestamp && !b.Message.Created.IsZero() {
		parts = append(parts, b.theme.MessageMeta.Render(formatTimestamp(b.Message.Created, time.Now())))
	}
	return strings.Join(parts, " ")
}

func (b *MessageBubble) renderStreamingCursor() string {
	return lipgloss.NewStyle().
		Foreground(styles.Purple).
		Blink(true).
		Render("_")
}

// formatTimestamp shows "15:04" for today and "Jan 2, 15:04" otherwise.
func formatTimestamp(ts, now time.Time) string {
	if ts.Year() == now.Year() && ts.YearDay() == now.YearDay() {
		return ts.Format("15:04")
	}
	return ts.Format("Jan 2, 15:04")
}
