// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/citelink/internal/citation"
	"github.com/jeranaias/citelink/internal/util"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role is who a message comes from.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

func (r Role) String() string {
	return string(r)
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is one entry in a conversation: a prompt, an answer with its
// source list, or a notice.
type Message struct {
	// ID is used verbatim in DOM attributes and card ids.
	ID      string    `json:"id"`
	Role    Role      `json:"role"`
	Created time.Time `json:"created"`

	// Content is the final text. It is empty while the answer streams.
	Content string `json:"content"`

	// Citations is the answer's source list, numbered from 1.
	Citations []citation.Record `json:"citations,omitempty"`

	// Streaming is true until Finish is called.
	Streaming bool `json:"-"`

	// PERFORMANCE: strings.Builder avoids quadratic allocations during streaming
	pending strings.Builder

	Chunks  int           `json:"chunks,omitempty"`
	Elapsed time.Duration `json:"elapsed_ns,omitempty"`
}

func newMessage(role Role, content string) *Message {
	return &Message{
		ID:      newID(),
		Role:    role,
		Created: time.Now(),
		Content: content,
	}
}

// NewPrompt creates the user's question.
func NewPrompt(content string) *Message {
	return newMessage(RoleUser, content)
}

// NewAnswer creates a streaming assistant answer citing records.
func NewAnswer(records []citation.Record) *Message {
	msg := newMessage(RoleAssistant, "")
	msg.Citations = records
	msg.Streaming = true
	return msg
}

// NewNotice creates a system line such as "Replay stopped".
func NewNotice(content string) *Message {
	return newMessage(RoleSystem, content)
}

// Append adds a streamed chunk. Chunks arriving after Finish are dropped.
func (m *Message) Append(chunk string) {
	if !m.Streaming {
		return
	}
	m.pending.WriteString(chunk)
	m.Chunks++
}

// Finish ends streaming, moving the received text into Content.
func (m *Message) Finish(stats Stats) {
	if !m.Streaming {
		return
	}
	m.Content = m.pending.String()
	m.pending.Reset()
	m.Streaming = false
	m.Elapsed = stats.Elapsed
}

// Text returns the text received so far, or the final content.
func (m *Message) Text() string {
	if m.Streaming {
		return m.pending.String()
	}
	return m.Content
}

// Excerpt returns at most n runes of the text.
func (m *Message) Excerpt(n int) string {
	return util.TruncateRunes(m.Text(), n)
}

// Empty reports whether no text has arrived.
func (m *Message) Empty() bool {
	return m.Content == "" && m.pending.Len() == 0
}

// Cites reports whether the message has a source list.
func (m *Message) Cites() bool {
	return len(m.Citations) > 0
}

// MarkedNumbers returns the distinct in-range citation numbers written in
// the text, in order of first appearance.
func (m *Message) MarkedNumbers() []int {
	var out []int
	seen := make(map[int]bool)
	for _, n := range citation.MarkerNumbers(m.Text()) {
		if n < 1 || n > len(m.Citations) || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// StatsLine formats replay timing, e.g. "2.5s | 128 chunks | 51.2 chunks/s".
// Empty for unfinished or untimed messages.
func (m *Message) StatsLine() string {
	if m.Role != RoleAssistant || m.Streaming || m.Elapsed <= 0 {
		return ""
	}
	rate := float64(m.Chunks) / m.Elapsed.Seconds()
	return fmt.Sprintf("%s | %d chunks | %.1f chunks/s", formatDuration(m.Elapsed), m.Chunks, rate)
}

// =============================================================================
// STATS
// =============================================================================

// Stats times one streamed answer.
type Stats struct {
	Started time.Time
	Elapsed time.Duration
}

// StartStats begins timing at now.
func StartStats(now time.Time) Stats {
	return Stats{Started: now}
}

// Stop returns s with Elapsed measured up to now.
func (s Stats) Stop(now time.Time) Stats {
	if !s.Started.IsZero() {
		s.Elapsed = now.Sub(s.Started)
	}
	return s
}

// =============================================================================
// HELPERS
// =============================================================================

// newID returns an id made of [a-z0-9-] only.
func newID() string {
	return "msg-" + uuid.NewString()
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
