// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/citelink/internal/citation"
)

// DefaultLimit bounds the history. Every answer holds a document container
// and a tracker, so old messages are released once it is exceeded.
const DefaultLimit = 200

// Conversation is the ordered list of prompts and answers shown in the chat.
type Conversation struct {
	ID      string
	Started time.Time

	messages []*Message
	byID     map[string]*Message
	limit    int
	onPrune  func(*Message)
}

// NewConversation creates an empty conversation keeping at most limit
// messages. A limit of zero or less uses DefaultLimit.
func NewConversation(limit int) *Conversation {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Conversation{
		ID:      "conv-" + uuid.NewString(),
		Started: time.Now(),
		byID:    make(map[string]*Message),
		limit:   limit,
	}
}

// OnPrune sets the callback run for every message dropped from history.
func (c *Conversation) OnPrune(fn func(*Message)) {
	c.onPrune = fn
}

// Add appends msg, pruning the oldest messages past the limit.
func (c *Conversation) Add(msg *Message) {
	c.messages = append(c.messages, msg)
	c.byID[msg.ID] = msg
	c.prune()
}

// AddPrompt appends a user prompt.
func (c *Conversation) AddPrompt(text string) *Message {
	msg := NewPrompt(text)
	c.Add(msg)
	return msg
}

// AddAnswer appends a streaming answer citing records.
func (c *Conversation) AddAnswer(records []citation.Record) *Message {
	msg := NewAnswer(records)
	c.Add(msg)
	return msg
}

// Messages returns the history, oldest first. The slice must not be modified.
func (c *Conversation) Messages() []*Message {
	return c.messages
}

// Message returns the message with id, or nil.
func (c *Conversation) Message(id string) *Message {
	return c.byID[id]
}

// LastAnswer returns the newest assistant message, or nil.
func (c *Conversation) LastAnswer() *Message {
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Role == RoleAssistant {
			return c.messages[i]
		}
	}
	return nil
}

func (c *Conversation) Len() int { return len(c.messages) }

func (c *Conversation) IsEmpty() bool { return len(c.messages) == 0 }

func (c *Conversation) prune() {
	excess := len(c.messages) - c.limit
	if excess <= 0 {
		return
	}
	for _, msg := range c.messages[:excess] {
		delete(c.byID, msg.ID)
		if c.onPrune != nil {
			c.onPrune(msg)
		}
	}
	kept := make([]*Message, c.limit)
	copy(kept, c.messages[excess:])
	c.messages = kept
}
