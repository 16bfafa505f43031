// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package replay

import (
	"context"
	"errors"
	"strings"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ChunkMsg carries one streamed chunk for a message.
type ChunkMsg struct {
	MessageID string
	Chunk     string
}

// DoneMsg ends a replay. Err is nil on completion and context.Canceled when
// the replay was stopped.
type DoneMsg struct {
	MessageID string
	Chunks    int
	Err       error
}

// Sender delivers messages to a running Bubble Tea program.
type Sender interface {
	Send(msg tea.Msg)
}

// Player emits transcript chunks at a steady rate.
type Player struct {
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewPlayer creates a player emitting tokensPerSec chunks per second.
func NewPlayer(tokensPerSec float64, logger *zap.Logger) *Player {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tokensPerSec <= 0 {
		tokensPerSec = 40
	}
	return &Player{
		limiter: rate.NewLimiter(rate.Limit(tokensPerSec), 1),
		logger:  logger,
	}
}

// Play calls emit for every chunk, waiting on the rate limiter between
// chunks. It returns the number of chunks emitted and ctx.Err() if ctx ends
// first.
func (p *Player) Play(ctx context.Context, chunks []string, emit func(string)) (int, error) {
	for i, chunk := range chunks {
		if err := p.limiter.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return i, ctxErr
			}
			return i, err
		}
		emit(chunk)
	}
	return len(chunks), nil
}

// Start returns a command that replays text into the program as ChunkMsg
// values followed by one DoneMsg.
func (p *Player) Start(ctx context.Context, program Sender, messageID, text string) tea.Cmd {
	chunks := Chunks(text)
	return func() tea.Msg {
		n, err := p.Play(ctx, chunks, func(chunk string) {
			program.Send(ChunkMsg{MessageID: messageID, Chunk: chunk})
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			p.logger.Warn("Replay stopped", zap.String("message_id", messageID), zap.Error(err))
		}
		return DoneMsg{MessageID: messageID, Chunks: n, Err: err}
	}
}

// Chunks splits text the way a model tokenizer roughly would. Words keep
// their trailing whitespace, and every bracketed marker becomes its own
// chunk so "[1][2]." streams as "[1]", "[2]", ".".
func Chunks(text string) []string {
	var (
		chunks []string
		cur    strings.Builder
	)
	flush := func() {
		if cur.Len() > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
		}
	}
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			cur.WriteRune(r)
			if i+1 == len(runes) || !unicode.IsSpace(runes[i+1]) {
				flush()
			}
		case r == '[':
			flush()
			cur.WriteRune(r)
		case r == ']':
			cur.WriteRune(r)
			if i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
				continue
			}
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return chunks
}
