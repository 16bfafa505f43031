// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/citelink/internal/citation"
	"github.com/jeranaias/citelink/internal/config"
	"github.com/jeranaias/citelink/internal/dom"
	"github.com/jeranaias/citelink/internal/frame"
	"github.com/jeranaias/citelink/internal/replay"
	"github.com/jeranaias/citelink/internal/tracker"
)

// =============================================================================
// HELPERS
// =============================================================================

type recordingSender struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (r *recordingSender) Send(msg tea.Msg) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

type harness struct {
	t     *testing.T
	m     *Model
	clock *fakeClock
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	clock := newFakeClock()
	cfg := config.Default()
	cfg.UI.Theme = "dark"
	m := New(cfg, nil, WithClock(clock.Now), WithTranscript(replay.Sample()))
	t.Cleanup(m.shutdown)

	h := &harness{t: t, m: m, clock: clock}
	h.send(tea.WindowSizeMsg{Width: 100, Height: 60})
	return h
}

func (h *harness) send(msg tea.Msg) {
	h.t.Helper()
	h.m.Update(msg)
}

func (h *harness) key(k string) {
	h.t.Helper()
	switch k {
	case "tab":
		h.send(tea.KeyMsg{Type: tea.KeyTab})
	case "enter":
		h.send(tea.KeyMsg{Type: tea.KeyEnter})
	case "esc":
		h.send(tea.KeyMsg{Type: tea.KeyEsc})
	default:
		h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
	}
}

// frame delivers the next frame d after the previous one.
func (h *harness) frame(d time.Duration) {
	h.t.Helper()
	h.send(frame.FrameMsg{Time: h.clock.Advance(d)})
}

func (h *harness) assistantID() string {
	h.t.Helper()
	last := h.m.Conversation().LastAnswer()
	require.NotNil(h.t, last)
	return last.ID
}

// replayInstant replays the sample without a program and scans it.
func (h *harness) replayInstant() string {
	h.t.Helper()
	h.send(ReplayMsg{Transcript: replay.Sample()})
	id := h.assistantID()
	n := len(replay.Chunks(replay.Sample().Text))
	h.send(replay.DoneMsg{MessageID: id, Chunks: n})
	h.frame(16 * time.Millisecond)
	return id
}

// =============================================================================
// REPLAY TESTS
// =============================================================================

func TestModel_InitReplaysTranscript(t *testing.T) {
	h := newHarness(t)
	cmd := h.m.Init()
	require.NotNil(t, cmd)

	msg, ok := cmd().(ReplayMsg)
	require.True(t, ok)
	assert.Equal(t, replay.Sample().Prompt, msg.Transcript.Prompt)
}

func TestModel_ReplayScansCitations(t *testing.T) {
	h := newHarness(t)
	id := h.replayInstant()

	tr := h.m.Tracker(id)
	require.NotNil(t, tr)
	st := tr.State()
	assert.Equal(t, []int{0, 1, 2, 3, 4}, st.Cited.Sorted())
	assert.False(t, st.Expanded)
	assert.Equal(t, "5 cited (of 6)", tr.Header())
	assert.False(t, h.m.IsStreaming())

	container := h.m.Document().Container(id)
	require.NotNil(t, container)
	assert.NotEmpty(t, dom.QueryAnchors(container, citation.HrefPrefix))
	assert.Contains(t, h.m.View(), "Sources: 5 cited (of 6)")
}

func TestModel_StreamedChunksRescan(t *testing.T) {
	h := newHarness(t)
	rec := &recordingSender{}
	h.m.SetProgram(rec)

	h.send(ReplayMsg{Transcript: replay.Sample()})
	id := h.assistantID()
	require.True(t, h.m.IsStreaming())

	for _, c := range []string{"Goroutines ", "are ", "cheap ", "[2]", ". "} {
		h.send(replay.ChunkMsg{MessageID: id, Chunk: c})
	}
	// First frame flushes the buffer, the second runs the scan the new
	// content scheduled.
	h.frame(40 * time.Millisecond)
	h.frame(16 * time.Millisecond)
	assert.Equal(t, []int{1}, h.m.Tracker(id).State().Cited.Sorted())

	h.send(replay.ChunkMsg{MessageID: "other", Chunk: "[4]"})
	h.send(replay.ChunkMsg{MessageID: id, Chunk: "[3]"})
	h.send(replay.DoneMsg{MessageID: id, Chunks: 6})
	h.frame(16 * time.Millisecond)

	assert.False(t, h.m.IsStreaming())
	assert.Equal(t, []int{1, 2}, h.m.Tracker(id).State().Cited.Sorted())
	assert.Equal(t, "Goroutines are cheap [2]. [3]", h.m.Conversation().Message(id).Content)
}

func TestModel_CancelStopsReplay(t *testing.T) {
	h := newHarness(t)
	h.m.SetProgram(&recordingSender{})
	h.send(ReplayMsg{Transcript: replay.Sample()})
	id := h.assistantID()

	require.True(t, h.m.cancels.active())
	h.key("esc")
	assert.False(t, h.m.cancels.active())

	h.send(replay.DoneMsg{MessageID: id, Err: context.Canceled})
	assert.False(t, h.m.IsStreaming())
	assert.Equal(t, "Replay stopped", h.m.status.Message)
}

func TestModel_InvalidTranscript(t *testing.T) {
	h := newHarness(t)
	h.send(ReplayMsg{Transcript: &replay.Transcript{Prompt: "empty"}})

	assert.Nil(t, h.m.Conversation().LastAnswer())
	assert.Contains(t, h.m.status.Message, replay.ErrEmptyTranscript.Error())
}

// =============================================================================
// CITATION INTERACTION TESTS
// =============================================================================

func TestModel_OpenLinkHighlightsAndScrolls(t *testing.T) {
	h := newHarness(t)
	id := h.replayInstant()

	h.key("tab")
	assert.Equal(t, "[1,2]", h.m.status.Focus)
	assert.Equal(t, "1/5", h.m.status.Position)

	h.key("enter")
	st := h.m.Tracker(id).State()
	assert.True(t, st.Expanded)
	assert.Equal(t, 1, st.ActiveIndex, "group click activates its first number")

	card := citation.CardID(id, 1)
	require.NotNil(t, dom.FindByAttr(h.m.Document().Body(), "id", card), "card mirrored into the document")
	_, ok := h.m.viewport.Anchor(card)
	require.True(t, ok)

	h.frame(16 * time.Millisecond)
	assert.True(t, h.m.viewport.FullyVisible(card))

	h.frame(2 * time.Second)
	assert.Equal(t, 1, h.m.Tracker(id).State().ActiveIndex)

	h.frame(time.Second)
	assert.Equal(t, tracker.NoActive, h.m.Tracker(id).State().ActiveIndex)
	assert.True(t, h.m.Tracker(id).State().Expanded, "panel stays open")
}

func TestModel_FocusWraps(t *testing.T) {
	h := newHarness(t)
	h.replayInstant()

	h.key("N")
	assert.Equal(t, "5/5", h.m.status.Position)
	h.key("n")
	assert.Equal(t, "1/5", h.m.status.Position)
}

func TestModel_ToggleKeys(t *testing.T) {
	h := newHarness(t)
	id := h.replayInstant()
	tr := h.m.Tracker(id)

	h.key("c")
	assert.True(t, tr.State().Expanded)
	assert.NotContains(t, h.m.View(), "Go Concurrency Patterns")

	h.key("a")
	assert.True(t, tr.State().ShowAllSources)
	assert.Contains(t, h.m.View(), "Go Concurrency Patterns")

	h.key("c")
	assert.False(t, tr.State().Expanded)
}

func TestModel_CopyCitationURL(t *testing.T) {
	var copied string
	orig := clipboardWrite
	clipboardWrite = func(s string) error {
		copied = s
		return nil
	}
	t.Cleanup(func() { clipboardWrite = orig })

	h := newHarness(t)
	h.replayInstant()

	h.key("y")
	assert.Empty(t, copied, "nothing focused or active")

	h.key("tab")
	h.key("y")
	assert.Equal(t, "https://go.dev/tour/concurrency/1", copied)

	clipboardWrite = func(string) error { return errors.New("no display") }
	h.key("y")
	assert.Contains(t, h.m.status.Message, "no display")
}

func TestModel_ConfigReload(t *testing.T) {
	h := newHarness(t)

	h.send(ConfigReloadedMsg{Err: errors.New("bad toml")})
	assert.Contains(t, h.m.status.Message, "bad toml")

	cfg := config.Default()
	cfg.Citations.ExpandedDefault = true
	h.send(ConfigReloadedMsg{Config: cfg})
	id := h.replayInstant()
	assert.True(t, h.m.Tracker(id).State().Expanded)
}

func TestModel_QuitUnmountsTrackers(t *testing.T) {
	h := newHarness(t)
	id := h.replayInstant()
	require.True(t, h.m.Tracker(id).Mounted())

	_, cmd := h.m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.False(t, h.m.Tracker(id).Mounted())
	assert.Zero(t, h.m.Document().ListenerCount())
}
