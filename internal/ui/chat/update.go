// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/citelink/internal/citation"
	"github.com/jeranaias/citelink/internal/dom"
	"github.com/jeranaias/citelink/internal/model"
	"github.com/jeranaias/citelink/internal/render"
	"github.com/jeranaias/citelink/internal/replay"
	"github.com/jeranaias/citelink/internal/tracker"
	"github.com/jeranaias/citelink/internal/ui/components"
	"github.com/jeranaias/citelink/internal/ui/styles"
)

// =============================================================================
// RESIZE
// =============================================================================

func (m *Model) handleResize(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true

	m.theme.SetSize(msg.Width, msg.Height)
	m.header.SetWidth(msg.Width)
	m.status.SetWidth(msg.Width)
	m.panel.SetWidth(m.theme.ContentWidth())
	m.help.Width = msg.Width
	m.resizeViewport()
	m.markDirty()
}

// resizeViewport gives the viewport whatever the header, status bar and help
// leave over.
func (m *Model) resizeViewport() {
	chrome := heightOf(m.header.View()) + heightOf(m.status.View())
	if m.showHelp {
		chrome += heightOf(m.help.View(m.keys))
	}
	m.viewport.SetSize(m.width, maxInt(3, m.height-chrome))
}

// =============================================================================
// KEYS
// =============================================================================

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	m.status.Message = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.shutdown()
		return tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		m.resizeViewport()
		m.markDirty()

	case key.Matches(msg, m.keys.NextLink):
		m.moveFocus(1)

	case key.Matches(msg, m.keys.PrevLink):
		m.moveFocus(-1)

	case key.Matches(msg, m.keys.Open):
		m.openFocused()

	case key.Matches(msg, m.keys.ToggleSources):
		if t := m.targetTracker(); t != nil {
			t.Toggle()
		}

	case key.Matches(msg, m.keys.ShowAll):
		if t := m.targetTracker(); t != nil {
			t.ToggleShowAll()
		}

	case key.Matches(msg, m.keys.Copy):
		m.copyCitationURL()

	case key.Matches(msg, m.keys.Replay):
		return m.startReplay(m.transcript)

	case key.Matches(msg, m.keys.Cancel):
		if m.IsStreaming() {
			m.cancels.cancel()
		}

	default:
		m.viewport.Update(msg)
	}
	return nil
}

// moveFocus steps the keyboard focus through citation links, wrapping at
// either end.
func (m *Model) moveFocus(step int) {
	if len(m.links) == 0 {
		m.focus = -1
		m.status.Message = "No citation links"
		return
	}
	switch {
	case m.focus < 0 && step < 0:
		m.focus = len(m.links) - 1
	case m.focus < 0:
		m.focus = 0
	default:
		m.focus = (m.focus + step + len(m.links)) % len(m.links)
	}
	m.updateFocusStatus()
}

func (m *Model) focusedLink() (linkRef, bool) {
	if m.focus < 0 || m.focus >= len(m.links) {
		return linkRef{}, false
	}
	return m.links[m.focus], true
}

// openFocused clicks the focused link in the document. The owning tracker
// handles the click like a pointer click.
func (m *Model) openFocused() {
	link, ok := m.focusedLink()
	if !ok {
		m.status.Message = "Focus a citation with tab first"
		return
	}
	ev := m.doc.Dispatch(link.node, dom.EventClick)
	if !ev.DefaultPrevented() {
		m.logger.Debug("Citation click not handled", zap.String("message_id", link.messageID))
	}
}

// targetTracker is the tracker of the focused link's message, or of the
// latest assistant message.
func (m *Model) targetTracker() *tracker.Tracker {
	if link, ok := m.focusedLink(); ok {
		if t := m.Tracker(link.messageID); t != nil {
			return t
		}
	}
	if last := m.conversation.LastAnswer(); last != nil {
		return m.Tracker(last.ID)
	}
	return nil
}

// copyCitationURL copies the URL of the highlighted citation, or of the
// focused link's first citation.
func (m *Model) copyCitationURL() {
	t := m.targetTracker()
	if t == nil {
		return
	}
	n := t.State().ActiveIndex
	if link, ok := m.focusedLink(); n == tracker.NoActive && ok && len(link.numbers) > 0 {
		n = link.numbers[0]
	}
	url := recordURL(t.Records(), n)
	if url == "" {
		m.status.Message = "No citation selected"
		return
	}
	if err := copyToClipboard(url); err != nil {
		m.logger.Warn("Clipboard write failed", zap.Error(err))
		m.status.Message = styles.RenderError("Copy failed: " + err.Error())
		return
	}
	m.status.Message = fmt.Sprintf("Copied [%d] %s", n, url)
}

// =============================================================================
// REPLAY
// =============================================================================

// startReplay adds the transcript as a new exchange and starts streaming
// its answer.
func (m *Model) startReplay(t *replay.Transcript) tea.Cmd {
	if t == nil {
		m.status.Message = "No transcript loaded"
		return nil
	}
	if err := t.Validate(); err != nil {
		m.status.Status = components.StatusError
		m.status.Message = styles.RenderError(err.Error())
		return nil
	}
	if m.IsStreaming() {
		m.cancels.cancel()
		m.finishStream(m.streamingID, 0, context.Canceled)
	}
	m.transcript = t

	if t.Prompt != "" {
		m.conversation.AddPrompt(t.Prompt)
		m.header.Subtitle = t.Prompt
	}
	msg := m.conversation.AddAnswer(t.Citations)
	m.doc.Mount(msg.ID)

	tr := tracker.New(tracker.Options{
		MessageID:         msg.ID,
		Document:          m.doc,
		Records:           msg.Citations,
		Scheduler:         m.loop,
		Scroller:          m.viewport,
		HighlightDuration: m.cfg.Citations.HighlightDuration(),
		Expanded:          m.cfg.Citations.ExpandedDefault,
		ShowAllSources:    m.cfg.Citations.ShowAllDefault,
		OnChange:          m.markDirty,
		Logger:            m.logger,
	})
	tr.Mount()
	m.views[msg.ID] = &messageView{msg: msg, tracker: tr}

	m.streamingID = msg.ID
	stats := model.StartStats(m.clock())
	m.stats = &stats
	m.buffer.Reset()
	m.status.Status = components.StatusStreaming
	m.viewport.ScrollToBottom()
	m.markDirty()
	m.logger.Info("Replay started",
		zap.String("message_id", msg.ID),
		zap.Int("citations", len(t.Citations)))

	if m.program == nil {
		chunks := replay.Chunks(t.Text)
		for _, c := range chunks {
			msg.Append(c)
		}
		id, n := msg.ID, len(chunks)
		return func() tea.Msg { return replay.DoneMsg{MessageID: id, Chunks: n} }
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancels.set(cancel)
	return tea.Batch(
		m.player.Start(ctx, m.program, msg.ID, t.Text),
		m.spinner.Start(),
	)
}

func (m *Model) handleChunk(msg replay.ChunkMsg) {
	if msg.MessageID != m.streamingID {
		return
	}
	m.buffer.Write(msg.Chunk)
	m.requestFlush()
}

// requestFlush releases buffered chunks on the next frame the buffer allows.
func (m *Model) requestFlush() {
	if m.flushPending {
		return
	}
	m.flushPending = true
	m.loop.RequestFrame(func(time.Time) {
		m.flushPending = false
		chunks, ok := m.buffer.Flush()
		if ok {
			m.applyChunks(chunks)
		}
		if m.buffer.Pending() > 0 {
			m.requestFlush()
		}
	})
}

func (m *Model) applyChunks(chunks []string) {
	v := m.views[m.streamingID]
	if v == nil {
		return
	}
	for _, c := range chunks {
		v.msg.Append(c)
	}
	m.refresh(v)
	m.spinner.Progress(v.msg.Chunks, len(v.msg.MarkedNumbers()))
}

func (m *Model) handleDone(msg replay.DoneMsg) {
	if msg.MessageID != m.streamingID {
		return
	}
	if chunks, ok := m.buffer.ForceFlush(); ok {
		m.applyChunks(chunks)
	}
	m.finishStream(msg.MessageID, msg.Chunks, msg.Err)
}

// finishStream finalizes the streaming message and returns to ready.
func (m *Model) finishStream(id string, chunks int, err error) {
	m.cancels.cancel()
	m.buffer.Reset()
	m.spinner.Stop()
	m.streamingID = ""

	if v := m.views[id]; v != nil {
		var stats model.Stats
		if m.stats != nil {
			stats = m.stats.Stop(m.clock())
		}
		v.msg.Finish(stats)
		m.refresh(v)
		m.logger.Debug("Replay finished",
			zap.String("message_id", id),
			zap.Int("chunks", chunks),
			zap.Ints("marked", v.msg.MarkedNumbers()))
	}
	m.stats = nil

	switch {
	case err == nil:
		m.status.Status = components.StatusReady
	case errors.Is(err, context.Canceled):
		m.status.Status = components.StatusReady
		m.status.Message = "Replay stopped"
	default:
		m.status.Status = components.StatusError
		m.status.Message = styles.RenderError(err.Error())
		m.logger.Warn("Replay failed", zap.String("message_id", id), zap.Error(err))
	}
	m.markDirty()
}

// refresh re-renders a message after its text changed. The container
// content is replaced and the tracker gets the rewritten text for its
// fallback scan; the mutation batch schedules its rescan.
func (m *Model) refresh(v *messageView) {
	raw := v.msg.Text()
	if raw == v.raw {
		return
	}
	rendered, err := render.Pipeline(raw)
	if err != nil {
		m.logger.Warn("Render failed", zap.String("message_id", v.msg.ID), zap.Error(err))
		return
	}
	if err := m.doc.SetContent(v.msg.ID, rendered.HTML); err != nil {
		m.logger.Debug("Message not mounted", zap.String("message_id", v.msg.ID), zap.Error(err))
	}
	v.raw = raw
	v.rendered = rendered
	v.body = ""
	v.tracker.SetRawText(rendered.Markdown)
	m.markDirty()
}

// =============================================================================
// CONFIG
// =============================================================================

// handleConfigReloaded applies a reloaded configuration. Panel defaults and
// the highlight duration apply to messages started after the reload.
func (m *Model) handleConfigReloaded(msg ConfigReloadedMsg) {
	if msg.Err != nil {
		m.logger.Warn("Config reload failed", zap.Error(msg.Err))
		m.status.Message = styles.RenderError("Config reload failed: " + msg.Err.Error())
		return
	}
	if msg.Config == nil {
		return
	}
	m.cfg = msg.Config
	for _, v := range m.views {
		v.body = ""
	}
	m.status.Message = styles.RenderInfo("Config reloaded")
	m.markDirty()
}

// =============================================================================
// LINKS
// =============================================================================

// collectLinks lists citation links in conversation order and keeps the
// focus on the same link position when it still exists.
func (m *Model) collectLinks() {
	prev, hadFocus := m.focusedLink()

	m.links = m.links[:0]
	for _, msg := range m.conversation.Messages() {
		container := m.doc.Container(msg.ID)
		if container == nil {
			continue
		}
		for _, a := range dom.QueryAnchors(container, citation.HrefPrefix) {
			numbers, ok := tracker.IsCitationLink(a)
			if !ok {
				continue
			}
			m.links = append(m.links, linkRef{messageID: msg.ID, node: a, numbers: numbers})
		}
	}

	switch {
	case len(m.links) == 0:
		m.focus = -1
	case !hadFocus:
	case m.focus >= len(m.links) || m.links[m.focus].messageID != prev.messageID:
		m.focus = -1
	}
	m.updateFocusStatus()
}

func (m *Model) updateFocusStatus() {
	link, ok := m.focusedLink()
	if !ok {
		m.status.Focus = ""
		m.status.Position = ""
		return
	}
	m.status.Focus = linkLabel(link.numbers)
	m.status.Position = fmt.Sprintf("%d/%d", m.focus+1, len(m.links))
}
