// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/jeranaias/citelink/internal/config"
	"github.com/jeranaias/citelink/internal/dom"
	"github.com/jeranaias/citelink/internal/frame"
	"github.com/jeranaias/citelink/internal/model"
	"github.com/jeranaias/citelink/internal/render"
	"github.com/jeranaias/citelink/internal/replay"
	"github.com/jeranaias/citelink/internal/tracker"
	"github.com/jeranaias/citelink/internal/ui/components"
	"github.com/jeranaias/citelink/internal/ui/styles"
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view. It is used by pointer:
// citation trackers hold callbacks into it and into its viewport.
type Model struct {
	cfg    *config.Config
	logger *zap.Logger
	clock  func() time.Time

	// Styling and keys
	theme    *styles.Theme
	keys     KeyMap
	help     help.Model
	showHelp bool

	// Dimensions
	width  int
	height int
	ready  bool

	// Conversation and its document
	conversation *model.Conversation
	doc          *dom.Document
	loop         *frame.Loop
	views        map[string]*messageView

	// Components
	header   *components.Header
	viewport *components.ChatViewport
	status   *components.StatusBar
	spinner  components.Spinner
	panel    *components.CitationsPanel

	// Streaming
	transcript   *replay.Transcript
	player       *replay.Player
	program      replay.Sender
	cancels      *cancelManager // Pointer so the replay goroutine shares it
	buffer       *StreamingBuffer
	streamingID  string
	stats        *model.Stats
	flushPending bool

	// Keyboard focus over citation links, in document order
	links []linkRef
	focus int

	dirty bool
}

// messageView is the rendering state of one assistant message.
type messageView struct {
	msg     *model.Message
	tracker *tracker.Tracker

	raw      string
	rendered render.Rendered

	body    string
	bodyKey bodyKey
}

type bodyKey struct {
	width int
	style string
}

// linkRef is a citation link in the document.
type linkRef struct {
	messageID string
	node      *html.Node
	numbers   []int
}

// Option configures a Model.
type Option func(*Model)

// WithClock sets the time source for frames and stream batching.
func WithClock(now func() time.Time) Option {
	return func(m *Model) { m.clock = now }
}

// WithTranscript sets the transcript replayed on start and by the replay key.
func WithTranscript(t *replay.Transcript) Option {
	return func(m *Model) { m.transcript = t }
}

// New creates a chat model.
func New(cfg *config.Config, logger *zap.Logger, opts ...Option) *Model {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	theme := styles.NewTheme(cfg.UI.Theme)

	m := &Model{
		cfg:          cfg,
		logger:       logger,
		clock:        time.Now,
		theme:        theme,
		keys:         DefaultKeyMap(),
		help:         help.New(),
		conversation: model.NewConversation(model.DefaultLimit),
		doc:          dom.NewDocument(),
		views:        make(map[string]*messageView),
		header:       components.NewHeader(theme),
		viewport:     components.NewChatViewport(theme),
		status:       components.NewStatusBar(theme),
		spinner:      components.NewSpinner(theme),
		panel:        components.NewCitationsPanel(theme),
		cancels:      newCancelManager(),
		focus:        -1,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.loop = frame.New(cfg.UI.FrameFPS, frame.WithClock(m.clock))
	m.spinner = m.spinner.WithClock(m.clock)
	m.buffer = NewStreamingBufferWithConfig(cfg.Stream.BatchSize, cfg.Stream.MaxFPS).withClock(m.clock)
	m.player = replay.NewPlayer(cfg.Stream.TokensPerSec, logger)
	m.conversation.OnPrune(m.release)
	return m
}

// SetProgram sets the program replay chunks are sent to. Without one,
// transcripts are shown in full at once.
func (m *Model) SetProgram(p replay.Sender) {
	m.program = p
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init starts the configured transcript, if any.
func (m *Model) Init() tea.Cmd {
	if m.transcript == nil {
		return nil
	}
	t := m.transcript
	return func() tea.Msg { return ReplayMsg{Transcript: t} }
}

// Update handles messages and updates the model. Layout is rebuilt at the
// end of every update that changed it, so frame callbacks always see the
// current card positions.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.handleResize(msg)

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKey(msg))

	case tea.MouseMsg:
		m.viewport.Update(msg)

	case frame.FrameMsg:
		m.loop.Tick(msg.Time)

	case replay.ChunkMsg:
		m.handleChunk(msg)

	case replay.DoneMsg:
		m.handleDone(msg)

	case ReplayMsg:
		cmds = append(cmds, m.startReplay(msg.Transcript))

	case ConfigReloadedMsg:
		m.handleConfigReloaded(msg)

	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	if m.dirty {
		m.relayout()
	}
	cmds = append(cmds, m.loop.Cmd())
	return m, tea.Batch(cmds...)
}

// View renders the chat.
func (m *Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	return m.renderChat()
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Conversation returns the conversation being displayed.
func (m *Model) Conversation() *model.Conversation {
	return m.conversation
}

// Document returns the message document.
func (m *Model) Document() *dom.Document {
	return m.doc
}

// Tracker returns the citation tracker of a message, or nil.
func (m *Model) Tracker(messageID string) *tracker.Tracker {
	if v := m.views[messageID]; v != nil {
		return v.tracker
	}
	return nil
}

// IsStreaming reports whether a transcript is being replayed.
func (m *Model) IsStreaming() bool {
	return m.streamingID != ""
}

// markDirty schedules a relayout at the end of the current update.
func (m *Model) markDirty() {
	m.dirty = true
}

// release drops everything attached to a pruned message.
func (m *Model) release(msg *model.Message) {
	if v := m.views[msg.ID]; v != nil {
		v.tracker.Unmount()
		delete(m.views, msg.ID)
	}
	components.RemoveMirror(m.doc, msg.ID)
	m.doc.Unmount(msg.ID)
	m.markDirty()
}

// shutdown stops the replay and unmounts every tracker.
func (m *Model) shutdown() {
	m.cancels.cancel()
	for _, v := range m.views {
		v.tracker.Unmount()
	}
}
