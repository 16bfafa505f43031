// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tracker follows which citations a rendered message references.
//
// One Tracker is attached to one mounted message. It watches the message
// container for DOM mutations, rescans the container at most once per frame,
// and turns clicks on citation links into an expanded panel with a
// temporarily highlighted card.
package tracker

import (
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/jeranaias/citelink/internal/citation"
	"github.com/jeranaias/citelink/internal/dom"
	"github.com/jeranaias/citelink/internal/frame"
	"github.com/jeranaias/citelink/internal/metrics"
)

const (
	// DefaultHighlightDuration is how long a clicked citation stays active.
	DefaultHighlightDuration = 3 * time.Second

	// NoActive is the ActiveIndex value when no citation is highlighted.
	NoActive = 0
)

// Scroller moves the view so a card is visible. Card ids come from
// citation.CardID.
type Scroller interface {
	FullyVisible(id string) bool
	ScrollIntoView(id string)
}

// Options configures a Tracker.
type Options struct {
	// MessageID is the id of the message container the tracker owns.
	MessageID string
	Document  *dom.Document
	Records   []citation.Record

	// RawText is the message markdown used when the container holds no
	// citation links yet.
	RawText string

	Scheduler frame.Scheduler
	Scroller  Scroller

	// HighlightDuration defaults to DefaultHighlightDuration.
	HighlightDuration time.Duration

	// Initial panel state.
	Expanded       bool
	ShowAllSources bool

	// OnChange is called after any state change visible to the panel.
	OnChange func()

	Logger *zap.Logger
}

// State is the panel state for one message.
type State struct {
	Expanded       bool
	ShowAllSources bool

	// ActiveIndex is the 1-based number of the highlighted citation, or
	// NoActive.
	ActiveIndex int

	// Cited holds the 0-based list positions referenced by the message.
	Cited citation.Set
}

// Tracker tracks cited and active citations for a single message.
type Tracker struct {
	id        string
	doc       *dom.Document
	records   []citation.Record
	rawText   string
	sched     frame.Scheduler
	scroller  Scroller
	highlight time.Duration
	onChange  func()
	logger    *zap.Logger

	initial State
	state   State
	scans   int
	source  string

	mounted        bool
	observer       *dom.Observer
	removeListener func()

	scanPending   bool
	scanFrame     frame.ID
	scrollPending bool
	scrollFrame   frame.ID
	timer         *frame.Timer
}

// New creates a tracker. It does nothing until Mount is called.
func New(opts Options) *Tracker {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	highlight := opts.HighlightDuration
	if highlight <= 0 {
		highlight = DefaultHighlightDuration
	}
	initial := State{
		Expanded:       opts.Expanded,
		ShowAllSources: opts.ShowAllSources,
	}
	t := &Tracker{
		id:        opts.MessageID,
		doc:       opts.Document,
		records:   opts.Records,
		rawText:   opts.RawText,
		sched:     opts.Scheduler,
		scroller:  opts.Scroller,
		highlight: highlight,
		onChange:  opts.OnChange,
		logger:    logger.With(zap.String("message_id", opts.MessageID)),
		initial:   initial,
	}
	t.reset()
	return t
}

// reset returns the panel state to the values given in Options.
func (t *Tracker) reset() {
	t.state = t.initial
	t.state.Cited = citation.NewSet()
	t.source = ""
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// Mount starts observing the message container, registers the delegated
// click listener and schedules the first scan. Calling Mount on a mounted
// tracker does nothing.
func (t *Tracker) Mount() {
	if t.mounted {
		return
	}
	t.mounted = true

	t.observer = dom.NewObserver(t.doc, t.onMutations)
	present := t.observe()
	t.removeListener = t.doc.AddEventListener(t.doc.Body(), dom.EventClick, t.HandleClick)
	t.scheduleScan()

	t.logger.Debug("Tracker mounted", zap.Bool("container_present", present))
}

// observe watches the body's direct children, so the container can come and
// go, plus the whole subtree of the current container when there is one.
// Reports whether a container was found.
func (t *Tracker) observe() bool {
	t.observer.Disconnect()
	t.observer.Observe(t.doc.Body(), dom.ObserveOptions{ChildList: true})
	c := t.doc.Container(t.id)
	if c == nil {
		return false
	}
	t.observer.Observe(c, dom.ObserveOptions{ChildList: true, Subtree: true})
	return true
}

// Unmount releases everything Mount acquired: the observer, the click
// listener, queued frames and the highlight timer. The panel state goes back
// to its initial values, so a later Mount starts clean. It is idempotent.
func (t *Tracker) Unmount() {
	if !t.mounted {
		return
	}
	t.mounted = false

	t.observer.Disconnect()
	t.observer = nil

	t.removeListener()
	t.removeListener = nil

	if t.scanPending {
		t.sched.CancelFrame(t.scanFrame)
		t.scanPending = false
	}
	if t.scrollPending {
		t.sched.CancelFrame(t.scrollFrame)
		t.scrollPending = false
	}
	t.timer.Stop()
	t.timer = nil
	t.reset()

	t.logger.Debug("Tracker unmounted", zap.Int("scans", t.scans))
}

// Mounted reports whether the tracker is mounted.
func (t *Tracker) Mounted() bool {
	return t.mounted
}

// =============================================================================
// INPUTS
// =============================================================================

// SetRawText replaces the raw message text used by the fallback scan.
func (t *Tracker) SetRawText(text string) {
	if text == t.rawText {
		return
	}
	t.rawText = text
	t.scheduleScan()
}

// SetRecords replaces the citation list. An active highlight that no longer
// refers to a record is cleared.
func (t *Tracker) SetRecords(records []citation.Record) {
	t.records = records
	if t.state.ActiveIndex > len(records) {
		t.clearActive()
	}
	t.scheduleScan()
}

// Toggle expands or collapses the panel.
func (t *Tracker) Toggle() {
	t.state.Expanded = !t.state.Expanded
	t.changed()
}

// ToggleShowAll switches between cited-only and all sources.
func (t *Tracker) ToggleShowAll() {
	t.state.ShowAllSources = !t.state.ShowAllSources
	t.changed()
}

// =============================================================================
// OUTPUTS
// =============================================================================

// MessageID returns the id of the owned message.
func (t *Tracker) MessageID() string { return t.id }

// Records returns the citation list.
func (t *Tracker) Records() []citation.Record { return t.records }

// State returns a snapshot of the panel state.
func (t *Tracker) State() State {
	s := t.state
	s.Cited = citation.NewSet(t.state.Cited.Sorted()...)
	return s
}

// Visible returns the records the panel should show.
func (t *Tracker) Visible() []citation.Record {
	return citation.Select(t.records, t.state.Cited, t.state.ShowAllSources)
}

// Header returns the panel header text.
func (t *Tracker) Header() string {
	return citation.Summary(t.state.Cited.Len(), len(t.records))
}

// ScanCount returns how many scans have run.
func (t *Tracker) ScanCount() int { return t.scans }

// Source returns how the last scan found the cited subset: one of
// citation.SourceDOM, SourceText or SourceNone. Empty before the first scan.
func (t *Tracker) Source() string { return t.source }

// =============================================================================
// SCANNING
// =============================================================================

func (t *Tracker) onMutations(records []dom.MutationRecord, _ *dom.Observer) {
	metrics.MutationBatches.Inc()

	body := t.doc.Body()
	for _, rec := range records {
		if rec.Target != body {
			t.scheduleScan()
			continue
		}
		// Body records only matter when they add or remove our container.
		if t.ownsAny(rec.AddedNodes) || t.ownsAny(rec.RemovedNodes) {
			t.observe()
			t.scheduleScan()
		}
	}
}

func (t *Tracker) ownsAny(nodes []*html.Node) bool {
	for _, n := range nodes {
		if v, ok := dom.Attr(n, dom.AttrMessageID); ok && v == t.id {
			return true
		}
	}
	return false
}

// scheduleScan requests one frame for a scan unless one is already pending.
func (t *Tracker) scheduleScan() {
	if !t.mounted || t.scanPending {
		return
	}
	t.scanPending = true
	t.scanFrame = t.sched.RequestFrame(func(time.Time) {
		t.scanPending = false
		t.scan()
	})
}

func (t *Tracker) scan() {
	container := t.doc.Container(t.id)
	if container == nil {
		return
	}
	start := time.Now()
	count := len(t.records)

	fromDOM := citation.Strategy{
		Name: citation.SourceDOM,
		Discover: func(count int) citation.Set {
			anchors := dom.QueryAnchors(container, citation.HrefPrefix)
			hrefs := make([]string, 0, len(anchors))
			for _, a := range anchors {
				href, _ := dom.Attr(a, "href")
				hrefs = append(hrefs, href)
			}
			return citation.FromHrefs(hrefs, count)
		},
	}
	fromText := citation.Strategy{
		Name: citation.SourceText,
		Discover: func(count int) citation.Set {
			return citation.FromText(t.rawText, count)
		},
	}

	cited, source := citation.FirstMatch(count, fromDOM, fromText)
	t.scans++
	t.source = source
	metrics.RecordScan(source, time.Since(start))

	if cited.Equal(t.state.Cited) {
		return
	}
	t.state.Cited = cited
	t.logger.Debug("Cited subset updated",
		zap.String("source", source),
		zap.Int("cited", cited.Len()),
		zap.Int("total", count))
	t.changed()
}

// =============================================================================
// CLICKS
// =============================================================================

// IsCitationLink reports whether n is inside a citation link and returns the
// numbers its href refers to.
func IsCitationLink(n *html.Node) ([]int, bool) {
	a := citationAnchor(n)
	if a == nil {
		return nil, false
	}
	href, _ := dom.Attr(a, "href")
	return citation.ParseHref(href)
}

func citationAnchor(n *html.Node) *html.Node {
	return dom.Closest(n, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.DataAtom != atom.A {
			return false
		}
		href, ok := dom.Attr(n, "href")
		if !ok {
			return false
		}
		_, ok = citation.ParseHref(href)
		return ok
	})
}

// HandleClick is the delegated click listener. Clicks on citation links
// inside the owned message expand the panel and highlight the first
// referenced citation that exists in the list.
func (t *Tracker) HandleClick(ev *dom.Event) {
	a := citationAnchor(ev.Target)
	if a == nil {
		return
	}
	owner := dom.ClosestWithAttr(a, dom.AttrMessageID)
	if owner == nil {
		return
	}
	if id, _ := dom.Attr(owner, dom.AttrMessageID); id != t.id {
		return
	}

	ev.PreventDefault()
	t.state.Expanded = true

	href, _ := dom.Attr(a, "href")
	numbers, _ := citation.ParseHref(href)
	n := t.firstInRange(numbers)
	if n == NoActive {
		metrics.RecordClick(metrics.ClickOutOfRange)
		t.logger.Debug("Citation click out of range", zap.String("href", href))
		t.changed()
		return
	}

	t.state.ActiveIndex = n
	t.restartHighlight()
	t.scheduleScroll(n)
	metrics.RecordClick(metrics.ClickActivated)
	t.logger.Debug("Citation activated", zap.Int("index", n))
	t.changed()
}

func (t *Tracker) firstInRange(numbers []int) int {
	for _, n := range numbers {
		if n >= 1 && n <= len(t.records) {
			return n
		}
	}
	return NoActive
}

func (t *Tracker) restartHighlight() {
	t.timer.Stop()
	t.timer = t.sched.AfterFunc(t.highlight, func() {
		t.timer = nil
		metrics.HighlightsExpired.Inc()
		t.clearActive()
	})
}

func (t *Tracker) clearActive() {
	if t.state.ActiveIndex == NoActive {
		return
	}
	t.state.ActiveIndex = NoActive
	t.changed()
}

// scheduleScroll brings the card for n into view on the next frame, after
// the expanded panel has been laid out.
func (t *Tracker) scheduleScroll(n int) {
	if t.scrollPending {
		t.sched.CancelFrame(t.scrollFrame)
	}
	t.scrollPending = true
	t.scrollFrame = t.sched.RequestFrame(func(time.Time) {
		t.scrollPending = false
		if t.scroller == nil {
			return
		}
		id := citation.CardID(t.id, n)
		if !t.scroller.FullyVisible(id) {
			t.scroller.ScrollIntoView(id)
		}
	})
}

func (t *Tracker) changed() {
	if t.onChange != nil {
		t.onChange()
	}
}
