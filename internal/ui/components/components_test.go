// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/citelink/internal/citation"
	"github.com/jeranaias/citelink/internal/dom"
	"github.com/jeranaias/citelink/internal/frame"
	"github.com/jeranaias/citelink/internal/model"
	"github.com/jeranaias/citelink/internal/tracker"
	"github.com/jeranaias/citelink/internal/ui/styles"
)

// =============================================================================
// HELPERS
// =============================================================================

func testRecords(n int) []citation.Record {
	records := make([]citation.Record, n)
	for i := range records {
		records[i] = citation.Record{
			Index: i + 1,
			URL:   fmt.Sprintf("https://source%d.example.com/page", i+1),
			Title: fmt.Sprintf("Source %d", i+1),
		}
	}
	return records
}

// mountedTracker returns a scanned tracker for message m1 whose content
// links citations 1 and 3 of three.
func mountedTracker(t *testing.T, expanded bool) (*tracker.Tracker, *dom.Document) {
	t.Helper()
	doc := dom.NewDocument()
	loop := frame.New(60)

	doc.Mount("m1")
	require.NoError(t, doc.SetContent("m1", `<p>a <a href="#cite-1">1</a> b <a href="#cite-3">3</a></p>`))

	tr := tracker.New(tracker.Options{
		MessageID: "m1",
		Document:  doc,
		Records:   testRecords(3),
		Scheduler: loop,
		Expanded:  expanded,
	})
	tr.Mount()
	t.Cleanup(tr.Unmount)
	loop.Tick(time.Now())
	require.Equal(t, []int{0, 2}, tr.State().Cited.Sorted())
	return tr, doc
}

// =============================================================================
// CITATIONS PANEL TESTS
// =============================================================================

func TestCitationsPanel_CollapsedShowsHeaderOnly(t *testing.T) {
	tr, _ := mountedTracker(t, false)
	panel := NewCitationsPanel(styles.NewTheme(styles.ThemeDark))

	view := panel.Render(tr)
	assert.Contains(t, view.Content, "2 cited (of 3)")
	assert.Empty(t, view.Cards)
	assert.NotContains(t, view.Content, "Source 1")
}

func TestCitationsPanel_CardSpans(t *testing.T) {
	tr, _ := mountedTracker(t, true)
	panel := NewCitationsPanel(styles.NewTheme(styles.ThemeDark))

	view := panel.Render(tr)
	lines := strings.Split(view.Content, "\n")

	require.Len(t, view.Cards, 2, "only cited sources are shown")
	first := view.Cards[citation.CardID("m1", 1)]
	third := view.Cards[citation.CardID("m1", 3)]
	assert.Equal(t, LineSpan{Start: 2, End: 4}, first)
	assert.Equal(t, LineSpan{Start: 4, End: 6}, third)

	assert.Contains(t, lines[first.Start], "[1]")
	assert.Contains(t, lines[third.Start], "[3]")
	assert.NotContains(t, view.Content, "Source 2")
}

func TestCitationsPanel_ShowAll(t *testing.T) {
	tr, _ := mountedTracker(t, true)
	tr.ToggleShowAll()

	view := NewCitationsPanel(styles.NewTheme(styles.ThemeDark)).Render(tr)
	assert.Len(t, view.Cards, 3)
	assert.Contains(t, view.Content, "Source 2")
}

func TestCitationsPanel_NoRecords(t *testing.T) {
	doc := dom.NewDocument()
	doc.Mount("m2")
	tr := tracker.New(tracker.Options{MessageID: "m2", Document: doc, Scheduler: frame.New(60)})

	view := NewCitationsPanel(styles.NewTheme(styles.ThemeDark)).Render(tr)
	assert.Empty(t, view.Content)
}

func TestMirrorCards(t *testing.T) {
	tr, doc := mountedTracker(t, true)

	panel, err := MirrorCards(doc, tr)
	require.NoError(t, err)

	id, _ := dom.Attr(panel, dom.AttrCitationsFor)
	assert.Equal(t, "m1", id)

	card := dom.FindByAttr(doc.Body(), "id", citation.CardID("m1", 3))
	require.NotNil(t, card)
	idx, _ := dom.Attr(card, dom.AttrCitationIndex)
	assert.Equal(t, "2", idx, "index attribute is the 0-based list position")
	first := dom.FindByAttr(doc.Body(), "id", citation.CardID("m1", 1))
	require.NotNil(t, first)
	idx, _ = dom.Attr(first, dom.AttrCitationIndex)
	assert.Equal(t, "0", idx)
	assert.Nil(t, dom.FindByAttr(doc.Body(), "id", citation.CardID("m1", 2)))

	// A second mirror reuses the element.
	again, err := MirrorCards(doc, tr)
	require.NoError(t, err)
	assert.Same(t, panel, again)

	tr.Toggle()
	_, err = MirrorCards(doc, tr)
	require.NoError(t, err)
	assert.Nil(t, dom.FindByAttr(doc.Body(), "id", citation.CardID("m1", 1)), "collapsed panel has no cards")

	RemoveMirror(doc, "m1")
	assert.Nil(t, dom.FindByAttr(doc.Body(), dom.AttrCitationsFor, "m1"))
}

func TestMirrorCards_NoContainer(t *testing.T) {
	doc := dom.NewDocument()
	tr := tracker.New(tracker.Options{MessageID: "gone", Document: doc, Scheduler: frame.New(60)})

	_, err := MirrorCards(doc, tr)
	assert.ErrorIs(t, err, dom.ErrNoContainer)
}

// =============================================================================
// VIEWPORT TESTS
// =============================================================================

func numberedLines(n int) string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d", i)
	}
	return strings.Join(lines, "\n")
}

func TestChatViewport_ScrollIntoView(t *testing.T) {
	cv := NewChatViewport(styles.NewTheme(styles.ThemeDark))
	cv.SetSize(80, 11) // 10 content lines + indicator
	cv.SetContent(numberedLines(30), map[string]LineSpan{
		"above": {Start: 12, End: 14},
		"below": {Start: 25, End: 27},
	})

	require.Equal(t, 20, cv.YOffset(), "new content follows the bottom")
	assert.False(t, cv.FullyVisible("above"))
	assert.True(t, cv.FullyVisible("below"))

	cv.ScrollIntoView("above")
	assert.Equal(t, 12, cv.YOffset())
	assert.True(t, cv.FullyVisible("above"))
	assert.False(t, cv.Following())

	cv.ScrollIntoView("below")
	assert.Equal(t, 17, cv.YOffset(), "scrolls the least distance")
	assert.True(t, cv.FullyVisible("below"))
}

func TestChatViewport_UnknownAnchor(t *testing.T) {
	cv := NewChatViewport(styles.NewTheme(styles.ThemeDark))
	cv.SetSize(80, 11)
	cv.SetContent(numberedLines(30), nil)

	assert.False(t, cv.FullyVisible("missing"))
	cv.ScrollIntoView("missing")
	assert.Equal(t, 20, cv.YOffset())
}

func TestChatViewport_ManualScrollStopsFollowing(t *testing.T) {
	cv := NewChatViewport(styles.NewTheme(styles.ThemeDark))
	cv.SetSize(80, 11)
	cv.SetContent(numberedLines(30), nil)

	cv.ScrollUp(5)
	assert.Equal(t, 15, cv.YOffset())
	cv.SetContent(numberedLines(40), nil)
	assert.Equal(t, 15, cv.YOffset(), "content updates keep the position")

	cv.ScrollToBottom()
	assert.True(t, cv.AtBottom())
	assert.True(t, cv.Following())
	assert.Contains(t, cv.View(), "line 39")
}

func TestTrackerScrollerContract(t *testing.T) {
	var _ tracker.Scroller = (*ChatViewport)(nil)
}

// =============================================================================
// BAR AND BUBBLE TESTS
// =============================================================================

func TestStatusBar_Focus(t *testing.T) {
	bar := NewStatusBar(styles.NewTheme(styles.ThemeDark))
	bar.SetWidth(120)
	bar.Focus = "[2]"
	bar.Position = "2/5"

	view := bar.View()
	assert.Contains(t, view, "[2]")
	assert.Contains(t, view, "2/5")
	assert.Contains(t, view, "Ready")

	bar.Message = "config reloaded"
	assert.Contains(t, bar.View(), "config reloaded")
}

func TestStatus_StringAndIcon(t *testing.T) {
	assert.Equal(t, "Streaming", StatusStreaming.String())
	assert.Equal(t, styles.StatusIndicators.Error, StatusError.Icon())
	assert.Equal(t, "Ready", Status(42).String())
}

func TestHeader_TruncatesSubtitle(t *testing.T) {
	h := NewHeader(styles.NewTheme(styles.ThemeDark))
	h.SetWidth(30)
	h.Subtitle = "How does Go handle concurrency in practice?"

	view := h.View()
	assert.Contains(t, view, "citelink")
	assert.Contains(t, view, "...")
}

func TestMessageBubble_Assistant(t *testing.T) {
	msg := model.NewAnswer(testRecords(1))
	msg.Append("partial")

	b := NewMessageBubble(msg, styles.NewTheme(styles.ThemeDark))
	b.Body = "partial [1]"
	view := b.View()
	assert.Contains(t, view, "assistant")
	assert.Contains(t, view, "partial [1]")
	assert.Contains(t, view, "_", "streaming cursor")
}

func TestFormatTimestamp(t *testing.T) {
	now := time.Date(2025, 3, 4, 18, 0, 0, 0, time.UTC)
	assert.Equal(t, "09:05", formatTimestamp(time.Date(2025, 3, 4, 9, 5, 0, 0, time.UTC), now))
	assert.Equal(t, "Mar 3, 09:05", formatTimestamp(time.Date(2025, 3, 3, 9, 5, 0, 0, time.UTC), now))
}

func TestSpinner_Progress(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := NewSpinner(styles.NewTheme(styles.ThemeDark)).WithClock(func() time.Time { return now })
	assert.Empty(t, s.View(), "inactive spinner renders nothing")

	require.NotNil(t, s.Start())
	s.Progress(42, 3)
	now = now.Add(1250 * time.Millisecond)
	assert.Contains(t, s.View(), "Streaming 42 chunks, 3 cited (1.2s)")

	s.Stop()
	assert.False(t, s.Active())
	s2, cmd := s.Update(nil)
	assert.Nil(t, cmd, "ticks after Stop end the animation")
	assert.Empty(t, s2.View())
}
