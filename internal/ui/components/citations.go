// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/jeranaias/citelink/internal/citation"
	"github.com/jeranaias/citelink/internal/dom"
	"github.com/jeranaias/citelink/internal/tracker"
	"github.com/jeranaias/citelink/internal/ui/styles"
	"github.com/jeranaias/citelink/internal/util"
)

// =============================================================================
// CITATIONS PANEL COMPONENT - Source cards under an assistant message
// =============================================================================

// LineSpan is a half-open range of rendered lines [Start, End).
type LineSpan struct {
	Start int
	End   int
}

// Contains reports whether line falls inside the span.
func (s LineSpan) Contains(line int) bool {
	return line >= s.Start && line < s.End
}

// Shift returns the span moved down by n lines.
func (s LineSpan) Shift(n int) LineSpan {
	return LineSpan{Start: s.Start + n, End: s.End + n}
}

// PanelView is one rendered citations panel.
type PanelView struct {
	Content string

	// Cards maps card ids (citation.CardID) to their lines in Content.
	Cards map[string]LineSpan
}

// CitationsPanel renders the citation list of one message.
type CitationsPanel struct {
	theme *styles.Theme
	width int
}

// NewCitationsPanel creates a panel renderer.
func NewCitationsPanel(theme *styles.Theme) *CitationsPanel {
	return &CitationsPanel{theme: theme, width: 80}
}

// SetWidth sets the panel width in columns.
func (p *CitationsPanel) SetWidth(width int) {
	p.width = width
}

// Render draws the panel for a tracker. A message without citations renders
// nothing.
func (p *CitationsPanel) Render(t *tracker.Tracker) PanelView {
	view := PanelView{Cards: make(map[string]LineSpan)}
	if len(t.Records()) == 0 {
		return view
	}
	st := t.State()

	var lines []string
	lines = append(lines, p.renderHeader(t.Header(), st))

	if st.Expanded {
		for _, r := range t.Visible() {
			card := p.renderCard(r, r.Index == st.ActiveIndex)
			cardLines := strings.Split(card, "\n")
			// +1 for the panel's top border.
			start := len(lines) + 1
			view.Cards[citation.CardID(t.MessageID(), r.Index)] = LineSpan{Start: start, End: start + len(cardLines)}
			lines = append(lines, cardLines...)
		}
	}

	view.Content = p.theme.CitationPanel.
		Width(p.width).
		Render(strings.Join(lines, "\n"))
	return view
}

func (p *CitationsPanel) renderHeader(summary string, st tracker.State) string {
	arrow := ">"
	if st.Expanded {
		arrow = "v"
	}
	header := p.theme.CitationHeader.Render(arrow + " Sources: " + summary)

	var hints []string
	if st.Expanded {
		hints = append(hints, "c hide")
		if st.ShowAllSources {
			hints = append(hints, "a cited only")
		} else {
			hints = append(hints, "a show all")
		}
	} else {
		hints = append(hints, "c show")
	}
	return header + "  " + p.theme.CitationToggle.Render("("+strings.Join(hints, ", ")+")")
}

func (p *CitationsPanel) renderCard(r citation.Record, active bool) string {
	inner := p.width - 6
	if inner < 16 {
		inner = 16
	}

	number := p.theme.CitationNumber.Render("[" + strconv.Itoa(r.Index) + "]")
	title := p.theme.CitationTitle.Render(util.TruncateWidth(r.DisplayTitle(), inner-lipgloss.Width(number)-1))
	rows := []string{number + " " + title}

	meta := r.Domain()
	if r.Author != "" {
		meta = joinNonEmpty(" - ", meta, r.Author)
	}
	if r.PublishedDate != nil {
		meta = joinNonEmpty(" - ", meta, r.PublishedDate.Format("2006-01-02"))
	}
	if meta != "" {
		rows = append(rows, p.theme.CitationDomain.Render(util.TruncateWidth(meta, inner)))
	}
	if snippet := strings.TrimSpace(r.Snippet); snippet != "" {
		rows = append(rows, p.theme.CitationSnippet.Render(util.TruncateWidth(snippet, inner)))
	}
	if active {
		rows = append(rows, styles.RenderLink(util.TruncateWidth(r.URL, inner)))
	}

	style := p.theme.CitationCard
	if active {
		style = p.theme.CitationCardActive
	}
	return style.Render(strings.Join(rows, "\n"))
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

// =============================================================================
// DOM MIRROR
// =============================================================================

// MirrorCards writes the visible cards into the document under a citations
// element for the message, so card ids resolve the same way links do. The
// element is appended to the body on first use.
func MirrorCards(doc *dom.Document, t *tracker.Tracker) (*html.Node, error) {
	id := t.MessageID()
	container := doc.Container(id)
	if container == nil {
		return nil, fmt.Errorf("mirror citations for %s: %w", id, dom.ErrNoContainer)
	}

	panel := dom.FindByAttr(doc.Body(), dom.AttrCitationsFor, id)
	if panel == nil {
		panel = dom.NewElement(atom.Aside, dom.AttrCitationsFor, id)
		doc.AppendChild(doc.Body(), panel)
	}

	st := t.State()
	doc.SetAttr(panel, "data-expanded", strconv.FormatBool(st.Expanded))

	var cards []*html.Node
	if st.Expanded {
		for _, r := range t.Visible() {
			attrs := []string{
				"id", citation.CardID(id, r.Index),
				// Lists are dense (citation.ValidateList), so the 0-based
				// position is Index-1.
				dom.AttrCitationIndex, strconv.Itoa(r.Index-1),
			}
			if r.Index == st.ActiveIndex {
				attrs = append(attrs, "data-active", "true")
			}
			card := dom.NewElement(atom.Div, attrs...)
			link := dom.NewElement(atom.A, "href", r.URL)
			link.AppendChild(dom.NewText(r.DisplayTitle()))
			card.AppendChild(link)
			cards = append(cards, card)
		}
	}
	doc.ReplaceChildren(panel, cards...)
	return panel, nil
}

// RemoveMirror deletes the citations element for a message, if any.
func RemoveMirror(doc *dom.Document, messageID string) {
	if panel := dom.FindByAttr(doc.Body(), dom.AttrCitationsFor, messageID); panel != nil {
		doc.RemoveChild(doc.Body(), panel)
	}
}
