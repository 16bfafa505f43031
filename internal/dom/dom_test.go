// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dom

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// =============================================================================
// DOCUMENT TESTS
// =============================================================================

func TestMountAndContainer(t *testing.T) {
	doc := NewDocument()
	assert.Nil(t, doc.Container("m1"))

	c := doc.Mount("m1")
	require.NotNil(t, c)
	assert.Same(t, c, doc.Container("m1"))
	assert.Same(t, c, doc.Mount("m1"), "mounting twice returns the same container")

	v, ok := Attr(c, AttrMessageID)
	assert.True(t, ok)
	assert.Equal(t, "m1", v)

	assert.True(t, doc.Unmount("m1"))
	assert.False(t, doc.Unmount("m1"))
	assert.Nil(t, doc.Container("m1"))
}

func TestSetContent(t *testing.T) {
	doc := NewDocument()
	c := doc.Mount("m1")

	require.NoError(t, doc.SetContent("m1", `<p>a <a href="#cite-1">1</a></p>`))
	anchors := QueryAnchors(c, "#cite-")
	require.Len(t, anchors, 1)
	assert.Equal(t, "1", TextContent(anchors[0]))

	require.NoError(t, doc.SetContent("m1", `<p>replaced</p>`))
	assert.Empty(t, QueryAnchors(c, "#cite-"))
	assert.Equal(t, "replaced", TextContent(c))

	err := doc.SetContent("missing", "<p></p>")
	assert.True(t, errors.Is(err, ErrNoContainer))
}

func TestAppendChild(t *testing.T) {
	doc := NewDocument()
	c := doc.Mount("m1")

	var got []MutationRecord
	obs := NewObserver(doc, func(records []MutationRecord, _ *Observer) {
		got = append(got, records...)
	})
	obs.Observe(c, ObserveOptions{ChildList: true})
	defer obs.Disconnect()

	for _, frag := range []string{"<p>one</p>", "<p>two</p>"} {
		nodes, err := ParseFragment(frag)
		require.NoError(t, err)
		for _, n := range nodes {
			doc.AppendChild(c, n)
		}
	}
	assert.Equal(t, "onetwo", TextContent(c))
	assert.Contains(t, doc.String(), `<div data-message-id="m1"><p>one</p><p>two</p></div>`)
	require.Len(t, got, 2)
	assert.Same(t, c, got[0].Target)
	assert.Len(t, got[1].AddedNodes, 1)
}

// =============================================================================
// OBSERVER TESTS
// =============================================================================

func TestObserver_ChildListSubtree(t *testing.T) {
	doc := NewDocument()
	c := doc.Mount("m1")

	var got []MutationRecord
	obs := NewObserver(doc, func(records []MutationRecord, _ *Observer) {
		got = append(got, records...)
	})
	obs.Observe(c, ObserveOptions{ChildList: true, Subtree: true})

	require.NoError(t, doc.SetContent("m1", "<p>x</p>"))
	require.Len(t, got, 1)
	assert.Equal(t, ChildList, got[0].Type)
	assert.Same(t, c, got[0].Target)
	assert.Len(t, got[0].AddedNodes, 1)

	// Nested change is delivered through Subtree.
	p := c.FirstChild
	doc.AppendChild(p, NewText("y"))
	assert.Len(t, got, 2)

	// Attribute and text changes are not requested.
	doc.SetAttr(p, "class", "x")
	doc.SetText(p.FirstChild, "z")
	assert.Len(t, got, 2)
}

func TestObserver_ScopedToTarget(t *testing.T) {
	doc := NewDocument()
	doc.Mount("m1")
	doc.Mount("m2")

	calls := 0
	obs := NewObserver(doc, func([]MutationRecord, *Observer) { calls++ })
	obs.Observe(doc.Container("m1"), ObserveOptions{ChildList: true, Subtree: true})

	require.NoError(t, doc.SetContent("m2", "<p>other</p>"))
	assert.Equal(t, 0, calls)
	require.NoError(t, doc.SetContent("m1", "<p>mine</p>"))
	assert.Equal(t, 1, calls)
}

func TestObserver_AttributesAndCharacterData(t *testing.T) {
	doc := NewDocument()
	c := doc.Mount("m1")
	require.NoError(t, doc.SetContent("m1", "<p>x</p>"))

	var types []MutationType
	obs := NewObserver(doc, func(records []MutationRecord, _ *Observer) {
		for _, r := range records {
			types = append(types, r.Type)
		}
	})
	obs.Observe(c, ObserveOptions{Attributes: true, CharacterData: true, Subtree: true})

	p := c.FirstChild
	doc.SetAttr(p, "class", "a")
	doc.SetAttr(p, "class", "a") // unchanged, no record
	doc.SetText(p.FirstChild, "y")
	assert.Equal(t, []MutationType{Attributes, CharacterData}, types)
}

func TestObserver_Disconnect(t *testing.T) {
	doc := NewDocument()
	c := doc.Mount("m1")

	calls := 0
	obs := NewObserver(doc, func([]MutationRecord, *Observer) { calls++ })
	obs.Observe(c, ObserveOptions{ChildList: true})
	assert.Len(t, obs.observations, 1)

	obs.Disconnect()
	obs.Disconnect()
	assert.Empty(t, obs.observations)

	require.NoError(t, doc.SetContent("m1", "<p>x</p>"))
	assert.Equal(t, 0, calls)
	assert.Empty(t, doc.observers)
}

func TestObserver_DisconnectInsideCallback(t *testing.T) {
	doc := NewDocument()
	c := doc.Mount("m1")

	calls := 0
	obs := NewObserver(doc, func(_ []MutationRecord, o *Observer) {
		calls++
		o.Disconnect()
	})
	obs.Observe(c, ObserveOptions{ChildList: true})

	require.NoError(t, doc.SetContent("m1", "<p>a</p>"))
	require.NoError(t, doc.SetContent("m1", "<p>b</p>"))
	assert.Equal(t, 1, calls)
}

// =============================================================================
// EVENT TESTS
// =============================================================================

func TestDispatch_Bubbles(t *testing.T) {
	doc := NewDocument()
	c := doc.Mount("m1")
	require.NoError(t, doc.SetContent("m1", `<p><a href="#cite-1"><em>1</em></a></p>`))
	em := FindByAttr(c, "href", "#cite-1").FirstChild

	var order []string
	doc.AddEventListener(doc.Body(), EventClick, func(e *Event) {
		order = append(order, "body")
		assert.Same(t, em, e.Target)
		assert.Same(t, doc.Body(), e.CurrentTarget)
		e.PreventDefault()
	})
	doc.AddEventListener(c, EventClick, func(*Event) { order = append(order, "container") })
	doc.AddEventListener(c, "keydown", func(*Event) { order = append(order, "wrong type") })

	ev := doc.Dispatch(em, EventClick)
	assert.True(t, ev.DefaultPrevented())
	assert.Equal(t, []string{"container", "body"}, order)
}

func TestDispatch_StopPropagation(t *testing.T) {
	doc := NewDocument()
	c := doc.Mount("m1")

	bodyCalls := 0
	doc.AddEventListener(c, EventClick, func(e *Event) { e.StopPropagation() })
	doc.AddEventListener(doc.Body(), EventClick, func(*Event) { bodyCalls++ })

	ev := doc.Dispatch(c, EventClick)
	assert.False(t, ev.DefaultPrevented())
	assert.Equal(t, 0, bodyCalls)
}

func TestAddEventListener_Remove(t *testing.T) {
	doc := NewDocument()
	calls := 0
	remove := doc.AddEventListener(doc.Body(), EventClick, func(*Event) { calls++ })
	assert.Equal(t, 1, doc.ListenerCount())

	remove()
	remove()
	assert.Equal(t, 0, doc.ListenerCount())

	doc.Dispatch(doc.Body(), EventClick)
	assert.Equal(t, 0, calls)
}

// =============================================================================
// QUERY TESTS
// =============================================================================

func TestQueries(t *testing.T) {
	nodes, err := ParseFragment(`<div id="x"><a href="#cite-1">1</a><a href="https://e.test">e</a><span><a href="#cite-group-2-3">2,3</a></span></div>`)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	root := nodes[0]

	assert.Len(t, Anchors(root), 3)
	cites := QueryAnchors(root, "#cite-")
	require.Len(t, cites, 2)
	assert.Equal(t, "2,3", TextContent(cites[1]))

	assert.Same(t, root, FindByAttr(root, "id", "x"))
	assert.Same(t, root, ClosestWithAttr(cites[1].FirstChild, "id"))
	assert.Nil(t, Closest(cites[0], func(n *html.Node) bool { return n.DataAtom == atom.Table }))
	assert.True(t, Contains(root, cites[1].FirstChild))
	assert.False(t, Contains(cites[0], root))

	_, ok := Attr(nil, "href")
	assert.False(t, ok)
}

func TestNewElement(t *testing.T) {
	n := NewElement(atom.Div, "id", "card", AttrCitationIndex, "2")
	v, _ := Attr(n, AttrCitationIndex)
	assert.Equal(t, "2", v)
	assert.Equal(t, "div", n.Data)
}
