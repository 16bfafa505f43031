// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dom holds the rendered form of chat messages as an HTML node tree.
//
// Each message is mounted as a container element tagged with its message id.
// Rendered markdown is written into containers as HTML fragments. Every
// change is reported to interested observers as mutation records, and clicks
// are dispatched as bubbling events, so per-message controllers can watch and
// react to a message without polling it.
//
// A Document is not safe for concurrent use. All mutation, observation and
// event dispatch happens on the UI update goroutine.
package dom

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Attribute names that make up the message DOM contract.
const (
	AttrMessageID     = "data-message-id"
	AttrCitationsFor  = "data-citations-for"
	AttrCitationIndex = "data-citation-index"
)

// ErrNoContainer is returned when a message has no mounted container.
var ErrNoContainer = errors.New("message container not mounted")

// =============================================================================
// DOCUMENT
// =============================================================================

// Document is a live node tree of mounted messages.
type Document struct {
	root *html.Node
	body *html.Node

	observers []*Observer
	listeners map[*html.Node][]*listenerEntry
	nextID    int
}

// NewDocument returns an empty document with a body element.
func NewDocument() *Document {
	root := &html.Node{Type: html.DocumentNode}
	htmlEl := newElement(atom.Html)
	body := newElement(atom.Body)
	root.AppendChild(htmlEl)
	htmlEl.AppendChild(body)

	return &Document{
		root:      root,
		body:      body,
		listeners: make(map[*html.Node][]*listenerEntry),
	}
}

// Body returns the body element that message containers are mounted under.
func (d *Document) Body() *html.Node {
	return d.body
}

// Mount creates the container for a message and appends it to the body.
// Mounting an already-mounted message returns the existing container.
func (d *Document) Mount(messageID string) *html.Node {
	if c := d.Container(messageID); c != nil {
		return c
	}
	c := newElement(atom.Div)
	c.Attr = []html.Attribute{{Key: AttrMessageID, Val: messageID}}
	d.AppendChild(d.body, c)
	return c
}

// Unmount removes a message's container. Returns false if it was not mounted.
func (d *Document) Unmount(messageID string) bool {
	c := d.Container(messageID)
	if c == nil {
		return false
	}
	d.RemoveChild(d.body, c)
	return true
}

// Container returns the mounted container for a message, or nil.
func (d *Document) Container(messageID string) *html.Node {
	for c := d.body.FirstChild; c != nil; c = c.NextSibling {
		if v, ok := Attr(c, AttrMessageID); ok && v == messageID {
			return c
		}
	}
	return nil
}

// SetContent replaces the children of a message's container with the parsed
// HTML fragment. Observers receive a single childList record.
func (d *Document) SetContent(messageID, fragment string) error {
	c := d.Container(messageID)
	if c == nil {
		return fmt.Errorf("set content for %s: %w", messageID, ErrNoContainer)
	}
	nodes, err := ParseFragment(fragment)
	if err != nil {
		return fmt.Errorf("set content for %s: %w", messageID, err)
	}

	var removed []*html.Node
	for n := c.FirstChild; n != nil; {
		next := n.NextSibling
		c.RemoveChild(n)
		removed = append(removed, n)
		n = next
	}
	for _, n := range nodes {
		c.AppendChild(n)
	}
	d.notify(MutationRecord{Type: ChildList, Target: c, AddedNodes: nodes, RemovedNodes: removed})
	return nil
}

// AppendChild appends child to parent and reports a childList record.
// child must not already have a parent.
func (d *Document) AppendChild(parent, child *html.Node) {
	parent.AppendChild(child)
	d.notify(MutationRecord{Type: ChildList, Target: parent, AddedNodes: []*html.Node{child}})
}

// RemoveChild removes child from parent and reports a childList record.
func (d *Document) RemoveChild(parent, child *html.Node) {
	if child.Parent != parent {
		return
	}
	parent.RemoveChild(child)
	d.notify(MutationRecord{Type: ChildList, Target: parent, RemovedNodes: []*html.Node{child}})
}

// ReplaceChildren removes every child of parent and appends the given nodes,
// reporting one childList record.
func (d *Document) ReplaceChildren(parent *html.Node, nodes ...*html.Node) {
	var removed []*html.Node
	for n := parent.FirstChild; n != nil; {
		next := n.NextSibling
		parent.RemoveChild(n)
		removed = append(removed, n)
		n = next
	}
	for _, n := range nodes {
		parent.AppendChild(n)
	}
	if len(removed) == 0 && len(nodes) == 0 {
		return
	}
	d.notify(MutationRecord{Type: ChildList, Target: parent, AddedNodes: nodes, RemovedNodes: removed})
}

// SetAttr sets an attribute on an element and reports an attributes record.
func (d *Document) SetAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key && n.Attr[i].Namespace == "" {
			if n.Attr[i].Val == val {
				return
			}
			n.Attr[i].Val = val
			d.notify(MutationRecord{Type: Attributes, Target: n, AttributeName: key})
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
	d.notify(MutationRecord{Type: Attributes, Target: n, AttributeName: key})
}

// SetText replaces the data of a text node and reports a characterData record.
func (d *Document) SetText(n *html.Node, text string) {
	if n.Type != html.TextNode || n.Data == text {
		return
	}
	n.Data = text
	d.notify(MutationRecord{Type: CharacterData, Target: n})
}

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// String returns the document as HTML. Render errors yield "".
func (d *Document) String() string {
	var b strings.Builder
	if err := d.Render(&b); err != nil {
		return ""
	}
	return b.String()
}

// =============================================================================
// FRAGMENTS
// =============================================================================

// ParseFragment parses an HTML fragment in a <div> context and returns the
// detached top-level nodes.
func ParseFragment(fragment string) ([]*html.Node, error) {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), newElement(atom.Div))
	if err != nil {
		return nil, fmt.Errorf("parse fragment: %w", err)
	}
	return nodes, nil
}

// NewElement returns a detached element with the given tag and attributes,
// given as key/value pairs.
func NewElement(tag atom.Atom, attrs ...string) *html.Node {
	n := newElement(tag)
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

// NewText returns a detached text node.
func NewText(data string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: data}
}

func newElement(tag atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: tag.String(), DataAtom: tag}
}
