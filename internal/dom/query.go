// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Attr returns the value of an attribute on n.
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil || n.Type != html.ElementNode {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Key == key && a.Namespace == "" {
			return a.Val, true
		}
	}
	return "", false
}

// Walk visits n and its descendants in document order. Returning false from
// visit skips the node's children.
func Walk(n *html.Node, visit func(*html.Node) bool) {
	if n == nil {
		return
	}
	if !visit(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		Walk(c, visit)
	}
}

// FindByAttr returns the first element under root (inclusive) whose attribute
// key equals val, or nil.
func FindByAttr(root *html.Node, key, val string) *html.Node {
	var found *html.Node
	Walk(root, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if v, ok := Attr(n, key); ok && v == val {
			found = n
			return false
		}
		return true
	})
	return found
}

// Anchors returns every <a> element under root in document order.
func Anchors(root *html.Node) []*html.Node {
	var out []*html.Node
	Walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.A {
			out = append(out, n)
		}
		return true
	})
	return out
}

// QueryAnchors returns every <a> element under root whose href starts with
// prefix, in document order.
func QueryAnchors(root *html.Node, prefix string) []*html.Node {
	var out []*html.Node
	for _, a := range Anchors(root) {
		if href, ok := Attr(a, "href"); ok && strings.HasPrefix(href, prefix) {
			out = append(out, a)
		}
	}
	return out
}

// Closest returns n or its nearest ancestor matching match, or nil.
func Closest(n *html.Node, match func(*html.Node) bool) *html.Node {
	for ; n != nil; n = n.Parent {
		if match(n) {
			return n
		}
	}
	return nil
}

// ClosestWithAttr returns n or its nearest ancestor carrying attribute key.
func ClosestWithAttr(n *html.Node, key string) *html.Node {
	return Closest(n, func(n *html.Node) bool {
		_, ok := Attr(n, key)
		return ok
	})
}

// Contains reports whether n is ancestor itself or one of its descendants.
func Contains(ancestor, n *html.Node) bool {
	for ; n != nil; n = n.Parent {
		if n == ancestor {
			return true
		}
	}
	return false
}

// TextContent returns the concatenated text of n and its descendants.
func TextContent(n *html.Node) string {
	var b strings.Builder
	Walk(n, func(n *html.Node) bool {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		return true
	})
	return b.String()
}
