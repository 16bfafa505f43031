// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dom

import "golang.org/x/net/html"

// Event types dispatched by the chat shell.
const (
	EventClick = "click"
)

// Event is a dispatched DOM event. It bubbles from Target to the root.
type Event struct {
	Type          string
	Target        *html.Node
	CurrentTarget *html.Node

	defaultPrevented bool
	stopped          bool
}

// PreventDefault marks the event's default action as cancelled.
func (e *Event) PreventDefault() { e.defaultPrevented = true }

// DefaultPrevented reports whether a listener called PreventDefault.
func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }

// StopPropagation stops the event from reaching further ancestors. Other
// listeners on the current node still run.
func (e *Event) StopPropagation() { e.stopped = true }

// Listener handles a dispatched event.
type Listener func(e *Event)

type listenerEntry struct {
	id  int
	typ string
	fn  Listener
}

// AddEventListener registers fn for events of typ reaching node, either as
// the target or by bubbling. The returned func removes the registration and
// is safe to call more than once.
func (d *Document) AddEventListener(node *html.Node, typ string, fn Listener) (remove func()) {
	d.nextID++
	id := d.nextID
	d.listeners[node] = append(d.listeners[node], &listenerEntry{id: id, typ: typ, fn: fn})

	return func() {
		entries := d.listeners[node]
		for i, e := range entries {
			if e.id == id {
				entries = append(entries[:i:i], entries[i+1:]...)
				break
			}
		}
		if len(entries) == 0 {
			delete(d.listeners, node)
			return
		}
		d.listeners[node] = entries
	}
}

// ListenerCount returns the number of listeners registered on the document.
func (d *Document) ListenerCount() int {
	n := 0
	for _, entries := range d.listeners {
		n += len(entries)
	}
	return n
}

// Dispatch fires an event of typ at target and bubbles it through every
// ancestor up to the document root. The returned event reports whether any
// listener prevented the default action.
func (d *Document) Dispatch(target *html.Node, typ string) *Event {
	ev := &Event{Type: typ, Target: target}
	for n := target; n != nil && !ev.stopped; n = n.Parent {
		entries := d.listeners[n]
		if len(entries) == 0 {
			continue
		}
		ev.CurrentTarget = n
		// Listeners may remove themselves while running.
		for _, e := range append([]*listenerEntry(nil), entries...) {
			if e.typ == typ {
				e.fn(ev)
			}
		}
	}
	ev.CurrentTarget = nil
	return ev
}
