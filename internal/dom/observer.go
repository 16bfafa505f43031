// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dom

import "golang.org/x/net/html"

// =============================================================================
// MUTATION RECORDS
// =============================================================================

// MutationType is the kind of change a record describes.
type MutationType string

const (
	ChildList     MutationType = "childList"
	Attributes    MutationType = "attributes"
	CharacterData MutationType = "characterData"
)

// MutationRecord describes one change to the document.
type MutationRecord struct {
	Type          MutationType
	Target        *html.Node
	AddedNodes    []*html.Node
	RemovedNodes  []*html.Node
	AttributeName string
}

// ObserveOptions selects which records an observation receives.
// Subtree extends ChildList, Attributes and CharacterData to descendants of
// the observed node.
type ObserveOptions struct {
	ChildList     bool
	Attributes    bool
	CharacterData bool
	Subtree       bool
}

func (o ObserveOptions) wants(t MutationType) bool {
	switch t {
	case ChildList:
		return o.ChildList
	case Attributes:
		return o.Attributes
	case CharacterData:
		return o.CharacterData
	}
	return false
}

// =============================================================================
// OBSERVER
// =============================================================================

// MutationCallback receives the records produced by one document operation.
type MutationCallback func(records []MutationRecord, observer *Observer)

// Observer reports document changes under the nodes it observes.
// Records are delivered synchronously at the end of each mutating operation.
type Observer struct {
	doc          *Document
	callback     MutationCallback
	observations []observation
}

type observation struct {
	target *html.Node
	opts   ObserveOptions
}

// NewObserver creates an observer for doc. It receives nothing until Observe
// is called.
func NewObserver(doc *Document, callback MutationCallback) *Observer {
	return &Observer{doc: doc, callback: callback}
}

// Observe starts (or updates) observation of target with opts.
func (o *Observer) Observe(target *html.Node, opts ObserveOptions) {
	if target == nil {
		return
	}
	for i := range o.observations {
		if o.observations[i].target == target {
			o.observations[i].opts = opts
			return
		}
	}
	if len(o.observations) == 0 {
		o.doc.observers = append(o.doc.observers, o)
	}
	o.observations = append(o.observations, observation{target: target, opts: opts})
}

// Disconnect stops all observation. Safe to call more than once.
func (o *Observer) Disconnect() {
	o.observations = nil
	obs := o.doc.observers
	for i, other := range obs {
		if other == o {
			o.doc.observers = append(obs[:i:i], obs[i+1:]...)
			return
		}
	}
}

func (o *Observer) matches(rec MutationRecord) bool {
	for _, ob := range o.observations {
		if !ob.opts.wants(rec.Type) {
			continue
		}
		if rec.Target == ob.target {
			return true
		}
		if ob.opts.Subtree && Contains(ob.target, rec.Target) {
			return true
		}
	}
	return false
}

// notify delivers rec to every observer whose observations match it.
func (d *Document) notify(rec MutationRecord) {
	if len(d.observers) == 0 {
		return
	}
	// Callbacks may disconnect observers; iterate over a snapshot.
	snapshot := append([]*Observer(nil), d.observers...)
	for _, o := range snapshot {
		if o.callback == nil || !o.matches(rec) {
			continue
		}
		o.callback([]MutationRecord{rec}, o)
	}
}
