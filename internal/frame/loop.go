// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package frame provides the animation-frame and timer scheduler for the TUI.
//
// Work is queued with RequestFrame or AfterFunc and runs when Tick is called.
// In the running program Tick is driven by FrameMsg values produced by Cmd;
// in tests it is driven by hand with a fake clock.
//
// A Loop is not safe for concurrent use. It lives on the Bubble Tea update
// goroutine together with everything it schedules.
package frame

import (
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	// DefaultFPS is the frame rate used when none is configured.
	DefaultFPS = 60

	// tickSlack absorbs timer jitter when matching a delivered tick to the
	// wake-up it was armed for.
	tickSlack = time.Millisecond
)

// FrameMsg is delivered to the Bubble Tea model when the loop should tick.
type FrameMsg struct {
	Time time.Time
}

// ID identifies a requested frame callback.
type ID int

// Scheduler is the subset of Loop used by controllers that only queue work.
type Scheduler interface {
	RequestFrame(fn func(now time.Time)) ID
	CancelFrame(id ID)
	AfterFunc(d time.Duration, fn func()) *Timer
}

// =============================================================================
// LOOP
// =============================================================================

type frameEntry struct {
	id ID
	fn func(now time.Time)
}

// Loop schedules frame callbacks and one-shot timers.
type Loop struct {
	interval time.Duration
	clock    func() time.Time

	nextID ID
	frames []frameEntry

	timers   []*Timer
	timerSeq int

	armed   bool
	armedAt time.Time
}

// Option configures a Loop.
type Option func(*Loop)

// WithClock sets the time source used by AfterFunc and Cmd.
func WithClock(clock func() time.Time) Option {
	return func(l *Loop) { l.clock = clock }
}

// New creates a loop that runs frames at most fps times per second.
// A non-positive fps selects DefaultFPS.
func New(fps int, opts ...Option) *Loop {
	if fps <= 0 {
		fps = DefaultFPS
	}
	l := &Loop{
		interval: time.Second / time.Duration(fps),
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Interval returns the frame interval.
func (l *Loop) Interval() time.Duration {
	return l.interval
}

// RequestFrame queues fn to run on the next tick. Callbacks queued while a
// tick is running wait for the following tick.
func (l *Loop) RequestFrame(fn func(now time.Time)) ID {
	l.nextID++
	l.frames = append(l.frames, frameEntry{id: l.nextID, fn: fn})
	return l.nextID
}

// CancelFrame removes a queued frame callback. Unknown ids are ignored.
func (l *Loop) CancelFrame(id ID) {
	for i, f := range l.frames {
		if f.id == id {
			l.frames = append(l.frames[:i:i], l.frames[i+1:]...)
			return
		}
	}
}

// AfterFunc runs fn on the first tick at or after d from now.
func (l *Loop) AfterFunc(d time.Duration, fn func()) *Timer {
	l.timerSeq++
	t := &Timer{
		loop:   l,
		due:    l.clock().Add(d),
		seq:    l.timerSeq,
		fn:     fn,
		active: true,
	}
	l.timers = append(l.timers, t)
	return t
}

// Pending returns the number of queued frames and active timers.
func (l *Loop) Pending() int {
	return len(l.frames) + len(l.timers)
}

// Tick runs the frames queued before the call and then every timer due at
// now, in due order. It returns the number of callbacks run.
func (l *Loop) Tick(now time.Time) int {
	if l.armed && !now.Before(l.armedAt.Add(-tickSlack)) {
		l.armed = false
	}

	ran := 0
	frames := l.frames
	l.frames = nil
	for _, f := range frames {
		f.fn(now)
		ran++
	}

	var due []*Timer
	kept := l.timers[:0]
	for _, t := range l.timers {
		if !t.due.After(now) {
			due = append(due, t)
		} else {
			kept = append(kept, t)
		}
	}
	l.timers = kept
	sort.Slice(due, func(i, j int) bool {
		if due[i].due.Equal(due[j].due) {
			return due[i].seq < due[j].seq
		}
		return due[i].due.Before(due[j].due)
	})
	for _, t := range due {
		if !t.active {
			continue
		}
		t.active = false
		t.fn()
		ran++
	}
	return ran
}

// Next reports how long until the loop has work, measured from now.
// It returns false when nothing is scheduled.
func (l *Loop) Next(now time.Time) (time.Duration, bool) {
	if len(l.frames) > 0 {
		return l.interval, true
	}
	if len(l.timers) == 0 {
		return 0, false
	}
	earliest := l.timers[0].due
	for _, t := range l.timers[1:] {
		if t.due.Before(earliest) {
			earliest = t.due
		}
	}
	wait := earliest.Sub(now)
	if wait < 0 {
		wait = 0
	}
	return wait, true
}

// Cmd returns the command that delivers the next FrameMsg, or nil when no
// work is scheduled or an earlier wake-up is already in flight.
func (l *Loop) Cmd() tea.Cmd {
	now := l.clock()
	wait, ok := l.Next(now)
	if !ok {
		return nil
	}
	at := now.Add(wait)
	if l.armed && !at.Before(l.armedAt) {
		return nil
	}
	l.armed = true
	l.armedAt = at
	return tea.Tick(wait, func(t time.Time) tea.Msg {
		return FrameMsg{Time: t}
	})
}

func (l *Loop) removeTimer(t *Timer) {
	for i, other := range l.timers {
		if other == t {
			l.timers = append(l.timers[:i:i], l.timers[i+1:]...)
			return
		}
	}
}

// =============================================================================
// TIMER
// =============================================================================

// Timer is a one-shot callback created by AfterFunc.
type Timer struct {
	loop   *Loop
	due    time.Time
	seq    int
	fn     func()
	active bool
}

// Stop cancels the timer. It returns false if the timer already ran or was
// already stopped.
func (t *Timer) Stop() bool {
	if t == nil || !t.active {
		return false
	}
	t.active = false
	t.loop.removeTimer(t)
	return true
}

// Active reports whether the timer is still waiting to run.
func (t *Timer) Active() bool {
	return t != nil && t.active
}

// Due returns the time the timer is scheduled for.
func (t *Timer) Due() time.Time {
	return t.due
}
