// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package frame

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced time source.
type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestLoop() (*Loop, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	return New(60, WithClock(clock.Now)), clock
}

func TestRequestFrame_RunsOnNextTick(t *testing.T) {
	l, clock := newTestLoop()
	var ran []time.Time
	l.RequestFrame(func(now time.Time) { ran = append(ran, now) })
	assert.Equal(t, 1, l.Pending())

	clock.Advance(16 * time.Millisecond)
	assert.Equal(t, 1, l.Tick(clock.Now()))
	require.Len(t, ran, 1)
	assert.Equal(t, clock.Now(), ran[0])
	assert.Equal(t, 0, l.Pending())

	assert.Equal(t, 0, l.Tick(clock.Now()))
}

func TestRequestFrame_DuringTickWaits(t *testing.T) {
	l, clock := newTestLoop()
	count := 0
	var again func(time.Time)
	again = func(time.Time) {
		count++
		if count < 3 {
			l.RequestFrame(again)
		}
	}
	l.RequestFrame(again)

	l.Tick(clock.Now())
	assert.Equal(t, 1, count)
	l.Tick(clock.Now())
	assert.Equal(t, 2, count)
	l.Tick(clock.Now())
	assert.Equal(t, 3, count)
	assert.Equal(t, 0, l.Pending())
}

func TestCancelFrame(t *testing.T) {
	l, clock := newTestLoop()
	ran := false
	id := l.RequestFrame(func(time.Time) { ran = true })
	l.CancelFrame(id)
	l.CancelFrame(id)
	l.CancelFrame(999)
	l.Tick(clock.Now())
	assert.False(t, ran)
}

func TestAfterFunc(t *testing.T) {
	l, clock := newTestLoop()
	fired := 0
	timer := l.AfterFunc(3*time.Second, func() { fired++ })
	assert.True(t, timer.Active())

	clock.Advance(2999 * time.Millisecond)
	l.Tick(clock.Now())
	assert.Equal(t, 0, fired)

	clock.Advance(time.Millisecond)
	l.Tick(clock.Now())
	assert.Equal(t, 1, fired)
	assert.False(t, timer.Active())
	assert.False(t, timer.Stop())

	clock.Advance(time.Hour)
	l.Tick(clock.Now())
	assert.Equal(t, 1, fired)
}

func TestAfterFunc_Stop(t *testing.T) {
	l, clock := newTestLoop()
	fired := false
	timer := l.AfterFunc(time.Second, func() { fired = true })
	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())
	assert.Equal(t, 0, l.Pending())

	clock.Advance(2 * time.Second)
	l.Tick(clock.Now())
	assert.False(t, fired)
}

func TestAfterFunc_DueOrder(t *testing.T) {
	l, clock := newTestLoop()
	var order []string
	l.AfterFunc(2*time.Second, func() { order = append(order, "late") })
	l.AfterFunc(time.Second, func() { order = append(order, "early") })
	l.AfterFunc(time.Second, func() { order = append(order, "early-2") })

	clock.Advance(5 * time.Second)
	l.Tick(clock.Now())
	assert.Equal(t, []string{"early", "early-2", "late"}, order)
}

func TestAfterFunc_StopFromEarlierTimer(t *testing.T) {
	l, clock := newTestLoop()
	var second *Timer
	fired := false
	l.AfterFunc(time.Second, func() { second.Stop() })
	second = l.AfterFunc(2*time.Second, func() { fired = true })

	clock.Advance(3 * time.Second)
	l.Tick(clock.Now())
	assert.False(t, fired)
}

func TestNext(t *testing.T) {
	l, clock := newTestLoop()
	_, ok := l.Next(clock.Now())
	assert.False(t, ok)

	l.AfterFunc(500*time.Millisecond, func() {})
	wait, ok := l.Next(clock.Now())
	assert.True(t, ok)
	assert.Equal(t, 500*time.Millisecond, wait)

	l.RequestFrame(func(time.Time) {})
	wait, _ = l.Next(clock.Now())
	assert.Equal(t, l.Interval(), wait)

	clock.Advance(time.Second)
	l.Tick(clock.Now())
	_, ok = l.Next(clock.Now())
	assert.False(t, ok)
}

func TestCmd_ArmsOnce(t *testing.T) {
	l, clock := newTestLoop()
	assert.Nil(t, l.Cmd(), "no work, no command")

	l.AfterFunc(time.Second, func() {})
	require.NotNil(t, l.Cmd())
	assert.Nil(t, l.Cmd(), "later or equal wake-up already armed")

	// A frame needs an earlier wake-up than the armed timer.
	l.RequestFrame(func(time.Time) {})
	assert.NotNil(t, l.Cmd())

	clock.Advance(time.Second)
	l.Tick(clock.Now())
	assert.Nil(t, l.Cmd())
}

func TestNew_DefaultFPS(t *testing.T) {
	l := New(0)
	assert.Equal(t, time.Second/DefaultFPS, l.Interval())
}
