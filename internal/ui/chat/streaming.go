// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"sync"
	"time"
)

// =============================================================================
// STREAMING BUFFER
// =============================================================================

// StreamingBuffer batches streamed chunks so the message is re-rendered at a
// capped rate instead of once per chunk. Chunks are released when either:
// 1. The batch size threshold is reached (e.g., 15 chunks)
// 2. Enough time has passed since the last flush (e.g., 33ms for 30fps)
//
// Every re-render replaces the message DOM, so batching here also bounds how
// many mutation batches the citation tracker sees.
type StreamingBuffer struct {
	mu        sync.Mutex
	chunks    []string
	lastFlush time.Time
	now       func() time.Time

	// Configuration
	batchSize     int           // Chunks per batch (default: 15)
	maxFPS        int           // Max flushes per second (default: 30)
	minFlushDelay time.Duration // Min time between flushes (1s/maxFPS)
}

const (
	defaultBatchSize = 15
	defaultMaxFPS    = 30
)

// NewStreamingBuffer creates a buffer with the default batch size and rate.
func NewStreamingBuffer() *StreamingBuffer {
	return NewStreamingBufferWithConfig(defaultBatchSize, defaultMaxFPS)
}

// NewStreamingBufferWithConfig creates a buffer with custom settings.
// Out-of-range values fall back to the defaults.
func NewStreamingBufferWithConfig(batchSize, maxFPS int) *StreamingBuffer {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if maxFPS <= 0 || maxFPS > 120 {
		maxFPS = defaultMaxFPS
	}
	sb := &StreamingBuffer{
		batchSize:     batchSize,
		maxFPS:        maxFPS,
		minFlushDelay: time.Second / time.Duration(maxFPS),
		now:           time.Now,
	}
	sb.lastFlush = sb.now()
	return sb
}

// withClock replaces the time source. Used by tests.
func (sb *StreamingBuffer) withClock(now func() time.Time) *StreamingBuffer {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.now = now
	sb.lastFlush = now()
	return sb
}

// Write adds a chunk to the buffer.
func (sb *StreamingBuffer) Write(chunk string) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.chunks = append(sb.chunks, chunk)
}

// Flush returns the buffered chunks if a threshold has been reached.
func (sb *StreamingBuffer) Flush() ([]string, bool) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if !sb.shouldFlushLocked() {
		return nil, false
	}
	return sb.takeLocked(), true
}

// ForceFlush returns every buffered chunk regardless of thresholds.
// Use this when a stream completes.
func (sb *StreamingBuffer) ForceFlush() ([]string, bool) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if len(sb.chunks) == 0 {
		return nil, false
	}
	return sb.takeLocked(), true
}

func (sb *StreamingBuffer) takeLocked() []string {
	out := sb.chunks
	sb.chunks = nil
	sb.lastFlush = sb.now()
	return out
}

// shouldFlushLocked checks flush conditions (caller must hold lock).
func (sb *StreamingBuffer) shouldFlushLocked() bool {
	if len(sb.chunks) == 0 {
		return false
	}
	if len(sb.chunks) >= sb.batchSize {
		return true
	}
	return sb.now().Sub(sb.lastFlush) >= sb.minFlushDelay
}

// Reset drops buffered chunks. Use this when canceling a stream.
func (sb *StreamingBuffer) Reset() {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.chunks = nil
	sb.lastFlush = sb.now()
}

// Pending returns the number of chunks waiting to be flushed.
func (sb *StreamingBuffer) Pending() int {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return len(sb.chunks)
}

// GetConfig returns the current configuration.
func (sb *StreamingBuffer) GetConfig() (batchSize, maxFPS int, minFlushDelay time.Duration) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.batchSize, sb.maxFPS, sb.minFlushDelay
}
