// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the interactive chat view of the ragchat TUI.
//
// This file implements streaming optimization for smooth, flicker-free
// rendering while text streams in. The StreamingBuffer holds the latest
// cumulative raw snapshot and gates how often the view re-renders it.
package chat

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// STREAMING BUFFER
// =============================================================================

// StreamingBuffer rate-limits rendering of streamed text. Every raw
// snapshot replaces the previous one (the stream republishes the whole
// accumulated buffer), and the pending snapshot is released either when:
//  1. Enough snapshots have accumulated since the last flush (e.g. 15)
//  2. Enough time has passed since the last flush (e.g. 33ms for 30fps)
//
// This prevents excessive rendering (>1000fps) which causes flicker and
// high CPU usage, while keeping visual updates smooth.
//
// Thread-safety: all operations are mutex-protected since snapshots
// arrive on the stream goroutine while flushes happen in the main
// Bubble Tea loop.
type StreamingBuffer struct {
	mu          sync.Mutex
	snapshot    string
	dirty       bool
	updateCount int
	lastFlush   time.Time

	// Configuration
	batchSize  int           // Snapshots per forced flush (default: 15)
	maxFPS     int           // Max frames per second (default: 30)
	minFlushMs time.Duration // Min time between flushes (1000/maxFPS)
}

// NewStreamingBuffer creates a streaming buffer with default settings:
// batch size 15, max 30fps (~33ms between renders).
func NewStreamingBuffer() *StreamingBuffer {
	const (
		defaultBatchSize = 15
		defaultMaxFPS    = 30
	)

	return &StreamingBuffer{
		batchSize:  defaultBatchSize,
		maxFPS:     defaultMaxFPS,
		minFlushMs: time.Duration(1000/defaultMaxFPS) * time.Millisecond,
		lastFlush:  time.Now(),
	}
}

// NewStreamingBufferWithConfig creates a streaming buffer with custom
// settings. Out-of-range values fall back to the defaults.
func NewStreamingBufferWithConfig(batchSize, maxFPS int) *StreamingBuffer {
	if batchSize <= 0 {
		batchSize = 15
	}
	if maxFPS <= 0 || maxFPS > 60 {
		maxFPS = 30
	}

	return &StreamingBuffer{
		batchSize:  batchSize,
		maxFPS:     maxFPS,
		minFlushMs: time.Duration(1000/maxFPS) * time.Millisecond,
		lastFlush:  time.Now(),
	}
}

// Write stores the latest cumulative snapshot. Called from the stream
// goroutine; later snapshots supersede earlier ones.
func (sb *StreamingBuffer) Write(raw string) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	sb.snapshot = raw
	sb.dirty = true
	sb.updateCount++
}

// Flush returns the pending snapshot if the buffer should be rendered.
// Returns (snapshot, true) when either the batch or time threshold was
// reached, (_, false) otherwise. Called from the main Bubble Tea loop.
func (sb *StreamingBuffer) Flush() (string, bool) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if !sb.dirty || !sb.shouldFlushLocked() {
		return "", false
	}

	sb.dirty = false
	sb.updateCount = 0
	sb.lastFlush = time.Now()
	return sb.snapshot, true
}

// ShouldFlush reports whether a render is due (time or count based).
func (sb *StreamingBuffer) ShouldFlush() bool {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.dirty && sb.shouldFlushLocked()
}

// shouldFlushLocked checks flush conditions; the caller holds the lock.
func (sb *StreamingBuffer) shouldFlushLocked() bool {
	if sb.updateCount >= sb.batchSize {
		return true
	}
	return time.Since(sb.lastFlush) >= sb.minFlushMs
}

// Reset clears the buffer without flushing. Use when canceling a turn
// or starting a new one.
func (sb *StreamingBuffer) Reset() {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	sb.snapshot = ""
	sb.dirty = false
	sb.updateCount = 0
	sb.lastFlush = time.Now()
}

// Pending returns the number of snapshots received since the last flush.
func (sb *StreamingBuffer) Pending() int {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.updateCount
}

// ForceFlush returns the pending snapshot regardless of thresholds.
// Use when a turn completes so the final raw text is rendered before
// the processed result replaces it.
func (sb *StreamingBuffer) ForceFlush() (string, bool) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if !sb.dirty {
		return "", false
	}

	sb.dirty = false
	sb.updateCount = 0
	sb.lastFlush = time.Now()
	return sb.snapshot, true
}

// GetConfig returns the current buffer configuration.
func (sb *StreamingBuffer) GetConfig() (batchSize, maxFPS int, minFlushMs time.Duration) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.batchSize, sb.maxFPS, sb.minFlushMs
}

// SetBatchSize updates the snapshot-count threshold.
func (sb *StreamingBuffer) SetBatchSize(size int) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	if size > 0 {
		sb.batchSize = size
	}
}

// SetMaxFPS updates the maximum render rate.
func (sb *StreamingBuffer) SetMaxFPS(fps int) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	if fps > 0 && fps <= 60 {
		sb.maxFPS = fps
		sb.minFlushMs = time.Duration(1000/fps) * time.Millisecond
	}
}

// =============================================================================
// STREAMING TICK COMMAND
// =============================================================================

// streamTickCmd creates a tea.Cmd that sends StreamTickMsg at 30fps
// while a turn is streaming.
func streamTickCmd() tea.Cmd {
	return tea.Tick(33*time.Millisecond, func(t time.Time) tea.Msg {
		return StreamTickMsg{Time: t}
	})
}
