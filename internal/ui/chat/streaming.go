// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file implements streaming optimization for smooth, flicker-free
// rendering while a response streams in. The StreamingBuffer batches tokens
// and releases them at a capped frame rate, so a fast model cannot force
// the terminal to redraw thousands of times per second.
package chat

import (
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/time/rate"
)

// =============================================================================
// STREAMING BUFFER
// =============================================================================

// StreamingBuffer batches streamed tokens for rendering.
// Tokens accumulate in the buffer and are flushed when either:
//  1. The batch size threshold is reached (default 15 tokens)
//  2. The frame-rate limiter grants a render slot (default 30fps)
//
// Thread-safety: the stream goroutine writes while the Bubble Tea loop
// flushes, so all operations hold the mutex.
type StreamingBuffer struct {
	mu         sync.Mutex
	buffer     strings.Builder
	tokenCount int

	batchSize  int           // Tokens per batch
	maxFPS     int           // Max frames per second
	minFlushMs time.Duration // Frame interval (1000ms / maxFPS)
	frames     *rate.Limiter // Grants one time-based flush per frame interval
}

// NewStreamingBuffer creates a streaming buffer with default settings:
// batch size 15 and 30fps, giving a ~33ms frame interval.
func NewStreamingBuffer() *StreamingBuffer {
	return NewStreamingBufferWithConfig(15, 30)
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

	interval := time.Duration(1000/maxFPS) * time.Millisecond
	frames := rate.NewLimiter(rate.Every(interval), 1)
	// Drain the initial token so the first time-based flush waits a full
	// frame interval instead of firing immediately.
	frames.Allow()

	return &StreamingBuffer{
		batchSize:  batchSize,
		maxFPS:     maxFPS,
		minFlushMs: interval,
		frames:     frames,
	}
}

// Write adds a token to the buffer. Called from the stream goroutine.
func (sb *StreamingBuffer) Write(token string) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	sb.buffer.WriteString(token)
	sb.tokenCount++
}

// Flush returns accumulated content if a flush threshold has been reached.
// Returns (content, true) when the batch size or the frame interval allows
// a render, and ("", false) otherwise. Called from the Bubble Tea loop.
func (sb *StreamingBuffer) Flush() (string, bool) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if sb.buffer.Len() == 0 {
		return "", false
	}

	if sb.tokenCount >= sb.batchSize {
		return sb.drainLocked(), true
	}

	// Allow consumes the frame slot, so the next time-based flush waits
	// another full interval.
	if sb.frames.Allow() {
		return sb.drainLocked(), true
	}

	return "", false
}

// ShouldFlush reports whether a flush would succeed, without consuming the
// frame slot. Thread-safe.
func (sb *StreamingBuffer) ShouldFlush() bool {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if sb.buffer.Len() == 0 {
		return false
	}
	if sb.tokenCount >= sb.batchSize {
		return true
	}
	return sb.frames.Tokens() >= 1
}

// ForceFlush immediately flushes all buffered content regardless of
// thresholds. Use this when a stream completes so no tokens are lost.
// Thread-safe.
func (sb *StreamingBuffer) ForceFlush() (string, bool) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if sb.buffer.Len() == 0 {
		return "", false
	}

	return sb.drainLocked(), true
}

// drainLocked extracts the buffered content and resets counters.
// Caller must hold the mutex.
func (sb *StreamingBuffer) drainLocked() string {
	content := sb.buffer.String()
	sb.buffer.Reset()
	sb.tokenCount = 0
	return content
}

// Reset clears the buffer without flushing. Use this when starting a new
// message. Thread-safe.
func (sb *StreamingBuffer) Reset() {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	sb.buffer.Reset()
	sb.tokenCount = 0
}

// Pending returns the number of tokens waiting to be flushed. Thread-safe.
func (sb *StreamingBuffer) Pending() int {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.tokenCount
}

// GetConfig returns the current buffer configuration. Thread-safe.
func (sb *StreamingBuffer) GetConfig() (batchSize, maxFPS int, minFlushMs time.Duration) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.batchSize, sb.maxFPS, sb.minFlushMs
}

// =============================================================================
// STREAMING TICK COMMAND
// =============================================================================

// streamTickCmd creates a tea.Cmd that sends StreamTickMsg at ~30fps.
// The tick loop runs only while a stream is active; each tick drains the
// buffer into the viewport.
func streamTickCmd() tea.Cmd {
	return tea.Tick(33*time.Millisecond, func(t time.Time) tea.Msg {
		return StreamTickMsg{Time: t}
	})
}
