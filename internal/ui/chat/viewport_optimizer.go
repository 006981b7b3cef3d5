// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file implements viewport optimization. During streaming the viewport
// content is rebuilt on every tick, but most rebuilds produce identical
// output (ticks between flushes, repeated spinner frames). The optimizer
// hashes the rendered content and skips SetContent calls that would not
// change anything on screen.
package chat

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// =============================================================================
// VIEWPORT OPTIMIZER
// =============================================================================

// ViewportOptimizer skips redundant viewport updates by hashing content.
// SHA-256 is fast enough for typical conversation sizes (well under 1ms)
// and, unlike a length check, catches same-length edits.
//
// Thread-safety: all operations are protected by a mutex.
type ViewportOptimizer struct {
	mu              sync.RWMutex
	lastContentHash string
	lastUpdateTime  time.Time
	dirty           bool
	updateCount     uint64
	skipCount       uint64
}

// NewViewportOptimizer creates a new viewport optimizer.
func NewViewportOptimizer() *ViewportOptimizer {
	return &ViewportOptimizer{
		lastUpdateTime: time.Now(),
		dirty:          true, // Start dirty to force the initial render
	}
}

// ShouldUpdate returns true if the viewport needs to be redrawn with
// newContent. The first call always returns true. Thread-safe.
func (vo *ViewportOptimizer) ShouldUpdate(newContent string) bool {
	vo.mu.Lock()
	defer vo.mu.Unlock()

	vo.updateCount++

	if vo.updateCount == 1 {
		vo.lastContentHash = hashContent(newContent)
		vo.lastUpdateTime = time.Now()
		vo.dirty = true
		return true
	}

	newHash := hashContent(newContent)
	if newHash == vo.lastContentHash {
		vo.skipCount++
		return false
	}

	vo.lastContentHash = newHash
	vo.lastUpdateTime = time.Now()
	vo.dirty = true
	return true
}

// MarkClean marks the viewport as up-to-date after a render. Thread-safe.
func (vo *ViewportOptimizer) MarkClean() {
	vo.mu.Lock()
	defer vo.mu.Unlock()
	vo.dirty = false
}

// IsDirty returns true if the viewport has pending changes. Thread-safe.
func (vo *ViewportOptimizer) IsDirty() bool {
	vo.mu.RLock()
	defer vo.mu.RUnlock()
	return vo.dirty
}

// Reset clears the change-tracking state. Use this when clearing the
// conversation or resuming a session. Counters survive for metrics.
// Thread-safe.
func (vo *ViewportOptimizer) Reset() {
	vo.mu.Lock()
	defer vo.mu.Unlock()

	vo.lastContentHash = ""
	vo.lastUpdateTime = time.Now()
	vo.dirty = true
}

// ForceUpdate makes the next ShouldUpdate call return true regardless of
// content. Use this after a resize, where the same content renders at a
// different width. Thread-safe.
func (vo *ViewportOptimizer) ForceUpdate() {
	vo.mu.Lock()
	defer vo.mu.Unlock()

	vo.lastContentHash = ""
	vo.dirty = true
}

// GetStats returns (totalUpdates, skippedUpdates, efficiency%). Thread-safe.
func (vo *ViewportOptimizer) GetStats() (total, skipped uint64, efficiency float64) {
	vo.mu.RLock()
	defer vo.mu.RUnlock()

	total = vo.updateCount
	skipped = vo.skipCount

	if total > 0 {
		efficiency = float64(skipped) / float64(total) * 100.0
	}

	return
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// hashContent computes a SHA-256 hash of the content for change detection.
func hashContent(content string) string {
	if content == "" {
		return ""
	}

	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}
