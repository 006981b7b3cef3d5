// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the llamachat TUI.
//
// This file defines animation primitives: spinner frame sets, the
// progress bar renderer used for the context-window gauge, and the
// streaming cursor. All frames are ASCII for maximum terminal
// compatibility.
package styles

import (
	"strings"
	"time"
)

// =============================================================================
// SPINNER ANIMATIONS
// =============================================================================

// SpinnerConfig holds the configuration for a spinner animation.
type SpinnerConfig struct {
	Frames []string
	FPS    int
}

// Duration returns the duration for each frame.
func (s SpinnerConfig) Duration() time.Duration {
	return time.Second / time.Duration(s.FPS)
}

// LineSpinner - Simple line rotation, shown while awaiting a response
var LineSpinner = SpinnerConfig{
	Frames: []string{"|", "/", "-", "\\"},
	FPS:    10,
}

// DotsSpinner - Trailing-dot animation for the thinking indicator
var DotsSpinner = SpinnerConfig{
	Frames: []string{".  ", ".. ", "...", " ..", "  .", "   "},
	FPS:    6,
}

// =============================================================================
// PROGRESS INDICATORS
// =============================================================================

// ProgressBar characters for the sidebar context gauge.
var (
	ProgressFull    = "#"
	ProgressEmpty   = "-"
	ProgressPartial = []string{".", ":", "+", "#"}
)

// RenderProgressBar creates a progress bar string.
// width: total width of the bar in characters
// percent: 0-100 percentage complete
func RenderProgressBar(width int, percent float64) string {
	if width <= 0 {
		return ""
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	filled := percent / 100.0 * float64(width)
	fullBlocks := int(filled)
	remainder := filled - float64(fullBlocks)

	var bar strings.Builder
	bar.Grow(width)

	for i := 0; i < fullBlocks && i < width; i++ {
		bar.WriteString(ProgressFull)
	}

	if fullBlocks < width && remainder > 0 {
		idx := int(remainder * float64(len(ProgressPartial)))
		if idx >= len(ProgressPartial) {
			idx = len(ProgressPartial) - 1
		}
		bar.WriteString(ProgressPartial[idx])
		fullBlocks++
	}

	for i := fullBlocks; i < width; i++ {
		bar.WriteString(ProgressEmpty)
	}

	return bar.String()
}

// =============================================================================
// STREAMING CURSOR
// =============================================================================

// TypingCursor holds the visible and hidden frames of the streaming cursor.
var TypingCursor = []string{"_", " "}

// CursorBlinkRate is the streaming cursor's blink interval.
var CursorBlinkRate = 530 * time.Millisecond

// CursorFrame returns the cursor frame for the given instant. The blink
// phase derives from wall-clock time so successive renders agree without
// shared state.
func CursorFrame(now time.Time) string {
	phase := now.UnixMilli() / CursorBlinkRate.Milliseconds()
	return TypingCursor[phase%2]
}
