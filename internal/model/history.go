// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and turns.
package model

const (
	// DefaultSystemPrompt anchors every context window sent upstream.
	DefaultSystemPrompt = "You are a helpful assistant."

	// DefaultWindow is the number of recent turns included in a request.
	DefaultWindow = 5
)

// History is the per-session conversation store. Turns accumulate in
// insertion order and are only ever removed by Clear. The live history is
// memory-only: it lasts exactly as long as the session that owns it.
//
// A History belongs to a single session and is not safe for concurrent
// use; every session constructs its own instance. There is deliberately
// no package-level shared store.
type History struct {
	systemPrompt string
	turns        []Turn
}

// NewHistory creates an empty history using DefaultSystemPrompt.
func NewHistory() *History {
	return &History{systemPrompt: DefaultSystemPrompt}
}

// Append adds a turn to the end of the history. There is no size cap and
// no failure mode; windowing keeps requests bounded regardless of length.
func (h *History) Append(t Turn) {
	h.turns = append(h.turns, t)
}

// Window returns the context to send upstream: exactly one system turn
// followed by the last min(n, Len()) turns in chronological order. The
// result is a fresh slice computed from current state; callers may keep
// or mutate it without affecting the store, and a later Window call
// reflects any turns appended in between.
func (h *History) Window(n int) []Turn {
	if n < 0 {
		n = 0
	}
	if n > len(h.turns) {
		n = len(h.turns)
	}

	window := make([]Turn, 0, n+1)
	window = append(window, NewSystemTurn(h.systemPrompt))
	window = append(window, h.turns[len(h.turns)-n:]...)
	return window
}

// Clear removes all turns. Idempotent: clearing an empty history is a
// no-op, and Window afterwards yields only the system turn.
func (h *History) Clear() {
	h.turns = nil
}

// Len returns the number of stored turns, not counting the system turn
// that Window prepends.
func (h *History) Len() int {
	return len(h.turns)
}

// Turns returns a copy of all stored turns in chronological order.
func (h *History) Turns() []Turn {
	out := make([]Turn, len(h.turns))
	copy(out, h.turns)
	return out
}

// Last returns the most recent turn and true, or a zero Turn and false
// when the history is empty.
func (h *History) Last() (Turn, bool) {
	if len(h.turns) == 0 {
		return Turn{}, false
	}
	return h.turns[len(h.turns)-1], true
}

// SystemPrompt returns the fixed system instruction for this history.
func (h *History) SystemPrompt() string {
	return h.systemPrompt
}
