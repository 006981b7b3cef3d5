// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and turns.
//
// This package defines the core domain types used throughout the application
// for representing chat history, display messages, response profiles, and
// model information.
//
// # Key Types
//
//   - Turn: Immutable role/content pair, the unit of conversation history
//   - History: Per-session turn store with windowed context projection
//   - Conversation: Display container pairing rendered messages with a History
//   - Message: Single rendered message with streaming state and statistics
//   - ResponseProfile: Named generation preset (max tokens, temperature, top_p)
//   - ModelChoice: Information about a selectable model (display name, API ID)
//
// # Usage
//
// Record turns and project the context window:
//
//	h := model.NewHistory()
//	h.Append(model.Turn{Role: model.RoleUser, Content: "Hello!"})
//	window := h.Window(model.DefaultWindow)
//
// Look up a response profile:
//
//	p, ok := model.GetProfile("Balanced")
//	fmt.Printf("%s: %d tokens at temperature %.1f\n", p.Name, p.MaxTokens, p.Temperature)
package model
