// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and turns.
package model

// Role identifies the author of a turn.
type Role string

const (
	// RoleUser is a message from the human user.
	RoleUser Role = "user"
	// RoleAssistant is a response from the model.
	RoleAssistant Role = "assistant"
	// RoleSystem is the instruction turn that anchors every context window.
	RoleSystem Role = "system"
)

// String returns the role as a string.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-friendly name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	case RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

// Valid reports whether the role is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// Turn is a single role/content pair in a conversation. Turns are value
// types: once appended to a History they are never mutated, only read.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewUserTurn creates a user turn.
func NewUserTurn(content string) Turn {
	return Turn{Role: RoleUser, Content: content}
}

// NewAssistantTurn creates an assistant turn.
func NewAssistantTurn(content string) Turn {
	return Turn{Role: RoleAssistant, Content: content}
}

// NewSystemTurn creates a system turn.
func NewSystemTurn(content string) Turn {
	return Turn{Role: RoleSystem, Content: content}
}
