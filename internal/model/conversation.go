// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and turns.
package model

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// Conversation pairs the rendered message list with the History that
// backs request windows. The two deliberately diverge: notices and
// error-marked messages appear in the scrollback but never in History,
// so the window sent upstream only ever contains completed turns.
type Conversation struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Messages  []*Message `json:"messages"`

	// Model is the display name of the active model.
	Model string `json:"model"`
	// Profile is the name of the active response profile.
	Profile string `json:"profile"`

	// TokensUsed is a rough running estimate across the conversation.
	TokensUsed int `json:"tokens_used"`

	history *History
}

// NewConversation creates an empty conversation with its own History.
func NewConversation() *Conversation {
	now := time.Now()
	return &Conversation{
		ID:        generateConversationID(),
		Title:     "New Conversation",
		CreatedAt: now,
		UpdatedAt: now,
		Model:     DefaultModelName,
		Profile:   DefaultProfileName,
		history:   NewHistory(),
	}
}

// History exposes the backing turn store.
func (c *Conversation) History() *History {
	return c.history
}

// Window projects the request context from the backing store: one system
// turn plus the last n completed turns.
func (c *Conversation) Window(n int) []Turn {
	return c.history.Window(n)
}

// AddUserMessage records a user turn in both the scrollback and the
// history store.
func (c *Conversation) AddUserMessage(content string) *Message {
	msg := NewUserMessage(content)
	c.Messages = append(c.Messages, msg)
	c.history.Append(NewUserTurn(content))
	c.touch()
	c.updateTitle()
	return msg
}

// AddSystemNotice appends a system-styled message to the scrollback only.
// Notices (command feedback, status lines) are not turns and never enter
// the history store.
func (c *Conversation) AddSystemNotice(content string) *Message {
	msg := NewSystemMessage(content)
	c.Messages = append(c.Messages, msg)
	c.touch()
	return msg
}

// StartAssistant appends an empty streaming assistant message and returns
// it. The matching turn reaches the history store only on FinalizeLast.
func (c *Conversation) StartAssistant() *Message {
	msg := NewAssistantMessage()
	c.Messages = append(c.Messages, msg)
	c.touch()
	return msg
}

// AppendToLast appends a fragment to the in-progress assistant message.
func (c *Conversation) AppendToLast(token string) {
	if last := c.GetLastMessage(); last != nil && last.IsStreaming {
		last.AppendToken(token)
	}
}

// FinalizeLast completes the in-progress assistant message and appends
// the assembled turn to the history store. This is the only path by which
// an assistant turn becomes part of future windows.
func (c *Conversation) FinalizeLast(stats *Statistics) *Message {
	last := c.GetLastMessage()
	if last == nil || !last.IsStreaming {
		return nil
	}
	last.FinalizeStream(stats)
	c.history.Append(NewAssistantTurn(last.Content))
	c.touch()
	return last
}

// FailLast ends the in-progress assistant message after a stream error
// and returns whatever partial content had arrived. A placeholder that
// received no fragments is removed outright; a partial stays visible but
// error-marked. Either way the history store is untouched, so the failed
// generation can never surface as a completed turn.
func (c *Conversation) FailLast() string {
	last := c.GetLastMessage()
	if last == nil || !last.IsStreaming {
		return ""
	}
	last.FailStream()
	if last.Content == "" {
		c.Messages = c.Messages[:len(c.Messages)-1]
		return ""
	}
	c.touch()
	return last.Content
}

// ClearHistory resets the conversation to its initial state: scrollback,
// history store, token estimate, and title. Idempotent.
func (c *Conversation) ClearHistory() {
	c.Messages = make([]*Message, 0)
	c.history.Clear()
	c.TokensUsed = 0
	c.Title = "New Conversation"
	c.touch()
}

// GetLastMessage returns the most recent message, or nil when empty.
func (c *Conversation) GetLastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}

// GetLastAssistantMessage returns the most recent assistant message, or
// nil if none exists.
func (c *Conversation) GetLastAssistantMessage() *Message {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == RoleAssistant {
			return c.Messages[i]
		}
	}
	return nil
}

// MessageCount returns the number of messages in the scrollback.
func (c *Conversation) MessageCount() int {
	return len(c.Messages)
}

// IsEmpty reports whether the scrollback has no messages.
func (c *Conversation) IsEmpty() bool {
	return len(c.Messages) == 0
}

// EstimateTokens sums rough token estimates across the scrollback.
func (c *Conversation) EstimateTokens() int {
	total := 0
	for _, msg := range c.Messages {
		total += msg.EstimateTokens()
	}
	return total
}

// touch updates bookkeeping after any mutation.
func (c *Conversation) touch() {
	c.UpdatedAt = time.Now()
	c.TokensUsed = c.EstimateTokens()
}

// updateTitle derives the title from the first user message.
func (c *Conversation) updateTitle() {
	if c.Title != "New Conversation" {
		return
	}
	for _, msg := range c.Messages {
		if msg.Role == RoleUser && !msg.IsEmpty() {
			c.Title = msg.Preview(50)
			return
		}
	}
}

// generateConversationID creates a unique conversation ID.
func generateConversationID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return "conv_" + hex.EncodeToString(bytes)
}
