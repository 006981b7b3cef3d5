// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file defines all Bubble Tea message types used by the chat interface.
// Messages are organized into the following categories:
//   - Streaming: Stream start, token delivery, completion, and errors
//   - Session: Save, list, resume, and export results
//   - Errors: Error display and dismissal
//   - Copy: Clipboard operations
//   - Config: Hot-reloaded configuration
//   - Animation: Spinner and render ticks
//
// All message types follow Bubble Tea conventions and are immutable.
package chat

import (
	"errors"
	"time"

	"github.com/jeranaias/llamachat/internal/config"
	"github.com/jeranaias/llamachat/internal/groq"
	"github.com/jeranaias/llamachat/internal/model"
	"github.com/jeranaias/llamachat/internal/storage"
)

// =============================================================================
// STREAMING MESSAGES
// =============================================================================

// StreamRequestMsg asks the main model to start a completion request.
// The chat model builds the windowed message list and sampling parameters;
// the main model owns the client and the goroutine.
type StreamRequestMsg struct {
	MessageID string
	Messages  []groq.ChatMessage
	Params    groq.CompletionParams
}

// StreamStartMsg signals that a request has been dispatched.
type StreamStartMsg struct {
	MessageID string
	StartTime time.Time
}

// StreamTokenMsg delivers a new token from the stream.
type StreamTokenMsg struct {
	MessageID string
	Token     string
	IsFirst   bool
}

// StreamCompleteMsg signals that streaming finished cleanly.
type StreamCompleteMsg struct {
	MessageID string
	Stats     *model.Statistics
	Error     error
}

// StreamErrorMsg signals that the stream failed. Any partial content stays
// visible in the viewport, but the turn is not committed to history.
type StreamErrorMsg struct {
	MessageID string
	Error     error
}

// StreamTickMsg is sent at ~30fps while streaming to batch token renders.
// Without it every token would trigger a full redraw, which flickers badly
// on fast models.
type StreamTickMsg struct {
	Time time.Time
}

// =============================================================================
// SESSION MESSAGES
// =============================================================================

// SessionSavedMsg confirms a /save operation.
type SessionSavedMsg struct {
	ID    string
	Error error
}

// SessionListMsg delivers the archive listing for /sessions.
type SessionListMsg struct {
	Sessions []storage.SessionMeta
	Query    string
	Error    error
}

// SessionResumedMsg delivers a restored conversation for /resume.
type SessionResumedMsg struct {
	Conversation *model.Conversation
	Error        error
}

// ExportCompleteMsg confirms an /export operation.
type ExportCompleteMsg struct {
	Path   string
	Format string
	Error  error
}

// =============================================================================
// ERROR MESSAGES
// =============================================================================

// ErrorMsg displays an error box to the user.
type ErrorMsg struct {
	Title       string
	Message     string
	Hint        string
	Dismissible bool
}

// ErrorDismissMsg dismisses the current error.
type ErrorDismissMsg struct{}

// =============================================================================
// COPY MESSAGES
// =============================================================================

// CopyCompleteMsg confirms a clipboard copy.
type CopyCompleteMsg struct {
	Success bool
	Error   error
}

// =============================================================================
// CONFIG MESSAGES
// =============================================================================

// ConfigReloadedMsg delivers a hot-reloaded configuration file.
type ConfigReloadedMsg struct {
	Config *config.Config
}

// =============================================================================
// ANIMATION MESSAGES
// =============================================================================

// SpinnerTickMsg advances the thinking animation.
type SpinnerTickMsg struct {
	Time time.Time
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// NewStreamStartMsg creates a StreamStartMsg stamped with the current time.
func NewStreamStartMsg(messageID string) StreamStartMsg {
	return StreamStartMsg{
		MessageID: messageID,
		StartTime: time.Now(),
	}
}

// NewStreamTokenMsg creates a StreamTokenMsg for delivering streamed content.
// The isFirst flag marks the first token for time-to-first-token tracking.
func NewStreamTokenMsg(messageID, token string, isFirst bool) StreamTokenMsg {
	return StreamTokenMsg{
		MessageID: messageID,
		Token:     token,
		IsFirst:   isFirst,
	}
}

// NewStreamCompleteMsg creates a StreamCompleteMsg with optional statistics.
func NewStreamCompleteMsg(messageID string, stats *model.Statistics, err error) StreamCompleteMsg {
	return StreamCompleteMsg{
		MessageID: messageID,
		Stats:     stats,
		Error:     err,
	}
}

// NewStreamTickMsg creates a streaming render tick.
func NewStreamTickMsg() StreamTickMsg {
	return StreamTickMsg{Time: time.Now()}
}

// NewErrorMsg creates a dismissible error message.
func NewErrorMsg(title, message string) ErrorMsg {
	return ErrorMsg{
		Title:       title,
		Message:     message,
		Dismissible: true,
	}
}

// NewStreamFailureMsg builds the error box for a failed request, with a hint
// matched to the failure kind.
func NewStreamFailureMsg(err error) ErrorMsg {
	return ErrorMsg{
		Title:       "Request Failed",
		Message:     err.Error(),
		Hint:        errorHint(err),
		Dismissible: true,
	}
}

// errorHint maps a completion failure to a one-line recovery hint.
// Order matters: auth and rate-limit failures are also API errors.
func errorHint(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, groq.ErrNotConfigured):
		return "Set GROQ_API_KEY in your environment"
	case groq.IsAuthError(err):
		return "Check that GROQ_API_KEY is set to a valid key"
	case errors.Is(err, groq.ErrRateLimited):
		return "Wait a moment and resubmit"
	case errors.Is(err, groq.ErrModelNotFound):
		return "Pick a different model from the sidebar"
	case groq.IsAPIError(err):
		return "The API rejected the request; adjust your message and resubmit"
	case groq.IsTransportError(err):
		return "Check your internet connection"
	default:
		return ""
	}
}
