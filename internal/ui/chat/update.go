// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file carries the streaming side of the update loop: the handlers
// that react to stream messages, the thread-safe StreamingState shared
// with the stream goroutine, and the StreamRunner that executes a request
// against the Groq API and feeds the results back into the program.
package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/llamachat/internal/groq"
	"github.com/jeranaias/llamachat/internal/model"
	"github.com/jeranaias/llamachat/internal/ui/styles"
)

// =============================================================================
// STREAM MESSAGE HANDLERS
// =============================================================================

func (m Model) handleStreamStart(msg StreamStartMsg) (tea.Model, tea.Cmd) {
	if msg.MessageID != m.streamingMsgID {
		return m, nil
	}

	m.state = StateAwaiting
	m.thinkingStart = msg.StartTime
	m.thinkingFrame = 0
	m.streamingBuffer.Reset()

	// Three loops run while the request is in flight: the line spinner,
	// the thinking dots, and the buffer drain tick. Each re-arms itself
	// until the state returns to Idle.
	return m, tea.Batch(m.spinner.Tick, SpinnerTickCmd(), streamTickCmd())
}

func (m Model) handleStreamToken(msg StreamTokenMsg) (tea.Model, tea.Cmd) {
	// Tokens from an abandoned request never reach the conversation.
	if msg.MessageID != m.streamingMsgID {
		return m, nil
	}

	if m.state == StateAwaiting {
		m.state = StateStreaming
	}

	// Tokens land in the buffer; the tick loop renders them in batches.
	m.streamingBuffer.Write(msg.Token)
	return m, nil
}

func (m Model) handleStreamTick(msg StreamTickMsg) (tea.Model, tea.Cmd) {
	if m.state != StateAwaiting && m.state != StateStreaming {
		// Stream finished; let the tick loop die.
		return m, nil
	}

	if content, ok := m.streamingBuffer.Flush(); ok {
		m.conversation.AppendToLast(content)
		m.updateViewport()
	}

	return m, streamTickCmd()
}

func (m Model) handleSpinnerTick(msg SpinnerTickMsg) (tea.Model, tea.Cmd) {
	if m.state != StateAwaiting && m.state != StateStreaming {
		return m, nil
	}
	m.thinkingFrame++
	return m, SpinnerTickCmd()
}

func (m Model) handleStreamComplete(msg StreamCompleteMsg) (tea.Model, tea.Cmd) {
	if msg.MessageID != m.streamingMsgID {
		return m, nil
	}

	// Whatever is still buffered renders before the message is sealed.
	if content, ok := m.streamingBuffer.ForceFlush(); ok {
		m.conversation.AppendToLast(content)
	}

	m.conversation.FinalizeLast(msg.Stats)
	m.state = StateIdle
	m.streamingMsgID = ""
	m.statusMsg = ""
	m.updateViewport()
	m.input.Focus()

	return m, textinput.Blink
}

func (m Model) handleStreamError(msg StreamErrorMsg) (tea.Model, tea.Cmd) {
	if msg.MessageID != m.streamingMsgID {
		return m, nil
	}

	// Partial content stays visible in the scrollback, error-marked, but
	// the failed generation never becomes part of the request window.
	if content, ok := m.streamingBuffer.ForceFlush(); ok {
		m.conversation.AppendToLast(content)
	}
	m.conversation.FailLast()

	failure := NewStreamFailureMsg(msg.Error)
	m.lastError = &failure
	m.state = StateError
	m.streamingMsgID = ""
	m.updateViewport()

	return m, nil
}

func (m Model) handleConfigReloaded(msg ConfigReloadedMsg) (tea.Model, tea.Cmd) {
	if msg.Config == nil {
		return m, nil
	}

	if msg.Config.UI.ShowStats != m.showStats {
		m.showStats = msg.Config.UI.ShowStats
		m.conversation.AddSystemNotice("Statistics display " + formatBool(m.showStats))
	}

	if m.theme != nil {
		theme := styles.NewThemeWithMode(msg.Config.UI.Theme)
		theme.SetSize(m.width, m.height)
		m.theme = theme
	}

	m.viewportOptimizer.ForceUpdate()
	m.updateViewport()
	return m, nil
}

// =============================================================================
// STREAMING STATE
// =============================================================================

// StreamingState tracks one in-flight request. The stream goroutine writes
// while the UI reads, so every field access holds the mutex. Always use a
// pointer; copying would copy the mutex.
type StreamingState struct {
	mu         sync.RWMutex
	messageID  string
	startTime  time.Time
	firstToken time.Time
	tokenCount int
	content    strings.Builder
	isComplete bool
	err        error
}

// NewStreamingState creates tracking state for one request.
func NewStreamingState(messageID string) *StreamingState {
	return &StreamingState{
		messageID: messageID,
		startTime: time.Now(),
	}
}

// GetMessageID returns the message ID this stream belongs to.
func (s *StreamingState) GetMessageID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.messageID
}

// AppendContent accumulates a fragment.
func (s *StreamingState) AppendContent(content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.content.WriteString(content)
	s.tokenCount++
}

// GetContent returns everything accumulated so far.
func (s *StreamingState) GetContent() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.content.String()
}

// GetTokenCount returns the number of fragments received.
func (s *StreamingState) GetTokenCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokenCount
}

// RecordFirstToken stamps the first-token time once.
func (s *StreamingState) RecordFirstToken() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.firstToken.IsZero() {
		s.firstToken = time.Now()
	}
}

// TTFT returns the time to first token, or zero before any token arrived.
func (s *StreamingState) TTFT() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.firstToken.IsZero() {
		return 0
	}
	return s.firstToken.Sub(s.startTime)
}

// Elapsed returns the time since the request was dispatched.
func (s *StreamingState) Elapsed() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Since(s.startTime)
}

// SetComplete marks the stream as finished.
func (s *StreamingState) SetComplete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isComplete = true
}

// IsComplete reports whether the stream finished.
func (s *StreamingState) IsComplete() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isComplete
}

// SetError records the stream failure.
func (s *StreamingState) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// GetError returns the recorded failure, if any.
func (s *StreamingState) GetError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// =============================================================================
// STREAM RUNNER
// =============================================================================

// StreamRunner executes completion requests for a Bubble Tea program.
// It makes exactly one outbound call per Run and enforces a single
// in-flight request: a second Run while one is active is dropped.
type StreamRunner struct {
	mu      sync.Mutex
	program *tea.Program
	client  *groq.Client
	active  *StreamingState
}

// NewStreamRunner creates a stream runner bound to a program and client.
func NewStreamRunner(program *tea.Program, client *groq.Client) *StreamRunner {
	return &StreamRunner{
		program: program,
		client:  client,
	}
}

// Busy reports whether a request is currently in flight.
func (r *StreamRunner) Busy() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active != nil
}

// Active returns the state of the in-flight request, or nil.
func (r *StreamRunner) Active() *StreamingState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

func (r *StreamRunner) begin(state *StreamingState) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active != nil {
		return false
	}
	r.active = state
	return true
}

func (r *StreamRunner) end() {
	r.mu.Lock()
	r.active = nil
	r.mu.Unlock()
}

// Run executes one streaming completion and feeds the results into the
// program. Call it from a goroutine or a tea.Cmd; it blocks until the
// stream finishes. The context lives for the whole request; nothing
// cancels it from the UI.
func (r *StreamRunner) Run(ctx context.Context, messages []groq.ChatMessage, params groq.CompletionParams, messageID string) {
	if r.program == nil {
		return
	}
	if r.client == nil {
		r.program.Send(StreamErrorMsg{MessageID: messageID, Error: groq.ErrNotConfigured})
		return
	}

	state := NewStreamingState(messageID)
	if !r.begin(state) {
		// A request is already in flight; this one is dropped, not queued.
		return
	}
	defer r.end()

	r.program.Send(NewStreamStartMsg(messageID))

	stats := model.NewStatistics()
	completeSent := false

	streamErr := r.client.ChatStream(ctx, messages, params, func(chunk groq.StreamChunk) {
		if chunk.HasError() {
			// The stream call surfaces this as its return error.
			return
		}

		if content := chunk.GetContent(); content != "" {
			isFirst := state.GetTokenCount() == 0
			if isFirst {
				state.RecordFirstToken()
				stats.RecordFirstToken()
			}
			state.AppendContent(content)
			r.program.Send(StreamTokenMsg{
				MessageID: messageID,
				Token:     content,
				IsFirst:   isFirst,
			})
		}

		if chunk.IsDone() {
			state.SetComplete()
			stats.Finalize(state.GetTokenCount())
			r.program.Send(StreamCompleteMsg{MessageID: messageID, Stats: stats})
			completeSent = true
		}
	})

	if streamErr != nil {
		if !completeSent {
			state.SetError(streamErr)
			r.program.Send(StreamErrorMsg{MessageID: messageID, Error: streamErr})
		}
		return
	}

	// Some backends close the stream without a terminal marker; the
	// response is complete either way.
	if !completeSent {
		state.SetComplete()
		stats.Finalize(state.GetTokenCount())
		r.program.Send(StreamCompleteMsg{MessageID: messageID, Stats: stats})
	}
}

// =============================================================================
// TICK COMMANDS
// =============================================================================

// SpinnerTickCmd advances the thinking-dots animation.
func SpinnerTickCmd() tea.Cmd {
	return tea.Tick(150*time.Millisecond, func(t time.Time) tea.Msg {
		return SpinnerTickMsg{Time: t}
	})
}
