// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package groq

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// STREAMING: SSE parsing with out-of-band error delivery. Fragments are
// handed to the consumer in arrival order; a stream that fails mid-way
// terminates immediately and reports through the error path, never
// through the fragment sequence.

// =============================================================================
// STREAMING TYPES
// =============================================================================

// StreamChunk represents a single chunk from the streaming response.
type StreamChunk struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
			Role    string `json:"role,omitempty"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error error `json:"-"` // error slot for channel-based streaming
}

// GetContent returns the content from the first choice's delta.
func (c *StreamChunk) GetContent() string {
	if len(c.Choices) > 0 {
		return c.Choices[0].Delta.Content
	}
	return ""
}

// GetRole returns the role from the first choice's delta.
func (c *StreamChunk) GetRole() string {
	if len(c.Choices) > 0 {
		return c.Choices[0].Delta.Role
	}
	return ""
}

// IsDone returns true if the stream has finished.
func (c *StreamChunk) IsDone() bool {
	if len(c.Choices) > 0 {
		return c.Choices[0].FinishReason != ""
	}
	return false
}

// GetFinishReason returns the finish reason if streaming is complete.
func (c *StreamChunk) GetFinishReason() string {
	if len(c.Choices) > 0 {
		return c.Choices[0].FinishReason
	}
	return ""
}

// HasError returns true if the chunk carries an error.
func (c *StreamChunk) HasError() bool {
	return c.Error != nil
}

// StreamCallback is the function type called for each received chunk.
// Callbacks run synchronously on the read loop, so chunk order is
// arrival order and ChatStream returns only after the last callback.
type StreamCallback func(chunk StreamChunk)

// StreamStats holds statistics collected during streaming.
type StreamStats struct {
	FirstTokenTime time.Duration
	TotalTime      time.Duration
	TokenCount     int
	Model          string
}

// StreamError reports a stream that failed after it started, preserving
// whatever partial content had arrived. Callers use the partial to avoid
// presenting a truncated response as complete.
type StreamError struct {
	Partial string // content received before the error
	Err     error
}

// Error implements the error interface.
func (e *StreamError) Error() string {
	if e.Partial != "" {
		return fmt.Sprintf("stream error (partial content received: %d chars): %v", len(e.Partial), e.Err)
	}
	return fmt.Sprintf("stream error: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *StreamError) Unwrap() error {
	return e.Err
}

// =============================================================================
// SSE READER
// =============================================================================

// SSEReader parses Server-Sent Events from a stream.
type SSEReader struct {
	reader *bufio.Reader
}

// NewSSEReader creates a new SSE reader from an io.Reader.
func NewSSEReader(r io.Reader) *SSEReader {
	return &SSEReader{
		reader: bufio.NewReader(r),
	}
}

// ReadEvent reads the next SSE event from the stream.
// Returns the event type, data, and any error. The event type is empty
// for Groq responses. Returns io.EOF when the stream ends.
func (s *SSEReader) ReadEvent() (string, []byte, error) {
	var eventType string
	var dataLines [][]byte

	for {
		line, err := s.reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF {
				// Flush pending data before reporting EOF.
				if len(dataLines) > 0 {
					return eventType, bytes.Join(dataLines, []byte("\n")), nil
				}
				return "", nil, io.EOF
			}
			return "", nil, err
		}

		line = bytes.TrimRight(line, "\r\n")

		// Empty line signals end of event.
		if len(line) == 0 {
			if len(dataLines) > 0 {
				return eventType, bytes.Join(dataLines, []byte("\n")), nil
			}
			continue
		}

		switch {
		case bytes.HasPrefix(line, []byte("event:")):
			eventType = string(bytes.TrimSpace(line[6:]))
		case bytes.HasPrefix(line, []byte("data:")):
			dataLines = append(dataLines, bytes.TrimSpace(line[5:]))
		}
		// Other fields (id:, retry:, comments) are ignored.
	}
}

// =============================================================================
// STREAMING CHAT
// =============================================================================

// ChatStream performs a streaming chat completion request, invoking the
// callback once per chunk in arrival order.
//
// Like Chat, this makes exactly one outbound call. A failure after the
// stream has started is returned as a *StreamError carrying the partial
// content, so no caller can mistake an interrupted response for a
// complete one.
func (c *Client) ChatStream(ctx context.Context, messages []ChatMessage, params CompletionParams, callback StreamCallback) error {
	if !c.IsConfigured() {
		return ErrNotConfigured
	}
	if err := params.Validate(); err != nil {
		return err
	}

	url := c.baseURL + "/chat/completions"

	bodyBytes, err := json.Marshal(c.buildRequest(messages, params, true))
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.setHeaders(req)
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Connection", "keep-alive")
	c.logRequest(req)

	startTime := time.Now()
	resp, err := sharedStreamingClient.Do(req)
	req.Header.Del("Authorization")

	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()
	c.logResponse(resp, time.Since(startTime))

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
		return c.handleErrorResponse(resp.StatusCode, body)
	}

	// Track delivered content so a mid-stream failure can report what
	// the consumer already has.
	var received strings.Builder
	wrapped := func(chunk StreamChunk) {
		received.WriteString(chunk.GetContent())
		callback(chunk)
	}

	if err := c.processStream(ctx, resp.Body, wrapped); err != nil {
		return &StreamError{Partial: received.String(), Err: err}
	}
	return nil
}

// processStream reads and processes the SSE stream.
func (c *Client) processStream(ctx context.Context, body io.Reader, callback StreamCallback) error {
	reader := NewSSEReader(body)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		_, data, err := reader.ReadEvent()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		// Check for [DONE] signal.
		if bytes.Equal(data, []byte("[DONE]")) {
			return nil
		}

		var chunk StreamChunk
		if err := json.Unmarshal(data, &chunk); err != nil {
			// Skip malformed chunks.
			continue
		}

		callback(chunk)

		if chunk.IsDone() {
			return nil
		}
	}
}

// =============================================================================
// ACCUMULATED RESPONSE
// =============================================================================

// ChatStreamAccumulate performs a streaming chat but returns the full
// response at the end. Concatenating the fragments of a successful
// stream reconstructs exactly the text a non-streaming call would have
// returned. On failure the partial content is returned alongside the
// error.
func (c *Client) ChatStreamAccumulate(ctx context.Context, messages []ChatMessage, params CompletionParams) (string, error) {
	var accumulated strings.Builder

	err := c.ChatStream(ctx, messages, params, func(chunk StreamChunk) {
		accumulated.WriteString(chunk.GetContent())
	})

	if err != nil {
		var streamErr *StreamError
		if errors.As(err, &streamErr) && streamErr.Partial != "" {
			return streamErr.Partial, err
		}
		return accumulated.String(), err
	}

	return accumulated.String(), nil
}

// =============================================================================
// STREAM ACCUMULATOR
// =============================================================================

// StreamAccumulator collects streaming chunks and builds a complete response.
type StreamAccumulator struct {
	Content      strings.Builder
	TokenCount   int
	Model        string
	FinishReason string
	StartTime    time.Time
	FirstTokenAt time.Time
	Done         bool
	Error        error
}

// NewStreamAccumulator creates a new accumulator.
func NewStreamAccumulator() *StreamAccumulator {
	return &StreamAccumulator{
		StartTime: time.Now(),
	}
}

// Add processes a new chunk.
func (a *StreamAccumulator) Add(chunk StreamChunk) {
	content := chunk.GetContent()
	if content != "" {
		a.TokenCount++
		if a.FirstTokenAt.IsZero() {
			a.FirstTokenAt = time.Now()
		}
		a.Content.WriteString(content)
	}

	if chunk.Model != "" {
		a.Model = chunk.Model
	}

	if chunk.IsDone() {
		a.Done = true
		a.FinishReason = chunk.GetFinishReason()
	}
}

// GetContent returns the accumulated content.
func (a *StreamAccumulator) GetContent() string {
	return a.Content.String()
}

// GetStats returns the collected statistics.
func (a *StreamAccumulator) GetStats() *StreamStats {
	var ttft time.Duration
	if !a.FirstTokenAt.IsZero() {
		ttft = a.FirstTokenAt.Sub(a.StartTime)
	}

	return &StreamStats{
		FirstTokenTime: ttft,
		TotalTime:      time.Since(a.StartTime),
		TokenCount:     a.TokenCount,
		Model:          a.Model,
	}
}

// Callback returns a StreamCallback that accumulates to this accumulator.
func (a *StreamAccumulator) Callback() StreamCallback {
	return func(chunk StreamChunk) {
		a.Add(chunk)
	}
}

// =============================================================================
// CHANNEL-BASED STREAMING
// =============================================================================

// ChatStreamChan performs a streaming chat and returns a channel of
// chunks for select-based consumers. The chunk channel closes when the
// stream ends; failures arrive out-of-band on the error channel, never
// as fragments.
func (c *Client) ChatStreamChan(ctx context.Context, messages []ChatMessage, params CompletionParams) (<-chan StreamChunk, <-chan error) {
	chunkChan := make(chan StreamChunk, 64)
	errChan := make(chan error, 1)

	go func() {
		defer close(chunkChan)
		defer close(errChan)

		err := c.ChatStream(ctx, messages, params, func(chunk StreamChunk) {
			select {
			case chunkChan <- chunk:
			case <-ctx.Done():
				return
			}
		})

		if err != nil {
			select {
			case errChan <- err:
			case <-ctx.Done():
			}
		}
	}()

	return chunkChan, errChan
}
