// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package groq provides the Groq chat completions client.
package groq

import (
	"bytes"
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/jeranaias/llamachat/internal/model"
)

// Configuration constants for the Groq API.
const (
	// DefaultBaseURL is the base URL for Groq's OpenAI-compatible API.
	DefaultBaseURL = "https://api.groq.com/openai/v1"

	// APIKeyEnvVar names the environment variable holding the credential.
	// It is the only place the key is ever read from.
	APIKeyEnvVar = "GROQ_API_KEY"

	// DefaultTimeout bounds non-streaming requests. Streaming requests
	// have no client timeout and are governed by the request context.
	DefaultTimeout = 60 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	// SECURITY: Response size limit prevents memory exhaustion.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB limit
)

var (
	// PERFORMANCE: Connection pooling reduces TCP handshake overhead.
	// Shared HTTP client for all non-streaming Groq requests.
	sharedHTTPClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		Timeout: DefaultTimeout,
	}

	// sharedStreamingClient is used for streaming requests (no timeout,
	// context-controlled).
	sharedStreamingClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		// No timeout for streaming - controlled via context
	}
)

// Error variables for common Groq client errors.
var (
	// ErrNotConfigured indicates the API key is not set.
	ErrNotConfigured = errors.New("Groq API key not configured")

	// ErrAuthFailed indicates authentication failed (invalid or expired API key).
	ErrAuthFailed = errors.New("authentication failed")

	// ErrRateLimited indicates too many requests were made.
	ErrRateLimited = errors.New("rate limited")

	// ErrModelNotFound indicates the requested model does not exist upstream.
	ErrModelNotFound = errors.New("model not found")

	// ErrUnknownModel indicates the model is not in the local allow-list.
	// Requests for unknown models are rejected before any network call.
	ErrUnknownModel = errors.New("unknown model")
)

// APIError represents a non-2xx response from the Groq API.
type APIError struct {
	Code    string
	Message string
	Status  int

	// sentinel carries ErrRateLimited or ErrModelNotFound for the status
	// codes that map to one, so errors.Is works alongside errors.As.
	sentinel error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("Groq error [%s] (HTTP %d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("Groq error (HTTP %d): %s", e.Status, e.Message)
}

// Unwrap exposes the mapped sentinel, if any.
func (e *APIError) Unwrap() error {
	return e.sentinel
}

// TransportError represents a failure before any HTTP response arrived:
// DNS resolution, connection refused, TLS handshake, or timeout.
type TransportError struct {
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("request failed: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsAuthError reports whether err is a credential problem: a missing key
// or an upstream 401.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrNotConfigured) || errors.Is(err, ErrAuthFailed)
}

// IsAPIError reports whether err is a non-2xx API response other than
// an authentication failure.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

// IsTransportError reports whether err occurred before any HTTP response.
func IsTransportError(err error) bool {
	var trErr *TransportError
	return errors.As(err, &trErr)
}

// ChatMessage represents a single message in a chat conversation.
type ChatMessage struct {
	Role    string `json:"role"`    // "user", "assistant", or "system"
	Content string `json:"content"` // The message content
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) ChatMessage {
	return ChatMessage{Role: "user", Content: content}
}

// NewAssistantMessage creates a new assistant message.
func NewAssistantMessage(content string) ChatMessage {
	return ChatMessage{Role: "assistant", Content: content}
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) ChatMessage {
	return ChatMessage{Role: "system", Content: content}
}

// FromTurns converts a history window into wire messages.
func FromTurns(turns []model.Turn) []ChatMessage {
	messages := make([]ChatMessage, 0, len(turns))
	for _, t := range turns {
		messages = append(messages, ChatMessage{Role: t.Role.String(), Content: t.Content})
	}
	return messages
}

// CompletionParams is the single configuration surface shared by the
// streaming and non-streaming request modes.
type CompletionParams struct {
	// Model is the API identifier, which must be in the local allow-list.
	Model string
	// Temperature is the sampling temperature in [0, 1].
	Temperature float64
	// TopP is the nucleus sampling cutoff in [0, 1].
	TopP float64
	// MaxTokens caps the completion length.
	MaxTokens int
}

// ParamsForProfile builds request parameters from a model choice and a
// response profile.
func ParamsForProfile(m model.ModelChoice, p model.ResponseProfile) CompletionParams {
	return CompletionParams{
		Model:       m.ID,
		Temperature: p.Temperature,
		TopP:        p.TopP,
		MaxTokens:   p.MaxTokens,
	}
}

// Validate rejects parameters that must never reach the network.
func (p CompletionParams) Validate() error {
	if p.Model == "" {
		return fmt.Errorf("%w: model is empty", ErrUnknownModel)
	}
	if !model.IsAllowedModel(p.Model) {
		return fmt.Errorf("%w: %s", ErrUnknownModel, p.Model)
	}
	if p.Temperature < 0 || p.Temperature > 1 {
		return fmt.Errorf("temperature must be in [0, 1], got %g", p.Temperature)
	}
	if p.TopP < 0 || p.TopP > 1 {
		return fmt.Errorf("top_p must be in [0, 1], got %g", p.TopP)
	}
	if p.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive, got %d", p.MaxTokens)
	}
	return nil
}

// ChatRequest represents a request to the chat completions endpoint.
// Sampling fields carry no omitempty: the selected profile's values are
// always serialized, including legal zero values.
type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Stream      bool          `json:"stream"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p"`
	MaxTokens   int           `json:"max_tokens"`
	// Stop is carried for wire compatibility and is always null.
	Stop any `json:"stop"`
}

// ChatResponse represents a response from the chat completions endpoint.
type ChatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message      ChatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// GetContent returns the content of the first choice, or empty string if none.
func (r *ChatResponse) GetContent() string {
	if len(r.Choices) > 0 {
		return r.Choices[0].Message.Content
	}
	return ""
}

// apiErrorResponse represents an error response from the API.
type apiErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client is a client for the Groq chat completions API.
//
// The client performs exactly one outbound network call per invocation:
// no retries, no backoff, no caching. A failed request surfaces a typed
// error and the user resubmits manually.
type Client struct {
	apiKey  string
	baseURL string
}

// NewClient creates a new Groq client with the given API key.
//
// If the API key is empty the client is still created, but requests fail
// with ErrNotConfigured before touching the network.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: DefaultBaseURL,
	}
}

// WithBaseURL sets a custom base URL for the API.
func (c *Client) WithBaseURL(url string) *Client {
	c.baseURL = strings.TrimSuffix(url, "/")
	return c
}

// IsConfigured returns true if the client has an API key configured.
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

// APIKeyMasked returns a masked version of the API key for display.
// SECURITY: Never exposes key fragments - uses a fingerprint instead.
func (c *Client) APIKeyMasked() string {
	if c.apiKey == "" {
		return "[not set]"
	}
	return fmt.Sprintf("[REDACTED, length=%d, fingerprint=%s]", len(c.apiKey), c.keyFingerprint())
}

// keyFingerprint returns a short SHA-256 fingerprint of the API key,
// safe to log because it cannot be reversed into key material.
func (c *Client) keyFingerprint() string {
	if c.apiKey == "" {
		return "none"
	}
	h := sha256.Sum256([]byte(c.apiKey))
	return hex.EncodeToString(h[:4])
}

// logRequest logs an API request without exposing sensitive data.
// Headers may contain auth and bodies may contain conversation content,
// so neither is logged.
func (c *Client) logRequest(req *http.Request) {
	log.Printf("API Request: %s %s", req.Method, req.URL.Path)
}

// logResponse logs an API response with duration.
func (c *Client) logResponse(resp *http.Response, duration time.Duration) {
	log.Printf("API Response: %d %s (%v)", resp.StatusCode, resp.Status, duration)
}

// setHeaders sets the required headers for Groq API requests.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "llamachat/0.1.0")
}

// buildRequest assembles the wire request for either mode.
func (c *Client) buildRequest(messages []ChatMessage, params CompletionParams, stream bool) ChatRequest {
	return ChatRequest{
		Model:       params.Model,
		Messages:    messages,
		Stream:      stream,
		Temperature: params.Temperature,
		TopP:        params.TopP,
		MaxTokens:   params.MaxTokens,
		Stop:        nil,
	}
}

// Chat performs a non-streaming chat completion request.
//
// The call either returns the complete response or a typed error from
// the Transport/Auth/API taxonomy. It never retries.
func (c *Client) Chat(ctx context.Context, messages []ChatMessage, params CompletionParams) (*ChatResponse, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	url := c.baseURL + "/chat/completions"
	return c.doRequest(ctx, url, c.buildRequest(messages, params, false))
}

// readResponse reads the response body with a size limit.
//
// SECURITY: Response size limit prevents memory exhaustion.
func readResponse(resp *http.Response) ([]byte, error) {
	limitedReader := io.LimitReader(resp.Body, MaxResponseSize)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if int64(len(body)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}

	return body, nil
}

// doRequest performs the single HTTP request to the chat completions
// endpoint.
//
// SECURITY: Clears the Authorization header after the request so later
// logging of the request cannot leak it.
func (c *Client) doRequest(ctx context.Context, requestURL string, reqBody ChatRequest) (*ChatResponse, error) {
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.setHeaders(req)
	c.logRequest(req)

	startTime := time.Now()
	resp, err := sharedHTTPClient.Do(req)
	req.Header.Del("Authorization")

	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()
	c.logResponse(resp, time.Since(startTime))

	body, err := readResponse(resp)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.handleErrorResponse(resp.StatusCode, body)
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &chatResp, nil
}

// handleErrorResponse converts HTTP error responses into the typed
// taxonomy: 401 becomes an auth error, everything else an APIError, with
// rate-limit and model-not-found responses additionally matching their
// sentinels via errors.Is.
func (c *Client) handleErrorResponse(statusCode int, body []byte) error {
	code := ""
	message := strings.TrimSpace(string(body))

	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		code = apiErr.Error.Code
		message = apiErr.Error.Message
	}

	if statusCode == http.StatusUnauthorized {
		if message != "" {
			return fmt.Errorf("%w: %s", ErrAuthFailed, message)
		}
		return ErrAuthFailed
	}

	e := &APIError{
		Code:    code,
		Message: message,
		Status:  statusCode,
	}
	switch statusCode {
	case http.StatusNotFound:
		e.sentinel = ErrModelNotFound
	case http.StatusTooManyRequests:
		e.sentinel = ErrRateLimited
	}
	return e
}
