// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package groq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/jeranaias/llamachat/internal/model"
)

const testKey = "gsk_test_abcdefghijklmnopqrstuvwxyz0123456789"

func testParams() CompletionParams {
	return ParamsForProfile(model.DefaultChoice(), model.DefaultProfile())
}

func chatResponseBody(content string) string {
	return fmt.Sprintf(`{
		"id": "chatcmpl-test",
		"model": "llama-3.3-70b-versatile",
		"choices": [{
			"message": {"role": "assistant", "content": %q},
			"finish_reason": "stop"
		}],
		"usage": {"prompt_tokens": 10, "completion_tokens": 20, "total_tokens": 30}
	}`, content)
}

// =============================================================================
// CHAT TESTS
// =============================================================================

func TestChat_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, chatResponseBody("test response"))
	}))
	defer server.Close()

	client := NewClient(testKey).WithBaseURL(server.URL)
	resp, err := client.Chat(context.Background(), []ChatMessage{NewUserMessage("hello")}, testParams())
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	if got := resp.GetContent(); got != "test response" {
		t.Errorf("GetContent() = %q, want %q", got, "test response")
	}
	if resp.Usage.TotalTokens != 30 {
		t.Errorf("Usage.TotalTokens = %d, want 30", resp.Usage.TotalTokens)
	}
}

func TestChat_SendsProfileParamsOnTheWire(t *testing.T) {
	profiles := []struct {
		name        string
		maxTokens   int
		temperature float64
		topP        float64
	}{
		{"Short", 256, 0.6, 0.6},
		{"Balanced", 1024, 0.7, 0.7},
		{"Long", 2048, 0.8, 0.8},
	}

	for _, tt := range profiles {
		t.Run(tt.name, func(t *testing.T) {
			var captured map[string]any
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				body, _ := io.ReadAll(r.Body)
				if err := json.Unmarshal(body, &captured); err != nil {
					t.Errorf("request body is not JSON: %v", err)
				}
				io.WriteString(w, chatResponseBody("ok"))
			}))
			defer server.Close()

			profile, _ := model.GetProfile(tt.name)
			params := ParamsForProfile(model.DefaultChoice(), profile)

			client := NewClient(testKey).WithBaseURL(server.URL)
			if _, err := client.Chat(context.Background(), []ChatMessage{NewUserMessage("hi")}, params); err != nil {
				t.Fatalf("Chat failed: %v", err)
			}

			if got := captured["model"]; got != "llama-3.3-70b-versatile" {
				t.Errorf("model on wire = %v, want llama-3.3-70b-versatile", got)
			}
			if got := captured["max_tokens"]; got != float64(tt.maxTokens) {
				t.Errorf("max_tokens on wire = %v, want %d", got, tt.maxTokens)
			}
			if got := captured["temperature"]; got != tt.temperature {
				t.Errorf("temperature on wire = %v, want %g", got, tt.temperature)
			}
			if got := captured["top_p"]; got != tt.topP {
				t.Errorf("top_p on wire = %v, want %g", got, tt.topP)
			}
			if got := captured["stream"]; got != false {
				t.Errorf("stream on wire = %v, want false", got)
			}

			// The stop field is always present and always null.
			stop, present := captured["stop"]
			if !present {
				t.Error("stop field missing from wire request")
			}
			if stop != nil {
				t.Errorf("stop on wire = %v, want null", stop)
			}
		})
	}
}

func TestChat_SendsWindowInOrder(t *testing.T) {
	var captured ChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &captured)
		io.WriteString(w, chatResponseBody("ok"))
	}))
	defer server.Close()

	h := model.NewHistory()
	for i := 0; i < 7; i++ {
		h.Append(model.NewUserTurn(fmt.Sprintf("turn %d", i)))
	}

	client := NewClient(testKey).WithBaseURL(server.URL)
	_, err := client.Chat(context.Background(), FromTurns(h.Window(model.DefaultWindow)), testParams())
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	if len(captured.Messages) != model.DefaultWindow+1 {
		t.Fatalf("wire carried %d messages, want %d", len(captured.Messages), model.DefaultWindow+1)
	}
	if captured.Messages[0].Role != "system" {
		t.Errorf("first wire message role = %q, want system", captured.Messages[0].Role)
	}
	if captured.Messages[0].Content != model.DefaultSystemPrompt {
		t.Errorf("system content = %q, want %q", captured.Messages[0].Content, model.DefaultSystemPrompt)
	}
	for i := 1; i <= model.DefaultWindow; i++ {
		want := fmt.Sprintf("turn %d", i+1)
		if captured.Messages[i].Content != want {
			t.Errorf("wire message %d = %q, want %q", i, captured.Messages[i].Content, want)
		}
	}
}

func TestChat_NotConfigured(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		io.WriteString(w, chatResponseBody("ok"))
	}))
	defer server.Close()

	client := NewClient("").WithBaseURL(server.URL)
	_, err := client.Chat(context.Background(), []ChatMessage{NewUserMessage("hi")}, testParams())

	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("error = %v, want ErrNotConfigured", err)
	}
	if !IsAuthError(err) {
		t.Error("missing credential should classify as an auth error")
	}
	if requests.Load() != 0 {
		t.Errorf("unconfigured client made %d requests, want 0", requests.Load())
	}
}

func TestChat_UnknownModelRejectedLocally(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		io.WriteString(w, chatResponseBody("ok"))
	}))
	defer server.Close()

	params := testParams()
	params.Model = "gpt-4o"

	client := NewClient(testKey).WithBaseURL(server.URL)
	_, err := client.Chat(context.Background(), []ChatMessage{NewUserMessage("hi")}, params)

	if !errors.Is(err, ErrUnknownModel) {
		t.Errorf("error = %v, want ErrUnknownModel", err)
	}
	if requests.Load() != 0 {
		t.Errorf("disallowed model reached the network: %d requests", requests.Load())
	}
}

func TestChat_ExactlyOneRequestPerInvocation(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error": {"message": "internal error", "code": "server_error"}}`)
	}))
	defer server.Close()

	client := NewClient(testKey).WithBaseURL(server.URL)
	_, err := client.Chat(context.Background(), []ChatMessage{NewUserMessage("hi")}, testParams())

	if err == nil {
		t.Fatal("expected error from 500 response")
	}
	if requests.Load() != 1 {
		t.Errorf("made %d requests, want exactly 1 (no retries)", requests.Load())
	}
}

// =============================================================================
// ERROR TAXONOMY TESTS
// =============================================================================

func TestChat_ErrorKinds(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		sentinel error
		isAuth   bool
		isAPI    bool
	}{
		{
			name:     "401 is an auth error",
			status:   http.StatusUnauthorized,
			body:     `{"error": {"message": "Invalid API Key", "code": "invalid_api_key"}}`,
			sentinel: ErrAuthFailed,
			isAuth:   true,
		},
		{
			name:     "404 is an api error matching model-not-found",
			status:   http.StatusNotFound,
			body:     `{"error": {"message": "The model does not exist", "code": "model_not_found"}}`,
			sentinel: ErrModelNotFound,
			isAPI:    true,
		},
		{
			name:     "429 is an api error matching rate-limited",
			status:   http.StatusTooManyRequests,
			body:     `{"error": {"message": "Rate limit reached", "code": "rate_limit_exceeded"}}`,
			sentinel: ErrRateLimited,
			isAPI:    true,
		},
		{
			name:   "500 is a plain api error",
			status: http.StatusInternalServerError,
			body:   `{"error": {"message": "Internal server error", "code": "server_error"}}`,
			isAPI:  true,
		},
		{
			name:   "unparseable body still yields an api error",
			status: http.StatusBadGateway,
			body:   `upstream exploded`,
			isAPI:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer server.Close()

			client := NewClient(testKey).WithBaseURL(server.URL)
			_, err := client.Chat(context.Background(), []ChatMessage{NewUserMessage("hi")}, testParams())
			if err == nil {
				t.Fatalf("expected error for status %d", tt.status)
			}

			if tt.sentinel != nil && !errors.Is(err, tt.sentinel) {
				t.Errorf("errors.Is(err, %v) = false for %v", tt.sentinel, err)
			}
			if got := IsAuthError(err); got != tt.isAuth {
				t.Errorf("IsAuthError = %v, want %v (err: %v)", got, tt.isAuth, err)
			}
			if got := IsAPIError(err); got != tt.isAPI {
				t.Errorf("IsAPIError = %v, want %v (err: %v)", got, tt.isAPI, err)
			}
			if IsTransportError(err) {
				t.Errorf("HTTP-level failure misclassified as transport error: %v", err)
			}

			if tt.isAPI {
				var apiErr *APIError
				if !errors.As(err, &apiErr) {
					t.Fatalf("errors.As(*APIError) failed for %v", err)
				}
				if apiErr.Status != tt.status {
					t.Errorf("APIError.Status = %d, want %d", apiErr.Status, tt.status)
				}
			}
		})
	}
}

func TestChat_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close() // connection refused from now on

	client := NewClient(testKey).WithBaseURL(url)
	_, err := client.Chat(context.Background(), []ChatMessage{NewUserMessage("hi")}, testParams())

	if err == nil {
		t.Fatal("expected error against closed server")
	}
	if !IsTransportError(err) {
		t.Errorf("IsTransportError = false for %v", err)
	}
	if IsAuthError(err) || IsAPIError(err) {
		t.Errorf("transport failure misclassified: %v", err)
	}
}

// =============================================================================
// CLIENT CONFIGURATION TESTS
// =============================================================================

func TestNewClient_TrimsWhitespace(t *testing.T) {
	client := NewClient("  " + testKey + "\n")
	if !client.IsConfigured() {
		t.Error("client with padded key should be configured")
	}
	if client.apiKey != testKey {
		t.Errorf("apiKey = %q, want trimmed key", client.apiKey)
	}
}

func TestWithBaseURL_TrimsTrailingSlash(t *testing.T) {
	client := NewClient(testKey).WithBaseURL("http://example.test/v1/")
	if client.baseURL != "http://example.test/v1" {
		t.Errorf("baseURL = %q, want trailing slash removed", client.baseURL)
	}
}

func TestAPIKeyMasked_NeverExposesKey(t *testing.T) {
	client := NewClient(testKey)
	masked := client.APIKeyMasked()

	if strings.Contains(masked, "gsk_") {
		t.Errorf("masked key leaks prefix: %q", masked)
	}
	if !strings.Contains(masked, "REDACTED") {
		t.Errorf("masked key missing REDACTED marker: %q", masked)
	}

	empty := NewClient("")
	if got := empty.APIKeyMasked(); got != "[not set]" {
		t.Errorf("APIKeyMasked() for empty key = %q, want [not set]", got)
	}
}

func TestFromTurns(t *testing.T) {
	turns := []model.Turn{
		model.NewSystemTurn("be helpful"),
		model.NewUserTurn("hi"),
		model.NewAssistantTurn("hello"),
	}

	messages := FromTurns(turns)
	if len(messages) != 3 {
		t.Fatalf("FromTurns returned %d messages, want 3", len(messages))
	}

	for i, want := range []ChatMessage{
		{Role: "system", Content: "be helpful"},
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
	} {
		if messages[i] != want {
			t.Errorf("messages[%d] = %+v, want %+v", i, messages[i], want)
		}
	}
}

// =============================================================================
// PARAMS VALIDATION TESTS
// =============================================================================

func TestCompletionParams_Validate(t *testing.T) {
	valid := testParams()

	tests := []struct {
		name    string
		mutate  func(*CompletionParams)
		wantErr bool
	}{
		{"valid defaults", func(p *CompletionParams) {}, false},
		{"empty model", func(p *CompletionParams) { p.Model = "" }, true},
		{"disallowed model", func(p *CompletionParams) { p.Model = "mixtral-8x7b-32768" }, true},
		{"negative temperature", func(p *CompletionParams) { p.Temperature = -0.1 }, true},
		{"temperature above one", func(p *CompletionParams) { p.Temperature = 1.5 }, true},
		{"top_p above one", func(p *CompletionParams) { p.TopP = 2 }, true},
		{"zero max tokens", func(p *CompletionParams) { p.MaxTokens = 0 }, true},
		{"boundary sampling values", func(p *CompletionParams) { p.Temperature = 0; p.TopP = 1 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := valid
			tt.mutate(&params)
			err := params.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParamsForProfile(t *testing.T) {
	choice, _ := model.GetModelChoice("DeepSeek-V2-70B")
	profile, _ := model.GetProfile("Long")

	params := ParamsForProfile(choice, profile)
	if params.Model != "deepseek-r1-distill-llama-70b" {
		t.Errorf("Model = %q, want deepseek-r1-distill-llama-70b", params.Model)
	}
	if params.MaxTokens != 2048 || params.Temperature != 0.8 || params.TopP != 0.8 {
		t.Errorf("params = %+v, want Long preset values", params)
	}
}
