// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package groq provides the client for Groq's OpenAI-compatible chat
// completions API.
//
// The client exposes both request modes behind one configuration
// surface: Chat returns the complete response, ChatStream delivers it as
// an ordered sequence of fragments. Every invocation makes exactly one
// outbound network call; there are no retries, no backoff, and no
// caching, so a failed request is reported once and resubmitted by the
// user.
//
// # Key Types
//
//   - Client: HTTP client bound to the GROQ_API_KEY credential
//   - CompletionParams: model and sampling settings shared by both modes
//   - ChatMessage: wire message compatible with the OpenAI chat format
//   - StreamChunk: single SSE fragment with delta content
//   - StreamError: mid-stream failure preserving partial content
//
// # Errors
//
// Failures keep their kind: TransportError for DNS/connect/TLS/timeout
// problems, ErrNotConfigured/ErrAuthFailed for credential problems, and
// APIError for any other non-2xx response (with ErrRateLimited and
// ErrModelNotFound matchable via errors.Is). The IsAuthError,
// IsAPIError, and IsTransportError helpers classify without unwrapping
// by hand.
//
// # Usage
//
// Send a windowed conversation and stream the reply:
//
//	client := groq.NewClient(os.Getenv(groq.APIKeyEnvVar))
//	params := groq.ParamsForProfile(model.DefaultChoice(), model.DefaultProfile())
//	err := client.ChatStream(ctx, groq.FromTurns(window), params, func(chunk groq.StreamChunk) {
//	    fmt.Print(chunk.GetContent())
//	})
//
// # Security
//
// API keys are read from the environment, sent only as a bearer header,
// and never logged; diagnostic output uses a SHA-256 fingerprint. All
// requests use TLS 1.2+.
package groq
