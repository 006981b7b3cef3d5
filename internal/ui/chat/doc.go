// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the main chat view component for the llamachat TUI.

The chat package implements a complete terminal-based chat interface using
the Bubble Tea framework. It provides an interactive, real-time conversation
experience with LLaMA 3 and DeepSeek models served by the Groq API.

# Key Components

## Model (model.go)

The Model struct is the central Bubble Tea model that maintains all chat state:
  - Conversation history and message management
  - Single-line input with a character limit
  - Viewport for message scrolling
  - Turn state (idle, awaiting, streaming, error)
  - Active model and response length selections

## View Rendering (view.go)

Rendering logic for the complete chat interface:
  - Header with title and state indicator
  - Message bubbles with role-specific styling (user, assistant, system)
  - Code block rendering with inline code styling
  - Sidebar with model, response length, and context usage
  - Responsive status bar that degrades gracefully on narrow terminals

## Update Loop (update.go)

Handles all Bubble Tea messages and user interactions:
  - Keyboard input processing
  - Stream lifecycle messages (start, token, complete, error)
  - Window resize handling
  - Configuration hot-reload

## Streaming (streaming.go, update.go)

Optimized streaming implementation for smooth responses:
  - StreamingBuffer for batched token rendering at a capped frame rate
  - StreamRunner for running the API call off the UI goroutine
  - Thread-safe streaming state management

Exactly one request runs at a time. Submissions while a request is in
flight are dropped, and a running request is never cancelled from the UI;
it completes or fails on its own.

## Commands (commands.go)

Slash command handler registry supporting:
  - /help - Show available commands
  - /clear - Clear conversation
  - /model - Switch between LLaMA 3 and DeepSeek
  - /profile - Switch response length
  - /save, /sessions, /resume - Session persistence
  - /export - Export conversation to Markdown or JSON
  - /quit - Exit

# Usage

Create a chat model, run it as a Bubble Tea program, and wire a stream
runner to execute its requests:

	theme := styles.NewTheme()
	m := chat.NewWithStore(theme, store)
	p := tea.NewProgram(m, tea.WithAltScreen())
	runner := chat.NewStreamRunner(p, client)
	if _, err := p.Run(); err != nil {
		log.Fatal(err)
	}

The chat model never performs network I/O itself. It emits a
StreamRequestMsg; the program root hands that to the StreamRunner, which
streams results back through p.Send.
*/
package chat
