// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file contains input submission logic, broken down into small,
// testable steps: validation -> command check -> conversation update ->
// request construction.
package chat

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/llamachat/internal/groq"
	"github.com/jeranaias/llamachat/internal/model"
)

// =============================================================================
// INPUT SUBMISSION
// =============================================================================

// submitInput is the entry point for input submission. Slash commands are
// dispatched locally; everything else becomes a user turn followed by one
// streaming completion request.
func (m Model) submitInput() (tea.Model, tea.Cmd) {
	content := strings.TrimSpace(m.input.Value())
	if content == "" {
		return m, nil
	}

	// Commands never touch the conversation history.
	if strings.HasPrefix(content, "/") {
		m.input.Reset()
		return m.handleCommand(content)
	}

	m.input.Reset()

	// The user turn joins the history before the window is taken, so the
	// request always carries the message that prompted it.
	m.conversation.AddUserMessage(content)
	assistantMsg := m.conversation.StartAssistant()

	m.streamingMsgID = assistantMsg.ID
	m.state = StateAwaiting
	m.thinkingStart = time.Now()
	m.thinkingFrame = 0
	m.statusMsg = ""

	m.updateViewport()
	m.viewport.GotoBottom()

	req := m.buildStreamRequest(assistantMsg.ID)
	return m, streamRequestCmd(req)
}

// buildStreamRequest assembles the wire request for the current
// conversation state: the windowed history plus the generation
// parameters for the active model and profile.
func (m *Model) buildStreamRequest(messageID string) StreamRequestMsg {
	window := m.conversation.Window(model.DefaultWindow)
	return StreamRequestMsg{
		MessageID: messageID,
		Messages:  groq.FromTurns(window),
		Params:    groq.ParamsForProfile(m.modelChoice, m.profile),
	}
}

// streamRequestCmd hands the request to the program loop. The root model
// intercepts it and runs the stream; the chat model never performs I/O.
func streamRequestCmd(req StreamRequestMsg) tea.Cmd {
	return func() tea.Msg {
		return req
	}
}
