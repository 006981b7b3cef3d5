// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file implements the command handler registry pattern, breaking up the
// monolithic handleCommand() function into individual, testable command handlers.
package chat

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/llamachat/internal/model"
	"github.com/jeranaias/llamachat/internal/storage"
)

// =============================================================================
// COMMAND HANDLER REGISTRY
// =============================================================================

// CommandHandler is a function that handles a specific command.
// It receives the model and command arguments, and returns an updated model and command.
type CommandHandler func(m *Model, args []string) (tea.Model, tea.Cmd)

// commandHandlers maps command names to their handler functions.
var commandHandlers = map[string]CommandHandler{
	// Help & Meta
	"help": handleHelpCommand,
	"h":    handleHelpCommand,
	"?":    handleHelpCommand,
	"quit": handleQuitCommand,
	"q":    handleQuitCommand,
	"exit": handleQuitCommand,

	// Conversation
	"clear": handleClearCommand,
	"c":     handleClearCommand,

	// Model & Profile Selection
	"model":   handleModelCommand,
	"m":       handleModelCommand,
	"profile": handleProfileCommand,
	"p":       handleProfileCommand,

	// Session Archive
	"save":     handleSaveCommand,
	"s":        handleSaveCommand,
	"sessions": handleSessionsCommand,
	"list":     handleSessionsCommand,
	"l":        handleSessionsCommand,
	"resume":   handleResumeCommand,
	"r":        handleResumeCommand,
	"export":   handleExportCommand,
	"e":        handleExportCommand,
}

// handleCommand processes slash commands using the command registry pattern.
func (m Model) handleCommand(content string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(content)
	if len(parts) == 0 {
		return m, nil
	}

	cmdName := strings.ToLower(strings.TrimPrefix(parts[0], "/"))
	args := parts[1:]

	if handler, ok := commandHandlers[cmdName]; ok {
		return handler(&m, args)
	}

	m.conversation.AddSystemNotice("Error: Unknown command '" + content + "'\nType /help for available commands")
	m.updateViewport()
	return m, nil
}

// =============================================================================
// HELP AND META COMMANDS
// =============================================================================

func handleHelpCommand(m *Model, args []string) (tea.Model, tea.Cmd) {
	return m.showHelp()
}

func handleQuitCommand(m *Model, args []string) (tea.Model, tea.Cmd) {
	return *m, tea.Quit
}

// showHelp posts the command and shortcut reference into the scrollback.
// The F1 binding and /help share this path.
func (m Model) showHelp() (tea.Model, tea.Cmd) {
	m.conversation.AddSystemNotice(buildHelpText())
	m.updateViewport()
	return m, nil
}

// buildHelpText renders the command list followed by the keyboard
// shortcuts grouped by category.
func buildHelpText() string {
	var sb strings.Builder
	sb.WriteString("Commands:\n")
	sb.WriteString("  /help              Show this help\n")
	sb.WriteString("  /clear             Clear the conversation\n")
	sb.WriteString("  /model [name]      Show or switch the active model\n")
	sb.WriteString("  /profile [name]    Show or switch the response length\n")
	sb.WriteString("  /save              Save the conversation to the archive\n")
	sb.WriteString("  /sessions [query]  List or search saved sessions\n")
	sb.WriteString("  /resume <n>        Resume a saved session by list number\n")
	sb.WriteString("  /export [md|json]  Export the conversation to a file\n")
	sb.WriteString("  /quit              Exit\n")

	grouped := GetHelpItemsByCategory()
	for _, category := range GetCategoryOrder() {
		items := grouped[category]
		if len(items) == 0 {
			continue
		}
		sb.WriteString("\n")
		sb.WriteString(string(category))
		sb.WriteString(":\n")
		for _, item := range items {
			fmt.Fprintf(&sb, "  %-12s %s\n", item.Key, item.Desc)
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}

// =============================================================================
// CONVERSATION COMMANDS
// =============================================================================

func handleClearCommand(m *Model, args []string) (tea.Model, tea.Cmd) {
	m.clearConversation()
	return *m, nil
}

// =============================================================================
// MODEL AND PROFILE COMMANDS
// =============================================================================

func handleModelCommand(m *Model, args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		var sb strings.Builder
		sb.WriteString("Current model: ")
		sb.WriteString(m.modelChoice.Name)
		sb.WriteString(" (")
		sb.WriteString(m.modelChoice.ContextString())
		sb.WriteString(" context)\n\nAvailable models:\n")
		for _, name := range model.ChoiceNames() {
			choice, ok := model.GetModelChoice(name)
			if !ok {
				continue
			}
			sb.WriteString("  - ")
			sb.WriteString(choice.Name)
			sb.WriteString(" (")
			sb.WriteString(choice.ContextString())
			sb.WriteString(" context)")
			if choice.Name == m.modelChoice.Name {
				sb.WriteString(" [active]")
			}
			sb.WriteByte('\n')
		}
		sb.WriteString("\nUsage: /model <name>")
		m.conversation.AddSystemNotice(sb.String())
		m.updateViewport()
		return *m, nil
	}

	name := strings.Join(args, " ")
	choice, ok := model.GetModelChoice(name)
	if !ok {
		m.conversation.AddSystemNotice("Error: Unknown model '" + name + "'\nAvailable models: " + strings.Join(model.ChoiceNames(), ", "))
		m.updateViewport()
		return *m, nil
	}

	m.modelChoice = choice
	m.conversation.Model = choice.Name
	m.conversation.AddSystemNotice("Model changed to: " + choice.Name + " (" + choice.ContextString() + " context)")
	m.updateViewport()
	return *m, nil
}

func handleProfileCommand(m *Model, args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		var sb strings.Builder
		sb.WriteString("Current response length: ")
		sb.WriteString(m.profile.Name)
		sb.WriteString("\n\nAvailable profiles:\n")
		for _, name := range model.ProfileNames() {
			profile, ok := model.GetProfile(name)
			if !ok {
				continue
			}
			sb.WriteString("  - ")
			sb.WriteString(profile.Name)
			sb.WriteString(" (max ")
			sb.WriteString(formatInt(profile.MaxTokens))
			sb.WriteString(" tokens)")
			if profile.Name == m.profile.Name {
				sb.WriteString(" [active]")
			}
			sb.WriteByte('\n')
		}
		sb.WriteString("\nUsage: /profile <name>")
		m.conversation.AddSystemNotice(sb.String())
		m.updateViewport()
		return *m, nil
	}

	name := strings.Join(args, " ")
	profile, ok := model.GetProfile(name)
	if !ok {
		// Profile names are capitalized; accept any casing at the prompt.
		for _, n := range model.ProfileNames() {
			if strings.EqualFold(n, name) {
				profile, ok = model.GetProfile(n)
				break
			}
		}
	}
	if !ok {
		m.conversation.AddSystemNotice("Error: Unknown profile '" + name + "'\nAvailable profiles: " + strings.Join(model.ProfileNames(), ", "))
		m.updateViewport()
		return *m, nil
	}

	m.profile = profile
	m.conversation.Profile = profile.Name
	m.conversation.AddSystemNotice("Response length changed to: " + profile.Name + " (max " + formatInt(profile.MaxTokens) + " tokens)")
	m.updateViewport()
	return *m, nil
}

// =============================================================================
// SESSION ARCHIVE COMMANDS
// =============================================================================

func handleSaveCommand(m *Model, args []string) (tea.Model, tea.Cmd) {
	if m.store == nil {
		m.conversation.AddSystemNotice("Error: Session archive unavailable")
		m.updateViewport()
		return *m, nil
	}
	if m.conversation.IsEmpty() {
		m.conversation.AddSystemNotice("Nothing to save yet")
		m.updateViewport()
		return *m, nil
	}

	// The snapshot is taken here, on the UI goroutine, so the write in the
	// command cannot race a conversation mutation.
	sess := storage.FromConversation(m.conversation)
	store := m.store
	return *m, func() tea.Msg {
		id, err := store.Save(sess)
		return SessionSavedMsg{ID: id, Error: err}
	}
}

func handleSessionsCommand(m *Model, args []string) (tea.Model, tea.Cmd) {
	if m.store == nil {
		m.conversation.AddSystemNotice("Error: Session archive unavailable")
		m.updateViewport()
		return *m, nil
	}

	query := strings.Join(args, " ")
	store := m.store
	return *m, func() tea.Msg {
		var (
			sessions []storage.SessionMeta
			err      error
		)
		if query == "" {
			sessions, err = store.List()
		} else {
			sessions, err = store.Search(query)
		}
		return SessionListMsg{Sessions: sessions, Query: query, Error: err}
	}
}

func handleResumeCommand(m *Model, args []string) (tea.Model, tea.Cmd) {
	if m.store == nil {
		m.conversation.AddSystemNotice("Error: Session archive unavailable")
		m.updateViewport()
		return *m, nil
	}
	if len(args) == 0 {
		m.conversation.AddSystemNotice("Error: Session number required\nUsage: /resume <n>\nUse /sessions to see saved sessions")
		m.updateViewport()
		return *m, nil
	}

	index, err := strconv.Atoi(strings.TrimPrefix(args[0], "#"))
	if err != nil || index < 1 {
		m.conversation.AddSystemNotice("Error: Invalid session number '" + args[0] + "'\nUsage: /resume <n>")
		m.updateViewport()
		return *m, nil
	}

	store := m.store
	return *m, func() tea.Msg {
		sess, err := store.LoadByIndex(index)
		if err != nil {
			return SessionResumedMsg{Error: err}
		}
		return SessionResumedMsg{Conversation: sess.ToConversation()}
	}
}

func handleExportCommand(m *Model, args []string) (tea.Model, tea.Cmd) {
	if m.conversation.IsEmpty() {
		m.conversation.AddSystemNotice("Nothing to export yet")
		m.updateViewport()
		return *m, nil
	}

	format := "markdown"
	if len(args) > 0 {
		format = strings.ToLower(args[0])
		if format == "md" {
			format = "markdown"
		}
		if format != "markdown" && format != "json" {
			m.conversation.AddSystemNotice("Error: Invalid format '" + args[0] + "'\nUsage: /export [md|json]")
			m.updateViewport()
			return *m, nil
		}
	}

	sess := storage.FromConversation(m.conversation)
	dir := m.exportDir
	return *m, func() tea.Msg {
		path, err := sess.WriteExport(dir, format)
		return ExportCompleteMsg{Path: path, Format: format, Error: err}
	}
}

// =============================================================================
// SESSION RESULT HANDLERS
// =============================================================================

func (m Model) handleSessionSaved(msg SessionSavedMsg) (tea.Model, tea.Cmd) {
	if msg.Error != nil {
		m.conversation.AddSystemNotice("Error: Failed to save session - " + msg.Error.Error())
	} else {
		m.conversation.AddSystemNotice("Session saved (" + msg.ID + ")")
		m.statusMsg = "Session saved"
	}
	m.updateViewport()
	return m, nil
}

func (m Model) handleSessionList(msg SessionListMsg) (tea.Model, tea.Cmd) {
	if msg.Error != nil {
		m.conversation.AddSystemNotice("Error: Failed to list sessions - " + msg.Error.Error())
		m.updateViewport()
		return m, nil
	}

	header := "Saved Sessions:"
	if msg.Query != "" {
		header = "Sessions matching '" + msg.Query + "':"
	}

	body := header + "\n\n" + storage.FormatSessionList(msg.Sessions)
	if len(msg.Sessions) > 0 {
		body += "\n\nUse /resume <n> to continue a session"
	}
	m.conversation.AddSystemNotice(body)
	m.updateViewport()
	return m, nil
}

func (m Model) handleSessionResumed(msg SessionResumedMsg) (tea.Model, tea.Cmd) {
	if msg.Error != nil {
		m.conversation.AddSystemNotice("Error: Failed to resume session - " + msg.Error.Error())
		m.updateViewport()
		return m, nil
	}

	m.SetConversation(msg.Conversation)
	title := m.conversation.Title
	if title == "" {
		title = m.conversation.ID
	}
	m.conversation.AddSystemNotice("Resumed session: " + title)
	m.statusMsg = "Session resumed"
	m.updateViewport()
	return m, nil
}

func (m Model) handleExportComplete(msg ExportCompleteMsg) (tea.Model, tea.Cmd) {
	if msg.Error != nil {
		m.conversation.AddSystemNotice("Error: Export failed - " + msg.Error.Error())
	} else {
		m.conversation.AddSystemNotice("Exported conversation to " + msg.Path)
		m.statusMsg = "Exported"
	}
	m.updateViewport()
	return m, nil
}
