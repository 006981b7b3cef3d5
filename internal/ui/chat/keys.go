// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file defines keyboard bindings and shortcuts for the chat interface,
// along with the help text data rendered by the /help command.
package chat

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines all keyboard bindings for the chat interface.
// The input field stays focused at all times, so every binding here must
// avoid keys the text input consumes for editing (ctrl+a, ctrl+e, ctrl+u,
// ctrl+k, ctrl+w and plain characters).
type KeyMap struct {
	Up           key.Binding
	Down         key.Binding
	PageUp       key.Binding
	PageDown     key.Binding
	Home         key.Binding
	End          key.Binding
	Submit       key.Binding
	Help         key.Binding
	Quit         key.Binding
	Clear        key.Binding
	CycleModel   key.Binding
	CycleProfile key.Binding
	CopyLast     key.Binding
}

// DefaultKeyMap returns the default key bindings for the chat interface.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("Up", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("Down", "scroll down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("PgUp", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("PgDn", "page down"),
		),
		Home: key.NewBinding(
			key.WithKeys("home"),
			key.WithHelp("Home", "go to top"),
		),
		End: key.NewBinding(
			key.WithKeys("end"),
			key.WithHelp("End", "go to bottom"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "send message"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("F1", "show help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+q"),
			key.WithHelp("C-c", "quit"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("C-l", "clear conversation"),
		),
		CycleModel: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("C-o", "switch model"),
		),
		CycleProfile: key.NewBinding(
			key.WithKeys("ctrl+p"),
			key.WithHelp("C-p", "switch response length"),
		),
		CopyLast: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("C-y", "copy last response"),
		),
	}
}

// =============================================================================
// KEY BINDING HELPERS
// =============================================================================

// ShortHelp returns the key bindings shown in the status bar hint.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.CycleModel, k.CycleProfile, k.Quit}
}

// FullHelp returns all key bindings grouped for the help display.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		// Navigation
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Home, k.End},
		// Actions
		{k.Submit, k.Clear, k.CopyLast},
		// Selection
		{k.CycleModel, k.CycleProfile},
		// Misc
		{k.Help, k.Quit},
	}
}

// =============================================================================
// HELP TEXT DATA
// =============================================================================

// HelpCategory groups shortcuts for the /help display.
type HelpCategory string

const (
	CategoryNavigation HelpCategory = "Navigation"
	CategoryActions    HelpCategory = "Actions"
	CategorySelection  HelpCategory = "Selection"
	CategoryCommands   HelpCategory = "Commands"
)

// HelpItem is a single shortcut entry in the /help display.
type HelpItem struct {
	Key      string
	Desc     string
	Category HelpCategory
}

// GetHelpItems returns every keyboard shortcut with its description.
func GetHelpItems() []HelpItem {
	return []HelpItem{
		{"Up/Down", "Scroll one line", CategoryNavigation},
		{"PgUp/PgDn", "Scroll one page", CategoryNavigation},
		{"Home/End", "Jump to top / bottom", CategoryNavigation},

		{"Enter", "Send message", CategoryActions},
		{"C-l", "Clear conversation", CategoryActions},
		{"C-y", "Copy last response", CategoryActions},
		{"Esc/Enter", "Dismiss error", CategoryActions},

		{"C-o", "Switch model", CategorySelection},
		{"C-p", "Switch response length", CategorySelection},

		{"/command", "Run slash command", CategoryCommands},
		{"F1", "Show this help", CategoryCommands},
		{"C-c", "Quit", CategoryCommands},
	}
}

// GetHelpItemsByCategory groups help items for ordered display.
func GetHelpItemsByCategory() map[HelpCategory][]HelpItem {
	grouped := make(map[HelpCategory][]HelpItem)
	for _, item := range GetHelpItems() {
		grouped[item.Category] = append(grouped[item.Category], item)
	}
	return grouped
}

// GetCategoryOrder returns the display order for help categories.
func GetCategoryOrder() []HelpCategory {
	return []HelpCategory{
		CategoryNavigation,
		CategoryActions,
		CategorySelection,
		CategoryCommands,
	}
}
