// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/llamachat/internal/config"
	"github.com/jeranaias/llamachat/internal/model"
	"github.com/jeranaias/llamachat/internal/storage"
	"github.com/jeranaias/llamachat/internal/ui/styles"
)

// =============================================================================
// CHAT STATE
// =============================================================================

// State represents the turn state of the chat view.
//
// The cycle is Idle -> Awaiting -> Streaming -> Idle, with Error as a
// terminal branch that returns to Idle on dismissal. Submission is only
// accepted in Idle; a running request is never cancelled, it either
// completes or fails.
type State int

const (
	StateIdle      State = iota // Ready for input
	StateAwaiting               // Request sent, no token received yet
	StateStreaming              // Tokens arriving
	StateError                  // Showing an error box
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	// State
	state State

	// Styling
	theme *styles.Theme

	// Dimensions
	width  int
	height int

	// Conversation
	conversation *model.Conversation

	// Active sidebar selections
	modelChoice model.ModelChoice
	profile     model.ResponseProfile

	// Current streaming message
	streamingMsgID string

	// Streaming optimization
	streamingBuffer   *StreamingBuffer   // Batches tokens between renders
	viewportOptimizer *ViewportOptimizer // Skips redundant viewport updates

	// Session archive (nil when storage is unavailable)
	store     *storage.SessionStore
	exportDir string

	// UI components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	// Key bindings
	keyMap KeyMap

	// Error state
	lastError *ErrorMsg

	// Status
	statusMsg string

	// Busy indicator
	thinkingStart time.Time
	thinkingFrame int

	// Display preferences (hot-reloadable)
	showStats bool
}

// New creates a new chat model.
func New(theme *styles.Theme) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type your message here..."
	ti.CharLimit = 4096
	ti.Focus()

	vp := viewport.New(80, 20)
	vp.SetContent("")

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: styles.LineSpinner.Frames,
		FPS:    styles.LineSpinner.Duration(),
	}

	modelChoice := model.DefaultChoice()
	profile := model.DefaultProfile()
	showStats := true
	exportDir := ""
	if cfg := config.Global(); cfg != nil {
		showStats = cfg.UI.ShowStats
		if choice, ok := model.GetModelChoice(cfg.DefaultModel); ok {
			modelChoice = choice
		}
		if p, ok := model.GetProfile(cfg.DefaultProfile); ok {
			profile = p
		}
		dir := cfg.Storage.Dir
		if dir == "" {
			if configDir, err := config.ConfigDir(); err == nil {
				dir = configDir
			}
		}
		if dir != "" {
			exportDir = filepath.Join(dir, "exports")
		}
	}

	conv := model.NewConversation()
	conv.Model = modelChoice.Name
	conv.Profile = profile.Name

	return Model{
		state:             StateIdle,
		theme:             theme,
		conversation:      conv,
		modelChoice:       modelChoice,
		profile:           profile,
		viewport:          vp,
		input:             ti,
		spinner:           sp,
		keyMap:            DefaultKeyMap(),
		streamingBuffer:   NewStreamingBuffer(),
		viewportOptimizer: NewViewportOptimizer(),
		exportDir:         exportDir,
		showStats:         showStats,
	}
}

// NewWithStore creates a chat model wired to a session archive.
// A nil store is allowed; the session commands then report that the
// archive is unavailable instead of failing.
func NewWithStore(theme *styles.Theme, store *storage.SessionStore) Model {
	m := New(theme)
	m.store = store
	return m
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StreamStartMsg:
		return m.handleStreamStart(msg)

	case StreamTokenMsg:
		return m.handleStreamToken(msg)

	case StreamTickMsg:
		return m.handleStreamTick(msg)

	case StreamCompleteMsg:
		return m.handleStreamComplete(msg)

	case StreamErrorMsg:
		return m.handleStreamError(msg)

	case ErrorMsg:
		m.lastError = &msg
		m.state = StateError
		return m, nil

	case ErrorDismissMsg:
		m.lastError = nil
		m.state = StateIdle
		m.input.Focus()
		return m, textinput.Blink

	case spinner.TickMsg:
		if m.state == StateAwaiting || m.state == StateStreaming {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case SpinnerTickMsg:
		return m.handleSpinnerTick(msg)

	case SessionSavedMsg:
		return m.handleSessionSaved(msg)

	case SessionListMsg:
		return m.handleSessionList(msg)

	case SessionResumedMsg:
		return m.handleSessionResumed(msg)

	case ExportCompleteMsg:
		return m.handleExportComplete(msg)

	case CopyCompleteMsg:
		return m.handleCopyComplete(msg)

	case ConfigReloadedMsg:
		return m.handleConfigReloaded(msg)

	default:
		// Unhandled messages still reach the text input and the viewport
		// so cursor blinks and mouse wheel scrolling keep working.
		if m.state == StateIdle {
			var inputCmd tea.Cmd
			m.input, inputCmd = m.input.Update(msg)
			cmds = append(cmds, inputCmd)
		}

		var vpCmd tea.Cmd
		m.viewport, vpCmd = m.viewport.Update(msg)
		cmds = append(cmds, vpCmd)

		return m, tea.Batch(cmds...)
	}
}

// View renders the chat view.
func (m Model) View() string {
	return m.renderChat()
}

// =============================================================================
// MESSAGE HANDLERS
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	if m.theme != nil {
		m.theme.SetSize(m.width, m.height)
	}

	// Reserved rows above and below the scrollback. Conservative values:
	// the view measures actual heights, but the viewport must never be
	// taller than what remains.
	const (
		headerHeight    = 4 // Title + subtitle + padding
		inputAreaHeight = 5 // Bordered input box + char count
		statusBarHeight = 2
	)

	viewportHeight := m.height - headerHeight - inputAreaHeight - statusBarHeight
	if viewportHeight < 1 {
		viewportHeight = 1
	}

	// The sidebar takes a fixed column in wide layouts; the scrollback
	// gets the rest.
	viewportWidth := m.width
	if m.sidebarVisible() {
		viewportWidth -= sidebarOuterWidth
	}
	if viewportWidth < 1 {
		viewportWidth = 1
	}

	m.viewport.Width = viewportWidth
	m.viewport.Height = viewportHeight

	// Input line spans the full width: border (2) + padding (2) + prompt (2).
	inputWidth := m.width - 8
	if inputWidth < 10 {
		inputWidth = 10
	}
	m.input.Width = inputWidth

	// Same content renders differently at the new width, so the content
	// hash must not suppress the redraw.
	m.viewportOptimizer.ForceUpdate()
	m.updateViewport()

	var vpCmd tea.Cmd
	m.viewport, vpCmd = m.viewport.Update(msg)

	return m, vpCmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Quit always works, even mid-stream. The in-flight request is
	// abandoned with the process; it is never cancelled in place.
	if key.Matches(msg, m.keyMap.Quit) {
		return m, tea.Quit
	}

	// Error box captures input until dismissed.
	if m.state == StateError {
		switch msg.String() {
		case "esc", "enter", " ":
			m.lastError = nil
			m.state = StateIdle
			m.input.Focus()
			return m, textinput.Blink
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keyMap.Help):
		return m.showHelp()

	case key.Matches(msg, m.keyMap.Clear):
		if m.state != StateIdle {
			return m, nil
		}
		m.clearConversation()
		return m, nil

	case key.Matches(msg, m.keyMap.CycleModel):
		if m.state != StateIdle {
			return m, nil
		}
		m.cycleModel()
		return m, nil

	case key.Matches(msg, m.keyMap.CycleProfile):
		if m.state != StateIdle {
			return m, nil
		}
		m.cycleProfile()
		return m, nil

	case key.Matches(msg, m.keyMap.CopyLast):
		return m.copyLastResponse()

	case key.Matches(msg, m.keyMap.Up):
		m.viewport.LineUp(1)
		return m, nil

	case key.Matches(msg, m.keyMap.Down):
		m.viewport.LineDown(1)
		return m, nil

	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.HalfViewDown()
		return m, nil

	case key.Matches(msg, m.keyMap.Home):
		m.viewport.GotoTop()
		return m, nil

	case key.Matches(msg, m.keyMap.End):
		m.viewport.GotoBottom()
		return m, nil

	case key.Matches(msg, m.keyMap.Submit):
		// Submits are dropped, not queued, while a request is in flight.
		if m.state != StateIdle {
			return m, nil
		}
		if strings.TrimSpace(m.input.Value()) == "" {
			m.input.Reset()
			return m, nil
		}
		return m.submitInput()
	}

	// Typing stays possible while a response streams; only submission
	// is gated on Idle.
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// SELECTION CYCLING
// =============================================================================

// cycleModel advances the active model to the next choice in display order.
func (m *Model) cycleModel() {
	names := model.ChoiceNames()
	if len(names) == 0 {
		return
	}

	idx := 0
	for i, name := range names {
		if name == m.modelChoice.Name {
			idx = i
			break
		}
	}

	next, ok := model.GetModelChoice(names[(idx+1)%len(names)])
	if !ok {
		return
	}
	m.modelChoice = next
	m.conversation.Model = next.Name
	m.conversation.AddSystemNotice("Model: " + next.Name + " (" + next.ContextString() + " context)")
	m.updateViewport()
}

// cycleProfile advances the active response profile.
func (m *Model) cycleProfile() {
	names := model.ProfileNames()
	if len(names) == 0 {
		return
	}

	idx := 0
	for i, name := range names {
		if name == m.profile.Name {
			idx = i
			break
		}
	}

	next, ok := model.GetProfile(names[(idx+1)%len(names)])
	if !ok {
		return
	}
	m.profile = next
	m.conversation.Profile = next.Name
	m.conversation.AddSystemNotice("Response length: " + next.Name)
	m.updateViewport()
}

// clearConversation wipes the scrollback and the request window.
func (m *Model) clearConversation() {
	m.conversation.ClearHistory()
	m.viewportOptimizer.Reset()
	m.updateViewport()
	m.statusMsg = "Conversation cleared"
}

// =============================================================================
// CLIPBOARD
// =============================================================================

// copyLastResponse copies the last completed assistant response to the
// clipboard. The write runs in a command so a slow clipboard provider
// cannot stall the UI loop.
func (m Model) copyLastResponse() (tea.Model, tea.Cmd) {
	last := m.conversation.GetLastAssistantMessage()
	if last == nil || last.Content == "" || last.IsStreaming {
		m.conversation.AddSystemNotice("No assistant response to copy")
		m.updateViewport()
		return m, nil
	}

	content := last.Content
	return m, func() tea.Msg {
		if err := copyToClipboard(content); err != nil {
			return CopyCompleteMsg{Success: false, Error: err}
		}
		return CopyCompleteMsg{Success: true}
	}
}

func (m Model) handleCopyComplete(msg CopyCompleteMsg) (tea.Model, tea.Cmd) {
	if msg.Success {
		m.conversation.AddSystemNotice("Copied response to clipboard")
	} else {
		m.conversation.AddSystemNotice("Failed to copy to clipboard: " + msg.Error.Error())
	}
	m.updateViewport()
	return m, nil
}

// =============================================================================
// VIEWPORT UPDATE
// =============================================================================

// updateViewport re-renders the scrollback into the viewport. The content
// hash check makes this cheap to call after every mutation; when the user
// has scrolled up, new content does not yank the view back down.
func (m *Model) updateViewport() {
	content := m.renderMessages()
	if !m.viewportOptimizer.ShouldUpdate(content) {
		return
	}

	pinned := m.viewport.AtBottom()
	m.viewport.SetContent(content)
	if pinned {
		m.viewport.GotoBottom()
	}
	m.viewportOptimizer.MarkClean()
}

// =============================================================================
// GETTERS AND SETTERS
// =============================================================================

// GetConversation returns the current conversation.
func (m *Model) GetConversation() *model.Conversation {
	return m.conversation
}

// SetConversation replaces the current conversation.
func (m *Model) SetConversation(conv *model.Conversation) {
	if conv == nil {
		conv = model.NewConversation()
	}
	m.conversation = conv
	m.syncSelections()
	m.viewportOptimizer.Reset()
	m.updateViewport()
}

// syncSelections aligns the sidebar selections with the conversation's
// recorded model and profile, falling back to defaults for unknown names.
func (m *Model) syncSelections() {
	if choice, ok := model.GetModelChoice(m.conversation.Model); ok {
		m.modelChoice = choice
	} else {
		m.modelChoice = model.DefaultChoice()
	}
	if profile, ok := model.GetProfile(m.conversation.Profile); ok {
		m.profile = profile
	} else {
		m.profile = model.DefaultProfile()
	}
}

// SetStore wires the session archive after construction.
func (m *Model) SetStore(store *storage.SessionStore) {
	m.store = store
}

// SetModelChoice overrides the active model selection.
func (m *Model) SetModelChoice(choice model.ModelChoice) {
	m.modelChoice = choice
	m.conversation.Model = choice.Name
}

// SetProfile overrides the active response length profile.
func (m *Model) SetProfile(profile model.ResponseProfile) {
	m.profile = profile
	m.conversation.Profile = profile.Name
}

// GetState returns the current state.
func (m *Model) GetState() State {
	return m.state
}

// IsStreaming returns true while a request is in flight.
func (m *Model) IsStreaming() bool {
	return m.state == StateAwaiting || m.state == StateStreaming
}

// CurrentModel returns the active model choice.
func (m *Model) CurrentModel() model.ModelChoice {
	return m.modelChoice
}

// CurrentProfile returns the active response profile.
func (m *Model) CurrentProfile() model.ResponseProfile {
	return m.profile
}
