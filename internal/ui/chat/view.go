// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file contains all rendering logic for the chat interface, including:
//   - Main view rendering (renderChat)
//   - Message rendering (user, assistant, system messages)
//   - UI components (header, sidebar, status bar, input area)
//   - Code block processing and syntax highlighting
//   - Error box overlay
//
// All helper functions for formatting and text utilities live in utils.go.
package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/llamachat/internal/model"
	"github.com/jeranaias/llamachat/internal/ui/components"
	"github.com/jeranaias/llamachat/internal/ui/styles"
)

// sidebarOuterWidth is the total column width the sidebar occupies in the
// wide layout, border and padding included. handleResize subtracts it from
// the viewport width, so the two must stay in sync.
const sidebarOuterWidth = 28

// =============================================================================
// MAIN RENDER
// =============================================================================

// renderChat renders the complete chat view.
// Layout: header + messages (viewport, with sidebar in wide layouts) +
// input (3 lines) + status (1 line). Total height must equal m.height
// exactly to prevent overflow/underflow.
//
// COUPLING WARNING: The viewport height is pre-calculated in handleResize()
// (model.go) using conservative constant estimates. This function measures
// actual heights with lipgloss.Height() and has a fallback if there's a
// mismatch. If you change the height of any component here, also update the
// constants in handleResize().
func (m Model) renderChat() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	// Build fixed-height components first to calculate available space
	header := m.renderHeader()
	input := m.renderInput()
	status := m.renderStatusBar()

	headerHeight := lipgloss.Height(header)
	inputHeight := lipgloss.Height(input)
	statusHeight := lipgloss.Height(status)

	availableHeight := m.height - headerHeight - inputHeight - statusHeight
	if availableHeight < 1 {
		availableHeight = 1
	}

	// The viewport should already be sized via handleResize. Verify and
	// force the height if the measured layout disagrees, so a sizing bug
	// degrades to a clipped scrollback instead of a broken frame.
	messages := m.viewport.View()
	if lipgloss.Height(messages) != availableHeight {
		messages = lipgloss.NewStyle().
			Height(availableHeight).
			MaxHeight(availableHeight).
			Width(m.viewport.Width).
			Render(messages)
	}

	middle := messages
	if m.sidebarVisible() {
		sidebar := m.renderSidebar(availableHeight)
		middle = lipgloss.JoinHorizontal(lipgloss.Top, messages, sidebar)
	}

	baseView := lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		middle,
		input,
		status,
	)

	// The error box floats over the conversation so the exchange that
	// failed stays readable behind it.
	if m.state == StateError && m.lastError != nil {
		return m.overlayCentered(baseView, m.renderErrorBox())
	}

	return baseView
}

// overlayCentered layers a box over the center of the base view. Base
// content to the right of the box on overlapped rows is dropped; the box
// is modal, so nothing behind it is interactive anyway.
func (m Model) overlayCentered(baseView, boxView string) string {
	baseLines := strings.Split(baseView, "\n")
	boxLines := strings.Split(boxView, "\n")

	boxHeight := len(boxLines)
	boxWidth := 0
	for _, line := range boxLines {
		if w := lipgloss.Width(line); w > boxWidth {
			boxWidth = w
		}
	}

	startRow := (m.height - boxHeight) / 2
	if startRow < 0 {
		startRow = 0
	}
	startCol := (m.width - boxWidth) / 2
	if startCol < 0 {
		startCol = 0
	}

	result := make([]string, len(baseLines))
	for i, baseLine := range baseLines {
		boxLineIdx := i - startRow
		if boxLineIdx < 0 || boxLineIdx >= boxHeight {
			result[i] = baseLine
			continue
		}

		left := truncateToWidth(baseLine, startCol)
		if pad := startCol - lipgloss.Width(left); pad > 0 {
			left += strings.Repeat(" ", pad)
		}
		result[i] = left + boxLines[boxLineIdx]
	}

	return strings.Join(result, "\n")
}

// truncateToWidth truncates a string to fit within a given visible width.
func truncateToWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}

	currentWidth := 0
	var result strings.Builder

	for _, r := range s {
		runeWidth := lipgloss.Width(string(r))
		if currentWidth+runeWidth > width {
			break
		}
		result.WriteRune(r)
		currentWidth += runeWidth
	}

	return result.String()
}

// =============================================================================
// HEADER
// =============================================================================

// renderHeader renders the title bar with the state indicator. The
// subtitle is dropped in narrow layouts where it would wrap.
func (m Model) renderHeader() string {
	width := m.width
	if width <= 0 {
		width = 80
	}

	title := m.theme.HeaderTitle.Render("LLAMA Chat")

	var subtitle string
	if m.theme.GetLayoutMode() != styles.LayoutNarrow {
		subtitle = "  " + m.theme.HeaderSubtitle.Render("Your intelligent assistant powered by LLaMA 3 & DeepSeek")
	}

	var stateIcon string
	switch m.state {
	case StateAwaiting, StateStreaming:
		stateIcon = m.theme.StateBusy.Render("  " + styles.StatusIndicators.Pending)
	case StateError:
		stateIcon = m.theme.StateFailed.Render("  " + styles.StatusIndicators.Error)
	default:
		stateIcon = m.theme.StateReady.Render("  " + styles.StatusIndicators.Success)
	}

	return m.theme.Header.Width(width - 2).Render(title + subtitle + stateIcon)
}

// =============================================================================
// MESSAGES
// =============================================================================

// messageAreaWidth returns the width available for message rendering.
// This is the viewport width, not the terminal width; the sidebar claims
// its column before messages are laid out.
func (m *Model) messageAreaWidth() int {
	w := m.viewport.Width
	if w <= 0 {
		w = 80
	}
	return w
}

// renderMessages renders all messages in the conversation with appropriate
// styling. Returns the welcome screen if the conversation is empty.
func (m *Model) renderMessages() string {
	if m.conversation == nil || len(m.conversation.Messages) == 0 {
		return m.renderEmptyState()
	}

	var parts []string
	msgs := m.conversation.Messages

	for i, msg := range msgs {
		rendered := m.renderMessage(msg, i == len(msgs)-1)
		if rendered != "" {
			parts = append(parts, rendered)
		}
	}

	// The thinking indicator shows between submission and the first token.
	if m.state == StateAwaiting {
		parts = append(parts, m.renderThinking())
	}

	return strings.Join(parts, "\n")
}

// renderMessage renders a single message based on its role.
func (m *Model) renderMessage(msg *model.Message, isLast bool) string {
	switch msg.Role {
	case model.RoleUser:
		return m.renderUserMessage(msg)
	case model.RoleAssistant:
		return m.renderAssistantMessage(msg, isLast)
	case model.RoleSystem:
		return m.renderSystemMessage(msg)
	default:
		return msg.GetDisplayContent()
	}
}

// renderUserMessage renders a user message right-aligned in a blue bubble.
// Very long pastes are previewed; the full text still went to the model.
func (m *Model) renderUserMessage(msg *model.Message) string {
	areaWidth := m.messageAreaWidth()
	maxWidth := areaWidth - 8
	if maxWidth < 10 {
		maxWidth = 10
	}
	wrapWidth := maxWidth - 4
	if wrapWidth < 10 {
		wrapWidth = 10
	}

	content := msg.GetDisplayContent()
	if isMessageTruncatable(content) {
		content = renderMessagePreview(content, false)
	}

	bubble := m.theme.UserBubble.MarginLeft(0).MaxWidth(maxWidth)
	rendered := bubble.Render(wrapText(content, wrapWidth))

	// Push the bubble toward the right edge.
	marginLeft := areaWidth - lipgloss.Width(rendered) - 4
	if marginLeft < 0 {
		marginLeft = 0
	}

	return lipgloss.NewStyle().
		MarginLeft(marginLeft).
		MarginTop(1).
		MarginBottom(1).
		Render(rendered)
}

// renderAssistantMessage renders an assistant message with code block
// processing, the streaming cursor, and the statistics line.
func (m *Model) renderAssistantMessage(msg *model.Message, isLast bool) string {
	areaWidth := m.messageAreaWidth()
	maxWidth := areaWidth - 8
	if maxWidth < 10 {
		maxWidth = 10
	}

	content := msg.GetDisplayContent()

	// The empty placeholder renders nothing until tokens arrive; the
	// thinking indicator covers the gap.
	if strings.TrimSpace(content) == "" && !msg.IsStreaming {
		return ""
	}
	if content == "" && msg.IsStreaming && m.state != StateStreaming {
		return ""
	}

	// Blinking cursor on the live message. Both cursor frames are one
	// cell wide, so the blink never shifts the layout.
	if msg.IsStreaming && isLast && m.state == StateStreaming {
		content += m.theme.ThinkingDots.Render(styles.CursorFrame(time.Now()))
	}

	processed := m.renderContentWithCodeBlocks(content, maxWidth)

	var statsLine string
	if m.showStats && !msg.IsStreaming && !msg.IsError {
		if stats := m.renderStats(msg); stats != "" {
			statsLine = "\n" + stats
		}
	}

	// Failed generations keep their partial output, marked as interrupted.
	var errorLine string
	if msg.IsError {
		errorLine = "\n" + lipgloss.NewStyle().
			PaddingLeft(2).
			Render(m.theme.StateFailed.Render(styles.StatusIndicators.Error+" Response interrupted"))
	}

	return lipgloss.NewStyle().
		MarginTop(1).
		MarginBottom(1).
		MarginLeft(2).
		Render(processed + statsLine + errorLine)
}

// renderContentWithCodeBlocks splits fenced code out of the content and
// renders each segment separately: prose in assistant bubbles with inline
// code styling, code through the syntax-highlighted code block component.
func (m *Model) renderContentWithCodeBlocks(content string, maxWidth int) string {
	wrapWidth := maxWidth - 4
	if wrapWidth < 10 {
		wrapWidth = 10
	}

	textBubble := m.theme.AssistantBubble.MaxWidth(maxWidth)

	if !components.HasCodeFence(content) {
		return textBubble.Render(components.ParseInlineCode(wrapText(content, wrapWidth)))
	}

	var parts []string
	var currentText []string
	var codeLines []string
	var language string
	var inCodeBlock bool

	flushText := func() {
		if len(currentText) == 0 {
			return
		}
		text := strings.Join(currentText, "\n")
		if strings.TrimSpace(text) != "" {
			parts = append(parts, textBubble.Render(components.ParseInlineCode(wrapText(text, wrapWidth))))
		}
		currentText = nil
	}

	for _, line := range strings.Split(content, "\n") {
		switch {
		case strings.HasPrefix(line, "```") && inCodeBlock:
			cb := components.NewCodeBlock(language, strings.Join(codeLines, "\n"))
			cb.SetMaxWidth(maxWidth)
			parts = append(parts, cb.Render())
			codeLines = nil
			language = ""
			inCodeBlock = false

		case strings.HasPrefix(line, "```"):
			flushText()
			language = strings.TrimSpace(strings.TrimPrefix(line, "```"))
			inCodeBlock = true

		case inCodeBlock:
			codeLines = append(codeLines, line)

		default:
			currentText = append(currentText, line)
		}
	}

	flushText()

	// An unclosed fence is normal mid-stream; render what arrived so far
	// as code rather than leaking the fence marker into prose.
	if inCodeBlock {
		if len(codeLines) > 0 {
			cb := components.NewCodeBlock(language, strings.Join(codeLines, "\n"))
			cb.SetMaxWidth(maxWidth)
			parts = append(parts, cb.Render())
		} else {
			parts = append(parts, textBubble.Render("```"+language))
		}
	}

	return strings.Join(parts, "\n")
}

// renderSystemMessage renders a system notice centered in an amber bubble.
func (m *Model) renderSystemMessage(msg *model.Message) string {
	areaWidth := m.messageAreaWidth()
	maxWidth := areaWidth - 8
	if maxWidth < 10 {
		maxWidth = 10
	}
	wrapWidth := maxWidth - 4
	if wrapWidth < 10 {
		wrapWidth = 10
	}

	rendered := m.theme.SystemBubble.MaxWidth(maxWidth).Render(wrapText(msg.GetDisplayContent(), wrapWidth))

	return lipgloss.NewStyle().
		MarginTop(1).
		MarginBottom(1).
		Render(rendered)
}

// renderStats renders the statistics line for a completed response.
func (m *Model) renderStats(msg *model.Message) string {
	stats := msg.FormatStats()
	if stats == "" {
		return ""
	}

	return m.theme.StatsLabel.
		Italic(true).
		PaddingLeft(2).
		Render(stats)
}

// renderThinking renders the animated indicator shown while the request
// is in flight but no tokens have arrived.
func (m *Model) renderThinking() string {
	frames := styles.DotsSpinner.Frames
	frame := frames[m.thinkingFrame%len(frames)]

	var elapsed string
	if !m.thinkingStart.IsZero() {
		elapsed = m.theme.StatsLabel.Render(" " + formatFloat64(time.Since(m.thinkingStart).Seconds()) + "s")
	}

	return lipgloss.NewStyle().
		MarginTop(1).
		MarginLeft(2).
		Render(m.theme.Spinner.Render(m.spinner.View()) + " " + m.theme.ThinkingText.Render("Thinking") + m.theme.ThinkingDots.Render(frame) + elapsed)
}

// renderEmptyState renders the welcome screen for an empty conversation.
func (m *Model) renderEmptyState() string {
	width := m.messageAreaWidth()
	emptyWidth := width - 8
	if emptyWidth < 30 {
		emptyWidth = 30
	}
	if emptyWidth > 80 {
		emptyWidth = 80
	}

	var sb strings.Builder

	titleStyle := lipgloss.NewStyle().
		Foreground(styles.Purple).
		Bold(true).
		Align(lipgloss.Center).
		Width(emptyWidth)
	sb.WriteString(titleStyle.Render("LLAMA Chat"))
	sb.WriteString("\n\n")

	welcomeStyle := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Align(lipgloss.Center).
		Width(emptyWidth)
	sb.WriteString(welcomeStyle.Render(wrapText("Welcome! Choose a model and response length from the sidebar to start chatting.", emptyWidth)))
	sb.WriteString("\n\n")

	sepStyle := lipgloss.NewStyle().
		Foreground(styles.Overlay).
		Align(lipgloss.Center).
		Width(emptyWidth)
	sb.WriteString(sepStyle.Render(strings.Repeat("-", 40)))
	sb.WriteString("\n\n")

	tipsHeaderStyle := lipgloss.NewStyle().
		Foreground(styles.Cyan).
		Bold(true)
	sb.WriteString(tipsHeaderStyle.Render("Quick Tips"))
	sb.WriteString("\n\n")

	tipStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted)
	keyStyle := lipgloss.NewStyle().
		Foreground(styles.Amber).
		Bold(true)

	tips := []struct {
		key  string
		desc string
	}{
		{"Type a message", "Start chatting"},
		{"Enter", "Send your message"},
		{"Ctrl+O", "Switch between LLaMA 3 and DeepSeek"},
		{"Ctrl+P", "Switch response length"},
		{"/help", "List available commands"},
		{"F1", "Show keyboard shortcuts"},
	}

	for _, tip := range tips {
		line := fmt.Sprintf("  %s  %s",
			keyStyle.Render(fmt.Sprintf("%-16s", tip.key)),
			tipStyle.Render(tip.desc))
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	sb.WriteString("\n")

	examplesHeaderStyle := lipgloss.NewStyle().
		Foreground(styles.Emerald).
		Bold(true)
	sb.WriteString(examplesHeaderStyle.Render("Try asking"))
	sb.WriteString("\n\n")

	exampleStyle := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Italic(true)

	examples := []string{
		"\"Explain how goroutines work in Go\"",
		"\"Write a function to parse JSON\"",
		"\"Summarize the trade-offs between SQL and NoSQL\"",
	}

	for _, example := range examples {
		sb.WriteString("  " + exampleStyle.Render(example))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")

	hintStyle := lipgloss.NewStyle().
		Foreground(styles.Overlay).
		Align(lipgloss.Center).
		Width(emptyWidth)
	sb.WriteString(hintStyle.Render("Press F1 for help | Ctrl+C to quit"))

	containerStyle := lipgloss.NewStyle().
		Align(lipgloss.Center).
		Width(width - 4).
		Padding(2, 0)

	return containerStyle.Render(sb.String())
}

// =============================================================================
// SIDEBAR
// =============================================================================

// sidebarVisible reports whether the sidebar fits the current layout.
// Narrow and medium layouts give the whole width to the conversation;
// the selectors stay reachable through Ctrl+O / Ctrl+P and the commands.
func (m Model) sidebarVisible() bool {
	return m.theme != nil && m.theme.GetLayoutMode() == styles.LayoutWide
}

// renderSidebar renders the model selector, the response length selector,
// and the context usage gauge in a fixed-width column.
func (m *Model) renderSidebar(height int) string {
	// Border (2) plus horizontal padding (4).
	innerWidth := sidebarOuterWidth - 6

	var sb strings.Builder

	sb.WriteString(m.theme.SidebarHeading.Render("Model"))
	sb.WriteString("\n")
	for _, name := range model.ChoiceNames() {
		choice, ok := model.GetModelChoice(name)
		if !ok {
			continue
		}
		label := truncateToWidth(choice.Name, innerWidth-2)
		if choice.Name == m.modelChoice.Name {
			sb.WriteString(m.theme.SidebarItemActive.Render(label))
		} else {
			sb.WriteString(m.theme.SidebarItem.Render(label))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(m.theme.SidebarHint.Render("C-o to switch"))
	sb.WriteString("\n\n")

	sb.WriteString(m.theme.SidebarHeading.Render("Response Length"))
	sb.WriteString("\n")
	for _, name := range model.ProfileNames() {
		profile, ok := model.GetProfile(name)
		if !ok {
			continue
		}
		if profile.Name == m.profile.Name {
			sb.WriteString(m.theme.SidebarItemActive.Render(profile.Name))
		} else {
			sb.WriteString(m.theme.SidebarItem.Render(profile.Name))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(m.theme.SidebarHint.Render("C-p to switch"))
	sb.WriteString("\n\n")

	sb.WriteString(m.theme.SidebarHeading.Render("Context"))
	sb.WriteString("\n")
	percent := m.contextPercent()
	sb.WriteString(styles.RenderProgressBar(innerWidth, percent))
	sb.WriteString("\n")
	sb.WriteString(m.theme.SidebarHint.Render(formatFloat64(percent) + "% of " + m.modelChoice.ContextString()))
	sb.WriteString("\n\n")

	sb.WriteString(m.theme.SidebarHeading.Render("Session"))
	sb.WriteString("\n")
	sb.WriteString(m.theme.SidebarHint.Render("C-l clear chat"))

	contentHeight := height - 4
	if contentHeight < 1 {
		contentHeight = 1
	}

	// Width excludes the border, so the rendered column totals
	// sidebarOuterWidth exactly.
	return m.theme.SidebarBox.
		Width(sidebarOuterWidth - 2).
		Height(contentHeight).
		MaxHeight(height).
		Render(sb.String())
}

// contextPercent estimates how much of the active model's context window
// the conversation occupies.
func (m *Model) contextPercent() float64 {
	if m.conversation == nil || m.modelChoice.ContextWindow <= 0 {
		return 0
	}
	percent := float64(m.conversation.EstimateTokens()) / float64(m.modelChoice.ContextWindow) * 100
	if percent > 100 {
		percent = 100
	}
	return percent
}

// =============================================================================
// INPUT AREA
// =============================================================================

// renderInput renders the input area: a colored rule, the input line, and
// the character count. The rule dims while a request is in flight to show
// that submission is gated, even though typing still works.
func (m Model) renderInput() string {
	width := m.width
	if width <= 0 {
		width = 80
	}

	borderColor := styles.FocusRing
	if m.IsStreaming() {
		borderColor = styles.Overlay
	}
	topBorder := lipgloss.NewStyle().
		Foreground(borderColor).
		Render(strings.Repeat("─", width))

	var statusIndicator string
	switch m.state {
	case StateAwaiting:
		statusIndicator = lipgloss.NewStyle().
			Foreground(styles.Amber).
			Render(" (waiting...)")
	case StateStreaming:
		statusIndicator = lipgloss.NewStyle().
			Foreground(styles.Amber).
			Render(" (streaming...)")
	}

	inputLineWidth := width - 4
	if inputLineWidth < 10 {
		inputLineWidth = 10
	}
	inputLine := lipgloss.NewStyle().
		Width(inputLineWidth).
		Render("  " + m.input.View() + statusIndicator)

	charCount := m.renderCharCount()

	result := lipgloss.JoinVertical(
		lipgloss.Left,
		topBorder,
		inputLine,
		charCount,
	)

	// Fixed height prevents layout shift while typing.
	return lipgloss.NewStyle().
		Height(3).
		MaxHeight(3).
		Width(width).
		Render(result)
}

// renderCharCount renders the character count indicator.
func (m Model) renderCharCount() string {
	count := len([]rune(m.input.Value()))
	max := m.input.CharLimit
	if max <= 0 {
		max = 1
	}

	percent := float64(count) / float64(max) * 100
	style := m.theme.CharCount
	if percent >= 90 {
		style = m.theme.CharCountDanger
	} else if percent >= 75 {
		style = m.theme.CharCountWarning
	}

	countStr := formatInt(count) + " / " + formatInt(max)

	width := m.width
	if width <= 0 {
		width = 80
	}
	charCountWidth := width - 4
	if charCountWidth < 10 {
		charCountWidth = 10
	}

	return lipgloss.NewStyle().
		Width(charCountWidth).
		Align(lipgloss.Right).
		Padding(0, 2).
		Render(style.Render(countStr))
}

// =============================================================================
// STATUS BAR
// =============================================================================

// renderStatusBar renders the bottom status bar.
// Format: Llama3.3-70B-Versatile | Balanced | READY | 1,234 tok | Saved
// Responsive: content is progressively removed on narrow terminals so the
// bar never wraps or overflows.
func (m Model) renderStatusBar() string {
	width := m.width
	if width <= 0 {
		width = 80
	}

	sep := lipgloss.NewStyle().Foreground(styles.Overlay).Render(" | ")

	maxContentWidth := width - 4
	if maxContentWidth < 20 {
		maxContentWidth = 20
	}

	var stateStr string
	switch m.state {
	case StateAwaiting, StateStreaming:
		stateStr = m.theme.StateBusy.Render("BUSY")
	case StateError:
		stateStr = m.theme.StateFailed.Render("ERROR")
	default:
		stateStr = m.theme.StateReady.Render("READY")
	}

	profileStr := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Render(m.profile.Name)

	var tokenStr string
	if m.conversation != nil && !m.conversation.IsEmpty() {
		tokenStr = m.theme.StatsLabel.Render(formatNumberWithCommas(m.conversation.EstimateTokens()) + " tok")
	}

	var noteStr string
	if m.statusMsg != "" {
		noteStr = lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Italic(true).
			Render(m.statusMsg)
	}

	shortcutsFull := m.theme.ShortcutDesc.Render("F1=help | C-o=model | C-p=length | C-c=quit")
	shortcutsShort := m.theme.ShortcutDesc.Render("F1 | C-c")

	buildStatusBar := func(modelName string, showProfile, showTokens, showNote, useFullShortcuts bool) (left, right string, totalWidth int) {
		modelStr := lipgloss.NewStyle().
			Foreground(styles.TextSecondary).
			Render(modelName)

		parts := []string{modelStr}
		if showProfile {
			parts = append(parts, profileStr)
		}
		parts = append(parts, stateStr)
		if showTokens && tokenStr != "" {
			parts = append(parts, tokenStr)
		}
		if showNote && noteStr != "" {
			parts = append(parts, noteStr)
		}
		left = strings.Join(parts, sep)

		if useFullShortcuts {
			right = shortcutsFull
		} else {
			right = shortcutsShort
		}

		totalWidth = lipgloss.Width(left) + lipgloss.Width(right) + 1
		return left, right, totalWidth
	}

	// Try configurations from most complete to most minimal. Each step
	// removes one element or truncates the model name harder.
	type statusConfig struct {
		modelMaxLen      int
		showProfile      bool
		showTokens       bool
		showNote         bool
		useFullShortcuts bool
	}

	configurations := []statusConfig{
		{40, true, true, true, true},
		{40, true, true, true, false},
		{40, true, true, false, false},
		{40, true, false, false, false},
		{25, true, false, false, false},
		{25, false, false, false, false},
		{12, false, false, false, false},
		{8, false, false, false, false},
	}

	modelName := m.modelChoice.Name

	var finalLeft, finalRight string
	for _, cfg := range configurations {
		truncated := modelName
		runes := []rune(truncated)
		if len(runes) > cfg.modelMaxLen {
			truncated = string(runes[:cfg.modelMaxLen]) + ".."
		}

		left, right, totalWidth := buildStatusBar(
			truncated,
			cfg.showProfile,
			cfg.showTokens,
			cfg.showNote,
			cfg.useFullShortcuts,
		)

		if totalWidth <= maxContentWidth {
			finalLeft = left
			finalRight = right
			break
		}
	}

	if finalLeft == "" {
		finalLeft = stateStr
		finalRight = shortcutsShort
	}

	padding := maxContentWidth - lipgloss.Width(finalLeft) - lipgloss.Width(finalRight)
	if padding < 0 {
		padding = 0
	}

	return m.theme.StatusBar.
		Width(width).
		Render(finalLeft + strings.Repeat(" ", padding) + finalRight)
}

// =============================================================================
// ERROR BOX
// =============================================================================

// renderErrorBox renders the modal error box for the current failure.
func (m Model) renderErrorBox() string {
	if m.lastError == nil {
		return ""
	}

	boxWidth := 60
	if boxWidth > m.width-6 {
		boxWidth = m.width - 6
	}
	if boxWidth < 20 {
		boxWidth = 20
	}
	innerWidth := boxWidth - 6
	if innerWidth < 10 {
		innerWidth = 10
	}

	var sb strings.Builder
	sb.WriteString(m.theme.ErrorTitle.Render(m.lastError.Title))
	sb.WriteString("\n\n")
	sb.WriteString(m.theme.ErrorMessage.Render(wrapText("An error occurred: "+m.lastError.Message, innerWidth)))

	if m.lastError.Hint != "" {
		sb.WriteString("\n\n")
		sb.WriteString(m.theme.ErrorTip.Render(wrapText("Hint: "+m.lastError.Hint, innerWidth)))
	}

	sb.WriteString("\n\n")
	sb.WriteString(m.theme.StatsLabel.Render("Press Esc or Enter to dismiss"))

	return m.theme.ErrorBox.Width(boxWidth).Render(sb.String())
}
