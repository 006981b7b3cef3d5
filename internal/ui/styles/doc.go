// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the llamachat TUI.

This package defines the color palette, themed lipgloss styles, and
animation primitives used throughout the application. All colors use
Lip Gloss AdaptiveColor for automatic light/dark terminal detection.

# Color System (colors.go)

## Primary Accent Colors

  - Purple - Primary accent for assistant replies and the header title
  - Cyan - Info, slash commands, and focus highlights
  - Emerald - Success states and save confirmations
  - Amber - Warnings and the streaming indicator
  - Rose - Errors and failed requests

## Semantic Colors

Message bubbles and UI elements use semantic color tokens:

	UserBubbleBg      - Background for user messages
	UserBubbleFg      - Text color for user messages
	AssistantBubbleBg - Background for assistant messages
	AssistantBubbleFg - Text color for assistant messages
	ErrorBoxBg        - Background for the failed-request box

## Surface Colors

Layered surface system for depth:

	Surface    - Main background
	SurfaceDim - Subtle backgrounds (headers, status bars)
	Overlay    - Borders and separators

## Text Colors

Hierarchical text color system:

	TextPrimary   - Main content text
	TextSecondary - Supporting text
	TextMuted     - De-emphasized text
	TextInverse   - Text on colored backgrounds

# Theme System (theme.go)

The Theme struct provides runtime color adaptation:

	theme := styles.NewTheme()
	if theme.IsDark {
		// Dark terminal detected
	}
	if theme.HasTrueColor {
		// Terminal supports 16M colors
	}

NewThemeWithMode forces "dark" or "light" rendering regardless of what
the terminal reports, matching the ui.theme configuration key.

# Animation System (animations.go)

Pre-defined spinner styles:

	LineSpinner - Simple line rotation for the busy indicator
	DotsSpinner - Trailing-dot animation for the thinking indicator

RenderProgressBar draws the ASCII context-window gauge shown in the
sidebar, and CursorFrame supplies the blinking streaming cursor.

# Usage Example

	import "github.com/jeranaias/llamachat/internal/ui/styles"

	// Use adaptive colors
	headerStyle := lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		Foreground(styles.TextPrimary)

	// Use theme for runtime detection
	theme := styles.NewThemeWithMode(cfg.UI.Theme)
	title := theme.HeaderTitle.Render("LLAMA Chat")
*/
package styles
