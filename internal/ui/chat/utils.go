// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"strings"
	"time"

	"github.com/atotto/clipboard"
)

// =============================================================================
// FORMATTING UTILITIES
// =============================================================================

// formatTimestamp formats a timestamp for display in chat messages.
// It uses smart formatting based on how recent the timestamp is:
//   - Today: just time (e.g., "15:04")
//   - This week: day and time (e.g., "Mon 15:04")
//   - Older: date and time (e.g., "Jan 2 15:04")
func formatTimestamp(t time.Time) string {
	now := time.Now()

	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return t.Format("15:04")
	}

	if now.Sub(t) < 7*24*time.Hour {
		return t.Format("Mon 15:04")
	}

	return t.Format("Jan 2 15:04")
}

// formatBool formats a boolean as an enabled/disabled string.
func formatBool(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}

// formatFloat64 formats a float with one decimal place with proper rounding.
// Examples: 45.9 -> "45.9", 123.456 -> "123.5", -5.3 -> "-5.3"
func formatFloat64(f float64) string {
	if f != f { // NaN check
		return "NaN"
	}
	if f > 9223372036854775807 { // Larger than MaxInt64
		return "Inf"
	}
	if f < -9223372036854775808 { // Smaller than MinInt64
		return "-Inf"
	}

	negative := f < 0
	absF := f
	if negative {
		absF = -f
	}

	// Add 0.05 for rounding then multiply by 10 and truncate
	rounded := absF + 0.05
	whole := int(rounded)
	frac := int((rounded - float64(whole)) * 10)

	result := formatInt(whole) + "." + formatInt(frac)
	if negative {
		result = "-" + result
	}
	return result
}

// formatInt formats an integer as a string without fmt. The render path
// calls this on every frame, so it stays allocation-light.
func formatInt(n int) string {
	if n == 0 {
		return "0"
	}
	if n == -9223372036854775808 { // math.MinInt64
		return "-9223372036854775808"
	}

	negative := n < 0
	if negative {
		n = -n
	}

	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}

	if negative {
		return "-" + string(digits)
	}
	return string(digits)
}

// formatNumberWithCommas formats an integer with thousand separators.
// Example: 1234567 -> "1,234,567"
func formatNumberWithCommas(n int) string {
	if n == -9223372036854775808 { // math.MinInt64
		return "-9,223,372,036,854,775,808"
	}
	negative := n < 0
	if negative {
		n = -n
	}

	if n < 1000 {
		if negative {
			return "-" + formatInt(n)
		}
		return formatInt(n)
	}

	s := formatInt(n)
	result := ""
	count := 0

	for i := len(s) - 1; i >= 0; i-- {
		if count > 0 && count%3 == 0 {
			result = "," + result
		}
		result = string(s[i]) + result
		count++
	}

	if negative {
		result = "-" + result
	}
	return result
}

// =============================================================================
// CLIPBOARD UTILITIES
// =============================================================================

// copyToClipboard copies the given text to the system clipboard.
func copyToClipboard(text string) error {
	return clipboard.WriteAll(text)
}

// =============================================================================
// TEXT UTILITIES
// =============================================================================

// wordWrap wraps text to a maximum width, handling Unicode correctly.
// This is an alias for wrapText for API compatibility.
func wordWrap(text string, maxWidth int) string {
	return wrapText(text, maxWidth)
}

// calculateContentWidth calculates the safe content width for message
// rendering, accounting for margins and padding. Returns a minimum of 3
// for extremely narrow terminals.
func calculateContentWidth(totalWidth, margin int) int {
	contentWidth := totalWidth - margin
	if contentWidth < 3 {
		contentWidth = 3
	}
	return contentWidth
}

// wrapText wraps text to a maximum width, handling Unicode correctly.
// It preserves existing line breaks and breaks long lines at spaces.
func wrapText(text string, maxWidth int) string {
	if maxWidth <= 0 {
		return text
	}

	var result strings.Builder
	lines := strings.Split(text, "\n")

	for i, line := range lines {
		if i > 0 {
			result.WriteString("\n")
		}

		runes := []rune(line)

		for len(runes) > maxWidth {
			// Prefer breaking at a space
			breakPoint := maxWidth
			for j := maxWidth; j > 0; j-- {
				if runes[j] == ' ' {
					breakPoint = j
					break
				}
			}

			result.WriteString(string(runes[:breakPoint]))
			result.WriteString("\n")
			runes = []rune(strings.TrimLeft(string(runes[breakPoint:]), " "))
		}
		result.WriteString(string(runes))
	}

	return result.String()
}

// =============================================================================
// MESSAGE PREVIEW UTILITIES
// =============================================================================

// MaxPreviewLines is the maximum number of lines shown before a long
// message is truncated in the viewport.
const MaxPreviewLines = 20

// renderMessagePreview truncates long content for viewport rendering.
// If the content has more lines than MaxPreviewLines and expanded is
// false, it shows a preview with an indicator of how much was elided.
func renderMessagePreview(content string, expanded bool) string {
	lines := strings.Split(content, "\n")

	if len(lines) <= MaxPreviewLines || expanded {
		return content
	}

	preview := strings.Join(lines[:MaxPreviewLines], "\n")
	moreLines := len(lines) - MaxPreviewLines
	return preview + "\n... [" + formatInt(moreLines) + " more lines]"
}

// isMessageTruncatable returns true if the content would be truncated.
func isMessageTruncatable(content string) bool {
	lines := strings.Split(content, "\n")
	return len(lines) > MaxPreviewLines
}
