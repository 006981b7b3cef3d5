// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides reusable UI components for the llamachat TUI.

The components are built on top of Lip Gloss and share the adaptive color
palette from the styles package.

# Code Rendering

CodeBlock (codeblock.go) renders fenced code blocks with Chroma syntax
highlighting, line numbers, and a language badge:

	cb := components.NewCodeBlock("go", `fmt.Println("hi")`)
	cb.SetMaxWidth(80)
	view := cb.Render()

ParseCodeBlocks scans assistant responses for ``` fences and replaces each
block with its rendered version, leaving the surrounding prose untouched.
An unclosed fence (common while a response is still streaming) renders too.

ParseInlineCode styles single-backtick spans; an unclosed backtick stays
literal.

Highlighting uses the terminal256 formatter with the monokai style, so the
output is plain ANSI and safe to embed in any Bubble Tea view. When chroma
cannot tokenize the input, the original text passes through unstyled.
*/
package components
