// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - single question command handler.
//
// Handles "llamachat ask", which sends one question to the API and prints
// the answer to stdout. The response is glamour-rendered when stdout is a
// terminal and printed plain when piped, so output stays safe to redirect.
//
// Examples:
//   llamachat ask "What is the capital of France?"
//   cat main.go | llamachat ask "Review this code"
//   llamachat ask --stream "Explain UTF-8 encoding"
//   llamachat ask "Summarize this:" --file notes.md
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/llamachat/internal/config"
	"github.com/jeranaias/llamachat/internal/groq"
	"github.com/jeranaias/llamachat/internal/model"
)

const (
	// MaxFileSize is the maximum file size to include with --file (50KB).
	MaxFileSize = 50 * 1024
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// markdownRenderer is the global glamour renderer for markdown output.
var markdownRenderer *glamour.TermRenderer

func init() {
	var err error
	markdownRenderer, err = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		// Fall back to plain text if renderer initialization fails
		markdownRenderer = nil
	}
}

// renderMarkdown renders markdown content for terminal display.
// Returns the original content if rendering fails or renderer is unavailable.
func renderMarkdown(content string) string {
	if markdownRenderer == nil {
		return content
	}

	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// displayResponse prints a response, markdown-rendered only when stdout is
// a TTY so piped output is never corrupted by ANSI sequences.
func displayResponse(response string) {
	if IsStdoutTTY() {
		fmt.Print(renderMarkdown(response))
	} else {
		fmt.Print(response)
	}
}

// =============================================================================
// FILE READING
// =============================================================================

// readFileForContext reads a file and formats it for inclusion in a prompt.
// Files larger than MaxFileSize are rejected.
func readFileForContext(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file not found: %s", path)
		}
		return "", fmt.Errorf("cannot access file: %w", err)
	}

	if info.Size() > MaxFileSize {
		return "", fmt.Errorf("file too large: %d bytes (max %d bytes)", info.Size(), MaxFileSize)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("\n--- File: %s ---\n", path))
	builder.Write(content)
	builder.WriteString("\n--- End of file ---\n")

	return builder.String(), nil
}

// readStdinQuestion reads a piped question from stdin. Returns "" when
// stdin is a terminal or empty.
func readStdinQuestion() string {
	stat, err := os.Stdin.Stat()
	if err != nil || (stat.Mode()&os.ModeCharDevice) != 0 {
		return ""
	}

	reader := bufio.NewReader(os.Stdin)
	data, err := io.ReadAll(reader)
	if err != nil || len(data) == 0 {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// =============================================================================
// ASK HANDLER
// =============================================================================

// HandleAsk handles the "ask" command: build the two-turn prompt, send one
// request, print the answer, and report usage on stderr.
func HandleAsk(args Args) error {
	cfg := config.Global()

	// Question from argv, falling back to piped stdin.
	question := args.Query
	if question == "" {
		if piped := readStdinQuestion(); piped != "" {
			question = piped
			if !args.Quiet {
				fmt.Fprintf(os.Stderr, "%s Read question from stdin (%d bytes)\n",
					accentStyle.Render("[+]"), len(piped))
			}
		}
	}
	if question == "" {
		return errUsage("no question provided. Usage: llamachat ask \"your question\"")
	}

	if args.File != "" {
		fileContent, err := readFileForContext(args.File)
		if err != nil {
			return err
		}
		question = question + "\n" + fileContent
		if !args.Quiet {
			fmt.Fprintf(os.Stderr, "%s Including file: %s\n",
				accentStyle.Render("[+]"), args.File)
		}
	}

	modelChoice, err := ResolveModel(cfg, args.Model)
	if err != nil {
		return err
	}
	profile, err := ResolveProfile(cfg, args.Profile)
	if err != nil {
		return err
	}
	client, err := newAPIClient(cfg)
	if err != nil {
		return err
	}

	turns := []model.Turn{
		model.NewSystemTurn(model.DefaultSystemPrompt),
		model.NewUserTurn(question),
	}
	messages := groq.FromTurns(turns)
	params := groq.ParamsForProfile(modelChoice, profile)

	// Render markdown only when stdout is a terminal and the config allows
	// it. When rendering, tokens are collected and formatted at the end;
	// otherwise streamed fragments go straight to stdout.
	useMarkdown := IsStdoutTTY() && cfg.UI.Markdown

	if !args.Quiet {
		fmt.Println()
	}

	startTime := time.Now()
	var response string
	var totalTokens int

	if args.Stream {
		var fullResponse strings.Builder
		var fragments int

		err = client.ChatStream(context.Background(), messages, params, func(chunk groq.StreamChunk) {
			content := chunk.GetContent()
			if content == "" {
				return
			}
			fullResponse.WriteString(content)
			fragments++
			if !useMarkdown {
				fmt.Print(content)
			}
		})
		if err != nil {
			return err
		}

		response = fullResponse.String()
		totalTokens = fragments
	} else {
		resp, chatErr := client.Chat(context.Background(), messages, params)
		if chatErr != nil {
			return chatErr
		}
		response = resp.GetContent()
		totalTokens = resp.Usage.TotalTokens
	}

	duration := time.Since(startTime)

	if useMarkdown {
		displayResponse(response)
	} else if !args.Stream {
		fmt.Print(response)
	}
	fmt.Println()

	if !args.Quiet {
		displayAskSummary(modelChoice, totalTokens, duration)
	}

	return nil
}

// displayAskSummary prints the model/token/time line to stderr so it never
// mixes with piped response output.
func displayAskSummary(choice model.ModelChoice, tokens int, duration time.Duration) {
	separator := strings.Repeat("─", 45)
	fmt.Fprintln(os.Stderr, sepStyle.Render(separator))

	fmt.Fprintf(os.Stderr, "%s %s | %s %s | %s %s\n",
		infoStyle.Render("Model:"),
		accentStyle.Render(choice.Name),
		infoStyle.Render("Tokens:"),
		accentStyle.Render(fmt.Sprintf("%d", tokens)),
		infoStyle.Render("Time:"),
		accentStyle.Render(duration.Round(10*time.Millisecond).String()))
}
