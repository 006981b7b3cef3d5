// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - interactive chat command handler.
//
// Handles "llamachat chat", a readline-style REPL for talking to the API
// without the full TUI. Input history persists across runs, responses
// stream to stdout, and the slash commands mirror the TUI set.
//
// Examples:
//   llamachat chat                         Start with the default model
//   llamachat chat --model deepseek        Use a specific model
//   llamachat chat --profile Long          Longer responses
//
// Interactive commands (during chat):
//   /help, /h           Show available commands
//   /clear, /c          Clear conversation history
//   /model [name]       Show or switch model
//   /profile [name]     Show or switch response length
//   /save, /s           Save the conversation to the archive
//   /sessions, /l       List archived sessions
//   /resume <n>         Resume an archived session
//   /export [md|json]   Export the conversation to a file
//   /history            Show conversation history
//   /stats              Show session statistics
//   /quit, /q           Exit chat
//   Ctrl+D              Exit chat
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/jeranaias/llamachat/internal/config"
	"github.com/jeranaias/llamachat/internal/groq"
	"github.com/jeranaias/llamachat/internal/model"
	"github.com/jeranaias/llamachat/internal/storage"
	"github.com/jeranaias/llamachat/internal/ui/styles"
)

// summaryHeaderStyle heads the status and exit summary blocks.
var summaryHeaderStyle = lipgloss.NewStyle().
	Foreground(styles.Cyan).
	Bold(true)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for interactive chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a new ChatCLI with input history support.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		// Fall back to the temp directory if the config dir is unavailable
		configDir = os.TempDir()
	}
	historyFile := filepath.Join(configDir, "chat_history")

	cli := &ChatCLI{
		line:        line,
		historyFile: historyFile,
	}
	cli.LoadHistory()
	return cli
}

// LoadHistory loads prompt history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt. Non-blank lines
// enter the arrow-key history.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists prompt history with owner-only permissions.
func (c *ChatCLI) SaveHistory() {
	if err := config.EnsureConfigDir(); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	c.line.WriteHistory(f)
}

// Close saves history and closes the liner.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// SESSION STATE
// =============================================================================

// ChatSession holds the state for an interactive chat session. The
// conversation's backing history store carries the request windows, the
// same way the TUI's does.
type ChatSession struct {
	Conversation *model.Conversation
	Client       *groq.Client
	Store        *storage.SessionStore // nil when the archive failed to open
	ModelChoice  model.ModelChoice
	Profile      model.ResponseProfile

	Quiet    bool
	Markdown bool

	StartTime   time.Time
	TotalTokens int
	Queries     int

	ExportDir string
	InputCLI  *ChatCLI
}

// =============================================================================
// CHAT HANDLER
// =============================================================================

// HandleChat handles the "chat" command.
func HandleChat(args Args) error {
	if err := RequiresTTY("chat"); err != nil {
		return err
	}

	cfg := config.Global()

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

	// Archive failures downgrade to a warning: chat works without
	// persistence, /save and /resume report the missing store.
	store, storeErr := openArchive(cfg)
	if storeErr != nil && !args.Quiet {
		fmt.Fprintf(os.Stderr, "%s Session archive unavailable: %v\n",
			warnStyle.Render("[Warning]"), storeErr)
	}

	conv := model.NewConversation()
	conv.Model = modelChoice.Name
	conv.Profile = profile.Name

	session := &ChatSession{
		Conversation: conv,
		Client:       client,
		Store:        store,
		ModelChoice:  modelChoice,
		Profile:      profile,
		Quiet:        args.Quiet,
		Markdown:     IsStdoutTTY() && cfg.UI.Markdown,
		StartTime:    time.Now(),
		ExportDir:    defaultExportDir(cfg),
		InputCLI:     NewChatCLI(),
	}

	defer session.InputCLI.Close()
	if store != nil {
		defer store.Close()
	}

	if !session.Quiet {
		printWelcome(session)
	}

	// Main REPL loop. Prompt errors (Ctrl+C at the prompt, Ctrl+D) exit
	// cleanly through the summary.
	for {
		input, err := session.InputCLI.ReadInput(promptStyle.Render("llamachat> "))
		if err != nil {
			if err == liner.ErrPromptAborted {
				fmt.Println()
				printExitSummary(session)
				return nil
			}
			fmt.Println()
			printExitSummary(session)
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			shouldContinue, err := handleSlashCommand(input, session)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
			}
			if !shouldContinue {
				printExitSummary(session)
				return nil
			}
			continue
		}

		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			printExitSummary(session)
			return nil
		}

		if err := processMessage(session, input); err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
		}
	}
}

// =============================================================================
// MESSAGE PROCESSING
// =============================================================================

// processMessage sends one message and streams the response. The request
// runs to completion; there is no mid-stream cancel. On failure the user
// turn stays in the window and only the assistant placeholder is failed
// out, matching the TUI error path.
func processMessage(session *ChatSession, input string) error {
	conv := session.Conversation
	conv.AddUserMessage(input)

	messages := groq.FromTurns(conv.Window(model.DefaultWindow))
	params := groq.ParamsForProfile(session.ModelChoice, session.Profile)

	stats := model.NewStatistics()
	conv.StartAssistant()

	fmt.Println()

	var tokens int
	err := session.Client.ChatStream(context.Background(), messages, params, func(chunk groq.StreamChunk) {
		content := chunk.GetContent()
		if content == "" {
			return
		}
		if tokens == 0 {
			stats.RecordFirstToken()
		}
		tokens++
		conv.AppendToLast(content)

		// When rendering markdown the fragments are collected and
		// formatted at the end; otherwise they stream straight out.
		if !session.Markdown {
			fmt.Print(content)
		}
	})

	if err != nil {
		partial := conv.FailLast()
		if partial != "" && !session.Markdown {
			fmt.Println()
		}
		return fmt.Errorf("streaming failed: %w", err)
	}

	stats.Finalize(tokens)
	msg := conv.FinalizeLast(stats)

	if session.Markdown && msg != nil {
		displayResponse(msg.Content)
	}
	fmt.Println()
	fmt.Println()

	session.Queries++
	session.TotalTokens += tokens

	if !session.Quiet && msg != nil {
		fmt.Fprintf(os.Stderr, "%s %s\n",
			infoStyle.Render("[Stats]"), msg.FormatStats())
	}

	return nil
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand processes slash commands.
// Returns (shouldContinue, error) where shouldContinue=false means exit.
func handleSlashCommand(cmd string, session *ChatSession) (bool, error) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return true, nil
	}

	command := strings.ToLower(parts[0])
	args := parts[1:]

	switch command {
	case "/help", "/h", "/?":
		printHelp()
		return true, nil

	case "/clear", "/c":
		session.Conversation.ClearHistory()
		fmt.Println(accentStyle.Render("[Conversation cleared]"))
		return true, nil

	case "/model", "/m":
		return handleModelSwitch(session, args)

	case "/profile", "/p":
		return handleProfileSwitch(session, args)

	case "/save", "/s":
		return handleSave(session)

	case "/sessions", "/list", "/l":
		return handleSessionList(session)

	case "/resume", "/r":
		return handleResume(session, args)

	case "/export", "/e":
		return handleExport(session, args)

	case "/history":
		printHistory(session)
		return true, nil

	case "/stats":
		printStatus(session)
		return true, nil

	case "/quit", "/q", "/exit":
		return false, nil

	case "/":
		printHelp()
		return true, nil

	default:
		return true, fmt.Errorf("unknown command: %s (type /help for commands)", command)
	}
}

// handleModelSwitch shows or switches the active model.
func handleModelSwitch(session *ChatSession, args []string) (bool, error) {
	if len(args) == 0 {
		fmt.Printf("%s Current model: %s\n",
			infoStyle.Render("[Model]"),
			accentStyle.Render(session.ModelChoice.Name))
		for _, name := range model.ChoiceNames() {
			marker := "  "
			if name == session.ModelChoice.Name {
				marker = accentStyle.Render("* ")
			}
			fmt.Printf("  %s%s\n", marker, name)
		}
		return true, nil
	}

	choice, ok := model.GetModelChoice(args[0])
	if !ok {
		return true, fmt.Errorf("unknown model %q (available: %s)",
			args[0], strings.Join(model.ChoiceNames(), ", "))
	}

	session.ModelChoice = choice
	session.Conversation.Model = choice.Name
	fmt.Printf("%s Switched to model: %s\n",
		accentStyle.Render("[OK]"), choice.Name)
	return true, nil
}

// handleProfileSwitch shows or switches the response length profile.
func handleProfileSwitch(session *ChatSession, args []string) (bool, error) {
	if len(args) == 0 {
		fmt.Printf("%s Current profile: %s (max %d tokens)\n",
			infoStyle.Render("[Profile]"),
			accentStyle.Render(session.Profile.Name),
			session.Profile.MaxTokens)
		return true, nil
	}

	name := args[0]
	profile, ok := model.GetProfile(name)
	if !ok {
		for _, n := range model.ProfileNames() {
			if strings.EqualFold(n, name) {
				profile, ok = model.GetProfile(n)
				break
			}
		}
	}
	if !ok {
		return true, fmt.Errorf("unknown profile %q (available: %s)",
			name, strings.Join(model.ProfileNames(), ", "))
	}

	session.Profile = profile
	session.Conversation.Profile = profile.Name
	fmt.Printf("%s Response length: %s (max %d tokens)\n",
		accentStyle.Render("[OK]"), profile.Name, profile.MaxTokens)
	return true, nil
}

// handleSave archives the current conversation.
func handleSave(session *ChatSession) (bool, error) {
	if session.Store == nil {
		return true, fmt.Errorf("session archive unavailable")
	}
	if session.Conversation.IsEmpty() {
		fmt.Println(infoStyle.Render("[Nothing to save yet]"))
		return true, nil
	}

	id, err := session.Store.Save(storage.FromConversation(session.Conversation))
	if err != nil {
		return true, fmt.Errorf("save failed: %w", err)
	}
	fmt.Printf("%s %s\n", accentStyle.Render("[Saved]"), id)
	return true, nil
}

// handleSessionList lists archived sessions.
func handleSessionList(session *ChatSession) (bool, error) {
	if session.Store == nil {
		return true, fmt.Errorf("session archive unavailable")
	}

	sessions, err := session.Store.List()
	if err != nil {
		return true, fmt.Errorf("list failed: %w", err)
	}
	fmt.Println()
	fmt.Print(storage.FormatSessionList(sessions))
	fmt.Println()
	return true, nil
}

// handleResume swaps the live conversation for an archived one. The
// resumed session's model and profile become active again when they
// still resolve.
func handleResume(session *ChatSession, args []string) (bool, error) {
	if session.Store == nil {
		return true, fmt.Errorf("session archive unavailable")
	}
	if len(args) == 0 {
		return true, fmt.Errorf("session number required (see /sessions)")
	}

	n, err := strconv.Atoi(strings.TrimPrefix(args[0], "#"))
	if err != nil || n < 1 {
		return true, fmt.Errorf("invalid session number %q", args[0])
	}

	stored, err := session.Store.LoadByIndex(n)
	if err != nil {
		return true, fmt.Errorf("resume failed: %w", err)
	}

	conv := stored.ToConversation()
	session.Conversation = conv
	if choice, ok := model.GetModelChoice(conv.Model); ok {
		session.ModelChoice = choice
	}
	if profile, ok := model.GetProfile(conv.Profile); ok {
		session.Profile = profile
	}

	fmt.Printf("%s %s\n", accentStyle.Render("[Resumed]"), stored.Title)
	return true, nil
}

// handleExport writes the conversation to the export directory.
func handleExport(session *ChatSession, args []string) (bool, error) {
	if session.Conversation.IsEmpty() {
		fmt.Println(infoStyle.Render("[Nothing to export yet]"))
		return true, nil
	}

	format := "markdown"
	if len(args) > 0 {
		format = strings.ToLower(args[0])
	}

	sess := storage.FromConversation(session.Conversation)
	path, err := sess.WriteExport(session.ExportDir, format)
	if err != nil {
		return true, fmt.Errorf("export failed: %w", err)
	}
	fmt.Printf("%s %s\n", accentStyle.Render("[Exported]"), path)
	return true, nil
}

// =============================================================================
// DISPLAY FUNCTIONS
// =============================================================================

// printWelcome prints the welcome banner.
func printWelcome(session *ChatSession) {
	fmt.Println()
	fmt.Println(headerStyle.Render("llamachat interactive chat"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 30)))
	fmt.Printf("%s %s %s\n",
		infoStyle.Render("Model:"),
		accentStyle.Render(session.ModelChoice.Name),
		mutedStyle.Render("("+session.ModelChoice.ContextString()+")"))
	fmt.Printf("%s %s\n",
		infoStyle.Render("Length:"),
		accentStyle.Render(session.Profile.Name))

	if session.Store != nil {
		fmt.Printf("%s %s\n",
			infoStyle.Render("Archive:"),
			mutedStyle.Render(session.Store.Path()))
	} else {
		fmt.Printf("%s %s\n",
			infoStyle.Render("Archive:"),
			warnStyle.Render("unavailable"))
	}

	fmt.Println()
	fmt.Println(infoStyle.Render("Type your message and press Enter. Commands: /help, /quit"))
	fmt.Println()
}

// printHelp prints available commands.
func printHelp() {
	fmt.Println()
	fmt.Println(summaryHeaderStyle.Render("Available Commands"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 20)))
	fmt.Println()

	commands := []struct {
		cmd  string
		desc string
	}{
		{"/help, /h", "Show this help"},
		{"/clear, /c", "Clear conversation history"},
		{"/model [name]", "Show or switch model"},
		{"/profile [name]", "Show or switch response length"},
		{"/save, /s", "Save conversation to the archive"},
		{"/sessions, /l", "List archived sessions"},
		{"/resume <n>", "Resume an archived session"},
		{"/export [md|json]", "Export conversation to a file"},
		{"/history", "Show conversation history"},
		{"/stats", "Show session statistics"},
		{"/quit, /q", "Exit chat"},
	}

	for _, c := range commands {
		fmt.Printf("  %s  %s\n",
			accentStyle.Render(fmt.Sprintf("%-18s", c.cmd)),
			infoStyle.Render(c.desc))
	}

	fmt.Println()
	fmt.Println(infoStyle.Render("Tip: Ctrl+D exits, arrow keys navigate input history"))
	fmt.Println()
}

// printStatus prints session statistics.
func printStatus(session *ChatSession) {
	elapsed := time.Since(session.StartTime).Round(time.Second)

	fmt.Println()
	fmt.Println(summaryHeaderStyle.Render("Session Status"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 20)))
	fmt.Println()

	fmt.Printf("  %s %s\n",
		infoStyle.Render("Model:"),
		accentStyle.Render(session.ModelChoice.Name))
	fmt.Printf("  %s %s\n",
		infoStyle.Render("Length:"),
		accentStyle.Render(session.Profile.Name))
	fmt.Printf("  %s %s\n",
		infoStyle.Render("Duration:"),
		elapsed.String())
	fmt.Printf("  %s %d messages\n",
		infoStyle.Render("History:"),
		session.Conversation.MessageCount())
	fmt.Printf("  %s %d\n",
		infoStyle.Render("Queries:"),
		session.Queries)
	fmt.Printf("  %s %d\n",
		infoStyle.Render("Tokens:"),
		session.TotalTokens)
	fmt.Println()
}

// printHistory prints the conversation scrollback, one line per message.
func printHistory(session *ChatSession) {
	messages := session.Conversation.Messages
	if len(messages) == 0 {
		fmt.Println(infoStyle.Render("[No messages yet]"))
		return
	}

	fmt.Println()
	fmt.Println(summaryHeaderStyle.Render("Conversation History"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 25)))
	fmt.Println()

	for i, msg := range messages {
		var role string
		switch msg.Role {
		case model.RoleUser:
			role = lipgloss.NewStyle().Foreground(styles.Cyan).Render("You")
		case model.RoleAssistant:
			role = lipgloss.NewStyle().Foreground(styles.Purple).Render("AI")
		default:
			role = lipgloss.NewStyle().Foreground(styles.Amber).Render("System")
		}

		// Rune-based truncation keeps multi-byte characters intact
		content := msg.Content
		runes := []rune(content)
		if len(runes) > 100 {
			content = string(runes[:100]) + "..."
		}
		content = strings.ReplaceAll(content, "\n", " ")

		fmt.Printf("  %d. %s: %s\n", i+1, role, content)
	}

	fmt.Println()
}

// printExitSummary prints the session summary on exit.
func printExitSummary(session *ChatSession) {
	if session.Queries == 0 {
		fmt.Println(infoStyle.Render("Goodbye!"))
		return
	}

	elapsed := time.Since(session.StartTime).Round(time.Second)

	fmt.Println()
	fmt.Println(summaryHeaderStyle.Render("Session Summary"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 15)))

	fmt.Printf("  %s %d\n",
		infoStyle.Render("Queries:"),
		session.Queries)
	fmt.Printf("  %s %d\n",
		infoStyle.Render("Tokens:"),
		session.TotalTokens)
	fmt.Printf("  %s %s\n",
		infoStyle.Render("Duration:"),
		elapsed.String())

	fmt.Println()
	fmt.Println(infoStyle.Render("Goodbye!"))
}
