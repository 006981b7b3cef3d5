// llamachat - a terminal chat interface for Groq-hosted LLaMA 3 and
// DeepSeek models.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/jeranaias/llamachat/internal/cli"
	"github.com/jeranaias/llamachat/internal/config"
	"github.com/jeranaias/llamachat/internal/groq"
	"github.com/jeranaias/llamachat/internal/storage"
	"github.com/jeranaias/llamachat/internal/ui/chat"
	"github.com/jeranaias/llamachat/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "1.0.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	// A .env file supplies GROQ_API_KEY during development; absence is
	// not an error.
	_ = godotenv.Load()

	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdAsk:
		exitOnError(cli.HandleAsk(args))
	case cli.CmdChat:
		exitOnError(cli.HandleChat(args))
	case cli.CmdSessions:
		exitOnError(cli.HandleSessions(args))
	case cli.CmdVersion:
		cli.HandleVersion()
	case cli.CmdHelp:
		cli.HandleHelp()
	case cli.CmdUnknown:
		os.Exit(cli.HandleUnknown(args))
	default:
		runTUI(args)
	}
}

// exitOnError prints err and exits with its mapped code.
func exitOnError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(cli.GetExitCode(err))
}

// runTUI starts the full-screen chat interface.
func runTUI(args cli.Args) {
	cfg := config.Global()

	apiKey := os.Getenv("GROQ_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "Error: GROQ_API_KEY not found in environment variables")
		fmt.Fprintln(os.Stderr, "Set it in the environment or a .env file and try again.")
		os.Exit(cli.ExitAuthError)
	}

	client := groq.NewClient(apiKey)
	if cfg.API.BaseURL != "" {
		client = client.WithBaseURL(cfg.API.BaseURL)
	}

	theme := styles.NewThemeWithMode(cfg.UI.Theme)

	// An archive failure downgrades to a warning: chat works without
	// persistence, and the session commands report the missing store.
	store := openSessionStore(cfg)
	if store != nil {
		defer store.Close()
	}

	app := newApp(theme, store, args)

	p := tea.NewProgram(
		app,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	app.runner = chat.NewStreamRunner(p, client)

	// Config hot reload pushes the next revision into the running UI.
	watcher, err := config.Watch(func(next *config.Config) {
		p.Send(chat.ConfigReloadedMsg{Config: next})
	})
	if err == nil {
		defer watcher.Close()
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running llamachat: %v\n", err)
		os.Exit(1)
	}
}

// openSessionStore opens the archive per the storage configuration,
// returning nil (with a warning) when it cannot be opened.
func openSessionStore(cfg *config.Config) *storage.SessionStore {
	var (
		store *storage.SessionStore
		err   error
	)
	if cfg.Storage.Dir != "" {
		store, err = storage.NewSessionStoreWithDir(cfg.Storage.Dir)
	} else {
		store, err = storage.NewSessionStore()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: session archive unavailable: %v\n", err)
		return nil
	}

	if cfg.Storage.MaxSessions > 0 {
		store.MaxSessions = cfg.Storage.MaxSessions
	}
	if cfg.Storage.Encrypt {
		if err := store.EnableEncryption(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: archive encryption unavailable: %v\n", err)
			store.Close()
			return nil
		}
	}
	return store
}

// =============================================================================
// APPLICATION MODEL
// =============================================================================

// App is the root Bubble Tea model. It wraps the chat model and owns the
// one thing the UI must not do itself: executing stream requests. The
// chat model emits a StreamRequestMsg; App hands it to the StreamRunner,
// which streams results back through the program.
type App struct {
	chatModel chat.Model
	runner    *chat.StreamRunner
}

// newApp builds the root model, applying CLI flag overrides on top of
// the configured defaults.
func newApp(theme *styles.Theme, store *storage.SessionStore, args cli.Args) *App {
	chatModel := chat.NewWithStore(theme, store)

	if args.Model != "" {
		if choice, err := cli.ResolveModel(nil, args.Model); err == nil {
			chatModel.SetModelChoice(choice)
		} else {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}
	if args.Profile != "" {
		if profile, err := cli.ResolveProfile(nil, args.Profile); err == nil {
			chatModel.SetProfile(profile)
		} else {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	return &App{chatModel: chatModel}
}

// Init initializes the model.
func (a *App) Init() tea.Cmd {
	return a.chatModel.Init()
}

// Update handles messages, intercepting stream requests; everything else
// flows to the chat model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if req, ok := msg.(chat.StreamRequestMsg); ok {
		return a, a.startStream(req)
	}

	newChat, cmd := a.chatModel.Update(msg)
	a.chatModel = newChat.(chat.Model)
	return a, cmd
}

// startStream runs one request off the UI goroutine. The runner makes
// exactly one outbound call per request and drops a request when one is
// already in flight; nothing cancels a running stream.
func (a *App) startStream(msg chat.StreamRequestMsg) tea.Cmd {
	runner := a.runner
	return func() tea.Msg {
		if runner == nil {
			return chat.StreamErrorMsg{MessageID: msg.MessageID, Error: groq.ErrNotConfigured}
		}
		runner.Run(context.Background(), msg.Messages, msg.Params, msg.MessageID)
		return nil
	}
}

// View renders the chat interface.
func (a *App) View() string {
	return a.chatModel.View()
}
