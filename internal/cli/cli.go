// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command dispatch for llamachat.
package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/llamachat/internal/config"
	"github.com/jeranaias/llamachat/internal/groq"
	"github.com/jeranaias/llamachat/internal/model"
	"github.com/jeranaias/llamachat/internal/storage"
	"github.com/jeranaias/llamachat/internal/ui/styles"
)

// Version information (can be overridden at build time).
var (
	Version   = "1.0.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdSessions
	CmdVersion
	CmdHelp
	CmdUnknown
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet       bool
	Model       string
	Profile     string
	ShowVersion bool

	// Ask
	Query  string
	File   string
	Stream bool

	// Sessions
	Subcommand string
	SessionRef string
	Format     string
	Output     string
	Confirm    bool

	// Raw args remaining after flag parsing
	Raw []string
}

// =============================================================================
// SHARED STYLES
// =============================================================================

var (
	errorStyle  = lipgloss.NewStyle().Foreground(styles.Rose)
	warnStyle   = lipgloss.NewStyle().Foreground(styles.Amber)
	infoStyle   = lipgloss.NewStyle().Foreground(styles.TextSecondary)
	mutedStyle  = lipgloss.NewStyle().Foreground(styles.TextMuted)
	accentStyle = lipgloss.NewStyle().Foreground(styles.Emerald)
	promptStyle = lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	headerStyle = lipgloss.NewStyle().Foreground(styles.Purple).Bold(true)
	sepStyle    = lipgloss.NewStyle().Foreground(styles.Overlay)
)

// =============================================================================
// USAGE
// =============================================================================

const usageText = `llamachat - terminal chat for Groq-hosted LLaMA 3 and DeepSeek models

Usage:
  llamachat                     Start the TUI (default)
  llamachat ask "question"      Ask a single question
  llamachat chat                Interactive chat without the TUI
  llamachat sessions [cmd]      Manage the session archive
  llamachat version             Show version information
  llamachat help                Show this help

Ask:
  llamachat ask "What is a goroutine?"
  cat main.go | llamachat ask "Review this code"
  llamachat ask --stream "Explain UTF-8 encoding"
    -f, --file FILE             Include a file with the question
    --stream                    Print tokens as they arrive

Sessions:
  llamachat sessions list               List archived sessions
  llamachat sessions show <n>           Show a session transcript
  llamachat sessions search <query>     Search titles and content
  llamachat sessions export <n>         Print a session as markdown
    --format md|json                    Export format (default: md)
    --output FILE                       Write to a file instead of stdout
  llamachat sessions delete <n> --confirm
                                        Delete a session

Global Flags:
  --model NAME    Override the default model
  --profile NAME  Override the response length profile
  -q, --quiet     Minimal output
  --version       Show version information

Environment:
  GROQ_API_KEY           API credential (required; a .env file is read at startup)
  LLAMACHAT_ARCHIVE_KEY  Passphrase for encrypted session archives

Models:   %s
Profiles: %s

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText,
		strings.Join(model.ChoiceNames(), ", "),
		strings.Join(model.ProfileNames(), ", "),
		Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("llamachat version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
}

// =============================================================================
// PARSING
// =============================================================================

// Parse parses os.Args and returns the command and args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses an explicit argument list. Global flags may appear
// anywhere; the first non-flag argument selects the command.
func ParseArgs(argv []string) (Command, Args) {
	remaining, args := parseGlobalFlags(argv)

	if args.ShowVersion {
		return CmdVersion, args
	}
	if len(remaining) == 0 {
		return CmdTUI, args
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	args.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, args

	case "ask":
		parseAskArgs(&args, remaining)
		return CmdAsk, args

	case "chat":
		return CmdChat, args

	case "sessions", "session":
		parseSessionArgs(&args, remaining)
		return CmdSessions, args

	case "version", "-v", "--version":
		return CmdVersion, args

	case "help", "-h", "--help":
		return CmdHelp, args

	default:
		args.Subcommand = cmd
		return CmdUnknown, args
	}
}

// parseGlobalFlags extracts global flags and returns the remaining args.
func parseGlobalFlags(argv []string) ([]string, Args) {
	var remaining []string
	var args Args

	for i := 0; i < len(argv); i++ {
		arg := argv[i]

		switch arg {
		case "-q", "--quiet":
			args.Quiet = true
		case "--version":
			args.ShowVersion = true
		case "--model":
			if i+1 < len(argv) {
				i++
				args.Model = argv[i]
			}
		case "--profile":
			if i+1 < len(argv) {
				i++
				args.Profile = argv[i]
			}
		default:
			switch {
			case strings.HasPrefix(arg, "--model="):
				args.Model = strings.TrimPrefix(arg, "--model=")
			case strings.HasPrefix(arg, "--profile="):
				args.Profile = strings.TrimPrefix(arg, "--profile=")
			default:
				remaining = append(remaining, arg)
			}
		}
	}

	return remaining, args
}

// parseAskArgs parses ask command specific arguments. Every non-flag
// word joins the question.
func parseAskArgs(args *Args, remaining []string) {
	var query []string

	for i := 0; i < len(remaining); i++ {
		arg := remaining[i]

		switch arg {
		case "-f", "--file":
			if i+1 < len(remaining) {
				i++
				args.File = remaining[i]
			}
		case "--stream":
			args.Stream = true
		default:
			switch {
			case strings.HasPrefix(arg, "--file="):
				args.File = strings.TrimPrefix(arg, "--file=")
			case !strings.HasPrefix(arg, "-"):
				query = append(query, arg)
			}
		}
	}

	args.Query = strings.Join(query, " ")
}

// parseSessionArgs parses sessions command specific arguments. The first
// positional argument is the subcommand, the second the session reference;
// search treats everything after the subcommand as the query.
func parseSessionArgs(args *Args, remaining []string) {
	args.Format = "md"

	var positional []string
	for i := 0; i < len(remaining); i++ {
		arg := remaining[i]

		switch arg {
		case "--format":
			if i+1 < len(remaining) {
				i++
				args.Format = remaining[i]
			}
		case "-o", "--output":
			if i+1 < len(remaining) {
				i++
				args.Output = remaining[i]
			}
		case "--confirm":
			args.Confirm = true
		default:
			switch {
			case strings.HasPrefix(arg, "--format="):
				args.Format = strings.TrimPrefix(arg, "--format=")
			case strings.HasPrefix(arg, "--output="):
				args.Output = strings.TrimPrefix(arg, "--output=")
			case !strings.HasPrefix(arg, "-"):
				positional = append(positional, arg)
			}
		}
	}

	if len(positional) > 0 {
		args.Subcommand = positional[0]
	}
	if len(positional) > 1 {
		args.SessionRef = positional[1]
		args.Query = strings.Join(positional[1:], " ")
	}
}

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error.
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments.
	ExitUsageError = 2
	// ExitConfigError indicates a configuration error.
	ExitConfigError = 3
	// ExitAuthError indicates a missing or rejected API credential.
	ExitAuthError = 4
	// ExitNetworkError indicates a network or API availability error.
	ExitNetworkError = 5
	// ExitNotFoundError indicates a resource was not found.
	ExitNotFoundError = 6
)

// usageError marks bad invocations so callers exit with ExitUsageError.
type usageError struct {
	msg string
}

func (e *usageError) Error() string {
	return e.msg
}

func errUsage(format string, a ...any) error {
	return &usageError{msg: fmt.Sprintf(format, a...)}
}

// GetExitCode maps an error onto its process exit code.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var ue *usageError
	if errors.As(err, &ue) {
		return ExitUsageError
	}

	if errors.Is(err, groq.ErrNotConfigured) || errors.Is(err, groq.ErrAuthFailed) {
		return ExitAuthError
	}

	if errors.Is(err, storage.ErrSessionNotFound) ||
		errors.Is(err, groq.ErrModelNotFound) ||
		errors.Is(err, groq.ErrUnknownModel) {
		return ExitNotFoundError
	}

	var te *groq.TransportError
	if errors.As(err, &te) || errors.Is(err, groq.ErrRateLimited) {
		return ExitNetworkError
	}

	var ve config.ValidateErrors
	if errors.As(err, &ve) {
		return ExitConfigError
	}

	return ExitGeneralError
}

// =============================================================================
// SHARED RESOLUTION HELPERS
// =============================================================================

// ResolveModel picks the active model: CLI flag, then config, then the
// built-in default. Flag values go through the forgiving matcher, so a
// prefix like "deepseek" works.
func ResolveModel(cfg *config.Config, override string) (model.ModelChoice, error) {
	name := override
	if name == "" && cfg != nil {
		name = cfg.DefaultModel
	}
	if name == "" {
		return model.DefaultChoice(), nil
	}

	choice, ok := model.GetModelChoice(name)
	if !ok {
		return model.ModelChoice{}, errUsage("unknown model %q (available: %s)",
			name, strings.Join(model.ChoiceNames(), ", "))
	}
	return choice, nil
}

// ResolveProfile picks the response length profile, accepting any casing.
func ResolveProfile(cfg *config.Config, override string) (model.ResponseProfile, error) {
	name := override
	if name == "" && cfg != nil {
		name = cfg.DefaultProfile
	}
	if name == "" {
		return model.DefaultProfile(), nil
	}

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
		return model.ResponseProfile{}, errUsage("unknown profile %q (available: %s)",
			name, strings.Join(model.ProfileNames(), ", "))
	}
	return profile, nil
}

// newAPIClient builds a Groq client from the environment credential and
// the configured endpoint.
func newAPIClient(cfg *config.Config) (*groq.Client, error) {
	client := groq.NewClient(os.Getenv("GROQ_API_KEY"))
	if cfg != nil && cfg.API.BaseURL != "" {
		client = client.WithBaseURL(cfg.API.BaseURL)
	}
	if !client.IsConfigured() {
		return nil, fmt.Errorf("%w: GROQ_API_KEY not found in environment variables", groq.ErrNotConfigured)
	}
	return client, nil
}

// =============================================================================
// SIMPLE HANDLERS
// =============================================================================

// HandleVersion handles the "version" command.
func HandleVersion() {
	PrintVersion()
}

// HandleHelp handles the "help" command.
func HandleHelp() {
	PrintUsage()
}

// HandleUnknown reports an unrecognized command and returns its exit code.
func HandleUnknown(args Args) int {
	fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", args.Subcommand)
	PrintUsage()
	return ExitUsageError
}
