// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements llamachat's non-TUI command surface.
//
// Parse inspects os.Args and selects a command; with no arguments the
// binary starts the TUI, so every subcommand here is an alternative
// shell around the same conversation core. The handlers share the
// model registry, Groq client, and session archive with the TUI:
//
//   - ask: one question, one request, answer to stdout
//   - chat: liner-based REPL with persistent input history
//   - sessions: list/show/search/export/delete archived sessions
//
// Output is TTY-aware. Markdown responses render through glamour only
// when stdout is a terminal; piped output stays plain, and summaries go
// to stderr so they never mix with redirected responses.
//
// # Usage
//
// Dispatch from main:
//
//	cmd, args := cli.Parse()
//	switch cmd {
//	case cli.CmdAsk:
//		err = cli.HandleAsk(args)
//	}
//	os.Exit(cli.GetExitCode(err))
package cli
