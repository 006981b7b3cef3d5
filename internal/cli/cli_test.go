// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jeranaias/llamachat/internal/groq"
	"github.com/jeranaias/llamachat/internal/storage"
)

// =============================================================================
// ARGUMENT PARSING
// =============================================================================

func TestParseArgsDefaultsToTUI(t *testing.T) {
	cmd, args := ParseArgs([]string{})
	if cmd != CmdTUI {
		t.Errorf("expected CmdTUI, got %v", cmd)
	}
	if args.Quiet || args.Model != "" || args.Profile != "" {
		t.Errorf("expected zero args, got %+v", args)
	}
}

func TestParseArgsGlobalFlags(t *testing.T) {
	cmd, args := ParseArgs([]string{"--quiet", "--model", "deepseek", "--profile", "Long", "ask", "hello"})
	if cmd != CmdAsk {
		t.Fatalf("expected CmdAsk, got %v", cmd)
	}
	if !args.Quiet {
		t.Error("expected Quiet to be set")
	}
	if args.Model != "deepseek" {
		t.Errorf("expected model 'deepseek', got %q", args.Model)
	}
	if args.Profile != "Long" {
		t.Errorf("expected profile 'Long', got %q", args.Profile)
	}
	if args.Query != "hello" {
		t.Errorf("expected query 'hello', got %q", args.Query)
	}
}

func TestParseArgsEqualsForms(t *testing.T) {
	cmd, args := ParseArgs([]string{"--model=deepseek", "--profile=Long", "ask", "hi"})
	if cmd != CmdAsk {
		t.Fatalf("expected CmdAsk, got %v", cmd)
	}
	if args.Model != "deepseek" {
		t.Errorf("expected model 'deepseek', got %q", args.Model)
	}
	if args.Profile != "Long" {
		t.Errorf("expected profile 'Long', got %q", args.Profile)
	}
}

func TestParseArgsVersionAndHelp(t *testing.T) {
	for _, argv := range [][]string{{"version"}, {"-v"}, {"--version"}} {
		cmd, _ := ParseArgs(argv)
		if cmd != CmdVersion {
			t.Errorf("ParseArgs(%v): expected CmdVersion, got %v", argv, cmd)
		}
	}
	for _, argv := range [][]string{{"help"}, {"-h"}, {"--help"}} {
		cmd, _ := ParseArgs(argv)
		if cmd != CmdHelp {
			t.Errorf("ParseArgs(%v): expected CmdHelp, got %v", argv, cmd)
		}
	}
}

func TestParseAskArgs(t *testing.T) {
	cmd, args := ParseArgs([]string{"ask", "what", "--stream", "is", "go", "-f", "main.go"})
	if cmd != CmdAsk {
		t.Fatalf("expected CmdAsk, got %v", cmd)
	}
	if args.Query != "what is go" {
		t.Errorf("expected query 'what is go', got %q", args.Query)
	}
	if !args.Stream {
		t.Error("expected Stream to be set")
	}
	if args.File != "main.go" {
		t.Errorf("expected file 'main.go', got %q", args.File)
	}

	_, args = ParseArgs([]string{"ask", "--file=notes.md", "summarize"})
	if args.File != "notes.md" {
		t.Errorf("expected file 'notes.md', got %q", args.File)
	}
	if args.Query != "summarize" {
		t.Errorf("expected query 'summarize', got %q", args.Query)
	}
}

func TestParseSessionArgs(t *testing.T) {
	cmd, args := ParseArgs([]string{"sessions", "export", "2", "--format", "json", "--output", "x.json"})
	if cmd != CmdSessions {
		t.Fatalf("expected CmdSessions, got %v", cmd)
	}
	if args.Subcommand != "export" {
		t.Errorf("expected subcommand 'export', got %q", args.Subcommand)
	}
	if args.SessionRef != "2" {
		t.Errorf("expected session ref '2', got %q", args.SessionRef)
	}
	if args.Format != "json" {
		t.Errorf("expected format 'json', got %q", args.Format)
	}
	if args.Output != "x.json" {
		t.Errorf("expected output 'x.json', got %q", args.Output)
	}

	// Format defaults to md when unset
	_, args = ParseArgs([]string{"sessions", "export", "1"})
	if args.Format != "md" {
		t.Errorf("expected default format 'md', got %q", args.Format)
	}

	_, args = ParseArgs([]string{"sessions", "delete", "3", "--confirm"})
	if args.Subcommand != "delete" || args.SessionRef != "3" || !args.Confirm {
		t.Errorf("unexpected delete args: %+v", args)
	}

	// Search joins everything after the subcommand into the query
	_, args = ParseArgs([]string{"sessions", "search", "rust", "questions"})
	if args.Subcommand != "search" {
		t.Errorf("expected subcommand 'search', got %q", args.Subcommand)
	}
	if args.Query != "rust questions" {
		t.Errorf("expected query 'rust questions', got %q", args.Query)
	}
}

func TestParseArgsUnknownCommand(t *testing.T) {
	cmd, args := ParseArgs([]string{"frobnicate"})
	if cmd != CmdUnknown {
		t.Errorf("expected CmdUnknown, got %v", cmd)
	}
	if args.Subcommand != "frobnicate" {
		t.Errorf("expected subcommand 'frobnicate', got %q", args.Subcommand)
	}
}

// =============================================================================
// EXIT CODES
// =============================================================================

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"usage", errUsage("bad invocation"), ExitUsageError},
		{"not configured", fmt.Errorf("client: %w", groq.ErrNotConfigured), ExitAuthError},
		{"auth failed", groq.ErrAuthFailed, ExitAuthError},
		{"transport", &groq.TransportError{Err: errors.New("dial tcp: connection refused")}, ExitNetworkError},
		{"rate limited", groq.ErrRateLimited, ExitNetworkError},
		{"session missing", storage.ErrSessionNotFound, ExitNotFoundError},
		{"generic", errors.New("boom"), ExitGeneralError},
	}

	for _, tt := range tests {
		if got := GetExitCode(tt.err); got != tt.want {
			t.Errorf("%s: GetExitCode() = %d, want %d", tt.name, got, tt.want)
		}
	}
}

// =============================================================================
// RESOLUTION
// =============================================================================

func TestResolveModel(t *testing.T) {
	choice, err := ResolveModel(nil, "deepseek")
	if err != nil {
		t.Fatalf("ResolveModel: %v", err)
	}
	if choice.Name != "DeepSeek-V2-70B" {
		t.Errorf("expected prefix match on DeepSeek-V2-70B, got %q", choice.Name)
	}

	if _, err := ResolveModel(nil, "gpt-4"); err == nil {
		t.Error("expected error for unknown model")
	}

	choice, err = ResolveModel(nil, "")
	if err != nil {
		t.Fatalf("ResolveModel: %v", err)
	}
	if choice.Name != "Llama3.3-70B-Versatile" {
		t.Errorf("expected default model, got %q", choice.Name)
	}
}

func TestResolveProfile(t *testing.T) {
	profile, err := ResolveProfile(nil, "long")
	if err != nil {
		t.Fatalf("ResolveProfile: %v", err)
	}
	if profile.Name != "Long" {
		t.Errorf("expected case-insensitive match on Long, got %q", profile.Name)
	}

	if _, err := ResolveProfile(nil, "verbose"); err == nil {
		t.Error("expected error for unknown profile")
	}

	profile, err = ResolveProfile(nil, "")
	if err != nil {
		t.Fatalf("ResolveProfile: %v", err)
	}
	if profile.Name != "Balanced" {
		t.Errorf("expected default profile, got %q", profile.Name)
	}
}

// =============================================================================
// FILE CONTEXT
// =============================================================================

func TestReadFileForContext(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snippet.go")
	if err := os.WriteFile(path, []byte("package main\n"), 0644); err != nil {
		t.Fatal(err)
	}

	content, err := readFileForContext(path)
	if err != nil {
		t.Fatalf("readFileForContext: %v", err)
	}
	if !strings.Contains(content, "--- File: "+path+" ---") {
		t.Error("expected file header in formatted content")
	}
	if !strings.Contains(content, "package main") {
		t.Error("expected file body in formatted content")
	}

	if _, err := readFileForContext(filepath.Join(dir, "missing.go")); err == nil {
		t.Error("expected error for missing file")
	} else if !strings.Contains(err.Error(), "file not found") {
		t.Errorf("unexpected error: %v", err)
	}

	big := filepath.Join(dir, "big.bin")
	if err := os.WriteFile(big, make([]byte, MaxFileSize+1), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := readFileForContext(big); err == nil {
		t.Error("expected error for oversized file")
	} else if !strings.Contains(err.Error(), "file too large") {
		t.Errorf("unexpected error: %v", err)
	}
}
