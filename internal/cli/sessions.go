// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// sessions.go - session archive command handler.
//
// Handles "llamachat sessions", the CLI surface of the session archive:
// listing, inspecting, searching, exporting, and deleting saved
// conversations. Exports print to stdout so they compose with shell
// redirection; --output writes a file instead.
//
// Examples:
//   llamachat sessions list
//   llamachat sessions show 2
//   llamachat sessions search rust
//   llamachat sessions export 2 --format json > session.json
//   llamachat sessions export 2 --output transcript.md
//   llamachat sessions delete 2 --confirm
package cli

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jeranaias/llamachat/internal/config"
	"github.com/jeranaias/llamachat/internal/storage"
	"github.com/jeranaias/llamachat/internal/util"
)

// =============================================================================
// ARCHIVE ACCESS
// =============================================================================

// openArchive opens the session store per the storage configuration.
func openArchive(cfg *config.Config) (*storage.SessionStore, error) {
	var (
		store *storage.SessionStore
		err   error
	)
	if cfg != nil && cfg.Storage.Dir != "" {
		store, err = storage.NewSessionStoreWithDir(cfg.Storage.Dir)
	} else {
		store, err = storage.NewSessionStore()
	}
	if err != nil {
		return nil, err
	}

	if cfg != nil && cfg.Storage.MaxSessions > 0 {
		store.MaxSessions = cfg.Storage.MaxSessions
	}
	if cfg != nil && cfg.Storage.Encrypt {
		if err := store.EnableEncryption(); err != nil {
			store.Close()
			return nil, err
		}
	}
	return store, nil
}

// defaultExportDir resolves the directory conversation exports land in.
func defaultExportDir(cfg *config.Config) string {
	dir := ""
	if cfg != nil {
		dir = cfg.Storage.Dir
	}
	if dir == "" {
		if configDir, err := config.ConfigDir(); err == nil {
			dir = configDir
		}
	}
	if dir == "" {
		return "exports"
	}
	return filepath.Join(dir, "exports")
}

// =============================================================================
// SESSIONS HANDLER
// =============================================================================

// HandleSessions handles the "sessions" command and its subcommands.
func HandleSessions(args Args) error {
	cfg := config.Global()

	store, err := openArchive(cfg)
	if err != nil {
		return fmt.Errorf("failed to open session archive: %w", err)
	}
	defer store.Close()

	switch strings.ToLower(args.Subcommand) {
	case "", "list", "ls", "l":
		return listSessions(store)
	case "show":
		return showSession(store, args)
	case "search":
		return searchSessions(store, args)
	case "export":
		return exportSession(store, args)
	case "delete", "rm":
		return deleteSession(store, args)
	default:
		return errUsage("unknown sessions subcommand: %s\nUsage: llamachat sessions [list|show|search|export|delete]",
			args.Subcommand)
	}
}

// resolveStored loads a session by list index ("2", "#2") or by full ID.
func resolveStored(store *storage.SessionStore, ref string) (*storage.StoredSession, error) {
	if ref == "" {
		return nil, errUsage("session number required (see llamachat sessions list)")
	}
	if n, err := strconv.Atoi(strings.TrimPrefix(ref, "#")); err == nil {
		if n < 1 {
			return nil, errUsage("invalid session number %q", ref)
		}
		return store.LoadByIndex(n)
	}
	return store.Load(ref)
}

// =============================================================================
// SUBCOMMANDS
// =============================================================================

func listSessions(store *storage.SessionStore) error {
	sessions, err := store.List()
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	fmt.Println()
	fmt.Print(storage.FormatSessionList(sessions))
	fmt.Println()
	return nil
}

func searchSessions(store *storage.SessionStore, args Args) error {
	query := strings.TrimSpace(args.Query)
	if query == "" {
		return errUsage("search query required. Usage: llamachat sessions search <query>")
	}

	sessions, err := store.Search(query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	fmt.Println()
	fmt.Printf("Matching %q:\n\n", query)
	fmt.Print(storage.FormatSessionList(sessions))
	fmt.Println()
	return nil
}

func showSession(store *storage.SessionStore, args Args) error {
	sess, err := resolveStored(store, args.SessionRef)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("Session: %s\n", sess.Title)
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println()
	fmt.Printf("ID:        %s\n", sess.ID)
	fmt.Printf("Model:     %s\n", sess.Model)
	fmt.Printf("Profile:   %s\n", sess.Profile)
	fmt.Printf("Created:   %s\n", sess.CreatedAt.Format(time.RFC1123))
	fmt.Printf("Updated:   %s\n", sess.UpdatedAt.Format(time.RFC1123))
	fmt.Printf("Messages:  %d\n", sess.MessageCount())
	if sess.TokensUsed > 0 {
		fmt.Printf("Tokens:    %d\n", sess.TokensUsed)
	}
	fmt.Println()

	fmt.Println("Messages:")
	fmt.Println(strings.Repeat("-", 60))
	for i, msg := range sess.Messages {
		role := strings.ToUpper(msg.Role)

		// Rune-based truncation keeps multi-byte characters intact
		content := msg.Content
		runes := []rune(content)
		if len(runes) > 100 {
			content = string(runes[:97]) + "..."
		}
		content = strings.ReplaceAll(content, "\n", " ")

		fmt.Printf("[%d] %s: %s\n", i+1, role, content)
	}

	fmt.Println()
	fmt.Printf("Use 'llamachat sessions export %s' for the full transcript.\n", sess.ID)
	fmt.Println()
	return nil
}

func exportSession(store *storage.SessionStore, args Args) error {
	format := strings.ToLower(args.Format)
	switch format {
	case "md", "markdown", "":
		format = "markdown"
	case "json":
	default:
		return errUsage("invalid format %q (want md or json)", args.Format)
	}

	sess, err := resolveStored(store, args.SessionRef)
	if err != nil {
		return err
	}

	var data []byte
	if format == "json" {
		data, err = sess.ExportJSON()
		if err != nil {
			return fmt.Errorf("failed to encode session: %w", err)
		}
	} else {
		data = []byte(sess.ExportMarkdown())
	}

	if args.Output != "" {
		if err := util.AtomicWriteFile(args.Output, data, 0600); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		fmt.Printf("Exported session to %s\n", args.Output)
		return nil
	}

	fmt.Print(string(data))
	return nil
}

func deleteSession(store *storage.SessionStore, args Args) error {
	sess, err := resolveStored(store, args.SessionRef)
	if err != nil {
		return err
	}

	if !args.Confirm {
		return errUsage("deleting a session is permanent; re-run with --confirm")
	}

	if err := store.Delete(sess.ID); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	fmt.Printf("Deleted session %s (%s)\n", sess.ID, sess.Title)
	return nil
}
