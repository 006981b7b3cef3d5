// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jeranaias/llamachat/internal/util"
)

// =============================================================================
// EXPORT
// =============================================================================

// ExportMarkdown renders the session as a Markdown transcript.
func (s *StoredSession) ExportMarkdown() string {
	var sb strings.Builder

	title := s.Title
	if title == "" {
		title = s.ID
	}
	sb.WriteString(fmt.Sprintf("# Session %s\n\n", title))
	sb.WriteString(fmt.Sprintf("- **Created:** %s\n", s.CreatedAt.Format("2006-01-02 15:04:05")))
	if s.Model != "" {
		sb.WriteString(fmt.Sprintf("- **Model:** %s\n", s.Model))
	}
	if s.Profile != "" {
		sb.WriteString(fmt.Sprintf("- **Profile:** %s\n", s.Profile))
	}
	sb.WriteString(fmt.Sprintf("- **Messages:** %d\n\n", len(s.Messages)))
	sb.WriteString("---\n\n")

	for _, msg := range s.Messages {
		sb.WriteString(fmt.Sprintf("**%s** (%s):\n\n", roleLabel(msg.Role), msg.Timestamp.Format("15:04")))
		sb.WriteString(msg.Content)
		sb.WriteString("\n\n---\n\n")
	}
	return sb.String()
}

// ExportJSON renders the session as indented JSON.
func (s *StoredSession) ExportJSON() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// WriteExport writes the session to dir in the given format ("markdown"
// or "json") and returns the created file path. File names derive from
// the session title so exports sort predictably.
func (s *StoredSession) WriteExport(dir, format string) (string, error) {
	name := s.Title
	if name == "" {
		name = s.ID
	}
	base := fmt.Sprintf("llamachat_%s_%s", util.Slugify(name), s.CreatedAt.Format("20060102"))

	var (
		data []byte
		ext  string
	)
	switch format {
	case "json":
		var err error
		data, err = s.ExportJSON()
		if err != nil {
			return "", fmt.Errorf("failed to encode session: %w", err)
		}
		ext = ".json"
	case "markdown", "md", "":
		data = []byte(s.ExportMarkdown())
		ext = ".md"
	default:
		return "", fmt.Errorf("unknown export format %q (want markdown or json)", format)
	}

	path := filepath.Join(dir, base+ext)
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	return path, nil
}

// roleLabel maps a stored role onto its transcript label.
func roleLabel(role string) string {
	switch role {
	case "user":
		return "User"
	case "assistant":
		return "Assistant"
	case "system":
		return "System"
	}
	return role
}
