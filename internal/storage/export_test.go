// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func exportFixture() *StoredSession {
	created := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	return &StoredSession{
		ID:        "conv_export",
		Title:     "Hello World!",
		Model:     "Llama3.3-70B-Versatile",
		Profile:   "Balanced",
		CreatedAt: created,
		UpdatedAt: created,
		Messages: []StoredMessage{
			{Seq: 0, Role: "user", Content: "Hello", Timestamp: created},
			{Seq: 1, Role: "assistant", Content: "Hi!", Timestamp: created.Add(2 * time.Second)},
		},
	}
}

func TestStoredSession_ExportMarkdown(t *testing.T) {
	md := exportFixture().ExportMarkdown()

	if !strings.Contains(md, "# Session Hello World!") {
		t.Error("Markdown should contain the session title header")
	}
	if !strings.Contains(md, "**User**") {
		t.Error("Markdown should contain the User label")
	}
	if !strings.Contains(md, "**Assistant**") {
		t.Error("Markdown should contain the Assistant label")
	}
	if !strings.Contains(md, "Llama3.3-70B-Versatile") {
		t.Error("Markdown should contain the model name")
	}
	if !strings.Contains(md, "---") {
		t.Error("Markdown should separate messages with rules")
	}
	if !strings.Contains(md, "Hello") || !strings.Contains(md, "Hi!") {
		t.Error("Markdown should contain the message content")
	}
}

func TestStoredSession_ExportMarkdownFallsBackToID(t *testing.T) {
	sess := exportFixture()
	sess.Title = ""

	if !strings.Contains(sess.ExportMarkdown(), "# Session conv_export") {
		t.Error("Untitled sessions should use the ID in the header")
	}
}

func TestStoredSession_ExportJSON(t *testing.T) {
	data, err := exportFixture().ExportJSON()
	if err != nil {
		t.Fatalf("ExportJSON failed: %v", err)
	}

	if !strings.Contains(string(data), `"id": "conv_export"`) {
		t.Error("JSON should contain the session ID")
	}

	var decoded StoredSession
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Exported JSON should round-trip: %v", err)
	}
	if len(decoded.Messages) != 2 {
		t.Errorf("Decoded message count = %d, want 2", len(decoded.Messages))
	}
}

func TestStoredSession_WriteExport(t *testing.T) {
	dir := t.TempDir()
	sess := exportFixture()

	path, err := sess.WriteExport(dir, "markdown")
	if err != nil {
		t.Fatalf("WriteExport failed: %v", err)
	}

	name := filepath.Base(path)
	if !strings.HasPrefix(name, "llamachat_hello-world_") {
		t.Errorf("Export name = %q, want llamachat_hello-world_ prefix", name)
	}
	if !strings.HasSuffix(name, ".md") {
		t.Errorf("Markdown export should end in .md, got %q", name)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read export: %v", err)
	}
	if !strings.Contains(string(data), "# Session Hello World!") {
		t.Error("Export file should contain the rendered transcript")
	}

	path, err = sess.WriteExport(dir, "json")
	if err != nil {
		t.Fatalf("WriteExport json failed: %v", err)
	}
	if !strings.HasSuffix(path, ".json") {
		t.Errorf("JSON export should end in .json, got %q", path)
	}
	data, _ = os.ReadFile(path)
	var decoded StoredSession
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("JSON export should parse: %v", err)
	}

	if _, err := sess.WriteExport(dir, "xml"); err == nil {
		t.Error("Unknown export format should fail")
	}
}
