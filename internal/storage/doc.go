// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists chat sessions in a local SQLite archive.
//
// Sessions live in a single database (~/.llamachat/sessions.db) with an
// FTS5 index over message content for full-text search. Message content
// can optionally be encrypted at rest with AES-256-GCM using a key
// derived from the LLAMACHAT_ARCHIVE_KEY passphrase; titles stay in
// plaintext so listing and title search keep working on a locked
// archive.
//
// # Key Types
//
//   - SessionStore: SQLite-backed session archive
//   - StoredSession: a session as persisted, with its messages
//   - SessionMeta: lightweight metadata for listing
//
// # Usage
//
// Create a store and save a session:
//
//	store, err := storage.NewSessionStore()
//	id, err := store.Save(storage.FromConversation(conv))
//
// List and load sessions:
//
//	metas, err := store.List()
//	sess, err := store.Load(metas[0].ID)
//
// Search session titles and message content:
//
//	metas, err := store.Search("goroutine leak")
package storage
