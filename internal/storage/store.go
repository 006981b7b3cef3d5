// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jeranaias/llamachat/internal/model"
	"github.com/jeranaias/llamachat/internal/util"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultMaxSessions caps stored sessions before oldest-first pruning
	DefaultMaxSessions = 100

	// ArchiveFileName is the database file name under the archive directory
	ArchiveFileName = "sessions.db"

	// titleRunes bounds titles derived from the first user message
	titleRunes = 50

	// metaSaltKey is the metadata row holding the content encryption salt
	metaSaltKey = "content_salt"
)

// =============================================================================
// ERRORS
// =============================================================================

// SessionError is an error related to session storage.
type SessionError struct {
	Message string
}

func (e *SessionError) Error() string {
	return e.Message
}

// Is makes SessionError work with errors.Is.
func (e *SessionError) Is(target error) bool {
	t, ok := target.(*SessionError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

// ErrSessionNotFound is returned when a session doesn't exist.
var ErrSessionNotFound = &SessionError{Message: "session not found"}

// =============================================================================
// TYPES
// =============================================================================

// StoredSession is a session as persisted in the archive.
type StoredSession struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Model      string          `json:"model"`
	Profile    string          `json:"profile"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	TokensUsed int             `json:"tokens_used"`
	Messages   []StoredMessage `json:"messages"`
}

// MessageCount returns the number of archived messages.
func (s *StoredSession) MessageCount() int {
	return len(s.Messages)
}

// StoredMessage is a single archived turn.
type StoredMessage struct {
	Seq        int       `json:"seq"`
	Role       string    `json:"role"`
	Content    string    `json:"content"`
	TokenCount int       `json:"token_count,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// SessionMeta is lightweight session metadata for listing.
type SessionMeta struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Model        string    `json:"model"`
	Profile      string    `json:"profile"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
	TokensUsed   int       `json:"tokens_used"`
	Encrypted    bool      `json:"encrypted,omitempty"`
}

// MessageMatch is a message-level search hit.
type MessageMatch struct {
	SessionID string
	Title     string
	Seq       int
	Role      string
	Content   string
}

// =============================================================================
// CONVERSION
// =============================================================================

// FromConversation converts a live conversation into its archive form.
// Streaming placeholders, error-marked partials, and system notices are
// display state, not turns, and are not persisted.
func FromConversation(conv *model.Conversation) *StoredSession {
	sess := &StoredSession{
		ID:         conv.ID,
		Title:      conv.Title,
		Model:      conv.Model,
		Profile:    conv.Profile,
		CreatedAt:  conv.CreatedAt,
		UpdatedAt:  conv.UpdatedAt,
		TokensUsed: conv.TokensUsed,
	}
	for _, msg := range conv.Messages {
		if msg.IsStreaming || msg.IsError || msg.Role == model.RoleSystem {
			continue
		}
		sess.Messages = append(sess.Messages, StoredMessage{
			Seq:        len(sess.Messages),
			Role:       msg.Role.String(),
			Content:    msg.Content,
			TokenCount: msg.TokenCount,
			Timestamp:  msg.Timestamp,
		})
	}
	return sess
}

// ToConversation rebuilds a live conversation from the archive, replaying
// turns into both the scrollback and the history store so the request
// window picks up where the session left off.
func (s *StoredSession) ToConversation() *model.Conversation {
	conv := model.NewConversation()
	conv.ID = s.ID
	conv.CreatedAt = s.CreatedAt
	if s.Model != "" {
		conv.Model = s.Model
	}
	if s.Profile != "" {
		conv.Profile = s.Profile
	}

	for _, msg := range s.Messages {
		switch model.Role(msg.Role) {
		case model.RoleUser:
			m := conv.AddUserMessage(msg.Content)
			m.Timestamp = msg.Timestamp
		case model.RoleAssistant:
			conv.StartAssistant()
			conv.AppendToLast(msg.Content)
			if m := conv.FinalizeLast(nil); m != nil {
				m.Timestamp = msg.Timestamp
				m.TokenCount = msg.TokenCount
			}
		}
	}

	// After replay, or the title would be re-derived from the first turn.
	if s.Title != "" {
		conv.Title = s.Title
	}
	return conv
}

// =============================================================================
// SESSION STORE
// =============================================================================

// SessionStore persists sessions in a SQLite archive.
type SessionStore struct {
	db   *sql.DB
	path string
	mu   sync.RWMutex

	// MaxSessions caps stored sessions; the oldest are pruned past it.
	MaxSessions int

	cipher *archiveCipher
}

// NewSessionStore creates a store on the default archive (~/.llamachat/sessions.db).
func NewSessionStore() (*SessionStore, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return NewSessionStoreWithDir(filepath.Join(home, ".llamachat"))
}

// NewSessionStoreWithDir creates a store on dir/sessions.db, creating the
// directory as needed.
func NewSessionStoreWithDir(dir string) (*SessionStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	path := filepath.Join(dir, ArchiveFileName)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA cache_size=-64000",       // 64MB cache
		"PRAGMA temp_store=MEMORY",
		"PRAGMA foreign_keys=ON",         // Enable foreign key constraints
		"PRAGMA wal_autocheckpoint=1000", // Checkpoint every 1000 pages
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	store := &SessionStore{
		db:          db,
		path:        path,
		MaxSessions: DefaultMaxSessions,
	}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize archive schema: %w", err)
	}
	return store, nil
}

// initSchema creates the archive schema.
func (s *SessionStore) initSchema() error {
	if _, err := s.db.Exec(archiveSchema); err != nil {
		return err
	}
	_, err := s.db.Exec(initArchiveMeta)
	return err
}

// Path returns the archive database path.
func (s *SessionStore) Path() string {
	return s.path
}

// Close closes the archive.
func (s *SessionStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// =============================================================================
// ENCRYPTION
// =============================================================================

// EnableEncryption turns on content encryption for subsequent saves and
// loads, deriving the key from the passphrase in LLAMACHAT_ARCHIVE_KEY.
// The per-archive salt is created on first use and kept in the metadata
// table, so the same passphrase opens the archive anywhere.
func (s *SessionStore) EnableEncryption() error {
	passphrase := os.Getenv(ArchiveKeyEnv)
	if passphrase == "" {
		return ErrArchiveKeyMissing
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	salt, err := s.loadOrCreateSalt()
	if err != nil {
		return err
	}
	cipher, err := newArchiveCipher(passphrase, salt)
	if err != nil {
		return err
	}
	s.cipher = cipher
	return nil
}

// Encrypting reports whether content encryption is active.
func (s *SessionStore) Encrypting() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cipher != nil
}

// loadOrCreateSalt returns the archive content salt, generating and
// persisting one on first use. Caller holds the write lock.
func (s *SessionStore) loadOrCreateSalt() ([]byte, error) {
	var encoded string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", metaSaltKey).Scan(&encoded)
	if errors.Is(err, sql.ErrNoRows) {
		salt, err := generateArchiveSalt()
		if err != nil {
			return nil, err
		}
		value := base64.StdEncoding.EncodeToString(salt)
		if _, err := s.db.Exec("INSERT INTO metadata (key, value) VALUES (?, ?)", metaSaltKey, value); err != nil {
			return nil, fmt.Errorf("failed to store archive salt: %w", err)
		}
		return salt, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read archive salt: %w", err)
	}

	salt, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("corrupt archive salt: %w", err)
	}
	return salt, nil
}

// =============================================================================
// SAVE / LOAD
// =============================================================================

// Save persists a session, replacing any existing row with the same ID.
// A blank ID gets a generated one; a blank title derives from the first
// user message. Returns the session ID.
func (s *SessionStore) Save(sess *StoredSession) (string, error) {
	if sess == nil || len(sess.Messages) == 0 {
		return "", &SessionError{Message: "cannot save empty session"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	if sess.Title == "" || sess.Title == "New Conversation" {
		sess.Title = deriveTitle(sess.Messages)
	}
	now := time.Now()
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = now
	}
	sess.UpdatedAt = now

	encrypted := 0
	if s.cipher != nil {
		encrypted = 1
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin save: %w", err)
	}
	defer tx.Rollback()

	// Replace semantics: clear prior messages first so a re-saved
	// session does not accumulate duplicates, and so the FTS sync
	// triggers see the old rows before the session row is replaced.
	if _, err := tx.Exec("DELETE FROM messages WHERE session_id = ?", sess.ID); err != nil {
		return "", fmt.Errorf("failed to clear prior messages: %w", err)
	}

	if _, err := tx.Exec(`
		INSERT OR REPLACE INTO sessions
			(id, title, model, profile, created_at, updated_at, message_count, tokens_used, encrypted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.Title, sess.Model, sess.Profile,
		sess.CreatedAt.UnixMilli(), sess.UpdatedAt.UnixMilli(),
		len(sess.Messages), sess.TokensUsed, encrypted,
	); err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}

	for i, msg := range sess.Messages {
		content := msg.Content
		if s.cipher != nil {
			content, err = s.cipher.encryptValue(content)
			if err != nil {
				return "", fmt.Errorf("failed to encrypt message: %w", err)
			}
		}
		ts := msg.Timestamp
		if ts.IsZero() {
			ts = now
		}
		if _, err := tx.Exec(`
			INSERT INTO messages (session_id, seq, role, content, token_count, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			sess.ID, i, msg.Role, content, msg.TokenCount, ts.UnixMilli(),
		); err != nil {
			return "", fmt.Errorf("failed to save message: %w", err)
		}
	}

	if err := s.enforceLimit(tx); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit save: %w", err)
	}
	return sess.ID, nil
}

// Load retrieves a session by ID. Loading encrypted content without the
// archive key returns ErrArchiveLocked.
func (s *SessionStore) Load(id string) (*StoredSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadLocked(id)
}

// loadLocked does the actual load. Caller holds at least the read lock.
func (s *SessionStore) loadLocked(id string) (*StoredSession, error) {
	var (
		sess                 StoredSession
		createdMs, updatedMs int64
		msgCount, encrypted  int
	)
	err := s.db.QueryRow(`
		SELECT id, title, model, profile, created_at, updated_at, message_count, tokens_used, encrypted
		FROM sessions WHERE id = ?`, id,
	).Scan(&sess.ID, &sess.Title, &sess.Model, &sess.Profile,
		&createdMs, &updatedMs, &msgCount, &sess.TokensUsed, &encrypted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	sess.CreatedAt = time.UnixMilli(createdMs)
	sess.UpdatedAt = time.UnixMilli(updatedMs)

	if encrypted == 1 && s.cipher == nil {
		return nil, ErrArchiveLocked
	}

	rows, err := s.db.Query(`
		SELECT seq, role, content, token_count, created_at
		FROM messages WHERE session_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	defer rows.Close()

	sess.Messages = make([]StoredMessage, 0, msgCount)
	for rows.Next() {
		var (
			msg  StoredMessage
			tsMs int64
		)
		if err := rows.Scan(&msg.Seq, &msg.Role, &msg.Content, &msg.TokenCount, &tsMs); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.Timestamp = time.UnixMilli(tsMs)
		if s.cipher != nil {
			msg.Content, err = s.cipher.decryptValue(msg.Content)
			if err != nil {
				return nil, err
			}
		}
		sess.Messages = append(sess.Messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read messages: %w", err)
	}
	return &sess, nil
}

// LoadByIndex retrieves a session by its position in List (0 = most recent).
func (s *SessionStore) LoadByIndex(index int) (*StoredSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if index < 0 {
		return nil, ErrSessionNotFound
	}
	var id string
	err := s.db.QueryRow(`
		SELECT id FROM sessions
		ORDER BY updated_at DESC, rowid DESC
		LIMIT 1 OFFSET ?`, index).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve session index: %w", err)
	}
	return s.loadLocked(id)
}

// =============================================================================
// LIST / SEARCH
// =============================================================================

// List returns metadata for all sessions, most recently updated first.
func (s *SessionStore) List() ([]SessionMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, title, model, profile, created_at, updated_at, message_count, tokens_used, encrypted
		FROM sessions
		ORDER BY updated_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	return scanMetas(rows)
}

// Search returns sessions whose title or message content matches the
// query, most recently updated first. Content matches go through the FTS
// index, which only holds plaintext rows: encrypted content is findable
// by title alone.
func (s *SessionStore) Search(query string) ([]SessionMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query = strings.TrimSpace(query)
	if query == "" {
		return []SessionMeta{}, nil
	}

	rows, err := s.db.Query(`
		SELECT id, title, model, profile, created_at, updated_at, message_count, tokens_used, encrypted
		FROM sessions
		WHERE title LIKE ? ESCAPE '\'
		   OR id IN (
			SELECT m.session_id
			FROM messages_fts fts
			JOIN messages m ON m.id = fts.rowid
			WHERE messages_fts MATCH ?
		   )
		ORDER BY updated_at DESC, rowid DESC`,
		"%"+escapeLike(query)+"%", buildMatchQuery(query))
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	defer rows.Close()

	return scanMetas(rows)
}

// SearchMessages returns message-level matches for the query. Plaintext
// archives answer from the FTS index; with encryption active the index
// holds ciphertext, so matching decrypts and scans instead.
func (s *SessionStore) SearchMessages(query string) ([]MessageMatch, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []MessageMatch{}, nil
	}
	if s.Encrypting() {
		return s.searchMessagesScan(query)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT m.session_id, sess.title, m.seq, m.role, m.content
		FROM messages_fts fts
		JOIN messages m ON m.id = fts.rowid
		JOIN sessions sess ON sess.id = m.session_id
		WHERE messages_fts MATCH ?
		ORDER BY sess.updated_at DESC, m.seq`, buildMatchQuery(query))
	if err != nil {
		return nil, fmt.Errorf("message search failed: %w", err)
	}
	defer rows.Close()

	matches := make([]MessageMatch, 0)
	for rows.Next() {
		var match MessageMatch
		if err := rows.Scan(&match.SessionID, &match.Title, &match.Seq, &match.Role, &match.Content); err != nil {
			continue
		}
		matches = append(matches, match)
	}
	return matches, rows.Err()
}

// searchMessagesScan is the encrypted-archive path: load, decrypt, and
// substring-match each session in turn.
func (s *SessionStore) searchMessagesScan(query string) ([]MessageMatch, error) {
	metas, err := s.List()
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(query)

	matches := make([]MessageMatch, 0)
	for _, meta := range metas {
		sess, err := s.Load(meta.ID)
		if err != nil {
			continue
		}
		for _, msg := range sess.Messages {
			if strings.Contains(strings.ToLower(msg.Content), needle) {
				matches = append(matches, MessageMatch{
					SessionID: sess.ID,
					Title:     sess.Title,
					Seq:       msg.Seq,
					Role:      msg.Role,
					Content:   msg.Content,
				})
			}
		}
	}
	return matches, nil
}

// scanMetas reads SessionMeta rows; the column order must match the
// SELECT lists above. Corrupt rows are skipped rather than failing the
// whole listing.
func scanMetas(rows *sql.Rows) ([]SessionMeta, error) {
	metas := make([]SessionMeta, 0)
	for rows.Next() {
		var (
			meta                 SessionMeta
			createdMs, updatedMs int64
			encrypted            int
		)
		if err := rows.Scan(&meta.ID, &meta.Title, &meta.Model, &meta.Profile,
			&createdMs, &updatedMs, &meta.MessageCount, &meta.TokensUsed, &encrypted); err != nil {
			continue
		}
		meta.CreatedAt = time.UnixMilli(createdMs)
		meta.UpdatedAt = time.UnixMilli(updatedMs)
		meta.Encrypted = encrypted == 1
		metas = append(metas, meta)
	}
	return metas, rows.Err()
}

// =============================================================================
// DELETE / CLEAR
// =============================================================================

// Delete removes a session by ID.
func (s *SessionStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin delete: %w", err)
	}
	defer tx.Rollback()

	// Messages go first so the FTS sync triggers run; the schema's
	// cascade is only a backstop.
	if _, err := tx.Exec("DELETE FROM messages WHERE session_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}
	res, err := tx.Exec("DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return tx.Commit()
}

// Clear removes all sessions.
func (s *SessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin clear: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM messages"); err != nil {
		return fmt.Errorf("failed to clear messages: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM sessions"); err != nil {
		return fmt.Errorf("failed to clear sessions: %w", err)
	}
	return tx.Commit()
}

// enforceLimit prunes the oldest sessions past MaxSessions inside the
// save transaction.
func (s *SessionStore) enforceLimit(tx *sql.Tx) error {
	if s.MaxSessions <= 0 {
		return nil
	}
	var count int
	if err := tx.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&count); err != nil {
		return fmt.Errorf("failed to count sessions: %w", err)
	}
	excess := count - s.MaxSessions
	if excess <= 0 {
		return nil
	}

	rows, err := tx.Query(`
		SELECT id FROM sessions
		ORDER BY updated_at ASC, rowid ASC
		LIMIT ?`, excess)
	if err != nil {
		return fmt.Errorf("failed to find stale sessions: %w", err)
	}
	var stale []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err == nil {
			stale = append(stale, id)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to find stale sessions: %w", err)
	}

	for _, id := range stale {
		if _, err := tx.Exec("DELETE FROM messages WHERE session_id = ?", id); err != nil {
			return fmt.Errorf("failed to prune messages: %w", err)
		}
		if _, err := tx.Exec("DELETE FROM sessions WHERE id = ?", id); err != nil {
			return fmt.Errorf("failed to prune session: %w", err)
		}
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// deriveTitle builds a one-line title from the first non-empty user message.
func deriveTitle(messages []StoredMessage) string {
	for _, msg := range messages {
		if msg.Role == string(model.RoleUser) && strings.TrimSpace(msg.Content) != "" {
			return util.TruncateRunes(util.CollapseWhitespace(msg.Content), titleRunes)
		}
	}
	return "Untitled session"
}

// buildMatchQuery turns free text into a safe FTS5 query: each term is
// double-quoted so FTS5 operator characters in user input cannot change
// the query shape.
func buildMatchQuery(query string) string {
	terms := strings.Fields(query)
	quoted := make([]string, 0, len(terms))
	for _, term := range terms {
		quoted = append(quoted, `"`+strings.ReplaceAll(term, `"`, `""`)+`"`)
	}
	return strings.Join(quoted, " ")
}

// escapeLike escapes LIKE wildcards so user queries match literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	return strings.ReplaceAll(s, "_", `\_`)
}

// shortID returns the first 8 characters of an ID for display.
func shortID(id string) string {
	runes := []rune(id)
	if len(runes) <= 8 {
		return id
	}
	return string(runes[:8])
}

// FormatSessionList renders session metadata as a numbered table for
// terminal display. Encrypted sessions are marked with an asterisk.
func FormatSessionList(sessions []SessionMeta) string {
	if len(sessions) == 0 {
		return "No sessions found."
	}

	var sb strings.Builder
	sb.WriteString("Sessions:\n\n")
	for i, meta := range sessions {
		marker := " "
		if meta.Encrypted {
			marker = "*"
		}
		sb.WriteString(fmt.Sprintf("%3d.%s %s  %s  %s  %s\n",
			i+1, marker,
			util.PadRight(shortID(meta.ID), 8),
			meta.UpdatedAt.Format("2006-01-02 15:04"),
			util.PadRight(fmt.Sprintf("%d msgs", meta.MessageCount), 8),
			util.TruncateRunes(util.CollapseWhitespace(meta.Title), 40)))
	}
	return sb.String()
}
