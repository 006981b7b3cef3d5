// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// =============================================================================
// CONSTANTS
// =============================================================================

// ArchiveKeyEnv is the environment variable holding the archive passphrase.
// The passphrase itself is never written to disk; only a random salt is
// stored alongside the archive.
const ArchiveKeyEnv = "LLAMACHAT_ARCHIVE_KEY"

// encryptedPrefix marks a value as encrypted (format: ENC:base64(nonce|ciphertext|tag))
const encryptedPrefix = "ENC:"

// nonceSize is the size of the nonce/IV for AES-GCM (12 bytes / 96 bits)
const nonceSize = 12

// keySize is the size of the AES-256 key (32 bytes / 256 bits)
const keySize = 32

// saltSize is the size of the salt for key derivation (32 bytes)
const saltSize = 32

// kdfIterations is the number of iterations for PBKDF2-SHA-256 key
// derivation. OWASP 2023 recommends 600,000+ to provide adequate
// resistance against brute-force attacks with modern hardware.
const kdfIterations = 600000

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrArchiveKeyMissing indicates encryption was requested without a passphrase
	ErrArchiveKeyMissing = errors.New("archive encryption enabled but " + ArchiveKeyEnv + " is not set")
	// ErrArchiveLocked indicates a session holds encrypted content and no passphrase is loaded
	ErrArchiveLocked = errors.New("session content is encrypted: set " + ArchiveKeyEnv + " to read it")
	// ErrInvalidCiphertext indicates the ciphertext format is invalid
	ErrInvalidCiphertext = errors.New("invalid ciphertext format")
	// ErrDecryptionFailed indicates decryption failed (wrong key or tampered data)
	ErrDecryptionFailed = errors.New("decryption failed: authentication tag mismatch")
)

// zeroBytes securely zeros sensitive byte slices.
// SECURITY: Zero key material to prevent memory disclosure via crash dumps.
func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// =============================================================================
// ARCHIVE CIPHER
// =============================================================================

// archiveCipher encrypts message content at rest with AES-256-GCM, the
// key derived from the user passphrase via PBKDF2-SHA-256.
type archiveCipher struct {
	aead cipher.AEAD
}

// newArchiveCipher derives the archive key from passphrase and salt and
// initializes the AEAD cipher.
func newArchiveCipher(passphrase string, salt []byte) (*archiveCipher, error) {
	if passphrase == "" {
		return nil, ErrArchiveKeyMissing
	}
	if len(salt) != saltSize {
		return nil, fmt.Errorf("invalid salt length %d, want %d", len(salt), saltSize)
	}

	key := pbkdf2.Key([]byte(passphrase), salt, kdfIterations, keySize, sha256.New)
	// SECURITY: Zero key material to prevent memory disclosure
	defer zeroBytes(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM cipher: %w", err)
	}

	return &archiveCipher{aead: gcm}, nil
}

// generateArchiveSalt generates a cryptographically secure random salt.
func generateArchiveSalt() ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// encryptValue encrypts plaintext and returns base64-encoded ciphertext
// with the ENC: prefix. Output layout is nonce || ciphertext || tag.
func (c *archiveCipher) encryptValue(plaintext string) (string, error) {
	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return encryptedPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// decryptValue decrypts a base64-encoded value with the ENC: prefix.
// Values without the prefix are returned as-is, so plaintext rows
// written before encryption was enabled still load.
func (c *archiveCipher) decryptValue(value string) (string, error) {
	if !isEncryptedValue(value) {
		return value, nil
	}

	encoded := strings.TrimPrefix(value, encryptedPrefix)
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCiphertext, err)
	}
	if len(data) < nonceSize {
		return "", ErrInvalidCiphertext
	}

	nonce := data[:nonceSize]
	plaintext, err := c.aead.Open(nil, nonce, data[nonceSize:], nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	return string(plaintext), nil
}

// isEncryptedValue checks if a stored value is encrypted (has the ENC: prefix).
func isEncryptedValue(value string) bool {
	return strings.HasPrefix(value, encryptedPrefix)
}
