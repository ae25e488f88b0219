// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuillNote Contributors

package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"github.com/samber/oops"
)

// ErrEmptyPassword is returned when attempting to hash an empty password.
var ErrEmptyPassword = oops.Code("AUTH_EMPTY_PASSWORD").Errorf("password cannot be empty")

// PasswordHasher provides password hashing and verification.
//
// Digests are deterministic: equality of two plaintexts is tested by
// hashing both and comparing digests, never by comparing plaintext.
type PasswordHasher interface {
	// Hash produces a one-way digest of the password.
	Hash(password string) (string, error)

	// Verify checks if the password matches the digest.
	// Returns (true, nil) on match, (false, nil) on mismatch, or error on
	// invalid input.
	Verify(password, digest string) (bool, error)
}

// SHA256Hasher implements PasswordHasher as a single global unsalted
// SHA-256 digest. Identical passwords always produce identical digests,
// which the stored-credential schema relies on. See DESIGN.md for the
// security trade-off record.
type SHA256Hasher struct{}

// NewSHA256Hasher creates a new SHA256Hasher.
func NewSHA256Hasher() *SHA256Hasher {
	return &SHA256Hasher{}
}

// Hash produces the hex-encoded SHA-256 digest of the password.
func (h *SHA256Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:]), nil
}

// Verify checks if the password matches the stored digest.
func (h *SHA256Hasher) Verify(password, digest string) (bool, error) {
	if digest == "" {
		return false, oops.Code("AUTH_INVALID_DIGEST").Errorf("stored digest cannot be empty")
	}
	sum := sha256.Sum256([]byte(password))
	computed := hex.EncodeToString(sum[:])

	// Constant-time comparison
	return subtle.ConstantTimeCompare([]byte(computed), []byte(digest)) == 1, nil
}

// Compile-time interface check.
var _ PasswordHasher = (*SHA256Hasher)(nil)
