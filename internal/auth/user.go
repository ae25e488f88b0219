// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuillNote Contributors

package auth

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/samber/oops"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 6

// User represents a registered account.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// ValidateUsername validates a username.
// Usernames must be non-empty and free of whitespace.
func ValidateUsername(username string) error {
	if username == "" {
		return oops.Code("VALIDATION_USERNAME").Errorf("username cannot be empty")
	}
	if strings.IndexFunc(username, unicode.IsSpace) >= 0 {
		return oops.Code("VALIDATION_USERNAME").
			With("username", username).
			Errorf("username cannot contain whitespace")
	}
	return nil
}

// ValidateEmail validates an email address. The only structural requirement
// is the presence of an "@"; deliverability is the mail transport's problem.
func ValidateEmail(email string) error {
	if email == "" {
		return oops.Code("VALIDATION_EMAIL").Errorf("email cannot be empty")
	}
	if !strings.Contains(email, "@") {
		return oops.Code("VALIDATION_EMAIL").
			With("email", email).
			Errorf("email must contain @")
	}
	return nil
}

// ValidatePassword validates a plaintext password against policy.
func ValidatePassword(password string) error {
	if password == "" {
		return oops.Code("VALIDATION_PASSWORD").Errorf("password cannot be empty")
	}
	if len(password) < MinPasswordLength {
		return oops.Code("VALIDATION_PASSWORD").
			With("min", MinPasswordLength).
			Errorf("password must be at least %d characters", MinPasswordLength)
	}
	if strings.IndexFunc(password, unicode.IsSpace) >= 0 {
		return oops.Code("VALIDATION_PASSWORD").Errorf("password cannot contain whitespace")
	}
	return nil
}

// UserRepository manages user persistence.
type UserRepository interface {
	// Create stores a new user and fills in the assigned ID.
	// Returns an error wrapping ErrUsernameTaken or ErrEmailTaken when the
	// corresponding unique constraint is violated.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id int64) (*User, error)

	// GetByEmail retrieves a user by email (case-insensitive).
	GetByEmail(ctx context.Context, email string) (*User, error)

	// UpdateUsername changes the username for a user.
	UpdateUsername(ctx context.Context, id int64, username string) error

	// UpdateEmail changes the email for a user. Returns an error wrapping
	// ErrEmailTaken if a different user already owns the email.
	UpdateEmail(ctx context.Context, id int64, email string) error

	// UpdatePassword updates only the password hash for a user.
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error

	// DeleteCascade removes all notes owned by the user, then the user row,
	// in a single transaction. Either both deletions commit or neither does.
	DeleteCascade(ctx context.Context, id int64) error
}
