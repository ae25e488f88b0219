// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuillNote Contributors

package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/samber/oops"
)

// TempPasswordLength is the length of generated temporary passwords.
const TempPasswordLength = 12

// tempPasswordAlphabet is the character set for temporary passwords.
const tempPasswordAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// GenerateTempPassword creates a random password of n letters and digits
// using crypto/rand.
func GenerateTempPassword(n int) (string, error) {
	if n <= 0 {
		return "", oops.Code("RESET_TEMP_INVALID_LENGTH").Errorf("temp password length must be positive, got %d", n)
	}
	out := make([]byte, n)
	alphabetLen := big.NewInt(int64(len(tempPasswordAlphabet)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", oops.Code("RESET_TEMP_GENERATE_FAILED").
				With("operation", "crypto/rand.Int").
				Wrap(err)
		}
		out[i] = tempPasswordAlphabet[idx.Int64()]
	}
	return string(out), nil
}

// Mailer dispatches messages over an external mail transport.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// PasswordResetService issues temporary credentials for account recovery.
type PasswordResetService struct {
	users  UserRepository
	hasher PasswordHasher
	mailer Mailer
	logger *slog.Logger
}

// NewPasswordResetService creates a new PasswordResetService. The mailer
// may be nil when the deployment has no outbound relay configured;
// RequestReset then fails, while IssueReset remains usable.
func NewPasswordResetService(users UserRepository, hasher PasswordHasher, mailer Mailer, logger *slog.Logger) (*PasswordResetService, error) {
	if users == nil {
		return nil, oops.Errorf("user repository is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PasswordResetService{users: users, hasher: hasher, mailer: mailer, logger: logger}, nil
}

// IssueReset generates a temporary password for the account registered
// under email, overwrites the stored hash with its digest, and returns the
// plaintext for out-of-band delivery. Fails with an error wrapping
// ErrNotFound when the email is unknown.
func (s *PasswordResetService) IssueReset(ctx context.Context, email string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Wrap the bare sentinel: wrapping the repo error would keep
			// its code and hide this one.
			return "", oops.Code("RESET_UNKNOWN_EMAIL").
				With("email", email).
				Wrapf(ErrNotFound, "no account registered for this address")
		}
		return "", oops.Code("RESET_ISSUE_FAILED").
			With("operation", "get user by email").
			Wrap(err)
	}

	temp, err := GenerateTempPassword(TempPasswordLength)
	if err != nil {
		return "", err
	}

	digest, err := s.hasher.Hash(temp)
	if err != nil {
		return "", oops.Code("RESET_ISSUE_FAILED").
			With("operation", "hash temp password").
			Wrap(err)
	}

	if err := s.users.UpdatePassword(ctx, user.ID, digest); err != nil {
		return "", oops.Code("RESET_ISSUE_FAILED").
			With("operation", "update password").
			Wrap(err)
	}

	s.logger.Info("temporary password issued", "user_id", user.ID)
	return temp, nil
}

// RequestReset issues a temporary password and mails it to the account's
// address. The store update commits before the send; a delivery failure
// leaves the rotated password in place and is reported distinctly. The flow
// is idempotent and can simply be re-triggered.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) error {
	if s.mailer == nil {
		return oops.Code("RESET_UNAVAILABLE").Errorf("no mail transport configured")
	}

	temp, err := s.IssueReset(ctx, email)
	if err != nil {
		return err
	}

	body := fmt.Sprintf(
		"Your temporary QuillNote password is: %s\n\nLog in with it and change your password immediately.\n",
		temp,
	)
	if err := s.mailer.Send(ctx, email, "QuillNote password reset", body); err != nil {
		// The password was already rotated; the user can retry the flow.
		return oops.Code("RESET_DELIVERY_FAILED").
			With("operation", "send mail").
			Wrap(err)
	}

	return nil
}
