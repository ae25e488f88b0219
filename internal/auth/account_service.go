// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuillNote Contributors

package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/oops"
)

// AccountService orchestrates signup, profile mutation, and account
// deletion. All input validation happens before any store call; a
// validation failure never leaves a partial write behind.
type AccountService struct {
	users  UserRepository
	hasher PasswordHasher
	logger *slog.Logger
}

// NewAccountService creates a new AccountService.
func NewAccountService(users UserRepository, hasher PasswordHasher, logger *slog.Logger) (*AccountService, error) {
	if users == nil {
		return nil, oops.Errorf("user repository is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountService{users: users, hasher: hasher, logger: logger}, nil
}

// SignUp validates the inputs, hashes the password, and creates the user.
// Conflict errors from the store (ErrUsernameTaken, ErrEmailTaken) pass
// through to the caller.
func (s *AccountService) SignUp(ctx context.Context, username, email, password string) (*User, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return nil, oops.Code("SIGNUP_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	user := &User{
		Username:     username,
		Email:        email,
		PasswordHash: digest,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user created", "user_id", user.ID, "username", username)
	return user, nil
}

// ChangeUsername updates the username of the session's user.
func (s *AccountService) ChangeUsername(ctx context.Context, sess *Session, username string) error {
	user, err := requireUser(sess)
	if err != nil {
		return err
	}
	if err := ValidateUsername(username); err != nil {
		return err
	}
	if err := s.users.UpdateUsername(ctx, user.ID, username); err != nil {
		return err
	}
	sess.updateUser(func(u *User) { u.Username = username })
	return nil
}

// ChangeEmail updates the email of the session's user. The store reports
// an error wrapping ErrEmailTaken if a different user already owns the
// address.
func (s *AccountService) ChangeEmail(ctx context.Context, sess *Session, email string) error {
	user, err := requireUser(sess)
	if err != nil {
		return err
	}
	if err := ValidateEmail(email); err != nil {
		return err
	}
	if err := s.users.UpdateEmail(ctx, user.ID, email); err != nil {
		return err
	}
	sess.updateUser(func(u *User) { u.Email = email })
	return nil
}

// ChangePassword re-verifies the current password before storing the new
// one. A mismatch fails with ErrInvalidCredentials and no mutation occurs.
func (s *AccountService) ChangePassword(ctx context.Context, sess *Session, current, next string) error {
	user, err := requireUser(sess)
	if err != nil {
		return err
	}
	if err := ValidatePassword(next); err != nil {
		return err
	}

	// Re-verify against the stored row, not the session copy.
	stored, err := s.users.GetByID(ctx, user.ID)
	if err != nil {
		return oops.Code("PASSWORD_CHANGE_FAILED").
			With("operation", "get user by id").
			Wrap(err)
	}
	ok, err := s.hasher.Verify(current, stored.PasswordHash)
	if err != nil {
		return oops.Code("PASSWORD_CHANGE_FAILED").
			With("operation", "verify current password").
			Wrap(err)
	}
	if !ok {
		return oops.Code("AUTH_INVALID_CREDENTIALS").
			Wrapf(ErrInvalidCredentials, "current password does not match")
	}

	digest, err := s.hasher.Hash(next)
	if err != nil {
		return oops.Code("PASSWORD_CHANGE_FAILED").
			With("operation", "hash new password").
			Wrap(err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, digest); err != nil {
		return err
	}
	sess.updateUser(func(u *User) { u.PasswordHash = digest })
	s.logger.Info("password changed", "user_id", user.ID)
	return nil
}

// ArmDelete marks the session's account for deletion, pending confirmation.
func (s *AccountService) ArmDelete(sess *Session) error {
	if _, err := requireUser(sess); err != nil {
		return err
	}
	sess.setPendingDelete(true)
	return nil
}

// CancelDelete clears a pending deletion without any store call.
func (s *AccountService) CancelDelete(sess *Session) {
	if sess != nil {
		sess.setPendingDelete(false)
	}
}

// ConfirmDelete cascades the deletion of the armed account: all notes, then
// the user row, in one transaction. On success the session returns to the
// anonymous state.
func (s *AccountService) ConfirmDelete(ctx context.Context, sess *Session) error {
	user, err := requireUser(sess)
	if err != nil {
		return err
	}
	if !sess.DeleteArmed() {
		return oops.Code("DELETE_NOT_ARMED").Errorf("account deletion has not been confirmed")
	}

	if err := s.users.DeleteCascade(ctx, user.ID); err != nil {
		return err
	}

	sess.clear()
	s.logger.Info("account deleted", "user_id", user.ID)
	return nil
}

// requireUser returns the session's bound user or an error for anonymous
// sessions.
func requireUser(sess *Session) (*User, error) {
	if sess == nil {
		return nil, oops.Code("SESSION_REQUIRED").Errorf("session is required")
	}
	user := sess.User()
	if user == nil {
		return nil, oops.Code("AUTH_REQUIRED").Errorf("not logged in")
	}
	return user, nil
}
