// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuillNote Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"
)

// dummyDigest is verified against when a user doesn't exist so that lookup
// misses and password mismatches take a comparable amount of time.
// This is NOT a real credential.
//
//nolint:gosec // G101: fake digest for timing consistency, not a credential.
const dummyDigest = "0000000000000000000000000000000000000000000000000000000000000000"

// Service provides session-establishment operations.
type Service struct {
	users  UserRepository
	hasher PasswordHasher
	logger *slog.Logger
}

// NewService creates a new Service.
func NewService(users UserRepository, hasher PasswordHasher, logger *slog.Logger) (*Service, error) {
	if users == nil {
		return nil, oops.Errorf("user repository is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{users: users, hasher: hasher, logger: logger}, nil
}

// Authenticate checks credentials and returns the matching user.
// A credential mismatch or unknown email returns (nil, nil), never an
// error; errors are reserved for store or hasher failures.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, lookupErr := s.users.GetByEmail(ctx, email)

	targetDigest := dummyDigest
	if lookupErr != nil {
		if !errors.Is(lookupErr, ErrNotFound) {
			return nil, oops.Code("AUTH_VERIFY_FAILED").
				With("operation", "get user by email").
				Wrap(lookupErr)
		}
	} else {
		targetDigest = user.PasswordHash
	}

	// Always verify, even against the dummy digest.
	valid, err := s.hasher.Verify(password, targetDigest)
	if err != nil {
		return nil, oops.Code("AUTH_VERIFY_FAILED").
			With("operation", "verify password").
			Wrap(err)
	}
	if lookupErr != nil || !valid {
		return nil, nil
	}
	return user, nil
}

// Login authenticates the credentials and binds the user to the session,
// replacing any prior identity. When remember is true, a remember token is
// issued and retained on the session for the caller to hand to the client.
func (s *Service) Login(ctx context.Context, sess *Session, email, password string, remember bool) (*User, error) {
	if sess == nil {
		return nil, oops.Code("SESSION_REQUIRED").Errorf("session is required")
	}

	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, oops.Code("AUTH_INVALID_CREDENTIALS").
			Wrapf(ErrInvalidCredentials, "invalid email or password")
	}

	var token string
	if remember {
		token, err = RememberToken{UserID: user.ID, Email: user.Email}.Encode()
		if err != nil {
			return nil, oops.Code("AUTH_LOGIN_FAILED").
				With("operation", "encode remember token").
				Wrap(err)
		}
	}

	sess.bind(user, token)
	s.logger.Info("login",
		"session_id", sess.ID.String(),
		"user_id", user.ID,
		"remember", remember,
	)
	return user, nil
}

// Resume re-establishes identity from a remember token. The check is
// best-effort: a malformed token, a missing user, or an email that does
// not match the stored row all leave the session anonymous and return nil.
func (s *Service) Resume(ctx context.Context, sess *Session, raw string) *User {
	if sess == nil || raw == "" {
		return nil
	}

	token, err := DecodeRememberToken(raw)
	if err != nil {
		s.logger.Debug("remember token rejected", "reason", "malformed")
		return nil
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		s.logger.Debug("remember token rejected",
			"reason", "lookup failed",
			"user_id", token.UserID,
		)
		return nil
	}
	if user.Email != token.Email {
		s.logger.Debug("remember token rejected",
			"reason", "email mismatch",
			"user_id", token.UserID,
		)
		return nil
	}

	sess.bind(user, raw)
	s.logger.Info("session resumed",
		"session_id", sess.ID.String(),
		"user_id", user.ID,
	)
	return user
}

// Logout returns the session to the anonymous state and discards the
// remember token, invalidating it for this client.
func (s *Service) Logout(sess *Session) {
	if sess == nil {
		return
	}
	if user := sess.User(); user != nil {
		s.logger.Info("logout",
			"session_id", sess.ID.String(),
			"user_id", user.ID,
		)
	}
	sess.clear()
}
