// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuillNote Contributors

package auth

import "errors"

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrUsernameTaken is returned when a username is already registered.
var ErrUsernameTaken = errors.New("username already taken")

// ErrEmailTaken is returned when an email is already registered.
var ErrEmailTaken = errors.New("email already taken")

// ErrInvalidCredentials is returned when a password re-verification fails.
var ErrInvalidCredentials = errors.New("invalid credentials")
