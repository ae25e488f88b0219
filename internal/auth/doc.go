// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuillNote Contributors

// Package auth provides the authentication and account-lifecycle core of
// QuillNote.
//
// # Domain Types
//
// User is the persisted identity record. Session is the in-process binding
// of a client to at most one authenticated User; sessions are created
// through a Manager and passed explicitly to every operation, never held in
// package-level state. RememberToken is the durable client-held artifact
// that lets a session re-establish identity without a password.
//
// # Services
//
// Service types coordinate domain operations:
//   - Service - login, logout, remember-token resume
//   - AccountService - signup, profile mutation, two-step account deletion
//   - PasswordResetService - temporary-credential recovery flow
//
// Services are created with New*Service constructors that validate
// dependencies.
package auth
