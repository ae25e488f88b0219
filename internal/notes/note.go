// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuillNote Contributors

// Package notes defines the note domain type and its persistence contract.
package notes

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested note does not exist.
var ErrNotFound = errors.New("not found")

// Note is a text record owned by exactly one user.
type Note struct {
	ID        int64
	UserID    int64
	Content   string
	CreatedAt time.Time
}

// Repository manages note persistence. Implementations surface
// connectivity and constraint problems as wrapped store errors; callers
// present a user-facing message.
type Repository interface {
	// ListByUser returns all notes owned by the user, newest first.
	ListByUser(ctx context.Context, userID int64) ([]*Note, error)

	// Create stores a new note and returns its assigned ID.
	Create(ctx context.Context, content string, userID int64) (int64, error)

	// Update replaces the content of a note owned by userID. Returns an
	// error wrapping ErrNotFound when the note does not exist or belongs
	// to another user.
	Update(ctx context.Context, id, userID int64, content string) error

	// Delete removes a note owned by userID, with the same ErrNotFound
	// semantics as Update.
	Delete(ctx context.Context, id, userID int64) error
}
