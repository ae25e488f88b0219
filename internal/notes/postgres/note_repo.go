// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuillNote Contributors

// Package postgres implements the notes repository using PostgreSQL.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/quillnote/quillnote/internal/notes"
)

// DB abstracts query execution so the repository works against both
// *pgxpool.Pool and test doubles.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NoteRepository implements notes.Repository using PostgreSQL.
type NoteRepository struct {
	db DB
}

// NewNoteRepository creates a new NoteRepository.
func NewNoteRepository(db DB) *NoteRepository {
	return &NoteRepository{db: db}
}

// ListByUser returns all notes owned by the user, newest first.
func (r *NoteRepository) ListByUser(ctx context.Context, userID int64) ([]*notes.Note, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, content, created_at
		FROM notes
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, oops.Code("NOTE_LIST_FAILED").
			With("operation", "query notes").
			With("user_id", userID).
			Wrap(err)
	}
	defer rows.Close()

	var out []*notes.Note
	for rows.Next() {
		var n notes.Note
		if err := rows.Scan(&n.ID, &n.UserID, &n.Content, &n.CreatedAt); err != nil {
			return nil, oops.Code("NOTE_SCAN_FAILED").
				With("operation", "scan note").
				Wrap(err)
		}
		out = append(out, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("NOTE_LIST_FAILED").
			With("operation", "iterate notes").
			With("user_id", userID).
			Wrap(err)
	}
	return out, nil
}

// Create stores a new note and returns its assigned ID.
func (r *NoteRepository) Create(ctx context.Context, content string, userID int64) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO notes (content, user_id)
		VALUES ($1, $2)
		RETURNING id
	`, content, userID).Scan(&id)
	if err != nil {
		return 0, oops.Code("NOTE_CREATE_FAILED").
			With("operation", "insert note").
			With("user_id", userID).
			Wrap(err)
	}
	return id, nil
}

// Update replaces the content of a note. The owner scope in the predicate
// makes a foreign note indistinguishable from a missing one.
func (r *NoteRepository) Update(ctx context.Context, id, userID int64, content string) error {
	result, err := r.db.Exec(ctx, `
		UPDATE notes SET content = $3 WHERE id = $1 AND user_id = $2
	`, id, userID, content)
	if err != nil {
		return oops.Code("NOTE_UPDATE_FAILED").
			With("operation", "update note").
			With("id", id).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("NOTE_NOT_FOUND").
			With("id", id).
			Wrap(notes.ErrNotFound)
	}
	return nil
}

// Delete removes a note owned by userID.
func (r *NoteRepository) Delete(ctx context.Context, id, userID int64) error {
	result, err := r.db.Exec(ctx, `
		DELETE FROM notes WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return oops.Code("NOTE_DELETE_FAILED").
			With("operation", "delete note").
			With("id", id).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("NOTE_NOT_FOUND").
			With("id", id).
			Wrap(notes.ErrNotFound)
	}
	return nil
}

var _ notes.Repository = (*NoteRepository)(nil)
