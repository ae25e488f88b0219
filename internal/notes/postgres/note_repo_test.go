// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuillNote Contributors

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillnote/quillnote/internal/notes"
)

func newMockRepo(t *testing.T) (pgxmock.PgxPoolIface, *NoteRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewNoteRepository(mock)
}

func TestNoteRepository_ListByUser(t *testing.T) {
	ctx := context.Background()

	t.Run("returns notes in query order", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		now := time.Now().UTC()
		mock.ExpectQuery("SELECT id, user_id, content, created_at").
			WithArgs(int64(1)).
			WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "content", "created_at"}).
				AddRow(int64(2), int64(1), "newer note", now).
				AddRow(int64(1), int64(1), "older note", now.Add(-time.Hour)))

		got, err := repo.ListByUser(ctx, 1)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "newer note", got[0].Content)
		assert.Equal(t, "older note", got[1].Content)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no notes yields an empty list", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		mock.ExpectQuery("SELECT id, user_id, content, created_at").
			WithArgs(int64(7)).
			WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "content", "created_at"}))

		got, err := repo.ListByUser(ctx, 7)
		require.NoError(t, err)
		assert.Empty(t, got)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestNoteRepository_Create(t *testing.T) {
	ctx := context.Background()
	mock, repo := newMockRepo(t)
	mock.ExpectQuery("INSERT INTO notes").
		WithArgs("buy milk", int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(5)))

	id, err := repo.Create(ctx, "buy milk", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(5), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNoteRepository_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("updates the content", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		mock.ExpectExec("UPDATE notes SET content").
			WithArgs(int64(5), int64(1), "buy oat milk").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, repo.Update(ctx, 5, 1, "buy oat milk"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing note maps to ErrNotFound", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		mock.ExpectExec("UPDATE notes SET content").
			WithArgs(int64(99), int64(1), "whatever").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.Update(ctx, 99, 1, "whatever")
		require.ErrorIs(t, err, notes.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("another user's note maps to ErrNotFound", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		mock.ExpectExec("UPDATE notes SET content").
			WithArgs(int64(5), int64(2), "overwritten").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.Update(ctx, 5, 2, "overwritten")
		require.ErrorIs(t, err, notes.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestNoteRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes the note", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		mock.ExpectExec("DELETE FROM notes").
			WithArgs(int64(5), int64(1)).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		require.NoError(t, repo.Delete(ctx, 5, 1))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing note maps to ErrNotFound", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		mock.ExpectExec("DELETE FROM notes").
			WithArgs(int64(99), int64(1)).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		err := repo.Delete(ctx, 99, 1)
		require.ErrorIs(t, err, notes.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("another user's note maps to ErrNotFound", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		mock.ExpectExec("DELETE FROM notes").
			WithArgs(int64(5), int64(2)).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		err := repo.Delete(ctx, 5, 2)
		require.ErrorIs(t, err, notes.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
