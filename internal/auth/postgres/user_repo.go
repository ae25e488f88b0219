// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuillNote Contributors

// Package postgres implements the auth repositories using PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/quillnote/quillnote/internal/auth"
)

// Unique constraint names from the users table schema.
const (
	usernameConstraint = "users_username_key"
	emailConstraint    = "users_email_key"
)

// DB abstracts query execution so repositories work against both
// *pgxpool.Pool and test doubles.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// UserRepository implements auth.UserRepository using PostgreSQL.
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create stores a new user and fills in the assigned ID.
func (r *UserRepository) Create(ctx context.Context, user *auth.User) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, user.Username, user.Email, user.PasswordHash, user.CreatedAt).Scan(&user.ID)
	if err != nil {
		if conflictErr := classifyConflict(err); conflictErr != nil {
			return conflictErr
		}
		return oops.Code("USER_CREATE_FAILED").
			With("operation", "insert user").
			With("username", user.Username).
			Wrap(err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*auth.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, username, email, password_hash, created_at
		FROM users
		WHERE id = $1
	`, id)

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").
			With("id", id).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_ID_FAILED").
			With("operation", "get user by id").
			With("id", id).
			Wrap(err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email (case-insensitive).
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, username, email, password_hash, created_at
		FROM users
		WHERE LOWER(email) = LOWER($1)
	`, email)

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").
			With("email", email).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_EMAIL_FAILED").
			With("operation", "get user by email").
			With("email", email).
			Wrap(err)
	}
	return user, nil
}

// UpdateUsername changes the username for a user.
func (r *UserRepository) UpdateUsername(ctx context.Context, id int64, username string) error {
	result, err := r.db.Exec(ctx, `
		UPDATE users SET username = $2 WHERE id = $1
	`, id, username)
	if err != nil {
		if conflictErr := classifyConflict(err); conflictErr != nil {
			return conflictErr
		}
		return oops.Code("USER_UPDATE_USERNAME_FAILED").
			With("operation", "update username").
			With("id", id).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").
			With("id", id).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// UpdateEmail changes the email for a user. A conflicting owner is checked
// first so the common case reports ErrEmailTaken without tripping the
// constraint; the constraint remains the backstop for races.
func (r *UserRepository) UpdateEmail(ctx context.Context, id int64, email string) error {
	var ownerID int64
	err := r.db.QueryRow(ctx, `
		SELECT id FROM users WHERE LOWER(email) = LOWER($1) AND id <> $2
	`, email, id).Scan(&ownerID)
	if err == nil {
		return oops.Code("USER_EMAIL_CONFLICT").
			With("email", email).
			With("owner_id", ownerID).
			Wrap(auth.ErrEmailTaken)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return oops.Code("USER_UPDATE_EMAIL_FAILED").
			With("operation", "check email owner").
			With("id", id).
			Wrap(err)
	}

	result, err := r.db.Exec(ctx, `
		UPDATE users SET email = $2 WHERE id = $1
	`, id, email)
	if err != nil {
		if conflictErr := classifyConflict(err); conflictErr != nil {
			return conflictErr
		}
		return oops.Code("USER_UPDATE_EMAIL_FAILED").
			With("operation", "update email").
			With("id", id).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").
			With("id", id).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// UpdatePassword updates only the password hash for a user.
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	result, err := r.db.Exec(ctx, `
		UPDATE users SET password_hash = $2 WHERE id = $1
	`, id, passwordHash)
	if err != nil {
		return oops.Code("USER_UPDATE_PASSWORD_FAILED").
			With("operation", "update password").
			With("id", id).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").
			With("id", id).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// DeleteCascade removes all notes owned by the user, then the user row, in
// one transaction. Any failure rolls back both deletions.
func (r *UserRepository) DeleteCascade(ctx context.Context, id int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return oops.Code("TX_BEGIN_FAILED").Wrap(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.Exec(ctx, `DELETE FROM notes WHERE user_id = $1`, id); err != nil {
		return oops.Code("USER_DELETE_FAILED").
			With("operation", "delete notes").
			With("id", id).
			Wrap(err)
	}

	result, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return oops.Code("USER_DELETE_FAILED").
			With("operation", "delete user").
			With("id", id).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").
			With("id", id).
			Wrap(auth.ErrNotFound)
	}

	if err := tx.Commit(ctx); err != nil {
		return oops.Code("TX_COMMIT_FAILED").
			With("operation", "cascade delete").
			With("id", id).
			Wrap(err)
	}
	return nil
}

// classifyConflict maps a unique-constraint violation to the matching
// sentinel, distinguishing which field conflicted by constraint name.
// Returns nil for every other error.
func classifyConflict(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return nil
	}
	switch pgErr.ConstraintName {
	case usernameConstraint:
		return oops.Code("USER_USERNAME_CONFLICT").
			Wrapf(auth.ErrUsernameTaken, "username already registered")
	case emailConstraint:
		return oops.Code("USER_EMAIL_CONFLICT").
			Wrapf(auth.ErrEmailTaken, "email already registered")
	default:
		return oops.Code("USER_CONFLICT").
			With("constraint", pgErr.ConstraintName).
			Wrap(err)
	}
}

// scanUser scans a single row into a User.
// Callers are responsible for handling pgx.ErrNoRows.
func scanUser(row pgx.Row) (*auth.User, error) {
	var (
		user      auth.User
		createdAt time.Time
	)
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // callers wrap with context-specific info
		}
		return nil, oops.Code("USER_SCAN_FAILED").
			With("operation", "scan user").
			Wrap(err)
	}
	user.CreatedAt = createdAt
	return &user, nil
}

// Compile-time interface check.
var _ auth.UserRepository = (*UserRepository)(nil)
