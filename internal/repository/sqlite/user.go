package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sakif/user-auth/internal/apperror"
	"github.com/sakif/user-auth/internal/model"
	"github.com/sakif/user-auth/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id, name, email, password_hash, created_at`

// Insert stores a new user and fills in its ID and CreatedAt.
//
// The UNIQUE constraint on users.email is what guarantees that exactly one
// of two concurrent registrations for the same address wins. The loser gets
// an apperror.ErrConflict error, not a generic database failure.
func (db *DB) Insert(ctx context.Context, user *model.User) error {
	id := xid.New().String()
	now := time.Now().UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		id,
		user.Name,
		user.Email,
		user.PasswordHash,
		now,
	)
	if err != nil {
		if isUniqueEmailViolation(err) {
			return apperror.Conflict(repository.DuplicateEmailMessage)
		}
		return fmt.Errorf("sqlite: inserting user: %w", err)
	}

	user.ID = id
	user.CreatedAt = now
	return nil
}

// FindByEmail looks a user up by exact email match.
func (db *DB) FindByEmail(ctx context.Context, email string) (*model.User, bool, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)

	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("sqlite: finding user by email: %w", err)
	}
	return u, true, nil
}

// FindByID looks a user up by its internal ID.
func (db *DB) FindByID(ctx context.Context, id string) (*model.User, bool, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)

	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("sqlite: finding user %s: %w", id, err)
	}
	return u, true, nil
}

// List returns every user in insertion order. There is no pagination:
// the directory is scanned in full and filtered by the caller.
func (db *DB) List(ctx context.Context) ([]model.User, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}
	// ALWAYS close rows: an open *sql.Rows holds its connection.
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating user rows: %w", err)
	}

	return users, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*model.User, error) {
	var u model.User
	if err := s.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func isUniqueEmailViolation(err error) bool {
	var sqliteErr *moderncsqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE &&
		strings.Contains(sqliteErr.Error(), "users.email")
}
