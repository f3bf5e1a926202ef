package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sakif/user-auth/internal/apperror"
	"github.com/sakif/user-auth/internal/model"
	"github.com/sakif/user-auth/internal/repository"
)

var _ repository.UserRepository = (*DB)(nil)

const (
	uniqueViolation = "23505"
	emailConstraint = "users_email_key"
)

// Insert stores a new user, assigning a UUID id and the database's
// created_at. A taken email, including one that loses a concurrent race,
// comes back as an apperror.ErrConflict error from the users_email_key
// constraint.
func (db *DB) Insert(ctx context.Context, user *model.User) error {
	id := uuid.New().String()

	query :=
		`INSERT INTO users (id, name, email, password_hash)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`

	err := db.q.QueryRowContext(ctx, query,
		id, user.Name, user.Email, user.PasswordHash).Scan(&user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == emailConstraint {
			return apperror.Conflict(repository.DuplicateEmailMessage)
		}
		return fmt.Errorf("postgres: inserting user: %w", err)
	}

	user.ID = id
	return nil
}

// FindByEmail looks up a user by exact email. Absence is (nil, false, nil).
func (db *DB) FindByEmail(ctx context.Context, email string) (*model.User, bool, error) {
	query :=
		`SELECT id, name, email, password_hash, created_at FROM users
		 WHERE email = $1`

	return db.findOne(ctx, query, email)
}

// FindByID looks up a user by id. Ids that are not UUIDs are reported as
// absent without querying.
func (db *DB) FindByID(ctx context.Context, id string) (*model.User, bool, error) {
	// Token subjects come from clients; anything that is not a UUID cannot
	// name a row and would only make Postgres reject the cast.
	if _, err := uuid.Parse(id); err != nil {
		return nil, false, nil
	}

	query :=
		`SELECT id, name, email, password_hash, created_at FROM users
		 WHERE id = $1`

	return db.findOne(ctx, query, id)
}

// List scans the whole table in insertion order.
func (db *DB) List(ctx context.Context) ([]model.User, error) {
	query :=
		`SELECT id, name, email, password_hash, created_at FROM users
		 ORDER BY seq ASC`

	rows, err := db.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing users: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres: scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterating user rows: %w", err)
	}
	return users, nil
}

func (db *DB) findOne(ctx context.Context, query string, arg any) (*model.User, bool, error) {
	var u model.User
	err := db.q.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("postgres: finding user: %w", err)
	}
	return &u, true, nil
}
