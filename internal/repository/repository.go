// Package repository declares the storage contracts the service layer depends on.
//
// Services accept these interfaces, never a concrete store, so the same
// business logic runs against SQLite, Postgres or an in-memory fake in tests.
package repository

import (
	"context"

	"github.com/sakif/user-auth/internal/model"
)

// DuplicateEmailMessage is the conflict text every store reports when an
// insert hits the unique email constraint.
const DuplicateEmailMessage = "This email is already registered"

// UserRepository is the user directory: the only owner of user records.
//
// Lookups report absence through the bool result, not an error. Insert
// enforces email uniqueness atomically and returns an apperror.ErrConflict
// error when the email is taken. Records are never updated or deleted.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*model.User, bool, error)
	FindByID(ctx context.Context, id string) (*model.User, bool, error)
	Insert(ctx context.Context, user *model.User) error
	List(ctx context.Context) ([]model.User, error)
}
