package user

import (
	"context"

	"github.com/google/uuid"
)

// Record is a denormalized snapshot of a user row: the fields every
// authenticated request needs, without joining the users table each time.
type Record struct {
	// ID is the numeric primary key used in foreign keys and logs.
	ID int64

	// UUID is the public user identity. Token lookups are scoped by it so
	// token rows can never be matched across users.
	UUID uuid.UUID

	Username string
	Email    string

	// Theme is the UI theme preference carried into every rendered page.
	Theme string

	Admin bool
}

// Store loads user records from persistent storage.
type Store interface {
	// GetByID returns the record for the given numeric user id.
	// Implementations return ErrNotFound when no such user exists.
	GetByID(ctx context.Context, id int64) (Record, error)
}
