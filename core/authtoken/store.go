package authtoken

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/s0hv/manga-tracker-auth/core/user"
)

// Store defines token persistence. All mutating operations are expressed as
// single conditional statements keyed by (user, lookup), so any number of
// service instances can share the table without read-then-write races.
type Store interface {
	// Insert persists a new token row.
	Insert(ctx context.Context, token Token) error

	// GetWithUser loads the token row matching (userUUID, lookup) joined to
	// its owning user record. Returns ErrTokenNotFound when no row matches.
	GetWithUser(ctx context.Context, userUUID uuid.UUID, lookup string) (Token, user.Record, error)

	// UpdateHash atomically replaces the secret hash and expiry of the row
	// matching (userID, lookup). Reports whether a row was updated.
	UpdateHash(ctx context.Context, userID int64, lookup string, hashedToken []byte, expiresAt time.Time) (bool, error)

	// DeleteOne removes the row matching lookup and secret hash exactly.
	// Reports whether a row was deleted.
	DeleteOne(ctx context.Context, userID int64, lookup string, hashedToken []byte) (bool, error)

	// DeleteByUser removes every token row owned by userID and returns the
	// number of rows deleted.
	DeleteByUser(ctx context.Context, userID int64) (int64, error)
}
