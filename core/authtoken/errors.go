package authtoken

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedCookie is returned when a cookie value cannot be parsed
	// into the lookup/secret/uuid triple. Parsing happens before any storage
	// call, so a malformed cookie never touches the database.
	ErrMalformedCookie = errors.New("malformed auth cookie")

	// ErrTokenNotFound is returned when no live token matches the presented
	// lookup. This covers both foreign lookups and expired rows and is an
	// ordinary "please log in again" condition.
	ErrTokenNotFound = errors.New("auth token not found or expired")

	// ErrStorage wraps database failures. Callers must treat it as an
	// outage, never as "logged out".
	ErrStorage = errors.New("auth token storage failure")

	// ErrSecretGeneration is returned when the system CSPRNG fails.
	ErrSecretGeneration = errors.New("failed to generate token secret")
)

// ReuseError signals that a live token row matched the presented lookup but
// the secret did not: a stale or stolen copy of a previously valid cookie is
// being replayed. The owning user id is carried so the caller can revoke
// everything that user holds.
type ReuseError struct {
	UserID int64
}

// Error implements the error interface.
func (e ReuseError) Error() string {
	return fmt.Sprintf("auth token reuse detected for user %d", e.UserID)
}
