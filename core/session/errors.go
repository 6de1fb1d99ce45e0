package session

import "errors"

var (
	// ErrNotFound indicates no live session exists for the requested id.
	// Expired sessions report this too; callers never observe an expired
	// session as anything other than absent.
	ErrNotFound = errors.New("session not found")

	// ErrIDGeneration indicates the system's entropy source failed.
	ErrIDGeneration = errors.New("failed to generate session id")

	// ErrStorage indicates the underlying storage failed. Never to be
	// masked as an absent session.
	ErrStorage = errors.New("session storage error")
)
