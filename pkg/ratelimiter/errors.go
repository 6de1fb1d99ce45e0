package ratelimiter

import "errors"

var (
	// ErrInvalidConfig is returned when a Config fails validation.
	ErrInvalidConfig = errors.New("ratelimiter: invalid configuration")
	// ErrInvalidTokenCount is returned when AllowN is called with n <= 0.
	ErrInvalidTokenCount = errors.New("ratelimiter: invalid token count")
	// ErrStoreUnavailable is returned when the backing store cannot be reached.
	ErrStoreUnavailable = errors.New("ratelimiter: store unavailable")
)
