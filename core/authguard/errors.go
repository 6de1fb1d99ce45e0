package authguard

import (
	"fmt"
	"time"
)

// RateLimitError indicates the validation attempt was throttled before any
// storage access. RetryAfter tells the client when the next attempt may
// succeed.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e RateLimitError) Error() string {
	return fmt.Sprintf("auth validation rate limited, retry after %s", e.RetryAfter)
}
