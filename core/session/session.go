package session

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"
)

// Session is the state tracked for one browser session. Anonymous sessions
// carry a nil UserID. Data accumulates request-scoped counters (page views,
// chapter reads) that get flushed to the analytics sink when the session
// expires or is destroyed.
type Session struct {
	ID        string
	UserID    *int64
	Data      map[string]any
	ExpiresAt time.Time
}

// IsAuthenticated returns true if the session belongs to a signed-in user.
func (s Session) IsAuthenticated() bool {
	return s.UserID != nil
}

// IsExpired returns true if the session is past its expiry.
func (s Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// newSessionID creates a cryptographically secure session identifier:
// 32 random bytes (256 bits) encoded as base64 URL-safe without padding.
func newSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrIDGeneration, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
