package authtoken

import (
	"crypto/sha256"
	"encoding/base64"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// lookupSize is the random byte length of a token's lookup index.
	lookupSize = 8
	// issueSecretSize is the secret length for freshly issued tokens.
	issueSecretSize = 33
	// rotateSecretSize is the secret length for rotated secrets.
	rotateSecretSize = 32
)

// Token is a persisted remember-me token row. The raw secret is never
// stored; possession of a secret hashing to HashedToken proves ownership.
type Token struct {
	UserID int64

	// Lookup is the non-secret random index of the row. It survives
	// rotation, so one browser keeps one row for its whole token lifetime.
	Lookup string

	// HashedToken is sha256 of the current secret.
	HashedToken []byte

	ExpiresAt time.Time
}

// IsExpired reports whether the token's validity window has passed.
func (t Token) IsExpired() bool {
	return !time.Now().Before(t.ExpiresAt)
}

// CookieValue is the transport representation of a remember-me credential:
// the semicolon-delimited triple carried in the auth cookie. It is opaque to
// the client; only the server interprets it.
type CookieValue struct {
	Lookup   string
	Secret   []byte
	UserUUID uuid.UUID
}

// String encodes the triple as "{lookup};{base64(secret)};{base64(uuid)}".
func (v CookieValue) String() string {
	return v.Lookup + ";" +
		base64.RawURLEncoding.EncodeToString(v.Secret) + ";" +
		base64.RawURLEncoding.EncodeToString(v.UserUUID[:])
}

// ParseCookieValue decodes a raw cookie value into its triple.
// Any structural defect (wrong field count, undecodable base64, uuid of the
// wrong length) returns ErrMalformedCookie; such values must be rejected
// without consulting storage.
func ParseCookieValue(raw string) (CookieValue, error) {
	parts := strings.Split(raw, ";")
	if len(parts) != 3 {
		return CookieValue{}, ErrMalformedCookie
	}

	lookup := parts[0]
	if lookup == "" {
		return CookieValue{}, ErrMalformedCookie
	}

	secret, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil || len(secret) == 0 {
		return CookieValue{}, ErrMalformedCookie
	}

	rawUUID, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return CookieValue{}, ErrMalformedCookie
	}
	userUUID, err := uuid.FromBytes(rawUUID)
	if err != nil {
		return CookieValue{}, ErrMalformedCookie
	}

	return CookieValue{Lookup: lookup, Secret: secret, UserUUID: userUUID}, nil
}

// hashSecret derives the stored hash from a raw secret.
func hashSecret(secret []byte) []byte {
	sum := sha256.Sum256(secret)
	return sum[:]
}
