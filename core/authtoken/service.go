package authtoken

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/s0hv/manga-tracker-auth/core/user"
)

// Service manages the full lifecycle of remember-me tokens: issue, validate,
// rotate, revoke. It holds no cache; tokens are single-use by design, so
// every operation goes straight to storage.
type Service struct {
	store Store
	ttl   time.Duration
}

// NewService creates a token service. ttl is the validity horizon applied on
// issue and refreshed on every rotation.
func NewService(store Store, ttl time.Duration) *Service {
	return &Service{store: store, ttl: ttl}
}

// Issue creates a new token for the user and returns the cookie-encoded
// triple. The secret leaves the process only inside the returned value;
// storage sees its hash.
func (s *Service) Issue(ctx context.Context, userID int64, userUUID uuid.UUID) (string, error) {
	// One read covers both halves of the credential.
	buf := make([]byte, issueSecretSize+lookupSize)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Join(ErrSecretGeneration, err)
	}
	secret := buf[:issueSecretSize]
	lookup := base64.RawURLEncoding.EncodeToString(buf[issueSecretSize:])

	token := Token{
		UserID:      userID,
		Lookup:      lookup,
		HashedToken: hashSecret(secret),
		ExpiresAt:   time.Now().Add(s.ttl),
	}
	if err := s.store.Insert(ctx, token); err != nil {
		return "", errors.Join(ErrStorage, err)
	}

	return CookieValue{Lookup: lookup, Secret: secret, UserUUID: userUUID}.String(), nil
}

// Validate checks a presented credential and returns the owning user record.
//
// The three failure classes matter to callers and are kept distinct:
//   - ErrTokenNotFound: no live row for the lookup (foreign, revoked, or
//     expired) — ordinary, no side effects warranted.
//   - ReuseError: a live row exists but the secret is wrong — a previously
//     valid cookie is being replayed; the caller must revoke everything the
//     owning user holds.
//   - ErrStorage: the database failed; never to be masked as "logged out".
func (s *Service) Validate(ctx context.Context, lookup string, secret []byte, userUUID uuid.UUID) (user.Record, error) {
	token, rec, err := s.store.GetWithUser(ctx, userUUID, lookup)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return user.Record{}, ErrTokenNotFound
		}
		return user.Record{}, errors.Join(ErrStorage, err)
	}

	if token.IsExpired() {
		return user.Record{}, ErrTokenNotFound
	}

	if !hmac.Equal(token.HashedToken, hashSecret(secret)) {
		return user.Record{}, ReuseError{UserID: token.UserID}
	}

	return rec, nil
}

// Rotate consumes the current secret of the row matched by (userID, lookup)
// and installs a fresh one, refreshing the expiry. The lookup survives, so
// the returned cookie value differs from the previous one only in its secret.
// This is the anti-replay mechanism: after rotation the old secret fails
// validation, and its reappearance is reuse.
func (s *Service) Rotate(ctx context.Context, userID int64, lookup string, userUUID uuid.UUID) (string, time.Time, error) {
	secret := make([]byte, rotateSecretSize)
	if _, err := rand.Read(secret); err != nil {
		return "", time.Time{}, errors.Join(ErrSecretGeneration, err)
	}

	expiresAt := time.Now().Add(s.ttl)
	updated, err := s.store.UpdateHash(ctx, userID, lookup, hashSecret(secret), expiresAt)
	if err != nil {
		return "", time.Time{}, errors.Join(ErrStorage, err)
	}
	if !updated {
		// Row vanished between validate and rotate (concurrent revocation).
		return "", time.Time{}, ErrTokenNotFound
	}

	value := CookieValue{Lookup: lookup, Secret: secret, UserUUID: userUUID}.String()
	return value, expiresAt, nil
}

// RevokeOne deletes exactly the token matching lookup and secret. Used on an
// ordinary logout that carried a remember-me cookie. Deleting an already
// absent token is not an error.
func (s *Service) RevokeOne(ctx context.Context, userID int64, lookup string, secret []byte) error {
	if _, err := s.store.DeleteOne(ctx, userID, lookup, hashSecret(secret)); err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}

// RevokeAll deletes every token the user holds and returns the count.
// This is the security response to reuse detection, and the implementation
// of "sign out everywhere" and account deletion.
func (s *Service) RevokeAll(ctx context.Context, userID int64) (int64, error) {
	n, err := s.store.DeleteByUser(ctx, userID)
	if err != nil {
		return 0, errors.Join(ErrStorage, err)
	}
	return n, nil
}
