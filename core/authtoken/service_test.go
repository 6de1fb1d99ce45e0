package authtoken_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0hv/manga-tracker-auth/core/authtoken"
	"github.com/s0hv/manga-tracker-auth/core/user"
)

// memStore is an in-memory Store used to exercise the service's full
// issue/validate/rotate/revoke cycle without a database.
type memStore struct {
	mu     sync.Mutex
	tokens map[string]authtoken.Token // keyed by lookup
	users  map[int64]user.Record
	err    error // when set, every operation fails with it
}

func newMemStore(users ...user.Record) *memStore {
	s := &memStore{
		tokens: make(map[string]authtoken.Token),
		users:  make(map[int64]user.Record),
	}
	for _, rec := range users {
		s.users[rec.ID] = rec
	}
	return s
}

func (s *memStore) Insert(ctx context.Context, token authtoken.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.tokens[token.Lookup] = token
	return nil
}

func (s *memStore) GetWithUser(ctx context.Context, userUUID uuid.UUID, lookup string) (authtoken.Token, user.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return authtoken.Token{}, user.Record{}, s.err
	}

	token, ok := s.tokens[lookup]
	if !ok {
		return authtoken.Token{}, user.Record{}, authtoken.ErrTokenNotFound
	}
	rec, ok := s.users[token.UserID]
	if !ok || rec.UUID != userUUID {
		return authtoken.Token{}, user.Record{}, authtoken.ErrTokenNotFound
	}
	return token, rec, nil
}

func (s *memStore) UpdateHash(ctx context.Context, userID int64, lookup string, hashedToken []byte, expiresAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}

	token, ok := s.tokens[lookup]
	if !ok || token.UserID != userID {
		return false, nil
	}
	token.HashedToken = hashedToken
	token.ExpiresAt = expiresAt
	s.tokens[lookup] = token
	return true, nil
}

func (s *memStore) DeleteOne(ctx context.Context, userID int64, lookup string, hashedToken []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}

	token, ok := s.tokens[lookup]
	if !ok || token.UserID != userID || string(token.HashedToken) != string(hashedToken) {
		return false, nil
	}
	delete(s.tokens, lookup)
	return true, nil
}

func (s *memStore) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}

	var n int64
	for lookup, token := range s.tokens {
		if token.UserID == userID {
			delete(s.tokens, lookup)
			n++
		}
	}
	return n, nil
}

func (s *memStore) count(userID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, token := range s.tokens {
		if token.UserID == userID {
			n++
		}
	}
	return n
}

func (s *memStore) expire(lookup string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := s.tokens[lookup]
	token.ExpiresAt = time.Now().Add(-time.Minute)
	s.tokens[lookup] = token
}

func (s *memStore) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func testUser() user.Record {
	return user.Record{ID: 1, UUID: uuid.New(), Username: "alice", Email: "alice@example.com", Theme: "dark"}
}

func issueAndParse(t *testing.T, svc *authtoken.Service, rec user.Record) authtoken.CookieValue {
	t.Helper()

	raw, err := svc.Issue(context.Background(), rec.ID, rec.UUID)
	require.NoError(t, err)

	cv, err := authtoken.ParseCookieValue(raw)
	require.NoError(t, err)
	return cv
}

func TestService_IssueValidate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	rec := testUser()
	store := newMemStore(rec)
	svc := authtoken.NewService(store, 30*24*time.Hour)

	cv := issueAndParse(t, svc, rec)
	assert.Len(t, cv.Secret, 33)
	assert.Equal(t, rec.UUID, cv.UserUUID)

	got, err := svc.Validate(ctx, cv.Lookup, cv.Secret, cv.UserUUID)
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestService_Validate(t *testing.T) {
	t.Parallel()

	t.Run("unknown lookup", func(t *testing.T) {
		t.Parallel()

		rec := testUser()
		svc := authtoken.NewService(newMemStore(rec), time.Hour)

		_, err := svc.Validate(context.Background(), "no-such-lookup", []byte("secret"), rec.UUID)
		assert.ErrorIs(t, err, authtoken.ErrTokenNotFound)
	})

	t.Run("wrong uuid scopes lookup away", func(t *testing.T) {
		t.Parallel()

		rec := testUser()
		store := newMemStore(rec)
		svc := authtoken.NewService(store, time.Hour)
		cv := issueAndParse(t, svc, rec)

		_, err := svc.Validate(context.Background(), cv.Lookup, cv.Secret, uuid.New())
		assert.ErrorIs(t, err, authtoken.ErrTokenNotFound)
	})

	t.Run("expired token is not found, not reuse", func(t *testing.T) {
		t.Parallel()

		rec := testUser()
		store := newMemStore(rec)
		svc := authtoken.NewService(store, time.Hour)
		cv := issueAndParse(t, svc, rec)

		store.expire(cv.Lookup)

		_, err := svc.Validate(context.Background(), cv.Lookup, []byte("wrong-secret"), cv.UserUUID)
		assert.ErrorIs(t, err, authtoken.ErrTokenNotFound)
	})

	t.Run("live lookup with wrong secret is reuse", func(t *testing.T) {
		t.Parallel()

		rec := testUser()
		store := newMemStore(rec)
		svc := authtoken.NewService(store, time.Hour)
		cv := issueAndParse(t, svc, rec)

		_, err := svc.Validate(context.Background(), cv.Lookup, []byte("wrong-secret"), cv.UserUUID)

		var reuse authtoken.ReuseError
		require.ErrorAs(t, err, &reuse)
		assert.Equal(t, rec.ID, reuse.UserID)
	})

	t.Run("storage failure is not masked", func(t *testing.T) {
		t.Parallel()

		rec := testUser()
		store := newMemStore(rec)
		svc := authtoken.NewService(store, time.Hour)
		cv := issueAndParse(t, svc, rec)

		store.fail(errors.New("connection refused"))

		_, err := svc.Validate(context.Background(), cv.Lookup, cv.Secret, cv.UserUUID)
		assert.ErrorIs(t, err, authtoken.ErrStorage)
	})
}

func TestService_Rotate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	rec := testUser()
	store := newMemStore(rec)
	svc := authtoken.NewService(store, 30*24*time.Hour)

	cv := issueAndParse(t, svc, rec)

	rotated, expiresAt, err := svc.Rotate(ctx, rec.ID, cv.Lookup, cv.UserUUID)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), expiresAt, time.Minute)

	newCV, err := authtoken.ParseCookieValue(rotated)
	require.NoError(t, err)

	// Lookup survives; the secret must not.
	assert.Equal(t, cv.Lookup, newCV.Lookup)
	assert.NotEqual(t, cv.Secret, newCV.Secret)
	assert.Len(t, newCV.Secret, 32)

	// The new secret validates.
	_, err = svc.Validate(ctx, newCV.Lookup, newCV.Secret, newCV.UserUUID)
	require.NoError(t, err)

	// Single use: the pre-rotation secret is now a reuse signal.
	_, err = svc.Validate(ctx, cv.Lookup, cv.Secret, cv.UserUUID)
	var reuse authtoken.ReuseError
	assert.ErrorAs(t, err, &reuse)
}

func TestService_Rotate_RowGone(t *testing.T) {
	t.Parallel()

	rec := testUser()
	store := newMemStore(rec)
	svc := authtoken.NewService(store, time.Hour)

	_, _, err := svc.Rotate(context.Background(), rec.ID, "vanished-lookup", rec.UUID)
	assert.ErrorIs(t, err, authtoken.ErrTokenNotFound)
}

func TestService_RevokeOne(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	rec := testUser()
	store := newMemStore(rec)
	svc := authtoken.NewService(store, time.Hour)

	cv := issueAndParse(t, svc, rec)
	require.Equal(t, 1, store.count(rec.ID))

	require.NoError(t, svc.RevokeOne(ctx, rec.ID, cv.Lookup, cv.Secret))
	assert.Equal(t, 0, store.count(rec.ID))

	// Idempotent: revoking again is fine.
	assert.NoError(t, svc.RevokeOne(ctx, rec.ID, cv.Lookup, cv.Secret))
}

func TestService_RevokeAll(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	rec := testUser()
	other := user.Record{ID: 2, UUID: uuid.New(), Username: "bob"}
	store := newMemStore(rec, other)
	svc := authtoken.NewService(store, time.Hour)

	issueAndParse(t, svc, rec)
	issueAndParse(t, svc, rec)
	issueAndParse(t, svc, other)

	n, err := svc.RevokeAll(ctx, rec.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	assert.Equal(t, 0, store.count(rec.ID))
	assert.Equal(t, 1, store.count(other.ID), "other users' tokens must survive")
}
