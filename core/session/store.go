package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/s0hv/manga-tracker-auth/core/logger"
	"github.com/s0hv/manga-tracker-auth/pkg/ttlcache"
)

// touchPruneThreshold bounds the coalescing map: once it grows past this
// many entries, stale ones are swept during Touch.
const touchPruneThreshold = 1024

// Storage persists sessions. Implementations must be safe for concurrent
// use and for multiple service instances sharing the same tables: every
// mutation is a single conditional statement, never a read-then-write.
type Storage interface {
	Get(ctx context.Context, id string) (Session, error)
	Upsert(ctx context.Context, sess Session) error
	Delete(ctx context.Context, id string) error
	UpdateExpiry(ctx context.Context, id string, expiresAt time.Time) error
	DeleteByUser(ctx context.Context, userID int64) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) ([]map[string]any, error)
}

// Store is a hybrid session store: durable rows fronted by a TTL-LRU cache
// that bounds database reads. The cache is never a source of truth; it is
// safe to discard at any time.
type Store struct {
	storage       Storage
	cache         *ttlcache.Cache[string, Session]
	onExpire      func(data map[string]any)
	ttl           time.Duration
	touchWindow   time.Duration
	sweepInterval time.Duration
	log           *slog.Logger

	mu      sync.Mutex
	touched map[string]time.Time
}

// StoreOption configures a Store.
type StoreOption func(*storeOptions)

type storeOptions struct {
	ttl           time.Duration
	cacheCapacity int
	touchWindow   time.Duration
	sweepInterval time.Duration
	onExpire      func(data map[string]any)
	log           *slog.Logger
}

// WithTTL sets the session lifetime applied by Set, Touch, and Regenerate.
func WithTTL(ttl time.Duration) StoreOption {
	return func(o *storeOptions) {
		o.ttl = ttl
	}
}

// WithCacheCapacity bounds the number of sessions held in memory.
func WithCacheCapacity(capacity int) StoreOption {
	return func(o *storeOptions) {
		o.cacheCapacity = capacity
	}
}

// WithTouchWindow sets the coalescing window for Touch. Successive touches
// for the same session id within the window collapse into one storage write.
func WithTouchWindow(window time.Duration) StoreOption {
	return func(o *storeOptions) {
		o.touchWindow = window
	}
}

// WithSweepInterval enables the periodic expiry sweep run by Run.
// Non-positive leaves sweeping disabled.
func WithSweepInterval(interval time.Duration) StoreOption {
	return func(o *storeOptions) {
		o.sweepInterval = interval
	}
}

// WithOnExpire registers the sink notified when sessions end: once per
// Destroy with that session's data, and once per sweep with the merged
// data of every row the sweep removed.
func WithOnExpire(fn func(data map[string]any)) StoreOption {
	return func(o *storeOptions) {
		o.onExpire = fn
	}
}

// WithLogger sets the logger used by the background sweeper.
func WithLogger(log *slog.Logger) StoreOption {
	return func(o *storeOptions) {
		o.log = log
	}
}

// NewStore creates a session store backed by storage.
func NewStore(storage Storage, opts ...StoreOption) (*Store, error) {
	o := storeOptions{
		ttl:           2 * time.Hour,
		cacheCapacity: 50,
		touchWindow:   2 * time.Second,
		log:           slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}

	cache, err := ttlcache.New[string, Session](o.cacheCapacity)
	if err != nil {
		return nil, err
	}

	return &Store{
		storage:       storage,
		cache:         cache,
		onExpire:      o.onExpire,
		ttl:           o.ttl,
		touchWindow:   o.touchWindow,
		sweepInterval: o.sweepInterval,
		log:           o.log,
		touched:       make(map[string]time.Time),
	}, nil
}

// Get returns the live session for id, consulting the cache first.
// On a cache miss the row is loaded and the cache warmed with the row's
// remaining lifetime, so the cached copy expires at the same wall-clock
// moment as the row itself. Expired sessions report ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (Session, error) {
	if sess, ok := s.cache.Get(id); ok {
		if sess.IsExpired() {
			s.cache.Delete(id)
			return Session{}, ErrNotFound
		}
		return sess, nil
	}

	sess, err := s.storage.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Session{}, ErrNotFound
		}
		return Session{}, errors.Join(ErrStorage, err)
	}
	if sess.IsExpired() {
		return Session{}, ErrNotFound
	}

	s.cache.SetWithTTL(id, sess, time.Until(sess.ExpiresAt))
	return sess, nil
}

// Set writes the session through to both storage and cache. A zero
// ExpiresAt gets the configured lifetime from now.
func (s *Store) Set(ctx context.Context, sess Session) error {
	if sess.ExpiresAt.IsZero() {
		sess.ExpiresAt = time.Now().Add(s.ttl)
	}

	if err := s.storage.Upsert(ctx, sess); err != nil {
		return errors.Join(ErrStorage, err)
	}
	s.cache.SetWithTTL(sess.ID, sess, time.Until(sess.ExpiresAt))
	return nil
}

// Destroy removes the session and notifies the expiry sink with whatever
// data the session had accumulated. The notification fires at most once
// and fires even when the storage delete fails afterwards. Destroying an
// absent session is a no-op.
func (s *Store) Destroy(ctx context.Context, id string) error {
	sess, cached := s.cache.Get(id)
	s.cache.Delete(id)
	s.forgetTouch(id)

	if !cached {
		var err error
		sess, err = s.storage.Get(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil
			}
			return errors.Join(ErrStorage, err)
		}
	}

	if s.onExpire != nil {
		s.onExpire(sess.Data)
	}

	if err := s.storage.Delete(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
		return errors.Join(ErrStorage, err)
	}
	return nil
}

// Touch refreshes the session's expiry in storage only; the cached copy is
// left to expire naturally. Touches for the same id inside the coalescing
// window collapse: the first performs the write, the rest succeed without
// touching storage.
func (s *Store) Touch(ctx context.Context, id string) error {
	now := time.Now()

	s.mu.Lock()
	if last, ok := s.touched[id]; ok && now.Sub(last) < s.touchWindow {
		s.mu.Unlock()
		return nil
	}
	s.touched[id] = now
	if len(s.touched) > touchPruneThreshold {
		for k, t := range s.touched {
			if now.Sub(t) >= s.touchWindow {
				delete(s.touched, k)
			}
		}
	}
	s.mu.Unlock()

	err := s.storage.UpdateExpiry(ctx, id, now.Add(s.ttl))
	if err != nil && !errors.Is(err, ErrNotFound) {
		// Allow a retry to write again instead of being swallowed
		// by the window.
		s.forgetTouch(id)
		return errors.Join(ErrStorage, err)
	}
	return nil
}

// ClearUserSessions evicts every cached session belonging to the user and
// deletes all their rows. Used for "sign out everywhere", password changes,
// and the token-reuse security response.
func (s *Store) ClearUserSessions(ctx context.Context, userID int64) (int64, error) {
	s.cache.DeleteFunc(func(_ string, sess Session) bool {
		return sess.UserID != nil && *sess.UserID == userID
	})

	n, err := s.storage.DeleteByUser(ctx, userID)
	if err != nil {
		return 0, errors.Join(ErrStorage, err)
	}
	return n, nil
}

// Regenerate issues the session a fresh identity: a new id is written with
// the given user and data, then the old row is removed. Used on login and
// on remember-me restoration so an attacker-known session id never becomes
// authenticated. Any failure is fatal to the attempt; the caller must not
// proceed as authenticated.
func (s *Store) Regenerate(ctx context.Context, oldID string, userID int64, data map[string]any) (Session, error) {
	id, err := newSessionID()
	if err != nil {
		return Session{}, err
	}

	sess := Session{
		ID:        id,
		UserID:    &userID,
		Data:      data,
		ExpiresAt: time.Now().Add(s.ttl),
	}
	if err := s.storage.Upsert(ctx, sess); err != nil {
		return Session{}, errors.Join(ErrStorage, err)
	}

	s.cache.Delete(oldID)
	s.forgetTouch(oldID)
	if oldID != "" {
		if err := s.storage.Delete(ctx, oldID); err != nil && !errors.Is(err, ErrNotFound) {
			return Session{}, errors.Join(ErrStorage, err)
		}
	}

	s.cache.SetWithTTL(id, sess, time.Until(sess.ExpiresAt))
	return sess, nil
}

// SweepExpired deletes every row past its expiry, merges their accumulated
// data additively, and forwards the merged result to the expiry sink once
// per sweep. Returns the number of rows removed.
func (s *Store) SweepExpired(ctx context.Context) (int, error) {
	payloads, err := s.storage.DeleteExpired(ctx, time.Now())
	if err != nil {
		return 0, errors.Join(ErrStorage, err)
	}

	if len(payloads) > 0 && s.onExpire != nil {
		if merged := mergeExpiredData(payloads); len(merged) > 0 {
			s.onExpire(merged)
		}
	}
	return len(payloads), nil
}

// Run returns an errgroup-compatible loop sweeping expired sessions at the
// configured interval. When sweeping is disabled the loop exits immediately.
// Sweep failures are logged and do not stop the loop.
func (s *Store) Run(ctx context.Context) func() error {
	return func() error {
		if s.sweepInterval <= 0 {
			return nil
		}

		ticker := time.NewTicker(s.sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				n, err := s.SweepExpired(ctx)
				if err != nil {
					s.log.ErrorContext(ctx, "session sweep failed", logger.Error(err))
					continue
				}
				if n > 0 {
					s.log.InfoContext(ctx, "swept expired sessions", logger.Count("sessions", n))
				}
			}
		}
	}
}

func (s *Store) forgetTouch(id string) {
	s.mu.Lock()
	delete(s.touched, id)
	s.mu.Unlock()
}

// mergeExpiredData folds the data payloads of expired sessions into one map
// by summing numeric values per key. Non-numeric values are dropped; the
// analytics sink only consumes counters.
func mergeExpiredData(payloads []map[string]any) map[string]any {
	merged := make(map[string]any)
	for _, data := range payloads {
		for key, value := range data {
			n, ok := toFloat(value)
			if !ok {
				continue
			}
			if cur, ok := merged[key].(float64); ok {
				merged[key] = cur + n
			} else {
				merged[key] = n
			}
		}
	}
	return merged
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
