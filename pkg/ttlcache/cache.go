package ttlcache

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// entry wraps a cached value with its absolute expiration deadline.
type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache is a capacity-bounded LRU cache with per-entry TTL.
// Expired entries are treated as absent on read and removed lazily,
// so the cache never needs a background janitor goroutine.
type Cache[K comparable, V any] struct {
	mu           sync.Mutex
	lru          *lru.Cache[K, entry[V]]
	defaultTTL   time.Duration
	refreshOnGet bool
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	defaultTTL   time.Duration
	refreshOnGet bool
}

// WithDefaultTTL sets the TTL applied by Set. Entries stored via SetWithTTL
// are unaffected. Zero means entries stored via Set never expire.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(o *options) {
		o.defaultTTL = ttl
	}
}

// WithRefreshOnGet resets an entry's TTL to the default TTL on every
// successful Get ("touch on read" semantics).
func WithRefreshOnGet() Option {
	return func(o *options) {
		o.refreshOnGet = true
	}
}

// New creates a cache holding at most capacity entries.
// When capacity is exceeded the least recently used entry is evicted.
func New[K comparable, V any](capacity int, opts ...Option) (*Cache[K, V], error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	l, err := lru.New[K, entry[V]](capacity)
	if err != nil {
		return nil, err
	}

	return &Cache[K, V]{
		lru:          l,
		defaultTTL:   o.defaultTTL,
		refreshOnGet: o.refreshOnGet,
	}, nil
}

// Get returns the value for key if present and not expired.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lru.Get(key)
	if !ok {
		var zero V
		return zero, false
	}

	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		c.lru.Remove(key)
		var zero V
		return zero, false
	}

	if c.refreshOnGet && c.defaultTTL > 0 {
		e.expiresAt = time.Now().Add(c.defaultTTL)
		c.lru.Add(key, e)
	}

	return e.value, true
}

// Set stores value under key with the cache's default TTL.
func (c *Cache[K, V]) Set(key K, value V) {
	c.SetWithTTL(key, value, c.defaultTTL)
}

// SetWithTTL stores value under key, expiring after ttl.
// A non-positive ttl stores nothing: the entry would already be expired.
func (c *Cache[K, V]) SetWithTTL(key K, value V, ttl time.Duration) {
	var deadline time.Time
	if ttl > 0 {
		deadline = time.Now().Add(ttl)
	} else if ttl < 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(key, entry[V]{value: value, expiresAt: deadline})
}

// Delete removes key from the cache. Removing an absent key is a no-op.
func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Remove(key)
}

// DeleteFunc removes every live entry for which pred returns true
// and reports how many entries were removed.
func (c *Cache[K, V]) DeleteFunc(pred func(key K, value V) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for _, key := range c.lru.Keys() {
		e, ok := c.lru.Peek(key)
		if !ok {
			continue
		}
		if pred(key, e.value) {
			c.lru.Remove(key)
			removed++
		}
	}
	return removed
}

// Purge removes all entries.
func (c *Cache[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
}

// Len returns the number of entries currently held, including entries
// that have expired but have not yet been read.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}
