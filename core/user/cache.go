package user

import (
	"context"
	"errors"
	"time"

	"github.com/s0hv/manga-tracker-auth/pkg/ttlcache"
)

// ErrNotFound is returned when a user record does not exist.
var ErrNotFound = errors.New("user not found")

// Config holds user cache configuration.
type Config struct {
	// Capacity bounds the number of cached records.
	Capacity int `env:"USER_CACHE_CAPACITY" envDefault:"50"`
	// TTL is how long a record stays cached. Each read refreshes it.
	TTL time.Duration `env:"USER_CACHE_TTL" envDefault:"24h"`
}

// DefaultConfig returns the default user cache configuration.
func DefaultConfig() Config {
	return Config{Capacity: 50, TTL: 24 * time.Hour}
}

// Cache is a read-through TTL-LRU cache of user records. It is purely an
// optimization over Store: losing it costs a storage round trip, never data.
type Cache struct {
	store Store
	cache *ttlcache.Cache[int64, Record]
}

// NewCache creates a user record cache in front of store.
func NewCache(store Store, cfg Config) (*Cache, error) {
	c, err := ttlcache.New[int64, Record](cfg.Capacity,
		ttlcache.WithDefaultTTL(cfg.TTL),
		ttlcache.WithRefreshOnGet(),
	)
	if err != nil {
		return nil, err
	}
	return &Cache{store: store, cache: c}, nil
}

// Get returns the user record, serving from cache when possible and loading
// from storage on a miss.
func (c *Cache) Get(ctx context.Context, id int64) (Record, error) {
	if rec, ok := c.cache.Get(id); ok {
		return rec, nil
	}

	rec, err := c.store.GetByID(ctx, id)
	if err != nil {
		return Record{}, err
	}

	c.cache.Set(rec.ID, rec)
	return rec, nil
}

// Warm inserts a record obtained elsewhere (e.g. from a token validation
// join) so the next Get avoids a storage round trip.
func (c *Cache) Warm(rec Record) {
	c.cache.Set(rec.ID, rec)
}

// Invalidate drops the cached record for id. The next Get reloads from
// storage, so profile edits become visible immediately.
func (c *Cache) Invalidate(id int64) {
	c.cache.Delete(id)
}

// ClearAll drops every cached record.
func (c *Cache) ClearAll() {
	c.cache.Purge()
}
