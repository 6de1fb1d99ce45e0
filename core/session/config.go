package session

import "time"

// Config holds session store configuration.
type Config struct {
	// TTL is the session lifetime, refreshed on every coalesced touch.
	TTL time.Duration `env:"SESSION_TTL" envDefault:"2h"`

	// CacheCapacity bounds the in-memory session cache.
	CacheCapacity int `env:"SESSION_CACHE_CAPACITY" envDefault:"50"`

	// TouchWindow is the coalescing window for expiry-refresh writes.
	TouchWindow time.Duration `env:"SESSION_TOUCH_WINDOW" envDefault:"2s"`

	// SweepInterval controls the periodic expiry sweep. Zero disables it.
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"0"`
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{
		TTL:           2 * time.Hour,
		CacheCapacity: 50,
		TouchWindow:   2 * time.Second,
	}
}

// NewStoreFromConfig creates a session store from configuration.
// Additional options override the configured values.
func NewStoreFromConfig(cfg Config, storage Storage, opts ...StoreOption) (*Store, error) {
	base := []StoreOption{
		WithTTL(cfg.TTL),
		WithCacheCapacity(cfg.CacheCapacity),
		WithTouchWindow(cfg.TouchWindow),
		WithSweepInterval(cfg.SweepInterval),
	}
	return NewStore(storage, append(base, opts...)...)
}
