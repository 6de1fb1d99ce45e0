package ratelimiter

import (
	"context"
	"fmt"
	"time"
)

// Config describes a token bucket: Capacity tokens maximum, refilled by
// RefillRate tokens every RefillInterval.
type Config struct {
	Capacity       int           `env:"RATE_LIMIT_CAPACITY" envDefault:"10"`
	RefillRate     int           `env:"RATE_LIMIT_REFILL_RATE" envDefault:"1"`
	RefillInterval time.Duration `env:"RATE_LIMIT_REFILL_INTERVAL" envDefault:"3s"`
}

// Validate checks the configuration for usable values.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be > 0, got %d", ErrInvalidConfig, c.Capacity)
	}
	if c.RefillRate <= 0 {
		return fmt.Errorf("%w: refill rate must be > 0, got %d", ErrInvalidConfig, c.RefillRate)
	}
	if c.RefillInterval <= 0 {
		return fmt.Errorf("%w: refill interval must be > 0, got %v", ErrInvalidConfig, c.RefillInterval)
	}
	return nil
}

// Store persists bucket state. Implementations must apply the token bucket
// algorithm atomically per key so that multiple service instances can share
// a distributed store safely.
type Store interface {
	// ConsumeTokens subtracts tokens from the bucket identified by key,
	// refilling it first according to config. The returned remaining count
	// is negative when the bucket is overdrawn.
	ConsumeTokens(ctx context.Context, key string, tokens int, config Config) (remaining int, resetAt time.Time, err error)

	// Reset drops all state for key, restoring a full bucket.
	Reset(ctx context.Context, key string) error
}

// Result reports the outcome of a consumption attempt.
type Result struct {
	// Limit is the bucket capacity.
	Limit int
	// Remaining is the number of tokens left; negative when denied.
	Remaining int
	// ResetAt is when the next refill lands.
	ResetAt time.Time
}

// Allowed reports whether the request was within the limit.
func (r Result) Allowed() bool {
	return r.Remaining >= 0
}

// RetryAfter returns how long the caller should wait before retrying.
// Zero when the request was allowed.
func (r Result) RetryAfter() time.Duration {
	if r.Allowed() {
		return 0
	}
	d := time.Until(r.ResetAt)
	if d < 0 {
		return 0
	}
	return d
}

// RateLimiter is the consumption contract exposed to callers.
type RateLimiter interface {
	// Allow consumes a single token for key.
	Allow(ctx context.Context, key string) (Result, error)
	// AllowN consumes n tokens for key.
	AllowN(ctx context.Context, key string, n int) (Result, error)
}

// Bucket implements RateLimiter using the token bucket algorithm over a
// pluggable Store.
type Bucket struct {
	store  Store
	config Config
}

// NewBucket creates a rate limiter with the given store and configuration.
func NewBucket(store Store, config Config) (*Bucket, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Bucket{store: store, config: config}, nil
}

// Allow consumes a single token for key.
func (b *Bucket) Allow(ctx context.Context, key string) (Result, error) {
	return b.AllowN(ctx, key, 1)
}

// AllowN consumes n tokens for key.
func (b *Bucket) AllowN(ctx context.Context, key string, n int) (Result, error) {
	if n <= 0 {
		return Result{}, fmt.Errorf("%w: %d", ErrInvalidTokenCount, n)
	}

	remaining, resetAt, err := b.store.ConsumeTokens(ctx, key, n, b.config)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Limit:     b.config.Capacity,
		Remaining: remaining,
		ResetAt:   resetAt,
	}, nil
}

// Reset restores a full bucket for key. Intended for administrative
// overrides and tests.
func (b *Bucket) Reset(ctx context.Context, key string) error {
	return b.store.Reset(ctx, key)
}
