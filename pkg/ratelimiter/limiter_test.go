package ratelimiter_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0hv/manga-tracker-auth/pkg/ratelimiter"
)

func TestNewBucket_ValidatesConfig(t *testing.T) {
	t.Parallel()

	store := ratelimiter.NewMemoryStore()

	tests := []struct {
		name   string
		config ratelimiter.Config
	}{
		{"zero capacity", ratelimiter.Config{Capacity: 0, RefillRate: 1, RefillInterval: time.Second}},
		{"zero refill rate", ratelimiter.Config{Capacity: 1, RefillRate: 0, RefillInterval: time.Second}},
		{"zero refill interval", ratelimiter.Config{Capacity: 1, RefillRate: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ratelimiter.NewBucket(store, tt.config)
			assert.ErrorIs(t, err, ratelimiter.ErrInvalidConfig)
		})
	}
}

func TestBucket_Allow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	limiter, err := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(), ratelimiter.Config{
		Capacity:       2,
		RefillRate:     1,
		RefillInterval: time.Hour,
	})
	require.NoError(t, err)

	res, err := limiter.Allow(ctx, "ip:1")
	require.NoError(t, err)
	assert.True(t, res.Allowed())
	assert.Equal(t, 1, res.Remaining)
	assert.Equal(t, 2, res.Limit)
	assert.Zero(t, res.RetryAfter())

	res, err = limiter.Allow(ctx, "ip:1")
	require.NoError(t, err)
	assert.True(t, res.Allowed())

	res, err = limiter.Allow(ctx, "ip:1")
	require.NoError(t, err)
	assert.False(t, res.Allowed())
	assert.Positive(t, res.RetryAfter())

	// Separate keys have independent buckets.
	res, err = limiter.Allow(ctx, "ip:2")
	require.NoError(t, err)
	assert.True(t, res.Allowed())
}

func TestBucket_AllowN(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	limiter, err := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(), ratelimiter.Config{
		Capacity:       10,
		RefillRate:     1,
		RefillInterval: time.Hour,
	})
	require.NoError(t, err)

	res, err := limiter.AllowN(ctx, "batch", 7)
	require.NoError(t, err)
	assert.True(t, res.Allowed())
	assert.Equal(t, 3, res.Remaining)

	res, err = limiter.AllowN(ctx, "batch", 5)
	require.NoError(t, err)
	assert.False(t, res.Allowed())

	_, err = limiter.AllowN(ctx, "batch", 0)
	assert.ErrorIs(t, err, ratelimiter.ErrInvalidTokenCount)
}
