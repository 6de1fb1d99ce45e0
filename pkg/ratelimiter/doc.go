// Package ratelimiter provides token bucket rate limiting with pluggable
// storage backends.
//
// A bucket holds up to Capacity tokens and gains RefillRate tokens every
// RefillInterval. Each request consumes tokens; a request that would
// overdraw the bucket is denied with a retry-after hint derived from the
// next refill. The algorithm allows short bursts while bounding the
// sustained rate.
//
//	store := ratelimiter.NewMemoryStore()
//	limiter, err := ratelimiter.NewBucket(store, ratelimiter.Config{
//		Capacity:       10,
//		RefillRate:     1,
//		RefillInterval: 3 * time.Second,
//	})
//	if err != nil {
//		return err
//	}
//
//	result, err := limiter.Allow(ctx, clientIP)
//	if err != nil {
//		return err
//	}
//	if !result.Allowed() {
//		// deny, tell the client to retry after result.RetryAfter()
//	}
//
// Two stores ship with the package: MemoryStore for single-instance
// deployments (with optional background cleanup of stale buckets via Run)
// and RedisStore, which evaluates the bucket atomically in a Lua script so
// multiple instances can share limits.
package ratelimiter
