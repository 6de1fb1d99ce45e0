// Package user defines the denormalized user record consumed by
// authenticated requests and a small read-through cache over it.
//
// Every authenticated request needs the requesting user's username, role and
// UI preferences; hitting the users table for each one is wasteful. Cache
// keeps up to a configured number of records for a day, refreshing the TTL
// on every read, and falls back to the Store on a miss.
//
//	cache, err := user.NewCache(store, user.DefaultConfig())
//	rec, err := cache.Get(ctx, userID)
//
// Invalidate must be called after profile edits; Warm seeds the cache from a
// record obtained as a side effect of another query.
package user
