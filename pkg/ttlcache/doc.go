// Package ttlcache provides a small capacity-bounded LRU cache with per-entry
// expiration, built on hashicorp/golang-lru.
//
// It exists because the caches in this module need two properties at once:
// a hard capacity limit (LRU eviction) and wall-clock expiry that can differ
// per entry, so a cache warmed from a persistent row expires at the same
// moment as the row itself.
//
// Usage:
//
//	cache, err := ttlcache.New[string, Session](50)
//	if err != nil {
//		return err
//	}
//
//	// Entry TTL derived from the backing row, not a fixed duration.
//	cache.SetWithTTL(sess.ID, sess, time.Until(sess.ExpiresAt))
//
//	if sess, ok := cache.Get(id); ok {
//		// cache hit, still within TTL
//	}
//
// All methods are safe for concurrent use. The cache is purely an
// optimization: discarding it loses no data.
package ttlcache
