// Package session provides durable session state with an in-memory
// read-through cache bounding database load.
//
// Sessions live in PostgreSQL as the sole source of truth; the cache is a
// capacity-bounded TTL-LRU whose entries expire at the same wall-clock
// moment as the underlying rows, so a warmed entry can never outlive its
// row. The cache is safe to discard at any time and multiple service
// instances may share the same tables.
//
// # Basic Usage
//
//	storage := session.NewPGStorage(pool)
//	store, err := session.NewStore(storage,
//		session.WithTTL(2*time.Hour),
//		session.WithTouchWindow(2*time.Second),
//		session.WithOnExpire(analytics.FlushSessionCounts),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err := store.Get(ctx, sessionID)
//	switch {
//	case errors.Is(err, session.ErrNotFound):
//		// anonymous request
//	case err != nil:
//		// storage failure, fail the request
//	}
//
// # Write Coalescing
//
// Touch refreshes a session's expiry but deduplicates writes per session id
// within a short window, so request bursts cost one UPDATE instead of one
// per request:
//
//	_ = store.Touch(ctx, sess.ID)
//
// # Expiry Sweep
//
// SweepExpired removes rows past their expiry and forwards their merged
// data payloads to the configured sink once per sweep. Run returns an
// errgroup-compatible loop doing this periodically:
//
//	g.Go(store.Run(ctx))
//
// # Session Fixation
//
// Regenerate gives a session a fresh id atomically on login or remember-me
// restoration. Its failure must abort the authentication attempt; an
// authenticated response is never issued against a pre-login session id.
package session
