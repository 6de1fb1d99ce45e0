// Package authguard serializes remember-me cookie validation so that each
// distinct cookie value is validated and rotated at most once, however many
// requests present it concurrently.
//
// Remember-me tokens are single use: validation is followed by rotation,
// after which the presented secret is dead. A browser reopening with five
// tabs fires five parallel requests carrying the identical cookie; without
// coordination each would race to rotate, and the losers would hold
// rotated-away secrets that later trip reuse detection and revoke the
// user's every session. The guard keeps an in-flight registry keyed by the
// raw cookie string: the first request runs the pipeline, the rest await
// its shared result.
//
// The pipeline per cookie: rate limit (before any storage access),
// validate, regenerate the session under a fresh id, warm the user record
// cache, rotate the token. Stale and foreign cookies resolve anonymous
// with the cookie cleared; reuse detection additionally revokes all of the
// owning user's tokens and sessions; storage failures and rate-limit
// denials resolve as errors for every waiter.
//
//	guard := authguard.New(tokens, sessions, userCache, limiter,
//		authguard.WithLogger(log))
//
//	out, err := guard.Restore(ctx, authguard.Request{
//		Cookie:      rawCookie,
//		SessionID:   anonSessionID,
//		SessionData: sess.Data,
//		RateKey:     clientIP,
//	})
package authguard
