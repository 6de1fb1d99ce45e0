// Package authtoken manages long-lived "remember me" tokens: single-use
// credentials that re-establish a session without a password.
//
// # Credential shape
//
// A credential is a pair: a non-secret random lookup (the storage index) and
// a random secret whose SHA-256 hash is the only thing persisted. The cookie
// carries the triple
//
//	{lookup};{base64(secret)};{base64(user uuid)}
//
// scoped by the user's UUID so token rows can never be matched across users.
//
// # Single use and rotation
//
// Every successful validation must be followed by Rotate, which swaps in a
// fresh secret under the same lookup. A captured copy of an older cookie
// therefore fails on its next use — and because the lookup still matches a
// live row, that failure is distinguishable from a merely unknown token.
// Validate surfaces it as ReuseError, the signal for the caller to revoke
// every token and session the user holds.
//
// # Usage
//
//	svc := authtoken.NewService(store, 30*24*time.Hour)
//
//	value, err := svc.Issue(ctx, userID, userUUID)           // login
//	rec, err := svc.Validate(ctx, cv.Lookup, cv.Secret, cv.UserUUID)
//	value, expiresAt, err := svc.Rotate(ctx, rec.ID, cv.Lookup, cv.UserUUID)
//
// Rotation and revocation are expressed as single conditional statements in
// the Store, so multiple service instances can share the table safely.
package authtoken
