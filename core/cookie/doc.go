// Package cookie provides HTTP cookie management with HMAC-SHA256 signing
// and key rotation support.
//
// A Manager carries default attributes (path, HttpOnly, SameSite) applied to
// every cookie it writes; individual calls can override them with options.
//
//	manager, err := cookie.New([]string{secret},
//		cookie.WithSecure(true),
//	)
//	if err != nil {
//		return err
//	}
//
//	// Signed round trip: tampering fails verification.
//	err = manager.SetSigned(w, "remember_me", tokenValue,
//		cookie.WithMaxAge(30*24*60*60),
//	)
//	value, err := manager.GetSigned(r, "remember_me")
//
// Multiple secrets enable rotation: the first secret signs new cookies while
// older secrets keep verifying cookies issued before the rotation.
package cookie
