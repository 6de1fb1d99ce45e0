// Package clientip extracts real client IP addresses from HTTP requests.
//
// Requests arriving through proxies, load balancers, or CDNs carry the
// originating address in a forwarding header rather than in RemoteAddr.
// GetIP checks headers in priority order (CF-Connecting-IP, DO-Connecting-IP,
// X-Forwarded-For, X-Real-IP), validates every candidate, and falls back to
// RemoteAddr when nothing usable is present.
//
//	key := clientip.GetIP(r)
//	result, err := limiter.Allow(r.Context(), key)
//
// All returned addresses are validated and normalized; malformed headers are
// skipped silently and the function never panics.
package clientip
