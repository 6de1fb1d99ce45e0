// Package middleware provides net/http middleware for the auth service:
// remember-me session restoration, request ids, and request logging.
//
// RememberMe is the outermost auth layer: it loads the current session from
// its signed cookie and, when the request carries a remember-me cookie but
// no authenticated session, drives the authguard pipeline and applies the
// resulting cookies to the response. Handlers read the results through
// SessionFromContext and UserFromContext.
package middleware
