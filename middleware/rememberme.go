package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/s0hv/manga-tracker-auth/core/authguard"
	"github.com/s0hv/manga-tracker-auth/core/cookie"
	"github.com/s0hv/manga-tracker-auth/core/logger"
	"github.com/s0hv/manga-tracker-auth/core/session"
	"github.com/s0hv/manga-tracker-auth/core/user"
	"github.com/s0hv/manga-tracker-auth/pkg/clientip"
)

// Default cookie names, overridable via RememberMeConfig.
const (
	DefaultSessionCookieName = "sess"
	DefaultAuthCookieName    = "auth"
)

type sessionCtxKey struct{}
type userCtxKey struct{}

// SessionFromContext returns the session attached by the middleware.
func SessionFromContext(ctx context.Context) (session.Session, bool) {
	sess, ok := ctx.Value(sessionCtxKey{}).(session.Session)
	return sess, ok
}

// UserFromContext returns the user restored by the middleware, if the
// request ended up authenticated.
func UserFromContext(ctx context.Context) (user.Record, bool) {
	rec, ok := ctx.Value(userCtxKey{}).(user.Record)
	return rec, ok
}

// SessionReader is the session lookup the middleware needs.
type SessionReader interface {
	Get(ctx context.Context, id string) (session.Session, error)
}

// Restorer turns a remember-me cookie into an authenticated session.
type Restorer interface {
	Restore(ctx context.Context, req authguard.Request) (authguard.Outcome, error)
}

// RememberMeConfig configures the remember-me middleware.
type RememberMeConfig struct {
	Cookies  *cookie.Manager
	Sessions SessionReader
	Guard    Restorer

	// SessionCookieName defaults to DefaultSessionCookieName.
	SessionCookieName string

	// AuthCookieName defaults to DefaultAuthCookieName.
	AuthCookieName string

	// Logger defaults to a discard logger.
	Logger *slog.Logger
}

// RememberMe restores authenticated sessions from remember-me cookies.
//
// Requests carrying a live authenticated session pass straight through.
// Otherwise, if a remember-me cookie is present, the guard validates and
// rotates it; on success the response receives the new session cookie and
// the rotated auth cookie, and the user record lands in the request
// context. Stale, foreign, and malformed cookies degrade silently to
// logged-out with the cookie cleared. Rate-limit denials answer 429 with
// Retry-After; storage failures answer 500.
func RememberMe(cfg RememberMeConfig) func(http.Handler) http.Handler {
	sessionName := cfg.SessionCookieName
	if sessionName == "" {
		sessionName = DefaultSessionCookieName
	}
	authName := cfg.AuthCookieName
	if authName == "" {
		authName = DefaultAuthCookieName
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			var (
				sess     session.Session
				haveSess bool
			)
			if id, err := cfg.Cookies.GetSigned(r, sessionName); err == nil {
				if s, err := cfg.Sessions.Get(ctx, id); err == nil {
					sess, haveSess = s, true
				} else if !errors.Is(err, session.ErrNotFound) {
					log.ErrorContext(ctx, "session lookup failed", logger.Error(err))
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
					return
				}
			}

			if haveSess && sess.IsAuthenticated() {
				ctx = context.WithValue(ctx, sessionCtxKey{}, sess)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			raw, err := cfg.Cookies.GetSigned(r, authName)
			if err != nil {
				if !errors.Is(err, cookie.ErrCookieNotFound) {
					// Tampered or corrupted cookie, drop it.
					cfg.Cookies.Delete(w, authName)
				}
				if haveSess {
					ctx = context.WithValue(ctx, sessionCtxKey{}, sess)
				}
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			out, err := cfg.Guard.Restore(ctx, authguard.Request{
				Cookie:      raw,
				SessionID:   sess.ID,
				SessionData: sess.Data,
				RateKey:     clientip.GetIP(r),
			})
			if err != nil {
				var limited authguard.RateLimitError
				if errors.As(err, &limited) {
					w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(limited.RetryAfter)))
					http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
					return
				}
				log.ErrorContext(ctx, "session restoration failed", logger.Error(err), logger.ClientIP(clientip.GetIP(r)))
				cfg.Cookies.Delete(w, authName)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}

			if out.ClearAuthCookie {
				cfg.Cookies.Delete(w, authName)
			}

			if out.Authenticated {
				if err := cfg.Cookies.SetSigned(w, sessionName, out.Session.ID,
					cookie.WithMaxAge(maxAgeSeconds(out.Session.ExpiresAt)),
				); err != nil {
					log.ErrorContext(ctx, "failed to set session cookie", logger.Error(err))
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
					return
				}
				if err := cfg.Cookies.SetSigned(w, authName, out.AuthCookie,
					cookie.WithMaxAge(maxAgeSeconds(out.AuthExpiresAt)),
				); err != nil {
					log.ErrorContext(ctx, "failed to set auth cookie", logger.Error(err))
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
					return
				}
				ctx = context.WithValue(ctx, sessionCtxKey{}, out.Session)
				ctx = context.WithValue(ctx, userCtxKey{}, out.User)
			} else if haveSess {
				ctx = context.WithValue(ctx, sessionCtxKey{}, sess)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func maxAgeSeconds(expiresAt time.Time) int {
	secs := int(math.Ceil(time.Until(expiresAt).Seconds()))
	if secs < 0 {
		return 0
	}
	return secs
}

func retryAfterSeconds(d time.Duration) int {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}
