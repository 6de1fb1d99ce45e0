package authguard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/s0hv/manga-tracker-auth/core/authtoken"
	"github.com/s0hv/manga-tracker-auth/core/logger"
	"github.com/s0hv/manga-tracker-auth/core/session"
	"github.com/s0hv/manga-tracker-auth/core/user"
	"github.com/s0hv/manga-tracker-auth/pkg/async"
	"github.com/s0hv/manga-tracker-auth/pkg/ratelimiter"
)

// TokenService is the remember-me token surface the guard drives.
type TokenService interface {
	Validate(ctx context.Context, lookup string, secret []byte, userUUID uuid.UUID) (user.Record, error)
	Rotate(ctx context.Context, userID int64, lookup string, userUUID uuid.UUID) (string, time.Time, error)
	RevokeAll(ctx context.Context, userID int64) (int64, error)
}

// SessionStore is the session surface the guard drives.
type SessionStore interface {
	Regenerate(ctx context.Context, oldID string, userID int64, data map[string]any) (session.Session, error)
	ClearUserSessions(ctx context.Context, userID int64) (int64, error)
}

// UserWarmer pre-populates the user record cache after validation, so the
// request that restored the session does not pay a second storage read.
type UserWarmer interface {
	Warm(rec user.Record)
}

// Request carries the per-request inputs for a restoration attempt.
type Request struct {
	// Cookie is the raw remember-me cookie value as received.
	Cookie string

	// SessionID is the current anonymous session id, empty if none.
	SessionID string

	// SessionData is carried into the regenerated session.
	SessionData map[string]any

	// RateKey keys the rate limiter, typically the client IP.
	RateKey string
}

// Outcome is the shared result of a restoration attempt. Concurrent
// requests presenting the same cookie all observe the identical Outcome.
type Outcome struct {
	Authenticated bool
	User          user.Record

	// Session is the regenerated session; zero unless Authenticated.
	Session session.Session

	// AuthCookie is the rotated cookie value to set; empty unless
	// Authenticated.
	AuthCookie    string
	AuthExpiresAt time.Time

	// ClearAuthCookie tells the caller to remove the presented cookie:
	// it was malformed, stale, foreign, or implicated in reuse.
	ClearAuthCookie bool
}

// Guard restores authenticated sessions from remember-me cookies while
// guaranteeing at most one validation+rotation per distinct cookie value,
// no matter how many requests present it concurrently. Without this, two
// parallel requests would race on rotation and one of them would end up
// holding a rotated-away secret that then trips reuse detection.
type Guard struct {
	tokens   TokenService
	sessions SessionStore
	users    UserWarmer
	limiter  ratelimiter.RateLimiter
	log      *slog.Logger

	mu       sync.Mutex
	inflight map[string]*async.Future[Outcome]
}

// Option configures a Guard.
type Option func(*Guard)

// WithLogger sets the logger for security-relevant events.
func WithLogger(log *slog.Logger) Option {
	return func(g *Guard) {
		g.log = log
	}
}

// New creates a guard over the given collaborators.
func New(tokens TokenService, sessions SessionStore, users UserWarmer, limiter ratelimiter.RateLimiter, opts ...Option) *Guard {
	g := &Guard{
		tokens:   tokens,
		sessions: sessions,
		users:    users,
		limiter:  limiter,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		inflight: make(map[string]*async.Future[Outcome]),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Restore attempts to turn a remember-me cookie into an authenticated
// session.
//
// A malformed cookie resolves locally with no storage or limiter access.
// Otherwise the raw cookie string is looked up in the in-flight registry:
// the first request performs rate limiting, validation, session
// regeneration, and token rotation; every concurrent request carrying the
// identical cookie awaits that same shared result. The registry entry is
// removed once the result resolves, so the rotated cookie starts a fresh
// cycle.
//
// Stale or foreign cookies are not errors: the outcome is anonymous with
// ClearAuthCookie set. Reuse detection revokes everything the owning user
// holds and likewise resolves anonymous. Rate-limit denials and storage
// failures resolve as errors for every waiter.
func (g *Guard) Restore(ctx context.Context, req Request) (Outcome, error) {
	cv, err := authtoken.ParseCookieValue(req.Cookie)
	if err != nil {
		return Outcome{ClearAuthCookie: true}, nil
	}

	g.mu.Lock()
	if fut, ok := g.inflight[req.Cookie]; ok {
		g.mu.Unlock()
		return fut.Await()
	}

	fut := async.Exec(ctx, func(ctx context.Context) (Outcome, error) {
		return g.resolve(ctx, cv, req)
	})
	g.inflight[req.Cookie] = fut
	g.mu.Unlock()

	out, err := fut.Await()

	g.mu.Lock()
	delete(g.inflight, req.Cookie)
	g.mu.Unlock()

	return out, err
}

func (g *Guard) resolve(ctx context.Context, cv authtoken.CookieValue, req Request) (Outcome, error) {
	res, err := g.limiter.Allow(ctx, req.RateKey)
	if err != nil {
		return Outcome{}, err
	}
	if !res.Allowed() {
		return Outcome{}, RateLimitError{RetryAfter: res.RetryAfter()}
	}

	rec, err := g.tokens.Validate(ctx, cv.Lookup, cv.Secret, cv.UserUUID)
	if err != nil {
		var reuse authtoken.ReuseError
		switch {
		case errors.Is(err, authtoken.ErrTokenNotFound):
			// Stale or foreign cookie, nothing to do beyond clearing it.
			return Outcome{ClearAuthCookie: true}, nil
		case errors.As(err, &reuse):
			return g.handleReuse(ctx, reuse, req)
		default:
			return Outcome{ClearAuthCookie: true}, err
		}
	}

	// Fixation guard: the pre-login session id must never become
	// authenticated. Regeneration failure aborts the whole attempt.
	sess, err := g.sessions.Regenerate(ctx, req.SessionID, rec.ID, req.SessionData)
	if err != nil {
		return Outcome{ClearAuthCookie: true}, err
	}

	g.users.Warm(rec)

	cookie, expiresAt, err := g.tokens.Rotate(ctx, rec.ID, cv.Lookup, cv.UserUUID)
	if err != nil {
		return Outcome{ClearAuthCookie: true}, err
	}

	return Outcome{
		Authenticated: true,
		User:          rec,
		Session:       sess,
		AuthCookie:    cookie,
		AuthExpiresAt: expiresAt,
	}, nil
}

// handleReuse is the security response to a replayed secret: revoke every
// token and session the owning user holds. The request itself continues
// anonymous; the client is not told that detection fired.
func (g *Guard) handleReuse(ctx context.Context, reuse authtoken.ReuseError, req Request) (Outcome, error) {
	g.log.WarnContext(ctx, "remember-me token reuse detected, revoking all user credentials",
		logger.Event("token_reuse"),
		logger.UserID(reuse.UserID),
		logger.ClientIP(req.RateKey),
	)

	if _, err := g.tokens.RevokeAll(ctx, reuse.UserID); err != nil {
		return Outcome{ClearAuthCookie: true}, err
	}
	if _, err := g.sessions.ClearUserSessions(ctx, reuse.UserID); err != nil {
		return Outcome{ClearAuthCookie: true}, err
	}

	return Outcome{ClearAuthCookie: true}, nil
}
