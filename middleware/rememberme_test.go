package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0hv/manga-tracker-auth/core/authguard"
	"github.com/s0hv/manga-tracker-auth/core/cookie"
	"github.com/s0hv/manga-tracker-auth/core/session"
	"github.com/s0hv/manga-tracker-auth/core/user"
	"github.com/s0hv/manga-tracker-auth/middleware"
)

type fakeSessionReader struct {
	mu       sync.Mutex
	sessions map[string]session.Session
	err      error
}

func (f *fakeSessionReader) Get(ctx context.Context, id string) (session.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return session.Session{}, f.err
	}
	sess, ok := f.sessions[id]
	if !ok {
		return session.Session{}, session.ErrNotFound
	}
	return sess, nil
}

type fakeRestorer struct {
	mu      sync.Mutex
	calls   int
	lastReq authguard.Request
	out     authguard.Outcome
	err     error
}

func (f *fakeRestorer) Restore(ctx context.Context, req authguard.Request) (authguard.Outcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastReq = req
	return f.out, f.err
}

func newManager(t *testing.T) *cookie.Manager {
	t.Helper()
	m, err := cookie.New([]string{"0123456789abcdef0123456789abcdef"})
	require.NoError(t, err)
	return m
}

// signedCookie produces a request cookie carrying value signed by m.
func signedCookie(t *testing.T, m *cookie.Manager, name, value string) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, m.SetSigned(rec, name, value))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func responseCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

type capture struct {
	called  bool
	sess    session.Session
	hasSess bool
	user    user.Record
	hasUser bool
}

func captureHandler(c *capture) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.called = true
		c.sess, c.hasSess = middleware.SessionFromContext(r.Context())
		c.user, c.hasUser = middleware.UserFromContext(r.Context())
	})
}

func TestRememberMe_LiveSessionPassesThrough(t *testing.T) {
	t.Parallel()

	m := newManager(t)
	uid := int64(7)
	sessions := &fakeSessionReader{sessions: map[string]session.Session{
		"live-1": {ID: "live-1", UserID: &uid, ExpiresAt: time.Now().Add(time.Hour)},
	}}
	guard := &fakeRestorer{}

	var c capture
	h := middleware.RememberMe(middleware.RememberMeConfig{
		Cookies: m, Sessions: sessions, Guard: guard,
	})(captureHandler(&c))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(signedCookie(t, m, middleware.DefaultSessionCookieName, "live-1"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.True(t, c.called)
	require.True(t, c.hasSess)
	assert.Equal(t, "live-1", c.sess.ID)
	assert.Zero(t, guard.calls, "authenticated sessions never hit the guard")
}

func TestRememberMe_NoCookies(t *testing.T) {
	t.Parallel()

	m := newManager(t)
	guard := &fakeRestorer{}

	var c capture
	h := middleware.RememberMe(middleware.RememberMeConfig{
		Cookies: m, Sessions: &fakeSessionReader{}, Guard: guard,
	})(captureHandler(&c))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.True(t, c.called)
	assert.False(t, c.hasSess)
	assert.False(t, c.hasUser)
	assert.Zero(t, guard.calls)
}

func TestRememberMe_RestoresSession(t *testing.T) {
	t.Parallel()

	m := newManager(t)
	uid := int64(7)
	guard := &fakeRestorer{out: authguard.Outcome{
		Authenticated: true,
		User:          user.Record{ID: 7, Username: "alice"},
		Session:       session.Session{ID: "regen-1", UserID: &uid, ExpiresAt: time.Now().Add(2 * time.Hour)},
		AuthCookie:    "lookup;rotated;uuid",
		AuthExpiresAt: time.Now().Add(30 * 24 * time.Hour),
	}}

	var c capture
	h := middleware.RememberMe(middleware.RememberMeConfig{
		Cookies: m, Sessions: &fakeSessionReader{}, Guard: guard,
	})(captureHandler(&c))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(signedCookie(t, m, middleware.DefaultAuthCookieName, "lookup;secret;uuid"))
	req.Header.Set("X-Real-IP", "203.0.113.9")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.True(t, c.called)
	require.True(t, c.hasUser)
	assert.Equal(t, "alice", c.user.Username)
	require.True(t, c.hasSess)
	assert.Equal(t, "regen-1", c.sess.ID)

	// The guard received the unwrapped cookie and the client IP.
	assert.Equal(t, 1, guard.calls)
	assert.Equal(t, "lookup;secret;uuid", guard.lastReq.Cookie)
	assert.Equal(t, "203.0.113.9", guard.lastReq.RateKey)

	// Both cookies land on the response.
	sessCookie := responseCookie(t, rec, middleware.DefaultSessionCookieName)
	require.NotNil(t, sessCookie)
	assert.Positive(t, sessCookie.MaxAge)

	authCookie := responseCookie(t, rec, middleware.DefaultAuthCookieName)
	require.NotNil(t, authCookie)
	assert.Positive(t, authCookie.MaxAge)
	assert.NotEqual(t, "lookup;secret;uuid", authCookie.Value)
}

func TestRememberMe_StaleCookieCleared(t *testing.T) {
	t.Parallel()

	m := newManager(t)
	guard := &fakeRestorer{out: authguard.Outcome{ClearAuthCookie: true}}

	var c capture
	h := middleware.RememberMe(middleware.RememberMeConfig{
		Cookies: m, Sessions: &fakeSessionReader{}, Guard: guard,
	})(captureHandler(&c))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(signedCookie(t, m, middleware.DefaultAuthCookieName, "stale;stale;stale"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.True(t, c.called, "a stale cookie is not an error")
	assert.False(t, c.hasUser)

	cleared := responseCookie(t, rec, middleware.DefaultAuthCookieName)
	require.NotNil(t, cleared)
	assert.Less(t, cleared.MaxAge, 0)
}

func TestRememberMe_TamperedCookieSkipsGuard(t *testing.T) {
	t.Parallel()

	m := newManager(t)
	guard := &fakeRestorer{}

	var c capture
	h := middleware.RememberMe(middleware.RememberMeConfig{
		Cookies: m, Sessions: &fakeSessionReader{}, Guard: guard,
	})(captureHandler(&c))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: middleware.DefaultAuthCookieName, Value: "forged-value"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.True(t, c.called)
	assert.Zero(t, guard.calls)

	cleared := responseCookie(t, rec, middleware.DefaultAuthCookieName)
	require.NotNil(t, cleared)
	assert.Less(t, cleared.MaxAge, 0)
}

func TestRememberMe_RateLimited(t *testing.T) {
	t.Parallel()

	m := newManager(t)
	guard := &fakeRestorer{err: authguard.RateLimitError{RetryAfter: 42 * time.Second}}

	var c capture
	h := middleware.RememberMe(middleware.RememberMeConfig{
		Cookies: m, Sessions: &fakeSessionReader{}, Guard: guard,
	})(captureHandler(&c))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(signedCookie(t, m, middleware.DefaultAuthCookieName, "a;b;c"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.False(t, c.called)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "42", rec.Header().Get("Retry-After"))
}

func TestRememberMe_StorageErrorFailsRequest(t *testing.T) {
	t.Parallel()

	m := newManager(t)
	guard := &fakeRestorer{err: errors.New("database is down")}

	var c capture
	h := middleware.RememberMe(middleware.RememberMeConfig{
		Cookies: m, Sessions: &fakeSessionReader{}, Guard: guard,
	})(captureHandler(&c))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(signedCookie(t, m, middleware.DefaultAuthCookieName, "a;b;c"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.False(t, c.called, "storage outages must not be masked as logged-out")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "database", "internals must not leak")
}
