package health

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/s0hv/manga-tracker-auth/core/logger"
)

// Liveness reports that the process is running. No dependency checks.
func Liveness() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "ALIVE")
	}
}

// Readiness verifies every dependency check passes, answering 503 when any
// fails. Checks come from the integrations, e.g. pg.Healthcheck(pool) and
// redis.Healthcheck(client).
func Readiness(log *slog.Logger, checks ...func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, check := range checks {
			if err := check(r.Context()); err != nil {
				log.ErrorContext(r.Context(), "readiness check failed", logger.Error(err))
				http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "READY")
	}
}
