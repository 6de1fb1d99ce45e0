package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/s0hv/manga-tracker-auth/core/authguard"
	"github.com/s0hv/manga-tracker-auth/core/authtoken"
	"github.com/s0hv/manga-tracker-auth/core/config"
	"github.com/s0hv/manga-tracker-auth/core/cookie"
	"github.com/s0hv/manga-tracker-auth/core/health"
	"github.com/s0hv/manga-tracker-auth/core/logger"
	"github.com/s0hv/manga-tracker-auth/core/session"
	"github.com/s0hv/manga-tracker-auth/core/user"
	"github.com/s0hv/manga-tracker-auth/integration/database/pg"
	"github.com/s0hv/manga-tracker-auth/integration/database/redis"
	"github.com/s0hv/manga-tracker-auth/middleware"
	"github.com/s0hv/manga-tracker-auth/pkg/ratelimiter"
)

type appConfig struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	LogJSON         bool          `env:"LOG_JSON" envDefault:"true"`
	LogLevel        slog.Level    `env:"LOG_LEVEL" envDefault:"info"`
}

func main() {
	if err := run(); err != nil {
		slog.Error("authd exited", logger.Error(err))
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var appCfg appConfig
	config.MustLoad(&appCfg)

	logOpts := []logger.Option{logger.WithLevel(appCfg.LogLevel)}
	if appCfg.LogJSON {
		logOpts = append(logOpts, logger.WithJSON())
	}
	log := logger.New(logOpts...)

	var pgCfg pg.Config
	config.MustLoad(&pgCfg)
	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil && !errors.Is(err, pg.ErrMigrationsDirNotFound) {
		return err
	}

	var redisCfg redis.Config
	config.MustLoad(&redisCfg)
	redisClient, err := redis.Connect(ctx, redisCfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	var limiterCfg ratelimiter.Config
	config.MustLoad(&limiterCfg)
	limiter, err := ratelimiter.NewBucket(ratelimiter.NewRedisStore(redisClient), limiterCfg)
	if err != nil {
		return err
	}

	var tokenCfg authtoken.Config
	config.MustLoad(&tokenCfg)
	tokens := authtoken.NewServiceFromConfig(tokenCfg, authtoken.NewPGStore(pool))

	var sessionCfg session.Config
	config.MustLoad(&sessionCfg)
	sessions, err := session.NewStoreFromConfig(
		sessionCfg,
		session.NewPGStorage(pool),
		session.WithLogger(log),
		session.WithOnExpire(func(data map[string]any) {
			// Aggregated counters from ended sessions; the analytics
			// pipeline consumes these from the log stream.
			log.Info("session data flushed", logger.Key("data", data))
		}),
	)
	if err != nil {
		return err
	}

	var userCfg user.Config
	config.MustLoad(&userCfg)
	users, err := user.NewCache(user.NewPGStore(pool), userCfg)
	if err != nil {
		return err
	}

	guard := authguard.New(tokens, sessions, users, limiter, authguard.WithLogger(log))

	var cookieCfg cookie.Config
	config.MustLoad(&cookieCfg)
	cookies, err := cookie.NewFromConfig(cookieCfg)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health/live", health.Liveness())
	mux.HandleFunc("GET /health/ready", health.Readiness(log,
		pg.Healthcheck(pool),
		redis.Healthcheck(redisClient),
	))
	mux.Handle("GET /me", middleware.RememberMe(middleware.RememberMeConfig{
		Cookies:  cookies,
		Sessions: sessions,
		Guard:    guard,
		Logger:   log,
	})(http.HandlerFunc(handleMe)))

	srv := &http.Server{
		Addr:    appCfg.Addr,
		Handler: middleware.RequestID(middleware.Logging(log)(mux)),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(sessions.Run(ctx))
	g.Go(func() error {
		log.InfoContext(ctx, "authd listening", slog.String("addr", appCfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), appCfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	log.Info("authd stopped")
	return nil
}

// handleMe reports the authenticated user restored by the middleware.
func handleMe(w http.ResponseWriter, r *http.Request) {
	rec, ok := middleware.UserFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":       rec.ID,
		"uuid":     rec.UUID,
		"username": rec.Username,
		"email":    rec.Email,
		"theme":    rec.Theme,
		"admin":    rec.Admin,
	})
}
