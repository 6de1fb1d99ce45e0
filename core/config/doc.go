// Package config provides type-safe environment variable loading with
// per-type caching.
//
// Configuration structs declare their variables with caarlos0/env tags:
//
//	type SessionConfig struct {
//		TTL       time.Duration `env:"SESSION_TTL" envDefault:"2h"`
//		CacheSize int           `env:"SESSION_CACHE_CAPACITY" envDefault:"50"`
//	}
//
//	var cfg SessionConfig
//	config.MustLoad(&cfg)
//
// Each struct type is parsed once per process; later Load calls for the same
// type return the cached value. A .env file, when present, is loaded before
// the first parse via godotenv.
package config
