package authtoken

import "time"

// Config holds token service configuration.
type Config struct {
	// TTL is the remember-me token lifetime, applied on issue and refreshed
	// on rotation.
	TTL time.Duration `env:"AUTH_TOKEN_TTL" envDefault:"720h"` // 30 days
}

// DefaultConfig returns the default token configuration.
func DefaultConfig() Config {
	return Config{TTL: 30 * 24 * time.Hour}
}

// NewServiceFromConfig creates a token service from configuration.
func NewServiceFromConfig(cfg Config, store Store) *Service {
	return NewService(store, cfg.TTL)
}
