package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0hv/manga-tracker-auth/core/config"
)

type testConfig struct {
	Name  string `env:"CONFIG_TEST_NAME" envDefault:"fallback"`
	Count int    `env:"CONFIG_TEST_COUNT" envDefault:"5"`
}

type overrideConfig struct {
	Value string `env:"CONFIG_TEST_OVERRIDE" envDefault:"unset"`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg testConfig
	require.NoError(t, config.Load(&cfg))

	assert.Equal(t, "fallback", cfg.Name)
	assert.Equal(t, 5, cfg.Count)
}

func TestLoad_CachesPerType(t *testing.T) {
	t.Setenv("CONFIG_TEST_OVERRIDE", "first")

	var first overrideConfig
	require.NoError(t, config.Load(&first))
	assert.Equal(t, "first", first.Value)

	// Changing the environment after the first parse has no effect:
	// the type is served from cache.
	t.Setenv("CONFIG_TEST_OVERRIDE", "second")

	var second overrideConfig
	require.NoError(t, config.Load(&second))
	assert.Equal(t, first.Value, second.Value)
}
