package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(values map[string]string) func(string) string {
	return func(key string) string {
		return values[key]
	}
}

func TestLoadFrom_Defaults(t *testing.T) {
	config, err := LoadFrom(env(nil))

	require.NoError(t, err)
	assert.Equal(t, "8080", config.Port)
	assert.Equal(t, DriverSQLite, config.Database.Driver)
	assert.Equal(t, 2500*time.Millisecond, config.MutationDelay)
	assert.True(t, config.RateLimitEnabled)
	assert.False(t, config.EnforceHTTPS)
}

func TestLoadFrom_Overrides(t *testing.T) {
	config, err := LoadFrom(env(map[string]string{
		"PORT":               "3000",
		"MUTATION_DELAY":     "0s",
		"RATE_LIMIT_ENABLED": "false",
		"DATABASE_DRIVER":    "postgres",
		"DATABASE_URL":       "postgres://localhost/users",
		"GIN_MODE":           "release",
	}))

	require.NoError(t, err)
	assert.Equal(t, "3000", config.Port)
	assert.Equal(t, time.Duration(0), config.MutationDelay)
	assert.False(t, config.RateLimitEnabled)
	assert.Equal(t, DriverPostgres, config.Database.Driver)
	assert.Equal(t, "production", config.Environment)
	assert.True(t, config.EnforceHTTPS)
}

func TestLoadFrom_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"bad delay":         {"MUTATION_DELAY": "soon"},
		"negative delay":    {"MUTATION_DELAY": "-1s"},
		"bad bool":          {"ENFORCE_HTTPS": "maybe"},
		"unknown driver":    {"DATABASE_DRIVER": "mysql"},
		"postgres no url":   {"DATABASE_DRIVER": "postgres"},
		"bad rate limiting": {"RATE_LIMIT_ENABLED": "nope"},
	}

	for name, values := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFrom(env(values))

			assert.Error(t, err)
		})
	}
}
