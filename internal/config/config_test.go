package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Database: Database{Driver: "postgres"},
		JWT: JWT{
			Secret:                strings.Repeat("s", 32),
			Issuer:                "skycast",
			Audience:              "skycast-clients",
			AccessTokenTTLMinutes: 15,
			RefreshTokenTTLDays:   7,
		},
	}
}

func TestNewConfig_Defaults(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "skycast", cfg.JWT.Issuer)
	assert.Equal(t, 15, cfg.JWT.AccessTokenTTLMinutes)
	assert.Equal(t, 7, cfg.JWT.RefreshTokenTTLDays)
	assert.Equal(t, 5*time.Minute, cfg.Weather.CacheTTL)
}

func TestNewConfig_FromEnvironment(t *testing.T) {
	t.Setenv("HTTP_ADDRESS", ":9090")
	t.Setenv("JWT_SECRET", strings.Repeat("x", 40))
	t.Setenv("JWT_ACCESS_TTL_MINUTES", "30")
	t.Setenv("DATABASE_DRIVER", "memory")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTP.Address)
	assert.Equal(t, strings.Repeat("x", 40), cfg.JWT.Secret)
	assert.Equal(t, 30, cfg.JWT.AccessTokenTTLMinutes)
	assert.Equal(t, "memory", cfg.Database.Driver)
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestConfig_Validate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"short secret", func(c *Config) { c.JWT.Secret = "short" }},
		{"empty secret", func(c *Config) { c.JWT.Secret = "" }},
		{"empty issuer", func(c *Config) { c.JWT.Issuer = "" }},
		{"empty audience", func(c *Config) { c.JWT.Audience = "" }},
		{"zero access ttl", func(c *Config) { c.JWT.AccessTokenTTLMinutes = 0 }},
		{"negative refresh ttl", func(c *Config) { c.JWT.RefreshTokenTTLDays = -1 }},
		{"unknown driver", func(c *Config) { c.Database.Driver = "oracle" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestJWT_TTLDurations(t *testing.T) {
	j := JWT{AccessTokenTTLMinutes: 15, RefreshTokenTTLDays: 7}

	assert.Equal(t, 15*time.Minute, j.AccessTokenTTL())
	assert.Equal(t, 7*24*time.Hour, j.RefreshTokenTTL())
}
