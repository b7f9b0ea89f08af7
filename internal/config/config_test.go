package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")

	cfg := Load()

	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, StorageAuto, cfg.StorageBackend)
	assert.Equal(t, 5*time.Second, cfg.MongoConnectTimeout)
	assert.Equal(t, 10*time.Second, cfg.MongoSocketTimeout)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.SessionsEnabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("STORAGE_BACKEND", "SQL")
	t.Setenv("MONGODB_CONNECT_TIMEOUT", "250ms")
	t.Setenv("RATE_LIMIT_BURST", "not-a-number")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg := Load()

	assert.Equal(t, StorageSQL, cfg.StorageBackend)
	assert.Equal(t, 250*time.Millisecond, cfg.MongoConnectTimeout)
	assert.Equal(t, 10, cfg.RateLimitBurst)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.SessionsEnabled())
}

func TestSanitizedDropsSecrets(t *testing.T) {
	cfg := &Config{
		AppEnv:       "production",
		MongoURI:     "mongodb://user:pass@db",
		DBConnection: "postgres://user:pass@db",
		JWTSecret:    "s3cret",
		SentryDSN:    "https://key@sentry.io/1",
	}

	safe := cfg.Sanitized()

	assert.Equal(t, "production", safe.AppEnv)
	assert.Empty(t, safe.MongoURI)
	assert.Empty(t, safe.DBConnection)
	assert.Empty(t, safe.JWTSecret)
	assert.Empty(t, safe.SentryDSN)
}
