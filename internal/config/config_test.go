package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("PORT", "")
		t.Setenv("TOKEN_TTL", "")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, 24*time.Hour, cfg.JWT.TokenTTL)
		assert.Equal(t, "json", cfg.Logger.Encoding)
		assert.True(t, cfg.RunMigrations)
		assert.Equal(t, 24*time.Hour, cfg.Idempotency.TTL)
		assert.Equal(t, 10*time.Minute, cfg.Idempotency.SweepInterval)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("PORT", "9090")
		t.Setenv("TOKEN_TTL", "30m")
		t.Setenv("REQUEST_TIMEOUT", "3")
		t.Setenv("DB_MAX_CONNS", "25")
		t.Setenv("RUN_MIGRATIONS", "false")
		t.Setenv("IDEMPOTENCY_SWEEP_INTERVAL", "0")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "9090", cfg.Port)
		assert.Equal(t, 30*time.Minute, cfg.JWT.TokenTTL)
		assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
		assert.Equal(t, 25, cfg.Database.MaxConns)
		assert.False(t, cfg.RunMigrations)
		assert.Zero(t, cfg.Idempotency.SweepInterval)
	})

	t.Run("invalid values fall back to defaults", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("DB_MAX_CONNS", "many")
		t.Setenv("SHUTDOWN_TIMEOUT", "soon")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 10, cfg.Database.MaxConns)
		assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	})

	t.Run("missing secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")

		_, err := Load()
		assert.ErrorIs(t, err, ErrMissingSecret)
	})
}
