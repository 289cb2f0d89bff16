package config_test

import (
	"path/filepath"
	"testing"
	"time"

	"leave-portal/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("SESSION_FILE", filepath.Join(t.TempDir(), "session.json"))
		t.Setenv("LEAVE_API_URL", "http://api.local/api/")

		cfg, err := config.Load()

		assert.NoError(t, err)
		assert.Equal(t, "http://api.local/api", cfg.APIBaseURL)
		assert.Equal(t, 30*time.Minute, cfg.IdleTimeout)
		assert.Equal(t, 30*time.Second, cfg.WarningWindow)
		assert.Equal(t, config.StoreFile, cfg.SessionStore)
		assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("IDLE_TIMEOUT_MINUTES", "5")
		t.Setenv("SESSION_WARNING_SECONDS", "10")
		t.Setenv("SESSION_STORE", "Redis")
		t.Setenv("REDIS_SESSION_KEY", "slot")

		cfg, err := config.Load()

		assert.NoError(t, err)
		assert.Equal(t, 5*time.Minute, cfg.IdleTimeout)
		assert.Equal(t, 10*time.Second, cfg.WarningWindow)
		assert.Equal(t, config.StoreRedis, cfg.SessionStore)
		assert.Equal(t, "slot", cfg.RedisSessionKey)
	})

	t.Run("negative invalid values", func(t *testing.T) {
		t.Setenv("IDLE_TIMEOUT_MINUTES", "abc")
		_, err := config.Load()
		assert.Error(t, err)

		t.Setenv("IDLE_TIMEOUT_MINUTES", "1")
		t.Setenv("SESSION_WARNING_SECONDS", "90")
		_, err = config.Load()
		assert.Error(t, err)

		t.Setenv("SESSION_WARNING_SECONDS", "30")
		t.Setenv("SESSION_STORE", "cookie")
		_, err = config.Load()
		assert.Error(t, err)
	})
}
