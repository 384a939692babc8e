package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		for _, key := range []string{"ADDR", "STORAGE", "SQLITE_PATH", "THREAD_MAX_DEPTH", "RECONCILE_INTERVAL", "CACHE_SIZE", "CACHE_TTL"} {
			t.Setenv(key, "")
		}

		cfg := Load()
		assert.Equal(t, ":8080", cfg.Addr)
		assert.Equal(t, "memory", cfg.Storage)
		assert.Equal(t, 2, cfg.ThreadMaxDepth)
		assert.Equal(t, 10*time.Minute, cfg.ReconcileInterval)
		assert.Equal(t, 500, cfg.CacheSize)
		assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	})

	t.Run("Overrides", func(t *testing.T) {
		t.Setenv("STORAGE", "sqlite")
		t.Setenv("THREAD_MAX_DEPTH", "4")
		t.Setenv("RECONCILE_INTERVAL", "0s")
		t.Setenv("CACHE_TTL", "1m")

		cfg := Load()
		assert.Equal(t, "sqlite", cfg.Storage)
		assert.Equal(t, 4, cfg.ThreadMaxDepth)
		assert.Equal(t, time.Duration(0), cfg.ReconcileInterval)
		assert.Equal(t, time.Minute, cfg.CacheTTL)
	})

	t.Run("Malformed values fall back to defaults", func(t *testing.T) {
		t.Setenv("THREAD_MAX_DEPTH", "deep")
		t.Setenv("CACHE_TTL", "-5s")

		cfg := Load()
		assert.Equal(t, 2, cfg.ThreadMaxDepth)
		assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	})
}

func TestGetEnv(t *testing.T) {
	t.Setenv("THREADLY_TEST_KEY", "value")
	assert.Equal(t, "value", GetEnv("THREADLY_TEST_KEY"))
}
