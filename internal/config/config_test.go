package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ORDER_BACKEND", "")
	t.Setenv("MAX_UPLOAD_MB", "")

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, OrderBackendPostgres, cfg.OrderBackend)
	assert.Equal(t, StorageBackendMinio, cfg.StorageBackend)
	assert.Equal(t, "Index", cfg.IndexFolder)
	assert.Equal(t, int64(50<<20), cfg.MaxUploadBytes)
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("ORDER_BACKEND", OrderBackendRedis)
	t.Setenv("REDIS_DB", "3")
	t.Setenv("SESSION_TTL", "90m")
	t.Setenv("STORAGE_USE_SSL", "true")

	cfg := Load()
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, OrderBackendRedis, cfg.OrderBackend)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 90*time.Minute, cfg.SessionTTL)
	assert.True(t, cfg.StorageUseSSL)
}

func TestLoadInvalidNumbersFallBack(t *testing.T) {
	t.Setenv("REDIS_DB", "three")
	t.Setenv("SESSION_TTL", "soon")

	cfg := Load()
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
}
