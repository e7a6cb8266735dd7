package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, k := range []string{"DB_ENABLED", "REDIS_ADDR", "CARS_API_KEY", "CACHE_TTL", "SOURCE_TIMEOUT", "PRICE_ESTIMATION", "API_PORT"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.False(t, cfg.Database.Enabled)
	assert.Equal(t, "", cfg.Redis.Addr)
	assert.Equal(t, 24*time.Hour, cfg.Redis.TTL)
	assert.Equal(t, 8*time.Second, cfg.Search.SourceTimeout)
	assert.True(t, cfg.Search.EstimatePrice)
	assert.Equal(t, "8080", cfg.APIPort)
	assert.Equal(t, 0, cfg.CarsAPI.Retries)
}

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DB_ENABLED", "true")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("CACHE_TTL", "90m")
	t.Setenv("CARS_API_RPS", "2.5")
	t.Setenv("SOURCE_TIMEOUT", "3")
	t.Setenv("PRICE_ESTIMATION", "false")
	t.Setenv("IMAGE_CDN_CUSTOMER", "demo")

	cfg := Load()

	assert.True(t, cfg.Database.Enabled)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 90*time.Minute, cfg.Redis.TTL)
	assert.Equal(t, 2.5, cfg.CarsAPI.RequestsPerSecond)
	assert.Equal(t, 3*time.Second, cfg.Search.SourceTimeout)
	assert.False(t, cfg.Search.EstimatePrice)
	assert.Equal(t, "demo", cfg.ImageCDN.Customer)
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("DB_PORT", "abc")
	t.Setenv("CACHE_TTL", "soon")
	t.Setenv("DB_ENABLED", "maybe")

	assert.Equal(t, 5432, getEnvInt("DB_PORT", 5432))
	assert.Equal(t, time.Hour, getEnvDuration("CACHE_TTL", time.Hour))
	assert.False(t, getEnvBool("DB_ENABLED", false))
}
