package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"SERVER_PORT", "VAT_RATE", "TIER_CACHE_TTL", "TIER_LOCK_TTL", "CLIENT_URL", "DB_NAME"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "", cfg.Server.ClientURL)
	assert.Equal(t, "billing", cfg.Database.DBName)
	assert.True(t, cfg.Pricing.VATRate.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, 5*time.Minute, cfg.Pricing.TierCacheTTL)
	assert.Equal(t, 10*time.Second, cfg.Pricing.TierLockTTL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("VAT_RATE", "18.5")
	t.Setenv("TIER_CACHE_TTL", "30s")
	t.Setenv("CLIENT_URL", "http://localhost:3000")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("NEW_RELIC_ENABLED", "true")

	cfg := Load()

	assert.True(t, cfg.Pricing.VATRate.Equal(decimal.RequireFromString("18.5")))
	assert.Equal(t, 30*time.Second, cfg.Pricing.TierCacheTTL)
	assert.Equal(t, "http://localhost:3000", cfg.Server.ClientURL)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.True(t, cfg.NewRelic.Enabled)
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("VAT_RATE", "twenty")
	t.Setenv("TIER_LOCK_TTL", "soon")
	t.Setenv("REDIS_DB", "x")

	cfg := Load()

	assert.True(t, cfg.Pricing.VATRate.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, 10*time.Second, cfg.Pricing.TierLockTTL)
	assert.Equal(t, 0, cfg.Redis.DB)
}
