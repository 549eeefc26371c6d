package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVICE_NAME", "market-service")

	cfg := Load()
	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "8084", cfg.HTTPPort)
	assert.Equal(t, "9099", cfg.MetricsPort)
	assert.Equal(t, "bounded", cfg.FundingPolicy)
	assert.Equal(t, time.Duration(0), cfg.ClaimWindow)
	assert.Equal(t, 30*time.Second, cfg.MarketCacheTTL)
	assert.Equal(t, "market_events", cfg.TopicMarketEvents)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVICE_NAME", "wallet-service")
	t.Setenv("FUNDING_POLICY", "accumulating")
	t.Setenv("CLAIM_WINDOW", "48h")
	t.Setenv("KEY_CACHE_SIZE", "12")
	t.Setenv("HTTP_PORT_WALLET", "9000")

	cfg := Load()
	assert.Equal(t, "accumulating", cfg.FundingPolicy)
	assert.Equal(t, 48*time.Hour, cfg.ClaimWindow)
	assert.Equal(t, 12, cfg.KeyCacheSize)
	assert.Equal(t, "9000", cfg.HTTPPort)
}

func TestLoad_InvalidDurationFallsBack(t *testing.T) {
	t.Setenv("CLAIM_WINDOW", "amanhã")
	t.Setenv("MARKET_CACHE_TTL", "-5s")

	cfg := Load()
	assert.Equal(t, time.Duration(0), cfg.ClaimWindow)
	assert.Equal(t, 30*time.Second, cfg.MarketCacheTTL)
}
