package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("RATES_REFRESH_ENABLED", "false")

	cfg, err := Load("pricing-service")
	require.NoError(t, err)

	assert.Equal(t, "pricing-service", cfg.Server.ServiceName)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "USD", cfg.Rates.Anchor)
	assert.Equal(t, "VES", cfg.Rates.OfficialCurrency)
	assert.Equal(t, 6*time.Hour, cfg.Rates.RefreshInterval)
	assert.Equal(t, 30.0, cfg.Rates.DefaultProfitPct)
	assert.Equal(t, 5*time.Minute, cfg.Redis.RateCacheTTL)
	assert.False(t, cfg.NATS.Enabled)
	assert.Equal(t, 5, cfg.Breaker.FailureThreshold)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 10, cfg.RateLimit.RefreshLimit)
	assert.Equal(t, time.Hour, cfg.RateLimit.Window())
}

func TestRateLimitConfig_Window(t *testing.T) {
	assert.Equal(t, 90*time.Second, RateLimitConfig{WindowSeconds: 90}.Window())
	assert.Equal(t, time.Minute, RateLimitConfig{}.Window())
	assert.Equal(t, time.Minute, RateLimitConfig{WindowSeconds: -1}.Window())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("RATES_REFRESH_ENABLED", "true")
	t.Setenv("RATES_API_KEY", "secret")
	t.Setenv("RATES_REFRESH_INTERVAL", "30m")
	t.Setenv("RATES_DEFAULT_PROFIT_PERCENTAGE", "42.5")
	t.Setenv("DB_MAX_CONNS", "50")
	t.Setenv("NATS_ENABLED", "true")

	cfg, err := Load("pricing-service")
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.Rates.APIKey)
	assert.Equal(t, 30*time.Minute, cfg.Rates.RefreshInterval)
	assert.Equal(t, 42.5, cfg.Rates.DefaultProfitPct)
	assert.Equal(t, 50, cfg.Database.MaxConns)
	assert.True(t, cfg.NATS.Enabled)
}

func TestLoad_RefreshRequiresAPIKey(t *testing.T) {
	t.Setenv("RATES_REFRESH_ENABLED", "true")
	t.Setenv("RATES_API_KEY", "")

	_, err := Load("pricing-service")
	assert.Error(t, err)
}

func TestGetEnvHelpers_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("TEST_INT", "abc")
	t.Setenv("TEST_FLOAT", "x")
	t.Setenv("TEST_BOOL", "maybe")
	t.Setenv("TEST_DURATION", "-5s")

	assert.Equal(t, 7, getEnvAsInt("TEST_INT", 7))
	assert.Equal(t, 1.5, getEnvAsFloat("TEST_FLOAT", 1.5))
	assert.True(t, getEnvAsBool("TEST_BOOL", true))
	assert.Equal(t, time.Second, getEnvAsDuration("TEST_DURATION", time.Second))
}

func TestDatabaseConfig_URLs(t *testing.T) {
	cfg := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "pricing", SSLMode: "disable"}

	assert.Equal(t, "host=db port=5432 user=u password=p dbname=pricing sslmode=disable", cfg.DSN())
	assert.Equal(t, "pgx5://u:p@db:5432/pricing?sslmode=disable", cfg.URL())
}
