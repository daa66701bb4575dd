package config

import (
	"testing"
	"time"

	"github.com/example/ec-storefront/internal/checkout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-testing-purposes"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, checkout.StockIgnore, cfg.StockPolicy)
	assert.Equal(t, 7*24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 2*time.Hour, cfg.SessionIdleTimeout)
	assert.Equal(t, "@every 5m", cfg.SessionSweepSchedule)
	assert.True(t, cfg.SeedCatalog)
	assert.False(t, cfg.SecureCookie)
	assert.False(t, cfg.EventsEnabled())
	assert.False(t, cfg.PersistenceEnabled())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("DATABASE_URL", "postgres://localhost/shop")
	t.Setenv("STOCK_POLICY", "enforce")
	t.Setenv("SESSION_IDLE_TIMEOUT", "30m")
	t.Setenv("ADMIN_EMAIL", "Boss@Shop.test")
	t.Setenv("SEED_CATALOG", "false")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("SECURE_COOKIE", "true")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.EventsEnabled())
	assert.True(t, cfg.PersistenceEnabled())
	assert.Equal(t, checkout.StockEnforce, cfg.StockPolicy)
	assert.Equal(t, 30*time.Minute, cfg.SessionIdleTimeout)
	assert.Equal(t, "boss@shop.test", cfg.AdminEmail)
	assert.False(t, cfg.SeedCatalog)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.True(t, cfg.SecureCookie)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{}},
		{"short secret", map[string]string{"JWT_SECRET": "short"}},
		{"bad policy", map[string]string{"JWT_SECRET": testSecret, "STOCK_POLICY": "sometimes"}},
		{"bad duration", map[string]string{"JWT_SECRET": testSecret, "SESSION_TTL": "forever"}},
		{"bad burst", map[string]string{"JWT_SECRET": testSecret, "RATE_LIMIT_BURST": "0"}},
		{"bad format", map[string]string{"JWT_SECRET": testSecret, "LOG_FORMAT": "xml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()

			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestLoadNotifier(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "")
	_, err := LoadNotifier()
	assert.ErrorIs(t, err, ErrInvalidConfig)

	t.Setenv("KAFKA_BROKERS", "k1:9092")
	t.Setenv("SMTP_PORT", "2525")
	cfg, err := LoadNotifier()
	require.NoError(t, err)
	assert.Equal(t, []string{"k1:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "storefront-events", cfg.KafkaTopic)
	assert.Equal(t, "2525", cfg.SMTPPort)
}
