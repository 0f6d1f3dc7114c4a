package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("FRONTEND_URL", "https://market.example/")

	cfg := Load()

	assert.Equal(t, "https://market.example", cfg.FrontendURL)
	assert.Equal(t, "https://market.example/payment/success", cfg.PaymentSuccessURL)
	assert.Equal(t, []string{"https://market.example"}, cfg.CORSOrigins())
	assert.Equal(t, 30*time.Minute, cfg.PaymentHoldTTL)
	assert.Equal(t, "NGN", cfg.Currency)
	assert.Empty(t, cfg.ESAddrs())
	assert.False(t, cfg.PaymentsEnabled())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PAYMENT_HOLD_TTL", "10m")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("DB_MAX_CONNS", "25")
	t.Setenv("ELASTICSEARCH_ADDRS", "http://es1:9200, http://es2:9200,")
	t.Setenv("PAYSTACK_SECRET_KEY", "sk_test_x")
	t.Setenv("STORAGE_DRIVER", "Cloudinary")

	cfg := Load()

	assert.Equal(t, 10*time.Minute, cfg.PaymentHoldTTL)
	assert.True(t, cfg.CookieSecure)
	assert.EqualValues(t, 25, cfg.DBMaxConns)
	assert.Equal(t, []string{"http://es1:9200", "http://es2:9200"}, cfg.ESAddrs())
	assert.True(t, cfg.PaymentsEnabled())
	assert.Equal(t, "cloudinary", cfg.StorageDriver)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("PAYMENT_HOLD_TTL", "soon")
	t.Setenv("COOKIE_SECURE", "maybe")
	t.Setenv("REDIS_DB", "x")

	cfg := Load()

	assert.Equal(t, 30*time.Minute, cfg.PaymentHoldTTL)
	assert.False(t, cfg.CookieSecure)
	assert.Equal(t, 0, cfg.RedisDB)
}
