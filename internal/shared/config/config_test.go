package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "deliveries")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "localhost", cfg.RabbitMQ.Host)
	assert.Equal(t, 5672, cfg.RabbitMQ.Port)
	assert.Equal(t, "guest", cfg.RabbitMQ.User)
	assert.Equal(t, 3*time.Second, cfg.PaymentDelay)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 5*time.Second, cfg.SupervisorRetry)
	assert.Empty(t, cfg.Maps.APIKey)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("RABBITMQ_HOST", "mq.internal")
	t.Setenv("RABBITMQ_PORT", "5673")
	t.Setenv("RABBITMQ_USER", "worker")
	t.Setenv("RABBITMQ_PASSWORD", "pw")
	t.Setenv("ORDER_SERVICE_URL", "http://orders:8000/api")
	t.Setenv("PAYMENT_DELAY_SECONDS", "1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "amqp://worker:pw@mq.internal:5673/", cfg.AMQPURL())
	assert.Equal(t, "http://orders:8000/api", cfg.OrderService.BaseURL)
	assert.Equal(t, time.Second, cfg.PaymentDelay)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Run("non-numeric port", func(t *testing.T) {
		t.Setenv("RABBITMQ_PORT", "not-a-port")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "RABBITMQ_PORT")
	})

	t.Run("port out of range", func(t *testing.T) {
		t.Setenv("RABBITMQ_PORT", "70000")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "RABBITMQ_PORT must be in 1..65535")
	})

	t.Run("non-http order service URL", func(t *testing.T) {
		t.Setenv("ORDER_SERVICE_URL", "orders:8000")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ORDER_SERVICE_URL")
	})
}
