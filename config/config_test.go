package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigSSEDefaults(t *testing.T) {
	t.Setenv("SSE_TIMEOUT_MS", "")
	t.Setenv("SSE_EVENT_QUEUE_CAPACITY", "")
	t.Setenv("SSE_KEEPALIVE_MINUTES", "")

	cfg := LoadConfig()

	assert.Equal(t, 300000, cfg.SSETimeoutMs)
	assert.Equal(t, 100, cfg.SSEQueueCapacity)
	assert.Equal(t, 30, cfg.SSEKeepAliveMinutes)
}

func TestLoadConfigSSEOverrides(t *testing.T) {
	t.Setenv("SSE_KEEPALIVE_MINUTES", "5")
	t.Setenv("SSE_EVENT_QUEUE_CAPACITY", "250")

	cfg := LoadConfig()

	assert.Equal(t, 5, cfg.SSEKeepAliveMinutes)
	assert.Equal(t, 250, cfg.SSEQueueCapacity)
}
