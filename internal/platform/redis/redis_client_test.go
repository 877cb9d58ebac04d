package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("REDIS_HOST", "cache.internal")
	t.Setenv("REDIS_PORT", "")
	t.Setenv("REDIS_PASSWORD", "secret")

	cfg := LoadConfig()
	assert.True(t, cfg.Enabled())
	assert.Equal(t, "cache.internal:6379", cfg.Addr())
	assert.Equal(t, "secret", cfg.Password)
}

func TestNewRedisClient_Disabled(t *testing.T) {
	t.Parallel()

	rdb, err := NewRedisClient(context.Background(), Config{})
	assert.Error(t, err)
	assert.Nil(t, rdb)
}
