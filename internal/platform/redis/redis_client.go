// Package redis はRedisクライアントの生成を提供します。
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
)

// Config はRedis接続設定です。
type Config struct {
	Host     string
	Port     string
	Password string
}

// LoadConfig は環境変数 REDIS_HOST / REDIS_PORT / REDIS_PASSWORD から設定を読み込みます。
func LoadConfig() Config {
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}
	return Config{
		Host:     os.Getenv("REDIS_HOST"),
		Port:     port,
		Password: os.Getenv("REDIS_PASSWORD"),
	}
}

// Enabled はホストが設定されている場合に true を返します。
func (c Config) Enabled() bool { return c.Host != "" }

// Addr は host:port 形式のアドレスを返します。
func (c Config) Addr() string { return c.Host + ":" + c.Port }

// NewRedisClient はクライアントを生成し、Pingで接続確認します。
func NewRedisClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("redis: REDIS_HOST is not set")
	}
	addr := cfg.Addr()

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       0,
	})

	// 接続確認
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Error("Redis connection failed", "address", addr, "error", err)
		_ = rdb.Close()
		return nil, err
	}

	slog.Info("Redis connection successful", "address", addr)
	return rdb, nil
}
