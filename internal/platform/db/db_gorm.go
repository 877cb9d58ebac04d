// Package db はPostgreSQL（Supabase互換）への接続とマイグレーションを提供します。
package db

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"ftse_backend/internal/feature/signal/adapters/store"
)

const (
	// connectTimeout は起動時の接続リトライを打ち切るまでの時間です。
	connectTimeout = 60 * time.Second

	// DefaultCheckAttempts と DefaultCheckDelay は起動時の疎通確認のリトライ設定です。
	DefaultCheckAttempts = 5
	DefaultCheckDelay    = time.Second
)

// retryInterval は接続失敗時の待ち時間です。
var retryInterval = 3 * time.Second

// Config holds database connection settings.
type Config struct {
	URL      string // 接続URL（DATABASE_URL）。設定されている場合は他の項目より優先
	User     string
	Password string
	Name     string
	Host     string
	Port     string
	SSLMode  string

	RunMigrations bool
}

// Enabled reports whether enough settings are present to connect.
func (c Config) Enabled() bool {
	return c.URL != "" || c.Host != ""
}

// LoadConfigFromEnv loads database settings from environment variables.
func LoadConfigFromEnv() Config {
	sslmode := os.Getenv("DB_SSLMODE")
	if sslmode == "" {
		sslmode = "require"
	}
	return Config{
		URL:           os.Getenv("DATABASE_URL"),
		User:          os.Getenv("DB_USER"),
		Password:      os.Getenv("DB_PASSWORD"),
		Name:          os.Getenv("DB_NAME"),
		Host:          os.Getenv("DB_HOST"),
		Port:          os.Getenv("DB_PORT"),
		SSLMode:       sslmode,
		RunMigrations: os.Getenv("RUN_MIGRATIONS") == "true",
	}
}

// BuildDSN builds a PostgreSQL connection string from the config.
func BuildDSN(cfg Config) string {
	if cfg.URL != "" {
		return cfg.URL
	}
	port := cfg.Port
	if port == "" {
		port = "5432"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		cfg.Host, port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)
}

// ConnectWithRetry は timeout に達するまで接続を繰り返します。
func ConnectWithRetry(dsn string, timeout time.Duration, opener func(string) (*gorm.DB, error)) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := opener(dsn)
		if err == nil {
			return db, nil
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		slog.Warn("DB connect failed, retrying", "error", err)
		time.Sleep(min(retryInterval, remaining))
	}
}

func openPostgres(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{})
}

// OpenDB はデータベースに接続し、RunMigrations が有効ならテーブルを作成します。
func OpenDB(cfg Config) (*gorm.DB, error) {
	db, err := ConnectWithRetry(BuildDSN(cfg), connectTimeout, openPostgres)
	if err != nil {
		return nil, err
	}
	if cfg.RunMigrations {
		if err := Migrate(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// Migrate はアプリケーションのテーブルを作成・更新します。
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&store.PredictionModel{}); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	slog.Info("database migrated")
	return nil
}

// CheckConnection は ping が成功するまで最大 attempts 回、delay 間隔で確認します。
func CheckConnection(ctx context.Context, ping func(context.Context) error, attempts int, delay time.Duration) error {
	var err error
	for i := 1; i <= attempts; i++ {
		if err = ping(ctx); err == nil {
			slog.Info("record store connection ok", "attempt", i)
			return nil
		}
		slog.Warn("record store connection check failed", "attempt", i, "max", attempts, "error", err)
		if i == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("record store unreachable after %d attempts: %w", attempts, err)
}
