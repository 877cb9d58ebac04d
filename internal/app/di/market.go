// Package di provides dependency injection factories for creating application components.
package di

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	marketadapters "ftse_backend/internal/feature/market/adapters"
	"ftse_backend/internal/feature/market/adapters/stooq"
	"ftse_backend/internal/feature/market/adapters/synthetic"
	"ftse_backend/internal/feature/market/adapters/twelvedata"
	"ftse_backend/internal/feature/market/adapters/yahoo"
	marketusecase "ftse_backend/internal/feature/market/usecase"
	"ftse_backend/internal/platform/breaker"
	"ftse_backend/internal/platform/cache"
	infrahttp "ftse_backend/internal/platform/http"
	"ftse_backend/internal/shared/ratelimiter"
)

// DefaultRateLimitPerMin は各プロバイダへの1分あたりの最大リクエスト数です。
const DefaultRateLimitPerMin = 30

// MarketConfig はプロバイダチェーン全体の設定です。
type MarketConfig struct {
	AllowMockData   bool
	RateLimitPerMin int
}

// LoadMarketConfig は ALLOW_MOCK_DATA / MARKET_RATE_LIMIT_PER_MIN を読み込みます。
func LoadMarketConfig() MarketConfig {
	cfg := MarketConfig{RateLimitPerMin: DefaultRateLimitPerMin}
	if v := os.Getenv("ALLOW_MOCK_DATA"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			slog.Warn("invalid ALLOW_MOCK_DATA, mock data disabled", "value", v)
		}
		cfg.AllowMockData = b
	}
	if v := os.Getenv("MARKET_RATE_LIMIT_PER_MIN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.RateLimitPerMin = n
		} else {
			slog.Warn("invalid MARKET_RATE_LIMIT_PER_MIN, using default", "value", v, "default", cfg.RateLimitPerMin)
		}
	}
	return cfg
}

// NewMarketSources はフォールバックチェーンの構成要素を優先順に生成します。
// 外部プロバイダはそれぞれレートリミッタとサーキットブレーカーで保護されます。
func NewMarketSources(cfg MarketConfig) []marketadapters.Source {
	var sources []marketadapters.Source
	limiter := func(name string) *ratelimiter.RateLimiter {
		return ratelimiter.NewRateLimiter(name, cfg.RateLimitPerMin, time.Minute)
	}
	guard := func(name string, m marketusecase.MarketRepository) marketadapters.Source {
		return marketadapters.Source{Name: name, Market: breaker.NewMarketBreaker(name, m, breaker.Settings{})}
	}

	if tdCfg := twelvedata.LoadConfig(); tdCfg.Enabled() {
		client := infrahttp.NewHTTPClient(tdCfg.Timeout, "")
		sources = append(sources, guard(twelvedata.SourceName,
			twelvedata.NewTwelveDataMarket(tdCfg, client, limiter(twelvedata.SourceName))))
	}

	yCfg := yahoo.LoadConfig()
	sources = append(sources, guard(yahoo.SourceName,
		yahoo.NewYahooMarket(yCfg, infrahttp.NewHTTPClient(yCfg.Timeout, infrahttp.DefaultUserAgent), limiter(yahoo.SourceName))))

	sCfg := stooq.LoadConfig()
	sources = append(sources, guard(stooq.SourceName,
		stooq.NewStooqMarket(sCfg, infrahttp.NewHTTPClient(sCfg.Timeout, infrahttp.DefaultUserAgent), limiter(stooq.SourceName))))

	if cfg.AllowMockData {
		sources = append(sources, marketadapters.Source{Name: synthetic.SourceName, Market: synthetic.NewSyntheticMarket(uint64(time.Now().UnixNano()))})
	}
	return sources
}

// NewMarket はフォールバックチェーンを生成し、Redisが利用可能ならキャッシュでラップします。
// 返り値の *cache.CachingMarketRepository は Redis がない場合 nil です。
func NewMarket(cfg MarketConfig, rdb *redis.Client) (marketusecase.MarketRepository, *cache.CachingMarketRepository) {
	chain := marketadapters.NewFallbackMarket(NewMarketSources(cfg)...)
	slog.Info("market sources configured", "sources", chain.Names())
	if rdb == nil {
		return chain, nil
	}
	cached := cache.NewCachingMarketRepository(rdb, 0, chain, "market")
	return cached, cached
}
