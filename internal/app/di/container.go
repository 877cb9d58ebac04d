package di

import (
	"context"
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	markethandler "ftse_backend/internal/feature/market/transport/handler"
	marketusecase "ftse_backend/internal/feature/market/usecase"
	"ftse_backend/internal/feature/signal/adapters/oracle"
	signalstore "ftse_backend/internal/feature/signal/adapters/store"
	signalhandler "ftse_backend/internal/feature/signal/transport/handler"
	signalusecase "ftse_backend/internal/feature/signal/usecase"
	"ftse_backend/internal/platform/cache"
	infradb "ftse_backend/internal/platform/db"
	infrahttp "ftse_backend/internal/platform/http"
	platformhandler "ftse_backend/internal/platform/http/handler"
	"ftse_backend/internal/platform/metrics"
	infraredis "ftse_backend/internal/platform/redis"
)

// Container はアプリケーション全体の依存関係を保持します。
type Container struct {
	Metrics *metrics.Registry
	Market  marketusecase.MarketRepository
	Cache   *cache.CachingMarketRepository // Redis未設定の場合 nil
	Signal  signalusecase.Config

	Predict   *signalusecase.PredictUsecase
	Backtest  *signalusecase.BacktestUsecase
	Reconcile *signalusecase.ReconcileUsecase
	History   *signalusecase.HistoryUsecase

	Handlers Handlers

	db  *gorm.DB
	rdb *redis.Client
}

// Handlers はルーターに渡すHTTPハンドラ群です。
type Handlers struct {
	OHLC      *markethandler.OHLCHandler
	Predict   *signalhandler.PredictHandler
	Backtest  *signalhandler.BacktestHandler
	Reconcile *signalhandler.ReconcileHandler
	History   *signalhandler.HistoryHandler
	Checks    []platformhandler.Check // /health で報告する依存先
}

// Build は環境変数から設定を読み込み、すべての依存関係を組み立てます。
// DBとRedisは任意です。DBがない場合は保存系の操作が ErrStoreUnavailable を返し、
// Redisがない場合はキャッシュなしで動作します。
func Build(ctx context.Context) (*Container, error) {
	c := &Container{Metrics: metrics.NewRegistry(), Signal: signalusecase.LoadConfig()}

	// Redis
	if rcfg := infraredis.LoadConfig(); rcfg.Enabled() {
		if rdb, err := infraredis.NewRedisClient(ctx, rcfg); err != nil {
			slog.Warn("Redis unavailable. Running without cache.", "error", err)
		} else {
			c.rdb = rdb
		}
	} else {
		slog.Info("REDIS_HOST not set. Running without cache.")
	}

	// Market
	c.Market, c.Cache = NewMarket(LoadMarketConfig(), c.rdb)

	// Store
	var (
		store     signalusecase.PredictionRepository
		storePing func(context.Context) error
	)
	if dbCfg := infradb.LoadConfigFromEnv(); dbCfg.Enabled() {
		db, err := infradb.OpenDB(dbCfg)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.db = db
		ps := signalstore.NewPredictionStore(db)
		if err := infradb.CheckConnection(ctx, ps.Ping, infradb.DefaultCheckAttempts, infradb.DefaultCheckDelay); err != nil {
			// 起動は継続し、保存系の操作はリクエストごとにエラーを返す
			slog.Error("prediction store check failed", "error", err)
		}
		store, storePing = ps, ps.Ping
	} else {
		slog.Warn("database not configured. Predictions will not be persisted.")
	}

	// Oracle
	forecaster := NewForecaster(oracle.LoadConfig())

	// Usecase
	c.Predict = signalusecase.NewPredictUsecase(c.Signal, c.Market, forecaster, store, c.Metrics)
	c.Backtest = signalusecase.NewBacktestUsecase(c.Signal, c.Market, forecaster, store, c.Metrics)
	c.Reconcile = signalusecase.NewReconcileUsecase(c.Signal, c.Market, store, c.Metrics)
	c.History = signalusecase.NewHistoryUsecase(store)

	// Handler
	c.Handlers = Handlers{
		OHLC:      markethandler.NewOHLCHandler(marketusecase.NewOHLCUsecase(c.Market, c.Signal.Ticker)),
		Predict:   signalhandler.NewPredictHandler(c.Predict),
		Backtest:  signalhandler.NewBacktestHandler(c.Backtest),
		Reconcile: signalhandler.NewReconcileHandler(c.Reconcile),
		History:   signalhandler.NewHistoryHandler(c.History),
		Checks:    []platformhandler.Check{{Name: "store", Ping: storePing}, {Name: "redis", Ping: c.redisPing()}},
	}
	return c, nil
}

// NewForecaster はORACLE_URLが設定されていればHTTPクライアントを、なければ常に失敗する実装を返します。
func NewForecaster(cfg oracle.Config) signalusecase.Forecaster {
	if !cfg.Enabled() {
		slog.Warn("ORACLE_URL not set. Inference is disabled.")
		return oracle.Disabled{}
	}
	return oracle.NewClient(cfg, infrahttp.NewHTTPClient(cfg.Timeout, ""))
}

func (c *Container) redisPing() func(context.Context) error {
	if c.rdb == nil {
		return nil
	}
	return func(ctx context.Context) error { return c.rdb.Ping(ctx).Err() }
}

// InvalidateMarketCache は対象ティッカーのキャッシュを削除します。キャッシュがない場合は何もしません。
func (c *Container) InvalidateMarketCache(ctx context.Context) error {
	if c.Cache == nil {
		return nil
	}
	return c.Cache.Invalidate(ctx, c.Signal.Ticker)
}

// Close はDBとRedisの接続を閉じます。
func (c *Container) Close() {
	var errs []error
	if c.rdb != nil {
		errs = append(errs, c.rdb.Close())
	}
	if c.db != nil {
		if sqlDB, err := c.db.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	if err := errors.Join(errs...); err != nil {
		slog.Error("failed to close connections", "error", err)
	}
}
