package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	marketusecase "ftse_backend/internal/feature/market/usecase"
	"ftse_backend/internal/feature/signal/domain"
	"ftse_backend/internal/feature/signal/domain/entity"
	"ftse_backend/internal/shared/tradingday"
)

// PredictUsecase は直近の日足からその日のシグナルを発行します。
type PredictUsecase struct {
	cfg        Config
	market     MarketRepository
	forecaster Forecaster
	store      PredictionRepository // nil の場合は保存しない
	observer   Observer
	now        func() time.Time
}

// NewPredictUsecase はPredictUsecaseの新しいインスタンスを生成します。
// store が nil の場合、予測は保存されず ID は空になります。
func NewPredictUsecase(cfg Config, market MarketRepository, forecaster Forecaster, store PredictionRepository, observer Observer) *PredictUsecase {
	return &PredictUsecase{
		cfg:        cfg.normalized(),
		market:     market,
		forecaster: forecaster,
		store:      store,
		observer:   observerOrNoop(observer),
		now:        time.Now,
	}
}

// Predict は最新の lookback 本から翌営業日の終値を予測し、シグナルを導出して保存します。
// データ取得と推論の失敗はそのまま返します。保存の失敗は警告ログのみで、ID が空のレコードを返します。
func (u *PredictUsecase) Predict(ctx context.Context, userID string) (entity.Prediction, error) {
	start, end := marketusecase.TrailingRange(u.now(), u.cfg.LiveDays)
	series, err := u.market.FetchDaily(ctx, u.cfg.Ticker, start, end)
	if err != nil {
		return entity.Prediction{}, err
	}

	window, err := ExtractWindow(series.Bars, len(series.Bars), u.cfg.Lookback)
	if err != nil {
		return entity.Prediction{}, err
	}

	predicted, err := u.forecaster.Predict(ctx, window)
	if err != nil {
		return entity.Prediction{}, fmt.Errorf("%w: %w", domain.ErrInferenceFailed, err)
	}

	last := window.LastClose()
	d := Derive(last, predicted, u.cfg.BandPct)
	ticker := series.Ticker
	if ticker == "" {
		ticker = u.cfg.Ticker
	}

	p := entity.Prediction{
		UserID:         userID,
		WindowStart:    window.Start,
		WindowEnd:      window.End,
		PredictionFor:  tradingday.Next(window.End),
		LastClose:      ptr(last),
		PredictedClose: ptr(predicted),
		Direction:      d.Direction,
		BandLower:      d.BandLower,
		BandUpper:      d.BandUpper,
		Signal:         d.Signal,
		ModelVersion:   u.cfg.ModelVersion,
		ScalerVersion:  u.cfg.ScalerVersion,
		TickerUsed:     ticker,
	}

	saved := false
	if u.store == nil {
		slog.Info("prediction not saved: record store not configured")
	} else if rec, err := u.store.Insert(ctx, p); err != nil {
		slog.Warn("failed to save prediction", "prediction_for", tradingday.Key(p.PredictionFor), "error", err)
	} else {
		p = rec
		saved = true
	}

	slog.Info("prediction issued",
		"source", series.Source,
		"window_end", tradingday.Key(p.WindowEnd),
		"prediction_for", tradingday.Key(p.PredictionFor),
		"last_close", last,
		"predicted_close", predicted,
		"signal", p.Signal,
		"saved", saved,
	)
	u.observer.PredictionIssued(p.Signal, saved)
	return p, nil
}
