package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	marketdomain "ftse_backend/internal/feature/market/domain"
	"ftse_backend/internal/feature/signal/domain"
	"ftse_backend/internal/feature/signal/domain/entity"
	"ftse_backend/internal/shared/tradingday"
)

const (
	// PointScanAttempts は指定日から有効な営業日を探す日数です（指定日を含めて15日）。
	PointScanAttempts = 15
	// MaxBatch は1回の処理で読み込むレコード数の上限です。
	MaxBatch = 20000
)

// LedgerParams は保存済み予測のバックテスト条件です。
type LedgerParams struct {
	From   *time.Time
	To     *time.Time
	Window int
	Cost   float64
}

// BacktestUsecase は過去の日足に対して予測とシグナルを再現し、精度と損益を評価します。
type BacktestUsecase struct {
	cfg        Config
	market     MarketRepository
	forecaster Forecaster
	store      PredictionRepository
	observer   Observer
}

// NewBacktestUsecase はBacktestUsecaseの新しいインスタンスを生成します。
func NewBacktestUsecase(cfg Config, market MarketRepository, forecaster Forecaster, store PredictionRepository, observer Observer) *BacktestUsecase {
	return &BacktestUsecase{
		cfg:        cfg.normalized(),
		market:     market,
		forecaster: forecaster,
		store:      store,
		observer:   observerOrNoop(observer),
	}
}

// warmupDays は lookback 営業日を確実に含む暦日数を返します。
func warmupDays(lookback int) int {
	return lookback*7/5 + 14
}

// Point は指定日以降で最初に十分な履歴を持つ営業日を評価します。
// ウィンドウはその日より前の日足だけで構成します。
func (u *BacktestUsecase) Point(ctx context.Context, date time.Time, cost float64) (entity.PointResult, error) {
	if err := ValidateEvaluation(DefaultRollingWindow, cost); err != nil {
		return entity.PointResult{}, err
	}
	target := tradingday.Date(date)
	start := target.AddDate(0, 0, -warmupDays(u.cfg.Lookback))
	end := target.AddDate(0, 0, PointScanAttempts-1)

	series, err := u.market.FetchDaily(ctx, u.cfg.Ticker, start, end)
	if err != nil {
		return entity.PointResult{}, err
	}

	idx := series.IndexByDate()
	resolved, ok := tradingday.ScanForward(target, PointScanAttempts, func(d time.Time) bool {
		i, exists := idx[tradingday.Key(d)]
		return exists && i >= u.cfg.Lookback
	})
	if !ok {
		return entity.PointResult{}, fmt.Errorf("%w: none within %d days of %s", domain.ErrNoValidTradingDay, PointScanAttempts, tradingday.Key(target))
	}

	i := idx[tradingday.Key(resolved)]
	window, err := ExtractWindow(series.Bars, i, u.cfg.Lookback)
	if err != nil {
		return entity.PointResult{}, err
	}
	predicted, err := u.forecaster.Predict(ctx, window)
	if err != nil {
		return entity.PointResult{}, fmt.Errorf("%w: %w", domain.ErrInferenceFailed, err)
	}

	row := NewBacktestRow(resolved, window.LastClose(), predicted, series.Bars[i].Close, u.cfg.BandPct)
	row.TradePoints, row.TradeReturnPct = TradeOutcome(row.Signal, row.PrevClose, row.Actual, cost)
	row.CumPoints, row.CumReturnPct = row.TradePoints, row.TradeReturnPct

	result := entity.PointResult{
		Requested:   target,
		Resolved:    resolved,
		WindowStart: window.Start,
		WindowEnd:   window.End,
		Row:         row,
	}
	if row.PctError != nil {
		result.AccuracyPct = ptr(100 - *row.PctError*100)
	}
	u.observer.BacktestCompleted("point", 1, 0)
	return result, nil
}

// Range は [start, end] 内で lookback 本以上の履歴を持つ全営業日を評価します。
// 推論に失敗した日はログに記録して除外し、評価できた日が0件なら ErrEmptyRange を返します。
func (u *BacktestUsecase) Range(ctx context.Context, start, end time.Time, window int, cost float64) (entity.BacktestReport, error) {
	if err := ValidateEvaluation(window, cost); err != nil {
		return entity.BacktestReport{}, err
	}
	first, last := tradingday.Date(start), tradingday.Date(end)
	if last.Before(first) {
		return entity.BacktestReport{}, fmt.Errorf("%w: end is before start", domain.ErrInvalidArgument)
	}

	series, err := u.market.FetchDaily(ctx, u.cfg.Ticker, first.AddDate(0, 0, -warmupDays(u.cfg.Lookback)), last)
	if err != nil {
		if errors.Is(err, marketdomain.ErrNoDataAvailable) {
			return entity.BacktestReport{}, fmt.Errorf("%w: %w", domain.ErrEmptyRange, err)
		}
		return entity.BacktestReport{}, err
	}

	var (
		rows    []entity.BacktestRow
		skipped []entity.SkippedDay
	)
	for i, bar := range series.Bars {
		if bar.Date.Before(first) || bar.Date.After(last) {
			continue
		}
		w, err := ExtractWindow(series.Bars, i, u.cfg.Lookback)
		if err != nil {
			skipped = append(skipped, entity.SkippedDay{Date: bar.Date, Reason: err.Error()})
			continue
		}
		predicted, err := u.forecaster.Predict(ctx, w)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return entity.BacktestReport{}, ctxErr
			}
			slog.Warn("backtest day skipped", "date", tradingday.Key(bar.Date), "error", err)
			skipped = append(skipped, entity.SkippedDay{Date: bar.Date, Reason: err.Error()})
			continue
		}
		rows = append(rows, NewBacktestRow(bar.Date, w.LastClose(), predicted, bar.Close, u.cfg.BandPct))
	}

	if len(rows) == 0 {
		return entity.BacktestReport{}, fmt.Errorf("%w: %s..%s", domain.ErrEmptyRange, tradingday.Key(first), tradingday.Key(last))
	}

	report := Evaluate(rows, window, cost)
	report.Start, report.End = first, last
	report.Skipped = skipped
	slog.Info("backtest range evaluated", "start", tradingday.Key(first), "end", tradingday.Key(last), "rows", len(rows), "skipped", len(skipped))
	u.observer.BacktestCompleted("range", len(rows), len(skipped))
	return report, nil
}

// Ledger は突合済みの保存レコードを prediction_for 昇順で評価します。
// 対象が0件の場合はエラーではなく件数0のレポートを返します。
func (u *BacktestUsecase) Ledger(ctx context.Context, p LedgerParams) (entity.BacktestReport, error) {
	if err := ValidateEvaluation(p.Window, p.Cost); err != nil {
		return entity.BacktestReport{}, err
	}
	if u.store == nil {
		return entity.BacktestReport{}, fmt.Errorf("%w: not configured", domain.ErrStoreUnavailable)
	}

	recs, err := u.store.List(ctx, entity.PredictionQuery{
		By:        entity.OrderByPredictionFor,
		From:      p.From,
		To:        p.To,
		HasActual: true,
		Limit:     MaxBatch,
	})
	if err != nil {
		return entity.BacktestReport{}, err
	}

	rows := make([]entity.BacktestRow, 0, len(recs))
	for _, rec := range recs {
		if rec.ActualClose == nil {
			continue
		}
		row := entity.BacktestRow{
			ID:        rec.ID,
			Date:      rec.PredictionFor,
			PrevClose: rec.LastClose,
			Predicted: rec.PredictedClose,
			Actual:    *rec.ActualClose,
			Direction: rec.Direction,
			BandLower: rec.BandLower,
			BandUpper: rec.BandUpper,
			Signal:    rec.Signal,
		}
		fillErrors(&row)
		rows = append(rows, row)
	}

	report := Evaluate(rows, p.Window, p.Cost)
	if p.From != nil {
		report.Start = tradingday.Date(*p.From)
	}
	if p.To != nil {
		report.End = tradingday.Date(*p.To)
	}
	u.observer.BacktestCompleted("ledger", len(rows), 0)
	return report, nil
}
