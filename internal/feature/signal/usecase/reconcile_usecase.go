package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	marketdomain "ftse_backend/internal/feature/market/domain"
	marketusecase "ftse_backend/internal/feature/market/usecase"
	"ftse_backend/internal/feature/signal/domain"
	"ftse_backend/internal/feature/signal/domain/entity"
	"ftse_backend/internal/shared/tradingday"
)

const (
	// ReconcileRollForward は実績終値を探す日数です（prediction_for を含めて4日）。
	ReconcileRollForward = 4
	// DefaultDaysBack は実績終値のために取得する日足の日数（暦日）です。
	DefaultDaysBack = 730
	MinDaysBack     = 7
	MaxDaysBack     = 3650
	// DefaultBatchLimit は1回に処理するレコード数のデフォルトです。
	DefaultBatchLimit = 5000

	// NoRowsReason は対象レコードがない場合に返す理由です。
	NoRowsReason = "no rows to reconcile"
)

// ReconcileParams は突合の条件です。
type ReconcileParams struct {
	UserID   string // 空の場合は全ユーザーのレコードが対象
	Force    bool   // actual_close が埋まっているレコードも再計算する
	DaysBack int
	Limit    int
}

// ReconcileResult は突合の件数です。
type ReconcileResult struct {
	Updated int
	Skipped int
	Reason  string
}

// RepairResult は prediction_for 修復の件数です。
type RepairResult struct {
	Fixed   int
	Skipped int
}

// ReconcileUsecase は保存済み予測に実績終値を突き合わせます。
// Repair と Reconcile は同じ行を読み書きするため、同時には実行しません。
type ReconcileUsecase struct {
	cfg      Config
	market   MarketRepository
	store    PredictionRepository
	observer Observer
	now      func() time.Time

	mu sync.Mutex
}

// NewReconcileUsecase はReconcileUsecaseの新しいインスタンスを生成します。
func NewReconcileUsecase(cfg Config, market MarketRepository, store PredictionRepository, observer Observer) *ReconcileUsecase {
	return &ReconcileUsecase{
		cfg:      cfg.normalized(),
		market:   market,
		store:    store,
		observer: observerOrNoop(observer),
		now:      time.Now,
	}
}

// ComputeReconciliation は実績終値から誤差と方向一致を計算します。
// predictedClose がなければ誤差は nil、lastClose と predictedClose の両方がなければ方向一致は nil です。
func ComputeReconciliation(lastClose, predictedClose *float64, actualClose float64) entity.Reconciliation {
	r := entity.Reconciliation{ActualClose: ptr(actualClose)}
	if predictedClose != nil {
		abs := math.Abs(*predictedClose - actualClose)
		r.AbsError = ptr(abs)
		if actualClose != 0 {
			r.PctError = ptr(abs / actualClose)
		}
	}
	if lastClose != nil && predictedClose != nil {
		r.DirectionHit = ptr(DirectionHit(*lastClose, *predictedClose, actualClose))
	}
	return r
}

func clampLimit(limit int) (int, error) {
	if limit == 0 {
		return DefaultBatchLimit, nil
	}
	if limit < 1 || limit > MaxBatch {
		return 0, fmt.Errorf("%w: limit must be between 1 and %d", domain.ErrInvalidArgument, MaxBatch)
	}
	return limit, nil
}

// Repair は prediction_for が window_end と同じ日になっているレコードを翌営業日に付け替え、
// 再突合のために実績関連の4項目を空に戻します。それ以外のレコードはスキップとして数えます。
func (u *ReconcileUsecase) Repair(ctx context.Context, userID string, limit int) (RepairResult, error) {
	limit, err := clampLimit(limit)
	if err != nil {
		return RepairResult{}, err
	}
	if u.store == nil {
		return RepairResult{}, fmt.Errorf("%w: not configured", domain.ErrStoreUnavailable)
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	recs, err := u.store.List(ctx, entity.PredictionQuery{
		UserID: userID,
		By:     entity.OrderByWindowEnd,
		Limit:  limit,
	})
	if err != nil {
		return RepairResult{}, err
	}

	var res RepairResult
	for _, rec := range recs {
		if rec.ID == "" || rec.WindowEnd.IsZero() || !tradingday.Date(rec.PredictionFor).Equal(tradingday.Date(rec.WindowEnd)) {
			res.Skipped++
			continue
		}
		next := tradingday.Next(rec.WindowEnd)
		if err := u.store.Update(ctx, rec.ID, entity.PredictionPatch{PredictionFor: &next}); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return res, ctxErr
			}
			slog.Error("failed to repair prediction_for", "id", rec.ID, "error", err)
			res.Skipped++
			continue
		}
		res.Fixed++
	}

	slog.Info("prediction_for repair finished", "fixed", res.Fixed, "skipped", res.Skipped)
	u.observer.ReconcileCompleted("repair", res.Fixed, res.Skipped)
	return res, nil
}

// Reconcile は actual_close が未設定（force の場合は全件）のレコードに実績終値を設定します。
// prediction_for に終値がなければ最大4日先まで探し、見つからないレコードはスキップします。
func (u *ReconcileUsecase) Reconcile(ctx context.Context, p ReconcileParams) (ReconcileResult, error) {
	limit, err := clampLimit(p.Limit)
	if err != nil {
		return ReconcileResult{}, err
	}
	daysBack := p.DaysBack
	if daysBack == 0 {
		daysBack = DefaultDaysBack
	}
	if daysBack < MinDaysBack || daysBack > MaxDaysBack {
		return ReconcileResult{}, fmt.Errorf("%w: days_back must be between %d and %d", domain.ErrInvalidArgument, MinDaysBack, MaxDaysBack)
	}
	if u.store == nil {
		return ReconcileResult{}, fmt.Errorf("%w: not configured", domain.ErrStoreUnavailable)
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	recs, err := u.store.List(ctx, entity.PredictionQuery{
		UserID:        p.UserID,
		By:            entity.OrderByPredictionFor,
		MissingActual: !p.Force,
		Limit:         limit,
	})
	if err != nil {
		return ReconcileResult{}, err
	}
	if len(recs) == 0 {
		return ReconcileResult{Reason: NoRowsReason}, nil
	}

	start, end := marketusecase.TrailingRange(u.now(), daysBack)
	series, err := u.market.FetchDaily(ctx, u.cfg.Ticker, start, end)
	if err != nil {
		return ReconcileResult{}, err
	}
	if len(series.Bars) == 0 {
		return ReconcileResult{}, fmt.Errorf("%w: %s", marketdomain.ErrNoDataAvailable, u.cfg.Ticker)
	}
	closes := series.CloseByDate()

	var res ReconcileResult
	for _, rec := range recs {
		if rec.ID == "" || rec.PredictionFor.IsZero() {
			res.Skipped++
			continue
		}
		actual, _, ok := tradingday.RollForward(closes, rec.PredictionFor, ReconcileRollForward)
		if !ok {
			res.Skipped++
			continue
		}
		patch := entity.PredictionPatch{
			Reconciliation: ComputeReconciliation(rec.LastClose, rec.PredictedClose, actual),
		}
		if err := u.store.Update(ctx, rec.ID, patch); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return res, ctxErr
			}
			slog.Error("failed to reconcile prediction", "id", rec.ID, "error", err)
			res.Skipped++
			continue
		}
		res.Updated++
	}

	slog.Info("reconcile finished", "updated", res.Updated, "skipped", res.Skipped, "force", p.Force)
	u.observer.ReconcileCompleted("reconcile", res.Updated, res.Skipped)
	return res, nil
}
