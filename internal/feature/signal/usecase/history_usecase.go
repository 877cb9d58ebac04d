package usecase

import (
	"context"
	"fmt"
	"time"

	"ftse_backend/internal/feature/signal/domain"
	"ftse_backend/internal/feature/signal/domain/entity"
)

const (
	// DefaultHistoryLimit は履歴一覧のデフォルト件数です。
	DefaultHistoryLimit = 50
	// MaxHistoryLimit は履歴一覧の最大件数です。
	MaxHistoryLimit = 500
)

// HistoryQuery は履歴一覧の条件です。
type HistoryQuery struct {
	UserID string
	By     entity.OrderBy // generated_at または prediction_for
	Desc   bool
	Start  *time.Time
	End    *time.Time
	Limit  int
	Offset int
}

// HistoryUsecase は保存済み予測の参照を提供します。
type HistoryUsecase struct {
	store PredictionRepository
}

// NewHistoryUsecase はHistoryUsecaseの新しいインスタンスを生成します。
func NewHistoryUsecase(store PredictionRepository) *HistoryUsecase {
	return &HistoryUsecase{store: store}
}

// List は条件に合う予測を返します。並び順の列が不正な場合は generated_at を使います。
func (u *HistoryUsecase) List(ctx context.Context, q HistoryQuery) ([]entity.Prediction, error) {
	if u.store == nil {
		return nil, fmt.Errorf("%w: not configured", domain.ErrStoreUnavailable)
	}
	if q.Limit == 0 {
		q.Limit = DefaultHistoryLimit
	}
	if q.Limit < 1 || q.Limit > MaxHistoryLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", domain.ErrInvalidArgument, MaxHistoryLimit)
	}
	if q.Offset < 0 {
		return nil, fmt.Errorf("%w: offset must not be negative", domain.ErrInvalidArgument)
	}
	by := q.By
	if by != entity.OrderByGeneratedAt && by != entity.OrderByPredictionFor {
		by = entity.OrderByGeneratedAt
	}

	return u.store.List(ctx, entity.PredictionQuery{
		UserID: q.UserID,
		By:     by,
		Desc:   q.Desc,
		From:   q.Start,
		To:     q.End,
		Limit:  q.Limit,
		Offset: q.Offset,
	})
}

// Get はIDで予測を1件返します。
func (u *HistoryUsecase) Get(ctx context.Context, userID, id string) (entity.Prediction, error) {
	if u.store == nil {
		return entity.Prediction{}, fmt.Errorf("%w: not configured", domain.ErrStoreUnavailable)
	}
	return u.store.FindByID(ctx, id, userID)
}
