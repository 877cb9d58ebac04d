// Package store は予測レコードの永続化（gorm / PostgreSQL）を提供します。
package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ftse_backend/internal/feature/signal/domain"
	"ftse_backend/internal/feature/signal/domain/entity"
	"ftse_backend/internal/feature/signal/usecase"
	"ftse_backend/internal/shared/tradingday"
)

// predictionStore is a gorm implementation of the PredictionRepository interface.
type predictionStore struct {
	db  *gorm.DB
	now func() time.Time
}

// Compile-time check to ensure predictionStore implements PredictionRepository.
var _ usecase.PredictionRepository = (*predictionStore)(nil)

// NewPredictionStore creates a new instance of predictionStore.
func NewPredictionStore(db *gorm.DB) *predictionStore {
	return &predictionStore{db: db, now: time.Now}
}

// Insert persists a prediction and returns it with its id and generated_at assigned.
func (r *predictionStore) Insert(ctx context.Context, p entity.Prediction) (entity.Prediction, error) {
	m := PredictionModelFromEntity(p)
	m.ID = ""
	m.GeneratedAt = r.now().UTC()
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return entity.Prediction{}, classify(err)
	}
	return m.ToEntity(), nil
}

// List returns predictions matching the query.
func (r *predictionStore) List(ctx context.Context, q entity.PredictionQuery) ([]entity.Prediction, error) {
	by := q.By
	if !by.Valid() {
		by = entity.OrderByGeneratedAt
	}
	col := string(by)

	tx := r.db.WithContext(ctx).Model(&PredictionModel{})
	if q.UserID != "" {
		tx = tx.Where("user_id = ?", q.UserID)
	}
	if q.From != nil {
		tx = tx.Where(col+" >= ?", tradingday.Date(*q.From))
	}
	if q.To != nil {
		if by == entity.OrderByGeneratedAt {
			// generated_at は時刻を持つため、終了日の翌日0時より前を対象にする
			tx = tx.Where(col+" < ?", tradingday.Date(*q.To).AddDate(0, 0, 1))
		} else {
			tx = tx.Where(col+" <= ?", tradingday.Date(*q.To))
		}
	}
	switch {
	case q.MissingActual:
		tx = tx.Where("actual_close IS NULL")
	case q.HasActual:
		tx = tx.Where("actual_close IS NOT NULL")
	}
	tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: q.Desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}})
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	if q.Offset > 0 {
		tx = tx.Offset(q.Offset)
	}

	var models []PredictionModel
	if err := tx.Find(&models).Error; err != nil {
		return nil, classify(err)
	}
	out := make([]entity.Prediction, len(models))
	for i := range models {
		out[i] = models[i].ToEntity()
	}
	return out, nil
}

// FindByID retrieves a prediction by id. A non-empty userID must also match the owner.
func (r *predictionStore) FindByID(ctx context.Context, id, userID string) (entity.Prediction, error) {
	if _, err := uuid.Parse(id); err != nil {
		return entity.Prediction{}, fmt.Errorf("%w: %s", domain.ErrPredictionNotFound, id)
	}
	tx := r.db.WithContext(ctx).Where("id = ?", id)
	if userID != "" {
		tx = tx.Where("user_id = ?", userID)
	}
	var m PredictionModel
	if err := tx.First(&m).Error; err != nil {
		return entity.Prediction{}, classify(err)
	}
	return m.ToEntity(), nil
}

// Update applies the patch in a single UPDATE statement.
func (r *predictionStore) Update(ctx context.Context, id string, patch entity.PredictionPatch) error {
	result := r.db.WithContext(ctx).
		Model(&PredictionModel{}).
		Where("id = ?", id).
		Updates(patchColumns(patch))
	if result.Error != nil {
		return classify(result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", domain.ErrPredictionNotFound, id)
	}
	return nil
}

// Ping checks that the database connection is alive.
func (r *predictionStore) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// classify はドライバのエラーをドメインのエラーに分類します。
// 接続できない場合は ErrStoreUnavailable、SQL が拒否された場合は ErrStoreRequestFailed です。
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %w", domain.ErrPredictionNotFound, err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%w: %s (%s)", domain.ErrStoreRequestFailed, pgErr.Message, pgErr.Code)
	}
	var connErr *pgconn.ConnectError
	var netErr net.Error
	if errors.As(err, &connErr) || errors.As(err, &netErr) || errors.Is(err, driver.ErrBadConn) {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%w: %w", domain.ErrStoreRequestFailed, err)
}
