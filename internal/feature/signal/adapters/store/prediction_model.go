package store

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"ftse_backend/internal/feature/signal/domain/entity"
	"ftse_backend/internal/shared/tradingday"
)

// PredictionModel is the GORM model for the predictions table.
type PredictionModel struct {
	ID          string    `gorm:"primaryKey;type:uuid"`
	GeneratedAt time.Time `gorm:"not null;index"`
	UserID      string    `gorm:"size:64;index"`

	WindowStart   time.Time `gorm:"type:date;not null"`
	WindowEnd     time.Time `gorm:"type:date;not null;index"`
	PredictionFor time.Time `gorm:"type:date;not null;index"`

	LastClose      *float64
	PredictedClose *float64
	DirectionPred  string  `gorm:"size:8;not null"`
	BandLower      float64 `gorm:"not null"`
	BandUpper      float64 `gorm:"not null"`
	Signal         string  `gorm:"size:16;not null"`
	ModelVersion   string  `gorm:"size:64"`
	ScalerVersion  string  `gorm:"size:64"`
	TickerUsed     string  `gorm:"size:32"`

	ActualClose  *float64
	AbsError     *float64
	PctError     *float64
	DirectionHit *bool
}

// TableName returns the table name for GORM.
func (PredictionModel) TableName() string {
	return "predictions"
}

// BeforeCreate assigns a random UUID when the id is empty.
func (m *PredictionModel) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// ToEntity converts the GORM model to a domain entity.
func (m *PredictionModel) ToEntity() entity.Prediction {
	return entity.Prediction{
		ID:             m.ID,
		GeneratedAt:    m.GeneratedAt,
		UserID:         m.UserID,
		WindowStart:    tradingday.Date(m.WindowStart),
		WindowEnd:      tradingday.Date(m.WindowEnd),
		PredictionFor:  tradingday.Date(m.PredictionFor),
		LastClose:      m.LastClose,
		PredictedClose: m.PredictedClose,
		Direction:      entity.Direction(m.DirectionPred),
		BandLower:      m.BandLower,
		BandUpper:      m.BandUpper,
		Signal:         entity.Signal(m.Signal),
		ModelVersion:   m.ModelVersion,
		ScalerVersion:  m.ScalerVersion,
		TickerUsed:     m.TickerUsed,
		Reconciliation: entity.Reconciliation{
			ActualClose:  m.ActualClose,
			AbsError:     m.AbsError,
			PctError:     m.PctError,
			DirectionHit: m.DirectionHit,
		},
	}
}

// PredictionModelFromEntity converts a domain entity to a GORM model.
func PredictionModelFromEntity(p entity.Prediction) *PredictionModel {
	return &PredictionModel{
		ID:             p.ID,
		GeneratedAt:    p.GeneratedAt,
		UserID:         p.UserID,
		WindowStart:    tradingday.Date(p.WindowStart),
		WindowEnd:      tradingday.Date(p.WindowEnd),
		PredictionFor:  tradingday.Date(p.PredictionFor),
		LastClose:      p.LastClose,
		PredictedClose: p.PredictedClose,
		DirectionPred:  string(p.Direction),
		BandLower:      p.BandLower,
		BandUpper:      p.BandUpper,
		Signal:         string(p.Signal),
		ModelVersion:   p.ModelVersion,
		ScalerVersion:  p.ScalerVersion,
		TickerUsed:     p.TickerUsed,
		ActualClose:    p.ActualClose,
		AbsError:       p.AbsError,
		PctError:       p.PctError,
		DirectionHit:   p.DirectionHit,
	}
}

// patchColumns は1回の UPDATE で書き込む列を返します。
// 実績関連の4列は常に含め、nil は NULL として書き込みます。
func patchColumns(patch entity.PredictionPatch) map[string]any {
	cols := map[string]any{
		"actual_close":  patch.ActualClose,
		"abs_error":     patch.AbsError,
		"pct_error":     patch.PctError,
		"direction_hit": patch.DirectionHit,
	}
	if patch.PredictionFor != nil {
		cols["prediction_for"] = tradingday.Date(*patch.PredictionFor)
	}
	return cols
}
