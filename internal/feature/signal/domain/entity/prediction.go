package entity

import "time"

// Prediction is one issued signal as persisted in the record store.
// The reconciliation fields stay nil until the target date's close is known.
type Prediction struct {
	ID          string    // assigned by the store; empty when not persisted
	GeneratedAt time.Time // assigned by the store; zero when not persisted
	UserID      string    // owner of the record; empty for system-issued predictions

	WindowStart   time.Time
	WindowEnd     time.Time
	PredictionFor time.Time

	LastClose      *float64
	PredictedClose *float64
	Direction      Direction
	BandLower      float64
	BandUpper      float64
	Signal         Signal
	ModelVersion   string
	ScalerVersion  string
	TickerUsed     string

	Reconciliation
}

// Reconciliation holds the realized outcome of a prediction.
// The fields are always written together.
type Reconciliation struct {
	ActualClose  *float64
	AbsError     *float64
	PctError     *float64
	DirectionHit *bool
}

// IsReconciled reports whether an actual close has been attached.
func (p Prediction) IsReconciled() bool { return p.ActualClose != nil }

// PredictionPatch is a single atomic update of a prediction.
// All four reconciliation columns are written, nil values clearing them.
// PredictionFor is only written when non-nil.
type PredictionPatch struct {
	PredictionFor *time.Time
	Reconciliation
}

// OrderBy names a column predictions can be sorted and range-filtered by.
type OrderBy string

const (
	OrderByGeneratedAt   OrderBy = "generated_at"
	OrderByPredictionFor OrderBy = "prediction_for"
	OrderByWindowEnd     OrderBy = "window_end"
)

// Valid reports whether o names a known column.
func (o OrderBy) Valid() bool {
	switch o {
	case OrderByGeneratedAt, OrderByPredictionFor, OrderByWindowEnd:
		return true
	}
	return false
}

// PredictionQuery filters, orders and pages a listing of predictions.
// From and To are inclusive bounds on the By column.
type PredictionQuery struct {
	UserID        string // empty matches every owner
	By            OrderBy
	Desc          bool
	From          *time.Time
	To            *time.Time
	MissingActual bool // only rows without actual_close
	HasActual     bool // only rows with actual_close
	Limit         int
	Offset        int
}
