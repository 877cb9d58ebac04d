package entity

import "time"

// BacktestRow is one evaluated day. It exists only for the duration of a single evaluation.
// PrevClose and Predicted may be nil for stored rows written before those columns were filled.
type BacktestRow struct {
	ID        string // prediction id for stored-ledger rows
	Date      time.Time
	PrevClose *float64
	Predicted *float64
	Actual    float64

	Direction    Direction
	BandLower    float64
	BandUpper    float64
	Signal       Signal
	Error        *float64 // predicted - actual
	AbsError     *float64
	PctError     *float64 // |error| / |actual|; nil when actual is zero
	DirectionHit *bool

	TradePoints    float64
	TradeReturnPct float64
	CumPoints      float64
	CumReturnPct   float64
}

// BacktestSummary aggregates a set of rows. Metrics without any contributing row are nil.
type BacktestSummary struct {
	Count                  int
	ExecutedTrades         int
	MAE                    *float64
	RMSE                   *float64
	MAPEPct                *float64
	AvgAccuracyPct         *float64
	DirectionalAccuracyPct *float64
	NaiveMAE               *float64
	NaiveRMSE              *float64
	TotalPoints            float64
	TotalReturnPct         float64
	Cost                   float64
	Window                 int
}

// SkippedDay records a day the range evaluation could not produce a row for.
type SkippedDay struct {
	Date   time.Time
	Reason string
}

// BacktestReport is the result of a range or stored-ledger evaluation.
// The rolling series have one entry per row.
type BacktestReport struct {
	Start              time.Time
	End                time.Time
	Rows               []BacktestRow
	RollingAccuracyPct []*float64
	RollingRMSE        []*float64
	Summary            BacktestSummary
	Skipped            []SkippedDay
}

// PointResult is the evaluation of a single target date.
type PointResult struct {
	Requested   time.Time
	Resolved    time.Time
	WindowStart time.Time
	WindowEnd   time.Time
	Row         BacktestRow
	AccuracyPct *float64 // 100 - percentage error
}
