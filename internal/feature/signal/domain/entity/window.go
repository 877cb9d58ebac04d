package entity

import "time"

// FeatureColumns is the fixed column order of a feature row.
var FeatureColumns = [5]string{"close", "high", "low", "open", "volume"}

// FeatureWindow is the lookback slice of bars fed to the forecaster,
// each bar reduced to its five features in FeatureColumns order.
type FeatureWindow struct {
	Start time.Time
	End   time.Time
	Rows  [][5]float64
}

// Len returns the number of rows.
func (w FeatureWindow) Len() int { return len(w.Rows) }

// LastClose returns the close of the most recent row.
func (w FeatureWindow) LastClose() float64 {
	if len(w.Rows) == 0 {
		return 0
	}
	return w.Rows[len(w.Rows)-1][0]
}
