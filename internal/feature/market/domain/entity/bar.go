// Package entity defines the domain models for the market feature.
package entity

import (
	"time"

	"ftse_backend/internal/shared/tradingday"
)

// Bar represents one daily OHLCV observation of an index.
// Non-trading days are simply absent from a series; they are never interpolated.
type Bar struct {
	Date   time.Time // Trading date (UTC midnight)
	Open   float64   // Opening price
	High   float64   // Highest price of the session
	Low    float64   // Lowest price of the session
	Close  float64   // Closing price
	Volume float64   // Traded volume (0 when the source does not report it)
}

// Features returns the bar in the forecaster's fixed column order:
// close, high, low, open, volume.
func (b Bar) Features() [5]float64 {
	return [5]float64{b.Close, b.High, b.Low, b.Open, b.Volume}
}

// Series is an ascending, gap-preserving sequence of daily bars for one ticker.
type Series struct {
	Ticker string // Requested ticker (e.g. "^FTSE")
	Source string // Provider that served the data (e.g. "yahoo", "stooq")
	Bars   []Bar
}

// Len returns the number of bars.
func (s Series) Len() int { return len(s.Bars) }

// IndexByDate maps each bar's date key to its position in the series.
func (s Series) IndexByDate() map[string]int {
	out := make(map[string]int, len(s.Bars))
	for i, b := range s.Bars {
		out[tradingday.Key(b.Date)] = i
	}
	return out
}

// CloseByDate maps each bar's date key to its close.
func (s Series) CloseByDate() map[string]float64 {
	out := make(map[string]float64, len(s.Bars))
	for _, b := range s.Bars {
		out[tradingday.Key(b.Date)] = b.Close
	}
	return out
}
