// Package domain defines domain-level errors for the market feature.
package domain

import "errors"

var (
	// ErrNoDataAvailable indicates that no provider returned bars for the requested span.
	ErrNoDataAvailable = errors.New("no market data available")
)
