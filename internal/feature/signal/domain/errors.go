// Package domain defines domain-level errors for the signal feature.
package domain

import "errors"

var (
	// ErrInsufficientHistory indicates fewer than lookback bars precede the evaluation date.
	ErrInsufficientHistory = errors.New("insufficient history")

	// ErrNoValidTradingDay indicates no trading day with enough history exists within the scan horizon.
	ErrNoValidTradingDay = errors.New("no valid trading day")

	// ErrEmptyRange indicates a backtest range produced zero qualifying rows.
	ErrEmptyRange = errors.New("empty backtest range")

	// ErrInferenceFailed indicates the forecasting oracle could not produce a prediction.
	ErrInferenceFailed = errors.New("inference failed")

	// ErrStoreUnavailable indicates the record store could not be reached.
	ErrStoreUnavailable = errors.New("record store unavailable")

	// ErrStoreRequestFailed indicates the record store rejected a request.
	ErrStoreRequestFailed = errors.New("record store request failed")

	// ErrInvalidArgument indicates a request parameter is out of its accepted range.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrPredictionNotFound indicates no prediction exists for the given id.
	ErrPredictionNotFound = errors.New("prediction not found")
)
