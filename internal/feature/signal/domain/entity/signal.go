// Package entity defines the domain models for the signal feature.
package entity

// Direction is the predicted movement of the close relative to the last observed close.
type Direction string

const (
	DirectionUp   Direction = "UP"
	DirectionDown Direction = "DOWN"
)

// Signal is the discrete trade decision derived from a prediction.
type Signal string

const (
	SignalLong    Signal = "LONG"
	SignalShort   Signal = "SHORT"
	SignalNoTrade Signal = "NO_TRADE"
)

// Side returns +1 for LONG, -1 for SHORT and 0 otherwise.
func (s Signal) Side() float64 {
	switch s {
	case SignalLong:
		return 1
	case SignalShort:
		return -1
	default:
		return 0
	}
}

// Derivation is the outcome of turning (last_close, predicted_close) into a trade decision.
type Derivation struct {
	Direction Direction
	BandLower float64
	BandUpper float64
	Signal    Signal
}
