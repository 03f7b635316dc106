package models

import "time"

// Value is a float that may be undefined when history is insufficient.
// Undefined values propagate; they are never coerced to zero.
type Value struct {
	Float float64
	Valid bool
}

// Def wraps a defined value.
func Def(f float64) Value { return Value{Float: f, Valid: true} }

// Undef returns the undefined marker.
func Undef() Value { return Value{} }

// FactorNames lists the six momentum factors in canonical order.
var FactorNames = [6]string{
	"price_momentum",
	"volume_momentum",
	"rsi",
	"macd",
	"roc",
	"bollinger_position",
}

// FactorVector holds the six momentum factors for one symbol at one date.
// Every component is computed only from bars at or before Date.
type FactorVector struct {
	Symbol string
	Date   time.Time

	PriceMomentum  Value
	VolumeMomentum Value
	RSI            Value
	MACD           Value
	ROC            Value
	BollingerPos   Value

	// MACDSignal carries the signal line so policies can vote on the
	// crossover state instead of the raw MACD sign.
	MACDSignal Value
}

// Values returns the six factors in FactorNames order.
func (v FactorVector) Values() [6]Value {
	return [6]Value{v.PriceMomentum, v.VolumeMomentum, v.RSI, v.MACD, v.ROC, v.BollingerPos}
}

// DefinedCount reports how many of the six factors are defined.
func (v FactorVector) DefinedCount() int {
	n := 0
	for _, f := range v.Values() {
		if f.Valid {
			n++
		}
	}
	return n
}
