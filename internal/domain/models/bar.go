package models

import "time"

// Bar represents one OHLCV record for a symbol.
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// MarketSeries is an ordered, read-only OHLCV history for one symbol.
// Bars must be strictly increasing by date with no duplicates.
type MarketSeries struct {
	Symbol string
	Bars   []Bar
}

// Validate checks series integrity before any downstream computation.
// A failing series is rejected as a whole; it is never silently repaired.
func (s *MarketSeries) Validate() error {
	if s.Symbol == "" {
		return NewDataIntegrityError(s.Symbol, "symbol is empty")
	}
	if len(s.Bars) == 0 {
		return NewDataIntegrityError(s.Symbol, "series has no bars")
	}
	for i, b := range s.Bars {
		if b.Date.IsZero() {
			return NewDataIntegrityError(s.Symbol, "bar %d has zero date", i)
		}
		if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 {
			return NewDataIntegrityError(s.Symbol, "bar %d (%s) has non-positive price", i, b.Date.Format("2006-01-02"))
		}
		if b.Volume < 0 {
			return NewDataIntegrityError(s.Symbol, "bar %d (%s) has negative volume", i, b.Date.Format("2006-01-02"))
		}
		if i > 0 && !s.Bars[i-1].Date.Before(b.Date) {
			return NewDataIntegrityError(s.Symbol, "dates not strictly increasing at bar %d (%s)", i, b.Date.Format("2006-01-02"))
		}
	}
	return nil
}

// Closes returns the close price series in bar order.
func (s *MarketSeries) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Volumes returns the volume series in bar order.
func (s *MarketSeries) Volumes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Volume
	}
	return out
}
