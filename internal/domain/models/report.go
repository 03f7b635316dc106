package models

import "time"

// PerformanceReport carries risk-adjusted statistics for one run.
// Metrics lacking sufficient data stay undefined and are omitted from
// ToMap output rather than reported as zero.
type PerformanceReport struct {
	TotalReturn      Value
	AnnualizedReturn Value
	AnnualizedVol    Value
	Sharpe           Value
	MaxDrawdown      Value
	Alpha            Value
	Beta             Value
	InformationRatio Value
	WinLossRatio     Value

	DrawdownStart time.Time
	DrawdownEnd   time.Time

	NumTrades   int
	FinalEquity float64
}

// ToMap returns the defined metrics keyed by name, for printing and
// plotting collaborators.
func (r *PerformanceReport) ToMap() map[string]float64 {
	out := make(map[string]float64)
	put := func(name string, v Value) {
		if v.Valid {
			out[name] = v.Float
		}
	}
	put("total_return", r.TotalReturn)
	put("annualized_return", r.AnnualizedReturn)
	put("annualized_volatility", r.AnnualizedVol)
	put("sharpe_ratio", r.Sharpe)
	put("max_drawdown", r.MaxDrawdown)
	put("alpha", r.Alpha)
	put("beta", r.Beta)
	put("information_ratio", r.InformationRatio)
	put("win_loss_ratio", r.WinLossRatio)
	return out
}
