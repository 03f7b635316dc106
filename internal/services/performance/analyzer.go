package performance

import (
	"math"
	"time"

	"FactorBack/internal/domain/models"
)

// Analyzer computes risk-adjusted statistics from an equity curve and
// trade log. Every metric is derived deterministically from the curve's
// return series; metrics without enough data stay undefined instead of
// collapsing to zero.
type Analyzer struct {
	cfg models.AnalyzerConfig
}

func New(cfg models.AnalyzerConfig) *Analyzer {
	return &Analyzer{cfg: cfg}
}

// Analyze builds a report for the run. benchmark is the benchmark's
// per-period return series aligned to the curve's returns; pass nil
// when no benchmark is configured. A benchmark of mismatched length
// leaves alpha, beta, and information ratio undefined.
func (a *Analyzer) Analyze(curve []models.EquityPoint, trades []models.Trade, benchmark []float64) (*models.PerformanceReport, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}

	report := &models.PerformanceReport{NumTrades: len(trades)}
	if len(curve) == 0 {
		return report, nil
	}
	report.FinalEquity = curve[len(curve)-1].Equity

	first := curve[0].Equity
	last := curve[len(curve)-1].Equity
	if first > 0 {
		report.TotalReturn = models.Def(last/first - 1)
	}

	returns := curveReturns(curve)
	ppy := float64(a.cfg.PeriodsPerYear)

	if len(curve) > 1 && first > 0 {
		years := float64(len(curve)-1) / ppy
		if years > 0 && last > 0 {
			report.AnnualizedReturn = models.Def(math.Pow(last/first, 1/years) - 1)
		}
	}

	if len(returns) >= 2 {
		vol := stddev(returns) * math.Sqrt(ppy)
		report.AnnualizedVol = models.Def(vol)
		if vol > 0 {
			excess := mean(returns)*ppy - a.cfg.RiskFreeRate
			report.Sharpe = models.Def(excess / vol)
		}
	}

	dd, ddStart, ddEnd := maxDrawdown(curve)
	if dd.Valid {
		report.MaxDrawdown = dd
		report.DrawdownStart = ddStart
		report.DrawdownEnd = ddEnd
	}

	if len(benchmark) > 0 && len(benchmark) == len(returns) && len(returns) >= 2 {
		alpha, beta, ok := regress(returns, benchmark)
		if ok {
			report.Alpha = models.Def(alpha * ppy)
			report.Beta = models.Def(beta)
		}

		active := make([]float64, len(returns))
		for i := range returns {
			active[i] = returns[i] - benchmark[i]
		}
		te := stddev(active) * math.Sqrt(ppy)
		if te > 0 {
			report.InformationRatio = models.Def(mean(active) * ppy / te)
		}
	}

	report.WinLossRatio = winLossRatio(trades)
	return report, nil
}

// curveReturns derives the per-period simple return series.
func curveReturns(curve []models.EquityPoint) []float64 {
	if len(curve) < 2 {
		return nil
	}
	out := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Equity
		if prev == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, curve[i].Equity/prev-1)
	}
	return out
}

// maxDrawdown finds the largest peak-to-trough decline as a fraction of
// the peak, with the dates bounding it.
func maxDrawdown(curve []models.EquityPoint) (models.Value, time.Time, time.Time) {
	if len(curve) == 0 {
		return models.Undef(), time.Time{}, time.Time{}
	}
	peak := curve[0].Equity
	peakDate := curve[0].Date
	worst := 0.0
	var start, end time.Time
	for _, pt := range curve {
		if pt.Equity > peak {
			peak = pt.Equity
			peakDate = pt.Date
		}
		if peak <= 0 {
			continue
		}
		dd := (peak - pt.Equity) / peak
		if dd > worst {
			worst = dd
			start = peakDate
			end = pt.Date
		}
	}
	return models.Def(worst), start, end
}

// winLossRatio counts profitable vs losing closing trades. Fills
// without realized P&L (opens) and flat trades are excluded; the ratio
// is undefined when there are no losing trades to divide by.
func winLossRatio(trades []models.Trade) models.Value {
	wins, losses := 0, 0
	for _, t := range trades {
		if !t.RealizedPnL.Valid || t.RealizedPnL.Float == 0 {
			continue
		}
		if t.RealizedPnL.Float > 0 {
			wins++
		} else {
			losses++
		}
	}
	if losses == 0 {
		return models.Undef()
	}
	return models.Def(float64(wins) / float64(losses))
}

// regress fits strategy returns on benchmark returns by ordinary least
// squares; ok is false when the benchmark has no variance.
func regress(y, x []float64) (alpha, beta float64, ok bool) {
	n := float64(len(x))
	mx := mean(x)
	my := mean(y)
	var sxx, sxy float64
	for i := range x {
		dx := x[i] - mx
		sxx += dx * dx
		sxy += dx * (y[i] - my)
	}
	if sxx == 0 || n < 2 {
		return 0, 0, false
	}
	beta = sxy / sxx
	alpha = my - beta*mx
	return alpha, beta, true
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func stddev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	var sum2 float64
	for _, x := range xs {
		d := x - m
		sum2 += d * d
	}
	return math.Sqrt(sum2 / float64(len(xs)-1))
}
