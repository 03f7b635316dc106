package performance

import (
	"math"
	"testing"
	"time"

	"FactorBack/internal/domain/models"
)

func anaConfig() models.AnalyzerConfig {
	return models.AnalyzerConfig{PeriodsPerYear: 252}
}

func point(n int, equity float64) models.EquityPoint {
	return models.EquityPoint{
		Date:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n),
		Equity: equity,
	}
}

func almostEqual(a, b, eps float64) bool { return math.Abs(a-b) <= eps }

func TestAnalyzeEmptyCurve(t *testing.T) {
	report, err := New(anaConfig()).Analyze(nil, nil, nil)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if report.TotalReturn.Valid || report.Sharpe.Valid || report.MaxDrawdown.Valid {
		t.Fatalf("empty curve must leave metrics undefined")
	}
	if report.NumTrades != 0 || report.FinalEquity != 0 {
		t.Fatalf("unexpected counters %+v", report)
	}
}

func TestAnalyzeSinglePoint(t *testing.T) {
	curve := []models.EquityPoint{point(0, 100000)}
	report, err := New(anaConfig()).Analyze(curve, nil, nil)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !report.TotalReturn.Valid || report.TotalReturn.Float != 0 {
		t.Fatalf("single point total return should be 0, got %+v", report.TotalReturn)
	}
	if report.AnnualizedVol.Valid || report.Sharpe.Valid {
		t.Fatalf("vol and sharpe need at least 2 returns")
	}
}

func TestAnalyzeRejectsBadConfig(t *testing.T) {
	_, err := New(models.AnalyzerConfig{PeriodsPerYear: 0}).Analyze(nil, nil, nil)
	if _, ok := err.(*models.ConfigurationError); !ok {
		t.Fatalf("want ConfigurationError, got %v", err)
	}
}

func TestTotalAndAnnualizedReturn(t *testing.T) {
	// 252 curve points = 251 returns, just under one year
	curve := make([]models.EquityPoint, 253)
	for i := range curve {
		curve[i] = point(i, 100000*math.Pow(1.001, float64(i)))
	}
	report, err := New(anaConfig()).Analyze(curve, nil, nil)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	wantTotal := math.Pow(1.001, 252) - 1
	if !report.TotalReturn.Valid || !almostEqual(report.TotalReturn.Float, wantTotal, 1e-9) {
		t.Fatalf("total return: want %v, got %+v", wantTotal, report.TotalReturn)
	}
	// exactly one year of periods: annualized equals total
	if !report.AnnualizedReturn.Valid || !almostEqual(report.AnnualizedReturn.Float, wantTotal, 1e-9) {
		t.Fatalf("annualized return: want %v, got %+v", wantTotal, report.AnnualizedReturn)
	}
	// constant returns: zero variance, vol 0, sharpe undefined
	if !report.AnnualizedVol.Valid || !almostEqual(report.AnnualizedVol.Float, 0, 1e-12) {
		t.Fatalf("vol should be 0, got %+v", report.AnnualizedVol)
	}
	if report.Sharpe.Valid {
		t.Fatalf("sharpe undefined at zero vol, got %+v", report.Sharpe)
	}
}

func TestMaxDrawdownDates(t *testing.T) {
	curve := []models.EquityPoint{
		point(0, 100),
		point(1, 120), // peak
		point(2, 90),  // trough: 25% drawdown
		point(3, 110),
		point(4, 105),
	}
	report, err := New(anaConfig()).Analyze(curve, nil, nil)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !report.MaxDrawdown.Valid || !almostEqual(report.MaxDrawdown.Float, 0.25, 1e-12) {
		t.Fatalf("want 25%% drawdown, got %+v", report.MaxDrawdown)
	}
	if !report.DrawdownStart.Equal(curve[1].Date) || !report.DrawdownEnd.Equal(curve[2].Date) {
		t.Fatalf("drawdown window [%v, %v] wrong", report.DrawdownStart, report.DrawdownEnd)
	}
}

func TestMonotoneCurveZeroDrawdown(t *testing.T) {
	curve := []models.EquityPoint{point(0, 100), point(1, 110), point(2, 120)}
	report, err := New(anaConfig()).Analyze(curve, nil, nil)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !report.MaxDrawdown.Valid || report.MaxDrawdown.Float != 0 {
		t.Fatalf("rising curve drawdown should be 0, got %+v", report.MaxDrawdown)
	}
}

func TestAlphaBetaAgainstBenchmark(t *testing.T) {
	// strategy returns = 2 * benchmark + 0.001 exactly
	benchmark := []float64{0.01, -0.02, 0.015, 0.005, -0.01, 0.02}
	curve := make([]models.EquityPoint, len(benchmark)+1)
	curve[0] = point(0, 100000)
	for i, b := range benchmark {
		r := 2*b + 0.001
		curve[i+1] = point(i+1, curve[i].Equity*(1+r))
	}
	report, err := New(anaConfig()).Analyze(curve, nil, benchmark)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !report.Beta.Valid || !almostEqual(report.Beta.Float, 2, 1e-9) {
		t.Fatalf("want beta 2, got %+v", report.Beta)
	}
	if !report.Alpha.Valid || !almostEqual(report.Alpha.Float, 0.001*252, 1e-9) {
		t.Fatalf("want annualized alpha %v, got %+v", 0.001*252, report.Alpha)
	}
	// constant active return: tracking error 0, IR undefined
	if report.InformationRatio.Valid {
		t.Fatalf("IR should be undefined at zero tracking error, got %+v", report.InformationRatio)
	}
}

func TestBenchmarkLengthMismatchLeavesAlphaUndefined(t *testing.T) {
	curve := []models.EquityPoint{point(0, 100), point(1, 101), point(2, 102)}
	report, err := New(anaConfig()).Analyze(curve, nil, []float64{0.01})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if report.Alpha.Valid || report.Beta.Valid || report.InformationRatio.Valid {
		t.Fatalf("mismatched benchmark must leave alpha/beta/IR undefined")
	}
}

func TestWinLossRatio(t *testing.T) {
	trades := []models.Trade{
		{RealizedPnL: models.Undef()},     // open, excluded
		{RealizedPnL: models.Def(100)},    // win
		{RealizedPnL: models.Def(50)},     // win
		{RealizedPnL: models.Def(-20)},    // loss
		{RealizedPnL: models.Def(0)},      // flat, excluded
	}
	curve := []models.EquityPoint{point(0, 100), point(1, 101)}
	report, err := New(anaConfig()).Analyze(curve, trades, nil)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !report.WinLossRatio.Valid || report.WinLossRatio.Float != 2 {
		t.Fatalf("want 2/1, got %+v", report.WinLossRatio)
	}
	if report.NumTrades != len(trades) {
		t.Fatalf("num trades should count all fills")
	}
}

func TestWinLossRatioUndefinedWithoutLosses(t *testing.T) {
	trades := []models.Trade{{RealizedPnL: models.Def(10)}}
	curve := []models.EquityPoint{point(0, 100), point(1, 101)}
	report, err := New(anaConfig()).Analyze(curve, trades, nil)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if report.WinLossRatio.Valid {
		t.Fatalf("no losses: ratio must be undefined, got %+v", report.WinLossRatio)
	}
}

func TestSharpeKnownValue(t *testing.T) {
	// alternating +1%/-1% returns around mean 0
	curve := []models.EquityPoint{point(0, 100)}
	rets := []float64{0.01, -0.01, 0.01, -0.01, 0.01, -0.01}
	for i, r := range rets {
		curve = append(curve, point(i+1, curve[i].Equity*(1+r)))
	}
	cfg := anaConfig()
	cfg.RiskFreeRate = 0
	report, err := New(cfg).Analyze(curve, nil, nil)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !report.Sharpe.Valid {
		t.Fatalf("sharpe should be defined")
	}
	if report.Sharpe.Float > 0.1 || report.Sharpe.Float < -0.1 {
		t.Fatalf("near-zero mean returns should give near-zero sharpe, got %v", report.Sharpe.Float)
	}
}
