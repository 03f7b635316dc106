package simulator

import (
	"math"
	"testing"
	"time"

	"FactorBack/internal/domain/models"
)

func simConfig() models.SimulationConfig {
	return models.SimulationConfig{
		InitialCapital: 100000,
		PriceField:     models.PriceFieldOpen,
		FeeModel:       models.FeeNone,
		Rebalance:      models.RebalanceDaily,
		MinTradeWeight: 0.01,
	}
}

func day(n int) time.Time {
	return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

// flatBars builds n bars at a constant price.
func flatBars(symbol string, n int, price float64) *models.MarketSeries {
	s := &models.MarketSeries{Symbol: symbol}
	for i := 0; i < n; i++ {
		s.Bars = append(s.Bars, models.Bar{
			Date: day(i), Open: price, High: price, Low: price, Close: price, Volume: 1000,
		})
	}
	return s
}

func signalAt(symbol string, n int, w models.Value) models.Signal {
	return models.Signal{Symbol: symbol, Date: day(n), Weight: w}
}

func TestRunEmptySeriesMap(t *testing.T) {
	_, err := New(simConfig()).Run(map[string]*models.MarketSeries{}, nil)
	if err == nil {
		t.Fatalf("expected error on empty series map")
	}
	if _, ok := err.(*models.DataIntegrityError); !ok {
		t.Fatalf("want DataIntegrityError, got %T", err)
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	cfg := simConfig()
	cfg.PriceField = "vwap"
	_, err := New(cfg).Run(map[string]*models.MarketSeries{"A": flatBars("A", 5, 10)}, nil)
	if _, ok := err.(*models.ConfigurationError); !ok {
		t.Fatalf("want ConfigurationError, got %v", err)
	}
}

func TestSignalExecutesAtNextBarOpen(t *testing.T) {
	series := map[string]*models.MarketSeries{"A": {
		Symbol: "A",
		Bars: []models.Bar{
			{Date: day(0), Open: 10, High: 10, Low: 10, Close: 10, Volume: 1},
			{Date: day(1), Open: 20, High: 20, Low: 20, Close: 20, Volume: 1},
			{Date: day(2), Open: 30, High: 30, Low: 30, Close: 30, Volume: 1},
		},
	}}
	signals := map[string][]models.Signal{"A": {signalAt("A", 0, models.Def(1))}}

	out, err := New(simConfig()).Run(series, signals)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(out.Trades) != 1 {
		t.Fatalf("want 1 trade, got %d", len(out.Trades))
	}
	tr := out.Trades[0]
	if !tr.Date.Equal(day(1)) {
		t.Fatalf("signal at day 0 must fill at day 1, filled at %v", tr.Date)
	}
	if tr.Price != 20 {
		t.Fatalf("fill must use next bar's open 20, got %v", tr.Price)
	}
	// sizing used equity marked at day-0 close (100000), so qty = 100000/20
	if !almostEqual(tr.Qty, 5000, 1e-6) {
		t.Fatalf("want qty 5000, got %v", tr.Qty)
	}
}

func almostEqual(a, b, eps float64) bool { return math.Abs(a-b) <= eps }

func TestEquityIdentityHolds(t *testing.T) {
	series := map[string]*models.MarketSeries{"A": {
		Symbol: "A",
		Bars: []models.Bar{
			{Date: day(0), Open: 10, High: 11, Low: 9, Close: 10, Volume: 1},
			{Date: day(1), Open: 12, High: 13, Low: 11, Close: 12, Volume: 1},
			{Date: day(2), Open: 11, High: 12, Low: 10, Close: 11, Volume: 1},
			{Date: day(3), Open: 14, High: 15, Low: 13, Close: 14, Volume: 1},
		},
	}}
	signals := map[string][]models.Signal{"A": {
		signalAt("A", 0, models.Def(0.5)),
		signalAt("A", 2, models.Def(0)),
	}}

	cfg := simConfig()
	cfg.SlippageBps = 10
	cfg.FeeModel = models.FeeBps
	cfg.FeeValue = 5
	out, err := New(cfg).Run(series, signals)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(out.EquityCurve) != 4 {
		t.Fatalf("want one equity point per bar, got %d", len(out.EquityCurve))
	}
	if len(out.Trades) != 2 {
		t.Fatalf("want open and close trades, got %d", len(out.Trades))
	}

	// equity = cash + qty*close at every point, recomputed from the
	// trade log: each fill moves cash by -signedQty*price - fee
	for _, pt := range out.EquityCurve {
		cash := cfg.InitialCapital
		qty := 0.0
		for _, tr := range out.Trades {
			if tr.Date.After(pt.Date) {
				continue
			}
			signed := tr.Qty
			if tr.Side == models.SideSell {
				signed = -signed
			}
			qty += signed
			cash -= signed*tr.Price + tr.Cost
		}
		var closePx float64
		for _, b := range series["A"].Bars {
			if b.Date.Equal(pt.Date) {
				closePx = b.Close
			}
		}
		want := cash + qty*closePx
		if !almostEqual(pt.Equity, want, 1e-9) {
			t.Fatalf("equity identity broken at %v: curve %v, cash+holdings %v",
				pt.Date, pt.Equity, want)
		}
	}
	// the close fill realizes P&L
	closeTrade := out.Trades[1]
	if !closeTrade.RealizedPnL.Valid {
		t.Fatalf("closing trade should carry realized P&L")
	}
}

func TestNoSignalStaysFlat(t *testing.T) {
	series := map[string]*models.MarketSeries{"A": flatBars("A", 5, 10)}
	signals := map[string][]models.Signal{"A": {
		signalAt("A", 0, models.Undef()),
		signalAt("A", 1, models.Undef()),
	}}
	out, err := New(simConfig()).Run(series, signals)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(out.Trades) != 0 {
		t.Fatalf("undefined signals must not trade, got %d trades", len(out.Trades))
	}
	for _, pt := range out.EquityCurve {
		if pt.Equity != 100000 {
			t.Fatalf("flat run equity must stay at initial capital, got %v", pt.Equity)
		}
	}
}

func TestUndefinedSignalHoldsPosition(t *testing.T) {
	series := map[string]*models.MarketSeries{"A": flatBars("A", 5, 10)}
	signals := map[string][]models.Signal{"A": {
		signalAt("A", 0, models.Def(1)),
		signalAt("A", 2, models.Undef()),
		signalAt("A", 3, models.Undef()),
	}}
	out, err := New(simConfig()).Run(series, signals)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	// only the initial entry; undefined signals hold, never liquidate
	if len(out.Trades) != 1 {
		t.Fatalf("want exactly 1 trade, got %d", len(out.Trades))
	}
}

func TestConstraintViolationSkipsTradeAndContinues(t *testing.T) {
	series := map[string]*models.MarketSeries{
		"A": flatBars("A", 4, 10),
		"B": flatBars("B", 4, 10),
	}
	// each symbol targets 80% of equity: the second fill would overdraw
	signals := map[string][]models.Signal{
		"A": {signalAt("A", 0, models.Def(0.8))},
		"B": {signalAt("B", 0, models.Def(0.8))},
	}
	out, err := New(simConfig()).Run(series, signals)
	if err != nil {
		t.Fatalf("run must not abort on constraint violation: %v", err)
	}
	if len(out.Violations) != 1 {
		t.Fatalf("want 1 violation, got %d", len(out.Violations))
	}
	if len(out.Trades) != 1 {
		t.Fatalf("first trade fills, second is skipped; got %d trades", len(out.Trades))
	}
	// run completed to the terminal bar
	if len(out.EquityCurve) != 4 {
		t.Fatalf("want 4 equity points, got %d", len(out.EquityCurve))
	}
}

func TestMarginAllowsOverdraw(t *testing.T) {
	series := map[string]*models.MarketSeries{
		"A": flatBars("A", 4, 10),
		"B": flatBars("B", 4, 10),
	}
	signals := map[string][]models.Signal{
		"A": {signalAt("A", 0, models.Def(0.8))},
		"B": {signalAt("B", 0, models.Def(0.8))},
	}
	cfg := simConfig()
	cfg.MarginAllowed = true
	out, err := New(cfg).Run(series, signals)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(out.Violations) != 0 {
		t.Fatalf("margin enabled should allow overdraw, got %d violations", len(out.Violations))
	}
	if len(out.Trades) != 2 {
		t.Fatalf("want 2 trades, got %d", len(out.Trades))
	}
}

func TestWeeklyRebalanceGate(t *testing.T) {
	// 10 consecutive days spanning two ISO weeks
	series := map[string]*models.MarketSeries{"A": flatBars("A", 10, 10)}
	sigs := make([]models.Signal, 10)
	for i := range sigs {
		w := 0.5 + float64(i)*0.05 // changing target every day
		sigs[i] = signalAt("A", i, models.Def(w))
	}
	cfg := simConfig()
	cfg.Rebalance = models.RebalanceWeekly
	out, err := New(cfg).Run(map[string]*models.MarketSeries{"A": series["A"]}, map[string][]models.Signal{"A": sigs})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	// gate opens once per ISO week: at most one staged target per week
	if len(out.Trades) > 3 {
		t.Fatalf("weekly gate should limit trades, got %d", len(out.Trades))
	}
}

func TestMinTradeWeightSuppressesChurn(t *testing.T) {
	series := map[string]*models.MarketSeries{"A": flatBars("A", 5, 10)}
	signals := map[string][]models.Signal{"A": {
		signalAt("A", 0, models.Def(0.5)),
		signalAt("A", 2, models.Def(0.505)), // within min_trade_weight of held
	}}
	out, err := New(simConfig()).Run(series, signals)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(out.Trades) != 1 {
		t.Fatalf("sub-threshold adjustment must not trade, got %d trades", len(out.Trades))
	}
}

func TestDeterministicAcrossRuns(t *testing.T) {
	series := map[string]*models.MarketSeries{
		"A": flatBars("A", 8, 10),
		"B": flatBars("B", 8, 25),
	}
	signals := map[string][]models.Signal{
		"A": {signalAt("A", 0, models.Def(0.4)), signalAt("A", 4, models.Def(0.1))},
		"B": {signalAt("B", 1, models.Def(0.3))},
	}
	cfg := simConfig()
	cfg.SlippageBps = 5
	cfg.FeeModel = models.FeeFlat
	cfg.FeeValue = 1

	first, err := New(cfg).Run(series, signals)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	second, err := New(cfg).Run(series, signals)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(first.Trades) != len(second.Trades) {
		t.Fatalf("trade counts differ: %d vs %d", len(first.Trades), len(second.Trades))
	}
	for i := range first.Trades {
		if first.Trades[i] != second.Trades[i] {
			t.Fatalf("trade %d differs between identical runs", i)
		}
	}
	for i := range first.EquityCurve {
		if first.EquityCurve[i] != second.EquityCurve[i] {
			t.Fatalf("equity point %d differs between identical runs", i)
		}
	}
}

func TestSlippageDirection(t *testing.T) {
	cfg := simConfig()
	cfg.SlippageBps = 100 // 1%
	if got := fillPrice(cfg, 100, models.SideBuy); got != 101 {
		t.Fatalf("buy should fill above raw, got %v", got)
	}
	if got := fillPrice(cfg, 100, models.SideSell); got != 99 {
		t.Fatalf("sell should fill below raw, got %v", got)
	}
}

func TestFeeModels(t *testing.T) {
	cfg := simConfig()
	cfg.FeeModel = models.FeeFlat
	cfg.FeeValue = 2
	if got := transactionCost(cfg, 10, 100); got != 2 {
		t.Fatalf("flat fee: got %v", got)
	}
	cfg.FeeModel = models.FeeBps
	cfg.FeeValue = 10
	if got := transactionCost(cfg, 10, 100); got != 1 {
		t.Fatalf("bps fee: got %v", got)
	}
	cfg.FeeModel = models.FeePerShare
	cfg.FeeValue = 0.01
	if got := transactionCost(cfg, 10, 100); !almostEqual(got, 0.1, 1e-12) {
		t.Fatalf("per-share fee: got %v", got)
	}
	cfg.FeeModel = models.FeeNone
	if got := transactionCost(cfg, 10, 100); got != 0 {
		t.Fatalf("none fee: got %v", got)
	}
}
