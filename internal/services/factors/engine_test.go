package factors

import (
	"testing"
	"time"

	"FactorBack/internal/domain/models"
)

func testConfig() models.StrategyConfig {
	return models.StrategyConfig{
		MomentumWindow:       12,
		VolumeWindow:         10,
		RSIWindow:            14,
		MACDFast:             12,
		MACDSlow:             26,
		MACDSignal:           9,
		ROCWindow:            10,
		BollingerWindow:      20,
		BollingerK:           2,
		CombinationRule:      models.RuleVoting,
		CombinationThreshold: 4,
	}
}

func syntheticSeries(symbol string, n int) *models.MarketSeries {
	s := &models.MarketSeries{Symbol: symbol}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	price := 100.0
	for i := 0; i < n; i++ {
		// mild oscillating uptrend so every indicator has variance
		price = price*1.001 + float64(i%5) - 2
		s.Bars = append(s.Bars, models.Bar{
			Date:   start.AddDate(0, 0, i),
			Open:   price * 0.999,
			High:   price * 1.01,
			Low:    price * 0.99,
			Close:  price,
			Volume: 1000 + float64((i*37)%500),
		})
	}
	return s
}

func TestComputeRejectsNonMonotonicDates(t *testing.T) {
	s := syntheticSeries("AAPL", 10)
	s.Bars[5].Date = s.Bars[3].Date
	_, err := NewEngine(testConfig()).Compute(s)
	if err == nil {
		t.Fatalf("expected data integrity error")
	}
	if _, ok := err.(*models.DataIntegrityError); !ok {
		t.Fatalf("want DataIntegrityError, got %T", err)
	}
}

func TestComputeOneVectorPerBar(t *testing.T) {
	s := syntheticSeries("AAPL", 80)
	vecs, err := NewEngine(testConfig()).Compute(s)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(vecs) != len(s.Bars) {
		t.Fatalf("want %d vectors, got %d", len(s.Bars), len(vecs))
	}
	for i, v := range vecs {
		if !v.Date.Equal(s.Bars[i].Date) {
			t.Fatalf("vector %d date mismatch", i)
		}
		if v.Symbol != "AAPL" {
			t.Fatalf("vector %d symbol mismatch", i)
		}
	}
}

func TestComputeWarmupUndefined(t *testing.T) {
	s := syntheticSeries("AAPL", 80)
	vecs, err := NewEngine(testConfig()).Compute(s)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if vecs[0].DefinedCount() != 0 {
		t.Fatalf("first bar should have no defined factors")
	}
	// beyond the longest lookback everything is defined
	last := vecs[len(vecs)-1]
	if last.DefinedCount() != 6 {
		t.Fatalf("want 6 defined factors at the end, got %d", last.DefinedCount())
	}
	if !last.MACDSignal.Valid {
		t.Fatalf("signal line should be defined at the end")
	}
}

func TestComputeShortSeriesAllUndefined(t *testing.T) {
	s := syntheticSeries("AAPL", 5)
	vecs, err := NewEngine(testConfig()).Compute(s)
	if err != nil {
		t.Fatalf("short series is valid data, got error: %v", err)
	}
	for i, v := range vecs {
		if v.DefinedCount() != 0 {
			t.Fatalf("bar %d should have no defined factors on 5 bars", i)
		}
	}
}

// Truncating the series must not change factor values at earlier dates.
func TestComputeNoLookAhead(t *testing.T) {
	full := syntheticSeries("AAPL", 80)
	truncated := &models.MarketSeries{Symbol: "AAPL", Bars: full.Bars[:60]}

	engine := NewEngine(testConfig())
	fullVecs, err := engine.Compute(full)
	if err != nil {
		t.Fatalf("compute full: %v", err)
	}
	truncVecs, err := engine.Compute(truncated)
	if err != nil {
		t.Fatalf("compute truncated: %v", err)
	}

	for i := range truncVecs {
		a, b := fullVecs[i].Values(), truncVecs[i].Values()
		for f := range a {
			if a[f].Valid != b[f].Valid || a[f].Float != b[f].Float {
				t.Fatalf("factor %s at bar %d changed when future bars were added", models.FactorNames[f], i)
			}
		}
	}
}
