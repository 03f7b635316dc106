package strategy

import (
	"testing"
	"time"

	"FactorBack/internal/domain/models"
)

func cfgWith(rule string, threshold int, allowShort bool) models.StrategyConfig {
	return models.StrategyConfig{
		CombinationRule:      rule,
		CombinationThreshold: threshold,
		AllowShort:           allowShort,
	}
}

// bullishVector has all six factors defined and above neutral.
func bullishVector() models.FactorVector {
	return models.FactorVector{
		Symbol:         "AAPL",
		Date:           time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
		PriceMomentum:  models.Def(5),
		VolumeMomentum: models.Def(12),
		RSI:            models.Def(65),
		MACD:           models.Def(0.8),
		ROC:            models.Def(3),
		BollingerPos:   models.Def(0.4),
	}
}

func bearishVector() models.FactorVector {
	v := bullishVector()
	v.PriceMomentum = models.Def(-5)
	v.VolumeMomentum = models.Def(-12)
	v.RSI = models.Def(35)
	v.MACD = models.Def(-0.8)
	v.ROC = models.Def(-3)
	v.BollingerPos = models.Def(-0.4)
	return v
}

func TestFactoryUnknownRule(t *testing.T) {
	_, err := New(cfgWith("median", 4, false))
	if err == nil {
		t.Fatalf("expected configuration error")
	}
	if _, ok := err.(*models.ConfigurationError); !ok {
		t.Fatalf("want ConfigurationError, got %T", err)
	}
}

func TestVotingLongWhenThresholdMet(t *testing.T) {
	p := NewVoting(cfgWith(models.RuleVoting, 4, false))
	w := p.Weight(bullishVector())
	if !w.Valid || w.Float != 1 {
		t.Fatalf("want +1, got %+v", w)
	}
}

func TestVotingFlatBelowThreshold(t *testing.T) {
	v := bullishVector()
	v.PriceMomentum = models.Def(-1)
	v.RSI = models.Def(40)
	v.MACD = models.Def(-0.1)
	// 3 bulls, 3 bears: neither side reaches 4
	p := NewVoting(cfgWith(models.RuleVoting, 4, true))
	w := p.Weight(v)
	if !w.Valid || w.Float != 0 {
		t.Fatalf("want flat 0, got %+v", w)
	}
}

func TestVotingUndefinedWhenTooFewFactors(t *testing.T) {
	v := bullishVector()
	v.PriceMomentum = models.Undef()
	v.VolumeMomentum = models.Undef()
	v.RSI = models.Undef()
	// only 3 defined, threshold 4
	p := NewVoting(cfgWith(models.RuleVoting, 4, false))
	if w := p.Weight(v); w.Valid {
		t.Fatalf("want undefined signal, got %+v", w)
	}
}

func TestVotingShortRequiresAllowShort(t *testing.T) {
	long := NewVoting(cfgWith(models.RuleVoting, 4, false))
	if w := long.Weight(bearishVector()); !w.Valid || w.Float != 0 {
		t.Fatalf("long-only should stay flat on bearish vector, got %+v", w)
	}
	short := NewVoting(cfgWith(models.RuleVoting, 4, true))
	if w := short.Weight(bearishVector()); !w.Valid || w.Float != -1 {
		t.Fatalf("want -1 with shorts enabled, got %+v", w)
	}
}

func TestVotingRSINeutralAt50(t *testing.T) {
	v := bullishVector()
	v.RSI = models.Def(50)
	p := NewVoting(cfgWith(models.RuleVoting, 5, false))
	// RSI at neutral votes neither side: 5 bulls remain
	w := p.Weight(v)
	if !w.Valid || w.Float != 1 {
		t.Fatalf("5 bulls should still clear threshold 5, got %+v", w)
	}
}

func TestMACDCrossoverNeutral(t *testing.T) {
	v := bullishVector()
	v.MACD = models.Def(0.5)
	v.MACDSignal = models.Def(0.9) // positive but below signal line
	cfg := cfgWith(models.RuleVoting, 6, false)
	cfg.MACDUseCrossover = true
	p := NewVoting(cfg)
	// MACD below its signal line is bearish: only 5 bulls
	if w := p.Weight(v); !w.Valid || w.Float != 0 {
		t.Fatalf("crossover vote should break unanimity, got %+v", w)
	}
}

func TestWeightedEqualWeights(t *testing.T) {
	p := NewWeighted(cfgWith(models.RuleWeighted, 4, true))
	if w := p.Weight(bullishVector()); !w.Valid || w.Float != 1 {
		t.Fatalf("all bullish equal weights should give +1, got %+v", w)
	}
	if w := p.Weight(bearishVector()); !w.Valid || w.Float != -1 {
		t.Fatalf("all bearish with shorts should give -1, got %+v", w)
	}
}

func TestWeightedRenormalizesOverDefined(t *testing.T) {
	v := bullishVector()
	v.MACD = models.Undef()
	v.BollingerPos = models.Undef()
	p := NewWeighted(cfgWith(models.RuleWeighted, 4, false))
	// 4 defined, all bullish: renormalized sum is still 1
	if w := p.Weight(v); !w.Valid || w.Float != 1 {
		t.Fatalf("want +1 over defined factors, got %+v", w)
	}
}

func TestWeightedNoShortClampsToZero(t *testing.T) {
	p := NewWeighted(cfgWith(models.RuleWeighted, 4, false))
	if w := p.Weight(bearishVector()); !w.Valid || w.Float != 0 {
		t.Fatalf("long-only weighted should clamp to 0, got %+v", w)
	}
}

func TestWeightedAllUndefined(t *testing.T) {
	p := NewWeighted(cfgWith(models.RuleWeighted, 4, true))
	if w := p.Weight(models.FactorVector{}); w.Valid {
		t.Fatalf("no defined factors should give undefined, got %+v", w)
	}
}

func TestRankNetFraction(t *testing.T) {
	v := bullishVector()
	v.PriceMomentum = models.Def(-1)
	v.VolumeMomentum = models.Def(-1)
	// 4 bulls, 2 bears over 6 defined -> 2/6
	p := NewRank(cfgWith(models.RuleRank, 4, true))
	w := p.Weight(v)
	if !w.Valid {
		t.Fatalf("want defined weight")
	}
	if diff := w.Float - 2.0/6.0; diff > 1e-12 || diff < -1e-12 {
		t.Fatalf("want 1/3, got %v", w.Float)
	}
}

func TestRankUndefinedWithNoFactors(t *testing.T) {
	p := NewRank(cfgWith(models.RuleRank, 4, true))
	if w := p.Weight(models.FactorVector{}); w.Valid {
		t.Fatalf("want undefined, got %+v", w)
	}
}
