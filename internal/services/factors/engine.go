package factors

import (
	"FactorBack/internal/domain/models"
)

// Engine derives the six momentum factors from a market series.
// Output is one FactorVector per bar; components without sufficient
// lookback at that date stay undefined. Values at date T depend only
// on bars at or before T.
type Engine struct {
	cfg models.StrategyConfig
}

// NewEngine builds a factor engine for a validated strategy config.
func NewEngine(cfg models.StrategyConfig) *Engine {
	return &Engine{cfg: cfg}
}

// Compute rejects a malformed series before any computation, then
// derives all factor columns in one pass per indicator.
func (e *Engine) Compute(series *models.MarketSeries) ([]models.FactorVector, error) {
	if err := series.Validate(); err != nil {
		return nil, err
	}

	closes := series.Closes()
	volumes := series.Volumes()

	mom, momOK := PctChange(closes, e.cfg.MomentumWindow)
	volMom, volOK := VolumeMomentum(volumes, e.cfg.VolumeWindow)
	rsi, rsiOK := RSI(closes, e.cfg.RSIWindow)
	macd, macdSig, macdOK, sigOK := MACD(closes, e.cfg.MACDFast, e.cfg.MACDSlow, e.cfg.MACDSignal)
	roc, rocOK := PctChange(closes, e.cfg.ROCWindow)
	boll, bollOK := BollingerPosition(closes, e.cfg.BollingerWindow, e.cfg.BollingerK, e.cfg.BollingerClip)

	pick := func(vals []float64, ok []bool, i int) models.Value {
		if !ok[i] {
			return models.Undef()
		}
		return models.Def(vals[i])
	}

	out := make([]models.FactorVector, len(series.Bars))
	for i, bar := range series.Bars {
		out[i] = models.FactorVector{
			Symbol:         series.Symbol,
			Date:           bar.Date,
			PriceMomentum:  pick(mom, momOK, i),
			VolumeMomentum: pick(volMom, volOK, i),
			RSI:            pick(rsi, rsiOK, i),
			MACD:           pick(macd, macdOK, i),
			ROC:            pick(roc, rocOK, i),
			BollingerPos:   pick(boll, bollOK, i),
			MACDSignal:     pick(macdSig, sigOK, i),
		}
	}
	return out, nil
}
