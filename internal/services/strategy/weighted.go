package strategy

import (
	"math"

	"FactorBack/internal/domain/models"
)

// Weighted combines the ±1 factor scores through per-factor weights and
// renormalizes over the factors actually defined at that date, so a
// short warmup history does not dilute the weight toward zero. The
// result is clamped to [-1, 1].
type Weighted struct {
	cfg     models.StrategyConfig
	weights [6]float64
}

func NewWeighted(cfg models.StrategyConfig) *Weighted {
	p := &Weighted{cfg: cfg}
	if len(cfg.FactorWeights) == len(p.weights) {
		copy(p.weights[:], cfg.FactorWeights)
	} else {
		for i := range p.weights {
			p.weights[i] = 1
		}
	}
	return p
}

func (p *Weighted) Name() string { return models.RuleWeighted }

func (p *Weighted) Weight(v models.FactorVector) models.Value {
	scores, defined := factorScores(p.cfg, v)

	var sum, norm float64
	for i := range scores {
		if !defined[i] {
			continue
		}
		sum += p.weights[i] * scores[i]
		norm += math.Abs(p.weights[i])
	}
	if norm == 0 {
		return models.Undef()
	}
	w := sum / norm
	if !p.cfg.AllowShort && w < 0 {
		w = 0
	}
	return models.Def(math.Max(-1, math.Min(1, w)))
}
