package strategy

import (
	"FactorBack/internal/domain/models"
)

// Rank sizes the position by the net bullish share of the defined
// factors: (#bullish - #bearish) / #defined. Factors sitting exactly
// at neutral count toward neither side.
type Rank struct {
	cfg models.StrategyConfig
}

func NewRank(cfg models.StrategyConfig) *Rank { return &Rank{cfg: cfg} }

func (p *Rank) Name() string { return models.RuleRank }

func (p *Rank) Weight(v models.FactorVector) models.Value {
	scores, defined := factorScores(p.cfg, v)

	nDefined := 0
	net := 0.0
	for i := range scores {
		if !defined[i] {
			continue
		}
		nDefined++
		net += scores[i]
	}
	if nDefined == 0 {
		return models.Undef()
	}
	w := net / float64(nDefined)
	if !p.cfg.AllowShort && w < 0 {
		w = 0
	}
	return models.Def(w)
}
