package strategy

import (
	"FactorBack/internal/domain/models"
)

// Voting goes fully long when at least threshold of the defined factors
// are bullish, fully short on the bearish mirror when shorts are
// enabled, and flat otherwise. Dates with fewer defined factors than
// the threshold have no opinion.
type Voting struct {
	cfg models.StrategyConfig
}

func NewVoting(cfg models.StrategyConfig) *Voting { return &Voting{cfg: cfg} }

func (p *Voting) Name() string { return models.RuleVoting }

func (p *Voting) Weight(v models.FactorVector) models.Value {
	scores, defined := factorScores(p.cfg, v)

	nDefined, bulls, bears := 0, 0, 0
	for i := range scores {
		if !defined[i] {
			continue
		}
		nDefined++
		if scores[i] > 0 {
			bulls++
		} else if scores[i] < 0 {
			bears++
		}
	}
	if nDefined < p.cfg.CombinationThreshold {
		return models.Undef()
	}
	if bulls >= p.cfg.CombinationThreshold {
		return models.Def(1)
	}
	if p.cfg.AllowShort && bears >= p.cfg.CombinationThreshold {
		return models.Def(-1)
	}
	return models.Def(0)
}
