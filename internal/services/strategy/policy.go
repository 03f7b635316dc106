package strategy

import (
	"FactorBack/internal/domain/models"
	domsvc "FactorBack/internal/domain/service"
)

// New returns the policy implementation matching the configured
// combination rule. Unknown rules are a configuration error.
func New(cfg models.StrategyConfig) (domsvc.Policy, error) {
	switch cfg.CombinationRule {
	case models.RuleVoting:
		return NewVoting(cfg), nil
	case models.RuleWeighted:
		return NewWeighted(cfg), nil
	case models.RuleRank:
		return NewRank(cfg), nil
	default:
		return nil, models.NewConfigurationError("combination_rule", "unknown rule %q", cfg.CombinationRule)
	}
}

// factorScores maps each defined factor to a bullish (+1) or bearish
// (-1) score against its neutral level. RSI is neutral at 50; MACD is
// neutral at zero, or at the signal line when the crossover vote is
// enabled; the rest are neutral at zero.
func factorScores(cfg models.StrategyConfig, v models.FactorVector) (scores [6]float64, defined [6]bool) {
	neutral := [6]float64{0, 0, 50, 0, 0, 0}
	if cfg.MACDUseCrossover && v.MACDSignal.Valid {
		neutral[3] = v.MACDSignal.Float
	}
	for i, f := range v.Values() {
		if !f.Valid {
			continue
		}
		defined[i] = true
		if f.Float > neutral[i] {
			scores[i] = 1
		} else if f.Float < neutral[i] {
			scores[i] = -1
		}
	}
	return scores, defined
}
