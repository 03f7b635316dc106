package simulator

import "FactorBack/internal/domain/models"

// fillPrice applies the configured slippage to the raw bar price.
// Buys fill above the bar price, sells below it.
func fillPrice(cfg models.SimulationConfig, raw float64, side models.TradeSide) float64 {
	if cfg.SlippageBps <= 0 {
		return raw
	}
	adj := raw * cfg.SlippageBps / 10000
	if side == models.SideBuy {
		return raw + adj
	}
	return raw - adj
}

// transactionCost computes the fee for a fill under the configured model.
func transactionCost(cfg models.SimulationConfig, qty, price float64) float64 {
	switch cfg.FeeModel {
	case models.FeeFlat:
		return cfg.FeeValue
	case models.FeeBps:
		return qty * price * cfg.FeeValue / 10000
	case models.FeePerShare:
		return qty * cfg.FeeValue
	default:
		return 0
	}
}
