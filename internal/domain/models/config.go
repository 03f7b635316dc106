package models

// Combination rules understood by the strategy factory.
const (
	RuleVoting   = "voting"
	RuleWeighted = "weighted"
	RuleRank     = "rank"
)

// Execution price fields.
const (
	PriceFieldOpen  = "open"
	PriceFieldClose = "close"
)

// Fee models.
const (
	FeeNone     = "none"
	FeeFlat     = "flat"
	FeeBps      = "bps"
	FeePerShare = "per_share"
)

// Rebalance frequencies.
const (
	RebalanceDaily  = "daily"
	RebalanceWeekly = "weekly"
)

// StrategyConfig holds the factor windows and the combination rule.
// Zero values are filled from the default tags before validation.
type StrategyConfig struct {
	MomentumWindow  int     `yaml:"momentum_window" json:"momentum_window" default:"12"`
	VolumeWindow    int     `yaml:"volume_window" json:"volume_window" default:"10"`
	RSIWindow       int     `yaml:"rsi_window" json:"rsi_window" default:"14"`
	MACDFast        int     `yaml:"macd_fast" json:"macd_fast" default:"12"`
	MACDSlow        int     `yaml:"macd_slow" json:"macd_slow" default:"26"`
	MACDSignal      int     `yaml:"macd_signal" json:"macd_signal" default:"9"`
	ROCWindow       int     `yaml:"roc_window" json:"roc_window" default:"10"`
	BollingerWindow int     `yaml:"bollinger_window" json:"bollinger_window" default:"20"`
	BollingerK      float64 `yaml:"bollinger_k" json:"bollinger_k" default:"2"`
	BollingerClip   bool    `yaml:"bollinger_clip" json:"bollinger_clip"`

	// MACDUseCrossover makes policies vote on MACD > signal line
	// instead of MACD > 0.
	MACDUseCrossover bool `yaml:"macd_use_crossover" json:"macd_use_crossover"`

	CombinationRule      string    `yaml:"combination_rule" json:"combination_rule" default:"voting"`
	CombinationThreshold int       `yaml:"combination_threshold" json:"combination_threshold" default:"4"`
	FactorWeights        []float64 `yaml:"factor_weights" json:"factor_weights,omitempty"`
	AllowShort           bool      `yaml:"allow_short" json:"allow_short"`
}

// MaxLookback is the longest window any factor needs, used to size the
// warmup period.
func (c *StrategyConfig) MaxLookback() int {
	maxw := c.MomentumWindow
	for _, w := range []int{
		2 * c.VolumeWindow,
		c.RSIWindow + 1,
		c.MACDSlow + c.MACDSignal,
		c.ROCWindow,
		c.BollingerWindow,
	} {
		if w > maxw {
			maxw = w
		}
	}
	return maxw
}

func (c *StrategyConfig) Validate() error {
	for field, w := range map[string]int{
		"momentum_window":  c.MomentumWindow,
		"volume_window":    c.VolumeWindow,
		"rsi_window":       c.RSIWindow,
		"macd_fast":        c.MACDFast,
		"macd_slow":        c.MACDSlow,
		"macd_signal":      c.MACDSignal,
		"roc_window":       c.ROCWindow,
		"bollinger_window": c.BollingerWindow,
	} {
		if w <= 0 {
			return NewConfigurationError(field, "window must be positive, got %d", w)
		}
	}
	if c.MACDFast >= c.MACDSlow {
		return NewConfigurationError("macd_fast", "fast window %d must be below slow window %d", c.MACDFast, c.MACDSlow)
	}
	if c.BollingerK <= 0 {
		return NewConfigurationError("bollinger_k", "k must be positive, got %v", c.BollingerK)
	}
	switch c.CombinationRule {
	case RuleVoting, RuleWeighted, RuleRank:
	default:
		return NewConfigurationError("combination_rule", "unknown rule %q", c.CombinationRule)
	}
	if c.CombinationThreshold < 1 || c.CombinationThreshold > len(FactorNames) {
		return NewConfigurationError("combination_threshold", "threshold must be in [1, %d], got %d", len(FactorNames), c.CombinationThreshold)
	}
	if c.CombinationRule == RuleWeighted && len(c.FactorWeights) != 0 && len(c.FactorWeights) != len(FactorNames) {
		return NewConfigurationError("factor_weights", "expected %d weights, got %d", len(FactorNames), len(c.FactorWeights))
	}
	return nil
}

// SimulationConfig holds execution parameters for the simulator.
type SimulationConfig struct {
	InitialCapital float64 `yaml:"initial_capital" json:"initial_capital" default:"100000"`
	PriceField     string  `yaml:"price_field" json:"price_field" default:"open"`
	SlippageBps    float64 `yaml:"slippage_bps" json:"slippage_bps"`
	FeeModel       string  `yaml:"fee_model" json:"fee_model" default:"none"`
	FeeValue       float64 `yaml:"fee_value" json:"fee_value"`
	MarginAllowed  bool    `yaml:"margin_allowed" json:"margin_allowed"`
	Rebalance      string  `yaml:"rebalance" json:"rebalance" default:"daily"`

	// MinTradeWeight is the smallest change in target weight that
	// triggers a trade, guarding against churn from tiny adjustments.
	MinTradeWeight float64 `yaml:"min_trade_weight" json:"min_trade_weight" default:"0.01"`
}

func (c *SimulationConfig) Validate() error {
	if c.InitialCapital <= 0 {
		return NewConfigurationError("initial_capital", "must be positive, got %v", c.InitialCapital)
	}
	switch c.PriceField {
	case PriceFieldOpen, PriceFieldClose:
	default:
		return NewConfigurationError("price_field", "unknown price field %q", c.PriceField)
	}
	if c.SlippageBps < 0 {
		return NewConfigurationError("slippage_bps", "must not be negative, got %v", c.SlippageBps)
	}
	switch c.FeeModel {
	case FeeNone, FeeFlat, FeeBps, FeePerShare:
	default:
		return NewConfigurationError("fee_model", "unknown fee model %q", c.FeeModel)
	}
	if c.FeeValue < 0 {
		return NewConfigurationError("fee_value", "must not be negative, got %v", c.FeeValue)
	}
	switch c.Rebalance {
	case RebalanceDaily, RebalanceWeekly:
	default:
		return NewConfigurationError("rebalance", "unknown rebalance frequency %q", c.Rebalance)
	}
	if c.MinTradeWeight < 0 || c.MinTradeWeight >= 1 {
		return NewConfigurationError("min_trade_weight", "must be in [0, 1), got %v", c.MinTradeWeight)
	}
	return nil
}

// AnalyzerConfig holds parameters for the performance analyzer.
type AnalyzerConfig struct {
	RiskFreeRate    float64 `yaml:"risk_free_rate" json:"risk_free_rate"`
	PeriodsPerYear  int     `yaml:"periods_per_year" json:"periods_per_year" default:"252"`
	BenchmarkSymbol string  `yaml:"benchmark_symbol" json:"benchmark_symbol,omitempty"`
}

func (c *AnalyzerConfig) Validate() error {
	if c.PeriodsPerYear <= 0 {
		return NewConfigurationError("periods_per_year", "must be positive, got %d", c.PeriodsPerYear)
	}
	return nil
}
