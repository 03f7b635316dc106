package models

import "time"

// Requests and responses for the backtest HTTP endpoints. Defined in
// domain for consistency and reuse.

type RunBacktestRequest struct {
	Symbols []string `json:"symbols" validate:"required,min=1,dive,required"`
	From    string   `json:"from" validate:"omitempty"`
	To      string   `json:"to" validate:"omitempty"`

	// Optional overrides; zero structs fall back to the server defaults.
	Strategy  *StrategyConfig   `json:"strategy,omitempty"`
	Simulator *SimulationConfig `json:"simulator,omitempty"`
	Analyzer  *AnalyzerConfig   `json:"analyzer,omitempty"`
}

type RunBacktestResponse struct {
	RunID   string   `json:"run_id"`
	Symbols []string `json:"symbols"`
	Status  string   `json:"status"`
}

type BacktestResultResponse struct {
	RunID       string             `json:"run_id"`
	Symbols     []string           `json:"symbols"`
	StartedAt   time.Time          `json:"started_at"`
	FinishedAt  time.Time          `json:"finished_at"`
	FinalEquity float64            `json:"final_equity"`
	NumTrades   int                `json:"num_trades"`
	Metrics     map[string]float64 `json:"metrics"`
	Violations  []ConstraintEvent  `json:"violations,omitempty"`
	EquityCurve []EquityPoint      `json:"equity_curve,omitempty"`
	Trades      []Trade            `json:"trades,omitempty"`
}
