package models

import "time"

// TradeSide is the direction of an executed trade.
type TradeSide string

const (
	SideBuy  TradeSide = "buy"
	SideSell TradeSide = "sell"
)

// Trade is one executed fill recorded in the trade log.
type Trade struct {
	Date   time.Time
	Symbol string
	Qty    float64 // absolute quantity traded
	Price  float64 // fill price after slippage
	Side   TradeSide
	Cost   float64 // transaction fee charged

	// RealizedPnL is defined on fills that reduce or close a position,
	// net of the fill's transaction cost.
	RealizedPnL Value
}

// Position is mutable simulation state for one symbol.
type Position struct {
	Qty     float64 // signed: >0 long, <0 short
	AvgCost float64
	Weight  float64 // target weight held since last fill
}

// Portfolio is the mutable account state owned by a single run.
type Portfolio struct {
	Cash        float64
	Positions   map[string]*Position
	RealizedPnL float64
}

// NewPortfolio starts a run with all symbols flat.
func NewPortfolio(initialCapital float64) *Portfolio {
	return &Portfolio{
		Cash:      initialCapital,
		Positions: make(map[string]*Position),
	}
}

// Position returns the state for symbol, creating a flat entry on first use.
func (p *Portfolio) Position(symbol string) *Position {
	pos, ok := p.Positions[symbol]
	if !ok {
		pos = &Position{}
		p.Positions[symbol] = pos
	}
	return pos
}

// Equity values the portfolio as cash plus holdings at the given prices.
// Symbols without a price keep their last known mark via the prices map
// supplied by the caller.
func (p *Portfolio) Equity(prices map[string]float64) float64 {
	total := p.Cash
	for sym, pos := range p.Positions {
		if pos.Qty == 0 {
			continue
		}
		total += pos.Qty * prices[sym]
	}
	return total
}

// EquityPoint is one entry of the equity curve.
type EquityPoint struct {
	Date   time.Time
	Equity float64
}

// ConstraintEvent records a trade that was rejected by a hard constraint.
// The run continues; the event is kept alongside the trade log.
type ConstraintEvent struct {
	Date   time.Time
	Symbol string
	Reason string
}

// Run lifecycle states.
const (
	RunQueued  = "queued"
	RunRunning = "running"
	RunDone    = "done"
	RunFailed  = "failed"
)

// BacktestResult is the durable output of one run. While the run is in
// flight only ID, Symbols, StartedAt and Status are populated.
type BacktestResult struct {
	ID          string
	Symbols     []string
	Status      string
	Err         string
	StartedAt   time.Time
	FinishedAt  time.Time
	EquityCurve []EquityPoint
	Trades      []Trade
	Violations  []ConstraintEvent
	Report      *PerformanceReport
}
