package repository

import (
	"context"
	"time"

	"FactorBack/internal/domain/models"
)

// BarStore provides read-only access to historical OHLCV series.
// Implementations: CSV directory, ClickHouse.
type BarStore interface {
	LoadSeries(ctx context.Context, symbol string, from, to time.Time, tf Timeframe) (*models.MarketSeries, error)
	Health(ctx context.Context) error
}

// ResultSink persists completed run output (equity curve, trades).
type ResultSink interface {
	StoreResult(ctx context.Context, res *models.BacktestResult) error
	Close() error
}

// Publisher pushes executed trades and final reports to a message bus.
type Publisher interface {
	PublishTrades(ctx context.Context, runID string, trades []models.Trade) error
	PublishReport(ctx context.Context, runID string, report *models.PerformanceReport) error
	Close() error
}

// RunStore keeps completed results addressable by run ID for the API.
type RunStore interface {
	Put(res *models.BacktestResult)
	Get(id string) (*models.BacktestResult, bool)
}

// Metrics records operational counters for runs.
type Metrics interface {
	RecordRunStarted(source string)
	RecordRunCompleted(source string, seconds float64)
	RecordRunFailed(kind string)
	RecordTrades(symbol string, n int)
	RecordConstraintViolation(symbol string)
	RecordBarsLoaded(symbol string, n int)
}
