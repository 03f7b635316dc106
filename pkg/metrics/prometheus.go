package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	runsStarted   *prometheus.CounterVec
	runsFailed    *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec
	tradesTotal   *prometheus.CounterVec
	violations    *prometheus.CounterVec
	barsLoaded    *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		runsStarted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "factorback_runs_started_total",
				Help: "Total number of backtest runs started",
			},
			[]string{"source"},
		),
		runsFailed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "factorback_runs_failed_total",
				Help: "Total number of backtest runs that failed",
			},
			[]string{"kind"},
		),
		runDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "factorback_run_duration_seconds",
				Help:    "Duration of completed backtest runs in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		),
		tradesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "factorback_trades_executed_total",
				Help: "Total number of simulated trades executed",
			},
			[]string{"symbol"},
		),
		violations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "factorback_constraint_violations_total",
				Help: "Total number of trades rejected by hard constraints",
			},
			[]string{"symbol"},
		),
		barsLoaded: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "factorback_bars_loaded_total",
				Help: "Total number of bars loaded from stores",
			},
			[]string{"symbol"},
		),
	}
}

// RecordRunStarted records a run being picked up.
func (r *Recorder) RecordRunStarted(source string) {
	r.runsStarted.WithLabelValues(source).Inc()
}

// RecordRunCompleted records the duration of a finished run.
func (r *Recorder) RecordRunCompleted(source string, seconds float64) {
	r.runDuration.WithLabelValues(source).Observe(seconds)
}

// RecordRunFailed records a failed run by failure kind.
func (r *Recorder) RecordRunFailed(kind string) {
	r.runsFailed.WithLabelValues(kind).Inc()
}

// RecordTrades adds executed trades for a symbol.
func (r *Recorder) RecordTrades(symbol string, n int) {
	r.tradesTotal.WithLabelValues(symbol).Add(float64(n))
}

// RecordConstraintViolation records a rejected trade.
func (r *Recorder) RecordConstraintViolation(symbol string) {
	r.violations.WithLabelValues(symbol).Inc()
}

// RecordBarsLoaded adds loaded bars for a symbol.
func (r *Recorder) RecordBarsLoaded(symbol string, n int) {
	r.barsLoaded.WithLabelValues(symbol).Add(float64(n))
}
