package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"FactorBack/internal/domain/models"
	domrepo "FactorBack/internal/domain/repository"
	pkgkafka "FactorBack/pkg/kafka"
)

// CHResultSink persists completed runs into a ClickHouse results table.
// The equity curve and trade log are stored as JSON columns so a run is
// one row and can be reloaded or inspected without joins.
type CHResultSink struct {
	db    *sql.DB
	table string
}

func NewCHResultSink(db *sql.DB, table string) domrepo.ResultSink {
	if table == "" {
		table = "factorback.backtest_results"
	}
	return &CHResultSink{db: db, table: table}
}

func (s *CHResultSink) StoreResult(ctx context.Context, res *models.BacktestResult) error {
	curve, err := json.Marshal(res.EquityCurve)
	if err != nil {
		return fmt.Errorf("marshal equity curve: %w", err)
	}
	trades, err := json.Marshal(res.Trades)
	if err != nil {
		return fmt.Errorf("marshal trades: %w", err)
	}
	var report []byte
	if res.Report != nil {
		report, err = json.Marshal(res.Report.ToMap())
		if err != nil {
			return fmt.Errorf("marshal report: %w", err)
		}
	}

	q := fmt.Sprintf(
		"INSERT INTO %s (run_id, symbols, started_at, finished_at, equity_curve, trades, num_violations, report) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		s.table,
	)
	_, err = s.db.ExecContext(ctx, q,
		res.ID,
		strings.Join(res.Symbols, ","),
		res.StartedAt,
		res.FinishedAt,
		string(curve),
		string(trades),
		uint32(len(res.Violations)),
		string(report),
	)
	return err
}

func (s *CHResultSink) Close() error {
	return nil // connection managed by pkg
}

// KafkaResultPublisher pushes trade logs and final reports to Kafka topics.
type KafkaResultPublisher struct {
	producer     *pkgkafka.Producer
	tradesTopic  string
	reportsTopic string
}

func NewKafkaResultPublisher(producer *pkgkafka.Producer, tradesTopic, reportsTopic string) domrepo.Publisher {
	return &KafkaResultPublisher{
		producer:     producer,
		tradesTopic:  tradesTopic,
		reportsTopic: reportsTopic,
	}
}

func (p *KafkaResultPublisher) PublishTrades(ctx context.Context, runID string, trades []models.Trade) error {
	if len(trades) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(trades))
	for i, t := range trades {
		v := map[string]interface{}{
			"run_id": runID,
			"symbol": t.Symbol,
			"t":      t.Date.Unix(),
			"side":   string(t.Side),
			"qty":    t.Qty,
			"price":  t.Price,
			"cost":   t.Cost,
		}
		if t.RealizedPnL.Valid {
			v["realized_pnl"] = t.RealizedPnL.Float
		}
		msgs[i] = pkgkafka.Message{
			Key:   []byte(t.Symbol),
			Value: v,
		}
	}
	return p.producer.PublishBatch(ctx, p.tradesTopic, msgs)
}

func (p *KafkaResultPublisher) PublishReport(ctx context.Context, runID string, report *models.PerformanceReport) error {
	if report == nil {
		return nil
	}
	v := map[string]interface{}{
		"run_id":       runID,
		"published_at": time.Now().Unix(),
		"num_trades":   report.NumTrades,
		"final_equity": report.FinalEquity,
	}
	for name, f := range report.ToMap() {
		v[name] = f
	}
	return p.producer.Publish(ctx, p.reportsTopic, []byte(runID), v)
}

func (p *KafkaResultPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
