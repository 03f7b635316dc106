package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"FactorBack/internal/domain/models"
	domrepo "FactorBack/internal/domain/repository"
	pkgch "FactorBack/pkg/clickhouse"
	applogger "FactorBack/pkg/logger"
)

// CHBarStore implements BarStore backed by ClickHouse daily/weekly bar tables.
type CHBarStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHBarStore(ch *pkgch.Client, table string) *CHBarStore {
	if table == "" {
		table = "factorback.bars_1d"
	}
	return &CHBarStore{db: ch.DB(), table: table}
}

// SetLogger injects a structured logger.
func (s *CHBarStore) SetLogger(l *applogger.Logger) { s.l = l }

// seriesQuery builds the bar select for an optionally open-ended range.
// Zero from/to values mean unbounded and are omitted rather than bound,
// matching how the CSV store treats omitted request dates.
func seriesQuery(table, symbol string, from, to time.Time, tf string) (string, []interface{}) {
	q := `SELECT date, open, high, low, close, volume FROM ` + table + ` WHERE symbol = ? AND tf = ?`
	args := []interface{}{symbol, tf}
	if !from.IsZero() {
		q += ` AND date >= ?`
		args = append(args, from)
	}
	if !to.IsZero() {
		q += ` AND date <= ?`
		args = append(args, to)
	}
	q += ` ORDER BY date ASC`
	return q, args
}

func (s *CHBarStore) LoadSeries(ctx context.Context, symbol string, from, to time.Time, tf domrepo.Timeframe) (*models.MarketSeries, error) {
	start := time.Now()
	q, args := seriesQuery(s.table, symbol, from, to, string(tf))
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse load_series query error",
				applogger.String("table", s.table),
				applogger.String("symbol", symbol),
				applogger.String("tf", string(tf)),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("load series: %w", err)
	}
	defer rows.Close()

	series := &models.MarketSeries{Symbol: symbol, Bars: make([]models.Bar, 0, 1024)}
	for rows.Next() {
		var b models.Bar
		if err := rows.Scan(&b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			if s.l != nil {
				s.l.Error("clickhouse load_series scan error",
					applogger.String("table", s.table),
					applogger.String("symbol", symbol),
					applogger.Error(err),
				)
			}
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		series.Bars = append(series.Bars, b)
	}
	if err := rows.Err(); err != nil {
		if s.l != nil {
			s.l.Error("clickhouse load_series rows error",
				applogger.String("table", s.table),
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("rows: %w", err)
	}

	if err := series.Validate(); err != nil {
		return nil, err
	}
	if s.l != nil {
		s.l.Info("clickhouse load_series ok",
			applogger.String("table", s.table),
			applogger.String("symbol", symbol),
			applogger.String("tf", string(tf)),
			applogger.Int("rows", len(series.Bars)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return series, nil
}

func (s *CHBarStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
