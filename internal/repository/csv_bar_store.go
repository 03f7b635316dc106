package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"FactorBack/internal/domain/models"
	domrepo "FactorBack/internal/domain/repository"
	"FactorBack/pkg/util"
)

// CSVBarStore loads bar history from per-symbol CSV files in a
// directory: <dir>/<SYMBOL>.csv with a header row naming at least
// date, open, high, low, close, volume (case-insensitive, any order).
type CSVBarStore struct {
	dir string
}

func NewCSVBarStore(dir string) *CSVBarStore {
	return &CSVBarStore{dir: dir}
}

func (s *CSVBarStore) LoadSeries(ctx context.Context, symbol string, from, to time.Time, tf domrepo.Timeframe) (*models.MarketSeries, error) {
	_ = ctx
	path := filepath.Join(s.dir, symbol+".csv")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, models.NewDataIntegrityError(symbol, "missing header row in %s", path)
	}
	cols, err := columnIndex(header, symbol)
	if err != nil {
		return nil, err
	}

	series := &models.MarketSeries{Symbol: symbol}
	line := 1
	for {
		rec, err := r.Read()
		if err != nil {
			break // io.EOF or malformed trailing row; Validate catches gaps
		}
		line++
		bar, err := parseBar(rec, cols, symbol, line)
		if err != nil {
			return nil, err
		}
		if !from.IsZero() && bar.Date.Before(from) {
			continue
		}
		if !to.IsZero() && bar.Date.After(to) {
			continue
		}
		series.Bars = append(series.Bars, bar)
	}

	if err := series.Validate(); err != nil {
		return nil, err
	}
	return series, nil
}

func (s *CSVBarStore) Health(ctx context.Context) error {
	_ = ctx
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("csv dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("csv dir: %s is not a directory", s.dir)
	}
	return nil
}

type barColumns struct {
	date, open, high, low, close, volume int
}

func columnIndex(header []string, symbol string) (barColumns, error) {
	idx := map[string]int{}
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	cols := barColumns{date: -1, open: -1, high: -1, low: -1, close: -1, volume: -1}
	lookup := map[string]*int{
		"date":   &cols.date,
		"open":   &cols.open,
		"high":   &cols.high,
		"low":    &cols.low,
		"close":  &cols.close,
		"volume": &cols.volume,
	}
	for name, dst := range lookup {
		i, ok := idx[name]
		if !ok {
			return cols, models.NewDataIntegrityError(symbol, "missing required column %q", name)
		}
		*dst = i
	}
	return cols, nil
}

func parseBar(rec []string, cols barColumns, symbol string, line int) (models.Bar, error) {
	var bar models.Bar
	maxCol := cols.volume
	for _, c := range []int{cols.date, cols.open, cols.high, cols.low, cols.close} {
		if c > maxCol {
			maxCol = c
		}
	}
	if len(rec) <= maxCol {
		return bar, models.NewDataIntegrityError(symbol, "line %d: too few fields", line)
	}

	date, ok := util.ParseTime(rec[cols.date])
	if !ok {
		return bar, models.NewDataIntegrityError(symbol, "line %d: unparseable date %q", line, rec[cols.date])
	}
	bar.Date = date.UTC()

	for _, fld := range []struct {
		col  int
		dst  *float64
		name string
	}{
		{cols.open, &bar.Open, "open"},
		{cols.high, &bar.High, "high"},
		{cols.low, &bar.Low, "low"},
		{cols.close, &bar.Close, "close"},
		{cols.volume, &bar.Volume, "volume"},
	} {
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[fld.col]), 64)
		if err != nil {
			return bar, models.NewDataIntegrityError(symbol, "line %d: bad %s value %q", line, fld.name, rec[fld.col])
		}
		*fld.dst = v
	}
	return bar, nil
}
