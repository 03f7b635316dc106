package simulator

import (
	"math"
	"sort"
	"time"

	"FactorBack/internal/domain/models"
)

// weight changes below this are noise, not intent
const weightEpsilon = 1e-9

// Simulator replays signals over bar history and produces the equity
// curve and trade log for one run. It is strictly sequential: each
// bar's state depends on the prior bar's state. A signal read at date
// T executes at the symbol's next available bar, never at T itself.
type Simulator struct {
	cfg models.SimulationConfig
}

// Output is the durable result of a completed simulation.
type Output struct {
	EquityCurve []models.EquityPoint
	Trades      []models.Trade
	Violations  []models.ConstraintEvent
}

func New(cfg models.SimulationConfig) *Simulator {
	return &Simulator{cfg: cfg}
}

// Run simulates the given signals against the given series. All inputs
// must be fully materialized; the loop performs no I/O. A run either
// completes to the terminal date or fails with nothing returned.
func (s *Simulator) Run(series map[string]*models.MarketSeries, signals map[string][]models.Signal) (*Output, error) {
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}
	if len(series) == 0 {
		return nil, models.NewDataIntegrityError("", "no market series supplied")
	}

	symbols := make([]string, 0, len(series))
	for sym := range series {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	barsByDate := make(map[string]map[int64]models.Bar, len(series))
	for _, sym := range symbols {
		ms := series[sym]
		if err := ms.Validate(); err != nil {
			return nil, err
		}
		byDate := make(map[int64]models.Bar, len(ms.Bars))
		for _, b := range ms.Bars {
			byDate[b.Date.Unix()] = b
		}
		barsByDate[sym] = byDate
	}

	signalsByDate := make(map[string]map[int64]models.Value, len(signals))
	for sym, sigs := range signals {
		byDate := make(map[int64]models.Value, len(sigs))
		for _, sig := range sigs {
			byDate[sig.Date.Unix()] = sig.Weight
		}
		signalsByDate[sym] = byDate
	}

	calendar := mergedCalendar(series)
	start := firstSignalIndex(calendar, symbols, signalsByDate)

	portfolio := models.NewPortfolio(s.cfg.InitialCapital)
	lastClose := make(map[string]float64, len(symbols))
	pending := make(map[string]float64)

	out := &Output{
		EquityCurve: make([]models.EquityPoint, 0, len(calendar)-start),
	}

	var prevDate time.Time
	for i := start; i < len(calendar); i++ {
		date := calendar[i]
		ts := date.Unix()

		// 1. Execute targets staged at an earlier date.
		for _, sym := range symbols {
			target, ok := pending[sym]
			if !ok {
				continue
			}
			bar, has := barsByDate[sym][ts]
			if !has {
				continue // next available bar not reached yet
			}
			delete(pending, sym)
			s.execute(portfolio, lastClose, out, date, sym, target, bar)
		}

		// 2. Stage new targets when the rebalance gate is open.
		if s.gateOpen(date, prevDate) {
			for _, sym := range symbols {
				if _, has := barsByDate[sym][ts]; !has {
					continue
				}
				w, ok := signalsByDate[sym][ts]
				if !ok || !w.Valid {
					continue // undefined signal: hold
				}
				held := portfolio.Position(sym).Weight
				if math.Abs(w.Float-held) <= math.Max(s.cfg.MinTradeWeight, weightEpsilon) {
					continue
				}
				pending[sym] = w.Float
			}
		}

		// 3. Mark to market at this bar's close, one curve entry per date.
		for _, sym := range symbols {
			if bar, has := barsByDate[sym][ts]; has {
				lastClose[sym] = bar.Close
			}
		}
		out.EquityCurve = append(out.EquityCurve, models.EquityPoint{
			Date:   date,
			Equity: portfolio.Equity(lastClose),
		})
		prevDate = date
	}

	return out, nil
}

// execute moves the symbol's position toward the target weight at the
// bar's configured price field. A trade that would overdraw cash with
// margin disabled is skipped and recorded as a constraint violation.
func (s *Simulator) execute(p *models.Portfolio, lastClose map[string]float64, out *Output, date time.Time, sym string, target float64, bar models.Bar) {
	raw := bar.Open
	if s.cfg.PriceField == models.PriceFieldClose {
		raw = bar.Close
	}

	// Size against equity marked at the prior close, the last valuation
	// actually known when the order goes in.
	equity := p.Equity(lastClose)
	pos := p.Position(sym)

	targetQty := 0.0
	if target != 0 {
		// provisional fill direction for sizing
		side := models.SideBuy
		if target < pos.Weight {
			side = models.SideSell
		}
		targetQty = target * equity / fillPrice(s.cfg, raw, side)
	}

	deltaQty := targetQty - pos.Qty
	if math.Abs(deltaQty)*raw < 1e-9 {
		pos.Weight = target
		return
	}

	side := models.SideBuy
	if deltaQty < 0 {
		side = models.SideSell
	}
	fill := fillPrice(s.cfg, raw, side)
	qty := math.Abs(deltaQty)
	fee := transactionCost(s.cfg, qty, fill)
	cashDelta := -deltaQty*fill - fee

	if p.Cash+cashDelta < 0 && !s.cfg.MarginAllowed {
		out.Violations = append(out.Violations, models.ConstraintEvent{
			Date:   date,
			Symbol: sym,
			Reason: "trade would overdraw cash without margin",
		})
		return
	}

	realized := models.Undef()
	if pos.Qty != 0 && (deltaQty < 0) == (pos.Qty > 0) {
		// reducing or closing: realize P&L on the closed quantity
		closed := math.Min(qty, math.Abs(pos.Qty))
		pnl := (fill-pos.AvgCost)*closed - fee
		if pos.Qty < 0 {
			pnl = (pos.AvgCost-fill)*closed - fee
		}
		realized = models.Def(pnl)
		p.RealizedPnL += pnl
	}

	// Cost basis: average in on same-direction adds; reset when the
	// position flips through zero.
	newQty := pos.Qty + deltaQty
	switch {
	case pos.Qty == 0 || (pos.Qty > 0) == (deltaQty > 0):
		total := math.Abs(pos.Qty)*pos.AvgCost + qty*fill
		pos.AvgCost = total / (math.Abs(pos.Qty) + qty)
	case (newQty > 0) != (pos.Qty > 0) && newQty != 0:
		pos.AvgCost = fill
	case newQty == 0:
		pos.AvgCost = 0
	}

	p.Cash += cashDelta
	pos.Qty = newQty
	pos.Weight = target

	out.Trades = append(out.Trades, models.Trade{
		Date:        date,
		Symbol:      sym,
		Qty:         qty,
		Price:       fill,
		Side:        side,
		Cost:        fee,
		RealizedPnL: realized,
	})
}

// gateOpen reports whether signals are re-evaluated at this date.
// Daily opens every bar; weekly opens on the first trading day of each
// ISO week.
func (s *Simulator) gateOpen(date, prev time.Time) bool {
	if s.cfg.Rebalance != models.RebalanceWeekly {
		return true
	}
	if prev.IsZero() {
		return true
	}
	py, pw := prev.ISOWeek()
	cy, cw := date.ISOWeek()
	return py != cy || pw != cw
}

// mergedCalendar returns the sorted union of all bar dates.
func mergedCalendar(series map[string]*models.MarketSeries) []time.Time {
	seen := make(map[int64]time.Time)
	for _, ms := range series {
		for _, b := range ms.Bars {
			seen[b.Date.Unix()] = b.Date
		}
	}
	out := make([]time.Time, 0, len(seen))
	for _, d := range seen {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// firstSignalIndex finds the first calendar entry with a defined signal
// for at least one symbol; a signal-free run starts at the first bar
// and stays flat throughout.
func firstSignalIndex(calendar []time.Time, symbols []string, signals map[string]map[int64]models.Value) int {
	for i, d := range calendar {
		ts := d.Unix()
		for _, sym := range symbols {
			if w, ok := signals[sym][ts]; ok && w.Valid {
				return i
			}
		}
	}
	return 0
}
