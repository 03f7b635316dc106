package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"sort"
	"sync"
	"time"

	"github.com/creasty/defaults"
	"github.com/google/uuid"

	"FactorBack/internal/domain/models"
	domrepo "FactorBack/internal/domain/repository"
	"FactorBack/internal/service/progress"
	"FactorBack/internal/services/factors"
	"FactorBack/internal/services/performance"
	"FactorBack/internal/services/simulator"
	"FactorBack/internal/services/strategy"
	pkgcache "FactorBack/pkg/cache"
	applogger "FactorBack/pkg/logger"
	"FactorBack/pkg/queue"
	"FactorBack/pkg/util"
)

// Options carries the server-level defaults a run starts from; request
// overrides replace whole sections before validation.
type Options struct {
	Strategy  models.StrategyConfig
	Simulator models.SimulationConfig
	Analyzer  models.AnalyzerConfig
	Timeframe domrepo.Timeframe
	CacheTTL  time.Duration
}

// BacktestUseCase orchestrates a full run: load series, compute
// factors, generate signals, simulate, analyze, persist and publish.
type BacktestUseCase struct {
	bars    domrepo.BarStore
	runs    domrepo.RunStore
	sink    domrepo.ResultSink // nil when result storage is disabled
	pub     domrepo.Publisher  // nil when kafka is disabled
	cache   pkgcache.Service   // nil when caching is disabled
	metrics domrepo.Metrics
	pool    *queue.Pool
	hub     *progress.Hub
	log     *applogger.Logger
	opts    Options
}

func NewBacktestUseCase(
	bars domrepo.BarStore,
	runs domrepo.RunStore,
	sink domrepo.ResultSink,
	pub domrepo.Publisher,
	cache pkgcache.Service,
	metrics domrepo.Metrics,
	pool *queue.Pool,
	hub *progress.Hub,
	log *applogger.Logger,
	opts Options,
) *BacktestUseCase {
	return &BacktestUseCase{
		bars:    bars,
		runs:    runs,
		sink:    sink,
		pub:     pub,
		cache:   cache,
		metrics: metrics,
		pool:    pool,
		hub:     hub,
		log:     log,
		opts:    opts,
	}
}

// runParams is a fully resolved, validated run request.
type runParams struct {
	symbols   []string
	from, to  time.Time
	tf        domrepo.Timeframe
	strategy  models.StrategyConfig
	simulator models.SimulationConfig
	analyzer  models.AnalyzerConfig
}

// Submit validates the request, registers the run and enqueues it.
// Configuration problems surface here, before any work is queued.
func (uc *BacktestUseCase) Submit(ctx context.Context, req *models.RunBacktestRequest) (string, error) {
	p, err := uc.resolve(req)
	if err != nil {
		return "", err
	}

	runID := uuid.NewString()
	uc.runs.Put(&models.BacktestResult{
		ID:        runID,
		Symbols:   p.symbols,
		Status:    models.RunQueued,
		StartedAt: time.Now(),
	})

	err = uc.pool.Submit(queue.Job{
		ID: runID,
		Run: func(jobCtx context.Context) error {
			return uc.execute(jobCtx, runID, p)
		},
	})
	if err != nil {
		uc.runs.Put(&models.BacktestResult{
			ID:      runID,
			Symbols: p.symbols,
			Status:  models.RunFailed,
			Err:     err.Error(),
		})
		return "", err
	}
	uc.metrics.RecordRunStarted(string(p.tf))
	return runID, nil
}

// Result returns the stored state of a run.
func (uc *BacktestUseCase) Result(runID string) (*models.BacktestResult, bool) {
	return uc.runs.Get(runID)
}

// Strategies lists the available combination rules with their defaults.
func (uc *BacktestUseCase) Strategies() []map[string]interface{} {
	return []map[string]interface{}{
		{
			"rule":        models.RuleVoting,
			"description": "long when at least threshold factors are bullish",
			"threshold":   uc.opts.Strategy.CombinationThreshold,
		},
		{
			"rule":        models.RuleWeighted,
			"description": "weighted sum of factor scores, clamped to [-1, 1]",
		},
		{
			"rule":        models.RuleRank,
			"description": "net bullish fraction of defined factors",
		},
	}
}

func (uc *BacktestUseCase) resolve(req *models.RunBacktestRequest) (runParams, error) {
	var p runParams
	if len(req.Symbols) == 0 {
		return p, models.NewConfigurationError("symbols", "at least one symbol is required")
	}
	seen := make(map[string]struct{}, len(req.Symbols))
	for _, s := range req.Symbols {
		if _, dup := seen[s]; dup {
			return p, models.NewConfigurationError("symbols", "duplicate symbol %q", s)
		}
		seen[s] = struct{}{}
	}
	p.symbols = append([]string(nil), req.Symbols...)

	if req.From != "" {
		t, err := time.Parse("2006-01-02", req.From)
		if err != nil {
			return p, models.NewConfigurationError("from", "want YYYY-MM-DD, got %q", req.From)
		}
		p.from = t.UTC()
	}
	if req.To != "" {
		t, err := time.Parse("2006-01-02", req.To)
		if err != nil {
			return p, models.NewConfigurationError("to", "want YYYY-MM-DD, got %q", req.To)
		}
		p.to = t.UTC()
	}
	if !p.from.IsZero() && !p.to.IsZero() && p.to.Before(p.from) {
		return p, models.NewConfigurationError("to", "end date before start date")
	}

	p.tf = uc.opts.Timeframe
	// Align bounds to bar boundaries so a weekly run asked from a
	// Wednesday still covers that week's bar. Zero (omitted) bounds
	// stay zero and mean unbounded downstream.
	p.from, p.to = util.AlignFromTo(p.from, p.to, string(p.tf))

	p.strategy = uc.opts.Strategy
	p.simulator = uc.opts.Simulator
	p.analyzer = uc.opts.Analyzer
	if req.Strategy != nil {
		p.strategy = *req.Strategy
		if err := defaults.Set(&p.strategy); err != nil {
			return p, fmt.Errorf("strategy defaults: %w", err)
		}
	}
	if req.Simulator != nil {
		p.simulator = *req.Simulator
		if err := defaults.Set(&p.simulator); err != nil {
			return p, fmt.Errorf("simulator defaults: %w", err)
		}
	}
	if req.Analyzer != nil {
		p.analyzer = *req.Analyzer
		if err := defaults.Set(&p.analyzer); err != nil {
			return p, fmt.Errorf("analyzer defaults: %w", err)
		}
	}
	if p.analyzer.PeriodsPerYear == 0 {
		p.analyzer.PeriodsPerYear = domrepo.PeriodsPerYear(p.tf)
	}

	if err := p.strategy.Validate(); err != nil {
		return p, err
	}
	if err := p.simulator.Validate(); err != nil {
		return p, err
	}
	if err := p.analyzer.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

func (uc *BacktestUseCase) execute(ctx context.Context, runID string, p runParams) error {
	started := time.Now()
	uc.runs.Put(&models.BacktestResult{
		ID:        runID,
		Symbols:   p.symbols,
		Status:    models.RunRunning,
		StartedAt: started,
	})
	defer uc.hub.Close(runID)

	res, err := uc.run(ctx, runID, p)
	if err != nil {
		uc.metrics.RecordRunFailed(errorKind(err))
		uc.hub.Publish(progress.Event{RunID: runID, Stage: progress.StageFailed, Error: err.Error()})
		uc.runs.Put(&models.BacktestResult{
			ID:         runID,
			Symbols:    p.symbols,
			Status:     models.RunFailed,
			Err:        err.Error(),
			StartedAt:  started,
			FinishedAt: time.Now(),
		})
		uc.log.Error("backtest run failed",
			applogger.String("run_id", runID),
			applogger.Error(err),
		)
		return err
	}

	res.ID = runID
	res.Status = models.RunDone
	res.StartedAt = started
	res.FinishedAt = time.Now()
	uc.runs.Put(res)
	uc.metrics.RecordRunCompleted(string(p.tf), time.Since(started).Seconds())
	uc.hub.Publish(progress.Event{RunID: runID, Stage: progress.StageDone})

	uc.persist(ctx, runID, res)

	uc.log.Info("backtest run completed",
		applogger.String("run_id", runID),
		applogger.Strings("symbols", p.symbols),
		applogger.Int("trades", len(res.Trades)),
		applogger.Int("violations", len(res.Violations)),
		applogger.Duration("duration_ms", time.Since(started)),
	)
	return nil
}

func (uc *BacktestUseCase) run(ctx context.Context, runID string, p runParams) (*models.BacktestResult, error) {
	policy, err := strategy.New(p.strategy)
	if err != nil {
		return nil, err
	}
	engine := factors.NewEngine(p.strategy)

	uc.hub.Publish(progress.Event{RunID: runID, Stage: progress.StageLoading})

	series := make(map[string]*models.MarketSeries, len(p.symbols))
	vectors := make(map[string][]models.FactorVector, len(p.symbols))
	var mu sync.Mutex
	var wg sync.WaitGroup
	errs := make(chan error, len(p.symbols))

	for _, sym := range p.symbols {
		wg.Add(1)
		go func(sym string) {
			defer wg.Done()
			s, err := uc.bars.LoadSeries(ctx, sym, p.from, p.to, p.tf)
			if err != nil {
				errs <- err
				return
			}
			uc.metrics.RecordBarsLoaded(sym, len(s.Bars))

			uc.hub.Publish(progress.Event{RunID: runID, Stage: progress.StageFactors, Symbol: sym})
			vecs, err := uc.computeFactors(ctx, engine, s, p)
			if err != nil {
				errs <- err
				return
			}

			mu.Lock()
			series[sym] = s
			vectors[sym] = vecs
			mu.Unlock()
		}(sym)
	}
	wg.Wait()
	close(errs)
	if err := <-errs; err != nil {
		return nil, err
	}

	signals := make(map[string][]models.Signal, len(p.symbols))
	for sym, vecs := range vectors {
		sigs := make([]models.Signal, len(vecs))
		for i, v := range vecs {
			sigs[i] = models.Signal{
				Symbol: sym,
				Date:   v.Date,
				Weight: policy.Weight(v),
			}
		}
		signals[sym] = sigs
	}

	uc.hub.Publish(progress.Event{RunID: runID, Stage: progress.StageSimulating})
	sim := simulator.New(p.simulator)
	out, err := sim.Run(series, signals)
	if err != nil {
		return nil, err
	}
	for _, ev := range out.Violations {
		uc.metrics.RecordConstraintViolation(ev.Symbol)
	}
	tradesBySym := map[string]int{}
	for _, t := range out.Trades {
		tradesBySym[t.Symbol]++
	}
	for sym, n := range tradesBySym {
		uc.metrics.RecordTrades(sym, n)
	}
	for _, pt := range out.EquityCurve {
		uc.hub.Publish(progress.Event{
			RunID:  runID,
			Stage:  progress.StageSimulating,
			Date:   pt.Date,
			Equity: pt.Equity,
		})
	}

	uc.hub.Publish(progress.Event{RunID: runID, Stage: progress.StageAnalyzing})
	benchmark := uc.benchmarkReturns(ctx, p, out.EquityCurve)
	analyzer := performance.New(p.analyzer)
	report, err := analyzer.Analyze(out.EquityCurve, out.Trades, benchmark)
	if err != nil {
		return nil, err
	}

	return &models.BacktestResult{
		Symbols:     p.symbols,
		EquityCurve: out.EquityCurve,
		Trades:      out.Trades,
		Violations:  out.Violations,
		Report:      report,
	}, nil
}

// computeFactors consults the layered cache before running the engine.
// The key binds symbol, range, timeframe and every strategy knob so a
// changed window never reuses a stale vector.
func (uc *BacktestUseCase) computeFactors(ctx context.Context, engine *factors.Engine, s *models.MarketSeries, p runParams) ([]models.FactorVector, error) {
	if uc.cache == nil {
		return engine.Compute(s)
	}

	key := factorCacheKey(s, p)
	var cached []models.FactorVector
	if err := uc.cache.Get(ctx, key, &cached); err == nil && len(cached) == len(s.Bars) {
		return cached, nil
	}

	vecs, err := engine.Compute(s)
	if err != nil {
		return nil, err
	}
	if err := uc.cache.Set(ctx, key, vecs, uc.opts.CacheTTL); err != nil {
		uc.log.Warn("factor cache set failed",
			applogger.String("symbol", s.Symbol),
			applogger.Error(err),
		)
	}
	return vecs, nil
}

func factorCacheKey(s *models.MarketSeries, p runParams) string {
	h := fnv.New64a()
	b, _ := json.Marshal(p.strategy)
	h.Write(b)
	first := s.Bars[0].Date.Unix()
	last := s.Bars[len(s.Bars)-1].Date.Unix()
	return fmt.Sprintf("factors:%s:%s:%d:%d:%d:%x", s.Symbol, p.tf, first, last, len(s.Bars), h.Sum64())
}

// benchmarkReturns loads the benchmark series, aligns its closes to the
// equity curve dates carrying the last known close forward, and returns
// per-period simple returns. A missing or unloadable benchmark yields
// nil, which the analyzer treats as "no alpha/beta".
func (uc *BacktestUseCase) benchmarkReturns(ctx context.Context, p runParams, curve []models.EquityPoint) []float64 {
	if p.analyzer.BenchmarkSymbol == "" || len(curve) < 2 {
		return nil
	}
	bs, err := uc.bars.LoadSeries(ctx, p.analyzer.BenchmarkSymbol, p.from, p.to, p.tf)
	if err != nil {
		uc.log.Warn("benchmark load failed, skipping alpha/beta",
			applogger.String("symbol", p.analyzer.BenchmarkSymbol),
			applogger.Error(err),
		)
		return nil
	}

	closeAt := make(map[int64]float64, len(bs.Bars))
	dates := make([]int64, 0, len(bs.Bars))
	for _, b := range bs.Bars {
		ts := b.Date.Unix()
		closeAt[ts] = b.Close
		dates = append(dates, ts)
	}

	aligned := make([]float64, len(curve))
	for i, pt := range curve {
		ts := pt.Date.Unix()
		if c, ok := closeAt[ts]; ok {
			aligned[i] = c
			continue
		}
		// last close at or before the curve date
		j := sort.Search(len(dates), func(k int) bool { return dates[k] > ts })
		if j == 0 {
			return nil // benchmark history starts after the run
		}
		aligned[i] = closeAt[dates[j-1]]
	}

	// bar validation guarantees positive closes, so plain simple
	// returns are safe here
	return factors.SimpleReturns(aligned)
}

func (uc *BacktestUseCase) persist(ctx context.Context, runID string, res *models.BacktestResult) {
	if uc.sink != nil {
		if err := uc.sink.StoreResult(ctx, res); err != nil {
			uc.log.Error("store result failed",
				applogger.String("run_id", runID),
				applogger.Error(err),
			)
		}
	}
	if uc.pub != nil {
		if err := uc.pub.PublishTrades(ctx, runID, res.Trades); err != nil {
			uc.log.Error("publish trades failed",
				applogger.String("run_id", runID),
				applogger.Error(err),
			)
		}
		if err := uc.pub.PublishReport(ctx, runID, res.Report); err != nil {
			uc.log.Error("publish report failed",
				applogger.String("run_id", runID),
				applogger.Error(err),
			)
		}
	}
}

func errorKind(err error) string {
	switch err.(type) {
	case *models.DataIntegrityError:
		return "data_integrity"
	case *models.ConfigurationError:
		return "configuration"
	default:
		return "internal"
	}
}
