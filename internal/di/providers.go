package di

import (
	"context"
	"fmt"
	"time"

	"FactorBack/internal/domain/repository"
	"FactorBack/internal/handler/api"
	internalrepo "FactorBack/internal/repository"
	icache "FactorBack/internal/service/cache"
	"FactorBack/internal/service/progress"
	"FactorBack/internal/usecase"
	pkgcache "FactorBack/pkg/cache"
	pkgch "FactorBack/pkg/clickhouse"
	"FactorBack/pkg/config"
	xhttp "FactorBack/pkg/http"
	pkgkafka "FactorBack/pkg/kafka"
	applogger "FactorBack/pkg/logger"
	"FactorBack/pkg/metrics"
	"FactorBack/pkg/queue"
	"FactorBack/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	out := cfg.Logging.Output
	if out == "" {
		out = "stdout"
	}
	format := cfg.Logging.Format
	if format == "" {
		format = "console"
	}
	level := cfg.Logging.Level
	if level == "" {
		level = "info"
	}
	return applogger.New(&applogger.Config{Level: level, Format: format, Output: out})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when
// nothing in the config needs one.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if cfg.Data.Source != "clickhouse" && !cfg.ClickHouse.StoreResults {
		return nil, nil
	}

	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS factorback",
		"CREATE TABLE IF NOT EXISTS factorback.bars_1d (symbol String, tf String, date DateTime, open Float64, high Float64, low Float64, close Float64, volume Float64) ENGINE=MergeTree ORDER BY (symbol, tf, date)",
		"CREATE TABLE IF NOT EXISTS factorback.backtest_results (run_id String, symbols String, started_at DateTime, finished_at DateTime, equity_curve String, trades String, num_violations UInt32, report String) ENGINE=MergeTree ORDER BY (run_id, started_at)",
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideBarStore selects the bar source configured under data.source.
func ProvideBarStore(cfg *config.Config, ch *pkgch.Client, l *applogger.Logger) (repository.BarStore, error) {
	switch cfg.Data.Source {
	case "csv":
		return internalrepo.NewCSVBarStore(cfg.Data.CSVDir), nil
	case "clickhouse":
		store := internalrepo.NewCHBarStore(ch, cfg.ClickHouse.BarsTable)
		store.SetLogger(l)
		return store, nil
	default:
		return nil, fmt.Errorf("unknown data source %q", cfg.Data.Source)
	}
}

// ProvideResultSink creates the ClickHouse result sink when enabled.
func ProvideResultSink(cfg *config.Config, ch *pkgch.Client) repository.ResultSink {
	if !cfg.ClickHouse.StoreResults || ch == nil {
		return nil
	}
	return internalrepo.NewCHResultSink(ch.DB(), cfg.ClickHouse.ResultsTable)
}

// ProvideKafkaProducer creates a Kafka producer when enabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvidePublisher wraps the producer as a trade/report publisher.
func ProvidePublisher(cfg *config.Config, producer *pkgkafka.Producer) repository.Publisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaResultPublisher(producer, cfg.Kafka.TradesTopic, cfg.Kafka.ReportsTopic)
}

// ProvideFactorCache builds the layered factor cache: memory only, or
// memory over Redis when Redis is enabled.
func ProvideFactorCache(cfg *config.Config) (pkgcache.Service, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	if !cfg.Cache.Redis.Enabled {
		return pkgcache.NewMemoryCache(pkgcache.WithMemoryMaxSize(cfg.Cache.MemorySize)), nil
	}
	redisCache, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(cfg.Cache.Redis.Host),
		pkgcache.WithRedisPort(cfg.Cache.Redis.Port),
		pkgcache.WithRedisPassword(cfg.Cache.Redis.Password),
		pkgcache.WithRedisDB(cfg.Cache.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return pkgcache.NewLayeredCache(redisCache,
		pkgcache.WithLayeredMemorySize(cfg.Cache.MemorySize),
	), nil
}

// ProvideRunStore creates the in-memory run registry.
func ProvideRunStore(cfg *config.Config) repository.RunStore {
	return icache.NewRunStore(cfg.Runs.TTL)
}

// ProvideQueuePool creates the backtest worker pool.
func ProvideQueuePool(cfg *config.Config) *queue.Pool {
	return queue.NewPool(queue.Config{
		Workers: cfg.Queue.Workers,
		Size:    cfg.Queue.Size,
	})
}

// ProvideProgressHub creates the run progress fan-out hub.
func ProvideProgressHub() *progress.Hub {
	return progress.NewHub()
}

// ProvideBacktestUseCase assembles the orchestrator.
func ProvideBacktestUseCase(
	cfg *config.Config,
	bars repository.BarStore,
	runs repository.RunStore,
	sink repository.ResultSink,
	pub repository.Publisher,
	cache pkgcache.Service,
	m repository.Metrics,
	pool *queue.Pool,
	hub *progress.Hub,
	l *applogger.Logger,
) *usecase.BacktestUseCase {
	return usecase.NewBacktestUseCase(bars, runs, sink, pub, cache, m, pool, hub, l, usecase.Options{
		Strategy:  cfg.Backtest.Strategy,
		Simulator: cfg.Backtest.Simulator,
		Analyzer:  cfg.Backtest.Analyzer,
		Timeframe: repository.NormalizeTimeframe(cfg.Data.Timeframe),
		CacheTTL:  cfg.Cache.TTL,
	})
}

// ProvideHTTPHandler wires the echo routes.
func ProvideHTTPHandler(
	l *applogger.Logger,
	uc *usecase.BacktestUseCase,
	bars repository.BarStore,
	hub *progress.Hub,
	runs repository.RunStore,
) xhttp.Handler {
	ws := api.NewProgressWSHandler(hub, runs, l)
	return api.NewBacktestEchoHandler(l, uc, bars, ws)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	handler xhttp.Handler,
	pool *queue.Pool,
	chClient *pkgch.Client,
	sink repository.ResultSink,
	pub repository.Publisher,
) *server.App {
	return server.New(cfg, l, handler, pool, chClient, sink, pub)
}
