package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"FactorBack/internal/domain/repository"
	pkgch "FactorBack/pkg/clickhouse"
	"FactorBack/pkg/config"
	xhttp "FactorBack/pkg/http"
	applogger "FactorBack/pkg/logger"
	"FactorBack/pkg/queue"
)

// App owns the process lifecycle: worker pool, HTTP server and the
// infrastructure clients that need orderly teardown.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	handler    xhttp.Handler
	pool       *queue.Pool
	chClient   *pkgch.Client
	sink       repository.ResultSink
	pub        repository.Publisher
	httpServer *xhttp.Server
}

// New creates the App with all dependencies injected.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	handler xhttp.Handler,
	pool *queue.Pool,
	chClient *pkgch.Client,
	sink repository.ResultSink,
	pub repository.Publisher,
) *App {
	return &App{
		cfg:      cfg,
		log:      log,
		handler:  handler,
		pool:     pool,
		chClient: chClient,
		sink:     sink,
		pub:      pub,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.pool.OnError(func(id string, err error) {
		a.log.Error("backtest job error",
			applogger.String("run_id", id),
			applogger.Error(err),
		)
	})
	a.pool.Start(ctx)
	a.log.Info("worker pool started",
		applogger.Int("workers", a.cfg.Queue.Workers),
	)

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(a.log, time.Second),
	)
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	// Let in-flight runs finish before closing their sinks.
	a.pool.Stop()

	if a.pub != nil {
		if err := a.pub.Close(); err != nil {
			a.log.Warn("publisher close error", applogger.Error(err))
		}
	}
	if a.sink != nil {
		if err := a.sink.Close(); err != nil {
			a.log.Warn("result sink close error", applogger.Error(err))
		}
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
