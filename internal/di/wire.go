//go:build wireinject
// +build wireinject

package di

import (
	"FactorBack/pkg/config"
	"FactorBack/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideFactorCache,

		// Repositories
		ProvideBarStore,
		ProvideResultSink,
		ProvidePublisher,
		ProvideRunStore,

		// Orchestration
		ProvideQueuePool,
		ProvideProgressHub,
		ProvideBacktestUseCase,

		// HTTP
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
