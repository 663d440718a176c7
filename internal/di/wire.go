//go:build wireinject
// +build wireinject

package di

import (
	"MarketPulse/pkg/config"
	"MarketPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Stores and upstreams
		ProvideMarketStore,
		ProvideTTLCache,
		ProvideRateLimiter,
		ProvideProviderChain,
		ProvideBarPublisher,
		ProvideBarStream,

		// Services
		ProvideSentimentService,

		// Use cases
		ProvideQuoteUseCase,
		ProvideHistoryUseCase,
		ProvideNewsUseCase,
		ProvideAggregatesUseCase,
		ProvideInsightUseCase,
		ProvideSentimentUseCase,
		ProvideCompareUseCase,
		ProvideSentimentRollup,
		ProvideBarProcessor,
		ProvideBarCollector,
		ProvideKafkaBarsHandler,

		// HTTP surface and application server
		ProvideMarketHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
