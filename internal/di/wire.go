//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"FinScope/internal/usecase"
	"FinScope/pkg/config"
	"FinScope/pkg/server"
)

var acquisitionSet = wire.NewSet(
	ProvideLogger,
	ProvideRegisterer,
	ProvideMetrics,
	ProvideBreakers,
	ProvideYahoo,
	ProvideFinnhub,
	ProvideMarketData,
	ProvideSecondarySignals,
	ProvideSynthesizer,
)

// InitializeApp wires the long-running service.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		acquisitionSet,

		// Sinks and infrastructure
		ProvideAnalysisStore,
		ProvideKafkaProducer,
		ProvideResultPublisher,
		ProvideHub,
		ProvideResponseCache,

		// Use cases
		ProvideAnalyzer,
		ProvideScanner,
		ProvideRequestsConsumer,

		// Transport and lifecycle
		ProvideHTTPServer,
		ProvideApp,
	)
	return &server.App{}, nil
}

// InitializeAnalyzer wires a sink-less analyzer for one-shot CLI runs.
func InitializeAnalyzer(cfg *config.Config) (*usecase.Analyzer, error) {
	wire.Build(
		acquisitionSet,
		ProvideOneShotAnalyzer,
	)
	return &usecase.Analyzer{}, nil
}
