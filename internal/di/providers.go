package di

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"FinScope/internal/domain/models"
	"FinScope/internal/domain/repository"
	"FinScope/internal/handler/api"
	"FinScope/internal/handler/stream"
	internalrepo "FinScope/internal/repository"
	"FinScope/internal/service/alphavantage"
	"FinScope/internal/service/breaker"
	"FinScope/internal/service/finnhub"
	"FinScope/internal/service/ratelimit"
	"FinScope/internal/service/reasoning"
	"FinScope/internal/service/stocktwits"
	"FinScope/internal/service/yahoo"
	"FinScope/internal/services/forecast"
	"FinScope/internal/usecase"
	"FinScope/pkg/cache"
	pkgch "FinScope/pkg/clickhouse"
	"FinScope/pkg/config"
	xhttp "FinScope/pkg/http"
	pkgkafka "FinScope/pkg/kafka"
	"FinScope/pkg/logger"
	"FinScope/pkg/metrics"
	"FinScope/pkg/server"
)

// ProvideLogger builds the root logger from the log section.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(logger.String("env", cfg.Environment)), nil
}

// ProvideRegisterer returns the registry served on the metrics path.
func ProvideRegisterer() prometheus.Registerer {
	return prometheus.DefaultRegisterer
}

func ProvideMetrics(reg prometheus.Registerer) repository.Metrics {
	return metrics.New(reg)
}

func ProvideBreakers(cfg *config.Config, log *logger.Logger) *breaker.Manager {
	b := cfg.Providers.Breaker
	return breaker.NewManager(breaker.Settings{
		MaxRequests:         b.MaxRequests,
		Interval:            b.Interval,
		Timeout:             b.Timeout,
		ConsecutiveFailures: b.ConsecutiveFailures,
	}, log)
}

func httpOptions(cfg *config.Config) []xhttp.ClientOption {
	return []xhttp.ClientOption{
		xhttp.WithTimeout(cfg.Providers.Timeout),
		xhttp.WithUserAgent(cfg.Providers.UserAgent),
	}
}

func ProvideYahoo(cfg *config.Config) *yahoo.Client {
	return yahoo.NewClient(cfg.Providers.Yahoo.QuoteURL, cfg.Providers.Yahoo.ChartURL, httpOptions(cfg)...)
}

func ProvideFinnhub(cfg *config.Config) *finnhub.Client {
	return finnhub.New(cfg.Providers.Finnhub.BaseURL, cfg.Providers.Finnhub.APIKey, httpOptions(cfg)...)
}

// ProvideMarketData assembles the fallback chains: quotes A, A', B; history
// chart then time series then synthetic; news from B.
func ProvideMarketData(
	cfg *config.Config,
	log *logger.Logger,
	breakers *breaker.Manager,
	m repository.Metrics,
	yh *yahoo.Client,
	fh *finnhub.Client,
) *usecase.MarketData {
	av := alphavantage.New(
		cfg.Providers.AlphaVantage.BaseURL,
		cfg.Providers.AlphaVantage.APIKey,
		cfg.Providers.AlphaVantage.RequestsPerMinute,
		httpOptions(cfg)...,
	)
	return usecase.NewMarketData(log,
		usecase.WithQuoteProviders(yh.Quotes(), yh.ChartQuotes(), fh),
		usecase.WithHistoryStep(models.HistorySourceChart, yh.History()),
		usecase.WithHistoryStep(models.HistorySourceTimeSeries, av),
		usecase.WithNewsProvider(fh),
		usecase.WithBreakers(breakers),
		usecase.WithAttemptTimeout(cfg.Providers.Timeout),
		usecase.WithHistoryBars(cfg.Analysis.HistoryBars),
		usecase.WithNewsLookback(cfg.Analysis.NewsLookback),
		usecase.WithSeededSynthesis(cfg.Analysis.SyntheticSeeded),
		usecase.WithMarketDataMetrics(m),
	)
}

func ProvideSecondarySignals(
	cfg *config.Config,
	log *logger.Logger,
	breakers *breaker.Manager,
	m repository.Metrics,
	yh *yahoo.Client,
	fh *finnhub.Client,
) *usecase.SecondarySignalsUseCase {
	return usecase.NewSecondarySignalsUseCase(log,
		usecase.WithOptionsProvider(yh.Options()),
		usecase.WithCalendarProvider(fh),
		usecase.WithSocialProvider(stocktwits.New(cfg.Providers.StockTwits.BaseURL, httpOptions(cfg)...)),
		usecase.WithSignalsBreakers(breakers),
		usecase.WithSignalsTimeout(cfg.Providers.Timeout),
		usecase.WithSignalsMetrics(m),
	)
}

// ProvideSynthesizer wires the external reasoner only when reasoning is
// enabled; otherwise every forecast is rule-based.
func ProvideSynthesizer(cfg *config.Config, log *logger.Logger, m repository.Metrics) *forecast.Synthesizer {
	opts := []forecast.Option{
		forecast.WithTimeout(cfg.Reasoning.Timeout),
		forecast.WithMetrics(m),
	}
	if r := cfg.Reasoning; r.Enabled {
		opts = append(opts, forecast.WithReasoner(reasoning.New(r.URL, r.APIKey, r.Timeout,
			reasoning.WithModel(r.Model),
			reasoning.WithMaxTokens(r.MaxTokens),
			reasoning.WithTemperature(r.Temperature),
			reasoning.WithAuthHeader(r.APIKeyHeader, r.APIVersion),
			reasoning.WithRetry(r.Attempts),
		)))
	}
	return forecast.NewSynthesizer(log, opts...)
}

// ProvideAnalysisStore opens the configured backend and initializes its
// schema. Backend "none" yields a nil store.
func ProvideAnalysisStore(cfg *config.Config, log *logger.Logger) (repository.AnalysisStore, error) {
	var store repository.AnalysisStore
	switch cfg.Backend.Type {
	case "none", "":
		return nil, nil
	case "sqlite":
		s, err := internalrepo.NewSQLiteAnalysisStore(cfg.SQLite.Path, log)
		if err != nil {
			return nil, fmt.Errorf("sqlite store: %w", err)
		}
		store = s
	case "clickhouse":
		ch := cfg.ClickHouse
		client, err := pkgch.NewClient(context.Background(),
			pkgch.WithAddr(ch.Host, ch.Port),
			pkgch.WithDatabase(ch.Database),
			pkgch.WithCredentials(ch.User, ch.Password),
			pkgch.WithHTTP(ch.UseHTTP),
			pkgch.WithTimeouts(ch.DialTimeout, ch.ReadTimeout),
			pkgch.WithMaxConnections(ch.MaxOpenConns, ch.MaxIdleConns),
			pkgch.WithAsyncInsert(ch.AsyncInsert, false),
			pkgch.WithMaxExecutionTime(ch.MaxExecutionTime),
		)
		if err != nil {
			return nil, fmt.Errorf("clickhouse client: %w", err)
		}
		store = internalrepo.NewCHAnalysisStore(client, log)
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend.Type)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("%s schema: %w", cfg.Backend.Type, err)
	}
	return store, nil
}

// ProvideKafkaProducer returns nil when kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config, reg prometheus.Registerer) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	k := cfg.Kafka
	producer, err := pkgkafka.NewProducer(reg,
		pkgkafka.WithBrokers(k.Brokers),
		pkgkafka.WithCompression(k.Compression),
		pkgkafka.WithRequiredAcks(k.RequiredAcks),
		pkgkafka.WithMaxAttempts(k.Producer.MaxAttempts),
		pkgkafka.WithBatchTimeout(k.Producer.BatchTimeout),
		pkgkafka.WithWriteTimeout(k.Producer.WriteTimeout),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

func ProvideResultPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.ResultPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.ResultsTopic)
}

func ProvideHub(log *logger.Logger) *stream.Hub {
	return stream.NewHub(log)
}

// ProvideAnalyzer attaches every configured sink: store, kafka and websocket.
func ProvideAnalyzer(
	cfg *config.Config,
	log *logger.Logger,
	m repository.Metrics,
	data *usecase.MarketData,
	signals *usecase.SecondarySignalsUseCase,
	synth *forecast.Synthesizer,
	store repository.AnalysisStore,
	pub repository.ResultPublisher,
	hub *stream.Hub,
) *usecase.Analyzer {
	sinks := []repository.AnalysisSink{hub}
	if store != nil {
		sinks = append(sinks, usecase.NewStoreSink(store))
	}
	if pub != nil {
		sinks = append(sinks, usecase.NewPublishSink(pub))
	}
	opts := []usecase.AnalyzerOption{
		usecase.WithSinks(sinks...),
		usecase.WithAnalysisTimeout(cfg.Analysis.Timeout),
		usecase.WithAnalyzerMetrics(m),
	}
	if cfg.Analysis.IncludeSignals {
		opts = append(opts, usecase.WithSecondarySignals(signals))
	}
	return usecase.NewAnalyzer(data, synth, log, opts...)
}

// ProvideOneShotAnalyzer is the CLI variant: no sinks, nothing to shut down.
func ProvideOneShotAnalyzer(
	cfg *config.Config,
	log *logger.Logger,
	m repository.Metrics,
	data *usecase.MarketData,
	signals *usecase.SecondarySignalsUseCase,
	synth *forecast.Synthesizer,
) *usecase.Analyzer {
	opts := []usecase.AnalyzerOption{
		usecase.WithAnalysisTimeout(cfg.Analysis.Timeout),
		usecase.WithAnalyzerMetrics(m),
	}
	if cfg.Analysis.IncludeSignals {
		opts = append(opts, usecase.WithSecondarySignals(signals))
	}
	return usecase.NewAnalyzer(data, synth, log, opts...)
}

// ProvideResponseCache layers redis under the in-memory cache when enabled.
// An unreachable redis is logged and the memory cache is used alone.
func ProvideResponseCache(cfg *config.Config, log *logger.Logger) cache.Service {
	mem := cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.Cache.MemoryMaxSize))
	r := cfg.Cache.Redis
	if !r.Enabled {
		return mem
	}
	remote, err := cache.NewRedisCache(context.Background(),
		cache.WithRedisAddr(r.Host, r.Port),
		cache.WithRedisAuth(r.Password, r.DB),
		cache.WithRedisPrefix(r.Prefix),
		cache.WithRedisPool(r.PoolSize, r.MinIdleConns),
	)
	if err != nil {
		log.Warn("redis unavailable, using memory cache only", logger.Error(err))
		return mem
	}
	return cache.NewLayeredCache(mem, remote)
}

func ProvideHTTPServer(
	cfg *config.Config,
	log *logger.Logger,
	analyzer *usecase.Analyzer,
	signals *usecase.SecondarySignalsUseCase,
	data *usecase.MarketData,
	store repository.AnalysisStore,
	respCache cache.Service,
	hub *stream.Hub,
) *xhttp.Server {
	rl := cfg.Server.RateLimit
	handler := api.NewAnalysisHandler(log, analyzer, signals,
		usecase.NewHistoryUseCase(data),
		usecase.NewRecentAnalysesUseCase(store),
		api.WithResponseCache(respCache, cfg.Cache.TTL),
		api.WithRateLimit(ratelimit.New(rl.RequestsPerMinute, rl.Burst)),
	)

	checks := map[string]api.HealthCheck{}
	if p, ok := store.(interface{ Ping(context.Context) error }); ok {
		checks["store"] = p.Ping
	}
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	return xhttp.NewServer(log,
		[]xhttp.Handler{handler, api.NewHealthHandler(checks), hub},
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithCORS(cfg.Server.CORS),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(metricsPath),
	)
}

// ProvideScanner returns nil when the scanner is disabled or the watchlist
// is empty.
func ProvideScanner(cfg *config.Config, analyzer *usecase.Analyzer, log *logger.Logger) *usecase.Scanner {
	if !cfg.Scanner.Enabled || len(cfg.Scanner.Watchlist) == 0 {
		return nil
	}
	return usecase.NewScanner(analyzer, cfg.Scanner.Schedule, cfg.Scanner.Watchlist, log)
}

// ProvideRequestsConsumer returns nil when kafka is disabled.
func ProvideRequestsConsumer(
	cfg *config.Config,
	log *logger.Logger,
	reg prometheus.Registerer,
	m repository.Metrics,
	analyzer *usecase.Analyzer,
	pub repository.ResultPublisher,
) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	kc := cfg.Kafka.Consumer
	consumer, err := pkgkafka.NewConsumer(log, reg,
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(kc.GroupID),
		pkgkafka.WithConsumerWorkers(kc.Workers),
		pkgkafka.WithConsumerBufferSize(kc.BufferSize),
		pkgkafka.WithConsumerRetry(kc.RetryMax, kc.BackoffMin, kc.BackoffMax),
		pkgkafka.WithConsumerDLQ(kc.DLQTopic),
		pkgkafka.WithConsumerFetch(kc.MinBytes, kc.MaxBytes, kc.MaxWait),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.RegisterHandler(usecase.NewRequestsHandler(cfg.Kafka.RequestsTopic, analyzer, pub, log, m))
	return consumer, nil
}

// ProvideApp orders components so the HTTP server stops first and the hub
// last; stores and producers close after every component has stopped.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	srv *xhttp.Server,
	hub *stream.Hub,
	scanner *usecase.Scanner,
	consumer *pkgkafka.Consumer,
	store repository.AnalysisStore,
	pub repository.ResultPublisher,
	respCache cache.Service,
) *server.App {
	app := server.New(log, cfg.Server.ShutdownTimeout)
	app.Add(hub)
	if consumer != nil {
		app.Add(consumer)
	}
	if scanner != nil {
		app.Add(scanner)
	}
	app.Add(srv)

	if pub != nil {
		app.OnClose("kafka-producer", pub)
	}
	if store != nil {
		app.OnClose("store", store)
	}
	app.OnClose("cache", respCache)
	return app
}
