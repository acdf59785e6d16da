package usecase

import (
	"context"
	"errors"
	"time"

	"FinScope/internal/domain/models"
	domrepo "FinScope/internal/domain/repository"
	"FinScope/internal/service/breaker"
	"FinScope/internal/services/synthetic"
	"FinScope/pkg/logger"
	"FinScope/pkg/metrics"
)

const (
	kindQuote   = "quote"
	kindHistory = "history"
	kindNews    = "news"
)

// HistoryStep is one entry of the history chain together with the source tag
// recorded when it succeeds.
type HistoryStep struct {
	Source   models.HistorySource
	Provider domrepo.HistoryProvider
}

// MarketData runs the provider fallback chains. Each provider is tried at most
// once per call, in order; a failure moves to the next provider.
type MarketData struct {
	quotes    []domrepo.QuoteProvider
	histories []HistoryStep
	news      domrepo.NewsProvider

	breakers       *breaker.Manager
	attemptTimeout time.Duration
	historyBars    int
	newsLookback   time.Duration
	seeded         bool
	now            func() time.Time

	log     *logger.Logger
	metrics domrepo.Metrics
}

// MarketDataOption configures MarketData.
type MarketDataOption func(*MarketData)

// WithQuoteProviders appends providers to the quote chain in order.
func WithQuoteProviders(p ...domrepo.QuoteProvider) MarketDataOption {
	return func(m *MarketData) { m.quotes = append(m.quotes, p...) }
}

// WithHistoryStep appends a history provider tagged with its source.
func WithHistoryStep(source models.HistorySource, p domrepo.HistoryProvider) MarketDataOption {
	return func(m *MarketData) { m.histories = append(m.histories, HistoryStep{Source: source, Provider: p}) }
}

// WithNewsProvider sets the news provider.
func WithNewsProvider(p domrepo.NewsProvider) MarketDataOption {
	return func(m *MarketData) { m.news = p }
}

// WithBreakers sets the per-provider circuit breakers.
func WithBreakers(b *breaker.Manager) MarketDataOption {
	return func(m *MarketData) { m.breakers = b }
}

// WithAttemptTimeout sets the deadline for a single provider call.
func WithAttemptTimeout(d time.Duration) MarketDataOption {
	return func(m *MarketData) {
		if d > 0 {
			m.attemptTimeout = d
		}
	}
}

// WithHistoryBars sets the number of bars kept from a history.
func WithHistoryBars(n int) MarketDataOption {
	return func(m *MarketData) {
		if n > 0 {
			m.historyBars = n
		}
	}
}

// WithNewsLookback sets how far back headlines are fetched.
func WithNewsLookback(d time.Duration) MarketDataOption {
	return func(m *MarketData) {
		if d > 0 {
			m.newsLookback = d
		}
	}
}

// WithSeededSynthesis makes synthetic history a pure function of the symbol.
// Otherwise the seed also mixes in the current time.
func WithSeededSynthesis(on bool) MarketDataOption {
	return func(m *MarketData) { m.seeded = on }
}

// WithMarketDataMetrics sets the metrics recorder.
func WithMarketDataMetrics(mt domrepo.Metrics) MarketDataOption {
	return func(m *MarketData) {
		if mt != nil {
			m.metrics = mt
		}
	}
}

func withClock(now func() time.Time) MarketDataOption {
	return func(m *MarketData) { m.now = now }
}

// NewMarketData builds the acquisition chains from opts.
func NewMarketData(log *logger.Logger, opts ...MarketDataOption) *MarketData {
	if log == nil {
		log = logger.Nop()
	}
	m := &MarketData{
		attemptTimeout: 8 * time.Second,
		historyBars:    100,
		newsLookback:   7 * 24 * time.Hour,
		seeded:         true,
		now:            time.Now,
		log:            log,
		metrics:        metrics.Noop{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func skipped(p interface{}) bool {
	c, ok := p.(domrepo.Credentialed)
	return ok && !c.HasCredentials()
}

func attempt[T any](ctx context.Context, m *MarketData, kind, name string, fn func(context.Context) (T, error)) (T, error) {
	actx, cancel := context.WithTimeout(ctx, m.attemptTimeout)
	defer cancel()

	start := time.Now()
	v, err := breaker.Do(m.breakers, name, func() (T, error) {
		v, err := fn(actx)
		if err != nil && ctx.Err() != nil {
			err = breaker.Abandoned(err)
		}
		return v, err
	})
	m.metrics.RecordProviderAttempt(kind, name, err == nil, time.Since(start).Seconds())
	return v, err
}

func (m *MarketData) fellThrough(kind, provider, symbol string, err error) {
	m.log.Warn("provider failed, falling back",
		logger.String("kind", kind),
		logger.String("provider", provider),
		logger.String("symbol", symbol),
		logger.Error(err),
	)
	m.metrics.RecordFallback(kind, provider)
}

// Quote walks the quote chain. When every provider fails it returns a
// *models.QuoteUnavailableError listing each attempt.
func (m *MarketData) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	qerr := &models.QuoteUnavailableError{Ticker: symbol}
	for _, p := range m.quotes {
		if skipped(p) {
			m.log.Debug("skipping provider without credentials", logger.String("provider", p.Name()))
			continue
		}
		if err := ctx.Err(); err != nil {
			qerr.Attempts = append(qerr.Attempts, models.ProviderFailure{Provider: p.Name(), Err: err})
			break
		}
		q, err := attempt(ctx, m, kindQuote, p.Name(), func(ctx context.Context) (*models.Quote, error) {
			return p.FetchQuote(ctx, symbol)
		})
		if err == nil && q.Valid() {
			q.Symbol = symbol
			if q.Source == "" {
				q.Source = p.Name()
			}
			return q, nil
		}
		if err == nil {
			err = models.ErrNoData
		}
		qerr.Attempts = append(qerr.Attempts, models.ProviderFailure{Provider: p.Name(), Err: err})
		m.fellThrough(kindQuote, p.Name(), symbol, err)
	}
	m.metrics.RecordError("quote_unavailable")
	return nil, qerr
}

// History walks the history chain and synthesizes bars when it is exhausted.
// It never fails. The series is most-recent-first and capped at the configured
// bar count.
func (m *MarketData) History(ctx context.Context, symbol string) (models.HistoricalSeries, models.HistorySource) {
	for _, step := range m.histories {
		p := step.Provider
		if skipped(p) {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		series, err := attempt(ctx, m, kindHistory, p.Name(), func(ctx context.Context) (models.HistoricalSeries, error) {
			return p.FetchHistory(ctx, symbol)
		})
		if err == nil && len(series) > 0 {
			return series.Latest(m.historyBars), step.Source
		}
		if err == nil {
			err = models.ErrNoData
		}
		if errors.Is(err, models.ErrRateLimited) {
			m.log.Info("history provider rate limited", logger.String("provider", p.Name()), logger.String("symbol", symbol))
		}
		m.fellThrough(kindHistory, p.Name(), symbol, err)
	}

	seed := synthetic.Seed(symbol)
	if !m.seeded {
		seed ^= uint64(m.now().UnixNano())
	}
	m.log.Warn("history synthesized", logger.String("symbol", symbol))
	m.metrics.RecordDegraded(kindHistory)
	return synthetic.History(symbol, m.now(), seed).Latest(m.historyBars), models.HistorySourceSynthetic
}

// News returns headlines from the lookback window. ok is false when the
// provider is missing or failed; the list is then empty, never nil.
func (m *MarketData) News(ctx context.Context, symbol string) (items []models.NewsItem, ok bool) {
	if m.news == nil || skipped(m.news) {
		m.metrics.RecordDegraded(kindNews)
		return []models.NewsItem{}, false
	}
	to := m.now()
	from := to.Add(-m.newsLookback)
	items, err := attempt(ctx, m, kindNews, m.news.Name(), func(ctx context.Context) ([]models.NewsItem, error) {
		return m.news.FetchNews(ctx, symbol, from, to)
	})
	if err != nil {
		m.fellThrough(kindNews, m.news.Name(), symbol, err)
		m.metrics.RecordDegraded(kindNews)
		return []models.NewsItem{}, false
	}
	if items == nil {
		items = []models.NewsItem{}
	}
	return items, true
}
