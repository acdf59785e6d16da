package repository

import (
	"context"
	"time"

	"FinScope/internal/domain/models"
)

// QuoteProvider is one strategy in the quote fallback chain.
type QuoteProvider interface {
	Name() string
	FetchQuote(ctx context.Context, symbol string) (*models.Quote, error)
}

// HistoryProvider returns daily bars, most-recent-first.
type HistoryProvider interface {
	Name() string
	FetchHistory(ctx context.Context, symbol string) (models.HistoricalSeries, error)
}

// NewsProvider returns headlines published in [from,to].
type NewsProvider interface {
	Name() string
	FetchNews(ctx context.Context, symbol string, from, to time.Time) ([]models.NewsItem, error)
}

type OptionsProvider interface {
	Name() string
	FetchOptions(ctx context.Context, symbol string) (*models.OptionsFlow, error)
}

type CalendarProvider interface {
	Name() string
	FetchCalendar(ctx context.Context, symbol string) (*models.EventsCalendar, error)
}

type SocialProvider interface {
	Name() string
	FetchSocial(ctx context.Context, symbol string) (*models.SocialSentiment, error)
}

// Credentialed is implemented by providers that can only run with an API key.
// Chains skip providers reporting false instead of counting them as failures.
type Credentialed interface {
	HasCredentials() bool
}

// AnalysisStore persists finished analyses.
type AnalysisStore interface {
	Init(ctx context.Context) error
	Save(ctx context.Context, r *models.AnalysisResult) error
	Recent(ctx context.Context, ticker string, limit int) ([]models.AnalysisResult, error)
	Close() error
}

// AnalysisSink receives every completed analysis. Sink errors are logged by
// the caller and never fail the analysis.
type AnalysisSink interface {
	Name() string
	Consume(ctx context.Context, r *models.AnalysisResult) error
}

// ResultPublisher fans finished analyses out to other systems.
type ResultPublisher interface {
	Publish(ctx context.Context, r *models.ScanResult) error
	Close() error
}

type Metrics interface {
	RecordProviderAttempt(kind, provider string, ok bool, seconds float64)
	RecordFallback(kind, from string)
	RecordDegraded(kind string)
	RecordReasoning(origin models.ForecastOrigin, reason string)
	RecordVerdict(v models.Verdict)
	RecordAnalysis(ok bool, seconds float64)
	RecordError(kind string)
}
