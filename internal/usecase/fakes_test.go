package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"FinScope/internal/domain/models"
)

type fakeQuote struct {
	name    string
	quote   *models.Quote
	err     error
	noCreds bool
	calls   atomic.Int32
}

func (f *fakeQuote) Name() string         { return f.name }
func (f *fakeQuote) HasCredentials() bool { return !f.noCreds }

func (f *fakeQuote) FetchQuote(context.Context, string) (*models.Quote, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	q := *f.quote
	return &q, nil
}

type fakeHistory struct {
	name   string
	series models.HistoricalSeries
	err    error
	calls  atomic.Int32
}

func (f *fakeHistory) Name() string { return f.name }

func (f *fakeHistory) FetchHistory(context.Context, string) (models.HistoricalSeries, error) {
	f.calls.Add(1)
	return f.series, f.err
}

// symbolQuote answers only for known symbols and reports ErrNoData otherwise.
type symbolQuote struct {
	name   string
	quotes map[string]*models.Quote
	calls  sync.Map
}

func (f *symbolQuote) Name() string { return f.name }

func (f *symbolQuote) FetchQuote(_ context.Context, symbol string) (*models.Quote, error) {
	n, _ := f.calls.LoadOrStore(symbol, new(atomic.Int32))
	n.(*atomic.Int32).Add(1)
	q, ok := f.quotes[symbol]
	if !ok {
		return nil, models.ErrNoData
	}
	c := *q
	return &c, nil
}

func (f *symbolQuote) callsFor(symbol string) int32 {
	n, ok := f.calls.Load(symbol)
	if !ok {
		return 0
	}
	return n.(*atomic.Int32).Load()
}

type symbolHistory struct {
	name   string
	series map[string]models.HistoricalSeries
}

func (f *symbolHistory) Name() string { return f.name }

func (f *symbolHistory) FetchHistory(_ context.Context, symbol string) (models.HistoricalSeries, error) {
	s, ok := f.series[symbol]
	if !ok {
		return nil, models.ErrNoData
	}
	return s, nil
}

type fakeNews struct {
	items    []models.NewsItem
	err      error
	from, to time.Time
}

func (f *fakeNews) Name() string { return "fake-news" }

func (f *fakeNews) FetchNews(_ context.Context, _ string, from, to time.Time) ([]models.NewsItem, error) {
	f.from, f.to = from, to
	return f.items, f.err
}

type fakeOptions struct {
	flow *models.OptionsFlow
	err  error
}

func (f *fakeOptions) Name() string { return "fake-options" }

func (f *fakeOptions) FetchOptions(context.Context, string) (*models.OptionsFlow, error) {
	return f.flow, f.err
}

type fakeCalendar struct{ err error }

func (f *fakeCalendar) Name() string { return "fake-calendar" }

func (f *fakeCalendar) FetchCalendar(context.Context, string) (*models.EventsCalendar, error) {
	return nil, f.err
}

// recordingSink keeps every consumed result with the trigger seen on ctx.
type recordingSink struct {
	mu       sync.Mutex
	results  []*models.AnalysisResult
	triggers []Trigger
	err      error
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Consume(ctx context.Context, r *models.AnalysisResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, r)
	s.triggers = append(s.triggers, TriggerFrom(ctx))
	return s.err
}

type recordingPublisher struct {
	mu  sync.Mutex
	out []*models.ScanResult
	err error
}

func (p *recordingPublisher) Publish(_ context.Context, r *models.ScanResult) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.out = append(p.out, r)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) published() []*models.ScanResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*models.ScanResult(nil), p.out...)
}
