package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"FinScope/internal/domain/models"
	domrepo "FinScope/internal/domain/repository"
	"FinScope/internal/services/features"
	"FinScope/internal/services/forecast"
	"FinScope/internal/services/fusion"
	"FinScope/internal/services/indicators"
	"FinScope/pkg/logger"
	"FinScope/pkg/metrics"
	"FinScope/pkg/util"
)

const (
	changeLookback   = 30
	volatilityWindow = 20
	sinkTimeout      = 5 * time.Second
)

// Analyzer runs one full analysis cycle per call. Calls share no mutable state.
type Analyzer struct {
	data    *MarketData
	signals *SecondarySignalsUseCase
	synth   *forecast.Synthesizer
	sinks   []domrepo.AnalysisSink

	timeout time.Duration
	newID   func() string
	now     func() time.Time
	log     *logger.Logger
	metrics domrepo.Metrics
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithSecondarySignals attaches the supplementary signal block to results.
func WithSecondarySignals(uc *SecondarySignalsUseCase) AnalyzerOption {
	return func(a *Analyzer) { a.signals = uc }
}

// WithSinks adds sinks that receive every finished analysis.
func WithSinks(s ...domrepo.AnalysisSink) AnalyzerOption {
	return func(a *Analyzer) { a.sinks = append(a.sinks, s...) }
}

// WithAnalysisTimeout sets the deadline for one analysis.
func WithAnalysisTimeout(d time.Duration) AnalyzerOption {
	return func(a *Analyzer) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithAnalyzerMetrics sets the metrics recorder.
func WithAnalyzerMetrics(m domrepo.Metrics) AnalyzerOption {
	return func(a *Analyzer) {
		if m != nil {
			a.metrics = m
		}
	}
}

func NewAnalyzer(data *MarketData, synth *forecast.Synthesizer, log *logger.Logger, opts ...AnalyzerOption) *Analyzer {
	if log == nil {
		log = logger.Nop()
	}
	a := &Analyzer{
		data:    data,
		synth:   synth,
		timeout: 30 * time.Second,
		newID:   uuid.NewString,
		now:     time.Now,
		log:     log,
		metrics: metrics.Noop{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze produces the AnalysisResult for ticker. The only errors are
// ErrInvalidTicker and *models.QuoteUnavailableError.
func (a *Analyzer) Analyze(ctx context.Context, ticker string) (*models.AnalysisResult, error) {
	symbol := util.NormalizeTicker(ticker)
	if symbol == "" {
		return nil, models.ErrInvalidTicker
	}
	start := time.Now()

	actx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	var (
		quote   *models.Quote
		qerr    error
		series  models.HistoricalSeries
		source  models.HistorySource
		news    []models.NewsItem
		newsOK  bool
		signals *models.SecondarySignals
		wg      sync.WaitGroup
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		quote, qerr = a.data.Quote(actx, symbol)
	}()
	go func() {
		defer wg.Done()
		series, source = a.data.History(actx, symbol)
	}()
	go func() {
		defer wg.Done()
		news, newsOK = a.data.News(actx, symbol)
	}()
	if a.signals != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			signals, _ = a.signals.Get(actx, symbol)
		}()
	}
	wg.Wait()

	if qerr != nil {
		a.metrics.RecordAnalysis(false, time.Since(start).Seconds())
		a.log.Error("analysis failed", logger.String("symbol", symbol), logger.Error(qerr))
		return nil, qerr
	}

	oldest := series.Reversed()
	ind := indicators.Compute(oldest)
	fused := fusion.Fuse(*quote, ind, news)

	mc := forecast.MarketContext{
		Ticker:         symbol,
		Quote:          *quote,
		Indicators:     ind,
		Vectors:        fused.Vectors,
		Coherence:      fused.Coherence,
		Verdict:        fused.Verdict,
		Trend:          fused.Trend,
		PriceChange30d: features.PriceChangePct(oldest, changeLookback),
		Volatility:     features.RealizedVolatility(features.ComputeLogReturns(oldest), volatilityWindow, features.TradingDaysPerYear),
		News:           news,
		AsOf:           a.now().UTC(),
	}
	fc := a.synth.Synthesize(actx, mc)

	result := &models.AnalysisResult{
		ID:         a.newID(),
		Ticker:     symbol,
		Timestamp:  mc.AsOf,
		Vectors:    fused.Vectors,
		Coherence:  fused.Coherence,
		Verdict:    fused.Verdict,
		Confidence: fused.Confidence,
		Trend:      fused.Trend,
		Quote:      *quote,
		Indicators: ind,
		BullCase:   fc.Bull,
		BearCase:   fc.Bear,
		Prediction: fc.Prediction,
		News:       news,
		Signals:    signals,
		Quality: models.DataQuality{
			QuoteSource:   quote.Source,
			HistorySource: source,
			HistoryBars:   len(series),
			NewsAvailable: newsOK,
			Forecast:      fc.Origin,
		},
	}

	elapsed := time.Since(start)
	a.metrics.RecordVerdict(result.Verdict)
	a.metrics.RecordAnalysis(true, elapsed.Seconds())
	a.log.Info("analysis completed",
		logger.String("symbol", symbol),
		logger.String("verdict", string(result.Verdict)),
		logger.Float64("coherence", result.Coherence),
		logger.String("history_source", string(source)),
		logger.Bool("degraded", result.Quality.Degraded()),
		logger.Duration("elapsed", elapsed),
	)

	a.emit(ctx, result)
	return result, nil
}

// emit hands the result to every sink. It runs on the caller's context, not
// the analysis deadline, so a slow analysis still gets persisted.
func (a *Analyzer) emit(ctx context.Context, r *models.AnalysisResult) {
	if len(a.sinks) == 0 {
		return
	}
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sinkTimeout)
	defer cancel()

	var wg sync.WaitGroup
	for _, s := range a.sinks {
		wg.Add(1)
		go func(s domrepo.AnalysisSink) {
			defer wg.Done()
			if err := s.Consume(sctx, r); err != nil {
				a.metrics.RecordError("sink_" + s.Name())
				a.log.Warn("analysis sink failed",
					logger.String("sink", s.Name()),
					logger.String("symbol", r.Ticker),
					logger.Error(err),
				)
			}
		}(s)
	}
	wg.Wait()
}
