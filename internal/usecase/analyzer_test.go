package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinScope/internal/domain/models"
	"FinScope/internal/services/forecast"
	"FinScope/internal/services/synthetic"
)

func newTestAnalyzer(quote *fakeQuote, sinks ...*recordingSink) *Analyzer {
	data := NewMarketData(nil,
		WithQuoteProviders(quote),
		WithHistoryStep(models.HistorySourceChart, &fakeHistory{name: "chart", series: synthetic.History("AAPL", fixedNow, 42)}),
		WithNewsProvider(&fakeNews{items: []models.NewsItem{
			{Title: "Record revenue", Score: 0.7, Sentiment: models.SentimentBullish},
			{Title: "Analyst downgrade", Score: -0.3, Sentiment: models.SentimentBearish},
		}}),
		withClock(func() time.Time { return fixedNow }),
	)
	opts := []AnalyzerOption{WithAnalysisTimeout(5 * time.Second)}
	for _, s := range sinks {
		opts = append(opts, WithSinks(s))
	}
	a := NewAnalyzer(data, forecast.NewSynthesizer(nil), nil, opts...)
	a.now = func() time.Time { return fixedNow }
	a.newID = func() string { return "id-1" }
	return a
}

func TestAnalyzeEndToEnd(t *testing.T) {
	sink := &recordingSink{}
	a := newTestAnalyzer(&fakeQuote{name: "yahoo", quote: validQuote(152.3)}, sink)

	res, err := a.Analyze(context.Background(), " aapl ")
	require.NoError(t, err)

	assert.Equal(t, "id-1", res.ID)
	assert.Equal(t, "AAPL", res.Ticker)
	assert.Equal(t, fixedNow, res.Timestamp)
	assert.Equal(t, 152.3, res.Quote.Price)
	assert.Len(t, res.News, 2)
	assert.Nil(t, res.Signals)

	for _, v := range []float64{res.Vectors.Sentiment, res.Vectors.Price, res.Vectors.Volume} {
		assert.GreaterOrEqual(t, v, -1.0)
		assert.LessOrEqual(t, v, 1.0)
	}
	assert.Contains(t, []models.Verdict{
		models.VerdictStrongBuy, models.VerdictBuy, models.VerdictHold, models.VerdictSell, models.VerdictStrongSell,
	}, res.Verdict)
	assert.GreaterOrEqual(t, res.Prediction.Confidence, float64(models.MinPredictionConfidence))
	assert.LessOrEqual(t, res.Prediction.Confidence, float64(models.MaxPredictionConfidence))

	assert.Equal(t, models.DataQuality{
		QuoteSource:   "yahoo",
		HistorySource: models.HistorySourceChart,
		HistoryBars:   100,
		NewsAvailable: true,
		Forecast:      models.OriginRuleBased,
	}, res.Quality)

	require.Len(t, sink.results, 1)
	assert.Same(t, res, sink.results[0])
	assert.Equal(t, TriggerAPI, sink.triggers[0])
}

func TestAnalyzeIsDeterministicForSameInputs(t *testing.T) {
	a := newTestAnalyzer(&fakeQuote{name: "yahoo", quote: validQuote(100)})
	first, err := a.Analyze(context.Background(), "AAPL")
	require.NoError(t, err)
	second, err := a.Analyze(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestAnalyzeRejectsEmptyTicker(t *testing.T) {
	a := newTestAnalyzer(&fakeQuote{name: "yahoo", quote: validQuote(100)})
	_, err := a.Analyze(context.Background(), "   ")
	assert.ErrorIs(t, err, models.ErrInvalidTicker)
}

func TestAnalyzeQuoteUnavailableSkipsSinks(t *testing.T) {
	sink := &recordingSink{}
	a := newTestAnalyzer(&fakeQuote{name: "yahoo", err: errors.New("down")}, sink)

	_, err := a.Analyze(context.Background(), "AAPL")
	var qerr *models.QuoteUnavailableError
	require.ErrorAs(t, err, &qerr)
	assert.Empty(t, sink.results)
}

func TestSinkErrorDoesNotFailAnalysis(t *testing.T) {
	sink := &recordingSink{err: errors.New("disk full")}
	a := newTestAnalyzer(&fakeQuote{name: "yahoo", quote: validQuote(100)}, sink)

	res, err := a.Analyze(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.NotNil(t, res)
	assert.Len(t, sink.results, 1)
}

func TestSecondarySignalsEstimatesFailures(t *testing.T) {
	flow := &models.OptionsFlow{Symbol: "AAPL", PutCallRatio: 0.6, ImpliedVol: 30}
	uc := NewSecondarySignalsUseCase(nil,
		WithOptionsProvider(&fakeOptions{flow: flow}),
		WithCalendarProvider(&fakeCalendar{err: errors.New("502")}),
	)
	uc.now = func() time.Time { return fixedNow }

	res, err := uc.Get(context.Background(), "aapl")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", res.Symbol)
	assert.Same(t, flow, res.Options)
	require.NotNil(t, res.Calendar)
	assert.True(t, res.Calendar.Estimated)
	require.NotNil(t, res.Social)
	assert.True(t, res.Social.Estimated)
	assert.GreaterOrEqual(t, res.Social.Score, -0.3)
	assert.LessOrEqual(t, res.Social.Score, 0.3)

	assert.Contains(t, res.Errors, "calendar")
	assert.Contains(t, res.Errors, "social")
	assert.NotContains(t, res.Errors, "options")
	assert.Len(t, res.Scores, 3)

	again, err := uc.Get(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, res.Calendar, again.Calendar)
	assert.Equal(t, res.CombinedScore, again.CombinedScore)
}

func TestSecondarySignalsRejectsEmptyTicker(t *testing.T) {
	_, err := NewSecondarySignalsUseCase(nil).Get(context.Background(), "")
	assert.ErrorIs(t, err, models.ErrInvalidTicker)
}
