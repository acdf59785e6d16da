package models

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPredictionClampsAndSpans72h(t *testing.T) {
	start := time.Date(2024, 5, 6, 14, 0, 0, 0, time.UTC)
	p, err := NewPrediction(PredictionDraft{
		Direction:       "bullish",
		Confidence:      120,
		PredictedChange: 2.5,
		PriceTarget:     153.75,
		SupportLevel:    160,
		ResistanceLevel: 140,
		Start:           start,
	})
	require.NoError(t, err)

	assert.Equal(t, DirectionUp, p.Direction)
	assert.Equal(t, float64(MaxPredictionConfidence), p.Confidence)
	assert.Equal(t, 140.0, p.SupportLevel)
	assert.Equal(t, 160.0, p.ResistanceLevel)
	assert.Equal(t, 72*time.Hour, p.EndTime.Sub(p.StartTime))
	assert.NotNil(t, p.KeyFactors)
	assert.NotNil(t, p.RiskFactors)

	p, err = NewPrediction(PredictionDraft{Direction: "DOWN", Confidence: 5, PriceTarget: 1, Start: start})
	require.NoError(t, err)
	assert.Equal(t, float64(MinPredictionConfidence), p.Confidence)
}

func TestNewPredictionRejectsInvalid(t *testing.T) {
	start := time.Now()
	cases := []PredictionDraft{
		{Direction: "MAYBE", Start: start},
		{Direction: "UP", Confidence: math.NaN(), Start: start},
		{Direction: "UP", PriceTarget: -1, Start: start},
		{Direction: "UP"},
	}
	for _, d := range cases {
		_, err := NewPrediction(d)
		assert.True(t, errors.Is(err, ErrInvalidPrediction), "draft %+v", d)
	}
}

func TestNewCaseClamps(t *testing.T) {
	c := NewCase(130, BullScoreMin, BullScoreMax, " strong ", nil, nil)
	assert.Equal(t, float64(BullScoreMax), c.Score)
	assert.Equal(t, "strong", c.Summary)
	assert.Equal(t, []string{}, c.Arguments)

	c = NewCase(math.NaN(), BearScoreMin, BearScoreMax, "", nil, nil)
	assert.Equal(t, float64(BearScoreMin), c.Score)
}

func TestQuoteUnavailableError(t *testing.T) {
	err := error(&QuoteUnavailableError{
		Ticker:   "ZZZZ",
		Attempts: []ProviderFailure{{Provider: "yahoo-quote", Err: ErrNoData}},
	})
	assert.True(t, errors.Is(err, ErrQuoteUnavailable))
	assert.Contains(t, err.Error(), "ZZZZ")
	assert.Contains(t, err.Error(), "yahoo-quote")

	var qe *QuoteUnavailableError
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, "ZZZZ", qe.Ticker)
}

func TestHistoricalBarValid(t *testing.T) {
	assert.True(t, HistoricalBar{Open: 10, High: 11, Low: 9, Close: 10.5, Volume: 100}.Valid())
	assert.False(t, HistoricalBar{Open: 10, High: 10.2, Low: 9, Close: 10.5}.Valid())
	assert.False(t, HistoricalBar{Open: 10, High: 11, Low: 9, Close: 10.5, Volume: -1}.Valid())
}

func TestSeriesHelpers(t *testing.T) {
	s := HistoricalSeries{{Date: "c", Close: 3}, {Date: "b", Close: 2}, {Date: "a", Close: 1}}
	r := s.Reversed()
	assert.Equal(t, []float64{1, 2, 3}, r.Closes())
	assert.Equal(t, "c", s[0].Date, "original untouched")
	assert.Len(t, s.Latest(2), 2)
	assert.Len(t, s.Latest(10), 3)
}
