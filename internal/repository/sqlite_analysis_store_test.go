package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinScope/internal/domain/models"
)

func newTestStore(t *testing.T) *SQLiteAnalysisStore {
	t.Helper()
	s, err := NewSQLiteAnalysisStore(filepath.Join(t.TempDir(), "db", "finscope.db"), nil)
	require.NoError(t, err)
	require.NoError(t, s.Init(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func analysisAt(id, ticker string, ts time.Time) *models.AnalysisResult {
	return &models.AnalysisResult{
		ID:         id,
		Ticker:     ticker,
		Timestamp:  ts,
		Verdict:    models.VerdictBuy,
		Confidence: models.ConfidenceMedium,
		Trend:      models.TrendUp,
		Quote:      models.Quote{Symbol: ticker, Price: 150},
		Vectors:    models.Vectors{Sentiment: 0.4, Price: 0.5, Volume: 0.1},
		Prediction: models.Prediction72h{Direction: models.DirectionUp, Confidence: 70, PredictedChange: 2.5},
		Quality:    models.DataQuality{QuoteSource: "yahoo-quote", HistorySource: models.HistorySourceSynthetic},
	}
}

func TestSQLiteStoreRecentNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 14, 15, 0, 0, 0, time.UTC)

	require.NoError(t, s.Save(ctx, analysisAt("a1", "AAPL", base)))
	require.NoError(t, s.Save(ctx, analysisAt("a2", "AAPL", base.Add(time.Hour))))
	require.NoError(t, s.Save(ctx, analysisAt("m1", "MSFT", base)))

	got, err := s.Recent(ctx, "AAPL", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a2", got[0].ID)
	assert.Equal(t, "a1", got[1].ID)
	assert.Equal(t, models.VerdictBuy, got[0].Verdict)
	assert.Equal(t, 2.5, got[0].Prediction.PredictedChange)
	assert.True(t, got[0].Timestamp.Equal(base.Add(time.Hour)))

	one, err := s.Recent(ctx, "AAPL", 1)
	require.NoError(t, err)
	assert.Len(t, one, 1)
}

func TestSQLiteStoreSaveIsIdempotentByID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	r := analysisAt("same", "NVDA", time.Now())

	require.NoError(t, s.Save(ctx, r))
	r.Verdict = models.VerdictSell
	require.NoError(t, s.Save(ctx, r))

	got, err := s.Recent(ctx, "NVDA", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.VerdictSell, got[0].Verdict)
}

func TestSQLiteStoreInitTwice(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.Init(context.Background()))
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 20, clampLimit(0))
	assert.Equal(t, 5, clampLimit(5))
	assert.Equal(t, 200, clampLimit(1000))
}
