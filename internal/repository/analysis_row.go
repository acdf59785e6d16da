package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"FinScope/internal/domain/models"
)

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 200
)

// analysisColumns is the insert column order shared by both SQL stores.
// payload holds the full JSON result; the rest exist for querying.
var analysisColumns = []string{
	"id", "ticker", "ts", "verdict", "confidence", "trend", "price",
	"sentiment", "price_vector", "volume_vector", "coherence",
	"direction", "predicted_change", "history_source", "forecast_origin", "payload",
}

func analysisArgs(r *models.AnalysisResult, ts interface{}) ([]interface{}, error) {
	payload, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal analysis %s: %w", r.ID, err)
	}
	return []interface{}{
		r.ID, r.Ticker, ts, string(r.Verdict), string(r.Confidence), string(r.Trend), r.Quote.Price,
		r.Vectors.Sentiment, r.Vectors.Price, r.Vectors.Volume, r.Coherence,
		string(r.Prediction.Direction), r.Prediction.PredictedChange,
		string(r.Quality.HistorySource), string(r.Quality.Forecast), string(payload),
	}, nil
}

func decodeAnalysis(payload string) (models.AnalysisResult, error) {
	var r models.AnalysisResult
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		return r, fmt.Errorf("decode analysis payload: %w", err)
	}
	return r, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultRecentLimit
	}
	if limit > maxRecentLimit {
		return maxRecentLimit
	}
	return limit
}

func utc(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}
