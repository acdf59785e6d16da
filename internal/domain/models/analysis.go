package models

import "time"

type Verdict string

const (
	VerdictStrongBuy  Verdict = "STRONG_BUY"
	VerdictBuy        Verdict = "BUY"
	VerdictHold       Verdict = "HOLD"
	VerdictSell       Verdict = "SELL"
	VerdictStrongSell Verdict = "STRONG_SELL"
)

type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "HIGH"
	ConfidenceMedium ConfidenceLevel = "MEDIUM"
	ConfidenceLow    ConfidenceLevel = "LOW"
)

type Trend string

const (
	TrendUp       Trend = "UPTREND"
	TrendDown     Trend = "DOWNTREND"
	TrendSideways Trend = "SIDEWAYS"
)

// Vectors are the three bounded fusion outputs, each in [-1,1].
type Vectors struct {
	Sentiment float64 `json:"sentiment"`
	Price     float64 `json:"price"`
	Volume    float64 `json:"volume"`
}

// Combined is the mean of the sentiment and price vectors.
func (v Vectors) Combined() float64 {
	return (v.Sentiment + v.Price) / 2
}

// DataQuality is the degraded-data observability record for one analysis.
type DataQuality struct {
	QuoteSource   string         `json:"quoteSource"`
	HistorySource HistorySource  `json:"historySource"`
	HistoryBars   int            `json:"historyBars"`
	NewsAvailable bool           `json:"newsAvailable"`
	Forecast      ForecastOrigin `json:"forecastOrigin"`
}

// Degraded reports whether history was synthesized or news was missing.
func (d DataQuality) Degraded() bool {
	return d.HistorySource == HistorySourceSynthetic || !d.NewsAvailable
}

// AnalysisResult is the terminal aggregate of one analysis cycle.
type AnalysisResult struct {
	ID         string            `json:"id"`
	Ticker     string            `json:"ticker"`
	Timestamp  time.Time         `json:"timestamp"`
	Vectors    Vectors           `json:"vectors"`
	Coherence  float64           `json:"coherence"`
	Verdict    Verdict           `json:"verdict"`
	Confidence ConfidenceLevel   `json:"confidence"`
	Trend      Trend             `json:"trend"`
	Quote      Quote             `json:"quote"`
	Indicators IndicatorBundle   `json:"indicators"`
	BullCase   MarketCase        `json:"bullCase"`
	BearCase   MarketCase        `json:"bearCase"`
	Prediction Prediction72h     `json:"prediction72h"`
	News       []NewsItem        `json:"news"`
	Signals    *SecondarySignals `json:"signals,omitempty"`
	Quality    DataQuality       `json:"dataQuality"`
}
