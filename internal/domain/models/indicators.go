package models

// IndicatorBundle is the immutable set of technical indicators computed from one series.
type IndicatorBundle struct {
	RSI            float64 `json:"rsi"`
	MACD           float64 `json:"macd"`
	MACDSignal     float64 `json:"macdSignal"`
	MACDHistogram  float64 `json:"macdHistogram"`
	SMA20          float64 `json:"sma20"`
	SMA50          float64 `json:"sma50"`
	SMA200         float64 `json:"sma200"`
	EMA12          float64 `json:"ema12"`
	EMA26          float64 `json:"ema26"`
	BollingerUpper float64 `json:"bollingerUpper"`
	BollingerMid   float64 `json:"bollingerMiddle"`
	BollingerLower float64 `json:"bollingerLower"`
	ATR            float64 `json:"atr"`
	ADX            float64 `json:"adx"`
	StochK         float64 `json:"stochK"`
	StochD         float64 `json:"stochD"`
	OBV            float64 `json:"obv"`
	VWAP           float64 `json:"vwap"`
}

// DefaultIndicatorBundle is returned when a series is too short to compute from.
func DefaultIndicatorBundle() IndicatorBundle {
	return IndicatorBundle{RSI: 50, ADX: 25, StochK: 50, StochD: 50}
}
