package models

// HistoricalBar is one daily OHLCV bar. Date is an ISO calendar day.
type HistoricalBar struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// Valid checks the bar invariants: positive prices, high/low enclosing open and
// close, non-negative volume.
func (b HistoricalBar) Valid() bool {
	if b.Open <= 0 || b.Close <= 0 || b.Low <= 0 {
		return false
	}
	if b.High < b.Open || b.High < b.Close || b.Low > b.Open || b.Low > b.Close {
		return false
	}
	return b.Volume >= 0
}

// HistoricalSeries is an ordered run of bars. At the acquisition boundary the
// order is most-recent-first; indicator code wants oldest-first.
type HistoricalSeries []HistoricalBar

// Reversed returns a copy of s in the opposite order.
func (s HistoricalSeries) Reversed() HistoricalSeries {
	out := make(HistoricalSeries, len(s))
	for i, b := range s {
		out[len(s)-1-i] = b
	}
	return out
}

// Latest returns at most n bars from the head of a most-recent-first series.
func (s HistoricalSeries) Latest(n int) HistoricalSeries {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n]
}

// Closes extracts close prices in series order.
func (s HistoricalSeries) Closes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Close
	}
	return out
}

// HistorySource records where a series came from.
type HistorySource string

const (
	HistorySourceChart      HistorySource = "chart"
	HistorySourceTimeSeries HistorySource = "time_series"
	HistorySourceSynthetic  HistorySource = "synthetic"
)
