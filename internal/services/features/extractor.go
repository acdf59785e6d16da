package features

import (
	"math"

	"FinScope/internal/domain/models"
)

// TradingDaysPerYear annualizes daily volatility.
const TradingDaysPerYear = 252

// ComputeLogReturns computes log returns r_t = ln(C_t / C_{t-1}) over an
// oldest-first series. It returns len(series)-1 values, or nil if insufficient data.
func ComputeLogReturns(series models.HistoricalSeries) []float64 {
	if len(series) < 2 {
		return nil
	}
	out := make([]float64, 0, len(series)-1)
	for i := 1; i < len(series); i++ {
		prev := series[i-1].Close
		cur := series[i].Close
		if prev <= 0 || cur <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, math.Log(cur/prev))
	}
	return out
}

// RealizedVolatility computes annualized realized volatility (sample stddev) of
// the latest window log returns.
func RealizedVolatility(logReturns []float64, window int, barsPerYear float64) float64 {
	if window <= 1 || len(logReturns) < window {
		return 0
	}
	sum := 0.0
	sum2 := 0.0
	for i := len(logReturns) - window; i < len(logReturns); i++ {
		r := logReturns[i]
		sum += r
		sum2 += r * r
	}
	n := float64(window)
	mean := sum / n
	variance := (sum2 - n*mean*mean) / (n - 1)
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance * barsPerYear)
}

// PriceChangePct is the percent change from lookback bars ago to the latest
// close of an oldest-first series. Short series use the first bar.
func PriceChangePct(series models.HistoricalSeries, lookback int) float64 {
	if len(series) < 2 || lookback <= 0 {
		return 0
	}
	from := len(series) - 1 - lookback
	if from < 0 {
		from = 0
	}
	base := series[from].Close
	if base <= 0 {
		return 0
	}
	return (series[len(series)-1].Close - base) / base * 100
}
