package indicators

const (
	macdFast   = 12
	macdSlow   = 26
	macdSignal = 9
	rsiPeriod  = 14
	stochLen   = 14
)

// MACDResult holds the MACD line, its signal line and their difference.
type MACDResult struct {
	MACD      float64
	Signal    float64
	Histogram float64
}

// MACD computes EMA(12)-EMA(26) of closes. The history used for the signal line
// is recomputed from scratch over closes[0..i] for every i >= 26, which is
// quadratic but keeps early values identical to a full recomputation.
func MACD(closes []float64) MACDResult {
	line := EMA(closes, macdFast) - EMA(closes, macdSlow)

	var history []float64
	for i := macdSlow; i < len(closes); i++ {
		window := closes[:i+1]
		history = append(history, EMA(window, macdFast)-EMA(window, macdSlow))
	}
	if len(history) > macdSignal {
		history = history[len(history)-macdSignal:]
	}
	signal := EMA(history, macdSignal)

	return MACDResult{MACD: line, Signal: signal, Histogram: line - signal}
}

// RSI is the 14 period relative strength index using simple averages of the last
// 14 close-to-close deltas. It returns 50 with fewer than 15 closes and 100 when
// there were no losses.
func RSI(closes []float64) float64 {
	if len(closes) < rsiPeriod+1 {
		return 50
	}
	var gains, losses float64
	for i := len(closes) - rsiPeriod; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gains += d
		} else {
			losses -= d
		}
	}
	avgGain := gains / rsiPeriod
	avgLoss := losses / rsiPeriod
	if avgLoss == 0 {
		return 100
	}
	return 100 - 100/(1+avgGain/avgLoss)
}

// StochasticResult holds %K and %D. %D is %K, no separate smoothing is applied.
type StochasticResult struct {
	K float64
	D float64
}

// Stochastic computes %K over the last 14 bars (or all bars when fewer).
func Stochastic(bars []Bar) StochasticResult {
	if len(bars) == 0 {
		return StochasticResult{K: 50, D: 50}
	}
	window := bars
	if len(window) > stochLen {
		window = window[len(window)-stochLen:]
	}
	lowest, highest := window[0].Low, window[0].High
	for _, b := range window[1:] {
		if b.Low < lowest {
			lowest = b.Low
		}
		if b.High > highest {
			highest = b.High
		}
	}
	last := bars[len(bars)-1].Close
	k := clamp((last-lowest)/(highest-lowest+0.001)*100, 0, 100)
	return StochasticResult{K: k, D: k}
}
