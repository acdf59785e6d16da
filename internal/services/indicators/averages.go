package indicators

import "math"

// SMA is the arithmetic mean of the last period values. With fewer than period
// values it returns the most recent value, or 0 for an empty series.
func SMA(data []float64, period int) float64 {
	if len(data) == 0 {
		return 0
	}
	if period <= 0 || len(data) < period {
		return data[len(data)-1]
	}
	sum := 0.0
	for _, v := range data[len(data)-period:] {
		sum += v
	}
	return sum / float64(period)
}

// EMA seeds with the first value and applies ema = v*k + ema*(1-k), k = 2/(period+1),
// over the whole series oldest to newest.
func EMA(data []float64, period int) float64 {
	if len(data) == 0 {
		return 0
	}
	k := 2.0 / float64(period+1)
	ema := data[0]
	for _, v := range data[1:] {
		ema = v*k + ema*(1-k)
	}
	return ema
}

// StdDev is the population standard deviation of the last period values.
func StdDev(data []float64, period int) float64 {
	if len(data) == 0 {
		return 0
	}
	if period <= 0 || period > len(data) {
		period = len(data)
	}
	window := data[len(data)-period:]
	mean := 0.0
	for _, v := range window {
		mean += v
	}
	mean /= float64(len(window))
	variance := 0.0
	for _, v := range window {
		d := v - mean
		variance += d * d
	}
	return math.Sqrt(variance / float64(len(window)))
}
