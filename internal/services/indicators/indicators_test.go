package indicators

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinScope/internal/domain/models"
)

func TestSMA(t *testing.T) {
	assert.Equal(t, 4.0, SMA([]float64{1, 2, 3, 4, 5}, 3))
	assert.Equal(t, 2.0, SMA([]float64{1, 2}, 5), "short series returns last value")
	assert.Equal(t, 0.0, SMA(nil, 3))
}

func TestSMAShortSeriesProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for n := 1; n < 30; n++ {
		data := make([]float64, n)
		for i := range data {
			data[i] = rng.Float64() * 100
		}
		assert.Equal(t, data[n-1], SMA(data, n+1+rng.Intn(10)))
	}
}

func TestEMA(t *testing.T) {
	assert.Equal(t, 10.0, EMA([]float64{10}, 5))
	assert.Equal(t, 0.0, EMA(nil, 5))
	assert.InDelta(t, 23.0/9.0, EMA([]float64{1, 2, 3}, 2), 1e-12)
}

func TestEMAOrderMatters(t *testing.T) {
	forward := EMA([]float64{1, 2, 3}, 2)
	backward := EMA([]float64{3, 2, 1}, 2)
	assert.InDelta(t, 13.0/9.0, backward, 1e-12)
	assert.NotEqual(t, forward, backward)
}

func TestStdDev(t *testing.T) {
	assert.InDelta(t, 2.0, StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}, 8), 1e-12)
	assert.Equal(t, 0.0, StdDev(nil, 20))
}

func TestRSI(t *testing.T) {
	assert.Equal(t, 50.0, RSI(make([]float64, 14)), "fewer than 15 closes")

	rising := make([]float64, 15)
	for i := range rising {
		rising[i] = 100 + float64(i)
	}
	assert.Equal(t, 100.0, RSI(rising))

	// seven +2 moves and seven -1 moves: avgGain 1, avgLoss 0.5
	closes := []float64{100}
	for i := 0; i < 7; i++ {
		last := closes[len(closes)-1]
		closes = append(closes, last+2, last+1)
	}
	assert.InDelta(t, 100-100.0/3, RSI(closes), 1e-9)
}

func TestRSINonNegativeDeltasWithOneGain(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 50
	}
	closes[19] = 51
	assert.Equal(t, 100.0, RSI(closes))
}

func TestRSIBounded(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 200; trial++ {
		closes := make([]float64, 15+rng.Intn(80))
		for i := range closes {
			closes[i] = 1 + rng.Float64()*200
		}
		rsi := RSI(closes)
		assert.GreaterOrEqual(t, rsi, 0.0)
		assert.LessOrEqual(t, rsi, 100.0)
	}
}

func TestMACD(t *testing.T) {
	flat := make([]float64, 60)
	for i := range flat {
		flat[i] = 42
	}
	flatMACD := MACD(flat)
	assert.InDelta(t, 0, flatMACD.MACD, 1e-9)
	assert.InDelta(t, 0, flatMACD.Signal, 1e-9)
	assert.InDelta(t, 0, flatMACD.Histogram, 1e-9)

	// exactly 26 closes: no history, signal is 0
	closes := rampCloses(26)
	r := MACD(closes)
	assert.Equal(t, 0.0, r.Signal)
	assert.Equal(t, r.MACD, r.Histogram)
}

func TestMACDSignalUsesLastNineRecomputedPoints(t *testing.T) {
	closes := rampCloses(60)
	for i := range closes {
		if i%3 == 0 {
			closes[i] -= 4
		}
	}

	var history []float64
	for i := 26; i < len(closes); i++ {
		history = append(history, EMA(closes[:i+1], 12)-EMA(closes[:i+1], 26))
	}
	want := EMA(history[len(history)-9:], 9)

	r := MACD(closes)
	assert.InDelta(t, want, r.Signal, 1e-12)
	assert.InDelta(t, r.MACD-want, r.Histogram, 1e-12)
	assert.InDelta(t, EMA(closes, 12)-EMA(closes, 26), r.MACD, 1e-12)
}

func TestBollinger(t *testing.T) {
	flat := make([]float64, 30)
	for i := range flat {
		flat[i] = 10
	}
	assert.Equal(t, BollingerResult{Upper: 10, Middle: 10, Lower: 10}, Bollinger(flat))

	closes := rampCloses(40)
	bb := Bollinger(closes)
	sd := StdDev(closes, 20)
	assert.InDelta(t, SMA(closes, 20), bb.Middle, 1e-12)
	assert.InDelta(t, bb.Middle+2*sd, bb.Upper, 1e-12)
	assert.InDelta(t, bb.Middle-2*sd, bb.Lower, 1e-12)
}

func TestATR(t *testing.T) {
	assert.Equal(t, 0.0, ATR(trendBars(14)))
	assert.InDelta(t, 2.0, ATR(trendBars(30)), 1e-12)
}

func TestADX(t *testing.T) {
	assert.Equal(t, 25.0, ADX(trendBars(14)), "insufficient bars")

	flat := make([]Bar, 30)
	for i := range flat {
		flat[i] = Bar{Open: 5, High: 5, Low: 5, Close: 5, Volume: 1}
	}
	assert.Equal(t, 25.0, ADX(flat), "zero ATR")

	// steady uptrend: +DI 50, -DI 0
	assert.InDelta(t, 100*50/50.001, ADX(trendBars(30)), 1e-9)
}

func TestStochastic(t *testing.T) {
	bars := trendBars(30)
	s := Stochastic(bars)
	assert.Equal(t, s.K, s.D)
	assert.GreaterOrEqual(t, s.K, 0.0)
	assert.LessOrEqual(t, s.K, 100.0)

	// last close 30, window lows 16..29, highs 18..31
	assert.InDelta(t, (30.0-16)/(31-16+0.001)*100, s.K, 1e-9)
}

func TestOBVAndVWAP(t *testing.T) {
	bars := []Bar{
		{Close: 1, Volume: 10},
		{Close: 2, Volume: 20},
		{Close: 2, Volume: 30},
		{High: 12, Low: 8, Close: 1, Volume: 40},
	}
	assert.Equal(t, -20.0, OBV(bars))
	assert.InDelta(t, 7.0, VWAP(bars), 1e-12)

	bars[3].Volume = 0
	assert.Equal(t, 1.0, VWAP(bars))
	assert.Equal(t, 0.0, OBV(nil))
}

func TestComputeDefaultsForShortSeries(t *testing.T) {
	for n := 0; n < MinBars; n++ {
		assert.Equal(t, models.DefaultIndicatorBundle(), Compute(seriesOf(n)), "n=%d", n)
	}
	assert.NotEqual(t, models.DefaultIndicatorBundle(), Compute(seriesOf(MinBars)))
}

func TestComputeCapsHistory(t *testing.T) {
	long := seriesOf(150)
	assert.Equal(t, Compute(long[len(long)-MaxBars:]), Compute(long))
}

func TestComputeIsDeterministic(t *testing.T) {
	s := seriesOf(80)
	b := Compute(s)
	assert.Equal(t, b, Compute(s))
	require.Greater(t, b.SMA20, 0.0)
	assert.Equal(t, b.StochK, b.StochD)
	assert.Equal(t, s[len(s)-1].Close, b.SMA200, "short of 200 bars sma200 is the last close")
}

func rampCloses(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + float64(i)*0.5
	}
	return out
}

// trendBars rises one point per bar: low=i, close=i+1, high=i+2.
func trendBars(n int) []Bar {
	out := make([]Bar, n)
	for i := range out {
		f := float64(i)
		out[i] = Bar{Open: f + 1, High: f + 2, Low: f, Close: f + 1, Volume: 1000}
	}
	return out
}

func seriesOf(n int) models.HistoricalSeries {
	rng := rand.New(rand.NewSource(int64(n) + 1))
	out := make(models.HistoricalSeries, n)
	price := 100.0
	for i := range out {
		open := price
		price *= 1 + (rng.Float64()-0.5)*0.04
		hi, lo := open, price
		if lo > hi {
			hi, lo = lo, hi
		}
		out[i] = models.HistoricalBar{
			Date:   "d",
			Open:   open,
			High:   hi * 1.01,
			Low:    lo * 0.99,
			Close:  price,
			Volume: int64(1_000_000 + rng.Intn(500_000)),
		}
	}
	return out
}
