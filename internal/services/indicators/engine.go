// Package indicators turns an oldest-first daily series into an IndicatorBundle.
// Every function here is pure.
package indicators

import "FinScope/internal/domain/models"

const (
	// MinBars is the shortest series indicators are computed for.
	MinBars = 26
	// MaxBars caps how much history feeds one computation.
	MaxBars = 100
)

// Bar is the numeric view of a HistoricalBar.
type Bar struct {
	Open, High, Low, Close, Volume float64
}

// FromSeries converts an oldest-first series into bars.
func FromSeries(s models.HistoricalSeries) []Bar {
	out := make([]Bar, len(s))
	for i, b := range s {
		out[i] = Bar{Open: b.Open, High: b.High, Low: b.Low, Close: b.Close, Volume: float64(b.Volume)}
	}
	return out
}

// Compute builds the bundle from an oldest-first series. Only the newest MaxBars
// bars are used; with fewer than MinBars the default bundle is returned.
func Compute(oldestFirst models.HistoricalSeries) models.IndicatorBundle {
	if len(oldestFirst) > MaxBars {
		oldestFirst = oldestFirst[len(oldestFirst)-MaxBars:]
	}
	if len(oldestFirst) < MinBars {
		return models.DefaultIndicatorBundle()
	}

	bars := FromSeries(oldestFirst)
	closes := oldestFirst.Closes()

	macd := MACD(closes)
	bb := Bollinger(closes)
	stoch := Stochastic(bars)

	return models.IndicatorBundle{
		RSI:            RSI(closes),
		MACD:           macd.MACD,
		MACDSignal:     macd.Signal,
		MACDHistogram:  macd.Histogram,
		SMA20:          SMA(closes, 20),
		SMA50:          SMA(closes, 50),
		SMA200:         SMA(closes, 200),
		EMA12:          EMA(closes, 12),
		EMA26:          EMA(closes, 26),
		BollingerUpper: bb.Upper,
		BollingerMid:   bb.Middle,
		BollingerLower: bb.Lower,
		ATR:            ATR(bars),
		ADX:            ADX(bars),
		StochK:         stoch.K,
		StochD:         stoch.D,
		OBV:            OBV(bars),
		VWAP:           VWAP(bars),
	}
}
