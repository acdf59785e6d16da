package indicators

import "math"

const (
	bollingerPeriod = 20
	bollingerWidth  = 2
	atrPeriod       = 14
	adxPeriod       = 14
)

// BollingerResult holds the three Bollinger band levels.
type BollingerResult struct {
	Upper  float64
	Middle float64
	Lower  float64
}

// Bollinger computes SMA(20) +/- 2 population standard deviations of the last 20 closes.
func Bollinger(closes []float64) BollingerResult {
	middle := SMA(closes, bollingerPeriod)
	band := bollingerWidth * StdDev(closes, bollingerPeriod)
	return BollingerResult{Upper: middle + band, Middle: middle, Lower: middle - band}
}

// TrueRanges returns the true range of every bar after the first.
func TrueRanges(bars []Bar) []float64 {
	if len(bars) < 2 {
		return nil
	}
	out := make([]float64, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		prevClose := bars[i-1].Close
		h, l := bars[i].High, bars[i].Low
		out = append(out, math.Max(h-l, math.Max(math.Abs(h-prevClose), math.Abs(l-prevClose))))
	}
	return out
}

// ATR is the SMA(14) of the true range series, 0 with fewer than 15 bars.
func ATR(bars []Bar) float64 {
	if len(bars) < atrPeriod+1 {
		return 0
	}
	return SMA(TrueRanges(bars), atrPeriod)
}

// ADX is a simplified directional index: the last 14 directional moves are summed
// into +DM/-DM only when one side strictly dominates and is positive, then
// DI = DM/period/ATR*100 and DX = |+DI - -DI|/(+DI + -DI + 0.001)*100.
// There is no Wilder smoothing. Returns 25 when ATR is 0 or bars are insufficient.
func ADX(bars []Bar) float64 {
	if len(bars) < adxPeriod+1 {
		return 25
	}
	atr := ATR(bars)
	if atr == 0 {
		return 25
	}

	var plusDM, minusDM float64
	for i := len(bars) - adxPeriod; i < len(bars); i++ {
		up := bars[i].High - bars[i-1].High
		down := bars[i-1].Low - bars[i].Low
		if up > down && up > 0 {
			plusDM += up
		}
		if down > up && down > 0 {
			minusDM += down
		}
	}

	plusDI := plusDM / adxPeriod / atr * 100
	minusDI := minusDM / adxPeriod / atr * 100
	dx := math.Abs(plusDI-minusDI) / (plusDI + minusDI + 0.001) * 100
	return clamp(dx, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
