package indicators

// OBV is on-balance volume starting from 0.
func OBV(bars []Bar) float64 {
	obv := 0.0
	for i := 1; i < len(bars); i++ {
		switch {
		case bars[i].Close > bars[i-1].Close:
			obv += bars[i].Volume
		case bars[i].Close < bars[i-1].Close:
			obv -= bars[i].Volume
		}
	}
	return obv
}

// VWAP approximates VWAP with the typical price of the latest bar only.
func VWAP(bars []Bar) float64 {
	if len(bars) == 0 {
		return 0
	}
	last := bars[len(bars)-1]
	if last.Volume > 0 {
		return (last.High + last.Low + last.Close) / 3
	}
	return last.Close
}
