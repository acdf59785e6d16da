// Package synthetic generates stand-in daily bars when every live history
// provider has failed. Generation cannot fail.
package synthetic

import (
	"hash/fnv"
	"math"
	"math/rand/v2"
	"time"

	"FinScope/internal/domain/models"
	"FinScope/internal/services/tradingdays"
	"FinScope/pkg/util"
)

// Bars is the number of bars produced.
const Bars = 100

const (
	reversion = 0.05
	dailyVol  = 0.015
	gapVol    = 0.004
	wickMax   = 0.01
)

var basePrices = map[string]float64{
	"AAPL":  175,
	"MSFT":  410,
	"GOOGL": 140,
	"AMZN":  175,
	"NVDA":  850,
	"META":  480,
	"TSLA":  180,
	"NFLX":  600,
	"AMD":   170,
	"SPY":   510,
	"QQQ":   440,
}

// Seed derives a stable seed from the symbol.
func Seed(symbol string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(symbol))
	return h.Sum64()
}

// BasePrice returns the anchor price for symbol: the known price if listed,
// else a value in [100,300) drawn from rng.
func BasePrice(symbol string, rng *rand.Rand) float64 {
	if p, ok := basePrices[symbol]; ok {
		return p
	}
	return 100 + rng.Float64()*200
}

// History returns Bars daily bars ending on or before end, most-recent-first.
// The same symbol and seed always yield the same prices.
func History(symbol string, end time.Time, seed uint64) models.HistoricalSeries {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	base := BasePrice(symbol, rng)
	baseVolume := 1e6 + rng.Float64()*9e6

	days := tradingdays.ForSymbol(symbol).Back(end, Bars)

	oldestFirst := make(models.HistoricalSeries, Bars)
	price := base * (1 + (rng.Float64()-0.5)*0.1)
	floor := base * 0.2
	for i := 0; i < Bars; i++ {
		open := price * (1 + rng.NormFloat64()*gapVol)
		drift := (base - open) / base * reversion
		closeP := open * (1 + drift + rng.NormFloat64()*dailyVol)
		open, closeP = math.Max(open, floor), math.Max(closeP, floor)

		high := math.Max(open, closeP) * (1 + rng.Float64()*wickMax)
		low := math.Min(open, closeP) * (1 - rng.Float64()*wickMax)
		vol := int64(baseVolume * (0.5 + rng.Float64()))

		oldestFirst[i] = models.HistoricalBar{
			Date:   util.FormatDate(days[Bars-1-i]),
			Open:   round2(open),
			High:   round2(high),
			Low:    round2(low),
			Close:  round2(closeP),
			Volume: vol,
		}
		fixRounding(&oldestFirst[i])
		price = closeP
	}
	return oldestFirst.Reversed()
}

// fixRounding keeps high and low enclosing open and close after rounding.
func fixRounding(b *models.HistoricalBar) {
	b.High = math.Max(b.High, math.Max(b.Open, b.Close))
	b.Low = math.Min(b.Low, math.Min(b.Open, b.Close))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
