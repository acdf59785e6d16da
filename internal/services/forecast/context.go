// Package forecast builds the bull/bear cases and the 72 hour prediction, either
// from an external reasoning service or from deterministic rules.
package forecast

import (
	"time"

	"FinScope/internal/domain/models"
)

// MarketContext is everything the forecast needs about one ticker.
type MarketContext struct {
	Ticker         string
	Quote          models.Quote
	Indicators     models.IndicatorBundle
	Vectors        models.Vectors
	Coherence      float64
	Verdict        models.Verdict
	Trend          models.Trend
	PriceChange30d float64 // percent
	Volatility     float64 // annualized, 0.25 = 25%
	News           []models.NewsItem
	AsOf           time.Time
}

// Forecast is the synthesizer output. Origin is metadata only; both paths
// produce the same shapes.
type Forecast struct {
	Bull       models.MarketCase     `json:"bullCase"`
	Bear       models.MarketCase     `json:"bearCase"`
	Prediction models.Prediction72h  `json:"prediction72h"`
	Origin     models.ForecastOrigin `json:"-"`
}

type rsiBand int

const (
	rsiNeutral rsiBand = iota
	rsiOversold
	rsiOverbought
)

func bandOf(rsi float64) rsiBand {
	switch {
	case rsi < 30:
		return rsiOversold
	case rsi > 70:
		return rsiOverbought
	default:
		return rsiNeutral
	}
}

func (b rsiBand) String() string {
	switch b {
	case rsiOversold:
		return "oversold"
	case rsiOverbought:
		return "overbought"
	default:
		return "neutral"
	}
}

type moveBand int

const (
	moveFlat moveBand = iota
	moveRally
	moveSelloff
)

func moveOf(pct float64) moveBand {
	switch {
	case pct > 10:
		return moveRally
	case pct < -10:
		return moveSelloff
	default:
		return moveFlat
	}
}
