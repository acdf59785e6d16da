package fusion

import "FinScope/internal/domain/models"

const (
	rsiOverbought     = 80
	rsiOversold       = 20
	minCoherence      = 0.6
	strongBand        = 0.6
	band              = 0.2
	highCoherenceMark = 0.8
)

// DetermineVerdict applies, in order: the RSI extreme override, the low
// coherence override, then the magnitude bands on the combined vector.
func DetermineVerdict(sentiment, price, coherence, rsi float64) models.Verdict {
	switch {
	case rsi > rsiOverbought:
		return models.VerdictSell
	case rsi < rsiOversold:
		return models.VerdictBuy
	case coherence < minCoherence:
		return models.VerdictHold
	}

	combined := (sentiment + price) / 2
	switch {
	case combined > strongBand:
		return models.VerdictStrongBuy
	case combined > band:
		return models.VerdictBuy
	case combined < -strongBand:
		return models.VerdictStrongSell
	case combined < -band:
		return models.VerdictSell
	default:
		return models.VerdictHold
	}
}

// Level maps coherence to a coarse confidence level.
func Level(coherence float64) models.ConfidenceLevel {
	switch {
	case coherence >= highCoherenceMark:
		return models.ConfidenceHigh
	case coherence >= minCoherence:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

// Classify computes the trend from price against SMA20 and SMA50.
func Classify(price float64, ind models.IndicatorBundle) models.Trend {
	switch {
	case ind.SMA20 == 0 || ind.SMA50 == 0:
		return models.TrendSideways
	case price > ind.SMA20 && ind.SMA20 > ind.SMA50:
		return models.TrendUp
	case price < ind.SMA20 && ind.SMA20 < ind.SMA50:
		return models.TrendDown
	default:
		return models.TrendSideways
	}
}

// Result is everything fusion derives for one analysis.
type Result struct {
	Vectors    models.Vectors
	Coherence  float64
	Verdict    models.Verdict
	Confidence models.ConfidenceLevel
	Trend      models.Trend
}

// Fuse runs the full reduction.
func Fuse(q models.Quote, ind models.IndicatorBundle, news []models.NewsItem) Result {
	v := ComputeVectors(q, ind, news)
	coh := Coherence(v.Sentiment, v.Price)
	return Result{
		Vectors:    v,
		Coherence:  coh,
		Verdict:    DetermineVerdict(v.Sentiment, v.Price, coh, ind.RSI),
		Confidence: Level(coh),
		Trend:      Classify(q.Price, ind),
	}
}
