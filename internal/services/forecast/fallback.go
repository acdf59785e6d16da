package forecast

import (
	"fmt"
	"math"

	"FinScope/internal/domain/models"
)

const (
	strongCombined  = 0.3
	neutralCombined = 0.15
	minScoreGap     = 10

	strongBase   = 70
	weakBase     = 55
	sidewaysBase = 50

	chasingPenalty  = 15
	trendAgreeBonus = 10
	minConfidence   = 35
	maxConfidence   = 90
)

// Fallback derives the 72 hour prediction from the market context and the
// rule-based cases. It is a pure function of its inputs.
func Fallback(mc MarketContext, bull, bear models.MarketCase) models.Prediction72h {
	ind := mc.Indicators
	combined := mc.Vectors.Combined()
	gap := bull.Score - bear.Score

	var (
		dir    models.Direction
		conf   float64
		change float64
	)
	switch {
	case combined > strongCombined && gap > minScoreGap:
		dir, conf, change = models.DirectionUp, strongBase, 1.5+combined*3
	case combined < -strongCombined && gap < -minScoreGap:
		dir, conf, change = models.DirectionDown, strongBase, -(1.5 + math.Abs(combined)*3)
	case math.Abs(combined) < neutralCombined || math.Abs(gap) < minScoreGap:
		dir, conf, change = models.DirectionSideways, sidewaysBase, combined
	case combined > 0:
		dir, conf, change = models.DirectionUp, weakBase, 0.5+combined*2
	default:
		dir, conf, change = models.DirectionDown, weakBase, -(0.5 + math.Abs(combined)*2)
	}

	chasing := (dir == models.DirectionUp && ind.RSI > 75) || (dir == models.DirectionDown && ind.RSI < 25)
	if chasing {
		conf -= chasingPenalty
		change /= 2
	}
	if agreesWithTrend(dir, mc.Trend) {
		conf += trendAgreeBonus
	}
	conf = models.Clamp(conf, minConfidence, maxConfidence)

	price := mc.Quote.Price
	support, resistance := levels(mc)

	draft := models.PredictionDraft{
		Direction:       string(dir),
		Confidence:      conf,
		PredictedChange: round2(change),
		PriceTarget:     round2(price * (1 + change/100)),
		SupportLevel:    round2(support),
		ResistanceLevel: round2(resistance),
		Reasoning: fmt.Sprintf(
			"%s looks %s over the next 72 hours. Combined signal %.2f with bull case %.0f against bear case %.0f; trend is %s and RSI is %.1f.",
			mc.Ticker, directionWord(dir), combined, bull.Score, bear.Score, trendWord(mc.Trend), ind.RSI),
		KeyFactors:  keyFactors(mc),
		RiskFactors: riskFactors(mc, chasing),
		Start:       mc.AsOf,
	}

	p, err := models.NewPrediction(draft)
	if err != nil {
		// only reachable with a non-finite quote; degrade to a flat call at the current price
		p, _ = models.NewPrediction(models.PredictionDraft{
			Direction:   string(models.DirectionSideways),
			Confidence:  minConfidence,
			Reasoning:   "Insufficient data for a directional call.",
			RiskFactors: []string{"Price data could not be validated"},
			Start:       mc.AsOf,
		})
	}
	return p
}

// levels returns support and resistance: the wider of the Bollinger band and
// SMA50 +/-2%. Missing indicator values fall back to +/-3% of price.
func levels(mc MarketContext) (support, resistance float64) {
	ind := mc.Indicators
	price := mc.Quote.Price

	var lows, highs []float64
	if ind.BollingerLower > 0 {
		lows = append(lows, ind.BollingerLower)
	}
	if ind.BollingerUpper > 0 {
		highs = append(highs, ind.BollingerUpper)
	}
	if ind.SMA50 > 0 {
		lows = append(lows, ind.SMA50*0.98)
		highs = append(highs, ind.SMA50*1.02)
	}

	support, resistance = price*0.97, price*1.03
	if len(lows) > 0 {
		support = lows[0]
		for _, v := range lows[1:] {
			support = math.Min(support, v)
		}
	}
	if len(highs) > 0 {
		resistance = highs[0]
		for _, v := range highs[1:] {
			resistance = math.Max(resistance, v)
		}
	}
	return support, resistance
}

func agreesWithTrend(d models.Direction, t models.Trend) bool {
	switch d {
	case models.DirectionUp:
		return t == models.TrendUp
	case models.DirectionDown:
		return t == models.TrendDown
	default:
		return t == models.TrendSideways
	}
}

func keyFactors(mc MarketContext) []string {
	ind := mc.Indicators
	return []string{
		fmt.Sprintf("Trend: %s", mc.Trend),
		fmt.Sprintf("RSI %.1f (%s)", ind.RSI, bandOf(ind.RSI)),
		fmt.Sprintf("MACD histogram %+.3f", ind.MACDHistogram),
		fmt.Sprintf("Signal coherence %.2f", mc.Coherence),
		fmt.Sprintf("30 day change %+.1f%%", mc.PriceChange30d),
	}
}

func riskFactors(mc MarketContext, chasing bool) []string {
	out := make([]string, 0, 5)
	if chasing {
		out = append(out, "RSI is stretched in the direction of the call")
	}
	if mc.Coherence < 0.6 {
		out = append(out, "Sentiment and price signals disagree")
	}
	if mc.Volatility > 0.4 {
		out = append(out, fmt.Sprintf("High annualized volatility (%.0f%%)", mc.Volatility*100))
	}
	if mc.Quote.Price > 0 && mc.Indicators.ATR/mc.Quote.Price > 0.03 {
		out = append(out, fmt.Sprintf("Wide daily ranges (ATR %.1f%% of price)", mc.Indicators.ATR/mc.Quote.Price*100))
	}
	if len(mc.News) == 0 {
		out = append(out, "No recent news coverage to confirm the move")
	}
	out = append(out, "Unexpected macro or company-specific headlines")
	return out
}

func directionWord(d models.Direction) string {
	switch d {
	case models.DirectionUp:
		return "bullish"
	case models.DirectionDown:
		return "bearish"
	default:
		return "range-bound"
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
