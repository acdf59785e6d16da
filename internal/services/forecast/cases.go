package forecast

import (
	"fmt"
	"math"

	"FinScope/internal/domain/models"
)

// GenerateBullCase scores and narrates the bullish side from fixed rules.
func GenerateBullCase(mc MarketContext) models.MarketCase {
	ind := mc.Indicators
	score := 50 + 25*math.Max(0, mc.Vectors.Sentiment) + 25*math.Max(0, mc.Vectors.Price)
	if mc.Trend == models.TrendUp {
		score += 10
	}
	rsi := bandOf(ind.RSI)
	if rsi == rsiOversold {
		score += 10
	}

	args := make([]string, 0, 4)
	switch mc.Trend {
	case models.TrendUp:
		args = append(args, "Price is trading above its 20 and 50 day averages, confirming an established uptrend")
	case models.TrendDown:
		args = append(args, "Extended downtrend leaves the stock exposed to a sharp relief rally")
	default:
		args = append(args, "Price is consolidating around its moving averages, leaving room for an upside breakout")
	}
	switch rsi {
	case rsiOversold:
		args = append(args, fmt.Sprintf("RSI at %.1f signals oversold conditions that often precede a rebound", ind.RSI))
	case rsiOverbought:
		args = append(args, fmt.Sprintf("RSI at %.1f shows strong buying momentum", ind.RSI))
	default:
		args = append(args, fmt.Sprintf("RSI at %.1f leaves room for further upside before overbought territory", ind.RSI))
	}
	if ind.MACDHistogram > 0 {
		args = append(args, "MACD histogram is positive, momentum is building to the upside")
	} else {
		args = append(args, "MACD histogram is negative, a bullish crossover would flip momentum quickly")
	}
	switch moveOf(mc.PriceChange30d) {
	case moveRally:
		args = append(args, fmt.Sprintf("Up %.1f%% over 30 days, buyers are firmly in control", mc.PriceChange30d))
	case moveSelloff:
		args = append(args, fmt.Sprintf("Down %.1f%% over 30 days, valuation has reset to a more attractive level", math.Abs(mc.PriceChange30d)))
	default:
		args = append(args, fmt.Sprintf("Flat 30 day performance (%+.1f%%) offers a low-risk entry ahead of a breakout", mc.PriceChange30d))
	}

	catalysts := make([]string, 0, 5)
	if ind.MACDHistogram > 0 {
		catalysts = append(catalysts, "Bullish MACD momentum continuation")
	}
	if rsi == rsiOversold {
		catalysts = append(catalysts, "Mean reversion bounce from oversold levels")
	}
	if mc.Trend == models.TrendUp {
		catalysts = append(catalysts, "Trend-following inflows above the 50 day average")
	}
	if mc.Vectors.Sentiment > 0 {
		catalysts = append(catalysts, "Positive news flow")
	}
	_, resistance := levels(mc)
	catalysts = append(catalysts, fmt.Sprintf("Break above resistance at $%.2f", resistance))

	summary := fmt.Sprintf("%s bull case: %s trend, RSI %s, 30 day move %+.1f%%",
		mc.Ticker, trendWord(mc.Trend), rsi, mc.PriceChange30d)
	return models.NewCase(score, models.BullScoreMin, models.BullScoreMax, summary, args, catalysts)
}

// GenerateBearCase scores and narrates the bearish side from fixed rules.
func GenerateBearCase(mc MarketContext) models.MarketCase {
	ind := mc.Indicators
	score := 50 + 25*math.Max(0, -mc.Vectors.Sentiment) + 25*math.Max(0, -mc.Vectors.Price)
	if mc.Trend == models.TrendDown {
		score += 10
	}
	rsi := bandOf(ind.RSI)
	if rsi == rsiOverbought {
		score += 10
	}

	args := make([]string, 0, 4)
	switch mc.Trend {
	case models.TrendDown:
		args = append(args, "Price is below its 20 and 50 day averages, confirming a downtrend")
	case models.TrendUp:
		args = append(args, "Extended uptrend is vulnerable to profit taking")
	default:
		args = append(args, "Failure to hold the moving averages could turn consolidation into a breakdown")
	}
	switch rsi {
	case rsiOverbought:
		args = append(args, fmt.Sprintf("RSI at %.1f signals overbought conditions that often precede a pullback", ind.RSI))
	case rsiOversold:
		args = append(args, fmt.Sprintf("RSI at %.1f reflects persistent selling pressure", ind.RSI))
	default:
		args = append(args, fmt.Sprintf("RSI at %.1f offers no oversold cushion if selling accelerates", ind.RSI))
	}
	if ind.MACDHistogram > 0 {
		args = append(args, "MACD momentum is positive but a bearish crossover would turn it quickly")
	} else {
		args = append(args, "MACD histogram is negative, downside momentum is in control")
	}
	switch moveOf(mc.PriceChange30d) {
	case moveRally:
		args = append(args, fmt.Sprintf("Up %.1f%% over 30 days, gains look stretched", mc.PriceChange30d))
	case moveSelloff:
		args = append(args, fmt.Sprintf("Down %.1f%% over 30 days, sellers remain in control", math.Abs(mc.PriceChange30d)))
	default:
		args = append(args, fmt.Sprintf("Flat 30 day performance (%+.1f%%) shows a lack of buying conviction", mc.PriceChange30d))
	}

	risks := make([]string, 0, 5)
	if ind.MACDHistogram <= 0 {
		risks = append(risks, "Bearish MACD momentum continuation")
	}
	if rsi == rsiOverbought {
		risks = append(risks, "Mean reversion pullback from overbought levels")
	}
	if mc.Trend == models.TrendDown {
		risks = append(risks, "Trend-following outflows below the 50 day average")
	}
	if mc.Vectors.Sentiment < 0 {
		risks = append(risks, "Negative news flow")
	}
	support, _ := levels(mc)
	risks = append(risks, fmt.Sprintf("Break below support at $%.2f", support))

	summary := fmt.Sprintf("%s bear case: %s trend, RSI %s, 30 day move %+.1f%%",
		mc.Ticker, trendWord(mc.Trend), rsi, mc.PriceChange30d)
	return models.NewCase(score, models.BearScoreMin, models.BearScoreMax, summary, args, risks)
}

func trendWord(t models.Trend) string {
	switch t {
	case models.TrendUp:
		return "up"
	case models.TrendDown:
		return "down"
	default:
		return "sideways"
	}
}
