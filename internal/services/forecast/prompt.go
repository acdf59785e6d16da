package forecast

import (
	"fmt"
	"strings"
)

const maxPromptHeadlines = 5

// BuildPrompt renders the request sent to the external reasoning service.
func BuildPrompt(mc MarketContext) string {
	q, ind := mc.Quote, mc.Indicators
	var b strings.Builder

	fmt.Fprintf(&b, "You are an equity analyst. Assess %s over the next 72 hours.\n\n", mc.Ticker)

	b.WriteString("QUOTE\n")
	fmt.Fprintf(&b, "price=%.2f change=%.2f changePercent=%.2f%% open=%.2f high=%.2f low=%.2f previousClose=%.2f volume=%d\n\n",
		q.Price, q.Change, q.ChangePercent, q.Open, q.High, q.Low, q.PreviousClose, q.Volume)

	b.WriteString("INDICATORS\n")
	fmt.Fprintf(&b, "rsi=%.2f macd=%.4f macdSignal=%.4f macdHistogram=%.4f\n", ind.RSI, ind.MACD, ind.MACDSignal, ind.MACDHistogram)
	fmt.Fprintf(&b, "sma20=%.2f sma50=%.2f sma200=%.2f ema12=%.2f ema26=%.2f\n", ind.SMA20, ind.SMA50, ind.SMA200, ind.EMA12, ind.EMA26)
	fmt.Fprintf(&b, "bollinger=%.2f/%.2f/%.2f atr=%.2f adx=%.2f stochK=%.2f stochD=%.2f obv=%.0f vwap=%.2f\n\n",
		ind.BollingerUpper, ind.BollingerMid, ind.BollingerLower, ind.ATR, ind.ADX, ind.StochK, ind.StochD, ind.OBV, ind.VWAP)

	b.WriteString("CONTEXT\n")
	fmt.Fprintf(&b, "trend=%s change30d=%.2f%% sentimentVector=%.2f priceVector=%.2f coherence=%.2f verdict=%s\n\n",
		mc.Trend, mc.PriceChange30d, mc.Vectors.Sentiment, mc.Vectors.Price, mc.Coherence, mc.Verdict)

	b.WriteString("HEADLINES\n")
	if len(mc.News) == 0 {
		b.WriteString("(none)\n")
	}
	for i, n := range mc.News {
		if i == maxPromptHeadlines {
			break
		}
		fmt.Fprintf(&b, "- [%s] %s (%s)\n", n.Sentiment, n.Title, n.Source)
	}

	b.WriteString(`
Respond with a single JSON object and nothing else, using exactly this shape:
{
  "bullCase": {"score": <20-95>, "summary": "<string>", "arguments": ["<string>"], "catalysts": ["<string>"]},
  "bearCase": {"score": <20-90>, "summary": "<string>", "arguments": ["<string>"], "catalysts": ["<string>"]},
  "prediction72h": {
    "direction": "UP" | "DOWN" | "SIDEWAYS",
    "confidence": <30-95>,
    "predictedChange": <percent>,
    "priceTarget": <number>,
    "supportLevel": <number>,
    "resistanceLevel": <number>,
    "reasoning": "<string>",
    "keyFactors": ["<string>"],
    "riskFactors": ["<string>"]
  }
}
`)
	return b.String()
}
