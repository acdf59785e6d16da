package forecast

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinScope/internal/domain/models"
)

func sampleContext() MarketContext {
	ind := models.DefaultIndicatorBundle()
	ind.RSI = 60
	ind.MACDHistogram = 0.4
	ind.SMA20 = 148
	ind.SMA50 = 145
	ind.BollingerUpper = 156
	ind.BollingerMid = 148
	ind.BollingerLower = 140
	ind.ATR = 2.5
	return MarketContext{
		Ticker:         "AAPL",
		Quote:          models.Quote{Symbol: "AAPL", Price: 150, PreviousClose: 148, Volume: 1_000_000},
		Indicators:     ind,
		Vectors:        models.Vectors{Sentiment: 0.8, Price: 0.8, Volume: 0.2},
		Coherence:      1,
		Verdict:        models.VerdictStrongBuy,
		Trend:          models.TrendUp,
		PriceChange30d: 6,
		Volatility:     0.22,
		News: []models.NewsItem{
			{Title: "Apple beats estimates", Source: "Reuters", Sentiment: models.SentimentBullish, Score: 0.5},
		},
		AsOf: time.Date(2025, 3, 14, 15, 0, 0, 0, time.UTC),
	}
}

func TestRuleBasedIsDeterministic(t *testing.T) {
	mc := sampleContext()

	a, err := json.Marshal(RuleBased(mc))
	require.NoError(t, err)
	b, err := json.Marshal(RuleBased(mc))
	require.NoError(t, err)

	assert.Equal(t, string(a), string(b))
}

func TestRuleBasedStrongUp(t *testing.T) {
	f := RuleBased(sampleContext())

	assert.Equal(t, models.OriginRuleBased, f.Origin)
	assert.Equal(t, float64(models.BullScoreMax), f.Bull.Score)
	assert.Equal(t, 50.0, f.Bear.Score)
	assert.Equal(t, models.DirectionUp, f.Prediction.Direction)
	assert.InDelta(t, 80, f.Prediction.Confidence, 1e-9)
	assert.InDelta(t, 3.9, f.Prediction.PredictedChange, 1e-9)
	assert.NotEmpty(t, f.Bull.Arguments)
	assert.NotEmpty(t, f.Bear.Catalysts)
}

func TestFallbackAntiChasing(t *testing.T) {
	mc := sampleContext()
	mc.Indicators.RSI = 80

	f := RuleBased(mc)

	assert.Equal(t, 60.0, f.Bear.Score)
	assert.Equal(t, models.DirectionUp, f.Prediction.Direction)
	// 70 base, -15 chasing, +10 trend agreement
	assert.InDelta(t, 65, f.Prediction.Confidence, 1e-9)
	assert.InDelta(t, 1.95, f.Prediction.PredictedChange, 1e-9)
	assert.Contains(t, f.Prediction.RiskFactors, "RSI is stretched in the direction of the call")
}

func TestFallbackDownAntiChasing(t *testing.T) {
	mc := sampleContext()
	mc.Vectors = models.Vectors{Sentiment: -0.8, Price: -0.8}
	mc.Trend = models.TrendDown
	mc.Indicators.RSI = 20

	p := Fallback(mc, models.MarketCase{Score: 60}, models.MarketCase{Score: 90})

	assert.Equal(t, models.DirectionDown, p.Direction)
	// 70 base, -15 chasing, +10 trend agreement
	assert.InDelta(t, 65, p.Confidence, 1e-9)
	assert.InDelta(t, -1.95, p.PredictedChange, 1e-9)
	assert.Contains(t, p.RiskFactors, "RSI is stretched in the direction of the call")
}

func TestFallbackDownWithoutChasing(t *testing.T) {
	mc := sampleContext()
	mc.Vectors = models.Vectors{Sentiment: -0.8, Price: -0.8}
	mc.Trend = models.TrendDown
	mc.Indicators.RSI = 40

	p := Fallback(mc, models.MarketCase{Score: 60}, models.MarketCase{Score: 90})

	assert.Equal(t, models.DirectionDown, p.Direction)
	assert.InDelta(t, 80, p.Confidence, 1e-9)
	assert.InDelta(t, -3.9, p.PredictedChange, 1e-9)
}

func TestFallbackSidewaysWhenNeutral(t *testing.T) {
	mc := sampleContext()
	mc.Vectors = models.Vectors{Sentiment: 0.1, Price: 0}
	mc.Trend = models.TrendSideways
	mc.Indicators.RSI = 50

	p := RuleBased(mc).Prediction

	assert.Equal(t, models.DirectionSideways, p.Direction)
	assert.InDelta(t, 60, p.Confidence, 1e-9)
}

func TestFallbackInvariants(t *testing.T) {
	for _, s := range []float64{-1, -0.6, -0.2, 0, 0.2, 0.6, 1} {
		for _, rsi := range []float64{10, 50, 90} {
			for _, tr := range []models.Trend{models.TrendUp, models.TrendDown, models.TrendSideways} {
				mc := sampleContext()
				mc.Vectors = models.Vectors{Sentiment: s, Price: s / 2}
				mc.Indicators.RSI = rsi
				mc.Trend = tr

				f := RuleBased(mc)
				p := f.Prediction
				assert.GreaterOrEqual(t, p.Confidence, float64(minConfidence))
				assert.LessOrEqual(t, p.Confidence, float64(maxConfidence))
				assert.LessOrEqual(t, p.SupportLevel, p.ResistanceLevel)
				assert.Equal(t, models.PredictionHorizon, p.EndTime.Sub(p.StartTime))
				assert.GreaterOrEqual(t, f.Bull.Score, float64(models.BullScoreMin))
				assert.LessOrEqual(t, f.Bear.Score, float64(models.BearScoreMax))
			}
		}
	}
}

func TestLevelsFallBackToPriceBand(t *testing.T) {
	mc := sampleContext()
	mc.Indicators = models.IndicatorBundle{}

	support, resistance := levels(mc)

	assert.InDelta(t, 145.5, support, 1e-9)
	assert.InDelta(t, 154.5, resistance, 1e-9)
}

const validResponse = "Here is my analysis:\n```json\n" + `{
  "bullCase": {"score": 72, "summary": "Momentum {strong}", "arguments": ["a"], "catalysts": ["b"]},
  "bearCase": {"score": "35", "summary": "Limited", "arguments": ["c"], "catalysts": []},
  "prediction72h": {
    "direction": "up",
    "confidence": 120,
    "predictedChange": "2.5%",
    "priceTarget": 153.75,
    "supportLevel": 160,
    "resistanceLevel": 145,
    "reasoning": "Trend intact",
    "keyFactors": ["trend"],
    "riskFactors": ["macro"]
  }
}` + "\n```\nLet me know if you need more."

func TestParseResponse(t *testing.T) {
	mc := sampleContext()

	f, err := ParseResponse(validResponse, mc)
	require.NoError(t, err)

	assert.Equal(t, models.OriginExternal, f.Origin)
	assert.Equal(t, 72.0, f.Bull.Score)
	assert.Equal(t, "Momentum {strong}", f.Bull.Summary)
	assert.Equal(t, 35.0, f.Bear.Score)
	assert.Equal(t, models.DirectionUp, f.Prediction.Direction)
	assert.Equal(t, float64(models.MaxPredictionConfidence), f.Prediction.Confidence)
	assert.Equal(t, 2.5, f.Prediction.PredictedChange)
	assert.Equal(t, 145.0, f.Prediction.SupportLevel)
	assert.Equal(t, 160.0, f.Prediction.ResistanceLevel)
	assert.Equal(t, mc.AsOf, f.Prediction.StartTime)
	assert.Equal(t, mc.AsOf.Add(72*time.Hour), f.Prediction.EndTime)
}

func TestParseResponseFillsMissingLevels(t *testing.T) {
	mc := sampleContext()
	text := `{"bullCase":{"score":60},"bearCase":{"score":40},"prediction72h":{"direction":"DOWN","confidence":55,"predictedChange":-2}}`

	f, err := ParseResponse(text, mc)
	require.NoError(t, err)

	support, resistance := levels(mc)
	assert.Equal(t, support, f.Prediction.SupportLevel)
	assert.Equal(t, resistance, f.Prediction.ResistanceLevel)
	assert.InDelta(t, 147, f.Prediction.PriceTarget, 1e-9)
	assert.Empty(t, f.Bull.Arguments)
	assert.NotNil(t, f.Bull.Arguments)
}

func TestParseResponseSkipsProseBraces(t *testing.T) {
	mc := sampleContext()
	body := `{"bullCase":{"score":64},"bearCase":{"score":41},"prediction72h":{"direction":"UP","confidence":58,"predictedChange":1.2}}`
	cases := map[string]string{
		"word in braces": "Sure {note}: " + body,
		"template first": "Format: {bullCase, bearCase}\n" + body,
		"unrelated json": `Context {"ticker":"AAPL"} then ` + body,
		"unclosed prose": "Answer { follows " + body,
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			f, err := ParseResponse(text, mc)
			require.NoError(t, err)
			assert.Equal(t, 64.0, f.Bull.Score)
			assert.Equal(t, 41.0, f.Bear.Score)
			assert.Equal(t, models.DirectionUp, f.Prediction.Direction)
		})
	}
}

func TestParseResponseRejectsMalformed(t *testing.T) {
	mc := sampleContext()
	cases := map[string]string{
		"no json":           "I cannot help with that.",
		"unbalanced":        `{"bullCase": {"score": 1}`,
		"missing bear":      `{"bullCase":{"score":60},"prediction72h":{"direction":"UP","confidence":50}}`,
		"missing direction": `{"bullCase":{"score":60},"bearCase":{"score":40},"prediction72h":{"confidence":50}}`,
		"bad direction":     `{"bullCase":{"score":60},"bearCase":{"score":40},"prediction72h":{"direction":"MOON","confidence":50}}`,
		"bad number":        `{"bullCase":{"score":"high"},"bearCase":{"score":40},"prediction72h":{"direction":"UP","confidence":50}}`,
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseResponse(text, mc)
			assert.Error(t, err)
		})
	}
}

type stubReasoner struct {
	text   string
	err    error
	prompt string
}

func (s *stubReasoner) Complete(_ context.Context, prompt string) (string, error) {
	s.prompt = prompt
	return s.text, s.err
}

func TestSynthesizerUsesExternalResult(t *testing.T) {
	r := &stubReasoner{text: validResponse}
	s := NewSynthesizer(nil, WithReasoner(r))

	f := s.Synthesize(context.Background(), sampleContext())

	assert.Equal(t, models.OriginExternal, f.Origin)
	assert.Contains(t, r.prompt, "AAPL")
	assert.Contains(t, r.prompt, "Apple beats estimates")
}

func TestSynthesizerFallsBack(t *testing.T) {
	mc := sampleContext()
	want := RuleBased(mc)

	tests := map[string]*Synthesizer{
		"disabled":    NewSynthesizer(nil),
		"unreachable": NewSynthesizer(nil, WithReasoner(&stubReasoner{err: errors.New("connection refused")})),
		"malformed":   NewSynthesizer(nil, WithReasoner(&stubReasoner{text: "not json"})),
	}
	for name, s := range tests {
		t.Run(name, func(t *testing.T) {
			got := s.Synthesize(context.Background(), mc)
			assert.Equal(t, models.OriginRuleBased, got.Origin)
			assert.Equal(t, want, got)
		})
	}
}

func TestBuildPromptLimitsHeadlines(t *testing.T) {
	mc := sampleContext()
	mc.News = nil
	for i := 0; i < 8; i++ {
		mc.News = append(mc.News, models.NewsItem{Title: string(rune('A'+i)) + " headline", Source: "wire"})
	}

	prompt := BuildPrompt(mc)

	assert.Contains(t, prompt, "E headline")
	assert.NotContains(t, prompt, "F headline")
	assert.Contains(t, prompt, `"prediction72h"`)
}
