// Package sentiment scores headlines with a small finance keyword lexicon.
package sentiment

import (
	"math"
	"strings"
	"unicode"

	"FinScope/internal/domain/models"
)

const (
	bullishThreshold = 0.1
	bearishThreshold = -0.1
)

var lexicon = map[string]float64{
	"beat": 1, "beats": 1, "surge": 1, "surges": 1, "soar": 1, "soars": 1, "record": 0.8,
	"rally": 0.8, "rallies": 0.8, "jump": 0.8, "jumps": 0.8, "gain": 0.6, "gains": 0.6,
	"upgrade": 1, "upgraded": 1, "outperform": 0.8, "growth": 0.6, "profit": 0.6, "strong": 0.6,
	"bullish": 1, "buy": 0.6, "raises": 0.6, "raised": 0.6, "expands": 0.5, "approval": 0.8,
	"miss": -1, "misses": -1, "plunge": -1, "plunges": -1, "slump": -0.8, "slumps": -0.8,
	"fall": -0.6, "falls": -0.6, "drop": -0.6, "drops": -0.6, "downgrade": -1, "downgraded": -1,
	"underperform": -0.8, "loss": -0.6, "losses": -0.6, "weak": -0.6, "bearish": -1, "sell": -0.6,
	"cuts": -0.6, "lawsuit": -0.8, "probe": -0.8, "recall": -0.8, "layoffs": -0.6, "warning": -0.8,
}

var negators = map[string]bool{"not": true, "no": true, "never": true, "without": true}

// Score returns a value in [-1,1]: the mean polarity of matched keywords,
// flipped when the previous word negates it.
func Score(text string) float64 {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '-'
	})
	var sum float64
	var hits int
	for i, w := range words {
		v, ok := lexicon[w]
		if !ok {
			continue
		}
		if i > 0 && negators[words[i-1]] {
			v = -v
		}
		sum += v
		hits++
	}
	if hits == 0 {
		return 0
	}
	return math.Max(-1, math.Min(1, sum/float64(hits)))
}

func Label(score float64) models.SentimentLabel {
	switch {
	case score > bullishThreshold:
		return models.SentimentBullish
	case score < bearishThreshold:
		return models.SentimentBearish
	default:
		return models.SentimentNeutral
	}
}

// Classify scores a headline and its optional summary, weighting the headline double.
func Classify(headline, summary string) (float64, models.SentimentLabel) {
	s := Score(headline)
	if summary != "" {
		s = (2*s + Score(summary)) / 3
	}
	s = math.Round(s*100) / 100
	return s, Label(s)
}
