package fusion

import (
	"math"

	"FinScope/internal/domain/models"
)

// Weights of the secondary scores in the combined display score.
const (
	OptionsWeight  = 0.35
	SocialWeight   = 0.35
	EarningsWeight = 0.30
)

// ScoreOptions maps the put/call ratio to [-1,1]: 1.0 is neutral, 0.5 or lower is
// fully bullish, 1.5 or higher fully bearish. Unusual activity amplifies the read.
func ScoreOptions(o models.OptionsFlow) models.SignalScore {
	s := models.Clamp((1-o.PutCallRatio)/0.5, -1, 1)
	if o.UnusualActivity {
		s = models.Clamp(s*1.25, -1, 1)
	}
	return newScore("options", s, OptionsWeight)
}

// ScoreSocial passes the stream score through.
func ScoreSocial(s models.SocialSentiment) models.SignalScore {
	return newScore("social", models.Clamp(s.Score, -1, 1), SocialWeight)
}

// ScoreEarnings rewards a positive last surprise and penalizes an imminent report.
func ScoreEarnings(c models.EventsCalendar) models.SignalScore {
	s := 0.0
	if c.LastSurprisePct != nil {
		s += models.Clamp(*c.LastSurprisePct/20, -0.5, 0.5)
	}
	switch {
	case c.DaysToEarnings >= 0 && c.DaysToEarnings <= 3:
		s -= 0.3
	case c.DaysToEarnings > 3 && c.DaysToEarnings <= 7:
		s -= 0.1
	}
	return newScore("earnings", models.Clamp(s, -1, 1), EarningsWeight)
}

// Label buckets a score in [-1,1].
func Label(score float64) models.SignalLabel {
	switch {
	case score >= 0.5:
		return models.LabelStrongBuy
	case score >= 0.15:
		return models.LabelBuy
	case score <= -0.5:
		return models.LabelStrongSell
	case score <= -0.15:
		return models.LabelSell
	default:
		return models.LabelNeutral
	}
}

// Combine fills the score list and the weighted combination. Confidence grows
// with the magnitude of the combined score and shrinks with the share of
// estimated inputs.
func Combine(sig *models.SecondarySignals) {
	sig.Scores = sig.Scores[:0]
	var estimated, total int

	if sig.Options != nil {
		sig.Scores = append(sig.Scores, ScoreOptions(*sig.Options))
		total++
		if sig.Options.Estimated {
			estimated++
		}
	}
	if sig.Social != nil {
		sig.Scores = append(sig.Scores, ScoreSocial(*sig.Social))
		total++
		if sig.Social.Estimated {
			estimated++
		}
	}
	if sig.Calendar != nil {
		sig.Scores = append(sig.Scores, ScoreEarnings(*sig.Calendar))
		total++
		if sig.Calendar.Estimated {
			estimated++
		}
	}

	if total == 0 {
		sig.CombinedScore, sig.CombinedConfidence, sig.CombinedLabel = 0, 0, models.LabelNeutral
		return
	}

	var sum, weights float64
	for _, s := range sig.Scores {
		sum += s.Score * s.Weight
		weights += s.Weight
	}
	combined := sum / weights
	live := float64(total-estimated) / float64(total)

	sig.CombinedScore = round2(combined)
	sig.CombinedConfidence = round2(models.Clamp((40+60*math.Abs(combined))*(0.5+0.5*live), 0, 100))
	sig.CombinedLabel = Label(combined)
}

func newScore(name string, s, w float64) models.SignalScore {
	return models.SignalScore{Name: name, Score: round2(s), Weight: w, Label: Label(s)}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
