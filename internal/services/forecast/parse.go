package forecast

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"FinScope/internal/domain/models"
	"FinScope/pkg/util"
)

var (
	ErrNoJSONObject  = errors.New("response contains no JSON object")
	ErrMissingFields = errors.New("response is missing required fields")
)

// number accepts JSON numbers and numeric strings such as "72" or "2.5%".
type number struct {
	v   float64
	set bool
}

func (n *number) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		f, ok := util.ParsePercent(strings.TrimPrefix(strings.TrimSpace(s), "$"))
		if !ok {
			return fmt.Errorf("not a number: %q", s)
		}
		n.v, n.set = f, true
		return nil
	}
	if err := json.Unmarshal(b, &n.v); err != nil {
		return err
	}
	n.set = true
	return nil
}

type rawCase struct {
	Score     number   `json:"score"`
	Summary   string   `json:"summary"`
	Arguments []string `json:"arguments"`
	Catalysts []string `json:"catalysts"`
	Risks     []string `json:"risks"`
}

type rawPrediction struct {
	Direction       string   `json:"direction"`
	Confidence      number   `json:"confidence"`
	PredictedChange number   `json:"predictedChange"`
	PriceTarget     number   `json:"priceTarget"`
	SupportLevel    number   `json:"supportLevel"`
	ResistanceLevel number   `json:"resistanceLevel"`
	Reasoning       string   `json:"reasoning"`
	KeyFactors      []string `json:"keyFactors"`
	RiskFactors     []string `json:"riskFactors"`
}

type rawResponse struct {
	Bull       *rawCase       `json:"bullCase"`
	Bear       *rawCase       `json:"bearCase"`
	Prediction *rawPrediction `json:"prediction72h"`
}

// ParseResponse extracts the JSON object from free text and converts it into a
// Forecast, clamping every numeric field. Missing price levels are derived from
// the market context.
func ParseResponse(text string, mc MarketContext) (Forecast, error) {
	obj, err := extractObject(text)
	if err != nil {
		return Forecast{}, err
	}

	var raw rawResponse
	if err := json.Unmarshal([]byte(obj), &raw); err != nil {
		return Forecast{}, fmt.Errorf("decode response: %w", err)
	}
	if raw.Bull == nil || raw.Bear == nil || raw.Prediction == nil {
		return Forecast{}, ErrMissingFields
	}
	p := raw.Prediction
	if p.Direction == "" || !p.Confidence.set || !raw.Bull.Score.set || !raw.Bear.Score.set {
		return Forecast{}, ErrMissingFields
	}

	change := models.Clamp(p.PredictedChange.v, -50, 50)
	price := mc.Quote.Price
	support, resistance := levels(mc)
	target := price * (1 + change/100)
	if p.PriceTarget.set && p.PriceTarget.v > 0 {
		target = p.PriceTarget.v
	}
	if p.SupportLevel.set && p.SupportLevel.v > 0 {
		support = p.SupportLevel.v
	}
	if p.ResistanceLevel.set && p.ResistanceLevel.v > 0 {
		resistance = p.ResistanceLevel.v
	}

	pred, err := models.NewPrediction(models.PredictionDraft{
		Direction:       p.Direction,
		Confidence:      p.Confidence.v,
		PredictedChange: change,
		PriceTarget:     target,
		SupportLevel:    support,
		ResistanceLevel: resistance,
		Reasoning:       p.Reasoning,
		KeyFactors:      p.KeyFactors,
		RiskFactors:     p.RiskFactors,
		Start:           mc.AsOf,
	})
	if err != nil {
		return Forecast{}, err
	}

	return Forecast{
		Bull:       toCase(raw.Bull, models.BullScoreMin, models.BullScoreMax),
		Bear:       toCase(raw.Bear, models.BearScoreMin, models.BearScoreMax),
		Prediction: pred,
		Origin:     models.OriginExternal,
	}, nil
}

func toCase(c *rawCase, lo, hi float64) models.MarketCase {
	catalysts := c.Catalysts
	if len(catalysts) == 0 {
		catalysts = c.Risks
	}
	return models.NewCase(c.Score.v, lo, hi, c.Summary, c.Arguments, catalysts)
}

// extractObject returns the first balanced {...} in text that decodes as a
// JSON object carrying one of the response keys, skipping braces inside JSON
// strings. Prose braces and code fences around the object are ignored. When
// no candidate carries a response key the first balanced span is returned.
func extractObject(text string) (string, error) {
	first := ""
	for start := 0; start < len(text); start++ {
		if text[start] != '{' {
			continue
		}
		obj, ok := balancedAt(text, start)
		if !ok {
			continue
		}
		if first == "" {
			first = obj
		}
		if looksLikeResponse(obj) {
			return obj, nil
		}
	}
	if first == "" {
		return "", ErrNoJSONObject
	}
	return first, nil
}

func looksLikeResponse(obj string) bool {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(obj), &fields); err != nil {
		return false
	}
	for _, k := range []string{"bullCase", "bearCase", "prediction72h"} {
		if _, ok := fields[k]; ok {
			return true
		}
	}
	return false
}

// balancedAt returns the {...} span opening at text[start].
func balancedAt(text string, start int) (string, bool) {
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
