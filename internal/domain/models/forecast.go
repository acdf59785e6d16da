package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// Direction is the predicted 72 hour price direction.
type Direction string

const (
	DirectionUp       Direction = "UP"
	DirectionDown     Direction = "DOWN"
	DirectionSideways Direction = "SIDEWAYS"
)

// ForecastOrigin tells which path produced a forecast. It is kept out of the
// prediction record itself so both paths serialize identically.
type ForecastOrigin string

const (
	OriginExternal  ForecastOrigin = "external"
	OriginRuleBased ForecastOrigin = "rule_based"
)

const (
	PredictionHorizon = 72 * time.Hour

	MinPredictionConfidence = 30
	MaxPredictionConfidence = 95
	BullScoreMin            = 20
	BullScoreMax            = 95
	BearScoreMin            = 20
	BearScoreMax            = 90
)

// MarketCase is a bull or bear narrative with its score.
type MarketCase struct {
	Score     float64  `json:"score"`
	Summary   string   `json:"summary"`
	Arguments []string `json:"arguments"`
	Catalysts []string `json:"catalysts"`
}

// Prediction72h is the 72-hour directional forecast.
type Prediction72h struct {
	Direction       Direction `json:"direction"`
	Confidence      float64   `json:"confidence"`
	PredictedChange float64   `json:"predictedChange"` // percent
	PriceTarget     float64   `json:"priceTarget"`
	SupportLevel    float64   `json:"supportLevel"`
	ResistanceLevel float64   `json:"resistanceLevel"`
	Reasoning       string    `json:"reasoning"`
	KeyFactors      []string  `json:"keyFactors"`
	RiskFactors     []string  `json:"riskFactors"`
	StartTime       time.Time `json:"startTime"`
	EndTime         time.Time `json:"endTime"`
}

// ErrInvalidPrediction is returned when a prediction draft cannot be normalized.
var ErrInvalidPrediction = errors.New("invalid prediction")

// PredictionDraft is the unvalidated input to NewPrediction.
type PredictionDraft struct {
	Direction       string
	Confidence      float64
	PredictedChange float64
	PriceTarget     float64
	SupportLevel    float64
	ResistanceLevel float64
	Reasoning       string
	KeyFactors      []string
	RiskFactors     []string
	Start           time.Time
}

// NewPrediction validates and clamps a draft. Both the external and the
// rule-based forecast paths build their output through it.
func NewPrediction(d PredictionDraft) (Prediction72h, error) {
	dir, err := ParseDirection(d.Direction)
	if err != nil {
		return Prediction72h{}, err
	}
	fields := []struct {
		name string
		v    float64
	}{
		{"confidence", d.Confidence},
		{"predictedChange", d.PredictedChange},
		{"priceTarget", d.PriceTarget},
		{"supportLevel", d.SupportLevel},
		{"resistanceLevel", d.ResistanceLevel},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return Prediction72h{}, fmt.Errorf("%w: %s is not finite", ErrInvalidPrediction, f.name)
		}
	}
	if d.PriceTarget < 0 || d.SupportLevel < 0 || d.ResistanceLevel < 0 {
		return Prediction72h{}, fmt.Errorf("%w: negative price level", ErrInvalidPrediction)
	}
	if d.Start.IsZero() {
		return Prediction72h{}, fmt.Errorf("%w: missing start time", ErrInvalidPrediction)
	}

	support, resistance := d.SupportLevel, d.ResistanceLevel
	if support > resistance {
		support, resistance = resistance, support
	}

	start := d.Start.UTC()
	return Prediction72h{
		Direction:       dir,
		Confidence:      Clamp(d.Confidence, MinPredictionConfidence, MaxPredictionConfidence),
		PredictedChange: Clamp(d.PredictedChange, -50, 50),
		PriceTarget:     d.PriceTarget,
		SupportLevel:    support,
		ResistanceLevel: resistance,
		Reasoning:       strings.TrimSpace(d.Reasoning),
		KeyFactors:      nonNil(d.KeyFactors),
		RiskFactors:     nonNil(d.RiskFactors),
		StartTime:       start,
		EndTime:         start.Add(PredictionHorizon),
	}, nil
}

// NewCase clamps score into [lo,hi] and normalizes the lists.
func NewCase(score, lo, hi float64, summary string, arguments, catalysts []string) MarketCase {
	if math.IsNaN(score) {
		score = lo
	}
	return MarketCase{
		Score:     Clamp(score, lo, hi),
		Summary:   strings.TrimSpace(summary),
		Arguments: nonNil(arguments),
		Catalysts: nonNil(catalysts),
	}
}

// ParseDirection accepts UP/DOWN/SIDEWAYS in any case, plus BULLISH/BEARISH/NEUTRAL.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "UP", "BULLISH":
		return DirectionUp, nil
	case "DOWN", "BEARISH":
		return DirectionDown, nil
	case "SIDEWAYS", "NEUTRAL", "FLAT":
		return DirectionSideways, nil
	}
	return "", fmt.Errorf("%w: unknown direction %q", ErrInvalidPrediction, s)
}

// Clamp bounds v to [lo,hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
