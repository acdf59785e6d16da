package models

import "time"

// OptionsFlow summarizes the options chain for a ticker.
type OptionsFlow struct {
	Symbol          string    `json:"symbol"`
	PutCallRatio    float64   `json:"putCallRatio"`
	CallVolume      int64     `json:"callVolume"`
	PutVolume       int64     `json:"putVolume"`
	ImpliedVol      float64   `json:"impliedVolatility"` // percent
	UnusualActivity bool      `json:"unusualActivity"`
	Estimated       bool      `json:"estimated"`
	AcquiredAt      time.Time `json:"acquiredAt"`
}

// EventsCalendar carries the next earnings event.
type EventsCalendar struct {
	Symbol          string    `json:"symbol"`
	NextEarnings    string    `json:"nextEarningsDate,omitempty"`
	DaysToEarnings  int       `json:"daysToEarnings"`
	EPSEstimate     *float64  `json:"epsEstimate,omitempty"`
	LastSurprisePct *float64  `json:"lastSurprisePercent,omitempty"`
	Estimated       bool      `json:"estimated"`
	AcquiredAt      time.Time `json:"acquiredAt"`
}

// SocialSentiment aggregates a social message stream. Score is in [-1,1].
type SocialSentiment struct {
	Symbol     string    `json:"symbol"`
	Score      float64   `json:"score"`
	Bullish    int       `json:"bullish"`
	Bearish    int       `json:"bearish"`
	Messages   int       `json:"messages"`
	Estimated  bool      `json:"estimated"`
	AcquiredAt time.Time `json:"acquiredAt"`
}

type SignalLabel string

const (
	LabelStrongBuy  SignalLabel = "strong_buy"
	LabelBuy        SignalLabel = "buy"
	LabelNeutral    SignalLabel = "neutral"
	LabelSell       SignalLabel = "sell"
	LabelStrongSell SignalLabel = "strong_sell"
)

// SignalScore is one bounded secondary score with its weight in the combination.
type SignalScore struct {
	Name   string      `json:"name"`
	Score  float64     `json:"score"`
	Weight float64     `json:"weight"`
	Label  SignalLabel `json:"label"`
}

// SecondarySignals is the supplementary display block. It never feeds the verdict.
type SecondarySignals struct {
	Symbol             string            `json:"symbol"`
	Options            *OptionsFlow      `json:"options,omitempty"`
	Calendar           *EventsCalendar   `json:"calendar,omitempty"`
	Social             *SocialSentiment  `json:"social,omitempty"`
	Scores             []SignalScore     `json:"scores"`
	CombinedScore      float64           `json:"combinedScore"`
	CombinedConfidence float64           `json:"combinedConfidence"`
	CombinedLabel      SignalLabel       `json:"combinedLabel"`
	Errors             map[string]string `json:"errors,omitempty"`
}
