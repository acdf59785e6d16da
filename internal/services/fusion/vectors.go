// Package fusion reduces quote, indicators and news into bounded vectors and a verdict.
package fusion

import "FinScope/internal/domain/models"

// SentimentVector blends news, RSI distance from 50 and the MACD histogram sign.
func SentimentVector(news []models.NewsItem, ind models.IndicatorBundle) float64 {
	macdTerm := -0.5
	if ind.MACDHistogram > 0 {
		macdTerm = 0.5
	}
	v := 0.4*models.AverageSentiment(news) + 0.3*((ind.RSI-50)/50) + 0.3*macdTerm
	return models.Clamp(v, -1, 1)
}

// PriceVector blends the daily move, position versus SMA50 and ADX trend strength.
// A zero change counts as a down move for the ADX term.
func PriceVector(q models.Quote, ind models.IndicatorBundle) float64 {
	smaTerm := -0.3
	if q.Price > ind.SMA50 {
		smaTerm = 0.3
	}
	adxTerm := -0.1
	if ind.ADX > 25 {
		adxTerm = 0.2
	}
	sign := -1.0
	if q.ChangePercent > 0 {
		sign = 1
	}
	v := 0.5*(q.ChangePercent/10) + smaTerm + adxTerm*sign
	return models.Clamp(v, -1, 1)
}

// VolumeVector is +0.5 when OBV is positive, -0.5 otherwise.
func VolumeVector(ind models.IndicatorBundle) float64 {
	if ind.OBV > 0 {
		return 0.5
	}
	return -0.5
}

// Coherence is 1 - |sentiment - price|/2; 1 means both vectors agree.
func Coherence(sentiment, price float64) float64 {
	d := sentiment - price
	if d < 0 {
		d = -d
	}
	return models.Clamp(1-d/2, 0, 1)
}

// ComputeVectors evaluates all three vectors.
func ComputeVectors(q models.Quote, ind models.IndicatorBundle, news []models.NewsItem) models.Vectors {
	return models.Vectors{
		Sentiment: SentimentVector(news, ind),
		Price:     PriceVector(q, ind),
		Volume:    VolumeVector(ind),
	}
}
