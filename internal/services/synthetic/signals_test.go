package synthetic

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEstimatesWithinBounds(t *testing.T) {
	now := time.Date(2024, 3, 15, 15, 0, 0, 0, time.UTC)
	for i := 0; i < 200; i++ {
		rng := DailyRand("AAPL", now.AddDate(0, 0, i))

		o := EstimateOptions("AAPL", now, rng)
		assert.GreaterOrEqual(t, o.PutCallRatio, 0.7)
		assert.LessOrEqual(t, o.PutCallRatio, 1.3)
		assert.GreaterOrEqual(t, o.ImpliedVol, 25.0)
		assert.LessOrEqual(t, o.ImpliedVol, 45.0)
		assert.True(t, o.Estimated)

		c := EstimateCalendar("AAPL", now, rng)
		assert.GreaterOrEqual(t, c.DaysToEarnings, 20)
		assert.LessOrEqual(t, c.DaysToEarnings, 80)
		assert.Greater(t, c.NextEarnings, "2024-03-15")

		s := EstimateSocial("AAPL", now, rng)
		assert.GreaterOrEqual(t, s.Score, -0.3)
		assert.LessOrEqual(t, s.Score, 0.3)
		assert.Equal(t, s.Messages, s.Bullish+s.Bearish)
	}
}

func TestDailyRandStableWithinDay(t *testing.T) {
	morning := time.Date(2024, 3, 15, 1, 0, 0, 0, time.UTC)
	evening := time.Date(2024, 3, 15, 23, 0, 0, 0, time.UTC)

	a := EstimateOptions("TSLA", morning, DailyRand("TSLA", morning))
	b := EstimateOptions("TSLA", morning, DailyRand("TSLA", evening))
	assert.Equal(t, a, b)
}
