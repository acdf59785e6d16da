package features

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"FinScope/internal/domain/models"
)

func closesSeries(closes ...float64) models.HistoricalSeries {
	out := make(models.HistoricalSeries, len(closes))
	for i, c := range closes {
		out[i] = models.HistoricalBar{Close: c}
	}
	return out
}

func TestComputeLogReturns(t *testing.T) {
	r := ComputeLogReturns(closesSeries(100, 110, 0, 121))
	assert.Len(t, r, 3)
	assert.InDelta(t, math.Log(1.1), r[0], 1e-12)
	assert.Equal(t, 0.0, r[1])
	assert.Equal(t, 0.0, r[2])
	assert.Nil(t, ComputeLogReturns(closesSeries(1)))
}

func TestRealizedVolatility(t *testing.T) {
	flat := []float64{0.01, 0.01, 0.01, 0.01}
	assert.InDelta(t, 0, RealizedVolatility(flat, 4, TradingDaysPerYear), 1e-6)

	alt := []float64{0.01, -0.01, 0.01, -0.01}
	// sample variance 0.0004/3
	want := math.Sqrt(0.0004 / 3 * TradingDaysPerYear)
	assert.InDelta(t, want, RealizedVolatility(alt, 4, TradingDaysPerYear), 1e-9)
	assert.Equal(t, 0.0, RealizedVolatility(alt, 10, TradingDaysPerYear))
}

func TestPriceChangePct(t *testing.T) {
	s := closesSeries(100, 105, 110, 120)
	assert.InDelta(t, 20, PriceChangePct(s, 30), 1e-12)
	assert.InDelta(t, 10/110.0*100, PriceChangePct(s, 1), 1e-12)
	assert.Equal(t, 0.0, PriceChangePct(closesSeries(5), 30))
}
