package synthetic

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var end = time.Date(2024, 3, 15, 21, 0, 0, 0, time.UTC)

func TestHistoryInvariants(t *testing.T) {
	for _, sym := range []string{"AAPL", "ZZZZ", "BRK.B", "X"} {
		series := History(sym, end, Seed(sym))

		require.Len(t, series, Bars, sym)
		for i, b := range series {
			assert.True(t, b.Valid(), "%s bar %d: %+v", sym, i, b)
			assert.GreaterOrEqual(t, b.Volume, int64(0))
			if i > 0 {
				assert.Greater(t, series[i-1].Date, b.Date, "most recent first")
			}
		}
	}
}

func TestHistoryDeterministic(t *testing.T) {
	a := History("MSFT", end, Seed("MSFT"))
	b := History("MSFT", end, Seed("MSFT"))
	assert.Equal(t, a, b)

	c := History("MSFT", end, 42)
	assert.NotEqual(t, a[0].Close, c[0].Close)
}

func TestHistoryStaysNearBase(t *testing.T) {
	series := History("AAPL", end, Seed("AAPL"))
	for _, b := range series {
		assert.InDelta(t, 175, b.Close, 175*0.6)
	}
	assert.Equal(t, "2024-03-15", series[0].Date)
}

func TestBasePriceRange(t *testing.T) {
	for _, sym := range []string{"ABCD", "EFGH", "IJKL", "MNOP"} {
		series := History(sym, end, Seed(sym))
		assert.Greater(t, series[len(series)-1].Close, 0.0)
	}
}
