package ratelimit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestLimiterBurstPerKey(t *testing.T) {
	l := New(1, 2)

	assert.True(t, l.Allow("1.2.3.4"))
	assert.True(t, l.Allow("1.2.3.4"))
	assert.False(t, l.Allow("1.2.3.4"))

	assert.True(t, l.Allow("5.6.7.8"))
}

func TestEveryUnlimited(t *testing.T) {
	assert.Equal(t, rate.Inf, Every(0, 0))
	l := New(0, 1)
	for i := 0; i < 100; i++ {
		assert.True(t, l.Allow("k"))
	}
}
