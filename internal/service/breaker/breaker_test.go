package breaker

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinScope/internal/domain/models"
	xhttp "FinScope/pkg/http"
)

func TestManagerOpensAfterConsecutiveFailures(t *testing.T) {
	m := NewManager(Settings{MaxRequests: 1, Timeout: time.Minute, ConsecutiveFailures: 2}, nil)
	boom := errors.New("boom")
	calls := 0
	fail := func() (int, error) { calls++; return 0, boom }

	_, err := Do(m, "yahoo", fail)
	assert.ErrorIs(t, err, boom)
	_, err = Do(m, "yahoo", fail)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, gobreaker.StateOpen, m.State("yahoo"))

	_, err = Do(m, "yahoo", fail)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 2, calls)

	v, err := Do(m, "finnhub", func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, gobreaker.StateClosed, m.State("finnhub"))
}

func TestNilManagerRunsDirectly(t *testing.T) {
	var m *Manager
	v, err := Do(m, "x", func() (string, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestTrips(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"no data", fmt.Errorf("yahoo BOGUS: %w", models.ErrNoData), false},
		{"rate limited", models.ErrRateLimited, false},
		{"missing credentials", models.ErrMissingCredentials, false},
		{"caller canceled", context.Canceled, false},
		{"abandoned deadline", Abandoned(context.DeadlineExceeded), false},
		{"not found", &xhttp.StatusError{Code: 404}, false},
		{"server error", fmt.Errorf("yahoo: %w", &xhttp.StatusError{Code: 502}), true},
		{"attempt timeout", context.DeadlineExceeded, true},
		{"transport", errors.New("connection refused"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Trips(tt.err))
		})
	}
}

func TestSymbolErrorsKeepBreakerClosed(t *testing.T) {
	m := NewManager(Settings{MaxRequests: 1, Timeout: time.Minute, ConsecutiveFailures: 2}, nil)
	calls := 0
	noData := func() (int, error) { calls++; return 0, models.ErrNoData }

	for i := 0; i < 5; i++ {
		_, err := Do(m, "yahoo", noData)
		assert.ErrorIs(t, err, models.ErrNoData)
	}
	assert.Equal(t, 5, calls)
	assert.Equal(t, gobreaker.StateClosed, m.State("yahoo"))
}

func TestAbandonedKeepsUnderlyingError(t *testing.T) {
	err := Abandoned(context.DeadlineExceeded)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, context.DeadlineExceeded.Error(), err.Error())
	assert.NoError(t, Abandoned(nil))
}
