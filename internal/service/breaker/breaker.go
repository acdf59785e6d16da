// Package breaker keeps one circuit breaker per upstream provider. An open
// breaker fails the attempt immediately so the chain moves to the next provider.
package breaker

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"FinScope/internal/domain/models"
	xhttp "FinScope/pkg/http"
	"FinScope/pkg/logger"
)

type Settings struct {
	MaxRequests         uint32
	Interval            time.Duration
	Timeout             time.Duration
	ConsecutiveFailures uint32
}

type Manager struct {
	mu       sync.Mutex
	settings Settings
	log      *logger.Logger
	breakers map[string]*gobreaker.CircuitBreaker
}

func NewManager(s Settings, log *logger.Logger) *Manager {
	if s.ConsecutiveFailures == 0 {
		s.ConsecutiveFailures = 5
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Manager{settings: s, log: log, breakers: make(map[string]*gobreaker.CircuitBreaker)}
}

func (m *Manager) get(name string) *gobreaker.CircuitBreaker {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cb, ok := m.breakers[name]; ok {
		return cb
	}
	threshold := m.settings.ConsecutiveFailures
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: m.settings.MaxRequests,
		Interval:    m.settings.Interval,
		Timeout:     m.settings.Timeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool { return !Trips(err) },
		OnStateChange: func(name string, from, to gobreaker.State) {
			m.log.Warn("provider breaker state changed",
				logger.String("provider", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		},
	})
	m.breakers[name] = cb
	return cb
}

// abandonedError marks a failure caused by the caller going away rather than
// by the provider.
type abandonedError struct{ err error }

func (e *abandonedError) Error() string { return e.err.Error() }
func (e *abandonedError) Unwrap() error { return e.err }

// Abandoned wraps err so the breaker does not count it against the provider.
// Use it when the caller's own context ended during the attempt.
func Abandoned(err error) error {
	if err == nil {
		return nil
	}
	return &abandonedError{err: err}
}

// Trips reports whether err says the provider itself is unhealthy. Answers
// about one symbol (no data, rate limit, missing credentials, 4xx) and caller
// cancellation leave the breaker alone; transport errors, timeouts and 5xx
// count against it.
func Trips(err error) bool {
	if err == nil {
		return false
	}
	var ab *abandonedError
	if errors.As(err, &ab) {
		return false
	}
	if errors.Is(err, models.ErrNoData) ||
		errors.Is(err, models.ErrMissingCredentials) ||
		errors.Is(err, models.ErrRateLimited) ||
		errors.Is(err, context.Canceled) {
		return false
	}
	var se *xhttp.StatusError
	if errors.As(err, &se) {
		return se.Code >= http.StatusInternalServerError
	}
	return true
}

// Do runs fn through the named breaker.
func Do[T any](m *Manager, name string, fn func() (T, error)) (T, error) {
	var zero T
	if m == nil {
		return fn()
	}
	out, err := m.get(name).Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		return zero, err
	}
	v, _ := out.(T)
	return v, nil
}

// State reports the breaker state for name; unknown names are closed.
func (m *Manager) State(name string) gobreaker.State {
	m.mu.Lock()
	cb, ok := m.breakers[name]
	m.mu.Unlock()
	if !ok {
		return gobreaker.StateClosed
	}
	return cb.State()
}
