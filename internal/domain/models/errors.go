package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidTicker      = errors.New("ticker must not be empty")
	ErrQuoteUnavailable   = errors.New("quote unavailable")
	ErrNoData             = errors.New("provider returned no data")
	ErrRateLimited        = errors.New("provider rate limited")
	ErrMissingCredentials = errors.New("provider credentials not configured")
	ErrNotConfigured      = errors.New("provider not configured")
)

// ProviderFailure is one failed attempt in a fallback chain.
type ProviderFailure struct {
	Provider string
	Err      error
}

// QuoteUnavailableError is returned when every quote provider failed. It is the
// only acquisition error that reaches the caller.
type QuoteUnavailableError struct {
	Ticker   string
	Attempts []ProviderFailure
}

func (e *QuoteUnavailableError) Error() string {
	if len(e.Attempts) == 0 {
		return fmt.Sprintf("quote unavailable for %s", e.Ticker)
	}
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = fmt.Sprintf("%s: %v", a.Provider, a.Err)
	}
	return fmt.Sprintf("quote unavailable for %s (%s)", e.Ticker, strings.Join(parts, "; "))
}

// Is lets errors.Is(err, ErrQuoteUnavailable) match.
func (e *QuoteUnavailableError) Is(target error) bool {
	return target == ErrQuoteUnavailable
}

// ReasoningError marks a failed external reasoning call. The forecast layer
// recovers from it locally.
type ReasoningError struct {
	Reason string
	Err    error
}

func (e *ReasoningError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("external reasoning failed (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("external reasoning failed (%s)", e.Reason)
}

func (e *ReasoningError) Unwrap() error { return e.Err }
