package forecast

import (
	"context"
	"errors"
	"time"

	"FinScope/internal/domain/models"
	"FinScope/internal/domain/repository"
	"FinScope/internal/domain/service"
	"FinScope/pkg/logger"
	"FinScope/pkg/metrics"
)

const (
	ReasonDisabled    = "disabled"
	ReasonUnreachable = "unreachable"
	ReasonMalformed   = "malformed"
)

// Synthesizer produces a Forecast, preferring the external reasoner and
// falling back to the rule-based path on any failure.
type Synthesizer struct {
	reasoner service.Reasoner
	timeout  time.Duration
	log      *logger.Logger
	metrics  repository.Metrics
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithReasoner sets the external reasoning service.
func WithReasoner(r service.Reasoner) Option {
	return func(s *Synthesizer) { s.reasoner = r }
}

// WithTimeout sets the external reasoning deadline.
func WithTimeout(d time.Duration) Option {
	return func(s *Synthesizer) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m repository.Metrics) Option {
	return func(s *Synthesizer) {
		if m != nil {
			s.metrics = m
		}
	}
}

// NewSynthesizer returns a synthesizer that uses the rule-based forecast
// until a reasoner is configured.
func NewSynthesizer(log *logger.Logger, opts ...Option) *Synthesizer {
	if log == nil {
		log = logger.Nop()
	}
	s := &Synthesizer{
		timeout: 20 * time.Second,
		log:     log,
		metrics: metrics.Noop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize never fails: reasoning errors are logged and answered with the
// rule-based forecast.
func (s *Synthesizer) Synthesize(ctx context.Context, mc MarketContext) Forecast {
	if mc.AsOf.IsZero() {
		mc.AsOf = time.Now().UTC()
	}

	f, err := s.external(ctx, mc)
	if err == nil {
		s.metrics.RecordReasoning(models.OriginExternal, "")
		return f
	}

	var rerr *models.ReasoningError
	reason := ReasonUnreachable
	if errors.As(err, &rerr) {
		reason = rerr.Reason
	}
	if reason != ReasonDisabled {
		s.log.Warn("external reasoning failed, using rule-based forecast",
			logger.String("ticker", mc.Ticker),
			logger.String("reason", reason),
			logger.Error(err),
		)
	}
	s.metrics.RecordReasoning(models.OriginRuleBased, reason)
	return RuleBased(mc)
}

func (s *Synthesizer) external(ctx context.Context, mc MarketContext) (Forecast, error) {
	if s.reasoner == nil {
		return Forecast{}, &models.ReasoningError{Reason: ReasonDisabled}
	}

	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.reasoner.Complete(cctx, BuildPrompt(mc))
	if err != nil {
		return Forecast{}, &models.ReasoningError{Reason: ReasonUnreachable, Err: err}
	}
	f, err := ParseResponse(text, mc)
	if err != nil {
		return Forecast{}, &models.ReasoningError{Reason: ReasonMalformed, Err: err}
	}
	return f, nil
}

// RuleBased is the deterministic forecast path.
func RuleBased(mc MarketContext) Forecast {
	bull := GenerateBullCase(mc)
	bear := GenerateBearCase(mc)
	return Forecast{
		Bull:       bull,
		Bear:       bear,
		Prediction: Fallback(mc, bull, bear),
		Origin:     models.OriginRuleBased,
	}
}
