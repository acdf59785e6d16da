package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"FinScope/internal/domain/models"
)

// Recorder implements repository.Metrics using Prometheus.
type Recorder struct {
	providerAttempts *prometheus.CounterVec
	providerLatency  *prometheus.HistogramVec
	fallbacks        *prometheus.CounterVec
	degraded         *prometheus.CounterVec
	reasoning        *prometheus.CounterVec
	verdicts         *prometheus.CounterVec
	analyses         *prometheus.CounterVec
	analysisLatency  prometheus.Histogram
	errorsTotal      *prometheus.CounterVec
}

// New creates a Prometheus recorder registered on reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		providerAttempts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finscope_provider_attempts_total",
				Help: "Provider fetch attempts by data kind, provider and outcome",
			},
			[]string{"kind", "provider", "outcome"},
		),
		providerLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finscope_provider_duration_seconds",
				Help:    "Provider fetch latency",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8},
			},
			[]string{"kind", "provider"},
		),
		fallbacks: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finscope_fallback_transitions_total",
				Help: "Times a fallback chain moved past a failed provider",
			},
			[]string{"kind", "from"},
		),
		degraded: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finscope_degraded_data_total",
				Help: "Analyses served with synthetic or missing data",
			},
			[]string{"kind"},
		),
		reasoning: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finscope_forecasts_total",
				Help: "Forecasts by origin and fallback reason",
			},
			[]string{"origin", "reason"},
		),
		verdicts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finscope_verdicts_total",
				Help: "Verdicts issued",
			},
			[]string{"verdict"},
		),
		analyses: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finscope_analyses_total",
				Help: "Completed analyses by outcome",
			},
			[]string{"outcome"},
		),
		analysisLatency: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "finscope_analysis_duration_seconds",
				Help:    "End to end analysis latency",
				Buckets: prometheus.DefBuckets,
			},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finscope_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
	}
}

func (r *Recorder) RecordProviderAttempt(kind, provider string, ok bool, seconds float64) {
	r.providerAttempts.WithLabelValues(kind, provider, outcome(ok)).Inc()
	r.providerLatency.WithLabelValues(kind, provider).Observe(seconds)
}

func (r *Recorder) RecordFallback(kind, from string) {
	r.fallbacks.WithLabelValues(kind, from).Inc()
}

func (r *Recorder) RecordDegraded(kind string) {
	r.degraded.WithLabelValues(kind).Inc()
}

func (r *Recorder) RecordReasoning(origin models.ForecastOrigin, reason string) {
	r.reasoning.WithLabelValues(string(origin), reason).Inc()
}

func (r *Recorder) RecordVerdict(v models.Verdict) {
	r.verdicts.WithLabelValues(string(v)).Inc()
}

func (r *Recorder) RecordAnalysis(ok bool, seconds float64) {
	r.analyses.WithLabelValues(outcome(ok)).Inc()
	r.analysisLatency.Observe(seconds)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

// Noop discards every measurement.
type Noop struct{}

func (Noop) RecordProviderAttempt(string, string, bool, float64) {}
func (Noop) RecordFallback(string, string) {}
func (Noop) RecordDegraded(string) {}
func (Noop) RecordReasoning(models.ForecastOrigin, string) {}
func (Noop) RecordVerdict(models.Verdict) {}
func (Noop) RecordAnalysis(bool, float64) {}
func (Noop) RecordError(string) {}
