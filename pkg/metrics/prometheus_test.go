package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"FinScope/internal/domain/models"
	"FinScope/internal/domain/repository"
)

var (
	_ repository.Metrics = (*Recorder)(nil)
	_ repository.Metrics = Noop{}
)

func TestRecorderCounts(t *testing.T) {
	r := New(prometheus.NewRegistry())

	r.RecordProviderAttempt("quote", "yahoo-quote", false, 0.2)
	r.RecordProviderAttempt("quote", "yahoo-chart", true, 0.1)
	r.RecordFallback("quote", "yahoo-quote")
	r.RecordDegraded("history")
	r.RecordVerdict(models.VerdictBuy)
	r.RecordVerdict(models.VerdictBuy)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.providerAttempts.WithLabelValues("quote", "yahoo-quote", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.fallbacks.WithLabelValues("quote", "yahoo-quote")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.degraded.WithLabelValues("history")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.verdicts.WithLabelValues("BUY")))
}
