package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinScope/internal/domain/models"
	pkgkafka "FinScope/pkg/kafka"
)

func TestScannerRunAnalyzesWatchlistInOrder(t *testing.T) {
	sink := &recordingSink{}
	a := newTestAnalyzer(&fakeQuote{name: "yahoo", quote: validQuote(50)}, sink)
	s := NewScanner(a, "@every 1h", []string{"msft", " ", "aapl"}, nil)

	out := s.Run(context.Background())
	require.Len(t, out, 3)

	assert.Equal(t, "MSFT", out[0].Ticker)
	require.NotNil(t, out[0].Result)
	assert.Equal(t, "cron", out[0].Trigger)

	assert.Nil(t, out[1].Result)
	assert.Equal(t, models.ErrInvalidTicker.Error(), out[1].Error)

	assert.Equal(t, "AAPL", out[2].Ticker)
	require.Len(t, sink.triggers, 2)
	assert.Equal(t, TriggerCron, sink.triggers[0])
}

func TestScannerStartStop(t *testing.T) {
	a := newTestAnalyzer(&fakeQuote{name: "yahoo", quote: validQuote(50)})
	s := NewScanner(a, "*/5 * * * *", []string{"AAPL"}, nil)
	require.NoError(t, s.Start(context.Background()))
	assert.NoError(t, s.Stop(context.Background()))

	bad := NewScanner(a, "not a schedule", nil, nil)
	assert.Error(t, bad.Start(context.Background()))
}

func TestRequestsHandler(t *testing.T) {
	pub := &recordingPublisher{}
	sink := &recordingSink{}
	ok := newTestAnalyzer(&fakeQuote{name: "yahoo", quote: validQuote(50)}, sink)
	h := NewRequestsHandler("analysis.requests", ok, pub, nil, nil)
	ctx := context.Background()

	assert.Equal(t, "analysis.requests", h.Topic())

	err := h.Handle(ctx, []byte("{not json"))
	assert.ErrorIs(t, err, pkgkafka.ErrPermanent)

	require.NoError(t, h.Handle(ctx, []byte(`{"ticker":"nvda","request_id":"r-1"}`)))
	assert.Empty(t, pub.published(), "successful results go through the analyzer sinks")
	require.Len(t, sink.triggers, 1)
	assert.Equal(t, TriggerKafka, sink.triggers[0])

	require.NoError(t, h.Handle(ctx, []byte(`{"ticker":"  ","request_id":"r-2"}`)))
	got := pub.published()
	require.Len(t, got, 1)
	assert.Equal(t, "r-2", got[0].RequestID)
	assert.Equal(t, "kafka", got[0].Trigger)
	assert.Equal(t, models.ErrInvalidTicker.Error(), got[0].Error)
}

func TestRequestsHandlerPublishesQuoteFailure(t *testing.T) {
	pub := &recordingPublisher{}
	down := newTestAnalyzer(&fakeQuote{name: "yahoo", err: errors.New("down")})
	h := NewRequestsHandler("analysis.requests", down, pub, nil, nil)

	require.NoError(t, h.Handle(context.Background(), []byte(`{"ticker":"aapl"}`)))
	got := pub.published()
	require.Len(t, got, 1)
	assert.Equal(t, "AAPL", got[0].Ticker)
	assert.NotEmpty(t, got[0].RequestID)
	assert.Contains(t, got[0].Error, "quote unavailable")
	assert.Nil(t, got[0].Result)

	pub.err = errors.New("broker down")
	assert.Error(t, h.Handle(context.Background(), []byte(`{"ticker":"aapl"}`)))
}

func TestPublishSinkTagsTriggerAndRequestID(t *testing.T) {
	pub := &recordingPublisher{}
	ctx := WithRequestID(WithTrigger(context.Background(), TriggerKafka), "abc")
	r := &models.AnalysisResult{ID: "1", Ticker: "AAPL"}

	require.NoError(t, NewPublishSink(pub).Consume(ctx, r))
	got := pub.published()
	require.Len(t, got, 1)

	raw, err := json.Marshal(got[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"request_id":"abc","trigger":"kafka","ticker":"AAPL","result":`+mustJSON(t, r)+`}`, string(raw))
}

func mustJSON(t *testing.T, v interface{}) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}
