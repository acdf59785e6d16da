package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"FinScope/internal/domain/models"
	domrepo "FinScope/internal/domain/repository"
	pkgkafka "FinScope/pkg/kafka"
	"FinScope/pkg/logger"
	"FinScope/pkg/metrics"
	"FinScope/pkg/util"
)

// RequestsHandler runs an analysis for every ScanRequest consumed from Kafka.
// Successful results reach the results topic through the analyzer's
// PublishSink; failures are published here so every request gets an answer.
type RequestsHandler struct {
	topic    string
	analyzer *Analyzer
	pub      domrepo.ResultPublisher
	log      *logger.Logger
	metrics  domrepo.Metrics
}

func NewRequestsHandler(topic string, analyzer *Analyzer, pub domrepo.ResultPublisher, log *logger.Logger, m domrepo.Metrics) *RequestsHandler {
	if log == nil {
		log = logger.Nop()
	}
	if m == nil {
		m = metrics.Noop{}
	}
	return &RequestsHandler{topic: topic, analyzer: analyzer, pub: pub, log: log, metrics: m}
}

func (h *RequestsHandler) Topic() string { return h.topic }

// incoming message schema: {ticker, request_id}
func (h *RequestsHandler) Handle(ctx context.Context, b []byte) error {
	var req models.ScanRequest
	if err := json.Unmarshal(b, &req); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return fmt.Errorf("decode scan request: %w", errors.Join(err, pkgkafka.ErrPermanent))
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	symbol := util.NormalizeTicker(req.Ticker)

	ctx = WithRequestID(WithTrigger(ctx, TriggerKafka), req.RequestID)
	if symbol == "" {
		return h.fail(ctx, req, models.ErrInvalidTicker)
	}

	if _, err := h.analyzer.Analyze(ctx, symbol); err != nil {
		return h.fail(ctx, req, err)
	}
	return nil
}

// fail publishes the error result. Only a publish failure is returned, so the
// consumer retries delivery rather than the analysis.
func (h *RequestsHandler) fail(ctx context.Context, req models.ScanRequest, cause error) error {
	h.log.Warn("scan request failed",
		logger.String("request_id", req.RequestID),
		logger.String("ticker", req.Ticker),
		logger.Error(cause),
	)
	if h.pub == nil {
		return nil
	}
	err := h.pub.Publish(ctx, &models.ScanResult{
		RequestID: req.RequestID,
		Trigger:   string(TriggerKafka),
		Ticker:    util.NormalizeTicker(req.Ticker),
		Error:     cause.Error(),
	})
	if err != nil {
		h.metrics.RecordError("publish_failure_result")
		return fmt.Errorf("publish failure result: %w", err)
	}
	return nil
}

var _ pkgkafka.MessageHandler = (*RequestsHandler)(nil)
