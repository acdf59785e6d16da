package usecase

import (
	"context"

	"FinScope/internal/domain/models"
	domrepo "FinScope/internal/domain/repository"
)

// StoreSink persists analyses through an AnalysisStore.
type StoreSink struct {
	store domrepo.AnalysisStore
}

func NewStoreSink(store domrepo.AnalysisStore) *StoreSink { return &StoreSink{store: store} }

func (s *StoreSink) Name() string { return "store" }

func (s *StoreSink) Consume(ctx context.Context, r *models.AnalysisResult) error {
	return s.store.Save(ctx, r)
}

// PublishSink wraps each analysis in a ScanResult tagged with the trigger and
// request id carried by ctx.
type PublishSink struct {
	pub domrepo.ResultPublisher
}

func NewPublishSink(pub domrepo.ResultPublisher) *PublishSink { return &PublishSink{pub: pub} }

func (s *PublishSink) Name() string { return "publisher" }

func (s *PublishSink) Consume(ctx context.Context, r *models.AnalysisResult) error {
	return s.pub.Publish(ctx, &models.ScanResult{
		RequestID: RequestIDFrom(ctx),
		Trigger:   string(TriggerFrom(ctx)),
		Ticker:    r.Ticker,
		Result:    r,
	})
}

var (
	_ domrepo.AnalysisSink = (*StoreSink)(nil)
	_ domrepo.AnalysisSink = (*PublishSink)(nil)
)
