package repository

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"

	"FinScope/internal/domain/models"
	domrepo "FinScope/internal/domain/repository"
	pkgkafka "FinScope/pkg/kafka"
)

// KafkaPublisher writes ScanResults to the results topic keyed by ticker, so
// all results for one symbol land on the same partition.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaPublisher(p *pkgkafka.Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: p, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, r *models.ScanResult) error {
	headers := []kafka.Header{{Key: "trigger", Value: []byte(r.Trigger)}}
	if r.RequestID != "" {
		headers = append(headers, kafka.Header{Key: "request_id", Value: []byte(r.RequestID)})
	}
	if err := p.producer.Publish(ctx, p.topic, []byte(r.Ticker), r, headers...); err != nil {
		return fmt.Errorf("publish scan result %s: %w", r.Ticker, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error { return p.producer.Close() }

var _ domrepo.ResultPublisher = (*KafkaPublisher)(nil)
