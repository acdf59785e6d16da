package kafka

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/segmentio/kafka-go"

	"FinScope/pkg/logger"
)

// MessageHandler handles messages from a specific topic.
type MessageHandler interface {
	Topic() string
	Handle(context.Context, []byte) error
}

// ConsumerOption configures Consumer.
type ConsumerOption func(*ConsumerConfig)

// ConsumerConfig holds consumer configuration.
type ConsumerConfig struct {
	Brokers     []string
	GroupID     string
	WorkerCount int
	BufferSize  int
	RetryMax    int
	BackoffMin  time.Duration
	BackoffMax  time.Duration
	DLQTopic    string
	MinBytes    int
	MaxBytes    int
	MaxWait     time.Duration
}

func WithConsumerBrokers(brokers []string) ConsumerOption {
	return func(c *ConsumerConfig) { c.Brokers = brokers }
}

func WithConsumerGroupID(groupID string) ConsumerOption {
	return func(c *ConsumerConfig) { c.GroupID = groupID }
}

func WithConsumerWorkers(count int) ConsumerOption {
	return func(c *ConsumerConfig) {
		if count > 0 {
			c.WorkerCount = count
		}
	}
}

// WithConsumerRetry configures handler retry attempts and the backoff range.
func WithConsumerRetry(max int, backoffMin, backoffMax time.Duration) ConsumerOption {
	return func(c *ConsumerConfig) {
		c.RetryMax = max
		c.BackoffMin = backoffMin
		c.BackoffMax = backoffMax
	}
}

// WithConsumerDLQ sets the topic receiving messages whose handling failed.
func WithConsumerDLQ(topic string) ConsumerOption {
	return func(c *ConsumerConfig) { c.DLQTopic = topic }
}

func WithConsumerFetch(minBytes, maxBytes int, maxWait time.Duration) ConsumerOption {
	return func(c *ConsumerConfig) {
		c.MinBytes = minBytes
		c.MaxBytes = maxBytes
		c.MaxWait = maxWait
	}
}

func WithConsumerBufferSize(n int) ConsumerOption {
	return func(c *ConsumerConfig) {
		if n > 0 {
			c.BufferSize = n
		}
	}
}

// Consumer fetches from every registered topic and hands messages to a worker
// pool. Offsets are committed after success, or after a failed message was
// written to the DLQ.
type Consumer struct {
	cfg      *ConsumerConfig
	log      *logger.Logger
	handlers map[string]MessageHandler
	readers  map[string]*kafka.Reader
	msgs     chan *message
	dlq      *kafka.Writer
	hook     ConsumerHook
	metrics  *consumerMetrics

	cancel   context.CancelFunc
	fetchers sync.WaitGroup
	workers  sync.WaitGroup
	stopOnce sync.Once
}

type message struct {
	topic string
	km    kafka.Message
}

type consumerMetrics struct {
	handled *prometheus.CounterVec
	latency *prometheus.HistogramVec
	depth   prometheus.Gauge
}

func newConsumerMetrics(reg prometheus.Registerer) *consumerMetrics {
	f := promauto.With(reg)
	return &consumerMetrics{
		handled: f.NewCounterVec(prometheus.CounterOpts{
			Name: "finscope_kafka_consumer_messages_total",
			Help: "Messages handled by the consumer",
		}, []string{"topic", "result"}),
		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "finscope_kafka_consumer_handle_seconds",
			Help:    "Handling time per message including retries",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"topic"}),
		depth: f.NewGauge(prometheus.GaugeOpts{
			Name: "finscope_kafka_consumer_queue_depth",
			Help: "Messages waiting for a worker",
		}),
	}
}

// NewConsumer creates a consumer. reg may be nil to skip metrics.
func NewConsumer(log *logger.Logger, reg prometheus.Registerer, opts ...ConsumerOption) (*Consumer, error) {
	cfg := &ConsumerConfig{
		GroupID:     "finscope",
		WorkerCount: 1,
		BufferSize:  16,
		RetryMax:    2,
		BackoffMin:  100 * time.Millisecond,
		BackoffMax:  2 * time.Second,
		MinBytes:    1,
		MaxBytes:    1 << 20,
		MaxWait:     500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("brokers are required")
	}
	if log == nil {
		log = logger.Nop()
	}

	c := &Consumer{
		cfg:      cfg,
		log:      log.With(logger.String("component", "kafka-consumer")),
		handlers: make(map[string]MessageHandler),
		readers:  make(map[string]*kafka.Reader),
		msgs:     make(chan *message, cfg.BufferSize),
		hook:     NoopHook{},
	}
	if reg != nil {
		c.metrics = newConsumerMetrics(reg)
	}
	if cfg.DLQTopic != "" {
		c.dlq = &kafka.Writer{Addr: kafka.TCP(cfg.Brokers...), Balancer: &kafka.LeastBytes{}}
	}
	return c, nil
}

// RegisterHandler must be called before Start.
func (c *Consumer) RegisterHandler(h MessageHandler) {
	if _, ok := c.handlers[h.Topic()]; ok {
		c.log.Warn("handler already registered", logger.String("topic", h.Topic()))
		return
	}
	c.handlers[h.Topic()] = h
}

// WithHook sets a hook implementation for lifecycle events.
func (c *Consumer) WithHook(h ConsumerHook) {
	if h != nil {
		c.hook = h
	}
}

func (c *Consumer) Name() string { return "kafka-consumer" }

// Start launches the fetch loops and workers and returns immediately.
func (c *Consumer) Start(ctx context.Context) error {
	if len(c.handlers) == 0 {
		return fmt.Errorf("no handlers registered")
	}
	ctx, c.cancel = context.WithCancel(context.WithoutCancel(ctx))

	for topic := range c.handlers {
		c.readers[topic] = kafka.NewReader(kafka.ReaderConfig{
			Brokers:  c.cfg.Brokers,
			Topic:    topic,
			GroupID:  c.cfg.GroupID,
			MinBytes: c.cfg.MinBytes,
			MaxBytes: c.cfg.MaxBytes,
			MaxWait:  c.cfg.MaxWait,
		})
	}
	for i := 0; i < c.cfg.WorkerCount; i++ {
		c.workers.Add(1)
		go c.work(ctx)
	}
	for topic, r := range c.readers {
		c.fetchers.Add(1)
		go c.fetch(ctx, topic, r)
	}
	c.log.Info("consumer started",
		logger.Int("workers", c.cfg.WorkerCount),
		logger.Int("topics", len(c.readers)),
		logger.String("group", c.cfg.GroupID),
	)
	return nil
}

func (c *Consumer) fetch(ctx context.Context, topic string, r *kafka.Reader) {
	defer c.fetchers.Done()
	attempt := 0
	for {
		km, err := r.FetchMessage(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			attempt++
			c.log.Warn("fetch failed", logger.String("topic", topic), logger.Error(err))
			if !sleep(ctx, backoff(c.cfg.BackoffMin, c.cfg.BackoffMax, attempt)) {
				return
			}
			continue
		}
		attempt = 0
		select {
		case c.msgs <- &message{topic: topic, km: km}:
			if c.metrics != nil {
				c.metrics.depth.Set(float64(len(c.msgs)))
			}
		case <-ctx.Done():
			return
		}
	}
}

func (c *Consumer) work(ctx context.Context) {
	defer c.workers.Done()
	for msg := range c.msgs {
		c.handle(ctx, msg)
	}
}

func (c *Consumer) handle(ctx context.Context, msg *message) {
	h, ok := c.handlers[msg.topic]
	if !ok {
		return
	}
	start := time.Now()
	err := c.process(ctx, h, msg)

	if err != nil {
		c.hook.OnError(ctx, msg.topic, msg.km, msg.km.Value, err)
		c.log.Error("message handling failed",
			logger.String("topic", msg.topic),
			logger.Int64("offset", msg.km.Offset),
			logger.Error(err),
		)
		c.deadLetter(ctx, msg, err)
	}
	if err == nil || c.dlq != nil {
		c.commit(msg)
	}
	if c.metrics != nil {
		result := "ok"
		if err != nil {
			result = "error"
		}
		c.metrics.handled.WithLabelValues(msg.topic, result).Inc()
		c.metrics.latency.WithLabelValues(msg.topic).Observe(time.Since(start).Seconds())
	}
}

func (c *Consumer) process(ctx context.Context, h MessageHandler, msg *message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()

	for attempt := 1; ; attempt++ {
		hctx, km, data, berr := c.hook.BeforeHandle(ctx, msg.topic, msg.km, msg.km.Value)
		if berr != nil {
			return berr
		}
		err = h.Handle(hctx, data)
		c.hook.AfterHandle(hctx, msg.topic, km, data, err)
		if err == nil || attempt > c.cfg.RetryMax || errors.Is(err, ErrPermanent) {
			return err
		}
		if !sleep(ctx, backoff(c.cfg.BackoffMin, c.cfg.BackoffMax, attempt)) {
			return err
		}
	}
}

// ErrPermanent marks handler errors that retrying cannot fix, such as
// undecodable payloads.
var ErrPermanent = errors.New("permanent failure")

func (c *Consumer) deadLetter(ctx context.Context, msg *message, cause error) {
	if c.dlq == nil {
		return
	}
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	err := c.dlq.WriteMessages(wctx, kafka.Message{
		Topic: c.cfg.DLQTopic,
		Key:   msg.km.Key,
		Value: msg.km.Value,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "source_topic", Value: []byte(msg.topic)},
			{Key: "error", Value: []byte(cause.Error())},
		},
	})
	if err != nil {
		c.log.Error("dlq write failed", logger.String("topic", c.cfg.DLQTopic), logger.Error(err))
	}
}

func (c *Consumer) commit(msg *message) {
	r := c.readers[msg.topic]
	var err error
	for attempt := 1; attempt <= 3; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err = r.CommitMessages(ctx, msg.km)
		cancel()
		if err == nil {
			return
		}
		time.Sleep(backoff(50*time.Millisecond, 500*time.Millisecond, attempt))
	}
	c.log.Error("commit failed", logger.String("topic", msg.topic), logger.Int64("offset", msg.km.Offset), logger.Error(err))
}

// Stop ends fetching, drains queued messages through the workers and closes
// the readers.
func (c *Consumer) Stop(ctx context.Context) error {
	var stopErr error
	c.stopOnce.Do(func() {
		if c.cancel != nil {
			c.cancel()
		}
		c.fetchers.Wait()
		close(c.msgs)

		done := make(chan struct{})
		go func() { c.workers.Wait(); close(done) }()
		select {
		case <-done:
		case <-ctx.Done():
			stopErr = fmt.Errorf("timeout waiting for consumer workers: %w", ctx.Err())
		}

		for topic, r := range c.readers {
			if err := r.Close(); err != nil {
				c.log.Warn("close reader", logger.String("topic", topic), logger.Error(err))
			}
		}
		if c.dlq != nil {
			_ = c.dlq.Close()
		}
		c.log.Info("consumer stopped")
	})
	return stopErr
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// backoff is exponential in attempt, capped at max, with up to 50% jitter.
func backoff(min, max time.Duration, attempt int) time.Duration {
	if min <= 0 {
		min = 50 * time.Millisecond
	}
	if max < min {
		max = min
	}
	if attempt < 1 {
		attempt = 1
	}
	exp := max
	if attempt < 31 {
		exp = min * time.Duration(1<<uint(attempt-1))
	}
	if exp > max || exp <= 0 {
		exp = max
	}
	half := int64(exp) / 2
	if half <= 0 {
		return exp
	}
	return exp - time.Duration(rand.Int64N(half))
}
