// Package publish announces bot events on the Fedora message bus
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"

	"Zodbot/internal/core/cookies"
)

// DefaultCookieTopic is the topic cookie gifts are published on
const DefaultCookieTopic = "org.fedoraproject.prod.maubot.cookie.give.v1"

// producer is the part of *kgo.Client the publisher needs
type producer interface {
	Produce(ctx context.Context, r *kgo.Record, promise func(*kgo.Record, error))
	Flush(ctx context.Context) error
	Close()
}

// KafkaPublisher publishes cookie events to Kafka
type KafkaPublisher struct {
	producer producer
	logger   *zap.Logger
	topic    string
}

// NewKafkaPublisher connects to brokers. Records are produced asynchronously.
func NewKafkaPublisher(brokers []string, topic string, logger *zap.Logger) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if topic == "" {
		topic = DefaultCookieTopic
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RecordRetries(3),
		kgo.ProduceRequestTimeout(10*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}
	return newKafkaPublisher(client, topic, logger), nil
}

func newKafkaPublisher(p producer, topic string, logger *zap.Logger) *KafkaPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KafkaPublisher{producer: p, topic: topic, logger: logger}
}

// Publish enqueues event keyed by its recipient; delivery failures are logged
func (p *KafkaPublisher) Publish(ctx context.Context, event cookies.GiveCookieEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode cookie event: %w", err)
	}

	record := &kgo.Record{Topic: p.topic, Key: []byte(event.Recipient), Value: value}
	// the record must outlive the command's context
	p.producer.Produce(context.WithoutCancel(ctx), record, func(r *kgo.Record, err error) {
		if err != nil {
			p.logger.Warn("failed to deliver cookie event",
				zap.String("topic", r.Topic), zap.String("recipient", event.Recipient), zap.Error(err))
		}
	})
	return nil
}

// Close flushes pending records and disconnects
func (p *KafkaPublisher) Close(ctx context.Context) error {
	defer p.producer.Close()
	if err := p.producer.Flush(ctx); err != nil {
		return fmt.Errorf("failed to flush kafka records: %w", err)
	}
	return nil
}

// Nop discards events. It is used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, cookies.GiveCookieEvent) error { return nil }

func (Nop) Close(context.Context) error { return nil }
