package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// EventPublisher emits domain events keyed by aggregate ID.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event any) error
	Close() error
}

// KafkaPublisher writes JSON-encoded events to a single topic.
// The key is used for partitioning so events of one pedido stay ordered.
type KafkaPublisher struct {
	writer *kafka.Writer
	cb     *CircuitBreaker
}

func NewKafkaPublisher(brokers []string, topic string, cb *CircuitBreaker) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 10 * time.Millisecond,
			WriteTimeout: 5 * time.Second,
		},
		cb: cb,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka: marshal event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "content-type", Value: []byte("application/json")},
		},
	}
	return p.cb.Execute(func() error {
		return p.writer.WriteMessages(ctx, msg)
	})
}

func (p *KafkaPublisher) Close() error { return p.writer.Close() }

// NoopPublisher drops every event. Used when KAFKA_BROKERS is empty.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, any) error { return nil }
func (NoopPublisher) Close() error { return nil }
