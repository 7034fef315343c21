package producer

import (
	"context"

	"go-presence/internal/messaging/kafka"

	kafkago "github.com/segmentio/kafka-go"
)

// Publisher abstracts the broker write so the outbox loop can be driven
// without a live Kafka connection.
type Publisher interface {
	Publish(ctx context.Context, event kafka.OutboxEvent) error
}

type kafkaPublisher struct {
	writer *kafkago.Writer
}

// NewKafkaPublisher wraps a kafka-go writer as a Publisher.
func NewKafkaPublisher(writer *kafkago.Writer) Publisher {
	return &kafkaPublisher{writer: writer}
}

func (p *kafkaPublisher) Publish(ctx context.Context, event kafka.OutboxEvent) error {
	msg := kafkago.Message{
		Topic: event.Topic,
		Key:   []byte(event.AggregateID),
		Value: event.Payload,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "aggregate_type", Value: []byte(event.AggregateType)},
		},
	}

	return p.writer.WriteMessages(ctx, msg)
}
