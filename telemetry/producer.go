// Package telemetry publishes operational statistics about a running UC
// instance to Kafka for external monitoring, independent of the outbox's
// mutation broadcast. Sampler publishes a TimedUC's copy count and last
// copy time; other samples are whatever callers pass to Producer.Send.
package telemetry

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
)

// Producer is a thin wrapper over a kafka-go Writer tuned for periodic,
// best-effort stats publication rather than durable delivery.
type Producer struct {
	writer *kafka.Writer
}

// NewProducer opens a writer for topic across brokers.
func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			RequiredAcks: kafka.RequireOne,
			Async:        true,
			BatchTimeout: 50 * time.Millisecond,
		},
	}
}

// Send publishes a single stats sample keyed by source.
func (p *Producer) Send(ctx context.Context, key []byte, value []byte) error {
	return p.writer.WriteMessages(ctx, kafka.Message{Key: key, Value: value})
}

// Close flushes and closes the underlying writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
