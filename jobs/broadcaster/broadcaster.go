// Package broadcaster drains outbox entries and publishes them to Kafka,
// decoupling mutation application (wait-free, on the hot path) from
// delivery to external subscribers. Each NEW entry gets one send (with
// sarama's own producer retries); an entry whose send fails is marked
// FAILED and is not picked up again by the drain.
package broadcaster

import (
	"context"
	"log"
	"time"

	"cx/outbox"

	"github.com/IBM/sarama"
)

// Broadcaster periodically scans the outbox for pending entries and
// publishes them to Kafka via sarama's synchronous producer, which blocks
// for a broker ack before returning — the right tradeoff here since a lost
// broadcast is invisible until a downstream consumer notices a gap.
type Broadcaster struct {
	box      *outbox.Outbox
	producer sarama.SyncProducer
	topic    string
	encode   func(ticket uint64) ([]byte, error)
}

// New builds a Broadcaster draining box into topic on brokers. encode
// turns a ticket into the payload to publish (typically a lookup back into
// the audit log or a cached summary of what that mutation did).
func New(box *outbox.Outbox, brokers []string, topic string, encode func(ticket uint64) ([]byte, error)) (*Broadcaster, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}
	return &Broadcaster{box: box, producer: producer, topic: topic, encode: encode}, nil
}

// Start launches the drain loop in a background goroutine, stopping when
// ctx is cancelled.
func (b *Broadcaster) Start(ctx context.Context) {
	log.Println("[broadcaster] started")
	go func() {
		ticker := time.NewTicker(250 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				b.drainOnce()
			}
		}
	}()
}

func (b *Broadcaster) drainOnce() {
	_ = b.box.ScanByState(outbox.StateNew, func(ticket uint64, e outbox.Entry) error {
		payload, err := b.encode(ticket)
		if err != nil {
			return nil // nothing durable to send yet; retry next tick
		}

		if err := b.box.UpdateState(ticket, outbox.StateSent, e.Retries); err != nil {
			return nil
		}

		msg := &sarama.ProducerMessage{Topic: b.topic, Value: sarama.ByteEncoder(payload)}
		if _, _, err := b.producer.SendMessage(msg); err != nil {
			_ = b.box.UpdateState(ticket, outbox.StateFailed, e.Retries+1)
			return nil
		}

		_ = b.box.UpdateState(ticket, outbox.StateAcked, e.Retries)
		return nil
	})
}

// Close releases the underlying Kafka producer.
func (b *Broadcaster) Close() error {
	return b.producer.Close()
}
