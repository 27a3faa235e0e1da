package broadcaster

import (
	"context"
	"log"
	"time"

	exitwal "matchengine/infra/wal/exit"

	"github.com/IBM/sarama"
)

// Broadcaster sends the fill events that the exit WAL holds as new or
// failed to Kafka, retrying failed ones on the polling interval until
// each is acked.
type Broadcaster struct {
	exitWAL  *exitwal.ExitWAL
	producer sarama.SyncProducer
	topic    string
	interval time.Duration
}

// New dials brokers with a synchronous, ack-all producer and returns a
// Broadcaster that publishes to topic.
func New(
	exitWAL *exitwal.ExitWAL,
	brokers []string,
	topic string,
	interval time.Duration,
) (*Broadcaster, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}

	return &Broadcaster{
		exitWAL:  exitWAL,
		producer: producer,
		topic:    topic,
		interval: interval,
	}, nil
}

// Run polls the exit WAL for StateNew and StateFailed records and
// resends them until Marked acked, until ctx is cancelled.
func (b *Broadcaster) Run(ctx context.Context) {
	log.Println("[broadcaster] started")

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[broadcaster] stopped")
			return
		case <-ticker.C:
			b.replayOnce(exitwal.StateNew)
			b.replayOnce(exitwal.StateFailed)
		}
	}
}

func (b *Broadcaster) replayOnce(state exitwal.ExitState) {
	_ = b.exitWAL.ScanByState(state, func(orderID uint64, rec exitwal.ExitRecord) error {
		msg := &sarama.ProducerMessage{
			Topic: b.topic,
			Value: sarama.ByteEncoder(rec.Payload),
		}

		if _, _, err := b.producer.SendMessage(msg); err != nil {
			log.Printf("[broadcaster] send failed for order %d: %v", orderID, err)
			_ = b.exitWAL.UpdateState(orderID, exitwal.StateFailed, rec.Retries+1)
			return nil
		}

		if err := b.exitWAL.UpdateState(orderID, exitwal.StateAcked, rec.Retries); err != nil {
			log.Printf("[broadcaster] failed to mark order %d acked: %v", orderID, err)
		}
		return nil
	})
}

// Close closes the underlying Kafka producer.
func (b *Broadcaster) Close() error {
	return b.producer.Close()
}
