// Package broadcaster implements a background job that scans the exit
// WAL for pop events awaiting delivery and publishes them to Kafka,
// advancing each record through SENT to ACKED as delivery confirms.
package broadcaster

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/IBM/sarama"

	"github.com/FlovinTue/concurrent-sorted-list/internal/metrics"
	exitwal "github.com/FlovinTue/concurrent-sorted-list/wal/exit"
)

// Broadcaster drains NEW exit-WAL records to a Kafka topic.
type Broadcaster struct {
	exitWAL  *exitwal.WAL
	producer sarama.SyncProducer
	topic    string
	interval time.Duration
}

// New constructs a Broadcaster publishing to topic on brokers, polling
// the exit WAL at interval.
func New(exitWAL *exitwal.WAL, brokers []string, topic string, interval time.Duration) (*Broadcaster, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}

	return NewWithProducer(exitWAL, producer, topic, interval), nil
}

// NewWithProducer wires a Broadcaster around an already-constructed
// producer, letting tests inject github.com/IBM/sarama/mocks instead
// of dialing real brokers.
func NewWithProducer(exitWAL *exitwal.WAL, producer sarama.SyncProducer, topic string, interval time.Duration) *Broadcaster {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	return &Broadcaster{
		exitWAL:  exitWAL,
		producer: producer,
		topic:    topic,
		interval: interval,
	}
}

// Run drives the poll loop until ctx is cancelled.
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
			b.drainOnce()
		}
	}
}

func (b *Broadcaster) drainOnce() {
	_ = b.exitWAL.ScanByState(exitwal.StateNew, func(seq uint64, rec exitwal.Record) error {
		if err := b.exitWAL.MarkSent(seq); err != nil {
			log.Printf("[broadcaster] mark sent failed for seq %d: %v", seq, err)
			return nil
		}

		msg := &sarama.ProducerMessage{
			Topic: b.topic,
			Key:   sarama.StringEncoder(keyFor(seq)),
			Value: sarama.ByteEncoder(rec.Payload),
		}

		if _, _, err := b.producer.SendMessage(msg); err != nil {
			log.Printf("[broadcaster] send failed for seq %d: %v", seq, err)
			_ = b.exitWAL.MarkFailed(seq)
			return nil
		}

		if err := b.exitWAL.MarkAcked(seq); err != nil {
			log.Printf("[broadcaster] mark acked failed for seq %d: %v", seq, err)
		}
		return nil
	})

	b.reportPending()
}

// reportPending counts records still awaiting a final ACKED/FAILED
// outcome (NEW or SENT) and surfaces it as a gauge, so a backlog that
// grows because brokers are unreachable is visible without needing to
// open the outbox store directly.
func (b *Broadcaster) reportPending() {
	var pending int
	count := func(seq uint64, _ exitwal.Record) error {
		pending++
		return nil
	}
	_ = b.exitWAL.ScanByState(exitwal.StateNew, count)
	_ = b.exitWAL.ScanByState(exitwal.StateSent, count)
	metrics.ExitWALPending.Set(float64(pending))
}

func keyFor(seq uint64) string {
	return strconv.FormatUint(seq, 10)
}

// Close releases the underlying producer.
func (b *Broadcaster) Close() error {
	return b.producer.Close()
}
