// Package outbox relays order events written alongside the order row to
// Kafka. Rows are polled on a ticker; publish failures are retried on the
// next tick.
package outbox

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Event is one unpublished outbox row.
type Event struct {
	ID        uuid.UUID
	EventType string
	Payload   []byte
	CreatedAt time.Time
}

// Source is the storage side of the outbox, implemented by the order
// repository so events commit with the order.
type Source interface {
	UnprocessedEvents(ctx context.Context, limit int) ([]Event, error)
	MarkEventProcessed(ctx context.Context, id uuid.UUID) error
}

// Writer is the kafka-go Writer surface the poller needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type Poller struct {
	log     *slog.Logger
	src     Source
	writer  Writer
	tick    time.Duration
	timeout time.Duration
	batch   int
}

func NewPoller(log *slog.Logger, src Source, writer Writer) *Poller {
	return &Poller{
		log:     log,
		src:     src,
		writer:  writer,
		tick:    time.Second,
		timeout: 5 * time.Second,
		batch:   100,
	}
}

// NewKafkaWriter builds the writer the poller publishes to.
func NewKafkaWriter(topic string, brokers ...string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
}

func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.publishPending(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *Poller) publishPending(ctx context.Context) {
	events, err := p.src.UnprocessedEvents(ctx, p.batch)
	if err != nil {
		p.log.ErrorContext(ctx, "failed to fetch outbox events", "err", err)
		return
	}

	for _, event := range events {
		if err := p.publish(ctx, event); err != nil {
			p.log.ErrorContext(ctx, "failed to publish outbox event", "id", event.ID, "err", err)
			continue
		}
		if err := p.src.MarkEventProcessed(ctx, event.ID); err != nil {
			p.log.ErrorContext(ctx, "failed to mark outbox event processed", "id", event.ID, "err", err)
		}
	}
}

func (p *Poller) publish(ctx context.Context, event Event) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.ID.String()),
		Value: event.Payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	})
}
