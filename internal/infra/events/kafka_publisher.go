package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"class-access/internal/config"
	"class-access/internal/domain/model"
	"class-access/internal/domain/ports/adapter"

	"github.com/segmentio/kafka-go"
)

var _ adapter.AccessEventPublisher = (*KafkaPublisher)(nil)

// messageWriter is the part of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaWriter(cfg config.EventsConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           cfg.WriteTimeout,
		AllowAutoTopicCreation: true,
	}
}

func NewKafkaPublisher(w messageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: w}
}

// PublishAccessGranted keys messages by user id so one user's grants stay ordered.
func (p *KafkaPublisher) PublishAccessGranted(ctx context.Context, ev model.AccessGrantedEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal access event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(ev.UserID),
		Value: b,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("access.granted")},
			{Key: "source", Value: []byte(ev.Source)},
		},
		Time: ev.At,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("produce access event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error { return p.writer.Close() }

// NoopPublisher drops events; used when no brokers are configured.
type NoopPublisher struct{}

var _ adapter.AccessEventPublisher = NoopPublisher{}

func (NoopPublisher) PublishAccessGranted(context.Context, model.AccessGrantedEvent) error {
	return nil
}

func (NoopPublisher) Close() error { return nil }

// New returns a Kafka publisher when brokers are configured, otherwise a no-op.
func New(cfg config.EventsConfig) adapter.AccessEventPublisher {
	if len(cfg.Brokers) == 0 {
		return NoopPublisher{}
	}
	return NewKafkaPublisher(NewKafkaWriter(cfg))
}
