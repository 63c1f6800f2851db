package relay

import (
	"context"
	"encoding/json"

	"chatwave/internal/events"
	"chatwave/pkg/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Publisher bridges selected domain events onto durable Kafka topics. The
// topic name equals the event type; the message key is the event's subject
// id, so one subject is always one consumer lane.
type Publisher struct {
	writer *kafka.Writer
	log    *logger.Logger
}

func NewPublisher(brokers []string, log *logger.Logger) *Publisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: writer, log: log}
}

// Relay publishes e to its topic. A send failure is logged and swallowed:
// the triggering request has already committed and must never fail or block
// on the relay.
func (p *Publisher) Relay(ctx context.Context, e events.Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		p.log.WithContext(ctx).Error("failed to marshal relay event",
			zap.String("event_type", e.EventType()),
			zap.Error(err),
		)
		return
	}

	envelope, err := json.Marshal(Envelope{
		EventType:  e.EventType(),
		OccurredAt: e.OccurredAt(),
		Payload:    payload,
	})
	if err != nil {
		p.log.WithContext(ctx).Error("failed to marshal relay envelope",
			zap.String("event_type", e.EventType()),
			zap.Error(err),
		)
		return
	}

	var key []byte
	if keyer, ok := e.(events.Keyer); ok {
		key = []byte(keyer.PartitionKey())
	}

	msg := kafka.Message{
		Topic: e.EventType(),
		Key:   key,
		Value: envelope,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.WithContext(ctx).Error("failed to publish relay message",
			zap.String("topic", e.EventType()),
			zap.Error(err),
		)
		return
	}

	p.log.WithContext(ctx).Debug("relay message published",
		zap.String("topic", e.EventType()),
		zap.String("key", string(key)),
	)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
