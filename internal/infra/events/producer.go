package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const producerName = "stockroom-api"

// Publisher notifies external collaborators of terminal order transitions.
// Delivery itself is out of scope; the core only announces.
type Publisher interface {
	PublishOrderEvent(ctx context.Context, eventType string, orderID uuid.UUID) error
}

type KafkaPublisher struct {
	w *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
	}
}

func (p *KafkaPublisher) PublishOrderEvent(ctx context.Context, eventType string, orderID uuid.UUID) error {
	env := Envelope{
		EventID:    uuid.New(),
		EventType:  eventType,
		OccurredAt: time.Now(),
		Producer:   producerName,
		OrderID:    orderID,
	}

	value, err := json.Marshal(env)
	if err != nil {
		return err
	}

	return p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(orderID.String()),
		Value: value,
		Time:  env.OccurredAt,
	})
}

func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}

// NopPublisher keeps the finalizer usable without a broker (tests, local runs).
type NopPublisher struct{}

func (NopPublisher) PublishOrderEvent(_ context.Context, eventType string, orderID uuid.UUID) error {
	slog.Debug("order event dropped (no broker configured)",
		"event_type", eventType,
		"order_id", orderID.String())
	return nil
}
