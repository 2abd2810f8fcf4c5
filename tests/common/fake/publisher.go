//go:build unit

package fake

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type PublishedEvent struct {
	Type    string
	OrderID uuid.UUID
}

// RecordingPublisher captures order events for assertions.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []PublishedEvent
}

func NewRecordingPublisher() *RecordingPublisher {
	return &RecordingPublisher{}
}

func (p *RecordingPublisher) PublishOrderEvent(_ context.Context, eventType string, orderID uuid.UUID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, PublishedEvent{Type: eventType, OrderID: orderID})
	return nil
}

func (p *RecordingPublisher) Events() []PublishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]PublishedEvent(nil), p.events...)
}
