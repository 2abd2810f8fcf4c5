package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventOrderPaid      = "OrderPaid"
	EventOrderCancelled = "OrderCancelled"
)

// Envelope is the wire format consumed by delivery collaborators off the
// orders topic.
type Envelope struct {
	EventID    uuid.UUID `json:"event_id"`
	EventType  string    `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
	Producer   string    `json:"producer"`
	OrderID    uuid.UUID `json:"order_id"`
}
