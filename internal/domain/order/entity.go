package order

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNoHolds    = errors.New("order must snapshot at least one hold")
	ErrNotPending = errors.New("order is not pending payment")
	ErrNotPaid    = errors.New("order is not paid")
)

// Order freezes a checkout: the set of holds it references is fixed at
// creation even if the cart is cleared afterwards. The order never owns units
// directly; committing it transitions its holds and their units together.
type Order struct {
	id               uuid.UUID
	cartID           uuid.UUID
	ownerID          string
	holdIDs          []uuid.UUID
	status           Status
	reserveExpiresAt time.Time
	createdAt        time.Time
	paidAt           *time.Time
}

func NewOrder(cartID uuid.UUID, ownerID string, holdIDs []uuid.UUID, now time.Time, reserveTTL time.Duration) (*Order, error) {
	if len(holdIDs) == 0 {
		return nil, ErrNoHolds
	}
	ids := make([]uuid.UUID, len(holdIDs))
	copy(ids, holdIDs)
	return &Order{
		id:               uuid.New(),
		cartID:           cartID,
		ownerID:          ownerID,
		holdIDs:          ids,
		status:           StatusPendingPayment,
		reserveExpiresAt: now.Add(reserveTTL),
		createdAt:        now,
	}, nil
}

func ReconstructOrder(
	id, cartID uuid.UUID,
	ownerID string,
	holdIDs []uuid.UUID,
	status Status,
	reserveExpiresAt, createdAt time.Time,
	paidAt *time.Time,
) *Order {
	return &Order{
		id:               id,
		cartID:           cartID,
		ownerID:          ownerID,
		holdIDs:          holdIDs,
		status:           status,
		reserveExpiresAt: reserveExpiresAt,
		createdAt:        createdAt,
		paidAt:           paidAt,
	}
}

// MarkPaid is the winning half of the confirm-vs-cancel race. Callers treat
// ErrNotPending as a no-op, never as a failure (duplicate webhooks are normal).
func (o *Order) MarkPaid(now time.Time) error {
	if o.status != StatusPendingPayment {
		return ErrNotPending
	}
	o.status = StatusPaid
	o.paidAt = &now
	return nil
}

func (o *Order) MarkCancelled() error {
	if o.status != StatusPendingPayment {
		return ErrNotPending
	}
	o.status = StatusCancelled
	return nil
}

func (o *Order) MarkFulfilled() error {
	if o.status != StatusPaid {
		return ErrNotPaid
	}
	o.status = StatusFulfilled
	return nil
}

func (o *Order) IsPending() bool {
	return o.status == StatusPendingPayment
}

func (o *Order) PaymentDeadlinePassed(now time.Time) bool {
	return !now.Before(o.reserveExpiresAt)
}

func (o *Order) ID() uuid.UUID               { return o.id }
func (o *Order) CartID() uuid.UUID           { return o.cartID }
func (o *Order) OwnerID() string             { return o.ownerID }
func (o *Order) HoldIDs() []uuid.UUID        { return o.holdIDs }
func (o *Order) Status() Status              { return o.status }
func (o *Order) ReserveExpiresAt() time.Time { return o.reserveExpiresAt }
func (o *Order) CreatedAt() time.Time        { return o.createdAt }
func (o *Order) PaidAt() *time.Time          { return o.paidAt }
