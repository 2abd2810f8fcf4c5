package hold

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotActive        = errors.New("hold is not active")
	ErrAlreadyCommitted = errors.New("hold is already committed")
)

// Hold is a time-bounded claim binding a set of inventory units to one cart
// line. One hold exists per (cart, product) pair while the line is active.
// Unit membership lives on the units themselves (hold_id + held_seq); the
// ledger row only tracks ownership, status and the deadline.
type Hold struct {
	id        uuid.UUID
	cartID    uuid.UUID
	productID uuid.UUID
	status    Status
	expiresAt time.Time
	createdAt time.Time
}

func NewHold(cartID, productID uuid.UUID, now time.Time, ttl time.Duration) *Hold {
	return &Hold{
		id:        uuid.New(),
		cartID:    cartID,
		productID: productID,
		status:    StatusActive,
		expiresAt: now.Add(ttl),
		createdAt: now,
	}
}

func ReconstructHold(
	id, cartID, productID uuid.UUID,
	status Status,
	expiresAt, createdAt time.Time,
) *Hold {
	return &Hold{
		id:        id,
		cartID:    cartID,
		productID: productID,
		status:    status,
		expiresAt: expiresAt,
		createdAt: createdAt,
	}
}

// Refresh resets the deadline to now + ttl. Any cart mutation on the line
// counts as activity.
func (h *Hold) Refresh(now time.Time, ttl time.Duration) error {
	if h.status != StatusActive {
		return ErrNotActive
	}
	h.expiresAt = now.Add(ttl)
	return nil
}

func (h *Hold) MarkCommitted() error {
	if h.status != StatusActive {
		return ErrNotActive
	}
	h.status = StatusCommitted
	return nil
}

func (h *Hold) MarkReleased() error {
	if h.status == StatusCommitted {
		return ErrAlreadyCommitted
	}
	h.status = StatusReleased
	return nil
}

func (h *Hold) IsActive() bool {
	return h.status == StatusActive
}

func (h *Hold) HasExpired(now time.Time) bool {
	return !now.Before(h.expiresAt)
}

// TimeRemaining is what the presentation layer shows as the countdown; the
// core keeps only the absolute deadline.
func (h *Hold) TimeRemaining(now time.Time) time.Duration {
	remaining := h.expiresAt.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (h *Hold) ID() uuid.UUID        { return h.id }
func (h *Hold) CartID() uuid.UUID    { return h.cartID }
func (h *Hold) ProductID() uuid.UUID { return h.productID }
func (h *Hold) Status() Status       { return h.status }
func (h *Hold) ExpiresAt() time.Time { return h.expiresAt }
func (h *Hold) CreatedAt() time.Time { return h.createdAt }
