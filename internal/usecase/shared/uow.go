package shared

import (
	"context"
	"time"

	"stockroom/internal/domain/hold"
	"stockroom/internal/domain/order"

	"github.com/google/uuid"
)

// UnitOfWork funnels every engine and finalizer mutation through one atomic
// transaction over the inventory store and hold ledger.
type UnitOfWork interface {
	// Within: write transaction with internal retry on transient conflicts
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithinReadOnly: read-only transaction for multi-table consistent reads
	WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

type Tx interface {
	Carts() CartRepository
	Units() UnitRepository
	Holds() HoldRepository
	Orders() OrderRepository
}

// ClaimedUnit is one unit newly bound to a hold, with its claim sequence.
type ClaimedUnit struct {
	ID  uuid.UUID
	Seq int64
}

// ReleasedUnit carries the hold a unit was released from so callers can
// retire holds that ended up empty.
type ReleasedUnit struct {
	ID     uuid.UUID
	HoldID uuid.UUID
}

type CartRepository interface {
	// Ensure lazily creates the cart row on first reservation.
	Ensure(ctx context.Context, cartID uuid.UUID, ownerID string) error
	OwnerID(ctx context.Context, cartID uuid.UUID) (string, error)
}

type UnitRepository interface {
	CountAvailable(ctx context.Context, productID uuid.UUID) (int, error)
	// ClaimOldest atomically moves up to qty available units of the product
	// into the hold, oldest-created-first. Returns the claimed units in claim
	// order; fewer than qty means the pool ran short.
	ClaimOldest(ctx context.Context, productID, holdID uuid.UUID, qty int) ([]ClaimedUnit, error)
	// ReleaseNewest releases the n most recently claimed units of the hold.
	ReleaseNewest(ctx context.Context, holdID uuid.UUID, n int) ([]uuid.UUID, error)
	ReleaseByHold(ctx context.Context, holdID uuid.UUID) (int, error)
	// ReleaseByIDs skips units that are not held; releasing an available or
	// sold unit is a no-op.
	ReleaseByIDs(ctx context.Context, unitIDs []uuid.UUID) ([]ReleasedUnit, error)
	MarkSoldByHold(ctx context.Context, holdID uuid.UUID) (int, error)
	CountByHold(ctx context.Context, holdID uuid.UUID) (int, error)
	InsertBatch(ctx context.Context, productID uuid.UUID, payloads []string) ([]uuid.UUID, error)
}

type HoldRepository interface {
	Create(ctx context.Context, h *hold.Hold) error
	// FindActiveLine locks and returns the cart line's active hold, or a
	// NotFound repository error.
	FindActiveLine(ctx context.Context, cartID, productID uuid.UUID) (*hold.Hold, error)
	FindActiveByCart(ctx context.Context, cartID uuid.UUID) ([]*hold.Hold, error)
	// InPendingOrder reports whether the hold has been snapshotted into an
	// order that is still pending payment. Such holds belong to the order,
	// not the cart, until the order reaches a terminal state.
	InPendingOrder(ctx context.Context, holdID uuid.UUID) (bool, error)
	UpdateExpiry(ctx context.Context, holdID uuid.UUID, expiresAt time.Time) error
	MarkCommitted(ctx context.Context, holdID uuid.UUID) error
	MarkReleased(ctx context.Context, holdID uuid.UUID) error
	// LockExpired claims expired active holds for the sweeper, skipping holds
	// snapshotted into an order that is still pending payment and rows locked
	// by a concurrent transaction.
	LockExpired(ctx context.Context, now time.Time, limit int) ([]*hold.Hold, error)
	LockByOrder(ctx context.Context, orderID uuid.UUID) ([]*hold.Hold, error)
}

type OrderRepository interface {
	Create(ctx context.Context, o *order.Order) error
	// LockByID locks the order row; the confirm/cancel/timeout race is decided
	// by whoever gets the lock first.
	LockByID(ctx context.Context, orderID uuid.UUID) (*order.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status order.Status, paidAt *time.Time) error
	// LockExpiredPending returns pending orders past their payment deadline.
	LockExpiredPending(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error)
}
