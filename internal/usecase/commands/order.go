package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"stockroom/internal/domain/order"
	"stockroom/internal/infra"
	"stockroom/internal/infra/events"
	"stockroom/internal/pkg/clock"
	"stockroom/internal/pkg/errs"
	"stockroom/internal/usecase/shared"

	"github.com/google/uuid"
)

type CheckoutResult struct {
	OrderID          uuid.UUID
	HoldIDs          []uuid.UUID
	ReserveExpiresAt time.Time
}

// FinalizeResult reports whether this call performed the transition. A false
// Applied means someone else already moved the order to a terminal state.
type FinalizeResult struct {
	Applied bool
	Status  order.Status
}

type OrderCommands interface {
	// Checkout snapshots the cart's active holds into a pending order with a
	// fresh payment deadline.
	Checkout(ctx context.Context, cartID uuid.UUID, ownerID string) (*CheckoutResult, error)
	// ConfirmPayment commits the order's holds: their units go sold, for good.
	// Idempotent; confirming a non-pending order is a no-op.
	ConfirmPayment(ctx context.Context, orderID uuid.UUID) (*FinalizeResult, error)
	// CancelOrder releases the order's holds back to the pool. Idempotent on
	// non-pending orders the same way.
	CancelOrder(ctx context.Context, orderID uuid.UUID) (*FinalizeResult, error)
	// MarkFulfilled moves a paid order to fulfilled. Unlike the pending-state
	// finalizers this one rejects wrong states outright.
	MarkFulfilled(ctx context.Context, orderID uuid.UUID) error
}

type orderCommandsImpl struct {
	uow       shared.UnitOfWork
	clock     clock.Clock
	orderTTL  time.Duration
	publisher events.Publisher
}

func NewOrderCommands(uow shared.UnitOfWork, clk clock.Clock, orderTTL time.Duration, publisher events.Publisher) OrderCommands {
	return &orderCommandsImpl{
		uow:       uow,
		clock:     clk,
		orderTTL:  orderTTL,
		publisher: publisher,
	}
}

func (c *orderCommandsImpl) Checkout(ctx context.Context, cartID uuid.UUID, ownerID string) (*CheckoutResult, error) {
	var result *CheckoutResult
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		cartOwner, err := tx.Carts().OwnerID(ctx, cartID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.Mark(err, errs.ErrCartNotFound)
			}
			return err
		}
		// Anonymous carts (no recorded owner) may be checked out by anyone
		// holding the cart id.
		if cartOwner != "" && cartOwner != ownerID {
			return errs.ErrCartForbidden
		}

		holds, err := tx.Holds().FindActiveByCart(ctx, cartID)
		if err != nil {
			return err
		}
		if len(holds) == 0 {
			return errs.ErrCartEmpty
		}

		holdIDs := make([]uuid.UUID, len(holds))
		for i, h := range holds {
			// A hold can back at most one pending order at a time; the buyer
			// has to settle or cancel the first checkout before retrying.
			pending, err := tx.Holds().InPendingOrder(ctx, h.ID())
			if err != nil {
				return err
			}
			if pending {
				return errs.ErrLineInPendingOrder
			}
			holdIDs[i] = h.ID()
		}

		o, err := order.NewOrder(cartID, ownerID, holdIDs, c.clock.Now(), c.orderTTL)
		if err != nil {
			return err
		}
		if err := tx.Orders().Create(ctx, o); err != nil {
			return err
		}

		// The payment window supersedes the per-hold TTLs; align them so the
		// cart view shows one consistent countdown.
		for _, h := range holds {
			if err := tx.Holds().UpdateExpiry(ctx, h.ID(), o.ReserveExpiresAt()); err != nil {
				return err
			}
		}

		result = &CheckoutResult{
			OrderID:          o.ID(),
			HoldIDs:          holdIDs,
			ReserveExpiresAt: o.ReserveExpiresAt(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *orderCommandsImpl) ConfirmPayment(ctx context.Context, orderID uuid.UUID) (*FinalizeResult, error) {
	var result *FinalizeResult
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		o, err := c.lockOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}

		now := c.clock.Now()
		if err := o.MarkPaid(now); err != nil {
			if errors.Is(err, order.ErrNotPending) {
				result = &FinalizeResult{Applied: false, Status: o.Status()}
				return nil
			}
			return err
		}

		for _, holdID := range o.HoldIDs() {
			if _, err := tx.Units().MarkSoldByHold(ctx, holdID); err != nil {
				return err
			}
			if err := tx.Holds().MarkCommitted(ctx, holdID); err != nil {
				return err
			}
		}

		paidAt := now
		if err := tx.Orders().UpdateStatus(ctx, orderID, order.StatusPaid, &paidAt); err != nil {
			return err
		}
		result = &FinalizeResult{Applied: true, Status: order.StatusPaid}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Applied {
		c.publish(ctx, events.EventOrderPaid, orderID)
	}
	return result, nil
}

func (c *orderCommandsImpl) CancelOrder(ctx context.Context, orderID uuid.UUID) (*FinalizeResult, error) {
	var result *FinalizeResult
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		o, err := c.lockOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}

		if err := o.MarkCancelled(); err != nil {
			if errors.Is(err, order.ErrNotPending) {
				result = &FinalizeResult{Applied: false, Status: o.Status()}
				return nil
			}
			return err
		}

		for _, holdID := range o.HoldIDs() {
			if _, err := tx.Units().ReleaseByHold(ctx, holdID); err != nil {
				return err
			}
			if err := tx.Holds().MarkReleased(ctx, holdID); err != nil && !infra.IsKind(err, infra.KindNotFound) {
				return err
			}
		}

		if err := tx.Orders().UpdateStatus(ctx, orderID, order.StatusCancelled, nil); err != nil {
			return err
		}
		result = &FinalizeResult{Applied: true, Status: order.StatusCancelled}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Applied {
		c.publish(ctx, events.EventOrderCancelled, orderID)
	}
	return result, nil
}

func (c *orderCommandsImpl) MarkFulfilled(ctx context.Context, orderID uuid.UUID) error {
	return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		o, err := c.lockOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}

		if err := o.MarkFulfilled(); err != nil {
			return errs.Mark(err, errs.ErrOrderStateConflict)
		}
		return tx.Orders().UpdateStatus(ctx, orderID, order.StatusFulfilled, nil)
	})
}

func (c *orderCommandsImpl) lockOrder(ctx context.Context, tx shared.Tx, orderID uuid.UUID) (*order.Order, error) {
	o, err := tx.Orders().LockByID(ctx, orderID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrOrderNotFound)
		}
		return nil, err
	}
	return o, nil
}

// publish happens after commit; a broker hiccup never rolls back a payment.
func (c *orderCommandsImpl) publish(ctx context.Context, eventType string, orderID uuid.UUID) {
	if c.publisher == nil {
		return
	}
	if err := c.publisher.PublishOrderEvent(ctx, eventType, orderID); err != nil {
		slog.Warn("order event publish failed",
			"event_type", eventType,
			"order_id", orderID.String(),
			"error", err.Error())
	}
}
