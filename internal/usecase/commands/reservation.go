package commands

import (
	"context"
	"fmt"
	"time"

	"stockroom/internal/domain/hold"
	"stockroom/internal/infra"
	"stockroom/internal/pkg/clock"
	"stockroom/internal/pkg/errs"
	"stockroom/internal/usecase/shared"

	"github.com/google/uuid"
)

// InsufficientInventoryError reports how many units were actually claimable
// so the caller can clamp and retry with a smaller quantity.
type InsufficientInventoryError struct {
	Requested int
	Available int
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("insufficient inventory: requested %d, available %d", e.Requested, e.Available)
}

func (e *InsufficientInventoryError) Is(target error) bool {
	return target == errs.ErrInsufficientInventory
}

type ReserveResult struct {
	HoldID uuid.UUID
	// UnitIDs are only the units claimed by this call, mirroring the
	// incremental reservation contract.
	UnitIDs   []uuid.UUID
	ExpiresAt time.Time
}

// StockInvalidator drops a cached stock badge after a mutation. Optional.
type StockInvalidator interface {
	Invalidate(ctx context.Context, productID uuid.UUID)
}

type ReservationCommands interface {
	// Reserve claims quantity more units for the cart line and refreshes the
	// line hold's TTL.
	Reserve(ctx context.Context, cartID, productID uuid.UUID, quantity int, ownerID string) (*ReserveResult, error)
	// Extend refreshes the line hold's deadline without claiming units.
	Extend(ctx context.Context, cartID, productID uuid.UUID) (time.Time, error)
	// Shrink releases held units down to newQuantity, most recently claimed
	// first. A newQuantity at or above the current count is a no-op.
	Shrink(ctx context.Context, cartID, productID uuid.UUID, newQuantity int) ([]uuid.UUID, error)
	// ChangeQuantity moves the line to exactly quantity units: grow reserves
	// the difference, shrink releases it.
	ChangeQuantity(ctx context.Context, cartID, productID uuid.UUID, quantity int, ownerID string) (*ReserveResult, error)
	// Release drops the whole cart line.
	Release(ctx context.Context, cartID, productID uuid.UUID) error
	// ReleaseUnits is the idempotent bulk release; unknown, available or sold
	// ids are skipped silently.
	ReleaseUnits(ctx context.Context, unitIDs []uuid.UUID) (int, error)
	ClearCart(ctx context.Context, cartID uuid.UUID) error
}

type reservationCommandsImpl struct {
	uow     shared.UnitOfWork
	clock   clock.Clock
	holdTTL time.Duration
	stock   StockInvalidator
}

func NewReservationCommands(uow shared.UnitOfWork, clk clock.Clock, holdTTL time.Duration, stock StockInvalidator) ReservationCommands {
	return &reservationCommandsImpl{
		uow:     uow,
		clock:   clk,
		holdTTL: holdTTL,
		stock:   stock,
	}
}

func (c *reservationCommandsImpl) Reserve(ctx context.Context, cartID, productID uuid.UUID, quantity int, ownerID string) (*ReserveResult, error) {
	if quantity < 1 {
		return nil, errs.ErrInvalidQuantity
	}

	var result *ReserveResult
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.Carts().Ensure(ctx, cartID, ownerID); err != nil {
			return err
		}

		lineHold, err := c.ensureLineHold(ctx, tx, cartID, productID)
		if err != nil {
			return err
		}

		available, err := tx.Units().CountAvailable(ctx, productID)
		if err != nil {
			return err
		}
		if available < quantity {
			return &InsufficientInventoryError{Requested: quantity, Available: available}
		}

		claimed, err := tx.Units().ClaimOldest(ctx, productID, lineHold.ID(), quantity)
		if err != nil {
			return err
		}
		// A concurrent reserve can shrink the pool between the count and the
		// claim; the per-unit CAS makes that a clean shortfall, not an oversell.
		if len(claimed) < quantity {
			return &InsufficientInventoryError{Requested: quantity, Available: len(claimed)}
		}

		unitIDs := make([]uuid.UUID, len(claimed))
		for i, cu := range claimed {
			unitIDs[i] = cu.ID
		}
		result = &ReserveResult{
			HoldID:    lineHold.ID(),
			UnitIDs:   unitIDs,
			ExpiresAt: lineHold.ExpiresAt(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.invalidateStock(ctx, productID)
	return result, nil
}

func (c *reservationCommandsImpl) Extend(ctx context.Context, cartID, productID uuid.UUID) (time.Time, error) {
	var expiresAt time.Time
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		lineHold, err := tx.Holds().FindActiveLine(ctx, cartID, productID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.Mark(err, errs.ErrProductNotHeld)
			}
			return err
		}
		if err := c.requireNotSnapshotted(ctx, tx, lineHold.ID()); err != nil {
			return err
		}

		if err := lineHold.Refresh(c.clock.Now(), c.holdTTL); err != nil {
			return err
		}
		if err := tx.Holds().UpdateExpiry(ctx, lineHold.ID(), lineHold.ExpiresAt()); err != nil {
			return err
		}
		expiresAt = lineHold.ExpiresAt()
		return nil
	})
	return expiresAt, err
}

func (c *reservationCommandsImpl) Shrink(ctx context.Context, cartID, productID uuid.UUID, newQuantity int) ([]uuid.UUID, error) {
	if newQuantity < 0 {
		return nil, errs.ErrInvalidQuantity
	}

	var released []uuid.UUID
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		lineHold, err := tx.Holds().FindActiveLine(ctx, cartID, productID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				// Benign for release-style operations.
				return nil
			}
			return err
		}
		if err := c.requireNotSnapshotted(ctx, tx, lineHold.ID()); err != nil {
			return err
		}

		current, err := tx.Units().CountByHold(ctx, lineHold.ID())
		if err != nil {
			return err
		}
		if newQuantity >= current {
			return nil
		}

		if newQuantity == 0 {
			released, err = tx.Units().ReleaseNewest(ctx, lineHold.ID(), current)
			if err != nil {
				return err
			}
			return tx.Holds().MarkReleased(ctx, lineHold.ID())
		}

		// The deadline is deliberately untouched: shrinking is not renewal.
		released, err = tx.Units().ReleaseNewest(ctx, lineHold.ID(), current-newQuantity)
		return err
	})
	if err != nil {
		return nil, err
	}

	if len(released) > 0 {
		c.invalidateStock(ctx, productID)
	}
	return released, nil
}

func (c *reservationCommandsImpl) ChangeQuantity(ctx context.Context, cartID, productID uuid.UUID, quantity int, ownerID string) (*ReserveResult, error) {
	if quantity < 0 {
		return nil, errs.ErrInvalidQuantity
	}

	var current int
	err := c.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		lineHold, err := tx.Holds().FindActiveLine(ctx, cartID, productID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				current = 0
				return nil
			}
			return err
		}
		current, err = tx.Units().CountByHold(ctx, lineHold.ID())
		return err
	})
	if err != nil {
		return nil, err
	}

	switch {
	case quantity > current:
		return c.Reserve(ctx, cartID, productID, quantity-current, ownerID)
	case quantity < current:
		if _, err := c.Shrink(ctx, cartID, productID, quantity); err != nil {
			return nil, err
		}
		return &ReserveResult{}, nil
	default:
		if current == 0 {
			return &ReserveResult{}, nil
		}
		// Unchanged re-request still counts as activity on the line.
		expiresAt, err := c.Extend(ctx, cartID, productID)
		if err != nil {
			return nil, err
		}
		return &ReserveResult{ExpiresAt: expiresAt}, nil
	}
}

func (c *reservationCommandsImpl) Release(ctx context.Context, cartID, productID uuid.UUID) error {
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		lineHold, err := tx.Holds().FindActiveLine(ctx, cartID, productID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return nil
			}
			return err
		}
		if err := c.requireNotSnapshotted(ctx, tx, lineHold.ID()); err != nil {
			return err
		}
		return c.releaseHold(ctx, tx, lineHold.ID())
	})
	if err != nil {
		return err
	}

	c.invalidateStock(ctx, productID)
	return nil
}

func (c *reservationCommandsImpl) ReleaseUnits(ctx context.Context, unitIDs []uuid.UUID) (int, error) {
	if len(unitIDs) == 0 {
		return 0, nil
	}

	var count int
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		releasedUnits, err := tx.Units().ReleaseByIDs(ctx, unitIDs)
		if err != nil {
			return err
		}
		count = len(releasedUnits)

		// Retire holds that ended up empty.
		seen := make(map[uuid.UUID]struct{})
		for _, ru := range releasedUnits {
			if ru.HoldID == uuid.Nil {
				continue
			}
			if _, ok := seen[ru.HoldID]; ok {
				continue
			}
			seen[ru.HoldID] = struct{}{}

			remaining, err := tx.Units().CountByHold(ctx, ru.HoldID)
			if err != nil {
				return err
			}
			if remaining == 0 {
				if err := tx.Holds().MarkReleased(ctx, ru.HoldID); err != nil && !infra.IsKind(err, infra.KindNotFound) {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (c *reservationCommandsImpl) ClearCart(ctx context.Context, cartID uuid.UUID) error {
	return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		holds, err := tx.Holds().FindActiveByCart(ctx, cartID)
		if err != nil {
			return err
		}
		for _, h := range holds {
			// Lines snapshotted into a pending order survive a cart clear;
			// the order keeps its units until confirm or cancel.
			pending, err := tx.Holds().InPendingOrder(ctx, h.ID())
			if err != nil {
				return err
			}
			if pending {
				continue
			}
			if err := c.releaseHold(ctx, tx, h.ID()); err != nil {
				return err
			}
		}
		return nil
	})
}

// ensureLineHold finds and refreshes the cart line's active hold, creating it
// on first reservation. Every reserve resets the clock to now + TTL.
func (c *reservationCommandsImpl) ensureLineHold(ctx context.Context, tx shared.Tx, cartID, productID uuid.UUID) (*hold.Hold, error) {
	lineHold, err := tx.Holds().FindActiveLine(ctx, cartID, productID)
	if err != nil {
		if !infra.IsKind(err, infra.KindNotFound) {
			return nil, err
		}
		lineHold = hold.NewHold(cartID, productID, c.clock.Now(), c.holdTTL)
		if err := tx.Holds().Create(ctx, lineHold); err != nil {
			return nil, err
		}
		return lineHold, nil
	}

	if err := c.requireNotSnapshotted(ctx, tx, lineHold.ID()); err != nil {
		return nil, err
	}

	if err := lineHold.Refresh(c.clock.Now(), c.holdTTL); err != nil {
		return nil, err
	}
	if err := tx.Holds().UpdateExpiry(ctx, lineHold.ID(), lineHold.ExpiresAt()); err != nil {
		return nil, err
	}
	return lineHold, nil
}

// requireNotSnapshotted guards cart-side mutations: once a hold is
// snapshotted into a pending order, the order owns its units and the line is
// frozen until payment settles one way or the other.
func (c *reservationCommandsImpl) requireNotSnapshotted(ctx context.Context, tx shared.Tx, holdID uuid.UUID) error {
	pending, err := tx.Holds().InPendingOrder(ctx, holdID)
	if err != nil {
		return err
	}
	if pending {
		return errs.ErrLineInPendingOrder
	}
	return nil
}

func (c *reservationCommandsImpl) releaseHold(ctx context.Context, tx shared.Tx, holdID uuid.UUID) error {
	if _, err := tx.Units().ReleaseByHold(ctx, holdID); err != nil {
		return err
	}
	return tx.Holds().MarkReleased(ctx, holdID)
}

func (c *reservationCommandsImpl) invalidateStock(ctx context.Context, productID uuid.UUID) {
	if c.stock != nil {
		c.stock.Invalidate(ctx, productID)
	}
}
