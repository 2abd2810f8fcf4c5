//go:build unit

package commands_test

import (
	"testing"
	"time"

	domhold "stockroom/internal/domain/hold"
	"stockroom/internal/domain/inventory"
	"stockroom/internal/domain/order"
	"stockroom/internal/infra/events"
	"stockroom/internal/pkg/clock"
	"stockroom/internal/pkg/errs"
	"stockroom/internal/usecase/commands"
	"stockroom/tests/common/fake"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const orderTTL = 62 * time.Second

type orderFixture struct {
	store     *fake.Store
	clock     *clock.MockClock
	engine    commands.ReservationCommands
	orders    commands.OrderCommands
	publisher *fake.RecordingPublisher
	cartID    uuid.UUID
	product   uuid.UUID
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()

	store := fake.NewStore()
	clk := clock.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	uow := fake.NewUoW(store)
	publisher := fake.NewRecordingPublisher()
	productID := uuid.New()
	store.SeedUnits(productID, 5)

	return &orderFixture{
		store:     store,
		clock:     clk,
		engine:    commands.NewReservationCommands(uow, clk, holdTTL, nil),
		orders:    commands.NewOrderCommands(uow, clk, orderTTL, publisher),
		publisher: publisher,
		cartID:    uuid.New(),
		product:   productID,
	}
}

func (f *orderFixture) reserveAndCheckout(t *testing.T, qty int) (*commands.ReserveResult, *commands.CheckoutResult) {
	t.Helper()

	reserved, err := f.engine.Reserve(t.Context(), f.cartID, f.product, qty, "buyer-1")
	require.NoError(t, err)

	checkout, err := f.orders.Checkout(t.Context(), f.cartID, "buyer-1")
	require.NoError(t, err)
	return reserved, checkout
}

func TestCheckout(t *testing.T) {
	t.Run("snapshots active holds into a pending order", func(t *testing.T) {
		f := newOrderFixture(t)

		reserved, checkout := f.reserveAndCheckout(t, 2)

		assert.Equal(t, []uuid.UUID{reserved.HoldID}, checkout.HoldIDs)
		assert.Equal(t, f.clock.Now().Add(orderTTL), checkout.ReserveExpiresAt)

		status, ok := f.store.OrderStatus(checkout.OrderID)
		require.True(t, ok)
		assert.Equal(t, order.StatusPendingPayment, status)
	})

	t.Run("rejects an empty cart", func(t *testing.T) {
		f := newOrderFixture(t)

		_, err := f.engine.Reserve(t.Context(), f.cartID, f.product, 1, "buyer-1")
		require.NoError(t, err)
		require.NoError(t, f.engine.Release(t.Context(), f.cartID, f.product))

		_, err = f.orders.Checkout(t.Context(), f.cartID, "buyer-1")
		assert.ErrorIs(t, err, errs.ErrCartEmpty)
	})

	t.Run("rejects an unknown cart", func(t *testing.T) {
		f := newOrderFixture(t)

		_, err := f.orders.Checkout(t.Context(), uuid.New(), "buyer-1")
		assert.True(t, errors.Is(err, errs.ErrCartNotFound))
	})

	t.Run("rejects checkout of another owner's cart", func(t *testing.T) {
		f := newOrderFixture(t)

		_, err := f.engine.Reserve(t.Context(), f.cartID, f.product, 1, "buyer-1")
		require.NoError(t, err)

		_, err = f.orders.Checkout(t.Context(), f.cartID, "intruder")
		assert.ErrorIs(t, err, errs.ErrCartForbidden)

		_, err = f.orders.Checkout(t.Context(), f.cartID, "buyer-1")
		assert.NoError(t, err)
	})
}

func TestConfirmPayment(t *testing.T) {
	t.Run("marks holds committed and units sold", func(t *testing.T) {
		f := newOrderFixture(t)
		reserved, checkout := f.reserveAndCheckout(t, 2)

		result, err := f.orders.ConfirmPayment(t.Context(), checkout.OrderID)
		require.NoError(t, err)
		assert.True(t, result.Applied)
		assert.Equal(t, order.StatusPaid, result.Status)

		for _, id := range reserved.UnitIDs {
			state, _ := f.store.UnitState(id)
			assert.Equal(t, inventory.StateSold, state)
		}
		holdStatus, _ := f.store.HoldStatus(reserved.HoldID)
		assert.Equal(t, domhold.StatusCommitted, holdStatus)
	})

	t.Run("publishes the paid event once", func(t *testing.T) {
		f := newOrderFixture(t)
		_, checkout := f.reserveAndCheckout(t, 1)

		_, err := f.orders.ConfirmPayment(t.Context(), checkout.OrderID)
		require.NoError(t, err)
		_, err = f.orders.ConfirmPayment(t.Context(), checkout.OrderID)
		require.NoError(t, err)

		recorded := f.publisher.Events()
		require.Len(t, recorded, 1)
		assert.Equal(t, events.EventOrderPaid, recorded[0].Type)
		assert.Equal(t, checkout.OrderID, recorded[0].OrderID)
	})

	t.Run("repeat confirm is a no-op", func(t *testing.T) {
		f := newOrderFixture(t)
		_, checkout := f.reserveAndCheckout(t, 1)

		first, err := f.orders.ConfirmPayment(t.Context(), checkout.OrderID)
		require.NoError(t, err)
		assert.True(t, first.Applied)

		second, err := f.orders.ConfirmPayment(t.Context(), checkout.OrderID)
		require.NoError(t, err)
		assert.False(t, second.Applied)
		assert.Equal(t, order.StatusPaid, second.Status)
	})

	t.Run("confirm after cancel loses cleanly", func(t *testing.T) {
		f := newOrderFixture(t)
		reserved, checkout := f.reserveAndCheckout(t, 2)

		_, err := f.orders.CancelOrder(t.Context(), checkout.OrderID)
		require.NoError(t, err)

		result, err := f.orders.ConfirmPayment(t.Context(), checkout.OrderID)
		require.NoError(t, err)
		assert.False(t, result.Applied)
		assert.Equal(t, order.StatusCancelled, result.Status)

		// Units stay in the pool; the late payment never resurrects the claim.
		for _, id := range reserved.UnitIDs {
			state, _ := f.store.UnitState(id)
			assert.Equal(t, inventory.StateAvailable, state)
		}
	})

	t.Run("unknown order", func(t *testing.T) {
		f := newOrderFixture(t)

		_, err := f.orders.ConfirmPayment(t.Context(), uuid.New())
		assert.True(t, errors.Is(err, errs.ErrOrderNotFound))
	})
}

func TestCancelOrder(t *testing.T) {
	t.Run("releases holds and returns units to the pool", func(t *testing.T) {
		f := newOrderFixture(t)
		reserved, checkout := f.reserveAndCheckout(t, 2)

		result, err := f.orders.CancelOrder(t.Context(), checkout.OrderID)
		require.NoError(t, err)
		assert.True(t, result.Applied)

		for _, id := range reserved.UnitIDs {
			state, _ := f.store.UnitState(id)
			assert.Equal(t, inventory.StateAvailable, state)
		}
		holdStatus, _ := f.store.HoldStatus(reserved.HoldID)
		assert.Equal(t, domhold.StatusReleased, holdStatus)

		recorded := f.publisher.Events()
		require.Len(t, recorded, 1)
		assert.Equal(t, events.EventOrderCancelled, recorded[0].Type)
	})

	t.Run("cancel after confirm is a no-op", func(t *testing.T) {
		f := newOrderFixture(t)
		reserved, checkout := f.reserveAndCheckout(t, 1)

		_, err := f.orders.ConfirmPayment(t.Context(), checkout.OrderID)
		require.NoError(t, err)

		result, err := f.orders.CancelOrder(t.Context(), checkout.OrderID)
		require.NoError(t, err)
		assert.False(t, result.Applied)
		assert.Equal(t, order.StatusPaid, result.Status)

		// Sold stays sold.
		for _, id := range reserved.UnitIDs {
			state, _ := f.store.UnitState(id)
			assert.Equal(t, inventory.StateSold, state)
		}
	})
}

func TestMarkFulfilled(t *testing.T) {
	t.Run("moves a paid order to fulfilled", func(t *testing.T) {
		f := newOrderFixture(t)
		_, checkout := f.reserveAndCheckout(t, 1)

		_, err := f.orders.ConfirmPayment(t.Context(), checkout.OrderID)
		require.NoError(t, err)

		require.NoError(t, f.orders.MarkFulfilled(t.Context(), checkout.OrderID))

		status, _ := f.store.OrderStatus(checkout.OrderID)
		assert.Equal(t, order.StatusFulfilled, status)
	})

	t.Run("rejects a pending order", func(t *testing.T) {
		f := newOrderFixture(t)
		_, checkout := f.reserveAndCheckout(t, 1)

		err := f.orders.MarkFulfilled(t.Context(), checkout.OrderID)
		assert.True(t, errors.Is(err, errs.ErrOrderStateConflict))
	})

	t.Run("rejects a cancelled order", func(t *testing.T) {
		f := newOrderFixture(t)
		_, checkout := f.reserveAndCheckout(t, 1)

		_, err := f.orders.CancelOrder(t.Context(), checkout.OrderID)
		require.NoError(t, err)

		err = f.orders.MarkFulfilled(t.Context(), checkout.OrderID)
		assert.True(t, errors.Is(err, errs.ErrOrderStateConflict))
	})
}

func TestPendingOrderFreezesCart(t *testing.T) {
	t.Run("clearing the cart leaves the order's units intact", func(t *testing.T) {
		f := newOrderFixture(t)
		reserved, checkout := f.reserveAndCheckout(t, 2)

		require.NoError(t, f.engine.ClearCart(t.Context(), f.cartID))

		for _, id := range reserved.UnitIDs {
			state, _ := f.store.UnitState(id)
			assert.Equal(t, inventory.StateHeld, state)
		}

		result, err := f.orders.ConfirmPayment(t.Context(), checkout.OrderID)
		require.NoError(t, err)
		assert.True(t, result.Applied)
		for _, id := range reserved.UnitIDs {
			state, _ := f.store.UnitState(id)
			assert.Equal(t, inventory.StateSold, state)
		}
	})

	t.Run("reserving onto a snapshotted line is rejected", func(t *testing.T) {
		f := newOrderFixture(t)
		reserved, checkout := f.reserveAndCheckout(t, 1)

		_, err := f.engine.Reserve(t.Context(), f.cartID, f.product, 3, "buyer-1")
		assert.ErrorIs(t, err, errs.ErrLineInPendingOrder)

		result, err := f.orders.ConfirmPayment(t.Context(), checkout.OrderID)
		require.NoError(t, err)
		assert.True(t, result.Applied)

		// Exactly the snapshotted unit is sold; the other four are still
		// claimable by another cart.
		state, _ := f.store.UnitState(reserved.UnitIDs[0])
		assert.Equal(t, inventory.StateSold, state)
		rest, err := f.engine.Reserve(t.Context(), uuid.New(), f.product, 4, "buyer-2")
		require.NoError(t, err)
		assert.Len(t, rest.UnitIDs, 4)
	})

	t.Run("shrink release and extend on a snapshotted line are rejected", func(t *testing.T) {
		f := newOrderFixture(t)
		reserved, _ := f.reserveAndCheckout(t, 2)

		_, err := f.engine.Shrink(t.Context(), f.cartID, f.product, 1)
		assert.ErrorIs(t, err, errs.ErrLineInPendingOrder)

		err = f.engine.Release(t.Context(), f.cartID, f.product)
		assert.ErrorIs(t, err, errs.ErrLineInPendingOrder)

		_, err = f.engine.Extend(t.Context(), f.cartID, f.product)
		assert.ErrorIs(t, err, errs.ErrLineInPendingOrder)

		for _, id := range reserved.UnitIDs {
			state, _ := f.store.UnitState(id)
			assert.Equal(t, inventory.StateHeld, state)
		}
	})

	t.Run("bulk unit release skips snapshotted units", func(t *testing.T) {
		f := newOrderFixture(t)
		reserved, _ := f.reserveAndCheckout(t, 2)

		count, err := f.engine.ReleaseUnits(t.Context(), reserved.UnitIDs)
		require.NoError(t, err)
		assert.Zero(t, count)
		for _, id := range reserved.UnitIDs {
			state, _ := f.store.UnitState(id)
			assert.Equal(t, inventory.StateHeld, state)
		}
	})

	t.Run("second checkout of the same cart is rejected", func(t *testing.T) {
		f := newOrderFixture(t)
		f.reserveAndCheckout(t, 1)

		_, err := f.orders.Checkout(t.Context(), f.cartID, "buyer-1")
		assert.ErrorIs(t, err, errs.ErrLineInPendingOrder)
	})

	t.Run("cancelling the order unlocks the line", func(t *testing.T) {
		f := newOrderFixture(t)
		_, checkout := f.reserveAndCheckout(t, 1)

		_, err := f.orders.CancelOrder(t.Context(), checkout.OrderID)
		require.NoError(t, err)

		result, err := f.engine.Reserve(t.Context(), f.cartID, f.product, 2, "buyer-1")
		require.NoError(t, err)
		assert.Len(t, result.UnitIDs, 2)
	})
}
