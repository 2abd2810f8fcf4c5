//go:build unit

package worker_test

import (
	"log/slog"
	"testing"
	"time"

	domhold "stockroom/internal/domain/hold"
	"stockroom/internal/domain/inventory"
	"stockroom/internal/domain/order"
	"stockroom/internal/infra/events"
	"stockroom/internal/pkg/clock"
	"stockroom/internal/usecase/commands"
	"stockroom/internal/worker"
	"stockroom/tests/common/fake"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	holdTTL  = 62 * time.Second
	orderTTL = 62 * time.Second
)

type sweeperFixture struct {
	store     *fake.Store
	clock     *clock.MockClock
	engine    commands.ReservationCommands
	orders    commands.OrderCommands
	sweeper   *worker.Sweeper
	publisher *fake.RecordingPublisher
	cartID    uuid.UUID
	product   uuid.UUID
}

func newSweeperFixture(t *testing.T) *sweeperFixture {
	t.Helper()

	store := fake.NewStore()
	clk := clock.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	uow := fake.NewUoW(store)
	publisher := fake.NewRecordingPublisher()
	productID := uuid.New()
	store.SeedUnits(productID, 5)

	orders := commands.NewOrderCommands(uow, clk, orderTTL, publisher)

	return &sweeperFixture{
		store:     store,
		clock:     clk,
		engine:    commands.NewReservationCommands(uow, clk, holdTTL, nil),
		orders:    orders,
		sweeper:   worker.NewSweeper(uow, orders, clk, time.Second, 5*time.Second, nil, slog.Default()),
		publisher: publisher,
		cartID:    uuid.New(),
		product:   productID,
	}
}

func TestSweepHolds(t *testing.T) {
	t.Run("releases expired holds", func(t *testing.T) {
		f := newSweeperFixture(t)

		reserved, err := f.engine.Reserve(t.Context(), f.cartID, f.product, 2, "")
		require.NoError(t, err)

		f.clock.Add(holdTTL)
		swept, err := f.sweeper.SweepHoldsOnce(t.Context())
		require.NoError(t, err)
		assert.Equal(t, 1, swept)

		for _, id := range reserved.UnitIDs {
			state, _ := f.store.UnitState(id)
			assert.Equal(t, inventory.StateAvailable, state)
		}
		status, _ := f.store.HoldStatus(reserved.HoldID)
		assert.Equal(t, domhold.StatusReleased, status)
	})

	t.Run("leaves live holds alone", func(t *testing.T) {
		f := newSweeperFixture(t)

		reserved, err := f.engine.Reserve(t.Context(), f.cartID, f.product, 2, "")
		require.NoError(t, err)

		f.clock.Add(holdTTL - time.Second)
		swept, err := f.sweeper.SweepHoldsOnce(t.Context())
		require.NoError(t, err)
		assert.Zero(t, swept)

		status, _ := f.store.HoldStatus(reserved.HoldID)
		assert.Equal(t, domhold.StatusActive, status)
	})

	t.Run("a refreshed hold survives the original deadline", func(t *testing.T) {
		f := newSweeperFixture(t)

		reserved, err := f.engine.Reserve(t.Context(), f.cartID, f.product, 1, "")
		require.NoError(t, err)

		f.clock.Add(holdTTL - time.Second)
		_, err = f.engine.Extend(t.Context(), f.cartID, f.product)
		require.NoError(t, err)

		f.clock.Add(2 * time.Second)
		swept, err := f.sweeper.SweepHoldsOnce(t.Context())
		require.NoError(t, err)
		assert.Zero(t, swept)

		status, _ := f.store.HoldStatus(reserved.HoldID)
		assert.Equal(t, domhold.StatusActive, status)
	})

	t.Run("skips holds snapshotted into a pending order", func(t *testing.T) {
		f := newSweeperFixture(t)

		reserved, err := f.engine.Reserve(t.Context(), f.cartID, f.product, 2, "")
		require.NoError(t, err)
		_, err = f.orders.Checkout(t.Context(), f.cartID, "buyer-1")
		require.NoError(t, err)

		f.clock.Add(orderTTL + time.Hour)
		swept, err := f.sweeper.SweepHoldsOnce(t.Context())
		require.NoError(t, err)
		assert.Zero(t, swept)

		status, _ := f.store.HoldStatus(reserved.HoldID)
		assert.Equal(t, domhold.StatusActive, status)
	})
}

func TestSweepOrders(t *testing.T) {
	t.Run("cancels pending orders past the payment deadline", func(t *testing.T) {
		f := newSweeperFixture(t)

		reserved, err := f.engine.Reserve(t.Context(), f.cartID, f.product, 2, "")
		require.NoError(t, err)
		checkout, err := f.orders.Checkout(t.Context(), f.cartID, "buyer-1")
		require.NoError(t, err)

		f.clock.Add(orderTTL)
		cancelled, err := f.sweeper.SweepOrdersOnce(t.Context())
		require.NoError(t, err)
		assert.Equal(t, 1, cancelled)

		status, _ := f.store.OrderStatus(checkout.OrderID)
		assert.Equal(t, order.StatusCancelled, status)
		for _, id := range reserved.UnitIDs {
			state, _ := f.store.UnitState(id)
			assert.Equal(t, inventory.StateAvailable, state)
		}

		recorded := f.publisher.Events()
		require.Len(t, recorded, 1)
		assert.Equal(t, events.EventOrderCancelled, recorded[0].Type)
	})

	t.Run("never touches a paid order", func(t *testing.T) {
		f := newSweeperFixture(t)

		_, err := f.engine.Reserve(t.Context(), f.cartID, f.product, 1, "")
		require.NoError(t, err)
		checkout, err := f.orders.Checkout(t.Context(), f.cartID, "buyer-1")
		require.NoError(t, err)
		_, err = f.orders.ConfirmPayment(t.Context(), checkout.OrderID)
		require.NoError(t, err)

		f.clock.Add(orderTTL + time.Hour)
		cancelled, err := f.sweeper.SweepOrdersOnce(t.Context())
		require.NoError(t, err)
		assert.Zero(t, cancelled)

		status, _ := f.store.OrderStatus(checkout.OrderID)
		assert.Equal(t, order.StatusPaid, status)
	})

	t.Run("pending orders inside the window stay pending", func(t *testing.T) {
		f := newSweeperFixture(t)

		_, err := f.engine.Reserve(t.Context(), f.cartID, f.product, 1, "")
		require.NoError(t, err)
		checkout, err := f.orders.Checkout(t.Context(), f.cartID, "buyer-1")
		require.NoError(t, err)

		f.clock.Add(orderTTL - time.Second)
		cancelled, err := f.sweeper.SweepOrdersOnce(t.Context())
		require.NoError(t, err)
		assert.Zero(t, cancelled)

		status, _ := f.store.OrderStatus(checkout.OrderID)
		assert.Equal(t, order.StatusPendingPayment, status)
	})
}
