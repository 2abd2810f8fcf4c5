package worker

import (
	"context"
	"log/slog"
	"time"

	"stockroom/internal/pkg/clock"
	"stockroom/internal/usecase/commands"
	"stockroom/internal/usecase/shared"

	"github.com/google/uuid"
)

// sweepBatchSize bounds how many rows one tick locks; leftovers wait for the
// next tick rather than stretching the transaction.
const sweepBatchSize = 200

// Sweeper reclaims expired holds and times out unpaid orders in the
// background. Both loops rely on SKIP LOCKED row claims, so running several
// replicas is safe.
type Sweeper struct {
	uow           shared.UnitOfWork
	orders        commands.OrderCommands
	clock         clock.Clock
	holdInterval  time.Duration
	orderInterval time.Duration
	stock         commands.StockInvalidator
	logger        *slog.Logger
}

func NewSweeper(
	uow shared.UnitOfWork,
	orders commands.OrderCommands,
	clk clock.Clock,
	holdInterval, orderInterval time.Duration,
	stock commands.StockInvalidator,
	logger *slog.Logger,
) *Sweeper {
	return &Sweeper{
		uow:           uow,
		orders:        orders,
		clock:         clk,
		holdInterval:  holdInterval,
		orderInterval: orderInterval,
		stock:         stock,
		logger:        logger,
	}
}

// Run blocks until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	holdTicker := time.NewTicker(s.holdInterval)
	defer holdTicker.Stop()
	orderTicker := time.NewTicker(s.orderInterval)
	defer orderTicker.Stop()

	s.logger.Info("sweeper started",
		"hold_interval", s.holdInterval.String(),
		"order_interval", s.orderInterval.String())

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sweeper stopped")
			return
		case <-holdTicker.C:
			if _, err := s.SweepHoldsOnce(ctx); err != nil {
				s.logger.Error("hold sweep failed", "error", err.Error())
			}
		case <-orderTicker.C:
			if _, err := s.SweepOrdersOnce(ctx); err != nil {
				s.logger.Error("order sweep failed", "error", err.Error())
			}
		}
	}
}

// SweepHoldsOnce releases every claimable expired hold and retires its row.
// Holds snapshotted into a still-pending order are left alone; the order
// deadline owns them now.
func (s *Sweeper) SweepHoldsOnce(ctx context.Context) (int, error) {
	var swept int
	products := make(map[uuid.UUID]struct{})

	err := s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		expired, err := tx.Holds().LockExpired(ctx, s.clock.Now(), sweepBatchSize)
		if err != nil {
			return err
		}
		for _, h := range expired {
			if _, err := tx.Units().ReleaseByHold(ctx, h.ID()); err != nil {
				return err
			}
			if err := tx.Holds().MarkReleased(ctx, h.ID()); err != nil {
				return err
			}
			products[h.ProductID()] = struct{}{}
			swept++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if swept > 0 {
		s.logger.Info("expired holds released", "count", swept)
		if s.stock != nil {
			for productID := range products {
				s.stock.Invalidate(ctx, productID)
			}
		}
	}
	return swept, nil
}

// SweepOrdersOnce cancels pending orders whose payment deadline has passed.
// Cancellation goes through the regular finalizer so the race with a late
// payment confirmation is decided by the order row lock, and the cancelled
// event still goes out.
func (s *Sweeper) SweepOrdersOnce(ctx context.Context) (int, error) {
	var expired []uuid.UUID
	err := s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		expired, err = tx.Orders().LockExpiredPending(ctx, s.clock.Now(), sweepBatchSize)
		return err
	})
	if err != nil {
		return 0, err
	}

	var cancelled int
	for _, orderID := range expired {
		res, err := s.orders.CancelOrder(ctx, orderID)
		if err != nil {
			s.logger.Error("order timeout cancel failed",
				"order_id", orderID.String(),
				"error", err.Error())
			continue
		}
		if res.Applied {
			s.logger.Info("pending order timed out", "order_id", orderID.String())
			cancelled++
		}
	}
	return cancelled, nil
}
