package queries

import (
	"context"

	"stockroom/internal/domain/order"
	"stockroom/internal/infra"
	"stockroom/internal/pkg/errs"

	"github.com/google/uuid"
)

type OrderReadStore interface {
	FindByID(ctx context.Context, orderID uuid.UUID) (*OrderView, error)
}

type OrderQueries interface {
	GetOrderStatus(ctx context.Context, orderID uuid.UUID) (*OrderView, error)
	GetSoldUnitsForOrder(ctx context.Context, orderID uuid.UUID) ([]*SoldUnitView, error)
}

type orderQueriesImpl struct {
	orders    OrderReadStore
	inventory InventoryReadStore
}

func NewOrderQueries(orders OrderReadStore, inventory InventoryReadStore) OrderQueries {
	return &orderQueriesImpl{
		orders:    orders,
		inventory: inventory,
	}
}

func (q *orderQueriesImpl) GetOrderStatus(ctx context.Context, orderID uuid.UUID) (*OrderView, error) {
	view, err := q.orders.FindByID(ctx, orderID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrOrderNotFound)
		}
		return nil, err
	}
	return view, nil
}

// GetSoldUnitsForOrder hands the credential payloads to the delivery
// collaborator. Only paid or fulfilled orders expose payloads; delivery
// happens after payment and MarkFulfilled confirms it landed.
func (q *orderQueriesImpl) GetSoldUnitsForOrder(ctx context.Context, orderID uuid.UUID) ([]*SoldUnitView, error) {
	view, err := q.GetOrderStatus(ctx, orderID)
	if err != nil {
		return nil, err
	}

	switch order.Status(view.Status) {
	case order.StatusPaid, order.StatusFulfilled:
	default:
		return nil, errs.ErrOrderNotDeliverable
	}

	return q.inventory.SoldUnitsForOrder(ctx, orderID)
}
