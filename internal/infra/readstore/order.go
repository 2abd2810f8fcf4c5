package readstore

import (
	"context"
	"time"

	"stockroom/internal/infra"
	"stockroom/internal/infra/repository"
	"stockroom/internal/usecase/queries"

	"github.com/google/uuid"
)

type OrderReadStore struct {
	db repository.DBTX
}

func NewOrderReadStore(db repository.DBTX) *OrderReadStore {
	return &OrderReadStore{db: db}
}

func (r *OrderReadStore) FindByID(ctx context.Context, orderID uuid.UUID) (*queries.OrderView, error) {
	row := r.db.QueryRow(ctx, `
		SELECT o.id, o.cart_id, o.owner_id, o.status, o.reserve_expires_at, o.created_at, o.paid_at,
		       (SELECT COUNT(*) FROM inventory_units u
		        JOIN order_holds oh ON oh.hold_id = u.hold_id
		        WHERE oh.order_id = o.id AND u.state IN ('held', 'sold'))
		FROM orders o
		WHERE o.id = $1`,
		orderID)

	var (
		v      queries.OrderView
		status string
		paidAt *time.Time
	)
	if err := row.Scan(&v.ID, &v.CartID, &v.OwnerID, &status, &v.ReserveExpiresAt, &v.CreatedAt, &paidAt, &v.UnitCount); err != nil {
		if infra.IsNoRows(err) {
			return nil, infra.WrapRepoErr("order not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find order", err)
	}
	v.Status = status
	v.PaidAt = paidAt
	return &v, nil
}
