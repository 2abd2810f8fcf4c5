package readstore

import (
	"context"

	"stockroom/internal/infra"
	"stockroom/internal/infra/repository"
	"stockroom/internal/usecase/queries"

	"github.com/google/uuid"
)

type InventoryReadStore struct {
	db repository.DBTX
}

func NewInventoryReadStore(db repository.DBTX) *InventoryReadStore {
	return &InventoryReadStore{db: db}
}

// AvailableCount is the derived stock badge: a non-transactional count over
// the units table, never a separately maintained counter.
func (r *InventoryReadStore) AvailableCount(ctx context.Context, productID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM inventory_units
		WHERE product_id = $1 AND state = 'available'`,
		productID).Scan(&n)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to count available units", err)
	}
	return n, nil
}

func (r *InventoryReadStore) SoldUnitsForOrder(ctx context.Context, orderID uuid.UUID) ([]*queries.SoldUnitView, error) {
	rows, err := r.db.Query(ctx, `
		SELECT u.id, u.product_id, u.payload
		FROM inventory_units u
		JOIN order_holds oh ON oh.hold_id = u.hold_id
		WHERE oh.order_id = $1 AND u.state = 'sold'
		ORDER BY u.held_seq`,
		orderID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load sold units", err)
	}
	defer rows.Close()

	var units []*queries.SoldUnitView
	for rows.Next() {
		var v queries.SoldUnitView
		if err := rows.Scan(&v.UnitID, &v.ProductID, &v.Payload); err != nil {
			return nil, infra.WrapRepoErr("failed to scan sold unit", err)
		}
		units = append(units, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read sold units", err)
	}
	return units, nil
}
