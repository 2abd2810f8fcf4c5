package readstore

import (
	"context"

	"stockroom/internal/infra"
	"stockroom/internal/infra/repository"
	"stockroom/internal/usecase/queries"

	"github.com/google/uuid"
)

type CartReadStore struct {
	db repository.DBTX
}

func NewCartReadStore(db repository.DBTX) *CartReadStore {
	return &CartReadStore{db: db}
}

// Lines derives the cart view from the hold ledger: quantity is the count of
// units still bound to the line's active hold.
func (r *CartReadStore) Lines(ctx context.Context, cartID uuid.UUID) ([]*queries.CartLineView, error) {
	rows, err := r.db.Query(ctx, `
		SELECT h.product_id, h.id, h.expires_at, COUNT(u.id)
		FROM holds h
		LEFT JOIN inventory_units u ON u.hold_id = h.id AND u.state = 'held'
		WHERE h.cart_id = $1 AND h.status = 'active'
		GROUP BY h.product_id, h.id, h.expires_at, h.created_at
		ORDER BY h.created_at`,
		cartID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load cart lines", err)
	}
	defer rows.Close()

	var lines []*queries.CartLineView
	for rows.Next() {
		var v queries.CartLineView
		if err := rows.Scan(&v.ProductID, &v.HoldID, &v.ExpiresAt, &v.Quantity); err != nil {
			return nil, infra.WrapRepoErr("failed to scan cart line", err)
		}
		lines = append(lines, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read cart lines", err)
	}
	return lines, nil
}
