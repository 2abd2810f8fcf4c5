package queries

import (
	"context"

	"github.com/google/uuid"
)

type InventoryReadStore interface {
	AvailableCount(ctx context.Context, productID uuid.UUID) (int, error)
	SoldUnitsForOrder(ctx context.Context, orderID uuid.UUID) ([]*SoldUnitView, error)
}

// StockCache is optional; a nil-safe miss falls through to the read store.
type StockCache interface {
	Get(ctx context.Context, productID uuid.UUID) (int, bool)
	Set(ctx context.Context, productID uuid.UUID, count int)
}

type InventoryQueries interface {
	AvailableCount(ctx context.Context, productID uuid.UUID) (int, error)
}

type inventoryQueriesImpl struct {
	store InventoryReadStore
	cache StockCache
}

func NewInventoryQueries(store InventoryReadStore, cache StockCache) InventoryQueries {
	return &inventoryQueriesImpl{
		store: store,
		cache: cache,
	}
}

// AvailableCount serves the catalog stock badge. Readers tolerate eventual
// consistency here, so a short-TTL cached count is acceptable.
func (q *inventoryQueriesImpl) AvailableCount(ctx context.Context, productID uuid.UUID) (int, error) {
	if q.cache != nil {
		if n, ok := q.cache.Get(ctx, productID); ok {
			return n, nil
		}
	}

	n, err := q.store.AvailableCount(ctx, productID)
	if err != nil {
		return 0, err
	}

	if q.cache != nil {
		q.cache.Set(ctx, productID, n)
	}
	return n, nil
}
