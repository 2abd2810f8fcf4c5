package queries

import (
	"context"

	"github.com/google/uuid"
)

type CartReadStore interface {
	Lines(ctx context.Context, cartID uuid.UUID) ([]*CartLineView, error)
}

type CartQueries interface {
	Lines(ctx context.Context, cartID uuid.UUID) ([]*CartLineView, error)
}

type cartQueriesImpl struct {
	store CartReadStore
}

func NewCartQueries(store CartReadStore) CartQueries {
	return &cartQueriesImpl{store: store}
}

func (q *cartQueriesImpl) Lines(ctx context.Context, cartID uuid.UUID) ([]*CartLineView, error) {
	return q.store.Lines(ctx, cartID)
}
