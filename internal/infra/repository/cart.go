package repository

import (
	"context"

	"stockroom/internal/infra"

	"github.com/google/uuid"
)

type CartRepository struct {
	db DBTX
}

func NewCartRepository(db DBTX) *CartRepository {
	return &CartRepository{db: db}
}

func (r *CartRepository) Ensure(ctx context.Context, cartID uuid.UUID, ownerID string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO carts (id, owner_id)
		VALUES ($1, NULLIF($2, ''))
		ON CONFLICT (id) DO NOTHING`,
		cartID, ownerID)
	if err != nil {
		return infra.WrapRepoErr("failed to ensure cart", err)
	}
	return nil
}

func (r *CartRepository) OwnerID(ctx context.Context, cartID uuid.UUID) (string, error) {
	var owner *string
	err := r.db.QueryRow(ctx, `SELECT owner_id FROM carts WHERE id = $1`, cartID).Scan(&owner)
	if err != nil {
		if infra.IsNoRows(err) {
			return "", infra.WrapRepoErr("cart not found", err, infra.KindNotFound)
		}
		return "", infra.WrapRepoErr("failed to find cart", err)
	}
	if owner == nil {
		return "", nil
	}
	return *owner, nil
}
