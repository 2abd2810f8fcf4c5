package repository

import (
	"context"
	"time"

	"stockroom/internal/domain/hold"
	"stockroom/internal/infra"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type HoldRepository struct {
	db DBTX
}

func NewHoldRepository(db DBTX) *HoldRepository {
	return &HoldRepository{db: db}
}

func (r *HoldRepository) Create(ctx context.Context, h *hold.Hold) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO holds (id, cart_id, product_id, status, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		h.ID(), h.CartID(), h.ProductID(), h.Status().String(), h.ExpiresAt(), h.CreatedAt())
	if err != nil {
		return infra.WrapRepoErr("failed to create hold", err)
	}
	return nil
}

func (r *HoldRepository) FindActiveLine(ctx context.Context, cartID, productID uuid.UUID) (*hold.Hold, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, cart_id, product_id, status, expires_at, created_at
		FROM holds
		WHERE cart_id = $1 AND product_id = $2 AND status = 'active'
		FOR UPDATE`,
		cartID, productID)

	h, err := scanHold(row)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, infra.WrapRepoErr("active hold not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find active hold", err)
	}
	return h, nil
}

func (r *HoldRepository) FindActiveByCart(ctx context.Context, cartID uuid.UUID) ([]*hold.Hold, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, cart_id, product_id, status, expires_at, created_at
		FROM holds
		WHERE cart_id = $1 AND status = 'active'
		ORDER BY created_at
		FOR UPDATE`,
		cartID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find cart holds", err)
	}
	defer rows.Close()
	return scanHolds(rows)
}

func (r *HoldRepository) InPendingOrder(ctx context.Context, holdID uuid.UUID) (bool, error) {
	var pending bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM order_holds oh
			JOIN orders o ON o.id = oh.order_id
			WHERE oh.hold_id = $1 AND o.status = 'pending_payment')`,
		holdID).Scan(&pending)
	if err != nil {
		return false, infra.WrapRepoErr("failed to check pending order for hold", err)
	}
	return pending, nil
}

func (r *HoldRepository) UpdateExpiry(ctx context.Context, holdID uuid.UUID, expiresAt time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE holds SET expires_at = $2
		WHERE id = $1 AND status = 'active'`,
		holdID, expiresAt)
	if err != nil {
		return infra.WrapRepoErr("failed to update hold expiry", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("active hold not found", pgx.ErrNoRows, infra.KindNotFound)
	}
	return nil
}

func (r *HoldRepository) MarkCommitted(ctx context.Context, holdID uuid.UUID) error {
	return r.setStatus(ctx, holdID, hold.StatusCommitted)
}

func (r *HoldRepository) MarkReleased(ctx context.Context, holdID uuid.UUID) error {
	return r.setStatus(ctx, holdID, hold.StatusReleased)
}

func (r *HoldRepository) setStatus(ctx context.Context, holdID uuid.UUID, status hold.Status) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE holds SET status = $2
		WHERE id = $1 AND status = 'active'`,
		holdID, status.String())
	if err != nil {
		return infra.WrapRepoErr("failed to update hold status", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("active hold not found", pgx.ErrNoRows, infra.KindNotFound)
	}
	return nil
}

// LockExpired re-checks expires_at under the row lock, so a hold refreshed by
// a concurrent Extend in the same instant is not picked up. Holds snapshotted
// into a pending order are excluded: the order deadline supersedes the
// hold's own TTL.
func (r *HoldRepository) LockExpired(ctx context.Context, now time.Time, limit int) ([]*hold.Hold, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, cart_id, product_id, status, expires_at, created_at
		FROM holds h
		WHERE status = 'active'
		  AND expires_at <= $1
		  AND NOT EXISTS (
			SELECT 1 FROM order_holds oh
			JOIN orders o ON o.id = oh.order_id
			WHERE oh.hold_id = h.id AND o.status = 'pending_payment'
		  )
		ORDER BY expires_at
		LIMIT $2
		FOR UPDATE OF h SKIP LOCKED`,
		now, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to lock expired holds", err)
	}
	defer rows.Close()
	return scanHolds(rows)
}

func (r *HoldRepository) LockByOrder(ctx context.Context, orderID uuid.UUID) ([]*hold.Hold, error) {
	rows, err := r.db.Query(ctx, `
		SELECT h.id, h.cart_id, h.product_id, h.status, h.expires_at, h.created_at
		FROM holds h
		JOIN order_holds oh ON oh.hold_id = h.id
		WHERE oh.order_id = $1
		ORDER BY h.created_at
		FOR UPDATE OF h`,
		orderID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to lock order holds", err)
	}
	defer rows.Close()
	return scanHolds(rows)
}

func scanHold(row pgx.Row) (*hold.Hold, error) {
	var (
		id, cartID, productID uuid.UUID
		status                string
		expiresAt, createdAt  time.Time
	)
	if err := row.Scan(&id, &cartID, &productID, &status, &expiresAt, &createdAt); err != nil {
		return nil, err
	}
	return hold.ReconstructHold(id, cartID, productID, hold.Status(status), expiresAt, createdAt), nil
}

func scanHolds(rows pgx.Rows) ([]*hold.Hold, error) {
	var holds []*hold.Hold
	for rows.Next() {
		h, err := scanHold(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan hold", err)
		}
		holds = append(holds, h)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read holds", err)
	}
	return holds, nil
}
