package repository

import (
	"context"
	"time"

	"stockroom/internal/domain/order"
	"stockroom/internal/infra"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type OrderRepository struct {
	db DBTX
}

func NewOrderRepository(db DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO orders (id, cart_id, owner_id, status, reserve_expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		o.ID(), o.CartID(), o.OwnerID(), o.Status().String(), o.ReserveExpiresAt(), o.CreatedAt())
	if err != nil {
		return infra.WrapRepoErr("failed to create order", err)
	}

	for _, holdID := range o.HoldIDs() {
		if _, err := r.db.Exec(ctx, `
			INSERT INTO order_holds (order_id, hold_id) VALUES ($1, $2)`,
			o.ID(), holdID); err != nil {
			return infra.WrapRepoErr("failed to snapshot order hold", err)
		}
	}
	return nil
}

func (r *OrderRepository) LockByID(ctx context.Context, orderID uuid.UUID) (*order.Order, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, cart_id, owner_id, status, reserve_expires_at, created_at, paid_at
		FROM orders
		WHERE id = $1
		FOR UPDATE`,
		orderID)

	var (
		id, cartID                  uuid.UUID
		ownerID, status             string
		reserveExpiresAt, createdAt time.Time
		paidAt                      *time.Time
	)
	if err := row.Scan(&id, &cartID, &ownerID, &status, &reserveExpiresAt, &createdAt, &paidAt); err != nil {
		if infra.IsNoRows(err) {
			return nil, infra.WrapRepoErr("order not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to lock order", err)
	}

	holdIDs, err := r.holdIDs(ctx, id)
	if err != nil {
		return nil, err
	}

	return order.ReconstructOrder(
		id, cartID, ownerID, holdIDs,
		order.Status(status), reserveExpiresAt, createdAt, paidAt,
	), nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID uuid.UUID, status order.Status, paidAt *time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE orders SET status = $2, paid_at = COALESCE($3, paid_at)
		WHERE id = $1`,
		orderID, status.String(), paidAt)
	if err != nil {
		return infra.WrapRepoErr("failed to update order status", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("order not found", pgx.ErrNoRows, infra.KindNotFound)
	}
	return nil
}

func (r *OrderRepository) LockExpiredPending(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id FROM orders
		WHERE status = 'pending_payment' AND reserve_expires_at <= $1
		ORDER BY reserve_expires_at
		LIMIT $2
		FOR UPDATE SKIP LOCKED`,
		now, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to lock expired orders", err)
	}
	defer rows.Close()
	return scanUUIDs(rows)
}

func (r *OrderRepository) holdIDs(ctx context.Context, orderID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `
		SELECT hold_id FROM order_holds WHERE order_id = $1`,
		orderID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load order holds", err)
	}
	defer rows.Close()
	return scanUUIDs(rows)
}
