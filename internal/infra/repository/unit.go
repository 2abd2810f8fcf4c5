package repository

import (
	"context"

	"stockroom/internal/infra"
	"stockroom/internal/usecase/shared"

	"github.com/google/uuid"
)

type UnitRepository struct {
	db DBTX
}

func NewUnitRepository(db DBTX) *UnitRepository {
	return &UnitRepository{db: db}
}

func (r *UnitRepository) CountAvailable(ctx context.Context, productID uuid.UUID) (int, error) {
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

// ClaimOldest is the claim-or-fail step of the reservation engine. The
// selection locks candidate rows with SKIP LOCKED so two concurrent reserves
// for the same product never pick the same unit, and the state predicate in
// the UPDATE makes the claim a per-row CAS.
func (r *UnitRepository) ClaimOldest(ctx context.Context, productID, holdID uuid.UUID, qty int) ([]shared.ClaimedUnit, error) {
	rows, err := r.db.Query(ctx, `
		WITH picked AS (
			SELECT id FROM inventory_units
			WHERE product_id = $1 AND state = 'available'
			ORDER BY created_at, id
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		UPDATE inventory_units u
		SET state = 'held',
		    hold_id = $3,
		    held_seq = nextval('inventory_claim_seq')
		FROM picked
		WHERE u.id = picked.id AND u.state = 'available'
		RETURNING u.id, u.held_seq`,
		productID, qty, holdID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to claim units", err)
	}
	defer rows.Close()

	var claimed []shared.ClaimedUnit
	for rows.Next() {
		var c shared.ClaimedUnit
		if err := rows.Scan(&c.ID, &c.Seq); err != nil {
			return nil, infra.WrapRepoErr("failed to scan claimed unit", err)
		}
		claimed = append(claimed, c)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read claimed units", err)
	}
	return claimed, nil
}

// ReleaseNewest implements the shrink policy: the most recently claimed units
// go back to the pool first, keeping the buyer's earliest picks stable.
func (r *UnitRepository) ReleaseNewest(ctx context.Context, holdID uuid.UUID, n int) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `
		WITH newest AS (
			SELECT id FROM inventory_units
			WHERE hold_id = $1 AND state = 'held'
			ORDER BY held_seq DESC
			LIMIT $2
			FOR UPDATE
		)
		UPDATE inventory_units u
		SET state = 'available', hold_id = NULL, held_seq = NULL
		FROM newest
		WHERE u.id = newest.id
		RETURNING u.id`,
		holdID, n)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to release newest units", err)
	}
	defer rows.Close()
	return scanUUIDs(rows)
}

func (r *UnitRepository) ReleaseByHold(ctx context.Context, holdID uuid.UUID) (int, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE inventory_units
		SET state = 'available', hold_id = NULL, held_seq = NULL
		WHERE hold_id = $1 AND state = 'held'`,
		holdID)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to release held units", err)
	}
	return int(tag.RowsAffected()), nil
}

// ReleaseByIDs only touches held units, so releasing an already-available or
// sold unit silently does nothing. Units whose hold is snapshotted into a
// pending order are skipped; they belong to the order until it settles.
func (r *UnitRepository) ReleaseByIDs(ctx context.Context, unitIDs []uuid.UUID) ([]shared.ReleasedUnit, error) {
	if len(unitIDs) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, `
		WITH target AS (
			SELECT u.id, u.hold_id FROM inventory_units u
			WHERE u.id = ANY($1) AND u.state = 'held'
			  AND NOT EXISTS (
				SELECT 1 FROM order_holds oh
				JOIN orders o ON o.id = oh.order_id
				WHERE oh.hold_id = u.hold_id AND o.status = 'pending_payment'
			  )
			FOR UPDATE OF u
		)
		UPDATE inventory_units u
		SET state = 'available', hold_id = NULL, held_seq = NULL
		FROM target
		WHERE u.id = target.id
		RETURNING u.id, target.hold_id`,
		unitIDs)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to release units by id", err)
	}
	defer rows.Close()

	var released []shared.ReleasedUnit
	for rows.Next() {
		var ru shared.ReleasedUnit
		var holdID *uuid.UUID
		if err := rows.Scan(&ru.ID, &holdID); err != nil {
			return nil, infra.WrapRepoErr("failed to scan released unit", err)
		}
		if holdID != nil {
			ru.HoldID = *holdID
		}
		released = append(released, ru)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read released units", err)
	}
	return released, nil
}

func (r *UnitRepository) MarkSoldByHold(ctx context.Context, holdID uuid.UUID) (int, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE inventory_units
		SET state = 'sold'
		WHERE hold_id = $1 AND state = 'held'`,
		holdID)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to mark units sold", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *UnitRepository) CountByHold(ctx context.Context, holdID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM inventory_units
		WHERE hold_id = $1 AND state = 'held'`,
		holdID).Scan(&n)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to count held units", err)
	}
	return n, nil
}

func (r *UnitRepository) InsertBatch(ctx context.Context, productID uuid.UUID, payloads []string) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `
		INSERT INTO inventory_units (product_id, payload)
		SELECT $1, unnest($2::text[])
		RETURNING id`,
		productID, payloads)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to insert units", err)
	}
	defer rows.Close()
	return scanUUIDs(rows)
}
