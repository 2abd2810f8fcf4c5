package repository

import (
	"stockroom/internal/infra"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func scanUUIDs(rows pgx.Rows) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, infra.WrapRepoErr("failed to scan id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read ids", err)
	}
	return ids, nil
}
