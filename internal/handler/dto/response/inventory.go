package response

import (
	"github.com/google/uuid"

	"stockroom/internal/usecase/commands"
)

type AvailableCountResponse struct {
	ProductID uuid.UUID `json:"productId"`
	Available int       `json:"available"`
}

type ImportUnitsResponse struct {
	UnitIDs []uuid.UUID `json:"unitIds"`
}

func FromImportResult(r *commands.ImportResult) *ImportUnitsResponse {
	return &ImportUnitsResponse{UnitIDs: r.UnitIDs}
}
