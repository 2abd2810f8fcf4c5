package response

import (
	"time"

	"stockroom/internal/usecase/commands"
	"stockroom/internal/usecase/queries"

	"github.com/google/uuid"
)

type ReserveResponse struct {
	HoldID    uuid.UUID   `json:"holdId"`
	UnitIDs   []uuid.UUID `json:"unitIds"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

type CartLineResponse struct {
	ProductID uuid.UUID `json:"productId"`
	HoldID    uuid.UUID `json:"holdId"`
	Quantity  int       `json:"quantity"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type ExtendResponse struct {
	ExpiresAt time.Time `json:"expiresAt"`
}

func FromReserveResult(r *commands.ReserveResult) *ReserveResponse {
	return &ReserveResponse{
		HoldID:    r.HoldID,
		UnitIDs:   r.UnitIDs,
		ExpiresAt: r.ExpiresAt,
	}
}

func FromCartLineView(v *queries.CartLineView) *CartLineResponse {
	return &CartLineResponse{
		ProductID: v.ProductID,
		HoldID:    v.HoldID,
		Quantity:  v.Quantity,
		ExpiresAt: v.ExpiresAt,
	}
}
