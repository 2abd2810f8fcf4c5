package response

import (
	"time"

	"stockroom/internal/usecase/commands"
	"stockroom/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type CheckoutResponse struct {
	OrderID          uuid.UUID   `json:"orderId"`
	HoldIDs          []uuid.UUID `json:"holdIds"`
	ReserveExpiresAt time.Time   `json:"reserveExpiresAt"`
}

type OrderResponse struct {
	ID               uuid.UUID  `json:"id"`
	CartID           uuid.UUID  `json:"cartId"`
	OwnerID          string     `json:"ownerId"`
	Status           string     `json:"status"`
	ReserveExpiresAt time.Time  `json:"reserveExpiresAt"`
	UnitCount        int        `json:"unitCount"`
	CreatedAt        time.Time  `json:"createdAt"`
	PaidAt           *time.Time `json:"paidAt,omitempty"`
}

type FinalizeResponse struct {
	Applied bool   `json:"applied"`
	Status  string `json:"status"`
}

type SoldUnitResponse struct {
	UnitID    uuid.UUID `json:"unitId"`
	ProductID uuid.UUID `json:"productId"`
	Payload   string    `json:"payload"`
}

func FromCheckoutResult(r *commands.CheckoutResult) *CheckoutResponse {
	return &CheckoutResponse{
		OrderID:          r.OrderID,
		HoldIDs:          r.HoldIDs,
		ReserveExpiresAt: r.ReserveExpiresAt,
	}
}

func FromOrderView(v *queries.OrderView) (*OrderResponse, error) {
	var resp OrderResponse
	if err := copier.Copy(&resp, v); err != nil {
		return nil, err
	}
	return &resp, nil
}

func FromFinalizeResult(r *commands.FinalizeResult) *FinalizeResponse {
	return &FinalizeResponse{
		Applied: r.Applied,
		Status:  string(r.Status),
	}
}

func FromSoldUnitViews(views []*queries.SoldUnitView) ([]*SoldUnitResponse, error) {
	resp := make([]*SoldUnitResponse, 0, len(views))
	if err := copier.Copy(&resp, views); err != nil {
		return nil, err
	}
	return resp, nil
}
