package request

import (
	"github.com/google/uuid"
)

type ReserveLineRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

type ChangeQuantityRequest struct {
	// Quantity is the target line size, not a delta. Zero drops the line.
	Quantity *int `json:"quantity" binding:"required,min=0"`
}
