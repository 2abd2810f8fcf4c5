package queries

import (
	"time"

	"github.com/google/uuid"
)

type CartLineView struct {
	ProductID uuid.UUID
	HoldID    uuid.UUID
	Quantity  int
	ExpiresAt time.Time
}

type OrderView struct {
	ID               uuid.UUID
	CartID           uuid.UUID
	OwnerID          string
	Status           string
	ReserveExpiresAt time.Time
	UnitCount        int
	CreatedAt        time.Time
	PaidAt           *time.Time
}

type SoldUnitView struct {
	UnitID    uuid.UUID
	ProductID uuid.UUID
	Payload   string
}
