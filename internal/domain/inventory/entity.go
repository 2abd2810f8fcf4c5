package inventory

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyPayload    = errors.New("unit payload cannot be empty")
	ErrUnitSold        = errors.New("unit is already sold")
	ErrUnitNotHeld     = errors.New("unit is not held")
	ErrUnitUnavailable = errors.New("unit is not available")
)

// Unit is one sellable, serialized inventory item. The payload, typically a
// credential or license key, is immutable once set. A sold unit never
// re-enters the pool.
type Unit struct {
	id        uuid.UUID
	productID uuid.UUID
	state     State
	holdID    *uuid.UUID
	heldSeq   *int64
	payload   string
	createdAt time.Time
}

func NewUnit(productID uuid.UUID, payload string) (*Unit, error) {
	if payload == "" {
		return nil, ErrEmptyPayload
	}
	return &Unit{
		id:        uuid.New(),
		productID: productID,
		state:     StateAvailable,
		payload:   payload,
	}, nil
}

func ReconstructUnit(
	id, productID uuid.UUID,
	state State,
	holdID *uuid.UUID,
	heldSeq *int64,
	payload string,
	createdAt time.Time,
) *Unit {
	return &Unit{
		id:        id,
		productID: productID,
		state:     state,
		holdID:    holdID,
		heldSeq:   heldSeq,
		payload:   payload,
		createdAt: createdAt,
	}
}

// Claim binds the unit to a hold. heldSeq records claim order so a shrink can
// release the most recently claimed units first.
func (u *Unit) Claim(holdID uuid.UUID, seq int64) error {
	if u.state != StateAvailable {
		return ErrUnitUnavailable
	}
	u.state = StateHeld
	u.holdID = &holdID
	u.heldSeq = &seq
	return nil
}

// Release is a no-op for available or sold units: the release side of the
// engine treats stale ids as benign.
func (u *Unit) Release() {
	if u.state != StateHeld {
		return
	}
	u.state = StateAvailable
	u.holdID = nil
	u.heldSeq = nil
}

// MarkSold is terminal. The hold reference is kept so a finalized order can
// still look its units up.
func (u *Unit) MarkSold() error {
	if u.state == StateSold {
		return ErrUnitSold
	}
	if u.state != StateHeld {
		return ErrUnitNotHeld
	}
	u.state = StateSold
	return nil
}

func (u *Unit) IsAvailable() bool { return u.state == StateAvailable }
func (u *Unit) IsHeld() bool      { return u.state == StateHeld }
func (u *Unit) IsSold() bool      { return u.state == StateSold }

func (u *Unit) ID() uuid.UUID        { return u.id }
func (u *Unit) ProductID() uuid.UUID { return u.productID }
func (u *Unit) State() State         { return u.state }
func (u *Unit) HoldID() *uuid.UUID   { return u.holdID }
func (u *Unit) HeldSeq() *int64      { return u.heldSeq }
func (u *Unit) Payload() string      { return u.payload }
func (u *Unit) CreatedAt() time.Time { return u.createdAt }
