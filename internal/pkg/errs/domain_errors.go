package errs

import "errors"

// Domain-specific sentinel errors for the usecase layers
var (
	// Reservation errors
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrInvalidQuantity       = errors.New("quantity must be positive")
	ErrHoldNotFound          = errors.New("hold not found")
	ErrUnitNotFound          = errors.New("inventory unit not found")

	// Cart errors
	ErrCartNotFound       = errors.New("cart not found")
	ErrCartEmpty          = errors.New("cart has no active holds")
	ErrCartForbidden      = errors.New("cart belongs to another owner")
	ErrProductNotHeld     = errors.New("no active hold for product in cart")
	ErrLineInPendingOrder = errors.New("cart line is snapshotted into a pending order")

	// Order errors
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderStateConflict  = errors.New("order is not pending payment")
	ErrOrderNotDeliverable = errors.New("order units are not available for delivery")

	// Operation errors
	ErrDatabaseOperationFailed = errors.New("database operation failed")
)
