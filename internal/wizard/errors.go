package wizard

import "errors"

var (
	ErrUnknownTier       = errors.New("unknown ticket tier")
	ErrOrderTooLarge     = errors.New("order exceeds the maximum amount")
	ErrSeatOutOfRange    = errors.New("seat id out of range")
	ErrSeatOccupied      = errors.New("seat is occupied")
	ErrSelectionFull     = errors.New("all tickets already have a seat")
	ErrNoTickets         = errors.New("select at least one ticket")
	ErrSeatCountMismatch = errors.New("selected seats must match ticket count")
	ErrInvalidStep       = errors.New("action not allowed at this step")
	ErrPaymentPending    = errors.New("a payment is pending")
	ErrBuyerName         = errors.New("buyer name is required")
	ErrBuyerEmail        = errors.New("buyer email is invalid")
)
