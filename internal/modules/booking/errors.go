package booking

import "errors"

var (
	ErrValidation      = errors.New("validation error")
	ErrUnknownAddon    = errors.New("unknown addon")
	ErrNotFound        = errors.New("booking not found")
	ErrInvalidState    = errors.New("booking is not in a valid state for this action")
	ErrPaymentProvider = errors.New("payment session creation failed")
	ErrPersistence     = errors.New("storage failure")
)
