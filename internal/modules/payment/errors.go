package payment

import "errors"

var (
	ErrInvalidSignature = errors.New("invalid signature")
	ErrMalformedEvent   = errors.New("malformed event")
	ErrProvider         = errors.New("payment provider error")
)
