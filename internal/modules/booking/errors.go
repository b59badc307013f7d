package booking

import "errors"

var (
	ErrValidation            = errors.New("validation error")
	ErrNotFound              = errors.New("booking not found")
	ErrForbidden             = errors.New("caller may not act on this booking")
	ErrNotAvailable          = errors.New("room is not available for the requested period")
	ErrInvalidTransition     = errors.New("status transition not allowed")
	ErrPaymentNotCompleted   = errors.New("payment is not completed")
	ErrIdentityNotVerified   = errors.New("identity document is not verified")
	ErrInvalidDocumentNumber = errors.New("identity document number failed validation")
	ErrNoDocument            = errors.New("no identity document submitted")
)
