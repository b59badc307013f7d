package payment

import "errors"

var (
	ErrInvalidSignature = errors.New("invalid signature")
	ErrAmountMismatch   = errors.New("amount mismatch")
	ErrForbidden        = errors.New("payment does not belong to caller")
	ErrNotFound         = errors.New("payment not found")
	ErrOrderOutstanding = errors.New("booking already has an outstanding order")
	ErrNotPayable       = errors.New("booking is not awaiting payment")
)
