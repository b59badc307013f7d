package refund

import "errors"

var (
	ErrNotFound             = errors.New("booking or payment not found")
	ErrForbidden            = errors.New("caller may not refund this booking")
	ErrPaymentNotCompleted  = errors.New("payment is not completed")
	ErrAlreadyRefunded      = errors.New("payment already refunded")
	ErrAmountExceedsPayment = errors.New("refund amount exceeds captured amount")
	ErrWindowExpired        = errors.New("refund window has expired")
	ErrRefundFailed         = errors.New("gateway refund failed")
)
