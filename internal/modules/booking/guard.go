package booking

import "roomstay/internal/domain"

// CanTransition is the pure decision function gating booking status changes.
// It takes the authoritative Payment status (not the booking's cached view)
// and the identity gate, and returns nil to allow or one of the module
// sentinels to deny. Authorization is the service's job, not the guard's.
//
// A booking only advances pending -> paid -> confirmed; paid is reached
// exclusively through the capture path, so a manual request for it is
// invalid. cancelled is reachable from any non-terminal state and from
// confirmed (cancellation by mutual agreement); it never transitions out.
func CanTransition(current domain.BookingStatus, payment domain.PaymentStatus, identityVerified bool, requested domain.BookingStatus) error {
	if requested == current {
		return ErrInvalidTransition
	}

	switch requested {
	case domain.BookingCancelled:
		if current == domain.BookingCancelled {
			return ErrInvalidTransition
		}
		return nil
	case domain.BookingConfirmed:
		if current != domain.BookingPending && current != domain.BookingPaid {
			return ErrInvalidTransition
		}
		if payment != domain.PaymentCompleted {
			return ErrPaymentNotCompleted
		}
		if !identityVerified {
			return ErrIdentityNotVerified
		}
		return nil
	default:
		// pending and paid are never valid manual targets.
		return ErrInvalidTransition
	}
}
