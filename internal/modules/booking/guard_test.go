package booking

import (
	"testing"

	"roomstay/internal/domain"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		name     string
		current  domain.BookingStatus
		payment  domain.PaymentStatus
		verified bool
		to       domain.BookingStatus
		want     error
	}{
		{"pending cancel", domain.BookingPending, domain.PaymentCreated, false, domain.BookingCancelled, nil},
		{"paid cancel", domain.BookingPaid, domain.PaymentCompleted, true, domain.BookingCancelled, nil},
		{"confirmed cancel", domain.BookingConfirmed, domain.PaymentCompleted, true, domain.BookingCancelled, nil},
		{"cancelled cancel", domain.BookingCancelled, domain.PaymentCompleted, true, domain.BookingCancelled, ErrInvalidTransition},

		{"paid confirm ok", domain.BookingPaid, domain.PaymentCompleted, true, domain.BookingConfirmed, nil},
		{"pending confirm ok", domain.BookingPending, domain.PaymentCompleted, true, domain.BookingConfirmed, nil},
		{"confirm without payment", domain.BookingPaid, domain.PaymentPending, true, domain.BookingConfirmed, ErrPaymentNotCompleted},
		{"confirm refunded payment", domain.BookingPaid, domain.PaymentRefunded, true, domain.BookingConfirmed, ErrPaymentNotCompleted},
		{"confirm without identity", domain.BookingPaid, domain.PaymentCompleted, false, domain.BookingConfirmed, ErrIdentityNotVerified},
		{"confirm cancelled booking", domain.BookingCancelled, domain.PaymentCompleted, true, domain.BookingConfirmed, ErrInvalidTransition},
		{"confirm confirmed booking", domain.BookingConfirmed, domain.PaymentCompleted, true, domain.BookingConfirmed, ErrInvalidTransition},

		{"into pending", domain.BookingPaid, domain.PaymentCompleted, true, domain.BookingPending, ErrInvalidTransition},
		{"manual paid", domain.BookingPending, domain.PaymentCompleted, true, domain.BookingPaid, ErrInvalidTransition},
		{"self transition", domain.BookingPending, domain.PaymentCreated, false, domain.BookingPending, ErrInvalidTransition},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CanTransition(tc.current, tc.payment, tc.verified, tc.to)
			if got != tc.want {
				t.Fatalf("CanTransition(%s, %s, %t, %s) = %v, want %v",
					tc.current, tc.payment, tc.verified, tc.to, got, tc.want)
			}
		})
	}
}

func TestCanTransitionIdentityGateIsIndependent(t *testing.T) {
	// Both gates must hold; neither substitutes for the other.
	if err := CanTransition(domain.BookingPaid, domain.PaymentCompleted, false, domain.BookingConfirmed); err != ErrIdentityNotVerified {
		t.Fatalf("payment alone must not unlock confirm: %v", err)
	}
	if err := CanTransition(domain.BookingPaid, domain.PaymentFailed, true, domain.BookingConfirmed); err != ErrPaymentNotCompleted {
		t.Fatalf("identity alone must not unlock confirm: %v", err)
	}
}
