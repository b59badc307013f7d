package refund

import (
	"context"
	"errors"
	"fmt"
	"time"

	"roomstay/internal/domain"
	"roomstay/internal/gateway"

	"gorm.io/gorm"
)

type Service struct {
	payments paymentStore
	bookings bookingStore
	gw       gateway.Gateway
	notifs   Notifier
	window   time.Duration
	loggerf  func(format string, args ...interface{})
}

func NewService(payments paymentStore, bookings bookingStore, gw gateway.Gateway, notifs Notifier, window time.Duration, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{
		payments: payments,
		bookings: bookings,
		gw:       gw,
		notifs:   notifs,
		window:   window,
		loggerf:  loggerf,
	}
}

// Refund re-validates eligibility against freshly loaded records, calls the
// gateway, and only then mutates local state. A gateway failure leaves both
// records untouched so the caller can retry.
func (s *Service) Refund(ctx context.Context, actorID int64, req RefundRequest) (*RefundResponse, error) {
	b, err := s.bookings.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if actorID != b.SeekerID && actorID != b.OwnerID {
		return nil, ErrForbidden
	}

	p, err := s.payments.GetByBookingID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	switch p.Status {
	case domain.PaymentRefunded:
		return nil, ErrAlreadyRefunded
	case domain.PaymentCompleted:
		// eligible
	default:
		return nil, ErrPaymentNotCompleted
	}
	if p.TransactionDate == nil {
		return nil, ErrPaymentNotCompleted
	}
	if time.Since(*p.TransactionDate) > s.window {
		return nil, ErrWindowExpired
	}

	amount := req.Amount
	if amount == 0 {
		amount = p.Amount
	}
	if amount < 0 || amount > p.Amount {
		return nil, ErrAmountExceedsPayment
	}

	gwAmount := amount
	if amount == p.Amount {
		gwAmount = 0 // full refund, let the gateway default
	}
	r, err := s.gw.CreateRefund(ctx, p.GatewayPaymentID, gwAmount)
	if err != nil {
		s.loggerf("level=error msg=gateway refund failed booking_id=%d payment_id=%s err=%v", b.ID, p.GatewayPaymentID, err)
		return nil, fmt.Errorf("%w: %v", ErrRefundFailed, err)
	}

	refundedAt := time.Now().UTC()
	changed, err := s.payments.MarkRefundedIf(ctx, p.ID, r.ID, amount, refundedAt)
	if err != nil {
		return nil, err
	}
	if !changed {
		// A concurrent refund won the conditional write.
		return nil, ErrAlreadyRefunded
	}

	if err := s.bookings.SyncPaymentRefunded(ctx, b.ID, refundedAt, req.Reason); err != nil {
		s.loggerf("level=error msg=failed to mirror refund onto booking booking_id=%d err=%v", b.ID, err)
	}

	s.loggerf("level=info msg=refund issued booking_id=%d refund_id=%s amount=%d", b.ID, r.ID, amount)
	if s.notifs != nil {
		_ = s.notifs.NotifyRefundIssued(ctx, b.SeekerID, b.OwnerID, b.ID, amount)
	}
	return &RefundResponse{RefundID: r.ID, RefundAmount: amount}, nil
}
