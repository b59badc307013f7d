package refund

import (
	"context"
	"time"

	"roomstay/internal/domain"
)

type paymentStore interface {
	GetByBookingID(ctx context.Context, bookingID int64) (*domain.Payment, error)
	MarkRefundedIf(ctx context.Context, paymentRowID int64, refundID string, refundAmount int64, refundedAt time.Time) (bool, error)
}

type bookingStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	SyncPaymentRefunded(ctx context.Context, bookingID int64, refundedAt time.Time, reason string) error
}

type Notifier interface {
	NotifyRefundIssued(ctx context.Context, seekerID, ownerID, bookingID, amount int64) error
}
