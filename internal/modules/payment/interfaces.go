package payment

import (
	"context"
	"time"

	"roomstay/internal/domain"
)

type paymentRepo interface {
	Create(ctx context.Context, p *domain.Payment) error
	GetByGatewayOrderID(ctx context.Context, orderID string) (*domain.Payment, error)
	MarkCompletedIf(ctx context.Context, orderID, paymentID, method, rawBody string, capturedAt time.Time) (bool, error)
	MarkFailedIf(ctx context.Context, orderID, code, reason string) (bool, error)
}

type bookingStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	SetOrder(ctx context.Context, bookingID int64, gatewayOrderID string) error
	SyncPaymentCaptured(ctx context.Context, bookingID int64, gatewayPaymentID string, paidAt time.Time) error
	SyncPaymentFailed(ctx context.Context, bookingID int64) error
}

// Notifier failures are logged by callers and never propagated.
type Notifier interface {
	NotifyPaymentCompleted(ctx context.Context, ownerID, bookingID, amount int64) error
}
