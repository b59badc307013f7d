package repository

import (
	"context"
	"errors"
	"time"

	"roomstay/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrOutstandingPayment maps the one-open-payment-per-booking constraint: a
// second order cannot be created while a created/pending payment exists.
var ErrOutstandingPayment = errors.New("booking already has an outstanding payment")

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create inserts a payment in created state. The partial unique index
// idx_one_open_payment (booking_id WHERE status IN ('created','pending'))
// backs the pre-check under concurrent order requests.
func (r *PaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	var open int64
	err := r.db.WithContext(ctx).Model(&domain.Payment{}).
		Where("booking_id = ? AND status IN ?", p.BookingID, []string{string(domain.PaymentCreated), string(domain.PaymentPending)}).
		Count(&open).Error
	if err != nil {
		return err
	}
	if open > 0 {
		return ErrOutstandingPayment
	}

	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "idx_one_open_payment" {
			return ErrOutstandingPayment
		}
		return err
	}
	return nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	var p domain.Payment
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) GetByGatewayOrderID(ctx context.Context, orderID string) (*domain.Payment, error) {
	var p domain.Payment
	if err := r.db.WithContext(ctx).Where("gateway_order_id = ?", orderID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) GetByBookingID(ctx context.Context, bookingID int64) (*domain.Payment, error) {
	var p domain.Payment
	if err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).Order("id DESC").First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// MarkCompletedIf applies the capture transition as a single conditional
// write: status moves to completed only if it is not already completed or
// refunded. Returns whether this call changed the row, so the caller fires
// side effects exactly once even when the client verify path and the webhook
// race each other.
func (r *PaymentRepository) MarkCompletedIf(ctx context.Context, orderID, paymentID, method, rawBody string, capturedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Payment{}).
		Where("gateway_order_id = ? AND status NOT IN ?", orderID, []string{string(domain.PaymentCompleted), string(domain.PaymentRefunded)}).
		Updates(map[string]interface{}{
			"status":             domain.PaymentCompleted,
			"gateway_payment_id": paymentID,
			"payment_method":     method,
			"transaction_date":   capturedAt,
			"capture_raw_body":   rawBody,
			"failure_code":       "",
			"failure_reason":     "",
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}
	// No row changed: either already terminal (idempotent no-op) or unknown order.
	var existing int64
	if err := r.db.WithContext(ctx).Model(&domain.Payment{}).Where("gateway_order_id = ?", orderID).Count(&existing).Error; err != nil {
		return false, err
	}
	if existing == 0 {
		return false, gorm.ErrRecordNotFound
	}
	return false, nil
}

// MarkFailedIf records a failure unless the payment already reached a
// terminal completed/refunded state; a late failed event never regresses a
// captured payment.
func (r *PaymentRepository) MarkFailedIf(ctx context.Context, orderID, code, reason string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Payment{}).
		Where("gateway_order_id = ? AND status NOT IN ?", orderID, []string{string(domain.PaymentCompleted), string(domain.PaymentRefunded)}).
		Updates(map[string]interface{}{
			"status":         domain.PaymentFailed,
			"failure_code":   code,
			"failure_reason": reason,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// MarkRefundedIf moves a payment to refunded only from completed.
func (r *PaymentRepository) MarkRefundedIf(ctx context.Context, paymentRowID int64, refundID string, refundAmount int64, refundedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Payment{}).
		Where("id = ? AND status = ?", paymentRowID, domain.PaymentCompleted).
		Updates(map[string]interface{}{
			"status":        domain.PaymentRefunded,
			"refund_id":     refundID,
			"refund_amount": refundAmount,
			"refund_date":   refundedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
