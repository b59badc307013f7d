package repository

import (
	"context"
	"time"

	"roomstay/internal/domain"

	"gorm.io/gorm"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

type bookingModel struct {
	ID       int64 `gorm:"column:id;primaryKey"`
	RoomID   int64 `gorm:"column:room_id"`
	SeekerID int64 `gorm:"column:seeker_id"`
	OwnerID  int64 `gorm:"column:owner_id"`

	CheckIn  time.Time `gorm:"column:check_in"`
	CheckOut time.Time `gorm:"column:check_out"`

	Status string `gorm:"column:status"`

	PaymentAmount           int64      `gorm:"column:payment_amount"`
	PaymentStatus           string     `gorm:"column:payment_status"`
	PaymentGatewayPaymentID *string    `gorm:"column:payment_gateway_payment_id"`
	PaymentGatewayOrderID   *string    `gorm:"column:payment_gateway_order_id"`
	PaymentDate             *time.Time `gorm:"column:payment_payment_date"`
	PaymentRefundDate       *time.Time `gorm:"column:payment_refund_date"`

	IdentityFileURL          *string    `gorm:"column:identity_file_url"`
	IdentityNumber           *string    `gorm:"column:identity_number"`
	IdentityVerified         bool       `gorm:"column:identity_verified"`
	IdentityVerificationDate *time.Time `gorm:"column:identity_verification_date"`

	RequestDate        time.Time  `gorm:"column:request_date"`
	ResponseDate       *time.Time `gorm:"column:response_date"`
	Message            *string    `gorm:"column:message"`
	CancellationReason *string    `gorm:"column:cancellation_reason"`

	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (bookingModel) TableName() string { return "bookings" }

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func strOrNil(s string) *string {
	if s == "" {
		return nil
	}
	v := s
	return &v
}

func toDomainBooking(m bookingModel) *domain.Booking {
	return &domain.Booking{
		ID:       m.ID,
		RoomID:   m.RoomID,
		SeekerID: m.SeekerID,
		OwnerID:  m.OwnerID,
		CheckIn:  m.CheckIn,
		CheckOut: m.CheckOut,
		Status:   domain.BookingStatus(m.Status),
		Payment: domain.PaymentView{
			Amount:           m.PaymentAmount,
			Status:           domain.PaymentViewStatus(m.PaymentStatus),
			GatewayPaymentID: strOrEmpty(m.PaymentGatewayPaymentID),
			GatewayOrderID:   strOrEmpty(m.PaymentGatewayOrderID),
			PaymentDate:      m.PaymentDate,
			RefundDate:       m.PaymentRefundDate,
		},
		Identity: domain.IdentityDocument{
			FileURL:          strOrEmpty(m.IdentityFileURL),
			Number:           strOrEmpty(m.IdentityNumber),
			Verified:         m.IdentityVerified,
			VerificationDate: m.IdentityVerificationDate,
		},
		RequestDate:        m.RequestDate,
		ResponseDate:       m.ResponseDate,
		Message:            strOrEmpty(m.Message),
		CancellationReason: strOrEmpty(m.CancellationReason),
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func toBookingModel(b *domain.Booking) bookingModel {
	return bookingModel{
		ID:                       b.ID,
		RoomID:                   b.RoomID,
		SeekerID:                 b.SeekerID,
		OwnerID:                  b.OwnerID,
		CheckIn:                  b.CheckIn,
		CheckOut:                 b.CheckOut,
		Status:                   string(b.Status),
		PaymentAmount:            b.Payment.Amount,
		PaymentStatus:            string(b.Payment.Status),
		PaymentGatewayPaymentID:  strOrNil(b.Payment.GatewayPaymentID),
		PaymentGatewayOrderID:    strOrNil(b.Payment.GatewayOrderID),
		PaymentDate:              b.Payment.PaymentDate,
		PaymentRefundDate:        b.Payment.RefundDate,
		IdentityFileURL:          strOrNil(b.Identity.FileURL),
		IdentityNumber:           strOrNil(b.Identity.Number),
		IdentityVerified:         b.Identity.Verified,
		IdentityVerificationDate: b.Identity.VerificationDate,
		RequestDate:              b.RequestDate,
		ResponseDate:             b.ResponseDate,
		Message:                  strOrNil(b.Message),
		CancellationReason:       strOrNil(b.CancellationReason),
		CreatedAt:                b.CreatedAt,
		UpdatedAt:                b.UpdatedAt,
	}
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	m := toBookingModel(b)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*b = *toDomainBooking(m)
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var m bookingModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainBooking(m), nil
}

func (r *BookingRepository) GetBySeekerID(ctx context.Context, seekerID int64, limit, offset int) ([]domain.Booking, error) {
	return r.list(ctx, "seeker_id = ?", seekerID, limit, offset)
}

func (r *BookingRepository) GetByOwnerID(ctx context.Context, ownerID int64, limit, offset int) ([]domain.Booking, error) {
	return r.list(ctx, "owner_id = ?", ownerID, limit, offset)
}

func (r *BookingRepository) list(ctx context.Context, cond string, id int64, limit, offset int) ([]domain.Booking, error) {
	var rows []bookingModel
	tx := r.db.WithContext(ctx).Where(cond, id).Order("request_date DESC").Limit(limit).Offset(offset).Find(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}
	out := make([]domain.Booking, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainBooking(m))
	}
	return out, nil
}

// UpdateStatusIf advances the booking status only when the current status is
// one of from. Returns whether the row changed.
func (r *BookingRepository) UpdateStatusIf(ctx context.Context, bookingID int64, from []domain.BookingStatus, to domain.BookingStatus, message string) (bool, error) {
	current := make([]string, 0, len(from))
	for _, s := range from {
		current = append(current, string(s))
	}
	now := time.Now().UTC()
	updates := map[string]interface{}{
		"status":        to,
		"response_date": now,
	}
	if message != "" {
		updates["message"] = message
	}
	if to == domain.BookingCancelled {
		updates["cancellation_reason"] = message
	}
	res := r.db.WithContext(ctx).Model(&domain.Booking{}).
		Where("id = ? AND status IN ?", bookingID, current).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// SyncPaymentCaptured mirrors a completed Payment row onto the booking's
// cached payment view and advances pending bookings to paid. Both writes are
// conditional: a replayed capture never re-fires the status advance, and a
// view that already reached refunded stays refunded.
func (r *BookingRepository) SyncPaymentCaptured(ctx context.Context, bookingID int64, gatewayPaymentID string, paidAt time.Time) error {
	err := r.db.WithContext(ctx).Model(&domain.Booking{}).
		Where("id = ? AND payment_status <> ?", bookingID, domain.PaymentViewRefunded).
		Updates(map[string]interface{}{
			"payment_status":             domain.PaymentViewCompleted,
			"payment_gateway_payment_id": gatewayPaymentID,
			"payment_payment_date":       paidAt,
		}).Error
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(&domain.Booking{}).
		Where("id = ? AND status = ?", bookingID, domain.BookingPending).
		Update("status", domain.BookingPaid).Error
}

// SyncPaymentFailed mirrors a failed payment without touching a view that
// already reached completed or refunded.
func (r *BookingRepository) SyncPaymentFailed(ctx context.Context, bookingID int64) error {
	return r.db.WithContext(ctx).Model(&domain.Booking{}).
		Where("id = ? AND payment_status NOT IN ?", bookingID, []string{string(domain.PaymentViewCompleted), string(domain.PaymentViewRefunded)}).
		Update("payment_status", domain.PaymentViewFailed).Error
}

// SyncPaymentRefunded mirrors a refund and cancels the booking.
func (r *BookingRepository) SyncPaymentRefunded(ctx context.Context, bookingID int64, refundedAt time.Time, reason string) error {
	updates := map[string]interface{}{
		"payment_status":      domain.PaymentViewRefunded,
		"payment_refund_date": refundedAt,
		"status":              domain.BookingCancelled,
	}
	if reason != "" {
		updates["cancellation_reason"] = reason
	}
	return r.db.WithContext(ctx).Model(&domain.Booking{}).
		Where("id = ?", bookingID).
		Updates(updates).Error
}

// SetOrder records the gateway order id on the cached payment view.
func (r *BookingRepository) SetOrder(ctx context.Context, bookingID int64, gatewayOrderID string) error {
	return r.db.WithContext(ctx).Model(&domain.Booking{}).
		Where("id = ?", bookingID).
		Updates(map[string]interface{}{
			"payment_gateway_order_id": gatewayOrderID,
			"payment_status":           domain.PaymentViewPending,
		}).Error
}

func (r *BookingRepository) SetIdentityDocument(ctx context.Context, bookingID int64, fileURL, maskedNumber string) error {
	return r.db.WithContext(ctx).Model(&domain.Booking{}).
		Where("id = ?", bookingID).
		Updates(map[string]interface{}{
			"identity_file_url":          fileURL,
			"identity_number":            maskedNumber,
			"identity_verified":          false,
			"identity_verification_date": nil,
		}).Error
}

func (r *BookingRepository) SetIdentityVerified(ctx context.Context, bookingID int64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.Booking{}).
		Where("id = ?", bookingID).
		Updates(map[string]interface{}{
			"identity_verified":          true,
			"identity_verification_date": at,
		}).Error
}

// HasActiveOverlap reports whether the room already has a non-cancelled
// booking intersecting the requested period.
func (r *BookingRepository) HasActiveOverlap(ctx context.Context, roomID int64, checkIn, checkOut time.Time) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&domain.Booking{}).
		Where("room_id = ? AND status NOT IN ? AND check_in < ? AND check_out > ?",
			roomID, []string{string(domain.BookingCancelled)}, checkOut, checkIn).
		Count(&cnt).Error
	if err != nil {
		return false, err
	}
	return cnt > 0, nil
}
