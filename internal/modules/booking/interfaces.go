package booking

import (
	"context"
	"time"

	"roomstay/internal/domain"
)

type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetBySeekerID(ctx context.Context, seekerID int64, limit, offset int) ([]domain.Booking, error)
	GetByOwnerID(ctx context.Context, ownerID int64, limit, offset int) ([]domain.Booking, error)
	UpdateStatusIf(ctx context.Context, bookingID int64, from []domain.BookingStatus, to domain.BookingStatus, message string) (bool, error)
	SetIdentityDocument(ctx context.Context, bookingID int64, fileURL, maskedNumber string) error
	SetIdentityVerified(ctx context.Context, bookingID int64, at time.Time) error
	HasActiveOverlap(ctx context.Context, roomID int64, checkIn, checkOut time.Time) (bool, error)
}

// PaymentReader exposes the authoritative Payment record; status decisions
// never rely on the booking's cached payment view.
type PaymentReader interface {
	GetByBookingID(ctx context.Context, bookingID int64) (*domain.Payment, error)
}

type RoomReader interface {
	GetRentByID(ctx context.Context, roomID int64) (rent int64, ownerID int64, err error)
}

type NotificationSender interface {
	NotifyBookingCreated(ctx context.Context, ownerID, bookingID, roomID int64) error
	NotifyBookingConfirmed(ctx context.Context, seekerID, bookingID int64) error
	NotifyBookingCancelled(ctx context.Context, seekerID, bookingID int64, reason string) error
	NotifyIdentityVerified(ctx context.Context, seekerID, bookingID int64) error
}
