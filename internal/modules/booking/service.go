package booking

import (
	"context"
	"errors"
	"time"

	"roomstay/internal/domain"
	"roomstay/internal/pkg/identity"

	"gorm.io/gorm"
)

type Service struct {
	bookings BookingRepository
	payments PaymentReader
	rooms    RoomReader
	notifs   NotificationSender
	loggerf  func(format string, args ...interface{})
}

func NewService(bookings BookingRepository, payments PaymentReader, rooms RoomReader, notifs NotificationSender, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{
		bookings: bookings,
		payments: payments,
		rooms:    rooms,
		notifs:   notifs,
		loggerf:  loggerf,
	}
}

func (s *Service) CreateBooking(ctx context.Context, seekerID int64, req CreateBookingRequest) (*domain.Booking, error) {
	if !req.CheckOut.After(req.CheckIn) {
		return nil, ErrValidation
	}
	if req.CheckIn.Before(time.Now().Truncate(24 * time.Hour)) {
		return nil, ErrValidation
	}

	taken, err := s.bookings.HasActiveOverlap(ctx, req.RoomID, req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrNotAvailable
	}

	rent, ownerID, err := s.rooms.GetRentByID(ctx, req.RoomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if seekerID == ownerID {
		return nil, ErrForbidden
	}

	b := &domain.Booking{
		RoomID:   req.RoomID,
		SeekerID: seekerID,
		OwnerID:  ownerID,
		CheckIn:  req.CheckIn,
		CheckOut: req.CheckOut,
		Status:   domain.BookingPending,
		Payment: domain.PaymentView{
			Amount: rent,
			Status: domain.PaymentViewPending,
		},
		RequestDate: time.Now().UTC(),
		Message:     req.Message,
	}
	if err := s.bookings.Create(ctx, b); err != nil {
		return nil, err
	}

	if s.notifs != nil {
		_ = s.notifs.NotifyBookingCreated(ctx, ownerID, b.ID, b.RoomID)
	}
	return b, nil
}

// UpdateStatus is the manual confirm/cancel entry point. The booking and the
// authoritative Payment are re-fetched here; caller-supplied state is never
// trusted. The write is conditional on the status the guard evaluated, so a
// concurrent transition makes this call fail rather than double-apply.
func (s *Service) UpdateStatus(ctx context.Context, actorID int64, actorRole string, bookingID int64, req UpdateStatusRequest) (*domain.Booking, error) {
	requested := domain.BookingStatus(req.Status)
	if requested != domain.BookingConfirmed && requested != domain.BookingCancelled {
		return nil, ErrValidation
	}

	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := s.authorizeStatusChange(b, actorID, actorRole, requested); err != nil {
		return nil, err
	}

	paymentStatus := domain.PaymentCreated
	if p, perr := s.payments.GetByBookingID(ctx, bookingID); perr == nil {
		paymentStatus = p.Status
	} else if !errors.Is(perr, gorm.ErrRecordNotFound) {
		return nil, perr
	}

	if err := CanTransition(b.Status, paymentStatus, b.Identity.Verified, requested); err != nil {
		return nil, err
	}

	changed, err := s.bookings.UpdateStatusIf(ctx, bookingID, []domain.BookingStatus{b.Status}, requested, req.Message)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, ErrInvalidTransition
	}

	s.loggerf("level=info msg=booking status updated booking_id=%d from=%s to=%s actor_id=%d", bookingID, b.Status, requested, actorID)
	if s.notifs != nil {
		switch requested {
		case domain.BookingConfirmed:
			_ = s.notifs.NotifyBookingConfirmed(ctx, b.SeekerID, b.ID)
		case domain.BookingCancelled:
			_ = s.notifs.NotifyBookingCancelled(ctx, b.SeekerID, b.ID, req.Message)
		}
	}

	return s.bookings.GetByID(ctx, bookingID)
}

// authorizeStatusChange: the owner confirms or cancels; the seeker may cancel
// their own booking while it is still pending.
func (s *Service) authorizeStatusChange(b *domain.Booking, actorID int64, actorRole string, requested domain.BookingStatus) error {
	if b.OwnerID == actorID && actorRole == string(domain.RoleOwner) {
		return nil
	}
	if b.SeekerID == actorID && requested == domain.BookingCancelled && b.Status == domain.BookingPending {
		return nil
	}
	return ErrForbidden
}

func (s *Service) SubmitIdentityDocument(ctx context.Context, seekerID, bookingID int64, req SubmitIdentityRequest) error {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if b.SeekerID != seekerID {
		return ErrForbidden
	}
	if !identity.Valid(req.DocumentNumber) {
		return ErrInvalidDocumentNumber
	}
	return s.bookings.SetIdentityDocument(ctx, bookingID, req.FileURL, identity.Mask(req.DocumentNumber))
}

func (s *Service) VerifyIdentityDocument(ctx context.Context, ownerID, bookingID int64) error {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if b.OwnerID != ownerID {
		return ErrForbidden
	}
	if b.Identity.FileURL == "" {
		return ErrNoDocument
	}
	if err := s.bookings.SetIdentityVerified(ctx, bookingID, time.Now().UTC()); err != nil {
		return err
	}
	if s.notifs != nil {
		_ = s.notifs.NotifyIdentityVerified(ctx, b.SeekerID, b.ID)
	}
	return nil
}

func (s *Service) GetMyBookings(ctx context.Context, seekerID int64, limit, offset int) ([]domain.Booking, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.bookings.GetBySeekerID(ctx, seekerID, limit, offset)
}

func (s *Service) GetOwnerBookings(ctx context.Context, ownerID int64, limit, offset int) ([]domain.Booking, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.bookings.GetByOwnerID(ctx, ownerID, limit, offset)
}
