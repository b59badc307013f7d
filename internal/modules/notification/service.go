package notification

import (
	"context"
	"fmt"
)

type Service struct {
	repo    *Repository
	hub     *Hub
	loggerf func(format string, args ...interface{})
}

// NewService wires persistence with the optional websocket hub. A nil hub
// disables live push without affecting stored notifications.
func NewService(repo *Repository, hub *Hub, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{repo: repo, hub: hub, loggerf: loggerf}
}

func (s *Service) create(ctx context.Context, userID int64, t Type, title, message string, data map[string]any) error {
	n := &Notification{
		UserID:  userID,
		Type:    t,
		Title:   title,
		Message: message,
	}
	if err := s.repo.Create(ctx, n, data); err != nil {
		s.loggerf("level=error msg=failed to store notification user_id=%d type=%s err=%v", userID, t, err)
		return err
	}
	if s.hub != nil {
		s.hub.PushToUser(userID, &Event{Type: string(t), Payload: n})
	}
	return nil
}

func (s *Service) List(ctx context.Context, userID int64, limit, offset int) ([]Notification, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	list, err := s.repo.GetByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		unread = 0
	}
	return list, unread, nil
}

func (s *Service) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *Service) MarkAsRead(ctx context.Context, id, userID int64) error {
	return s.repo.MarkAsRead(ctx, id, userID)
}

func (s *Service) MarkAllAsRead(ctx context.Context, userID int64) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

// rupees renders a minor-unit amount for human-readable messages.
func rupees(amount int64) string {
	return fmt.Sprintf("₹%d.%02d", amount/100, amount%100)
}

func (s *Service) NotifyBookingCreated(ctx context.Context, ownerID, bookingID, roomID int64) error {
	return s.create(ctx, ownerID, TypeBookingCreated,
		"New booking request",
		"A seeker has requested to book your room",
		map[string]any{"booking_id": bookingID, "room_id": roomID},
	)
}

func (s *Service) NotifyBookingConfirmed(ctx context.Context, seekerID, bookingID int64) error {
	return s.create(ctx, seekerID, TypeBookingConfirmed,
		"Booking confirmed",
		"The owner has confirmed your booking",
		map[string]any{"booking_id": bookingID},
	)
}

func (s *Service) NotifyBookingCancelled(ctx context.Context, seekerID, bookingID int64, reason string) error {
	msg := "Your booking has been cancelled"
	if reason != "" {
		msg = msg + ". Reason: " + reason
	}
	return s.create(ctx, seekerID, TypeBookingCancelled,
		"Booking cancelled",
		msg,
		map[string]any{"booking_id": bookingID},
	)
}

func (s *Service) NotifyIdentityVerified(ctx context.Context, seekerID, bookingID int64) error {
	return s.create(ctx, seekerID, TypeIdentityVerified,
		"Identity verified",
		"Your identity document has been accepted by the owner",
		map[string]any{"booking_id": bookingID},
	)
}

func (s *Service) NotifyPaymentCompleted(ctx context.Context, ownerID, bookingID, amount int64) error {
	return s.create(ctx, ownerID, TypePaymentCompleted,
		"Payment received",
		fmt.Sprintf("Rent payment of %s has been captured", rupees(amount)),
		map[string]any{"booking_id": bookingID, "amount": amount},
	)
}

func (s *Service) NotifyRefundIssued(ctx context.Context, seekerID, ownerID, bookingID, amount int64) error {
	msg := fmt.Sprintf("A refund of %s has been issued", rupees(amount))
	data := map[string]any{"booking_id": bookingID, "amount": amount}
	if err := s.create(ctx, seekerID, TypeRefundIssued, "Refund issued", msg, data); err != nil {
		return err
	}
	return s.create(ctx, ownerID, TypeRefundIssued, "Refund issued", msg, data)
}
