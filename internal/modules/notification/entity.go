package notification

import (
	"encoding/json"
	"time"
)

// Type classifies a notification for client-side rendering.
type Type string

const (
	TypeBookingCreated   Type = "booking_created"   // owner: a seeker requested the room
	TypeBookingConfirmed Type = "booking_confirmed" // seeker: owner confirmed the stay
	TypeBookingCancelled Type = "booking_cancelled" // seeker: booking was cancelled
	TypeIdentityVerified Type = "identity_verified" // seeker: identity document accepted
	TypePaymentCompleted Type = "payment_completed" // owner: rent payment captured
	TypeRefundIssued     Type = "refund_issued"     // both parties: refund went through
)

type Notification struct {
	ID        int64           `gorm:"column:id;primaryKey" json:"id"`
	UserID    int64           `gorm:"column:user_id;index:idx_notifications_user_unread" json:"user_id"`
	Type      Type            `gorm:"column:type" json:"type"`
	Title     string          `gorm:"column:title" json:"title"`
	Message   string          `gorm:"column:message" json:"message"`
	Data      json.RawMessage `gorm:"column:data" json:"data,omitempty"`
	IsRead    bool            `gorm:"column:is_read;index:idx_notifications_user_unread" json:"is_read"`
	CreatedAt time.Time       `gorm:"column:created_at" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
