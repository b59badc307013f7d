package domain

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingPaid      BookingStatus = "paid"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// PaymentViewStatus is the payment state mirrored onto the booking row. The
// authoritative value lives on the Payment record; the booking copy is a cache
// refreshed immediately after every successful Payment write.
type PaymentViewStatus string

const (
	PaymentViewPending   PaymentViewStatus = "pending"
	PaymentViewCompleted PaymentViewStatus = "completed"
	PaymentViewFailed    PaymentViewStatus = "failed"
	PaymentViewRefunded  PaymentViewStatus = "refunded"
)

type PaymentView struct {
	Amount           int64             `json:"amount"`
	Status           PaymentViewStatus `json:"status"`
	GatewayPaymentID string            `gorm:"column:gateway_payment_id" json:"gateway_payment_id,omitempty"`
	GatewayOrderID   string            `gorm:"column:gateway_order_id" json:"gateway_order_id,omitempty"`
	PaymentDate      *time.Time        `json:"payment_date,omitempty"`
	RefundDate       *time.Time        `json:"refund_date,omitempty"`
}

type IdentityDocument struct {
	FileURL          string     `json:"file_url,omitempty"`
	Number           string     `json:"number,omitempty"`
	Verified         bool       `json:"verified"`
	VerificationDate *time.Time `json:"verification_date,omitempty"`
}

type Booking struct {
	ID       int64 `json:"id"`
	RoomID   int64 `json:"room_id" validate:"required"`
	SeekerID int64 `json:"seeker_id" validate:"required"`
	OwnerID  int64 `json:"owner_id" validate:"required"`

	CheckIn  time.Time `json:"check_in" validate:"required"`
	CheckOut time.Time `json:"check_out" validate:"required"`

	Status  BookingStatus `json:"status"`
	Payment PaymentView   `gorm:"embedded;embeddedPrefix:payment_" json:"payment"`

	Identity IdentityDocument `gorm:"embedded;embeddedPrefix:identity_" json:"identity_document"`

	RequestDate        time.Time  `json:"request_date"`
	ResponseDate       *time.Time `json:"response_date,omitempty"`
	Message            string     `json:"message,omitempty" gorm:"type:text"`
	CancellationReason string     `json:"cancellation_reason,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Seeker *User `json:"seeker,omitempty" gorm:"foreignKey:SeekerID"`
	Room   *Room `json:"room,omitempty" gorm:"foreignKey:RoomID"`
}
