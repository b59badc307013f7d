package domain

import "time"

type PaymentStatus string

const (
	PaymentCreated   PaymentStatus = "created"
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// Payment is one attempt to collect a booking's rent through the gateway.
// Amount is in minor currency units (paise); rupee formatting happens only at
// the response boundary.
type Payment struct {
	ID        int64 `gorm:"primaryKey" json:"id"`
	BookingID int64 `gorm:"index;not null" json:"booking_id"`
	PayerID   int64 `gorm:"index;not null" json:"payer_id"`

	GatewayOrderID   string `gorm:"uniqueIndex;size:64;not null" json:"gateway_order_id"`
	GatewayPaymentID string `gorm:"index;size:64" json:"gateway_payment_id,omitempty"`
	Receipt          string `gorm:"size:64" json:"receipt"`

	Amount   int64         `gorm:"not null" json:"amount"`
	Currency string        `gorm:"size:8;not null" json:"currency"`
	Status   PaymentStatus `gorm:"type:varchar(20);default:'created';index" json:"status"`

	PaymentMethod   string     `gorm:"size:32" json:"payment_method,omitempty"`
	TransactionDate *time.Time `json:"transaction_date,omitempty"`

	RefundID     string     `gorm:"size:64" json:"refund_id,omitempty"`
	RefundAmount int64      `json:"refund_amount,omitempty"`
	RefundDate   *time.Time `json:"refund_date,omitempty"`

	FailureCode    string `gorm:"size:64" json:"failure_code,omitempty"`
	FailureReason  string `gorm:"type:text" json:"failure_reason,omitempty"`
	CaptureRawBody string `gorm:"type:text" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Payment) TableName() string { return "payments" }
