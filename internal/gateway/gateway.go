// Package gateway wraps the payment gateway's order/payment/refund HTTP API
// behind a small interface so handlers can take a fake in tests.
package gateway

import (
	"context"
	"errors"
	"time"
)

var ErrUnavailable = errors.New("payment gateway unavailable")

type CreateOrderInput struct {
	Amount   int64 // minor units
	Currency string
	Receipt  string
	Notes    map[string]string
}

type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type PaymentDetails struct {
	ID         string    `json:"id"`
	OrderID    string    `json:"order_id"`
	Method     string    `json:"method"`
	Amount     int64     `json:"amount"`
	CapturedAt time.Time `json:"captured_at"`
}

type Refund struct {
	ID        string `json:"id"`
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
}

type Gateway interface {
	CreateOrder(ctx context.Context, in CreateOrderInput) (*Order, error)
	FetchPayment(ctx context.Context, paymentID string) (*PaymentDetails, error)
	// CreateRefund with amount <= 0 requests a full refund.
	CreateRefund(ctx context.Context, paymentID string, amount int64) (*Refund, error)
	VerifyPaymentSignature(orderID, paymentID, signature string) bool
	VerifyWebhookSignature(body []byte, signature string) bool
}
