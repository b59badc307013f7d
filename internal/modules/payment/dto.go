package payment

type CreateOrderRequest struct {
	BookingID int64 `json:"booking_id" binding:"required" example:"123"`
}

type CreateOrderResponse struct {
	OrderID  string `json:"order_id" example:"order_O4x1GnQ8al"`
	Amount   int64  `json:"amount" example:"1500000"`
	Currency string `json:"currency" example:"INR"`
	KeyID    string `json:"key_id" example:"key_live_x1"`
}

type VerifyRequest struct {
	OrderID   string `json:"order_id" binding:"required"`
	PaymentID string `json:"payment_id" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

type VerifyResponse struct {
	Status string `json:"status" example:"completed"`
}

type ErrorResponse struct {
	Error string `json:"error" example:"invalid request"`
}
