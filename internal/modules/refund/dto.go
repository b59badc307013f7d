package refund

type RefundRequest struct {
	BookingID int64  `json:"booking_id" binding:"required"`
	Amount    int64  `json:"amount"` // minor units; zero means full refund
	Reason    string `json:"reason"`
}

type RefundResponse struct {
	RefundID     string `json:"refund_id"`
	RefundAmount int64  `json:"refund_amount"`
}
