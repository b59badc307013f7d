package booking

import "time"

type CreateBookingRequest struct {
	RoomID   int64     `json:"room_id" binding:"required"`
	CheckIn  time.Time `json:"check_in" binding:"required"`
	CheckOut time.Time `json:"check_out" binding:"required"`
	Message  string    `json:"message"`
}

type UpdateStatusRequest struct {
	Status  string `json:"status" binding:"required"`
	Message string `json:"message"`
}

type SubmitIdentityRequest struct {
	DocumentNumber string `json:"document_number" binding:"required"`
	FileURL        string `json:"file_url" binding:"required"`
}
