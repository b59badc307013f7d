package refund

import (
	"errors"
	"net/http"

	"roomstay/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
	loggerf func(format string, args ...interface{})
}

func NewHandler(service *Service, loggerf func(format string, args ...interface{})) *Handler {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Handler{service: service, loggerf: loggerf}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/payments/refund", h.Refund)
}

func (h *Handler) Refund(c *gin.Context) {
	var req RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	resp, err := h.service.Refund(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "booking or payment not found")
		case errors.Is(err, ErrForbidden):
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "caller may not refund this booking")
		case errors.Is(err, ErrAlreadyRefunded):
			response.Error(c, http.StatusConflict, "ALREADY_REFUNDED", "payment already refunded")
		case errors.Is(err, ErrPaymentNotCompleted):
			response.Error(c, http.StatusUnprocessableEntity, "PAYMENT_NOT_COMPLETED", "payment is not completed")
		case errors.Is(err, ErrAmountExceedsPayment):
			response.Error(c, http.StatusUnprocessableEntity, "AMOUNT_EXCEEDS_PAYMENT", "refund amount exceeds captured amount")
		case errors.Is(err, ErrWindowExpired):
			response.Error(c, http.StatusUnprocessableEntity, "REFUND_WINDOW_EXPIRED", "refund window has expired")
		case errors.Is(err, ErrRefundFailed):
			response.Error(c, http.StatusBadGateway, "REFUND_FAILED", "gateway refund failed, retry later")
		default:
			h.loggerf("level=error msg=refund failed booking_id=%d err=%v", req.BookingID, err)
			response.Error(c, http.StatusInternalServerError, "INTERNAL", "internal error")
		}
		return
	}
	response.Success(c, http.StatusOK, resp)
}
