package payment

import (
	"errors"
	"io"
	"net/http"

	"roomstay/internal/gateway"
	"roomstay/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

const signatureHeader = "X-Gateway-Signature"

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

func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.POST("/payments/order", h.CreateOrder)
	rg.POST("/payments/verify", h.Verify)
}

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/payments/webhook", h.Webhook)
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	resp, err := h.service.CreateOrder(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "booking not found")
		case errors.Is(err, ErrForbidden):
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "booking does not belong to caller")
		case errors.Is(err, ErrOrderOutstanding):
			response.Error(c, http.StatusBadRequest, "ORDER_OUTSTANDING", "an order is already outstanding for this booking")
		case errors.Is(err, ErrNotPayable):
			response.Error(c, http.StatusBadRequest, "NOT_PAYABLE", "booking is not awaiting payment")
		case errors.Is(err, gateway.ErrUnavailable):
			response.Error(c, http.StatusBadGateway, "GATEWAY_UNAVAILABLE", "payment gateway unavailable, retry later")
		default:
			h.loggerf("level=error msg=create order failed booking_id=%d err=%v", req.BookingID, err)
			response.Error(c, http.StatusInternalServerError, "INTERNAL", "internal error")
		}
		return
	}
	response.Success(c, http.StatusOK, resp)
}

func (h *Handler) Verify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	resp, err := h.service.VerifyPayment(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidSignature):
			response.Error(c, http.StatusForbidden, "SIGNATURE_INVALID", "payment signature verification failed")
		case errors.Is(err, ErrForbidden):
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "payment does not belong to caller")
		case errors.Is(err, ErrNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "no payment for this order")
		case errors.Is(err, ErrAmountMismatch):
			response.Error(c, http.StatusConflict, "AMOUNT_MISMATCH", "captured amount does not match the order")
		case errors.Is(err, gateway.ErrUnavailable):
			response.Error(c, http.StatusBadGateway, "GATEWAY_UNAVAILABLE", "payment gateway unavailable, retry later")
		default:
			h.loggerf("level=error msg=payment verification failed order_id=%s err=%v", req.OrderID, err)
			response.Error(c, http.StatusInternalServerError, "INTERNAL", "internal error")
		}
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// Webhook returns 200 whenever a validly signed event was applied or
// idempotently already applied, 400 on a bad signature, and 500 only for
// transient store failures so the gateway's redelivery retries them.
func (h *Handler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "unreadable body")
		return
	}

	err = h.service.HandleWebhook(c.Request.Context(), body, c.GetHeader(signatureHeader))
	if err != nil {
		if errors.Is(err, ErrInvalidSignature) {
			c.String(http.StatusBadRequest, "invalid signature")
			return
		}
		h.loggerf("level=error msg=webhook processing failed err=%v", err)
		c.String(http.StatusInternalServerError, "internal error")
		return
	}
	c.String(http.StatusOK, "ok")
}
