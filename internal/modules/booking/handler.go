package booking

import (
	"errors"
	"net/http"
	"strconv"

	"roomstay/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings", h.Create)
	rg.GET("/bookings/my", h.My)
	rg.GET("/bookings/owner", h.Owner)
	rg.PUT("/bookings/:id/status", h.UpdateStatus)
	rg.POST("/bookings/:id/identity", h.SubmitIdentity)
	rg.PUT("/bookings/:id/identity/verify", h.VerifyIdentity)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, b)
}

func (h *Handler) My(c *gin.Context) {
	limit, offset := pagination(c)
	list, err := h.service.GetMyBookings(c.Request.Context(), c.GetInt64("user_id"), limit, offset)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, list)
}

func (h *Handler) Owner(c *gin.Context) {
	limit, offset := pagination(c)
	list, err := h.service.GetOwnerBookings(c.Request.Context(), c.GetInt64("user_id"), limit, offset)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, list)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "invalid booking id")
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	b, err := h.service.UpdateStatus(c.Request.Context(), c.GetInt64("user_id"), c.GetString("role"), id, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, b)
}

func (h *Handler) SubmitIdentity(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "invalid booking id")
		return
	}
	var req SubmitIdentityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	if err := h.service.SubmitIdentityDocument(c.Request.Context(), c.GetInt64("user_id"), id, req); err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "submitted"})
}

func (h *Handler) VerifyIdentity(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "invalid booking id")
		return
	}

	if err := h.service.VerifyIdentityDocument(c.Request.Context(), c.GetInt64("user_id"), id); err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "verified"})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrInvalidDocumentNumber):
		response.Error(c, http.StatusBadRequest, "INVALID_DOCUMENT_NUMBER", "identity document number failed validation")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "booking not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "caller may not act on this booking")
	case errors.Is(err, ErrNotAvailable):
		response.Error(c, http.StatusConflict, "NOT_AVAILABLE", "room is not available for the requested period")
	case errors.Is(err, ErrInvalidTransition):
		response.Error(c, http.StatusUnprocessableEntity, "INVALID_TRANSITION", "status transition not allowed")
	case errors.Is(err, ErrPaymentNotCompleted):
		response.Error(c, http.StatusUnprocessableEntity, "PAYMENT_NOT_COMPLETED", "payment is not completed")
	case errors.Is(err, ErrIdentityNotVerified):
		response.Error(c, http.StatusUnprocessableEntity, "IDENTITY_NOT_VERIFIED", "identity document not yet verified")
	case errors.Is(err, ErrNoDocument):
		response.Error(c, http.StatusUnprocessableEntity, "NO_DOCUMENT", "no identity document submitted")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}

func pagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	return limit, offset
}
