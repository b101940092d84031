package bookings

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"skybook/internal/shared/utils/response"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// CreateBooking handles POST /api/v1/bookings
func (c *Controller) CreateBooking(ctx *gin.Context) {
	userID, ok := c.currentUserID(ctx)
	if !ok {
		return
	}

	var req CreateBookingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	resp, err := c.service.CreateBooking(ctx.Request.Context(), userID, req)
	if err != nil {
		if errors.Is(err, ErrInvalidBooking) {
			response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid booking request", nil, err.Error())
			return
		}
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to create booking", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Booking created successfully", resp, nil)
}

// GetBooking handles GET /api/v1/bookings/:id
func (c *Controller) GetBooking(ctx *gin.Context) {
	userID, ok := c.currentUserID(ctx)
	if !ok {
		return
	}

	bookingID, ok := c.bookingIDParam(ctx)
	if !ok {
		return
	}

	resp, err := c.service.GetBooking(ctx.Request.Context(), bookingID, userID)
	if err != nil {
		c.respondServiceError(ctx, err, "Failed to get booking")
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Booking retrieved successfully", resp, nil)
}

// GetUserBookings handles GET /api/v1/users/bookings
func (c *Controller) GetUserBookings(ctx *gin.Context) {
	userID, ok := c.currentUserID(ctx)
	if !ok {
		return
	}

	var query BookingListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	resp, err := c.service.GetUserBookings(ctx.Request.Context(), userID, query)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to get bookings", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Bookings retrieved successfully", resp, nil)
}

// InitiatePayment handles POST /api/v1/bookings/:id/pay
func (c *Controller) InitiatePayment(ctx *gin.Context) {
	userID, ok := c.currentUserID(ctx)
	if !ok {
		return
	}

	bookingID, ok := c.bookingIDParam(ctx)
	if !ok {
		return
	}

	resp, err := c.service.InitiatePayment(ctx.Request.Context(), bookingID, userID)
	if err != nil {
		c.respondServiceError(ctx, err, "Failed to initiate payment")
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Payment initiated successfully", resp, nil)
}

// ResolvePayment handles POST /api/v1/bookings/:id/payment-callback
func (c *Controller) ResolvePayment(ctx *gin.Context) {
	userID, ok := c.currentUserID(ctx)
	if !ok {
		return
	}

	bookingID, ok := c.bookingIDParam(ctx)
	if !ok {
		return
	}

	var req ResolvePaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	resp, err := c.service.ResolvePayment(ctx.Request.Context(), bookingID, userID, req.Reference)
	if err != nil {
		c.respondServiceError(ctx, err, "Failed to resolve payment")
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Payment resolved successfully", resp, nil)
}

// CancelBooking handles POST /api/v1/bookings/:id/cancel
func (c *Controller) CancelBooking(ctx *gin.Context) {
	userID, ok := c.currentUserID(ctx)
	if !ok {
		return
	}

	bookingID, ok := c.bookingIDParam(ctx)
	if !ok {
		return
	}

	resp, err := c.service.CancelBooking(ctx.Request.Context(), bookingID, userID)
	if err != nil {
		c.respondServiceError(ctx, err, "Failed to cancel booking")
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Booking cancelled successfully", resp, nil)
}

// currentUserID extracts the authenticated user from JWT context (set by middleware)
func (c *Controller) currentUserID(ctx *gin.Context) (uuid.UUID, bool) {
	userIDInterface, exists := ctx.Get("user_id")
	if !exists {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return uuid.Nil, false
	}

	userIDStr, ok := userIDInterface.(string)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Invalid user ID format", nil, nil)
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid user ID", nil, nil)
		return uuid.Nil, false
	}

	return userID, true
}

// bookingIDParam parses the :id path parameter
func (c *Controller) bookingIDParam(ctx *gin.Context) (uuid.UUID, bool) {
	bookingID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid booking ID", nil, nil)
		return uuid.Nil, false
	}
	return bookingID, true
}

// respondServiceError maps service errors to HTTP status codes
func (c *Controller) respondServiceError(ctx *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, ErrBookingNotFound):
		response.RespondJSON(ctx, "error", http.StatusNotFound, "Booking not found", nil, err.Error())
	case errors.Is(err, ErrNotBookingOwner):
		response.RespondJSON(ctx, "error", http.StatusForbidden, "Access denied", nil, err.Error())
	case errors.Is(err, ErrAlreadyCancelled),
		errors.Is(err, ErrAlreadyPaid),
		errors.Is(err, ErrCannotCancel),
		errors.Is(err, ErrPaymentNotStarted),
		errors.Is(err, ErrInvalidBooking):
		response.RespondJSON(ctx, "error", http.StatusConflict, message, nil, err.Error())
	default:
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, message, nil, err.Error())
	}
}
