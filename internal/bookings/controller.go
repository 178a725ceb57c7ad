package bookings

import (
	"errors"
	"net/http"

	"zinema/internal/shared/utils/response"
	"zinema/internal/shows"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// Reserve handles POST /api/v1/bookings/reserve
func (c *Controller) Reserve(ctx *gin.Context) {
	userID, userEmail, ok := userFromContext(ctx)
	if !ok {
		return
	}

	var req ReserveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	resp, err := c.service.Reserve(ctx.Request.Context(), userID, userEmail, req)
	if err != nil {
		switch {
		case errors.Is(err, shows.ErrSeatsUnavailable):
			response.RespondFailure(ctx, http.StatusConflict, response.CodeSeatsUnavailable,
				"One or more selected seats were just taken, please reselect")
		case errors.Is(err, shows.ErrShowNotFound):
			response.RespondFailure(ctx, http.StatusNotFound, response.CodeShowNotFound, "Show not found")
		case errors.Is(err, shows.ErrShowNotBookable),
			errors.Is(err, shows.ErrInvalidSeatLabel),
			errors.Is(err, ErrInvalidCoupon):
			response.RespondJSON(ctx, "error", http.StatusBadRequest, err.Error(), nil, nil)
		default:
			response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to reserve seats", nil, nil)
		}
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Seats reserved successfully", resp, nil)
}

// GetBooking handles GET /api/v1/bookings/:id
func (c *Controller) GetBooking(ctx *gin.Context) {
	userID, _, ok := userFromContext(ctx)
	if !ok {
		return
	}

	bookingID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid booking ID", nil, nil)
		return
	}

	booking, err := c.service.GetBooking(ctx.Request.Context(), bookingID, userID)
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			response.RespondFailure(ctx, http.StatusNotFound, response.CodeBookingNotFound, "Booking not found")
			return
		}
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to get booking", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Booking retrieved successfully", booking, nil)
}

// GetUserBookings handles GET /api/v1/users/bookings
func (c *Controller) GetUserBookings(ctx *gin.Context) {
	userID, _, ok := userFromContext(ctx)
	if !ok {
		return
	}

	var query BookingListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	bookingList, total, err := c.service.GetUserBookings(ctx.Request.Context(), userID, query.Limit, query.Offset)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to get bookings", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Bookings retrieved successfully", gin.H{
		"bookings": bookingList,
		"total":    total,
	}, nil)
}

// userFromContext extracts the authenticated user's id and email from JWT claims
func userFromContext(ctx *gin.Context) (uuid.UUID, string, bool) {
	userIDInterface, exists := ctx.Get("user_id")
	if !exists {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return uuid.Nil, "", false
	}

	userIDStr, ok := userIDInterface.(string)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Invalid user ID format", nil, nil)
		return uuid.Nil, "", false
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid user ID", nil, nil)
		return uuid.Nil, "", false
	}

	email, _ := ctx.Get("user_email")
	emailStr, _ := email.(string)

	return userID, emailStr, true
}
