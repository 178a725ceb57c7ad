package shows

import (
	"errors"
	"net/http"

	"zinema/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// CreateShow handles POST /api/v1/admin/shows
func (c *Controller) CreateShow(ctx *gin.Context) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return
	}

	var req CreateShowRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	show, err := c.service.CreateShow(ctx.Request.Context(), userID, req)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Failed to create show", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Show created successfully", show, nil)
}

// ListShows handles GET /api/v1/shows
func (c *Controller) ListShows(ctx *gin.Context) {
	var query ListShowsQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	showList, total, err := c.service.ListShows(ctx.Request.Context(), query.Limit, query.Offset)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to list shows", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Shows retrieved successfully", gin.H{
		"shows": showList,
		"total": total,
	}, nil)
}

// GetShow handles GET /api/v1/shows/:id
func (c *Controller) GetShow(ctx *gin.Context) {
	showID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid show ID", nil, nil)
		return
	}

	show, err := c.service.GetShow(ctx.Request.Context(), showID)
	if err != nil {
		if errors.Is(err, ErrShowNotFound) {
			response.RespondFailure(ctx, http.StatusNotFound, response.CodeShowNotFound, "Show not found")
			return
		}
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to get show", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Show retrieved successfully", show, nil)
}

// GetOccupiedSeats handles GET /api/v1/shows/:id/occupied-seats
func (c *Controller) GetOccupiedSeats(ctx *gin.Context) {
	showID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid show ID", nil, nil)
		return
	}

	seats, err := c.service.GetOccupiedSeats(ctx.Request.Context(), showID)
	if err != nil {
		if errors.Is(err, ErrShowNotFound) {
			response.RespondFailure(ctx, http.StatusNotFound, response.CodeShowNotFound, "Show not found")
			return
		}
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to get occupied seats", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Occupied seats retrieved successfully", OccupiedSeatsResponse{
		ShowID:        showID.String(),
		OccupiedSeats: seats,
	}, nil)
}

// userIDFromContext extracts the authenticated user's id set by the JWT middleware
func userIDFromContext(ctx *gin.Context) (uuid.UUID, bool) {
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
