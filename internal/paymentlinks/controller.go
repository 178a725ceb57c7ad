package paymentlinks

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

// CreateLink handles POST /api/v1/payment-links
func (c *Controller) CreateLink(ctx *gin.Context) {
	userID, _, ok := userFromContext(ctx)
	if !ok {
		return
	}

	var req CreateLinkRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	link, err := c.service.CreateLink(ctx.Request.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, shows.ErrSeatsUnavailable):
			response.RespondFailure(ctx, http.StatusConflict, response.CodeSeatsUnavailable,
				"One or more selected seats were just taken, please reselect")
		case errors.Is(err, shows.ErrShowNotFound):
			response.RespondFailure(ctx, http.StatusNotFound, response.CodeShowNotFound, "Show not found")
		case errors.Is(err, shows.ErrShowNotBookable), errors.Is(err, shows.ErrInvalidSeatLabel):
			response.RespondJSON(ctx, "error", http.StatusBadRequest, err.Error(), nil, nil)
		default:
			response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to create payment link", nil, nil)
		}
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Payment link created successfully", link, nil)
}

// GetLink handles GET /api/v1/payment-links/:id
func (c *Controller) GetLink(ctx *gin.Context) {
	linkID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid link ID", nil, nil)
		return
	}

	link, err := c.service.GetLink(ctx.Request.Context(), linkID)
	if err != nil {
		if errors.Is(err, ErrLinkNotFound) {
			response.RespondFailure(ctx, http.StatusNotFound, response.CodeLinkInvalid, "Payment link not found")
			return
		}
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to get payment link", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Payment link retrieved successfully", link, nil)
}

// Checkout handles POST /api/v1/payment-links/:id/checkout
func (c *Controller) Checkout(ctx *gin.Context) {
	userID, userEmail, ok := userFromContext(ctx)
	if !ok {
		return
	}

	linkID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid link ID", nil, nil)
		return
	}

	resp, err := c.service.Checkout(ctx.Request.Context(), linkID, userID, userEmail)
	if err != nil {
		switch {
		case errors.Is(err, ErrLinkNotFound), errors.Is(err, ErrLinkNotActive):
			response.RespondFailure(ctx, http.StatusConflict, response.CodeLinkInvalid,
				"This payment link has already been used or is no longer valid")
		case errors.Is(err, ErrLinkExpired):
			response.RespondFailure(ctx, http.StatusConflict, response.CodeLinkExpired,
				"This payment link has expired, please ask for a new one")
		case errors.Is(err, ErrSeatsNoLongerAvailable):
			response.RespondFailure(ctx, http.StatusConflict, response.CodeSeatsUnavailable,
				"The seats held by this link are no longer available")
		default:
			response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to checkout payment link", nil, nil)
		}
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Payment link checkout started", resp, nil)
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
