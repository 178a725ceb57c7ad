package payments

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"zinema/internal/shared/config"
	"zinema/internal/shared/utils/response"
	"zinema/pkg/logger"

	"github.com/gin-gonic/gin"
)

// SignatureHeader carries the gateway's payload MAC
const SignatureHeader = "X-Payment-Signature"

type Controller struct {
	service Service
	cfg     *config.Config
	log     *logger.Logger
}

func NewController(service Service, cfg *config.Config) *Controller {
	return &Controller{
		service: service,
		cfg:     cfg,
		log:     logger.GetDefault(),
	}
}

// HandleWebhook handles POST /api/v1/webhooks/payment. Signature verification
// runs on the raw body before any JSON parsing; an unverified payload never
// reaches booking state.
func (c *Controller) HandleWebhook(ctx *gin.Context) {
	payload, err := ctx.GetRawData()
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Failed to read request body", nil, nil)
		return
	}

	sigHeader := ctx.GetHeader(SignatureHeader)
	err = VerifySignature(payload, sigHeader, c.cfg.Payment.WebhookSecret,
		c.cfg.Payment.WebhookTolerance, time.Now())
	if err != nil {
		c.log.LogWebhookRejected(ctx.Request.Context(), err.Error(), ctx.ClientIP())
		// Non-2xx so the gateway does not treat the event as handled
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Signature verification failed", nil, nil)
		return
	}

	var event WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid event payload", nil, nil)
		return
	}

	switch event.Type {
	case EventCheckoutCompleted:
		if event.Data.SessionID == "" {
			response.RespondJSON(ctx, "error", http.StatusBadRequest, "Event missing session id", nil, nil)
			return
		}

		err := c.service.Confirm(ctx.Request.Context(), event.Data.SessionID)
		if err != nil {
			if errors.Is(err, ErrSessionNotFound) {
				// Acknowledge: retrying will never find the booking
				c.log.Warn("payment event for unknown session",
					"session_id", event.Data.SessionID, "event_id", event.ID)
				response.RespondJSON(ctx, "success", http.StatusOK, "Event acknowledged", nil, nil)
				return
			}
			response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to process event", nil, nil)
			return
		}

		response.RespondJSON(ctx, "success", http.StatusOK, "Event processed", nil, nil)

	default:
		// Unhandled event types are acknowledged so the gateway stops resending
		response.RespondJSON(ctx, "success", http.StatusOK, "Event ignored", nil, nil)
	}
}
