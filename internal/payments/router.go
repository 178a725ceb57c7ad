package payments

import (
	"github.com/gin-gonic/gin"
)

// SetupWebhookRoutes configures the payment gateway callback route. No auth
// middleware: the signature check is the authentication.
func SetupWebhookRoutes(rg *gin.RouterGroup, controller *Controller) {
	webhooks := rg.Group("/webhooks")
	{
		webhooks.POST("/payment", controller.HandleWebhook) // POST /api/v1/webhooks/payment
	}
}
