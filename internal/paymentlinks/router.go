package paymentlinks

import (
	"zinema/internal/shared/config"
	"zinema/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupPaymentLinkRoutes configures all payment-link routes
func SetupPaymentLinkRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	links := rg.Group("/payment-links")
	{
		// Link status is public so the share page works without an account
		links.GET("/:id", controller.GetLink) // GET /api/v1/payment-links/:id

		authed := links.Group("")
		authed.Use(middleware.JWTAuth(cfg), middleware.RequireRoles(middleware.RoleUser, middleware.RoleAdmin))
		{
			authed.POST("", controller.CreateLink)              // POST /api/v1/payment-links
			authed.POST("/:id/checkout", controller.Checkout)   // POST /api/v1/payment-links/:id/checkout
		}
	}
}
