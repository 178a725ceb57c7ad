package shows

import (
	"zinema/internal/shared/config"
	"zinema/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupShowRoutes configures all show-related routes
func SetupShowRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	// Public browsing routes
	showGroup := rg.Group("/shows")
	{
		showGroup.GET("", controller.ListShows)                            // GET /api/v1/shows
		showGroup.GET("/:id", controller.GetShow)                          // GET /api/v1/shows/:id
		showGroup.GET("/:id/occupied-seats", controller.GetOccupiedSeats)  // GET /api/v1/shows/:id/occupied-seats
	}

	// Admin routes
	admin := rg.Group("/admin/shows")
	admin.Use(middleware.JWTAuth(cfg), middleware.RequireAdmin())
	{
		admin.POST("", controller.CreateShow) // POST /api/v1/admin/shows
	}
}
