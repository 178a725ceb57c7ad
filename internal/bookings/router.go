package bookings

import (
	"zinema/internal/shared/config"
	"zinema/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupBookingRoutes configures all booking-related routes
func SetupBookingRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	bookingGroup := rg.Group("/bookings")
	bookingGroup.Use(middleware.JWTAuth(cfg), middleware.RequireRoles(middleware.RoleUser, middleware.RoleAdmin))
	{
		bookingGroup.POST("/reserve", controller.Reserve) // POST /api/v1/bookings/reserve
		bookingGroup.GET("/:id", controller.GetBooking)   // GET /api/v1/bookings/:id
	}

	users := rg.Group("/users")
	users.Use(middleware.JWTAuth(cfg), middleware.RequireRoles(middleware.RoleUser, middleware.RoleAdmin))
	{
		users.GET("/bookings", controller.GetUserBookings) // GET /api/v1/users/bookings
	}
}
