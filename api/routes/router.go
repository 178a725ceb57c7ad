// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"zinema/internal/bookings"
	"zinema/internal/paymentlinks"
	"zinema/internal/payments"
	"zinema/internal/shared/config"
	"zinema/internal/shared/database"
	"zinema/internal/shows"
	"zinema/pkg/cache"
)

// Router holds all route dependencies
type Router struct {
	config    *config.Config
	db        *database.DB
	gateway   bookings.PaymentGateway
	publisher payments.NotificationPublisher

	// Services kept for dependency injection into background workers
	showService    shows.Service
	bookingService bookings.Service
	linkService    paymentlinks.Service
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, gateway bookings.PaymentGateway, publisher payments.NotificationPublisher) *Router {
	return &Router{
		config:    cfg,
		db:        db,
		gateway:   gateway,
		publisher: publisher,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check and basic info endpoints
	r.setupHealthRoutes(engine)

	// API routes
	api := engine.Group(r.config.GetAPIBasePath())
	{
		// Show routes first; bookings and payment links depend on the show service
		r.setupShowRoutes(api)
		r.setupBookingRoutes(api)
		r.setupPaymentLinkRoutes(api)
		r.setupWebhookRoutes(api)
	}
}

// BookingService returns the booking service for background workers
func (r *Router) BookingService() bookings.Service {
	return r.bookingService
}

// PaymentLinkService returns the payment link service for background workers
func (r *Router) PaymentLinkService() paymentlinks.Service {
	return r.linkService
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "zinema-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "zinema-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}

// setupShowRoutes configures show and seat map routes
func (r *Router) setupShowRoutes(rg *gin.RouterGroup) {
	showRepo := shows.NewRepository(r.db.GetPostgreSQL())
	cacheService := cache.NewService(r.db.GetRedisClient())
	showService := shows.NewService(showRepo, cacheService, r.config.Redis.SeatMapTTL)
	showController := shows.NewController(showService)

	// Keep the show service for booking and payment link wiring
	r.showService = showService

	shows.SetupShowRoutes(rg, showController, r.config)
}

// setupBookingRoutes configures seat reservation and booking routes
func (r *Router) setupBookingRoutes(rg *gin.RouterGroup) {
	bookingRepo := bookings.NewRepository(r.db.GetPostgreSQL())
	bookingService := bookings.NewService(bookingRepo, r.showService, r.gateway, r.config)
	bookingController := bookings.NewController(bookingService)

	r.bookingService = bookingService

	bookings.SetupBookingRoutes(rg, bookingController, r.config)
}

// setupPaymentLinkRoutes configures shareable payment link routes
func (r *Router) setupPaymentLinkRoutes(rg *gin.RouterGroup) {
	linkRepo := paymentlinks.NewRepository(r.db.GetPostgreSQL())
	bookingRepo := bookings.NewRepository(r.db.GetPostgreSQL())
	linkService := paymentlinks.NewService(linkRepo, bookingRepo, r.showService, r.gateway, r.config)
	linkController := paymentlinks.NewController(linkService)

	r.linkService = linkService

	paymentlinks.SetupPaymentLinkRoutes(rg, linkController, r.config)
}

// setupWebhookRoutes configures the payment gateway webhook endpoint
func (r *Router) setupWebhookRoutes(rg *gin.RouterGroup) {
	bookingRepo := bookings.NewRepository(r.db.GetPostgreSQL())
	paymentService := payments.NewService(bookingRepo, r.publisher)
	paymentController := payments.NewController(paymentService, r.config)

	payments.SetupWebhookRoutes(rg, paymentController)
}
