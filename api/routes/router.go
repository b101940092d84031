// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"skybook/internal/auth"
	"skybook/internal/bookings"
	"skybook/internal/currency"
	"skybook/internal/flights"
	"skybook/internal/payments"
	"skybook/internal/shared/config"
	"skybook/internal/shared/database"
	"skybook/pkg/cache"
	"skybook/pkg/logger"
)

// Router holds all route dependencies
type Router struct {
	config    *config.Config
	db        *database.DB
	converter currency.Converter
	publisher bookings.Publisher
	log       *logger.Logger

	jobProcessor *bookings.JobProcessor // Started by main, reported on /status
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, converter currency.Converter, publisher bookings.Publisher, log *logger.Logger) *Router {
	return &Router{
		config:    cfg,
		db:        db,
		converter: converter,
		publisher: publisher,
		log:       log,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check and basic info endpoints
	r.setupHealthRoutes(engine)

	// API routes
	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupAuthRoutes(api)
		r.setupFlightRoutes(api)
		r.setupBookingRoutes(api)
	}
}

// JobProcessor exposes the payment reconciliation job for main to start
func (r *Router) JobProcessor() *bookings.JobProcessor {
	return r.jobProcessor
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "skybook-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "skybook-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		status := gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		}
		if r.jobProcessor != nil {
			status["jobs"] = r.jobProcessor.GetJobStatus()
		}
		c.JSON(http.StatusOK, status)
	})
}

// setupAuthRoutes configures authentication routes
func (r *Router) setupAuthRoutes(rg *gin.RouterGroup) {
	authRepo := auth.NewRepository(r.db.GetPostgreSQL())
	authService := auth.NewService(authRepo, r.config)
	authController := auth.NewController(authService)
	authRouter := auth.NewRouter(authController, r.config)

	authRouter.SetupRoutes(rg)
}

// setupFlightRoutes configures flight search and airport lookup routes
func (r *Router) setupFlightRoutes(rg *gin.RouterGroup) {
	searchClient := flights.NewAmadeusClient(r.config.Amadeus)
	cacheService := cache.NewService(r.db.GetRedisClient())
	flightService := flights.NewService(searchClient, cacheService, r.converter, r.config.Redis, r.log)
	flightController := flights.NewController(flightService)

	flights.SetupFlightRoutes(rg, flightController)
}

// setupBookingRoutes configures booking and payment routes
func (r *Router) setupBookingRoutes(rg *gin.RouterGroup) {
	bookingRepo := bookings.NewRepository(r.db.GetPostgreSQL())
	gatewayClient := payments.NewClient(r.config.Payment)
	bookingService := bookings.NewService(bookingRepo, gatewayClient, r.publisher, r.converter, r.config.Payment, r.log)
	bookingController := bookings.NewController(bookingService)

	// Payment reconciliation job over the wired service
	r.jobProcessor = bookings.NewJobProcessor(bookingService, nil)

	bookings.SetupBookingRoutes(rg, bookingController, r.config)
}
