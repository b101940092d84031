package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"skybook/api/routes"
	"skybook/internal/bookings"
	"skybook/internal/currency"
	"skybook/internal/notifications"
	"skybook/internal/shared/config"
	"skybook/internal/shared/database"
	"skybook/pkg/logger"
	"skybook/pkg/ratelimit"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	appLogger := logger.GetDefault()

	// Smart environment loading
	if err := godotenv.Load(); err != nil {
		if os.Getenv("GIN_MODE") == "release" || os.Getenv("DOCKER_CONTAINER") == "true" {
			appLogger.Info("Production environment: using container environment variables")
		} else {
			appLogger.Info("No .env file found, using system environment variables")
		}
	} else {
		appLogger.Info("Development environment: loaded .env file")
	}

	// Load config
	cfg := config.Load()

	// Set Gin mode (debug/release)
	gin.SetMode(cfg.GinMode)

	// Initialize DB
	db, err := database.InitDB(cfg)
	if err != nil {
		appLogger.Error("failed to connect:", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Start the exchange-rate refresher
	converterCtx, converterCancel := context.WithCancel(context.Background())
	defer converterCancel()

	ratesClient := currency.NewRatesClient(cfg.Currency.RatesURL, cfg.Currency.FetchTimeout)
	converter := currency.NewConverter(cfg.Currency, ratesClient, appLogger)
	converter.Start(converterCtx)
	defer converter.Stop()

	// Initialize Rate Limiter
	var rateLimiter *ratelimit.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiterConfig := &ratelimit.Config{
			Enabled:         cfg.RateLimit.Enabled,
			WindowDuration:  cfg.RateLimit.WindowDuration,
			DefaultRequests: cfg.RateLimit.DefaultRequests,
			SearchRequests:  cfg.RateLimit.SearchRequests,
			AuthRequests:    cfg.RateLimit.AuthRequests,
			BookingRequests: cfg.RateLimit.BookingRequests,
			WhitelistedIPs:  cfg.RateLimit.WhitelistedIPs,
		}

		rateLimiter = ratelimit.NewRateLimiter(db.GetRedisClient(), rateLimiterConfig)
		appLogger.Info("Rate limiter initialized",
			slog.Bool("enabled", cfg.RateLimit.Enabled),
			slog.Duration("window", cfg.RateLimit.WindowDuration),
			slog.Int("default_requests", cfg.RateLimit.DefaultRequests),
		)
	} else {
		appLogger.Info("Rate limiting disabled")
	}

	// Initialize the notification pipeline when Kafka is configured
	notificationCtx, notificationCancel := context.WithCancel(context.Background())
	defer notificationCancel()

	var publisher bookings.Publisher
	if cfg.Kafka.Enabled {
		producer, err := notifications.NewKafkaProducer(notifications.ProducerConfigFromApp(cfg.Kafka))
		if err != nil {
			appLogger.Error("Failed to initialize notification producer", slog.Any("error", err))
			appLogger.Info("Continuing without notifications - confirmations will not be emailed")
		} else {
			publisher = producer
			defer producer.Close()

			emailService := buildEmailService(appLogger)
			consumer, err := notifications.NewKafkaConsumer(notifications.ConsumerConfigFromApp(cfg.Kafka), emailService)
			if err != nil {
				appLogger.Error("Failed to initialize notification consumer", slog.Any("error", err))
			} else {
				if err := consumer.StartConsumers(notificationCtx, 2); err != nil {
					appLogger.Error("Failed to start notification workers", slog.Any("error", err))
				}
				defer consumer.Stop()
			}

			appLogger.Info("Notification pipeline initialized and started")
		}
	} else {
		appLogger.Info("Kafka disabled - booking confirmations will not be emailed")
	}

	// Setup router with rate limiter
	appRouter := routes.NewRouter(cfg, db, converter, publisher, appLogger)
	router := setupRouter(cfg, appRouter, rateLimiter)

	// Payment reconciliation job for checkouts that never called back
	jobProcessor := appRouter.JobProcessor()
	jobCtx, jobCancel := context.WithCancel(context.Background())
	defer jobCancel()
	jobProcessor.Start(jobCtx)
	defer jobProcessor.Stop()

	// HTTP server
	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		appLogger.Info("Server running",
			slog.String("address", cfg.GetServerAddress()),
			slog.String("health_check", fmt.Sprintf("http://localhost:%s/health", cfg.Port)),
			slog.String("api_status", fmt.Sprintf("http://localhost:%s%s/status", cfg.Port, cfg.GetAPIBasePath())),
			slog.String("version", cfg.APIVersion),
			slog.Bool("redis_cache", (db.Redis != nil)),
			slog.Bool("rate_limiting", cfg.RateLimit.Enabled),
			slog.Bool("notifications", publisher != nil),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed", slog.Any("error", err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", slog.Any("error", err))
	}

	appLogger.Info("Server exited gracefully")
}

func setupRouter(cfg *config.Config, appRouter *routes.Router, rateLimiter *ratelimit.RateLimiter) *gin.Engine {
	engine := gin.New()
	appLogger := logger.GetDefault()

	// Built-in middleware: logs requests + recovers from panics
	engine.Use(RequestLoggerMiddleware(appLogger), gin.Recovery())

	// CORS configuration
	engine.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return true // allow every origin dynamically
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-RateLimit-*"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Global rate limiting middleware (applied to all routes)
	if rateLimiter != nil {
		engine.Use(ratelimit.Middleware(rateLimiter))
		appLogger.Info("Rate limiting middleware applied to all routes")
	}

	appRouter.SetupRoutes(engine)

	return engine
}

// buildEmailService prefers SMTP when configured, otherwise logs deliveries
func buildEmailService(appLogger *logger.Logger) notifications.EmailService {
	smtpConfig := notifications.NewSMTPConfigFromEnv()
	if smtpConfig.Host == "" {
		appLogger.Info("No SMTP host configured, notification emails will be logged only")
		return notifications.NewLogEmailService()
	}

	emailService, err := notifications.NewSMTPEmailService(smtpConfig)
	if err != nil {
		appLogger.Error("Invalid SMTP configuration, falling back to log delivery", slog.Any("error", err))
		return notifications.NewLogEmailService()
	}

	return emailService
}

func RequestLoggerMiddleware(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		l.LogHTTPRequest(c, duration)
	}
}
