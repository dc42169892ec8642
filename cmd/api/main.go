package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	_ "github.com/joho/godotenv/autoload"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/fitcore/membership-api/docs" // Swagger docs
	"github.com/fitcore/membership-api/internal/config"
	"github.com/fitcore/membership-api/internal/database"
	"github.com/fitcore/membership-api/internal/handlers"
	"github.com/fitcore/membership-api/internal/integrations"
	"github.com/fitcore/membership-api/internal/jobs"
	"github.com/fitcore/membership-api/internal/middleware"
	"github.com/fitcore/membership-api/internal/repository"
	"github.com/fitcore/membership-api/internal/services"
	"github.com/fitcore/membership-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// @title FitCore Membership API
// @version 1.0
// @description REST API for FitCore membership contract management

// @contact.name API Support

// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Setup(cfg.Environment)

	// Initialize Sentry when DSN is configured
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	if err := database.Migrate(db); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	repos := repository.NewRepositories(db)
	txm := repository.NewTxManager(db)

	// Initialize background worker
	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	// Cleanup collaborators for the cancellation flow
	enrollments := integrations.NewEnrollmentStore(db)
	debts := integrations.NewDebtStore(db)

	// Initialize services
	svcs := services.NewServices(repos, txm, worker, enrollments, debts, cfg, db)

	// Schedule recurring jobs
	scheduleJobs(worker, svcs, cfg)

	// Initialize handlers
	h := handlers.NewHandlers(svcs)

	// Setup router
	router := setupRouter(h, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Shutdown background worker
	worker.Shutdown()
	logger.Info("Background worker stopped")

	// Flush Sentry events before exit
	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func setupRouter(h *handlers.Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Global middleware
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Swagger documentation
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

		// Health check (public)
		v1.GET("/health", h.Health.Index)

		// Protected routes (requires a tenant-scoped token)
		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTSecret))
		{
			// Contracts
			protected.POST("/contracts", h.Contract.Create)
			protected.GET("/contracts/:contract_id", h.Contract.Show)
			protected.POST("/contracts/:contract_id/cancel", h.Contract.Cancel)

			// Suspensions
			protected.GET("/contracts/:contract_id/suspensions", h.Suspension.Index)
			protected.POST("/contracts/:contract_id/suspensions", h.Suspension.Schedule)
			protected.POST("/contracts/:contract_id/suspensions/:suspension_id/stop", h.Suspension.Stop)

			// Summaries
			protected.GET("/summaries/daily", h.Summary.Daily)
			protected.GET("/summaries/monthly", h.Summary.Monthly)
			protected.GET("/summaries/export", h.Summary.Export)

			// Admin-only routes
			admin := protected.Group("")
			admin.Use(middleware.RequireAdmin())
			{
				admin.GET("/audits", h.Audit.Index)
				admin.GET("/jobs/status", h.Job.Status)
				admin.POST("/jobs/:job_name/trigger", h.Job.Trigger)
			}
		}
	}

	return router
}

func scheduleJobs(worker *jobs.Worker, svcs *services.Services, cfg *config.Config) {
	// Daily reconciliation run just after the configured hour. The jobs
	// are idempotent, so overlap with a manual trigger is safe.
	worker.ScheduleDailyAt(cfg.ReconciliationHourUTC, 15, time.UTC, func(ctx context.Context) error {
		logger.Info("[Job] Running daily reconciliation...")
		return svcs.Reconciliation.RunDaily(ctx)
	})

	logger.Info("Scheduled recurring jobs")
}
