package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/partbridge/marketplace-api/docs"
	"github.com/partbridge/marketplace-api/internal/auth"
	"github.com/partbridge/marketplace-api/internal/config"
	"github.com/partbridge/marketplace-api/internal/database"
	"github.com/partbridge/marketplace-api/internal/erp"
	"github.com/partbridge/marketplace-api/internal/http/handler"
	"github.com/partbridge/marketplace-api/internal/http/middleware"
	"github.com/partbridge/marketplace-api/internal/http/router"
	"github.com/partbridge/marketplace-api/internal/jobs"
	"github.com/partbridge/marketplace-api/internal/logger"
	"github.com/partbridge/marketplace-api/internal/repository"
	"github.com/partbridge/marketplace-api/internal/service"
	"github.com/partbridge/marketplace-api/internal/storage"
	"go.uber.org/zap"
)

// @title PartBridge Marketplace API
// @version 1.0
// @description RFQ-to-order marketplace API for custom manufactured parts

// @contact.name API Support
// @contact.email support@partbridge.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	// Configure Swagger host based on environment
	switch basicCfg.App.Environment {
	case "staging":
		docs.SwaggerInfo.Host = "api-staging.partbridge.io"
	case "production":
		docs.SwaggerInfo.Host = "api.partbridge.io"
	default:
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// Load full configuration with secrets
	// In development: uses environment variables
	// In staging/production: fetches from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	// Connect to database with retry logic
	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Initialize storage
	fileStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	// Initialize ERP connection (optional, read-only, for payment reconciliation)
	// The app continues without it if not configured or unreachable
	var erpClient *erp.Client
	if cfg.ERP.Enabled {
		erpClient, err = erp.NewClient(&cfg.ERP, log)
		if err != nil {
			log.Warn("ERP connection failed, continuing without it", zap.Error(err))
		} else if erpClient != nil {
			log.Info("ERP connected successfully",
				zap.Int("max_open_conns", cfg.ERP.MaxOpenConns),
				zap.Int("query_timeout_seconds", cfg.ERP.QueryTimeout),
			)
		}
	} else {
		log.Info("ERP not configured, payment reconciliation disabled")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	rfqRepo := repository.NewRFQRepository(db)
	salesQuoteRepo := repository.NewSalesQuoteRepository(db)
	supplierQuoteRepo := repository.NewSupplierQuoteRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	purchaseOrderRepo := repository.NewPurchaseOrderRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	fileRepo := repository.NewFileRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	// Initialize services
	userService := service.NewUserService(userRepo, log)
	rfqService := service.NewRFQService(rfqRepo, salesQuoteRepo, orderRepo, supplierRepo, activityRepo, notificationRepo, log)
	supplierQuoteService := service.NewSupplierQuoteService(supplierQuoteRepo, rfqRepo, supplierRepo, purchaseOrderRepo, activityRepo, notificationRepo, log)
	orderService := service.NewOrderService(orderRepo, activityRepo, notificationRepo, log)
	purchaseOrderService := service.NewPurchaseOrderService(purchaseOrderRepo, supplierQuoteRepo, supplierRepo, activityRepo, notificationRepo, log)
	supplierService := service.NewSupplierService(supplierRepo, supplierQuoteRepo, purchaseOrderRepo, log)
	messageService := service.NewMessageService(messageRepo, userRepo, notificationRepo, log)
	notificationService := service.NewNotificationService(notificationRepo, log)
	fileService := service.NewFileService(fileRepo, fileStorage, log)
	exportService := service.NewExportService(rfqRepo, orderRepo, supplierRepo, log)
	paymentReconcileService := service.NewPaymentReconcileService(orderRepo, erpClient, activityRepo, notificationRepo, log)

	// Initialize middleware
	authMiddleware := auth.NewMiddleware(cfg, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Initialize handlers
	rfqHandler := handler.NewRFQHandler(rfqService, supplierQuoteService, log)
	supplierQuoteHandler := handler.NewSupplierQuoteHandler(supplierQuoteService, log)
	orderHandler := handler.NewOrderHandler(orderService, log)
	purchaseOrderHandler := handler.NewPurchaseOrderHandler(purchaseOrderService, log)
	supplierHandler := handler.NewSupplierHandler(supplierService, log)
	messageHandler := handler.NewMessageHandler(messageService, log)
	notificationHandler := handler.NewNotificationHandler(notificationService, log)
	fileHandler := handler.NewFileHandler(fileService, log)
	exportHandler := handler.NewExportHandler(exportService, log)
	authHandler := handler.NewAuthHandler(userService, log)

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		erpClient,
		authMiddleware,
		rateLimiter,
		rfqHandler,
		supplierQuoteHandler,
		orderHandler,
		purchaseOrderHandler,
		supplierHandler,
		messageHandler,
		notificationHandler,
		fileHandler,
		exportHandler,
		authHandler,
	)

	// Initialize and start scheduler for background jobs
	scheduler := jobs.NewScheduler(log)

	// Quote expiry sweep. runAtStartup=true catches quotes that expired
	// while the service was down.
	if err := jobs.RegisterQuoteExpiryJob(
		scheduler,
		rfqService,
		log,
		cfg.Jobs.QuoteExpirySchedule,
		cfg.Jobs.QuoteExpiryTimeoutDuration(),
		true,
	); err != nil {
		log.Error("Failed to register quote expiry job", zap.Error(err))
	}

	// Payment reconciliation against the ERP, only when the connection is up
	if erpClient != nil && erpClient.IsEnabled() {
		if err := jobs.RegisterPaymentReconcileJob(
			scheduler,
			paymentReconcileService,
			log,
			cfg.Jobs.PaymentReconcileSchedule,
			cfg.Jobs.PaymentReconcileTimeoutDuration(),
		); err != nil {
			log.Error("Failed to register payment reconcile job", zap.Error(err))
		}
	}

	scheduler.Start()
	log.Info("Scheduler started", zap.Strings("jobs", scheduler.GetJobNames()))

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		// Stop scheduler and wait for running jobs
		stopCtx := scheduler.Stop()
		<-stopCtx.Done()
		log.Info("Scheduler stopped")

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		// Close ERP connection if initialized
		if erpClient != nil {
			if err := erpClient.Close(); err != nil {
				log.Warn("Error closing ERP connection", zap.Error(err))
			}
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
