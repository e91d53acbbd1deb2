package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/partbridge/marketplace-api/internal/auth"
	"github.com/partbridge/marketplace-api/internal/config"
	"github.com/partbridge/marketplace-api/internal/database"
	"github.com/partbridge/marketplace-api/internal/domain"
	"github.com/partbridge/marketplace-api/internal/erp"
	"github.com/partbridge/marketplace-api/internal/http/handler"
	"github.com/partbridge/marketplace-api/internal/http/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/partbridge/marketplace-api/docs" // Import generated swagger docs
)

type Router struct {
	cfg                  *config.Config
	logger               *zap.Logger
	db                   *gorm.DB
	erpClient            *erp.Client
	authMiddleware       *auth.Middleware
	rateLimiter          *middleware.RateLimiter
	rfqHandler           *handler.RFQHandler
	supplierQuoteHandler *handler.SupplierQuoteHandler
	orderHandler         *handler.OrderHandler
	purchaseOrderHandler *handler.PurchaseOrderHandler
	supplierHandler      *handler.SupplierHandler
	messageHandler       *handler.MessageHandler
	notificationHandler  *handler.NotificationHandler
	fileHandler          *handler.FileHandler
	exportHandler        *handler.ExportHandler
	authHandler          *handler.AuthHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	erpClient *erp.Client,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	rfqHandler *handler.RFQHandler,
	supplierQuoteHandler *handler.SupplierQuoteHandler,
	orderHandler *handler.OrderHandler,
	purchaseOrderHandler *handler.PurchaseOrderHandler,
	supplierHandler *handler.SupplierHandler,
	messageHandler *handler.MessageHandler,
	notificationHandler *handler.NotificationHandler,
	fileHandler *handler.FileHandler,
	exportHandler *handler.ExportHandler,
	authHandler *handler.AuthHandler,
) *Router {
	return &Router{
		cfg:                  cfg,
		logger:               logger,
		db:                   db,
		erpClient:            erpClient,
		authMiddleware:       authMiddleware,
		rateLimiter:          rateLimiter,
		rfqHandler:           rfqHandler,
		supplierQuoteHandler: supplierQuoteHandler,
		orderHandler:         orderHandler,
		purchaseOrderHandler: purchaseOrderHandler,
		supplierHandler:      supplierHandler,
		messageHandler:       messageHandler,
		notificationHandler:  notificationHandler,
		fileHandler:          fileHandler,
		exportHandler:        exportHandler,
		authHandler:          authHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.Metrics)
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP) // Apply IP-based rate limiting globally

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with detailed stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats":   stats,
		})
	})

	// Combined readiness check (checks all dependencies)
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

		// Check database
		if err := database.HealthCheck(rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}

		// Check ERP connection when configured. A degraded ERP does not
		// fail readiness since payment reconciliation is a background concern.
		if rt.erpClient != nil && rt.erpClient.IsEnabled() {
			erpStatus := rt.erpClient.HealthCheck(r.Context())
			checks["erp"] = map[string]interface{}{
				"status": erpStatus.Status,
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if allHealthy {
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "healthy",
				"checks": checks,
			})
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "unhealthy",
				"checks": checks,
			})
		}
	})

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.authMiddleware.Authenticate)
		r.Use(rt.rateLimiter.Limit)

		// Auth & users
		r.Get("/auth/me", rt.authHandler.Me)
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.RequireAdmin)
			r.Get("/users", rt.authHandler.ListUsers)
			r.Post("/users/{id}/active", rt.authHandler.SetUserActive)
		})

		// RFQs
		r.Route("/rfqs", func(r chi.Router) {
			r.Get("/", rt.rfqHandler.List)
			r.Post("/", rt.rfqHandler.Create)
			r.Get("/{id}", rt.rfqHandler.GetByID)
			r.Patch("/{id}", rt.rfqHandler.Update)
			r.Post("/{id}/decision", rt.rfqHandler.Decide)
			r.Get("/{id}/supplier-quotes", rt.rfqHandler.ListSupplierQuotes)

			// Supplier bidding
			r.With(rt.authMiddleware.RequireRole(domain.RoleSupplier)).
				Post("/{id}/supplier-quotes", rt.rfqHandler.SubmitSupplierQuote)

			// Back-office operations
			r.Group(func(r chi.Router) {
				r.Use(rt.authMiddleware.RequireAdmin)
				r.Post("/admin", rt.rfqHandler.CreateForCustomer)
				r.Post("/{id}/quote", rt.rfqHandler.CreateSalesQuote)
				r.Post("/{id}/dispatch", rt.rfqHandler.Dispatch)
				r.Get("/{id}/supplier-quotes/compare", rt.rfqHandler.CompareSupplierQuotes)
				r.Get("/pipeline", rt.rfqHandler.Pipeline)
			})
		})

		// Supplier quotes
		r.Route("/supplier-quotes", func(r chi.Router) {
			r.With(rt.authMiddleware.RequireRole(domain.RoleSupplier)).
				Get("/mine", rt.supplierQuoteHandler.ListMine)
			r.Get("/{id}", rt.supplierQuoteHandler.GetByID)
			r.With(rt.authMiddleware.RequireAdmin).
				Post("/{id}/decision", rt.supplierQuoteHandler.Decide)
		})

		// Orders
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", rt.orderHandler.List)
			r.Get("/{id}", rt.orderHandler.GetByID)
			r.Get("/{id}/activities", rt.orderHandler.Activities)

			r.Group(func(r chi.Router) {
				r.Use(rt.authMiddleware.RequireAdmin)
				r.Post("/{id}/stage", rt.orderHandler.AdvanceStage)
				r.Post("/{id}/shipments", rt.orderHandler.AddShipment)
				r.Post("/{id}/payment", rt.orderHandler.MarkPaid)
				r.Post("/{id}/archive", rt.orderHandler.Archive)
				r.Post("/{id}/unarchive", rt.orderHandler.Unarchive)
			})
		})

		// Purchase orders
		r.Route("/purchase-orders", func(r chi.Router) {
			r.Get("/", rt.purchaseOrderHandler.List)
			r.With(rt.authMiddleware.RequireAdmin).
				Post("/", rt.purchaseOrderHandler.Create)
			r.Get("/{id}", rt.purchaseOrderHandler.GetByID)
			r.Post("/{id}/status", rt.purchaseOrderHandler.SetStatus)
			r.Get("/{id}/activities", rt.purchaseOrderHandler.Activities)
		})

		// Supplier directory
		r.Route("/suppliers", func(r chi.Router) {
			r.With(rt.authMiddleware.RequireRole(domain.RoleSupplier)).
				Get("/me", rt.supplierHandler.GetOwn)
			r.Get("/", rt.supplierHandler.List)
			r.With(rt.authMiddleware.RequireAdmin).
				Post("/", rt.supplierHandler.Create)
			r.Get("/{id}", rt.supplierHandler.GetByID)
			r.Patch("/{id}", rt.supplierHandler.Update)
			r.With(rt.authMiddleware.RequireAdmin).
				Delete("/{id}", rt.supplierHandler.Deactivate)
			r.Get("/{id}/stats", rt.supplierHandler.Stats)
		})

		// Messaging
		r.Route("/messages", func(r chi.Router) {
			r.Post("/", rt.messageHandler.Send)
			r.Get("/threads", rt.messageHandler.Threads)
			r.Get("/threads/{threadId}", rt.messageHandler.Thread)
			r.Get("/unread-count", rt.messageHandler.UnreadCount)
		})

		// Notifications
		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", rt.notificationHandler.List)
			r.Get("/unread-count", rt.notificationHandler.UnreadCount)
			r.Post("/read-all", rt.notificationHandler.MarkAllRead)
			r.Post("/{id}/read", rt.notificationHandler.MarkRead)
		})

		// Files
		r.Route("/files", func(r chi.Router) {
			r.Get("/", rt.fileHandler.ListMine)
			r.Post("/upload", rt.fileHandler.Upload)
			r.Get("/{id}", rt.fileHandler.GetByID)
			r.Get("/{id}/download", rt.fileHandler.Download)
			r.Delete("/{id}", rt.fileHandler.Delete)
		})

		// Exports
		r.Route("/exports", func(r chi.Router) {
			r.Use(rt.authMiddleware.RequireAdmin)
			r.Get("/orders", rt.exportHandler.Orders)
			r.Get("/rfqs", rt.exportHandler.RFQs)
			r.Get("/suppliers", rt.exportHandler.Suppliers)
		})
	})

	return r
}
