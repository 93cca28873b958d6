package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/stockflow/backend/internal/application/catalog"
	orderapp "github.com/stockflow/backend/internal/application/orders"
	reportapp "github.com/stockflow/backend/internal/application/report"
	shipmentapp "github.com/stockflow/backend/internal/application/shipments"
	"github.com/stockflow/backend/internal/infrastructure/config"
	"github.com/stockflow/backend/internal/infrastructure/logger"
	"github.com/stockflow/backend/internal/infrastructure/marketplace"
	"github.com/stockflow/backend/internal/infrastructure/notification"
	"github.com/stockflow/backend/internal/infrastructure/persistence"
	"github.com/stockflow/backend/internal/infrastructure/scheduler"
	"github.com/stockflow/backend/internal/infrastructure/telemetry"
	"github.com/stockflow/backend/internal/interfaces/http/handler"
	"github.com/stockflow/backend/internal/interfaces/http/middleware"
	"github.com/stockflow/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log := logger.New(cfg.Log)
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting StockFlow backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Tracing
	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	if err := telemetry.RegisterDBTracing(db.DB, cfg.Telemetry, log); err != nil {
		log.Warn("Failed to register database tracing", zap.Error(err))
	}

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	shipmentRepo := persistence.NewGormShipmentRepository(db.DB)
	dashboardRepo := persistence.NewGormDashboardRepository(db.DB)

	// Application services
	catalogService := catalogapp.NewService(productRepo)
	orderService := orderapp.NewService(db, orderRepo, productRepo, log, cfg.Maintenance.CancelledRetention)
	shipmentService := shipmentapp.NewService(db, shipmentRepo, productRepo, orderRepo, log)
	reportService := reportapp.NewService(dashboardRepo)

	if cfg.Notification.Enabled {
		orderService.SetNotifier(notification.NewWhatsAppNotifier(cfg.Notification, log))
		log.Info("Order notifications enabled")
	}

	// Background schedulers
	if cfg.Sync.Enabled {
		client := marketplace.NewAmazonClient(cfg.Sync)
		orderSync := scheduler.NewOrderSyncScheduler(
			client, orderService, orderRepo, productRepo, log,
			cfg.Sync.Interval, cfg.Sync.FetchLimit,
		)
		go orderSync.Run(ctx)
		log.Info("Marketplace order sync enabled",
			zap.Duration("interval", cfg.Sync.Interval),
			zap.Int("fetch_limit", cfg.Sync.FetchLimit),
		)
	}

	if cfg.Maintenance.PurgeEnabled {
		maintenance := scheduler.NewMaintenanceScheduler(orderService, log, cfg.Maintenance.PurgeInterval)
		go maintenance.Run(ctx)
		log.Info("Cancelled order purge enabled",
			zap.Duration("interval", cfg.Maintenance.PurgeInterval),
			zap.Duration("retention", cfg.Maintenance.CancelledRetention),
		)
	}

	// HTTP handlers
	productHandler := handler.NewProductHandler(catalogService)
	orderHandler := handler.NewOrderHandler(orderService)
	shipmentHandler := handler.NewShipmentHandler(shipmentService)
	dashboardHandler := handler.NewDashboardHandler(reportService)
	systemHandler := handler.NewSystemHandler(cfg.App.Name, cfg.App.Env)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName, cfg.Telemetry.Enabled))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.GET("/health", healthHandler(db))

	// API routes
	catalogRoutes := router.NewDomainGroup("catalog", "/products")
	catalogRoutes.POST("", productHandler.Create)
	catalogRoutes.GET("", productHandler.List)
	catalogRoutes.GET("/:id", productHandler.GetByID)
	catalogRoutes.GET("/sku/:sku", productHandler.GetBySKU)
	catalogRoutes.PUT("/:id", productHandler.Update)
	catalogRoutes.DELETE("/:id", productHandler.Delete)

	orderRoutes := router.NewDomainGroup("orders", "/orders")
	orderRoutes.POST("", orderHandler.Create)
	orderRoutes.GET("", orderHandler.List)
	orderRoutes.GET("/:id", orderHandler.GetByID)
	orderRoutes.POST("/:id/complete", orderHandler.Complete)
	orderRoutes.POST("/:id/cancel", orderHandler.Cancel)
	orderRoutes.POST("/:id/hold", orderHandler.Hold)
	orderRoutes.POST("/:id/resume", orderHandler.Resume)
	orderRoutes.POST("/:id/allocate", orderHandler.Allocate)

	shipmentRoutes := router.NewDomainGroup("shipments", "/shipments")
	shipmentRoutes.POST("", shipmentHandler.Create)
	shipmentRoutes.GET("", shipmentHandler.List)
	shipmentRoutes.GET("/:id", shipmentHandler.GetByID)
	shipmentRoutes.PUT("/:id/status", shipmentHandler.UpdateStatus)
	shipmentRoutes.POST("/:id/requests", shipmentHandler.AddRequest)
	shipmentRoutes.POST("/:id/requests/batch", shipmentHandler.BatchAddRequests)
	shipmentRoutes.PUT("/requests/:id", shipmentHandler.UpdateRequestQuantity)
	shipmentRoutes.DELETE("/requests/:id", shipmentHandler.DeleteRequest)
	shipmentRoutes.DELETE("/:id", shipmentHandler.Delete)
	shipmentRoutes.GET("/:id/invoice", shipmentHandler.Invoice)

	dashboardRoutes := router.NewDomainGroup("dashboard", "/dashboard")
	dashboardRoutes.GET("/stats", dashboardHandler.Stats)
	dashboardRoutes.GET("/low-stock", dashboardHandler.LowStock)

	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/ping", systemHandler.Ping)
	systemRoutes.GET("/info", systemHandler.Info)

	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(catalogRoutes).
		Register(orderRoutes).
		Register(shipmentRoutes).
		Register(dashboardRoutes).
		Register(systemRoutes).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler reports liveness of the server and its database connection
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			reqLog := logger.GetGinLogger(c)
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
