// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"fuelbook/internal/domain/delivery"
	"fuelbook/internal/domain/metering"
	"fuelbook/internal/domain/pricing"
	"fuelbook/internal/domain/reconciliation"
	"fuelbook/internal/domain/variance"
	"fuelbook/internal/infrastructure/http/v1/handlers"
	"fuelbook/internal/infrastructure/http/v1/middleware"
	"fuelbook/internal/infrastructure/storage/postgres"
	"fuelbook/internal/infrastructure/storage/postgres/inventory_repo"
	"fuelbook/internal/infrastructure/storage/postgres/ledger_repo"
	"fuelbook/internal/infrastructure/storage/postgres/recon_repo"
	"fuelbook/pkg/logger"
)

// RouterConfig holds the wired services and repositories the API serves.
type RouterConfig struct {
	// Pool is the database connection pool (for health checks)
	Pool *postgres.Pool

	// Logger for request logging
	Logger *logger.Logger

	// Domain services
	Deliveries      *delivery.Service
	Reconciliations *reconciliation.Service
	Prices          *pricing.Service
	Alerts          *variance.Service
	Metering        *metering.Service

	// Repositories backing the read endpoints
	TankRepo         *inventory_repo.TankRepo
	LayerRepo        *inventory_repo.LayerRepo
	DeliveryRepo     *inventory_repo.DeliveryRepo
	ReconRepo        *recon_repo.ReconRepo
	ThresholdRepo    *recon_repo.ThresholdRepo
	NotificationRepo *recon_repo.NotificationRepo
	PriceRepo        *ledger_repo.PriceRepo
	EntryRepo        *ledger_repo.EntryRepo
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	base := handlers.NewBaseHandler()

	deliveryHandler := handlers.NewDeliveryHandler(base, cfg.Deliveries, cfg.DeliveryRepo)
	reconHandler := handlers.NewReconciliationHandler(base, cfg.Reconciliations, cfg.ReconRepo, cfg.EntryRepo)
	pricingHandler := handlers.NewPricingHandler(base, cfg.Prices, cfg.PriceRepo)
	thresholdHandler := handlers.NewThresholdHandler(base, cfg.Alerts, cfg.ThresholdRepo)
	notificationHandler := handlers.NewNotificationHandler(base, cfg.NotificationRepo)
	meteringHandler := handlers.NewMeteringHandler(base, cfg.Metering)
	tankHandler := handlers.NewTankHandler(base, cfg.TankRepo, cfg.LayerRepo)
	fuelTypeHandler := handlers.NewFuelTypeHandler(base)

	// API v1
	api := router.Group("/api/v1")
	api.Use(middleware.Actor())
	{
		deliveryHandler.RegisterRoutes(api.Group("/deliveries"))
		reconHandler.RegisterRoutes(api.Group("/reconciliations"))
		pricingHandler.RegisterRoutes(api.Group("/prices"))
		thresholdHandler.RegisterRoutes(api.Group("/thresholds"))
		notificationHandler.RegisterRoutes(api.Group("/notifications"))
		fuelTypeHandler.RegisterRoutes(api.Group("/fuel-types"))

		tanks := api.Group("/tanks")
		{
			tanks.GET("/:id", tankHandler.Get)
			tanks.GET("/:id/layers", tankHandler.Layers)
			tanks.GET("/:id/deliveries", deliveryHandler.ListByTank)
			tanks.GET("/:id/reconciliations", reconHandler.ListByTank)
			tanks.GET("/:id/threshold", thresholdHandler.GetByTank)
		}

		api.GET("/stations/:id/tanks", tankHandler.ListByStation)

		api.POST("/meters", meteringHandler.CreateMeter)
		api.POST("/meter-readings", meteringHandler.CreateReading)
		api.POST("/dip-readings", meteringHandler.CreateDip)
	}

	return router
}
