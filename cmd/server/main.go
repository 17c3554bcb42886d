// Package main is the entry point for the fuelbook API server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fuelbook/internal/domain/delivery"
	"fuelbook/internal/domain/fifo"
	"fuelbook/internal/domain/ledger"
	"fuelbook/internal/domain/metering"
	"fuelbook/internal/domain/pricing"
	"fuelbook/internal/domain/reconciliation"
	"fuelbook/internal/domain/variance"
	v1 "fuelbook/internal/infrastructure/http/v1"
	"fuelbook/internal/infrastructure/storage/postgres"
	"fuelbook/internal/infrastructure/storage/postgres/inventory_repo"
	"fuelbook/internal/infrastructure/storage/postgres/ledger_repo"
	"fuelbook/internal/infrastructure/storage/postgres/recon_repo"
	"fuelbook/pkg/logger"
	"fuelbook/pkg/refcode"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting fuelbook server")

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(mustEnv("DATABASE_URL"))
	if maxConns := getEnvInt("DB_MAX_CONNS", 0); maxConns > 0 {
		poolCfg.MaxConns = int32(maxConns)
	}
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	auditRepo, err := postgres.NewAuditRepo(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit store", "error", err)
	}

	// --- Repositories ---
	tankRepo := inventory_repo.NewTankRepo(txManager)
	deliveryRepo := inventory_repo.NewDeliveryRepo(txManager)
	layerRepo := inventory_repo.NewLayerRepo(txManager)
	meterRepo := inventory_repo.NewMeterRepo(txManager)
	dipRepo := inventory_repo.NewDipRepo(txManager)
	reconRepo := recon_repo.NewReconRepo(txManager)
	notificationRepo := recon_repo.NewNotificationRepo(txManager)
	thresholdRepo := recon_repo.NewThresholdRepo(txManager)
	entryRepo := ledger_repo.NewEntryRepo(txManager)
	priceRepo := ledger_repo.NewPriceRepo(txManager)

	// --- Alert rules (optional CEL predicates) ---
	rules, err := loadAlertRules()
	if err != nil {
		log.Fatalw("failed to load alert rules", "error", err)
	}

	// --- Domain services ---
	fifoEngine := fifo.NewEngine(layerRepo, nil)
	alertService := variance.NewService(notificationRepo, thresholdRepo, tankRepo, rules, nil)
	ledgerService := ledger.NewService(entryRepo, nil)
	refcodes := refcode.New(refcode.DefaultConfig("FD"))

	deliveryService := delivery.NewService(
		deliveryRepo, tankRepo, fifoEngine, alertService,
		auditRepo, refcodes, txManager, nil,
	)
	reconService := reconciliation.NewService(
		reconRepo, tankRepo, deliveryRepo, meterRepo, dipRepo,
		fifoEngine, ledgerService, alertService, auditRepo, txManager, nil,
	)
	pricingService := pricing.NewService(priceRepo, auditRepo, txManager, nil)
	meteringService := metering.NewService(meterRepo, dipRepo, tankRepo, auditRepo, txManager, nil)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:   pool,
		Logger: log,

		Deliveries:      deliveryService,
		Reconciliations: reconService,
		Prices:          pricingService,
		Alerts:          alertService,
		Metering:        meteringService,

		TankRepo:         tankRepo,
		LayerRepo:        layerRepo,
		DeliveryRepo:     deliveryRepo,
		ReconRepo:        reconRepo,
		ThresholdRepo:    thresholdRepo,
		NotificationRepo: notificationRepo,
		PriceRepo:        priceRepo,
		EntryRepo:        entryRepo,
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

// loadAlertRules reads optional CEL alert rules from ALERT_RULES_FILE.
// Missing configuration means no rules: the built-in variance bands apply
// unmodified.
func loadAlertRules() (*variance.RuleSet, error) {
	path := os.Getenv("ALERT_RULES_FILE")
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read alert rules: %w", err)
	}

	var rules []variance.Rule
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parse alert rules: %w", err)
	}

	return variance.CompileRules(rules)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
