// Package main provides a CLI tool for seeding the database with demo data:
// a station, one tank per common fuel type with a meter and an alert
// threshold, and initial selling prices.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"fuelbook/internal/core/appctx"
	"fuelbook/internal/core/id"
	"fuelbook/internal/core/types"
	"fuelbook/internal/domain/fuel"
	"fuelbook/internal/domain/metering"
	"fuelbook/internal/domain/pricing"
	"fuelbook/internal/domain/tank"
	"fuelbook/internal/domain/variance"
	"fuelbook/internal/infrastructure/storage/postgres"
	"fuelbook/internal/infrastructure/storage/postgres/inventory_repo"
	"fuelbook/internal/infrastructure/storage/postgres/ledger_repo"
	"fuelbook/internal/infrastructure/storage/postgres/recon_repo"
	"fuelbook/pkg/logger"
)

// demoTank describes one seeded tank and its opening price.
type demoTank struct {
	fuelType      fuel.Type
	capacity      string
	volume        string
	pricePerLiter string
}

var demoTanks = []demoTank{
	{fuel.Petrol, "20000", "12000", "1580.00"},
	{fuel.Diesel, "25000", "15000", "1450.50"},
	{fuel.Kerosene, "10000", "4000", "1220.00"},
	{fuel.LPGAutogas, "8000", "3000", "980.00"},
}

func main() {
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	txManager := postgres.NewTxManager(pool)
	auditRepo, err := postgres.NewAuditRepo(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit store", "error", err)
	}

	tankRepo := inventory_repo.NewTankRepo(txManager)
	meterRepo := inventory_repo.NewMeterRepo(txManager)
	dipRepo := inventory_repo.NewDipRepo(txManager)
	thresholdRepo := recon_repo.NewThresholdRepo(txManager)
	notificationRepo := recon_repo.NewNotificationRepo(txManager)
	priceRepo := ledger_repo.NewPriceRepo(txManager)

	alertService := variance.NewService(notificationRepo, thresholdRepo, tankRepo, nil, nil)
	pricingService := pricing.NewService(priceRepo, auditRepo, txManager, nil)
	meteringService := metering.NewService(meterRepo, dipRepo, tankRepo, auditRepo, txManager, nil)

	seederID := id.New()
	stationID := id.New()
	ctx = appctx.WithActor(ctx, &appctx.Actor{UserID: seederID, Username: "seed"})

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	err = txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		for i, dt := range demoTanks {
			t := &tank.Tank{
				ID:            id.New(),
				StationID:     stationID,
				FuelType:      dt.fuelType,
				Capacity:      types.MustVolume(dt.capacity),
				CurrentVolume: types.MustVolume(dt.volume),
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := tankRepo.Create(ctx, t); err != nil {
				return fmt.Errorf("create %s tank: %w", dt.fuelType, err)
			}

			if _, err := meteringService.RegisterMeter(ctx, metering.MeterInput{
				TankID:      t.ID,
				MeterNumber: fmt.Sprintf("PUMP-%02d", i+1),
				RecordedBy:  seederID,
			}); err != nil {
				return fmt.Errorf("register meter for %s tank: %w", dt.fuelType, err)
			}

			if err := alertService.CreateThresholds(ctx, variance.ThresholdInput{
				TankID: t.ID,
			}); err != nil {
				return fmt.Errorf("create thresholds for %s tank: %w", dt.fuelType, err)
			}

			if _, err := pricingService.Create(ctx, pricing.PriceInput{
				StationID:     stationID,
				FuelType:      dt.fuelType,
				PricePerLiter: types.MustMoney(dt.pricePerLiter),
				EffectiveFrom: today,
				SetBy:         seederID,
			}); err != nil {
				return fmt.Errorf("create %s price: %w", dt.fuelType, err)
			}

			log.Infow("seeded tank",
				"tank_id", t.ID,
				"fuel_type", dt.fuelType,
				"capacity", t.Capacity,
			)
		}
		return nil
	})
	if err != nil {
		log.Fatalw("seeding failed", "error", err)
	}

	log.Infow("seeding completed successfully", "station_id", stationID)
}
