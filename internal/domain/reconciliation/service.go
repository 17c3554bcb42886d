package reconciliation

import (
	"context"
	"fmt"
	"time"

	"fuelbook/internal/core/apperror"
	"fuelbook/internal/core/id"
	"fuelbook/internal/core/tx"
	"fuelbook/internal/core/types"
	"fuelbook/internal/domain/audit"
	"fuelbook/internal/domain/delivery"
	"fuelbook/internal/domain/fifo"
	"fuelbook/internal/domain/ledger"
	"fuelbook/internal/domain/metering"
	"fuelbook/internal/domain/tank"
	"fuelbook/internal/domain/variance"
	"fuelbook/pkg/logger"
)

// Service orchestrates the daily close for one tank/day.
//
// The pipeline is a single pass with no retries across steps: opening
// stock resolution, totals aggregation, FIFO consumption, record and
// consumption log persistence, ledger posting, tank volume update and the
// audit entry all run in one serializable transaction keyed by the tank
// row lock. Variance checking runs after commit: its failure can never
// roll back a committed close.
type Service struct {
	repo       Repository
	tanks      tank.Repository
	deliveries delivery.Repository
	meters     metering.MeterRepository
	dips       metering.DipRepository
	engine     *fifo.Engine
	poster     *ledger.Service
	alerts     *variance.Service
	auditor    audit.Recorder
	txManager  tx.Manager
	clock      types.Clock
}

// NewService creates a reconciliation processor.
func NewService(
	repo Repository,
	tanks tank.Repository,
	deliveries delivery.Repository,
	meters metering.MeterRepository,
	dips metering.DipRepository,
	engine *fifo.Engine,
	poster *ledger.Service,
	alerts *variance.Service,
	auditor audit.Recorder,
	txManager tx.Manager,
	clock types.Clock,
) *Service {
	if clock == nil {
		clock = types.SystemClock{}
	}
	return &Service{
		repo:       repo,
		tanks:      tanks,
		deliveries: deliveries,
		meters:     meters,
		dips:       dips,
		engine:     engine,
		poster:     poster,
		alerts:     alerts,
		auditor:    auditor,
		txManager:  txManager,
		clock:      clock,
	}
}

// Process runs the daily close and returns the new reconciliation's id.
// The operation either commits completely or leaves no trace.
func (s *Service) Process(ctx context.Context, in Input) (id.ID, error) {
	if err := validateInput(in); err != nil {
		return id.Nil(), err
	}
	if in.ValuationMethod == "" {
		in.ValuationMethod = MethodFIFO
	}
	if in.ValuationMethod != MethodFIFO {
		return id.Nil(), apperror.NewEnumViolation("reconciliation", "valuation_method", in.ValuationMethod)
	}

	var record *Record
	err := s.txManager.RunSerializable(ctx, func(ctx context.Context) error {
		t, err := s.tanks.GetForUpdate(ctx, in.TankID)
		if err != nil {
			return err
		}

		exists, err := s.repo.ExistsForDate(ctx, in.TankID, in.Date)
		if err != nil {
			return fmt.Errorf("check existing reconciliation: %w", err)
		}
		if exists {
			return apperror.NewDuplicate("reconciliation", "tank/date",
				fmt.Sprintf("%s/%s", in.TankID, in.Date.Format("2006-01-02")))
		}

		actualClosing := types.RoundVolume(in.ActualClosing)
		if actualClosing.GreaterThan(t.Capacity) {
			return apperror.NewInvalidInput("actual closing stock exceeds tank capacity").
				WithDetail("capacity_liters", t.Capacity)
		}

		opening, err := s.resolveOpeningStock(ctx, t, in.Date)
		if err != nil {
			return err
		}

		delivered, err := s.deliveries.SumVolumeForDate(ctx, in.TankID, in.Date)
		if err != nil {
			return fmt.Errorf("sum deliveries: %w", err)
		}
		dispensed, err := s.meters.SumDispensedForDate(ctx, in.TankID, in.Date)
		if err != nil {
			return fmt.Errorf("sum dispensed: %w", err)
		}

		consumed, err := s.engine.Consume(ctx, in.TankID, dispensed)
		if err != nil {
			return err
		}

		quality := QualityComplete
		if consumed.Incomplete {
			quality = QualityPartialLayers
		}

		sales := types.RoundMoney(in.TotalSales)
		record = &Record{
			ID:                    id.New(),
			TankID:                in.TankID,
			Date:                  in.Date,
			OpeningStock:          opening,
			Delivered:             types.RoundVolume(delivered),
			Dispensed:             types.RoundVolume(dispensed),
			TheoreticalClosing:    types.RoundVolume(opening.Add(delivered).Sub(dispensed)),
			ActualClosing:         actualClosing,
			TotalSales:            sales,
			TotalCOGS:             consumed.TotalCOGS,
			GrossProfit:           types.RoundMoney(sales.Sub(consumed.TotalCOGS)),
			ValuationMethod:       in.ValuationMethod,
			ValuationQuality:      quality,
			OpeningInventoryValue: consumed.OpeningInventoryValue,
			ClosingInventoryValue: consumed.ClosingInventoryValue,
			RecordedBy:            in.RecordedBy,
			CreatedAt:             s.clock.Now(),
		}

		if err := s.repo.Create(ctx, record); err != nil {
			return fmt.Errorf("create reconciliation: %w", err)
		}

		if len(consumed.Trace) > 0 {
			entries := make([]*ConsumptionLogEntry, 0, len(consumed.Trace))
			for i, te := range consumed.Trace {
				entries = append(entries, &ConsumptionLogEntry{
					ID:               id.New(),
					ReconciliationID: record.ID,
					LayerID:          te.LayerID,
					Sequence:         i + 1,
					VolumeConsumed:   te.VolumeConsumed,
					CostPerLiter:     te.CostPerLiter,
					ValuationImpact:  te.Cost,
					CreatedAt:        record.CreatedAt,
				})
			}
			if err := s.repo.CreateConsumptionLog(ctx, entries); err != nil {
				return fmt.Errorf("create consumption log: %w", err)
			}
		}

		if err := s.poster.Post(ctx, ledger.PostInput{
			StationID:        t.StationID,
			FuelType:         t.FuelType,
			Date:             in.Date,
			ReconciliationID: record.ID,
			TotalSales:       record.TotalSales,
			TotalCOGS:        record.TotalCOGS,
		}); err != nil {
			return err
		}

		if err := s.tanks.SetVolume(ctx, t.ID, actualClosing); err != nil {
			return fmt.Errorf("update tank volume: %w", err)
		}

		return s.auditor.Record(ctx, audit.Entry{
			Table:    "daily_reconciliations",
			RecordID: record.ID,
			Action:   audit.ActionCreate,
			OldValues: map[string]any{
				"current_volume_liters": t.CurrentVolume,
			},
			NewValues: map[string]any{
				"tank_id":                     record.TankID,
				"reconciliation_date":         record.Date,
				"opening_stock_liters":        record.OpeningStock,
				"actual_closing_stock_liters": record.ActualClosing,
				"total_cogs":                  record.TotalCOGS,
				"total_sales":                 record.TotalSales,
				"valuation_quality":           record.ValuationQuality,
			},
			ActorID: in.RecordedBy,
		})
	})
	if err != nil {
		return id.Nil(), err
	}

	// Variance and low-stock checks run outside the committed transaction;
	// they log and swallow their own failures.
	s.alerts.CheckVariance(ctx, record.TankID, record.ID, variance.VarianceInput{
		Opening:       record.OpeningStock,
		Delivered:     record.Delivered,
		Dispensed:     record.Dispensed,
		ActualClosing: record.ActualClosing,
	})
	s.alerts.CheckLowStock(ctx, record.TankID, record.ActualClosing)

	logger.Info(ctx, "reconciliation committed",
		"reconciliation_id", record.ID,
		"tank_id", record.TankID,
		"date", record.Date.Format("2006-01-02"),
		"cogs", record.TotalCOGS,
		"quality", record.ValuationQuality,
	)
	return record.ID, nil
}

// resolveOpeningStock picks the opening figure in priority order: previous
// day's reconciliation actual closing, previous day's evening dip reading,
// then the tank's current recorded volume.
func (s *Service) resolveOpeningStock(ctx context.Context, t *tank.Tank, date time.Time) (types.Volume, error) {
	prevDay := date.AddDate(0, 0, -1)

	prev, err := s.repo.GetByTankAndDate(ctx, t.ID, prevDay)
	if err != nil && !apperror.IsNotFound(err) {
		return types.Zero(), fmt.Errorf("load previous reconciliation: %w", err)
	}
	if prev != nil {
		return prev.ActualClosing, nil
	}

	dip, err := s.dips.GetEveningDip(ctx, t.ID, prevDay)
	if err != nil && !apperror.IsNotFound(err) {
		return types.Zero(), fmt.Errorf("load evening dip: %w", err)
	}
	if dip != nil {
		return types.RoundVolume(dip.Volume), nil
	}

	return t.CurrentVolume, nil
}

func validateInput(in Input) error {
	if id.IsNil(in.TankID) {
		return apperror.NewMissingField("tank_id")
	}
	if id.IsNil(in.RecordedBy) {
		return apperror.NewMissingField("recorded_by")
	}
	if in.Date.IsZero() {
		return apperror.NewMissingField("reconciliation_date")
	}
	if in.ActualClosing.IsNegative() {
		return apperror.NewInvalidInput("actual closing stock must not be negative")
	}
	if in.TotalSales.IsNegative() {
		return apperror.NewInvalidInput("total sales must not be negative")
	}
	return nil
}
