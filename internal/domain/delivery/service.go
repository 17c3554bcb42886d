package delivery

import (
	"context"
	"fmt"

	"fuelbook/internal/core/apperror"
	"fuelbook/internal/core/id"
	"fuelbook/internal/core/tx"
	"fuelbook/internal/core/types"
	"fuelbook/internal/domain/audit"
	"fuelbook/internal/domain/fifo"
	"fuelbook/internal/domain/tank"
	"fuelbook/internal/domain/variance"
	"fuelbook/pkg/logger"
	"fuelbook/pkg/refcode"
)

// Service records fuel deliveries. Each Record call is one atomic unit:
// delivery row, tank volume, FIFO layer, lazy threshold and audit entry
// all commit together or roll back together.
type Service struct {
	repo       Repository
	tanks      tank.Repository
	engine     *fifo.Engine
	thresholds *variance.Service
	auditor    audit.Recorder
	refcodes   *refcode.Generator
	txManager  tx.Manager
	clock      types.Clock
}

// NewService creates a delivery intake service.
func NewService(
	repo Repository,
	tanks tank.Repository,
	engine *fifo.Engine,
	thresholds *variance.Service,
	auditor audit.Recorder,
	refcodes *refcode.Generator,
	txManager tx.Manager,
	clock types.Clock,
) *Service {
	if clock == nil {
		clock = types.SystemClock{}
	}
	return &Service{
		repo:       repo,
		tanks:      tanks,
		engine:     engine,
		thresholds: thresholds,
		auditor:    auditor,
		refcodes:   refcodes,
		txManager:  txManager,
		clock:      clock,
	}
}

// Record validates and persists a delivery, grows the tank and opens a new
// cost layer. Returns the new delivery's id.
func (s *Service) Record(ctx context.Context, in Input) (id.ID, error) {
	if err := validateInput(in); err != nil {
		return id.Nil(), err
	}

	var created *Delivery
	err := s.txManager.RunSerializable(ctx, func(ctx context.Context) error {
		t, err := s.tanks.GetForUpdate(ctx, in.TankID)
		if err != nil {
			return err
		}
		if !t.FuelType.Valid() {
			return apperror.NewEnumViolation("tank", "fuel_type", t.FuelType)
		}

		newVolume := types.RoundVolume(t.CurrentVolume.Add(in.Volume))
		if newVolume.GreaterThan(t.Capacity) {
			return apperror.NewInvalidInput("delivery would exceed tank capacity").
				WithDetail("capacity_liters", t.Capacity).
				WithDetail("resulting_volume_liters", newVolume)
		}

		reference, err := s.refcodes.Next(ctx, in.Date, s.repo.ReferenceExists)
		if err != nil {
			return fmt.Errorf("generate reference: %w", err)
		}

		volume := types.RoundVolume(in.Volume)
		unitCost := types.RoundMoney(in.UnitCost)
		d := &Delivery{
			ID:            id.New(),
			TankID:        in.TankID,
			Reference:     reference,
			Volume:        volume,
			UnitCost:      unitCost,
			TotalCost:     types.RoundMoney(volume.Mul(unitCost)),
			DeliveryDate:  in.Date,
			DeliveryTime:  in.Time,
			Supplier:      in.Supplier,
			InvoiceNumber: in.InvoiceNumber,
			RecordedBy:    in.RecordedBy,
			CreatedAt:     s.clock.Now(),
		}

		if err := s.repo.Create(ctx, d); err != nil {
			return fmt.Errorf("create delivery: %w", err)
		}

		if err := s.tanks.SetVolume(ctx, t.ID, newVolume); err != nil {
			return fmt.Errorf("update tank volume: %w", err)
		}

		if _, err := s.engine.NewLayer(ctx, t.ID, d.ID, volume, unitCost, in.Date); err != nil {
			return err
		}

		if err := s.thresholds.EnsureDefaults(ctx, t); err != nil {
			return fmt.Errorf("ensure thresholds: %w", err)
		}

		if err := s.auditor.Record(ctx, audit.Entry{
			Table:    "fuel_deliveries",
			RecordID: d.ID,
			Action:   audit.ActionCreate,
			NewValues: map[string]any{
				"tank_id":       d.TankID,
				"reference":     d.Reference,
				"volume_liters": d.Volume,
				"unit_cost":     d.UnitCost,
				"total_cost":    d.TotalCost,
				"delivery_date": d.DeliveryDate,
			},
			ActorID: in.RecordedBy,
		}); err != nil {
			return fmt.Errorf("audit delivery: %w", err)
		}

		created = d
		return nil
	})
	if err != nil {
		return id.Nil(), err
	}

	logger.Info(ctx, "delivery recorded",
		"delivery_id", created.ID,
		"tank_id", created.TankID,
		"reference", created.Reference,
		"volume", created.Volume,
	)
	return created.ID, nil
}

func validateInput(in Input) error {
	if id.IsNil(in.TankID) {
		return apperror.NewMissingField("tank_id")
	}
	if id.IsNil(in.RecordedBy) {
		return apperror.NewMissingField("recorded_by")
	}
	if in.Date.IsZero() {
		return apperror.NewMissingField("delivery_date")
	}
	if !in.Volume.IsPositive() {
		return apperror.NewInvalidInput("delivery volume must be positive")
	}
	if !in.UnitCost.IsPositive() {
		return apperror.NewInvalidInput("unit cost must be positive")
	}
	return nil
}
