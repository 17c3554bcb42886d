package metering

import (
	"context"
	"fmt"
	"time"

	"fuelbook/internal/core/apperror"
	"fuelbook/internal/core/id"
	"fuelbook/internal/core/tx"
	"fuelbook/internal/core/types"
	"fuelbook/internal/domain/audit"
	"fuelbook/internal/domain/tank"
	"fuelbook/pkg/logger"
)

// Service records meters, meter readings and dip readings.
type Service struct {
	meters    MeterRepository
	dips      DipRepository
	tanks     tank.Repository
	auditor   audit.Recorder
	txManager tx.Manager
	clock     types.Clock
}

// NewService creates a metering service.
func NewService(
	meters MeterRepository,
	dips DipRepository,
	tanks tank.Repository,
	auditor audit.Recorder,
	txManager tx.Manager,
	clock types.Clock,
) *Service {
	if clock == nil {
		clock = types.SystemClock{}
	}
	return &Service{
		meters:    meters,
		dips:      dips,
		tanks:     tanks,
		auditor:   auditor,
		txManager: txManager,
		clock:     clock,
	}
}

// MeterInput carries a new pump meter.
type MeterInput struct {
	TankID      id.ID
	MeterNumber string
	RecordedBy  id.ID
}

// RegisterMeter attaches a new active meter to a tank.
func (s *Service) RegisterMeter(ctx context.Context, in MeterInput) (id.ID, error) {
	if id.IsNil(in.TankID) {
		return id.Nil(), apperror.NewMissingField("tank_id")
	}
	if in.MeterNumber == "" {
		return id.Nil(), apperror.NewMissingField("meter_number")
	}
	if id.IsNil(in.RecordedBy) {
		return id.Nil(), apperror.NewMissingField("recorded_by")
	}

	meter := &Meter{
		ID:          id.New(),
		TankID:      in.TankID,
		MeterNumber: in.MeterNumber,
		Active:      true,
		CreatedAt:   s.clock.Now(),
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.tanks.GetByID(ctx, in.TankID); err != nil {
			return err
		}
		if err := s.meters.CreateMeter(ctx, meter); err != nil {
			return fmt.Errorf("create meter: %w", err)
		}
		return s.auditor.Record(ctx, audit.Entry{
			Table:    "meters",
			RecordID: meter.ID,
			Action:   audit.ActionCreate,
			NewValues: map[string]any{
				"tank_id":      meter.TankID,
				"meter_number": meter.MeterNumber,
			},
			ActorID: in.RecordedBy,
		})
	})
	if err != nil {
		return id.Nil(), err
	}

	logger.Info(ctx, "meter registered",
		"meter_id", meter.ID,
		"tank_id", meter.TankID,
		"meter_number", meter.MeterNumber,
	)
	return meter.ID, nil
}

// ReadingInput carries one day's cumulative counter pair for a meter.
type ReadingInput struct {
	MeterID    id.ID
	Date       time.Time
	Opening    types.Volume
	Closing    types.Volume
	RecordedBy id.ID
}

// RecordReading stores a daily meter reading. Dispensed volume is derived
// as closing minus opening; the closing counter can never run backwards.
func (s *Service) RecordReading(ctx context.Context, in ReadingInput) (id.ID, error) {
	if id.IsNil(in.MeterID) {
		return id.Nil(), apperror.NewMissingField("meter_id")
	}
	if in.Date.IsZero() {
		return id.Nil(), apperror.NewMissingField("reading_date")
	}
	if id.IsNil(in.RecordedBy) {
		return id.Nil(), apperror.NewMissingField("recorded_by")
	}
	if in.Opening.IsNegative() {
		return id.Nil(), apperror.NewInvalidInput("opening reading must not be negative")
	}
	if in.Closing.LessThan(in.Opening) {
		return id.Nil(), apperror.NewInvalidInput("closing reading must not be below opening reading").
			WithDetail("opening_reading_liters", in.Opening).
			WithDetail("closing_reading_liters", in.Closing)
	}

	opening := types.RoundVolume(in.Opening)
	closing := types.RoundVolume(in.Closing)
	reading := &MeterReading{
		ID:             id.New(),
		MeterID:        in.MeterID,
		ReadingDate:    in.Date,
		OpeningReading: opening,
		ClosingReading: closing,
		Dispensed:      types.RoundVolume(closing.Sub(opening)),
		RecordedBy:     in.RecordedBy,
		CreatedAt:      s.clock.Now(),
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.meters.CreateReading(ctx, reading); err != nil {
			return fmt.Errorf("create reading: %w", err)
		}
		return s.auditor.Record(ctx, audit.Entry{
			Table:    "meter_readings",
			RecordID: reading.ID,
			Action:   audit.ActionCreate,
			NewValues: map[string]any{
				"meter_id":               reading.MeterID,
				"reading_date":           reading.ReadingDate,
				"opening_reading_liters": reading.OpeningReading,
				"closing_reading_liters": reading.ClosingReading,
				"dispensed_liters":       reading.Dispensed,
			},
			ActorID: in.RecordedBy,
		})
	})
	if err != nil {
		return id.Nil(), err
	}

	logger.Info(ctx, "meter reading recorded",
		"reading_id", reading.ID,
		"meter_id", reading.MeterID,
		"dispensed", reading.Dispensed,
	)
	return reading.ID, nil
}

// DipInput carries a physical tank measurement.
type DipInput struct {
	TankID     id.ID
	Date       time.Time
	Type       DipReadingType
	Volume     types.Volume
	RecordedBy id.ID
}

// RecordDip stores a morning or evening dip reading for a tank. The
// measured volume can never exceed the tank's capacity.
func (s *Service) RecordDip(ctx context.Context, in DipInput) (id.ID, error) {
	if id.IsNil(in.TankID) {
		return id.Nil(), apperror.NewMissingField("tank_id")
	}
	if in.Date.IsZero() {
		return id.Nil(), apperror.NewMissingField("reading_date")
	}
	if id.IsNil(in.RecordedBy) {
		return id.Nil(), apperror.NewMissingField("recorded_by")
	}
	if in.Type != DipMorning && in.Type != DipEvening {
		return id.Nil(), apperror.NewEnumViolation("dip_reading", "reading_type", in.Type)
	}
	if in.Volume.IsNegative() {
		return id.Nil(), apperror.NewInvalidInput("dip volume must not be negative")
	}

	dip := &DipReading{
		ID:          id.New(),
		TankID:      in.TankID,
		ReadingDate: in.Date,
		ReadingType: in.Type,
		Volume:      types.RoundVolume(in.Volume),
		RecordedBy:  in.RecordedBy,
		CreatedAt:   s.clock.Now(),
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		t, err := s.tanks.GetByID(ctx, in.TankID)
		if err != nil {
			return err
		}
		if dip.Volume.GreaterThan(t.Capacity) {
			return apperror.NewInvalidInput("dip volume exceeds tank capacity").
				WithDetail("capacity_liters", t.Capacity).
				WithDetail("volume_liters", dip.Volume)
		}
		if err := s.dips.CreateDip(ctx, dip); err != nil {
			return fmt.Errorf("create dip: %w", err)
		}
		return s.auditor.Record(ctx, audit.Entry{
			Table:    "dip_readings",
			RecordID: dip.ID,
			Action:   audit.ActionCreate,
			NewValues: map[string]any{
				"tank_id":       dip.TankID,
				"reading_date":  dip.ReadingDate,
				"reading_type":  dip.ReadingType,
				"volume_liters": dip.Volume,
			},
			ActorID: in.RecordedBy,
		})
	})
	if err != nil {
		return id.Nil(), err
	}

	logger.Info(ctx, "dip reading recorded",
		"dip_id", dip.ID,
		"tank_id", dip.TankID,
		"reading_type", dip.ReadingType,
		"volume", dip.Volume,
	)
	return dip.ID, nil
}
