package metering

import (
	"context"
	"time"

	"fuelbook/internal/core/id"
	"fuelbook/internal/core/types"
)

// MeterRepository defines persistence operations for meters and readings.
type MeterRepository interface {
	CreateMeter(ctx context.Context, meter *Meter) error
	CreateReading(ctx context.Context, reading *MeterReading) error

	// SumDispensedForDate totals dispensed volume across the tank's active
	// meters for one calendar date.
	SumDispensedForDate(ctx context.Context, tankID id.ID, date time.Time) (types.Volume, error)
}

// DipRepository defines persistence operations for dip readings.
type DipRepository interface {
	CreateDip(ctx context.Context, dip *DipReading) error

	// GetEveningDip returns the evening dip for a tank/date, or nil when
	// none was taken.
	GetEveningDip(ctx context.Context, tankID id.ID, date time.Time) (*DipReading, error)
}
