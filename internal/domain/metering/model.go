// Package metering provides pump meters, meter readings and dip readings.
//
// Meter readings supply the dispensed-volume totals the daily close
// consumes; evening dip readings are the fallback source for opening stock
// when no prior reconciliation exists.
package metering

import (
	"time"

	"fuelbook/internal/core/id"
	"fuelbook/internal/core/types"
)

// Meter is a dispensing pump counter attached to a tank.
type Meter struct {
	ID          id.ID     `db:"id" json:"id"`
	TankID      id.ID     `db:"tank_id" json:"tankId"`
	MeterNumber string    `db:"meter_number" json:"meterNumber"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// MeterReading is one day's cumulative counter pair for a meter.
// Dispensed = Closing - Opening.
type MeterReading struct {
	ID             id.ID        `db:"id" json:"id"`
	MeterID        id.ID        `db:"meter_id" json:"meterId"`
	ReadingDate    time.Time    `db:"reading_date" json:"readingDate"`
	OpeningReading types.Volume `db:"opening_reading_liters" json:"openingReadingLiters"`
	ClosingReading types.Volume `db:"closing_reading_liters" json:"closingReadingLiters"`
	Dispensed      types.Volume `db:"dispensed_liters" json:"dispensedLiters"`
	RecordedBy     id.ID        `db:"recorded_by" json:"recordedBy"`
	CreatedAt      time.Time    `db:"created_at" json:"createdAt"`
}

// DipReadingType distinguishes morning and evening dips.
type DipReadingType string

const (
	DipMorning DipReadingType = "morning"
	DipEvening DipReadingType = "evening"
)

// DipReading is a physical volume measurement of a tank.
type DipReading struct {
	ID          id.ID          `db:"id" json:"id"`
	TankID      id.ID          `db:"tank_id" json:"tankId"`
	ReadingDate time.Time      `db:"reading_date" json:"readingDate"`
	ReadingType DipReadingType `db:"reading_type" json:"readingType"`
	Volume      types.Volume   `db:"volume_liters" json:"volumeLiters"`
	RecordedBy  id.ID          `db:"recorded_by" json:"recordedBy"`
	CreatedAt   time.Time      `db:"created_at" json:"createdAt"`
}
