// Package tank provides the storage tank model and repository contract.
package tank

import (
	"time"

	"fuelbook/internal/core/id"
	"fuelbook/internal/core/types"
	"fuelbook/internal/domain/fuel"
)

// Tank is a physical fuel storage tank at a station.
// Invariant: 0 <= CurrentVolume <= Capacity.
type Tank struct {
	ID            id.ID        `db:"id" json:"id"`
	StationID     id.ID        `db:"station_id" json:"stationId"`
	FuelType      fuel.Type    `db:"fuel_type" json:"fuelType"`
	Capacity      types.Volume `db:"capacity_liters" json:"capacityLiters"`
	CurrentVolume types.Volume `db:"current_volume_liters" json:"currentVolumeLiters"`
	CreatedAt     time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time    `db:"updated_at" json:"updatedAt"`
}

// FillPercentage returns current fill level as a percentage of capacity.
func (t *Tank) FillPercentage() types.Volume {
	if t.Capacity.IsZero() {
		return types.Zero()
	}
	return t.CurrentVolume.Div(t.Capacity).Mul(types.MustVolume("100")).Round(4)
}
