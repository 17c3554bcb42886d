// Package pricing manages selling prices per station and fuel type.
package pricing

import (
	"time"

	"fuelbook/internal/core/id"
	"fuelbook/internal/core/types"
	"fuelbook/internal/domain/fuel"
)

// SellingPrice is a pump price effective for a station + fuel type.
// At most one price per station/fuel pair is active at a time.
type SellingPrice struct {
	ID            id.ID       `db:"id" json:"id"`
	StationID     id.ID       `db:"station_id" json:"stationId"`
	FuelType      fuel.Type   `db:"fuel_type" json:"fuelType"`
	PricePerLiter types.Money `db:"price_per_liter" json:"pricePerLiter"`
	EffectiveFrom time.Time   `db:"effective_from" json:"effectiveFrom"`
	EffectiveTo   *time.Time  `db:"effective_to" json:"effectiveTo,omitempty"`
	Active        bool        `db:"active" json:"active"`
	SetBy         id.ID       `db:"set_by" json:"setBy"`
	CreatedAt     time.Time   `db:"created_at" json:"createdAt"`
}

// PriceChange is a price-history row. The history table predates the
// fuel-range expansion and only accepts the legacy fuel set.
type PriceChange struct {
	ID        id.ID       `db:"id" json:"id"`
	StationID id.ID       `db:"station_id" json:"stationId"`
	FuelType  fuel.Type   `db:"fuel_type" json:"fuelType"`
	OldPrice  types.Money `db:"old_price" json:"oldPrice"`
	NewPrice  types.Money `db:"new_price" json:"newPrice"`
	ChangedBy id.ID       `db:"changed_by" json:"changedBy"`
	ChangedAt time.Time   `db:"changed_at" json:"changedAt"`
}
