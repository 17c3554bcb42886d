// Package fifo provides the FIFO cost-layering engine.
//
// Every delivery creates one cost layer; dispensed fuel is priced by
// draining layers strictly in sequence order, oldest first. Layers are
// never deleted: a drained layer is marked DEPLETED and kept for the
// consumption trail.
package fifo

import (
	"time"

	"fuelbook/internal/core/id"
	"fuelbook/internal/core/types"
)

// LayerStatus is the lifecycle state of a cost layer.
type LayerStatus string

const (
	StatusActive      LayerStatus = "ACTIVE"
	StatusDepleted    LayerStatus = "DEPLETED"
	StatusAdjusted    LayerStatus = "ADJUSTED"
	StatusWrittenDown LayerStatus = "WRITTEN_DOWN"
)

// Layer is a costed slice of inventory from a single delivery.
//
// Invariants:
//   - 0 <= RemainingVolume <= OriginalVolume
//   - Status is DEPLETED exactly when RemainingVolume <= 0.001
//   - RemainingValue = RemainingVolume x CostPerLiter at all times
//   - Sequence is gap-free and monotonically increasing per tank
type Layer struct {
	ID             id.ID        `db:"id" json:"id"`
	TankID         id.ID        `db:"tank_id" json:"tankId"`
	DeliveryID     id.ID        `db:"delivery_id" json:"deliveryId"`
	Sequence       int          `db:"sequence" json:"sequence"`
	OriginalVolume types.Volume `db:"original_volume_liters" json:"originalVolumeLiters"`
	RemainingVolume types.Volume `db:"remaining_volume_liters" json:"remainingVolumeLiters"`
	CostPerLiter   types.Money  `db:"cost_per_liter" json:"costPerLiter"`
	OriginalValue  types.Money  `db:"original_value" json:"originalValue"`
	RemainingValue types.Money  `db:"remaining_value" json:"remainingValue"`
	ConsumedValue  types.Money  `db:"consumed_value" json:"consumedValue"`
	Status         LayerStatus  `db:"status" json:"status"`
	DeliveryDate   time.Time    `db:"delivery_date" json:"deliveryDate"`
	CreatedAt      time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time    `db:"updated_at" json:"updatedAt"`
}

// Exhausted reports whether the layer has nothing left to consume.
func (l *Layer) Exhausted() bool {
	return types.IsDepleted(l.RemainingVolume)
}

// TraceEntry records one layer's contribution to a single consumption.
type TraceEntry struct {
	LayerID        id.ID        `json:"layerId"`
	LayerSequence  int          `json:"layerSequence"`
	VolumeConsumed types.Volume `json:"volumeConsumedLiters"`
	CostPerLiter   types.Money  `json:"costPerLiter"`
	Cost           types.Money  `json:"cost"`
}

// ConsumeResult is the outcome of pricing a dispensed volume.
type ConsumeResult struct {
	TotalCOGS             types.Money  `json:"totalCogs"`
	Trace                 []TraceEntry `json:"trace"`
	OpeningInventoryValue types.Money  `json:"openingInventoryValue"`
	ClosingInventoryValue types.Money  `json:"closingInventoryValue"`

	// Incomplete is set when the requested volume exceeded available
	// layers. The COGS then covers only what the layers could price.
	// This is a data-quality signal for the caller, not an error.
	Incomplete bool         `json:"incomplete"`
	Shortfall  types.Volume `json:"shortfallLiters"`
}
