// Package reconciliation runs the daily close for one tank/day.
package reconciliation

import (
	"time"

	"fuelbook/internal/core/id"
	"fuelbook/internal/core/types"
)

// ValuationMethod names how COGS was derived.
type ValuationMethod string

const MethodFIFO ValuationMethod = "FIFO"

// ValuationQuality is a confidence tag on the cost figures.
type ValuationQuality string

const (
	// QualityComplete means the cost layers fully covered the dispensed volume.
	QualityComplete ValuationQuality = "complete"
	// QualityPartialLayers means the dispensed volume exceeded available
	// layers and COGS covers only the priced portion.
	QualityPartialLayers ValuationQuality = "partial_layers"
)

// Record is one day's reconciliation for a tank. Unique per tank/date and
// immutable after creation: corrections create a new record.
type Record struct {
	ID                    id.ID            `db:"id" json:"id"`
	TankID                id.ID            `db:"tank_id" json:"tankId"`
	Date                  time.Time        `db:"reconciliation_date" json:"reconciliationDate"`
	OpeningStock          types.Volume     `db:"opening_stock_liters" json:"openingStockLiters"`
	Delivered             types.Volume     `db:"delivered_liters" json:"deliveredLiters"`
	Dispensed             types.Volume     `db:"dispensed_liters" json:"dispensedLiters"`
	TheoreticalClosing    types.Volume     `db:"theoretical_closing_stock_liters" json:"theoreticalClosingStockLiters"`
	ActualClosing         types.Volume     `db:"actual_closing_stock_liters" json:"actualClosingStockLiters"`
	TotalSales            types.Money      `db:"total_sales" json:"totalSales"`
	TotalCOGS             types.Money      `db:"total_cogs" json:"totalCogs"`
	GrossProfit           types.Money      `db:"gross_profit" json:"grossProfit"`
	ValuationMethod       ValuationMethod  `db:"valuation_method" json:"valuationMethod"`
	ValuationQuality      ValuationQuality `db:"valuation_quality" json:"valuationQuality"`
	OpeningInventoryValue types.Money      `db:"opening_inventory_value" json:"openingInventoryValue"`
	ClosingInventoryValue types.Money      `db:"closing_inventory_value" json:"closingInventoryValue"`
	RecordedBy            id.ID            `db:"recorded_by" json:"recordedBy"`
	CreatedAt             time.Time        `db:"created_at" json:"createdAt"`
}

// ConsumptionLogEntry is one layer's contribution to a reconciliation's
// FIFO consumption, sequenced per reconciliation starting at 1.
type ConsumptionLogEntry struct {
	ID               id.ID        `db:"id" json:"id"`
	ReconciliationID id.ID        `db:"reconciliation_id" json:"reconciliationId"`
	LayerID          id.ID        `db:"layer_id" json:"layerId"`
	Sequence         int          `db:"sequence" json:"sequence"`
	VolumeConsumed   types.Volume `db:"volume_consumed_liters" json:"volumeConsumedLiters"`
	CostPerLiter     types.Money  `db:"cost_per_liter" json:"costPerLiter"`
	ValuationImpact  types.Money  `db:"valuation_impact" json:"valuationImpact"`
	CreatedAt        time.Time    `db:"created_at" json:"createdAt"`
}

// Input is the data needed to process a daily close.
type Input struct {
	TankID          id.ID
	Date            time.Time
	ActualClosing   types.Volume
	TotalSales      types.Money
	RecordedBy      id.ID
	ValuationMethod ValuationMethod // defaults to FIFO
}
