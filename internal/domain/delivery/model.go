// Package delivery provides fuel delivery intake.
package delivery

import (
	"time"

	"fuelbook/internal/core/id"
	"fuelbook/internal/core/types"
)

// Delivery is a recorded fuel delivery. Immutable once created.
type Delivery struct {
	ID            id.ID        `db:"id" json:"id"`
	TankID        id.ID        `db:"tank_id" json:"tankId"`
	Reference     string       `db:"reference" json:"reference"`
	Volume        types.Volume `db:"volume_liters" json:"volumeLiters"`
	UnitCost      types.Money  `db:"unit_cost" json:"unitCost"`
	TotalCost     types.Money  `db:"total_cost" json:"totalCost"`
	DeliveryDate  time.Time    `db:"delivery_date" json:"deliveryDate"`
	DeliveryTime  string       `db:"delivery_time" json:"deliveryTime,omitempty"`
	Supplier      string       `db:"supplier" json:"supplier,omitempty"`
	InvoiceNumber string       `db:"invoice_number" json:"invoiceNumber,omitempty"`
	RecordedBy    id.ID        `db:"recorded_by" json:"recordedBy"`
	CreatedAt     time.Time    `db:"created_at" json:"createdAt"`
}

// Input is the data needed to record a delivery.
type Input struct {
	TankID        id.ID
	RecordedBy    id.ID
	Volume        types.Volume
	UnitCost      types.Money
	Date          time.Time
	Time          string
	Supplier      string
	InvoiceNumber string
}
