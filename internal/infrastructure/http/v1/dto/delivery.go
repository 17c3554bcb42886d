package dto

import (
	"fuelbook/internal/core/types"
	"fuelbook/internal/domain/delivery"
)

// CreateDeliveryRequest records a fuel delivery into a tank.
type CreateDeliveryRequest struct {
	TankID        string       `json:"tankId" binding:"required"`
	VolumeLiters  types.Volume `json:"volumeLiters" binding:"required"`
	UnitCost      types.Money  `json:"unitCost" binding:"required"`
	DeliveryDate  string       `json:"deliveryDate" binding:"required"`
	DeliveryTime  string       `json:"deliveryTime,omitempty"`
	Supplier      string       `json:"supplier,omitempty"`
	InvoiceNumber string       `json:"invoiceNumber,omitempty"`
	RecordedBy    string       `json:"recordedBy" binding:"required"`
}

// ToInput converts the request to a domain input.
func (r *CreateDeliveryRequest) ToInput() (delivery.Input, error) {
	tankID, err := parseID("tankId", r.TankID)
	if err != nil {
		return delivery.Input{}, err
	}
	recordedBy, err := parseID("recordedBy", r.RecordedBy)
	if err != nil {
		return delivery.Input{}, err
	}
	date, err := parseDate("deliveryDate", r.DeliveryDate)
	if err != nil {
		return delivery.Input{}, err
	}

	return delivery.Input{
		TankID:        tankID,
		RecordedBy:    recordedBy,
		Volume:        r.VolumeLiters,
		UnitCost:      r.UnitCost,
		Date:          date,
		Time:          r.DeliveryTime,
		Supplier:      r.Supplier,
		InvoiceNumber: r.InvoiceNumber,
	}, nil
}
