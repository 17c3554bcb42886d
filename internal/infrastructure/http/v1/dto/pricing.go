package dto

import (
	"fuelbook/internal/core/types"
	"fuelbook/internal/domain/fuel"
	"fuelbook/internal/domain/pricing"
)

// CreatePriceRequest sets a new selling price for a station + fuel type.
type CreatePriceRequest struct {
	StationID     string      `json:"stationId" binding:"required"`
	FuelType      string      `json:"fuelType" binding:"required"`
	PricePerLiter types.Money `json:"pricePerLiter" binding:"required"`
	EffectiveFrom string      `json:"effectiveFrom" binding:"required"`
	SetBy         string      `json:"setBy" binding:"required"`
}

// ToInput converts the request to a domain input.
func (r *CreatePriceRequest) ToInput() (pricing.PriceInput, error) {
	stationID, err := parseID("stationId", r.StationID)
	if err != nil {
		return pricing.PriceInput{}, err
	}
	setBy, err := parseID("setBy", r.SetBy)
	if err != nil {
		return pricing.PriceInput{}, err
	}
	from, err := parseDate("effectiveFrom", r.EffectiveFrom)
	if err != nil {
		return pricing.PriceInput{}, err
	}

	return pricing.PriceInput{
		StationID:     stationID,
		FuelType:      fuel.Type(r.FuelType),
		PricePerLiter: r.PricePerLiter,
		EffectiveFrom: from,
		SetBy:         setBy,
	}, nil
}
