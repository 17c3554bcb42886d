package dto

import (
	"fuelbook/internal/core/types"
	"fuelbook/internal/domain/variance"
)

// CreateThresholdRequest configures stock alert thresholds for a tank.
// Omitted numeric fields take the engine defaults.
type CreateThresholdRequest struct {
	TankID             string       `json:"tankId" binding:"required"`
	LowStockPct        types.Money  `json:"lowStockPercentage"`
	CriticalStockPct   types.Money  `json:"criticalStockPercentage"`
	ReorderPointLiters types.Volume `json:"reorderPointLiters"`
}

// ToInput converts the request to a domain input.
func (r *CreateThresholdRequest) ToInput() (variance.ThresholdInput, error) {
	tankID, err := parseID("tankId", r.TankID)
	if err != nil {
		return variance.ThresholdInput{}, err
	}

	return variance.ThresholdInput{
		TankID:       tankID,
		LowPct:       r.LowStockPct,
		CriticalPct:  r.CriticalStockPct,
		ReorderPoint: r.ReorderPointLiters,
	}, nil
}

// UpdateNotificationStatusRequest advances a notification's workflow state.
type UpdateNotificationStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
