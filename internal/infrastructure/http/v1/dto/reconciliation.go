package dto

import (
	"fuelbook/internal/core/types"
	"fuelbook/internal/domain/reconciliation"
)

// ProcessReconciliationRequest runs the daily close for one tank/day.
type ProcessReconciliationRequest struct {
	TankID              string       `json:"tankId" binding:"required"`
	ReconciliationDate  string       `json:"reconciliationDate" binding:"required"`
	ActualClosingLiters types.Volume `json:"actualClosingLiters"`
	TotalSales          types.Money  `json:"totalSales"`
	ValuationMethod     string       `json:"valuationMethod,omitempty"`
	RecordedBy          string       `json:"recordedBy" binding:"required"`
}

// ToInput converts the request to a domain input.
func (r *ProcessReconciliationRequest) ToInput() (reconciliation.Input, error) {
	tankID, err := parseID("tankId", r.TankID)
	if err != nil {
		return reconciliation.Input{}, err
	}
	recordedBy, err := parseID("recordedBy", r.RecordedBy)
	if err != nil {
		return reconciliation.Input{}, err
	}
	date, err := parseDate("reconciliationDate", r.ReconciliationDate)
	if err != nil {
		return reconciliation.Input{}, err
	}

	return reconciliation.Input{
		TankID:          tankID,
		Date:            date,
		ActualClosing:   r.ActualClosingLiters,
		TotalSales:      r.TotalSales,
		RecordedBy:      recordedBy,
		ValuationMethod: reconciliation.ValuationMethod(r.ValuationMethod),
	}, nil
}
