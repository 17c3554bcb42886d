// Package variance watches reconciliations and tank levels and emits
// graded notifications. Everything here is best-effort: a failed check is
// logged and swallowed, never propagated, because a daily close must not
// fail over alerting.
package variance

import (
	"time"

	"fuelbook/internal/core/id"
	"fuelbook/internal/core/types"
)

// NotificationType classifies what triggered a notification.
type NotificationType string

const (
	TypeVolumeVariance NotificationType = "volume_variance"
	TypeLowStock       NotificationType = "low_stock"
)

// Severity grades a notification.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// rank orders severities for escalation comparisons.
func (s Severity) rank() int {
	switch s {
	case SeverityLow:
		return 0
	case SeverityMedium:
		return 1
	case SeverityHigh:
		return 2
	case SeverityCritical:
		return 3
	}
	return -1
}

// NotificationStatus tracks the human-resolution workflow.
type NotificationStatus string

const (
	StatusOpen          NotificationStatus = "open"
	StatusInvestigating NotificationStatus = "investigating"
	StatusResolved      NotificationStatus = "resolved"
)

// Notification is an alert created by the variance engine.
// Resolution happens in a workflow outside this engine.
type Notification struct {
	ID                 id.ID              `db:"id" json:"id"`
	StationID          id.ID              `db:"station_id" json:"stationId"`
	TankID             id.ID              `db:"tank_id" json:"tankId"`
	MeterID            *id.ID             `db:"meter_id" json:"meterId,omitempty"`
	Type               NotificationType   `db:"notification_type" json:"notificationType"`
	Severity           Severity           `db:"severity" json:"severity"`
	Magnitude          types.Volume       `db:"magnitude" json:"magnitude"`
	VariancePercentage types.Money        `db:"variance_percentage" json:"variancePercentage"`
	Status             NotificationStatus `db:"status" json:"status"`
	Message            string             `db:"message" json:"message"`
	CreatedAt          time.Time          `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time          `db:"updated_at" json:"updatedAt"`
}

// StockAlertThreshold holds per-tank fill-level alert settings.
type StockAlertThreshold struct {
	ID           id.ID        `db:"id" json:"id"`
	TankID       id.ID        `db:"tank_id" json:"tankId"`
	LowPct       types.Money  `db:"low_stock_percentage" json:"lowStockPercentage"`
	CriticalPct  types.Money  `db:"critical_stock_percentage" json:"criticalStockPercentage"`
	ReorderPoint types.Volume `db:"reorder_point_liters" json:"reorderPointLiters"`
	Active       bool         `db:"active" json:"active"`
	CreatedAt    time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updatedAt"`
}
