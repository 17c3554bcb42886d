package variance

import (
	"context"

	"fuelbook/internal/core/id"
)

// NotificationRepository persists notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	ListOpenByStation(ctx context.Context, stationID id.ID) ([]*Notification, error)
}

// ThresholdRepository persists stock alert thresholds.
type ThresholdRepository interface {
	Create(ctx context.Context, t *StockAlertThreshold) error
	GetActiveByTank(ctx context.Context, tankID id.ID) (*StockAlertThreshold, error)
	ExistsForTank(ctx context.Context, tankID id.ID) (bool, error)
}
