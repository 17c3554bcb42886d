package delivery

import (
	"context"
	"time"

	"fuelbook/internal/core/id"
	"fuelbook/internal/core/types"
)

// Repository persists deliveries.
type Repository interface {
	Create(ctx context.Context, d *Delivery) error

	GetByID(ctx context.Context, deliveryID id.ID) (*Delivery, error)

	// ReferenceExists reports whether a reference code is already taken,
	// across all deliveries.
	ReferenceExists(ctx context.Context, reference string) (bool, error)

	// SumVolumeForDate totals delivered volume for a tank on one calendar
	// date.
	SumVolumeForDate(ctx context.Context, tankID id.ID, date time.Time) (types.Volume, error)
}
