package pricing

import (
	"context"
	"time"

	"fuelbook/internal/core/id"
	"fuelbook/internal/domain/fuel"
)

// Repository persists selling prices and their change history.
type Repository interface {
	Create(ctx context.Context, price *SellingPrice) error

	// GetActive returns the active price for a station + fuel type, or nil
	// when none is set.
	GetActive(ctx context.Context, stationID id.ID, fuelType fuel.Type) (*SellingPrice, error)

	// Deactivate closes out a price: active = false, effective_to set.
	Deactivate(ctx context.Context, priceID id.ID, effectiveTo time.Time) error

	CreateHistory(ctx context.Context, change *PriceChange) error
}
