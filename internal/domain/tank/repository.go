package tank

import (
	"context"

	"fuelbook/internal/core/id"
	"fuelbook/internal/core/types"
)

// Repository defines persistence operations for tanks.
type Repository interface {
	GetByID(ctx context.Context, tankID id.ID) (*Tank, error)

	// GetForUpdate loads the tank with a row lock. This is the tank-scoped
	// serialization point: deliveries and reconciliations lock the tank row
	// before touching its cost layers, so layer mutations for one tank
	// never interleave.
	GetForUpdate(ctx context.Context, tankID id.ID) (*Tank, error)

	// SetVolume overwrites the tank's current volume.
	SetVolume(ctx context.Context, tankID id.ID, volume types.Volume) error
}
