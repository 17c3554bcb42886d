package fifo

import (
	"context"

	"fuelbook/internal/core/id"
)

// Repository defines persistence operations for cost layers.
//
// GetActiveForUpdate and Update form the read-modify-write sequence of a
// consumption; callers must run both inside one transaction with the tank
// row locked.
type Repository interface {
	// MaxSequence returns the highest layer sequence for a tank, 0 if the
	// tank has no layers yet.
	MaxSequence(ctx context.Context, tankID id.ID) (int, error)

	Create(ctx context.Context, layer *Layer) error

	// GetActiveForUpdate loads all non-exhausted layers for a tank ordered
	// ascending by sequence, with row locks.
	GetActiveForUpdate(ctx context.Context, tankID id.ID) ([]*Layer, error)

	Update(ctx context.Context, layer *Layer) error

	// GetByTank loads all layers for a tank ordered by sequence,
	// regardless of status.
	GetByTank(ctx context.Context, tankID id.ID) ([]*Layer, error)
}
