package reconciliation

import (
	"context"
	"time"

	"fuelbook/internal/core/id"
)

// Repository persists reconciliation records and their consumption log.
type Repository interface {
	Create(ctx context.Context, r *Record) error

	GetByID(ctx context.Context, recordID id.ID) (*Record, error)

	// GetByTankAndDate returns the record for a tank/date, NotFound when
	// none exists.
	GetByTankAndDate(ctx context.Context, tankID id.ID, date time.Time) (*Record, error)

	ExistsForDate(ctx context.Context, tankID id.ID, date time.Time) (bool, error)

	// CreateConsumptionLog inserts all entries for one reconciliation.
	CreateConsumptionLog(ctx context.Context, entries []*ConsumptionLogEntry) error
}
