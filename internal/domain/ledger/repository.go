package ledger

import (
	"context"

	"fuelbook/internal/core/id"
)

// Repository persists ledger entries.
type Repository interface {
	// CreateBatch inserts all entries or none. Callers run it inside the
	// reconciliation transaction, so a failed batch rolls the close back.
	CreateBatch(ctx context.Context, entries []*Entry) error

	GetByReconciliation(ctx context.Context, reconciliationID id.ID) ([]*Entry, error)
}
