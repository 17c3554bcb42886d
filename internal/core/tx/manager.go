// Package tx provides transaction management abstractions.
// Domain services depend on these interfaces, not on the postgres
// implementation, so the unit-of-work boundary stays explicit.
package tx

import (
	"context"
)

// Manager defines the contract for transaction management.
// Implementations handle BEGIN, COMMIT, ROLLBACK, and nested reuse.
type Manager interface {
	// RunInTransaction executes fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn succeeds, the transaction is committed.
	//
	// Nested calls reuse the existing transaction from context.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// RunSerializable executes fn in a serializable transaction.
	// Used for tank-scoped read-modify-write sequences (layer consumption,
	// reconciliation) where lost updates must be impossible.
	RunSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}
