// Package ledger_repo provides PostgreSQL implementations for the
// financial repositories: ledger entries, selling prices and price history.
package ledger_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"fuelbook/internal/core/id"
	"fuelbook/internal/domain/ledger"
	"fuelbook/internal/infrastructure/storage/postgres"
	"fuelbook/internal/schema"
)

const entriesTable = "ledger_entries"

var entryColumns = postgres.ExtractDBColumns[ledger.Entry]()

// EntryRepo implements ledger.Repository.
type EntryRepo struct {
	txm *postgres.TxManager
}

// NewEntryRepo creates a ledger entry repository.
func NewEntryRepo(txm *postgres.TxManager) *EntryRepo {
	return &EntryRepo{txm: txm}
}

var _ ledger.Repository = (*EntryRepo)(nil)

// CreateBatch inserts all entries or none. Callers run it inside the
// reconciliation transaction, so a failed batch rolls the close back.
func (r *EntryRepo) CreateBatch(ctx context.Context, entries []*ledger.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	for _, e := range entries {
		if err := schema.Validate(ctx, schema.KindLedgerEntry, postgres.StructToMap(e)); err != nil {
			return err
		}
	}

	q := postgres.Builder().
		Insert(entriesTable).
		Columns(entryColumns...)
	for _, e := range entries {
		data := postgres.StructToMap(e)
		values := make([]any, 0, len(entryColumns))
		for _, col := range entryColumns {
			values = append(values, data[col])
		}
		q = q.Values(values...)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert ledger entries: %w", err)
	}

	return nil
}

// GetByReconciliation retrieves the postings for one reconciliation.
func (r *EntryRepo) GetByReconciliation(ctx context.Context, reconciliationID id.ID) ([]*ledger.Entry, error) {
	q := postgres.Builder().
		Select(entryColumns...).
		From(entriesTable).
		Where(squirrel.Eq{"reconciliation_id": reconciliationID}).
		OrderBy("account_type")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entries []*ledger.Entry
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("select ledger entries: %w", err)
	}

	return entries, nil
}
