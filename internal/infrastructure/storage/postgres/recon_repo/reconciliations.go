// Package recon_repo provides PostgreSQL implementations for the daily
// close repositories: reconciliation records, the consumption log,
// notifications and stock alert thresholds.
package recon_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"fuelbook/internal/core/apperror"
	"fuelbook/internal/core/id"
	"fuelbook/internal/domain/reconciliation"
	"fuelbook/internal/infrastructure/storage/postgres"
	"fuelbook/internal/schema"
)

const (
	reconsTable         = "daily_reconciliations"
	consumptionLogTable = "fifo_consumption_log"
)

var (
	reconColumns = postgres.ExtractDBColumns[reconciliation.Record]()
	logColumns   = postgres.ExtractDBColumns[reconciliation.ConsumptionLogEntry]()
)

// ReconRepo implements reconciliation.Repository.
type ReconRepo struct {
	txm *postgres.TxManager
}

// NewReconRepo creates a reconciliation repository.
func NewReconRepo(txm *postgres.TxManager) *ReconRepo {
	return &ReconRepo{txm: txm}
}

var _ reconciliation.Repository = (*ReconRepo)(nil)

// Create inserts a reconciliation record.
func (r *ReconRepo) Create(ctx context.Context, record *reconciliation.Record) error {
	return postgres.InsertRecord(ctx, r.txm, schema.KindReconciliation, record)
}

// GetByID retrieves a reconciliation record.
func (r *ReconRepo) GetByID(ctx context.Context, recordID id.ID) (*reconciliation.Record, error) {
	q := postgres.Builder().
		Select(reconColumns...).
		From(reconsTable).
		Where(squirrel.Eq{"id": recordID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var record reconciliation.Record
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &record, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(reconsTable, recordID.String())
		}
		return nil, fmt.Errorf("get reconciliation: %w", err)
	}

	return &record, nil
}

// GetByTankAndDate returns the record for a tank/date, NotFound when none
// exists.
func (r *ReconRepo) GetByTankAndDate(ctx context.Context, tankID id.ID, date time.Time) (*reconciliation.Record, error) {
	q := postgres.Builder().
		Select(reconColumns...).
		From(reconsTable).
		Where(squirrel.Eq{
			"tank_id":             tankID,
			"reconciliation_date": date,
		}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var record reconciliation.Record
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &record, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(reconsTable, date.Format("2006-01-02"))
		}
		return nil, fmt.Errorf("get reconciliation by date: %w", err)
	}

	return &record, nil
}

// ExistsForDate reports whether a close already ran for a tank/date.
func (r *ReconRepo) ExistsForDate(ctx context.Context, tankID id.ID, date time.Time) (bool, error) {
	sql := `
		SELECT EXISTS(
			SELECT 1 FROM daily_reconciliations
			WHERE tank_id = $1 AND reconciliation_date = $2
		)
	`

	var exists bool
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, tankID, date).Scan(&exists); err != nil {
		return false, fmt.Errorf("check reconciliation: %w", err)
	}

	return exists, nil
}

// CreateConsumptionLog inserts all entries for one reconciliation.
func (r *ReconRepo) CreateConsumptionLog(ctx context.Context, entries []*reconciliation.ConsumptionLogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	for _, e := range entries {
		if err := schema.Validate(ctx, schema.KindConsumptionLog, postgres.StructToMap(e)); err != nil {
			return err
		}
	}

	q := postgres.Builder().
		Insert(consumptionLogTable).
		Columns(logColumns...)
	for _, e := range entries {
		data := postgres.StructToMap(e)
		values := make([]any, 0, len(logColumns))
		for _, col := range logColumns {
			values = append(values, data[col])
		}
		q = q.Values(values...)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert consumption log: %w", err)
	}

	return nil
}

// GetConsumptionLog retrieves the drain trace for one reconciliation.
func (r *ReconRepo) GetConsumptionLog(ctx context.Context, reconciliationID id.ID) ([]*reconciliation.ConsumptionLogEntry, error) {
	q := postgres.Builder().
		Select(logColumns...).
		From(consumptionLogTable).
		Where(squirrel.Eq{"reconciliation_id": reconciliationID}).
		OrderBy("sequence ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entries []*reconciliation.ConsumptionLogEntry
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("select consumption log: %w", err)
	}

	return entries, nil
}

// ListByTank retrieves a tank's reconciliations, newest first.
func (r *ReconRepo) ListByTank(ctx context.Context, tankID id.ID, limit int) ([]*reconciliation.Record, error) {
	q := postgres.Builder().
		Select(reconColumns...).
		From(reconsTable).
		Where(squirrel.Eq{"tank_id": tankID}).
		OrderBy("reconciliation_date DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var records []*reconciliation.Record
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &records, sql, args...); err != nil {
		return nil, fmt.Errorf("list reconciliations: %w", err)
	}

	return records, nil
}
