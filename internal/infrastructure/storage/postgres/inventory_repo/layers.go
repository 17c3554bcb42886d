package inventory_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"fuelbook/internal/core/apperror"
	"fuelbook/internal/core/id"
	"fuelbook/internal/domain/fifo"
	"fuelbook/internal/infrastructure/storage/postgres"
	"fuelbook/internal/schema"
)

const layersTable = "fifo_layers"

var layerColumns = postgres.ExtractDBColumns[fifo.Layer]()

// LayerRepo implements fifo.Repository.
type LayerRepo struct {
	txm *postgres.TxManager
}

// NewLayerRepo creates a cost layer repository.
func NewLayerRepo(txm *postgres.TxManager) *LayerRepo {
	return &LayerRepo{txm: txm}
}

var _ fifo.Repository = (*LayerRepo)(nil)

// MaxSequence returns the highest layer sequence for a tank, 0 if none.
func (r *LayerRepo) MaxSequence(ctx context.Context, tankID id.ID) (int, error) {
	sql := `SELECT COALESCE(MAX(sequence), 0) FROM fifo_layers WHERE tank_id = $1`

	var max int
	err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, tankID).Scan(&max)
	if err != nil && err != pgx.ErrNoRows {
		return 0, fmt.Errorf("max layer sequence: %w", err)
	}

	return max, nil
}

// Create inserts a new cost layer.
func (r *LayerRepo) Create(ctx context.Context, layer *fifo.Layer) error {
	return postgres.InsertRecord(ctx, r.txm, schema.KindFifoLayer, layer)
}

// GetActiveForUpdate loads all non-exhausted layers for a tank ordered
// ascending by sequence, with row locks. Must run inside a transaction.
func (r *LayerRepo) GetActiveForUpdate(ctx context.Context, tankID id.ID) ([]*fifo.Layer, error) {
	q := postgres.Builder().
		Select(layerColumns...).
		From(layersTable).
		Where(squirrel.Eq{"tank_id": tankID, "status": fifo.StatusActive}).
		OrderBy("sequence ASC").
		Suffix("FOR UPDATE")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var layers []*fifo.Layer
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &layers, sql, args...); err != nil {
		return nil, fmt.Errorf("select active layers: %w", err)
	}

	return layers, nil
}

// Update persists a layer after consumption or adjustment.
func (r *LayerRepo) Update(ctx context.Context, layer *fifo.Layer) error {
	q := postgres.Builder().
		Update(layersTable).
		Set("remaining_volume_liters", layer.RemainingVolume).
		Set("remaining_value", layer.RemainingValue).
		Set("consumed_value", layer.ConsumedValue).
		Set("status", layer.Status).
		Set("updated_at", layer.UpdatedAt).
		Where(squirrel.Eq{"id": layer.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update layer: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(layersTable, layer.ID.String())
	}

	return nil
}

// GetByTank loads all layers for a tank ordered by sequence, regardless of
// status.
func (r *LayerRepo) GetByTank(ctx context.Context, tankID id.ID) ([]*fifo.Layer, error) {
	q := postgres.Builder().
		Select(layerColumns...).
		From(layersTable).
		Where(squirrel.Eq{"tank_id": tankID}).
		OrderBy("sequence ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var layers []*fifo.Layer
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &layers, sql, args...); err != nil {
		return nil, fmt.Errorf("select layers: %w", err)
	}

	return layers, nil
}
