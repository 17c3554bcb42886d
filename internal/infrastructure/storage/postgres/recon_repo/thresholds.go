package recon_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"fuelbook/internal/core/apperror"
	"fuelbook/internal/core/id"
	"fuelbook/internal/domain/variance"
	"fuelbook/internal/infrastructure/storage/postgres"
	"fuelbook/internal/schema"
)

const thresholdsTable = "stock_alert_thresholds"

var thresholdColumns = postgres.ExtractDBColumns[variance.StockAlertThreshold]()

// ThresholdRepo implements variance.ThresholdRepository.
type ThresholdRepo struct {
	txm *postgres.TxManager
}

// NewThresholdRepo creates a stock alert threshold repository.
func NewThresholdRepo(txm *postgres.TxManager) *ThresholdRepo {
	return &ThresholdRepo{txm: txm}
}

var _ variance.ThresholdRepository = (*ThresholdRepo)(nil)

// Create inserts a threshold row.
func (r *ThresholdRepo) Create(ctx context.Context, t *variance.StockAlertThreshold) error {
	return postgres.InsertRecord(ctx, r.txm, schema.KindThreshold, t)
}

// GetActiveByTank returns the active threshold for a tank.
func (r *ThresholdRepo) GetActiveByTank(ctx context.Context, tankID id.ID) (*variance.StockAlertThreshold, error) {
	q := postgres.Builder().
		Select(thresholdColumns...).
		From(thresholdsTable).
		Where(squirrel.Eq{
			"tank_id": tankID,
			"active":  true,
		}).
		OrderBy("created_at DESC").
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var threshold variance.StockAlertThreshold
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &threshold, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(thresholdsTable, tankID.String())
		}
		return nil, fmt.Errorf("get threshold: %w", err)
	}

	return &threshold, nil
}

// ExistsForTank reports whether a tank already has a threshold row.
func (r *ThresholdRepo) ExistsForTank(ctx context.Context, tankID id.ID) (bool, error) {
	sql := `SELECT EXISTS(SELECT 1 FROM stock_alert_thresholds WHERE tank_id = $1)`

	var exists bool
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, tankID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check threshold: %w", err)
	}

	return exists, nil
}
