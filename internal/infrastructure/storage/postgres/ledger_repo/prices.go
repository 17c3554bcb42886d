package ledger_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"fuelbook/internal/core/apperror"
	"fuelbook/internal/core/id"
	"fuelbook/internal/domain/fuel"
	"fuelbook/internal/domain/pricing"
	"fuelbook/internal/infrastructure/storage/postgres"
	"fuelbook/internal/schema"
)

const (
	pricesTable       = "selling_prices"
	priceHistoryTable = "price_change_history"
)

var priceColumns = postgres.ExtractDBColumns[pricing.SellingPrice]()

// PriceRepo implements pricing.Repository.
type PriceRepo struct {
	txm *postgres.TxManager
}

// NewPriceRepo creates a selling price repository.
func NewPriceRepo(txm *postgres.TxManager) *PriceRepo {
	return &PriceRepo{txm: txm}
}

var _ pricing.Repository = (*PriceRepo)(nil)

// Create inserts a new selling price.
func (r *PriceRepo) Create(ctx context.Context, price *pricing.SellingPrice) error {
	return postgres.InsertRecord(ctx, r.txm, schema.KindSellingPrice, price)
}

// GetActive returns the active price for a station + fuel type.
func (r *PriceRepo) GetActive(ctx context.Context, stationID id.ID, fuelType fuel.Type) (*pricing.SellingPrice, error) {
	q := postgres.Builder().
		Select(priceColumns...).
		From(pricesTable).
		Where(squirrel.Eq{
			"station_id": stationID,
			"fuel_type":  fuelType,
			"active":     true,
		}).
		OrderBy("effective_from DESC").
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var price pricing.SellingPrice
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &price, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(pricesTable, string(fuelType))
		}
		return nil, fmt.Errorf("get active price: %w", err)
	}

	return &price, nil
}

// Deactivate closes out a price: active = false, effective_to set.
func (r *PriceRepo) Deactivate(ctx context.Context, priceID id.ID, effectiveTo time.Time) error {
	q := postgres.Builder().
		Update(pricesTable).
		Set("active", false).
		Set("effective_to", effectiveTo).
		Where(squirrel.Eq{"id": priceID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("deactivate price: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(pricesTable, priceID.String())
	}

	return nil
}

// CreateHistory inserts a price change row into the legacy history table.
func (r *PriceRepo) CreateHistory(ctx context.Context, change *pricing.PriceChange) error {
	return postgres.InsertRecord(ctx, r.txm, schema.KindPriceHistory, change)
}

// History retrieves recent price changes for a station, newest first.
func (r *PriceRepo) History(ctx context.Context, stationID id.ID, limit int) ([]*pricing.PriceChange, error) {
	q := postgres.Builder().
		Select(postgres.ExtractDBColumns[pricing.PriceChange]()...).
		From(priceHistoryTable).
		Where(squirrel.Eq{"station_id": stationID}).
		OrderBy("changed_at DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var changes []*pricing.PriceChange
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &changes, sql, args...); err != nil {
		return nil, fmt.Errorf("select price history: %w", err)
	}

	return changes, nil
}
