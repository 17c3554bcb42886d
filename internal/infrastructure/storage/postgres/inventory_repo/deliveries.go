package inventory_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"fuelbook/internal/core/apperror"
	"fuelbook/internal/core/id"
	"fuelbook/internal/core/types"
	"fuelbook/internal/domain/delivery"
	"fuelbook/internal/infrastructure/storage/postgres"
	"fuelbook/internal/schema"
)

const deliveriesTable = "fuel_deliveries"

var deliveryColumns = postgres.ExtractDBColumns[delivery.Delivery]()

// DeliveryRepo implements delivery.Repository.
type DeliveryRepo struct {
	txm *postgres.TxManager
}

// NewDeliveryRepo creates a delivery repository.
func NewDeliveryRepo(txm *postgres.TxManager) *DeliveryRepo {
	return &DeliveryRepo{txm: txm}
}

var _ delivery.Repository = (*DeliveryRepo)(nil)

// Create inserts a new delivery.
func (r *DeliveryRepo) Create(ctx context.Context, d *delivery.Delivery) error {
	return postgres.InsertRecord(ctx, r.txm, schema.KindDelivery, d)
}

// GetByID retrieves a delivery.
func (r *DeliveryRepo) GetByID(ctx context.Context, deliveryID id.ID) (*delivery.Delivery, error) {
	q := postgres.Builder().
		Select(deliveryColumns...).
		From(deliveriesTable).
		Where(squirrel.Eq{"id": deliveryID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var d delivery.Delivery
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &d, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(deliveriesTable, deliveryID.String())
		}
		return nil, fmt.Errorf("get delivery: %w", err)
	}

	return &d, nil
}

// ReferenceExists reports whether a reference code is already taken.
func (r *DeliveryRepo) ReferenceExists(ctx context.Context, reference string) (bool, error) {
	sql := `SELECT EXISTS(SELECT 1 FROM fuel_deliveries WHERE reference = $1)`

	var exists bool
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, reference).Scan(&exists); err != nil {
		return false, fmt.Errorf("check reference: %w", err)
	}

	return exists, nil
}

// SumVolumeForDate totals delivered volume for a tank on one calendar date.
func (r *DeliveryRepo) SumVolumeForDate(ctx context.Context, tankID id.ID, date time.Time) (types.Volume, error) {
	sql := `
		SELECT COALESCE(SUM(volume_liters), 0)
		FROM fuel_deliveries
		WHERE tank_id = $1 AND delivery_date = $2
	`

	var sum types.Volume
	err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, tankID, date).Scan(&sum)
	if err != nil && err != pgx.ErrNoRows {
		return types.Zero(), fmt.Errorf("sum delivered volume: %w", err)
	}

	return sum, nil
}

// ListByTank retrieves deliveries for a tank, newest first.
func (r *DeliveryRepo) ListByTank(ctx context.Context, tankID id.ID, limit int) ([]*delivery.Delivery, error) {
	q := postgres.Builder().
		Select(deliveryColumns...).
		From(deliveriesTable).
		Where(squirrel.Eq{"tank_id": tankID}).
		OrderBy("delivery_date DESC", "created_at DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var deliveries []*delivery.Delivery
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &deliveries, sql, args...); err != nil {
		return nil, fmt.Errorf("list deliveries: %w", err)
	}

	return deliveries, nil
}
