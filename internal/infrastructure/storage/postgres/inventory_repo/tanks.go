// Package inventory_repo provides PostgreSQL implementations for the
// physical-inventory repositories: tanks, deliveries, cost layers, meters
// and dip readings.
package inventory_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"fuelbook/internal/core/apperror"
	"fuelbook/internal/core/id"
	"fuelbook/internal/core/types"
	"fuelbook/internal/domain/tank"
	"fuelbook/internal/infrastructure/storage/postgres"
	"fuelbook/internal/schema"
)

const tanksTable = "tanks"

var tankColumns = postgres.ExtractDBColumns[tank.Tank]()

// TankRepo implements tank.Repository.
type TankRepo struct {
	txm *postgres.TxManager
}

// NewTankRepo creates a tank repository.
func NewTankRepo(txm *postgres.TxManager) *TankRepo {
	return &TankRepo{txm: txm}
}

var _ tank.Repository = (*TankRepo)(nil)

// Create inserts a new tank.
func (r *TankRepo) Create(ctx context.Context, t *tank.Tank) error {
	return postgres.InsertRecord(ctx, r.txm, schema.KindTank, t)
}

// GetByID retrieves a tank.
func (r *TankRepo) GetByID(ctx context.Context, tankID id.ID) (*tank.Tank, error) {
	return r.get(ctx, tankID, false)
}

// GetForUpdate retrieves a tank with a row lock. Deliveries and
// reconciliations take this lock first, so per-tank mutations serialize.
func (r *TankRepo) GetForUpdate(ctx context.Context, tankID id.ID) (*tank.Tank, error) {
	return r.get(ctx, tankID, true)
}

func (r *TankRepo) get(ctx context.Context, tankID id.ID, forUpdate bool) (*tank.Tank, error) {
	q := postgres.Builder().
		Select(tankColumns...).
		From(tanksTable).
		Where(squirrel.Eq{"id": tankID})
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var t tank.Tank
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &t, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(tanksTable, tankID.String())
		}
		return nil, fmt.Errorf("get tank: %w", err)
	}

	return &t, nil
}

// SetVolume overwrites the tank's current volume.
func (r *TankRepo) SetVolume(ctx context.Context, tankID id.ID, volume types.Volume) error {
	q := postgres.Builder().
		Update(tanksTable).
		Set("current_volume_liters", volume).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": tankID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update tank volume: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(tanksTable, tankID.String())
	}

	return nil
}

// ListByStation retrieves all tanks at a station.
func (r *TankRepo) ListByStation(ctx context.Context, stationID id.ID) ([]*tank.Tank, error) {
	q := postgres.Builder().
		Select(tankColumns...).
		From(tanksTable).
		Where(squirrel.Eq{"station_id": stationID}).
		OrderBy("created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var tanks []*tank.Tank
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &tanks, sql, args...); err != nil {
		return nil, fmt.Errorf("list tanks: %w", err)
	}

	return tanks, nil
}
