package inventory_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"fuelbook/internal/core/apperror"
	"fuelbook/internal/core/id"
	"fuelbook/internal/domain/metering"
	"fuelbook/internal/infrastructure/storage/postgres"
	"fuelbook/internal/schema"
)

const dipsTable = "dip_readings"

var dipColumns = postgres.ExtractDBColumns[metering.DipReading]()

// DipRepo implements metering.DipRepository.
type DipRepo struct {
	txm *postgres.TxManager
}

// NewDipRepo creates a dip reading repository.
func NewDipRepo(txm *postgres.TxManager) *DipRepo {
	return &DipRepo{txm: txm}
}

var _ metering.DipRepository = (*DipRepo)(nil)

// CreateDip inserts a physical volume measurement.
func (r *DipRepo) CreateDip(ctx context.Context, dip *metering.DipReading) error {
	return postgres.InsertRecord(ctx, r.txm, schema.KindDipReading, dip)
}

// GetEveningDip returns the evening dip for a tank/date.
func (r *DipRepo) GetEveningDip(ctx context.Context, tankID id.ID, date time.Time) (*metering.DipReading, error) {
	q := postgres.Builder().
		Select(dipColumns...).
		From(dipsTable).
		Where(squirrel.Eq{
			"tank_id":      tankID,
			"reading_date": date,
			"reading_type": metering.DipEvening,
		}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var dip metering.DipReading
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &dip, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(dipsTable, date.Format("2006-01-02"))
		}
		return nil, fmt.Errorf("get evening dip: %w", err)
	}

	return &dip, nil
}
