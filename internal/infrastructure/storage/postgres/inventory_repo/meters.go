package inventory_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"fuelbook/internal/core/id"
	"fuelbook/internal/core/types"
	"fuelbook/internal/domain/metering"
	"fuelbook/internal/infrastructure/storage/postgres"
	"fuelbook/internal/schema"
)

// MeterRepo implements metering.MeterRepository.
type MeterRepo struct {
	txm *postgres.TxManager
}

// NewMeterRepo creates a meter repository.
func NewMeterRepo(txm *postgres.TxManager) *MeterRepo {
	return &MeterRepo{txm: txm}
}

var _ metering.MeterRepository = (*MeterRepo)(nil)

// CreateMeter inserts a new pump meter.
func (r *MeterRepo) CreateMeter(ctx context.Context, meter *metering.Meter) error {
	return postgres.InsertRecord(ctx, r.txm, schema.KindMeter, meter)
}

// CreateReading inserts one day's counter pair for a meter.
func (r *MeterRepo) CreateReading(ctx context.Context, reading *metering.MeterReading) error {
	return postgres.InsertRecord(ctx, r.txm, schema.KindMeterReading, reading)
}

// SumDispensedForDate totals dispensed volume across the tank's active
// meters for one calendar date.
func (r *MeterRepo) SumDispensedForDate(ctx context.Context, tankID id.ID, date time.Time) (types.Volume, error) {
	sql := `
		SELECT COALESCE(SUM(mr.dispensed_liters), 0)
		FROM meter_readings mr
		JOIN meters m ON m.id = mr.meter_id
		WHERE m.tank_id = $1 AND m.active AND mr.reading_date = $2
	`

	var sum types.Volume
	err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, tankID, date).Scan(&sum)
	if err != nil && err != pgx.ErrNoRows {
		return types.Zero(), fmt.Errorf("sum dispensed volume: %w", err)
	}

	return sum, nil
}
