package reconciliation

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fuelbook/internal/core/apperror"
	"fuelbook/internal/core/id"
	"fuelbook/internal/core/types"
	"fuelbook/internal/domain/audit"
	"fuelbook/internal/domain/delivery"
	"fuelbook/internal/domain/fifo"
	"fuelbook/internal/domain/fuel"
	"fuelbook/internal/domain/ledger"
	"fuelbook/internal/domain/metering"
	"fuelbook/internal/domain/tank"
	"fuelbook/internal/domain/variance"
)

type memRecons struct {
	records []*Record
	logs    []*ConsumptionLogEntry
}

func (m *memRecons) Create(_ context.Context, r *Record) error {
	m.records = append(m.records, r)
	return nil
}

func (m *memRecons) GetByID(_ context.Context, recordID id.ID) (*Record, error) {
	for _, r := range m.records {
		if r.ID == recordID {
			return r, nil
		}
	}
	return nil, apperror.NewNotFound("reconciliation", recordID.String())
}

func (m *memRecons) GetByTankAndDate(_ context.Context, tankID id.ID, date time.Time) (*Record, error) {
	for _, r := range m.records {
		if r.TankID == tankID && r.Date.Equal(date) {
			return r, nil
		}
	}
	return nil, apperror.NewNotFound("reconciliation", date.Format("2006-01-02"))
}

func (m *memRecons) ExistsForDate(ctx context.Context, tankID id.ID, date time.Time) (bool, error) {
	_, err := m.GetByTankAndDate(ctx, tankID, date)
	if apperror.IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

func (m *memRecons) CreateConsumptionLog(_ context.Context, entries []*ConsumptionLogEntry) error {
	m.logs = append(m.logs, entries...)
	return nil
}

type memTanks struct {
	tanks map[id.ID]*tank.Tank
}

func (m *memTanks) GetByID(_ context.Context, tankID id.ID) (*tank.Tank, error) {
	t, ok := m.tanks[tankID]
	if !ok {
		return nil, apperror.NewNotFound("tank", tankID.String())
	}
	cp := *t
	return &cp, nil
}

func (m *memTanks) GetForUpdate(ctx context.Context, tankID id.ID) (*tank.Tank, error) {
	return m.GetByID(ctx, tankID)
}

func (m *memTanks) SetVolume(_ context.Context, tankID id.ID, volume types.Volume) error {
	m.tanks[tankID].CurrentVolume = volume
	return nil
}

// memDeliveries only needs to answer the daily volume sum.
type memDeliveries struct {
	sums map[string]types.Volume
}

func (m *memDeliveries) Create(_ context.Context, _ *delivery.Delivery) error { return nil }

func (m *memDeliveries) GetByID(_ context.Context, deliveryID id.ID) (*delivery.Delivery, error) {
	return nil, apperror.NewNotFound("delivery", deliveryID.String())
}

func (m *memDeliveries) ReferenceExists(_ context.Context, _ string) (bool, error) {
	return false, nil
}

func (m *memDeliveries) SumVolumeForDate(_ context.Context, _ id.ID, date time.Time) (types.Volume, error) {
	if v, ok := m.sums[date.Format("2006-01-02")]; ok {
		return v, nil
	}
	return types.Zero(), nil
}

type memMeters struct {
	dispensed map[string]types.Volume
}

func (m *memMeters) CreateMeter(_ context.Context, _ *metering.Meter) error          { return nil }
func (m *memMeters) CreateReading(_ context.Context, _ *metering.MeterReading) error { return nil }

func (m *memMeters) SumDispensedForDate(_ context.Context, _ id.ID, date time.Time) (types.Volume, error) {
	if v, ok := m.dispensed[date.Format("2006-01-02")]; ok {
		return v, nil
	}
	return types.Zero(), nil
}

type memDips struct {
	dips []*metering.DipReading
}

func (m *memDips) CreateDip(_ context.Context, dip *metering.DipReading) error {
	m.dips = append(m.dips, dip)
	return nil
}

func (m *memDips) GetEveningDip(_ context.Context, tankID id.ID, date time.Time) (*metering.DipReading, error) {
	for _, d := range m.dips {
		if d.TankID == tankID && d.ReadingDate.Equal(date) && d.ReadingType == metering.DipEvening {
			return d, nil
		}
	}
	return nil, apperror.NewNotFound("dip reading", date.Format("2006-01-02"))
}

type memLayers struct {
	layers map[id.ID][]*fifo.Layer
}

func (m *memLayers) MaxSequence(_ context.Context, tankID id.ID) (int, error) {
	max := 0
	for _, l := range m.layers[tankID] {
		if l.Sequence > max {
			max = l.Sequence
		}
	}
	return max, nil
}

func (m *memLayers) Create(_ context.Context, layer *fifo.Layer) error {
	m.layers[layer.TankID] = append(m.layers[layer.TankID], layer)
	return nil
}

func (m *memLayers) GetActiveForUpdate(_ context.Context, tankID id.ID) ([]*fifo.Layer, error) {
	var out []*fifo.Layer
	for _, l := range m.layers[tankID] {
		if !l.Exhausted() {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

func (m *memLayers) Update(_ context.Context, _ *fifo.Layer) error { return nil }

func (m *memLayers) GetByTank(_ context.Context, tankID id.ID) ([]*fifo.Layer, error) {
	out := append([]*fifo.Layer(nil), m.layers[tankID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

type memLedger struct {
	entries []*ledger.Entry
}

func (m *memLedger) CreateBatch(_ context.Context, entries []*ledger.Entry) error {
	m.entries = append(m.entries, entries...)
	return nil
}

func (m *memLedger) GetByReconciliation(_ context.Context, reconciliationID id.ID) ([]*ledger.Entry, error) {
	var out []*ledger.Entry
	for _, e := range m.entries {
		if e.ReconciliationID == reconciliationID {
			out = append(out, e)
		}
	}
	return out, nil
}

type memNotifications struct {
	created []*variance.Notification
	fail    bool
}

func (m *memNotifications) Create(_ context.Context, n *variance.Notification) error {
	if m.fail {
		return errors.New("notification store down")
	}
	m.created = append(m.created, n)
	return nil
}

func (m *memNotifications) ListOpenByStation(_ context.Context, _ id.ID) ([]*variance.Notification, error) {
	return m.created, nil
}

type memThresholds struct {
	rows map[id.ID]*variance.StockAlertThreshold
}

func (m *memThresholds) Create(_ context.Context, t *variance.StockAlertThreshold) error {
	m.rows[t.TankID] = t
	return nil
}

func (m *memThresholds) GetActiveByTank(_ context.Context, tankID id.ID) (*variance.StockAlertThreshold, error) {
	t, ok := m.rows[tankID]
	if !ok {
		return nil, apperror.NewNotFound("stock alert threshold", tankID.String())
	}
	return t, nil
}

func (m *memThresholds) ExistsForTank(_ context.Context, tankID id.ID) (bool, error) {
	_, ok := m.rows[tankID]
	return ok, nil
}

type memAuditor struct{ entries []audit.Entry }

func (m *memAuditor) Record(_ context.Context, e audit.Entry) error {
	m.entries = append(m.entries, e)
	return nil
}

type noopTx struct{}

func (noopTx) RunInTransaction(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func (noopTx) RunSerializable(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

var (
	closeDay = time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	closeNow = time.Date(2026, 3, 15, 21, 0, 0, 0, time.UTC)
)

type fixture struct {
	svc           *Service
	repo          *memRecons
	tanks         *memTanks
	deliveries    *memDeliveries
	meters        *memMeters
	dips          *memDips
	layers        *memLayers
	postings      *memLedger
	notifications *memNotifications
	auditor       *memAuditor
	tank          *tank.Tank
}

func newFixture(t *tank.Tank) *fixture {
	repo := &memRecons{}
	tanks := &memTanks{tanks: map[id.ID]*tank.Tank{t.ID: t}}
	deliveries := &memDeliveries{sums: make(map[string]types.Volume)}
	meters := &memMeters{dispensed: make(map[string]types.Volume)}
	dips := &memDips{}
	layers := &memLayers{layers: make(map[id.ID][]*fifo.Layer)}
	postings := &memLedger{}
	notifications := &memNotifications{}
	thresholds := &memThresholds{rows: make(map[id.ID]*variance.StockAlertThreshold)}
	auditor := &memAuditor{}
	clock := types.FixedClock{T: closeNow}

	engine := fifo.NewEngine(layers, clock)
	poster := ledger.NewService(postings, clock)
	alerts := variance.NewService(notifications, thresholds, tanks, nil, clock)

	return &fixture{
		svc:           NewService(repo, tanks, deliveries, meters, dips, engine, poster, alerts, auditor, noopTx{}, clock),
		repo:          repo,
		tanks:         tanks,
		deliveries:    deliveries,
		meters:        meters,
		dips:          dips,
		layers:        layers,
		postings:      postings,
		notifications: notifications,
		auditor:       auditor,
		tank:          t,
	}
}

func petrolTank(capacity, current string) *tank.Tank {
	return &tank.Tank{
		ID:            id.New(),
		StationID:     id.New(),
		FuelType:      fuel.Petrol,
		Capacity:      types.MustVolume(capacity),
		CurrentVolume: types.MustVolume(current),
	}
}

func (f *fixture) addLayer(seq int, volume, costPerLiter string) *fifo.Layer {
	vol := types.MustVolume(volume)
	cpl := types.MustMoney(costPerLiter)
	value := types.RoundMoney(vol.Mul(cpl))
	l := &fifo.Layer{
		ID:              id.New(),
		TankID:          f.tank.ID,
		DeliveryID:      id.New(),
		Sequence:        seq,
		OriginalVolume:  vol,
		RemainingVolume: vol,
		CostPerLiter:    cpl,
		OriginalValue:   value,
		RemainingValue:  value,
		ConsumedValue:   types.Zero(),
		Status:          fifo.StatusActive,
		DeliveryDate:    closeDay.AddDate(0, 0, -seq),
	}
	f.layers.layers[f.tank.ID] = append(f.layers.layers[f.tank.ID], l)
	return l
}

func validInput(tankID id.ID) Input {
	return Input{
		TankID:        tankID,
		Date:          closeDay,
		ActualClosing: types.MustVolume("695"),
		TotalSales:    types.MustMoney("945000"),
		RecordedBy:    id.New(),
	}
}

func TestProcessFullPipeline(t *testing.T) {
	f := newFixture(petrolTank("20000", "1300"))
	layerA := f.addLayer(1, "500", "1000")
	layerB := f.addLayer(2, "800", "1100")
	f.meters.dispensed[closeDay.Format("2006-01-02")] = types.MustVolume("600")
	ctx := context.Background()

	reconID, err := f.svc.Process(ctx, validInput(f.tank.ID))
	require.NoError(t, err)

	record, err := f.repo.GetByID(ctx, reconID)
	require.NoError(t, err)

	// No prior reconciliation and no evening dip: opening falls back to the
	// tank's recorded volume.
	assert.Equal(t, "1300.000", record.OpeningStock.StringFixed(3))
	assert.Equal(t, "600.000", record.Dispensed.StringFixed(3))
	assert.Equal(t, "700.000", record.TheoreticalClosing.StringFixed(3))
	assert.Equal(t, "695.000", record.ActualClosing.StringFixed(3))

	// 500 L at 1000 plus 100 L at 1100.
	assert.Equal(t, "610000.0000", record.TotalCOGS.StringFixed(4))
	assert.Equal(t, "335000.0000", record.GrossProfit.StringFixed(4))
	assert.Equal(t, MethodFIFO, record.ValuationMethod)
	assert.Equal(t, QualityComplete, record.ValuationQuality)
	assert.Equal(t, "1380000.0000", record.OpeningInventoryValue.StringFixed(4))
	assert.Equal(t, "770000.0000", record.ClosingInventoryValue.StringFixed(4))

	// Consumption log mirrors the drain order.
	require.Len(t, f.repo.logs, 2)
	assert.Equal(t, layerA.ID, f.repo.logs[0].LayerID)
	assert.Equal(t, 1, f.repo.logs[0].Sequence)
	assert.Equal(t, "500.000", f.repo.logs[0].VolumeConsumed.StringFixed(3))
	assert.Equal(t, layerB.ID, f.repo.logs[1].LayerID)
	assert.Equal(t, 2, f.repo.logs[1].Sequence)
	assert.Equal(t, "100.000", f.repo.logs[1].VolumeConsumed.StringFixed(3))

	// Balanced ledger pair.
	entries, err := f.postings.GetByReconciliation(ctx, reconID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "945000.0000", entries[0].CreditAmount.StringFixed(4))
	assert.Equal(t, "610000.0000", entries[1].DebitAmount.StringFixed(4))

	// Tank snaps to the measured closing stock.
	assert.Equal(t, "695.000", f.tanks.tanks[f.tank.ID].CurrentVolume.StringFixed(3))

	// Oldest layer drained, second partially consumed.
	assert.Equal(t, fifo.StatusDepleted, layerA.Status)
	assert.Equal(t, "700.000", layerB.RemainingVolume.StringFixed(3))

	require.Len(t, f.auditor.entries, 1)
	assert.Equal(t, "daily_reconciliations", f.auditor.entries[0].Table)

	// -0.71% variance: measurement noise, no notification. 695/20000 fill
	// is low stock though (3.475% < 10%).
	require.Len(t, f.notifications.created, 1)
	assert.Equal(t, variance.TypeLowStock, f.notifications.created[0].Type)
}

func TestProcessRejectsSecondCloseForSameDay(t *testing.T) {
	f := newFixture(petrolTank("20000", "1300"))
	f.addLayer(1, "1300", "1000")
	ctx := context.Background()

	_, err := f.svc.Process(ctx, validInput(f.tank.ID))
	require.NoError(t, err)

	_, err = f.svc.Process(ctx, validInput(f.tank.ID))
	require.Error(t, err)
	assert.True(t, apperror.IsDuplicate(err))
	assert.Len(t, f.repo.records, 1)
}

func TestProcessOpeningStockPriority(t *testing.T) {
	prevDay := closeDay.AddDate(0, 0, -1)

	t.Run("previous reconciliation wins", func(t *testing.T) {
		f := newFixture(petrolTank("20000", "1300"))
		f.addLayer(1, "2000", "1000")
		f.repo.records = append(f.repo.records, &Record{
			ID:            id.New(),
			TankID:        f.tank.ID,
			Date:          prevDay,
			ActualClosing: types.MustVolume("1250"),
		})
		f.dips.dips = append(f.dips.dips, &metering.DipReading{
			TankID:      f.tank.ID,
			ReadingDate: prevDay,
			ReadingType: metering.DipEvening,
			Volume:      types.MustVolume("1111"),
		})

		reconID, err := f.svc.Process(context.Background(), validInput(f.tank.ID))
		require.NoError(t, err)

		record, _ := f.repo.GetByID(context.Background(), reconID)
		assert.Equal(t, "1250.000", record.OpeningStock.StringFixed(3))
	})

	t.Run("evening dip beats tank volume", func(t *testing.T) {
		f := newFixture(petrolTank("20000", "1300"))
		f.addLayer(1, "2000", "1000")
		f.dips.dips = append(f.dips.dips, &metering.DipReading{
			TankID:      f.tank.ID,
			ReadingDate: prevDay,
			ReadingType: metering.DipEvening,
			Volume:      types.MustVolume("1111"),
		})

		reconID, err := f.svc.Process(context.Background(), validInput(f.tank.ID))
		require.NoError(t, err)

		record, _ := f.repo.GetByID(context.Background(), reconID)
		assert.Equal(t, "1111.000", record.OpeningStock.StringFixed(3))
	})

	t.Run("morning dip is ignored", func(t *testing.T) {
		f := newFixture(petrolTank("20000", "1300"))
		f.addLayer(1, "2000", "1000")
		f.dips.dips = append(f.dips.dips, &metering.DipReading{
			TankID:      f.tank.ID,
			ReadingDate: prevDay,
			ReadingType: metering.DipMorning,
			Volume:      types.MustVolume("1111"),
		})

		reconID, err := f.svc.Process(context.Background(), validInput(f.tank.ID))
		require.NoError(t, err)

		record, _ := f.repo.GetByID(context.Background(), reconID)
		assert.Equal(t, "1300.000", record.OpeningStock.StringFixed(3))
	})
}

func TestProcessIncludesDeliveredVolume(t *testing.T) {
	f := newFixture(petrolTank("20000", "1000"))
	f.addLayer(1, "2000", "1000")
	f.deliveries.sums[closeDay.Format("2006-01-02")] = types.MustVolume("500")
	f.meters.dispensed[closeDay.Format("2006-01-02")] = types.MustVolume("300")

	in := validInput(f.tank.ID)
	in.ActualClosing = types.MustVolume("1190")

	reconID, err := f.svc.Process(context.Background(), in)
	require.NoError(t, err)

	record, _ := f.repo.GetByID(context.Background(), reconID)
	assert.Equal(t, "500.000", record.Delivered.StringFixed(3))
	assert.Equal(t, "1200.000", record.TheoreticalClosing.StringFixed(3))
}

func TestProcessCriticalVarianceNotification(t *testing.T) {
	f := newFixture(petrolTank("2000", "1000"))
	f.addLayer(1, "2000", "1000")
	f.deliveries.sums[closeDay.Format("2006-01-02")] = types.MustVolume("500")
	f.meters.dispensed[closeDay.Format("2006-01-02")] = types.MustVolume("300")

	// Theoretical 1200 vs actual 1080: 120 L short, exactly -10%.
	in := validInput(f.tank.ID)
	in.ActualClosing = types.MustVolume("1080")

	_, err := f.svc.Process(context.Background(), in)
	require.NoError(t, err)

	var varianceNote *variance.Notification
	for _, n := range f.notifications.created {
		if n.Type == variance.TypeVolumeVariance {
			varianceNote = n
		}
	}
	require.NotNil(t, varianceNote)
	assert.Equal(t, variance.SeverityCritical, varianceNote.Severity)
	assert.Equal(t, "120.000", varianceNote.Magnitude.StringFixed(3))
	assert.Equal(t, "10.0000", varianceNote.VariancePercentage.StringFixed(4))
}

func TestProcessSurvivesNotificationFailure(t *testing.T) {
	f := newFixture(petrolTank("2000", "1000"))
	f.addLayer(1, "2000", "1000")
	f.meters.dispensed[closeDay.Format("2006-01-02")] = types.MustVolume("300")
	f.notifications.fail = true

	in := validInput(f.tank.ID)
	in.ActualClosing = types.MustVolume("500")

	reconID, err := f.svc.Process(context.Background(), in)
	require.NoError(t, err)
	assert.False(t, id.IsNil(reconID))
	assert.Len(t, f.repo.records, 1)
}

func TestProcessShortfallMarksPartialQuality(t *testing.T) {
	f := newFixture(petrolTank("20000", "200"))
	f.addLayer(1, "200", "1000")
	f.meters.dispensed[closeDay.Format("2006-01-02")] = types.MustVolume("350")

	in := validInput(f.tank.ID)
	in.ActualClosing = types.Zero()

	reconID, err := f.svc.Process(context.Background(), in)
	require.NoError(t, err)

	record, _ := f.repo.GetByID(context.Background(), reconID)
	assert.Equal(t, QualityPartialLayers, record.ValuationQuality)
	// COGS covers only the 200 L the layers could price.
	assert.Equal(t, "200000.0000", record.TotalCOGS.StringFixed(4))
}

func TestProcessRejectsClosingAboveCapacity(t *testing.T) {
	f := newFixture(petrolTank("10000", "1000"))
	f.addLayer(1, "1000", "1000")

	in := validInput(f.tank.ID)
	in.ActualClosing = types.MustVolume("10500")

	_, err := f.svc.Process(context.Background(), in)
	require.Error(t, err)
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, apperror.CodeInvalidInput, appErr.Code)
	assert.Empty(t, f.repo.records)
}

func TestProcessRejectsUnknownValuationMethod(t *testing.T) {
	f := newFixture(petrolTank("10000", "1000"))

	in := validInput(f.tank.ID)
	in.ValuationMethod = ValuationMethod("LIFO")

	_, err := f.svc.Process(context.Background(), in)
	require.Error(t, err)
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, apperror.CodeEnumViolation, appErr.Code)
}

func TestProcessValidation(t *testing.T) {
	f := newFixture(petrolTank("10000", "1000"))
	ctx := context.Background()

	in := validInput(f.tank.ID)
	in.TankID = id.Nil()
	_, err := f.svc.Process(ctx, in)
	assert.Error(t, err)

	in = validInput(f.tank.ID)
	in.RecordedBy = id.Nil()
	_, err = f.svc.Process(ctx, in)
	assert.Error(t, err)

	in = validInput(f.tank.ID)
	in.Date = time.Time{}
	_, err = f.svc.Process(ctx, in)
	assert.Error(t, err)

	in = validInput(f.tank.ID)
	in.ActualClosing = types.MustVolume("-1")
	_, err = f.svc.Process(ctx, in)
	assert.Error(t, err)

	in = validInput(f.tank.ID)
	in.TotalSales = types.MustMoney("-1")
	_, err = f.svc.Process(ctx, in)
	assert.Error(t, err)

	assert.Empty(t, f.repo.records)
}

func TestProcessZeroActivityDay(t *testing.T) {
	f := newFixture(petrolTank("20000", "5000"))
	f.addLayer(1, "5000", "1000")

	in := validInput(f.tank.ID)
	in.ActualClosing = types.MustVolume("5000")
	in.TotalSales = types.Zero()

	reconID, err := f.svc.Process(context.Background(), in)
	require.NoError(t, err)

	record, _ := f.repo.GetByID(context.Background(), reconID)
	assert.True(t, record.TotalCOGS.IsZero())
	assert.True(t, record.GrossProfit.IsZero())
	assert.Equal(t, QualityComplete, record.ValuationQuality)
	assert.Empty(t, f.repo.logs)

	// Even a quiet day posts its balanced pair.
	entries, _ := f.postings.GetByReconciliation(context.Background(), reconID)
	assert.Len(t, entries, 2)
}
