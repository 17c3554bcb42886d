package delivery

import (
	"context"
	"regexp"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fuelbook/internal/core/apperror"
	"fuelbook/internal/core/id"
	"fuelbook/internal/core/types"
	"fuelbook/internal/domain/audit"
	"fuelbook/internal/domain/fifo"
	"fuelbook/internal/domain/fuel"
	"fuelbook/internal/domain/tank"
	"fuelbook/internal/domain/variance"
	"fuelbook/pkg/refcode"
)

type memDeliveries struct {
	rows []*Delivery
}

func (m *memDeliveries) Create(_ context.Context, d *Delivery) error {
	m.rows = append(m.rows, d)
	return nil
}

func (m *memDeliveries) GetByID(_ context.Context, deliveryID id.ID) (*Delivery, error) {
	for _, d := range m.rows {
		if d.ID == deliveryID {
			return d, nil
		}
	}
	return nil, apperror.NewNotFound("delivery", deliveryID.String())
}

func (m *memDeliveries) ReferenceExists(_ context.Context, reference string) (bool, error) {
	for _, d := range m.rows {
		if d.Reference == reference {
			return true, nil
		}
	}
	return false, nil
}

func (m *memDeliveries) SumVolumeForDate(_ context.Context, tankID id.ID, date time.Time) (types.Volume, error) {
	sum := types.Zero()
	for _, d := range m.rows {
		if d.TankID == tankID && d.DeliveryDate.Equal(date) {
			sum = sum.Add(d.Volume)
		}
	}
	return types.RoundVolume(sum), nil
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

type memLayers struct {
	layers map[id.ID][]*fifo.Layer
}

func newMemLayers() *memLayers {
	return &memLayers{layers: make(map[id.ID][]*fifo.Layer)}
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

type memNotifications struct{ created []*variance.Notification }

func (m *memNotifications) Create(_ context.Context, n *variance.Notification) error {
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

type fixture struct {
	svc        *Service
	repo       *memDeliveries
	tanks      *memTanks
	layers     *memLayers
	thresholds *memThresholds
	auditor    *memAuditor
	tank       *tank.Tank
}

var deliveryNow = time.Date(2026, 3, 15, 8, 30, 0, 0, time.UTC)

func newFixture(t *tank.Tank) *fixture {
	repo := &memDeliveries{}
	tanks := &memTanks{tanks: map[id.ID]*tank.Tank{t.ID: t}}
	layers := newMemLayers()
	thresholds := &memThresholds{rows: make(map[id.ID]*variance.StockAlertThreshold)}
	auditor := &memAuditor{}
	clock := types.FixedClock{T: deliveryNow}

	alerts := variance.NewService(&memNotifications{}, thresholds, tanks, nil, clock)
	engine := fifo.NewEngine(layers, clock)
	refcodes := refcode.New(refcode.DefaultConfig("FD"))

	return &fixture{
		svc:        NewService(repo, tanks, engine, alerts, auditor, refcodes, noopTx{}, clock),
		repo:       repo,
		tanks:      tanks,
		layers:     layers,
		thresholds: thresholds,
		auditor:    auditor,
		tank:       t,
	}
}

func newTank(capacity, current string) *tank.Tank {
	return &tank.Tank{
		ID:            id.New(),
		StationID:     id.New(),
		FuelType:      fuel.Petrol,
		Capacity:      types.MustVolume(capacity),
		CurrentVolume: types.MustVolume(current),
	}
}

func validInput(tankID id.ID) Input {
	return Input{
		TankID:     tankID,
		RecordedBy: id.New(),
		Volume:     types.MustVolume("5000"),
		UnitCost:   types.MustMoney("1000"),
		Date:       time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		Supplier:   "Total Energies",
	}
}

var referencePattern = regexp.MustCompile(`^FD-20260315-[23456789ABCDEFGHJKMNPQRSTUVWXYZ]{6}$`)

func TestRecordPersistsDeliveryAndSideEffects(t *testing.T) {
	f := newFixture(newTank("20000", "3000"))
	ctx := context.Background()

	deliveryID, err := f.svc.Record(ctx, validInput(f.tank.ID))
	require.NoError(t, err)

	d, err := f.repo.GetByID(ctx, deliveryID)
	require.NoError(t, err)
	assert.Regexp(t, referencePattern, d.Reference)
	assert.Equal(t, "5000000.0000", d.TotalCost.StringFixed(4))

	// Tank grew by the delivered volume.
	assert.Equal(t, "8000.000", f.tanks.tanks[f.tank.ID].CurrentVolume.StringFixed(3))

	// One cost layer opened at sequence 1.
	layers, err := f.layers.GetByTank(ctx, f.tank.ID)
	require.NoError(t, err)
	require.Len(t, layers, 1)
	assert.Equal(t, 1, layers[0].Sequence)
	assert.Equal(t, d.ID, layers[0].DeliveryID)
	assert.Equal(t, fifo.StatusActive, layers[0].Status)
	assert.Equal(t, "5000000.0000", layers[0].RemainingValue.StringFixed(4))

	// First delivery lazily creates the default alert threshold.
	row := f.thresholds.rows[f.tank.ID]
	require.NotNil(t, row)
	assert.True(t, variance.DefaultLowPct.Equal(row.LowPct))

	require.Len(t, f.auditor.entries, 1)
	assert.Equal(t, "fuel_deliveries", f.auditor.entries[0].Table)
	assert.Equal(t, audit.ActionCreate, f.auditor.entries[0].Action)
}

func TestRecordSequencesLayersPerTank(t *testing.T) {
	f := newFixture(newTank("20000", "0"))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		in := validInput(f.tank.ID)
		in.Volume = types.MustVolume("2000")
		_, err := f.svc.Record(ctx, in)
		require.NoError(t, err)
	}

	layers, err := f.layers.GetByTank(ctx, f.tank.ID)
	require.NoError(t, err)
	require.Len(t, layers, 3)
	for i, l := range layers {
		assert.Equal(t, i+1, l.Sequence)
	}
}

func TestRecordRejectsOverfill(t *testing.T) {
	f := newFixture(newTank("10000", "8000"))

	in := validInput(f.tank.ID)
	in.Volume = types.MustVolume("3000")

	_, err := f.svc.Record(context.Background(), in)
	require.Error(t, err)
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, apperror.CodeInvalidInput, appErr.Code)

	// Nothing persisted.
	assert.Empty(t, f.repo.rows)
	assert.Empty(t, f.layers.layers[f.tank.ID])
	assert.Equal(t, "8000", f.tanks.tanks[f.tank.ID].CurrentVolume.String())
}

func TestRecordExactFillIsAllowed(t *testing.T) {
	f := newFixture(newTank("10000", "8000"))

	in := validInput(f.tank.ID)
	in.Volume = types.MustVolume("2000")

	_, err := f.svc.Record(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "10000.000", f.tanks.tanks[f.tank.ID].CurrentVolume.StringFixed(3))
}

func TestRecordRejectsUnknownTankFuelType(t *testing.T) {
	tk := newTank("10000", "0")
	tk.FuelType = fuel.Type("sludge")
	f := newFixture(tk)

	_, err := f.svc.Record(context.Background(), validInput(tk.ID))
	require.Error(t, err)
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, apperror.CodeEnumViolation, appErr.Code)
}

func TestRecordValidation(t *testing.T) {
	f := newFixture(newTank("10000", "0"))
	ctx := context.Background()

	in := validInput(f.tank.ID)
	in.TankID = id.Nil()
	_, err := f.svc.Record(ctx, in)
	assert.Error(t, err)

	in = validInput(f.tank.ID)
	in.RecordedBy = id.Nil()
	_, err = f.svc.Record(ctx, in)
	assert.Error(t, err)

	in = validInput(f.tank.ID)
	in.Volume = types.Zero()
	_, err = f.svc.Record(ctx, in)
	assert.Error(t, err)

	in = validInput(f.tank.ID)
	in.UnitCost = types.MustMoney("-5")
	_, err = f.svc.Record(ctx, in)
	assert.Error(t, err)

	in = validInput(f.tank.ID)
	in.Date = time.Time{}
	_, err = f.svc.Record(ctx, in)
	assert.Error(t, err)

	assert.Empty(t, f.repo.rows)
}

func TestRecordUnknownTank(t *testing.T) {
	f := newFixture(newTank("10000", "0"))

	_, err := f.svc.Record(context.Background(), validInput(id.New()))
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}
