package pricing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fuelbook/internal/core/apperror"
	"fuelbook/internal/core/id"
	"fuelbook/internal/core/types"
	"fuelbook/internal/domain/audit"
	"fuelbook/internal/domain/fuel"
)

type memPrices struct {
	prices  []*SellingPrice
	history []*PriceChange
}

func (m *memPrices) Create(_ context.Context, price *SellingPrice) error {
	m.prices = append(m.prices, price)
	return nil
}

func (m *memPrices) GetActive(_ context.Context, stationID id.ID, fuelType fuel.Type) (*SellingPrice, error) {
	for _, p := range m.prices {
		if p.Active && p.StationID == stationID && p.FuelType == fuelType {
			return p, nil
		}
	}
	return nil, apperror.NewNotFound("selling price", string(fuelType))
}

func (m *memPrices) Deactivate(_ context.Context, priceID id.ID, effectiveTo time.Time) error {
	for _, p := range m.prices {
		if p.ID == priceID {
			p.Active = false
			to := effectiveTo
			p.EffectiveTo = &to
			return nil
		}
	}
	return apperror.NewNotFound("selling price", priceID.String())
}

func (m *memPrices) CreateHistory(_ context.Context, change *PriceChange) error {
	m.history = append(m.history, change)
	return nil
}

type noopTx struct{}

func (noopTx) RunInTransaction(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func (noopTx) RunSerializable(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type memAuditor struct {
	entries []audit.Entry
}

func (m *memAuditor) Record(_ context.Context, e audit.Entry) error {
	m.entries = append(m.entries, e)
	return nil
}

var priceNow = time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)

func newPriceService(repo *memPrices) (*Service, *memAuditor) {
	auditor := &memAuditor{}
	return NewService(repo, auditor, noopTx{}, types.FixedClock{T: priceNow}), auditor
}

func TestCreateFirstPrice(t *testing.T) {
	repo := &memPrices{}
	svc, auditor := newPriceService(repo)
	stationID, userID := id.New(), id.New()

	priceID, err := svc.Create(context.Background(), PriceInput{
		StationID:     stationID,
		FuelType:      fuel.Diesel,
		PricePerLiter: types.MustMoney("1450.50"),
		EffectiveFrom: priceNow,
		SetBy:         userID,
	})
	require.NoError(t, err)
	assert.False(t, id.IsNil(priceID))

	require.Len(t, repo.prices, 1)
	p := repo.prices[0]
	assert.True(t, p.Active)
	assert.Equal(t, "1450.5000", p.PricePerLiter.StringFixed(4))

	// Legacy fuel type: history row written, old price zero.
	require.Len(t, repo.history, 1)
	assert.True(t, repo.history[0].OldPrice.IsZero())
	assert.Equal(t, "1450.5000", repo.history[0].NewPrice.StringFixed(4))

	require.Len(t, auditor.entries, 1)
	assert.Equal(t, "selling_prices", auditor.entries[0].Table)
}

func TestCreateRollsOverPriorPrice(t *testing.T) {
	repo := &memPrices{}
	svc, _ := newPriceService(repo)
	stationID, userID := id.New(), id.New()
	ctx := context.Background()

	_, err := svc.Create(ctx, PriceInput{
		StationID:     stationID,
		FuelType:      fuel.Petrol,
		PricePerLiter: types.MustMoney("1500"),
		EffectiveFrom: priceNow.AddDate(0, 0, -7),
		SetBy:         userID,
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, PriceInput{
		StationID:     stationID,
		FuelType:      fuel.Petrol,
		PricePerLiter: types.MustMoney("1580"),
		EffectiveFrom: priceNow,
		SetBy:         userID,
	})
	require.NoError(t, err)

	require.Len(t, repo.prices, 2)
	old, current := repo.prices[0], repo.prices[1]

	assert.False(t, old.Active)
	require.NotNil(t, old.EffectiveTo)
	// Prior interval closes one second before the change.
	assert.Equal(t, priceNow.Add(-time.Second), *old.EffectiveTo)

	assert.True(t, current.Active)
	assert.Nil(t, current.EffectiveTo)

	require.Len(t, repo.history, 2)
	assert.Equal(t, "1500.0000", repo.history[1].OldPrice.StringFixed(4))
	assert.Equal(t, "1580.0000", repo.history[1].NewPrice.StringFixed(4))
}

func TestCreateSkipsHistoryForNonLegacyFuel(t *testing.T) {
	repo := &memPrices{}
	svc, _ := newPriceService(repo)

	_, err := svc.Create(context.Background(), PriceInput{
		StationID:     id.New(),
		FuelType:      fuel.JetA1,
		PricePerLiter: types.MustMoney("2100"),
		EffectiveFrom: priceNow,
		SetBy:         id.New(),
	})
	require.NoError(t, err)

	assert.Len(t, repo.prices, 1)
	assert.Empty(t, repo.history)
}

func TestCreatePricesPerFuelTypeAreIndependent(t *testing.T) {
	repo := &memPrices{}
	svc, _ := newPriceService(repo)
	stationID, userID := id.New(), id.New()
	ctx := context.Background()

	for _, ft := range []fuel.Type{fuel.Petrol, fuel.Diesel} {
		_, err := svc.Create(ctx, PriceInput{
			StationID:     stationID,
			FuelType:      ft,
			PricePerLiter: types.MustMoney("1000"),
			EffectiveFrom: priceNow,
			SetBy:         userID,
		})
		require.NoError(t, err)
	}

	// Setting diesel again leaves the petrol price active.
	_, err := svc.Create(ctx, PriceInput{
		StationID:     stationID,
		FuelType:      fuel.Diesel,
		PricePerLiter: types.MustMoney("1100"),
		EffectiveFrom: priceNow,
		SetBy:         userID,
	})
	require.NoError(t, err)

	petrol, err := svc.Current(ctx, stationID, fuel.Petrol)
	require.NoError(t, err)
	require.NotNil(t, petrol)
	assert.True(t, petrol.Active)

	diesel, err := svc.Current(ctx, stationID, fuel.Diesel)
	require.NoError(t, err)
	assert.Equal(t, "1100.0000", diesel.PricePerLiter.StringFixed(4))
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newPriceService(&memPrices{})
	ctx := context.Background()
	base := PriceInput{
		StationID:     id.New(),
		FuelType:      fuel.Petrol,
		PricePerLiter: types.MustMoney("1000"),
		EffectiveFrom: priceNow,
		SetBy:         id.New(),
	}

	in := base
	in.StationID = id.Nil()
	_, err := svc.Create(ctx, in)
	assert.Error(t, err)

	in = base
	in.FuelType = fuel.Type("plutonium")
	_, err = svc.Create(ctx, in)
	require.Error(t, err)
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, apperror.CodeEnumViolation, appErr.Code)

	in = base
	in.PricePerLiter = types.Zero()
	_, err = svc.Create(ctx, in)
	assert.Error(t, err)

	in = base
	in.EffectiveFrom = time.Time{}
	_, err = svc.Create(ctx, in)
	assert.Error(t, err)
}

func TestCurrentReturnsNilWhenUnset(t *testing.T) {
	svc, _ := newPriceService(&memPrices{})

	price, err := svc.Current(context.Background(), id.New(), fuel.Kerosene)
	require.NoError(t, err)
	assert.Nil(t, price)
}
