package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fuelbook/internal/core/apperror"
	"fuelbook/internal/core/id"
	"fuelbook/internal/core/types"
	"fuelbook/internal/domain/fuel"
)

type memLedger struct {
	entries []*Entry
	failAll bool
}

func (m *memLedger) CreateBatch(_ context.Context, entries []*Entry) error {
	if m.failAll {
		return errors.New("insert failed")
	}
	m.entries = append(m.entries, entries...)
	return nil
}

func (m *memLedger) GetByReconciliation(_ context.Context, reconciliationID id.ID) ([]*Entry, error) {
	var out []*Entry
	for _, e := range m.entries {
		if e.ReconciliationID == reconciliationID {
			out = append(out, e)
		}
	}
	return out, nil
}

func TestPostWritesBalancedPair(t *testing.T) {
	repo := &memLedger{}
	svc := NewService(repo, types.FixedClock{T: time.Date(2026, 3, 15, 20, 0, 0, 0, time.UTC)})

	reconID := id.New()
	err := svc.Post(context.Background(), PostInput{
		StationID:        id.New(),
		FuelType:         fuel.Petrol,
		Date:             time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		ReconciliationID: reconID,
		TotalSales:       types.MustMoney("945000"),
		TotalCOGS:        types.MustMoney("610000"),
	})
	require.NoError(t, err)

	entries, err := repo.GetByReconciliation(context.Background(), reconID)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	revenue, cogs := entries[0], entries[1]
	assert.Equal(t, AccountRevenue, revenue.AccountType)
	assert.True(t, revenue.DebitAmount.IsZero())
	assert.Equal(t, "945000.0000", revenue.CreditAmount.StringFixed(4))

	assert.Equal(t, AccountCOGS, cogs.AccountType)
	assert.Equal(t, "610000.0000", cogs.DebitAmount.StringFixed(4))
	assert.True(t, cogs.CreditAmount.IsZero())

	for _, e := range entries {
		assert.Equal(t, fuel.Petrol, e.FuelType)
		assert.Equal(t, reconID, e.ReconciliationID)
	}
}

func TestPostZeroDayStillWritesBothRows(t *testing.T) {
	repo := &memLedger{}
	svc := NewService(repo, nil)

	err := svc.Post(context.Background(), PostInput{
		StationID:        id.New(),
		FuelType:         fuel.Diesel,
		Date:             time.Now().UTC(),
		ReconciliationID: id.New(),
		TotalSales:       types.Zero(),
		TotalCOGS:        types.Zero(),
	})
	require.NoError(t, err)
	require.Len(t, repo.entries, 2)
	assert.True(t, repo.entries[0].CreditAmount.IsZero())
	assert.True(t, repo.entries[1].DebitAmount.IsZero())
}

func TestPostRequiresIdentifiers(t *testing.T) {
	svc := NewService(&memLedger{}, nil)

	err := svc.Post(context.Background(), PostInput{StationID: id.New()})
	require.Error(t, err)
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, apperror.CodeMissingField, appErr.Code)

	err = svc.Post(context.Background(), PostInput{ReconciliationID: id.New()})
	require.Error(t, err)
}

func TestPostPropagatesBatchFailure(t *testing.T) {
	repo := &memLedger{failAll: true}
	svc := NewService(repo, nil)

	err := svc.Post(context.Background(), PostInput{
		StationID:        id.New(),
		FuelType:         fuel.Petrol,
		Date:             time.Now().UTC(),
		ReconciliationID: id.New(),
		TotalSales:       types.MustMoney("100"),
		TotalCOGS:        types.MustMoney("60"),
	})
	require.Error(t, err)
	assert.Empty(t, repo.entries)
}
