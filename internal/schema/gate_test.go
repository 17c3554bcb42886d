package schema

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fuelbook/internal/core/apperror"
	"fuelbook/internal/domain/fuel"
)

func TestValidateRejectsPhantomField(t *testing.T) {
	ctx := context.Background()

	// Every other field is valid; the single phantom still rejects.
	err := Validate(ctx, KindTank, map[string]any{
		"id":                    "x",
		"station_id":            "y",
		"fuel_type":             "diesel",
		"capacity_liters":       10000,
		"current_volume_liters": 500,
		"is_admin":              true,
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeSchemaViolation, appErr.Code)
	assert.Equal(t, "is_admin", appErr.Details["field"])
}

func TestValidateAcceptsPermittedFields(t *testing.T) {
	err := Validate(context.Background(), KindDelivery, map[string]any{
		"id":            "x",
		"tank_id":       "y",
		"reference":     "FD-20260831-ABCDEF",
		"volume_liters": 5000,
		"unit_cost":     1000,
	})
	assert.NoError(t, err)
}

func TestValidateFuelTypeFullRange(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, Validate(ctx, KindTank, map[string]any{"fuel_type": "jet_a1"}))
	assert.NoError(t, Validate(ctx, KindTank, map[string]any{"fuel_type": fuel.LPGAutogas}))

	err := Validate(ctx, KindTank, map[string]any{"fuel_type": "rocket_fuel"})
	require.Error(t, err)
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, apperror.CodeEnumViolation, appErr.Code)
}

func TestValidatePriceHistoryOnlyAcceptsLegacyRange(t *testing.T) {
	ctx := context.Background()

	for _, ft := range []string{"petrol", "diesel", "kerosene"} {
		assert.NoError(t, Validate(ctx, KindPriceHistory, map[string]any{"fuel_type": ft}), ft)
	}

	// Valid in the full range, not in the legacy one.
	err := Validate(ctx, KindPriceHistory, map[string]any{"fuel_type": "jet_a1"})
	require.Error(t, err)
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, apperror.CodeEnumViolation, appErr.Code)
}

func TestValidateEnumFields(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, Validate(ctx, KindFifoLayer, map[string]any{"status": "ACTIVE"}))
	assert.NoError(t, Validate(ctx, KindFifoLayer, map[string]any{"status": "DEPLETED"}))

	err := Validate(ctx, KindFifoLayer, map[string]any{"status": "MELTED"})
	require.Error(t, err)

	err = Validate(ctx, KindLedgerEntry, map[string]any{"account_type": "expenses"})
	require.Error(t, err)
}

func TestValidateUnknownKindFailsClosed(t *testing.T) {
	err := Validate(context.Background(), RecordKind("users"), map[string]any{"id": "x"})
	require.Error(t, err)
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, apperror.CodeSchemaViolation, appErr.Code)
}

func TestFuelTypesFor(t *testing.T) {
	assert.Len(t, FuelTypesFor(KindTank), 22)
	assert.Equal(t, fuel.LegacyTypes(), FuelTypesFor(KindPriceHistory))
	assert.Nil(t, FuelTypesFor(KindDelivery))
}

func TestEveryKindHasDefinition(t *testing.T) {
	for _, kind := range AllKinds() {
		def, ok := DefinitionFor(kind)
		require.True(t, ok, "kind %s has no definition", kind)
		assert.NotEmpty(t, def.TableName)
		assert.NotEmpty(t, def.Fields)
	}
}
