// Package schema is the write gate for every persisted record.
//
// Each record kind is a closed enumeration variant that statically carries
// its permitted field set and its enum constraints. The runtime gate in
// gate.go guards boundary payloads; internal construction goes through
// typed models, so a gate rejection always means a programming error or a
// hostile payload, never normal operation.
package schema

import (
	"fuelbook/internal/domain/fuel"
)

// RecordKind identifies a persisted record type.
type RecordKind string

const (
	KindTank           RecordKind = "tank"
	KindDelivery       RecordKind = "delivery"
	KindFifoLayer      RecordKind = "fifo_layer"
	KindReconciliation RecordKind = "reconciliation"
	KindConsumptionLog RecordKind = "fifo_consumption_log"
	KindLedgerEntry    RecordKind = "ledger_entry"
	KindNotification   RecordKind = "notification"
	KindAuditLog       RecordKind = "audit_log"
	KindThreshold      RecordKind = "stock_alert_threshold"
	KindSellingPrice   RecordKind = "selling_price"
	KindPriceHistory   RecordKind = "price_history"
	KindMeter          RecordKind = "meter"
	KindMeterReading   RecordKind = "meter_reading"
	KindDipReading     RecordKind = "dip_reading"
)

// AllKinds returns every registered record kind.
func AllKinds() []RecordKind {
	return []RecordKind{
		KindTank, KindDelivery, KindFifoLayer, KindReconciliation,
		KindConsumptionLog, KindLedgerEntry, KindNotification, KindAuditLog,
		KindThreshold, KindSellingPrice, KindPriceHistory,
		KindMeter, KindMeterReading, KindDipReading,
	}
}

// FuelRange selects which fuel enumeration a record kind accepts.
type FuelRange int

const (
	// FuelRangeNone means the kind has no fuel-type field.
	FuelRangeNone FuelRange = iota
	// FuelRangeFull accepts the complete fuel-type enumeration.
	FuelRangeFull
	// FuelRangeLegacy accepts only the original petrol/diesel/kerosene set.
	FuelRangeLegacy
)

// Definition describes the write contract of one record kind.
type Definition struct {
	Kind      RecordKind
	TableName string

	// Fields is the closed set of permitted column names.
	Fields []string

	// FuelField names the fuel-type column, empty if none.
	FuelField string
	FuelRange FuelRange

	// EnumFields maps enum-constrained columns (other than the fuel type)
	// to their permitted values.
	EnumFields map[string][]string
}

// DefinitionFor returns the write contract for a record kind.
//
// The switch is exhaustive over the closed kind set: adding a kind without
// a definition is caught the first time any code path persists it.
func DefinitionFor(kind RecordKind) (Definition, bool) {
	switch kind {
	case KindTank:
		return Definition{
			Kind:      KindTank,
			TableName: "tanks",
			Fields: []string{
				"id", "station_id", "fuel_type", "capacity_liters",
				"current_volume_liters", "created_at", "updated_at",
			},
			FuelField: "fuel_type",
			FuelRange: FuelRangeFull,
		}, true

	case KindDelivery:
		return Definition{
			Kind:      KindDelivery,
			TableName: "fuel_deliveries",
			Fields: []string{
				"id", "tank_id", "reference", "volume_liters", "unit_cost",
				"total_cost", "delivery_date", "delivery_time", "supplier",
				"invoice_number", "recorded_by", "created_at",
			},
		}, true

	case KindFifoLayer:
		return Definition{
			Kind:      KindFifoLayer,
			TableName: "fifo_layers",
			Fields: []string{
				"id", "tank_id", "delivery_id", "sequence",
				"original_volume_liters", "remaining_volume_liters",
				"cost_per_liter", "original_value", "remaining_value",
				"consumed_value", "status", "delivery_date",
				"created_at", "updated_at",
			},
			EnumFields: map[string][]string{
				"status": {"ACTIVE", "DEPLETED", "ADJUSTED", "WRITTEN_DOWN"},
			},
		}, true

	case KindReconciliation:
		return Definition{
			Kind:      KindReconciliation,
			TableName: "daily_reconciliations",
			Fields: []string{
				"id", "tank_id", "reconciliation_date",
				"opening_stock_liters", "delivered_liters", "dispensed_liters",
				"theoretical_closing_stock_liters", "actual_closing_stock_liters",
				"total_sales", "total_cogs", "gross_profit",
				"valuation_method", "valuation_quality",
				"opening_inventory_value", "closing_inventory_value",
				"recorded_by", "created_at",
			},
			EnumFields: map[string][]string{
				"valuation_method":  {"FIFO"},
				"valuation_quality": {"complete", "partial_layers"},
			},
		}, true

	case KindConsumptionLog:
		return Definition{
			Kind:      KindConsumptionLog,
			TableName: "fifo_consumption_log",
			Fields: []string{
				"id", "reconciliation_id", "layer_id", "sequence",
				"volume_consumed_liters", "cost_per_liter",
				"valuation_impact", "created_at",
			},
		}, true

	case KindLedgerEntry:
		return Definition{
			Kind:      KindLedgerEntry,
			TableName: "ledger_entries",
			Fields: []string{
				"id", "station_id", "entry_date", "account_type", "fuel_type",
				"debit_amount", "credit_amount", "reconciliation_id", "created_at",
			},
			FuelField: "fuel_type",
			FuelRange: FuelRangeFull,
			EnumFields: map[string][]string{
				"account_type": {"revenue", "cogs"},
			},
		}, true

	case KindNotification:
		return Definition{
			Kind:      KindNotification,
			TableName: "notifications",
			Fields: []string{
				"id", "station_id", "tank_id", "meter_id",
				"notification_type", "severity", "magnitude",
				"variance_percentage", "status", "message",
				"created_at", "updated_at",
			},
			EnumFields: map[string][]string{
				"notification_type": {"volume_variance", "low_stock"},
				"severity":          {"low", "medium", "high", "critical"},
				"status":            {"open", "investigating", "resolved"},
			},
		}, true

	case KindAuditLog:
		return Definition{
			Kind:      KindAuditLog,
			TableName: "audit_log",
			Fields: []string{
				"id", "table_name", "record_id", "action",
				"old_values", "new_values", "old_values_compressed",
				"new_values_compressed", "compression_algo",
				"actor_id", "created_at",
			},
			EnumFields: map[string][]string{
				"action": {"create", "update", "delete"},
			},
		}, true

	case KindThreshold:
		return Definition{
			Kind:      KindThreshold,
			TableName: "stock_alert_thresholds",
			Fields: []string{
				"id", "tank_id", "low_stock_percentage",
				"critical_stock_percentage", "reorder_point_liters",
				"active", "created_at", "updated_at",
			},
		}, true

	case KindSellingPrice:
		return Definition{
			Kind:      KindSellingPrice,
			TableName: "selling_prices",
			Fields: []string{
				"id", "station_id", "fuel_type", "price_per_liter",
				"effective_from", "effective_to", "active", "set_by", "created_at",
			},
			FuelField: "fuel_type",
			FuelRange: FuelRangeFull,
		}, true

	case KindPriceHistory:
		// Price history predates the fuel-range expansion and still only
		// accepts the legacy set.
		return Definition{
			Kind:      KindPriceHistory,
			TableName: "price_change_history",
			Fields: []string{
				"id", "station_id", "fuel_type", "old_price", "new_price",
				"changed_by", "changed_at",
			},
			FuelField: "fuel_type",
			FuelRange: FuelRangeLegacy,
		}, true

	case KindMeter:
		return Definition{
			Kind:      KindMeter,
			TableName: "meters",
			Fields: []string{
				"id", "tank_id", "meter_number", "active", "created_at",
			},
		}, true

	case KindMeterReading:
		return Definition{
			Kind:      KindMeterReading,
			TableName: "meter_readings",
			Fields: []string{
				"id", "meter_id", "reading_date", "opening_reading_liters",
				"closing_reading_liters", "dispensed_liters",
				"recorded_by", "created_at",
			},
		}, true

	case KindDipReading:
		return Definition{
			Kind:      KindDipReading,
			TableName: "dip_readings",
			Fields: []string{
				"id", "tank_id", "reading_date", "reading_type",
				"volume_liters", "recorded_by", "created_at",
			},
			EnumFields: map[string][]string{
				"reading_type": {"morning", "evening"},
			},
		}, true
	}

	return Definition{}, false
}

// FuelTypesFor returns the ordered fuel-type set a record kind accepts.
// Kinds without a fuel-type field return nil.
func FuelTypesFor(kind RecordKind) []fuel.Type {
	def, ok := DefinitionFor(kind)
	if !ok {
		return nil
	}
	switch def.FuelRange {
	case FuelRangeFull:
		return fuel.AllTypes()
	case FuelRangeLegacy:
		return fuel.LegacyTypes()
	default:
		return nil
	}
}
