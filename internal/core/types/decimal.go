// Package types provides fixed-precision numeric types for the engine.
//
// All monetary figures are carried at 4 decimal places, all volumes at 3.
// decimal.Decimal is used throughout to keep layer arithmetic exact; every
// arithmetic step that produces a business figure is re-rounded through
// RoundMoney / RoundVolume so persisted and in-memory values never diverge.
package types

import (
	"github.com/shopspring/decimal"
)

// Money is a monetary value with 4 decimal places of precision.
type Money = decimal.Decimal

// Volume is a liquid volume in litres with 3 decimal places of precision.
type Volume = decimal.Decimal

const (
	// MoneyScale is the number of decimal places kept on monetary values.
	MoneyScale int32 = 4

	// VolumeScale is the number of decimal places kept on volumes.
	VolumeScale int32 = 3
)

// DepletionEpsilon is the volume below which a cost layer counts as empty.
// A layer with remaining volume at or under this threshold is DEPLETED.
var DepletionEpsilon = decimal.RequireFromString("0.001")

// RoundMoney rounds to the fixed monetary precision (half-up).
// Rounding an already-rounded value is a no-op.
func RoundMoney(d decimal.Decimal) Money {
	return d.Round(MoneyScale)
}

// RoundVolume rounds to the fixed volume precision (half-up).
func RoundVolume(d decimal.Decimal) Volume {
	return d.Round(VolumeScale)
}

// MoneyFromFloat converts a float to Money, rounding to scale.
// Prefer MoneyFromString for values entered by hand.
func MoneyFromFloat(f float64) Money {
	return RoundMoney(decimal.NewFromFloat(f))
}

// MoneyFromString parses a Money value from its string form.
func MoneyFromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	return RoundMoney(d), nil
}

// MustMoney parses a Money value, panicking on error. For constants and tests.
func MustMoney(s string) Money {
	return RoundMoney(decimal.RequireFromString(s))
}

// VolumeFromFloat converts a float to Volume, rounding to scale.
func VolumeFromFloat(f float64) Volume {
	return RoundVolume(decimal.NewFromFloat(f))
}

// MustVolume parses a Volume value, panicking on error. For constants and tests.
func MustVolume(s string) Volume {
	return RoundVolume(decimal.RequireFromString(s))
}

// Zero returns the zero decimal value.
func Zero() decimal.Decimal {
	return decimal.Zero
}

// IsDepleted reports whether a remaining volume is at or under the
// depletion threshold.
func IsDepleted(remaining Volume) bool {
	return remaining.LessThanOrEqual(DepletionEpsilon)
}
