// Package fuel defines the closed fuel-type enumeration.
//
// The full range covers everything a station network stocks today. The
// legacy range is the original three-type set; the price-change history
// table predates the expansion and still only accepts those.
package fuel

// Type is a fuel type identifier.
type Type string

// Full fuel-type range.
const (
	Petrol          Type = "petrol"
	Petrol95        Type = "petrol_95"
	Petrol98        Type = "petrol_98"
	PetrolE10       Type = "petrol_e10"
	Diesel          Type = "diesel"
	DieselPremium   Type = "diesel_premium"
	DieselWinter    Type = "diesel_winter"
	Biodiesel       Type = "biodiesel"
	Kerosene        Type = "kerosene"
	KerosenePremium Type = "kerosene_premium"
	JetA1           Type = "jet_a1"
	Avgas100LL      Type = "avgas_100ll"
	MarineGasoil    Type = "marine_gasoil"
	HeavyFuelOil    Type = "heavy_fuel_oil"
	LPGAutogas      Type = "lpg_autogas"
	LPGPropane      Type = "lpg_propane"
	LPGButane       Type = "lpg_butane"
	CNG             Type = "cng"
	EthanolE85      Type = "ethanol_e85"
	AdBlue          Type = "adblue"
	TwoStrokeMix    Type = "two_stroke_mix"
	Paraffin        Type = "paraffin"
)

// allTypes is the full range in display order.
var allTypes = []Type{
	Petrol, Petrol95, Petrol98, PetrolE10,
	Diesel, DieselPremium, DieselWinter, Biodiesel,
	Kerosene, KerosenePremium,
	JetA1, Avgas100LL,
	MarineGasoil, HeavyFuelOil,
	LPGAutogas, LPGPropane, LPGButane, CNG,
	EthanolE85, AdBlue, TwoStrokeMix, Paraffin,
}

// legacyTypes is the original three-type range kept for price history.
var legacyTypes = []Type{Petrol, Diesel, Kerosene}

var allSet = func() map[Type]struct{} {
	m := make(map[Type]struct{}, len(allTypes))
	for _, t := range allTypes {
		m[t] = struct{}{}
	}
	return m
}()

var legacySet = func() map[Type]struct{} {
	m := make(map[Type]struct{}, len(legacyTypes))
	for _, t := range legacyTypes {
		m[t] = struct{}{}
	}
	return m
}()

// AllTypes returns the full fuel-type range in a stable order.
func AllTypes() []Type {
	out := make([]Type, len(allTypes))
	copy(out, allTypes)
	return out
}

// LegacyTypes returns the legacy three-type range in a stable order.
func LegacyTypes() []Type {
	out := make([]Type, len(legacyTypes))
	copy(out, legacyTypes)
	return out
}

// Valid reports whether t belongs to the full range.
func (t Type) Valid() bool {
	_, ok := allSet[t]
	return ok
}

// ValidLegacy reports whether t belongs to the legacy range.
func (t Type) ValidLegacy() bool {
	_, ok := legacySet[t]
	return ok
}

func (t Type) String() string { return string(t) }
