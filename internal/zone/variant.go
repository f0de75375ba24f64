// Package zone defines the closed variant taxonomy every generated or
// imported zone is classified into, the travelability whitelist that
// drives graph building, and the Zone record itself.
package zone

// Variant is a closed enumeration of zone kinds. New variants require a
// code change, not configuration — the travelability whitelist and the
// external-name table both switch on the full set.
type Variant int

const (
	VariantUnknown Variant = iota

	// Travelable variants.
	VariantTravelLane
	VariantAislePath
	VariantParkingLot

	// Non-travelable variants.
	VariantRacking
	VariantRackingArea
	VariantDockingArea
	VariantConveyorArea
	VariantAdministrative
	VariantStorageFloor
	VariantStagingArea
	VariantChargingStation
	VariantHazardZone
	VariantRestricted
	VariantBlockedArea
	VariantOther
	VariantAisle     // legacy/ambiguous, deliberately not travelable
	VariantOpenFloor // deliberately not travelable; needs explicit reclassification
)

// Travelable reports whether v is one of the three whitelisted
// travelable variants. Everything else, including the legacy Aisle and
// OpenFloor variants, is non-travelable by construction.
func Travelable(v Variant) bool {
	switch v {
	case VariantTravelLane, VariantAislePath, VariantParkingLot:
		return true
	default:
		return false
	}
}

// externalNames is the single source of truth for the external-name ↔
// internal-variant mapping. It must be total over every Variant other
// than VariantUnknown for exports to succeed.
var externalNames = map[Variant]string{
	VariantTravelLane:      "travel_lane",
	VariantAislePath:       "aisle_path",
	VariantParkingLot:      "parking_lot",
	VariantRacking:         "racking",
	VariantRackingArea:     "racking_area",
	VariantDockingArea:     "docking_area",
	VariantConveyorArea:    "conveyor_area",
	VariantAdministrative:  "administrative",
	VariantStorageFloor:    "storage_floor",
	VariantStagingArea:     "staging_area",
	VariantChargingStation: "charging_station",
	VariantHazardZone:      "hazard_zone",
	VariantRestricted:      "restricted",
	VariantBlockedArea:     "blocked_area",
	VariantOther:           "other",
	VariantAisle:           "aisle",
	VariantOpenFloor:       "open_floor",
}

var internalVariants = func() map[string]Variant {
	m := make(map[string]Variant, len(externalNames))
	for v, name := range externalNames {
		m[name] = v
	}
	return m
}()

// ExternalName returns the external wire name for v. The table is total
// over every variant except VariantUnknown, which is never exported; it
// returns "" for VariantUnknown and any out-of-range value.
func ExternalName(v Variant) string {
	return externalNames[v]
}

// FromExternalName resolves an external wire name to its internal
// Variant. Unknown names fall back to (VariantOther, false) so callers
// can still proceed (treating the zone as non-travelable "other") while
// being told the name was not recognised.
func FromExternalName(name string) (Variant, bool) {
	v, ok := internalVariants[name]
	if !ok {
		return VariantOther, false
	}
	return v, true
}
