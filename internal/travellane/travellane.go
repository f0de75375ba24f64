// Package travellane converts surveyed 2-D coverage polygons into
// travel-lane zones, emits restricted zones for exclusion-flagged
// coverage, and optionally extends aisle corridor endpoints out to the
// travel-lane boundary they sit against.
package travellane

import (
	"fmt"
	"math"

	"github.com/waypoint-works/navgraph/internal/calibration"
	"github.com/waypoint-works/navgraph/internal/geom"
	"github.com/waypoint-works/navgraph/internal/input"
	"github.com/waypoint-works/navgraph/internal/zone"
)

// Diagnostic is an alias for the shared input.Diagnostic shape.
type Diagnostic = input.Diagnostic

// BuildTravelLanes converts every non-exclusion 2-D coverage polygon
// into a travel_lane zone (spec.md §4.E steps 1-2). Polygons yielding
// fewer than 3 vertices after transform are dropped with a
// degenerate_geometry diagnostic.
func BuildTravelLanes(coverage []input.CoveragePolygon, xf *calibration.Transformer) ([]zone.Zone, []Diagnostic) {
	var zones []zone.Zone
	var diags []Diagnostic

	for _, c := range coverage {
		if c.Kind != input.CoverageKind2D || c.Exclusion {
			continue
		}

		px := xf.PolygonToPixels(c.Polygon)
		if len(px) < 3 {
			diags = append(diags, Diagnostic{
				Code: input.CodeDegenerateGeometry, Message: "coverage polygon has fewer than 3 vertices after transform", Subject: c.UID,
			})
			continue
		}

		zones = append(zones, zone.Zone{
			ID:         zone.NewID(),
			Name:       fmt.Sprintf("travel-lane-%s", c.UID),
			Variant:    zone.VariantTravelLane,
			Polygon:    px,
			Confidence: 1,
			Provenance: zone.ProvenanceCoverage,
			Metadata: map[string]string{
				"coverageUid":  c.UID,
				"coverageType": c.Kind.String(),
				"marginMm":     fmt.Sprintf("%g", c.MarginMm),
				"thresholdMm":  fmt.Sprintf("%g", c.ThresholdMm),
			},
		})
	}

	return zones, diags
}

// BuildRestrictedZones emits a restricted zone for every
// exclusion-flagged coverage polygon (spec.md §4.E step 3), regardless
// of kind.
func BuildRestrictedZones(coverage []input.CoveragePolygon, xf *calibration.Transformer) ([]zone.Zone, []Diagnostic) {
	var zones []zone.Zone
	var diags []Diagnostic

	for _, c := range coverage {
		if !c.Exclusion {
			continue
		}

		px := xf.PolygonToPixels(c.Polygon)
		if len(px) < 3 {
			diags = append(diags, Diagnostic{
				Code: input.CodeDegenerateGeometry, Message: "exclusion polygon has fewer than 3 vertices after transform", Subject: c.UID,
			})
			continue
		}

		zones = append(zones, zone.Zone{
			ID:         zone.NewID(),
			Name:       fmt.Sprintf("restricted-%s", c.UID),
			Variant:    zone.VariantRestricted,
			Polygon:    px,
			Confidence: 1,
			Provenance: zone.ProvenanceCoverage,
			Metadata: map[string]string{
				"coverageUid":  c.UID,
				"coverageType": c.Kind.String(),
			},
		})
	}

	return zones, diags
}

// ExtensionOptions configures the aisle-extension post-pass of spec.md
// §4.E. It is a distinct, disable-able pass per spec.md §9 Open
// Question 3: set Enabled=false to leave aisle corridors exactly as
// generated.
type ExtensionOptions struct {
	Enabled    bool
	OverhangPx float64
	MaxReachPx float64
}

// DefaultExtensionOptions matches spec.md §4.E's defaults: enabled, 5px
// overhang, 500px max reach.
func DefaultExtensionOptions() ExtensionOptions {
	return ExtensionOptions{Enabled: true, OverhangPx: 5, MaxReachPx: 500}
}

// ExtendAisles ray-casts each aisle corridor's two end-centres outward
// along the corridor's own centreline until the ray meets a travel-lane
// boundary, then extends the corresponding short edge past that
// boundary by OverhangPx. This applies equally to the 4-vertex
// rectangle singlePairCorridor emits and the 2n-vertex polyline
// chainCorridor emits for longer anchor chains — both are a left walk
// followed by a reversed right walk, so the same left[i]/right[i]
// pairing generalises. Aisles that find no boundary within MaxReachPx,
// or whose polygon isn't shaped like a left/right walk pair, are left
// unchanged. aisles is mutated in place and also returned for
// convenience.
func ExtendAisles(aisles []zone.Zone, lanes []zone.Zone, opts ExtensionOptions) []zone.Zone {
	if !opts.Enabled {
		return aisles
	}

	for i, a := range aisles {
		if a.Variant != zone.VariantAislePath || len(a.Polygon) < 4 || len(a.Polygon)%2 != 0 {
			continue
		}
		aisles[i].Polygon = extendCorridorEndpoints(a.Polygon, lanes, opts)
	}
	return aisles
}

// extendCorridorEndpoints treats poly as a left[0..n-1] walk followed by
// a reversed right[n-1..0] walk, the shape both singlePairCorridor
// (n=2) and chainCorridor (n=len(order)) emit: vertex i and vertex
// len(poly)-1-i are the two edge points straddling the same
// corridor-centreline position. It extends the first and last such
// pair outward along the centreline direction at that end.
func extendCorridorEndpoints(poly geom.Polygon, lanes []zone.Zone, opts ExtensionOptions) geom.Polygon {
	n2 := len(poly)
	n := n2 / 2
	if n < 2 {
		return poly
	}

	centre := func(i int) geom.Point {
		return poly[i].Add(poly[n2-1-i]).Scale(0.5)
	}

	startCentre, startNext := centre(0), centre(1)
	startAxis := startNext.Sub(startCentre)
	startLen := startAxis.Len()

	endCentre, endPrev := centre(n-1), centre(n-2)
	endAxis := endCentre.Sub(endPrev)
	endLen := endAxis.Len()

	out := append(geom.Polygon{}, poly...)

	if startLen > 0 {
		dir := startAxis.Scale(1 / startLen)
		reach, hit := rayReachToLanes(startCentre, dir.Scale(-1), lanes, opts.MaxReachPx)
		if hit {
			delta := dir.Scale(-(reach + opts.OverhangPx))
			out[0] = poly[0].Add(delta)
			out[n2-1] = poly[n2-1].Add(delta)
		}
	}
	if endLen > 0 {
		dir := endAxis.Scale(1 / endLen)
		reach, hit := rayReachToLanes(endCentre, dir, lanes, opts.MaxReachPx)
		if hit {
			delta := dir.Scale(reach + opts.OverhangPx)
			out[n-1] = poly[n-1].Add(delta)
			out[n] = poly[n].Add(delta)
		}
	}
	return out
}

// rayReachToLanes finds the closest travel-lane boundary hit from origin
// along dir, within maxReach. Returns the hit distance and true, or
// (0, false) if nothing is hit within range.
func rayReachToLanes(origin, dir geom.Point, lanes []zone.Zone, maxReach float64) (float64, bool) {
	best := math.Inf(1)
	found := false
	for _, lane := range lanes {
		if lane.Variant != zone.VariantTravelLane {
			continue
		}
		hit, ok := geom.FirstRayPolygonHit(origin, dir, lane.Polygon, 0)
		if ok && hit.Distance < best && hit.Distance <= maxReach {
			best = hit.Distance
			found = true
		}
	}
	if !found {
		return 0, false
	}
	return best, true
}
