package travellane

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waypoint-works/navgraph/internal/calibration"
	"github.com/waypoint-works/navgraph/internal/geom"
	"github.com/waypoint-works/navgraph/internal/input"
	"github.com/waypoint-works/navgraph/internal/zone"
)

func identityTransformer(t *testing.T) *calibration.Transformer {
	t.Helper()
	xf, err := calibration.NewTransformer(calibration.Record{
		WidthPx: 10000, HeightPx: 10000, CentrePxX: 5000, CentrePxY: 5000, RawScale: 0.01,
	}, calibration.Options{FlipY: false, FlipX: false})
	require.NoError(t, err)
	return xf
}

func squareCoverage(uid string, kind input.CoverageKind, exclusion bool) input.CoveragePolygon {
	return input.CoveragePolygon{
		UID: uid, Kind: kind, Exclusion: exclusion,
		Polygon: geom.Polygon{{X: 0, Y: 0}, {X: 1000, Y: 0}, {X: 1000, Y: 1000}, {X: 0, Y: 1000}},
	}
}

func TestBuildTravelLanesKeepsNonExclusion2D(t *testing.T) {
	coverage := []input.CoveragePolygon{
		squareCoverage("cov-1", input.CoverageKind2D, false),
		squareCoverage("cov-2", input.CoverageKind1D, false), // wrong kind, excluded
		squareCoverage("cov-3", input.CoverageKind2D, true),  // exclusion, excluded
	}
	zones, diags := BuildTravelLanes(coverage, identityTransformer(t))
	assert.Empty(t, diags)
	require.Len(t, zones, 1)
	assert.Equal(t, zone.VariantTravelLane, zones[0].Variant)
	assert.Equal(t, "cov-1", zones[0].Metadata["coverageUid"])
}

func TestBuildRestrictedZonesKeepsExclusionOnly(t *testing.T) {
	coverage := []input.CoveragePolygon{
		squareCoverage("cov-1", input.CoverageKind2D, false),
		squareCoverage("cov-2", input.CoverageKind2D, true),
	}
	zones, diags := BuildRestrictedZones(coverage, identityTransformer(t))
	assert.Empty(t, diags)
	require.Len(t, zones, 1)
	assert.Equal(t, zone.VariantRestricted, zones[0].Variant)
	assert.Equal(t, "cov-2", zones[0].Metadata["coverageUid"])
}

func TestBuildTravelLanesFlagsDegeneratePolygon(t *testing.T) {
	coverage := []input.CoveragePolygon{
		{UID: "cov-1", Kind: input.CoverageKind2D, Polygon: geom.Polygon{{X: 0, Y: 0}, {X: 1, Y: 0}}},
	}
	zones, diags := BuildTravelLanes(coverage, identityTransformer(t))
	assert.Empty(t, zones)
	require.Len(t, diags, 1)
	assert.Equal(t, input.CodeDegenerateGeometry, diags[0].Code)
}

func TestExtendAislesDisabledLeavesPolygonUnchanged(t *testing.T) {
	aisle := zone.Zone{
		Variant: zone.VariantAislePath,
		Polygon: geom.Polygon{{X: 100, Y: 450}, {X: 900, Y: 450}, {X: 900, Y: 550}, {X: 100, Y: 550}},
	}
	lanes := []zone.Zone{
		{Variant: zone.VariantTravelLane, Polygon: geom.Polygon{{X: 0, Y: 0}, {X: 1000, Y: 0}, {X: 1000, Y: 1000}, {X: 0, Y: 1000}}},
	}
	out := ExtendAisles([]zone.Zone{aisle}, lanes, ExtensionOptions{Enabled: false})
	assert.Equal(t, aisle.Polygon, out[0].Polygon)
}

func TestExtendAislesStretchesTowardLaneBoundary(t *testing.T) {
	// Aisle sits inside a larger travel lane with room to extend on both ends.
	aisle := zone.Zone{
		Variant: zone.VariantAislePath,
		Polygon: geom.Polygon{{X: 200, Y: 450}, {X: 800, Y: 450}, {X: 800, Y: 550}, {X: 200, Y: 550}},
	}
	lanes := []zone.Zone{
		{Variant: zone.VariantTravelLane, Polygon: geom.Polygon{{X: 0, Y: 0}, {X: 1000, Y: 0}, {X: 1000, Y: 1000}, {X: 0, Y: 1000}}},
	}
	out := ExtendAisles([]zone.Zone{aisle}, lanes, DefaultExtensionOptions())
	require.Len(t, out, 1)

	bounds := out[0].Polygon.Bounds()
	assert.Less(t, bounds.MinX, 200.0)
	assert.Greater(t, bounds.MaxX, 800.0)
}

func TestExtendAislesStretchesChainCorridorEndpoints(t *testing.T) {
	// A 3-anchor straight chain corridor, laid out the way
	// aisle.chainCorridor emits one: left walk then reversed right walk.
	aisle := zone.Zone{
		Variant: zone.VariantAislePath,
		Polygon: geom.Polygon{
			{X: 100, Y: 550}, {X: 500, Y: 550}, {X: 900, Y: 550},
			{X: 900, Y: 450}, {X: 500, Y: 450}, {X: 100, Y: 450},
		},
	}
	lanes := []zone.Zone{
		{Variant: zone.VariantTravelLane, Polygon: geom.Polygon{{X: 0, Y: 0}, {X: 1000, Y: 0}, {X: 1000, Y: 1000}, {X: 0, Y: 1000}}},
	}
	out := ExtendAisles([]zone.Zone{aisle}, lanes, DefaultExtensionOptions())
	require.Len(t, out, 1)
	require.Len(t, out[0].Polygon, 6)

	bounds := out[0].Polygon.Bounds()
	assert.Less(t, bounds.MinX, 100.0)
	assert.Greater(t, bounds.MaxX, 900.0)

	// The interior (middle-anchor) vertices are untouched by the extension.
	assert.Equal(t, geom.Point{X: 500, Y: 550}, out[0].Polygon[1])
	assert.Equal(t, geom.Point{X: 500, Y: 450}, out[0].Polygon[4])
}
