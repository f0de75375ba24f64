package pathquery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waypoint-works/navgraph/internal/geom"
	"github.com/waypoint-works/navgraph/internal/graphbuild"
	"github.com/waypoint-works/navgraph/internal/zone"
)

func travelLane(id string, poly geom.Polygon) zone.Zone {
	return zone.Zone{ID: id, Variant: zone.VariantTravelLane, Provenance: zone.ProvenanceCoverage, Polygon: poly}
}

func TestQueryScenario6TwoAdjacentLanes(t *testing.T) {
	laneA := travelLane("lane-a", geom.Polygon{{X: 0, Y: 0}, {X: 500, Y: 0}, {X: 500, Y: 100}, {X: 0, Y: 100}})
	laneB := travelLane("lane-b", geom.Polygon{{X: 500, Y: 0}, {X: 1000, Y: 0}, {X: 1000, Y: 100}, {X: 500, Y: 100}})
	zones := []zone.Zone{laneA, laneB}

	// MaxStepPx 100 gives an 80px grid pitch, so each lane's waypoints sit
	// 500/6px apart along y=50 and the closest cross-lane pair (83.3px)
	// is within the 3·AdjacencyTolerancePx = 150px connection limit.
	opts := graphbuild.Options{MaxStepPx: 100, AdjacencyTolerancePx: 50}
	g, _, err := graphbuild.Build(context.Background(), zones, nil, opts)
	require.NoError(t, err)

	result, err := Query(context.Background(), g, zones, nil, geom.Point{X: 100, Y: 50}, geom.Point{X: 900, Y: 50})
	require.NoError(t, err)
	require.True(t, result.Success)

	assert.InDelta(t, 800, result.TotalDistance, 80) // within 10% of the 800px straight line
	require.NotEmpty(t, result.Points)
	// Points are waypoints: the path runs from the waypoint nearest the
	// start, (125,50), to the one nearest the end, (875,50).
	assert.InDelta(t, 125, result.Points[0].X, 1)
	assert.InDelta(t, 875, result.Points[len(result.Points)-1].X, 1)
}

func TestQueryEmptyGraphReportsNoTravelableZones(t *testing.T) {
	g := &graphbuild.Graph{}
	result, err := Query(context.Background(), g, nil, nil, geom.Point{}, geom.Point{X: 1})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, ReasonNoTravelableZones, result.Reason)
}

func TestQueryPointBlockedByObstacle(t *testing.T) {
	lane := travelLane("lane-a", geom.Polygon{{X: 0, Y: 0}, {X: 1000, Y: 0}, {X: 1000, Y: 100}, {X: 0, Y: 100}})
	zones := []zone.Zone{lane}
	obstacle := geom.Polygon{{X: 40, Y: 40}, {X: 60, Y: 40}, {X: 60, Y: 60}, {X: 40, Y: 60}}

	g, _, err := graphbuild.Build(context.Background(), zones, []geom.Polygon{obstacle}, graphbuild.DefaultOptions())
	require.NoError(t, err)

	result, err := Query(context.Background(), g, zones, []geom.Polygon{obstacle}, geom.Point{X: 50, Y: 50}, geom.Point{X: 900, Y: 50})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, ReasonPointBlocked, result.Reason)
}

func TestQueryUnreachableWhenZonesDisconnected(t *testing.T) {
	laneA := travelLane("lane-a", geom.Polygon{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}, {X: 0, Y: 100}})
	laneB := travelLane("lane-b", geom.Polygon{{X: 5000, Y: 5000}, {X: 5100, Y: 5000}, {X: 5100, Y: 5100}, {X: 5000, Y: 5100}})
	zones := []zone.Zone{laneA, laneB}

	g, _, err := graphbuild.Build(context.Background(), zones, nil, graphbuild.DefaultOptions())
	require.NoError(t, err)

	result, err := Query(context.Background(), g, zones, nil, geom.Point{X: 50, Y: 50}, geom.Point{X: 5050, Y: 5050})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, ReasonUnreachable, result.Reason)
}

func TestQueryCancellation(t *testing.T) {
	lane := travelLane("lane-a", geom.Polygon{{X: 0, Y: 0}, {X: 1000, Y: 0}, {X: 1000, Y: 100}, {X: 0, Y: 100}})
	zones := []zone.Zone{lane}
	g, _, err := graphbuild.Build(context.Background(), zones, nil, graphbuild.DefaultOptions())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Query(ctx, g, zones, nil, geom.Point{X: 50, Y: 50}, geom.Point{X: 900, Y: 50})
	assert.ErrorIs(t, err, graphbuild.ErrCancelled)
}
