package graphbuild

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waypoint-works/navgraph/internal/geom"
	"github.com/waypoint-works/navgraph/internal/zone"
)

func areaZone(id string, poly geom.Polygon) zone.Zone {
	return zone.Zone{ID: id, Variant: zone.VariantTravelLane, Provenance: zone.ProvenanceCoverage, Polygon: poly}
}

func TestBuildGraphWaypointingScenario4(t *testing.T) {
	// Scenario 4 from spec §8: 1000x1000 square, no obstacles, max_step=400.
	z := areaZone("area-1", geom.Polygon{{X: 0, Y: 0}, {X: 1000, Y: 0}, {X: 1000, Y: 1000}, {X: 0, Y: 1000}})
	opts := Options{MaxStepPx: 400, AdjacencyTolerancePx: 50}

	g, diags, err := Build(context.Background(), []zone.Zone{z}, nil, opts)
	require.NoError(t, err)
	for _, d := range diags {
		assert.NotEqual(t, "isolated_node", d.Code)
	}

	ids := g.ZoneWaypoints["area-1"]
	require.NotEmpty(t, ids)
	assert.GreaterOrEqual(t, len(ids), 9)

	for _, n := range g.Nodes {
		assert.True(t, geom.PointInOnPolygon(n.Position, z.Polygon))
	}

	// Every pair within 600px must be connected.
	byID := map[int]Node{}
	for _, n := range g.Nodes {
		byID[n.ID] = n
	}
	adjacency := map[int]map[int]bool{}
	for _, e := range g.Edges {
		if adjacency[e.From] == nil {
			adjacency[e.From] = map[int]bool{}
		}
		adjacency[e.From][e.To] = true
	}
	for _, a := range g.Nodes {
		for _, b := range g.Nodes {
			if a.ID == b.ID {
				continue
			}
			if a.Position.Dist(b.Position) <= 600 {
				assert.True(t, adjacency[a.ID][b.ID], "expected edge between %d and %d", a.ID, b.ID)
			}
		}
	}
}

func TestBuildGraphEdgeRejectionByObstacleScenario5(t *testing.T) {
	lane := areaZone("lane-1", geom.Polygon{{X: 0, Y: 0}, {X: 1000, Y: 0}, {X: 1000, Y: 100}, {X: 0, Y: 100}})
	obstacle := geom.Polygon{{X: 400, Y: 20}, {X: 600, Y: 20}, {X: 600, Y: 80}, {X: 400, Y: 80}}

	opts := Options{MaxStepPx: 500, AdjacencyTolerancePx: 50}
	g, _, err := Build(context.Background(), []zone.Zone{lane}, []geom.Polygon{obstacle}, opts)
	require.NoError(t, err)

	// The 400px grid yields two waypoints, (250,50) and (750,50), straddling
	// the obstacle (the centroid lies inside it); confirm no edge directly
	// crosses it.
	require.Len(t, g.Nodes, 2)
	for _, e := range g.Edges {
		from := findNode(g, e.From)
		to := findNode(g, e.To)
		seg := geom.Segment{A: from.Position, B: to.Position}
		assert.False(t, geom.SegmentCrossesPolygon(seg, obstacle), "edge %d->%d crosses obstacle", e.From, e.To)
	}
}

func findNode(g *Graph, id int) Node {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n
		}
	}
	return Node{}
}

func TestBuildGraphExcludesNonTravelableZones(t *testing.T) {
	racking := zone.Zone{ID: "rack-1", Variant: zone.VariantRacking, Polygon: geom.Polygon{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}}}
	g, _, err := Build(context.Background(), []zone.Zone{racking}, nil, DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, g.Nodes)
}

func TestBuildGraphAislesConnectByChain(t *testing.T) {
	aisle := zone.Zone{
		ID: "aisle-1", Variant: zone.VariantAislePath, Provenance: zone.ProvenanceTDOA,
		Polygon: geom.Polygon{{X: 0, Y: 450}, {X: 1000, Y: 450}, {X: 1000, Y: 550}, {X: 0, Y: 550}},
	}
	g, _, err := Build(context.Background(), []zone.Zone{aisle}, nil, Options{MaxStepPx: 300, AdjacencyTolerancePx: 50})
	require.NoError(t, err)

	ids := g.ZoneWaypoints["aisle-1"]
	require.GreaterOrEqual(t, len(ids), 2)
	assert.True(t, Connected(g, ids[0]), "aisle waypoints do not form one connected chain")

	var startCount, endCount int
	for _, n := range g.Nodes {
		switch n.AislePosition {
		case AislePositionStart:
			startCount++
		case AislePositionEnd:
			endCount++
		}
	}
	assert.Equal(t, 1, startCount)
	assert.Equal(t, 1, endCount)
}

func TestBuildGraphCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	z := areaZone("area-1", geom.Polygon{{X: 0, Y: 0}, {X: 1000, Y: 0}, {X: 1000, Y: 1000}, {X: 0, Y: 1000}})
	_, _, err := Build(ctx, []zone.Zone{z}, nil, DefaultOptions())
	assert.ErrorIs(t, err, ErrCancelled)
}
