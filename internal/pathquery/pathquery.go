// Package pathquery answers shortest-path queries against a built
// navigation graph: nearest-usable-node search followed by a classical
// Dijkstra search.
package pathquery

import (
	"context"
	"math"
	"sync"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/waypoint-works/navgraph/internal/geom"
	"github.com/waypoint-works/navgraph/internal/graphbuild"
	"github.com/waypoint-works/navgraph/internal/zone"
)

// Segment is one edge of a returned path, in query order.
type Segment struct {
	From, To int
	Weight   float64
}

// Result is the outcome of a path query, per spec.md §6's wire shape.
// Success=false always carries a Reason and never an error — only
// context cancellation returns a real error (graphbuild.ErrCancelled).
type Result struct {
	Success       bool
	Points        []geom.Point
	TotalDistance float64
	Segments      []Segment
	Reason        string
}

const (
	ReasonNoTravelableZones = "no travelable zones"
	ReasonPointBlocked      = "point blocked"
	ReasonOutsideZone       = "point outside any travelable zone"
	ReasonUnreachable       = "unreachable"
)

// gonumGraphs caches the gonum translation of a graphbuild.Graph, built
// once on first query and reused by every subsequent query against the
// same (read-only) graph — graphs are shared read-only across
// concurrent queries per spec.md §5's shared-resource policy.
var gonumGraphs sync.Map // *graphbuild.Graph -> *simple.WeightedUndirectedGraph

func gonumGraphFor(g *graphbuild.Graph) *simple.WeightedUndirectedGraph {
	if v, ok := gonumGraphs.Load(g); ok {
		return v.(*simple.WeightedUndirectedGraph)
	}

	sg := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	for _, n := range g.Nodes {
		sg.AddNode(simple.Node(n.ID))
	}
	for _, e := range g.Edges {
		sg.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(e.From), T: simple.Node(e.To), W: e.Weight})
	}

	actual, _ := gonumGraphs.LoadOrStore(g, sg)
	return actual.(*simple.WeightedUndirectedGraph)
}

// Query implements spec.md §4.H: locate the nearest usable node to start
// and end, reject query points inside an obstacle, then run Dijkstra
// between them. ctx is checked once before the search begins; a
// cancelled context yields (Result{}, graphbuild.ErrCancelled).
func Query(ctx context.Context, g *graphbuild.Graph, zones []zone.Zone, obstacles []geom.Polygon, start, end geom.Point) (Result, error) {
	if len(g.Nodes) == 0 {
		return Result{Success: false, Reason: ReasonNoTravelableZones}, nil
	}
	if pointBlocked(start, obstacles) || pointBlocked(end, obstacles) {
		return Result{Success: false, Reason: ReasonPointBlocked}, nil
	}

	startNode, ok := nearestUsableNode(g, zones, start)
	if !ok {
		return Result{Success: false, Reason: ReasonOutsideZone}, nil
	}
	endNode, ok := nearestUsableNode(g, zones, end)
	if !ok {
		return Result{Success: false, Reason: ReasonOutsideZone}, nil
	}

	if err := ctx.Err(); err != nil {
		return Result{}, graphbuild.ErrCancelled
	}

	sg := gonumGraphFor(g)
	shortest := path.DijkstraFrom(simple.Node(startNode.ID), sg)
	nodePath, totalWeight := shortest.To(int64(endNode.ID))
	if len(nodePath) == 0 {
		return Result{Success: false, Reason: ReasonUnreachable}, nil
	}

	byID := make(map[int]graphbuild.Node, len(g.Nodes))
	for _, n := range g.Nodes {
		byID[n.ID] = n
	}

	points := make([]geom.Point, len(nodePath))
	var segments []Segment
	for i, gn := range nodePath {
		nd := byID[int(gn.ID())]
		points[i] = nd.Position
		if i > 0 {
			prev := byID[int(nodePath[i-1].ID())]
			segments = append(segments, Segment{From: prev.ID, To: nd.ID, Weight: prev.Position.Dist(nd.Position)})
		}
	}

	return Result{
		Success:       true,
		Points:        points,
		TotalDistance: totalWeight,
		Segments:      segments,
	}, nil
}

func pointBlocked(p geom.Point, obstacles []geom.Polygon) bool {
	for _, o := range obstacles {
		if geom.PointInPolygon(p, o) {
			return true
		}
	}
	return false
}

// zoneIndexes caches the R-tree built over a zone slice's bounding
// boxes, keyed by the graph it was built alongside, so repeated queries
// against the same graph don't rebuild it.
var zoneIndexes sync.Map // *graphbuild.Graph -> *geom.Index

func zoneIndexFor(g *graphbuild.Graph, zones []zone.Zone) *geom.Index {
	if v, ok := zoneIndexes.Load(g); ok {
		return v.(*geom.Index)
	}
	entries := make([]geom.Entry, len(zones))
	for i, z := range zones {
		entries[i] = geom.Entry{ID: i, Bounds: z.Polygon.Bounds()}
	}
	idx := geom.NewIndex(entries)
	actual, _ := zoneIndexes.LoadOrStore(g, idx)
	return actual.(*geom.Index)
}

// nearestUsableNode implements spec.md §4.H's candidate ordering: prefer
// nodes in the same zone as p, falling back to the global nearest node
// by Euclidean distance. The R-tree built over zone bounds prunes which
// zones' exact point-in-polygon predicate needs to run at all.
func nearestUsableNode(g *graphbuild.Graph, zones []zone.Zone, p geom.Point) (graphbuild.Node, bool) {
	byID := make(map[int]graphbuild.Node, len(g.Nodes))
	for _, n := range g.Nodes {
		byID[n.ID] = n
	}

	idx := zoneIndexFor(g, zones)
	var sameZone []graphbuild.Node
	for _, i := range idx.Query(geom.BBox{MinX: p.X, MinY: p.Y, MaxX: p.X, MaxY: p.Y}) {
		z := zones[i]
		if !geom.PointInOnPolygon(p, z.Polygon) {
			continue
		}
		for _, id := range g.ZoneWaypoints[z.ID] {
			sameZone = append(sameZone, byID[id])
		}
	}

	candidates := sameZone
	if len(candidates) == 0 {
		candidates = g.Nodes
	}
	if len(candidates) == 0 {
		return graphbuild.Node{}, false
	}

	best := candidates[0]
	bestDist := p.Dist(best.Position)
	for _, n := range candidates[1:] {
		if d := p.Dist(n.Position); d < bestDist {
			bestDist, best = d, n
		}
	}
	return best, true
}
