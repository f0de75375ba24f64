// Package graphbuild samples waypoints over the travelable zone set and
// connects them into the navigation graph path queries run against:
// intra-zone edges along an aisle chain or across a 2-D area, and
// inter-zone edges between adjacent zones, all rejected if they would
// cross an obstacle.
package graphbuild

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/waypoint-works/navgraph/internal/geom"
	"github.com/waypoint-works/navgraph/internal/input"
	"github.com/waypoint-works/navgraph/internal/zone"
)

// Diagnostic is an alias for the shared input.Diagnostic shape.
type Diagnostic = input.Diagnostic

// ErrCancelled is returned by Build (and by pathquery.Query) when the
// caller's context is cancelled before the stage completes. Per spec.md
// §7, cancellation is always a typed error alongside a nil/partial
// result, never a panic.
var ErrCancelled = errors.New("graphbuild: cancelled")

// AislePosition tags a waypoint's role along an aisle chain.
type AislePosition string

const (
	AislePositionNone  AislePosition = ""
	AislePositionStart AislePosition = "start"
	AislePositionMid   AislePosition = "mid"
	AislePositionEnd   AislePosition = "end"
)

// ZoneClass is the waypoint-sampling classification of spec.md §4.G.
type ZoneClass string

const (
	ZoneClassAisle ZoneClass = "aisle"
	ZoneClassArea  ZoneClass = "area"
)

// Node is one sampled waypoint.
type Node struct {
	ID            int
	Position      geom.Point
	ZoneID        string
	ZoneClass     ZoneClass
	WaypointIndex int
	AislePosition AislePosition
}

// Edge is a directed entry in the adjacency list; both directions of a
// bidirectional connection are present explicitly, per spec.md §6.
type Edge struct {
	From, To int
	Weight   float64
}

// Graph is the emitted navigation graph: plain node/edge arrays plus a
// zone-id to node-id index, matching spec.md §6's wire shape and §9's
// "avoid owning-reference cycles" note.
type Graph struct {
	Nodes         []Node
	Edges         []Edge
	ZoneWaypoints map[string][]int
}

// Options tunes waypoint sampling and adjacency search. Both fields are
// in pixel space — spec.md §9 Open Question 2 notes these should be
// millimetre-denominated in the public interface; pkg/navgraph converts
// before calling Build, so internal/graphbuild deliberately stays
// pixel-only rather than silently resolving the open question.
type Options struct {
	MaxStepPx            float64
	AdjacencyTolerancePx float64
}

// DefaultOptions matches spec.md §4.G's defaults: ~150px max step (~4m),
// 50px adjacency tolerance.
func DefaultOptions() Options {
	return Options{MaxStepPx: 150, AdjacencyTolerancePx: 50}
}

// Build samples waypoints over every travelable zone and connects them
// into a navigation graph, per spec.md §4.G. Non-travelable zones are
// excluded from graph building entirely (they still count as obstacles
// for edge rejection only if also present in the obstacles slice).
func Build(ctx context.Context, zones []zone.Zone, obstacles []geom.Polygon, opts Options) (*Graph, []Diagnostic, error) {
	var diags []Diagnostic

	var travelable []classifiedZone
	for _, z := range zones {
		if !zone.Travelable(z.Variant) {
			continue
		}
		travelable = append(travelable, classifiedZone{zone: z, class: classifyZone(z)})
	}

	g := &Graph{ZoneWaypoints: map[string][]int{}}
	nextID := 0

	obstacleIndex := newObstacleIndex(obstacles)

	for _, c := range travelable {
		if err := ctx.Err(); err != nil {
			return nil, diags, ErrCancelled
		}

		var nodes []Node
		switch c.class {
		case ZoneClassAisle:
			nodes = sampleAisle(c.zone, opts.MaxStepPx)
		case ZoneClassArea:
			nodes = sampleArea(c.zone, obstacles, opts.MaxStepPx)
		}
		if len(nodes) == 0 {
			diags = append(diags, Diagnostic{Code: input.CodeDegenerateGeometry, Message: "zone produced no waypoints", Subject: c.zone.ID})
			continue
		}

		ids := make([]int, len(nodes))
		for i := range nodes {
			nodes[i].ID = nextID
			ids[i] = nextID
			nextID++
		}
		g.Nodes = append(g.Nodes, nodes...)
		g.ZoneWaypoints[c.zone.ID] = ids

		intra := intraZoneEdges(nodes, c.class, opts, obstacles, obstacleIndex)
		g.Edges = append(g.Edges, intra...)
	}

	zoneIndex := newZoneIndex(travelable)
	for i, a := range travelable {
		if err := ctx.Err(); err != nil {
			return nil, diags, ErrCancelled
		}
		for _, j := range zoneIndex.Query(a.zone.Polygon.Bounds().Expand(opts.AdjacencyTolerancePx)) {
			if j <= i {
				continue // each unordered pair considered once
			}
			b := travelable[j]
			if !zonesAdjacent(a.zone.Polygon, b.zone.Polygon, opts.AdjacencyTolerancePx) {
				continue
			}
			edge, ok := interZoneEdge(g, a, b, opts, obstacles, obstacleIndex)
			if ok {
				g.Edges = append(g.Edges, edge, Edge{From: edge.To, To: edge.From, Weight: edge.Weight})
			}
		}
	}

	sort.Slice(g.Edges, func(i, j int) bool {
		if g.Edges[i].From != g.Edges[j].From {
			return g.Edges[i].From < g.Edges[j].From
		}
		return g.Edges[i].To < g.Edges[j].To
	})

	diags = append(diags, isolatedNodeDiagnostics(g)...)

	return g, diags, nil
}

func classifyZone(z zone.Zone) ZoneClass {
	if z.Provenance == zone.ProvenanceTDOA && z.Variant == zone.VariantAislePath {
		return ZoneClassAisle
	}
	return ZoneClassArea
}

// sampleAisle implements the 1-D aisle waypoint sampling of spec.md
// §4.G: start, interior waypoints at even spacing, end, along the
// zone's principal axis.
func sampleAisle(z zone.Zone, maxStep float64) []Node {
	start, end, ok := principalAxisEndpoints(z.Polygon)
	if !ok {
		return nil
	}

	v := end.Sub(start)
	l := v.Len()
	if l == 0 {
		return []Node{{Position: start, ZoneID: z.ID, ZoneClass: ZoneClassAisle, WaypointIndex: 0, AislePosition: AislePositionStart}}
	}
	dir := v.Scale(1 / l)

	interiorCount := 0
	if maxStep > 0 {
		interiorCount = int(math.Ceil(l/maxStep)) - 1
	}
	if interiorCount < 0 {
		interiorCount = 0
	}

	nodes := make([]Node, 0, interiorCount+2)
	nodes = append(nodes, Node{Position: start, ZoneID: z.ID, ZoneClass: ZoneClassAisle, WaypointIndex: 0, AislePosition: AislePositionStart})

	step := l / float64(interiorCount+1)
	for i := 1; i <= interiorCount; i++ {
		p := start.Add(dir.Scale(step * float64(i)))
		nodes = append(nodes, Node{Position: p, ZoneID: z.ID, ZoneClass: ZoneClassAisle, WaypointIndex: i, AislePosition: AislePositionMid})
	}
	nodes = append(nodes, Node{Position: end, ZoneID: z.ID, ZoneClass: ZoneClassAisle, WaypointIndex: interiorCount + 1, AislePosition: AislePositionEnd})
	return nodes
}

// principalAxisEndpoints finds the polygon's dominant axis via the
// covariance of its vertices about the centroid, then returns the two
// vertices with the most extreme projections onto that axis.
func principalAxisEndpoints(poly geom.Polygon) (geom.Point, geom.Point, bool) {
	if len(poly) < 2 {
		return geom.Point{}, geom.Point{}, false
	}
	c := geom.Centroid(poly)

	var sxx, sxy, syy float64
	for _, p := range poly {
		dx, dy := p.X-c.X, p.Y-c.Y
		sxx += dx * dx
		sxy += dx * dy
		syy += dy * dy
	}
	theta := 0.5 * math.Atan2(2*sxy, sxx-syy)
	axis := geom.Point{X: math.Cos(theta), Y: math.Sin(theta)}

	minProj, maxProj := math.Inf(1), math.Inf(-1)
	var minPt, maxPt geom.Point
	for _, p := range poly {
		proj := p.Sub(c).Dot(axis)
		if proj < minProj {
			minProj, minPt = proj, p
		}
		if proj > maxProj {
			maxProj, maxPt = proj, p
		}
	}
	return minPt, maxPt, true
}

// sampleArea implements the 2-D area waypoint sampling of spec.md §4.G:
// the centroid (if valid) plus a cell-centred grid over the bounding box,
// each axis split into floor(extent / (0.8·max_step)) cells (at least
// one), so the spacing is 0.8·max_step rounded up to divide the extent
// evenly; falls back to a forced centroid if the grid yields nothing.
func sampleArea(z zone.Zone, obstacles []geom.Polygon, maxStep float64) []Node {
	centroid := geom.Centroid(z.Polygon)
	centroidValid := waypointValid(centroid, z.Polygon, obstacles)

	bounds := z.Polygon.Bounds()
	pitch := 0.8 * maxStep
	var grid []geom.Point
	if pitch > 0 && !bounds.Empty() {
		nx := gridCount(bounds.MaxX-bounds.MinX, pitch)
		ny := gridCount(bounds.MaxY-bounds.MinY, pitch)
		stepX := (bounds.MaxX - bounds.MinX) / float64(nx)
		stepY := (bounds.MaxY - bounds.MinY) / float64(ny)
		for iy := 0; iy < ny; iy++ {
			y := bounds.MinY + stepY*(float64(iy)+0.5)
			for ix := 0; ix < nx; ix++ {
				x := bounds.MinX + stepX*(float64(ix)+0.5)
				p := geom.Point{X: x, Y: y}
				if waypointValid(p, z.Polygon, obstacles) {
					grid = append(grid, p)
				}
			}
		}
	}

	if len(grid) == 0 {
		if !centroidValid {
			// Force-emit the centroid regardless, so the zone is not isolated.
			return []Node{{Position: centroid, ZoneID: z.ID, ZoneClass: ZoneClassArea, WaypointIndex: 0}}
		}
		return []Node{{Position: centroid, ZoneID: z.ID, ZoneClass: ZoneClassArea, WaypointIndex: 0}}
	}

	nodes := make([]Node, 0, len(grid)+1)
	idx := 0
	if centroidValid && !containsPoint(grid, centroid) {
		nodes = append(nodes, Node{Position: centroid, ZoneID: z.ID, ZoneClass: ZoneClassArea, WaypointIndex: idx})
		idx++
	}
	for _, p := range grid {
		nodes = append(nodes, Node{Position: p, ZoneID: z.ID, ZoneClass: ZoneClassArea, WaypointIndex: idx})
		idx++
	}
	return nodes
}

func gridCount(extent, pitch float64) int {
	if pitch <= 0 {
		return 1
	}
	n := int(extent / pitch)
	if n < 1 {
		n = 1
	}
	return n
}

func waypointValid(p geom.Point, poly geom.Polygon, obstacles []geom.Polygon) bool {
	if !geom.PointInOnPolygon(p, poly) {
		return false
	}
	for _, o := range obstacles {
		if geom.PointInPolygon(p, o) {
			return false
		}
	}
	return true
}

func containsPoint(points []geom.Point, p geom.Point) bool {
	for _, q := range points {
		if q.Almost(p) {
			return true
		}
	}
	return false
}

// intraZoneEdges connects consecutive waypoints along an aisle chain, or
// every pair within 1.5·max_step in a 2-D area, rejecting any edge that
// crosses an obstacle.
func intraZoneEdges(nodes []Node, class ZoneClass, opts Options, obstacles []geom.Polygon, idx *geom.Index) []Edge {
	var edges []Edge
	add := func(a, b Node) {
		if segmentCrossesAny(a.Position, b.Position, obstacles, idx) {
			return
		}
		w := a.Position.Dist(b.Position)
		edges = append(edges, Edge{From: a.ID, To: b.ID, Weight: w}, Edge{From: b.ID, To: a.ID, Weight: w})
	}

	switch class {
	case ZoneClassAisle:
		for i := 0; i+1 < len(nodes); i++ {
			add(nodes[i], nodes[i+1])
		}
	case ZoneClassArea:
		threshold := 1.5 * opts.MaxStepPx
		for i := 0; i < len(nodes); i++ {
			for j := i + 1; j < len(nodes); j++ {
				if nodes[i].Position.Dist(nodes[j].Position) <= threshold {
					add(nodes[i], nodes[j])
				}
			}
		}
	}
	return edges
}

// newObstacleIndex builds an R-tree over obstacle bounding boxes so
// segmentCrossesAny only runs the exact segment/polygon predicate
// against obstacles whose bounds the segment could actually reach,
// instead of scanning the full obstacle list per edge candidate.
func newObstacleIndex(obstacles []geom.Polygon) *geom.Index {
	if len(obstacles) == 0 {
		return nil
	}
	entries := make([]geom.Entry, len(obstacles))
	for i, o := range obstacles {
		entries[i] = geom.Entry{ID: i, Bounds: o.Bounds()}
	}
	return geom.NewIndex(entries)
}

// newZoneIndex builds an R-tree over travelable zone bounding boxes,
// pruning the O(zones²) adjacency scan down to each zone's near
// neighbours. The index is keyed by travelable's slice position, not
// zone.Zone.ID, since Query must return an int usable to index back into
// travelable.
func newZoneIndex(travelable []classifiedZone) *geom.Index {
	entries := make([]geom.Entry, len(travelable))
	for i, c := range travelable {
		entries[i] = geom.Entry{ID: i, Bounds: c.zone.Polygon.Bounds()}
	}
	return geom.NewIndex(entries)
}

func segmentCrossesAny(a, b geom.Point, obstacles []geom.Polygon, idx *geom.Index) bool {
	seg := geom.Segment{A: a, B: b}
	if idx == nil {
		for _, o := range obstacles {
			if geom.SegmentCrossesPolygon(seg, o) {
				return true
			}
		}
		return false
	}
	box := geom.BBox{
		MinX: math.Min(a.X, b.X), MinY: math.Min(a.Y, b.Y),
		MaxX: math.Max(a.X, b.X), MaxY: math.Max(a.Y, b.Y),
	}
	for _, id := range idx.Query(box) {
		if geom.SegmentCrossesPolygon(seg, obstacles[id]) {
			return true
		}
	}
	return false
}

// zonesAdjacent implements spec.md §4.G's adjacency test: AABB overlap
// (with tolerance) and either polygon intersection or an edge-to-edge
// distance within tolerance.
func zonesAdjacent(a, b geom.Polygon, tolerance float64) bool {
	if !a.Bounds().Expand(tolerance).Intersects(b.Bounds().Expand(tolerance)) {
		return false
	}
	if geom.PolygonsOverlap(a, b) {
		return true
	}
	na, nb := len(a), len(b)
	for i := 0; i < na; i++ {
		segA := geom.Segment{A: a[i], B: a[(i+1)%na]}
		for j := 0; j < nb; j++ {
			segB := geom.Segment{A: b[j], B: b[(j+1)%nb]}
			if geom.SegmentToSegmentDistance(segA, segB) <= tolerance {
				return true
			}
		}
	}
	return false
}

type classifiedZone = struct {
	zone  zone.Zone
	class ZoneClass
}

// interZoneEdge picks the closest eligible waypoint pair between two
// adjacent zones per spec.md §4.G's eligibility rule (only start/end
// waypoints on an aisle side, all waypoints on a 2-D side) and connects
// them if within 3·adjacency_tolerance and the segment does not cross
// an obstacle.
func interZoneEdge(g *Graph, a, b classifiedZone, opts Options, obstacles []geom.Polygon, idx *geom.Index) (Edge, bool) {
	aNodes := eligibleNodes(g, a)
	bNodes := eligibleNodes(g, b)
	if len(aNodes) == 0 || len(bNodes) == 0 {
		return Edge{}, false
	}

	maxDist := 3 * opts.AdjacencyTolerancePx
	best := math.Inf(1)
	var bestA, bestB Node
	found := false
	for _, na := range aNodes {
		for _, nb := range bNodes {
			d := na.Position.Dist(nb.Position)
			if d > maxDist {
				continue
			}
			if d < best {
				best, bestA, bestB, found = d, na, nb, true
			}
		}
	}
	if !found {
		return Edge{}, false
	}
	if segmentCrossesAny(bestA.Position, bestB.Position, obstacles, idx) {
		return Edge{}, false
	}
	return Edge{From: bestA.ID, To: bestB.ID, Weight: best}, true
}

func eligibleNodes(g *Graph, c classifiedZone) []Node {
	ids := g.ZoneWaypoints[c.zone.ID]
	var out []Node
	byID := map[int]Node{}
	for _, n := range g.Nodes {
		byID[n.ID] = n
	}
	for _, id := range ids {
		n := byID[id]
		if c.class == ZoneClassAisle && n.AislePosition != AislePositionStart && n.AislePosition != AislePositionEnd {
			continue
		}
		out = append(out, n)
	}
	return out
}

// isolatedNodeDiagnostics reports every node with no incident edge.
func isolatedNodeDiagnostics(g *Graph) []Diagnostic {
	degree := make(map[int]int, len(g.Nodes))
	for _, e := range g.Edges {
		degree[e.From]++
	}
	var diags []Diagnostic
	for _, n := range g.Nodes {
		if degree[n.ID] == 0 {
			diags = append(diags, Diagnostic{
				Code:    "isolated_node",
				Message: fmt.Sprintf("node %d in zone %s has no edges", n.ID, n.ZoneID),
				Subject: n.ZoneID,
			})
		}
	}
	return diags
}

// Connected reports whether every node in g is reachable from start via
// a breadth-first search, per spec.md §4.G's "whole-graph connectivity
// can be tested by DFS from any node" diagnostic.
func Connected(g *Graph, start int) bool {
	if len(g.Nodes) == 0 {
		return true
	}
	adjacency := map[int][]int{}
	for _, e := range g.Edges {
		adjacency[e.From] = append(adjacency[e.From], e.To)
	}

	visited := map[int]bool{start: true}
	queue := []int{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adjacency[cur] {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return len(visited) == len(g.Nodes)
}
