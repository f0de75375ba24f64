// Package aisle generates 1-D corridor zones from tdoa anchor pairs: a
// rectangle for a lone pair, a miter-joined polyline corridor for pairs
// that chain through shared anchors.
package aisle

import (
	"fmt"
	"math"

	"github.com/waypoint-works/navgraph/internal/calibration"
	"github.com/waypoint-works/navgraph/internal/geom"
	"github.com/waypoint-works/navgraph/internal/input"
	"github.com/waypoint-works/navgraph/internal/zone"
)

// Diagnostic is an alias for the shared input.Diagnostic shape, so every
// generator in the pipeline reports problems the same way.
type Diagnostic = input.Diagnostic

const minChainLength = 3

// BuildCorridors generates one Zone per lone 1-D pair and one Zone per
// connected chain of ≥3 anchors (spec.md §4.D). Non-1D pairs are
// ignored; callers filter the full pair schedule down to Dimension1D
// pairs before other uses, but BuildCorridors filters defensively too.
func BuildCorridors(pairs []input.AnchorPair, anchors input.AnchorSet, xf *calibration.Transformer) ([]zone.Zone, []Diagnostic) {
	var diags []Diagnostic
	var oneD []input.AnchorPair
	for _, p := range pairs {
		if p.Dimension == input.Dimension1D {
			oneD = append(oneD, p)
		}
	}

	groups := groupByConnectedAnchors(oneD)

	var zones []zone.Zone
	for _, g := range groups {
		if len(g.pairs) == 1 {
			z, ok, diag := singlePairCorridor(g.pairs[0], anchors, xf)
			if diag != nil {
				diags = append(diags, *diag)
			}
			if ok {
				zones = append(zones, z)
			}
			continue
		}

		z, ok, chainDiags := chainCorridor(g, anchors, xf)
		diags = append(diags, chainDiags...)
		if ok {
			zones = append(zones, z)
		}
	}

	return zones, diags
}

// pairGroup is a connected component of the anchor-name graph induced by
// the 1-D pair list, in schedule order.
type pairGroup struct {
	pairs []input.AnchorPair
}

// groupByConnectedAnchors unions pairs that share an anchor name via
// union-find, then buckets pairs back into their component in original
// schedule order — the same "union then re-walk in input order" shape
// the teacher's topology pass uses to assemble rings from loose edges.
func groupByConnectedAnchors(pairs []input.AnchorPair) []pairGroup {
	parent := map[string]string{}
	var find func(string) string
	find = func(a string) string {
		if parent[a] == "" {
			parent[a] = a
		}
		if parent[a] != a {
			parent[a] = find(parent[a])
		}
		return parent[a]
	}
	union := func(a, b string) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}

	for _, p := range pairs {
		union(p.Source, p.Destination)
	}

	order := make(map[string]int)
	groupsByRoot := map[string]*pairGroup{}
	var roots []string
	for _, p := range pairs {
		root := find(p.Source)
		g, ok := groupsByRoot[root]
		if !ok {
			g = &pairGroup{}
			groupsByRoot[root] = g
			roots = append(roots, root)
			order[root] = len(roots)
		}
		g.pairs = append(g.pairs, p)
	}

	groups := make([]pairGroup, 0, len(roots))
	for _, r := range roots {
		groups = append(groups, *groupsByRoot[r])
	}
	return groups
}

// singlePairCorridor builds the rectangle of spec.md §4.D for one
// isolated pair.
func singlePairCorridor(p input.AnchorPair, anchors input.AnchorSet, xf *calibration.Transformer) (zone.Zone, bool, *Diagnostic) {
	s, ok := anchors[p.Source]
	if !ok {
		return zone.Zone{}, false, &Diagnostic{
			Code: input.CodeUnresolvedReference, Message: "unresolved source anchor", Subject: p.Source,
		}
	}
	d, ok := anchors[p.Destination]
	if !ok {
		return zone.Zone{}, false, &Diagnostic{
			Code: input.CodeUnresolvedReference, Message: "unresolved destination anchor", Subject: p.Destination,
		}
	}

	sPos, dPos := s.Position(), d.Position()
	v := dPos.Sub(sPos)
	l := v.Len()
	if l == 0 || p.MarginMm == 0 {
		return zone.Zone{}, false, nil
	}

	theta := math.Atan2(v.Y, v.X)
	half := p.MarginMm / 2
	perp := geom.Point{X: -math.Sin(theta), Y: math.Cos(theta)}.Scale(half)

	polyMm := geom.Polygon{
		sPos.Add(perp), dPos.Add(perp), dPos.Sub(perp), sPos.Sub(perp),
	}

	direction := "vertical"
	if math.Abs(v.X) >= math.Abs(v.Y) {
		direction = "horizontal"
	}

	z := zone.Zone{
		ID:         zone.NewID(),
		Name:       fmt.Sprintf("aisle-%s-%s", p.Source, p.Destination),
		Variant:    zone.VariantAislePath,
		Polygon:    xf.PolygonToPixels(polyMm),
		Confidence: 1,
		Provenance: zone.ProvenanceTDOA,
		Metadata: map[string]string{
			"tdoaSlot":     p.Slot,
			"sourceAnchor": p.Source,
			"destAnchor":   p.Destination,
			"marginMm":     fmt.Sprintf("%g", p.MarginMm),
			"distanceMm":   fmt.Sprintf("%g", p.DistanceMm),
			"direction":    direction,
		},
	}
	return z, true, nil
}

// chainCorridor builds the miter-joined polyline corridor of spec.md
// §4.D for a connected component of ≥2 pairs. Components that reduce to
// fewer than minChainLength ordered anchors, or that do not form a
// simple path (branching or disconnected ordering), are reported as
// degenerate and dropped.
func chainCorridor(g pairGroup, anchors input.AnchorSet, xf *calibration.Transformer) (zone.Zone, bool, []Diagnostic) {
	var diags []Diagnostic

	adjacency := map[string][]string{}
	for _, p := range g.pairs {
		if _, ok := anchors[p.Source]; !ok {
			diags = append(diags, Diagnostic{Code: input.CodeUnresolvedReference, Message: "unresolved source anchor", Subject: p.Source})
			return zone.Zone{}, false, diags
		}
		if _, ok := anchors[p.Destination]; !ok {
			diags = append(diags, Diagnostic{Code: input.CodeUnresolvedReference, Message: "unresolved destination anchor", Subject: p.Destination})
			return zone.Zone{}, false, diags
		}
		adjacency[p.Source] = append(adjacency[p.Source], p.Destination)
		adjacency[p.Destination] = append(adjacency[p.Destination], p.Source)
	}

	order, ok := walkSimplePath(adjacency)
	if !ok {
		diags = append(diags, Diagnostic{Code: input.CodeDegenerateGeometry, Message: "anchor chain is not a simple path"})
		return zone.Zone{}, false, diags
	}
	if len(order) < minChainLength {
		diags = append(diags, Diagnostic{Code: input.CodeDegenerateGeometry, Message: "chain has fewer than 3 anchors"})
		return zone.Zone{}, false, diags
	}

	margin := g.pairs[0].MarginMm
	if margin == 0 {
		return zone.Zone{}, false, diags
	}
	half := margin / 2

	positions := make([]geom.Point, len(order))
	for i, name := range order {
		positions[i] = anchors[name].Position()
	}

	left, right := miterWalk(positions, half)

	polyMm := make(geom.Polygon, 0, len(left)+len(right))
	polyMm = append(polyMm, left...)
	for i := len(right) - 1; i >= 0; i-- {
		polyMm = append(polyMm, right[i])
	}

	if countDistinct(polyMm) < 3 {
		diags = append(diags, Diagnostic{Code: input.CodeDegenerateGeometry, Message: "chain corridor degenerated to fewer than 3 distinct vertices"})
		return zone.Zone{}, false, diags
	}

	z := zone.Zone{
		ID:         zone.NewID(),
		Name:       fmt.Sprintf("aisle-chain-%s", order[0]),
		Variant:    zone.VariantAislePath,
		Polygon:    xf.PolygonToPixels(polyMm),
		Confidence: 1,
		Provenance: zone.ProvenanceTDOA,
		Metadata: map[string]string{
			"anchorSequence": fmt.Sprint(order),
			"marginMm":       fmt.Sprintf("%g", margin),
		},
	}
	return z, true, diags
}

// walkSimplePath orders a connected component's anchors into a simple
// path starting from one of its degree-1 endpoints. It reports false if
// the component branches (any node has degree > 2) or closes into a
// cycle (no degree-1 endpoint).
func walkSimplePath(adjacency map[string][]string) ([]string, bool) {
	var start string
	for name, neighbours := range adjacency {
		if len(neighbours) > 2 {
			return nil, false
		}
		if len(neighbours) == 1 && start == "" {
			start = name
		}
	}
	if start == "" {
		return nil, false
	}

	order := []string{start}
	visited := map[string]bool{start: true}
	prev := ""
	cur := start
	for {
		var next string
		for _, n := range adjacency[cur] {
			if n != prev {
				next = n
				break
			}
		}
		if next == "" {
			break
		}
		if visited[next] {
			return nil, false
		}
		order = append(order, next)
		visited[next] = true
		prev, cur = cur, next
	}

	if len(visited) != len(adjacency) {
		return nil, false
	}
	return order, true
}

// miterWalk computes the left-edge and right-edge offset walks for an
// ordered anchor sequence, per spec.md §4.D: endpoints offset
// perpendicular to their single adjacent segment, interior vertices
// offset along the bisector of incoming/outgoing directions scaled by
// the miter length, clamped to 3·half_width.
func miterWalk(positions []geom.Point, half float64) (left, right []geom.Point) {
	n := len(positions)
	left = make([]geom.Point, n)
	right = make([]geom.Point, n)

	for i := 0; i < n; i++ {
		switch {
		case i == 0:
			theta := segmentAngle(positions[0], positions[1])
			perp := perpOf(theta).Scale(half)
			left[i] = positions[i].Add(perp)
			right[i] = positions[i].Sub(perp)
		case i == n-1:
			theta := segmentAngle(positions[n-2], positions[n-1])
			perp := perpOf(theta).Scale(half)
			left[i] = positions[i].Add(perp)
			right[i] = positions[i].Sub(perp)
		default:
			thetaIn := segmentAngle(positions[i-1], positions[i])
			thetaOut := segmentAngle(positions[i], positions[i+1])
			perpIn := perpOf(thetaIn)
			perpOut := perpOf(thetaOut)
			sum := perpIn.Add(perpOut)
			sumLen := sum.Len()

			half2 := (thetaOut - thetaIn) / 2
			cosHalf := math.Cos(half2)
			miterLength := half / math.Abs(cosHalf)
			maxMiter := 3 * half
			if miterLength > maxMiter {
				miterLength = maxMiter
			}

			var dir geom.Point
			if sumLen < 1e-9 {
				dir = perpIn // back-to-back segment; bisector undefined, fall back
			} else {
				dir = sum.Scale(1 / sumLen)
			}
			offset := dir.Scale(miterLength)
			left[i] = positions[i].Add(offset)
			right[i] = positions[i].Sub(offset)
		}
	}
	return left, right
}

func segmentAngle(a, b geom.Point) float64 {
	v := b.Sub(a)
	return math.Atan2(v.Y, v.X)
}

func perpOf(theta float64) geom.Point {
	return geom.Point{X: -math.Sin(theta), Y: math.Cos(theta)}
}

func countDistinct(poly geom.Polygon) int {
	count := 0
	for i, p := range poly {
		distinct := true
		for j := 0; j < i; j++ {
			if p.Almost(poly[j]) {
				distinct = false
				break
			}
		}
		if distinct {
			count++
		}
	}
	return count
}
