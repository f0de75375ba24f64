package geom

import "math"

// SignedArea computes the shoelace signed area of poly. Positive for
// counter-clockwise vertex order, negative for clockwise. Returns 0 for
// fewer than 3 vertices.
func SignedArea(poly Polygon) float64 {
	n := len(poly)
	if n < 3 {
		return 0
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += poly[i].X*poly[j].Y - poly[j].X*poly[i].Y
	}
	return sum / 2
}

// Area returns the absolute area of poly via the shoelace formula. 0 for
// fewer than 3 vertices.
func Area(poly Polygon) float64 {
	return math.Abs(SignedArea(poly))
}

// Centroid computes the polygon centroid using the signed-area (shoelace)
// formula. For degenerate (near-zero area) input it falls back to the
// vertex arithmetic mean. Defined for 1 or more vertices: a single vertex
// is its own centroid, two vertices give the midpoint.
func Centroid(poly Polygon) Point {
	switch len(poly) {
	case 0:
		return Point{}
	case 1:
		return poly[0]
	case 2:
		return Point{(poly[0].X + poly[1].X) / 2, (poly[0].Y + poly[1].Y) / 2}
	}

	area := SignedArea(poly)
	if math.Abs(area) < epsilon {
		return meanVertex(poly)
	}

	n := len(poly)
	var cx, cy float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		cross := poly[i].X*poly[j].Y - poly[j].X*poly[i].Y
		cx += (poly[i].X + poly[j].X) * cross
		cy += (poly[i].Y + poly[j].Y) * cross
	}
	factor := 1 / (6 * area)
	return Point{cx * factor, cy * factor}
}

func meanVertex(poly Polygon) Point {
	var sx, sy float64
	for _, p := range poly {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(poly))
	return Point{sx / n, sy / n}
}

// PointInPolygon reports whether p lies inside poly, using ray casting
// along the +x direction with the classic yi>y != yj>y straddle test.
// Boundary membership is not guaranteed either way: callers that need
// "inside or on boundary" use PointInOnPolygon, which also accepts a
// point within 1e-6 of an edge.
func PointInPolygon(p Point, poly Polygon) bool {
	n := len(poly)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := poly[i].X, poly[i].Y
		xj, yj := poly[j].X, poly[j].Y
		if (yi > p.Y) != (yj > p.Y) {
			xCross := (xj-xi)*(p.Y-yi)/(yj-yi) + xi
			if p.X < xCross {
				inside = !inside
			}
		}
	}
	return inside
}

// PointInOnPolygon reports whether p is inside poly or within 1e-6 of
// its boundary — the "inside or on boundary" acceptance every
// shape-preservation invariant uses.
func PointInOnPolygon(p Point, poly Polygon) bool {
	if PointInPolygon(p, poly) {
		return true
	}
	_, dist := ClosestPointOnBoundary(p, poly)
	return dist < 1e-6
}

// SegmentIntersect returns the intersection point of segments a and b,
// and whether one exists. An intersection exists only when both
// parametric coordinates lie in [0,1]. Parallel (near-zero denominator)
// segments report no intersection.
func SegmentIntersect(a, b Segment) (Point, bool) {
	r := a.B.Sub(a.A)
	s := b.B.Sub(b.A)
	denom := cross(r, s)
	if math.Abs(denom) < epsilon {
		return Point{}, false
	}
	qp := b.A.Sub(a.A)
	t := cross(qp, s) / denom
	u := cross(qp, r) / denom
	if t < -epsilon || t > 1+epsilon || u < -epsilon || u > 1+epsilon {
		return Point{}, false
	}
	return a.A.Add(r.Scale(t)), true
}

func cross(a, b Point) float64 {
	return a.X*b.Y - a.Y*b.X
}

// RaySegmentIntersect casts a ray from origin along direction dir (need
// not be unit length, but must be non-zero) and reports the intersection
// point with segment seg together with the unsigned distance along the
// ray from origin. A hit requires the ray parameter t >= 0 and the
// segment parameter u in [0,1].
func RaySegmentIntersect(origin, dir Point, seg Segment) (Point, float64, bool) {
	if math.Abs(dir.X) < epsilon && math.Abs(dir.Y) < epsilon {
		return Point{}, 0, false
	}
	s := seg.B.Sub(seg.A)
	denom := cross(dir, s)
	if math.Abs(denom) < epsilon {
		return Point{}, 0, false
	}
	qp := seg.A.Sub(origin)
	t := cross(qp, s) / denom
	u := cross(qp, dir) / denom
	if t < -epsilon || u < -epsilon || u > 1+epsilon {
		return Point{}, 0, false
	}
	hit := origin.Add(dir.Scale(t))
	return hit, t * dir.Len(), true
}

// RayHit is a single ray-against-polygon intersection result.
type RayHit struct {
	Point    Point
	Distance float64
	Edge     int // index of poly[Edge]->poly[Edge+1 mod n] that was hit
}

// FirstRayPolygonHit returns the closest non-trivial (distance > minDist)
// intersection of the ray (origin, dir) with poly's boundary segments.
// Returns false if no segment is hit beyond minDist.
func FirstRayPolygonHit(origin, dir Point, poly Polygon, minDist float64) (RayHit, bool) {
	n := len(poly)
	if n < 2 {
		return RayHit{}, false
	}
	best := RayHit{}
	found := false
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		seg := Segment{A: poly[i], B: poly[j]}
		hit, dist, ok := RaySegmentIntersect(origin, dir, seg)
		if !ok || dist <= minDist {
			continue
		}
		if !found || dist < best.Distance {
			best = RayHit{Point: hit, Distance: dist, Edge: i}
			found = true
		}
	}
	return best, found
}

// ClosestPointOnBoundary iterates poly's boundary segments and returns
// the closest point (perpendicular foot, clamped to the segment) and its
// distance to p.
func ClosestPointOnBoundary(p Point, poly Polygon) (Point, float64) {
	n := len(poly)
	if n == 0 {
		return Point{}, math.Inf(1)
	}
	if n == 1 {
		return poly[0], p.Dist(poly[0])
	}
	bestPt := poly[0]
	bestDist := math.Inf(1)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		foot := closestPointOnSegment(p, Segment{A: poly[i], B: poly[j]})
		d := p.Dist(foot)
		if d < bestDist {
			bestDist = d
			bestPt = foot
		}
	}
	return bestPt, bestDist
}

func closestPointOnSegment(p Point, seg Segment) Point {
	ab := seg.B.Sub(seg.A)
	lenSq := ab.Dot(ab)
	if lenSq < epsilon {
		return seg.A
	}
	t := p.Sub(seg.A).Dot(ab) / lenSq
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return seg.A.Add(ab.Scale(t))
}

// MoveInsidePolygon moves p to lie inside poly. If p is already inside,
// it is returned unchanged. Otherwise a ray is cast from p toward the
// polygon centroid; the point is walked past the first boundary hit by
// inset pixels. If the walked point is still outside (a thin neck), it
// snaps to the boundary hit itself.
func MoveInsidePolygon(p Point, poly Polygon, inset float64) Point {
	if PointInPolygon(p, poly) {
		return p
	}
	c := Centroid(poly)
	dir := c.Sub(p)
	if dir.Len() < epsilon {
		return c
	}
	hit, ok := FirstRayPolygonHit(p, dir, poly, epsilon)
	if !ok {
		return c
	}
	unit := dir.Scale(1 / dir.Len())
	moved := hit.Point.Add(unit.Scale(inset))
	if PointInPolygon(moved, poly) {
		return moved
	}
	return hit.Point
}

// PolygonsOverlap reports whether a and b overlap: first an AABB reject,
// then a check for any vertex of one inside the other, then a check for
// any crossing edge pair.
func PolygonsOverlap(a, b Polygon) bool {
	if len(a) < 3 || len(b) < 3 {
		return false
	}
	if !a.Bounds().Intersects(b.Bounds()) {
		return false
	}
	for _, p := range a {
		if PointInPolygon(p, b) {
			return true
		}
	}
	for _, p := range b {
		if PointInPolygon(p, a) {
			return true
		}
	}
	na, nb := len(a), len(b)
	for i := 0; i < na; i++ {
		segA := Segment{A: a[i], B: a[(i+1)%na]}
		for j := 0; j < nb; j++ {
			segB := Segment{A: b[j], B: b[(j+1)%nb]}
			if _, ok := SegmentIntersect(segA, segB); ok {
				return true
			}
		}
	}
	return false
}

// SegmentToSegmentDistance returns the minimum distance between two
// segments: the minimum of each endpoint's distance to the other
// segment, covering both the crossing and non-crossing cases.
func SegmentToSegmentDistance(a, b Segment) float64 {
	if _, ok := SegmentIntersect(a, b); ok {
		return 0
	}
	d1 := a.A.Dist(closestPointOnSegment(a.A, b))
	d2 := a.B.Dist(closestPointOnSegment(a.B, b))
	d3 := b.A.Dist(closestPointOnSegment(b.A, a))
	d4 := b.B.Dist(closestPointOnSegment(b.B, a))
	return math.Min(math.Min(d1, d2), math.Min(d3, d4))
}

// SegmentCrossesPolygon reports whether the open segment seg intersects
// any edge of poly's boundary. Used for the edge-obstacle rejection rule:
// only a true crossing disqualifies an edge, not proximity.
func SegmentCrossesPolygon(seg Segment, poly Polygon) bool {
	n := len(poly)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		if p, ok := SegmentIntersect(seg, Segment{A: poly[i], B: poly[j]}); ok {
			if p.Dist(seg.A) < 1e-6 || p.Dist(seg.B) < 1e-6 {
				continue // a touch at seg's own endpoint is outside the open segment
			}
			return true
		}
	}
	return false
}
