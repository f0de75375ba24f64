package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(x, y, side float64) Polygon {
	return Polygon{
		{x, y},
		{x + side, y},
		{x + side, y + side},
		{x, y + side},
	}
}

func TestAreaAndCentroidOfSquare(t *testing.T) {
	sq := square(0, 0, 10)
	assert.InDelta(t, 100, Area(sq), 1e-9)
	c := Centroid(sq)
	assert.InDelta(t, 5, c.X, 1e-9)
	assert.InDelta(t, 5, c.Y, 1e-9)
}

func TestCentroidDegenerateFallsBackToMean(t *testing.T) {
	// Three collinear points: zero area, centroid must be the mean.
	poly := Polygon{{0, 0}, {5, 0}, {10, 0}}
	c := Centroid(poly)
	assert.InDelta(t, 5, c.X, 1e-9)
	assert.InDelta(t, 0, c.Y, 1e-9)
}

func TestCentroidSingleAndTwoVertices(t *testing.T) {
	assert.Equal(t, Point{3, 4}, Centroid(Polygon{{3, 4}}))
	assert.Equal(t, Point{2, 2}, Centroid(Polygon{{0, 0}, {4, 4}}))
}

func TestPointInPolygon(t *testing.T) {
	sq := square(0, 0, 10)
	assert.True(t, PointInPolygon(Point{5, 5}, sq))
	assert.False(t, PointInPolygon(Point{50, 50}, sq))
}

func TestPointInPolygonDegenerate(t *testing.T) {
	assert.False(t, PointInPolygon(Point{0, 0}, Polygon{{0, 0}, {1, 1}}))
}

func TestSegmentIntersect(t *testing.T) {
	a := Segment{A: Point{0, 0}, B: Point{10, 10}}
	b := Segment{A: Point{0, 10}, B: Point{10, 0}}
	p, ok := SegmentIntersect(a, b)
	require.True(t, ok)
	assert.InDelta(t, 5, p.X, 1e-9)
	assert.InDelta(t, 5, p.Y, 1e-9)
}

func TestSegmentIntersectParallelNone(t *testing.T) {
	a := Segment{A: Point{0, 0}, B: Point{10, 0}}
	b := Segment{A: Point{0, 5}, B: Point{10, 5}}
	_, ok := SegmentIntersect(a, b)
	assert.False(t, ok)
}

func TestSegmentIntersectOutOfRange(t *testing.T) {
	a := Segment{A: Point{0, 0}, B: Point{1, 1}}
	b := Segment{A: Point{5, 0}, B: Point{5, 1}}
	_, ok := SegmentIntersect(a, b)
	assert.False(t, ok)
}

func TestRaySegmentIntersect(t *testing.T) {
	seg := Segment{A: Point{10, -5}, B: Point{10, 5}}
	p, dist, ok := RaySegmentIntersect(Point{0, 0}, Point{1, 0}, seg)
	require.True(t, ok)
	assert.InDelta(t, 10, p.X, 1e-9)
	assert.InDelta(t, 0, p.Y, 1e-9)
	assert.InDelta(t, 10, dist, 1e-9)
}

func TestFirstRayPolygonHitPicksClosest(t *testing.T) {
	// Two nested squares' combined boundary isn't simple, so instead use
	// one square and confirm we get the near wall, not the far one.
	sq := square(0, 0, 10)
	hit, ok := FirstRayPolygonHit(Point{5, 5}, Point{1, 0}, sq, 1e-9)
	require.True(t, ok)
	assert.InDelta(t, 10, hit.Point.X, 1e-9)
	assert.InDelta(t, 5, hit.Distance, 1e-9)
}

func TestClosestPointOnBoundary(t *testing.T) {
	sq := square(0, 0, 10)
	p, dist := ClosestPointOnBoundary(Point{5, -3}, sq)
	assert.InDelta(t, 5, p.X, 1e-9)
	assert.InDelta(t, 0, p.Y, 1e-9)
	assert.InDelta(t, 3, dist, 1e-9)
}

func TestMoveInsidePolygonIdentityWhenInside(t *testing.T) {
	sq := square(0, 0, 10)
	p := Point{5, 5}
	assert.Equal(t, p, MoveInsidePolygon(p, sq, 2))
}

func TestMoveInsidePolygonMovesOutsidePoint(t *testing.T) {
	sq := square(0, 0, 10)
	moved := MoveInsidePolygon(Point{-5, 5}, sq, 2)
	assert.True(t, PointInPolygon(moved, sq))
}

func TestPolygonsOverlap(t *testing.T) {
	a := square(0, 0, 10)
	b := square(5, 5, 10)
	c := square(100, 100, 10)
	assert.True(t, PolygonsOverlap(a, b))
	assert.False(t, PolygonsOverlap(a, c))
}

func TestBoundingBoxAndPixel(t *testing.T) {
	sq := square(1.2, 1.8, 10)
	b := BoundingBox(sq)
	px := b.Pixel()
	assert.Equal(t, 1, px.X)
	assert.Equal(t, 2, px.Y)
	assert.Equal(t, 10, px.Width)
	assert.Equal(t, 10, px.Height)
}

func TestBBoxContainsIntersectsExpand(t *testing.T) {
	a := BBox{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}
	assert.True(t, a.Contains(Point{5, 5}))
	assert.False(t, a.Contains(Point{50, 5}))

	b := BBox{MinX: 5, MinY: 5, MaxX: 15, MaxY: 15}
	assert.True(t, a.Intersects(b))

	c := BBox{MinX: 100, MinY: 100, MaxX: 110, MaxY: 110}
	assert.False(t, a.Intersects(c))

	expanded := a.Expand(5)
	assert.Equal(t, -5.0, expanded.MinX)
	assert.Equal(t, 15.0, expanded.MaxX)
}

func TestSegmentCrossesPolygon(t *testing.T) {
	sq := square(0, 0, 10)
	crossing := Segment{A: Point{-5, 5}, B: Point{15, 5}}
	tangent := Segment{A: Point{20, 20}, B: Point{30, 30}}
	assert.True(t, SegmentCrossesPolygon(crossing, sq))
	assert.False(t, SegmentCrossesPolygon(tangent, sq))
}

func TestIndexQueryReturnsCandidates(t *testing.T) {
	idx := NewIndex([]Entry{
		{ID: 1, Bounds: BBox{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}},
		{ID: 2, Bounds: BBox{MinX: 100, MinY: 100, MaxX: 110, MaxY: 110}},
	})
	hits := idx.Query(BBox{MinX: 5, MinY: 5, MaxX: 6, MaxY: 6})
	assert.Contains(t, hits, 1)
	assert.NotContains(t, hits, 2)
}
