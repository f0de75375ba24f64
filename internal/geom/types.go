// Package geom implements the pure geometric kernel the rest of the
// pipeline is built on: points, polygons, bounding boxes, and the
// predicates (containment, intersection, nearest point) that the aisle,
// travel-lane, containment, and graph-building stages all consume.
//
// Every function here is total. Degenerate input (collinear points,
// zero-length segments, polygons with fewer than three vertices) yields
// an explicit zero-value/false/no-hit result rather than an error or a
// panic.
package geom

import "math"

// epsilon is the tolerance used throughout this package for floating
// point comparisons. Per the numeric semantics, doubles are never
// compared for exact equality.
const epsilon = 1e-10

// Point is an ordered pair of real numbers in a frame tracked by the
// caller (millimetre world frame or image pixel frame), not by the
// type itself.
type Point struct {
	X, Y float64
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Add returns p + q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Scale returns p scaled by s.
func (p Point) Scale(s float64) Point { return Point{p.X * s, p.Y * s} }

// Dot returns the dot product of p and q.
func (p Point) Dot(q Point) float64 { return p.X*q.X + p.Y*q.Y }

// Len returns the Euclidean length of p treated as a vector.
func (p Point) Len() float64 { return math.Hypot(p.X, p.Y) }

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 { return p.Sub(q).Len() }

// Almost reports whether p and q are equal within epsilon.
func (p Point) Almost(q Point) bool {
	return math.Abs(p.X-q.X) < epsilon && math.Abs(p.Y-q.Y) < epsilon
}

// Polygon is a finite ordered sequence of vertices describing a simple
// closed ring. The closing edge from the last vertex back to the first
// is implicit; callers never repeat the first vertex at the end.
type Polygon []Point

// Segment is a directed line segment from A to B.
type Segment struct {
	A, B Point
}

// BBox is an axis-aligned bounding box. Unlike the pixel-space bounding
// boxes emitted at output boundaries, BBox carries float64 extents so it
// can be used in both the mm and pixel frames; integer rounding happens
// only when a BBox is converted to the wire-level PixelBBox.
type BBox struct {
	MinX, MinY, MaxX, MaxY float64
}

// PixelBBox is the integer, pixel-space bounding box of spec §3: a
// non-negative-extent (x, y, width, height) tuple, rounded on emission.
type PixelBBox struct {
	X, Y, Width, Height int
}

// Empty reports whether b has no extent (never been expanded).
func (b BBox) Empty() bool {
	return b.MaxX < b.MinX || b.MaxY < b.MinY
}

// Contains reports whether p lies within b (inclusive of the boundary).
func (b BBox) Contains(p Point) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

// Intersects reports whether b and other overlap, inclusive of touching
// edges.
func (b BBox) Intersects(other BBox) bool {
	return !(other.MaxX < b.MinX ||
		other.MinX > b.MaxX ||
		other.MaxY < b.MinY ||
		other.MinY > b.MaxY)
}

// Expand returns a copy of b grown by margin in every direction.
func (b BBox) Expand(margin float64) BBox {
	return BBox{
		MinX: b.MinX - margin,
		MinY: b.MinY - margin,
		MaxX: b.MaxX + margin,
		MaxY: b.MaxY + margin,
	}
}

// Union returns the smallest BBox containing both b and other.
func (b BBox) Union(other BBox) BBox {
	if b.Empty() {
		return other
	}
	if other.Empty() {
		return b
	}
	return BBox{
		MinX: math.Min(b.MinX, other.MinX),
		MinY: math.Min(b.MinY, other.MinY),
		MaxX: math.Max(b.MaxX, other.MaxX),
		MaxY: math.Max(b.MaxY, other.MaxY),
	}
}

// Pixel rounds b to an integer PixelBBox, clamping negative extents to
// zero (can occur for degenerate single-point input).
func (b BBox) Pixel() PixelBBox {
	x := int(math.Round(b.MinX))
	y := int(math.Round(b.MinY))
	w := int(math.Round(b.MaxX - b.MinX))
	h := int(math.Round(b.MaxY - b.MinY))
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return PixelBBox{X: x, Y: y, Width: w, Height: h}
}

// BoundingBox computes the axis-aligned bounding box of a vertex list by
// a single minX/minY/maxX/maxY scan. Returns an empty BBox for no
// vertices.
func BoundingBox(points []Point) BBox {
	if len(points) == 0 {
		return BBox{MinX: 1, MaxX: 0} // Empty() == true
	}
	b := BBox{MinX: points[0].X, MaxX: points[0].X, MinY: points[0].Y, MaxY: points[0].Y}
	for _, p := range points[1:] {
		if p.X < b.MinX {
			b.MinX = p.X
		}
		if p.X > b.MaxX {
			b.MaxX = p.X
		}
		if p.Y < b.MinY {
			b.MinY = p.Y
		}
		if p.Y > b.MaxY {
			b.MaxY = p.Y
		}
	}
	return b
}

// Bounds returns the polygon's axis-aligned bounding box.
func (poly Polygon) Bounds() BBox {
	return BoundingBox(poly)
}
