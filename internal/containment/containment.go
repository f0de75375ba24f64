// Package containment enforces the invariant that an externally
// produced obstacle polygon lies inside its parent coverage polygon,
// shrinking only the vertices that fall outside rather than snapping
// the whole shape to the boundary.
package containment

import (
	"context"
	"fmt"
	"image"

	"github.com/waypoint-works/navgraph/internal/geom"
	"github.com/waypoint-works/navgraph/internal/input"
	"github.com/waypoint-works/navgraph/internal/zone"
)

// Diagnostic is an alias for the shared input.Diagnostic shape.
type Diagnostic = input.Diagnostic

// AnchorMode selects which point the shrink-toward-anchor step of
// spec.md §4.F uses. ObstacleCentroid (the default) preserves the
// obstacle's own shape best; CoverageCentroid is the source's other,
// subtly different variant, preserved as an explicit, documented choice
// rather than discarded (spec.md §9 Open Question 1).
type AnchorMode int

const (
	AnchorModeObstacleCentroid AnchorMode = iota
	AnchorModeCoverageCentroid
)

// Options configures Constrain.
type Options struct {
	AnchorMode AnchorMode
}

// DefaultOptions selects AnchorModeObstacleCentroid.
func DefaultOptions() Options {
	return Options{AnchorMode: AnchorModeObstacleCentroid}
}

const (
	binarySearchIterations = 20
	nudgeFraction          = 0.10
	retrySteps             = 10
	retryStepFraction      = 0.20
)

// Constrain implements spec.md §4.F's classify→anchor→binary-
// search→nudge→retry algorithm. It returns the (possibly adjusted)
// polygon, whether the obstacle survives at all (false means "drop
// entirely" per step 3), and a zero-value Diagnostic unless step 5's
// final containment check still fails after every retry (in which case
// the adjusted polygon is still returned and emitted, with the
// diagnostic carrying the anomaly).
func Constrain(obstacle geom.Polygon, coverage geom.Polygon, opts Options) (geom.Polygon, bool, Diagnostic) {
	if len(obstacle) == 0 {
		return nil, false, Diagnostic{}
	}

	inside := make([]bool, len(obstacle))
	insideCount := 0
	var insideVerts geom.Polygon
	for i, v := range obstacle {
		inside[i] = geom.PointInOnPolygon(v, coverage)
		if inside[i] {
			insideCount++
			insideVerts = append(insideVerts, v)
		}
	}

	if insideCount == len(obstacle) {
		return obstacle, true, Diagnostic{}
	}
	if insideCount == 0 {
		return nil, false, Diagnostic{}
	}

	var anchor geom.Point
	switch opts.AnchorMode {
	case AnchorModeCoverageCentroid:
		anchor = geom.Centroid(coverage)
	default:
		anchor = geom.Centroid(insideVerts)
	}

	adjusted := make(geom.Polygon, len(obstacle))
	copy(adjusted, obstacle)

	for i, v := range obstacle {
		if inside[i] {
			continue
		}
		adjusted[i] = shrinkToward(v, anchor, coverage)
	}

	for _, v := range adjusted {
		if !geom.PointInOnPolygon(v, coverage) {
			return adjusted, true, Diagnostic{
				Code:    input.CodeContainmentViolation,
				Message: "obstacle still has vertices outside coverage polygon after shrink",
			}
		}
	}
	return adjusted, true, Diagnostic{}
}

// shrinkToward runs the binary search, nudge, and retry steps of
// spec.md §4.F step 4 for a single outside vertex v against anchor (a
// point assumed to lie inside coverage).
func shrinkToward(v, anchor geom.Point, coverage geom.Polygon) geom.Point {
	at := func(t float64) geom.Point {
		return anchor.Add(v.Sub(anchor).Scale(t))
	}

	lo, hi := 0.0, 1.0 // t=0 is anchor (inside), t=1 is v (outside)
	for i := 0; i < binarySearchIterations; i++ {
		mid := (lo + hi) / 2
		if geom.PointInOnPolygon(at(mid), coverage) {
			lo = mid
		} else {
			hi = mid
		}
	}

	t := lo * (1 - nudgeFraction)
	if geom.PointInOnPolygon(at(t), coverage) {
		return at(t)
	}

	for i := 0; i < retrySteps; i++ {
		t *= 1 - retryStepFraction
		if geom.PointInOnPolygon(at(t), coverage) {
			return at(t)
		}
	}

	return anchor
}

// RawObstacle is one candidate obstacle as handed back by an
// ObstacleProvider, before clamping or containment: a name, the reason
// it was flagged, its vertices in pixel frame, and a confidence score.
type RawObstacle struct {
	Name       string
	Reason     string
	Vertices   geom.Polygon
	Confidence float64
}

// ObstacleProvider supplies candidate obstacle polygons for a coverage
// zone's image crop. No concrete network-calling implementation ships
// with this package; callers that have a vision/LLM-backed detector
// implement this interface themselves and pass its output through
// ClampAndFilter before Constrain.
type ObstacleProvider interface {
	Provide(ctx context.Context, coverage zone.Zone, crop image.Rectangle) ([]RawObstacle, error)
}

// ClampAndFilter prepares a provider's raw output for Constrain: vertices
// outside the image bounds are clamped to the nearest in-bounds point,
// and any obstacle left with fewer than 3 vertices is dropped with a
// CodeDegenerateGeometry diagnostic (an obstacle with a valid vertex
// count still goes through Constrain for the real containment check).
func ClampAndFilter(raw []RawObstacle, bounds image.Rectangle) ([]geom.Polygon, []Diagnostic) {
	var out []geom.Polygon
	var diags []Diagnostic
	for _, r := range raw {
		poly := make(geom.Polygon, 0, len(r.Vertices))
		for _, v := range r.Vertices {
			poly = append(poly, clampToBounds(v, bounds))
		}
		if len(poly) < 3 {
			diags = append(diags, Diagnostic{
				Code: input.CodeDegenerateGeometry, Message: "obstacle has fewer than 3 vertices after clamping", Subject: r.Name,
			})
			continue
		}
		out = append(out, poly)
	}
	return out, diags
}

func clampToBounds(p geom.Point, bounds image.Rectangle) geom.Point {
	x, y := p.X, p.Y
	if x < float64(bounds.Min.X) {
		x = float64(bounds.Min.X)
	}
	if x > float64(bounds.Max.X) {
		x = float64(bounds.Max.X)
	}
	if y < float64(bounds.Min.Y) {
		y = float64(bounds.Min.Y)
	}
	if y > float64(bounds.Max.Y) {
		y = float64(bounds.Max.Y)
	}
	return geom.Point{X: x, Y: y}
}

// Summary describes the outcome of constraining one obstacle, used by
// callers that batch-process an obstacle list against its parent
// coverage zone.
type Summary struct {
	CoverageUID string
	Kept        int
	Dropped     int
	Diagnostics []Diagnostic
}

// ConstrainAll constrains every obstacle in obstacles against coverage
// and reports a Summary alongside the surviving polygons.
func ConstrainAll(obstacles []geom.Polygon, coverage geom.Polygon, coverageUID string, opts Options) ([]geom.Polygon, Summary) {
	summary := Summary{CoverageUID: coverageUID}
	var kept []geom.Polygon
	for i, obstacle := range obstacles {
		adjusted, ok, diag := Constrain(obstacle, coverage, opts)
		if !ok {
			summary.Dropped++
			continue
		}
		summary.Kept++
		if diag.Code != "" {
			diag.Subject = fmt.Sprintf("obstacle[%d]", i)
			summary.Diagnostics = append(summary.Diagnostics, diag)
		}
		kept = append(kept, adjusted)
	}
	return kept, summary
}
