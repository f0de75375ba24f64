package input

import (
	"encoding/json"
	"fmt"

	"github.com/waypoint-works/navgraph/internal/geom"
)

// CoverageKind mirrors Dimension for coverage polygons: 1D coverage
// describes a linear corridor footprint, 2D (the default) an areal one.
type CoverageKind int

const (
	CoverageKind2D CoverageKind = iota
	CoverageKind1D
)

func (k CoverageKind) String() string {
	if k == CoverageKind1D {
		return "1D"
	}
	return "2D"
}

// CoveragePolygon is one surveyed footprint: a uid, its kind, whether it
// carves out an exclusion rather than describing travelable floor, its
// independent margin and threshold distances, and its boundary in
// millimetres. Margin and threshold are distinct quantities (spec.md §3's
// geometry record lists both); neither is a substitute for the other.
type CoveragePolygon struct {
	UID         string
	Kind        CoverageKind
	Exclusion   bool
	MarginMm    float64
	ThresholdMm float64
	Polygon     geom.Polygon
}

type coveragePointWire struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type coverageWire struct {
	UID       string              `json:"uid"`
	Kind      string              `json:"kind"`
	Exclusion *bool               `json:"exclusion"`
	Margin    float64             `json:"margin"`
	Threshold float64             `json:"threshold"`
	Points    []coveragePointWire `json:"points"`
}

type coverageDocument struct {
	Polygons []coverageWire `json:"polygons"`
}

// ParseCoverage decodes a coverage-polygon document. Each element
// requires a uid and at least three points; kind defaults to "2D" and
// exclusion defaults to false when absent. Margin and threshold are
// independent fields, each defaulting to 0 when absent. Elements failing
// these requirements are skipped with a CodeInvalidInput or
// CodeDegenerateGeometry diagnostic.
func ParseCoverage(data []byte) ([]CoveragePolygon, []Diagnostic, error) {
	var doc coverageDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, &ErrInvalidInput{Reason: "coverage document is not valid JSON: " + err.Error()}
	}
	if doc.Polygons == nil {
		return nil, nil, &ErrInvalidInput{Reason: "coverage document has no polygons array"}
	}

	var polys []CoveragePolygon
	var diags []Diagnostic

	for i, w := range doc.Polygons {
		subject := w.UID
		if subject == "" {
			subject = indexSubject(i)
		}

		if w.UID == "" {
			diags = append(diags, Diagnostic{
				Code:    CodeInvalidInput,
				Message: "coverage polygon missing required uid",
				Subject: subject,
			})
			continue
		}
		if len(w.Points) < 3 {
			diags = append(diags, Diagnostic{
				Code:    CodeDegenerateGeometry,
				Message: fmt.Sprintf("coverage polygon has %d points, need at least 3", len(w.Points)),
				Subject: subject,
			})
			continue
		}

		kind, err := parseCoverageKind(w.Kind)
		if err != nil {
			diags = append(diags, Diagnostic{
				Code: CodeInvalidInput, Message: err.Error(), Subject: subject,
			})
			continue
		}

		poly := make(geom.Polygon, len(w.Points))
		for j, p := range w.Points {
			poly[j] = geom.Point{X: p.X, Y: p.Y}
		}

		exclusion := false
		if w.Exclusion != nil {
			exclusion = *w.Exclusion
		}

		polys = append(polys, CoveragePolygon{
			UID:         w.UID,
			Kind:        kind,
			Exclusion:   exclusion,
			MarginMm:    w.Margin,
			ThresholdMm: w.Threshold,
			Polygon:     poly,
		})
	}

	return polys, diags, nil
}

func parseCoverageKind(raw string) (CoverageKind, error) {
	switch raw {
	case "", "2D", "2d":
		return CoverageKind2D, nil
	case "1D", "1d":
		return CoverageKind1D, nil
	default:
		return CoverageKind2D, fmt.Errorf("coverage kind must be 1D or 2D, got %q", raw)
	}
}
