package navgraph

import (
	"context"
	"log"

	"github.com/waypoint-works/navgraph/internal/aisle"
	"github.com/waypoint-works/navgraph/internal/calibration"
	"github.com/waypoint-works/navgraph/internal/containment"
	"github.com/waypoint-works/navgraph/internal/geom"
	"github.com/waypoint-works/navgraph/internal/graphbuild"
	"github.com/waypoint-works/navgraph/internal/input"
	"github.com/waypoint-works/navgraph/internal/pathquery"
	"github.com/waypoint-works/navgraph/internal/travellane"
	"github.com/waypoint-works/navgraph/internal/zone"
)

// Pipeline is the built, queryable result of Build: the navigation
// graph plus the zone catalogue and obstacle set it was built from, all
// needed by Query and Export.
type Pipeline struct {
	transformer *calibration.Transformer
	zones       []zone.Zone
	obstacles   []geom.Polygon
	graph       *graphbuild.Graph
}

// ObstacleRecord is the public input shape for an already-constrained
// obstacle polygon in pixel frame (spec.md §6's obstacle-provider
// contract, post clamp/reject, pre containment.Constrain).
type ObstacleRecord struct {
	Name           string  `json:"name"`
	Reason         string  `json:"reason"`
	Points         []Point `json:"vertices"`
	Confidence     float64 `json:"confidence"`
	ParentCoverage string  `json:"parent_coverage_uid"`
}

// CoverageRecord is the parsed coverage polygon type
// (internal/input.CoveragePolygon, which has no JSON tags); Build takes
// the coverage document as raw bytes and internal/input.ParseCoverage
// does the parsing.
type CoverageRecord = input.CoveragePolygon

// Build runs the full pipeline: parses anchors/pairs/coverage, builds
// aisle and travel-lane zones, constrains obstacles to their parent
// coverage, and builds the navigation graph. logger may be nil; when
// non-nil, every non-fatal Diagnostic is also written to it (spec.md
// §7's "(NEW) Logging" note).
func Build(
	ctx context.Context,
	calib CalibrationRecord,
	anchorsJSON []byte,
	pairScheduleText []byte,
	coverageJSON []byte,
	obstacles []ObstacleRecord,
	opts Options,
	logger *log.Logger,
) (*Pipeline, []input.Diagnostic, error) {
	var diags []input.Diagnostic
	logf := func(d input.Diagnostic) {
		diags = append(diags, d)
		if logger != nil {
			logger.Printf("%s", d.String())
		}
	}

	rec := calibration.Record{
		Filename: calib.Filename, WidthPx: calib.WidthPx, HeightPx: calib.HeightPx,
		CentrePxX: calib.CentrePxX, CentrePxY: calib.CentrePxY, RawScale: calib.RawScale,
		RotationDeg: calib.RotationDeg, SublocationUID: calib.SublocationUID,
	}
	xf, err := calibration.NewTransformer(rec, opts.calibrationOptions())
	if err != nil {
		return nil, diags, err
	}

	anchors, anchorDiags, err := input.ParseAnchors(anchorsJSON)
	if err != nil {
		return nil, diags, err
	}
	for _, d := range anchorDiags {
		logf(d)
	}

	pairs, pairDiags, err := input.ParsePairSchedule(pairScheduleText)
	if err != nil {
		return nil, diags, err
	}
	for _, d := range pairDiags {
		logf(d)
	}

	coverage, coverageDiags, err := input.ParseCoverage(coverageJSON)
	if err != nil {
		return nil, diags, err
	}
	for _, d := range coverageDiags {
		logf(d)
	}

	aisleZones, aisleDiags := aisle.BuildCorridors(pairs, anchors, xf)
	for _, d := range aisleDiags {
		logf(d)
	}

	laneZones, laneDiags := travellane.BuildTravelLanes(coverage, xf)
	for _, d := range laneDiags {
		logf(d)
	}
	restrictedZones, restrictedDiags := travellane.BuildRestrictedZones(coverage, xf)
	for _, d := range restrictedDiags {
		logf(d)
	}

	aisleZones = travellane.ExtendAisles(aisleZones, laneZones, opts.AisleExtension)

	zones := make([]zone.Zone, 0, len(aisleZones)+len(laneZones)+len(restrictedZones))
	zones = append(zones, aisleZones...)
	zones = append(zones, laneZones...)
	zones = append(zones, restrictedZones...)

	obstaclePolys, obstacleDiags := constrainObstacles(obstacles, laneZones, opts)
	for _, d := range obstacleDiags {
		logf(d)
	}

	graphOpts := graphbuild.Options{
		MaxStepPx:            opts.MaxStepMm / xf.MmPerPixel(),
		AdjacencyTolerancePx: opts.AdjacencyToleranceMm / xf.MmPerPixel(),
	}
	g, buildDiags, err := graphbuild.Build(ctx, zones, obstaclePolys, graphOpts)
	if err != nil {
		return nil, diags, err
	}
	for _, d := range buildDiags {
		logf(d)
	}

	return &Pipeline{transformer: xf, zones: zones, obstacles: obstaclePolys, graph: g}, diags, nil
}

// constrainObstacles takes each obstacle's vertices as given (no
// clamping here), rejects records with fewer than 3 vertices, then runs
// internal/containment.Constrain against the named parent travel-lane
// zone (spec.md §5's obstacle-provider pre-processing).
func constrainObstacles(records []ObstacleRecord, lanes []zone.Zone, opts Options) ([]geom.Polygon, []input.Diagnostic) {
	lanesByUID := make(map[string]zone.Zone, len(lanes))
	for _, l := range lanes {
		lanesByUID[l.Metadata["coverageUid"]] = l
	}

	var diags []input.Diagnostic
	var out []geom.Polygon
	for _, r := range records {
		if len(r.Points) < 3 {
			diags = append(diags, input.Diagnostic{
				Code: input.CodeDegenerateGeometry, Message: "obstacle has fewer than 3 vertices", Subject: r.Name,
			})
			continue
		}
		parent, ok := lanesByUID[r.ParentCoverage]
		if !ok {
			diags = append(diags, input.Diagnostic{
				Code: input.CodeUnresolvedReference, Message: "obstacle references unknown parent coverage", Subject: r.Name,
			})
			continue
		}

		poly := make(geom.Polygon, len(r.Points))
		for i, p := range r.Points {
			poly[i] = geom.Point{X: p.X, Y: p.Y}
		}

		adjusted, kept, diag := containment.Constrain(poly, parent.Polygon, containment.Options{AnchorMode: opts.ContainmentAnchorMode})
		if diag.Code != "" {
			diag.Subject = r.Name
			diags = append(diags, diag)
		}
		if kept {
			out = append(out, adjusted)
		}
	}
	return out, diags
}

// Query runs a path query between two millimetre-frame points against
// the built pipeline, converting to and from the pixel frame every
// internal/* package operates in.
func (p *Pipeline) Query(ctx context.Context, start, end Point) (PathResult, error) {
	startPx := p.transformer.ToPixels(geom.Point{X: start.X, Y: start.Y})
	endPx := p.transformer.ToPixels(geom.Point{X: end.X, Y: end.Y})

	result, err := pathquery.Query(ctx, p.graph, p.zones, p.obstacles, startPx, endPx)
	if err != nil {
		return PathResult{}, err
	}

	points := make([]Point, len(result.Points))
	for i, pt := range result.Points {
		mm := p.transformer.ToMm(pt)
		points[i] = Point{X: mm.X, Y: mm.Y}
	}
	mmPerPx := p.transformer.MmPerPixel()
	segments := make([]Segment, len(result.Segments))
	for i, s := range result.Segments {
		segments[i] = Segment{From: s.From, To: s.To, Weight: s.Weight * mmPerPx}
	}

	return PathResult{
		Success:       result.Success,
		Points:        points,
		TotalDistance: result.TotalDistance * mmPerPx,
		Segments:      segments,
		Reason:        result.Reason,
	}, nil
}

// Graph returns the public wire-shape view of the built navigation
// graph, with node positions and edge weights converted to millimetre
// frame, matching Query and ExportZones.
func (p *Pipeline) Graph() Graph {
	mmPerPx := p.transformer.MmPerPixel()
	nodes := make([]Node, len(p.graph.Nodes))
	for i, n := range p.graph.Nodes {
		var aislePos *string
		if n.AislePosition != graphbuild.AislePositionNone {
			s := string(n.AislePosition)
			aislePos = &s
		}
		mm := p.transformer.ToMm(n.Position)
		nodes[i] = Node{
			ID:            n.ID,
			Position:      Point{X: mm.X, Y: mm.Y},
			ZoneID:        n.ZoneID,
			ZoneClass:     string(n.ZoneClass),
			WaypointIndex: n.WaypointIndex,
			AislePosition: aislePos,
		}
	}
	edges := make([]Edge, len(p.graph.Edges))
	for i, e := range p.graph.Edges {
		edges[i] = Edge{From: e.From, To: e.To, Weight: e.Weight * mmPerPx}
	}
	zw := make(map[string][]int, len(p.graph.ZoneWaypoints))
	for k, v := range p.graph.ZoneWaypoints {
		zw[k] = append([]int(nil), v...)
	}
	return Graph{Nodes: nodes, Edges: edges, ZoneWaypoints: zw}
}

// ExportZones renders every built zone back to millimetre frame via the
// transformer's inverse, per spec.md §6's exported-zone record. zoneIDs
// assigns the numeric zone_id; callers that don't need a particular
// numbering scheme can pass a simple incrementing map built from
// Pipeline.Graph().ZoneWaypoints keys.
func (p *Pipeline) ExportZones(zoneIDs map[string]int) []ExportedZone {
	out := make([]ExportedZone, 0, len(p.zones))
	for _, z := range p.zones {
		mm := p.transformer.PolygonToMm(z.Polygon)
		points := make([]Point, len(mm))
		for i, pt := range mm {
			points[i] = Point{X: pt.X, Y: pt.Y}
		}
		out = append(out, ExportedZone{
			Name:   z.Name,
			UID:    z.ID,
			ZoneID: zoneIDs[z.ID],
			Active: true,
			Shape:  "polygon",
			ZoneType: ZoneType{
				Name:        zone.ExternalName(z.Variant),
				DisplayName: zone.ExternalName(z.Variant),
			},
			ZoneGeometry:   points,
			SublocationUID: z.Metadata["coverageUid"],
			CreatedAt:      z.CreatedAt,
			UpdatedAt:      z.UpdatedAt,
		})
	}
	return out
}
