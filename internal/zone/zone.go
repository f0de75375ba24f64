package zone

import (
	"time"

	"github.com/google/uuid"
	"github.com/waypoint-works/navgraph/internal/geom"
)

func defaultNewID() string { return uuid.NewString() }

// Provenance records which generator produced a zone, per spec §3/§9's
// dynamic-metadata note.
type Provenance string

const (
	ProvenanceTDOA     Provenance = "tdoa"
	ProvenanceCoverage Provenance = "coverage"
	ProvenanceAI       Provenance = "ai"
	ProvenanceManual   Provenance = "manual"
	ProvenanceImported Provenance = "imported"
)

// Zone is the catalogue record shared by every generator
// (internal/aisle, internal/travellane) and consumed by
// internal/graphbuild. Polygon is always in pixel frame; callers
// crossing the mm/px boundary go through internal/calibration first.
type Zone struct {
	ID         string
	Name       string
	Variant    Variant
	Polygon    geom.Polygon
	Confidence float64
	Provenance Provenance

	// Metadata carries the recognised auxiliary keys spec §9 documents
	// (tdoaSlot, sourceAnchor, destAnchor, marginMm, distanceMm,
	// direction, parentCoverageId, blockedReason, coverageUid,
	// coverageType, thresholdMm, anchorSequence). Unrecognised keys are
	// opaque and passed through by every consumer.
	Metadata map[string]string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewID is overridden in tests that need deterministic ids; production
// callers use the package-level default (uuid.NewString).
var NewID = defaultNewID
