package navgraph

import (
	"github.com/waypoint-works/navgraph/internal/calibration"
	"github.com/waypoint-works/navgraph/internal/containment"
	"github.com/waypoint-works/navgraph/internal/travellane"
)

// Options bundles every tunable the pipeline exposes, in the caller's
// natural units (millimetres where spec.md §9 Open Question 2 calls for
// it), in the style of the teacher's ParseOptions/DefaultParseOptions.
type Options struct {
	// MaxStepMm is the waypoint-sampling step size, converted to pixels
	// via the calibration transformer before reaching internal/graphbuild.
	MaxStepMm float64
	// AdjacencyToleranceMm is the zone-adjacency search tolerance,
	// likewise converted to pixels before use.
	AdjacencyToleranceMm float64

	// ContainmentAnchorMode selects internal/containment's shrink-anchor
	// variant (spec.md §9 Open Question 1).
	ContainmentAnchorMode containment.AnchorMode

	// FlipY/FlipX control the calibration transform's axis convention.
	FlipY bool
	FlipX bool

	// AisleExtension configures the disable-able post-pass of spec.md
	// §4.E / §9 Open Question 3. Overhang/MaxReach are in pixels to match
	// internal/travellane's own units; callers who need millimetre inputs
	// convert via the same transformer used for the rest of the pipeline.
	AisleExtension travellane.ExtensionOptions
}

// DefaultOptions mirrors spec.md's defaults: ~150px step converted
// through a 10mm/px calibration gives 1500mm; adjacency tolerance 50px
// -> 500mm at the same scale. Callers with a different calibration
// should override these explicitly rather than rely on the px-derived
// defaults staying meaningful across scales.
func DefaultOptions() Options {
	return Options{
		MaxStepMm:             1500,
		AdjacencyToleranceMm:  500,
		ContainmentAnchorMode: containment.AnchorModeObstacleCentroid,
		FlipY:                 true,
		FlipX:                 false,
		AisleExtension:        travellane.DefaultExtensionOptions(),
	}
}

func (o Options) calibrationOptions() calibration.Options {
	return calibration.Options{FlipY: o.FlipY, FlipX: o.FlipX}
}
