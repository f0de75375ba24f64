// Package calibration implements the bidirectional mm<->pixel coordinate
// transform and the scale-validation/auto-correction logic that sits on
// top of it.
package calibration

import (
	"fmt"

	"github.com/waypoint-works/navgraph/internal/geom"
)

// Record is the calibration input: image dimensions in pixels, the pixel
// coordinates of the image centre, a raw scale, a sublocation
// identifier, and an optional rotation.
type Record struct {
	Filename       string
	WidthPx        int
	HeightPx       int
	CentrePxX      float64
	CentrePxY      float64
	RawScale       float64
	RotationDeg    float64 // optional; 0 if unused
	SublocationUID string
}

// ErrInvalidCalibration indicates the calibration record violates the
// structural invariant width>0 && height>0 && raw_scale>0. This is a
// whole-input, fatal error per the error taxonomy: a pipeline cannot run
// without a valid transformer.
type ErrInvalidCalibration struct {
	Reason string
}

func (e *ErrInvalidCalibration) Error() string {
	return fmt.Sprintf("invalid calibration record: %s", e.Reason)
}

// Validate checks the calibration record's structural invariant.
func (r Record) Validate() error {
	if r.WidthPx <= 0 {
		return &ErrInvalidCalibration{Reason: "width must be > 0"}
	}
	if r.HeightPx <= 0 {
		return &ErrInvalidCalibration{Reason: "height must be > 0"}
	}
	if r.RawScale <= 0 {
		return &ErrInvalidCalibration{Reason: "raw_scale must be > 0"}
	}
	return nil
}

// MmPerPixel is the derived scale factor: raw_scale * 100.
func (r Record) MmPerPixel() float64 {
	return r.RawScale * 100
}

// MmExtent returns the millimetre extent of the image inferred from the
// pixel centre and half-extent: (minX, minY, maxX, maxY) in mm.
func (r Record) MmExtent() (minX, minY, maxX, maxY float64) {
	mpp := r.MmPerPixel()
	halfWmm := float64(r.WidthPx) / 2 * mpp
	halfHmm := float64(r.HeightPx) / 2 * mpp
	centreXmm := r.CentrePxX * mpp
	centreYmm := r.CentrePxY * mpp
	return centreXmm - halfWmm, centreYmm - halfHmm, centreXmm + halfWmm, centreYmm + halfHmm
}

// Transformer maps between the millimetre world frame and the image
// pixel frame for a single calibration record.
type Transformer struct {
	rec      Record
	mmPerPx  float64
	xMinMm   float64
	yMinMm   float64
	flipY    bool
	flipX    bool
}

// Options controls axis-flip behaviour when building a Transformer.
type Options struct {
	// FlipY defaults to true: world mm uses y-up, pixels use y-down.
	FlipY bool
	// FlipX defaults to false.
	FlipX bool
}

// DefaultOptions returns the spec-mandated default: Y-flip on, X-flip
// off.
func DefaultOptions() Options {
	return Options{FlipY: true, FlipX: false}
}

// NewTransformer builds a Transformer from a calibration record. Returns
// ErrInvalidCalibration if the record's structural invariant is
// violated.
func NewTransformer(rec Record, opts Options) (*Transformer, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	mpp := rec.MmPerPixel()
	xMin := (rec.CentrePxX - float64(rec.WidthPx)/2) * mpp
	yMin := (rec.CentrePxY - float64(rec.HeightPx)/2) * mpp
	return &Transformer{
		rec:     rec,
		mmPerPx: mpp,
		xMinMm:  xMin,
		yMinMm:  yMin,
		flipY:   opts.FlipY,
		flipX:   opts.FlipX,
	}, nil
}

// MmPerPixel returns the transformer's millimetre-per-pixel scale.
func (t *Transformer) MmPerPixel() float64 { return t.mmPerPx }

// Record returns the calibration record the transformer was built from.
func (t *Transformer) Record() Record { return t.rec }

// ToPixels converts a millimetre-frame point to the pixel frame.
func (t *Transformer) ToPixels(mm geom.Point) geom.Point {
	px := (mm.X - t.xMinMm) / t.mmPerPx
	py := (mm.Y - t.yMinMm) / t.mmPerPx
	if t.flipY {
		py = float64(t.rec.HeightPx) - py
	}
	if t.flipX {
		px = float64(t.rec.WidthPx) - px
	}
	return geom.Point{X: px, Y: py}
}

// ToMm converts a pixel-frame point to the millimetre frame.
func (t *Transformer) ToMm(px geom.Point) geom.Point {
	x, y := px.X, px.Y
	if t.flipX {
		x = float64(t.rec.WidthPx) - x
	}
	if t.flipY {
		y = float64(t.rec.HeightPx) - y
	}
	mmX := x*t.mmPerPx + t.xMinMm
	mmY := y*t.mmPerPx + t.yMinMm
	return geom.Point{X: mmX, Y: mmY}
}

// PolygonToPixels lifts ToPixels over every vertex of poly.
func (t *Transformer) PolygonToPixels(poly geom.Polygon) geom.Polygon {
	out := make(geom.Polygon, len(poly))
	for i, p := range poly {
		out[i] = t.ToPixels(p)
	}
	return out
}

// PolygonToMm lifts ToMm over every vertex of poly.
func (t *Transformer) PolygonToMm(poly geom.Polygon) geom.Polygon {
	out := make(geom.Polygon, len(poly))
	for i, p := range poly {
		out[i] = t.ToMm(p)
	}
	return out
}

// InBounds reports whether a pixel-frame point lies within the image
// rectangle [0,width] x [0,height].
func (t *Transformer) InBounds(px geom.Point) bool {
	return px.X >= 0 && px.X <= float64(t.rec.WidthPx) &&
		px.Y >= 0 && px.Y <= float64(t.rec.HeightPx)
}
