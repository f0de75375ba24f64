package calibration

import (
	"fmt"
	"math"

	"github.com/waypoint-works/navgraph/internal/geom"
)

// SampleProjection is one anchor's projected pixel position plus whether
// it landed inside the image rectangle.
type SampleProjection struct {
	AnchorName string
	Pixel      geom.Point
	InBounds   bool
}

// ScaleReport is the output of ValidateScale: the diagnostic spec §4.B
// describes.
type ScaleReport struct {
	Valid             bool
	SuggestedRawScale float64
	CorrectionFactor  float64
	Message           string
	Samples           []SampleProjection
}

// acceptThreshold is the fraction of anchors that must project inside
// the image rectangle for a scale to be accepted.
const acceptThreshold = 0.8

// AnchorPositions is the minimal view ValidateScale needs of the anchor
// table: a name to (x, y) millimetre position mapping.
type AnchorPositions map[string]geom.Point

// ValidateScale projects every anchor's mm position to pixels through t
// and reports whether at least 80% land inside the image rectangle. When
// the scale is rejected, it derives a suggested raw scale from the
// anchor spread: the mm-per-pixel that would make the larger mm range
// map to the corresponding image dimension, divided by 100 to undo the
// raw_scale*100 derivation.
func ValidateScale(t *Transformer, anchors AnchorPositions) ScaleReport {
	samples := make([]SampleProjection, 0, len(anchors))
	inBounds := 0
	for name, mm := range anchors {
		px := t.ToPixels(mm)
		ok := t.InBounds(px)
		if ok {
			inBounds++
		}
		samples = append(samples, SampleProjection{AnchorName: name, Pixel: px, InBounds: ok})
	}

	if len(anchors) == 0 {
		return ScaleReport{
			Valid:   true,
			Message: "no anchors to validate scale against",
			Samples: samples,
		}
	}

	fraction := float64(inBounds) / float64(len(anchors))
	if fraction >= acceptThreshold {
		return ScaleReport{
			Valid:             true,
			SuggestedRawScale: t.Record().RawScale,
			CorrectionFactor:  1,
			Message:           fmt.Sprintf("%.0f%% of anchors project inside the image", fraction*100),
			Samples:           samples,
		}
	}

	suggested, correction := suggestScale(t, anchors)
	return ScaleReport{
		Valid:             false,
		SuggestedRawScale: suggested,
		CorrectionFactor:  correction,
		Message: fmt.Sprintf(
			"scale_anomaly: only %.0f%% of anchors project inside the image (need %.0f%%); suggested raw_scale=%.6f",
			fraction*100, acceptThreshold*100, suggested),
		Samples: samples,
	}
}

// suggestScale computes the mm-per-pixel required so that the larger of
// the anchor spread's mm ranges maps onto the corresponding image
// dimension, then converts that to a suggested raw_scale (mm_per_pixel /
// 100).
func suggestScale(t *Transformer, anchors AnchorPositions) (rawScale, correctionFactor float64) {
	var minX, minY, maxX, maxY float64
	first := true
	for _, p := range anchors {
		if first {
			minX, maxX = p.X, p.X
			minY, maxY = p.Y, p.Y
			first = false
			continue
		}
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}

	rec := t.Record()
	xSpreadMm := maxX - minX
	ySpreadMm := maxY - minY

	mppForX := math.Inf(1)
	if rec.WidthPx > 0 {
		mppForX = xSpreadMm / float64(rec.WidthPx)
	}
	mppForY := math.Inf(1)
	if rec.HeightPx > 0 {
		mppForY = ySpreadMm / float64(rec.HeightPx)
	}

	mmPerPixel := math.Max(mppForX, mppForY)
	if mmPerPixel <= 0 || math.IsInf(mmPerPixel, 1) {
		return rec.RawScale, 1
	}

	suggestedRawScale := mmPerPixel / 100
	correctionFactor = suggestedRawScale / rec.RawScale
	return suggestedRawScale, correctionFactor
}

// Correct rebuilds a Transformer from t's record with RawScale replaced
// by report.SuggestedRawScale, per the "higher-level constructor may
// rebuild the transformer with the suggested scale" note.
func Correct(t *Transformer, report ScaleReport, opts Options) (*Transformer, error) {
	rec := t.Record()
	rec.RawScale = report.SuggestedRawScale
	return NewTransformer(rec, opts)
}
