package input

import (
	"encoding/json"
	"strconv"

	"github.com/waypoint-works/navgraph/internal/geom"
)

// Anchor is a uniquely named localisation device at a fixed millimetre
// position with an orientation yaw. Only (X, Y) is used downstream; Z
// and Yaw are carried for completeness.
type Anchor struct {
	Name     string
	UID      string
	Type     string
	X, Y, Z  float64
	Yaw      float64
	SlUID    string
	Locked   bool
}

// Position returns the anchor's 2-D millimetre position.
func (a Anchor) Position() geom.Point { return geom.Point{X: a.X, Y: a.Y} }

// AnchorSet is a name -> Anchor mapping. Keys are unique and
// case-sensitive.
type AnchorSet map[string]Anchor

// anchorWire is the raw JSON wire shape for a single anchor record, per
// spec §6: {name, uid, type, position: {x,y,z,yaw,sl_uid}, locked}.
type anchorWire struct {
	Name     string `json:"name"`
	UID      string `json:"uid"`
	Type     string `json:"type"`
	Locked   bool   `json:"locked"`
	Position struct {
		X     *float64 `json:"x"`
		Y     *float64 `json:"y"`
		Z     float64  `json:"z"`
		Yaw   float64  `json:"yaw"`
		SlUID string   `json:"sl_uid"`
	} `json:"position"`
}

type anchorsDocument struct {
	Anchors []anchorWire `json:"anchors"`
}

// ParseAnchors decodes an anchor record document. Each element requires
// a name and an (x, y) position; z, yaw, and sl_uid default to 0/"",
// locked defaults to false, and type defaults to "ANCHOR". Invalid
// elements (missing name or position) are skipped with a
// CodeInvalidInput diagnostic rather than failing the whole parse.
// Later duplicate names replace earlier ones in the returned AnchorSet.
func ParseAnchors(data []byte) (AnchorSet, []Diagnostic, error) {
	var doc anchorsDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, &ErrInvalidInput{Reason: "anchors document is not valid JSON: " + err.Error()}
	}
	if doc.Anchors == nil {
		return nil, nil, &ErrInvalidInput{Reason: "anchors document has no anchors array"}
	}

	anchors := make(AnchorSet, len(doc.Anchors))
	var diags []Diagnostic

	for i, w := range doc.Anchors {
		if w.Name == "" {
			diags = append(diags, Diagnostic{
				Code:    CodeInvalidInput,
				Message: "anchor element missing required name field",
				Subject: indexSubject(i),
			})
			continue
		}
		if w.Position.X == nil || w.Position.Y == nil {
			diags = append(diags, Diagnostic{
				Code:    CodeInvalidInput,
				Message: "anchor missing required (x, y) position",
				Subject: w.Name,
			})
			continue
		}

		anchorType := w.Type
		if anchorType == "" {
			anchorType = "ANCHOR"
		}

		anchors[w.Name] = Anchor{
			Name:   w.Name,
			UID:    w.UID,
			Type:   anchorType,
			X:      *w.Position.X,
			Y:      *w.Position.Y,
			Z:      w.Position.Z,
			Yaw:    w.Position.Yaw,
			SlUID:  w.Position.SlUID,
			Locked: w.Locked,
		}
	}

	return anchors, diags, nil
}

func indexSubject(i int) string {
	return "element[" + strconv.Itoa(i) + "]"
}
