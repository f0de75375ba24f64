// Package input implements the stateless parsers for the pipeline's
// three tabular/record inputs: anchors, the pair schedule, and coverage
// polygons. Every parser accepts raw bytes and returns a validated
// collection plus a list of Diagnostic warnings for recoverable,
// per-record problems. A non-nil error is reserved for whole-input
// failures (the input cannot be read as a whole, or its required
// top-level field is entirely missing).
package input

import "fmt"

// Diagnostic codes. These are the stable short codes spec §7's error
// taxonomy requires; Subject carries the offending identifier (anchor
// name, slot, or coverage uid) and Line the 1-based row number where one
// applies.
const (
	CodeInvalidInput         = "invalid_input"
	CodeUnresolvedReference  = "unresolved_reference"
	CodeDegenerateGeometry   = "degenerate_geometry"
	CodeContainmentViolation = "containment_violation"
)

// Diagnostic is a single non-fatal, stably-coded warning emitted
// alongside a parser's successful output.
type Diagnostic struct {
	Code    string
	Message string
	Subject string
	Line    int // 0 when not applicable
}

func (d Diagnostic) String() string {
	if d.Line > 0 {
		return fmt.Sprintf("%s: %s (line %d, %s)", d.Code, d.Message, d.Line, d.Subject)
	}
	if d.Subject != "" {
		return fmt.Sprintf("%s: %s (%s)", d.Code, d.Message, d.Subject)
	}
	return fmt.Sprintf("%s: %s", d.Code, d.Message)
}

// ErrInvalidInput indicates a structurally malformed whole-input record:
// a required top-level field is missing or unreadable. This is the one
// fatal error class a parser returns; everything else is a Diagnostic.
type ErrInvalidInput struct {
	Reason string
}

func (e *ErrInvalidInput) Error() string {
	return fmt.Sprintf("invalid_input: %s", e.Reason)
}
