package input

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
)

// Dimension is the anchor-pair dimensionality: 1-D pairs define aisle
// corridors, 2-D pairs are informational.
type Dimension int

const (
	DimensionUnknown Dimension = iota
	Dimension1D
	Dimension2D
)

func (d Dimension) String() string {
	switch d {
	case Dimension1D:
		return "1D"
	case Dimension2D:
		return "2D"
	default:
		return "unknown"
	}
}

// AnchorPair is one schedule row: {row, source, destination, slot,
// dimension, distance mm, boundary, margin mm}. Margin is the corridor
// half-width doubled; distance is informational.
type AnchorPair struct {
	Row         int
	Source      string
	Destination string
	Slot        string
	Dimension   Dimension
	DistanceMm  float64
	Boundary    string
	MarginMm    float64
}

// pairScheduleColumns is the fixed eight-column schedule header, in
// order, per spec §6: "#, Source, Destination, Slot, Dimension,
// Distance, Boundary, Margin".
const pairScheduleColumns = 8

// ParsePairSchedule parses the eight-column anchor-pair schedule. Line
// endings (LF/CRLF/CR) are normalised before parsing; quoted fields are
// respected including doubled-quote escaping, both provided by the
// standard library's encoding/csv reader. A header row is detected when
// present (first token is "#", "id", or "row", case-insensitively) and
// skipped. Rows with fewer than eight columns are a parse error
// (CodeInvalidInput) carrying the 1-based record number; numeric fields
// that fail to parse are likewise reported with their record number.
// The record number counts the rows encoding/csv returns, so it differs
// from the text line number when blank lines or quoted line breaks come
// before the row.
func ParsePairSchedule(data []byte) ([]AnchorPair, []Diagnostic, error) {
	normalised := normaliseLineEndings(string(data))
	if strings.TrimSpace(normalised) == "" {
		return nil, nil, &ErrInvalidInput{Reason: "pair schedule is empty"}
	}

	reader := csv.NewReader(strings.NewReader(normalised))
	reader.FieldsPerRecord = -1 // validate column count ourselves, with line numbers
	reader.LazyQuotes = false

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, &ErrInvalidInput{Reason: "pair schedule is not valid delimited text: " + err.Error()}
	}
	if len(rows) == 0 {
		return nil, nil, &ErrInvalidInput{Reason: "pair schedule has no rows"}
	}

	start := 0
	if isHeaderRow(rows[0]) {
		start = 1
	}

	var pairs []AnchorPair
	var diags []Diagnostic

	for i := start; i < len(rows); i++ {
		lineNo := i + 1
		row := rows[i]
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue // blank trailing line
		}
		if len(row) < pairScheduleColumns {
			diags = append(diags, Diagnostic{
				Code:    CodeInvalidInput,
				Message: fmt.Sprintf("row has %d columns, want %d", len(row), pairScheduleColumns),
				Line:    lineNo,
			})
			continue
		}

		pair, rowDiags := parsePairRow(row, lineNo)
		diags = append(diags, rowDiags...)
		if rowDiags == nil || !hasFatalRowDiagnostic(rowDiags) {
			pairs = append(pairs, pair)
		}
	}

	return pairs, diags, nil
}

func hasFatalRowDiagnostic(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Code == CodeInvalidInput {
			return true
		}
	}
	return false
}

func parsePairRow(row []string, lineNo int) (AnchorPair, []Diagnostic) {
	var diags []Diagnostic

	rowNum, err := strconv.Atoi(strings.TrimSpace(row[0]))
	if err != nil {
		diags = append(diags, Diagnostic{
			Code: CodeInvalidInput, Message: "row number must be numeric", Line: lineNo,
		})
	}

	dim, err := parseDimension(row[4])
	if err != nil {
		diags = append(diags, Diagnostic{
			Code: CodeInvalidInput, Message: err.Error(), Line: lineNo,
		})
	}

	distance, err := parseFloatField(row[5])
	if err != nil {
		diags = append(diags, Diagnostic{
			Code: CodeInvalidInput, Message: "distance must be numeric", Line: lineNo,
		})
	}

	margin, err := parseFloatField(row[7])
	if err != nil {
		diags = append(diags, Diagnostic{
			Code: CodeInvalidInput, Message: "margin must be numeric", Line: lineNo,
		})
	}

	return AnchorPair{
		Row:         rowNum,
		Source:      strings.TrimSpace(row[1]),
		Destination: strings.TrimSpace(row[2]),
		Slot:        strings.TrimSpace(row[3]),
		Dimension:   dim,
		DistanceMm:  distance,
		Boundary:    strings.TrimSpace(row[6]),
		MarginMm:    margin,
	}, diags
}

func parseDimension(raw string) (Dimension, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "1D":
		return Dimension1D, nil
	case "2D":
		return Dimension2D, nil
	default:
		return DimensionUnknown, fmt.Errorf("dimension must be 1D or 2D, got %q", raw)
	}
}

func parseFloatField(raw string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(raw), 64)
}

func isHeaderRow(row []string) bool {
	if len(row) == 0 {
		return false
	}
	first := strings.ToLower(strings.TrimSpace(row[0]))
	return first == "#" || first == "id" || first == "row"
}

func normaliseLineEndings(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return s
}

// SerializePairSchedule renders pairs back to the eight-column tabular
// format, including the header row. Round-tripping ParsePairSchedule and
// SerializePairSchedule is the identity on well-formed input up to
// whitespace in quoted fields (spec §8's round-trip law).
func SerializePairSchedule(pairs []AnchorPair) []byte {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	_ = w.Write([]string{"#", "Source", "Destination", "Slot", "Dimension", "Distance", "Boundary", "Margin"})
	for _, p := range pairs {
		_ = w.Write([]string{
			strconv.Itoa(p.Row),
			p.Source,
			p.Destination,
			p.Slot,
			p.Dimension.String(),
			strconv.FormatFloat(p.DistanceMm, 'f', -1, 64),
			p.Boundary,
			strconv.FormatFloat(p.MarginMm, 'f', -1, 64),
		})
	}
	w.Flush()
	return []byte(sb.String())
}
