package input

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePairSchedule = "#,Source,Destination,Slot,Dimension,Distance,Boundary,Margin\r\n" +
	"1,A,B,slot-1,1D,10000,west,1000\n" +
	"2,B,C,slot-2,2D,5000,,500\n"

func TestParsePairScheduleParsesRows(t *testing.T) {
	pairs, diags, err := ParsePairSchedule([]byte(samplePairSchedule))
	require.NoError(t, err)
	assert.Empty(t, diags)
	require.Len(t, pairs, 2)

	assert.Equal(t, AnchorPair{
		Row: 1, Source: "A", Destination: "B", Slot: "slot-1",
		Dimension: Dimension1D, DistanceMm: 10000, Boundary: "west", MarginMm: 1000,
	}, pairs[0])
	assert.Equal(t, Dimension2D, pairs[1].Dimension)
}

func TestParsePairScheduleWithoutHeader(t *testing.T) {
	body := "1,A,B,slot-1,1D,10000,west,1000\n"
	pairs, diags, err := ParsePairSchedule([]byte(body))
	require.NoError(t, err)
	assert.Empty(t, diags)
	require.Len(t, pairs, 1)
}

func TestParsePairScheduleRejectsEmptyInput(t *testing.T) {
	_, _, err := ParsePairSchedule([]byte("   \n  "))
	require.Error(t, err)
}

func TestParsePairScheduleFlagsShortRow(t *testing.T) {
	body := "#,Source,Destination,Slot,Dimension,Distance,Boundary,Margin\n1,A,B,slot-1,1D\n"
	pairs, diags, err := ParsePairSchedule([]byte(body))
	require.NoError(t, err)
	assert.Empty(t, pairs)
	require.Len(t, diags, 1)
	assert.Equal(t, CodeInvalidInput, diags[0].Code)
	assert.Equal(t, 2, diags[0].Line)
}

func TestParsePairScheduleFlagsBadDimension(t *testing.T) {
	body := "#,Source,Destination,Slot,Dimension,Distance,Boundary,Margin\n1,A,B,slot-1,3D,10000,west,1000\n"
	pairs, diags, err := ParsePairSchedule([]byte(body))
	require.NoError(t, err)
	assert.Empty(t, pairs)
	require.Len(t, diags, 1)
	assert.Equal(t, CodeInvalidInput, diags[0].Code)
}

func TestParsePairScheduleDimensionCaseInsensitive(t *testing.T) {
	body := "#,Source,Destination,Slot,Dimension,Distance,Boundary,Margin\n1,A,B,slot-1,1d,10000,west,1000\n"
	pairs, diags, err := ParsePairSchedule([]byte(body))
	require.NoError(t, err)
	assert.Empty(t, diags)
	require.Len(t, pairs, 1)
	assert.Equal(t, Dimension1D, pairs[0].Dimension)
}

func TestParsePairScheduleHandlesQuotedFields(t *testing.T) {
	body := "#,Source,Destination,Slot,Dimension,Distance,Boundary,Margin\n" +
		"1,A,B,\"slot, with comma\",1D,10000,\"say \"\"west\"\"\",1000\n"
	pairs, diags, err := ParsePairSchedule([]byte(body))
	require.NoError(t, err)
	assert.Empty(t, diags)
	require.Len(t, pairs, 1)
	assert.Equal(t, "slot, with comma", pairs[0].Slot)
	assert.Equal(t, `say "west"`, pairs[0].Boundary)
}

func TestPairScheduleRoundTrip(t *testing.T) {
	pairs, diags, err := ParsePairSchedule([]byte(samplePairSchedule))
	require.NoError(t, err)
	require.Empty(t, diags)

	serialized := SerializePairSchedule(pairs)
	reparsed, diags2, err := ParsePairSchedule(serialized)
	require.NoError(t, err)
	assert.Empty(t, diags2)
	if diff := cmp.Diff(pairs, reparsed); diff != "" {
		t.Errorf("serialize/parse round trip mismatch (-want +got):\n%s", diff)
	}
}
