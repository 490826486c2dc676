package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/baccarat-tracker/internal/models"
)

func columnLengths(road []RoadColumn) []int {
	lengths := make([]int, len(road))
	for i, col := range road {
		lengths[i] = len(col)
	}
	return lengths
}

func TestBigRoadGroupsRuns(t *testing.T) {
	road := BigRoad(ledgerOf(t, "TPPBTBPPP"))

	require.Len(t, road, 3)
	assert.Equal(t, []int{2, 2, 3}, columnLengths(road))
	assert.Equal(t, models.SidePlayer, road[0][0].Winner)
	assert.Equal(t, models.SideBanker, road[1][0].Winner)
	assert.Equal(t, 1, road[1][0].Ties)
	assert.Equal(t, 0, road[1][1].Ties)
	assert.Equal(t, models.SidePlayer, road[2][2].Winner)
}

func TestBigRoadKeepsMostRecentColumns(t *testing.T) {
	road := BigRoad(ledgerOf(t, "PBPBPBPBPBPBPBB"))

	require.Len(t, road, MaxRoadColumns)
	last := road[len(road)-1]
	assert.Len(t, last, 2)
	assert.Equal(t, models.SideBanker, last[0].Winner)
	// the two oldest single-hand columns were dropped
	assert.Equal(t, models.SidePlayer, road[0][0].Winner)
}

func TestBigRoadEmpty(t *testing.T) {
	assert.Empty(t, BigRoad(nil))
	assert.Empty(t, BigRoad(ledgerOf(t, "TTT")))
}

func TestBeadPlateFillsColumnsTopToBottom(t *testing.T) {
	records := ledgerOf(t, "PBTPBTPB")
	plate := BeadPlateOf(records)

	require.NotNil(t, plate[0][0])
	assert.Equal(t, "r0", plate[0][0].ID)
	assert.Equal(t, "r5", plate[5][0].ID)
	assert.Equal(t, "r6", plate[0][1].ID)
	assert.Equal(t, "r7", plate[1][1].ID)
	assert.Nil(t, plate[2][1])
	assert.Nil(t, plate[0][2])
}

func TestBeadPlateKeepsMostRecentHands(t *testing.T) {
	seq := ""
	for i := 0; i < 80; i++ {
		seq += "P"
	}
	plate := BeadPlateOf(ledgerOf(t, seq))

	assert.Equal(t, "r8", plate[0][0].ID)
	assert.Equal(t, "r79", plate[BeadPlateRows-1][BeadPlateCols-1].ID)
}

func TestBeadPlateCopiesRecords(t *testing.T) {
	records := ledgerOf(t, "PBPBPB")
	plate := BeadPlateOf(records)
	plate[0][0].Winner = models.WinnerTie

	assert.Equal(t, models.WinnerPlayer, records[0].Winner)
}

func TestDerivedRoads(t *testing.T) {
	// column lengths 2, 2, 1, 3
	primary := BigRoad(ledgerOf(t, "PPBBPBBB"))
	require.Equal(t, []int{2, 2, 1, 3}, columnLengths(primary))

	bigEye := DerivedRoad(primary, BigEyeBoyLag)
	assert.Equal(t, []DerivedColumn{
		{MarkerRed, MarkerRed},
		{MarkerBlue},
		{MarkerBlue, MarkerBlue, MarkerBlue},
	}, bigEye)

	small := DerivedRoad(primary, SmallRoadLag)
	assert.Equal(t, []DerivedColumn{
		{MarkerBlue},
		{MarkerBlue, MarkerBlue, MarkerBlue},
	}, small)

	cockroach := DerivedRoad(primary, CockroachLag)
	assert.Equal(t, []DerivedColumn{
		{MarkerBlue, MarkerBlue, MarkerBlue},
	}, cockroach)
}

func TestDerivedRoadTooShort(t *testing.T) {
	primary := BigRoad(ledgerOf(t, "PPB"))
	assert.Empty(t, DerivedRoad(primary, CockroachLag))
	assert.Empty(t, DerivedRoad(primary, SmallRoadLag))
	assert.Len(t, DerivedRoad(primary, BigEyeBoyLag), 1)
}

func TestPredictedRoad(t *testing.T) {
	tests := []struct {
		name      string
		lookahead string
		want      []PredictedColumn
	}{
		{
			name:      "unknowns stand alone",
			lookahead: "PPPPUU",
			want: []PredictedColumn{
				{models.LookaheadPlayer, models.LookaheadPlayer, models.LookaheadPlayer, models.LookaheadPlayer},
				{models.LookaheadUnknown},
				{models.LookaheadUnknown},
			},
		},
		{
			name:      "runs split on change",
			lookahead: "BPPUUU",
			want: []PredictedColumn{
				{models.LookaheadBanker},
				{models.LookaheadPlayer, models.LookaheadPlayer},
				{models.LookaheadUnknown},
				{models.LookaheadUnknown},
				{models.LookaheadUnknown},
			},
		},
		{
			name:      "unknown breaks an equal run",
			lookahead: "BBUBBP",
			want: []PredictedColumn{
				{models.LookaheadBanker, models.LookaheadBanker},
				{models.LookaheadUnknown},
				{models.LookaheadBanker, models.LookaheadBanker},
				{models.LookaheadPlayer},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PredictedRoad(lookaheadOf(tt.lookahead)))
		})
	}
}

func TestDeriveRoadsIsIdempotent(t *testing.T) {
	records := ledgerOf(t, "PBBPTPPBBBPBTPPB")
	lookahead := Forecast(records).NextPattern

	first := DeriveRoads(records, lookahead)
	second := DeriveRoads(records, lookahead)
	assert.Equal(t, first, second)
}
