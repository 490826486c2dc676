package analyzer

import "github.com/yourusername/baccarat-tracker/internal/models"

const (
	// MaxRoadColumns is the number of most recent columns kept per road.
	MaxRoadColumns = 12
	BeadPlateRows  = 6
	BeadPlateCols  = 12
)

// Derived road lags
const (
	BigEyeBoyLag = 1
	SmallRoadLag = 2
	CockroachLag = 3
)

// RoadCell is one entry of the big road. Ties counts the ties recorded
// after this hand and before the next non-tie hand.
type RoadCell struct {
	Winner models.Side `json:"winner"`
	Ties   int         `json:"ties"`
}

// RoadColumn is a maximal run of equal consecutive winners.
type RoadColumn []RoadCell

// Marker colours a derived road entry.
type Marker string

const (
	// MarkerRed marks columns whose length repeats the compared column.
	MarkerRed Marker = "red"
	// MarkerBlue marks columns whose length differs.
	MarkerBlue Marker = "blue"
)

// DerivedColumn is one column of a derived road.
type DerivedColumn []Marker

// BeadPlate is a fixed grid indexed [row][column]; empty cells are nil.
type BeadPlate [BeadPlateRows][BeadPlateCols]*models.OutcomeRecord

// PredictedColumn is one column of the predicted road.
type PredictedColumn []models.Lookahead

// Roads bundles every road diagram derived from one ledger state.
type Roads struct {
	Primary   []RoadColumn      `json:"primary"`
	BeadPlate BeadPlate         `json:"beadPlate"`
	BigEyeBoy []DerivedColumn   `json:"bigEyeBoy"`
	Small     []DerivedColumn   `json:"small"`
	Cockroach []DerivedColumn   `json:"cockroach"`
	Predicted []PredictedColumn `json:"predicted"`
}

// DeriveRoads builds all road diagrams from the ledger and a forecast lookahead.
func DeriveRoads(records []models.OutcomeRecord, lookahead [models.LookaheadLength]models.Lookahead) Roads {
	primary := BigRoad(records)
	return Roads{
		Primary:   primary,
		BeadPlate: BeadPlateOf(records),
		BigEyeBoy: DerivedRoad(primary, BigEyeBoyLag),
		Small:     DerivedRoad(primary, SmallRoadLag),
		Cockroach: DerivedRoad(primary, CockroachLag),
		Predicted: PredictedRoad(lookahead),
	}
}

// BigRoad groups non-tie hands into columns of equal consecutive winners and
// keeps the most recent MaxRoadColumns columns.
func BigRoad(records []models.OutcomeRecord) []RoadColumn {
	road := make([]RoadColumn, 0)
	for i := range records {
		side, ok := records[i].Winner.Side()
		if !ok {
			if n := len(road); n > 0 {
				col := road[n-1]
				col[len(col)-1].Ties++
			}
			continue
		}
		n := len(road)
		if n > 0 && road[n-1][0].Winner == side {
			road[n-1] = append(road[n-1], RoadCell{Winner: side})
			continue
		}
		road = append(road, RoadColumn{{Winner: side}})
	}
	if len(road) > MaxRoadColumns {
		road = road[len(road)-MaxRoadColumns:]
	}
	return road
}

// BeadPlateOf places the most recent rows*cols hands, ties included, top to
// bottom within a column and then left to right, oldest first.
func BeadPlateOf(records []models.OutcomeRecord) BeadPlate {
	var plate BeadPlate
	start := len(records) - BeadPlateRows*BeadPlateCols
	if start < 0 {
		start = 0
	}
	for i, r := range records[start:] {
		rec := r.Clone()
		plate[i%BeadPlateRows][i/BeadPlateRows] = &rec
	}
	return plate
}

// DerivedRoad compares every big road column with the column lag positions
// earlier, emitting one marker per entry: red when both columns have equal
// length, blue otherwise.
func DerivedRoad(primary []RoadColumn, lag int) []DerivedColumn {
	derived := make([]DerivedColumn, 0)
	for i := lag; i < len(primary); i++ {
		marker := MarkerBlue
		if len(primary[i]) == len(primary[i-lag]) {
			marker = MarkerRed
		}
		col := make(DerivedColumn, len(primary[i]))
		for j := range col {
			col[j] = marker
		}
		derived = append(derived, col)
	}
	if len(derived) > MaxRoadColumns {
		derived = derived[len(derived)-MaxRoadColumns:]
	}
	return derived
}

// PredictedRoad groups a lookahead like the big road, except that every
// unknown entry occupies its own column.
func PredictedRoad(lookahead [models.LookaheadLength]models.Lookahead) []PredictedColumn {
	road := make([]PredictedColumn, 0, len(lookahead))
	var current PredictedColumn
	for _, entry := range lookahead {
		if entry == models.LookaheadUnknown {
			if len(current) > 0 {
				road = append(road, current)
				current = nil
			}
			road = append(road, PredictedColumn{entry})
			continue
		}
		if len(current) > 0 && current[0] == entry {
			current = append(current, entry)
			continue
		}
		if len(current) > 0 {
			road = append(road, current)
		}
		current = PredictedColumn{entry}
	}
	if len(current) > 0 {
		road = append(road, current)
	}
	return road
}
