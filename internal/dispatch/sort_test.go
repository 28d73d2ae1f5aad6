package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dspworks/dispatch/backend/internal/domain"
)

func ids(records []*domain.Disponibility) []string {
	out := make([]string, 0, len(records))
	for _, d := range records {
		out = append(out, d.ID)
	}
	return out
}

func TestSortForDisplay(t *testing.T) {
	shifts := []*domain.Shift{{ID: "m", Name: "Morning"}, {ID: "e", Name: "Evening"}}
	employees := []*domain.Employee{
		{ID: "fair", ScoreCard: domain.ScoreFair},
		{ID: "great", ScoreCard: domain.ScoreGreat},
		{ID: "new", ScoreCard: domain.ScoreNewDA},
		{ID: "odd", ScoreCard: "Legendary"},
	}
	records := []*domain.Disponibility{
		{ID: "m-fair", ShiftID: "m", EmployeeID: "fair"},
		{ID: "m-unknown", ShiftID: "m", EmployeeID: "nobody"},
		{ID: "e-new", ShiftID: "e", EmployeeID: "new"},
		{ID: "m-great", ShiftID: "m", EmployeeID: "great"},
		{ID: "m-odd", ShiftID: "m", EmployeeID: "odd"},
		{ID: "m-fair-2", ShiftID: "m", EmployeeID: "fair"},
	}

	sorted := SortForDisplay(records, shifts, employees)

	assert.Equal(t, []string{"e-new", "m-great", "m-fair", "m-fair-2", "m-unknown", "m-odd"}, ids(sorted))
	assert.Equal(t, "m-fair", records[0].ID, "input is not reordered")
}

func TestSortForDisplay_UnknownShiftsLast(t *testing.T) {
	shifts := []*domain.Shift{{ID: "m", Name: "Morning"}, {ID: "e", Name: "Evening"}}
	records := []*domain.Disponibility{
		{ID: "gone", ShiftID: "deleted"},
		{ID: "blank", ShiftID: ""},
		{ID: "m", ShiftID: "m"},
		{ID: "e", ShiftID: "e"},
	}

	sorted := SortForDisplay(records, shifts, nil)

	assert.Equal(t, []string{"e", "m", "gone", "blank"}, ids(sorted))
}

func TestScoreRank(t *testing.T) {
	assert.Equal(t, 1, ScoreRank(domain.ScoreFantastic))
	assert.Equal(t, 2, ScoreRank(domain.ScoreGreat))
	assert.Equal(t, 3, ScoreRank(domain.ScoreFair))
	assert.Equal(t, 4, ScoreRank(domain.ScorePoor))
	assert.Equal(t, 5, ScoreRank(domain.ScoreNewDA))
	assert.Equal(t, 6, ScoreRank(""))
	assert.Equal(t, 6, ScoreRank("Legendary"))
}
