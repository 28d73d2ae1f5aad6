package dispatch

import (
	"cmp"
	"slices"

	"github.com/dspworks/dispatch/backend/internal/domain"
)

var scoreRanks = map[domain.ScoreCard]int{
	domain.ScoreFantastic: 1,
	domain.ScoreGreat:     2,
	domain.ScoreFair:      3,
	domain.ScorePoor:      4,
	domain.ScoreNewDA:     5,
}

// ScoreRank 返回评分等级的排序权重，未知或缺失的等级排在最后
func ScoreRank(score domain.ScoreCard) int {
	if rank, ok := scoreRanks[score]; ok {
		return rank
	}
	return len(scoreRanks) + 1
}

// SortForDisplay 先按班次名称排序（未知班次在最后），同一班次内按员工评分等级排序，排序是稳定的
func SortForDisplay(records []*domain.Disponibility, shifts []*domain.Shift, employees []*domain.Employee) []*domain.Disponibility {
	shiftNames := make(map[string]string, len(shifts))
	for _, s := range shifts {
		shiftNames[s.ID] = s.Name
	}
	// 已知班次在前，未知班次排在最后
	unknown := func(d *domain.Disponibility) int {
		if _, ok := shiftNames[d.ShiftID]; ok {
			return 0
		}
		return 1
	}
	scores := make(map[string]domain.ScoreCard, len(employees))
	for _, e := range employees {
		scores[e.ID] = e.ScoreCard
	}

	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b *domain.Disponibility) int {
		return cmp.Or(
			cmp.Compare(unknown(a), unknown(b)),
			cmp.Compare(shiftNames[a.ShiftID], shiftNames[b.ShiftID]),
			cmp.Compare(ScoreRank(scores[a.EmployeeID]), ScoreRank(scores[b.EmployeeID])),
		)
	})
	return sorted
}
