// Package grouping partitions snapshots into rating bands and summarizes them.
package grouping

import (
	"github.com/okian/growthlens/internal/domain/model"
	"github.com/okian/growthlens/internal/domain/types"
)

// Group is a closed rating band. Min and Max are inclusive.
type Group struct {
	Name string
	Min  int
	Max  int
}

// Contains reports whether rating falls inside the band.
func (g Group) Contains(rating int) bool {
	return rating >= g.Min && rating <= g.Max
}

var groups = []Group{
	{Name: "<1000", Min: 0, Max: 999},
	{Name: "<2000", Min: 1000, Max: 1999},
	{Name: "<3000", Min: 2000, Max: 2999},
}

// Groups returns the rating bands in declaration order.
func Groups() []Group {
	out := make([]Group, len(groups))
	copy(out, groups)
	return out
}

// GroupOf returns the first band containing rating.
func GroupOf(rating int) (Group, bool) {
	for _, g := range groups {
		if g.Contains(rating) {
			return g, true
		}
	}
	return Group{}, false
}

// Partition assigns each snapshot to the band of its reference rating.
// Every band is present in the result, possibly empty. Snapshots outside all
// bands are dropped. Snapshots keep their input order within a band.
func Partition(snaps []model.Snapshot) map[string][]model.Snapshot {
	out := make(map[string][]model.Snapshot, len(groups))
	for _, g := range groups {
		out[g.Name] = []model.Snapshot{}
	}
	for _, s := range snaps {
		if g, ok := GroupOf(s.RatingAtT); ok {
			out[g.Name] = append(out[g.Name], s)
		}
	}
	return out
}

// Summarize computes descriptive statistics of one band. The mean problem
// rating only counts snapshots whose average is positive.
func Summarize(snaps []model.Snapshot) types.GroupSummary {
	var growth, solve, problem, gap mean
	for _, s := range snaps {
		growth.add(float64(s.RatingGrowth))
		solve.add(s.Features.SolveRate)
		if s.Features.AvgProblemRating > 0 {
			problem.add(s.Features.AvgProblemRating)
		}
		gap.add(s.Features.AvgRatingGap)
	}
	return types.GroupSummary{
		SnapshotCount:        len(snaps),
		MeanRatingGrowth:     growth.value(),
		MeanSolveRate:        solve.value(),
		MeanAvgProblemRating: problem.value(),
		MeanAvgRatingGap:     gap.value(),
	}
}

type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v float64) {
	m.sum += v
	m.n++
}

// value is nil when nothing was added.
func (m mean) value() *float64 {
	if m.n == 0 {
		return nil
	}
	v := m.sum / float64(m.n)
	return &v
}
