// Package types contains the report shapes shared by the analysis, the
// console formatter and the HTTP API.
package types

import "github.com/okian/growthlens/internal/domain/model"

// TagScore is one row of the tag ranking.
type TagScore struct {
	Key               string  `json:"tag"`
	MeanWeightedScore float64 `json:"mean_weighted_score"`
	Occurrences       int     `json:"occurrences"`
	Std               float64 `json:"std"`
}

// BucketScore is one row of the rating-bucket ranking.
type BucketScore struct {
	Key               model.Bucket `json:"bucket"`
	MeanWeightedScore float64      `json:"mean_weighted_score"`
	Occurrences       int          `json:"occurrences"`
	Std               float64      `json:"std"`
	Recommended       bool         `json:"recommended"`
}

// BucketTable holds all seven buckets sorted by descending score.
type BucketTable struct {
	Rows []BucketScore `json:"rows"`
	// Recommended is the top bucket, empty when the group has no data.
	Recommended model.Bucket `json:"recommended,omitempty"`
}

// GroupSummary holds per-group descriptive statistics.
// A nil statistic means no snapshot contributed a value.
type GroupSummary struct {
	SnapshotCount        int      `json:"snapshot_count"`
	MeanRatingGrowth     *float64 `json:"mean_rating_growth"`
	MeanSolveRate        *float64 `json:"mean_solve_rate"`
	MeanAvgProblemRating *float64 `json:"mean_avg_problem_rating"`
	MeanAvgRatingGap     *float64 `json:"mean_avg_rating_gap"`
}

// GroupReport is the full analysis of one rating group.
type GroupReport struct {
	Name    string       `json:"name"`
	Summary GroupSummary `json:"summary"`
	Tags    []TagScore   `json:"tags"`
	Buckets BucketTable  `json:"buckets"`
}

// Report is the result of one analysis run.
type Report struct {
	RunID          string        `json:"run_id"`
	Source         string        `json:"source"`
	TotalSnapshots int           `json:"total_snapshots"`
	Groups         []GroupReport `json:"groups"`
}

// Group returns the report of the named group.
func (r Report) Group(name string) (GroupReport, bool) {
	for _, g := range r.Groups {
		if g.Name == name {
			return g, true
		}
	}
	return GroupReport{}, false
}
