package model

// Snapshot is one batch of rating events together with the practice window
// that preceded it and the features derived from that window.
// A Snapshot is built once and never mutated afterwards.
type Snapshot struct {
	RatingAtT         int          `json:"rating_at_t"`
	StartTime         int64        `json:"start_time"`
	EndTime           int64        `json:"end_time"`
	RatingGrowth      int          `json:"rating_growth"`
	RatingGrowthClass GrowthClass  `json:"rating_growth_class"`
	ProblemsWindow    []Submission `json:"problems_last_30"`
	Features          Features     `json:"features"`
}

// Features summarizes a practice window relative to the rating at its start.
type Features struct {
	NumAttempts        int                `json:"num_attempts"`
	NumSolved          int                `json:"num_solved"`
	SolveRate          float64            `json:"solve_rate"`
	AvgProblemRating   float64            `json:"avg_problem_rating"`
	AvgRatingGap       float64            `json:"avg_rating_gap"`
	MaxProblemRating   int                `json:"max_problem_rating"`
	PercentAboveRating float64            `json:"percent_above_rating"`
	AllTagRatios       map[string]float64 `json:"all_tag_ratios"`
	AcceptedTagRatios  map[string]float64 `json:"accepted_tag_ratios"`
	RatingBucketRatios map[Bucket]float64 `json:"rating_bucket_ratios"`
}
