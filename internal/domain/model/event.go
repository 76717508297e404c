// Package model contains domain models passed between layers.
package model

// VerdictOK is the verdict the judge assigns to an accepted submission.
const VerdictOK = "OK"

// RatingEvent is one official rating update after a contest.
// Events are consumed in the order the data source returns them.
type RatingEvent struct {
	OldRating  int   // rating before the contest
	NewRating  int   // rating after the contest
	UpdateTime int64 // epoch seconds of the update
}

// Delta returns the signed rating change of the event.
func (e RatingEvent) Delta() int {
	return e.NewRating - e.OldRating
}

// Submission is one practice attempt from a user's history.
// Field names in JSON mirror the persisted snapshot format.
type Submission struct {
	ID              int64    `json:"id"`
	Time            int64    `json:"time"`
	ProblemIndex    string   `json:"problem_index"`
	ProblemType     string   `json:"type"`
	Tags            []string `json:"tags"`
	Rating          int      `json:"rating"` // 0 when the problem is unrated
	Verdict         string   `json:"verdict"`
	PassedTestCount int      `json:"passedTestCount"`
}

// Accepted reports whether the submission was judged correct.
func (s Submission) Accepted() bool {
	return s.Verdict == VerdictOK
}

// Rated reports whether the problem carries a difficulty rating.
func (s Submission) Rated() bool {
	return s.Rating > 0
}
