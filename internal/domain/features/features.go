// Package features derives the practice feature vector of a submission window.
package features

import (
	"github.com/okian/growthlens/internal/domain/model"
)

// Extract computes the features of a practice window relative to ratingAtT.
//
// Solve rate counts every accepted submission. Rating statistics and bucket
// ratios only consider accepted submissions of rated problems, so an accepted
// unrated problem raises the solve rate without moving any rating figure.
func Extract(window []model.Submission, ratingAtT int) model.Features {
	accepted := make([]model.Submission, 0, len(window))
	for _, s := range window {
		if s.Accepted() {
			accepted = append(accepted, s)
		}
	}

	ratings := make([]int, 0, len(accepted))
	for _, s := range accepted {
		if s.Rated() {
			ratings = append(ratings, s.Rating)
		}
	}

	f := model.Features{
		NumAttempts:        len(window),
		NumSolved:          len(accepted),
		SolveRate:          float64(len(accepted)) / float64(max(len(window), 1)),
		AllTagRatios:       TagRatios(window),
		AcceptedTagRatios:  TagRatios(accepted),
		RatingBucketRatios: BucketRatios(ratings),
	}

	if len(ratings) == 0 {
		return f
	}

	var sum, gapSum, above int
	for _, r := range ratings {
		sum += r
		gapSum += r - ratingAtT
		if r > ratingAtT {
			above++
		}
		if r > f.MaxProblemRating {
			f.MaxProblemRating = r
		}
	}
	n := float64(len(ratings))
	f.AvgProblemRating = float64(sum) / n
	f.AvgRatingGap = float64(gapSum) / n
	f.PercentAboveRating = float64(above) / n
	return f
}

// TagRatios returns, per tag, the fraction of submissions carrying it.
// Tags are multi-label so the values need not sum to 1. An empty input
// yields an empty map.
func TagRatios(subs []model.Submission) map[string]float64 {
	ratios := make(map[string]float64)
	if len(subs) == 0 {
		return ratios
	}
	counts := make(map[string]int)
	for _, s := range subs {
		for _, tag := range s.Tags {
			counts[tag]++
		}
	}
	total := float64(len(subs))
	for tag, c := range counts {
		ratios[tag] = float64(c) / total
	}
	return ratios
}

// BucketRatios distributes positive problem ratings over the seven buckets.
// Every bucket is present; all values are zero when ratings is empty.
func BucketRatios(ratings []int) map[model.Bucket]float64 {
	counts := make(map[model.Bucket]int, len(model.Buckets()))
	for _, r := range ratings {
		counts[model.BucketFor(r)]++
	}
	denom := float64(max(len(ratings), 1))
	ratios := make(map[model.Bucket]float64, len(model.Buckets()))
	for _, b := range model.Buckets() {
		ratios[b] = float64(counts[b]) / denom
	}
	return ratios
}
