package scoring

import (
	"cmp"
	"slices"

	"github.com/okian/growthlens/internal/domain/model"
	"github.com/okian/growthlens/internal/domain/types"
)

// growthScores normalizes the rating growth of every snapshot in the group.
func growthScores(snaps []model.Snapshot) ([]float64, error) {
	growth := make([]float64, len(snaps))
	for i, s := range snaps {
		growth[i] = float64(s.RatingGrowth)
	}
	return Normalize(growth)
}

// RankTags scores every tag seen in the group's accepted tag ratios.
// An empty group yields an empty ranking.
func RankTags(snaps []model.Snapshot) []types.TagScore {
	if len(snaps) == 0 {
		return []types.TagScore{}
	}
	norm, err := growthScores(snaps)
	if err != nil {
		return []types.TagScore{}
	}
	acc := make(map[string][]float64)
	for i, s := range snaps {
		for tag, ratio := range s.Features.AcceptedTagRatios {
			acc[tag] = append(acc[tag], norm[i]*ratio)
		}
	}
	return TagScores(acc)
}

// TagScores turns accumulated per-tag weighted scores into ranked rows,
// highest mean first. Equal means are ordered by tag name.
func TagScores(acc map[string][]float64) []types.TagScore {
	out := make([]types.TagScore, 0, len(acc))
	for tag, scores := range acc {
		st := summarize(scores)
		out = append(out, types.TagScore{
			Key:               tag,
			MeanWeightedScore: st.mean,
			Occurrences:       st.n,
			Std:               st.std,
		})
	}
	slices.SortFunc(out, func(a, b types.TagScore) int {
		if c := cmp.Compare(b.MeanWeightedScore, a.MeanWeightedScore); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	return out
}

// RankBuckets scores all seven rating buckets for the group. Only buckets a
// snapshot actually practiced (ratio > 0) contribute to that bucket's scores.
// The top row is recommended whenever the group has snapshots, even if none
// practiced a rated problem. An empty group yields an all-zero table without
// a recommendation.
func RankBuckets(snaps []model.Snapshot) types.BucketTable {
	acc := make(map[model.Bucket][]float64)
	if len(snaps) > 0 {
		norm, err := growthScores(snaps)
		if err == nil {
			for i, s := range snaps {
				for bucket, ratio := range s.Features.RatingBucketRatios {
					if ratio > 0 {
						acc[bucket] = append(acc[bucket], norm[i]*ratio)
					}
				}
			}
		}
	}
	return bucketTable(acc, len(snaps) > 0)
}

// BucketScores turns accumulated per-bucket weighted scores into the full
// seven-row table sorted by descending mean. Buckets with equal means keep
// their canonical order. The top row is recommended when any bucket has data.
func BucketScores(acc map[model.Bucket][]float64) types.BucketTable {
	return bucketTable(acc, len(acc) > 0)
}

func bucketTable(acc map[model.Bucket][]float64, recommend bool) types.BucketTable {
	rows := make([]types.BucketScore, 0, len(model.Buckets()))
	for _, bucket := range model.Buckets() {
		st := summarize(acc[bucket])
		rows = append(rows, types.BucketScore{
			Key:               bucket,
			MeanWeightedScore: st.mean,
			Occurrences:       st.n,
			Std:               st.std,
		})
	}
	slices.SortStableFunc(rows, func(a, b types.BucketScore) int {
		return cmp.Compare(b.MeanWeightedScore, a.MeanWeightedScore)
	})

	table := types.BucketTable{Rows: rows}
	if recommend {
		rows[0].Recommended = true
		table.Recommended = rows[0].Key
	}
	return table
}
