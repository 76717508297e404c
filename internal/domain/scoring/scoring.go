// Package scoring normalizes growth outcomes within a rating group and ranks
// tags and rating buckets by their growth-weighted practice share.
package scoring

import (
	"fmt"
	"math"
	"slices"
)

// neutralScore is assigned to every value when a group has no variance.
const neutralScore = 0.5

// Normalize rescales values to [0,1] by min-max normalization.
// When all values are equal every output is 0.5.
func Normalize(values []float64) ([]float64, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("normalize: %w", ErrEmptyInput)
	}
	lo, hi := slices.Min(values), slices.Max(values)
	out := make([]float64, len(values))
	if hi == lo {
		for i := range out {
			out[i] = neutralScore
		}
		return out, nil
	}
	span := hi - lo
	for i, v := range values {
		out[i] = (v - lo) / span
	}
	return out, nil
}

// stats holds the aggregate of one accumulated score list.
type stats struct {
	mean float64
	n    int
	std  float64
}

// summarize computes the mean and the sample standard deviation (n-1 divisor,
// zero for fewer than two values).
func summarize(scores []float64) stats {
	n := len(scores)
	if n == 0 {
		return stats{}
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	mean := sum / float64(n)
	if n == 1 {
		return stats{mean: mean, n: n}
	}
	var sq float64
	for _, s := range scores {
		d := s - mean
		sq += d * d
	}
	return stats{mean: mean, n: n, std: math.Sqrt(sq / float64(n-1))}
}
