// Package snapshot turns a user's rating history into labeled snapshots.
package snapshot

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/okian/growthlens/internal/domain/features"
	"github.com/okian/growthlens/internal/domain/model"
)

// Default builder configuration constants.
const (
	DefaultBatchSize  = 5
	DefaultWindowSize = 30
)

// ErrUnorderedEvents is returned when rating events are not chronological.
var ErrUnorderedEvents = errors.New("rating events out of chronological order")

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithBatchSize sets how many consecutive rating events form one snapshot.
func WithBatchSize(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.batchSize = n
		}
	}
}

// WithWindowSize caps the number of submissions attached to a snapshot.
func WithWindowSize(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.windowSize = n
		}
	}
}

// Builder partitions rating events into batches and attaches practice windows.
// A Builder holds no per-run state and is safe for concurrent use.
type Builder struct {
	batchSize  int
	windowSize int
}

// NewBuilder creates a Builder with configuration options.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		batchSize:  DefaultBatchSize,
		windowSize: DefaultWindowSize,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build produces one snapshot per batch of events, in event order.
// Neither input slice is modified. An empty event list yields no snapshots.
func (b *Builder) Build(events []model.RatingEvent, submissions []model.Submission) ([]model.Snapshot, error) {
	if len(events) == 0 {
		return nil, nil
	}
	for i := 1; i < len(events); i++ {
		if events[i].UpdateTime < events[i-1].UpdateTime {
			return nil, fmt.Errorf("%w: event %d at %d precedes event %d at %d",
				ErrUnorderedEvents, i, events[i].UpdateTime, i-1, events[i-1].UpdateTime)
		}
	}

	byTime := SortByTime(submissions)

	snapshots := make([]model.Snapshot, 0, (len(events)+b.batchSize-1)/b.batchSize)
	for start := 0; start < len(events); start += b.batchSize {
		end := min(start+b.batchSize, len(events))
		snapshots = append(snapshots, b.buildOne(events[start:end], byTime))
	}
	return snapshots, nil
}

func (b *Builder) buildOne(batch []model.RatingEvent, byTime []model.Submission) model.Snapshot {
	s := model.Snapshot{
		RatingAtT: batch[0].OldRating,
		StartTime: batch[0].UpdateTime,
		EndTime:   batch[0].UpdateTime,
	}
	for _, e := range batch {
		s.RatingGrowth += e.Delta()
		s.StartTime = min(s.StartTime, e.UpdateTime)
		s.EndTime = max(s.EndTime, e.UpdateTime)
	}
	s.RatingGrowthClass = model.ClassifyGrowth(s.RatingGrowth)
	s.ProblemsWindow = SelectWindow(byTime, s.StartTime, b.windowSize)
	s.Features = features.Extract(s.ProblemsWindow, s.RatingAtT)
	return s
}

// SortByTime returns a copy of subs ordered by descending time.
// Submissions sharing a timestamp keep their input order.
func SortByTime(subs []model.Submission) []model.Submission {
	out := slices.Clone(subs)
	slices.SortStableFunc(out, func(a, b model.Submission) int {
		return cmp.Compare(b.Time, a.Time)
	})
	return out
}

// SelectWindow returns up to limit submissions with time <= cutoff, most
// recent first. byTime must be sorted descending by time (see SortByTime).
// The result is never nil.
func SelectWindow(byTime []model.Submission, cutoff int64, limit int) []model.Submission {
	begin := sort.Search(len(byTime), func(i int) bool { return byTime[i].Time <= cutoff })
	end := min(begin+limit, len(byTime))
	window := make([]model.Submission, 0, end-begin)
	return append(window, byTime[begin:end]...)
}
