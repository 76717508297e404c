package snapshot_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/okian/growthlens/internal/domain/model"
	"github.com/okian/growthlens/internal/domain/snapshot"
	. "github.com/smartystreets/goconvey/convey"
)

func events(base int, start int64, deltas ...int) []model.RatingEvent {
	out := make([]model.RatingEvent, len(deltas))
	rating := base
	for i, d := range deltas {
		out[i] = model.RatingEvent{
			OldRating:  rating,
			NewRating:  rating + d,
			UpdateTime: start + int64(i)*1000,
		}
		rating += d
	}
	return out
}

func submissionsEvery(n int, step int64) []model.Submission {
	out := make([]model.Submission, n)
	for i := range out {
		out[i] = model.Submission{
			ID:      int64(i + 1),
			Time:    int64(i) * step,
			Verdict: model.VerdictOK,
			Rating:  800 + 100*(i%10),
			Tags:    []string{"implementation"},
		}
	}
	return out
}

func TestBuilderBuild(t *testing.T) {
	Convey("Given a builder with the default batch and window sizes", t, func() {
		b := snapshot.NewBuilder()

		Convey("When five events with deltas +40,-10,+85,+20,+15 are built", func() {
			evs := events(1500, 10_000, 40, -10, 85, 20, 15)
			snaps, err := b.Build(evs, nil)

			Convey("Then a single snapshot with additive growth is produced", func() {
				So(err, ShouldBeNil)
				So(snaps, ShouldHaveLength, 1)
				So(snaps[0].RatingGrowth, ShouldEqual, 150)
				So(snaps[0].RatingGrowthClass, ShouldEqual, model.GrowthModerate)
				So(snaps[0].RatingAtT, ShouldEqual, 1500)
				So(snaps[0].StartTime, ShouldEqual, int64(10_000))
				So(snaps[0].EndTime, ShouldEqual, int64(14_000))
			})
		})

		Convey("When twelve events are built", func() {
			evs := events(1200, 100, 10, 10, 10, 10, 10, -5, -5, -5, -5, -5, 300, 200)
			snaps, err := b.Build(evs, nil)

			Convey("Then the final batch holds the remainder", func() {
				So(err, ShouldBeNil)
				So(snaps, ShouldHaveLength, 3)
				So(snaps[0].RatingGrowth, ShouldEqual, 50)
				So(snaps[1].RatingGrowth, ShouldEqual, -25)
				So(snaps[1].RatingAtT, ShouldEqual, 1250)
				So(snaps[2].RatingGrowth, ShouldEqual, 500)
				So(snaps[2].RatingGrowthClass, ShouldEqual, model.GrowthExplosive)
				So(snaps[2].StartTime, ShouldEqual, int64(100+10*1000))
				So(snaps[2].EndTime, ShouldEqual, int64(100+11*1000))
			})
		})

		Convey("When no events are given", func() {
			snaps, err := b.Build(nil, submissionsEvery(5, 10))

			Convey("Then no snapshots and no error are returned", func() {
				So(err, ShouldBeNil)
				So(snaps, ShouldBeEmpty)
			})
		})

		Convey("When events are out of chronological order", func() {
			evs := []model.RatingEvent{
				{OldRating: 1500, NewRating: 1520, UpdateTime: 2000},
				{OldRating: 1520, NewRating: 1540, UpdateTime: 1000},
			}
			_, err := b.Build(evs, nil)

			Convey("Then the input is rejected", func() {
				So(errors.Is(err, snapshot.ErrUnorderedEvents), ShouldBeTrue)
			})
		})
	})
}

func TestBuilderWindow(t *testing.T) {
	Convey("Given 100 submissions ten seconds apart", t, func() {
		subs := submissionsEvery(100, 10)
		b := snapshot.NewBuilder()

		Convey("When a batch starts at t=555", func() {
			evs := []model.RatingEvent{{OldRating: 1400, NewRating: 1450, UpdateTime: 555}}
			snaps, err := b.Build(evs, subs)
			So(err, ShouldBeNil)
			window := snaps[0].ProblemsWindow

			Convey("Then the window holds the 30 most recent submissions at or before start", func() {
				So(window, ShouldHaveLength, 30)
				for _, s := range window {
					So(s.Time, ShouldBeLessThanOrEqualTo, int64(555))
				}
				So(window[0].Time, ShouldEqual, int64(550))
				So(window[29].Time, ShouldEqual, int64(260))
			})

			Convey("Then the window is sorted most recent first", func() {
				for i := 1; i < len(window); i++ {
					So(window[i-1].Time, ShouldBeGreaterThanOrEqualTo, window[i].Time)
				}
			})

			Convey("Then features are derived from the window", func() {
				So(snaps[0].Features.NumAttempts, ShouldEqual, 30)
				So(snaps[0].Features.NumSolved, ShouldEqual, 30)
			})
		})

		Convey("When a batch starts exactly on a submission time", func() {
			window := snapshot.SelectWindow(snapshot.SortByTime(subs), 50, 30)

			Convey("Then that submission is included", func() {
				So(window, ShouldHaveLength, 6)
				So(window[0].Time, ShouldEqual, int64(50))
			})
		})

		Convey("When a batch starts before any practice", func() {
			window := snapshot.SelectWindow(snapshot.SortByTime(subs), -1, 30)

			Convey("Then the window is empty", func() {
				So(window, ShouldBeEmpty)
			})
		})
	})

	Convey("Given unsorted submissions", t, func() {
		subs := []model.Submission{
			{ID: 3, Time: 300},
			{ID: 1, Time: 100},
			{ID: 2, Time: 200},
		}
		original := append([]model.Submission(nil), subs...)

		Convey("When building a snapshot", func() {
			evs := []model.RatingEvent{{OldRating: 1000, NewRating: 1010, UpdateTime: 250}}
			snaps, err := snapshot.NewBuilder(snapshot.WithWindowSize(5)).Build(evs, subs)

			Convey("Then the window is filtered and ordered without touching the input", func() {
				So(err, ShouldBeNil)
				So(snaps[0].ProblemsWindow, ShouldHaveLength, 2)
				So(snaps[0].ProblemsWindow[0].ID, ShouldEqual, int64(2))
				So(snaps[0].ProblemsWindow[1].ID, ShouldEqual, int64(1))
				So(subs, ShouldResemble, original)
			})
		})
	})

	Convey("Given a builder with a batch size of two", t, func() {
		b := snapshot.NewBuilder(snapshot.WithBatchSize(2))

		Convey("Then three events yield two snapshots", func() {
			snaps, err := b.Build(events(1000, 0, 10, 20, 30), nil)
			So(err, ShouldBeNil)
			So(snaps, ShouldHaveLength, 2)
			So(snaps[1].RatingGrowth, ShouldEqual, 30)
		})
	})
}

func TestBuilderWindowTies(t *testing.T) {
	Convey("Given 31 submissions sharing one timestamp", t, func() {
		subs := make([]model.Submission, 31)
		for i := range subs {
			subs[i] = model.Submission{ID: int64(i + 1), Time: 100, Verdict: model.VerdictOK}
		}

		Convey("When a batch starts at that timestamp", func() {
			evs := []model.RatingEvent{{OldRating: 1300, NewRating: 1320, UpdateTime: 100}}
			snaps, err := snapshot.NewBuilder().Build(evs, subs)

			Convey("Then the window keeps the first 30 in input order", func() {
				So(err, ShouldBeNil)
				window := snaps[0].ProblemsWindow
				So(window, ShouldHaveLength, 30)
				for i, s := range window {
					So(s.ID, ShouldEqual, int64(i+1))
				}
			})
		})
	})

	Convey("Given ties around later submissions", t, func() {
		subs := []model.Submission{
			{ID: 1, Time: 50},
			{ID: 2, Time: 70},
			{ID: 3, Time: 50},
			{ID: 4, Time: 70},
		}

		Convey("Then newer times come first and ties keep input order", func() {
			window := snapshot.SelectWindow(snapshot.SortByTime(subs), 70, 3)
			So(window, ShouldHaveLength, 3)
			So(window[0].ID, ShouldEqual, int64(2))
			So(window[1].ID, ShouldEqual, int64(4))
			So(window[2].ID, ShouldEqual, int64(1))
		})
	})
}

func TestBuilderEmptyWindow(t *testing.T) {
	Convey("Given a user without any practice submissions", t, func() {
		evs := events(1100, 500, 10, 20)
		snaps, err := snapshot.NewBuilder().Build(evs, nil)
		So(err, ShouldBeNil)

		Convey("Then the window is an empty list rather than nil", func() {
			So(snaps[0].ProblemsWindow, ShouldNotBeNil)
			So(snaps[0].ProblemsWindow, ShouldBeEmpty)

			raw, err := json.Marshal(snaps[0])
			So(err, ShouldBeNil)
			So(string(raw), ShouldContainSubstring, `"problems_last_30":[]`)
			So(string(raw), ShouldNotContainSubstring, `"problems_last_30":null`)
		})
	})
}
