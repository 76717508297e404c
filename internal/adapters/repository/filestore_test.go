package repository_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/growthlens/internal/adapters/repository"
	"github.com/okian/growthlens/internal/domain/model"
	"github.com/okian/growthlens/internal/domain/snapshot"
	. "github.com/smartystreets/goconvey/convey"
)

func builtSnapshots() []model.Snapshot {
	events := []model.RatingEvent{
		{OldRating: 1400, NewRating: 1450, UpdateTime: 5_000},
		{OldRating: 1450, NewRating: 1420, UpdateTime: 6_000},
	}
	subs := []model.Submission{
		{ID: 1, Time: 4_000, ProblemIndex: "A", ProblemType: "PROGRAMMING", Tags: []string{"dp", "math"}, Rating: 1500, Verdict: model.VerdictOK, PassedTestCount: 30},
		{ID: 2, Time: 4_500, ProblemIndex: "B", ProblemType: "PROGRAMMING", Tags: []string{"graphs"}, Rating: 0, Verdict: model.VerdictOK, PassedTestCount: 12},
		{ID: 3, Time: 4_900, ProblemIndex: "C", ProblemType: "PROGRAMMING", Tags: []string{}, Rating: 1900, Verdict: "TIME_LIMIT_EXCEEDED", PassedTestCount: 4},
	}
	snaps, err := snapshot.NewBuilder().Build(events, subs)
	if err != nil {
		panic(err)
	}
	return snaps
}

func TestFileStoreRoundTrip(t *testing.T) {
	Convey("Given a file store in a fresh directory", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "data", "snapshots.json")
		store := repository.NewFileStore(path)
		snaps := builtSnapshots()

		Convey("When snapshots are saved and loaded back", func() {
			So(store.Save(ctx, snaps), ShouldBeNil)
			loaded, err := store.Load(ctx)

			Convey("Then every field used by the analysis survives", func() {
				So(err, ShouldBeNil)
				So(loaded, ShouldResemble, snaps)
				So(store.Location(), ShouldEqual, path)
			})

			Convey("Then the file uses the persisted field names", func() {
				raw, err := os.ReadFile(path)
				So(err, ShouldBeNil)
				body := string(raw)
				So(body, ShouldContainSubstring, `"rating_growth_class": "0"`)
				So(body, ShouldContainSubstring, `"problems_last_30"`)
				So(body, ShouldContainSubstring, `"passedTestCount": 30`)
				So(body, ShouldContainSubstring, `"<=1600"`)
			})
		})

		Convey("When nothing was saved", func() {
			_, err := store.Load(ctx)

			Convey("Then a not found error is returned", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When an empty collection is saved", func() {
			So(store.Save(ctx, nil), ShouldBeNil)
			loaded, err := store.Load(ctx)

			Convey("Then an empty collection is loaded", func() {
				So(err, ShouldBeNil)
				So(loaded, ShouldBeEmpty)
			})
		})
	})
}

func TestDecode(t *testing.T) {
	Convey("Given a record written by an older collector", t, func() {
		data := []byte(`[{
			"rating_at_t": 1210,
			"start_time": 100,
			"end_time": 900,
			"rating_growth": 160,
			"rating_growth_class": ">150",
			"problems_last_30": [],
			"features": {"num_attempts": 3, "num_solved": 2, "solve_rate": 0.6667,
				"accepted_tag_ratios": {"dp": 0.5},
				"rating_bucket_ratios": {"<=1200": 1.0}}
		}]`)

		snaps, err := repository.Decode(data)

		Convey("Then missing optional features take neutral values", func() {
			So(err, ShouldBeNil)
			So(snaps, ShouldHaveLength, 1)
			So(snaps[0].RatingGrowthClass, ShouldEqual, model.GrowthHigh)
			So(snaps[0].Features.AvgProblemRating, ShouldEqual, 0.0)
			So(snaps[0].Features.AllTagRatios, ShouldBeEmpty)
			So(snaps[0].Features.AcceptedTagRatios["dp"], ShouldEqual, 0.5)
			So(snaps[0].Features.RatingBucketRatios, ShouldHaveLength, 7)
			So(snaps[0].Features.RatingBucketRatios[model.BucketUpTo1200], ShouldEqual, 1.0)
		})
	})

	Convey("Given a record without rating_growth", t, func() {
		data := []byte(`[{"rating_at_t": 1, "start_time": 1, "end_time": 2,
			"rating_growth_class": "0", "features": {}}]`)

		_, err := repository.Decode(data)

		Convey("Then the whole load fails", func() {
			So(errors.Is(err, repository.ErrMalformed), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "rating_growth")
		})
	})

	Convey("Given a record with an unknown growth class", t, func() {
		data := []byte(`[{"rating_at_t": 1, "start_time": 1, "end_time": 2, "rating_growth": 5,
			"rating_growth_class": ">9000", "features": {}}]`)

		_, err := repository.Decode(data)

		Convey("Then the load fails", func() {
			So(errors.Is(err, repository.ErrMalformed), ShouldBeTrue)
			So(errors.Is(err, model.ErrUnknownGrowthClass), ShouldBeTrue)
		})
	})

	Convey("Given a body that is not a JSON array", t, func() {
		_, err := repository.Decode([]byte(`{"oops": true}`))

		Convey("Then the load fails", func() {
			So(errors.Is(err, repository.ErrMalformed), ShouldBeTrue)
		})
	})
}
