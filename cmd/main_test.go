package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okian/growthlens/internal/adapters/repository"
	"github.com/okian/growthlens/internal/domain/types"
	"github.com/smartystreets/goconvey/convey"
)

// fakeCodeforces serves six rated contests and a few practice submissions per handle.
func fakeCodeforces(t *testing.T) *httptest.Server {
	t.Helper()
	base := map[string]int{"alice": 1200, "bob": 1700, "carol": 800}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handle := r.URL.Query().Get("handle")
		start, ok := base[handle]
		if !ok {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintf(w, `{"status":"FAILED","comment":"handle: User with handle %s not found"}`, handle)
			return
		}
		switch r.URL.Path {
		case "/user.rating":
			var rows []string
			rating := start
			for i := 0; i < 6; i++ {
				rows = append(rows, fmt.Sprintf(
					`{"contestId":%d,"handle":%q,"oldRating":%d,"newRating":%d,"ratingUpdateTimeSeconds":%d}`,
					i+1, handle, rating, rating+30, 10_000+i*1000))
				rating += 30
			}
			fmt.Fprintf(w, `{"status":"OK","result":[%s]}`, strings.Join(rows, ","))
		case "/user.status":
			fmt.Fprint(w, `{"status":"OK","result":[
 {"id":1,"creationTimeSeconds":9000,"verdict":"OK","passedTestCount":10,
  "problem":{"index":"A","type":"PROGRAMMING","tags":["math"],"rating":1000},
  "author":{"participantType":"PRACTICE"}},
 {"id":2,"creationTimeSeconds":9500,"verdict":"OK","passedTestCount":10,
  "problem":{"index":"B","type":"PROGRAMMING","tags":["dp","greedy"],"rating":1500},
  "author":{"participantType":"PRACTICE"}}
]}`)
		default:
			http.NotFound(w, r)
		}
	}))
}

func execute(args ...string) (string, string, error) {
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func fastAPI(t *testing.T, url string) {
	t.Setenv("GROWTH_API_BASE_URL", url)
	t.Setenv("GROWTH_REQUEST_INTERVAL_MS", "0")
	t.Setenv("GROWTH_RETRY_BACKOFF_MS", "0")
}

func TestCollectAndAnalyze(t *testing.T) {
	convey.Convey("Given a Codeforces API with three users", t, func() {
		srv := fakeCodeforces(t)
		defer srv.Close()
		fastAPI(t, srv.URL)
		path := filepath.Join(t.TempDir(), "snapshots.json")

		convey.Convey("When handles are collected explicitly", func() {
			out, _, err := execute("collect", "--no-progress", "-o", path,
				"--handle", "alice", "--handle", "bob", "--handle", "ALICE", "--handle", "carol")

			convey.Convey("Then duplicates are dropped and the file is written", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "Saved 6 snapshots to "+path+" from 3 users")

				snaps, err := repository.NewFileStore(path).Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(snaps, convey.ShouldHaveLength, 6)
				convey.So(snaps[0].RatingAtT, convey.ShouldEqual, 1200)
				convey.So(snaps[0].RatingGrowth, convey.ShouldEqual, 150)
			})

			convey.Convey("And the text report covers every group", func() {
				out, _, err := execute("analyze", path)
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "Total snapshots loaded: 6")
				convey.So(out, convey.ShouldContainSubstring, "GROUP: <1000  (2 snapshots)")
				convey.So(out, convey.ShouldContainSubstring, "GROUP: <2000  (4 snapshots)")
				convey.So(out, convey.ShouldContainSubstring, "GROUP: <3000  (0 snapshots)")
				convey.So(strings.Count(out, "<-- recommended"), convey.ShouldEqual, 2)
			})

			convey.Convey("And the json report decodes", func() {
				out, _, err := execute("analyze", "--format", "json", path)
				convey.So(err, convey.ShouldBeNil)
				var rep types.Report
				convey.So(json.Unmarshal([]byte(out), &rep), convey.ShouldBeNil)
				convey.So(rep.TotalSnapshots, convey.ShouldEqual, 6)
				convey.So(rep.Groups, convey.ShouldHaveLength, 3)
			})
		})

		convey.Convey("When one handle does not exist", func() {
			_, _, err := execute("collect", "--no-progress", "-o", path, "--handle", "alice", "--handle", "ghost")

			convey.Convey("Then the run fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "ghost")
			})

			convey.Convey("And keep-going skips the missing user", func() {
				out, _, err := execute("collect", "--no-progress", "--keep-going", "-o", path,
					"--handle", "alice", "--handle", "ghost")
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "Saved 2 snapshots")
			})
		})
	})
}

func TestAnalyzeErrors(t *testing.T) {
	convey.Convey("Given no snapshot file", t, func() {
		path := filepath.Join(t.TempDir(), "missing.json")

		convey.Convey("Then analyze reports the missing file", func() {
			_, _, err := execute("analyze", path)
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(errors.Is(err, repository.ErrNotFound), convey.ShouldBeTrue)
		})

		convey.Convey("Then an unknown format is rejected", func() {
			_, _, err := execute("analyze", "--format", "xml", path)
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestServe(t *testing.T) {
	convey.Convey("Given a collected snapshot file", t, func() {
		srv := fakeCodeforces(t)
		defer srv.Close()
		fastAPI(t, srv.URL)
		path := filepath.Join(t.TempDir(), "snapshots.json")
		_, _, err := execute("collect", "--no-progress", "-o", path, "--handle", "bob")
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When the report is served", func() {
			ln, err := net.Listen("tcp", "127.0.0.1:0")
			convey.So(err, convey.ShouldBeNil)
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- runServe(ctx, ln, path) }()

			base := "http://" + ln.Addr().String()
			client := &http.Client{Timeout: 5 * time.Second}
			resp, err := client.Get(base + "/report/%3C2000")
			convey.So(err, convey.ShouldBeNil)
			body, _ := io.ReadAll(resp.Body)
			_ = resp.Body.Close()

			cancel()
			serveErr := <-done

			convey.Convey("Then the group is returned and shutdown is clean", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
				var g types.GroupReport
				convey.So(json.Unmarshal(body, &g), convey.ShouldBeNil)
				convey.So(g.Summary.SnapshotCount, convey.ShouldEqual, 2)
				convey.So(serveErr, convey.ShouldBeNil)
			})
		})
	})
}
