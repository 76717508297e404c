package cache_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/okian/growthlens/internal/adapters/cache"
	. "github.com/smartystreets/goconvey/convey"
)

var dbSeq atomic.Int64

func newTestCache(t *testing.T) *cache.SQLite {
	t.Helper()
	dsn := fmt.Sprintf("file:%s-%d?mode=memory&cache=shared", t.Name(), dbSeq.Add(1))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	c, err := cache.New(context.Background(), db)
	if err != nil {
		t.Fatalf("init cache: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestSQLiteCache(t *testing.T) {
	Convey("Given an empty cache", t, func() {
		ctx := context.Background()
		c := newTestCache(t)

		Convey("When a missing key is read", func() {
			payload, ok, err := c.Get(ctx, "user.rating", "alice")

			Convey("Then it reports a miss", func() {
				So(err, ShouldBeNil)
				So(ok, ShouldBeFalse)
				So(payload, ShouldBeNil)
			})
		})

		Convey("When a payload is stored and replaced", func() {
			So(c.Put(ctx, "user.rating", "alice", []byte(`[1]`)), ShouldBeNil)
			So(c.Put(ctx, "user.rating", "alice", []byte(`[1,2]`)), ShouldBeNil)
			So(c.Put(ctx, "user.status", "alice", []byte(`[]`)), ShouldBeNil)

			Convey("Then the latest payload is returned per method", func() {
				payload, ok, err := c.Get(ctx, "user.rating", "alice")
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(string(payload), ShouldEqual, `[1,2]`)

				n, err := c.Len(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 2)
			})
		})

		Convey("When the cache is closed", func() {
			So(c.Close(), ShouldBeNil)

			Convey("Then further use fails", func() {
				_, _, err := c.Get(ctx, "user.rating", "alice")
				So(errors.Is(err, cache.ErrClosed), ShouldBeTrue)
				So(errors.Is(c.Put(ctx, "user.rating", "alice", nil), cache.ErrClosed), ShouldBeTrue)
				So(c.Close(), ShouldBeNil)
			})
		})
	})
}

func TestOpenFile(t *testing.T) {
	Convey("Given a cache file in a new directory", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "nested", "cache.db")

		c, err := cache.Open(ctx, path)
		So(err, ShouldBeNil)
		So(c.Put(ctx, "user.status", "bob", []byte(`[{"id":1}]`)), ShouldBeNil)
		So(c.Close(), ShouldBeNil)

		Convey("When it is reopened", func() {
			reopened, err := cache.Open(ctx, path)
			So(err, ShouldBeNil)
			defer reopened.Close()

			Convey("Then earlier payloads survive", func() {
				payload, ok, err := reopened.Get(ctx, "user.status", "bob")
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(string(payload), ShouldEqual, `[{"id":1}]`)
			})
		})
	})
}
