// Package listing extracts user handles from saved Codeforces rating pages.
package listing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/okian/growthlens/internal/domain/dedupe"
	"github.com/okian/growthlens/pkg/logger"
	"github.com/okian/growthlens/pkg/metrics"
)

// Sentinel error kinds for this package.
var (
	ErrParse    = errors.New("listing parse failed")
	ErrReadPage = errors.New("listing page read failed")
)

// ratedUser matches the profile links of a ratings table.
var ratedUser = cascadia.MustCompile("a.rated-user")

// ParseHandles returns the handles linked from a ratings page in document
// order. The handle is the last path segment of each link.
func ParseHandles(r io.Reader) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	var handles []string
	for _, a := range ratedUser.MatchAll(doc) {
		if h := handleFromHref(attr(a, "href")); h != "" {
			handles = append(handles, h)
		}
	}
	return handles, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func handleFromHref(href string) string {
	href = strings.TrimSpace(href)
	if i := strings.IndexAny(href, "?#"); i >= 0 {
		href = href[:i]
	}
	href = strings.TrimRight(href, "/")
	if href == "" {
		return ""
	}
	return path.Base(href)
}

// Option applies a configuration option to the Reader.
type Option func(*Reader)

// WithPages sets how many numbered pages are read.
func WithPages(n int) Option {
	return func(r *Reader) {
		if n > 0 {
			r.pages = n
		}
	}
}

// WithDeduper replaces the handle deduper.
func WithDeduper(d dedupe.Deduper) Option {
	return func(r *Reader) {
		if d != nil {
			r.deduper = d
		}
	}
}

// WithLogger sets a custom logger for the reader.
func WithLogger(l logger.Logger) Option {
	return func(r *Reader) {
		if l != nil {
			r.logger = l
		}
	}
}

// Reader walks numbered listing pages named by a printf pattern.
type Reader struct {
	pattern string
	pages   int
	deduper dedupe.Deduper
	logger  logger.Logger
}

// NewReader creates a Reader for pages pattern%1, pattern%2, ...
func NewReader(pattern string, opts ...Option) *Reader {
	r := &Reader{
		pattern: pattern,
		pages:   6,
		deduper: dedupe.NewHandleDeduper(),
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Handles reads pages in order and returns unique handles, stopping as soon
// as target handles are collected. A target <= 0 reads every page.
func (r *Reader) Handles(ctx context.Context, target int) ([]string, error) {
	var out []string
	for page := 1; page <= r.pages; page++ {
		if target > 0 && len(out) >= target {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := fmt.Sprintf(r.pattern, page)
		handles, err := r.readPage(name)
		if err != nil {
			return nil, err
		}
		metrics.RecordListingHandles(len(handles))

		remaining := 0
		if target > 0 {
			remaining = target - len(out)
		}
		fresh := dedupe.Unique(ctx, r.deduper, handles, remaining)
		out = append(out, fresh...)
		r.logger.Debug(ctx, "listing page read",
			logger.String("page", name),
			logger.Int("links", len(handles)),
			logger.Int("new_handles", len(fresh)),
		)
	}
	return out, nil
}

func (r *Reader) readPage(name string) ([]string, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadPage, err)
	}
	defer f.Close()

	handles, err := ParseHandles(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return handles, nil
}
