// Package report renders analysis results for the console.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/okian/growthlens/internal/domain/types"
)

// Supported output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// DefaultTopTags is how many tag rows the text report prints per group.
const DefaultTopTags = 15

const (
	ruleWidth         = 70
	recommendedMarker = "  <-- recommended"
)

// Option applies a configuration option to the Formatter.
type Option func(*Formatter)

// WithFormat selects text or json output.
func WithFormat(format string) Option {
	return func(f *Formatter) {
		f.format = strings.ToLower(strings.TrimSpace(format))
	}
}

// WithTopTags limits the tag table of every group. Non-positive values are ignored.
func WithTopTags(n int) Option {
	return func(f *Formatter) {
		if n > 0 {
			f.topTags = n
		}
	}
}

// Formatter writes a types.Report in the configured format.
type Formatter struct {
	format  string
	topTags int
}

// New creates a Formatter. It fails for an unknown format.
func New(opts ...Option) (*Formatter, error) {
	f := &Formatter{format: FormatText, topTags: DefaultTopTags}
	for _, opt := range opts {
		opt(f)
	}
	switch f.format {
	case FormatText, FormatJSON:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f.format)
	}
	return f, nil
}

// Write renders r to w.
func (f *Formatter) Write(w io.Writer, r types.Report) error {
	var err error
	if f.format == FormatJSON {
		err = writeJSON(w, r)
	} else {
		err = f.writeText(w, r)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

func writeJSON(w io.Writer, r types.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// textWriter remembers the first write error so the layout code stays flat.
type textWriter struct {
	w   io.Writer
	err error
}

func (t *textWriter) printf(format string, args ...any) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, format, args...)
}

func (f *Formatter) writeText(w io.Writer, r types.Report) error {
	t := &textWriter{w: w}
	t.printf("Loading snapshots from: %s\n", r.Source)
	t.printf("Total snapshots loaded: %d\n", r.TotalSnapshots)
	for _, g := range r.Groups {
		f.writeGroup(t, g)
	}
	t.printf("\n\n")
	return t.err
}

func (f *Formatter) writeGroup(t *textWriter, g types.GroupReport) {
	rule := strings.Repeat("=", ruleWidth)
	t.printf("\n%s\n", rule)
	t.printf("  GROUP: %s  (%d snapshots)\n", g.Name, g.Summary.SnapshotCount)
	t.printf("%s\n", rule)

	s := g.Summary
	t.printf("\n  Snapshots          : %d\n", s.SnapshotCount)
	t.printf("  Mean rating growth : %s\n", Rounded(s.MeanRatingGrowth, 2))
	t.printf("  Mean solve rate    : %s\n", Rounded(s.MeanSolveRate, 3))
	t.printf("  Mean problem rating: %s\n", Rounded(s.MeanAvgProblemRating, 1))
	t.printf("  Mean rating gap    : %s\n", Rounded(s.MeanAvgRatingGap, 1))

	t.printf("\n  TOP TAGS (by weighted growth score):\n")
	t.printf("  %-30s  %8s  %6s  %6s\n", "Tag", "Score", "Count", "Std")
	t.printf("  %s  %s  %s  %s\n", dashes(30), dashes(8), dashes(6), dashes(6))
	for i, row := range g.Tags {
		if i >= f.topTags {
			break
		}
		t.printf("  %-30s  %8.4f  %6d  %6.4f\n", row.Key, row.MeanWeightedScore, row.Occurrences, row.Std)
	}

	t.printf("\n  OPTIMAL PROBLEM RATING RANGE (by weighted growth score):\n")
	t.printf("  %-10s  %8s  %6s\n", "Bucket", "Score", "Count")
	t.printf("  %s  %s  %s\n", dashes(10), dashes(8), dashes(6))
	for _, row := range g.Buckets.Rows {
		marker := ""
		if row.Recommended {
			marker = recommendedMarker
		}
		t.printf("  %-10s  %8.4f  %6d%s\n", string(row.Key), row.MeanWeightedScore, row.Occurrences, marker)
	}
}

func dashes(n int) string {
	return strings.Repeat("-", n)
}

// Rounded formats v to at most places decimals, keeping one decimal for whole
// numbers. A nil value prints as None.
func Rounded(v *float64, places int) string {
	if v == nil {
		return "None"
	}
	p := math.Pow10(places)
	r := math.Round(*v*p) / p
	if r == 0 {
		r = 0 // drop the sign of negative zero
	}
	s := strconv.FormatFloat(r, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
