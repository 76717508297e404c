package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/okian/growthlens/internal/domain/model"
	"github.com/okian/growthlens/pkg/logger"
)

// FileStore keeps the collection as an indented JSON array in one file.
type FileStore struct {
	path   string
	indent string
	logger logger.Logger
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a FileStore at path.
func NewFileStore(path string, opts ...Option) *FileStore {
	s := &FileStore{
		path:   path,
		indent: "    ",
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Location returns the file path.
func (s *FileStore) Location() string { return s.path }

// Save writes the collection through a temporary file and a rename so a
// reader never sees a partial file.
func (s *FileStore) Save(ctx context.Context, snaps []model.Snapshot) error {
	if snaps == nil {
		snaps = []model.Snapshot{}
	}
	data, err := json.MarshalIndent(snaps, "", s.indent)
	if err != nil {
		return fmt.Errorf("%w: encode: %w", ErrWriteSnapshot, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteSnapshot, err)
	}
	tmp, err := os.CreateTemp(dir, ".snapshots-*.json")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteSnapshot, err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after rename

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: %w", ErrWriteSnapshot, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteSnapshot, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteSnapshot, err)
	}

	s.logger.Info(ctx, "snapshots saved",
		logger.String("path", s.path),
		logger.Int("snapshots", len(snaps)),
		logger.Int("bytes", len(data)),
	)
	return nil
}

// Load reads and validates the collection.
func (s *FileStore) Load(ctx context.Context) ([]model.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, s.path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	snaps, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	s.logger.Debug(ctx, "snapshots loaded", logger.String("path", s.path), logger.Int("snapshots", len(snaps)))
	return snaps, nil
}

// snapshotRecord mirrors model.Snapshot with required fields as pointers so
// absence can be told apart from zero.
type snapshotRecord struct {
	RatingAtT         *int               `json:"rating_at_t"`
	StartTime         *int64             `json:"start_time"`
	EndTime           *int64             `json:"end_time"`
	RatingGrowth      *int               `json:"rating_growth"`
	RatingGrowthClass *model.GrowthClass `json:"rating_growth_class"`
	ProblemsWindow    []model.Submission `json:"problems_last_30"`
	Features          *model.Features    `json:"features"`
}

func (r snapshotRecord) missing() string {
	switch {
	case r.RatingAtT == nil:
		return "rating_at_t"
	case r.StartTime == nil:
		return "start_time"
	case r.EndTime == nil:
		return "end_time"
	case r.RatingGrowth == nil:
		return "rating_growth"
	case r.RatingGrowthClass == nil:
		return "rating_growth_class"
	case r.Features == nil:
		return "features"
	}
	return ""
}

// Decode parses a JSON snapshot collection. Optional feature fields that are
// absent take neutral values; required fields must be present.
func Decode(data []byte) ([]model.Snapshot, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	var records []snapshotRecord
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	snaps := make([]model.Snapshot, len(records))
	for i, r := range records {
		if field := r.missing(); field != "" {
			return nil, fmt.Errorf("%w: record %d: missing %s", ErrMalformed, i, field)
		}
		f := *r.Features
		if f.AllTagRatios == nil {
			f.AllTagRatios = map[string]float64{}
		}
		if f.AcceptedTagRatios == nil {
			f.AcceptedTagRatios = map[string]float64{}
		}
		buckets := make(map[model.Bucket]float64, len(model.Buckets()))
		for _, b := range model.Buckets() {
			buckets[b] = f.RatingBucketRatios[b]
		}
		f.RatingBucketRatios = buckets

		window := r.ProblemsWindow
		if window == nil {
			window = []model.Submission{}
		}
		snaps[i] = model.Snapshot{
			RatingAtT:         *r.RatingAtT,
			StartTime:         *r.StartTime,
			EndTime:           *r.EndTime,
			RatingGrowth:      *r.RatingGrowth,
			RatingGrowthClass: *r.RatingGrowthClass,
			ProblemsWindow:    window,
			Features:          f,
		}
	}
	return snaps, nil
}
