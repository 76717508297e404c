package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/growthlens/internal/domain/grouping"
	"github.com/okian/growthlens/internal/domain/model"
	"github.com/okian/growthlens/internal/domain/scoring"
	"github.com/okian/growthlens/internal/domain/types"
	"github.com/okian/growthlens/pkg/logger"
	"github.com/okian/growthlens/pkg/metrics"
)

// Analyze partitions snaps into rating groups and ranks tags and buckets per
// group. Groups appear in their declared order. snaps is only read.
func (s *Service) Analyze(ctx context.Context, snaps []model.Snapshot, source string) (types.Report, error) {
	start := time.Now()
	parts := grouping.Partition(snaps)
	groups := grouping.Groups()

	report := types.Report{
		RunID:          uuid.NewString(),
		Source:         source,
		TotalSnapshots: len(snaps),
		Groups:         make([]types.GroupReport, len(groups)),
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, grp := range groups {
		members := parts[grp.Name]
		out := &report.Groups[i]
		out.Name = grp.Name
		out.Summary = grouping.Summarize(members)

		// Tag and bucket rankings only read members.
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out.Tags = scoring.RankTags(members)
			return nil
		})
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out.Buckets = scoring.RankBuckets(members)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return types.Report{}, fmt.Errorf("analyze: %w", err)
	}

	perGroup := make(map[string]int, len(groups))
	for _, gr := range report.Groups {
		perGroup[gr.Name] = gr.Summary.SnapshotCount
	}
	elapsed := time.Since(start)
	metrics.RecordAnalysis(elapsed, len(snaps), perGroup)
	s.logger.Info(ctx, "analysis finished",
		logger.String("run_id", report.RunID),
		logger.Int("snapshots", len(snaps)),
		logger.Any("per_group", perGroup),
		logger.Duration("elapsed", elapsed),
	)
	return report, nil
}

// LoadAndAnalyze reads the stored collection and analyzes it.
func (s *Service) LoadAndAnalyze(ctx context.Context) (types.Report, error) {
	if s.store == nil {
		return types.Report{}, ErrNoStore
	}
	snaps, err := s.store.Load(ctx)
	if err != nil {
		return types.Report{}, fmt.Errorf("load snapshots: %w", err)
	}
	return s.Analyze(ctx, snaps, s.store.Location())
}
