package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	eventqueue "github.com/okian/growthlens/internal/adapters/mq/queue"
	workerpool "github.com/okian/growthlens/internal/adapters/mq/worker"
	"github.com/okian/growthlens/internal/domain/model"
	"github.com/okian/growthlens/pkg/logger"
)

// Progress is told about every finished user, in completion order.
type Progress func(workerpool.Result)

// CollectStats summarizes a collection run.
type CollectStats struct {
	Users     int
	Failed    int
	Snapshots int
	Elapsed   time.Duration
}

// Collect builds snapshots for every handle on the worker pool. The returned
// collection lists users in handle order and each user's snapshots in
// chronological order. Unless keep-going is set, any failed user fails the run.
func (s *Service) Collect(ctx context.Context, handles []string, progress Progress) ([]model.Snapshot, CollectStats, error) {
	stats := CollectStats{Users: len(handles)}
	if s.fetcher == nil {
		return nil, stats, ErrNoFetcher
	}
	if len(handles) == 0 {
		return []model.Snapshot{}, stats, nil
	}
	start := time.Now()

	q := eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(max(s.queueSize, len(handles))))
	for i, h := range handles {
		if err := q.Enqueue(ctx, eventqueue.Job{Index: i, Handle: h}); err != nil {
			return nil, stats, fmt.Errorf("schedule: %w", err)
		}
	}
	_ = q.Close()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan workerpool.Result, len(handles))
	pool := workerpool.NewPool(min(s.workerCount, len(handles)), q, s.fetcher, s.builder, results,
		workerpool.WithLogger(s.logger))
	s.logger.Info(ctx, "collection started",
		logger.Int("users", len(handles)),
		logger.Int("workers", pool.Size()),
	)
	pool.Start(runCtx)
	go func() {
		pool.Wait()
		close(results)
	}()

	perUser := make([][]model.Snapshot, len(handles))
	var errs []error
	for res := range results {
		if progress != nil {
			progress(res)
		}
		if res.Err != nil {
			stats.Failed++
			errs = append(errs, res.Err)
			if !s.keepGoing {
				cancel()
			}
			continue
		}
		perUser[res.Index] = res.Snapshots
	}
	if err := ctx.Err(); err != nil {
		return nil, stats, fmt.Errorf("collection interrupted: %w", err)
	}
	if len(errs) > 0 && !s.keepGoing {
		return nil, stats, fmt.Errorf("%w: %w", ErrCollectionFailed, errors.Join(errs...))
	}

	var snaps []model.Snapshot
	for _, us := range perUser {
		snaps = append(snaps, us...)
	}
	if snaps == nil {
		snaps = []model.Snapshot{}
	}
	stats.Snapshots = len(snaps)
	stats.Elapsed = time.Since(start)

	s.logger.Info(ctx, "collection finished",
		logger.Int("users", stats.Users),
		logger.Int("failed", stats.Failed),
		logger.Int("snapshots", stats.Snapshots),
		logger.Duration("elapsed", stats.Elapsed),
	)
	return snaps, stats, nil
}

// CollectAndSave collects handles and writes the collection to the store.
func (s *Service) CollectAndSave(ctx context.Context, handles []string, progress Progress) (CollectStats, error) {
	if s.store == nil {
		return CollectStats{}, ErrNoStore
	}
	snaps, stats, err := s.Collect(ctx, handles, progress)
	if err != nil {
		return stats, err
	}
	if err := s.store.Save(ctx, snaps); err != nil {
		return stats, fmt.Errorf("save snapshots: %w", err)
	}
	return stats, nil
}
