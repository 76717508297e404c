package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/okian/growthlens/internal/adapters/mq/queue"
	"github.com/okian/growthlens/internal/domain/model"
	"github.com/okian/growthlens/pkg/logger"
	"github.com/okian/growthlens/pkg/metrics"
)

// Fetcher retrieves one user's raw history.
type Fetcher interface {
	Ratings(ctx context.Context, handle string) ([]model.RatingEvent, error)
	Submissions(ctx context.Context, handle string) ([]model.Submission, error)
}

// Builder turns a user's history into snapshots.
type Builder interface {
	Build(events []model.RatingEvent, submissions []model.Submission) ([]model.Snapshot, error)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Result is the outcome of one job.
type Result struct {
	Index     int
	Handle    string
	Snapshots []model.Snapshot
	Err       error
	Elapsed   time.Duration
}

// InMemoryWorker processes jobs until the queue is drained.
type InMemoryWorker struct {
	queue   Queue
	fetcher Fetcher
	builder Builder
	results chan<- Result
	name    string
	done    chan struct{}
	logger  logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, fetcher Fetcher, builder Builder, results chan<- Result, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:   q,
		fetcher: fetcher,
		builder: builder,
		results: results,
		name:    "worker",
		done:    make(chan struct{}),
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Run processes jobs until the queue channel closes or ctx is canceled.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			res := w.process(ctx, job)
			select {
			case w.results <- res:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Done is closed when Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} {
	return w.done
}

func (w *InMemoryWorker) process(ctx context.Context, job queue.Job) Result {
	metrics.AddActiveWorkers(1)
	defer metrics.AddActiveWorkers(-1)

	start := time.Now()
	res := Result{Index: job.Index, Handle: job.Handle}

	snaps, err := w.collect(ctx, job.Handle)
	res.Elapsed = time.Since(start)
	if err != nil {
		res.Err = err
		metrics.RecordUserCollected("error")
		w.logger.Error(ctx, "collection failed",
			logger.String("handle", job.Handle),
			logger.Error(err),
		)
		return res
	}

	res.Snapshots = snaps
	metrics.RecordUserCollected("ok")
	metrics.RecordSnapshotsBuilt(len(snaps))
	w.logger.Info(ctx, "snapshots added for user",
		logger.String("handle", job.Handle),
		logger.Int("snapshots", len(snaps)),
		logger.Duration("elapsed", res.Elapsed),
	)
	return res
}

func (w *InMemoryWorker) collect(ctx context.Context, handle string) ([]model.Snapshot, error) {
	events, err := w.fetcher.Ratings(ctx, handle)
	if err != nil {
		return nil, fmt.Errorf("ratings of %s: %w", handle, err)
	}
	subs, err := w.fetcher.Submissions(ctx, handle)
	if err != nil {
		return nil, fmt.Errorf("submissions of %s: %w", handle, err)
	}
	snaps, err := w.builder.Build(events, subs)
	if err != nil {
		metrics.RecordError("worker", "build")
		return nil, fmt.Errorf("snapshots of %s: %w", handle, err)
	}
	return snaps, nil
}

// Pool runs a fixed number of workers over one queue.
type Pool struct {
	workers []*InMemoryWorker
	wg      sync.WaitGroup
}

// NewPool creates a pool of workerCount workers. Results are sent on results,
// which the caller must drain.
func NewPool(workerCount int, q Queue, fetcher Fetcher, builder Builder, results chan<- Result, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
	}
	for i := range p.workers {
		workerOpts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		p.workers[i] = NewInMemoryWorker(q, fetcher, builder, results, workerOpts...)
	}
	return p
}

// Start launches every worker.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		p.wg.Add(1)
		go func(w *InMemoryWorker) {
			defer p.wg.Done()
			w.Run(ctx)
		}(w)
	}
}

// Wait blocks until every worker has returned.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}
