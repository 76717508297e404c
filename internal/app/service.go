// Package service wires the collection pipeline and the analysis engine
// behind the commands and the HTTP API.
package service

import (
	"runtime"

	workerpool "github.com/okian/growthlens/internal/adapters/mq/worker"
	"github.com/okian/growthlens/internal/adapters/repository"
	"github.com/okian/growthlens/internal/domain/snapshot"
	"github.com/okian/growthlens/pkg/logger"
)

// Service runs collection and analysis. Each call owns its snapshot
// collection; the Service keeps no per-run state.
type Service struct {
	fetcher   workerpool.Fetcher
	builder   workerpool.Builder
	store     repository.Store
	keepGoing bool

	workerCount int
	queueSize   int

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithFetcher sets the source of rating and submission histories.
func WithFetcher(f workerpool.Fetcher) Option {
	return func(s *Service) {
		s.fetcher = f
	}
}

// WithBuilder replaces the snapshot builder.
func WithBuilder(b workerpool.Builder) Option {
	return func(s *Service) {
		if b != nil {
			s.builder = b
		}
	}
}

// WithStore sets where snapshot collections are saved and loaded.
func WithStore(st repository.Store) Option {
	return func(s *Service) {
		s.store = st
	}
}

// WithWorkerCount sets the number of collection workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the handle queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithKeepGoing makes collection skip users whose retrieval failed instead
// of failing the run.
func WithKeepGoing(keep bool) Option {
	return func(s *Service) {
		s.keepGoing = keep
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		builder:     snapshot.NewBuilder(),
		workerCount: min(runtime.NumCPU(), 4),
		queueSize:   1000,
		logger:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
