package loadtest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"golang.org/x/sync/errgroup"
)

// ErrNoWorkers is returned when a scheduler is asked to run with fewer
// than one worker.
var ErrNoWorkers = errors.New("concurrency must be at least 1")

// RequestExecutor performs one request per call.
type RequestExecutor interface {
	Execute(ctx context.Context) RequestResult
}

// ExecutorFactory builds the executor owned by a single worker.
type ExecutorFactory func(cfg LoadTestConfig) RequestExecutor

func defaultExecutorFactory(cfg LoadTestConfig) RequestExecutor {
	return NewExecutor(cfg)
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger for worker lifecycle events.
func WithLogger(logger log.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// WithExecutorFactory replaces the HTTP executor, mainly for tests.
func WithExecutorFactory(factory ExecutorFactory) Option {
	return func(s *Scheduler) {
		s.newExecutor = factory
	}
}

// Scheduler runs a fixed pool of workers over statically partitioned work.
//
// Every worker gets its chunk up front and appends results to a buffer
// only it writes to. Buffers are merged once all workers have joined, so
// the request path takes no locks. A worker that finishes early stays
// idle; there is no work stealing.
type Scheduler struct {
	config      LoadTestConfig
	logger      log.Logger
	newExecutor ExecutorFactory
}

// NewScheduler creates a scheduler for cfg.
func NewScheduler(cfg LoadTestConfig, opts ...Option) *Scheduler {
	s := &Scheduler{
		config:      cfg,
		logger:      log.NewNopLogger(),
		newExecutor: defaultExecutorFactory,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run starts one worker per partition and blocks until all of them are
// done. It returns the flattened results in no particular order and the
// wall-clock time the workers took.
//
// Cancelling ctx makes in-flight and remaining requests fail fast; the
// results of such a run are not meaningful.
func (s *Scheduler) Run(ctx context.Context) ([]RequestResult, time.Duration, error) {
	chunks := Partition(s.config.TotalRequests, s.config.Concurrency)
	if chunks == nil {
		return nil, 0, ErrNoWorkers
	}

	buffers := make([][]RequestResult, len(chunks))

	var g errgroup.Group
	start := time.Now()

	for id, count := range chunks {
		g.Go(func() error {
			buffers[id] = s.work(ctx, id, count)
			return nil
		})
	}

	// Workers record failures as results, so Wait only fails if a
	// worker is changed to return one.
	err := g.Wait()
	elapsed := time.Since(start)
	if err != nil {
		return nil, elapsed, err
	}

	results := make([]RequestResult, 0, s.config.TotalRequests)
	for _, buf := range buffers {
		results = append(results, buf...)
	}

	level.Debug(s.logger).Log(
		"msg", "all workers joined",
		"workers", len(chunks),
		"results", len(results),
		"elapsed", elapsed,
	)

	return results, elapsed, nil
}

// work executes count requests sequentially.
func (s *Scheduler) work(ctx context.Context, id, count int) []RequestResult {
	if count == 0 {
		level.Debug(s.logger).Log("msg", "worker has no requests", "worker", id)
		return nil
	}

	executor := s.newExecutor(s.config)
	buf := make([]RequestResult, 0, count)

	level.Debug(s.logger).Log("msg", "worker started", "worker", id, "requests", count)

	for i := 0; i < count; i++ {
		buf = append(buf, s.execute(ctx, id, executor))
	}

	level.Debug(s.logger).Log("msg", "worker finished", "worker", id, "requests", count)

	return buf
}

// execute runs one request. A panicking executor yields a failed result
// instead of taking down the run.
func (s *Scheduler) execute(ctx context.Context, id int, executor RequestExecutor) (result RequestResult) {
	defer func() {
		if r := recover(); r != nil {
			level.Error(s.logger).Log("msg", "request executor panicked", "worker", id, "panic", fmt.Sprint(r))
			result = RequestResult{ErrorMessage: fmt.Sprintf("executor panic: %v", r)}
		}
	}()

	return executor.Execute(ctx)
}
