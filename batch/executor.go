package batch

import (
	"context"
	"sync"

	"github.com/oddbit-project/batchcore/threadpool"
)

// Executor schedules one or more Jobs onto a pool of workers (spec.md
// §4.7), grounded on blueprint/threadpool.ThreadPool: Execute/ExecuteAsync
// dispatch a threadpool.FuncRunner closure and deliver the JobReport back
// over a channel-backed future. The Executor never parallelizes stages
// within a single job — each dispatched job still runs its own state
// machine sequentially (spec.md §5).
type Executor struct {
	pool *threadpool.ThreadPool
}

// NewExecutor creates an Executor backed by a worker pool of the given
// size, each worker able to queue up to queueSize pending jobs.
func NewExecutor(workerCount, queueSize int) (*Executor, error) {
	pool, err := threadpool.NewThreadPool(workerCount, queueSize)
	if err != nil {
		return nil, err
	}
	return &Executor{pool: pool}, nil
}

// Start boots the underlying worker pool. Must be called before Execute/
// ExecuteAsync.
func (e *Executor) Start(ctx context.Context) error {
	return e.pool.Start(ctx)
}

// Stop drains and stops the underlying worker pool, blocking until every
// in-flight job finishes.
func (e *Executor) Stop() error {
	return e.pool.Stop()
}

// Future is the handle ExecuteAsync returns: a single-shot channel
// carrying the finished JobReport.
type Future struct {
	done chan *Report
	once sync.Once
}

// Wait blocks until the job finishes and returns its Report, or returns
// early if ctx is done (the job itself keeps running to completion; its
// Report can still be read from the Job handle afterward).
func (f *Future) Wait(ctx context.Context) (*Report, error) {
	select {
	case r := <-f.done:
		return r, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Execute runs job to completion on the pool and blocks for its Report.
func (e *Executor) Execute(ctx context.Context, job *Job) (*Report, error) {
	future := e.ExecuteAsync(ctx, job)
	return future.Wait(ctx)
}

// ExecuteAsync dispatches job onto the pool and returns immediately with
// a Future. Does not block if the pool's queue has room.
func (e *Executor) ExecuteAsync(ctx context.Context, job *Job) *Future {
	future := &Future{done: make(chan *Report, 1)}
	e.pool.Dispatch(threadpool.FuncRunner(func(runCtx context.Context) {
		report, _ := job.Run(runCtx)
		future.once.Do(func() { future.done <- report })
	}))
	return future
}
