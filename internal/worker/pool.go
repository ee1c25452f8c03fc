// Package worker runs batch analysis with bounded concurrency and rate limits.
package worker

import (
	"context"
	"sync"
)

// Job represents a unit of work to be executed
type Job interface {
	Execute(ctx context.Context) Result
}

// Result represents the result of a job execution
type Result interface {
	GetError() error
}

// Pool runs jobs on a fixed number of workers. Results are drained by a
// single collector goroutine, so Submit never waits on unread results.
type Pool struct {
	workers    int
	jobQueue   chan Job
	results    chan Result
	collected  []Result
	done       chan struct{}
	onResult   func(Result)
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
}

// PoolOption configures a Pool
type PoolOption func(*Pool)

// WithResultHook calls fn for every result as it arrives, from the collector
// goroutine. fn must not block for long.
func WithResultHook(fn func(Result)) PoolOption {
	return func(p *Pool) { p.onResult = fn }
}

// NewPool creates a new worker pool with the specified number of workers
func NewPool(workers int, opts ...PoolOption) *Pool {
	return NewPoolContext(context.Background(), workers, opts...)
}

// NewPoolContext creates a pool whose jobs are cancelled with ctx
func NewPoolContext(ctx context.Context, workers int, opts ...PoolOption) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)

	p := &Pool{
		workers:    workers,
		jobQueue:   make(chan Job, workers*2),
		results:    make(chan Result, workers*2),
		done:       make(chan struct{}),
		ctx:        ctx,
		cancelFunc: cancel,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start starts the workers and the result collector
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	go func() {
		defer close(p.done)
		for result := range p.results {
			p.collected = append(p.collected, result)
			if p.onResult != nil {
				p.onResult(result)
			}
		}
	}()
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobQueue:
			if !ok {
				return
			}
			result := job.Execute(p.ctx)
			select {
			case p.results <- result:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit queues a job. It returns immediately once the pool's context is done.
func (p *Pool) Submit(job Job) {
	select {
	case <-p.ctx.Done():
	case p.jobQueue <- job:
	}
}

// Wait stops accepting jobs, waits for the queued ones and returns their
// results in completion order. Jobs dropped by cancellation have no result.
func (p *Pool) Wait() []Result {
	close(p.jobQueue)
	p.wg.Wait()
	close(p.results)
	<-p.done
	p.cancelFunc()

	return p.collected
}
