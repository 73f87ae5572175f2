// Package executor provides the default execution-pool capability handed
// to resource handlers. The engine core never spawns concurrent work
// itself; surrounding code uses a pool to parallelize independent
// operations such as fetching resources across regions or accounts.
package executor

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Factory builds an execution pool with the given worker bound. Handlers
// carry a Factory rather than a pool so each retrieval can size its own.
type Factory func(workers int) *Pool

// DefaultFactory is the bounded worker-pool factory used when none is
// injected.
var DefaultFactory Factory = NewPool

// Task is one unit of independent work.
type Task func(ctx context.Context) error

// Pool runs tasks with a bounded number of concurrent workers. The first
// task error is retained and returned by Wait; remaining tasks still run.
type Pool struct {
	id  string
	sem chan struct{}
	wg  sync.WaitGroup

	mu  sync.Mutex
	err error
}

// NewPool creates a pool with at most workers concurrent tasks.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 10
	}
	return &Pool{
		id:  uuid.New().String(),
		sem: make(chan struct{}, workers),
	}
}

// ID returns the pool's unique identifier, used in diagnostics.
func (p *Pool) ID() string { return p.id }

// Go submits a task. Submission blocks while all workers are busy, which
// bounds in-flight work without unbounded queuing. A canceled context
// fails the task without running it.
func (p *Pool) Go(ctx context.Context, task Task) {
	p.wg.Add(1)
	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		p.wg.Done()
		p.record(ctx.Err())
		return
	}

	go func() {
		defer p.wg.Done()
		defer func() { <-p.sem }()
		if err := task(ctx); err != nil {
			p.record(err)
		}
	}()
}

// Wait blocks until all submitted tasks finish and returns the first
// recorded error.
func (p *Pool) Wait() error {
	p.wg.Wait()
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *Pool) record(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err == nil {
		p.err = err
	}
}
