// Package workerpool provides a bounded goroutine pool with backpressure.
//
// The checkout pipeline runs its CPU- and process-bound stages (the LaTeX
// engine in particular) through a Pool so a burst of requests cannot spawn
// an unbounded number of compiler processes. When every worker is busy and
// the queue is full, Submit and Do fail fast with ErrPoolFull and the caller
// answers 503 instead of piling up.
//
//	pool := workerpool.New(4)
//	defer pool.Shutdown()
//
//	err := pool.Do(ctx, func() error {
//	    pdf, err = renderer.Render(ctx, latex.CoverSheet, data)
//	    return err
//	})
//	if errors.Is(err, workerpool.ErrPoolFull) {
//	    // 503 + Retry-After
//	}
package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// ErrPoolFull is returned when all workers are busy and the task queue is at
// capacity.
var ErrPoolFull = errors.New("workerpool: pool is full")

// ErrPoolClosed is returned after Shutdown has been called.
var ErrPoolClosed = errors.New("workerpool: pool is closed")

// Pool is a bounded goroutine pool.
type Pool struct {
	tasks   chan func()
	wg      sync.WaitGroup
	once    sync.Once
	closeMu sync.RWMutex
	closed  bool
	size    int
	active  atomic.Int64
}

// Option configures a Pool.
type Option func(*config)

type config struct {
	queue int
}

// WithQueue sets how many tasks may wait for a worker. The default is twice
// the worker count; zero means no waiting at all.
func WithQueue(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.queue = n
		}
	}
}

// New creates a Pool with the given number of workers. size < 1 is treated
// as 1.
func New(size int, opts ...Option) *Pool {
	if size <= 0 {
		size = 1
	}

	cfg := config{queue: size * 2}
	for _, opt := range opts {
		opt(&cfg)
	}

	p := &Pool{
		tasks: make(chan func(), cfg.queue),
		size:  size,
	}

	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	return p
}

// Size is the number of workers.
func (p *Pool) Size() int { return p.size }

// Active is the number of tasks currently executing.
func (p *Pool) Active() int { return int(p.active.Load()) }

// Queued is the number of tasks waiting for a worker.
func (p *Pool) Queued() int { return len(p.tasks) }

// Submit enqueues task for execution without blocking.
//   - Returns ErrPoolFull if the task queue is at capacity.
//   - Returns ErrPoolClosed if Shutdown has been called.
func (p *Pool) Submit(task func()) error {
	p.closeMu.RLock()
	defer p.closeMu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.tasks <- task:
		return nil
	default:
		return ErrPoolFull
	}
}

// SubmitWait is like Submit but blocks until a slot is available, the pool
// is closed, or ctx is done.
func (p *Pool) SubmitWait(ctx context.Context, task func()) error {
	p.closeMu.RLock()
	defer p.closeMu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do runs fn on a worker and waits for it. A full pool is reported as
// ErrPoolFull without waiting. If ctx ends first Do returns ctx.Err(); fn is
// expected to observe the same ctx and stop.
func (p *Pool) Do(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	err := p.Submit(func() {
		done <- safeRun(fn)
	})
	if err != nil {
		return err
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops accepting new tasks, waits for all queued and in-flight
// tasks to complete, and releases all worker goroutines.
// It is safe to call multiple times.
func (p *Pool) Shutdown() {
	p.once.Do(func() {
		p.closeMu.Lock()
		p.closed = true
		close(p.tasks)
		p.closeMu.Unlock()
		p.wg.Wait()
	})
}

// worker drains the task channel until it is closed.
func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		p.active.Add(1)
		_ = safeRun(func() error { task(); return nil })
		p.active.Add(-1)
	}
}

// safeRun executes fn, turning a panic into an error so a bad task doesn't
// kill the worker goroutine.
func safeRun(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("workerpool: task panicked: %v", r)
		}
	}()
	return fn()
}
