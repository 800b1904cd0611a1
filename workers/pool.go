// Package workers provides the fixed-size pool that runs CPU-bound
// extraction work off the request-serving path.
package workers

import (
	"context"
	"errors"
	"sync"

	"github.com/hashicorp/go-hclog"
)

// ErrSaturated is returned by TryDo when every worker is busy.
var ErrSaturated = errors.New("worker pool is saturated")

// ErrClosed is returned by Do and TryDo once the pool has shut down.
var ErrClosed = errors.New("worker pool is closed")

type task struct {
	run  func() error
	done chan error
}

// Pool runs tasks on a fixed set of worker goroutines started at
// construction. Do queues the caller until a worker frees; TryDo rejects
// immediately when all workers are busy, trading fairness for a bounded
// worst-case latency.
type Pool struct {
	tasks chan task
	size  int
	log   hclog.Logger

	// mu orders task submission against Close: submitters hold the read
	// side while sending so the channel is never closed mid-send.
	mu     sync.RWMutex
	closed bool

	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewPool starts size workers. The goroutines are spawned up front, so
// the first real request does not pay any cold-start cost.
func NewPool(size int, log hclog.Logger) (*Pool, error) {
	if size < 1 {
		return nil, errors.New("pool size must be at least 1")
	}

	p := &Pool{
		tasks: make(chan task),
		size:  size,
		log:   log,
	}
	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	log.Debug("worker pool started", "size", size)
	return p, nil
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for t := range p.tasks {
		t.done <- t.run()
	}
}

// Do runs the task on the pool, blocking until a worker is free or ctx
// ends while still queued. After Close it returns ErrClosed.
func (p *Pool) Do(ctx context.Context, run func() error) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return ErrClosed
	}
	t := task{run: run, done: make(chan error, 1)}
	select {
	case p.tasks <- t:
		p.mu.RUnlock()
	case <-ctx.Done():
		p.mu.RUnlock()
		return ctx.Err()
	}
	return <-t.done
}

// TryDo runs the task if a worker is immediately available and returns
// ErrSaturated otherwise. After Close it returns ErrClosed.
func (p *Pool) TryDo(run func() error) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return ErrClosed
	}
	t := task{run: run, done: make(chan error, 1)}
	select {
	case p.tasks <- t:
		p.mu.RUnlock()
	default:
		p.mu.RUnlock()
		return ErrSaturated
	}
	return <-t.done
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return p.size
}

// Close stops the workers after in-flight tasks finish. Pending Do calls
// that already handed off their task complete normally.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.tasks)
		p.mu.Unlock()
		p.wg.Wait()
	})
}
