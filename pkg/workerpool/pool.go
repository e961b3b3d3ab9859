// Package workerpool provides a bounded goroutine pool with backpressure.
//
// The server uses a Pool to fan out post-checkout work (websocket
// broadcasts, queue dispatch) without letting a burst of orders spawn an
// unbounded number of goroutines. When every worker is busy and the job
// buffer is full, Submit fails fast with ErrPoolFull so the caller can
// fall back to running the job inline or dropping it.
//
//	pool := workerpool.New(8)
//	defer pool.Shutdown()
//
//	if err := pool.Submit(notifyOrderCreated); errors.Is(err, workerpool.ErrPoolFull) {
//	    notifyOrderCreated() // degrade to inline execution
//	}
package workerpool

import (
	"errors"
	"sync"

	"github.com/allinbuy/api/pkg/logger"
)

// ErrPoolFull is returned by Submit when all workers are busy and the job
// buffer is at capacity.
var ErrPoolFull = errors.New("workerpool: pool is full")

// ErrPoolClosed is returned by Submit after Shutdown has been called.
var ErrPoolClosed = errors.New("workerpool: pool is closed")

// Pool runs submitted jobs on a fixed set of worker goroutines.
type Pool struct {
	jobs chan func()
	wg   sync.WaitGroup
	once sync.Once
	done chan struct{}
}

// New creates a Pool with the given number of workers. Sizes below 1 are
// clamped to 1.
func New(size int) *Pool {
	if size <= 0 {
		size = 1
	}

	p := &Pool{
		// Buffer equal to 2x the worker count so short bursts queue
		// instead of failing.
		jobs: make(chan func(), size*2),
		done: make(chan struct{}),
	}

	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	return p
}

// Submit enqueues job without blocking. It returns ErrPoolFull when the
// buffer is at capacity and ErrPoolClosed after Shutdown.
func (p *Pool) Submit(job func()) error {
	select {
	case <-p.done:
		return ErrPoolClosed
	default:
	}

	select {
	case p.jobs <- job:
		return nil
	default:
		return ErrPoolFull
	}
}

// SubmitWait blocks until a buffer slot is free or the pool is closed.
func (p *Pool) SubmitWait(job func()) error {
	select {
	case <-p.done:
		return ErrPoolClosed
	case p.jobs <- job:
		return nil
	}
}

// Shutdown stops accepting jobs and waits for in-flight ones to finish.
// Safe to call more than once.
func (p *Pool) Shutdown() {
	p.once.Do(func() {
		close(p.done)
		close(p.jobs)
		p.wg.Wait()
	})
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for job := range p.jobs {
		p.run(job)
	}
}

// run executes job, recovering from panics so one bad job cannot kill a
// worker goroutine.
func (p *Pool) run(job func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("workerpool job panicked", "panic", r)
		}
	}()
	job()
}
