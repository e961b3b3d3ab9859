package workerpool_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/allinbuy/api/pkg/workerpool"
)

func TestPool_RunsEverySubmittedJob(t *testing.T) {
	pool := workerpool.New(4)
	defer pool.Shutdown()

	const n = 100
	var ran atomic.Int64

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		if err := pool.SubmitWait(func() {
			defer wg.Done()
			ran.Add(1)
		}); err != nil {
			t.Fatalf("SubmitWait returned unexpected error: %v", err)
		}
	}
	wg.Wait()

	if got := ran.Load(); got != n {
		t.Errorf("expected %d jobs to run, got %d", n, got)
	}
}

func TestPool_SubmitFailsFastWhenSaturated(t *testing.T) {
	pool := workerpool.New(1)
	defer pool.Shutdown()

	blocker := make(chan struct{})
	started := make(chan struct{})

	// Occupy the only worker.
	_ = pool.SubmitWait(func() {
		close(started)
		<-blocker
	})
	<-started

	// Fill the buffer (2x worker count).
	_ = pool.Submit(func() {})
	_ = pool.Submit(func() {})

	err := pool.Submit(func() {})
	if !errors.Is(err, workerpool.ErrPoolFull) {
		t.Errorf("expected ErrPoolFull from a saturated pool, got %v", err)
	}

	close(blocker)
}

func TestPool_SubmitAfterShutdown(t *testing.T) {
	pool := workerpool.New(2)
	pool.Shutdown()

	if err := pool.Submit(func() {}); !errors.Is(err, workerpool.ErrPoolClosed) {
		t.Errorf("expected ErrPoolClosed after Shutdown, got %v", err)
	}
}

func TestPool_SurvivesPanickingJob(t *testing.T) {
	pool := workerpool.New(2)
	defer pool.Shutdown()

	var wg sync.WaitGroup
	wg.Add(1)
	_ = pool.SubmitWait(func() {
		defer wg.Done()
		panic("intentional panic that should be recovered")
	})
	wg.Wait()

	// The worker must still be alive for the next job.
	done := make(chan struct{})
	_ = pool.SubmitWait(func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pool did not recover from panic, subsequent job never ran")
	}
}

func TestPool_ShutdownWaitsForInFlightJobs(t *testing.T) {
	pool := workerpool.New(10)

	var ran atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		_ = pool.SubmitWait(func() {
			defer wg.Done()
			time.Sleep(time.Millisecond)
			ran.Add(1)
		})
	}

	wg.Wait()
	pool.Shutdown()

	if got := ran.Load(); got != 50 {
		t.Errorf("expected 50 jobs before shutdown returned, got %d", got)
	}
}
