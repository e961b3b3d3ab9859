package queue_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/allinbuy/api/pkg/queue"
)

// Workers deserialize jobs through registered factories, so the test jobs
// report into package-level counters instead of per-instance fields.
var (
	confirmations atomic.Int32
	failAttempts  atomic.Int32
)

type confirmationJob struct {
	OrderID uint `json:"order_id"`
}

func (j *confirmationJob) Handle() error {
	confirmations.Add(1)
	return nil
}

type failJob struct{}

func (j *failJob) Handle() error {
	failAttempts.Add(1)
	return errors.New("always fails")
}

func init() {
	queue.Register("*queue_test.confirmationJob", func() queue.Job { return &confirmationJob{} })
	queue.Register("*queue_test.failJob", func() queue.Job { return &failJob{} })
	queue.StartWorkers(context.Background(), 2)
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(25 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestDispatchAndProcess(t *testing.T) {
	before := confirmations.Load()
	if err := queue.Dispatch(&confirmationJob{OrderID: 1}); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	waitFor(t, 2*time.Second, func() bool { return confirmations.Load() > before })
}

func TestFailedJobExhaustsRetries(t *testing.T) {
	queue.SetMaxRetry(1)
	defer queue.SetMaxRetry(3)

	before := len(queue.FailedJobs())
	if err := queue.Dispatch(&failJob{}); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	// 1 attempt + 1s backoff + slack.
	waitFor(t, 4*time.Second, func() bool { return len(queue.FailedJobs()) > before })

	if failAttempts.Load() == 0 {
		t.Error("expected the job to have been attempted")
	}
}

func TestDispatchConcurrent(t *testing.T) {
	before := confirmations.Load()

	var wg sync.WaitGroup
	wg.Add(20)
	for i := 0; i < 20; i++ {
		go func() {
			defer wg.Done()
			queue.Dispatch(&confirmationJob{OrderID: 2}) //nolint:errcheck
		}()
	}
	wg.Wait()

	waitFor(t, 4*time.Second, func() bool { return confirmations.Load() >= before+20 })
}
