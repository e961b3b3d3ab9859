package queue

import (
	"context"
)

// memoryBuffer bounds the in-process queue. Push blocks once it fills,
// which only matters in tests and single-node development setups; the
// redis driver is the production path.
const memoryBuffer = 1000

// MemoryDriver is an in-process, channel-backed queue driver. Jobs do not
// survive a restart.
type MemoryDriver struct {
	jobs chan []byte
}

// NewMemoryDriver creates an in-memory queue.
func NewMemoryDriver() *MemoryDriver {
	return &MemoryDriver{jobs: make(chan []byte, memoryBuffer)}
}

func (d *MemoryDriver) Push(payload []byte) error {
	d.jobs <- payload
	return nil
}

func (d *MemoryDriver) Pop(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case payload := <-d.jobs:
		return payload, nil
	}
}
