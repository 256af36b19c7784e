package queue

import (
	"context"
	"sync"
)

// MemoryBroker is an in-process Broker used in tests and local runs without
// Redis. Unbounded FIFO, single consumer.
type MemoryBroker struct {
	mu      sync.Mutex
	jobs    []Job
	arrived chan struct{}
}

// NewMemory returns an empty in-memory broker.
func NewMemory() *MemoryBroker {
	return &MemoryBroker{arrived: make(chan struct{}, 1)}
}

// Enqueue appends the job.
func (b *MemoryBroker) Enqueue(_ context.Context, job Job) error {
	b.mu.Lock()
	b.jobs = append(b.jobs, job)
	b.mu.Unlock()
	select {
	case b.arrived <- struct{}{}:
	default:
	}
	return nil
}

// Consume pops the oldest job, blocking until one arrives or ctx ends.
func (b *MemoryBroker) Consume(ctx context.Context) (*Job, error) {
	for {
		b.mu.Lock()
		if len(b.jobs) > 0 {
			job := b.jobs[0]
			b.jobs = b.jobs[1:]
			b.mu.Unlock()
			return &job, nil
		}
		b.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-b.arrived:
		}
	}
}

// Len reports the number of queued jobs.
func (b *MemoryBroker) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.jobs)
}
