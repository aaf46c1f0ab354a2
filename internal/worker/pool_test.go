package worker

import (
	"context"
	"sync/atomic"
	"testing"
)

type countJob struct {
	counter *atomic.Int32
}

type countResult struct {
	err error
}

func (r *countResult) GetError() error { return r.err }

func (j *countJob) Execute(ctx context.Context) Result {
	j.counter.Add(1)
	return &countResult{}
}

func TestPool_ExecutesAllJobs(t *testing.T) {
	var counter atomic.Int32

	pool := NewPool(4)
	pool.Start()

	const jobs = 20
	for i := 0; i < jobs; i++ {
		pool.Submit(&countJob{counter: &counter})
	}

	results := pool.Wait()

	if counter.Load() != jobs {
		t.Errorf("expected %d executions, got %d", jobs, counter.Load())
	}
	if len(results) != jobs {
		t.Errorf("expected %d results, got %d", jobs, len(results))
	}
}

func TestPool_ZeroWorkersDefaultsToOne(t *testing.T) {
	var counter atomic.Int32

	pool := NewPool(0)
	pool.Start()
	pool.Submit(&countJob{counter: &counter})

	results := pool.Wait()
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
}

func TestPool_ShutdownStopsWorkers(t *testing.T) {
	pool := NewPool(2)
	pool.Start()
	pool.Shutdown()

	// Submissions after shutdown must not block
	pool.Submit(&countJob{counter: &atomic.Int32{}})
}
