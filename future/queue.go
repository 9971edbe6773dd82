package future

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Queue is a named scheduler that a Future's handlers and producers run on.
// §5 distinguishes a target's serial work queue (mutating operations never
// interleave) from its parallel async queue (unrelated reads may run
// concurrently and complete out of submission order).
type Queue interface {
	// Submit schedules fn to run on the queue. Submit does not block on fn's
	// completion.
	Submit(fn func())
}

// inlineQueue runs fn synchronously in the caller's goroutine. It exists so
// internal plumbing (e.g. forwarding one Future's result to another) does
// not need to hop through a goroutine.
type inlineQueue struct{}

func (inlineQueue) Submit(fn func()) { fn() }

// Inline is the queue used for internal bookkeeping handlers that must not
// introduce extra concurrency.
var Inline Queue = inlineQueue{}

// SerialQueue runs submitted work one item at a time, in submission order.
// It backs a target handle's work queue (§5): two concurrent mutating
// operations against the same target are ordered, never interleaved.
type SerialQueue struct {
	name string
	mu   sync.Mutex
	jobs chan func()
	once sync.Once
}

// NewSerialQueue creates a SerialQueue with the given diagnostic name and
// starts its worker goroutine.
func NewSerialQueue(name string) *SerialQueue {
	q := &SerialQueue{name: name, jobs: make(chan func(), 64)}
	go q.run()
	return q
}

func (q *SerialQueue) run() {
	for fn := range q.jobs {
		fn()
	}
}

// Submit enqueues fn to run after every previously submitted job completes.
func (q *SerialQueue) Submit(fn func()) {
	q.jobs <- fn
}

// Close stops accepting new work once the queue drains. Submitting after
// Close panics, matching the owned-goroutine-per-target discipline of §9.
func (q *SerialQueue) Close() {
	q.once.Do(func() { close(q.jobs) })
}

// ParallelQueue runs submitted work on a bounded pool of goroutines, backing
// a target's async queue or any facility's private parallel queue.
type ParallelQueue struct {
	name string
	sem  *semaphore.Weighted
}

// NewParallelQueue creates a ParallelQueue allowing up to maxConcurrency
// jobs to run at once. maxConcurrency <= 0 means unbounded.
func NewParallelQueue(name string, maxConcurrency int64) *ParallelQueue {
	var sem *semaphore.Weighted
	if maxConcurrency > 0 {
		sem = semaphore.NewWeighted(maxConcurrency)
	}
	return &ParallelQueue{name: name, sem: sem}
}

// Submit runs fn on a new goroutine and returns without blocking; on a
// bounded queue that goroutine waits for a concurrency slot before running
// fn.
func (q *ParallelQueue) Submit(fn func()) {
	if q.sem == nil {
		go fn()
		return
	}
	go func() {
		_ = q.sem.Acquire(context.Background(), 1)
		defer q.sem.Release(1)
		fn()
	}()
}
