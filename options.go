// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package asyncq

import "go.uber.org/zap"

// defaultIdleSpins is how many spin rounds the worker tries on an empty
// queue before it parks on the wake signal.
const defaultIdleSpins = 64

// Options configures queue creation.
type Options struct {
	// Capacity (exact, not rounded)
	capacity int

	// Store selection
	lockFree bool

	// Worker
	lockOSThread bool
	idleSpins    int
	workerInit   func() error

	logger *zap.Logger
}

// Builder creates queues with fluent configuration.
//
// Example:
//
//	// Mutex-guarded store, defaults
//	q := asyncq.Build[*Job](asyncq.New(1024))
//
//	// Lock-free admission, worker pinned to its own OS thread
//	q := asyncq.Build[*Job](asyncq.New(1024).LockFree().LockOSThread())
//
//	// Lifecycle logging
//	q := asyncq.Build[*Job](asyncq.New(1024).Logger(logger))
type Builder struct {
	opts Options
}

// New creates a queue builder with the given capacity.
//
// Capacity is exact: a queue of capacity 3 holds at most 3 items.
//
// Panics if capacity < 1.
func New(capacity int) *Builder {
	if capacity < 1 {
		panic("asyncq: capacity must be >= 1")
	}
	return &Builder{opts: Options{capacity: capacity, idleSpins: defaultIdleSpins}}
}

// LockFree selects the lock-free store.
//
// Producers reserve capacity with a CAS on an atomic count and publish
// into a sequence-numbered ring instead of taking the store mutex. Capacity stays exact.
//
// Trade-off: better producer scalability under contention, one
// power-of-2 ring of at least Capacity slots.
func (b *Builder) LockFree() *Builder {
	b.opts.lockFree = true
	return b
}

// LockOSThread pins the worker goroutine to a dedicated OS thread for its
// whole life. Use it when the target relies on thread-local state.
func (b *Builder) LockOSThread() *Builder {
	b.opts.lockOSThread = true
	return b
}

// IdleSpin sets how many spin rounds the worker tries on an empty queue
// before it parks. Zero parks immediately. Negative values are treated as
// zero.
func (b *Builder) IdleSpin(rounds int) *Builder {
	b.opts.idleSpins = max(rounds, 0)
	return b
}

// WorkerInit registers fn to run on the worker goroutine before the worker
// reports ready. If fn returns an error the worker exits, Start returns
// false and TryStart returns a [*StartError]; the queue can be started
// again.
func (b *Builder) WorkerInit(fn func() error) *Builder {
	b.opts.workerInit = fn
	return b
}

// Logger sets the logger for lifecycle events (start, start failure, stop).
// Enqueue and delivery never log. Defaults to a no-op logger.
func (b *Builder) Logger(l *zap.Logger) *Builder {
	b.opts.logger = l
	return b
}

// Build creates a Queue[T] from the builder's configuration.
//
// The returned queue is NotStarted: register a target with Start before
// enqueueing.
func Build[T any](b *Builder) *Queue[T] {
	return newQueue[T](b.opts)
}

// NewQueue creates a Queue[T] with the default mutex-guarded store.
// Shorthand for Build[T](New(capacity)).
func NewQueue[T any](capacity int) *Queue[T] {
	return Build[T](New(capacity))
}
