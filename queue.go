// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package asyncq

import (
	"context"
	"sync"

	"code.hybscloud.com/atomix"
	"go.uber.org/zap"
)

// Queue is a bounded asynchronous work queue with one dedicated worker.
//
// Producers call Enqueue from any goroutine. Accepted items are delivered
// one at a time, in acceptance order, to the [Target] registered with
// Start, on the worker goroutine. Enqueue never blocks: a full, stopped,
// or unregistered queue rejects the item and the caller keeps it.
//
// Every accepted item is either delivered exactly once or, if the queue is
// stopped first, discarded exactly once (see [Disposer]).
//
// Example:
//
//	q := asyncq.NewQueue[*Job](128)
//	defer q.Close()
//
//	if !q.Start(asyncq.TargetFunc[*Job](run)) {
//	    return errors.New("worker did not start")
//	}
//
//	job := &Job{ID: 1}
//	if !q.Enqueue(job) {
//	    job.Dispose() // rejected: still ours
//	}
type Queue[T any] struct {
	store store[T]
	opts  Options
	log   *zap.Logger
	admit func() error

	_          pad
	stopped    atomix.Bool // Monotonic false → true
	registered atomix.Bool // Target set; enqueue allowed
	state      atomix.Int32
	_          pad

	wake chan struct{} // Binary wake signal, capacity 1

	life     sync.Mutex // Serializes start and the stop transition
	target   Target[T]
	done     chan struct{} // Closed when the running worker exits
	stopOnce sync.Once

	stats counters
}

func newQueue[T any](opts Options) *Queue[T] {
	q := &Queue[T]{
		opts: opts,
		wake: make(chan struct{}, 1),
	}
	if opts.lockFree {
		q.store = newLockFreeStore[T](opts.capacity)
	} else {
		q.store = newLockedStore[T](opts.capacity)
	}
	if opts.logger != nil {
		q.log = opts.logger.Named("asyncq")
	} else {
		q.log = zap.NewNop()
	}
	q.admit = q.admitItem
	return q
}

// Start registers target and starts the worker.
//
// Start blocks until the worker is ready and reports whether it is alive.
// Calling Start on a running queue is a no-op that returns true; the
// target of the first successful registration is kept. Concurrent calls
// create exactly one worker.
//
// Start returns false for a nil target, after Stop, or when the worker's
// initialization hook fails. Use TryStart to learn which.
func (q *Queue[T]) Start(target Target[T]) bool {
	return q.TryStart(target) == nil
}

// TryStart is Start with an error result.
//
// Returns nil when the worker is alive, ErrNoTarget for a nil target on an
// unregistered queue, ErrStopped after Stop, or a [*StartError] when the
// initialization hook failed. After a StartError the target stays
// registered, items enqueued meanwhile are kept, and TryStart may be
// retried.
func (q *Queue[T]) TryStart(target Target[T]) error {
	q.life.Lock()
	defer q.life.Unlock()

	if q.stopped.LoadAcquire() {
		return ErrStopped
	}
	if q.done != nil {
		return nil
	}
	if q.target == nil {
		if target == nil {
			return ErrNoTarget
		}
		q.target = target
		q.registered.StoreRelease(true)
	}

	ready := make(chan error, 1)
	done := make(chan struct{})
	go q.run(q.target, ready, done)

	if err := <-ready; err != nil {
		<-done
		q.log.Warn("worker init failed", zap.Error(err))
		return newStartError(err)
	}

	q.done = done
	q.state.StoreRelease(int32(Running))
	q.log.Debug("worker started",
		zap.Int("capacity", q.store.cap()),
		zap.Bool("lock_free", q.opts.lockFree),
	)
	return nil
}

// Enqueue hands item to the queue and reports whether it was accepted.
//
// On true the queue owns item: it will be delivered, or discarded if the
// queue is stopped first. On false nothing changed hands; the caller still
// owns item and must dispose of it.
//
// Enqueue never blocks. Safe for concurrent use.
func (q *Queue[T]) Enqueue(item T) bool {
	return q.TryEnqueue(item) == nil
}

// TryEnqueue is Enqueue with an error result.
//
// Returns nil on acceptance, ErrWouldBlock when the queue is at capacity,
// ErrNoTarget before Start registered a target, or ErrStopped after Stop.
func (q *Queue[T]) TryEnqueue(item T) error {
	if err := q.store.offer(item, q.admit); err != nil {
		q.stats.rejected.Add(1)
		return err
	}
	q.stats.accepted.Add(1)
	q.signal()
	return nil
}

// admitItem runs inside the store's admission critical section, so a
// producer either sees stopped or finishes storing before drain's final
// sweep. For the lock-free store this is one half of a handshake: the
// producer's inflight increment precedes this acquire load, and shutdown's
// swap of stopped precedes drain's acquire load of inflight.
func (q *Queue[T]) admitItem() error {
	if q.stopped.LoadAcquire() {
		return ErrStopped
	}
	if !q.registered.LoadAcquire() {
		return ErrNoTarget
	}
	return nil
}

// Stop stops the queue and waits for the worker to exit.
//
// The first call closes the queue to new items, discards every item still
// queued, wakes the worker and waits for it. An item the worker already
// popped is either finished (delivery started before the stop was seen)
// or discarded; no delivery is in flight once Stop returns.
//
// Stop is idempotent and safe for concurrent use; later calls only wait.
// Stop must not be called from the target's Deliver.
func (q *Queue[T]) Stop() {
	_ = q.StopContext(context.Background())
}

// StopContext is Stop with a bounded wait.
//
// Closing and draining happen as in Stop. Waiting for the worker ends
// early with ctx.Err() when ctx is done; the worker still exits on its own
// once its current delivery returns, and a later Stop waits for it.
func (q *Queue[T]) StopContext(ctx context.Context) error {
	q.stopOnce.Do(q.shutdown)

	if q.done == nil {
		return nil
	}
	select {
	case <-q.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the queue. It implements io.Closer and always returns nil.
func (q *Queue[T]) Close() error {
	q.Stop()
	return nil
}

func (q *Queue[T]) shutdown() {
	q.life.Lock()
	// Draining first: the worker may store Stopped as soon as it sees the flag.
	q.state.StoreRelease(int32(Draining))
	// Swap, not Store: the read-modify-write orders the flag before drain
	// reads the lock-free store's inflight count. Do not rely on Unlock.
	q.stopped.Swap(true)
	started := q.done != nil
	q.life.Unlock()

	drained := q.store.drain(q.discard)
	q.signal()
	if !started {
		q.state.StoreRelease(int32(Stopped))
	}

	q.log.Info("queue stopped",
		zap.Int("drained", drained),
		zap.Bool("worker", started),
	)
}

// discard releases an accepted item that will never be delivered.
func (q *Queue[T]) discard(item T) {
	dispose(item)
	q.stats.discarded.Add(1)
}

// signal sets the wake signal. Never blocks.
func (q *Queue[T]) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// clearWake resets the wake signal. Worker only.
func (q *Queue[T]) clearWake() {
	select {
	case <-q.wake:
	default:
	}
}

// State returns the worker lifecycle state.
func (q *Queue[T]) State() State {
	return State(q.state.LoadAcquire())
}

// Len returns the number of queued items. The value is a snapshot.
func (q *Queue[T]) Len() int {
	return q.store.len()
}

// Cap returns the queue capacity.
func (q *Queue[T]) Cap() int {
	return q.store.cap()
}

// Stats returns a snapshot of the item counters.
func (q *Queue[T]) Stats() Stats {
	return q.stats.snapshot()
}
