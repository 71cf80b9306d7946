// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package asyncq provides a bounded asynchronous work queue with a single
// dedicated worker.
//
// Producers hand items to the queue from any goroutine. One background
// worker drains the queue and delivers each item, in FIFO order, to a
// registered delivery target. The producer's call site never pays for
// processing, the backlog is bounded, and the queue owns the worker's whole
// lifecycle: start, idle park, wake, drain-and-stop.
//
// # Quick Start
//
//	q := asyncq.NewQueue[*Job](1024)
//	defer q.Close()
//
//	q.Start(asyncq.TargetFunc[*Job](func(j *Job) {
//	    j.Run()
//	}))
//
//	if !q.Enqueue(job) {
//	    // Full or stopped: job is still ours
//	}
//
// Builder API for non-default configuration:
//
//	q := asyncq.Build[*Job](asyncq.New(1024).LockFree().Logger(logger))
//
// # Delivery Targets
//
// Exactly one [Target] is registered per queue, by the first Start. Three
// ways to provide one:
//
//	// A type with a Deliver method
//	q.Start(printer)
//
//	// A function or method value
//	q.Start(asyncq.TargetFunc[*Job](svc.handle))
//
//	// A receiver plus a method expression
//	q.Start(asyncq.Bind(svc, (*Service).handle))
//
// Deliver runs on the worker goroutine, one item at a time. A slow target
// slows the queue down and, once the backlog reaches capacity, producers
// see rejections.
//
// # Ownership
//
// Ownership of an item moves exactly once:
//
//	Enqueue true   → the queue owns the item
//	Deliver(item)  → the target owns the item
//	Stop drain     → the queue releases the item (Dispose, if implemented)
//	Enqueue false  → nothing moved, the caller still owns the item
//
// Items implementing [Disposer] get Dispose called exactly once if they
// are discarded by Stop. The queue never disposes a rejected item.
//
// # Error Handling
//
// Enqueue and Start report with booleans. TryEnqueue and TryStart return
// the reason:
//
//	ErrWouldBlock   queue at capacity (alias of [iox.ErrWouldBlock])
//	ErrNoTarget     nothing registered yet
//	ErrStopped      queue stopped
//	*StartError     worker initialization failed (errors.Is ErrStartFailed)
//
// Classification helpers:
//
//	asyncq.IsWouldBlock(err) // true if full; retry later
//	asyncq.IsNotReady(err)   // true if unregistered or stopped
//	asyncq.IsSemantic(err)   // true if control flow signal
//	asyncq.IsNonFailure(err) // true if nil or ErrWouldBlock
//
// The queue never retries and never reports errors after acceptance.
// Failures inside Deliver belong to the target.
//
// # Lifecycle
//
//	NotStarted → Running → Draining → Stopped
//
// Start spawns the worker once and blocks until it is ready. Stop closes
// the queue to new items, discards what is still queued, wakes the worker
// and waits for it to exit. Stop is idempotent; Close calls Stop and is
// meant for defer. StopContext bounds the wait.
//
// # Stores
//
// The default store is a ring-indexed deque guarded by a mutex held only
// for O(1) push and pop. LockFree selects a store where producers admit
// through a CAS reservation on an atomic count and publish into a
// sequence-numbered multi-producer single-consumer ring. Both enforce the exact capacity and
// the same ownership guarantees.
//
// # Race Detection
//
// The queue's flags and counters use [code.hybscloud.com/atomix], whose
// operations appear as plain memory accesses to Go's race detector. Tests
// that observe the worker concurrently are excluded via //go:build !race
// or skipped with [RaceEnabled].
//
// # Dependencies
//
// This package uses [code.hybscloud.com/iox] for semantic errors,
// [code.hybscloud.com/atomix] for atomic primitives with explicit
// memory ordering, [code.hybscloud.com/spin] for CPU pause instructions,
// and [go.uber.org/zap] for lifecycle logging.
package asyncq
