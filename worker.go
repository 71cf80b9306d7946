// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package asyncq

import (
	"runtime"

	"code.hybscloud.com/spin"
	"go.uber.org/zap"
)

// run is the worker goroutine. It reports initialization on ready (nil
// when alive), delivers until the queue is stopped, and closes done on
// exit.
func (q *Queue[T]) run(target Target[T], ready chan<- error, done chan<- struct{}) {
	defer close(done)

	if q.opts.lockOSThread {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
	}
	if q.opts.workerInit != nil {
		if err := q.opts.workerInit(); err != nil {
			ready <- err
			return
		}
	}
	ready <- nil

	delivered := q.loop(target)

	q.state.StoreRelease(int32(Stopped))
	q.log.Debug("worker exited", zap.Uint64("delivered", delivered))
}

// loop pops and delivers items until the queue is stopped.
//
// Emptiness decisions are made by the store under its own
// synchronization. The wake signal is cleared before the final emptiness
// check, so an enqueue or stop that lands after the check still finds the
// signal set and the park returns immediately.
func (q *Queue[T]) loop(target Target[T]) (delivered uint64) {
	sw := spin.Wait{}
	idle := 0
	for !q.stopped.LoadAcquire() {
		if item, ok := q.store.poll(); ok {
			if q.stopped.LoadAcquire() {
				// Stop landed between pop and dispatch; drain has
				// missed this item, so it is ours to discard.
				q.discard(item)
				return delivered
			}
			target.Deliver(item)
			q.stats.delivered.Add(1)
			delivered++
			idle = 0
			sw.Reset()
			continue
		}

		if idle < q.opts.idleSpins {
			idle++
			sw.Once()
			continue
		}

		q.clearWake()
		if q.store.len() > 0 || q.stopped.LoadAcquire() {
			// An item is mid-publish (lock-free store) or just landed.
			sw.Once()
			continue
		}
		<-q.wake
		idle = 0
		sw.Reset()
	}
	return delivered
}
