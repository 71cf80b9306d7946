// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package asyncq

// Target receives every item the worker dequeues.
//
// Deliver is called synchronously on the worker goroutine, one item at a
// time, in FIFO order. Ownership of the item moves to the target: the queue
// does not touch it again. A target that needs to release the item (close a
// file, return a buffer to a pool) does so itself.
//
// Deliver must not call Stop or Close on its own queue; Stop waits for the
// worker, and the worker is the goroutine running Deliver.
//
// Errors and panics raised inside Deliver are not caught by the queue.
//
// Example:
//
//	type Printer struct{}
//
//	func (Printer) Deliver(line *string) { fmt.Println(*line) }
//
//	q.Start(Printer{})
type Target[T any] interface {
	Deliver(item T)
}

// TargetFunc adapts a function to a [Target].
//
// Method values bind their receiver, so TargetFunc also covers the
// "handler plus receiver" registration style:
//
//	q.Start(asyncq.TargetFunc[*Job](svc.handle))
type TargetFunc[T any] func(item T)

// Deliver calls f(item).
func (f TargetFunc[T]) Deliver(item T) { f(item) }

// Bind pairs a receiver with a method expression (or any function taking
// the receiver first) and returns it as a [Target].
//
// Example:
//
//	q.Start(asyncq.Bind(svc, (*Service).handle))
func Bind[R, T any](recv R, fn func(R, T)) Target[T] {
	return boundTarget[R, T]{recv: recv, fn: fn}
}

type boundTarget[R, T any] struct {
	recv R
	fn   func(R, T)
}

func (b boundTarget[R, T]) Deliver(item T) { b.fn(b.recv, item) }

// Disposer is implemented by items that hold resources.
//
// When Stop drains items that were accepted but never delivered, it calls
// Dispose exactly once on each item implementing Disposer. Items without
// Dispose are simply dropped.
//
// The queue never disposes a rejected item: a false Enqueue (or a non-nil
// TryEnqueue) leaves the item with the caller.
type Disposer interface {
	Dispose()
}

// dispose releases an item the queue owns but will never deliver.
func dispose[T any](item T) {
	if d, ok := any(item).(Disposer); ok {
		d.Dispose()
	}
}
