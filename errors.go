// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package asyncq

import (
	"errors"

	"code.hybscloud.com/iox"
	pkgerrors "github.com/pkg/errors"
)

// ErrWouldBlock indicates the queue is at capacity.
//
// TryEnqueue returns ErrWouldBlock when accepting the item would exceed the
// configured capacity. The item was not accepted and ownership stays with
// the caller, who must dispose of it or retry later.
//
// ErrWouldBlock is a control flow signal, not a failure. The queue never
// retries internally; retry policy belongs to the producer.
//
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency.
//
// Example:
//
//	backoff := iox.Backoff{}
//	for {
//	    err := q.TryEnqueue(item)
//	    if err == nil {
//	        break
//	    }
//	    if !asyncq.IsWouldBlock(err) {
//	        item.Dispose() // stopped or not registered: give up
//	        return err
//	    }
//	    backoff.Wait()
//	}
var ErrWouldBlock = iox.ErrWouldBlock

var (
	// ErrNoTarget is returned by TryEnqueue before a delivery target is
	// registered, and by TryStart when the target is nil.
	ErrNoTarget = errors.New("asyncq: no delivery target registered")

	// ErrStopped is returned once the queue has been stopped.
	// A stopped queue accepts no items and cannot be restarted.
	ErrStopped = errors.New("asyncq: queue stopped")

	// ErrStartFailed matches every [StartError] via errors.Is.
	ErrStartFailed = errors.New("asyncq: worker failed to start")
)

// StartError reports that the worker goroutine exited before it became
// ready, because its initialization hook failed.
//
// The queue remains usable: the delivery target stays registered, accepted
// items stay queued, and Start may be called again.
type StartError struct {
	Cause error
}

func newStartError(cause error) *StartError {
	return &StartError{Cause: pkgerrors.Wrap(cause, "worker init")}
}

func (e *StartError) Error() string {
	return ErrStartFailed.Error() + ": " + e.Cause.Error()
}

// Unwrap returns the initialization failure.
func (e *StartError) Unwrap() error { return e.Cause }

// Is reports whether target is ErrStartFailed.
func (e *StartError) Is(target error) bool { return target == ErrStartFailed }

// IsWouldBlock reports whether err indicates the queue is full.
// Delegates to [iox.IsWouldBlock] for wrapped error support.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsNotReady reports whether err indicates the queue cannot accept items
// at all: nothing is registered yet or the queue is stopped.
func IsNotReady(err error) bool {
	return errors.Is(err, ErrNoTarget) || errors.Is(err, ErrStopped)
}

// IsSemantic reports whether err is a control flow signal (not a failure).
// Delegates to [iox.IsSemantic].
func IsSemantic(err error) bool {
	return iox.IsSemantic(err)
}

// IsNonFailure reports whether err represents a non-failure condition.
// Returns true for nil or ErrWouldBlock.
// Delegates to [iox.IsNonFailure].
func IsNonFailure(err error) bool {
	return iox.IsNonFailure(err)
}
