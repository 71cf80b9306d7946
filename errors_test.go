// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package asyncq_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"code.hybscloud.com/asyncq"
	"code.hybscloud.com/iox"
)

// =============================================================================
// Error Classification
// =============================================================================

func TestErrWouldBlockIsIox(t *testing.T) {
	if asyncq.ErrWouldBlock != iox.ErrWouldBlock {
		t.Fatal("ErrWouldBlock is not iox.ErrWouldBlock")
	}
	wrapped := fmt.Errorf("enqueue: %w", asyncq.ErrWouldBlock)
	if !asyncq.IsWouldBlock(wrapped) {
		t.Fatal("IsWouldBlock(wrapped): got false")
	}
	if !asyncq.IsSemantic(asyncq.ErrWouldBlock) {
		t.Fatal("IsSemantic(ErrWouldBlock): got false")
	}
	if !asyncq.IsNonFailure(nil) || !asyncq.IsNonFailure(asyncq.ErrWouldBlock) {
		t.Fatal("IsNonFailure: got false for nil or ErrWouldBlock")
	}
	if asyncq.IsNonFailure(asyncq.ErrStopped) {
		t.Fatal("IsNonFailure(ErrStopped): got true")
	}
}

func TestIsNotReady(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{asyncq.ErrNoTarget, true},
		{asyncq.ErrStopped, true},
		{fmt.Errorf("x: %w", asyncq.ErrStopped), true},
		{asyncq.ErrWouldBlock, false},
		{asyncq.ErrStartFailed, false},
		{nil, false},
	}
	for _, tt := range tests {
		if got := asyncq.IsNotReady(tt.err); got != tt.want {
			t.Errorf("IsNotReady(%v): got %v, want %v", tt.err, got, tt.want)
		}
	}
}

// TestStartError tests that a failed worker init surfaces as a StartError
// matching both ErrStartFailed and the original cause.
func TestStartError(t *testing.T) {
	errInit := errors.New("no thread for you")
	q := asyncq.Build[int](asyncq.New(4).WorkerInit(func() error { return errInit }))
	defer q.Close()

	err := q.TryStart(asyncq.TargetFunc[int](func(int) {}))
	if err == nil {
		t.Fatal("TryStart: got nil, want error")
	}
	if !errors.Is(err, asyncq.ErrStartFailed) {
		t.Fatalf("errors.Is(err, ErrStartFailed): got false for %v", err)
	}
	if !errors.Is(err, errInit) {
		t.Fatalf("errors.Is(err, errInit): got false for %v", err)
	}
	var se *asyncq.StartError
	if !errors.As(err, &se) {
		t.Fatalf("errors.As(*StartError): got false for %T", err)
	}
	if !strings.Contains(err.Error(), "no thread for you") {
		t.Fatalf("Error(): %q does not mention the cause", err.Error())
	}
	if asyncq.IsNotReady(err) {
		t.Fatal("IsNotReady(StartError): got true")
	}
	if s := q.State(); s != asyncq.NotStarted {
		t.Fatalf("State after failed start: got %v, want %v", s, asyncq.NotStarted)
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		s    asyncq.State
		want string
	}{
		{asyncq.NotStarted, "not-started"},
		{asyncq.Running, "running"},
		{asyncq.Draining, "draining"},
		{asyncq.Stopped, "stopped"},
		{asyncq.State(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("State(%d).String(): got %q, want %q", tt.s, got, tt.want)
		}
	}
}

// =============================================================================
// Builder
// =============================================================================

func TestNewPanicsOnNonPositiveCapacity(t *testing.T) {
	for _, c := range []int{0, -1} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("New(%d): expected panic", c)
				}
			}()
			asyncq.New(c)
		}()
	}
}

func TestCapIsExact(t *testing.T) {
	for _, c := range []int{1, 3, 5, 1000} {
		if got := asyncq.NewQueue[int](c).Cap(); got != c {
			t.Errorf("NewQueue(%d).Cap(): got %d", c, got)
		}
		if got := asyncq.Build[int](asyncq.New(c).LockFree()).Cap(); got != c {
			t.Errorf("LockFree(%d).Cap(): got %d", c, got)
		}
	}
}

// TestUnstartedQueue tests the queue before any worker exists.
func TestUnstartedQueue(t *testing.T) {
	q := asyncq.NewQueue[int](2)

	if err := q.TryEnqueue(1); !errors.Is(err, asyncq.ErrNoTarget) {
		t.Fatalf("TryEnqueue before Start: got %v, want ErrNoTarget", err)
	}
	if q.Enqueue(1) {
		t.Fatal("Enqueue before Start: got true")
	}
	if err := q.TryStart(nil); !errors.Is(err, asyncq.ErrNoTarget) {
		t.Fatalf("TryStart(nil): got %v, want ErrNoTarget", err)
	}
	if st := q.Stats(); st.Rejected != 2 || st.Accepted != 0 {
		t.Fatalf("Stats: got %+v, want 2 rejected", st)
	}

	q.Stop()
	if s := q.State(); s != asyncq.Stopped {
		t.Fatalf("State after Stop: got %v, want %v", s, asyncq.Stopped)
	}
	if err := q.TryStart(asyncq.TargetFunc[int](func(int) {})); !errors.Is(err, asyncq.ErrStopped) {
		t.Fatalf("TryStart after Stop: got %v, want ErrStopped", err)
	}
	if q.Start(asyncq.TargetFunc[int](func(int) {})) {
		t.Fatal("Start after Stop: got true")
	}
	if err := q.TryEnqueue(1); !errors.Is(err, asyncq.ErrStopped) {
		t.Fatalf("TryEnqueue after Stop: got %v, want ErrStopped", err)
	}
	if err := q.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
