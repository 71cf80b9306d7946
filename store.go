// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package asyncq

import "sync"

// store is the bounded FIFO behind a Queue.
//
// Many producers call offer concurrently. poll and drain are the consumer
// side; implementations serialize them so there is one consumer at a time.
type store[T any] interface {
	// offer appends item at the tail. admit runs inside the store's
	// admission critical section; a non-nil result rejects the item.
	// Returns ErrWouldBlock when the store holds cap() items.
	offer(item T, admit func() error) error

	// poll removes and returns the head item.
	poll() (T, bool)

	// drain removes every item, hands each to discard, and returns how
	// many were removed. Callers must have closed admission first.
	drain(discard func(T)) int

	len() int
	cap() int
}

// lockedStore is a ring-indexed deque of exact capacity guarded by a mutex.
//
// The lock is held only for O(1) push/pop and never while an item is being
// discarded.
type lockedStore[T any] struct {
	mu     sync.Mutex
	buffer []T
	head   int // index of the oldest item
	n      int // items currently stored
}

func newLockedStore[T any](capacity int) *lockedStore[T] {
	return &lockedStore[T]{buffer: make([]T, capacity)}
}

func (s *lockedStore[T]) offer(item T, admit func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := admit(); err != nil {
		return err
	}
	if s.n >= len(s.buffer) {
		return ErrWouldBlock
	}
	s.buffer[(s.head+s.n)%len(s.buffer)] = item
	s.n++
	return nil
}

func (s *lockedStore[T]) poll() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.n == 0 {
		var zero T
		return zero, false
	}
	return s.dequeueHead(), true
}

// dequeueHead removes the head item. s.mu must be held and s.n > 0.
func (s *lockedStore[T]) dequeueHead() T {
	var zero T
	item := s.buffer[s.head]
	s.buffer[s.head] = zero
	s.head = (s.head + 1) % len(s.buffer)
	s.n--
	return item
}

func (s *lockedStore[T]) drain(discard func(T)) int {
	removed := 0
	for {
		s.mu.Lock()
		if s.n == 0 {
			s.mu.Unlock()
			return removed
		}
		item := s.dequeueHead()
		s.mu.Unlock()

		discard(item)
		removed++
	}
}

func (s *lockedStore[T]) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.n
}

func (s *lockedStore[T]) cap() int {
	return len(s.buffer)
}
