// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package asyncq

import (
	"sync"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// lockFreeStore admits producers without a lock.
//
// Capacity is enforced exactly by count: a producer reserves a unit with a
// CAS that never moves count past capacity, then claims a ring slot. The
// consumer returns the unit only after it has released the slot, so the
// ring (at least capacity slots) always has room for a reserved producer.
//
// inflight brackets every offer. The producer increments inflight before it
// checks admission; stop closes admission before it waits for inflight to
// reach zero. Both sides use read-modify-write or acquire operations so the
// two checks cannot both miss each other, and drain's final sweep sees every
// item admitted before the close.
//
// The consumer side is serialized by consumerMu: the worker's poll and the
// stopping goroutine's drain never take from the ring concurrently.
type lockFreeStore[T any] struct {
	_          pad
	count      atomix.Int64 // Reserved units (admitted, not yet consumed)
	_          pad
	inflight   atomix.Int64 // Producers inside offer
	_          pad
	ring       *ring[T]
	capacity   int64
	consumerMu sync.Mutex
}

func newLockFreeStore[T any](capacity int) *lockFreeStore[T] {
	return &lockFreeStore[T]{
		ring:     newRing[T](capacity),
		capacity: int64(capacity),
	}
}

func (s *lockFreeStore[T]) offer(item T, admit func() error) error {
	s.inflight.Add(1)
	defer s.inflight.Add(-1)

	if err := admit(); err != nil {
		return err
	}
	if !s.reserve() {
		return ErrWouldBlock
	}
	s.ring.put(item)
	return nil
}

// reserve takes one unit of capacity. It fails only when count is at
// capacity at the moment of the attempt.
func (s *lockFreeStore[T]) reserve() bool {
	sw := spin.Wait{}
	for {
		c := s.count.LoadAcquire()
		if c >= s.capacity {
			return false
		}
		if s.count.CompareAndSwapAcqRel(c, c+1) {
			return true
		}
		sw.Once()
	}
}

func (s *lockFreeStore[T]) poll() (T, bool) {
	s.consumerMu.Lock()
	defer s.consumerMu.Unlock()

	item, ok := s.ring.take()
	if ok {
		s.count.Add(-1)
	}
	return item, ok
}

func (s *lockFreeStore[T]) drain(discard func(T)) int {
	sw := spin.Wait{}
	for s.inflight.LoadAcquire() != 0 {
		sw.Once()
	}

	removed := 0
	for {
		item, ok := s.poll()
		if !ok {
			return removed
		}
		discard(item)
		removed++
	}
}

// len counts reserved units, so an item still being published counts as
// stored. Never exceeds cap.
func (s *lockFreeStore[T]) len() int {
	return int(s.count.LoadAcquire())
}

func (s *lockFreeStore[T]) cap() int {
	return int(s.capacity)
}
