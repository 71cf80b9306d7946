// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package asyncq

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// ring is the slot array under the lock-free store.
//
// Producers claim positions with fetch-and-add on tail and publish through a
// per-slot sequence number; the consumer reads positions in order. The ring
// never reports full: callers hold a reservation from the store's count, and
// the count never exceeds the slot count, so every claimed position maps to
// a slot the consumer has already released (or is about to).
//
// head is touched only by the consumer, which the store serializes.
type ring[T any] struct {
	_     pad
	tail  atomix.Uint64 // Next position to claim
	_     pad
	head  uint64 // Next position to take
	slots []ringSlot[T]
	mask  uint64
}

type ringSlot[T any] struct {
	// seq == pos: free for position pos
	// seq == pos+1: holds the item for position pos
	seq  atomix.Uint64
	data T
	_    padShort
}

// newRing creates a ring of at least size slots, rounded to a power of 2.
func newRing[T any](size int) *ring[T] {
	n := uint64(roundToPow2(size))
	r := &ring[T]{
		slots: make([]ringSlot[T], n),
		mask:  n - 1,
	}
	for i := range n {
		r.slots[i].seq.StoreRelaxed(i)
	}
	return r
}

// put publishes item. Safe for concurrent producers holding a reservation.
func (r *ring[T]) put(item T) {
	pos := r.tail.Add(1) - 1
	slot := &r.slots[pos&r.mask]

	// The previous lap's take may still be releasing the slot.
	sw := spin.Wait{}
	for slot.seq.LoadAcquire() != pos {
		sw.Once()
	}
	slot.data = item
	slot.seq.StoreRelease(pos + 1)
}

// take removes the item at head. It returns false when head is empty or its
// producer has claimed the position but not yet published. Consumer only.
func (r *ring[T]) take() (T, bool) {
	var zero T
	slot := &r.slots[r.head&r.mask]
	if slot.seq.LoadAcquire() != r.head+1 {
		return zero, false
	}
	item := slot.data
	slot.data = zero
	slot.seq.StoreRelease(r.head + uint64(len(r.slots)))
	r.head++
	return item, true
}

// size returns the slot count.
func (r *ring[T]) size() int {
	return len(r.slots)
}

// roundToPow2 rounds n up to the next power of 2 (minimum 2).
func roundToPow2(n int) int {
	if n < 2 {
		return 2
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}

// pad is cache line padding to prevent false sharing.
type pad [64]byte

// padShort fills the cache line after an 8-byte field.
type padShort [64 - 8]byte
