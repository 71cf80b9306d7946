// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !race

package asyncq_test

import (
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"code.hybscloud.com/asyncq"
	"code.hybscloud.com/iox"
	"golang.org/x/sync/errgroup"
)

// =============================================================================
// No Double Handling - Randomized Producer/Stop Interleavings
// =============================================================================

// orderedRecorder checks per-producer FIFO order as items arrive.
type orderedRecorder struct {
	mu      sync.Mutex
	last    map[int]int // producer → last delivered sequence
	reorder int
}

func (r *orderedRecorder) Deliver(it *stressItem) {
	it.delivered.Add(1)
	r.mu.Lock()
	if last, ok := r.last[it.producer]; ok && it.seq <= last {
		r.reorder++
	}
	r.last[it.producer] = it.seq
	r.mu.Unlock()
}

func (r *orderedRecorder) reorders() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reorder
}

type stressItem struct {
	tracked
	producer int
	seq      int
}

// TestNoDoubleHandling runs producers against a queue that is stopped at a
// random moment. Every accepted item must be delivered or disposed exactly
// once; every rejected item must be untouched.
func TestNoDoubleHandling(t *testing.T) {
	const (
		rounds       = 40
		producers    = 6
		perProducer  = 500
		maxStopDelay = 3 * time.Millisecond
	)
	for _, v := range storeVariants {
		t.Run(v.name, func(t *testing.T) {
			rng := rand.New(rand.NewPCG(1, 2))
			for round := range rounds {
				capacity := 1 + rng.IntN(64)
				stopDelay := time.Duration(rng.Int64N(int64(maxStopDelay)))

				r := &orderedRecorder{last: make(map[int]int)}
				q := asyncq.Build[*stressItem](v.builder(capacity).IdleSpin(rng.IntN(8)))
				if !q.Start(r) {
					t.Fatalf("round %d: Start: got false", round)
				}

				items := make([][]*stressItem, producers)
				var g errgroup.Group
				for p := range producers {
					items[p] = make([]*stressItem, perProducer)
					g.Go(func() error {
						backoff := iox.Backoff{}
						for i := range perProducer {
							it := &stressItem{tracked: tracked{id: p*perProducer + i}, producer: p, seq: i}
							items[p][i] = it
							err := q.TryEnqueue(it)
							for asyncq.IsWouldBlock(err) {
								backoff.Wait()
								err = q.TryEnqueue(it)
							}
							backoff.Reset()
							if err == nil {
								it.accepted = true
							}
						}
						return nil
					})
				}

				time.Sleep(stopDelay)
				q.Stop()
				g.Wait()

				var accepted uint64
				for p := range producers {
					for _, it := range items[p] {
						handled := it.delivered.Load() + it.disposed.Load()
						if it.accepted {
							accepted++
							if handled != 1 {
								t.Fatalf("round %d: accepted item %d handled %d times", round, it.id, handled)
							}
						} else if handled != 0 {
							t.Fatalf("round %d: rejected item %d handled %d times", round, it.id, handled)
						}
					}
				}
				if n := r.reorders(); n != 0 {
					t.Fatalf("round %d: %d out-of-order deliveries", round, n)
				}
				st := q.Stats()
				if st.Accepted != accepted {
					t.Fatalf("round %d: Stats.Accepted %d, counted %d", round, st.Accepted, accepted)
				}
				if st.Accepted != st.Delivered+st.Discarded {
					t.Fatalf("round %d: accepted %d != delivered %d + discarded %d",
						round, st.Accepted, st.Delivered, st.Discarded)
				}
				if q.Len() != 0 {
					t.Fatalf("round %d: Len after Stop: %d", round, q.Len())
				}
			}
		})
	}
}

// TestConcurrentProducersFIFO tests that with no stop every item from every
// producer is delivered, and each producer's items arrive in order.
func TestConcurrentProducersFIFO(t *testing.T) {
	const (
		producers   = 8
		perProducer = 2000
	)
	for _, v := range storeVariants {
		t.Run(v.name, func(t *testing.T) {
			r := &orderedRecorder{last: make(map[int]int)}
			q := asyncq.Build[*stressItem](v.builder(128))
			defer q.Close()
			if !q.Start(r) {
				t.Fatal("Start: got false")
			}

			var g errgroup.Group
			for p := range producers {
				g.Go(func() error {
					backoff := iox.Backoff{}
					for i := range perProducer {
						it := &stressItem{producer: p, seq: i}
						for !q.Enqueue(it) {
							backoff.Wait()
						}
						backoff.Reset()
					}
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				t.Fatal(err)
			}

			retryWithTimeout(t, 10*time.Second, func() bool {
				return q.Stats().Delivered == producers*perProducer
			}, "deliver all items")
			if n := r.reorders(); n != 0 {
				t.Fatalf("%d out-of-order deliveries", n)
			}
		})
	}
}
