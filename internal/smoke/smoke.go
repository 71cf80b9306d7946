// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package smoke

import (
	"context"
	"fmt"
	"io"
	"time"

	"code.hybscloud.com/asyncq"
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Options configures a smoke run.
type Options struct {
	Capacity  int           // Queue capacity
	Items     int           // Jobs to enqueue; 0 means Capacity+1
	Producers int           // Concurrent producer goroutines; 0 means 1
	Delay     time.Duration // Simulated work per job
	LockFree  bool          // Use the lock-free store
	Retry     bool          // Retry jobs rejected with ErrWouldBlock instead of dropping them
}

func (o Options) withDefaults() Options {
	if o.Items == 0 {
		o.Items = o.Capacity + 1
	}
	if o.Producers == 0 {
		o.Producers = 1
	}
	return o
}

func (o Options) validate() error {
	switch {
	case o.Capacity < 1:
		return errors.Errorf("capacity must be >= 1, got %d", o.Capacity)
	case o.Items < 0:
		return errors.Errorf("items must be >= 0, got %d", o.Items)
	case o.Producers < 0:
		return errors.Errorf("producers must be >= 0, got %d", o.Producers)
	case o.Delay < 0:
		return errors.Errorf("delay must be >= 0, got %v", o.Delay)
	}
	return nil
}

// Report summarizes a smoke run.
type Report struct {
	// Queue counters. Rejected counts every refused attempt, retries included.
	asyncq.Stats

	Items       int   // Jobs produced, after defaults
	Dropped     int64 // Jobs given up on after rejection (Accepted+Dropped == Items)
	Processed   int64 // Jobs the consumer finished (must equal Delivered)
	Released    int64 // Jobs whose Dispose ran (must equal Discarded)
	Interrupted bool  // ctx was cancelled before every job was processed
	Elapsed     time.Duration
}

func (r Report) String() string {
	return fmt.Sprintf("accepted=%d dropped=%d delivered=%d discarded=%d released=%d rejected_attempts=%d interrupted=%v elapsed=%v",
		r.Accepted, r.Dropped, r.Delivered, r.Discarded, r.Released, r.Rejected, r.Interrupted, r.Elapsed.Round(time.Millisecond))
}

// Run builds a queue, registers the demo consumer, enqueues the jobs, waits
// for the consumer to catch up (or for ctx to end) and stops the queue.
func Run(ctx context.Context, opts Options, logger *zap.Logger, out io.Writer) (Report, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return Report{}, err
	}
	begin := time.Now()

	b := asyncq.New(opts.Capacity).Logger(logger)
	if opts.LockFree {
		b.LockFree()
	}
	q := asyncq.Build[*Job](b)
	defer q.Close()

	consumer := NewConsumer(out, opts.Delay)
	if err := q.TryStart(asyncq.Bind(consumer, (*Consumer).Process)); err != nil {
		return Report{}, errors.Wrap(err, "start queue")
	}

	var released, dropped atomix.Int64
	g, gctx := errgroup.WithContext(ctx)
	for p := range opts.Producers {
		g.Go(func() error {
			return produce(gctx, q, opts, p, &released, &dropped, logger)
		})
	}
	interrupted := g.Wait() != nil

	if !interrupted {
		interrupted = waitDelivered(ctx, q) != nil
	}
	if interrupted {
		logger.Warn("smoke run interrupted; stopping queue")
	}
	q.Stop()

	return Report{
		Stats:       q.Stats(),
		Items:       opts.Items,
		Dropped:     dropped.Load(),
		Processed:   consumer.Processed(),
		Released:    released.Load(),
		Interrupted: interrupted,
		Elapsed:     time.Since(begin),
	}, nil
}

// produce enqueues jobs p+1, p+1+Producers, ... up to Items. Each job is
// either accepted or counted in dropped, unless ctx ends first.
func produce(ctx context.Context, q *asyncq.Queue[*Job], opts Options, p int, released, dropped *atomix.Int64, logger *zap.Logger) error {
	backoff := iox.Backoff{}
	for n := p + 1; n <= opts.Items; n += opts.Producers {
		job := &Job{N: n, released: released}
		for {
			err := q.TryEnqueue(job)
			if err == nil {
				break
			}
			if !opts.Retry || !asyncq.IsWouldBlock(err) {
				// Rejected: the job is still ours and is simply dropped.
				logger.Debug("job dropped", zap.Int("job", n), zap.Error(err))
				dropped.Add(1)
				break
			}
			if ctx.Err() != nil {
				dropped.Add(1)
				return ctx.Err()
			}
			backoff.Wait()
		}
		backoff.Reset()
	}
	return nil
}

// waitDelivered waits until every accepted job has been delivered.
func waitDelivered(ctx context.Context, q *asyncq.Queue[*Job]) error {
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()
	for {
		st := q.Stats()
		if st.Delivered >= st.Accepted {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
