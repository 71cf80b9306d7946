// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package smoke

import (
	"fmt"
	"io"
	"time"

	"code.hybscloud.com/atomix"
)

// Job is the item the smoke run pushes through the queue.
type Job struct {
	N        int
	released *atomix.Int64
}

// Dispose counts a job the queue discarded on stop.
func (j *Job) Dispose() {
	if j.released != nil {
		j.released.Add(1)
	}
}

// Consumer is the demo delivery target. Process prints each job and then
// simulates work by sleeping.
type Consumer struct {
	out       io.Writer
	delay     time.Duration
	processed atomix.Int64
}

// NewConsumer creates a consumer writing to out.
func NewConsumer(out io.Writer, delay time.Duration) *Consumer {
	return &Consumer{out: out, delay: delay}
}

// Process handles one job. It runs on the queue's worker goroutine.
func (c *Consumer) Process(j *Job) {
	fmt.Fprintf(c.out, "processing job %d\n", j.N)
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	c.processed.Add(1)
}

// Processed returns how many jobs Process has finished.
func (c *Consumer) Processed() int64 {
	return c.processed.Load()
}
