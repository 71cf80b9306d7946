// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package asyncq

import "code.hybscloud.com/atomix"

// Stats is a snapshot of a queue's item counters.
//
// Once Stop has returned and no producer is inside Enqueue,
// Accepted == Delivered + Discarded.
type Stats struct {
	Accepted  uint64 // Items the queue took ownership of
	Rejected  uint64 // Enqueue calls that returned false
	Delivered uint64 // Items handed to the target
	Discarded uint64 // Accepted items released during stop
}

type counters struct {
	accepted  atomix.Uint64
	rejected  atomix.Uint64
	delivered atomix.Uint64
	discarded atomix.Uint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Accepted:  c.accepted.Load(),
		Rejected:  c.rejected.Load(),
		Delivered: c.delivered.Load(),
		Discarded: c.discarded.Load(),
	}
}
