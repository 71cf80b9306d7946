// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package asyncq

// State is the worker lifecycle state of a [Queue].
//
//	NotStarted → Running → Draining → Stopped
//
// A queue stopped before it was ever started goes straight from
// NotStarted through Draining to Stopped.
type State int32

const (
	// NotStarted: no worker yet, or the last start attempt failed.
	NotStarted State = iota
	// Running: the worker is alive and delivering.
	Running
	// Draining: stop was requested; queued items are being discarded and
	// the worker is on its way out.
	Draining
	// Stopped: the worker has exited. Terminal.
	Stopped
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not-started"
	case Running:
		return "running"
	case Draining:
		return "draining"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}
