// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package asyncq

// RaceEnabled is true when the race detector is active.
// Used by tests to skip tests that observe the worker concurrently,
// which trigger false positives on atomix flags and counters.
const RaceEnabled = true
