// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package smoke runs a manual end-to-end exercise of an asyncq queue: a
// demo consumer bound by receiver and method expression, producers that
// enqueue numbered jobs (one more than the capacity by default, so the
// overflow path is hit), and a stop that drains what is left.
//
// Example:
//
//	logger, _ := zap.NewDevelopment()
//	report, err := smoke.Run(ctx, smoke.Options{Capacity: 10, Delay: time.Millisecond}, logger, os.Stdout)
package smoke
