// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package smoke

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewCommand constructs the asyncq-smoke root command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "asyncq-smoke",
		Short: "Push numbered jobs through an asyncq queue",
		Long: "asyncq-smoke enqueues numbered jobs into a bounded asyncq queue whose consumer " +
			"prints and sleeps on each one, then stops the queue and prints a summary. " +
			"By default one more job than the capacity is enqueued so the overflow path is exercised.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			capacity, _ := cmd.Flags().GetInt("capacity")
			items, _ := cmd.Flags().GetInt("items")
			producers, _ := cmd.Flags().GetInt("producers")
			delay, _ := cmd.Flags().GetDuration("delay")
			lockFree, _ := cmd.Flags().GetBool("lock-free")
			retry, _ := cmd.Flags().GetBool("retry")
			logLevel, _ := cmd.Flags().GetString("log-level")

			logger, err := NewLogger(logLevel)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			report, err := Run(cmd.Context(), Options{
				Capacity:  capacity,
				Items:     items,
				Producers: producers,
				Delay:     delay,
				LockFree:  lockFree,
				Retry:     retry,
			}, logger, cmd.OutOrStdout())
			if err != nil {
				return errors.Wrap(err, "smoke run")
			}
			fmt.Fprintln(cmd.OutOrStdout(), report)
			if report.Released != int64(report.Discarded) {
				return errors.Errorf("released %d jobs but queue discarded %d", report.Released, report.Discarded)
			}
			if !report.Interrupted && report.Accepted+uint64(report.Dropped) != uint64(report.Items) {
				return errors.Errorf("accepted %d + dropped %d != %d jobs", report.Accepted, report.Dropped, report.Items)
			}
			if !report.Interrupted && report.Accepted != report.Delivered+report.Discarded {
				return errors.Errorf("accepted %d != delivered %d + discarded %d",
					report.Accepted, report.Delivered, report.Discarded)
			}
			return nil
		},
	}
	cmd.Flags().Int("capacity", 10, "Queue capacity")
	cmd.Flags().Int("items", 0, "Jobs to enqueue (default capacity+1)")
	cmd.Flags().Int("producers", 1, "Concurrent producer goroutines")
	cmd.Flags().Duration("delay", time.Millisecond, "Simulated work per job")
	cmd.Flags().Bool("lock-free", false, "Use the lock-free store")
	cmd.Flags().Bool("retry", false, "Retry jobs rejected because the queue is full")
	cmd.Flags().String("log-level", "info", "Log level: debug|info|warn|error")
	return cmd
}

// NewLogger builds a console logger writing to stderr at the given level.
func NewLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid --log-level %q", level)
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.DisableStacktrace = true
	return cfg.Build()
}
