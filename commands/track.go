package commands

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/penwyp/go-focus-monitor/internal/tracker"
	"github.com/penwyp/go-focus-monitor/internal/util"
	"github.com/spf13/cobra"
)

var (
	replayFile string

	trackCmd = &cobra.Command{
		Use:   "track",
		Short: "Run the sampling loop, merging heartbeats into sessions",
		Long: `track consumes heartbeats from the spool directory the native window
sensor writes into, merges them into usage sessions, and persists them.
Runs until interrupted.

With --replay it processes a recorded JSONL heartbeat file instead and
exits when the file is exhausted.`,
		RunE: runTrack,
	}
)

func init() {
	trackCmd.Flags().StringVar(&replayFile, "replay", "",
		"Replay a recorded JSONL heartbeat file instead of watching the spool")
	rootCmd.AddCommand(trackCmd)
}

func runTrack(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	var sampler tracker.Sampler
	if replayFile != "" {
		sampler, err = tracker.NewReplaySampler(replayFile)
	} else {
		sampler, err = tracker.NewSpoolSampler(cfg.SpoolDir)
	}
	if err != nil {
		return err
	}
	defer sampler.Close()

	merger := tracker.NewMerger(db, cfg.IntervalSeconds(), cfg.IdleThreshold)
	t := tracker.NewTracker(sampler, merger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		for date := range t.DayChanges() {
			util.LogInfof("Day completed: %s", date)
		}
	}()

	if err := t.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
