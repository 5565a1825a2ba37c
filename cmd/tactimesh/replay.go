package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tactimesh/internal/sim"
)

var (
	replayInput     string
	replaySpeed     float64
	replayPrintOnly bool
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a track log file",
	Long:  "replay feeds track rows from a JSONL log file back into GreptimeDB or STDOUT.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if replayInput == "" {
			return fmt.Errorf("input file required")
		}
		writer, err := newTrackWriter(replayPrintOnly)
		if err != nil {
			return err
		}
		return sim.ReplayTrackLogFile(replayInput, writer, replaySpeed)
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayInput, "input", "", "Path to track log file")
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1.0, "Playback speed multiplier")
	replayCmd.Flags().BoolVar(&replayPrintOnly, "print-only", false, "Print tracks to STDOUT instead of writing to DB")
	replayCmd.MarkFlagRequired("input")
}
