package main

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/juju/clock"
	"github.com/spf13/cobra"

	"filecycle/internal/logging"
	"filecycle/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool
	var event string

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the filecycle log file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			dir := strings.TrimSpace(cfg.Paths.LogDir)
			if dir == "" {
				return fmt.Errorf("logs: paths.log_dir is not configured")
			}
			path := filepath.Join(dir, logging.LogFileName)
			out := cmd.OutOrStdout()

			emit := func(line string) {
				if logs.MatchEvent(line, event) {
					fmt.Fprintln(out, line)
				}
			}

			// Filtering happens after the tail, so -n bounds lines read, not lines shown.
			tail, offset, err := logs.Last(path, lines)
			if err != nil {
				return err
			}
			for _, line := range tail {
				emit(line)
			}
			if !follow {
				return nil
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return logs.Follow(runCtx, clock.WallClock, path, offset, 500*time.Millisecond, emit)
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing lines as they are written")
	cmd.Flags().StringVar(&event, "event", "", "Only show lines with this event_type")
	return cmd
}
