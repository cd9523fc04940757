package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"filecycle/internal/daemon"
	"filecycle/internal/staging"
)

type recoverView struct {
	Removed  []string          `json:"removed"`
	Restored map[string]string `json:"restored"`
	Skipped  []string          `json:"skipped"`
	Error    string            `json:"error,omitempty"`
}

func newRecoverCommand(ctx *commandContext) *cobra.Command {
	var restore bool
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "recover",
		Short: "Clean up folders left behind by interrupted rotations",
		Long: `Remove .discard-* folders left behind by interrupted rotations.

Staged .rotate-* folders still hold working content and are only touched with
--restore. A restored folder is dated by its modification time, which is when
the working folder was last changed rather than when it was staged. That date
can fall outside the retention window, in which case the next prune deletes
the restored snapshot. Use --dry-run to check the Modified column first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dryRun {
				cfg, err := ctx.ensureConfig()
				if err != nil {
					return err
				}
				dirs, err := staging.ListLeftovers(cfg.RootDir())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(dirs) == 0 {
					fmt.Fprintln(out, "No leftover folders")
					return nil
				}
				rows := make([][]string, 0, len(dirs))
				for _, dir := range dirs {
					rows = append(rows, []string{dir.Name, string(dir.Kind), humanize.Time(dir.ModTime), humanize.IBytes(uint64(dir.Size))})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Name", "Kind", "Modified", "Size"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
				))
				return nil
			}

			return ctx.withDaemon(func(d *daemon.Daemon) error {
				result, err := d.Recover(cmd.Context(), restore)
				if errors.Is(err, daemon.ErrLocked) {
					return fmt.Errorf("recover: %w; try again once it finishes", err)
				}
				view := recoverView{
					Removed:  nonNil(result.Removed),
					Restored: result.Restored,
					Skipped:  nonNil(result.Skipped),
				}
				if view.Restored == nil {
					view.Restored = map[string]string{}
				}
				if err != nil {
					view.Error = err.Error()
				}
				if ctx.jsonMode() {
					return writeJSONResult(cmd, view, err)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Removed %d discarded snapshot folder(s)\n", len(view.Removed))
				staged := make([]string, 0, len(view.Restored))
				for path := range view.Restored {
					staged = append(staged, path)
				}
				sort.Strings(staged)
				for _, path := range staged {
					fmt.Fprintf(out, "Restored %s as %s\n", path, view.Restored[path])
				}
				for _, path := range view.Skipped {
					fmt.Fprintf(out, "Skipped %s: snapshot for that day already exists\n", path)
				}
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&restore, "restore", false, "Publish staged content as snapshots dated by folder modification time (may be pruned if older than retention)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List leftover folders without changing anything")
	return cmd
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
