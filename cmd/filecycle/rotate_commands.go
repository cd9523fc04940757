package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"filecycle/internal/daemon"
	"filecycle/internal/rotation"
)

type pruneView struct {
	Cutoff  string   `json:"cutoff,omitempty"`
	Bounded bool     `json:"bounded"`
	Removed []string `json:"removed"`
}

type rotateView struct {
	Snapshot string    `json:"snapshot"`
	Path     string    `json:"path"`
	Replaced bool      `json:"replaced"`
	Prune    pruneView `json:"prune"`
	Error    string    `json:"error,omitempty"`
}

func newPruneView(result rotation.PruneResult) pruneView {
	view := pruneView{Bounded: result.Bounded, Removed: result.Removed}
	if view.Removed == nil {
		view.Removed = []string{}
	}
	if result.Bounded {
		view.Cutoff = rotation.FolderName(result.Cutoff)
	}
	return view
}

func newRotateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rotate",
		Short: "Move the working folder into today's snapshot and apply retention",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withDaemon(func(d *daemon.Daemon) error {
				result, err := d.RotateOnce(cmd.Context())
				if errors.Is(err, daemon.ErrLocked) {
					return fmt.Errorf("rotate: %w; try again once it finishes", err)
				}
				if !result.Published {
					return err
				}

				view := rotateView{
					Snapshot: result.Snapshot,
					Path:     result.Path,
					Replaced: result.Replaced,
					Prune:    newPruneView(result.Prune),
				}
				if err != nil {
					view.Error = err.Error()
				}
				if ctx.jsonMode() {
					return writeJSONResult(cmd, view, err)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Rotated working folder into %s\n", result.Path)
				if result.Replaced {
					fmt.Fprintln(out, "Replaced the earlier snapshot from today")
				}
				printPruned(cmd, result.Prune)
				return err
			})
		},
	}
}

func newPruneCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove snapshots older than the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withDaemon(func(d *daemon.Daemon) error {
				result, err := d.PruneOnce(cmd.Context())
				if errors.Is(err, daemon.ErrLocked) {
					return fmt.Errorf("prune: %w; try again once it finishes", err)
				}
				if ctx.jsonMode() {
					return writeJSONResult(cmd, newPruneView(result), err)
				}
				if !result.Bounded {
					fmt.Fprintln(cmd.OutOrStdout(), "Retention keeps snapshots forever; nothing to prune")
					return err
				}
				printPruned(cmd, result)
				return err
			})
		},
	}
}

func printPruned(cmd *cobra.Command, result rotation.PruneResult) {
	out := cmd.OutOrStdout()
	if !result.Bounded {
		return
	}
	if len(result.Removed) == 0 {
		fmt.Fprintf(out, "No snapshots older than %s\n", rotation.FolderName(result.Cutoff))
		return
	}
	fmt.Fprintf(out, "Pruned %d snapshot(s) older than %s: %s\n",
		len(result.Removed), rotation.FolderName(result.Cutoff), strings.Join(result.Removed, ", "))
}
