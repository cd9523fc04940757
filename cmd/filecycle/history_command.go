package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"filecycle/internal/journal"
)

type runView struct {
	ID            string `json:"id"`
	Kind          string `json:"kind"`
	Status        string `json:"status"`
	Snapshot      string `json:"snapshot,omitempty"`
	StartedAt     string `json:"started_at"`
	FinishedAt    string `json:"finished_at,omitempty"`
	DurationMS    int64  `json:"duration_ms"`
	Replaced      bool   `json:"replaced"`
	Pruned        int    `json:"pruned"`
	CorrelationID string `json:"correlation_id,omitempty"`
	Error         string `json:"error,omitempty"`
}

func newRunView(run journal.Run) runView {
	view := runView{
		ID:            run.ID,
		Kind:          string(run.Kind),
		Status:        string(run.Status()),
		Snapshot:      run.Snapshot,
		StartedAt:     run.StartedAt.Format(time.RFC3339),
		DurationMS:    run.Duration().Milliseconds(),
		Replaced:      run.Replaced,
		Pruned:        run.Pruned,
		CorrelationID: run.CorrelationID,
		Error:         run.ErrorMessage,
	}
	if run.Finished() {
		view.FinishedAt = run.FinishedAt.Format(time.RFC3339)
	}
	return view
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent rotate and prune runs from the journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withJournal(func(store *journal.Store) error {
				runs, err := store.Recent(cmd.Context(), limit)
				if err != nil {
					return err
				}

				if ctx.jsonMode() {
					views := make([]runView, 0, len(runs))
					for _, run := range runs {
						views = append(views, newRunView(run))
					}
					return writeJSON(cmd, views)
				}

				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					duration := ""
					if run.Finished() {
						duration = run.Duration().Round(time.Millisecond).String()
					}
					rows = append(rows, []string{
						humanize.Time(run.StartedAt),
						string(run.Kind),
						run.Snapshot,
						string(run.Status()),
						yesNo(run.Replaced),
						fmt.Sprintf("%d", run.Pruned),
						duration,
						run.ErrorMessage,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Started", "Kind", "Snapshot", "Status", "Replaced", "Pruned", "Duration", "Error"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show (0 for all)")
	return cmd
}
