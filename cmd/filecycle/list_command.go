package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"filecycle/internal/fileutil"
	"filecycle/internal/rotation"
)

const (
	kindWorking  = "working"
	kindSnapshot = "snapshot"
	kindStaging  = "staging"
	kindOther    = "other"
)

type versionView struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Date      string `json:"date,omitempty"`
	SizeBytes int64  `json:"size_bytes"`
}

func classifyVersion(name string) (string, time.Time) {
	if name == rotation.WorkingFolderName {
		return kindWorking, time.Time{}
	}
	if rotation.IsLeftover(name) {
		return kindStaging, time.Time{}
	}
	if date, ok := rotation.ParseFolderName(name); ok {
		return kindSnapshot, date
	}
	return kindOther, time.Time{}
}

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the working folder and every snapshot under the root",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := ctx.manager()
			if err != nil {
				return err
			}
			names, err := manager.ListVersions()
			if err != nil {
				return err
			}
			sort.Strings(names)

			views := make([]versionView, 0, len(names))
			for _, name := range names {
				kind, date := classifyVersion(name)
				view := versionView{Name: name, Kind: kind}
				if !date.IsZero() {
					view.Date = rotation.FolderName(date)
				}
				if size, err := fileutil.DirSize(filepath.Join(manager.Root(), name)); err == nil {
					view.SizeBytes = size
				}
				views = append(views, view)
			}

			if ctx.jsonMode() {
				return writeJSON(cmd, views)
			}

			rows := make([][]string, 0, len(views))
			for _, view := range views {
				age := ""
				if view.Kind == kindSnapshot {
					date, _ := rotation.ParseFolderName(view.Name)
					age = humanize.Time(date)
				}
				rows = append(rows, []string{view.Name, view.Kind, age, humanize.IBytes(uint64(view.SizeBytes))})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Name", "Kind", "Age", "Size"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}
}
