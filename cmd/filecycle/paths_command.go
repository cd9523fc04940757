package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"filecycle/internal/logging"
)

type pathsView struct {
	Config    string `json:"config"`
	Root      string `json:"root"`
	Working   string `json:"working"`
	Retention string `json:"retention"`
	StateDir  string `json:"state_dir"`
	Journal   string `json:"journal"`
	Lock      string `json:"lock"`
	Log       string `json:"log,omitempty"`
}

func newPathsCommand(ctx *commandContext) *cobra.Command {
	var workingOnly bool

	cmd := &cobra.Command{
		Use:   "paths",
		Short: "Show the rotation root, working folder, and state files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			manager, err := ctx.manager()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if workingOnly {
				fmt.Fprintln(out, manager.WorkingDir())
				return nil
			}

			view := pathsView{
				Config:    ctx.configPath,
				Root:      manager.Root(),
				Working:   manager.WorkingDir(),
				Retention: manager.Retention().String(),
				StateDir:  cfg.Paths.StateDir,
				Journal:   cfg.JournalPath(),
				Lock:      cfg.LockPath(),
			}
			if cfg.Paths.LogDir != "" {
				view.Log = filepath.Join(cfg.Paths.LogDir, logging.LogFileName)
			}
			if ctx.jsonMode() {
				return writeJSON(cmd, view)
			}

			rows := [][]string{
				{"Config", view.Config},
				{"Root", view.Root},
				{"Working folder", view.Working},
				{"Retention", view.Retention},
				{"State directory", view.StateDir},
				{"Journal", view.Journal},
				{"Lock", view.Lock},
			}
			if view.Log != "" {
				rows = append(rows, []string{"Log", view.Log})
			}
			fmt.Fprintln(out, renderTable([]string{"Path", "Location"}, rows, nil))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&workingOnly, "working", "w", false, "Print only the working folder path")
	return cmd
}
