package preflight

import (
	"filecycle/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	root := cfg.RootDir()
	var results []Result

	results = append(results, CheckDirectoryAccess("Rotation prefix", cfg.Rotation.Prefix))
	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))

	// Free space (when configured)
	if cfg.Preflight.MinFreeMiB > 0 {
		results = append(results, CheckFreeSpace("Free space", cfg.Rotation.Prefix, uint64(cfg.Preflight.MinFreeMiB)<<20))
	}

	results = append(results, CheckLeftovers("Interrupted rotations", root))
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
