package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// PruneLogDir removes rotated copies of LogFileName in dir (for example
// filecycle.log.1 or filecycle.log.2.gz left by logrotate) last modified more
// than retentionDays before now. The active log file and unrelated files are
// never touched. A retentionDays <= 0 disables pruning.
func PruneLogDir(logger *slog.Logger, dir string, retentionDays int, now time.Time) []string {
	dir = strings.TrimSpace(dir)
	if retentionDays <= 0 || dir == "" {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	cutoff := now.AddDate(0, 0, -retentionDays)

	var removed []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !isRotatedLog(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			WarnWithContext(logger, "log retention remove failed; file remains", "log_retention_failed",
				String("path", path),
				Error(err),
				String(FieldErrorHint, "check file permissions and log_dir ownership"),
				String(FieldImpact, "old log file remains on disk"),
			)
			continue
		}
		removed = append(removed, path)
		if logger != nil {
			logger.Info("log pruned", String("path", path), String(FieldEventType, "log_pruned"))
		}
	}
	return removed
}

func isRotatedLog(name string) bool {
	return name != LogFileName && strings.HasPrefix(name, LogFileName+".")
}
