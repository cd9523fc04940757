package staging

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"filecycle/internal/fileutil"
	"filecycle/internal/logging"
	"filecycle/internal/rotation"
)

// Kind distinguishes staging folders from discard folders.
type Kind string

const (
	KindStaged    Kind = "staged"
	KindDiscarded Kind = "discarded"
)

// ErrSnapshotExists is returned by Restore when the target snapshot name is taken.
var ErrSnapshotExists = errors.New("snapshot already exists")

// DirInfo contains metadata about a leftover folder.
type DirInfo struct {
	Name    string
	Path    string
	Kind    Kind
	ModTime time.Time
	Size    int64
}

// CleanupError pairs a directory path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// Result contains the outcome of a cleanup or restore pass.
type Result struct {
	Removed  []string
	Restored map[string]string
	Skipped  []string
	Errors   []CleanupError
}

// Err joins the collected errors, or returns nil.
func (r Result) Err() error {
	errs := make([]error, 0, len(r.Errors))
	for _, e := range r.Errors {
		errs = append(errs, fmt.Errorf("%s: %w", e.Path, e.Error))
	}
	return errors.Join(errs...)
}

// ListLeftovers returns the hidden staging and discard folders under root,
// sorted by name. A missing root has no leftovers.
func ListLeftovers(root string) ([]DirInfo, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var dirs []DirInfo
	for _, entry := range entries {
		if !entry.IsDir() || !rotation.IsLeftover(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		dirPath := filepath.Join(root, entry.Name())
		size, _ := fileutil.DirSize(dirPath)

		kind := KindStaged
		if strings.HasPrefix(entry.Name(), rotation.DiscardPrefix) {
			kind = KindDiscarded
		}
		dirs = append(dirs, DirInfo{
			Name:    entry.Name(),
			Path:    dirPath,
			Kind:    kind,
			ModTime: info.ModTime(),
			Size:    size,
		})
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Name < dirs[j].Name })
	return dirs, nil
}

// CleanDiscarded removes every discard folder under root.
func CleanDiscarded(root string, logger *slog.Logger) Result {
	var result Result
	dirs, err := ListLeftovers(root)
	if err != nil {
		result.Errors = append(result.Errors, CleanupError{Path: root, Error: err})
		return result
	}

	for _, dir := range dirs {
		if dir.Kind != KindDiscarded {
			continue
		}
		if err := os.RemoveAll(dir.Path); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dir.Path, Error: err})
			logging.WarnWithContext(logger, "failed to remove discarded snapshot", "discard_cleanup_failed",
				logging.String("path", dir.Path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check rotation root permissions"),
				logging.String(logging.FieldImpact, "disk space not reclaimed"),
			)
			continue
		}
		result.Removed = append(result.Removed, dir.Path)
		if logger != nil {
			logger.Info("removed discarded snapshot",
				logging.String("path", dir.Path),
				logging.String(logging.FieldEventType, "discard_cleanup"),
			)
		}
	}
	return result
}

// Restore publishes each staging folder as the snapshot for the calendar day
// of its modification time in loc. A staging folder whose target snapshot
// already exists is skipped and left in place.
func Restore(root string, loc *time.Location, logger *slog.Logger) Result {
	result := Result{Restored: map[string]string{}}
	if loc == nil {
		loc = time.Local
	}
	dirs, err := ListLeftovers(root)
	if err != nil {
		result.Errors = append(result.Errors, CleanupError{Path: root, Error: err})
		return result
	}

	for _, dir := range dirs {
		if dir.Kind != KindStaged {
			continue
		}
		name := rotation.FolderName(dir.ModTime.In(loc))
		target := filepath.Join(root, name)
		if _, err := os.Lstat(target); err == nil {
			result.Skipped = append(result.Skipped, dir.Path)
			logging.WarnWithContext(logger, "staged content not restored", "staging_restore_skipped",
				logging.String("path", dir.Path),
				logging.String(logging.FieldSnapshot, name),
				logging.Error(ErrSnapshotExists),
				logging.String(logging.FieldErrorHint, "move the staged content by hand"),
				logging.String(logging.FieldImpact, "staged content stays hidden under the root"),
			)
			continue
		}
		if err := os.Rename(dir.Path, target); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dir.Path, Error: err})
			continue
		}
		result.Restored[dir.Path] = name
		if logger != nil {
			logger.Info("restored staged content",
				logging.String("path", dir.Path),
				logging.String(logging.FieldSnapshot, name),
				logging.String(logging.FieldEventType, "staging_restored"),
			)
		}
	}
	return result
}
