package rotation

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock"
)

const (
	// WorkingFolderName is the fixed name of the working folder under the root.
	WorkingFolderName = "latest"
	// DefaultName is the root name used when Options.Name is empty.
	DefaultName = "rotation"

	// StagePrefix names the hidden folder holding working content mid-rotation.
	StagePrefix = ".rotate-"
	// DiscardPrefix names a replaced same-day snapshot awaiting removal.
	DiscardPrefix = ".discard-"

	dirPerm = 0o755
)

// Options configures a Manager. Zero fields take the documented defaults.
type Options struct {
	// Prefix is the directory the root is placed under. Default: os.TempDir().
	Prefix string
	// Name is the root directory name relative to Prefix. Default: "rotation".
	Name string
	// Retention controls pruning. Default: KeepDays(30).
	Retention Retention
	// Clock supplies the current time. Default: clock.WallClock.
	Clock clock.Clock
	// Location decides which calendar day "now" falls on. Default: time.Local.
	Location *time.Location
	// RemoveAll deletes a folder tree for discard and prune. Default: os.RemoveAll.
	RemoveAll func(path string) error
}

// Manager owns one rotation root. It is not safe for concurrent Rotate or
// Prune calls; callers serialise them.
type Manager struct {
	root      string
	working   string
	retention Retention
	clock     clock.Clock
	location  *time.Location
	removeAll func(string) error
}

// Snapshot describes a dated snapshot folder.
type Snapshot struct {
	Name string
	Date time.Time
	Path string
}

// PruneResult lists the snapshot folders removed by retention.
type PruneResult struct {
	Cutoff  time.Time
	Bounded bool
	Removed []string
}

// RotateResult describes a completed rotation.
type RotateResult struct {
	Snapshot string
	Path     string
	// Published is true once the working content sits under Snapshot. A
	// Rotate error with Published set came from cleanup or retention.
	Published bool
	// Replaced is true when an earlier snapshot from the same day was discarded.
	Replaced bool
	Prune    PruneResult
}

// New resolves the root directory and makes sure it and its working folder
// exist. A root that exists without a working folder gets one.
func New(opts Options) (*Manager, error) {
	prefix := strings.TrimSpace(opts.Prefix)
	if prefix == "" {
		prefix = os.TempDir()
	}
	name := strings.TrimLeft(strings.TrimSpace(opts.Name), `/\`)
	if name == "" {
		name = DefaultName
	}
	if !filepath.IsLocal(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, opts.Name)
	}
	if err := opts.Retention.validate(); err != nil {
		return nil, err
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.WallClock
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	removeAll := opts.RemoveAll
	if removeAll == nil {
		removeAll = os.RemoveAll
	}

	root := filepath.Join(prefix, name)
	m := &Manager{
		root:      root,
		working:   filepath.Join(root, WorkingFolderName),
		retention: opts.Retention,
		clock:     clk,
		location:  loc,
		removeAll: removeAll,
	}

	info, err := os.Stat(root)
	switch {
	case err == nil && !info.IsDir():
		return nil, &OpError{Op: OpInit, Path: root, Err: ErrNotDirectory}
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return nil, &OpError{Op: OpInit, Path: root, Err: err}
	}
	if err := os.MkdirAll(m.working, dirPerm); err != nil {
		return nil, &OpError{Op: OpInit, Path: m.working, Err: err}
	}
	return m, nil
}

// Root returns the managed root directory.
func (m *Manager) Root() string { return m.root }

// WorkingDir returns the working folder external writers should fill.
func (m *Manager) WorkingDir() string { return m.working }

// Retention returns the configured retention policy.
func (m *Manager) Retention() Retention { return m.retention }

// Location returns the location that decides snapshot calendar days.
func (m *Manager) Location() *time.Location { return m.location }

// Today returns the current time in the manager's location. Its calendar
// date names today's snapshot.
func (m *Manager) Today() time.Time {
	return m.clock.Now().In(m.location)
}

// Rotate moves the working folder onto today's snapshot folder, recreates an
// empty working folder and prunes expired snapshots.
//
// The working folder is first renamed to a hidden staging name and recreated
// straight away, then the staged content is renamed onto the snapshot name.
// An existing same-day snapshot is renamed aside and removed once the new one
// is in place. Nothing is rolled back on failure; a hidden .rotate-* folder
// left behind by a crash still holds the working content.
func (m *Manager) Rotate() (RotateResult, error) {
	name := FolderName(m.Today())
	dest := filepath.Join(m.root, name)
	result := RotateResult{Snapshot: name, Path: dest}

	staged := filepath.Join(m.root, StagePrefix+uuid.NewString())
	if err := os.Rename(m.working, staged); err != nil {
		return result, &OpError{Op: OpStage, Path: m.working, Err: err}
	}
	if err := os.Mkdir(m.working, dirPerm); err != nil {
		return result, &OpError{Op: OpRecreate, Path: m.working, Err: err}
	}

	var discard string
	if _, err := os.Lstat(dest); err == nil {
		discard = filepath.Join(m.root, DiscardPrefix+uuid.NewString())
		if err := os.Rename(dest, discard); err != nil {
			return result, &OpError{Op: OpDiscard, Path: dest, Err: err}
		}
		result.Replaced = true
	} else if !errors.Is(err, fs.ErrNotExist) {
		return result, &OpError{Op: OpDiscard, Path: dest, Err: err}
	}

	if err := os.Rename(staged, dest); err != nil {
		return result, &OpError{Op: OpPublish, Path: dest, Err: err}
	}
	result.Published = true
	if discard != "" {
		if err := m.removeAll(discard); err != nil {
			return result, &OpError{Op: OpDiscard, Path: discard, Err: err}
		}
	}

	pruned, err := m.Prune()
	result.Prune = pruned
	return result, err
}

// Prune removes snapshot folders dated strictly before today minus the
// retention days. The working folder, non-directories and names that are
// not dates are left alone. A failed removal does not stop the others; all
// failures are returned joined.
func (m *Manager) Prune() (PruneResult, error) {
	cutoff, bounded := m.retention.Cutoff(m.Today())
	result := PruneResult{Cutoff: cutoff, Bounded: bounded}
	if !bounded {
		return result, nil
	}

	entries, err := os.ReadDir(m.root)
	if err != nil {
		return result, &OpError{Op: OpList, Path: m.root, Err: err}
	}

	var errs []error
	for _, entry := range entries {
		name := entry.Name()
		if name == WorkingFolderName || !entry.IsDir() {
			continue
		}
		date, ok := ParseFolderName(name)
		if !ok || !date.Before(cutoff) {
			continue
		}
		path := filepath.Join(m.root, name)
		if err := m.removeAll(path); err != nil {
			errs = append(errs, &OpError{Op: OpPrune, Path: path, Err: err})
			continue
		}
		result.Removed = append(result.Removed, name)
	}
	return result, errors.Join(errs...)
}

// ListVersions returns the names of every entry directly under the root,
// the working folder included, in directory enumeration order.
func (m *Manager) ListVersions() ([]string, error) {
	dir, err := os.Open(m.root)
	if err != nil {
		return nil, &OpError{Op: OpList, Path: m.root, Err: err}
	}
	defer dir.Close()

	names, err := dir.Readdirnames(-1)
	if err != nil {
		return nil, &OpError{Op: OpList, Path: m.root, Err: err}
	}
	return names, nil
}

// Leftovers returns hidden staging and discard folders left by interrupted
// rotations. Staging folders still hold working content and are never
// removed automatically.
func (m *Manager) Leftovers() ([]string, error) {
	names, err := m.ListVersions()
	if err != nil {
		return nil, err
	}
	var leftovers []string
	for _, name := range names {
		if IsLeftover(name) {
			leftovers = append(leftovers, name)
		}
	}
	sort.Strings(leftovers)
	return leftovers, nil
}

// Snapshots returns the dated snapshot folders under the root, oldest first.
func (m *Manager) Snapshots() ([]Snapshot, error) {
	entries, err := os.ReadDir(m.root)
	if err != nil {
		return nil, &OpError{Op: OpList, Path: m.root, Err: err}
	}
	snapshots := make([]Snapshot, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		date, ok := ParseFolderName(entry.Name())
		if !ok {
			continue
		}
		snapshots = append(snapshots, Snapshot{
			Name: entry.Name(),
			Date: date,
			Path: filepath.Join(m.root, entry.Name()),
		})
	}
	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Date.Before(snapshots[j].Date)
	})
	return snapshots, nil
}
