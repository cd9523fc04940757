package rotation

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/juju/clock/testclock"

	"filecycle/internal/fileutil"
)

var testNow = time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC)

func newTestManager(t *testing.T, retention Retention) (*Manager, *testclock.Clock) {
	t.Helper()
	clk := testclock.NewClock(testNow)
	m, err := New(Options{
		Prefix:    t.TempDir(),
		Name:      "rotation",
		Retention: retention,
		Clock:     clk,
		Location:  time.UTC,
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return m, clk
}

func mkdir(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	mkdir(t, filepath.Dir(path))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func entryCount(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir %s: %v", dir, err)
	}
	return len(entries)
}

func snapshotName(daysAgo int) string {
	return FolderName(testNow.AddDate(0, 0, -daysAgo))
}

func TestNewCreatesRootAndWorkingFolder(t *testing.T) {
	m, _ := newTestManager(t, KeepDays(30))

	info, err := os.Stat(m.WorkingDir())
	if err != nil {
		t.Fatalf("working folder missing: %v", err)
	}
	if !info.IsDir() {
		t.Fatal("working folder is not a directory")
	}
	if filepath.Dir(m.WorkingDir()) != m.Root() {
		t.Fatalf("working folder %q not under root %q", m.WorkingDir(), m.Root())
	}
	if filepath.Base(m.WorkingDir()) != WorkingFolderName {
		t.Fatalf("unexpected working folder name %q", filepath.Base(m.WorkingDir()))
	}
}

func TestNewExistingRootIsNotAnError(t *testing.T) {
	prefix := t.TempDir()
	opts := Options{Prefix: prefix, Name: "rotation", Retention: KeepDays(30)}
	first, err := New(opts)
	if err != nil {
		t.Fatalf("first New: %v", err)
	}
	writeFile(t, filepath.Join(first.WorkingDir(), "keep.txt"), "keep")

	second, err := New(opts)
	if err != nil {
		t.Fatalf("second New: %v", err)
	}
	if !exists(filepath.Join(second.WorkingDir(), "keep.txt")) {
		t.Fatal("existing working content should be untouched")
	}
}

func TestNewRecreatesMissingWorkingFolder(t *testing.T) {
	prefix := t.TempDir()
	mkdir(t, filepath.Join(prefix, "rotation", "2024-01-01"))

	m, err := New(Options{Prefix: prefix, Name: "rotation"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !exists(m.WorkingDir()) {
		t.Fatal("expected working folder to be created under an existing root")
	}
	if !exists(filepath.Join(m.Root(), "2024-01-01")) {
		t.Fatal("existing snapshot should be untouched")
	}
}

func TestNewDefaults(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("TMPDIR", tmp)

	m, err := New(Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if want := filepath.Join(tmp, DefaultName); m.Root() != want {
		t.Fatalf("root = %q, want %q", m.Root(), want)
	}
	days, bounded := m.Retention().Days()
	if !bounded || days != DefaultRetentionDays {
		t.Fatalf("retention = %d (bounded=%v), want %d", days, bounded, DefaultRetentionDays)
	}
}

func TestNewStripsLeadingSeparatorFromName(t *testing.T) {
	prefix := t.TempDir()
	m, err := New(Options{Prefix: prefix, Name: "/rotation"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if want := filepath.Join(prefix, "rotation"); m.Root() != want {
		t.Fatalf("root = %q, want %q", m.Root(), want)
	}
}

func TestNewRejectsEscapingName(t *testing.T) {
	_, err := New(Options{Prefix: t.TempDir(), Name: "../outside"})
	if !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
}

func TestNewRejectsNegativeRetention(t *testing.T) {
	_, err := New(Options{Prefix: t.TempDir(), Retention: KeepDays(-3)})
	if !errors.Is(err, ErrInvalidRetention) {
		t.Fatalf("expected ErrInvalidRetention, got %v", err)
	}
}

func TestNewRejectsFileRoot(t *testing.T) {
	prefix := t.TempDir()
	writeFile(t, filepath.Join(prefix, "rotation"), "not a dir")

	_, err := New(Options{Prefix: prefix, Name: "rotation"})
	var opErr *OpError
	if !errors.As(err, &opErr) {
		t.Fatalf("expected *OpError, got %v", err)
	}
	if opErr.Op != OpInit {
		t.Fatalf("op = %q, want %q", opErr.Op, OpInit)
	}
	if !errors.Is(err, ErrNotDirectory) {
		t.Fatalf("expected ErrNotDirectory, got %v", err)
	}
}

func TestRotateMovesWorkingContentIntoTodaysSnapshot(t *testing.T) {
	m, _ := newTestManager(t, KeepDays(30))
	writeFile(t, filepath.Join(m.WorkingDir(), "test.txt"), "test")
	writeFile(t, filepath.Join(m.WorkingDir(), "nested", "deep", "data.json"), `{"a":1}`)
	mkdir(t, filepath.Join(m.WorkingDir(), "empty"))

	before, err := fileutil.Manifest(m.WorkingDir())
	if err != nil {
		t.Fatalf("manifest before: %v", err)
	}

	result, err := m.Rotate()
	if err != nil {
		t.Fatalf("Rotate: %v", err)
	}

	if result.Snapshot != "2024-03-15" {
		t.Fatalf("snapshot = %q, want 2024-03-15", result.Snapshot)
	}
	if result.Path != filepath.Join(m.Root(), "2024-03-15") {
		t.Fatalf("unexpected snapshot path %q", result.Path)
	}
	if !result.Published {
		t.Fatal("expected Published after a successful rotate")
	}
	if result.Replaced {
		t.Fatal("first rotation of the day should not replace anything")
	}
	if n := entryCount(t, m.WorkingDir()); n != 0 {
		t.Fatalf("working folder holds %d entries after rotate, want 0", n)
	}

	after, err := fileutil.Manifest(result.Path)
	if err != nil {
		t.Fatalf("manifest after: %v", err)
	}
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("snapshot content mismatch:\nbefore %v\nafter  %v", before, after)
	}
}

func TestRotateEmptyWorkingFolder(t *testing.T) {
	m, _ := newTestManager(t, KeepDays(30))

	result, err := m.Rotate()
	if err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	if n := entryCount(t, result.Path); n != 0 {
		t.Fatalf("snapshot holds %d entries, want 0", n)
	}
	if !exists(m.WorkingDir()) {
		t.Fatal("working folder missing after rotate")
	}
}

func TestRotateTwiceSameDayKeepsOnlyLatestContent(t *testing.T) {
	m, clk := newTestManager(t, KeepDays(30))

	writeFile(t, filepath.Join(m.WorkingDir(), "first.txt"), "first")
	if _, err := m.Rotate(); err != nil {
		t.Fatalf("first Rotate: %v", err)
	}

	clk.Advance(5 * time.Hour)
	writeFile(t, filepath.Join(m.WorkingDir(), "second.txt"), "second")
	result, err := m.Rotate()
	if err != nil {
		t.Fatalf("second Rotate: %v", err)
	}
	if !result.Replaced {
		t.Fatal("expected second rotation to replace the same-day snapshot")
	}

	snapshots, err := m.Snapshots()
	if err != nil {
		t.Fatalf("Snapshots: %v", err)
	}
	if len(snapshots) != 1 {
		t.Fatalf("got %d snapshots, want 1", len(snapshots))
	}
	if exists(filepath.Join(result.Path, "first.txt")) {
		t.Fatal("content of the first same-day rotation should be discarded")
	}
	if !exists(filepath.Join(result.Path, "second.txt")) {
		t.Fatal("content of the second rotation missing")
	}
}

func TestRotateNextDayKeepsPreviousSnapshot(t *testing.T) {
	m, clk := newTestManager(t, KeepDays(30))

	writeFile(t, filepath.Join(m.WorkingDir(), "day1.txt"), "1")
	if _, err := m.Rotate(); err != nil {
		t.Fatalf("Rotate day 1: %v", err)
	}
	clk.Advance(24 * time.Hour)
	writeFile(t, filepath.Join(m.WorkingDir(), "day2.txt"), "2")
	result, err := m.Rotate()
	if err != nil {
		t.Fatalf("Rotate day 2: %v", err)
	}
	if result.Snapshot != "2024-03-16" {
		t.Fatalf("snapshot = %q, want 2024-03-16", result.Snapshot)
	}
	if !exists(filepath.Join(m.Root(), "2024-03-15", "day1.txt")) {
		t.Fatal("previous day snapshot should survive")
	}
	if !exists(filepath.Join(m.Root(), "2024-03-16", "day2.txt")) {
		t.Fatal("new snapshot content missing")
	}
}

func TestRotateLeavesNoStagingFolders(t *testing.T) {
	m, _ := newTestManager(t, KeepDays(30))
	writeFile(t, filepath.Join(m.WorkingDir(), "a"), "a")
	if _, err := m.Rotate(); err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	writeFile(t, filepath.Join(m.WorkingDir(), "b"), "b")
	if _, err := m.Rotate(); err != nil {
		t.Fatalf("Rotate: %v", err)
	}

	names, err := m.ListVersions()
	if err != nil {
		t.Fatalf("ListVersions: %v", err)
	}
	for _, name := range names {
		if strings.HasPrefix(name, ".") {
			t.Fatalf("unexpected hidden folder %q left in root", name)
		}
	}
	if len(names) != 2 {
		t.Fatalf("got %v, want latest and one snapshot", names)
	}
}

func TestRotateUsesCalendarDayOfLocation(t *testing.T) {
	clk := testclock.NewClock(time.Date(2024, time.March, 15, 23, 30, 0, 0, time.UTC))
	m, err := New(Options{
		Prefix:   t.TempDir(),
		Clock:    clk,
		Location: time.FixedZone("UTC+2", 2*60*60),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	result, err := m.Rotate()
	if err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	if result.Snapshot != "2024-03-16" {
		t.Fatalf("snapshot = %q, want 2024-03-16", result.Snapshot)
	}
}

func TestRotateFailsWhenWorkingFolderMissing(t *testing.T) {
	m, _ := newTestManager(t, KeepDays(30))
	if err := os.RemoveAll(m.WorkingDir()); err != nil {
		t.Fatalf("remove working folder: %v", err)
	}

	result, err := m.Rotate()
	if result.Published {
		t.Fatal("failed rotate must not report Published")
	}
	var opErr *OpError
	if !errors.As(err, &opErr) {
		t.Fatalf("expected *OpError, got %v", err)
	}
	if opErr.Op != OpStage {
		t.Fatalf("op = %q, want %q", opErr.Op, OpStage)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected fs.ErrNotExist in chain, got %v", err)
	}
}

func TestRotateAppliesRetention(t *testing.T) {
	m, _ := newTestManager(t, KeepDays(30))
	expired := snapshotName(31)
	kept := snapshotName(29)
	mkdir(t, filepath.Join(m.Root(), expired))
	mkdir(t, filepath.Join(m.Root(), kept))

	result, err := m.Rotate()
	if err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	if !reflect.DeepEqual(result.Prune.Removed, []string{expired}) {
		t.Fatalf("removed = %v, want [%s]", result.Prune.Removed, expired)
	}
	if exists(filepath.Join(m.Root(), expired)) {
		t.Fatal("expired snapshot should be pruned during rotate")
	}
	if !exists(filepath.Join(m.Root(), kept)) {
		t.Fatal("snapshot within retention should survive rotate")
	}
}

func TestPruneRemovesFoldersOlderThanRetention(t *testing.T) {
	m, _ := newTestManager(t, KeepDays(30))
	oldFolder := filepath.Join(m.Root(), snapshotName(31))
	newFolder := filepath.Join(m.Root(), snapshotName(29))
	mkdir(t, oldFolder)
	writeFile(t, filepath.Join(oldFolder, "nested", "file.txt"), "old")
	mkdir(t, newFolder)

	if _, err := m.Prune(); err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if exists(oldFolder) {
		t.Fatal("31-day-old folder should be deleted")
	}
	if !exists(newFolder) {
		t.Fatal("29-day-old folder should remain")
	}
}

func TestPruneBoundary(t *testing.T) {
	for _, days := range []int{0, 1, 7, 30} {
		m, _ := newTestManager(t, KeepDays(days))
		atCutoff := filepath.Join(m.Root(), snapshotName(days))
		pastCutoff := filepath.Join(m.Root(), snapshotName(days+1))
		mkdir(t, atCutoff)
		mkdir(t, pastCutoff)

		result, err := m.Prune()
		if err != nil {
			t.Fatalf("retention %d: Prune: %v", days, err)
		}
		if !exists(atCutoff) {
			t.Fatalf("retention %d: snapshot dated exactly at cutoff should be kept", days)
		}
		if exists(pastCutoff) {
			t.Fatalf("retention %d: snapshot one day past cutoff should be deleted", days)
		}
		if want := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -days); !result.Cutoff.Equal(want) {
			t.Fatalf("retention %d: cutoff = %v, want %v", days, result.Cutoff, want)
		}
	}
}

func TestPruneLeavesMalformedNamesAlone(t *testing.T) {
	m, _ := newTestManager(t, KeepDays(0))
	inert := []string{"archive-old", "2022-13-01", "1999-01-01.bak", ".rotate-1999-01-01", "notes"}
	for _, name := range inert {
		mkdir(t, filepath.Join(m.Root(), name))
	}
	writeFile(t, filepath.Join(m.Root(), "1999-01-01"), "a file, not a snapshot")

	result, err := m.Prune()
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if len(result.Removed) != 0 {
		t.Fatalf("expected nothing removed, got %v", result.Removed)
	}
	for _, name := range append(inert, "1999-01-01", WorkingFolderName) {
		if !exists(filepath.Join(m.Root(), name)) {
			t.Fatalf("%q should survive pruning", name)
		}
	}
}

func TestPruneKeepForever(t *testing.T) {
	m, _ := newTestManager(t, KeepForever())
	ancient := filepath.Join(m.Root(), "1970-01-01")
	mkdir(t, ancient)

	result, err := m.Prune()
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if result.Bounded {
		t.Fatal("expected unbounded prune result")
	}
	if !exists(ancient) {
		t.Fatal("keep-forever retention must not delete snapshots")
	}
}

// failRemoving returns a remover that refuses the given folder names and
// deletes everything else.
func failRemoving(names ...string) func(string) error {
	return func(path string) error {
		for _, name := range names {
			if filepath.Base(path) == name {
				return fs.ErrPermission
			}
		}
		return os.RemoveAll(path)
	}
}

func TestPruneContinuesPastFailedRemoval(t *testing.T) {
	m, _ := newTestManager(t, KeepDays(30))
	stuck := snapshotName(40)
	gone := snapshotName(35)
	kept := snapshotName(10)
	for _, name := range []string{stuck, gone, kept} {
		mkdir(t, filepath.Join(m.Root(), name))
	}
	m.removeAll = failRemoving(stuck)

	result, err := m.Prune()
	if err == nil {
		t.Fatal("expected prune error")
	}
	var opErr *OpError
	if !errors.As(err, &opErr) || opErr.Op != OpPrune {
		t.Fatalf("expected prune OpError, got %v", err)
	}
	if opErr.Path != filepath.Join(m.Root(), stuck) {
		t.Fatalf("error path = %q", opErr.Path)
	}
	if !errors.Is(err, fs.ErrPermission) {
		t.Fatalf("expected wrapped permission error, got %v", err)
	}
	if !reflect.DeepEqual(result.Removed, []string{gone}) {
		t.Fatalf("removed = %v, want [%s]", result.Removed, gone)
	}
	if exists(filepath.Join(m.Root(), gone)) {
		t.Fatal("removable expired snapshot should be deleted")
	}
	if !exists(filepath.Join(m.Root(), stuck)) {
		t.Fatal("snapshot whose removal failed should remain")
	}
	if !exists(filepath.Join(m.Root(), kept)) {
		t.Fatal("snapshot within retention should survive")
	}
}

func TestPruneJoinsEveryFailure(t *testing.T) {
	m, _ := newTestManager(t, KeepDays(1))
	first, second := snapshotName(5), snapshotName(6)
	mkdir(t, filepath.Join(m.Root(), first))
	mkdir(t, filepath.Join(m.Root(), second))
	m.removeAll = failRemoving(first, second)

	result, err := m.Prune()
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		t.Fatalf("expected joined error, got %T", err)
	}
	if n := len(joined.Unwrap()); n != 2 {
		t.Fatalf("joined %d errors, want 2", n)
	}
	if len(result.Removed) != 0 {
		t.Fatalf("removed = %v, want none", result.Removed)
	}
}

func TestRotatePublishesWhenPruneFails(t *testing.T) {
	m, _ := newTestManager(t, KeepDays(30))
	expired := snapshotName(31)
	mkdir(t, filepath.Join(m.Root(), expired))
	writeFile(t, filepath.Join(m.WorkingDir(), "a.txt"), "a")
	m.removeAll = failRemoving(expired)

	result, err := m.Rotate()
	var opErr *OpError
	if !errors.As(err, &opErr) || opErr.Op != OpPrune {
		t.Fatalf("expected prune OpError, got %v", err)
	}
	if !result.Published {
		t.Fatal("rotation should be published before retention runs")
	}
	if !exists(filepath.Join(result.Path, "a.txt")) {
		t.Fatal("snapshot should hold the working content")
	}
}

func TestRotateReportsDiscardFailureAfterPublish(t *testing.T) {
	m, _ := newTestManager(t, KeepDays(30))
	writeFile(t, filepath.Join(m.WorkingDir(), "first.txt"), "1")
	if _, err := m.Rotate(); err != nil {
		t.Fatalf("first Rotate: %v", err)
	}
	writeFile(t, filepath.Join(m.WorkingDir(), "second.txt"), "2")
	m.removeAll = func(path string) error {
		if strings.HasPrefix(filepath.Base(path), DiscardPrefix) {
			return fs.ErrPermission
		}
		return os.RemoveAll(path)
	}

	result, err := m.Rotate()
	var opErr *OpError
	if !errors.As(err, &opErr) || opErr.Op != OpDiscard {
		t.Fatalf("expected discard OpError, got %v", err)
	}
	if !result.Published || !result.Replaced {
		t.Fatalf("result = %+v, want published and replaced", result)
	}
	if !exists(filepath.Join(result.Path, "second.txt")) || exists(filepath.Join(result.Path, "first.txt")) {
		t.Fatal("snapshot should hold only the second rotation's content")
	}
	if !strings.HasPrefix(filepath.Base(opErr.Path), DiscardPrefix) || !exists(opErr.Path) {
		t.Fatalf("discard folder %q should be reported and left in place", opErr.Path)
	}
}

func TestPruneFailsWhenRootMissing(t *testing.T) {
	m, _ := newTestManager(t, KeepDays(1))
	if err := os.RemoveAll(m.Root()); err != nil {
		t.Fatalf("remove root: %v", err)
	}
	_, err := m.Prune()
	var opErr *OpError
	if !errors.As(err, &opErr) || opErr.Op != OpList {
		t.Fatalf("expected list OpError, got %v", err)
	}
}

func TestListVersions(t *testing.T) {
	m, _ := newTestManager(t, KeepDays(30))
	mkdir(t, filepath.Join(m.Root(), "2022-01-01"))
	mkdir(t, filepath.Join(m.Root(), "2022-01-02"))

	versions, err := m.ListVersions()
	if err != nil {
		t.Fatalf("ListVersions: %v", err)
	}
	sort.Strings(versions)
	want := []string{"2022-01-01", "2022-01-02", WorkingFolderName}
	if !reflect.DeepEqual(versions, want) {
		t.Fatalf("versions = %v, want %v", versions, want)
	}
}

func TestListVersionsCountsEverySibling(t *testing.T) {
	m, _ := newTestManager(t, KeepForever())
	siblings := []string{"2020-05-05", "archive-old", "2021-06-06", "misc"}
	for _, name := range siblings {
		mkdir(t, filepath.Join(m.Root(), name))
	}

	versions, err := m.ListVersions()
	if err != nil {
		t.Fatalf("ListVersions: %v", err)
	}
	if len(versions) != len(siblings)+1 {
		t.Fatalf("got %d versions, want %d", len(versions), len(siblings)+1)
	}
	seen := make(map[string]struct{}, len(versions))
	for _, v := range versions {
		if _, dup := seen[v]; dup {
			t.Fatalf("duplicate version %q", v)
		}
		seen[v] = struct{}{}
	}
	for _, name := range append(siblings, WorkingFolderName) {
		if _, ok := seen[name]; !ok {
			t.Fatalf("missing version %q in %v", name, versions)
		}
	}
}

func TestListVersionsUnreadableRoot(t *testing.T) {
	m, _ := newTestManager(t, KeepDays(30))
	if err := os.RemoveAll(m.Root()); err != nil {
		t.Fatalf("remove root: %v", err)
	}
	_, err := m.ListVersions()
	var opErr *OpError
	if !errors.As(err, &opErr) || opErr.Op != OpList {
		t.Fatalf("expected list OpError, got %v", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestSnapshotsSortedAndFiltered(t *testing.T) {
	m, _ := newTestManager(t, KeepForever())
	for _, name := range []string{"2024-03-01", "archive-old", "2023-12-31", "2024-01-15"} {
		mkdir(t, filepath.Join(m.Root(), name))
	}

	snapshots, err := m.Snapshots()
	if err != nil {
		t.Fatalf("Snapshots: %v", err)
	}
	var names []string
	for _, s := range snapshots {
		names = append(names, s.Name)
		if s.Path != filepath.Join(m.Root(), s.Name) {
			t.Fatalf("unexpected path %q for %q", s.Path, s.Name)
		}
	}
	want := []string{"2023-12-31", "2024-01-15", "2024-03-01"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("snapshots = %v, want %v", names, want)
	}
}

func TestOpErrorMessage(t *testing.T) {
	err := &OpError{Op: OpPublish, Path: "/tmp/x/2024-01-01", Err: fs.ErrPermission}
	got := err.Error()
	if !strings.Contains(got, string(OpPublish)) || !strings.Contains(got, "/tmp/x/2024-01-01") {
		t.Fatalf("unexpected message %q", got)
	}
	if !errors.Is(err, fs.ErrPermission) {
		t.Fatal("expected OpError to unwrap to the underlying error")
	}
}

func TestLeftoversReportsInterruptedRotations(t *testing.T) {
	m, _ := newTestManager(t, KeepDays(0))
	mkdir(t, filepath.Join(m.Root(), ".rotate-b"))
	mkdir(t, filepath.Join(m.Root(), ".discard-a"))
	mkdir(t, filepath.Join(m.Root(), ".hidden"))
	mkdir(t, filepath.Join(m.Root(), snapshotName(5)))

	got, err := m.Leftovers()
	if err != nil {
		t.Fatalf("Leftovers: %v", err)
	}
	want := []string{".discard-a", ".rotate-b"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Leftovers = %v, want %v", got, want)
	}

	// Retention never touches them, even with a zero-day window.
	if _, err := m.Prune(); err != nil {
		t.Fatalf("Prune: %v", err)
	}
	for _, name := range want {
		if !exists(filepath.Join(m.Root(), name)) {
			t.Fatalf("%s removed by Prune", name)
		}
	}
}
