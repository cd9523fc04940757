package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile creates path, including parent directories, holding exactly
// size bytes. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, bytes.Repeat([]byte{'x'}, int(size)), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// FillDir writes each relative path in files under dir with the given size
// and returns the total number of bytes written.
func FillDir(t testing.TB, dir string, files map[string]int64) int64 {
	t.Helper()

	var total int64
	for rel, size := range files {
		if size <= 0 {
			size = 1
		}
		WriteFile(t, filepath.Join(dir, filepath.FromSlash(rel)), size)
		total += size
	}
	return total
}
