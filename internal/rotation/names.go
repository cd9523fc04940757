package rotation

import (
	"strings"
	"time"
)

// FolderLayout is the time layout used for snapshot folder names.
const FolderLayout = "2006-01-02"

// FolderName returns the snapshot folder name for the calendar date of t.
func FolderName(t time.Time) string {
	return t.Format(FolderLayout)
}

// ParseFolderName reports the calendar date encoded in a snapshot folder
// name. The returned time is midnight UTC of that date. Names that are not
// exactly YYYY-MM-DD (hidden staging folders, "archive-old", "2022-13-01")
// report false.
func ParseFolderName(name string) (time.Time, bool) {
	if len(name) != len(FolderLayout) || strings.TrimSpace(name) != name {
		return time.Time{}, false
	}
	date, err := time.Parse(FolderLayout, name)
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}

// IsLeftover reports whether name is a hidden staging or discard folder
// that an interrupted Rotate can leave under the root.
func IsLeftover(name string) bool {
	return strings.HasPrefix(name, StagePrefix) || strings.HasPrefix(name, DiscardPrefix)
}

// civilDate strips the clock and zone from t, keeping the calendar date t
// shows in its own location.
func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
