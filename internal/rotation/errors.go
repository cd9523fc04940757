package rotation

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRetention is returned by New for negative retention day counts.
	ErrInvalidRetention = errors.New("retention days must not be negative")
	// ErrInvalidName is returned by New when the root name escapes the prefix.
	ErrInvalidName = errors.New("root name must be a local path")
	// ErrNotDirectory is returned by New when the root or working path is not a directory.
	ErrNotDirectory = errors.New("not a directory")
)

// Op names the step of an operation that failed.
type Op string

const (
	OpInit     Op = "init"
	OpStage    Op = "stage working folder"
	OpRecreate Op = "recreate working folder"
	OpDiscard  Op = "discard same-day snapshot"
	OpPublish  Op = "publish snapshot"
	OpPrune    Op = "prune snapshot"
	OpList     Op = "list root"
)

// OpError ties a filesystem failure to the rotation step and path involved.
// It unwraps to the underlying error so errors.Is(err, fs.ErrPermission)
// keeps working.
type OpError struct {
	Op   Op
	Path string
	Err  error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("rotation: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}
