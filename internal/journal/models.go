package journal

import "time"

// Kind identifies what a run did.
type Kind string

const (
	KindRotate Kind = "rotate"
	KindPrune  Kind = "prune"
)

// Status summarises a run's outcome.
type Status string

const (
	StatusRunning Status = "running"
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
)

// Run is one journal row.
type Run struct {
	ID            string
	Kind          Kind
	Root          string
	Snapshot      string
	CorrelationID string
	StartedAt     time.Time
	FinishedAt    time.Time
	Replaced      bool
	Pruned        int
	ErrorMessage  string
}

// Finished reports whether the run recorded a finish timestamp.
func (r Run) Finished() bool {
	return !r.FinishedAt.IsZero()
}

// Status derives the run status from its columns. A run without a finish
// timestamp reports StatusRunning; callers decide whether it is stale.
func (r Run) Status() Status {
	switch {
	case !r.Finished():
		return StatusRunning
	case r.ErrorMessage != "":
		return StatusFailed
	default:
		return StatusOK
	}
}

// Duration is the wall time between start and finish, zero while running.
func (r Run) Duration() time.Duration {
	if !r.Finished() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Outcome completes a run.
type Outcome struct {
	Snapshot   string
	Replaced   bool
	Pruned     int
	Err        error
	FinishedAt time.Time
}
