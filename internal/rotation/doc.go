// Package rotation rotates a "latest" working folder into dated snapshot
// folders and prunes snapshots older than a retention window.
//
// A managed root looks like this:
//
//	<prefix>/<name>/
//	    latest/        working folder, always present
//	    2006-01-02/    zero or more dated snapshot folders
//
// Manager.Rotate moves the working folder onto today's snapshot name
// (replacing an earlier snapshot from the same day), recreates an empty
// working folder, then applies retention. Folders whose names are not
// calendar dates are never treated as snapshots and never pruned.
//
// The package performs no locking and no logging. Callers serialise Rotate
// per root and report results themselves; see internal/daemon.
package rotation
